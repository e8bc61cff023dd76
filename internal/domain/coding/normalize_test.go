package coding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases and collapses punctuation",
			input:    "Pembayaran  LISTRIK,   kantor!!",
			expected: "pembayaran listrik kantor",
		},
		{
			name:     "voucher code becomes placeholder",
			input:    "setoran BKK/TUNAI/0418 kas kecil",
			expected: "setoran {voucher} kas kecil",
		},
		{
			name:     "payment code becomes placeholder",
			input:    "transfer PV-10233 supplier",
			expected: "transfer {pay} supplier",
		},
		{
			name:     "invoice reference becomes placeholder",
			input:    "pelunasan INV 20240117 toko",
			expected: "pelunasan {doc} toko",
		},
		{
			name:     "bare digit run becomes placeholder",
			input:    "giro 88123456 cair",
			expected: "giro {#} cair",
		},
		{
			name:     "short digit runs survive",
			input:    "sewa lantai 3 blok 12",
			expected: "sewa lantai 3 blok 12",
		},
		{
			name:     "diacritics fold to ascii",
			input:    "pembayaran café",
			expected: "pembayaran cafe",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Pembayaran BKK/TUNAI/0418 untuk INV 20240117",
		"transfer PV-10233 a/n PT Maju (BPJS-TK)",
		"giro 88123456 cair!!",
		"   ",
		"{voucher} {pay} {doc} {#}",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "input %q", input)
	}
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, IsPlaceholder("{voucher}"))
	assert.True(t, IsPlaceholder("{#}"))
	assert.False(t, IsPlaceholder("voucher"))
	assert.False(t, IsPlaceholder("{open"))
}
