// Package coding provides the application-level suggestion service wiring
// the retrieval, voting and ensemble stages into the single suggest
// operation.
package coding

import (
	"github.com/shopspring/decimal"

	"github.com/andraa0104/isystem-1-sub006/internal/domain/coding"
)

// SuggestRequest is the input of the suggest operation.
type SuggestRequest struct {
	// Mode is the cash movement direction; defaults to "out".
	Mode       string          `json:"mode" binding:"omitempty,oneof=in out"`
	Keterangan string          `json:"keterangan"`
	Nominal    decimal.Decimal `json:"nominal"`
	HasPpn     bool            `json:"has_ppn"`
	PpnNominal decimal.Decimal `json:"ppn_nominal"`
	// SeedAkun optionally biases the cash-account pick toward an account
	// carried over from an upstream document.
	SeedAkun string `json:"seed_akun"`
}

// SuggestionLine is one proposed booking line.
type SuggestionLine struct {
	Akun    string          `json:"akun"`
	Jenis   string          `json:"jenis"`
	Nominal decimal.Decimal `json:"nominal"`
}

// EvidenceItem is one historical row that influenced the suggestion.
type EvidenceItem struct {
	Source     string  `json:"source"` // "kas" or "jurnal"
	Ref        string  `json:"ref"`
	Keterangan string  `json:"keterangan"`
	Score      float64 `json:"score"`
}

// SuggestionResponse is the structured suggestion returned to the caller.
// It is advisory: a human approves or edits it before posting.
type SuggestionResponse struct {
	KodeAkun    string             `json:"kode_akun"`
	VoucherType string             `json:"voucher_type"`
	PpnAkun     string             `json:"ppn_akun"`
	PpnJenis    string             `json:"ppn_jenis"`
	Keterangan  string             `json:"keterangan"`
	Lines       []SuggestionLine   `json:"lines"`
	Confidence  map[string]float64 `json:"confidence"`
	Evidence    []EvidenceItem     `json:"evidence"`

	// Carried for the reranking pass; never serialized.
	cashCandidates  []coding.ScoredAccount
	lawanCandidates []coding.ScoredAccount
	normalizedQuery string
}
