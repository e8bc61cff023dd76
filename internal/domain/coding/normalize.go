package coding

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Placeholder tokens for high-cardinality document references. Near-duplicate
// transactions that differ only by document number normalize to identical
// text.
const (
	PlaceholderVoucher = "{voucher}"
	PlaceholderPayment = "{pay}"
	PlaceholderDoc     = "{doc}"
	PlaceholderNumber  = "{#}"
)

var (
	// prefix/TYPE/digits voucher codes, e.g. bkk/tunai/0418.
	voucherCodePattern = regexp.MustCompile(`\b[a-z]{2,5}/[a-z0-9]{1,8}/\d+\b`)
	// payment reference codes, e.g. pv-10233, pb/20401.
	paymentCodePattern = regexp.MustCompile(`\b(?:pay|pv|pb|pmt)[-/.]?\d{3,}\b`)
	// document references: invoice/PO/delivery-order style tokens followed
	// by a long digit run.
	docRefPattern = regexp.MustCompile(`\b(?:inv|invoice|faktur|fkt|po|do|so|sj|bast|kw|kwitansi|ref|no)[-/._ ]?\d{4,}\b`)
	// any remaining bare run of four or more digits.
	numberRunPattern = regexp.MustCompile(`\d{4,}`)

	// Everything that is not alphanumeric, a placeholder brace, or the
	// number-placeholder marker collapses to a space.
	noiseCharPattern = regexp.MustCompile(`[^a-z0-9{}#]+`)
	multiSpace       = regexp.MustCompile(`\s+`)

	diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalize canonicalizes a free-text transaction description: lowercase,
// diacritics folded, document-number-like tokens collapsed to category
// placeholders, punctuation collapsed to single spaces. Pure and idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	s := strings.ToLower(text)
	if folded, _, err := transform.String(diacriticFolder, s); err == nil {
		s = folded
	}

	s = voucherCodePattern.ReplaceAllString(s, PlaceholderVoucher)
	s = paymentCodePattern.ReplaceAllString(s, PlaceholderPayment)
	s = docRefPattern.ReplaceAllString(s, PlaceholderDoc)
	s = numberRunPattern.ReplaceAllString(s, PlaceholderNumber)

	s = noiseCharPattern.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// IsPlaceholder reports whether a token is one of the normalization
// placeholders.
func IsPlaceholder(token string) bool {
	return strings.HasPrefix(token, "{") && strings.HasSuffix(token, "}")
}
