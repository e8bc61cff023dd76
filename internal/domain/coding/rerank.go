package coding

import "context"

// RerankCandidate is one candidate account forwarded to the remote reranker.
type RerankCandidate struct {
	Account string  `json:"akun"`
	Score   float64 `json:"score"`
}

// RerankEvidence is one historical row forwarded as context.
type RerankEvidence struct {
	Source      string  `json:"source"`
	Ref         string  `json:"ref"`
	Description string  `json:"keterangan"`
	Score       float64 `json:"score"`
}

// RerankRequest is the payload sent to the remote reranking service for
// low-confidence suggestions.
type RerankRequest struct {
	Mode        string            `json:"mode"`
	Query       string            `json:"query"`
	Cash        []RerankCandidate `json:"cash"`
	Counterpart []RerankCandidate `json:"lawan"`
	Evidence    []RerankEvidence  `json:"evidence"`
}

// RerankLine is one allocation line proposed by the reranker.
type RerankLine struct {
	Account string `json:"akun"`
	Side    string `json:"jenis"`
	Amount  string `json:"nominal"`
}

// RerankResponse is the reranker's proposal. Fields left empty by the
// service keep their locally computed values.
type RerankResponse struct {
	CashAccount string       `json:"kode_akun"`
	VoucherType string       `json:"voucher_type"`
	Lines       []RerankLine `json:"lines"`
}

// Reranker is the optional remote re-ranking escape hatch. Implementations
// must be time-bounded; any error is swallowed by the caller and the local
// suggestion stands.
type Reranker interface {
	Rerank(ctx context.Context, req RerankRequest) (*RerankResponse, error)
}
