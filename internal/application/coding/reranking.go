package coding

import (
	"context"
	"regexp"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/andraa0104/isystem-1-sub006/internal/domain/coding"
)

const rerankCandidateLimit = 5

var voucherTypePattern = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)

// RerankingSuggester decorates a Suggester with the optional remote
// reranking pass: suggestions whose overall confidence falls below the
// threshold are sent out for a second opinion. Any reranker failure or
// malformed reply leaves the local suggestion untouched.
type RerankingSuggester struct {
	inner     Suggester
	reranker  coding.Reranker
	threshold float64
	logger    *zap.Logger
}

// NewRerankingSuggester wraps inner. A nil reranker disables the pass.
func NewRerankingSuggester(inner Suggester, reranker coding.Reranker, threshold float64, logger *zap.Logger) *RerankingSuggester {
	return &RerankingSuggester{inner: inner, reranker: reranker, threshold: threshold, logger: logger}
}

// Suggest runs the local pipeline and, when confidence is low, overlays the
// well-formed parts of the remote reranker's reply.
func (r *RerankingSuggester) Suggest(ctx context.Context, req SuggestRequest) *SuggestionResponse {
	resp := r.inner.Suggest(ctx, req)
	if r.reranker == nil || resp.Confidence["overall"] >= r.threshold {
		return resp
	}

	mode := req.Mode
	if mode == "" {
		mode = string(coding.DirectionOut)
	}
	reply, err := r.reranker.Rerank(ctx, coding.RerankRequest{
		Mode:        mode,
		Query:       resp.normalizedQuery,
		Cash:        rerankCandidates(resp.cashCandidates),
		Counterpart: rerankCandidates(resp.lawanCandidates),
		Evidence:    rerankEvidence(resp.Evidence),
	})
	if err != nil {
		r.logger.Warn("rerank request failed, keeping local suggestion", zap.Error(err))
		return resp
	}

	r.overlay(resp, reply)
	return resp
}

// overlay applies each reranker field only when it is well formed; anything
// else keeps the locally computed value.
func (r *RerankingSuggester) overlay(resp *SuggestionResponse, reply *coding.RerankResponse) {
	if reply == nil {
		return
	}
	if reply.CashAccount != "" {
		resp.KodeAkun = reply.CashAccount
	}
	if voucherTypePattern.MatchString(reply.VoucherType) {
		resp.VoucherType = reply.VoucherType
	}
	if lines, ok := parseRerankLines(reply.Lines); ok {
		resp.Lines = lines
	}
}

// parseRerankLines validates the proposed allocation as a whole: one bad
// line rejects the lot, since partial overlays would break the exact sum.
func parseRerankLines(lines []coding.RerankLine) ([]SuggestionLine, bool) {
	if len(lines) == 0 {
		return nil, false
	}
	parsed := make([]SuggestionLine, 0, len(lines))
	for _, line := range lines {
		if line.Account == "" || (line.Side != coding.SideDebit && line.Side != coding.SideKredit) {
			return nil, false
		}
		amount, err := decimal.NewFromString(line.Amount)
		if err != nil || amount.Sign() < 0 {
			return nil, false
		}
		parsed = append(parsed, SuggestionLine{Akun: line.Account, Jenis: line.Side, Nominal: amount})
	}
	return parsed, true
}

func rerankCandidates(scores []coding.ScoredAccount) []coding.RerankCandidate {
	if len(scores) > rerankCandidateLimit {
		scores = scores[:rerankCandidateLimit]
	}
	out := make([]coding.RerankCandidate, 0, len(scores))
	for _, s := range scores {
		out = append(out, coding.RerankCandidate{Account: s.Account, Score: s.Score})
	}
	return out
}

func rerankEvidence(items []EvidenceItem) []coding.RerankEvidence {
	out := make([]coding.RerankEvidence, 0, len(items))
	for _, item := range items {
		out = append(out, coding.RerankEvidence{
			Source:      item.Source,
			Ref:         item.Ref,
			Description: item.Keterangan,
			Score:       item.Score,
		})
	}
	return out
}
