package coding

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/andraa0104/isystem-1-sub006/internal/domain/coding"
)

// Suggester produces a coding suggestion for a cash-voucher draft.
type Suggester interface {
	Suggest(ctx context.Context, req SuggestRequest) *SuggestionResponse
}

// Default remarks used when no historical voter supplies a better one.
const (
	defaultRemarkOut = "Pengeluaran kas"
	defaultRemarkIn  = "Penerimaan kas"
)

// SuggestionService runs the full suggestion pipeline: retrieve history,
// rank it lexically, tally votes, blend them with the Bayes and journal
// signals, allocate amounts and estimate confidence. It never returns an
// error: every degraded input collapses to weaker (possibly empty)
// suggestions with low confidence.
type SuggestionService struct {
	cash    coding.CashHistoryRepository
	journal coding.JournalHistoryRepository
	caps    coding.SourceCapabilities
	models  *ModelProvider
	params  coding.Params
	logger  *zap.Logger
	now     func() time.Time
}

// NewSuggestionService creates a new SuggestionService.
func NewSuggestionService(
	cash coding.CashHistoryRepository,
	journal coding.JournalHistoryRepository,
	caps coding.SourceCapabilities,
	models *ModelProvider,
	params coding.Params,
	logger *zap.Logger,
) *SuggestionService {
	return &SuggestionService{
		cash:    cash,
		journal: journal,
		caps:    caps,
		models:  models,
		params:  params,
		logger:  logger,
		now:     time.Now,
	}
}

// Suggest builds the coding suggestion for the given draft.
func (s *SuggestionService) Suggest(ctx context.Context, req SuggestRequest) *SuggestionResponse {
	dir := coding.DirectionOut
	if req.Mode == string(coding.DirectionIn) {
		dir = coding.DirectionIn
	}

	nominal := clampAmount(req.Nominal)
	ppn := decimal.Zero
	if req.HasPpn {
		ppn = clampAmount(req.PpnNominal)
	}
	hasVAT := req.HasPpn && ppn.Sign() > 0

	features := coding.ExtractQuery(req.Keterangan, s.params)
	pruned := coding.PruneTokens(features.Tokens, s.params.PruneTokenCount)

	voters := s.retrieveVoters(ctx, dir, features, pruned)
	tally := coding.TallyVotes(voters, hasVAT, req.SeedAkun, s.params)

	cashModel := s.models.Get(ctx, dir, coding.TargetCash)
	counterModel := s.models.Get(ctx, dir, coding.TargetCounterpart)
	queryFeatures := features.FeatureCounts()

	journalVotes := s.retrieveJournalVotes(ctx, dir, pruned)

	cashScores := coding.Combine(tally.Cash, journalVotes.Cash, cashModel.Score(queryFeatures), s.params)
	counterScores := coding.Combine(tally.Counterpart, journalVotes.Counterpart, counterModel.Score(queryFeatures), s.params)

	// Frequency fallback: with zero evidence the most common historical
	// account is still a better draft than an empty field. Score 0 keeps
	// the confidence at 0.
	if len(cashScores) == 0 {
		if label := cashModel.MostFrequentLabel(); label != "" {
			cashScores = []coding.ScoredAccount{{Account: label}}
		}
	}
	if len(counterScores) == 0 {
		if label := counterModel.MostFrequentLabel(); label != "" {
			counterScores = []coding.ScoredAccount{{Account: label}}
		}
	}

	resp := &SuggestionResponse{
		PpnJenis:   vatSide(dir),
		Keterangan: defaultRemark(voters, dir),
		Confidence: map[string]float64{},
	}
	if len(cashScores) > 0 {
		resp.KodeAkun = cashScores[0].Account
	}
	resp.VoucherType, _ = topVote(tally.VoucherType)

	vatScores := voteScores(tally.VAT)
	if hasVAT && len(vatScores) > 0 {
		resp.PpnAkun = vatScores[0].Account
	}

	maxLines := 3
	if hasVAT {
		maxLines = 2
	}
	dpp := nominal.Sub(ppn)
	for _, line := range coding.Allocate(dpp, counterScores, tally, dir, maxLines) {
		resp.Lines = append(resp.Lines, SuggestionLine{
			Akun:    line.Account,
			Jenis:   line.Side,
			Nominal: line.Amount,
		})
	}

	cashConf := coding.Confidence(cashScores)
	lawanConf := coding.Confidence(counterScores)
	resp.Confidence["cash"] = cashConf
	resp.Confidence["lawan"] = lawanConf
	resp.Confidence["ppn"] = coding.Confidence(vatScores)
	resp.Confidence["overall"] = (cashConf + lawanConf) / 2

	resp.Evidence = buildEvidence(voters, journalVotes.Matches, s.params.EvidenceLimit)
	resp.cashCandidates = cashScores
	resp.lawanCandidates = counterScores
	resp.normalizedQuery = features.Normalized

	s.logger.Debug("suggestion computed",
		zap.String("mode", string(dir)),
		zap.Int("voters", len(voters)),
		zap.Int("journal_matches", len(journalVotes.Matches)),
		zap.String("kode_akun", resp.KodeAkun),
		zap.Float64("overall", resp.Confidence["overall"]),
	)
	return resp
}

// retrieveVoters loads, ranks and truncates the candidate window. A token
// query that comes back empty retries with direction-only filtering so rare
// wording still gets the general recent history as weak voters.
func (s *SuggestionService) retrieveVoters(ctx context.Context, dir coding.Direction, features coding.QueryFeatures, pruned []string) []coding.RatedEntry {
	if !s.caps.CashHistory {
		return nil
	}

	candidates, err := s.cash.FindCandidates(ctx, dir, pruned, s.params.CandidateWindow)
	if err != nil {
		s.logger.Warn("cash history read failed", zap.Error(err))
		return nil
	}
	if len(candidates) == 0 && len(pruned) > 0 {
		candidates, err = s.cash.FindByDirection(ctx, dir, s.params.CandidateWindow)
		if err != nil {
			s.logger.Warn("cash history fallback read failed", zap.Error(err))
			return nil
		}
	}

	rated := coding.RankCandidates(features, candidates, s.params)
	if len(rated) > s.params.VoterCount {
		rated = rated[:s.params.VoterCount]
	}
	return rated
}

func (s *SuggestionService) retrieveJournalVotes(ctx context.Context, dir coding.Direction, pruned []string) *coding.JournalVotes {
	if !s.caps.JournalHistory || len(pruned) == 0 {
		return &coding.JournalVotes{}
	}

	since := s.now().AddDate(0, -s.params.JournalMonths, 0)
	entries, err := s.journal.FindByTokens(ctx, pruned, since, s.params.JournalWindow)
	if err != nil {
		s.logger.Warn("journal history read failed", zap.Error(err))
		return &coding.JournalVotes{}
	}
	return coding.TallyJournalVotes(entries, pruned, dir)
}

func buildEvidence(voters []coding.RatedEntry, matches []coding.JournalMatch, limit int) []EvidenceItem {
	evidence := make([]EvidenceItem, 0, limit)
	for _, v := range voters {
		if len(evidence) >= limit {
			return evidence
		}
		if v.Score <= 0 {
			break
		}
		evidence = append(evidence, EvidenceItem{
			Source:     "kas",
			Ref:        v.Entry.VoucherCode,
			Keterangan: v.Entry.Description,
			Score:      v.Score,
		})
	}
	for _, m := range matches {
		if len(evidence) >= limit {
			break
		}
		evidence = append(evidence, EvidenceItem{
			Source:     "jurnal",
			Ref:        m.Entry.Code,
			Keterangan: m.Entry.Remark,
			Score:      m.NormalizedScore(),
		})
	}
	return evidence
}

// defaultRemark reuses the best voter's original wording, falling back to a
// generic remark per direction.
func defaultRemark(voters []coding.RatedEntry, dir coding.Direction) string {
	if len(voters) > 0 && voters[0].Score > 0 && voters[0].Entry.Description != "" {
		return voters[0].Entry.Description
	}
	if dir == coding.DirectionIn {
		return defaultRemarkIn
	}
	return defaultRemarkOut
}

// vatSide is fixed by double-entry bookkeeping: outgoing cash books input
// VAT as a debit, incoming cash books output VAT as a credit.
func vatSide(dir coding.Direction) string {
	if dir == coding.DirectionIn {
		return coding.SideKredit
	}
	return coding.SideDebit
}

// voteScores turns a raw vote map into the normalized, sorted form the
// confidence margin expects.
func voteScores(votes map[string]float64) []coding.ScoredAccount {
	max := 0.0
	for _, w := range votes {
		if w > max {
			max = w
		}
	}
	if max == 0 {
		return nil
	}
	scores := make([]coding.ScoredAccount, 0, len(votes))
	for acc, w := range votes {
		if w <= 0 {
			continue
		}
		scores = append(scores, coding.ScoredAccount{Account: acc, Score: w / max})
	}
	sortScored(scores)
	return scores
}

func sortScored(scores []coding.ScoredAccount) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Account < scores[j].Account
	})
}

func topVote(votes map[string]float64) (string, float64) {
	best, bestWeight := "", 0.0
	for key, w := range votes {
		if w > bestWeight || (w == bestWeight && w > 0 && key < best) {
			best, bestWeight = key, w
		}
	}
	return best, bestWeight
}

func clampAmount(d decimal.Decimal) decimal.Decimal {
	if d.Sign() < 0 {
		return decimal.Zero
	}
	return d
}
