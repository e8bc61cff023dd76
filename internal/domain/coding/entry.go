// Package coding implements the cash-voucher coding assistant: given a
// free-text transaction description it suggests the cash/bank account, the
// counterpart accounts and the amount split, learned from the organization's
// own posted vouchers and journals.
package coding

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the direction of the cash movement.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Debit/credit markers as stored on voucher lines.
const (
	SideDebit  = "Debit"
	SideKredit = "Kredit"
)

// CounterpartSlot is one of the up to three counterpart legs of a posted
// cash-voucher row.
type CounterpartSlot struct {
	Account string
	Amount  decimal.Decimal
	Side    string
}

// CashEntry is one posted cash-voucher line from history. Amount is signed:
// positive means money in, negative means money out.
type CashEntry struct {
	VoucherCode string
	Amount      decimal.Decimal
	Description string
	CashAccount string
	Slots       [3]CounterpartSlot
	PostedAt    time.Time
}

// Direction derives the movement direction from the signed amount.
func (e CashEntry) Direction() Direction {
	if e.Amount.Sign() < 0 {
		return DirectionOut
	}
	return DirectionIn
}

// JournalDetail is one line of a general-ledger journal.
type JournalDetail struct {
	Account string
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

// JournalEntry is a general-ledger journal header with its detail lines.
// Used only as a secondary evidence source when cash-voucher history is
// sparse for the input wording.
type JournalEntry struct {
	Code       string
	VoucherRef string
	Remark     string
	PostedAt   time.Time
	Details    []JournalDetail
}

// CashHistoryRepository reads posted cash-voucher history. All reads are
// bounded and read-only.
type CashHistoryRepository interface {
	// FindCandidates returns the most recent rows matching the direction
	// whose description contains at least one of the given tokens. An empty
	// token slice means direction-only filtering.
	FindCandidates(ctx context.Context, dir Direction, tokens []string, limit int) ([]CashEntry, error)
	// FindByDirection returns the most recent rows matching the direction.
	FindByDirection(ctx context.Context, dir Direction, limit int) ([]CashEntry, error)
}

// JournalHistoryRepository reads general-ledger journal history.
type JournalHistoryRepository interface {
	// FindByTokens returns journals posted after since whose remark, voucher
	// reference or code contains any of the given tokens.
	FindByTokens(ctx context.Context, tokens []string, since time.Time, limit int) ([]JournalEntry, error)
}

// SourceCapabilities describes which optional parts of the historical schema
// exist in this deployment. Probed once at startup; voters receiving a false
// flag contribute empty votes instead of failing.
type SourceCapabilities struct {
	CashHistory       bool `json:"cash_history"`
	JournalHistory    bool `json:"journal_history"`
	JournalRemark     bool `json:"journal_remark"`
	JournalVoucherRef bool `json:"journal_voucher_ref"`
}

// ModelCache stores trained Naive Bayes models with a time-based expiry.
// Implementations need not lock against concurrent misses: the model is a
// pure function of immutable history, so redundant rebuilds are harmless.
type ModelCache interface {
	Get(ctx context.Context, key string) (*Model, bool)
	Set(ctx context.Context, key string, model *Model, ttl time.Duration)
}

// Params holds the tunable constants of the suggestion engine. The defaults
// are the empirically fixed values the engine was calibrated with; they are
// kept as configuration so they can be tuned and tested independently.
type Params struct {
	BM25K1 float64
	BM25B  float64

	// LexicalWeight and TrigramWeight blend normalized BM25 with trigram
	// Jaccard into the per-candidate relevance score.
	LexicalWeight float64
	TrigramWeight float64

	// Ensemble weights. KNNWeight + JournalWeight + BayesWeight must sum
	// to 1.
	KNNWeight     float64
	JournalWeight float64
	BayesWeight   float64

	CandidateWindow int
	VoterCount      int
	PruneTokenCount int

	JournalWindow int
	JournalMonths int

	QueryTokenLimit   int
	DocTokenLimit     int
	TrigramLimit      int
	SeedBonus         float64
	BayesBuckets      int
	CashLabels        int
	CounterpartLabels int
	TrainingWindow    int
	ModelTTL          time.Duration

	EvidenceLimit int
}

// DefaultParams returns the calibrated engine constants.
func DefaultParams() Params {
	return Params{
		BM25K1:            1.2,
		BM25B:             0.75,
		LexicalWeight:     0.7,
		TrigramWeight:     0.3,
		KNNWeight:         0.60,
		JournalWeight:     0.15,
		BayesWeight:       0.25,
		CandidateWindow:   800,
		VoterCount:        40,
		PruneTokenCount:   6,
		JournalWindow:     220,
		JournalMonths:     30,
		QueryTokenLimit:   24,
		DocTokenLimit:     32,
		TrigramLimit:      64,
		SeedBonus:         1.5,
		BayesBuckets:      4096,
		CashLabels:        20,
		CounterpartLabels: 300,
		TrainingWindow:    5000,
		ModelTTL:          6 * time.Hour,
		EvidenceLimit:     6,
	}
}
