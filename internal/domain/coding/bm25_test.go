package coding

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cashEntry(code, description, cashAccount string, amount int64) CashEntry {
	return CashEntry{
		VoucherCode: code,
		Amount:      decimal.NewFromInt(amount),
		Description: description,
		CashAccount: cashAccount,
	}
}

func TestRankCandidatesOrdersByRelevance(t *testing.T) {
	p := DefaultParams()
	query := ExtractQuery("bayar listrik kantor pusat", p)

	candidates := []CashEntry{
		cashEntry("BKK/TUNAI/0001", "setoran tunai harian", "1101AA", -100),
		cashEntry("BKK/TUNAI/0002", "bayar listrik kantor pusat", "1103AA", -200),
		cashEntry("BKK/TUNAI/0003", "bayar air kantor", "1103AA", -300),
	}

	rated := RankCandidates(query, candidates, p)
	require.Len(t, rated, 3)
	assert.Equal(t, "BKK/TUNAI/0002", rated[0].Entry.VoucherCode)
	assert.Greater(t, rated[0].Score, rated[1].Score)
}

func TestRankCandidatesDegenerateQuery(t *testing.T) {
	p := DefaultParams()
	query := ExtractQuery("12345678", p)

	candidates := []CashEntry{
		cashEntry("BKK/TUNAI/0001", "setoran tunai harian", "1101AA", -100),
	}
	rated := RankCandidates(query, candidates, p)
	require.Len(t, rated, 1)
	assert.Zero(t, rated[0].Score)
}

func TestRankCandidatesEmptyWindow(t *testing.T) {
	p := DefaultParams()
	rated := RankCandidates(ExtractQuery("bayar listrik", p), nil, p)
	assert.Empty(t, rated)
}

func TestBM25Monotonicity(t *testing.T) {
	p := DefaultParams()
	doc := map[string]int{"listrik": 2, "kantor": 1}
	df := map[string]int{"listrik": 1, "kantor": 3}

	// Raising a query term's frequency never decreases the score.
	prev := 0.0
	for qtf := 1; qtf <= 8; qtf++ {
		score := bm25Score(map[string]int{"listrik": qtf}, doc, df, 10, 3, p)
		assert.GreaterOrEqual(t, score, prev, "qtf=%d", qtf)
		prev = score
	}

	// Same for the document-side term frequency.
	prev = 0.0
	for tf := 1; tf <= 8; tf++ {
		score := bm25Score(map[string]int{"listrik": 1}, map[string]int{"listrik": tf}, df, 10, 3, p)
		assert.GreaterOrEqual(t, score, prev, "tf=%d", tf)
		prev = score
	}
}

func TestTrigramJaccard(t *testing.T) {
	query := map[string]struct{}{"aba": {}, "bab": {}}
	assert.Equal(t, 1.0, trigramJaccard(query, []string{"aba", "bab"}))
	assert.Equal(t, 0.0, trigramJaccard(query, []string{"xyz"}))
	assert.Equal(t, 0.0, trigramJaccard(nil, []string{"aba"}))
	assert.InDelta(t, 1.0/3.0, trigramJaccard(query, []string{"aba", "xyz"}), 1e-9)
}
