package coding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineBlendsSources(t *testing.T) {
	p := DefaultParams()
	knn := map[string]float64{"1103AA": 2.0, "1101AA": 1.0}
	journal := map[string]float64{"1101AA": 3.0}
	bayes := map[string]float64{"1103AA": 0.8, "1102AA": 0.2}

	combined := Combine(knn, journal, bayes, p)
	require.Len(t, combined, 3)

	byAccount := make(map[string]float64)
	for _, s := range combined {
		byAccount[s.Account] = s.Score
	}
	// 1103AA: knn 1.0 normalized, bayes 1.0 normalized.
	assert.InDelta(t, p.KNNWeight+p.BayesWeight, byAccount["1103AA"], 1e-9)
	// 1101AA: knn 0.5, journal 1.0.
	assert.InDelta(t, 0.5*p.KNNWeight+p.JournalWeight, byAccount["1101AA"], 1e-9)
	// 1102AA: bayes 0.25 only.
	assert.InDelta(t, 0.25*p.BayesWeight, byAccount["1102AA"], 1e-9)

	assert.Equal(t, "1103AA", combined[0].Account)
}

func TestCombineAllSourcesEmpty(t *testing.T) {
	assert.Empty(t, Combine(nil, nil, nil, DefaultParams()))
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name     string
		scores   []ScoredAccount
		expected float64
	}{
		{
			name:     "no candidates",
			scores:   nil,
			expected: 0,
		},
		{
			name:     "single candidate is fully confident",
			scores:   []ScoredAccount{{Account: "a", Score: 0.8}},
			expected: 0.8,
		},
		{
			name: "margin between top two",
			scores: []ScoredAccount{
				{Account: "a", Score: 0.9},
				{Account: "b", Score: 0.3},
			},
			expected: 0.6,
		},
		{
			name: "identical scores give zero margin",
			scores: []ScoredAccount{
				{Account: "a", Score: 0.5},
				{Account: "b", Score: 0.5},
			},
			expected: 0,
		},
		{
			name:     "zero top score",
			scores:   []ScoredAccount{{Account: "a", Score: 0}},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Confidence(tt.scores)
			assert.InDelta(t, tt.expected, c, 1e-9)
			assert.GreaterOrEqual(t, c, 0.0)
			assert.LessOrEqual(t, c, 1.0)
		})
	}
}

func TestNormalizeVotes(t *testing.T) {
	normalized := normalizeVotes(map[string]float64{"a": 4, "b": 1, "c": 0})
	assert.InDelta(t, 1.0, normalized["a"], 1e-9)
	assert.InDelta(t, 0.25, normalized["b"], 1e-9)
	assert.NotContains(t, normalized, "c")

	assert.Empty(t, normalizeVotes(nil))
}
