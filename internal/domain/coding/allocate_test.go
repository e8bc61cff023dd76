package coding

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tallyWithRatios(ratios map[string]float64, sides map[string]string) *VoteTally {
	tally := NewVoteTally()
	for account, ratio := range ratios {
		tally.ratioSum[account] = ratio
		tally.ratioWeight[account] = 1
	}
	for account, side := range sides {
		tally.sideWeight[account] = map[string]float64{side: 1}
	}
	return tally
}

func TestAllocateExactSum(t *testing.T) {
	tests := []struct {
		name   string
		target string
		ratios map[string]float64
		picks  []ScoredAccount
	}{
		{
			name:   "three-way uneven split",
			target: "1000000.00",
			ratios: map[string]float64{"a": 1, "b": 1, "c": 1},
			picks:  []ScoredAccount{{Account: "a", Score: 1}, {Account: "b", Score: 0.9}, {Account: "c", Score: 0.8}},
		},
		{
			name:   "rounding remainder absorbed by last line",
			target: "100.01",
			ratios: map[string]float64{"a": 2, "b": 1},
			picks:  []ScoredAccount{{Account: "a", Score: 1}, {Account: "b", Score: 0.5}},
		},
		{
			name:   "single line",
			target: "55.55",
			ratios: map[string]float64{"a": 1},
			picks:  []ScoredAccount{{Account: "a", Score: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := decimal.NewFromString(tt.target)
			require.NoError(t, err)

			lines := Allocate(target, tt.picks, tallyWithRatios(tt.ratios, nil), DirectionOut, 3)
			require.NotEmpty(t, lines)

			sum := decimal.Zero
			for _, line := range lines {
				sum = sum.Add(line.Amount)
				assert.True(t, line.Amount.Equal(line.Amount.Round(2)))
			}
			assert.True(t, sum.Equal(target.Round(2)), "sum %s != target %s", sum, target)
		})
	}
}

func TestAllocateNoRatioSignal(t *testing.T) {
	picks := []ScoredAccount{{Account: "a", Score: 1}, {Account: "b", Score: 0.5}}
	lines := Allocate(decimal.NewFromInt(900), picks, NewVoteTally(), DirectionOut, 3)
	require.Len(t, lines, 1)
	assert.Equal(t, "a", lines[0].Account)
	assert.True(t, lines[0].Amount.Equal(decimal.NewFromInt(900)))
}

func TestAllocateRespectsMaxLines(t *testing.T) {
	picks := []ScoredAccount{
		{Account: "a", Score: 1},
		{Account: "b", Score: 0.9},
		{Account: "c", Score: 0.8},
	}
	ratios := map[string]float64{"a": 1, "b": 1, "c": 1}
	lines := Allocate(decimal.NewFromInt(300), picks, tallyWithRatios(ratios, nil), DirectionOut, 2)
	assert.Len(t, lines, 2)
}

func TestAllocateSides(t *testing.T) {
	picks := []ScoredAccount{{Account: "a", Score: 1}, {Account: "b", Score: 0.5}}
	ratios := map[string]float64{"a": 1, "b": 1}
	sides := map[string]string{"a": SideKredit}

	lines := Allocate(decimal.NewFromInt(100), picks, tallyWithRatios(ratios, sides), DirectionOut, 3)
	require.Len(t, lines, 2)
	// Tallied side wins; missing tally falls back to the direction default.
	assert.Equal(t, SideKredit, lines[0].Side)
	assert.Equal(t, SideDebit, lines[1].Side)

	lines = Allocate(decimal.NewFromInt(100), picks[:1], NewVoteTally(), DirectionIn, 3)
	require.Len(t, lines, 1)
	assert.Equal(t, SideKredit, lines[0].Side)
}

func TestAllocateNegativeTarget(t *testing.T) {
	picks := []ScoredAccount{{Account: "a", Score: 1}}
	lines := Allocate(decimal.NewFromInt(-50), picks, tallyWithRatios(map[string]float64{"a": 1}, nil), DirectionOut, 3)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].Amount.IsZero())
}

func TestAllocateNoPicks(t *testing.T) {
	assert.Nil(t, Allocate(decimal.NewFromInt(100), nil, NewVoteTally(), DirectionOut, 3))
}
