package coding

import "github.com/shopspring/decimal"

// AllocationLine is one suggested booking line against a counterpart
// account.
type AllocationLine struct {
	Account string
	Side    string
	Amount  decimal.Decimal
}

// Allocate splits the taxable target amount across the selected counterpart
// accounts using the tally's learned ratios, normalized to sum to 1. Every
// line is rounded to 2 decimal places except the last, which receives the
// remainder, so the lines always sum exactly to the rounded target. Lines
// whose ratio collapses to zero are dropped. The debit/credit side comes
// from the tally, defaulting to Debit for outgoing cash and Kredit for
// incoming when no tally exists.
func Allocate(target decimal.Decimal, picks []ScoredAccount, tally *VoteTally, dir Direction, maxLines int) []AllocationLine {
	if target.Sign() < 0 {
		target = decimal.Zero
	}
	target = target.Round(2)

	if len(picks) > maxLines {
		picks = picks[:maxLines]
	}
	if len(picks) == 0 {
		return nil
	}

	ratios := make([]float64, len(picks))
	total := 0.0
	for i, pick := range picks {
		ratios[i] = tally.Ratio(pick.Account)
		total += ratios[i]
	}
	if total == 0 {
		// No ratio signal at all: everything goes to the first account.
		ratios[0], total = 1, 1
	}

	lines := make([]AllocationLine, 0, len(picks))
	allocated := decimal.Zero
	lastIdx := -1
	for i := range picks {
		if ratios[i] > 0 {
			lastIdx = i
		}
	}
	for i, pick := range picks {
		if ratios[i] == 0 {
			continue
		}
		var amount decimal.Decimal
		if i == lastIdx {
			amount = target.Sub(allocated)
		} else {
			amount = target.Mul(decimal.NewFromFloat(ratios[i] / total)).Round(2)
			allocated = allocated.Add(amount)
		}
		lines = append(lines, AllocationLine{
			Account: pick.Account,
			Side:    lineSide(tally, pick.Account, dir),
			Amount:  amount,
		})
	}
	return lines
}

func lineSide(tally *VoteTally, account string, dir Direction) string {
	if side := tally.Side(account); side != "" {
		return side
	}
	if dir == DirectionOut {
		return SideDebit
	}
	return SideKredit
}
