package coding

import "strings"

// VoteTally accumulates the weighted votes of the top-ranked historical
// candidates. Weights are the voters' blended lexical scores.
type VoteTally struct {
	Cash        map[string]float64
	VoucherType map[string]float64
	VAT         map[string]float64
	Counterpart map[string]float64

	// sideWeight tracks, per counterpart account, how much vote weight went
	// to each debit/credit side.
	sideWeight map[string]map[string]float64
	// ratioSum and ratioWeight track the weighted allocation ratio per
	// counterpart account (slot amount over the row's qualifying total).
	ratioSum    map[string]float64
	ratioWeight map[string]float64
}

// NewVoteTally returns an empty tally.
func NewVoteTally() *VoteTally {
	return &VoteTally{
		Cash:        make(map[string]float64),
		VoucherType: make(map[string]float64),
		VAT:         make(map[string]float64),
		Counterpart: make(map[string]float64),
		sideWeight:  make(map[string]map[string]float64),
		ratioSum:    make(map[string]float64),
		ratioWeight: make(map[string]float64),
	}
}

// TallyVotes aggregates the votes of the given voters. hasVAT gates the VAT
// accumulator to requests that actually carry VAT. A non-empty seedAccount
// (carried over from an upstream document) receives a fixed bonus vote on
// the cash accumulator to bias ties toward continuity.
func TallyVotes(voters []RatedEntry, hasVAT bool, seedAccount string, p Params) *VoteTally {
	tally := NewVoteTally()

	for _, v := range voters {
		if v.Score <= 0 {
			continue
		}
		tally.addVoter(v, hasVAT)
	}

	if seedAccount != "" {
		tally.Cash[seedAccount] += p.SeedBonus
	}
	return tally
}

func (t *VoteTally) addVoter(v RatedEntry, hasVAT bool) {
	w := v.Score
	entry := v.Entry

	if entry.CashAccount != "" {
		t.Cash[entry.CashAccount] += w
	}
	if tag := VoucherTypeTag(entry.VoucherCode); tag != "" {
		t.VoucherType[tag] += w
	}

	vatIdx := InferVATSlot(entry)
	if hasVAT && vatIdx >= 0 && entry.Slots[vatIdx].Account != "" {
		t.VAT[entry.Slots[vatIdx].Account] += w
	}

	qualifying := QualifyingSlots(entry)
	total := 0.0
	for _, slot := range qualifying {
		amt, _ := slot.Amount.Abs().Float64()
		total += amt
	}
	for _, slot := range qualifying {
		t.Counterpart[slot.Account] += w

		if t.sideWeight[slot.Account] == nil {
			t.sideWeight[slot.Account] = make(map[string]float64)
		}
		t.sideWeight[slot.Account][slot.Side] += w

		if total > 0 {
			amt, _ := slot.Amount.Abs().Float64()
			t.ratioSum[slot.Account] += w * (amt / total)
			t.ratioWeight[slot.Account] += w
		}
	}
}

// Ratio returns the learned allocation ratio for a counterpart account, or 0
// when no voter carried a ratio signal for it.
func (t *VoteTally) Ratio(account string) float64 {
	if t.ratioWeight[account] == 0 {
		return 0
	}
	return t.ratioSum[account] / t.ratioWeight[account]
}

// Side returns the debit/credit side that accumulated the larger weight for
// a counterpart account, or "" when no tally exists.
func (t *VoteTally) Side(account string) string {
	best, bestWeight := "", 0.0
	for side, weight := range t.sideWeight[account] {
		if weight > bestWeight || (weight == bestWeight && side < best) {
			best, bestWeight = side, weight
		}
	}
	return best
}

// VoucherTypeTag extracts the type marker embedded in a voucher code of the
// form prefix/TYPE/number, e.g. "BKK/TUNAI/0418" -> "TUNAI". Returns "" when
// the code carries no marker.
func VoucherTypeTag(code string) string {
	parts := strings.Split(code, "/")
	if len(parts) < 3 {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(parts[1]))
}
