package coding

import (
	"sort"
	"strings"
)

// Journal match scores are clamped to this band; within it a journal's score
// grows with its raw token-hit count.
const (
	journalScoreFloor   = 0.2
	journalScoreCeiling = 3.0
	journalScorePerHit  = 0.5
)

// JournalVotes is the secondary vote set mined from general-ledger journals,
// for wording not well covered by cash-voucher history.
type JournalVotes struct {
	Cash        map[string]float64
	Counterpart map[string]float64
	Matches     []JournalMatch
}

// JournalMatch records one scored journal for the evidence list.
type JournalMatch struct {
	Entry JournalEntry
	Score float64
}

// NormalizedScore maps the clamped match score onto [0, 1] for evidence lists,
// so journal evidence shares a scale with the blended lexical scores.
func (m JournalMatch) NormalizedScore() float64 {
	return m.Score / journalScoreCeiling
}

// TallyJournalVotes scores each journal 0.2-3.0 by how many query tokens its
// remark, voucher reference or code contains, and propagates that score to
// its detail-line accounts. For outgoing cash the credited accounts vote as
// cash and the debited accounts as counterpart; for incoming cash the roles
// swap.
func TallyJournalVotes(entries []JournalEntry, queryTokens []string, dir Direction) *JournalVotes {
	votes := &JournalVotes{
		Cash:        make(map[string]float64),
		Counterpart: make(map[string]float64),
	}

	for _, entry := range entries {
		hits := tokenHits(entry, queryTokens)
		if hits == 0 {
			continue
		}
		score := journalScorePerHit * float64(hits)
		if score < journalScoreFloor {
			score = journalScoreFloor
		}
		if score > journalScoreCeiling {
			score = journalScoreCeiling
		}
		votes.Matches = append(votes.Matches, JournalMatch{Entry: entry, Score: score})

		for _, detail := range entry.Details {
			if detail.Account == "" {
				continue
			}
			debited := detail.Debit.Sign() > 0
			credited := detail.Credit.Sign() > 0
			switch {
			case dir == DirectionOut && credited, dir == DirectionIn && debited:
				votes.Cash[detail.Account] += score
			case dir == DirectionOut && debited, dir == DirectionIn && credited:
				votes.Counterpart[detail.Account] += score
			}
		}
	}

	sort.SliceStable(votes.Matches, func(i, j int) bool {
		return votes.Matches[i].Score > votes.Matches[j].Score
	})
	return votes
}

func tokenHits(entry JournalEntry, queryTokens []string) int {
	haystack := strings.ToLower(entry.Remark + " " + entry.VoucherRef + " " + entry.Code)
	hits := 0
	for _, token := range queryTokens {
		if token != "" && strings.Contains(haystack, token) {
			hits++
		}
	}
	return hits
}
