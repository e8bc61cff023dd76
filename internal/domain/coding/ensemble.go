package coding

import (
	"math"
	"sort"
)

// ScoredAccount is one candidate account with its final ensemble score.
type ScoredAccount struct {
	Account string
	Score   float64
}

// Combine normalizes each vote source to [0,1] and linearly blends them with
// the ensemble weights, over the union of accounts appearing in any source.
// The result is sorted by score, best first; ties break by account code so
// repeated calls are stable.
func Combine(knn, journal, bayes map[string]float64, p Params) []ScoredAccount {
	knnNorm := normalizeVotes(knn)
	journalNorm := normalizeVotes(journal)
	bayesNorm := normalizeVotes(bayes)

	union := make(map[string]struct{})
	for acc := range knnNorm {
		union[acc] = struct{}{}
	}
	for acc := range journalNorm {
		union[acc] = struct{}{}
	}
	for acc := range bayesNorm {
		union[acc] = struct{}{}
	}

	combined := make([]ScoredAccount, 0, len(union))
	for acc := range union {
		combined = append(combined, ScoredAccount{
			Account: acc,
			Score:   p.KNNWeight*knnNorm[acc] + p.JournalWeight*journalNorm[acc] + p.BayesWeight*bayesNorm[acc],
		})
	}
	sort.SliceStable(combined, func(i, j int) bool {
		if combined[i].Score != combined[j].Score {
			return combined[i].Score > combined[j].Score
		}
		return combined[i].Account < combined[j].Account
	})
	return combined
}

// Confidence is the normalized margin between the best and second-best
// score: max(0, min(1, (top1-top2)/max(|top1|,1))). Zero when there is no
// candidate or the best score is not positive.
func Confidence(scores []ScoredAccount) float64 {
	if len(scores) == 0 || scores[0].Score <= 0 {
		return 0
	}
	top1 := scores[0].Score
	top2 := 0.0
	if len(scores) > 1 {
		top2 = scores[1].Score
	}
	margin := (top1 - top2) / math.Max(math.Abs(top1), 1)
	return math.Max(0, math.Min(1, margin))
}

// normalizeVotes scales a vote map by its maximum into [0,1].
func normalizeVotes(votes map[string]float64) map[string]float64 {
	maxVote := 0.0
	for _, v := range votes {
		if v > maxVote {
			maxVote = v
		}
	}
	if maxVote == 0 {
		return map[string]float64{}
	}
	normalized := make(map[string]float64, len(votes))
	for acc, v := range votes {
		if v <= 0 {
			continue
		}
		normalized[acc] = v / maxVote
	}
	return normalized
}
