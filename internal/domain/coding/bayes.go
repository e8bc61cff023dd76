package coding

import (
	"math"
	"sort"
)

// Target selects which account a Naive Bayes model predicts.
type Target string

const (
	TargetCash        Target = "cash"
	TargetCounterpart Target = "counterpart"
)

// Model is a multinomial Naive Bayes classifier over a fixed-width hashed
// feature space, trained per (direction, target) pair from historical
// cash-voucher rows. It is a pure function of immutable history and is
// cached with a time-based expiry; see ModelCache.
type Model struct {
	Direction Direction `json:"direction"`
	Target    Target    `json:"target"`
	Buckets   int       `json:"buckets"`

	DocCount  map[string]int `json:"doc_count"`
	TotalDocs int            `json:"total_docs"`

	// FeatureCount holds the per-label hashed bucket counts; TotalFeatures
	// is the per-label sum over all buckets.
	FeatureCount  map[string][]int `json:"feature_count"`
	TotalFeatures map[string]int   `json:"total_features"`
}

// TrainModel builds a model from historical rows for one (direction, target)
// pair. The label set is restricted to the most frequent accounts seen
// (CashLabels for cash, CounterpartLabels for counterpart). On the
// counterpart target a row with several qualifying slots supervises each of
// their labels.
func TrainModel(entries []CashEntry, dir Direction, target Target, p Params) *Model {
	m := &Model{
		Direction:     dir,
		Target:        target,
		Buckets:       p.BayesBuckets,
		DocCount:      make(map[string]int),
		FeatureCount:  make(map[string][]int),
		TotalFeatures: make(map[string]int),
	}

	labels := frequentLabels(entries, dir, target, p)
	if len(labels) == 0 {
		return m
	}

	for _, entry := range entries {
		if entry.Direction() != dir {
			continue
		}
		features := entryFeatures(entry, p)
		if len(features) == 0 {
			continue
		}
		for _, label := range entryLabels(entry, target) {
			if _, ok := labels[label]; !ok {
				continue
			}
			m.DocCount[label]++
			m.TotalDocs++
			m.addFeatures(label, features)
		}
	}
	return m
}

// Score returns the per-label probability of the given query features,
// computed as Laplace-smoothed multinomial log-likelihoods converted to
// [0,1] via a numerically stabilized softmax.
func (m *Model) Score(features map[string]int) map[string]float64 {
	if m == nil || m.TotalDocs == 0 || len(features) == 0 {
		return nil
	}

	logScores := make(map[string]float64, len(m.DocCount))
	maxLog := math.Inf(-1)
	for label, docs := range m.DocCount {
		score := math.Log(float64(docs) / float64(m.TotalDocs))
		counts := m.FeatureCount[label]
		total := float64(m.TotalFeatures[label])
		for feature, tf := range features {
			bucket := FeatureBucket(feature, m.Buckets)
			count := 0.0
			if bucket < len(counts) {
				count = float64(counts[bucket])
			}
			score += float64(tf) * math.Log((count+1)/(total+float64(m.Buckets)))
		}
		logScores[label] = score
		if score > maxLog {
			maxLog = score
		}
	}

	sum := 0.0
	for label, score := range logScores {
		logScores[label] = math.Exp(score - maxLog)
		sum += logScores[label]
	}
	if sum > 0 {
		for label := range logScores {
			logScores[label] /= sum
		}
	}
	return logScores
}

// MostFrequentLabel returns the label with the highest training document
// count, used as the frequency-based fallback when every vote source is
// empty. Returns "" on an untrained model.
func (m *Model) MostFrequentLabel() string {
	if m == nil {
		return ""
	}
	best, bestDocs := "", 0
	for label, docs := range m.DocCount {
		if docs > bestDocs || (docs == bestDocs && (best == "" || label < best)) {
			best, bestDocs = label, docs
		}
	}
	return best
}

func (m *Model) addFeatures(label string, features map[string]int) {
	counts := m.FeatureCount[label]
	if counts == nil {
		counts = make([]int, m.Buckets)
		m.FeatureCount[label] = counts
	}
	for feature, tf := range features {
		counts[FeatureBucket(feature, m.Buckets)] += tf
		m.TotalFeatures[label] += tf
	}
}

// entryFeatures merges the token multiset and the trigram set of a row's
// description into one feature-count map.
func entryFeatures(entry CashEntry, p Params) map[string]int {
	normalized := Normalize(entry.Description)
	features := make(map[string]int)
	for token, tf := range Tokens(normalized, p.DocTokenLimit) {
		features[token] += tf
	}
	for _, gram := range Trigrams(normalized, p.TrigramLimit) {
		features[gram]++
	}
	return features
}

func entryLabels(entry CashEntry, target Target) []string {
	if target == TargetCash {
		if entry.CashAccount == "" {
			return nil
		}
		return []string{entry.CashAccount}
	}
	slots := QualifyingSlots(entry)
	labels := make([]string, 0, len(slots))
	for _, slot := range slots {
		labels = append(labels, slot.Account)
	}
	return labels
}

// frequentLabels returns the top-N labels by occurrence for the target.
func frequentLabels(entries []CashEntry, dir Direction, target Target, p Params) map[string]struct{} {
	limit := p.CashLabels
	if target == TargetCounterpart {
		limit = p.CounterpartLabels
	}

	counts := make(map[string]int)
	for _, entry := range entries {
		if entry.Direction() != dir {
			continue
		}
		for _, label := range entryLabels(entry, target) {
			counts[label]++
		}
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})
	if len(labels) > limit {
		labels = labels[:limit]
	}

	set := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		set[label] = struct{}{}
	}
	return set
}
