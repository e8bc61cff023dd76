package coding

import (
	"math"
	"sort"
)

// RatedEntry is a historical candidate with its lexical relevance scores.
type RatedEntry struct {
	Entry   CashEntry
	Tokens  map[string]int
	BM25    float64
	Jaccard float64
	// Score is the blended relevance: LexicalWeight x (BM25 normalized by
	// the window maximum) + TrigramWeight x Jaccard.
	Score float64
}

// RankCandidates scores every candidate against the query and returns them
// sorted by blended score, best first. IDF is computed from document
// frequency within the candidate window, not a full corpus. If the query has
// no usable tokens or trigrams all scores are zero and the caller falls back
// to frequency-based defaults.
func RankCandidates(query QueryFeatures, candidates []CashEntry, p Params) []RatedEntry {
	rated := make([]RatedEntry, len(candidates))

	df := make(map[string]int)
	totalLen := 0
	for i, c := range candidates {
		tokens := Tokens(Normalize(c.Description), p.DocTokenLimit)
		rated[i] = RatedEntry{Entry: c, Tokens: tokens}
		for t := range tokens {
			df[t]++
		}
		for _, tf := range tokens {
			totalLen += tf
		}
	}
	if len(candidates) == 0 {
		return rated
	}
	avgLen := float64(totalLen) / float64(len(candidates))
	if avgLen == 0 {
		avgLen = 1
	}

	maxBM25 := 0.0
	queryGrams := make(map[string]struct{}, len(query.Trigrams))
	for _, g := range query.Trigrams {
		queryGrams[g] = struct{}{}
	}

	for i := range rated {
		rated[i].BM25 = bm25Score(query.Tokens, rated[i].Tokens, df, len(candidates), avgLen, p)
		if rated[i].BM25 > maxBM25 {
			maxBM25 = rated[i].BM25
		}
		grams := Trigrams(Normalize(rated[i].Entry.Description), p.TrigramLimit)
		rated[i].Jaccard = trigramJaccard(queryGrams, grams)
	}

	for i := range rated {
		normalized := 0.0
		if maxBM25 > 0 {
			normalized = rated[i].BM25 / maxBM25
		}
		rated[i].Score = p.LexicalWeight*normalized + p.TrigramWeight*rated[i].Jaccard
	}

	sort.SliceStable(rated, func(i, j int) bool {
		return rated[i].Score > rated[j].Score
	})
	return rated
}

// bm25Score is Okapi BM25 with a query-term weight of 1 + log(1 + tf_query)
// so emphasized tokens contribute more. The non-negative IDF variant keeps
// the score monotone in term frequency.
func bm25Score(queryTokens, docTokens map[string]int, df map[string]int, docs int, avgLen float64, p Params) float64 {
	docLen := 0
	for _, tf := range docTokens {
		docLen += tf
	}

	score := 0.0
	for term, qtf := range queryTokens {
		tf := float64(docTokens[term])
		if tf == 0 {
			continue
		}
		idf := math.Log(1 + (float64(docs)-float64(df[term])+0.5)/(float64(df[term])+0.5))
		weight := 1 + math.Log(1+float64(qtf))
		tfNorm := (tf * (p.BM25K1 + 1)) / (tf + p.BM25K1*(1-p.BM25B+p.BM25B*float64(docLen)/avgLen))
		score += weight * idf * tfNorm
	}
	return score
}

func trigramJaccard(query map[string]struct{}, doc []string) float64 {
	if len(query) == 0 || len(doc) == 0 {
		return 0
	}
	inter := 0
	docSet := make(map[string]struct{}, len(doc))
	for _, g := range doc {
		docSet[g] = struct{}{}
		if _, ok := query[g]; ok {
			inter++
		}
	}
	union := len(query) + len(docSet) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
