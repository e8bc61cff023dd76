package coding

import (
	"hash/fnv"
	"regexp"
	"sort"
	"strings"
)

// Stop words dropped from token streams: Indonesian conjunctions and
// prepositions, legal-entity abbreviations, and voucher-type abbreviations
// that appear in nearly every description.
var stopWords = map[string]struct{}{
	"dan": {}, "dari": {}, "untuk": {}, "yang": {}, "pada": {},
	"dengan": {}, "atas": {}, "kepada": {}, "oleh": {}, "per": {},
	"the": {}, "and": {}, "for": {},
	"pt": {}, "cv": {}, "tbk": {}, "ud": {}, "fa": {},
	"bkk": {}, "bkm": {}, "bbk": {}, "bbm": {}, "kas": {},
}

var parentheticalPattern = regexp.MustCompile(`\(([^)]*)\)`)

// QueryFeatures is the extracted representation of an input description.
type QueryFeatures struct {
	Normalized string
	Tokens     map[string]int
	Trigrams   []string
}

// ExtractQuery derives the full feature set from the raw (pre-normalization)
// description. Parenthetical content receives emphasis weighting.
func ExtractQuery(raw string, p Params) QueryFeatures {
	normalized := Normalize(raw)
	return QueryFeatures{
		Normalized: normalized,
		Tokens:     TokensWithEmphasis(raw, p.QueryTokenLimit),
		Trigrams:   Trigrams(normalized, p.TrigramLimit),
	}
}

// FeatureCounts merges the token multiset and the trigram set into the
// feature-count map scored by the Naive Bayes model.
func (q QueryFeatures) FeatureCounts() map[string]int {
	counts := make(map[string]int, len(q.Tokens)+len(q.Trigrams))
	for token, tf := range q.Tokens {
		counts[token] += tf
	}
	for _, gram := range q.Trigrams {
		counts[gram]++
	}
	return counts
}

// Tokens splits normalized text on whitespace, drops short tokens and stop
// words, and returns term frequencies truncated to the limit
// highest-frequency tokens.
func Tokens(text string, limit int) map[string]int {
	return truncateTokens(tokenCounts(text), limit)
}

// TokensWithEmphasis tokenizes like Tokens but triples the term frequency of
// tokens that appear inside parentheses in the original text. Parenthetical
// content in these descriptions typically carries specific category tags
// that are strong discriminators.
func TokensWithEmphasis(raw string, limit int) map[string]int {
	counts := tokenCounts(Normalize(raw))
	for _, m := range parentheticalPattern.FindAllStringSubmatch(raw, -1) {
		for token, tf := range tokenCounts(Normalize(m[1])) {
			counts[token] += 2 * tf
		}
	}
	return truncateTokens(counts, limit)
}

// Trigrams concatenates the normalized tokens without spaces and emits the
// unique overlapping 3-character substrings in first-seen order, capped at
// limit.
func Trigrams(text string, limit int) []string {
	joined := strings.Join(strings.Fields(text), "")
	if len(joined) < 3 {
		return nil
	}
	seen := make(map[string]struct{})
	grams := make([]string, 0, limit)
	for i := 0; i+3 <= len(joined); i++ {
		g := joined[i : i+3]
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		grams = append(grams, g)
		if len(grams) >= limit {
			break
		}
	}
	return grams
}

// PruneTokens picks the strongest query tokens for SQL-side candidate
// pruning: longest first, then most frequent. Placeholders carry no pruning
// power and are excluded.
func PruneTokens(tokens map[string]int, n int) []string {
	keys := make([]string, 0, len(tokens))
	for t := range tokens {
		if IsPlaceholder(t) {
			continue
		}
		keys = append(keys, t)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		if tokens[keys[i]] != tokens[keys[j]] {
			return tokens[keys[i]] > tokens[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// FeatureBucket hashes a feature string into one of buckets slots. FNV-1a is
// fast, stable across process restarts, and spreads short strings well
// enough for a 4096-slot table.
func FeatureBucket(feature string, buckets int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(feature))
	return int(h.Sum32() % uint32(buckets))
}

func tokenCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, token := range strings.Fields(text) {
		if len(token) < 3 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		counts[token]++
	}
	return counts
}

func truncateTokens(counts map[string]int, limit int) map[string]int {
	if limit <= 0 || len(counts) <= limit {
		return counts
	}
	keys := make([]string, 0, len(counts))
	for t := range counts {
		keys = append(keys, t)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	kept := make(map[string]int, limit)
	for _, t := range keys[:limit] {
		kept[t] = counts[t]
	}
	return kept
}
