package runtime

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxEditDistance bounds the typo fallback when no subsequence match exists.
const maxEditDistance = 2

// findClosestMatch picks the candidate closest to target, or "" when nothing
// is close enough to suggest.
func findClosestMatch(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	// abbreviations: "cnt" -> "count"
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}

	// typos: "cuont" -> "count"
	best, bestDist := "", maxEditDistance+1
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(target, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func didYouMean(target string, candidates []string) string {
	if match := findClosestMatch(target, candidates); match != "" && match != target {
		return fmt.Sprintf("did you mean '%s'?", match)
	}
	return ""
}
