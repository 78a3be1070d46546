package common

import (
	"strings"
	"unicode"
)

// minSimilarity is the lowest normalized score Suggest accepts.
const minSimilarity = 0.6

// Levenshtein computes the edit distance between two strings: the minimum
// number of single-byte insertions, deletions or substitutions turning a into b.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	if len(a) == 0 {
		return len(b)
	}

	if len(b) == 0 {
		return len(a)
	}

	// Keep a as the shorter string so the rows stay small.
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}

			curr[i] = min(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[len(a)]
}

// Similarity returns 1 - distance/maxLen of the normalized identifiers, so
// "FooBucket", "foo_bucket" and "foo-bucket" all score 1.0 against each other.
func Similarity(a, b string) float64 {
	a, b = NormalizeIdent(a), NormalizeIdent(b)
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	return 1.0 - float64(Levenshtein(a, b))/float64(max(len(a), len(b)))
}

// NormalizeIdent case-folds an identifier and strips separators.
func NormalizeIdent(s string) string {
	var b strings.Builder

	for _, r := range s {
		if r == '_' || r == '-' || r == '.' || unicode.IsSpace(r) {
			continue
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// Suggest returns the candidate most similar to name, or "" when none is
// close enough. Ties go to the earlier candidate.
func Suggest(name string, candidates []string) string {
	best, bestScore := "", minSimilarity

	for _, c := range candidates {
		if c == name {
			continue
		}

		if score := Similarity(name, c); score > bestScore || (score == bestScore && best == "") {
			best, bestScore = c, score
		}
	}

	return best
}

// DidYouMean formats Suggest's result as an error message suffix.
func DidYouMean(name string, candidates []string) string {
	if s := Suggest(name, candidates); s != "" {
		return " (did you mean '" + s + "'?)"
	}

	return ""
}
