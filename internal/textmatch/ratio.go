// Package textmatch provides the similarity scoring used by fuzzy file
// resolution and fuzzy snippet patching. Scores are integers from 0 (no
// similarity) to 100 (identical).
package textmatch

// Ratio computes a similarity score between two strings.
//
// The score is derived from an edit distance where insertions and
// deletions cost 1 and substitutions cost 2, normalised by the combined
// length: ratio = 100 * (len(a)+len(b) - distance) / (len(a)+len(b)).
// Substitution cost 2 makes the measure equivalent to counting matched
// characters in the best alignment, so transposed or partially rewritten
// lines still score high while unrelated text scores near zero.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}

	ra := []rune(a)
	rb := []rune(b)
	lensum := len(ra) + len(rb)
	if lensum == 0 {
		return 100
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	dist := weightedDistance(ra, rb)

	// Round to nearest integer.
	return (100*(lensum-dist) + lensum/2) / lensum
}

// weightedDistance computes edit distance with substitution cost 2 using
// two rolling rows, so memory stays proportional to the shorter string.
func weightedDistance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 2
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minOf(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution or match
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func minOf(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
