// Package dedup detects records that likely describe the same person.
//
// Records carry a name, an email and an optional phone number. Every field has
// its own similarity heuristic, pairs are scored from the three field scores,
// and records are clustered into duplicate groups for an operator to review.
// Everything here is pure and allocation-local, so all functions are safe for
// concurrent use.
package dedup

import (
	"strings"
	"unicode/utf8"
)

// LevenshteinDistance returns the minimum number of single-character
// insertions, deletions and substitutions needed to turn a into b.
// The comparison is case-insensitive and counts runes, not bytes.
func LevenshteinDistance(a, b string) int {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))

	// matrix[i][j] is the distance between ra[:i] and rb[:j]
	matrix := make([][]int, len(ra)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(rb)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(rb); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				matrix[i][j] = matrix[i-1][j-1]
				continue
			}
			matrix[i][j] = 1 + min(
				matrix[i-1][j-1], // substitution
				matrix[i][j-1],   // insertion
				matrix[i-1][j],   // deletion
			)
		}
	}

	return matrix[len(ra)][len(rb)]
}

// StringSimilarity returns 1 - distance/maxLength, a score in [0,1].
// Two empty strings are identical by convention; an empty string never
// resembles a non-empty one.
func StringSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	maxLength := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLength == 0 {
		return 1
	}

	return 1 - float64(LevenshteinDistance(a, b))/float64(maxLength)
}
