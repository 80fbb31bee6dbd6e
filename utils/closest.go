package utils

import (
	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// SimilarityRatio computes the similarity between two strings.
//
// Args:
//   - a: The first string.
//   - b: The second string.
//
// Returns:
//   - float64: A value between 0 (nothing in common) and 1 (identical).
func SimilarityRatio(a, b string) float64 {
	return levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
}

// Closest returns the candidate most similar to the provided word.
//
// Args:
//   - word: The word to compare against the candidates.
//   - candidates: The candidates to rank.
//
// Returns:
//   - string: The most similar candidate, empty when candidates is empty.
//   - float64: The similarity ratio of that candidate.
func Closest(word string, candidates []string) (best string, ratio float64) {
	for _, candidate := range candidates {
		if r := SimilarityRatio(word, candidate); r > ratio {
			best, ratio = candidate, r
		}
	}

	return
}
