package utils

import (
	"strconv"
	"strings"
)

// IsDigit checks whether the provided string represents an integer.
//
// Args:
//   - strnum: The string to check.
//
// Returns:
//   - bool: True if the string parses as a base-10 integer, otherwise false.
func IsDigit(strnum string) bool {
	_, err := strconv.ParseInt(strnum, 10, 64)
	return err == nil
}

// SplitTextIntoChunks splits the provided text into chunks of at most chunkSize runes.
//
// The function prefers to break at a newline, then at a space, so that words are
// kept intact whenever possible. A single word longer than chunkSize is split
// mid-word. Useful for texts exceeding the message length limit of the Bot API.
//
// Args:
//   - text: The text to split into chunks.
//   - chunkSize: The maximum size of each chunk in runes.
//
// Returns:
//   - []string: A slice of strings representing the chunks.
func SplitTextIntoChunks(text string, chunkSize int) (chunks []string) {
	if chunkSize < 1 {
		return []string{text}
	}

	runes := []rune(text)
	for len(runes) > 0 {
		if len(runes) <= chunkSize {
			chunks = append(chunks, string(runes))
			break
		}

		cut := chunkSize
		if idx := lastIndexOf(runes[:chunkSize+1], '\n'); idx > 0 {
			cut = idx
		} else if idx := lastIndexOf(runes[:chunkSize+1], ' '); idx > 0 {
			cut = idx
		}

		chunks = append(chunks, strings.TrimRight(string(runes[:cut]), " \n"))
		runes = runes[cut:]
		for len(runes) > 0 && (runes[0] == ' ' || runes[0] == '\n') {
			runes = runes[1:]
		}
	}

	return
}

// lastIndexOf returns the index of the last occurrence of sep, or -1.
func lastIndexOf(runes []rune, sep rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == sep {
			return i
		}
	}

	return -1
}
