package domain

import (
	"strings"
	"unicode/utf8"
)

// charsPerToken is the heuristic used for token estimates.
const charsPerToken = 4

// CharCount returns the character length of text in Unicode code points.
func CharCount(text string) int {
	return utf8.RuneCountInString(text)
}

// TokenCount counts the non-empty tokens left after splitting text on
// runs of whitespace. It is deterministic and locale-insensitive.
func TokenCount(text string) int {
	return len(strings.Fields(text))
}

// EstimateTokens approximates backend-billable tokens from a character count
// as ceil(chars / 4). It is a rough heuristic, not a billing figure.
func EstimateTokens(chars int) int {
	if chars <= 0 {
		return 0
	}
	return (chars + charsPerToken - 1) / charsPerToken
}
