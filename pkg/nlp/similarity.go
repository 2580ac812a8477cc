package nlp

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	// MinFragmentLength drops tokens too short to carry meaning ("a", "i").
	MinFragmentLength = 2
	// SimilarityFloor is the lowest fuzzy score the matcher will report.
	SimilarityFloor = 0.4
	// TokenFloor is how close every keyword token must come to some
	// utterance token before the keyword scores at all.
	TokenFloor = 0.75
)

// Similarity scores two normalized strings in [0,1]. Each keyword token is
// paired with its closest utterance token, so order and extra words do not
// matter, and the score is the mean of those pairings. A keyword with any
// token left unmatched scores 0.
func Similarity(utterance, keyword string) float64 {
	uTokens := fragments(utterance)
	kTokens := fragments(keyword)
	if len(uTokens) == 0 || len(kTokens) == 0 {
		return 0
	}

	var total float64
	for _, want := range kTokens {
		best := 0.0
		for _, got := range uTokens {
			if score := ratio(got, want); score > best {
				best = score
			}
			if best == 1 {
				break
			}
		}
		if best < TokenFloor {
			return 0
		}
		total += best
	}

	return total / float64(len(kTokens))
}

func ratio(a, b string) float64 {
	if a == b {
		return 1
	}

	maxLen := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 0
	}

	distance := levenshtein.ComputeDistance(a, b)
	score := 1 - float64(distance)/float64(maxLen)
	if score < 0 {
		return 0
	}
	return score
}

func fragments(text string) []string {
	var out []string
	for _, token := range strings.Fields(text) {
		if utf8.RuneCountInString(token) >= MinFragmentLength {
			out = append(out, token)
		}
	}
	return out
}
