package nlp

import "MediVoice/pkg/locale"

type Action string

const Unknown Action = "UNKNOWN"

type CommandDefinition struct {
	Action   Action                     `json:"action"`
	Keywords map[locale.Locale][]string `json:"keywords"`
}

type MatchResult struct {
	Action     Action  `json:"action"`
	Confidence float64 `json:"confidence"`
}

type Suggestion struct {
	Action  Action `json:"action"`
	Keyword string `json:"keyword"`
	Score   int    `json:"score"`
}

// NoMatch is returned for empty input and for anything below the similarity floor.
var NoMatch = MatchResult{Action: Unknown, Confidence: 0}

func (r MatchResult) IsUnknown() bool {
	return r.Action == Unknown
}

// Exceeds reports whether the result is a known action scored strictly above threshold.
func (r MatchResult) Exceeds(threshold float64) bool {
	return !r.IsUnknown() && r.Confidence > threshold
}

// Exact reports whether the result came from the substring pass.
func (r MatchResult) Exact() bool {
	return !r.IsUnknown() && r.Confidence == 1.0
}

type IMatcher interface {
	Match(utterance string) MatchResult
	Suggest(query string, limit int) []Suggestion
	Definitions() []CommandDefinition
}
