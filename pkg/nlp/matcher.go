package nlp

import (
	"sort"
	"strings"

	"MediVoice/pkg/locale"

	"github.com/sahilm/fuzzy"
)

type indexEntry struct {
	action  Action
	keyword string
}

type Matcher struct {
	definitions []CommandDefinition
	index       []indexEntry
	floor       float64
}

// NewMatcher indexes every keyword of every locale in table order. Keywords
// that normalize to nothing are skipped.
func NewMatcher(definitions []CommandDefinition) *Matcher {
	m := &Matcher{
		definitions: definitions,
		floor:       SimilarityFloor,
	}

	for _, def := range definitions {
		for _, keyword := range keywordsInOrder(def) {
			m.index = append(m.index, indexEntry{action: def.Action, keyword: keyword})
		}
	}

	return m
}

func (m *Matcher) Match(utterance string) MatchResult {
	text := Normalize(utterance)
	if text == "" {
		return NoMatch
	}

	for _, entry := range m.index {
		if strings.Contains(text, entry.keyword) {
			return MatchResult{Action: entry.action, Confidence: 1.0}
		}
	}

	best := NoMatch
	for _, entry := range m.index {
		score := Similarity(text, entry.keyword)
		if score > best.Confidence {
			best = MatchResult{Action: entry.action, Confidence: score}
		}
	}

	if best.Confidence < m.floor {
		return NoMatch
	}

	return best
}

func (m *Matcher) Definitions() []CommandDefinition {
	return m.definitions
}

func (m *Matcher) Suggest(query string, limit int) []Suggestion {
	text := Normalize(query)
	if text == "" || len(m.index) == 0 {
		return nil
	}

	matches := fuzzy.FindFrom(text, keywordSource(m.index))

	seen := make(map[Action]bool)
	var out []Suggestion
	for _, match := range matches {
		entry := m.index[match.Index]
		if seen[entry.action] {
			continue
		}
		seen[entry.action] = true
		out = append(out, Suggestion{
			Action:  entry.action,
			Keyword: entry.keyword,
			Score:   match.Score,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	return out
}

type keywordSource []indexEntry

func (s keywordSource) String(i int) string {
	return s[i].keyword
}

func (s keywordSource) Len() int {
	return len(s)
}

// keywordsInOrder walks locales in their fixed order so that ties resolve
// the same way on every run, then any locale outside the supported set.
func keywordsInOrder(def CommandDefinition) []string {
	var out []string
	visited := make(map[locale.Locale]bool)

	add := func(l locale.Locale) {
		visited[l] = true
		for _, kw := range def.Keywords[l] {
			if n := Normalize(kw); n != "" {
				out = append(out, n)
			}
		}
	}

	for _, l := range locale.Supported() {
		add(l)
	}
	var extra []string
	for l := range def.Keywords {
		if !visited[l] {
			extra = append(extra, string(l))
		}
	}
	sort.Strings(extra)
	for _, l := range extra {
		add(locale.Locale(l))
	}

	return out
}
