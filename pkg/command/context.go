package command

import (
	"sort"
	"strings"

	"MediVoice/pkg/nlp"
)

// ContextResolver scores utterances against the vocabulary of a single route.
type ContextResolver struct {
	matchers map[string]*nlp.Matcher
}

func NewContextResolver(table map[string][]nlp.CommandDefinition) *ContextResolver {
	matchers := make(map[string]*nlp.Matcher, len(table))
	for route, defs := range table {
		if len(defs) == 0 {
			continue
		}
		matchers[route] = nlp.NewMatcher(defs)
	}
	return &ContextResolver{matchers: matchers}
}

func (r *ContextResolver) ResolveContext(utterance, route string) nlp.MatchResult {
	m, ok := r.matchers[route]
	if !ok || strings.TrimSpace(utterance) == "" {
		return nlp.NoMatch
	}
	return m.Match(utterance)
}

// Routes lists the routes that own a vocabulary.
func (r *ContextResolver) Routes() []string {
	routes := make([]string, 0, len(r.matchers))
	for route := range r.matchers {
		routes = append(routes, route)
	}
	sort.Strings(routes)
	return routes
}

// Definitions returns the vocabulary owned by route, or nil.
func (r *ContextResolver) Definitions(route string) []nlp.CommandDefinition {
	if m, ok := r.matchers[route]; ok {
		return m.Definitions()
	}
	return nil
}
