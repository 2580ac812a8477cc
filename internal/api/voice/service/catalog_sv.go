package voiceService

import (
	"MediVoice/internal/entity"
	"MediVoice/pkg/command"
	contextPkg "MediVoice/pkg/context"
	"MediVoice/pkg/locale"
	"MediVoice/pkg/nlp"
	"MediVoice/pkg/redis"
	"context"
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

const catalogCacheKey = "voice:catalog:v1"

type catalog struct {
	global   []nlp.CommandDefinition
	contexts map[string][]nlp.CommandDefinition
	matcher  *nlp.Matcher
	resolver *command.ContextResolver
}

func builtinCatalog() *catalog {
	return compileCatalog(command.DefaultTable(), command.DefaultContextTable())
}

func compileCatalog(global []nlp.CommandDefinition, contexts map[string][]nlp.CommandDefinition) *catalog {
	return &catalog{
		global:   global,
		contexts: contexts,
		matcher:  nlp.NewMatcher(global),
		resolver: command.NewContextResolver(contexts),
	}
}

func (s *voiceService) currentCatalog() *catalog {
	return s.catalog.Load()
}

// ReloadCatalog rebuilds the command catalog from stored keywords. The
// built-in catalog stays active when storage cannot be read.
func (s *voiceService) ReloadCatalog(ctx context.Context) error {
	requestID := contextPkg.GetRequestID(ctx)

	rows, err := s.loadKeywords(ctx)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Falling back to built-in command catalog")
		s.catalog.Store(builtinCatalog())
		return err
	}

	s.catalog.Store(buildCatalog(rows, s.log))

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"keywords":   len(rows),
	}).Info("Command catalog loaded")
	return nil
}

func (s *voiceService) loadKeywords(ctx context.Context) ([]entity.CommandKeyword, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if s.cache != nil {
		var cached []entity.CommandKeyword
		err := s.cache.GetJSON(ctx, catalogCacheKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to read cached command catalog")
		}
	}

	if s.voiceRepo == nil {
		return nil, nil
	}

	repo, err := s.voiceRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	rows, err := repo.Keywords.ListActiveKeywords(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, catalogCacheKey, rows, s.config.CatalogTTL); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to cache command catalog")
		}
	}

	return rows, nil
}

func (s *voiceService) invalidateCatalog(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, catalogCacheKey); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to invalidate cached command catalog")
	}
}

// buildCatalog layers stored keywords over the built-in tables. Keywords
// for a known action extend it; new context actions are appended after the
// built-ins. Global rows must name a built-in action.
func buildCatalog(rows []entity.CommandKeyword, log logrus.FieldLogger) *catalog {
	global := cloneDefinitions(command.DefaultTable())
	contexts := make(map[string][]nlp.CommandDefinition)
	for route, defs := range command.DefaultContextTable() {
		contexts[route] = cloneDefinitions(defs)
	}

	sorted := append([]entity.CommandKeyword(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	for _, row := range sorted {
		if reason := invalidKeyword(row); reason != "" {
			log.WithFields(logrus.Fields{
				"keyword_id": row.ID,
				"action":     row.Action,
				"reason":     reason,
			}).Warn("Skipping stored command keyword")
			continue
		}

		action := nlp.Action(strings.ToUpper(strings.TrimSpace(row.Action)))
		l := locale.Locale(row.Locale)
		keyword := strings.TrimSpace(row.Keyword)

		if row.Route == "" {
			global = mergeKeyword(global, action, l, keyword)
			continue
		}
		contexts[row.Route] = mergeKeyword(contexts[row.Route], action, l, keyword)
	}

	return compileCatalog(global, contexts)
}

func invalidKeyword(row entity.CommandKeyword) string {
	switch {
	case strings.TrimSpace(row.Action) == "":
		return "missing action"
	case !locale.Locale(row.Locale).IsSupported():
		return "unsupported locale"
	case utf8.RuneCountInString(nlp.Normalize(row.Keyword)) <= 2:
		return "keyword too short"
	case row.Route == "" && !command.IsGlobalAction(strings.ToUpper(strings.TrimSpace(row.Action))):
		return "unknown global action"
	case row.Route != "" && !strings.HasPrefix(row.Route, "/"):
		return "invalid route"
	}
	return ""
}

func mergeKeyword(defs []nlp.CommandDefinition, action nlp.Action, l locale.Locale, keyword string) []nlp.CommandDefinition {
	normalized := nlp.Normalize(keyword)
	for i := range defs {
		if defs[i].Action != action {
			continue
		}
		for _, existing := range defs[i].Keywords[l] {
			if nlp.Normalize(existing) == normalized {
				return defs
			}
		}
		defs[i].Keywords[l] = append(defs[i].Keywords[l], keyword)
		return defs
	}

	return append(defs, nlp.CommandDefinition{
		Action:   action,
		Keywords: map[locale.Locale][]string{l: {keyword}},
	})
}

func cloneDefinitions(defs []nlp.CommandDefinition) []nlp.CommandDefinition {
	out := make([]nlp.CommandDefinition, len(defs))
	for i, def := range defs {
		keywords := make(map[locale.Locale][]string, len(def.Keywords))
		for l, list := range def.Keywords {
			keywords[l] = append([]string(nil), list...)
		}
		out[i] = nlp.CommandDefinition{Action: def.Action, Keywords: keywords}
	}
	return out
}
