package voiceService

import (
	"MediVoice/internal/api/voice"
	"MediVoice/internal/entity"
	"MediVoice/pkg/command"
	contextPkg "MediVoice/pkg/context"
	"MediVoice/pkg/locale"
	"MediVoice/pkg/nlp"
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

const acceptedFreeText = "FREE_TEXT"

// Match scores text the way a device session would without performing any
// effect. Accepted names the action a session would take.
func (s *voiceService) Match(ctx context.Context, req voice.MatchRequest) (*voice.MatchResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)
	cat := s.currentCatalog()
	cfg := s.config.Command

	text := strings.TrimSpace(req.Text)
	global := cat.matcher.Match(text)

	resp := &voice.MatchResponse{
		Input:    req.Text,
		Cleaned:  nlp.Normalize(text),
		Route:    req.Route,
		Global:   toScore(global),
		Accepted: string(nlp.Unknown),
		FreeText: s.dosage.LooksLikeAddRequest(text),
		Dosage:   s.dosage.Extract(text),
	}

	var contextual nlp.MatchResult
	if req.Route != "" {
		contextual = cat.resolver.ResolveContext(text, req.Route)
		score := toScore(contextual)
		resp.Context = &score
	}

	switch {
	case isExcluded(cfg, req.Route):
	case command.Interrupts(global):
		resp.Accepted = string(global.Action)
	case command.ContextPrecedes(contextual, global, cfg.AcceptThreshold):
		resp.Accepted = string(contextual.Action)
	case resp.FreeText:
		resp.Accepted = acceptedFreeText
	case global.Exceeds(cfg.AcceptThreshold):
		resp.Accepted = string(global.Action)
		if target, ok := command.TargetFor(string(global.Action)); ok {
			resp.Target = target
		}
	default:
		resp.Suggestions = cat.matcher.Suggest(text, 3)
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"device_id":  contextPkg.GetDeviceID(ctx),
		"route":      req.Route,
		"accepted":   resp.Accepted,
	}).Debug("Matched utterance")

	return resp, nil
}

func (s *voiceService) Commands(ctx context.Context, l locale.Locale) (*voice.CommandsResponse, error) {
	if !l.IsSupported() {
		return nil, voice.ErrUnsupportedLocale
	}

	cat := s.currentCatalog()
	resp := &voice.CommandsResponse{
		Locale:  string(l),
		Help:    command.HelpMessage(l),
		Global:  make([]voice.CommandEntry, 0, len(cat.global)),
		Context: make(map[string][]voice.CommandEntry),
	}

	for _, def := range cat.global {
		entry := toEntry(def, l)
		entry.Target, _ = command.TargetFor(string(def.Action))
		resp.Global = append(resp.Global, entry)
	}

	for _, route := range cat.resolver.Routes() {
		defs := cat.resolver.Definitions(route)
		entries := make([]voice.CommandEntry, 0, len(defs))
		for _, def := range defs {
			entries = append(entries, toEntry(def, l))
		}
		resp.Context[route] = entries
	}

	return resp, nil
}

func (s *voiceService) Suggest(ctx context.Context, query string, limit int) (*voice.SuggestResponse, error) {
	if limit <= 0 {
		limit = s.config.SuggestLimit
	}
	if limit > s.config.MaxSuggestions {
		limit = s.config.MaxSuggestions
	}

	suggestions := s.currentCatalog().matcher.Suggest(query, limit)
	if suggestions == nil {
		suggestions = []nlp.Suggestion{}
	}

	return &voice.SuggestResponse{
		Query:       query,
		Suggestions: suggestions,
	}, nil
}

func (s *voiceService) CreateKeyword(ctx context.Context, req voice.CreateKeywordRequest) (*voice.KeywordResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	l := locale.Locale(req.Locale)
	if !l.IsSupported() {
		return nil, voice.ErrUnsupportedLocale
	}
	if utf8.RuneCountInString(nlp.Normalize(req.Keyword)) <= 2 {
		return nil, voice.ErrInvalidKeyword
	}

	action := strings.ToUpper(strings.TrimSpace(req.Action))
	if req.Route == "" && !command.IsGlobalAction(action) {
		return nil, voice.ErrUnknownAction
	}

	if s.voiceRepo == nil {
		return nil, voice.ErrCatalogUnavailable
	}

	now := time.Now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate keyword id")
		return nil, err
	}

	keyword := entity.CommandKeyword{
		ID:        id,
		Action:    action,
		Route:     req.Route,
		Locale:    string(l),
		Keyword:   strings.TrimSpace(req.Keyword),
		Position:  req.Position,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	repo, err := s.voiceRepo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}
	defer repo.Rollback()

	if err := repo.Keywords.CreateKeyword(ctx, keyword); err != nil {
		return nil, err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit keyword")
		return nil, err
	}

	s.refreshCatalog(ctx)

	return &voice.KeywordResponse{
		ID:        keyword.ID,
		Action:    keyword.Action,
		Route:     keyword.Route,
		Locale:    keyword.Locale,
		Keyword:   keyword.Keyword,
		Position:  keyword.Position,
		CreatedAt: keyword.CreatedAt,
	}, nil
}

func (s *voiceService) DeactivateKeyword(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)

	if s.voiceRepo == nil {
		return voice.ErrCatalogUnavailable
	}

	repo, err := s.voiceRepo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return err
	}
	defer repo.Rollback()

	if err := repo.Keywords.DeactivateKeyword(ctx, id, time.Now()); err != nil {
		return err
	}

	if err := repo.Commit(); err != nil {
		return err
	}

	s.refreshCatalog(ctx)
	return nil
}

// refreshCatalog drops the cached catalog and rebuilds it. Sessions that
// are already connected keep the catalog they started with.
func (s *voiceService) refreshCatalog(ctx context.Context) {
	s.invalidateCatalog(ctx)
	_ = s.ReloadCatalog(ctx)
}

func isExcluded(cfg command.Config, route string) bool {
	for _, excluded := range cfg.ExcludedRoutes {
		if excluded == route {
			return true
		}
	}
	return false
}

func toScore(res nlp.MatchResult) voice.MatchScore {
	return voice.MatchScore{
		Action:     string(res.Action),
		Confidence: res.Confidence,
	}
}

func toEntry(def nlp.CommandDefinition, l locale.Locale) voice.CommandEntry {
	keywords := def.Keywords[l]
	if len(keywords) == 0 {
		keywords = def.Keywords[locale.Default]
	}
	return voice.CommandEntry{
		Action:   string(def.Action),
		Keywords: append([]string{}, keywords...),
	}
}
