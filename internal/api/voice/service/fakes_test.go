package voiceService

import (
	voiceRepository "MediVoice/internal/api/voice/repository"
	"MediVoice/internal/entity"
	"MediVoice/pkg/locale"
	"MediVoice/pkg/nlp"
	"MediVoice/pkg/redis"
	"MediVoice/pkg/utils"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus/hooks/test"
)

type fakeKeywords struct {
	mu          sync.Mutex
	rows        []entity.CommandKeyword
	listErr     error
	listCalls   int
	created     []entity.CommandKeyword
	deactivated []string
	missing     error
}

func (f *fakeKeywords) ListActiveKeywords(context.Context) ([]entity.CommandKeyword, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]entity.CommandKeyword(nil), f.rows...), nil
}

func (f *fakeKeywords) CreateKeyword(_ context.Context, keyword entity.CommandKeyword) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, keyword)
	f.rows = append(f.rows, keyword)
	return nil
}

func (f *fakeKeywords) DeactivateKeyword(_ context.Context, id string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing != nil {
		return f.missing
	}
	f.deactivated = append(f.deactivated, id)
	return nil
}

type fakeSessions struct {
	mu      sync.Mutex
	created []entity.VoiceSession
	ended   []entity.VoiceSession
}

func (f *fakeSessions) CreateSession(_ context.Context, session entity.VoiceSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, session)
	return nil
}

func (f *fakeSessions) EndSession(_ context.Context, session entity.VoiceSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended = append(f.ended, session)
	return nil
}

func (f *fakeSessions) snapshot() ([]entity.VoiceSession, []entity.VoiceSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.VoiceSession(nil), f.created...), append([]entity.VoiceSession(nil), f.ended...)
}

type fakeRepo struct {
	keywords *fakeKeywords
	sessions *fakeSessions

	mu      sync.Mutex
	commits int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{keywords: &fakeKeywords{}, sessions: &fakeSessions{}}
}

func (r *fakeRepo) NewClient(bool) (voiceRepository.Client, error) {
	return voiceRepository.Client{
		Keywords: r.keywords,
		Sessions: r.sessions,
		Commit: func() error {
			r.mu.Lock()
			r.commits++
			r.mu.Unlock()
			return nil
		},
		Rollback: func() error { return nil },
	}, nil
}

type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) GetJSON(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return jsoniter.Unmarshal(raw, dest)
}

func (c *fakeCache) SetJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := jsoniter.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.data[key] = raw
	c.mu.Unlock()
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.deleted = append(c.deleted, key)
	c.mu.Unlock()
	return nil
}

func (c *fakeCache) Close() error { return nil }

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type fakePeer struct {
	inbound chan []byte

	mu   sync.Mutex
	sent []map[string]interface{}
}

func newFakePeer() *fakePeer {
	return &fakePeer{inbound: make(chan []byte, 16)}
}

func (p *fakePeer) Send(v interface{}) error {
	raw, err := jsoniter.Marshal(v)
	if err != nil {
		return err
	}
	var msg map[string]interface{}
	if err := jsoniter.Unmarshal(raw, &msg); err != nil {
		return err
	}
	p.mu.Lock()
	p.sent = append(p.sent, msg)
	p.mu.Unlock()
	return nil
}

func (p *fakePeer) Receive() ([]byte, error) {
	data, ok := <-p.inbound
	if !ok {
		return nil, io.EOF
	}
	return data, nil
}

func (p *fakePeer) KeepAlive(context.Context, time.Duration) {}

func (p *fakePeer) Close() error { return nil }

func (p *fakePeer) push(msg string) {
	p.inbound <- []byte(msg)
}

// find returns the first sent message of the given type.
func (p *fakePeer) find(kind string) (map[string]interface{}, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, msg := range p.sent {
		if msg["type"] == kind {
			return msg, true
		}
	}
	return nil, false
}

func (p *fakePeer) findAll(kind string) []map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []map[string]interface{}
	for _, msg := range p.sent {
		if msg["type"] == kind {
			out = append(out, msg)
		}
	}
	return out
}

type fakeExtractor struct {
	result nlp.IntentResult
	err    error
}

func (f *fakeExtractor) Extract(context.Context, string, locale.Locale) (nlp.IntentResult, error) {
	return f.result, f.err
}

var errStorageDown = errors.New("storage down")

func newTestService(t *testing.T, repo voiceRepository.Repository, opts ...Option) *voiceService {
	t.Helper()
	logger, _ := test.NewNullLogger()
	opts = append([]Option{WithClock(clock.NewMock())}, opts...)
	return NewVoiceService(logger, repo, utils.New(), validator.New(), DefaultVoiceConfig(), opts...).(*voiceService)
}
