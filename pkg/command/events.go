package command

import (
	"sync"

	"MediVoice/pkg/nlp"
)

// ContextAction is delivered to the handlers of the route that owns the
// resolved vocabulary.
type ContextAction struct {
	Route     string     `json:"route"`
	Action    nlp.Action `json:"action"`
	Utterance string     `json:"utterance"`
}

type ContextHandler func(ContextAction)

type subscription struct {
	id      uint64
	handler ContextHandler
}

// ContextBus routes context actions to handlers registered per route.
type ContextBus struct {
	mu     sync.RWMutex
	nextID uint64
	routes map[string][]subscription
}

func NewContextBus() *ContextBus {
	return &ContextBus{routes: make(map[string][]subscription)}
}

// Subscribe registers handler for route and returns a func that removes it.
// The returned func is safe to call more than once.
func (b *ContextBus) Subscribe(route string, handler ContextHandler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.routes[route] = append(b.routes[route], subscription{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			subs := b.routes[route]
			for i, s := range subs {
				if s.id == id {
					b.routes[route] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
			if len(b.routes[route]) == 0 {
				delete(b.routes, route)
			}
		})
	}
}

// Publish invokes every handler of evt.Route and reports how many ran.
func (b *ContextBus) Publish(evt ContextAction) int {
	b.mu.RLock()
	subs := append([]subscription(nil), b.routes[evt.Route]...)
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(evt)
	}
	return len(subs)
}
