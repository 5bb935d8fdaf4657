package session

import (
	"context"
	"sync"
	"time"

	"github.com/pi-senac-4/studybuddy-web/internal/form"
	"github.com/pi-senac-4/studybuddy-web/internal/models"
)

type memoryEntry struct {
	state   models.State
	expires time.Time
}

// MemoryStore is an in-process Store for single-replica deployments and tests.
type MemoryStore struct {
	mu          sync.Mutex
	ttl         time.Duration
	inflightTTL time.Duration
	pages       map[string]memoryEntry
	inflight    map[string]time.Time
	now         func() time.Time
}

// NewMemoryStore keeps pages for ttl and holds gates for at most inflightTTL.
// Zero values select the defaults.
func NewMemoryStore(ttl, inflightTTL time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if inflightTTL <= 0 {
		inflightTTL = DefaultInFlightTTL
	}
	return &MemoryStore{
		ttl:         ttl,
		inflightTTL: inflightTTL,
		pages:       make(map[string]memoryEntry),
		inflight:    make(map[string]time.Time),
		now:         time.Now,
	}
}

func (s *MemoryStore) Load(ctx context.Context, id string) (models.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.pages[id]
	if !ok || s.now().After(e.expires) {
		delete(s.pages, id)
		return models.NewState(), nil
	}
	return e.state, nil
}

func (s *MemoryStore) Save(ctx context.Context, id string, st models.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[id] = memoryEntry{state: st.Redacted(), expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, id)
	delete(s.inflight, id)
	return nil
}

// Sweep drops expired entries.
func (s *MemoryStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, e := range s.pages {
		if now.After(e.expires) {
			delete(s.pages, id)
		}
	}
	for id, until := range s.inflight {
		if now.After(until) {
			delete(s.inflight, id)
		}
	}
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

func (s *MemoryStore) InFlight(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.inflight[id]
	return ok && s.now().Before(until), nil
}

func (s *MemoryStore) Gate(id string) form.Gate {
	return &memoryGate{store: s, id: id}
}

type memoryGate struct {
	store *MemoryStore
	id    string
}

func (g *memoryGate) Enter(ctx context.Context) (bool, error) {
	s := g.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if until, ok := s.inflight[g.id]; ok && s.now().Before(until) {
		return false, nil
	}
	s.inflight[g.id] = s.now().Add(s.inflightTTL)
	return true, nil
}

func (g *memoryGate) Leave(ctx context.Context) error {
	s := g.store
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, g.id)
	return nil
}
