package cache

import (
	"context"
	"sync"
	"time"

	"github.com/shandysiswandi/gotransfer/internal/pkg/clock"
	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/verification/entity"
)

type memoryItem struct {
	req       entity.Request
	expiresAt time.Time
}

// Memory is a process-local store. Expired entries are dropped when touched
// and swept on every Put.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryItem
	ttl   time.Duration
	clock clock.Clocker
}

func NewMemory(clk clock.Clocker, ttl time.Duration) *Memory {
	if clk == nil {
		clk = clock.New()
	}
	return &Memory{items: make(map[string]memoryItem), ttl: ttlOrDefault(ttl), clock: clk}
}

func (m *Memory) Get(_ context.Context, email string) (*entity.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.live(email)
	if !ok {
		return nil, goerror.ErrNotFound
	}

	req := item.req
	return &req, nil
}

func (m *Memory) Put(_ context.Context, req entity.Request) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, replaced := m.live(req.Email)
	now := m.clock.Now()
	m.sweep(now)
	m.items[req.Email] = memoryItem{req: req, expiresAt: now.Add(m.ttl)}

	return replaced, nil
}

func (m *Memory) Delete(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, email)
	return nil
}

// live must be called with mu held.
func (m *Memory) live(email string) (memoryItem, bool) {
	item, ok := m.items[email]
	if !ok {
		return memoryItem{}, false
	}
	if !m.clock.Now().Before(item.expiresAt) {
		delete(m.items, email)
		return memoryItem{}, false
	}
	return item, true
}

// sweep must be called with mu held.
func (m *Memory) sweep(now time.Time) {
	for email, item := range m.items {
		if !now.Before(item.expiresAt) {
			delete(m.items, email)
		}
	}
}
