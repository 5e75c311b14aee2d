// Package lock provides per-entity mutual exclusion with a bounded wait.
package lock

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

var ErrTimeout = errors.New("lock wait timed out")

type slot struct {
	ch   chan struct{}
	refs int
}

// Manager hands out exclusive locks keyed by entity id.
type Manager struct {
	mu    sync.Mutex
	slots map[string]*slot
	wait  time.Duration
}

// NewManager creates a Manager. A non-positive wait means callers block until
// their context is done.
func NewManager(wait time.Duration) *Manager {
	return &Manager{
		slots: make(map[string]*slot),
		wait:  wait,
	}
}

// Acquire locks every key in ascending order and returns a release func.
// Duplicate keys are locked once. On timeout nothing stays held.
func (m *Manager) Acquire(ctx context.Context, keys ...string) (func(), error) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	waitCtx := ctx
	if m.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, m.wait)
		defer cancel()
	}

	held := make([]string, 0, len(sorted))
	for _, key := range sorted {
		s := m.ref(key)
		select {
		case s.ch <- struct{}{}:
			held = append(held, key)
		case <-waitCtx.Done():
			m.unref(key)
			m.release(held)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, ErrTimeout
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { m.release(held) })
	}, nil
}

func (m *Manager) release(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		m.mu.Lock()
		s := m.slots[keys[i]]
		m.mu.Unlock()

		<-s.ch
		m.unref(keys[i])
	}
}

func (m *Manager) ref(key string) *slot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		m.slots[key] = s
	}
	s.refs++
	return s
}

func (m *Manager) unref(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[key]
	if !ok {
		return
	}
	s.refs--
	if s.refs == 0 {
		delete(m.slots, key)
	}
}

// Held reports how many keys currently have a holder or a waiter.
func (m *Manager) Held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}
