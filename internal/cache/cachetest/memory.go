// Package cachetest provides an in-process cache.Client for tests.
package cachetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"project_tracker/internal/cache"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is a map-backed cache.Client. Expired keys behave as missing.
type Memory struct {
	mu    sync.Mutex
	items map[string]entry
	Now   func() time.Time
	Err   error
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]entry), Now: time.Now}
}

func (m *Memory) lookup(key string) (entry, bool) {
	e, ok := m.items[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !m.Now().Before(e.expiresAt) {
		delete(m.items, key)
		return entry{}, false
	}
	return e, true
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	e, ok := m.lookup(key)
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return e.value, nil
}

func (m *Memory) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	e := entry{}
	switch v := value.(type) {
	case string:
		e.value = v
	case []byte:
		e.value = string(v)
	default:
		e.value = fmt.Sprint(v)
	}
	if expiration > 0 {
		e.expiresAt = m.Now().Add(expiration)
	}
	m.items[key] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.items, key)
	return nil
}

func (m *Memory) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	e, ok := m.lookup(key)
	var count int64
	if ok {
		fmt.Sscan(e.value, &count)
	} else {
		e.expiresAt = m.Now().Add(window)
	}
	count++
	e.value = fmt.Sprint(count)
	m.items[key] = e
	return count, nil
}

// Has reports whether key is currently cached
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lookup(key)
	return ok
}
