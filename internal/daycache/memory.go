package daycache

import (
	"context"
	"sync"
)

// Memory is an in-process Store used for local runs and tests.
type Memory struct {
	mu   sync.RWMutex
	days map[string]Entry
}

func NewMemory() *Memory {
	return &Memory{days: make(map[string]Entry)}
}

func (m *Memory) Get(_ context.Context, date string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.days[date]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (m *Memory) BatchGet(_ context.Context, dates []string) (BatchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := BatchResult{Found: make(map[string]Entry, len(dates))}
	for _, d := range dates {
		if e, ok := m.days[d]; ok {
			res.Found[d] = e
		}
	}
	return res, nil
}

func (m *Memory) Put(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[e.Date] = e
	return nil
}

// Len is the number of cached days.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.days)
}
