package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"tem/model"
)

var ErrNotFound = errors.New("run not found")

// Store keeps finished runs by id.
type Store interface {
	Save(ctx context.Context, run *model.Run) error
	Get(ctx context.Context, id string) (*model.Run, error)
	Delete(ctx context.Context, id string) error
	// List returns the ids of the stored runs.
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Memory is a process local Store.
type Memory struct {
	mu   sync.RWMutex
	runs map[string]*model.Run
}

func NewMemory() *Memory {
	return &Memory{runs: make(map[string]*model.Run)}
}

func (m *Memory) Save(_ context.Context, run *model.Run) error {
	if run == nil || run.Summary.ID == "" {
		return errors.New("save run: missing id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.Summary.ID] = run
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*model.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return run, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.runs, id)
	return nil
}

func (m *Memory) List(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	runs := make([]*model.Run, 0, len(m.runs))
	for _, r := range m.runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool {
		a, b := runs[i].Summary, runs[j].Summary
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.Summary.ID
	}
	return ids, nil
}

func (m *Memory) Close() error {
	return nil
}
