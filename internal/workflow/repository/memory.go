package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/peopleops/docflow/internal/workflow"
)

// MemoryRecordRepo is the in-memory record store used for unit tests and
// local development. It enforces the same Rev compare-and-swap discipline as
// the Mongo-backed repository.
type MemoryRecordRepo struct {
	mu    sync.RWMutex
	store map[string]*workflow.DocumentRecord
}

func NewMemoryRecordRepo() *MemoryRecordRepo {
	return &MemoryRecordRepo{store: make(map[string]*workflow.DocumentRecord)}
}

func (m *MemoryRecordRepo) Insert(ctx context.Context, rec *workflow.DocumentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[rec.ID]; ok {
		return workflow.Conflictf("record %s already exists", rec.ID)
	}
	m.store[rec.ID] = rec.Clone()
	return nil
}

func (m *MemoryRecordRepo) Get(ctx context.Context, id string) (*workflow.DocumentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.store[id]; ok {
		return r.Clone(), nil
	}
	return nil, workflow.NotFoundf("record %s not found", id)
}

func (m *MemoryRecordRepo) Update(ctx context.Context, rec *workflow.DocumentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[rec.ID]
	if !ok {
		return workflow.NotFoundf("record %s not found", rec.ID)
	}
	if cur.Rev != rec.Rev {
		return workflow.Conflictf("record %s was modified concurrently", rec.ID)
	}
	rec.Rev++
	m.store[rec.ID] = rec.Clone()
	return nil
}

func (m *MemoryRecordRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return workflow.NotFoundf("record %s not found", id)
	}
	delete(m.store, id)
	return nil
}

func (m *MemoryRecordRepo) List(ctx context.Context, f Filter) ([]*workflow.DocumentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*workflow.DocumentRecord, 0, len(m.store))
	for _, r := range m.store {
		if f.matches(r) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// MemoryTrailRepo is the in-memory append-only trail store.
type MemoryTrailRepo struct {
	mu      sync.RWMutex
	entries map[string][]*workflow.TrailEntry // keyed by recordID
}

func NewMemoryTrailRepo() *MemoryTrailRepo {
	return &MemoryTrailRepo{entries: make(map[string][]*workflow.TrailEntry)}
}

func (m *MemoryTrailRepo) Append(ctx context.Context, e *workflow.TrailEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.entries[e.RecordID] = append(m.entries[e.RecordID], &cp)
	return nil
}

func (m *MemoryTrailRepo) ListByRecord(ctx context.Context, recordID string) ([]*workflow.TrailEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src := m.entries[recordID]
	out := make([]*workflow.TrailEntry, 0, len(src))
	for _, e := range src {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryTrailRepo) DeleteByRecord(ctx context.Context, recordID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, recordID)
	return nil
}
