package repository

import (
	"context"

	"github.com/peopleops/docflow/internal/workflow"
)

// Filter narrows List results. Zero values mean "any".
type Filter struct {
	Track      workflow.Track
	Statuses   []workflow.Status
	OwnerID    string
	AssigneeID string
}

func (f Filter) matches(r *workflow.DocumentRecord) bool {
	if f.Track != "" && r.Track != f.Track {
		return false
	}
	if f.OwnerID != "" && r.OwnerID != f.OwnerID {
		return false
	}
	if f.AssigneeID != "" && r.AssigneeID != f.AssigneeID {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if r.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// RecordRepository persists DocumentRecords. Update performs a compare-and-swap
// on the record's Rev: the write succeeds only when the stored Rev still equals
// rec.Rev, and increments it. A lost race surfaces as workflow.ErrConflict,
// a vanished record as workflow.ErrNotFound.
type RecordRepository interface {
	Insert(ctx context.Context, rec *workflow.DocumentRecord) error
	Get(ctx context.Context, id string) (*workflow.DocumentRecord, error)
	Update(ctx context.Context, rec *workflow.DocumentRecord) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f Filter) ([]*workflow.DocumentRecord, error)
}

// TrailRepository is the append-only comment/history store keyed by record.
type TrailRepository interface {
	Append(ctx context.Context, e *workflow.TrailEntry) error
	ListByRecord(ctx context.Context, recordID string) ([]*workflow.TrailEntry, error)
	DeleteByRecord(ctx context.Context, recordID string) error
}
