package service

import (
	"context"

	"github.com/peopleops/docflow/internal/authz"
	"github.com/peopleops/docflow/internal/workflow"
)

// AddComment appends an immutable comment to a record's trail. Comments are
// valid in any state and never change the record's status; internal comments
// are stored with a visibility flag the engine does not act on.
func (s *Service) AddComment(ctx context.Context, recordID string, actor authz.Actor, text string, internal bool) (*workflow.TrailEntry, error) {
	if text == "" {
		return nil, workflow.Validationf("comment text is required")
	}
	if actor.ID == "" {
		return nil, workflow.Validationf("comment author is required")
	}
	if _, err := s.records.Get(ctx, recordID); err != nil {
		return nil, err
	}
	e := &workflow.TrailEntry{
		ID:        s.newID(),
		RecordID:  recordID,
		Kind:      workflow.TrailComment,
		AuthorID:  actor.ID,
		Text:      text,
		Internal:  internal,
		CreatedAt: s.now().UTC(),
	}
	if err := s.trail.Append(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Trail returns the full comment and status history of a record in append
// order.
func (s *Service) Trail(ctx context.Context, recordID string) ([]*workflow.TrailEntry, error) {
	if _, err := s.records.Get(ctx, recordID); err != nil {
		return nil, err
	}
	return s.trail.ListByRecord(ctx, recordID)
}
