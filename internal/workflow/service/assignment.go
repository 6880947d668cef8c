package service

import (
	"context"
	"sync"
	"time"

	"github.com/peopleops/docflow/internal/authz"
	"github.com/peopleops/docflow/internal/workflow"
	"github.com/peopleops/docflow/pkg/logger"
	"github.com/peopleops/docflow/pkg/metrics"
)

// maxFanoutWorkers bounds the scatter when bulk-assigning. Creations are
// independent, so ordering between recipients is not guaranteed.
const maxFanoutWorkers = 8

// AssignPayload describes the document pushed to one or more employees.
type AssignPayload struct {
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	DocumentType  string            `json:"documentType"`
	Category      string            `json:"category"`
	ReferenceURL  string            `json:"referenceUrl"`
	FileName      string            `json:"fileName"`
	FileSizeBytes int64             `json:"fileSizeBytes"`
	Priority      workflow.Priority `json:"priority"`
	DueDate       *time.Time        `json:"dueDate"`
	Tags          []string          `json:"tags"`
}

func (p AssignPayload) validate() error {
	if p.Title == "" {
		return workflow.Validationf("title is required")
	}
	if p.DocumentType == "" {
		return workflow.Validationf("documentType is required")
	}
	if p.Priority != "" && !p.Priority.Valid() {
		return workflow.Validationf("unknown priority %q", p.Priority)
	}
	return validateContent(p.ReferenceURL, p.FileName, p.FileSizeBytes, false)
}

// AssignResult reports the outcome of one recipient's fan-out. Err is set
// when that recipient's record could not be created; other recipients are
// unaffected.
type AssignResult struct {
	AssigneeID string
	Record     *workflow.DocumentRecord
	Err        error
}

// AssignSingle pushes one document to one employee.
func (s *Service) AssignSingle(ctx context.Context, actor authz.Actor, assigneeID string, p AssignPayload) (*workflow.DocumentRecord, error) {
	results, err := s.AssignBulk(ctx, actor, []string{assigneeID}, p)
	if err != nil {
		return nil, err
	}
	if results[0].Err != nil {
		return nil, results[0].Err
	}
	return results[0].Record, nil
}

// AssignBulk fans one payload out to N employees, creating N independent
// records. Validation is all-or-nothing; persistence is best-effort per
// recipient and never rolled back.
func (s *Service) AssignBulk(ctx context.Context, actor authz.Actor, assigneeIDs []string, p AssignPayload) ([]AssignResult, error) {
	if err := s.policy.CanAssign(actor); err != nil {
		return nil, err
	}
	ids := dedupe(assigneeIDs)
	if len(ids) == 0 {
		return nil, workflow.Validationf("at least one assignee is required")
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	results := make([]AssignResult, len(ids))
	sem := make(chan struct{}, maxFanoutWorkers)
	var wg sync.WaitGroup
	for i, assigneeID := range ids {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, assigneeID string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.createAssignment(ctx, actor, assigneeID, p)
		}(i, assigneeID)
	}
	wg.Wait()

	created := 0
	for _, r := range results {
		if r.Err == nil {
			created++
			metrics.AssignmentsFannedOut.WithLabelValues("created").Inc()
		} else {
			metrics.AssignmentsFannedOut.WithLabelValues("failed").Inc()
		}
	}
	if created > 0 {
		s.cache.Invalidate(ctx)
	}
	logger.Infof("assignment fan-out by %s: %d/%d records created", actor.ID, created, len(ids))
	return results, nil
}

func (s *Service) createAssignment(ctx context.Context, actor authz.Actor, assigneeID string, p AssignPayload) AssignResult {
	res := AssignResult{AssigneeID: assigneeID}
	if assigneeID == "" {
		res.Err = workflow.Validationf("assignee id must not be empty")
		return res
	}
	if s.directory != nil {
		ok, err := s.directory.Exists(ctx, assigneeID)
		if err != nil {
			res.Err = err
			return res
		}
		if !ok {
			res.Err = workflow.NotFoundf("assignee %s not found", assigneeID)
			return res
		}
	}
	prio := p.Priority
	if prio == "" {
		prio = workflow.PriorityNormal
	}
	now := s.now().UTC()
	rec := &workflow.DocumentRecord{
		ID:            s.newID(),
		Title:         p.Title,
		Description:   p.Description,
		DocumentType:  p.DocumentType,
		Category:      p.Category,
		ReferenceURL:  p.ReferenceURL,
		FileName:      p.FileName,
		FileSizeBytes: p.FileSizeBytes,
		Priority:      prio,
		DueDate:       p.DueDate,
		Tags:          p.Tags,
		Track:         workflow.TrackAssignment,
		Status:        workflow.StatusPendingAck,
		Version:       1,
		AssigneeID:    assigneeID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.records.Insert(ctx, rec); err != nil {
		res.Err = err
		return res
	}
	s.appendStatusEntry(ctx, rec, workflow.StatusAssigned, actor.ID, "")
	metrics.Transitions.WithLabelValues(string(rec.Track), string(rec.Status)).Inc()
	res.Record = rec
	return res
}

// Acknowledge marks an assignment as seen by its assignee. Idempotent:
// re-acknowledging returns the current state without error.
func (s *Service) Acknowledge(ctx context.Context, id string, actor authz.Actor) (*workflow.DocumentRecord, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Track != workflow.TrackAssignment {
		return nil, workflow.InvalidTransitionf("only assigned documents can be acknowledged")
	}
	if actor.ID != rec.AssigneeID {
		return nil, workflow.Forbiddenf("only the assignee may acknowledge this document")
	}
	if rec.Acknowledged {
		rec.Status = rec.Status.Normalize()
		return rec, nil
	}
	from := rec.Status
	now := s.now().UTC()
	rec.Status = workflow.StatusAcknowledged
	rec.Acknowledged = true
	rec.AcknowledgedAt = &now
	if err := s.commit(ctx, rec, from, actor.ID, ""); err != nil {
		return nil, err
	}
	return rec, nil
}

// ExpandTemplate synthesizes an assignment payload from a stored template and
// fans it out. Missing and inactive templates are equally not found; the
// template itself is never mutated.
func (s *Service) ExpandTemplate(ctx context.Context, actor authz.Actor, templateID string, assigneeIDs []string) ([]AssignResult, error) {
	if s.templates == nil {
		return nil, workflow.NotFoundf("template store is not configured")
	}
	t, err := s.templates.GetActive(ctx, templateID)
	if err != nil {
		return nil, err
	}
	desc := t.Description
	if desc == "" {
		desc = t.Instructions
	}
	p := AssignPayload{
		Title:        t.Name,
		Description:  desc,
		DocumentType: t.DocumentType,
		Category:     t.Category,
		ReferenceURL: t.ReferenceURL,
		Priority:     t.Priority,
	}
	return s.AssignBulk(ctx, actor, assigneeIDs, p)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
