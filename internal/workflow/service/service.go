package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/peopleops/docflow/internal/authz"
	"github.com/peopleops/docflow/internal/template"
	"github.com/peopleops/docflow/internal/workflow"
	"github.com/peopleops/docflow/internal/workflow/repository"
	"github.com/peopleops/docflow/pkg/logger"
	"github.com/peopleops/docflow/pkg/metrics"
)

// TemplateSource is the read-only view of the template store the expander
// consumes. Satisfied by *template.Service.
type TemplateSource interface {
	GetActive(ctx context.Context, id string) (*template.Template, error)
}

// Directory is the optional employee lookup used to reject fan-out to unknown
// assignees. Satisfied by *employees.Service.
type Directory interface {
	Exists(ctx context.Context, sub string) (bool, error)
}

// Service drives both workflow tracks over the record and trail repositories.
// All mutations go through a single-attempt optimistic write; the service
// never retries a lost race.
type Service struct {
	records   repository.RecordRepository
	trail     repository.TrailRepository
	templates TemplateSource
	directory Directory
	policy    authz.Authorizer
	cache     *StatsCache
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

func WithTemplates(ts TemplateSource) Option {
	return func(s *Service) { s.templates = ts }
}

func WithDirectory(d Directory) Option {
	return func(s *Service) { s.directory = d }
}

func WithStatsCache(c *StatsCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithClock overrides the time source. Tests use this to pin timestamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) { s.now = fn }
}

func New(records repository.RecordRepository, trail repository.TrailRepository, policy authz.Authorizer, opts ...Option) *Service {
	s := &Service{
		records: records,
		trail:   trail,
		policy:  policy,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns a record together with its trail.
func (s *Service) Get(ctx context.Context, id string) (*workflow.DocumentRecord, []*workflow.TrailEntry, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rec.Status = rec.Status.Normalize()
	entries, err := s.trail.ListByRecord(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return rec, entries, nil
}

// List returns records matching the filter, newest first.
func (s *Service) List(ctx context.Context, f repository.Filter) ([]*workflow.DocumentRecord, error) {
	recs, err := s.records.List(ctx, f)
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		r.Status = r.Status.Normalize()
	}
	return recs, nil
}

// My returns the submission-track records owned by the actor.
func (s *Service) My(ctx context.Context, ownerID string) ([]*workflow.DocumentRecord, error) {
	return s.List(ctx, repository.Filter{Track: workflow.TrackSubmission, OwnerID: ownerID})
}

// AssignedTo returns the assignment-track records pushed to the actor.
func (s *Service) AssignedTo(ctx context.Context, assigneeID string) ([]*workflow.DocumentRecord, error) {
	return s.List(ctx, repository.Filter{Track: workflow.TrackAssignment, AssigneeID: assigneeID})
}

// commit writes the mutated record (CAS on rev), appends the synthetic status
// entry and invalidates the stats cache. from is the status before mutation.
func (s *Service) commit(ctx context.Context, rec *workflow.DocumentRecord, from workflow.Status, actorID, notes string) error {
	rec.UpdatedAt = s.now().UTC()
	if err := s.records.Update(ctx, rec); err != nil {
		if errors.Is(err, workflow.ErrConflict) {
			metrics.TransitionConflicts.Inc()
		}
		return err
	}
	s.appendStatusEntry(ctx, rec, from, actorID, notes)
	metrics.Transitions.WithLabelValues(string(rec.Track), string(rec.Status)).Inc()
	s.cache.Invalidate(ctx)
	return nil
}

// appendStatusEntry records the transition in the trail. The transition has
// already been persisted; a trail write failure is logged, not surfaced.
func (s *Service) appendStatusEntry(ctx context.Context, rec *workflow.DocumentRecord, from workflow.Status, actorID, notes string) {
	// from is kept raw so creation entries read assigned -> pending_acknowledgment
	e := &workflow.TrailEntry{
		ID:         s.newID(),
		RecordID:   rec.ID,
		Kind:       workflow.TrailStatus,
		AuthorID:   actorID,
		FromStatus: from,
		ToStatus:   rec.Status.Normalize(),
		Notes:      notes,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.trail.Append(ctx, e); err != nil {
		logger.Warnf("trail append failed for record %s: %v", rec.ID, err)
	}
}

// validateContent enforces the content-reference rule: exactly one of URL /
// uploaded-file descriptor for non-draft records, at most one while drafting.
func validateContent(url, fileName string, fileSize int64, draft bool) error {
	hasURL := url != ""
	hasFile := fileName != ""
	if hasFile && fileSize < 0 {
		return workflow.Validationf("fileSizeBytes must not be negative")
	}
	if hasURL && hasFile {
		return workflow.Validationf("provide either referenceUrl or an uploaded file, not both")
	}
	if !draft && !hasURL && !hasFile {
		return workflow.Validationf("a content reference is required: referenceUrl or an uploaded file")
	}
	return nil
}
