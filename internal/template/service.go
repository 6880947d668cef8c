package template

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/peopleops/docflow/internal/workflow"
)

// Service owns template reference data. It is deliberately plain CRUD; the
// workflow engine consumes templates read-only through GetActive.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreatePayload carries the writable template fields.
type CreatePayload struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Instructions string            `json:"instructions"`
	DocumentType string            `json:"documentType"`
	Category     string            `json:"category"`
	Priority     workflow.Priority `json:"priority"`
	ReferenceURL string            `json:"referenceUrl"`
}

func (p CreatePayload) validate() error {
	if p.Name == "" {
		return workflow.Validationf("template name is required")
	}
	if p.DocumentType == "" {
		return workflow.Validationf("template documentType is required")
	}
	if p.Priority != "" && !p.Priority.Valid() {
		return workflow.Validationf("unknown priority %q", p.Priority)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p CreatePayload) (*Template, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	prio := p.Priority
	if prio == "" {
		prio = workflow.PriorityNormal
	}
	now := s.now().UTC()
	t := &Template{
		ID:           uuid.NewString(),
		Name:         p.Name,
		Description:  p.Description,
		Instructions: p.Instructions,
		DocumentType: p.DocumentType,
		Category:     p.Category,
		Priority:     prio,
		ReferenceURL: p.ReferenceURL,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Template, error) {
	return s.repo.Get(ctx, id)
}

// GetActive returns the template only when it exists and is active. The
// expander treats an inactive template the same as a missing one.
func (s *Service) GetActive(ctx context.Context, id string) (*Template, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.Active {
		return nil, workflow.NotFoundf("template %s is inactive", id)
	}
	return t, nil
}

func (s *Service) List(ctx context.Context) ([]*Template, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id string, p CreatePayload, active *bool) (*Template, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Name = p.Name
	t.Description = p.Description
	t.Instructions = p.Instructions
	t.DocumentType = p.DocumentType
	t.Category = p.Category
	if p.Priority != "" {
		t.Priority = p.Priority
	}
	t.ReferenceURL = p.ReferenceURL
	if active != nil {
		t.Active = *active
	}
	t.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
