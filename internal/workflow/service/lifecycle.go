package service

import (
	"context"
	"time"

	"github.com/peopleops/docflow/internal/authz"
	"github.com/peopleops/docflow/internal/workflow"
	"github.com/peopleops/docflow/pkg/logger"
	"github.com/peopleops/docflow/pkg/metrics"
)

// SubmitPayload carries the fields an employee provides when submitting a
// document for review. Draft relaxes the content-reference rule until the
// draft is promoted.
type SubmitPayload struct {
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	DocumentType  string             `json:"documentType"`
	Category      string             `json:"category"`
	ReferenceURL  string             `json:"referenceUrl"`
	FileName      string             `json:"fileName"`
	FileSizeBytes int64              `json:"fileSizeBytes"`
	Priority      workflow.Priority  `json:"priority"`
	DueDate       *time.Time         `json:"dueDate"`
	Tags          []string           `json:"tags"`
	Draft         bool               `json:"draft"`
}

func (p SubmitPayload) validate() error {
	if p.Title == "" {
		return workflow.Validationf("title is required")
	}
	if p.DocumentType == "" {
		return workflow.Validationf("documentType is required")
	}
	if p.Priority != "" && !p.Priority.Valid() {
		return workflow.Validationf("unknown priority %q", p.Priority)
	}
	return validateContent(p.ReferenceURL, p.FileName, p.FileSizeBytes, p.Draft)
}

// Submit creates a submission-track record. Unless Draft is set the record is
// born in submitted with version 1.
func (s *Service) Submit(ctx context.Context, actor authz.Actor, p SubmitPayload) (*workflow.DocumentRecord, error) {
	if actor.ID == "" {
		return nil, workflow.Validationf("submitter identity is required")
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	prio := p.Priority
	if prio == "" {
		prio = workflow.PriorityNormal
	}
	status := workflow.StatusSubmitted
	if p.Draft {
		status = workflow.StatusDraft
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
		Track:         workflow.TrackSubmission,
		Status:        status,
		Version:       1,
		OwnerID:       actor.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.records.Insert(ctx, rec); err != nil {
		return nil, err
	}
	s.appendStatusEntry(ctx, rec, "", actor.ID, "")
	metrics.Transitions.WithLabelValues(string(rec.Track), string(rec.Status)).Inc()
	s.cache.Invalidate(ctx)
	logger.Infof("document %s submitted by %s (status=%s)", rec.ID, actor.ID, rec.Status)
	return rec, nil
}

// EditPayload carries the fields editable while a record sits in draft or
// revision_requested. Editing never bumps the version; resubmission does.
type EditPayload struct {
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

// Edit updates a record in an edit-eligible state.
func (s *Service) Edit(ctx context.Context, id string, actor authz.Actor, p EditPayload) (*workflow.DocumentRecord, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Track != workflow.TrackSubmission {
		return nil, workflow.InvalidTransitionf("only submission-track documents can be edited")
	}
	if rec.Status != workflow.StatusDraft && rec.Status != workflow.StatusRevisionRequested {
		return nil, workflow.InvalidTransitionf("document in status %q is not editable", rec.Status)
	}
	if err := s.requireOwner(actor, rec); err != nil {
		return nil, err
	}
	if p.Title != "" {
		rec.Title = p.Title
	}
	if p.DocumentType != "" {
		rec.DocumentType = p.DocumentType
	}
	if p.Category != "" {
		rec.Category = p.Category
	}
	if p.Priority != "" {
		if !p.Priority.Valid() {
			return nil, workflow.Validationf("unknown priority %q", p.Priority)
		}
		rec.Priority = p.Priority
	}
	rec.Description = p.Description
	if p.DueDate != nil {
		rec.DueDate = p.DueDate
	}
	if p.Tags != nil {
		rec.Tags = p.Tags
	}
	applyContentRef(rec, p.ReferenceURL, p.FileName, p.FileSizeBytes)
	if err := validateContent(rec.ReferenceURL, rec.FileName, rec.FileSizeBytes, rec.Status == workflow.StatusDraft); err != nil {
		return nil, err
	}
	rec.UpdatedAt = s.now().UTC()
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// SubmitDraft promotes a draft into the review pipeline. The full content
// rule applies from here on.
func (s *Service) SubmitDraft(ctx context.Context, id string, actor authz.Actor) (*workflow.DocumentRecord, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !workflow.CanTransition(rec.Track, rec.Status, workflow.StatusSubmitted) || rec.Status != workflow.StatusDraft {
		return nil, workflow.InvalidTransitionf("cannot submit a document in status %q", rec.Status)
	}
	if err := s.requireOwner(actor, rec); err != nil {
		return nil, err
	}
	if err := validateContent(rec.ReferenceURL, rec.FileName, rec.FileSizeBytes, false); err != nil {
		return nil, err
	}
	from := rec.Status
	rec.Status = workflow.StatusSubmitted
	if err := s.commit(ctx, rec, from, actor.ID, ""); err != nil {
		return nil, err
	}
	return rec, nil
}

// StartReview moves a submitted record under review. An optional signal:
// decisions may also be taken directly from submitted.
func (s *Service) StartReview(ctx context.Context, id string, actor authz.Actor) (*workflow.DocumentRecord, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Track != workflow.TrackSubmission || rec.Status != workflow.StatusSubmitted {
		return nil, workflow.InvalidTransitionf("cannot start review on a document in status %q", rec.Status)
	}
	if err := s.policy.CanReview(actor, rec); err != nil {
		return nil, err
	}
	from := rec.Status
	now := s.now().UTC()
	rec.Status = workflow.StatusUnderReview
	rec.ReviewedAt = &now
	if err := s.commit(ctx, rec, from, actor.ID, ""); err != nil {
		return nil, err
	}
	return rec, nil
}

// Approve finishes the happy path. Not idempotent: approving an approved
// record is an invalid transition, callers must check state first.
func (s *Service) Approve(ctx context.Context, id string, actor authz.Actor) (*workflow.DocumentRecord, error) {
	return s.decide(ctx, id, actor, workflow.StatusApproved, "")
}

// Reject finishes the sad path. A non-empty reason is required.
func (s *Service) Reject(ctx context.Context, id string, actor authz.Actor, reason string) (*workflow.DocumentRecord, error) {
	if reason == "" {
		return nil, workflow.Validationf("rejection requires a reason")
	}
	return s.decide(ctx, id, actor, workflow.StatusRejected, reason)
}

// RequestRevision branches into the recoverable revision loop. A non-empty
// notes string is required.
func (s *Service) RequestRevision(ctx context.Context, id string, actor authz.Actor, notes string) (*workflow.DocumentRecord, error) {
	if notes == "" {
		return nil, workflow.Validationf("requesting a revision requires notes")
	}
	return s.decide(ctx, id, actor, workflow.StatusRevisionRequested, notes)
}

// decide applies a review decision from submitted or under_review. Entering
// one review branch clears the other's annotation.
func (s *Service) decide(ctx context.Context, id string, actor authz.Actor, to workflow.Status, annotation string) (*workflow.DocumentRecord, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Track != workflow.TrackSubmission || !workflow.Reviewable(rec.Status) {
		return nil, workflow.InvalidTransitionf("cannot move a document from %q to %q", rec.Status, to)
	}
	if err := s.policy.CanReview(actor, rec); err != nil {
		return nil, err
	}
	from := rec.Status
	now := s.now().UTC()
	rec.Status = to
	rec.RejectionReason = ""
	rec.RevisionNotes = ""
	switch to {
	case workflow.StatusApproved:
		rec.ApprovedAt = &now
	case workflow.StatusRejected:
		rec.RejectionReason = annotation
	case workflow.StatusRevisionRequested:
		rec.RevisionNotes = annotation
	}
	if err := s.commit(ctx, rec, from, actor.ID, annotation); err != nil {
		return nil, err
	}
	return rec, nil
}

// ResubmitPayload carries the updated content for a new revision. When both
// content fields are empty the existing reference is kept.
type ResubmitPayload struct {
	Description   string `json:"description"`
	ReferenceURL  string `json:"referenceUrl"`
	FileName      string `json:"fileName"`
	FileSizeBytes int64  `json:"fileSizeBytes"`
}

// Resubmit re-enters review from revision_requested: clears the revision
// notes, applies the updated content and increments the version exactly once.
func (s *Service) Resubmit(ctx context.Context, id string, actor authz.Actor, p ResubmitPayload) (*workflow.DocumentRecord, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Track != workflow.TrackSubmission || rec.Status != workflow.StatusRevisionRequested {
		return nil, workflow.InvalidTransitionf("cannot resubmit a document in status %q", rec.Status)
	}
	if err := s.requireOwner(actor, rec); err != nil {
		return nil, err
	}
	if p.Description != "" {
		rec.Description = p.Description
	}
	applyContentRef(rec, p.ReferenceURL, p.FileName, p.FileSizeBytes)
	if err := validateContent(rec.ReferenceURL, rec.FileName, rec.FileSizeBytes, false); err != nil {
		return nil, err
	}
	from := rec.Status
	rec.Status = workflow.StatusSubmitted
	rec.RevisionNotes = ""
	rec.RejectionReason = ""
	rec.Version++
	if err := s.commit(ctx, rec, from, actor.ID, ""); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete hard-removes a record and its trail. The capability decision is
// delegated to the authorization policy.
func (s *Service) Delete(ctx context.Context, id string, actor authz.Actor) error {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.CanDelete(actor, rec); err != nil {
		return err
	}
	if err := s.records.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.trail.DeleteByRecord(ctx, id); err != nil {
		logger.Warnf("trail cleanup failed for deleted record %s: %v", id, err)
	}
	s.cache.Invalidate(ctx)
	logger.Infof("document %s deleted by %s", id, actor.ID)
	return nil
}

func (s *Service) requireOwner(actor authz.Actor, rec *workflow.DocumentRecord) error {
	if actor.IsAdmin() || actor.ID == rec.OwnerID {
		return nil
	}
	return workflow.Forbiddenf("only the document owner may do this")
}

// applyContentRef swaps in a new content reference, keeping the two
// alternatives mutually exclusive when only one side is supplied.
func applyContentRef(rec *workflow.DocumentRecord, url, fileName string, fileSize int64) {
	if url == "" && fileName == "" {
		return
	}
	if url != "" && fileName == "" {
		rec.ReferenceURL = url
		rec.FileName = ""
		rec.FileSizeBytes = 0
		return
	}
	if fileName != "" && url == "" {
		rec.FileName = fileName
		rec.FileSizeBytes = fileSize
		rec.ReferenceURL = ""
		return
	}
	// both supplied: keep both so validation rejects the payload
	rec.ReferenceURL = url
	rec.FileName = fileName
	rec.FileSizeBytes = fileSize
}
