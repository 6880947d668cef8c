package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peopleops/docflow/internal/authz"
	"github.com/peopleops/docflow/internal/workflow"
	"github.com/peopleops/docflow/internal/workflow/repository"
)

var (
	owner    = authz.Actor{ID: "emp-1"}
	reviewer = authz.Actor{ID: "hr-1", Roles: []string{"hr_admin"}}
)

func newTestService(t *testing.T, opts ...Option) (*Service, *repository.MemoryRecordRepo) {
	t.Helper()
	records := repository.NewMemoryRecordRepo()
	trail := repository.NewMemoryTrailRepo()
	opts = append([]Option{}, opts...)
	svc := New(records, trail, authz.NewRolePolicy(), opts...)
	return svc, records
}

func submitPayload() SubmitPayload {
	return SubmitPayload{
		Title:        "Signed NDA",
		DocumentType: "contract",
		Category:     "legal",
		ReferenceURL: "https://files.internal/nda.pdf",
	}
}

func TestSubmit_CreatesSubmittedV1(t *testing.T) {
	svc, _ := newTestService(t)
	rec, err := svc.Submit(context.Background(), owner, submitPayload())
	require.NoError(t, err)
	require.Equal(t, workflow.TrackSubmission, rec.Track)
	require.Equal(t, workflow.StatusSubmitted, rec.Status)
	require.Equal(t, 1, rec.Version)
	require.Equal(t, "emp-1", rec.OwnerID)
	require.Equal(t, workflow.PriorityNormal, rec.Priority)

	trail, err := svc.Trail(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	require.Equal(t, workflow.TrailStatus, trail[0].Kind)
	require.Equal(t, workflow.StatusSubmitted, trail[0].ToStatus)
}

func TestSubmit_ContentReferenceRule(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p := submitPayload()
	p.ReferenceURL = ""
	_, err := svc.Submit(ctx, owner, p)
	require.True(t, errors.Is(err, workflow.ErrValidation), "neither reference fails")

	p = submitPayload()
	p.FileName = "nda.pdf"
	p.FileSizeBytes = 1024
	_, err = svc.Submit(ctx, owner, p)
	require.True(t, errors.Is(err, workflow.ErrValidation), "both references fail")

	p = submitPayload()
	p.Title = ""
	_, err = svc.Submit(ctx, owner, p)
	require.True(t, errors.Is(err, workflow.ErrValidation), "empty title fails")

	// drafts may omit content until promoted
	p = submitPayload()
	p.ReferenceURL = ""
	p.Draft = true
	rec, err := svc.Submit(ctx, owner, p)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusDraft, rec.Status)

	_, err = svc.SubmitDraft(ctx, rec.ID, owner)
	require.True(t, errors.Is(err, workflow.ErrValidation), "promoting a contentless draft fails")

	_, err = svc.Edit(ctx, rec.ID, owner, EditPayload{ReferenceURL: "https://files.internal/nda-v2.pdf"})
	require.NoError(t, err)
	promoted, err := svc.SubmitDraft(ctx, rec.ID, owner)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusSubmitted, promoted.Status)
}

func TestScenarioA_SubmitReviewReject(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)

	rec, err = svc.StartReview(ctx, rec.ID, reviewer)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusUnderReview, rec.Status)
	require.NotNil(t, rec.ReviewedAt)

	rec, err = svc.Reject(ctx, rec.ID, reviewer, "missing signature")
	require.NoError(t, err)
	require.Equal(t, workflow.StatusRejected, rec.Status)
	require.Equal(t, "missing signature", rec.RejectionReason)
	require.Equal(t, 1, rec.Version)
}

func TestScenarioB_RevisionRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)

	rec, err = svc.RequestRevision(ctx, rec.ID, reviewer, "fix date")
	require.NoError(t, err)
	require.Equal(t, workflow.StatusRevisionRequested, rec.Status)
	require.Equal(t, "fix date", rec.RevisionNotes)

	rec, err = svc.Resubmit(ctx, rec.ID, owner, ResubmitPayload{ReferenceURL: "https://files.internal/nda-v2.pdf"})
	require.NoError(t, err)
	require.Equal(t, workflow.StatusSubmitted, rec.Status)
	require.Equal(t, 2, rec.Version)
	require.Empty(t, rec.RevisionNotes)
	require.Equal(t, "https://files.internal/nda-v2.pdf", rec.ReferenceURL)
}

func TestApprove_NotIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)

	rec, err = svc.Approve(ctx, rec.ID, reviewer)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusApproved, rec.Status)
	require.NotNil(t, rec.ApprovedAt)

	_, err = svc.Approve(ctx, rec.ID, reviewer)
	require.True(t, errors.Is(err, workflow.ErrInvalidTransition))
}

func TestReject_RequiresReason(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	rec, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)

	_, err = svc.Reject(ctx, rec.ID, reviewer, "")
	require.True(t, errors.Is(err, workflow.ErrValidation))

	_, err = svc.RequestRevision(ctx, rec.ID, reviewer, "")
	require.True(t, errors.Is(err, workflow.ErrValidation))
}

func TestResubmit_OnlyFromRevisionRequested(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)

	_, err = svc.Resubmit(ctx, rec.ID, owner, ResubmitPayload{})
	require.True(t, errors.Is(err, workflow.ErrInvalidTransition))

	rec, err = svc.Approve(ctx, rec.ID, reviewer)
	require.NoError(t, err)
	_, err = svc.Resubmit(ctx, rec.ID, owner, ResubmitPayload{})
	require.True(t, errors.Is(err, workflow.ErrInvalidTransition))
}

func TestRejectionReasonAndRevisionNotesAreExclusive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)

	rec, err = svc.RequestRevision(ctx, rec.ID, reviewer, "tighten wording")
	require.NoError(t, err)
	require.NotEmpty(t, rec.RevisionNotes)
	require.Empty(t, rec.RejectionReason)

	rec, err = svc.Resubmit(ctx, rec.ID, owner, ResubmitPayload{})
	require.NoError(t, err)

	rec, err = svc.Reject(ctx, rec.ID, reviewer, "still wrong")
	require.NoError(t, err)
	require.NotEmpty(t, rec.RejectionReason)
	require.Empty(t, rec.RevisionNotes)
}

func TestStartReview_OnlyFromSubmitted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)
	rec, err = svc.StartReview(ctx, rec.ID, reviewer)
	require.NoError(t, err)

	_, err = svc.StartReview(ctx, rec.ID, reviewer)
	require.True(t, errors.Is(err, workflow.ErrInvalidTransition))

	// decisions are valid straight from submitted, review is optional
	rec2, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)
	rec2, err = svc.Approve(ctx, rec2.ID, reviewer)
	require.NoError(t, err)
	require.Equal(t, workflow.StatusApproved, rec2.Status)
}

func TestReview_RequiresAdminRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	rec, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)

	_, err = svc.Approve(ctx, rec.ID, owner)
	require.True(t, errors.Is(err, workflow.ErrForbidden))
}

func TestDelete_Capability(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)

	// owner may not delete while pending review
	err = svc.Delete(ctx, rec.ID, owner)
	require.True(t, errors.Is(err, workflow.ErrForbidden))

	rec, err = svc.Reject(ctx, rec.ID, reviewer, "wrong form")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, rec.ID, owner))

	_, _, err = svc.Get(ctx, rec.ID)
	require.True(t, errors.Is(err, workflow.ErrNotFound))

	// admin may delete in any state
	rec2, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)
	_, err = svc.Approve(ctx, rec2.ID, reviewer)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, rec2.ID, reviewer))
}

func TestScenarioD_ConcurrentDecisionsOneWinner(t *testing.T) {
	svc, records := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)

	// simulate two reviewers racing: both load, first write wins
	a, err := records.Get(ctx, rec.ID)
	require.NoError(t, err)
	b, err := records.Get(ctx, rec.ID)
	require.NoError(t, err)

	a.Status = workflow.StatusApproved
	require.NoError(t, records.Update(ctx, a))
	b.Status = workflow.StatusRejected
	require.True(t, errors.Is(records.Update(ctx, b), workflow.ErrConflict))

	// through the service the loser surfaces as InvalidTransition because the
	// re-read sees the terminal state
	_, err = svc.Reject(ctx, rec.ID, reviewer, "too late")
	require.True(t, errors.Is(err, workflow.ErrInvalidTransition))
}

func TestVersionOnlyIncreasesViaResubmit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)
	require.Equal(t, 1, rec.Version)

	rec, err = svc.StartReview(ctx, rec.ID, reviewer)
	require.NoError(t, err)
	require.Equal(t, 1, rec.Version)

	rec, err = svc.RequestRevision(ctx, rec.ID, reviewer, "redo")
	require.NoError(t, err)
	require.Equal(t, 1, rec.Version)

	rec, err = svc.Resubmit(ctx, rec.ID, owner, ResubmitPayload{})
	require.NoError(t, err)
	require.Equal(t, 2, rec.Version)

	_, err = svc.AddComment(ctx, rec.ID, owner, "please hurry", false)
	require.NoError(t, err)
	got, _, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.Version)
	require.Equal(t, workflow.StatusSubmitted, got.Status, "comments never change status")
}

func TestEdit_OnlyInEditableStates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)

	_, err = svc.Edit(ctx, rec.ID, owner, EditPayload{Title: "nope"})
	require.True(t, errors.Is(err, workflow.ErrInvalidTransition))

	rec, err = svc.RequestRevision(ctx, rec.ID, reviewer, "adjust title")
	require.NoError(t, err)

	updated, err := svc.Edit(ctx, rec.ID, owner, EditPayload{Title: "Signed NDA v2"})
	require.NoError(t, err)
	require.Equal(t, "Signed NDA v2", updated.Title)
	require.Equal(t, 1, updated.Version, "editing never bumps the version")

	stranger := authz.Actor{ID: "emp-9"}
	_, err = svc.Edit(ctx, rec.ID, stranger, EditPayload{Title: "hijack"})
	require.True(t, errors.Is(err, workflow.ErrForbidden))
}

func TestAddComment_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	rec, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, rec.ID, owner, "", false)
	require.True(t, errors.Is(err, workflow.ErrValidation))

	_, err = svc.AddComment(ctx, "missing", owner, "hello", false)
	require.True(t, errors.Is(err, workflow.ErrNotFound))

	e, err := svc.AddComment(ctx, rec.ID, reviewer, "internal note", true)
	require.NoError(t, err)
	require.True(t, e.Internal)

	entries, err := svc.Trail(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2) // submit status entry + comment
}

func TestClockIsInjectable(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, WithClock(func() time.Time { return fixed }))
	rec, err := svc.Submit(context.Background(), owner, submitPayload())
	require.NoError(t, err)
	require.Equal(t, fixed, rec.CreatedAt)
	require.Equal(t, fixed, rec.UpdatedAt)
}
