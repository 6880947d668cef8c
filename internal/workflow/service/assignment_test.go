package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peopleops/docflow/internal/authz"
	"github.com/peopleops/docflow/internal/template"
	"github.com/peopleops/docflow/internal/workflow"
	"github.com/peopleops/docflow/internal/workflow/repository"
)

type fakeDirectory struct {
	known map[string]bool
}

func (d *fakeDirectory) Exists(_ context.Context, sub string) (bool, error) {
	return d.known[sub], nil
}

func assignPayload() AssignPayload {
	return AssignPayload{
		Title:        "Code of Conduct 2026",
		DocumentType: "policy",
		Category:     "compliance",
		ReferenceURL: "https://files.internal/coc-2026.pdf",
	}
}

func TestAssignSingle_CreatesPendingAck(t *testing.T) {
	svc, _ := newTestService(t)
	rec, err := svc.AssignSingle(context.Background(), reviewer, "emp-7", assignPayload())
	require.NoError(t, err)
	require.Equal(t, workflow.TrackAssignment, rec.Track)
	require.Equal(t, workflow.StatusPendingAck, rec.Status)
	require.Equal(t, "emp-7", rec.AssigneeID)
	require.False(t, rec.Acknowledged)

	entries, err := svc.Trail(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, workflow.StatusAssigned, entries[0].FromStatus)
	require.Equal(t, workflow.StatusPendingAck, entries[0].ToStatus)
}

func TestAssignBulk_IndependentRecords(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ids := []string{"emp-1", "emp-2", "emp-3", "emp-2"} // duplicate collapsed
	results, err := svc.AssignBulk(ctx, reviewer, ids, assignPayload())
	require.NoError(t, err)
	require.Len(t, results, 3)
	seen := map[string]string{}
	for _, r := range results {
		require.NoError(t, r.Err)
		require.NotNil(t, r.Record)
		seen[r.AssigneeID] = r.Record.ID
	}
	require.Len(t, seen, 3)

	// acknowledging one leaves the others untouched
	_, err = svc.Acknowledge(ctx, seen["emp-2"], authz.Actor{ID: "emp-2"})
	require.NoError(t, err)
	for _, emp := range []string{"emp-1", "emp-3"} {
		rec, _, err := svc.Get(ctx, seen[emp])
		require.NoError(t, err)
		require.Equal(t, workflow.StatusPendingAck, rec.Status)
	}
}

func TestAssignBulk_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AssignBulk(ctx, reviewer, nil, assignPayload())
	require.True(t, errors.Is(err, workflow.ErrValidation))

	p := assignPayload()
	p.Title = ""
	_, err = svc.AssignBulk(ctx, reviewer, []string{"emp-1"}, p)
	require.True(t, errors.Is(err, workflow.ErrValidation))

	_, err = svc.AssignBulk(ctx, owner, []string{"emp-1"}, assignPayload())
	require.True(t, errors.Is(err, workflow.ErrForbidden), "assignment requires an admin role")
}

func TestAssignBulk_UnknownAssigneeFailsOnlyThatRecipient(t *testing.T) {
	dir := &fakeDirectory{known: map[string]bool{"emp-1": true, "emp-3": true}}
	svc, _ := newTestService(t, WithDirectory(dir))
	ctx := context.Background()

	results, err := svc.AssignBulk(ctx, reviewer, []string{"emp-1", "emp-2", "emp-3"}, assignPayload())
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	require.True(t, errors.Is(results[1].Err, workflow.ErrNotFound))
	require.NoError(t, results[2].Err)
}

func TestAcknowledge_Idempotent(t *testing.T) {
	fixed := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()
	assignee := authz.Actor{ID: "emp-5"}

	rec, err := svc.AssignSingle(ctx, reviewer, "emp-5", assignPayload())
	require.NoError(t, err)

	rec, err = svc.Acknowledge(ctx, rec.ID, assignee)
	require.NoError(t, err)
	require.True(t, rec.Acknowledged)
	require.Equal(t, workflow.StatusAcknowledged, rec.Status)
	require.NotNil(t, rec.AcknowledgedAt)
	firstAt := *rec.AcknowledgedAt

	again, err := svc.Acknowledge(ctx, rec.ID, assignee)
	require.NoError(t, err)
	require.Equal(t, firstAt, *again.AcknowledgedAt, "re-ack keeps the original timestamp")

	entries, err := svc.Trail(ctx, rec.ID)
	require.NoError(t, err)
	statusEntries := 0
	for _, e := range entries {
		if e.Kind == workflow.TrailStatus {
			statusEntries++
		}
	}
	require.Equal(t, 2, statusEntries, "no duplicate trail entry on re-ack")
}

func TestAcknowledge_OnlyAssignee(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.AssignSingle(ctx, reviewer, "emp-5", assignPayload())
	require.NoError(t, err)

	_, err = svc.Acknowledge(ctx, rec.ID, authz.Actor{ID: "emp-6"})
	require.True(t, errors.Is(err, workflow.ErrForbidden))

	// admins are not exempt: acknowledgment is personal
	_, err = svc.Acknowledge(ctx, rec.ID, reviewer)
	require.True(t, errors.Is(err, workflow.ErrForbidden))
}

func TestAcknowledge_WrongTrack(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Submit(ctx, owner, submitPayload())
	require.NoError(t, err)
	_, err = svc.Acknowledge(ctx, rec.ID, owner)
	require.True(t, errors.Is(err, workflow.ErrInvalidTransition))
}

func TestScenarioC_TemplateExpansion(t *testing.T) {
	templates := template.NewService(template.NewMemoryRepo())
	svc, _ := newTestService(t, WithTemplates(templates))
	ctx := context.Background()

	tpl, err := templates.Create(ctx, template.CreatePayload{
		Name:         "Security Training 2026",
		Instructions: "Read and acknowledge before April 30.",
		DocumentType: "training",
		Category:     "security",
		Priority:     workflow.PriorityHigh,
		ReferenceURL: "https://files.internal/sec-training.pdf",
	})
	require.NoError(t, err)

	results, err := svc.ExpandTemplate(ctx, reviewer, tpl.ID, []string{"emp-1", "emp-2", "emp-3"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		require.NoError(t, r.Err)
		require.Equal(t, "Security Training 2026", r.Record.Title)
		require.Equal(t, "Read and acknowledge before April 30.", r.Record.Description, "instructions fill an empty description")
		require.Equal(t, workflow.PriorityHigh, r.Record.Priority)
		require.Equal(t, workflow.StatusPendingAck, r.Record.Status)
	}

	// one employee acknowledges; the others stay pending
	_, err = svc.Acknowledge(ctx, results[1].Record.ID, authz.Actor{ID: results[1].AssigneeID})
	require.NoError(t, err)
	pending, err := svc.List(ctx, repository.Filter{Track: workflow.TrackAssignment, Statuses: []workflow.Status{workflow.StatusPendingAck}})
	require.NoError(t, err)
	require.Len(t, pending, 2)

	// the template itself is untouched
	got, err := templates.Get(ctx, tpl.ID)
	require.NoError(t, err)
	require.True(t, got.Active)
	require.Equal(t, tpl.UpdatedAt, got.UpdatedAt)
}

func TestExpandTemplate_InactiveIsNotFound(t *testing.T) {
	templates := template.NewService(template.NewMemoryRepo())
	svc, _ := newTestService(t, WithTemplates(templates))
	ctx := context.Background()

	tpl, err := templates.Create(ctx, template.CreatePayload{
		Name:         "Old Policy",
		DocumentType: "policy",
		ReferenceURL: "https://files.internal/old.pdf",
	})
	require.NoError(t, err)
	inactive := false
	_, err = templates.Update(ctx, tpl.ID, template.CreatePayload{
		Name:         tpl.Name,
		DocumentType: tpl.DocumentType,
		ReferenceURL: tpl.ReferenceURL,
	}, &inactive)
	require.NoError(t, err)

	_, err = svc.ExpandTemplate(ctx, reviewer, tpl.ID, []string{"emp-1"})
	require.True(t, errors.Is(err, workflow.ErrNotFound))

	_, err = svc.ExpandTemplate(ctx, reviewer, "no-such-template", []string{"emp-1"})
	require.True(t, errors.Is(err, workflow.ErrNotFound))
}

func TestAssignedTo_ListsOnlyOwnAssignments(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AssignBulk(ctx, reviewer, []string{"emp-1", "emp-2"}, assignPayload())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, authz.Actor{ID: "emp-1"}, submitPayload())
	require.NoError(t, err)

	mine, err := svc.AssignedTo(ctx, "emp-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "emp-1", mine[0].AssigneeID)
}
