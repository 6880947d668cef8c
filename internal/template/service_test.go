package template

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peopleops/docflow/internal/workflow"
)

func TestServiceCreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())

	created, err := svc.Create(ctx, CreatePayload{
		Name:         "Code of Conduct 2026",
		Instructions: "Read and acknowledge by end of month",
		DocumentType: "policy",
		Category:     "compliance",
		Priority:     workflow.PriorityHigh,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.True(t, created.Active)
	require.Equal(t, workflow.PriorityHigh, created.Priority)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Code of Conduct 2026", got.Name)

	inactive := false
	updated, err := svc.Update(ctx, created.ID, CreatePayload{
		Name:         "Code of Conduct 2026 v2",
		DocumentType: "policy",
	}, &inactive)
	require.NoError(t, err)
	require.False(t, updated.Active)

	// inactive templates are invisible to the expander
	_, err = svc.GetActive(ctx, created.ID)
	require.True(t, errors.Is(err, workflow.ErrNotFound))

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.True(t, errors.Is(err, workflow.ErrNotFound))
}

func TestServiceCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepo())

	_, err := svc.Create(ctx, CreatePayload{DocumentType: "policy"})
	require.True(t, errors.Is(err, workflow.ErrValidation))

	_, err = svc.Create(ctx, CreatePayload{Name: "n", DocumentType: "policy", Priority: "blazing"})
	require.True(t, errors.Is(err, workflow.ErrValidation))

	// priority defaults to normal
	created, err := svc.Create(ctx, CreatePayload{Name: "n", DocumentType: "policy"})
	require.NoError(t, err)
	require.Equal(t, workflow.PriorityNormal, created.Priority)
}
