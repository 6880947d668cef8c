package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peopleops/docflow/internal/workflow"
)

func TestFromClaims(t *testing.T) {
	a := FromClaims(map[string]interface{}{
		"sub":   "emp-1",
		"email": "emp@corp.example",
		"roles": []interface{}{"employee"},
		"realm_access": map[string]interface{}{
			"roles": []interface{}{"hr_admin"},
		},
	})
	require.Equal(t, "emp-1", a.ID)
	require.Contains(t, a.Roles, "employee")
	require.True(t, a.IsAdmin())

	b := FromClaims(map[string]interface{}{"sub": "emp-2"})
	require.False(t, b.IsAdmin())
}

func TestRolePolicy_CanDelete(t *testing.T) {
	p := NewRolePolicy()
	owner := Actor{ID: "emp-1"}
	admin := Actor{ID: "hr-1", Roles: []string{"hr_admin"}}

	rec := &workflow.DocumentRecord{Track: workflow.TrackSubmission, OwnerID: "emp-1", Status: workflow.StatusRejected}
	require.NoError(t, p.CanDelete(owner, rec))
	require.NoError(t, p.CanDelete(admin, rec))

	rec.Status = workflow.StatusApproved
	err := p.CanDelete(owner, rec)
	require.True(t, errors.Is(err, workflow.ErrForbidden))
	require.NoError(t, p.CanDelete(admin, rec))

	other := Actor{ID: "emp-2"}
	require.Error(t, p.CanDelete(other, rec))
}

func TestRolePolicy_CanReview(t *testing.T) {
	p := NewRolePolicy()
	rec := &workflow.DocumentRecord{Track: workflow.TrackSubmission, Status: workflow.StatusSubmitted}
	require.Error(t, p.CanReview(Actor{ID: "emp-1"}, rec))
	require.NoError(t, p.CanReview(Actor{ID: "hr-1", Roles: []string{"admin"}}, rec))
}

func TestRolePolicy_CanAssign(t *testing.T) {
	p := NewRolePolicy()
	require.Error(t, p.CanAssign(Actor{ID: "emp-1"}))
	require.NoError(t, p.CanAssign(Actor{ID: "hr-1", Roles: []string{"hr_admin"}}))
}
