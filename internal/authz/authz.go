package authz

import (
	"github.com/peopleops/docflow/internal/workflow"
)

// Admin role names accepted from the identity provider's claims.
var adminRoles = map[string]struct{}{
	"admin":    {},
	"hr_admin": {},
}

// Actor is the authenticated principal acting on the engine, extracted from
// verified token claims. Role semantics are owned by the external identity
// service; the engine only consumes them.
type Actor struct {
	ID    string
	Email string
	Name  string
	Roles []string
}

func (a Actor) IsAdmin() bool {
	for _, r := range a.Roles {
		if _, ok := adminRoles[r]; ok {
			return true
		}
	}
	return false
}

// FromClaims extracts an Actor from an OIDC/JWT claims map. Roles are read
// from a flat "roles" claim or from Keycloak's "realm_access.roles".
func FromClaims(claims map[string]interface{}) Actor {
	a := Actor{}
	a.ID, _ = claims["sub"].(string)
	a.Email, _ = claims["email"].(string)
	a.Name, _ = claims["name"].(string)
	if raw, ok := claims["roles"].([]interface{}); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				a.Roles = append(a.Roles, s)
			}
		}
	}
	if ra, ok := claims["realm_access"].(map[string]interface{}); ok {
		if raw, ok := ra["roles"].([]interface{}); ok {
			for _, r := range raw {
				if s, ok := r.(string); ok {
					a.Roles = append(a.Roles, s)
				}
			}
		}
	}
	return a
}

// Authorizer is the capability check hook the engine delegates to. Role and
// ownership policy live here, not in the state machine.
type Authorizer interface {
	// CanDelete decides whether the actor may hard-delete the record.
	CanDelete(actor Actor, rec *workflow.DocumentRecord) error
	// CanReview decides whether the actor may take review decisions
	// (start review, approve, reject, request revision).
	CanReview(actor Actor, rec *workflow.DocumentRecord) error
	// CanAssign decides whether the actor may push documents to employees,
	// directly or via template expansion.
	CanAssign(actor Actor) error
}

// RolePolicy is the default Authorizer: admins may delete anything and review
// everything; owners may delete their own submissions only while in draft,
// rejected or revision_requested.
type RolePolicy struct{}

func NewRolePolicy() RolePolicy { return RolePolicy{} }

func (RolePolicy) CanDelete(actor Actor, rec *workflow.DocumentRecord) error {
	if actor.IsAdmin() {
		return nil
	}
	if rec.Track == workflow.TrackSubmission && actor.ID == rec.OwnerID {
		switch rec.Status {
		case workflow.StatusDraft, workflow.StatusRejected, workflow.StatusRevisionRequested:
			return nil
		}
		return workflow.Forbiddenf("owner may delete only draft, rejected or revision_requested documents")
	}
	return workflow.Forbiddenf("only an admin may delete this document")
}

func (RolePolicy) CanReview(actor Actor, rec *workflow.DocumentRecord) error {
	if actor.IsAdmin() {
		return nil
	}
	return workflow.Forbiddenf("review decisions require an admin role")
}

func (RolePolicy) CanAssign(actor Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	return workflow.Forbiddenf("assigning documents requires an admin role")
}

// AllowAll grants every capability. Used in tests and trusted internal setups.
type AllowAll struct{}

func (AllowAll) CanDelete(Actor, *workflow.DocumentRecord) error { return nil }
func (AllowAll) CanReview(Actor, *workflow.DocumentRecord) error { return nil }
func (AllowAll) CanAssign(Actor) error                           { return nil }
