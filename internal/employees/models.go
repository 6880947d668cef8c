package employees

import "time"

// Employee is the directory entry for a person the engine acts on behalf of
// or assigns documents to, mapped from the identity provider's claims. The
// directory is a mirror, not the source of truth: identity is owned by the
// external IdP.
type Employee struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	Sub        string    `bson:"sub" json:"sub"` // OIDC subject
	Email      string    `bson:"email" json:"email"`
	Name       string    `bson:"name" json:"name"`
	Department string    `bson:"department,omitempty" json:"department,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
