package template

import (
	"time"

	"github.com/peopleops/docflow/internal/workflow"
)

// Template is a named reusable document definition that can be expanded into
// one or more live assignment records. Expansion never mutates the template.
type Template struct {
	ID           string            `json:"id" bson:"id"`
	Name         string            `json:"name" bson:"name"`
	Description  string            `json:"description,omitempty" bson:"description,omitempty"`
	Instructions string            `json:"instructions,omitempty" bson:"instructions,omitempty"`
	DocumentType string            `json:"documentType" bson:"documentType"`
	Category     string            `json:"category,omitempty" bson:"category,omitempty"`
	Priority     workflow.Priority `json:"priority" bson:"priority"`
	ReferenceURL string            `json:"referenceUrl,omitempty" bson:"referenceUrl,omitempty"`
	Active       bool              `json:"active" bson:"active"`
	CreatedAt    time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt" bson:"updatedAt"`
}
