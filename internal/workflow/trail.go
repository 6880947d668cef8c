package workflow

import "time"

// TrailKind distinguishes free-form comments from synthetic status entries.
type TrailKind string

const (
	TrailComment TrailKind = "comment"
	TrailStatus  TrailKind = "status"
)

// TrailEntry is one immutable element of a record's audit trail. Comments
// carry AuthorID/Text/Internal; status entries carry FromStatus/ToStatus and
// optional notes. Entries are append-only: no edit or delete.
type TrailEntry struct {
	ID       string    `json:"id" bson:"id"`
	RecordID string    `json:"recordId" bson:"recordId"`
	Kind     TrailKind `json:"kind" bson:"kind"`

	AuthorID string `json:"authorId,omitempty" bson:"authorId,omitempty"`
	Text     string `json:"text,omitempty" bson:"text,omitempty"`
	// Internal is a visibility flag consumed by the presentation layer; the
	// engine stores but never filters on it.
	Internal bool `json:"isInternal,omitempty" bson:"isInternal,omitempty"`

	FromStatus Status `json:"fromStatus,omitempty" bson:"fromStatus,omitempty"`
	ToStatus   Status `json:"toStatus,omitempty" bson:"toStatus,omitempty"`
	Notes      string `json:"notes,omitempty" bson:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
