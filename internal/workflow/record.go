package workflow

import "time"

// Track selects which of the two state machines a record belongs to.
// It is immutable after creation.
type Track string

const (
	TrackSubmission Track = "submission"
	TrackAssignment Track = "assignment"
)

func (t Track) Valid() bool {
	return t == TrackSubmission || t == TrackAssignment
}

// Status is the flat wire vocabulary shared by both tracks. Which values are
// legal for a record depends on its Track; see ValidFor.
type Status string

const (
	// Submission track
	StatusDraft             Status = "draft"
	StatusSubmitted         Status = "submitted"
	StatusUnderReview       Status = "under_review"
	StatusApproved          Status = "approved"
	StatusRejected          Status = "rejected"
	StatusRevisionRequested Status = "revision_requested"

	// Assignment track. StatusAssigned is the instant-of-creation marker and
	// is always projected as pending_acknowledgment to consumers.
	StatusAssigned     Status = "assigned"
	StatusPendingAck   Status = "pending_acknowledgment"
	StatusAcknowledged Status = "acknowledged"
)

// ValidFor reports whether the status belongs to the given track's vocabulary.
func (s Status) ValidFor(t Track) bool {
	switch t {
	case TrackSubmission:
		switch s {
		case StatusDraft, StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected, StatusRevisionRequested:
			return true
		}
		return false
	case TrackAssignment:
		switch s {
		case StatusAssigned, StatusPendingAck, StatusAcknowledged:
			return true
		}
		return false
	}
	return false
}

// Normalize maps the creation marker to the externally visible status.
func (s Status) Normalize() Status {
	if s == StatusAssigned {
		return StatusPendingAck
	}
	return s
}

// Terminal reports whether no further transition can leave the status.
// revision_requested is a recoverable branch, not terminal.
func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusAcknowledged:
		return true
	}
	return false
}

// Priority of a record. Urgent records feed the urgentPending stat.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// DocumentRecord is the central entity of the engine. A record lives on
// exactly one track; the review fields (rejectionReason, revisionNotes,
// reviewedAt, approvedAt) are submission-only and the acknowledgment fields
// are assignment-only.
type DocumentRecord struct {
	ID           string `json:"id" bson:"id"`
	Title        string `json:"title" bson:"title"`
	Description  string `json:"description,omitempty" bson:"description,omitempty"`
	DocumentType string `json:"documentType" bson:"documentType"`
	Category     string `json:"category,omitempty" bson:"category,omitempty"`

	// Exactly one of ReferenceURL / (FileName, FileSizeBytes) is set once the
	// record leaves draft.
	ReferenceURL  string `json:"referenceUrl,omitempty" bson:"referenceUrl,omitempty"`
	FileName      string `json:"fileName,omitempty" bson:"fileName,omitempty"`
	FileSizeBytes int64  `json:"fileSizeBytes,omitempty" bson:"fileSizeBytes,omitempty"`

	Priority Priority   `json:"priority" bson:"priority"`
	DueDate  *time.Time `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Tags     []string   `json:"tags,omitempty" bson:"tags,omitempty"`

	Track  Track  `json:"track" bson:"track"`
	Status Status `json:"status" bson:"status"`

	// Version starts at 1 and increments exactly once per resubmission cycle.
	Version int `json:"version" bson:"version"`

	OwnerID    string `json:"ownerId,omitempty" bson:"ownerId,omitempty"`
	AssigneeID string `json:"assigneeId,omitempty" bson:"assigneeId,omitempty"`

	// Mutually exclusive: entering one branch clears the other.
	RejectionReason string `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	RevisionNotes   string `json:"revisionNotes,omitempty" bson:"revisionNotes,omitempty"`

	Acknowledged   bool       `json:"acknowledged,omitempty" bson:"acknowledged,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty" bson:"acknowledgedAt,omitempty"`

	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`

	// Rev is the optimistic-concurrency stamp checked on every write. It is
	// storage plumbing, not the domain version, and stays off the wire.
	Rev int64 `json:"-" bson:"rev"`
}

// HasReferenceURL / HasFileRef describe which content reference is present.
func (r *DocumentRecord) HasReferenceURL() bool { return r.ReferenceURL != "" }
func (r *DocumentRecord) HasFileRef() bool      { return r.FileName != "" }

// ContentRefCount returns how many of the two alternative content references
// are set. Non-draft records require exactly one.
func (r *DocumentRecord) ContentRefCount() int {
	n := 0
	if r.HasReferenceURL() {
		n++
	}
	if r.HasFileRef() {
		n++
	}
	return n
}

// Overdue derives the overdue flag at the given instant. Acknowledged and
// terminal submission records are never overdue.
func (r *DocumentRecord) Overdue(now time.Time) bool {
	if r.DueDate == nil {
		return false
	}
	switch r.Track {
	case TrackAssignment:
		if r.Acknowledged {
			return false
		}
	case TrackSubmission:
		if r.Status.Terminal() {
			return false
		}
	}
	return r.DueDate.Before(now)
}

// PendingReview reports whether a submission record still awaits a decision.
func (r *DocumentRecord) PendingReview() bool {
	return r.Track == TrackSubmission && (r.Status == StatusSubmitted || r.Status == StatusUnderReview)
}

// Clone returns a deep copy so repository callers never alias stored state.
func (r *DocumentRecord) Clone() *DocumentRecord {
	cp := *r
	if r.Tags != nil {
		cp.Tags = append([]string(nil), r.Tags...)
	}
	if r.DueDate != nil {
		d := *r.DueDate
		cp.DueDate = &d
	}
	if r.AcknowledgedAt != nil {
		d := *r.AcknowledgedAt
		cp.AcknowledgedAt = &d
	}
	if r.ReviewedAt != nil {
		d := *r.ReviewedAt
		cp.ReviewedAt = &d
	}
	if r.ApprovedAt != nil {
		d := *r.ApprovedAt
		cp.ApprovedAt = &d
	}
	return &cp
}
