package workflow

// Submission-track transition table. approve/reject/request-revision are all
// valid from both submitted and under_review: starting review is an optional
// intermediate signal, not a gate.
var submissionTransitions = map[Status][]Status{
	StatusDraft:             {StatusSubmitted},
	StatusSubmitted:         {StatusUnderReview, StatusApproved, StatusRejected, StatusRevisionRequested},
	StatusUnderReview:       {StatusApproved, StatusRejected, StatusRevisionRequested},
	StatusRevisionRequested: {StatusSubmitted},
	StatusApproved:          nil,
	StatusRejected:          nil,
}

// Assignment-track transition table. assigned is projected as
// pending_acknowledgment, so both may move to acknowledged.
var assignmentTransitions = map[Status][]Status{
	StatusAssigned:     {StatusPendingAck, StatusAcknowledged},
	StatusPendingAck:   {StatusAcknowledged},
	StatusAcknowledged: nil,
}

// CanTransition reports whether a record on the given track may move from
// one status to another.
func CanTransition(t Track, from, to Status) bool {
	var table map[Status][]Status
	switch t {
	case TrackSubmission:
		table = submissionTransitions
	case TrackAssignment:
		table = assignmentTransitions
	default:
		return false
	}
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Reviewable reports whether a review decision may be taken from s.
func Reviewable(s Status) bool {
	return s == StatusSubmitted || s == StatusUnderReview
}
