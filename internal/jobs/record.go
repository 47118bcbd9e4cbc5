// Package jobs models the service's asynchronous jobs (report requests and
// feed submissions) and polls them to a terminal state.
package jobs

import (
	"errors"
	"fmt"
	"time"
)

// Processing statuses reported by the service.
const (
	StatusSubmitted       = "_SUBMITTED_"
	StatusInProgress      = "_IN_PROGRESS_"
	StatusDone            = "_DONE_"
	StatusDoneNoData      = "_DONE_NO_DATA_"
	StatusCancelled       = "_CANCELLED_"
	StatusAwaitingReply   = "_AWAITING_ASYNCHRONOUS_REPLY_"
	StatusUnconfirmed     = "_UNCONFIRMED_"
	StatusInSafetyNet     = "_IN_SAFETY_NET_"
	StatusDoneWithWarning = "_DONE_WITH_WARNING_"
)

// Kind identifies the job family.
type Kind string

// Job kinds.
const (
	KindReport Kind = "report"
	KindFeed   Kind = "feed"
)

var (
	// ErrPollTimeout is returned when a job has not completed within the
	// poller's attempt or wall-clock bound.
	ErrPollTimeout = errors.New("job polling timed out")

	// ErrNotFound is returned by a status lookup that matched no job.
	ErrNotFound = errors.New("job not found")
)

// Record is one observation of a job's state. CompletedAt is set exactly
// when the job is terminal.
type Record struct {
	Kind        Kind
	ID          string
	Type        string
	Status      string
	SubmittedAt *time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
	// ResultID is the generated report id for report jobs.
	ResultID string
}

// Terminal reports whether the job has finished.
func (r *Record) Terminal() bool {
	return r.CompletedAt != nil
}

// Succeeded reports whether the job finished with StatusDone.
func (r *Record) Succeeded() bool {
	return r.Terminal() && r.Status == StatusDone
}

// FailedError is returned when a job finished with any status other than
// StatusDone.
type FailedError struct {
	Kind   Kind
	ID     string
	Status string
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%s %s finished with status %s", e.Kind, e.ID, e.Status)
}
