// Package domain defines the persisted types of the report sync daemon.
package domain

import "time"

// JobState is the daemon's view of a report job, independent of the
// service's processing status.
type JobState string

// Job state constants.
const (
	// JobStateRequested is set before the report request is sent.
	JobStateRequested JobState = "requested"
	// JobStatePolling means the service accepted the request and the job
	// is being polled. Jobs left in this state are resumed on restart.
	JobStatePolling JobState = "polling"
	JobStateDone    JobState = "done"
	JobStateFailed  JobState = "failed"
)

// Active reports whether a job in state s still needs work.
func (s JobState) Active() bool {
	return s == JobStateRequested || s == JobStatePolling
}

// Job is one run of a configured report definition.
type Job struct {
	ID         string   `json:"id"                    db:"id"`
	Name       string   `json:"name"                  db:"name"`
	ReportType string   `json:"report_type"           db:"report_type"`
	RequestID  string   `json:"request_id,omitempty"  db:"request_id"`
	ReportID   string   `json:"report_id,omitempty"   db:"report_id"`
	State      JobState `json:"state"                 db:"state"`
	// Status is the last processing status the service reported.
	Status string `json:"status,omitempty" db:"status"`
	Polls  int    `json:"polls"            db:"polls"`

	ArchiveLocation string `json:"archive_location,omitempty" db:"archive_location"`
	Bytes           int64  `json:"bytes"                      db:"bytes"`
	AckError        string `json:"ack_error,omitempty"        db:"ack_error"`
	ErrorText       string `json:"error,omitempty"            db:"error_text"`

	CreatedAt   time.Time  `json:"created_at"             db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"             db:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// Duration returns how long the job took, or zero while it is active.
func (j *Job) Duration() time.Duration {
	if j.CompletedAt == nil {
		return 0
	}
	return j.CompletedAt.Sub(j.CreatedAt)
}
