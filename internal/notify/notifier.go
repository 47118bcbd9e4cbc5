// Package notify defines the notification interface and implementations
// for report job completion events.
package notify

import (
	"context"
	"time"

	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

// JobEvent is published when a report job reaches a final state.
type JobEvent struct {
	JobID           string    `json:"job_id"`
	Name            string    `json:"name"`
	ReportType      string    `json:"report_type"`
	RequestID       string    `json:"request_id,omitempty"`
	ReportID        string    `json:"report_id,omitempty"`
	State           string    `json:"state"`
	Status          string    `json:"status,omitempty"`
	ArchiveLocation string    `json:"archive_location,omitempty"`
	Bytes           int64     `json:"bytes"`
	Error           string    `json:"error,omitempty"`
	DurationSeconds float64   `json:"duration_seconds"`
	CompletedAt     time.Time `json:"completed_at"`
}

// EventFromJob builds the event for a finished job.
func EventFromJob(j *domain.Job) *JobEvent {
	ev := &JobEvent{
		JobID:           j.ID,
		Name:            j.Name,
		ReportType:      j.ReportType,
		RequestID:       j.RequestID,
		ReportID:        j.ReportID,
		State:           string(j.State),
		Status:          j.Status,
		ArchiveLocation: j.ArchiveLocation,
		Bytes:           j.Bytes,
		Error:           j.ErrorText,
		DurationSeconds: j.Duration().Seconds(),
	}
	if j.CompletedAt != nil {
		ev.CompletedAt = *j.CompletedAt
	}
	return ev
}

// Notifier delivers job completion events.
type Notifier interface {
	NotifyJob(ctx context.Context, ev *JobEvent) error
}
