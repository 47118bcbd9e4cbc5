package notify

import (
	"context"
	"errors"
)

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

// NotifyJob calls each notifier in order.
func (m Multi) NotifyJob(ctx context.Context, ev *JobEvent) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyJob(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
