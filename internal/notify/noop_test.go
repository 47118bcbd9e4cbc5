package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoOpNotifier_NotifyJob(t *testing.T) {
	t.Parallel()

	n := NewNoOpNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := n.NotifyJob(context.Background(), &JobEvent{
		JobID: "job-1",
		Name:  "inventory",
		State: "done",
	})
	require.NoError(t, err)
}

// compile-time interface checks.
var (
	_ Notifier = (*NoOpNotifier)(nil)
	_ Notifier = (*WebhookNotifier)(nil)
	_ Notifier = (*NATSNotifier)(nil)
	_ Notifier = Multi(nil)
)
