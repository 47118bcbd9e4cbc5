package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/mws-sync/internal/notify"
	"github.com/donaldgifford/mws-sync/internal/notify/mocks"
)

func TestMulti_NotifyJob(t *testing.T) {
	t.Parallel()

	ev := &notify.JobEvent{JobID: "job-1", State: "failed"}

	first := mocks.NewMockNotifier(t)
	second := mocks.NewMockNotifier(t)
	third := mocks.NewMockNotifier(t)
	first.EXPECT().NotifyJob(mock.Anything, ev).Return(errors.New("webhook down"))
	second.EXPECT().NotifyJob(mock.Anything, ev).Return(nil)
	third.EXPECT().NotifyJob(mock.Anything, ev).Return(errors.New("nats down"))

	err := notify.Multi{first, second, third}.NotifyJob(context.Background(), ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook down")
	assert.Contains(t, err.Error(), "nats down")
}

func TestMulti_Empty(t *testing.T) {
	t.Parallel()

	require.NoError(t, notify.Multi{}.NotifyJob(context.Background(), &notify.JobEvent{}))
}
