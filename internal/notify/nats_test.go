package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject    string
	data       []byte
	publishErr error
	flushErr   error
	flushed    time.Duration
	closed     bool
	down       bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return f.publishErr
}

func (f *fakeConn) FlushTimeout(timeout time.Duration) error {
	f.flushed = timeout
	return f.flushErr
}

func (f *fakeConn) IsConnected() bool { return !f.down }

func (f *fakeConn) Close() { f.closed = true }

func TestNATSNotifier_NotifyJob(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	n := newNATSNotifier(conn, "mws.jobs")

	require.NoError(t, n.NotifyJob(context.Background(), testEvent()))
	assert.Equal(t, "mws.jobs.done", conn.subject)
	assert.Equal(t, defaultFlushTimeout, conn.flushed)

	var got JobEvent
	require.NoError(t, json.Unmarshal(conn.data, &got))
	assert.Equal(t, "inventory", got.Name)

	n.Close()
	assert.True(t, conn.closed)
}

func TestNATSNotifier_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		conn   *fakeConn
		ctx    func() (context.Context, context.CancelFunc)
		errMsg string
	}{
		{
			name:   "publish fails",
			conn:   &fakeConn{publishErr: errors.New("nats: connection closed")},
			ctx:    func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) },
			errMsg: "publishing to mws.jobs.done",
		},
		{
			name:   "flush fails",
			conn:   &fakeConn{flushErr: errors.New("nats: timeout")},
			ctx:    func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) },
			errMsg: "flushing nats connection",
		},
		{
			name: "deadline already passed",
			conn: &fakeConn{},
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
			},
			errMsg: context.DeadlineExceeded.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := tt.ctx()
			defer cancel()

			err := newNATSNotifier(tt.conn, "mws.jobs").NotifyJob(ctx, testEvent())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestNATSNotifier_Ping(t *testing.T) {
	t.Parallel()

	conn := &fakeConn{}
	n := newNATSNotifier(conn, "mws.jobs")
	require.NoError(t, n.Ping(context.Background()))

	conn.down = true
	assert.EqualError(t, n.Ping(context.Background()), "nats connection is down")
}
