package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

const defaultFlushTimeout = 5 * time.Second

// natsConn is the part of *nats.Conn the notifier uses.
type natsConn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	IsConnected() bool
	Close()
}

// NATSNotifier publishes events to <subject>.<state>, e.g. mws.jobs.done.
type NATSNotifier struct {
	conn    natsConn
	subject string
}

// NewNATSNotifier connects to url.
func NewNATSNotifier(url, subject string, opts ...nats.Option) (*NATSNotifier, error) {
	opts = append([]nats.Option{nats.Name("mws-sync")}, opts...)
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	return newNATSNotifier(nc, subject), nil
}

func newNATSNotifier(conn natsConn, subject string) *NATSNotifier {
	return &NATSNotifier{conn: conn, subject: subject}
}

// NotifyJob publishes the event and waits for the server to acknowledge the
// flush, bounded by the context deadline when one is set.
func (n *NATSNotifier) NotifyJob(ctx context.Context, ev *JobEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling nats payload: %w", err)
	}

	subject := n.subject + "." + ev.State
	if err := n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}

	timeout := defaultFlushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}
	if err := n.conn.FlushTimeout(timeout); err != nil {
		return fmt.Errorf("flushing nats connection: %w", err)
	}
	return nil
}

// Ping reports whether the connection is up. It backs the readiness check.
func (n *NATSNotifier) Ping(context.Context) error {
	if !n.conn.IsConnected() {
		return errors.New("nats connection is down")
	}
	return nil
}

// Close closes the connection.
func (n *NATSNotifier) Close() {
	n.conn.Close()
}
