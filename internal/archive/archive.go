// Package archive stores downloaded report payloads in a local directory or
// an S3 bucket, optionally gzip-compressed.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/donaldgifford/mws-sync/internal/metrics"
)

// Sink writes an object under key and returns where it ended up.
type Sink interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// Entry describes an archived report payload.
type Entry struct {
	Location string
	Bytes    int64
}

// Archive names payloads and hands them to a Sink.
type Archive struct {
	sink Sink
	gzip bool
}

// Option configures an Archive.
type Option func(*Archive)

// WithGzip compresses payloads before they are written.
func WithGzip(enabled bool) Option {
	return func(a *Archive) {
		a.gzip = enabled
	}
}

// New creates an Archive writing to sink.
func New(sink Sink, opts ...Option) *Archive {
	a := &Archive{sink: sink}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the object key for a report: name/YYYY/MM/DD/reportID.txt.
func Key(name, reportID string, at time.Time) string {
	at = at.UTC()
	return path.Join(
		name,
		at.Format("2006"),
		at.Format("01"),
		at.Format("02"),
		reportID+".txt",
	)
}

// Store writes a report payload and returns its location and stored size.
func (a *Archive) Store(ctx context.Context, name, reportID string, at time.Time, data []byte) (*Entry, error) {
	key := Key(name, reportID, at)
	if a.gzip {
		compressed, err := Compress(data)
		if err != nil {
			metrics.ArchiveFailuresTotal.Inc()
			return nil, fmt.Errorf("compressing report %s: %w", reportID, err)
		}
		data = compressed
		key += ".gz"
	}

	loc, err := a.sink.Put(ctx, key, data)
	if err != nil {
		metrics.ArchiveFailuresTotal.Inc()
		return nil, fmt.Errorf("archiving report %s: %w", reportID, err)
	}

	metrics.ArchivedBytesTotal.Add(float64(len(data)))
	return &Entry{Location: loc, Bytes: int64(len(data))}, nil
}

// Compress gzips data.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = zr.Close() }()
	return io.ReadAll(zr)
}
