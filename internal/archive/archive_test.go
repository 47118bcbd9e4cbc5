package archive_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/mws-sync/internal/archive"
	"github.com/donaldgifford/mws-sync/internal/archive/mocks"
)

var reportDay = time.Date(2026, 3, 7, 22, 15, 0, 0, time.FixedZone("PST", -8*3600))

func TestKey(t *testing.T) {
	t.Parallel()

	// 22:15 PST is the next day in UTC.
	assert.Equal(t, "inventory/2026/03/08/5001.txt", archive.Key("inventory", "5001", reportDay))
}

func TestArchive_Store(t *testing.T) {
	t.Parallel()

	payload := []byte("sku\tqty\nA\t1\n")

	tests := []struct {
		name    string
		gzip    bool
		wantKey string
		sinkErr error
		wantErr bool
	}{
		{
			name:    "plain payload",
			wantKey: "inventory/2026/03/08/5001.txt",
		},
		{
			name:    "gzip payload",
			gzip:    true,
			wantKey: "inventory/2026/03/08/5001.txt.gz",
		},
		{
			name:    "sink error",
			wantKey: "inventory/2026/03/08/5001.txt",
			sinkErr: errors.New("disk full"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sink := mocks.NewMockSink(t)
			var written []byte
			sink.EXPECT().
				Put(mock.Anything, tt.wantKey, mock.Anything).
				RunAndReturn(func(_ context.Context, key string, data []byte) (string, error) {
					written = data
					if tt.sinkErr != nil {
						return "", tt.sinkErr
					}
					return "mem://" + key, nil
				})

			a := archive.New(sink, archive.WithGzip(tt.gzip))
			entry, err := a.Store(context.Background(), "inventory", "5001", reportDay, payload)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.sinkErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "mem://"+tt.wantKey, entry.Location)
			assert.Equal(t, int64(len(written)), entry.Bytes)

			if tt.gzip {
				plain, err := archive.Decompress(written)
				require.NoError(t, err)
				assert.Equal(t, payload, plain)
			} else {
				assert.Equal(t, payload, written)
			}
		})
	}
}

func TestFileSink_Put(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sink := archive.NewFileSink(dir)

	loc, err := sink.Put(context.Background(), "orders/2026/03/08/1.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "orders", "2026", "03", "08", "1.txt"), loc)

	got, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))

	// Overwrites in place and leaves no temp files behind.
	_, err = sink.Put(context.Background(), "orders/2026/03/08/1.txt", []byte("again"))
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Dir(loc))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	got, err = os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "again", string(got))
}

func TestFileSink_Put_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := archive.NewFileSink(t.TempDir()).Put(ctx, "a.txt", []byte("x"))
	require.ErrorIs(t, err, context.Canceled)
}

type fakeS3 struct {
	in  *s3.PutObjectInput
	err error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Sink_Put(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		prefix    string
		key       string
		wantKey   string
		wantType  string
		putErr    error
		wantError bool
	}{
		{
			name:     "no prefix",
			key:      "inventory/2026/03/08/1.txt",
			wantKey:  "inventory/2026/03/08/1.txt",
			wantType: "text/tab-separated-values",
		},
		{
			name:     "prefix trimmed and joined",
			prefix:   "/mws/reports/",
			key:      "inventory/2026/03/08/1.txt.gz",
			wantKey:  "mws/reports/inventory/2026/03/08/1.txt.gz",
			wantType: "application/gzip",
		},
		{
			name:      "put fails",
			key:       "a.txt",
			wantKey:   "a.txt",
			putErr:    errors.New("access denied"),
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &fakeS3{err: tt.putErr}
			sink := archive.NewS3Sink(client, "bucket", tt.prefix)

			loc, err := sink.Put(context.Background(), tt.key, []byte("data"))
			require.NotNil(t, client.in)
			assert.Equal(t, "bucket", *client.in.Bucket)
			assert.Equal(t, tt.wantKey, *client.in.Key)
			if tt.wantError {
				require.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), "s3://bucket/"+tt.wantKey))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "s3://bucket/"+tt.wantKey, loc)
			assert.Equal(t, tt.wantType, *client.in.ContentType)
			assert.Equal(t, int64(4), *client.in.ContentLength)
		})
	}
}
