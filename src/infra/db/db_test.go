package db

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

// trackedConn counts Close calls so tests can see connections being torn down.
type trackedConn struct {
	pgxmock.PgxConnIface
	closed *atomic.Int32
}

func (c trackedConn) Close(context.Context) error {
	c.closed.Add(1)
	return nil
}

// fakeDialer hands out fresh mock connections and counts dials and closes.
type fakeDialer struct {
	dials  atomic.Int32
	closed atomic.Int32
}

func (f *fakeDialer) connect(context.Context) (Conn, error) {
	mock, err := pgxmock.NewConn()
	if err != nil {
		return nil, err
	}
	f.dials.Add(1)
	return trackedConn{PgxConnIface: mock, closed: &f.closed}, nil
}

func newTestPool(t *testing.T, cfg PoolConfig) (*Pool, *fakeDialer) {
	t.Helper()
	dialer := &fakeDialer{}
	pool, err := NewPool(dialer.connect, cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = pool.Drain(ctx)
	})
	return pool, dialer
}

// newMockDB opens a single-connection DB over mock. The startup probe's
// ping is expected on the caller's behalf.
func newMockDB(t *testing.T, mock pgxmock.PgxConnIface, opts ...func(*Options)) *DB {
	t.Helper()
	return newMockDBWithLogger(t, mock, discardLogger(), opts...)
}

func newMockDBWithLogger(t *testing.T, mock pgxmock.PgxConnIface, log *slog.Logger, opts ...func(*Options)) *DB {
	t.Helper()
	mock.ExpectPing()

	o := Options{
		Pool:          PoolConfig{MaxSize: 1, AcquireTimeout: time.Second},
		HealthTimeout: time.Second,
		DrainTimeout:  time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	d, err := Open(context.Background(), func(context.Context) (Conn, error) { return mock, nil }, o, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Shutdown(context.Background()) })
	return d
}

func newMock(t *testing.T) pgxmock.PgxConnIface {
	t.Helper()
	mock, err := pgxmock.NewConn()
	require.NoError(t, err)
	return mock
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// logSink collects JSON log records.
type logSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *logSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *logSink) records(t *testing.T) []map[string]any {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(s.buf.Bytes()))
	for sc.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	return out
}

func (s *logSink) find(t *testing.T, msg string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, rec := range s.records(t) {
		if rec["msg"] == msg {
			out = append(out, rec)
		}
	}
	return out
}

func newJSONLogger(sink *logSink) *slog.Logger {
	return slog.New(slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// waitForTotal waits for the pool to settle at want connections. Destroyed
// connections are closed and removed in the background.
func waitForTotal(t *testing.T, stats func() Stats, want int32) {
	t.Helper()
	require.Eventually(t, func() bool { return stats().Total == want }, time.Second, 5*time.Millisecond,
		"pool still holds %d connections", stats().Total)
}
