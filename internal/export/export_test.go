package export

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	data  []byte
	err   error
	calls atomic.Int64
}

func (s *staticSource) Export(context.Context) ([]byte, error) {
	s.calls.Add(1)
	return s.data, s.err
}

// mockDestination records calls to Write.
type mockDestination struct {
	mu     sync.Mutex
	writes int
	last   []byte
	err    error
}

func (d *mockDestination) Write(_ context.Context, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.writes++
	d.last = append([]byte(nil), data...)
	return nil
}

func (d *mockDestination) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writes
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileDestination_Write(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "contacts.csv")
	d := NewFileDestination(path)

	require.NoError(t, d.Write(context.Background(), []byte("name\nAda\n")))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name\nAda\n", string(got))

	// Overwrite replaces the whole file and leaves no temp files behind.
	require.NoError(t, d.Write(context.Background(), []byte("name\n")))
	got, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name\n", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNewFileDestination_Paths(t *testing.T) {
	assert.Equal(t, DefaultFileName, NewFileDestination("").Path)

	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, DefaultFileName), NewFileDestination(dir).Path)
	assert.Equal(t, "file:"+filepath.Join(dir, DefaultFileName), NewFileDestination(dir).String())
}

func TestFileDestination_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewFileDestination(filepath.Join(t.TempDir(), "c.csv"))
	assert.ErrorIs(t, d.Write(ctx, []byte("x")), context.Canceled)
}

func TestRun_WritesAllDestinations(t *testing.T) {
	src := &staticSource{data: []byte("a,b\n")}
	ok := &mockDestination{}
	bad := &mockDestination{err: errors.New("disk full")}

	n, err := Run(context.Background(), src, []Destination{bad, ok}, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 4, n)
	assert.Equal(t, 1, ok.count(), "a failing destination does not stop the others")
	assert.Equal(t, "a,b\n", string(ok.last))
}

func TestRun_SourceFailure(t *testing.T) {
	src := &staticSource{err: errors.New("Failed to export contacts")}
	dest := &mockDestination{}

	_, err := Run(context.Background(), src, []Destination{dest}, quietLogger())
	require.Error(t, err)
	assert.Zero(t, dest.count())
}

func TestSchedulerStartStop(t *testing.T) {
	src := &staticSource{data: []byte("name\n")}
	dest := &mockDestination{}
	clock := clockwork.NewFakeClock()

	sched := NewScheduler(src, []Destination{dest}, time.Hour, clock, quietLogger())
	sched.Start()

	require.Eventually(t, func() bool { return dest.count() == 1 }, 2*time.Second, 5*time.Millisecond)

	clock.Advance(time.Hour)
	require.Eventually(t, func() bool { return dest.count() == 2 }, 2*time.Second, 5*time.Millisecond)

	sched.Stop()
	assert.Equal(t, int64(2), src.calls.Load())
}

func TestSchedulerStop_NoStart(t *testing.T) {
	sched := NewScheduler(&staticSource{}, nil, time.Minute, nil, quietLogger())
	// Stop without Start should not panic.
	sched.Stop()
}

func TestSchedulerMultipleDestinations(t *testing.T) {
	src := &staticSource{data: []byte("x")}
	dest1 := &mockDestination{}
	dest2 := &mockDestination{}

	sched := NewScheduler(src, []Destination{dest1, dest2}, time.Hour, clockwork.NewFakeClock(), quietLogger())
	sched.Start()
	require.Eventually(t, func() bool { return dest1.count() >= 1 && dest2.count() >= 1 }, 2*time.Second, 5*time.Millisecond)
	sched.Stop()
}

func TestS3Destination_Write(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "none"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "none"))

	var (
		mu     sync.Mutex
		method string
		path   string
		ctype  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path, ctype = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		mu.Unlock()
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d, err := NewS3Destination(context.Background(), "crm-exports", "daily/contacts.csv", "us-east-1", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "s3://crm-exports/daily/contacts.csv", d.String())

	require.NoError(t, d.Write(context.Background(), []byte("name\nAda\n")))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/crm-exports/daily/contacts.csv", path)
	assert.Equal(t, "text/csv", ctype)
}

func TestNewS3Destination_RequiresBucket(t *testing.T) {
	_, err := NewS3Destination(context.Background(), "", "k", "us-east-1", "")
	assert.Error(t, err)
}
