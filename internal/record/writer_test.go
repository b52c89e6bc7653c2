package record

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/instascrape/internal/profile"
)

type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}

func TestFormatLine(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 9, 17, 4, 5, 0, time.FixedZone("EST", -5*3600))
	got := FormatLine(ts, profile.Observation{Followers: 114, Following: 128, Posts: 29})
	require.Equal(t, "2024-03-09T22:04:05Z,114\n", got)
}

func TestWriterAppendsWithoutTruncating(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "followers.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte("2020-01-01T00:00:00Z,1\n"), 0o600))

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), step: 10 * time.Second}
	w, err := Open(path, clock)
	require.NoError(t, err)
	require.Equal(t, path, w.Path())
	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, w.Record(profile.Observation{Followers: 100 + i}))
	}
	require.NoError(t, w.Close())

	w, err = Open(path, clock)
	require.NoError(t, err)
	require.NoError(t, w.Record(profile.Observation{Followers: 200}))
	require.NoError(t, w.Close())

	require.Equal(t, []string{
		"2020-01-01T00:00:00Z,1",
		"2024-01-01T00:00:00Z,101",
		"2024-01-01T00:00:10Z,102",
		"2024-01-01T00:00:20Z,103",
		"2024-01-01T00:00:30Z,200",
	}, readLines(t, path))
}

func TestOpenCreatesMissingFileAndDirs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "out.csv")
	w, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, w.Record(profile.Observation{Followers: 5}))
	require.NoError(t, w.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	require.True(t, strings.HasSuffix(lines[0], ",5"))
	_, err = time.Parse(time.RFC3339, strings.TrimSuffix(lines[0], ",5"))
	require.NoError(t, err)
}

func TestOpenFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Open(dir, nil)
	require.ErrorIs(t, err, profile.OutputOpenFailed)
}

type stubOut struct {
	writeErr error
	syncErr  error
	buf      strings.Builder
	syncs    int
}

func (s *stubOut) Write(p []byte) (int, error) {
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	return s.buf.Write(p)
}

func (s *stubOut) Sync() error {
	s.syncs++
	return s.syncErr
}

func TestRecordDistinguishesWriteAndFlushFailures(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Unix(0, 0).UTC()}

	out := &stubOut{writeErr: errors.New("no space left on device")}
	err := newWriter(out, clock).Record(profile.Observation{Followers: 1})
	require.ErrorIs(t, err, profile.WriteFailed)
	require.NotErrorIs(t, err, profile.FlushFailed)
	require.Zero(t, out.syncs)

	out = &stubOut{syncErr: errors.New("input/output error")}
	err = newWriter(out, clock).Record(profile.Observation{Followers: 1})
	require.ErrorIs(t, err, profile.FlushFailed)
	require.Equal(t, "1970-01-01T00:00:00Z,1\n", out.buf.String())

	out = &stubOut{}
	require.NoError(t, newWriter(out, clock).Record(profile.Observation{Followers: 2}))
	require.Equal(t, 1, out.syncs)
}
