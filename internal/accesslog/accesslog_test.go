package accesslog

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveWritesLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	l, err := Open(path)
	require.NoError(t, err)
	l.now = func() time.Time {
		return time.Date(2024, 3, 9, 14, 5, 7, 123_000_000, time.FixedZone("CET", 3600))
	}

	l.Observe("GET", "/todos")
	l.Observe("DELETE", "/todos/3?force=1")
	require.NoError(t, l.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"2024-03-09T13:05:07.123Z - GET /todos\n"+
			"2024-03-09T13:05:07.123Z - DELETE /todos/3?force=1\n",
		string(b))
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	require.NoError(t, os.WriteFile(path, []byte("earlier line\n"), 0o644))

	l, err := Open(path)
	require.NoError(t, err)
	l.Observe("POST", "/todos")
	require.NoError(t, l.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "earlier line", lines[0])
	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z - POST /todos$`), lines[1])
}

func TestOpenCreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.txt")
	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestObserveAfterCloseIsIgnored(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "logs.txt"))
	require.NoError(t, err)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	assert.NotPanics(t, func() { l.Observe("GET", "/todos") })
}

func TestOpenFailure(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "logs.txt"))
	assert.Error(t, err)
}
