package tailer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prism-overlay/bwoverlay/internal/tailer"
)

func TestTailer_ReadsExistingAndAppendedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latest.log")
	require.NoError(t, os.WriteFile(path, []byte("line one\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tl := tailer.New(path, nil)
	errs := make(chan error, 8)
	lines := tl.Lines(ctx, errs)

	require.Equal(t, "line one", mustNextLine(t, lines))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("line two\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Equal(t, "line two", mustNextLine(t, lines))
}

func TestTailer_SurvivesTruncation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latest.log")
	require.NoError(t, os.WriteFile(path, []byte("before truncate\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tl := tailer.New(path, nil)
	errs := make(chan error, 8)
	lines := tl.Lines(ctx, errs)

	require.Equal(t, "before truncate", mustNextLine(t, lines))

	require.NoError(t, os.WriteFile(path, []byte("after truncate\n"), 0o644))

	require.Equal(t, "after truncate", mustNextLine(t, lines))
}

func mustNextLine(t *testing.T, lines <-chan string) string {
	t.Helper()
	select {
	case l := <-lines:
		return l
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for line")
		return ""
	}
}
