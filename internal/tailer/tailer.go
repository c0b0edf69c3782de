// Package tailer follows a growing log file line by line, surviving
// truncation (the client overwriting its own log on restart) and the file
// being replaced outright (midnight log rotation).
package tailer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

const (
	pollInterval   = 1 * time.Second
	reopenTimeout  = 30 * time.Second
	initialBackoff = 100 * time.Millisecond
)

// Tailer streams newly appended lines from path onto a channel, reopening
// the file whenever it is truncated or replaced.
type Tailer struct {
	path string
	log  *slog.Logger
}

// New returns a Tailer for the file at path. Lines are read from the start
// of the existing file, matching the client's own log replay on launch.
func New(path string, log *slog.Logger) *Tailer {
	if log == nil {
		log = slog.Default()
	}
	return &Tailer{path: path, log: log}
}

// Lines streams each line read from the file onto the returned channel. The
// channel is closed when ctx is cancelled. Errors reopening the file past
// reopenTimeout are sent to errs and do not stop the tailer; it keeps
// retrying until ctx is cancelled.
func (t *Tailer) Lines(ctx context.Context, errs chan<- error) <-chan string {
	out := make(chan string)
	go t.run(ctx, out, errs)
	return out
}

func (t *Tailer) run(ctx context.Context, out chan<- string, errs chan<- error) {
	defer close(out)

	for {
		file, ino, err := t.openWithRetry(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			select {
			case errs <- err:
			default:
			}
			continue
		}

		truncatedOrReplaced := t.followFile(ctx, file, ino, out)
		file.Close()

		if ctx.Err() != nil {
			return
		}
		if !truncatedOrReplaced {
			return
		}
		t.log.Info("log file truncated or rotated, reopening", "path", t.path)
	}
}

// openWithRetry opens path, retrying with backoff until it succeeds, ctx is
// cancelled, or reopenTimeout elapses (in which case the last error is
// returned so the caller can surface it without abandoning the tailer).
func (t *Tailer) openWithRetry(ctx context.Context) (*os.File, fileIdentity, error) {
	deadline := time.Now().Add(reopenTimeout)
	backoff := initialBackoff

	var lastErr error
	for {
		file, err := os.Open(t.path)
		if err == nil {
			ino, statErr := identify(file)
			if statErr != nil {
				file.Close()
				lastErr = statErr
			} else {
				return file, ino, nil
			}
		} else {
			lastErr = err
		}

		if time.Now().After(deadline) {
			return nil, fileIdentity{}, fmt.Errorf("opening %s: %w", t.path, lastErr)
		}

		select {
		case <-ctx.Done():
			return nil, fileIdentity{}, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < pollInterval {
			backoff *= 2
		}
	}
}

// followFile reads lines from file until it shrinks (truncation), is
// replaced by a file with a different identity (rotation), a read fails, or
// ctx is cancelled. It returns true when the caller should reopen.
func (t *Tailer) followFile(ctx context.Context, file *os.File, ino fileIdentity, out chan<- string) bool {
	reader := bufio.NewReader(file)
	var partial []byte

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		for {
			line, err := reader.ReadString('\n')
			if len(line) > 0 {
				partial = append(partial, line...)
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					return true
				}
				break
			}
			select {
			case out <- string(partial[:len(partial)-1]):
			case <-ctx.Done():
				return false
			}
			partial = partial[:0]
		}

		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}

		shrunk, err := hasShrunkOrReplaced(t.path, file, ino)
		if err != nil {
			// File vanished: treat as rotation and let the caller reopen.
			return true
		}
		if shrunk {
			return true
		}
	}
}
