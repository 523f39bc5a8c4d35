// Package prompt manages the classifier system prompt. The prompt lives in
// a plain text file so the operations team can tune phrasing without a
// redeploy; a watcher reloads it on change.
package prompt

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// DefaultPrompt is used when no prompt file is configured. It instructs the
// model to emit the strict JSON array shape the extractor validates against.
const DefaultPrompt = `You classify a job status update message into structured facts.

You receive the job number, job name, client name, the job's current stage,
and the raw message text. Respond with ONLY a JSON array. Each element is an
object with exactly two string fields:

  {"type": "<update type>", "value": "<text copied from the message>"}

Recognized update types:
  - "stage": the job is moving to a named production stage
  - "status": a free-text progress note worth logging
  - "due_date": when the next deliverable is due
  - "live_date": when the work goes public
  - "with_client": the work is with the client for review ("yes") or back ("no")

Rules:
  - "value" must quote the relevant fragment of the message verbatim; do not
    rephrase, resolve dates, or correct spelling.
  - Emit at most one element per type. If the message conveys nothing for a
    type, omit that type.
  - If the message conveys no recognizable update at all, respond with [].
  - No markdown, no commentary, no fields other than "type" and "value".`

// Loader serves the current prompt text and supports hot reload.
type Loader struct {
	path   string
	logger *slog.Logger

	mu   sync.RWMutex
	text string
}

// NewLoader creates a Loader. With an empty path the built-in default prompt
// is served and Watch is a no-op. With a path, the file must be readable at
// startup.
func NewLoader(path string, logger *slog.Logger) (*Loader, error) {
	l := &Loader{path: path, logger: logger, text: DefaultPrompt}
	if path == "" {
		return l, nil
	}
	if err := l.reload(); err != nil {
		return nil, fmt.Errorf("prompt: initial load: %w", err)
	}
	return l, nil
}

// Get returns the current prompt text.
func (l *Loader) Get() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.text
}

func (l *Loader) reload() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("prompt file %s is empty", l.path)
	}
	l.mu.Lock()
	l.text = string(data)
	l.mu.Unlock()
	return nil
}

// Watch reloads the prompt whenever its file changes, until ctx is
// cancelled. The watch is on the containing directory because editors
// commonly replace the file rather than write it in place.
func (l *Loader) Watch(ctx context.Context) error {
	if l.path == "" {
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(l.path)
	if err := w.Add(dir); err != nil {
		return err
	}

	l.logger.Info("prompt: watching", slog.String("path", l.path))

	base := filepath.Base(l.path)
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("prompt: watcher stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := l.reload(); err != nil {
				l.logger.Warn("prompt: reload failed", slog.String("error", err.Error()))
				continue
			}
			l.logger.Info("prompt: reloaded", slog.String("path", l.path))

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.logger.Error("prompt: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
