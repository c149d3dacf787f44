package editor

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// saveDebounce coalesces the burst of filesystem events most editors emit
// for a single save.
const saveDebounce = 300 * time.Millisecond

// watchSaves reports the buffer's content through onSave after each save
// until ctx is cancelled. The containing directory is watched rather than
// the file: many editors save by writing a sibling file and renaming it
// over the original, which replaces the watched inode. Only trimmed,
// non-empty content that differs from the previous report is delivered.
func watchSaves(ctx context.Context, path, last string, onSave func(string) error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("editor save watcher unavailable", slog.String("error", err.Error()))
		return
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		slog.Warn("editor save watcher unavailable", slog.String("error", err.Error()))
		return
	}

	base := filepath.Base(path)
	timer := time.NewTimer(saveDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(saveDebounce)

		case <-timer.C:
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			text := strings.TrimSpace(string(data))
			if text == "" || text == last {
				continue
			}
			if err := onSave(text); err != nil {
				slog.Warn("could not persist editor save", slog.String("error", err.Error()))
				continue
			}
			last = text

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Warn("editor save watcher error", slog.String("error", err.Error()))
		}
	}
}
