// Package editor runs $EDITOR round-trips over throwaway buffer files.
// No store handle is involved while the editor is open; persistence
// happens before and after the session, never during it.
package editor

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/hl/internal/errors"
)

// Capture opens the editor over a fresh buffer seeded with initial and
// returns the trimmed result. An empty result means the user aborted;
// that is not an error.
func Capture(ctx context.Context, configured, initial string) (string, error) {
	return run(ctx, configured, initial, nil)
}

// Edit opens the editor over initial content and streams intermediate
// saves through onSave while the editor is still open, so a long session
// cannot lose everything to a crash. The final trimmed buffer is returned;
// empty means the user aborted.
func Edit(ctx context.Context, configured, initial string, onSave func(string) error) (string, error) {
	return run(ctx, configured, initial, onSave)
}

func run(ctx context.Context, configured, initial string, onSave func(string) error) (string, error) {
	cmd, err := Resolve(configured)
	if err != nil {
		return "", err
	}

	path, err := writeBuffer(initial)
	if err != nil {
		return "", err
	}
	defer os.Remove(path)

	if onSave == nil {
		if err := runEditor(ctx, cmd, path); err != nil {
			return "", err
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		watchCtx, stopWatch := context.WithCancel(gctx)
		g.Go(func() error {
			watchSaves(watchCtx, path, strings.TrimSpace(initial), onSave)
			return nil
		})
		g.Go(func() error {
			defer stopWatch()
			return runEditor(gctx, cmd, path)
		})
		if err := g.Wait(); err != nil {
			return "", err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.NewEditor(fmt.Sprintf("cannot read editor buffer: %v", err))
	}
	return strings.TrimSpace(string(data)), nil
}

// writeBuffer creates the temp buffer file seeded with initial content.
// The .md suffix gives editors a sensible mode for prose.
func writeBuffer(initial string) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("hl-%s.md", id.String()))
	if err := os.WriteFile(path, []byte(initial), 0600); err != nil {
		return "", errors.NewEditor(fmt.Sprintf("cannot create editor buffer: %v", err))
	}
	return path, nil
}

// runEditor executes the editor attached to the caller's terminal and maps
// failures to EDITOR errors.
func runEditor(ctx context.Context, cmd Command, path string) error {
	args := append(append([]string{}, cmd.Args...), path)
	c := exec.CommandContext(ctx, cmd.Path, args...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			return errors.NewEditor(fmt.Sprintf("%s exited with status %d", cmd, exitErr.ExitCode()))
		}
		return errors.NewEditor(fmt.Sprintf("cannot run %s: %v", cmd, err))
	}
	return nil
}
