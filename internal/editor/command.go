package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/shlex"

	"github.com/hpungsan/hl/internal/errors"
)

// DefaultEditor is used when neither config nor environment names one.
const DefaultEditor = "nano"

// guiWaitFlags maps GUI editor binaries to the flag that makes them block
// until the buffer tab is closed. Without it the process returns
// immediately and the capture reads an untouched file.
var guiWaitFlags = map[string]string{
	"subl": "-w",
	"code": "--wait",
	"mate": "-w",
	"atom": "--wait",
	"zed":  "--wait",
}

// Command is a resolved editor invocation, ready for exec.
type Command struct {
	Path string
	Args []string
}

// String renders the command for error messages.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Resolve determines the editor command. Precedence: the configured value,
// then $EDITOR, then $VISUAL, then nano. The value is shell-split so quoted
// paths and embedded flags survive. Known GUI editors get their wait flag
// appended when missing.
func Resolve(configured string) (Command, error) {
	raw := strings.TrimSpace(configured)
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("EDITOR"))
	}
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("VISUAL"))
	}
	if raw == "" {
		raw = DefaultEditor
	}

	parts, err := shlex.Split(raw)
	if err != nil || len(parts) == 0 {
		return Command{}, errors.NewEditor(fmt.Sprintf("cannot parse editor command %q", raw))
	}

	cmd := Command{Path: parts[0], Args: parts[1:]}

	if flag, ok := guiWaitFlags[filepath.Base(cmd.Path)]; ok && !slices.Contains(cmd.Args, flag) {
		cmd.Args = append(cmd.Args, flag)
	}

	return cmd, nil
}
