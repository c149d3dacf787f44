package main

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/hl/internal/config"
	"github.com/hpungsan/hl/internal/db"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// isTerminal reports whether stdin is an interactive terminal.
func isTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _     _
  | |__ | |
  | '_ \| |
  | | | | |
  |_| |_|_|

  Personal highlight capture

  Usage: hl <command> [options]
         hl --help

  Start with 'hl add' to capture your first highlight.`)
}

// exit prints a non-empty error message to stderr and exits with the
// error's code. Empty messages carry only the exit status; the command has
// already said what it needed to on stdout.
func exit(err error) {
	if err == nil {
		return
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}
	code := 1
	var coder cli.ExitCoder
	if stderrors.As(err, &coder) {
		code = coder.ExitCode()
	}
	os.Exit(code)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before touching config or the store
	if isHelpOrVersion() {
		exit(newCLIApp(nil, nil, "").Run(os.Args))
		return
	}

	cfgPath, err := config.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr; stdout belongs to command output (and, under
	// `mcp serve`, the protocol stream).
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	stateDir, err := cfg.ResolveStateDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	database, err := db.Init(stateDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	exit(newCLIApp(database, cfg, stateDir).Run(os.Args))
}
