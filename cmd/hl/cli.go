package main

import (
	"bufio"
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/hl/internal/config"
	"github.com/hpungsan/hl/internal/editor"
	"github.com/hpungsan/hl/internal/entry"
	"github.com/hpungsan/hl/internal/errors"
	"github.com/hpungsan/hl/internal/mcp"
	"github.com/hpungsan/hl/internal/ops"
	"github.com/hpungsan/hl/internal/web"
)

// pickerLimit bounds how many entries the `ed` picker offers.
const pickerLimit = 50

// busyRetries bounds re-attempts when the store reports transient
// contention.
const busyRetries = 3

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, stateDir string) *cli.App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	app := &cli.App{
		Name:    "hl",
		Usage:   "Personal highlight capture",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(db, cfg),
			searchCmd(db, cfg),
			showCmd(db),
			recentCmd(db, cfg),
			edCmd(db, cfg, stateDir),
			rmCmd(db),
			exportCmd(db, stateDir),
			importCmd(db),
			webCmd(db, cfg),
			mcpCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Capture a highlight in $EDITOR (or from piped stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "Where this came from (URL, book, etc)"},
		},
		Action: func(c *cli.Context) error {
			var body string
			if stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				body = text
			} else {
				text, err := editor.Capture(c.Context, cfg.Editor, "")
				if err != nil {
					return outputError(err)
				}
				body = text
			}

			if strings.TrimSpace(body) == "" {
				fmt.Println("Aborted: empty.")
				return cli.Exit("", 1)
			}

			output, err := retryBusy(func() (*ops.AddOutput, error) {
				return ops.Add(c.Context, db, ops.AddInput{
					Body:   body,
					Source: c.String("source"),
					Author: entry.Human(),
				})
			})
			if err != nil {
				return outputError(err)
			}

			fmt.Printf("Saved #%d\n", output.Entry.ID)
			return nil
		},
	}
}

// searchCmd creates the search command.
func searchCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search highlights",
		ArgsUsage: "<terms...>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: cfg.Limits.Search, Usage: "Maximum results"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Search(c.Context, db, ops.SearchInput{
				Query: strings.Join(c.Args().Slice(), " "),
				Limit: c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}

			if len(output.Results) == 0 {
				fmt.Println("No results.")
				return cli.Exit("", 1)
			}

			color := stdoutIsTTY()
			for _, r := range output.Results {
				fmt.Println(entry.FormatShort(r.Entry, color))
				fmt.Println()
			}
			return nil
		},
	}
}

// showCmd creates the show command.
func showCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a highlight in full",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}

			e, err := getOrMiss(c.Context, db, id)
			if err != nil {
				return err
			}

			fmt.Println(entry.FormatFull(e))
			return nil
		},
	}
}

// recentCmd creates the recent command (aliased as ls).
func recentCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "recent",
		Aliases: []string{"ls"},
		Usage:   "List recent highlights",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: cfg.Limits.Recent, Usage: "Maximum entries"},
			&cli.StringFlag{Name: "author", Aliases: []string{"a"}, Usage: `Filter: "human", "ai", or "ai:<agent>"`},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Recent(c.Context, db, ops.RecentInput{
				Limit:  c.Int("limit"),
				Author: c.String("author"),
			})
			if err != nil {
				return outputError(err)
			}

			if len(output.Entries) == 0 {
				fmt.Println("No highlights yet.")
				return nil
			}

			color := stdoutIsTTY()
			for _, e := range output.Entries {
				fmt.Println(entry.FormatShort(e, color))
			}
			return nil
		},
	}
}

// edCmd creates the ed command.
func edCmd(db *sql.DB, cfg *config.Config, stateDir string) *cli.Command {
	return &cli.Command{
		Name:      "ed",
		Usage:     "Edit a highlight in $EDITOR (picker when no id given)",
		ArgsUsage: "[id]",
		Action: func(c *cli.Context) error {
			var target *entry.Entry

			if c.NArg() > 0 {
				id, err := idArg(c)
				if err != nil {
					return outputError(err)
				}
				e, err := getOrMiss(c.Context, db, id)
				if err != nil {
					return err
				}
				target = e
			} else {
				output, err := ops.Recent(c.Context, db, ops.RecentInput{Limit: pickerLimit})
				if err != nil {
					return outputError(err)
				}
				if len(output.Entries) == 0 {
					fmt.Println("No highlights yet.")
					return nil
				}
				picked, err := pickEntry(output.Entries)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				if picked == nil {
					return nil
				}
				target = picked
			}

			lock, err := editor.AcquireEditLock(stateDir, target.ID)
			if err != nil {
				return outputError(err)
			}
			defer lock.Release()

			// Intermediate saves persist immediately so a crashed editor
			// cannot lose work.
			persist := func(text string) error {
				_, err := retryBusy(func() (*ops.UpdateOutput, error) {
					return ops.Update(c.Context, db, ops.UpdateInput{ID: target.ID, Body: text})
				})
				return err
			}

			body, err := editor.Edit(c.Context, cfg.Editor, target.Body, persist)
			if err != nil {
				return outputError(err)
			}

			if body == "" || body == target.Body {
				fmt.Println("No changes.")
				return nil
			}

			output, err := retryBusy(func() (*ops.UpdateOutput, error) {
				return ops.Update(c.Context, db, ops.UpdateInput{ID: target.ID, Body: body})
			})
			if err != nil {
				return outputError(err)
			}

			fmt.Printf("Updated #%d\n", output.Entry.ID)
			return nil
		},
	}
}

// rmCmd creates the rm command.
func rmCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a highlight",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Skip confirmation"},
		},
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return outputError(err)
			}

			e, err := getOrMiss(c.Context, db, id)
			if err != nil {
				return err
			}

			if !c.Bool("force") {
				fmt.Println(entry.FormatShort(e, stdoutIsTTY()))
				if !confirm("Delete? [y/N] ") {
					return nil
				}
			}

			output, err := retryBusy(func() (*ops.DeleteOutput, error) {
				return ops.Delete(c.Context, db, ops.DeleteInput{ID: id})
			})
			if err != nil {
				return outputError(err)
			}

			fmt.Printf("Deleted #%d\n", output.ID)
			return nil
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, stateDir string) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all highlights to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Export file path (default: <state dir>/exports/highlights-<timestamp>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, db, stateDir, ops.ExportInput{
				Path: c.String("output"),
			})
			if err != nil {
				return outputError(err)
			}

			fmt.Printf("Exported %d highlights to %s\n", output.Count, output.Path)
			return nil
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import highlights from a JSONL export",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewValidation("an export file path is required"))
			}

			output, err := ops.Import(c.Context, db, ops.ImportInput{
				Path: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}

			for _, impErr := range output.Errors {
				fmt.Fprintf(os.Stderr, "warning: line %d: %s\n", impErr.Line, impErr.Message)
			}

			if output.Skipped > 0 {
				fmt.Printf("Imported %d highlights (%d skipped)\n", output.Imported, output.Skipped)
			} else {
				fmt.Printf("Imported %d highlights\n", output.Imported)
			}
			return nil
		},
	}
}

// webCmd creates the web command.
func webCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the read-only web viewer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: cfg.Web.Bind, Usage: "Listen address"},
			&cli.IntFlag{Name: "port", Value: cfg.Web.Port, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, Version, c.String("bind"), c.Int("port"))
			if err := web.Run(srv); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// mcpCmd creates the mcp command group.
func mcpCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "MCP server integration for AI agents",
		Subcommands: []*cli.Command{
			{
				Name:  "install",
				Usage: "Register the hl MCP server in ./.mcp.json",
				Action: func(_ *cli.Context) error {
					path, err := mcp.Install(".")
					if err != nil {
						return outputError(err)
					}
					fmt.Printf("Registered hl MCP server in %s\n", path)
					fmt.Println("  Restart Claude Code to activate.")
					return nil
				},
			},
			{
				Name:  "uninstall",
				Usage: "Remove the hl MCP server registration",
				Action: func(_ *cli.Context) error {
					_, removed, err := mcp.Uninstall(".")
					if err != nil {
						return outputError(err)
					}
					if removed {
						fmt.Println("Removed hl MCP server registration.")
					} else {
						fmt.Println("hl MCP server not registered.")
					}
					return nil
				},
			},
			{
				Name:  "serve",
				Usage: "Run the MCP server on stdio (called by the agent host)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "agent", Value: mcp.DefaultAgent, Usage: "Agent name recorded as the author of writes"},
				},
				Action: func(c *cli.Context) error {
					if err := mcp.Run(db, cfg, Version, c.String("agent")); err != nil {
						return outputError(err)
					}
					return nil
				},
			},
		},
	}
}

// Helper functions

// retryBusy runs fn, retrying a bounded number of times while the store
// reports contention.
func retryBusy[T any](fn func() (T, error)) (T, error) {
	var result T
	var err error
	for attempt := 0; ; attempt++ {
		result, err = fn()
		if err == nil || !errors.IsRetryable(err) || attempt >= busyRetries {
			return result, err
		}
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
}

// getOrMiss fetches an entry, printing the not-found miss to stdout the way
// interactive commands report it. Other errors go through outputError.
func getOrMiss(ctx context.Context, db *sql.DB, id int64) (*entry.Entry, error) {
	output, err := ops.Get(ctx, db, ops.GetInput{ID: id})
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			fmt.Printf("No entry with id %d\n", id)
			return nil, cli.Exit("", 1)
		}
		return nil, outputError(err)
	}
	return output.Entry, nil
}

// idArg parses the first positional argument as an entry id.
func idArg(c *cli.Context) (int64, error) {
	if c.NArg() < 1 {
		return 0, errors.NewValidation("an entry id is required")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, errors.NewValidation(fmt.Sprintf("%q is not a valid entry id", c.Args().First()))
	}
	return id, nil
}

// outputError formats an error for the CLI: "[CODE] message" on stderr via
// the exit-coder path.
func outputError(err error) error {
	var hlErr *errors.HLError
	if stderrors.As(err, &hlErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", hlErr.Code, hlErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// confirm prompts on stdout and reads a yes/no answer from stdin.
func confirm(prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	fd := os.Stdin.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}

// stdoutIsTTY reports whether stdout is a terminal worth styling.
func stdoutIsTTY() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
