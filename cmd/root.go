package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitcommits-go/config"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "gitcommits",
		Usage:     "Read-only view of a Git repository's commits and file changes",
		Version:   "0.1.0",
		ArgsUsage: "[repository path]",
		Commands: []*cli.Command{
			LogCmd(),
			CountCmd(),
			DiffCmd(),
			StatsCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug information to stderr",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Colorize console output (auto, always, never)",
			},
		},
		Action: defaultAction,
	}
}

// Common flags shared across history commands
func commonFlags() []cli.Flag {
	return append(repoFlags(),
		&cli.StringFlag{
			Name:  "since",
			Usage: "Only commits since this date (YYYY-MM-DD or RFC 3339)",
		},
		&cli.StringFlag{
			Name:  "until",
			Usage: "Only commits until this date, inclusive (YYYY-MM-DD or RFC 3339)",
		},
		&cli.StringFlag{
			Name:    "branch",
			Aliases: []string{"b", "rev"},
			Usage:   "Revision to start from (default: HEAD)",
		},
		&cli.StringFlag{
			Name:  "order",
			Usage: "Commit order (time, time-reverse, topo, topo-reverse, none)",
		},
		&cli.IntFlag{
			Name:    "max-count",
			Aliases: []string{"m"},
			Usage:   "Stop after this many commits (0 = no limit)",
		},
	)
}

// repoFlags select the repository and how its changes are classified.
func repoFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:  "rename-detect",
			Usage: "Rename detection mode (auto, off, simple, aggressive)",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Diff backend (native, git)",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "Fail on file references that cannot be resolved instead of skipping them",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns to exclude (can be specified multiple times)",
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, ndjson, csv, markdown)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
	}
}

// parseDateFlag parses a date flag. A bare date at the end of a range is
// extended to the last second of that day.
func parseDateFlag(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, nil
}

// loadConfig loads configuration from file or defaults and applies the
// flags that override it.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}
	overrideString(c, "order", &cfg.Walk.Order)
	overrideString(c, "branch", &cfg.Walk.Branch)
	overrideString(c, "rename-detect", &cfg.Diff.RenameDetect)
	overrideString(c, "backend", &cfg.Diff.Backend)
	overrideString(c, "format", &cfg.Output.Format)
	overrideString(c, "color", &cfg.Output.Color)
	if c.IsSet("max-count") {
		cfg.Walk.MaxCount = c.Int("max-count")
	}
	if c.IsSet("top") {
		cfg.Output.Top = c.Int("top")
	}
	if c.Bool("strict") {
		cfg.Diff.Unresolved = "error"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func overrideString(c *cli.Context, flag string, dst *string) {
	if c.IsSet(flag) {
		*dst = c.String(flag)
	}
}

// newLogger returns a text logger on w, at debug level with --verbose.
func newLogger(c *cli.Context, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// defaultAction runs log on the repository given as the first argument.
func defaultAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.ShowAppHelp(c)
	}
	return logAction(c)
}

// Run executes the CLI application. An interrupt cancels the history read.
func Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := App().RunContext(ctx, os.Args); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		os.Exit(1)
	}
}
