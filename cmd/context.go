package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitcommits-go/config"
	"github.com/masmgr/gitcommits-go/internal/git"
	"github.com/masmgr/gitcommits-go/internal/output"
)

// CommandContext holds common state for command execution.
// It encapsulates the shared setup logic across all history commands.
type CommandContext struct {
	Config   *config.Config
	Logger   *slog.Logger
	RepoPath string
	Since    *time.Time
	Until    *time.Time
	Branch   string
	Order    git.SortOrder
	Repo     git.Options
	Format   output.OutputFormat
}

// NewCommandContext creates a context from CLI flags.
// It performs configuration loading, date parsing and option validation.
// The repository itself is opened lazily by the command.
func NewCommandContext(c *cli.Context) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	since, err := parseDateFlag(c.String("since"), false)
	if err != nil {
		return nil, fmt.Errorf("invalid since date: %w", err)
	}
	until, err := parseDateFlag(c.String("until"), true)
	if err != nil {
		return nil, fmt.Errorf("invalid until date: %w", err)
	}

	order, err := git.ParseSortOrder(cfg.Walk.Order)
	if err != nil {
		return nil, err
	}
	renames, err := git.ParseRenameDetectMode(cfg.Diff.RenameDetect)
	if err != nil {
		return nil, err
	}
	backend, err := git.ParseBackend(cfg.Diff.Backend)
	if err != nil {
		return nil, err
	}
	policy, err := git.ParseUnresolvedPolicy(cfg.Diff.Unresolved)
	if err != nil {
		return nil, err
	}
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	var errOut io.Writer = os.Stderr
	if c.App.ErrWriter != nil {
		errOut = c.App.ErrWriter
	}
	logger := newLogger(c, errOut)

	return &CommandContext{
		Config:   cfg,
		Logger:   logger,
		RepoPath: repoPath(c),
		Since:    since,
		Until:    until,
		Branch:   cfg.Walk.Branch,
		Order:    order,
		Repo: git.Options{
			RenameDetect: renames,
			Backend:      backend,
			Unresolved:   policy,
			Include:      cfg.Filters.Include,
			Exclude:      cfg.Filters.Exclude,
			Logger:       logger,
		},
		Format: format,
	}, nil
}

// repoPath prefers a positional argument over --repo.
func repoPath(c *cli.Context) string {
	if c.NArg() > 0 {
		return c.Args().First()
	}
	if p := c.String("repo"); p != "" {
		return p
	}
	return "."
}

// OpenRepository opens the repository containing RepoPath.
func (ctx *CommandContext) OpenRepository() (*git.Repository, error) {
	repo, err := git.Discover(ctx.RepoPath, ctx.Repo)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return repo, nil
}

// ReadOptions builds history reader options from the context.
func (ctx *CommandContext) ReadOptions() git.ReadOptions {
	return git.ReadOptions{
		RepoPath: ctx.RepoPath,
		Branch:   ctx.Branch,
		Order:    ctx.Order,
		Since:    ctx.Since,
		Until:    ctx.Until,
		MaxCount: ctx.Config.Walk.MaxCount,
		Repo:     ctx.Repo,
	}
}

// WalkOptions builds commit walk options from the context.
func (ctx *CommandContext) WalkOptions() git.WalkOptions {
	return git.WalkOptions{
		From:  ctx.Branch,
		Order: ctx.Order,
		Since: ctx.Since,
		Until: ctx.Until,
	}
}

// OutputOptions creates OutputOptions from CLI flags.
func (ctx *CommandContext) OutputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:    ctx.Format,
		Top:       ctx.Config.Output.Top,
		NoChanges: c.Bool("no-changes"),
	}
}

// openReader opens the history source for a command. Tests replace it to
// feed prepared change sets.
var openReader = func(opts git.ReadOptions) (git.RepositoryReader, error) {
	reader, err := git.NewHistoryReader(opts)
	if err != nil {
		return nil, err
	}
	return reader, nil
}

// OpenReader opens a history reader with opts.
func (ctx *CommandContext) OpenReader(opts git.ReadOptions) (git.RepositoryReader, error) {
	reader, err := openReader(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	return reader, nil
}

// OpenOutput opens the report destination and sets up colors for it.
// Colors are never written to files.
func (ctx *CommandContext) OpenOutput(c *cli.Context) (io.Writer, func() error, error) {
	path := c.String("output")
	mode := ctx.Config.Output.Color
	if path != "" {
		mode = "never"
	}
	if err := output.ConfigureColor(mode, os.Stdout); err != nil {
		return nil, nil, err
	}
	if path == "" && c.App.Writer != nil && c.App.Writer != os.Stdout {
		return c.App.Writer, func() error { return nil }, nil
	}
	return output.OpenOutput(path)
}

// closeOutput closes the report destination, keeping its error unless the
// command already failed. Use it deferred with the command's named error.
func closeOutput(closeOut func() error, err *error) {
	if cerr := closeOut(); cerr != nil && *err == nil {
		*err = fmt.Errorf("failed to close output: %w", cerr)
	}
}
