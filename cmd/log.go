package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/gitcommits-go/internal/git"
	"github.com/masmgr/gitcommits-go/internal/match"
	"github.com/masmgr/gitcommits-go/internal/output"
)

// LogCmd creates the log command.
func LogCmd() *cli.Command {
	return &cli.Command{
		Name:      "log",
		Usage:     "List commits with their added, modified, deleted and renamed files",
		ArgsUsage: "[repository path]",
		Flags: append(append(commonFlags(), outputFlags()...),
			&cli.StringSliceFlag{
				Name:  "grep",
				Usage: "Only commits whose message matches this regexp (can be specified multiple times)",
			},
			&cli.StringSliceFlag{
				Name:  "author",
				Usage: "Only commits whose author matches this regexp (can be specified multiple times)",
			},
			&cli.BoolFlag{
				Name:  "fixes",
				Usage: "Only commits whose message matches the configured bug-fix patterns",
			},
			&cli.BoolFlag{
				Name:  "no-changes",
				Usage: "Print commit headers only",
			},
			&cli.BoolFlag{
				Name:  "skip-empty",
				Usage: "Omit commits without file changes (after filtering)",
			},
			&cli.StringFlag{
				Name:  "min-size",
				Usage: "Only changes to files at least this large, e.g. 10KiB",
			},
		),
		Action: logAction,
	}
}

func logAction(c *cli.Context) (err error) {
	cmdCtx, err := NewCommandContext(c)
	if err != nil {
		return err
	}

	matcher, err := commitMatcher(c, cmdCtx)
	if err != nil {
		return err
	}

	var minSize uint64
	if s := c.String("min-size"); s != "" {
		minSize, err = humanize.ParseBytes(s)
		if err != nil {
			return fmt.Errorf("invalid min-size: %w", err)
		}
	}

	opts := cmdCtx.ReadOptions()
	opts.SkipEmpty = c.Bool("skip-empty")
	if !matcher.Empty() {
		opts.Match = matcher.MatchCommit
	}

	reader, err := cmdCtx.OpenReader(opts)
	if err != nil {
		return err
	}

	out, closeOut, err := cmdCtx.OpenOutput(c)
	if err != nil {
		return err
	}
	defer closeOutput(closeOut, &err)

	writer := output.NewLogWriter(cmdCtx.Format, out, cmdCtx.OutputOptions(c))
	err = reader.ReadChanges(c.Context, func(cs git.CommitChangeSet) error {
		if minSize > 0 {
			cs.Changes = filterBySize(cs.Changes, int64(minSize))
			if len(cs.Changes) == 0 {
				return nil
			}
		}
		return writer.WriteCommit(cs)
	})
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	return writer.Close()
}

// commitMatcher builds the message and author filter from --grep, --fixes
// and --author.
func commitMatcher(c *cli.Context, cmdCtx *CommandContext) (*match.Matcher, error) {
	patterns := c.StringSlice("grep")
	if c.Bool("fixes") {
		patterns = append(patterns, cmdCtx.Config.Match.Patterns...)
	}
	m, err := match.NewMatcher(patterns)
	if err != nil {
		return nil, fmt.Errorf("invalid message pattern: %w", err)
	}
	m, err = m.WithAuthors(c.StringSlice("author"))
	if err != nil {
		return nil, fmt.Errorf("invalid author pattern: %w", err)
	}
	return m, nil
}

// filterBySize keeps changes whose file is at least minSize bytes, measured
// after the change (before it for deletions).
func filterBySize(changes []git.Change, minSize int64) []git.Change {
	kept := changes[:0:0]
	for _, change := range changes {
		if changeSize(change) >= minSize {
			kept = append(kept, change)
		}
	}
	return kept
}

func changeSize(change git.Change) int64 {
	switch ch := change.(type) {
	case git.Added:
		return ch.Size
	case git.Modified:
		return ch.NewSize
	case git.Deleted:
		return ch.Size
	case git.Renamed:
		return ch.Size
	default:
		return 0
	}
}
