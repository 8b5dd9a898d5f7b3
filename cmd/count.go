package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// CountCmd creates the count command.
func CountCmd() *cli.Command {
	return &cli.Command{
		Name:      "count",
		Usage:     "Print the number of commits reachable from a revision",
		ArgsUsage: "[repository path]",
		Flags:     commonFlags(),
		Action:    countAction,
	}
}

func countAction(c *cli.Context) error {
	cmdCtx, err := NewCommandContext(c)
	if err != nil {
		return err
	}
	repo, err := cmdCtx.OpenRepository()
	if err != nil {
		return err
	}

	n, err := repo.CountCommits(cmdCtx.WalkOptions())
	if err != nil {
		return fmt.Errorf("failed to walk history: %w", err)
	}
	if limit := cmdCtx.Config.Walk.MaxCount; limit > 0 && n > limit {
		n = limit
	}
	cmdCtx.Logger.Debug("counted commits", "repo", repo.Path(), "count", n)

	_, err = fmt.Fprintln(c.App.Writer, n)
	return err
}
