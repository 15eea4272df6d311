package main

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/eduvoice/content"
	"github.com/lixenwraith/eduvoice/store"
)

func newHistoryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage saved quizzes",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved quizzes, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withRepo(c, func(repo *store.Repository) error {
					list, err := repo.List(cmd.Context())
					if err != nil {
						return err
					}
					printSummaries(cmd.OutOrStdout(), list)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "delete ID",
			Short: "Delete a saved quiz and its results",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRepo(c, func(repo *store.Repository) error {
					if err := repo.Delete(cmd.Context(), args[0]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "import FILE",
			Short: "Save a YAML quiz file to history",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				q, err := content.LoadFile(args[0])
				if err != nil {
					return err
				}
				return withRepo(c, func(repo *store.Repository) error {
					saved, err := repo.Save(cmd.Context(), q)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Imported %q (%d questions) as %s\n", saved.Topic, len(saved.Questions), saved.ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "results ID",
			Short: "Show finished sessions of a saved quiz",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRepo(c, func(repo *store.Repository) error {
					if _, err := repo.Get(cmd.Context(), args[0]); err != nil {
						return err
					}
					results, err := repo.Results(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					printResults(cmd.OutOrStdout(), results)
					return nil
				})
			},
		},
	)
	return cmd
}

func withRepo(c *cli, fn func(*store.Repository) error) error {
	db, repo, err := c.openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(repo)
}

func printSummaries(w io.Writer, list []store.Summary) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No saved quizzes.")
		return
	}

	topicWidth := len("TOPIC")
	for _, s := range list {
		topicWidth = max(topicWidth, runewidth.StringWidth(s.Topic))
	}
	topicWidth = min(topicWidth, 40)

	fmt.Fprintf(w, "%-36s  %-16s  %s  %-6s  %3s  %s\n", "ID", "CREATED", runewidth.FillRight("TOPIC", topicWidth), "LEVEL", "Q", "BEST")
	for _, s := range list {
		best := "-"
		if s.Plays > 0 {
			best = fmt.Sprintf("%d/%d (%d plays)", s.BestScore, s.QuestionCount, s.Plays)
		}
		topic := runewidth.FillRight(runewidth.Truncate(s.Topic, topicWidth, "…"), topicWidth)
		fmt.Fprintf(w, "%-36s  %-16s  %s  %-6s  %3d  %s\n",
			s.ID, s.CreatedAt.Format("2006-01-02 15:04"), topic, s.Difficulty, s.QuestionCount, best)
	}
}

func printResults(w io.Writer, results []store.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No finished sessions.")
		return
	}
	fmt.Fprintf(w, "%-19s  %s\n", "FINISHED", "SCORE")
	for _, r := range results {
		fmt.Fprintf(w, "%-19s  %d/%d\n", r.FinishedAt.Format("2006-01-02 15:04:05"), r.Score, r.Total)
	}
}
