package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/randallong/irentstuff-transactions/internal/application"
	"github.com/randallong/irentstuff-transactions/internal/domain"
)

var historyFlags struct {
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show recorded pipeline runs, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := LoadSettings(rootFlags.settings)
		if err != nil {
			return err
		}

		db, repo, err := openHistory(settings)
		if err != nil {
			return err
		}
		defer db.Close()

		svc := &application.RunService{Runs: repo}

		if len(args) == 1 {
			run, err := svc.Get(cmd.Context(), domain.RunID(args[0]))
			if err != nil {
				return err
			}
			printRun(cmd, run)
			return nil
		}

		runs, err := svc.List(cmd.Context())
		if err != nil {
			return err
		}
		if historyFlags.limit > 0 && len(runs) > historyFlags.limit {
			runs = runs[:historyFlags.limit]
		}
		for _, run := range runs {
			summary := run.Summary()
			cmd.Printf("%s  %s  %-9s  %d succeeded, %d failed, %d skipped\n",
				run.ID,
				run.StartedAt.Format(time.RFC3339),
				run.State,
				summary.Succeeded, summary.Failed, summary.Skipped,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "Maximum runs to list")
	rootCmd.AddCommand(historyCmd)
}
