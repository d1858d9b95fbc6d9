package main

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randallong/irentstuff-transactions/internal/domain"
)

var runFlags struct {
	message string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline: gates, decisions, then selective deployment",
	Long: `Run executes the full pipeline. Gate stages run in order; a failed
blocking gate halts the run. The trigger message decides which targets
deploy. With no --message, the latest commit message is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := LoadSettings(rootFlags.settings)
		if err != nil {
			return err
		}

		message := runFlags.message
		if message == "" {
			message, err = latestCommitMessage()
			if err != nil {
				return err
			}
		}

		svc, err := buildServices(cmd.Context(), settings, rootFlags.pipeline)
		if err != nil {
			return err
		}
		defer svc.close()

		run, err := svc.pipeline.Run(cmd.Context(), message)

		var gateErr *domain.GateFailure
		if errors.As(err, &gateErr) {
			printRun(cmd, run)
			return fmt.Errorf("run halted: %s", gateErr.Error())
		}
		if err != nil {
			return err
		}

		printRun(cmd, run)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.message, "message", "m", "", "Trigger message (default: latest commit message)")
	rootCmd.AddCommand(runCmd)
}

func latestCommitMessage() (string, error) {
	out, err := exec.Command("git", "log", "-1", "--pretty=%B").Output()
	if err != nil {
		return "", fmt.Errorf("read latest commit message: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func printRun(cmd *cobra.Command, run domain.PipelineRun) {
	cmd.Printf("run %s: %s\n", run.ID, run.State)
	for _, gate := range run.Gates {
		cmd.Printf("  gate %-8s %s (%s)\n", gate.Gate, gate.Status, gate.Policy)
	}
	for _, outcome := range run.Outcomes {
		line := fmt.Sprintf("  %-32s %s", outcome.Target, outcome.Status)
		if outcome.Status == domain.OutcomeFailed {
			line += fmt.Sprintf(" at %s: %s", outcome.FailedStep, outcome.Reason)
		}
		cmd.Println(line)
	}
	summary := run.Summary()
	cmd.Printf("%d succeeded, %d failed, %d skipped\n", summary.Succeeded, summary.Failed, summary.Skipped)
}
