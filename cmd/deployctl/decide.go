package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/randallong/irentstuff-transactions/internal/application"
	"github.com/randallong/irentstuff-transactions/internal/config"
)

var decideCmd = &cobra.Command{
	Use:   "decide [message]",
	Short: "Preview which targets a trigger message would deploy",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.Load(rootFlags.pipeline)
		if err != nil {
			return err
		}

		svc := &application.TargetService{Table: p.Targets}
		decisions := svc.Decide(strings.Join(args, " "))

		for _, d := range decisions.Decisions {
			verdict := "skip"
			if d.Deploy {
				verdict = "deploy"
			}
			cmd.Printf("%-32s %s\n", d.Target, verdict)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decideCmd)
}
