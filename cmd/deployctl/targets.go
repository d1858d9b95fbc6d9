package main

import (
	"github.com/spf13/cobra"

	"github.com/randallong/irentstuff-transactions/internal/config"
	"github.com/randallong/irentstuff-transactions/internal/domain"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the configured deployment targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.Load(rootFlags.pipeline)
		if err != nil {
			return err
		}

		for _, t := range p.Targets.Targets() {
			group := string(t.Group)
			if t.Group == domain.GroupNone {
				group = "-"
			}
			cmd.Printf("%-32s %-10s %-14s %s\n", t.ID, group, t.FunctionName(), t.Source)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}
