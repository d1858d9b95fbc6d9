package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootFlags struct {
	verbose  bool
	pipeline string
	settings string
}

var rootCmd = &cobra.Command{
	Use:   "deployctl",
	Short: "Selective deployment pipeline for the iRentStuff Lambda functions",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		if !rootFlags.verbose {
			log.Logger = log.Logger.Level(zerolog.InfoLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&rootFlags.pipeline, "pipeline", "f", "pipeline.yaml", "Path to the pipeline definition")
	rootCmd.PersistentFlags().StringVarP(&rootFlags.settings, "settings", "s", "", "Path to the settings file (optional)")
}
