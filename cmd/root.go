package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "swasthya",
	Short: "Multilingual health-information assistant",
	Long: `Swasthya answers health questions from a curated document set using
retrieval-augmented generation, over a web chat channel and an SMS gateway.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
