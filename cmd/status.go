package cmd

import (
	"encoding/json"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a status snapshot",
	Long:  `Print record counts per source table, the configured terminals and sync statistics as JSON.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps, err := initializeDependencies()
		if err != nil {
			log.Fatalf("failed to initialize dependencies: %v", err)
		}
		defer closeDatabases(deps)

		report, err := deps.Status.Report()
		if err != nil {
			log.Fatalf("failed to build status report: %v", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalf("failed to encode report: %v", err)
		}
	},
}
