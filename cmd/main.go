// opportunity-service
//
// Discovers student opportunities (internships, scholarships, hackathons,
// competitions, workshops, research conferences) with a web search provider,
// structures them with a generative model and keeps a deduplicated,
// seven-day rolling table in PostgreSQL.
//
// Commands:
//   - serve    HTTP API + hourly gated sync + gRPC health
//   - sync     one sync run from the command line
//   - migrate  apply database migrations
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "opportunity-service",
		Short:         "Opportunity ingestion service for the student hub",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "opportunity-service %s\n", version)
		},
	})
	root.AddCommand(serveCmd(), syncCmd(), migrateCmd())
	return root
}
