// Package cli implements the csvimport command line: an HTTP upload server and
// a one-shot import of a file on disk.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "csvimport",
	Short: "Load an uploaded CSV file into a database table",
	Long: `csvimport replaces the contents of one table with the rows of an uploaded
CSV file. Each upload drops and recreates the table, then inserts every row in
a single transaction.

Configuration comes from the environment (and an optional .env file):
  DATABASE_URL      SQLite file path or postgres:// URL (default output/test.db)
  DB_TABLE          destination table (default csv_import)
  SERVER_HOST/PORT  listen address for serve (default localhost:5000)

Exit Codes:
  0  - Success
  1  - General error
  2  - Usage error
  3  - The CSV data was rejected
  4  - Database error
  5  - Another import is running
  10 - Invalid configuration`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("env-file", ".env", "Load environment variables from this file if it exists")
}
