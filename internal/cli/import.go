package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvimport/internal/core"
)

var importFlags struct {
	raw         bool
	contentType string
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace the destination table with the rows of FILE",
	Long: `Import reads FILE and loads it exactly as an HTTP upload would.

By default FILE is plain CSV text. With --raw it is a captured multipart
request body, and the file content is located inside it the same way the
server does.`,
	Example: `  csvimport import people.csv
  csvimport import --raw request-body.bin
  DATABASE_URL=postgres://localhost/app csvimport import people.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importFlags.raw, "raw", false, "FILE is a raw multipart request body")
	importCmd.Flags().StringVar(&importFlags.contentType, "content-type", "", `Content-Type of FILE, e.g. "text/csv; charset=windows-1252"`)
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	body, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Upload.Timeout)
	defer cancel()

	svc, db, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := svc.Import(ctx, core.ImportRequest{
		Body:        body,
		ContentType: importFlags.contentType,
		Source:      args[0],
		Raw:         importFlags.raw,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "CSV uploaded and inserted %d rows into %s.\n", res.Inserted, res.Table)
	return nil
}
