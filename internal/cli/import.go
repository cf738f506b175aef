package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"screener/internal/config"
	"screener/internal/workbook"
)

func (a *app) importCommand() *cobra.Command {
	var (
		csvPath string
		tab     string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Append CSV rows to a tab of the local DuckDB workbook",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if csvPath == "" {
				return usagef("--csv is required")
			}
			store, err := a.loadStore()
			if err != nil {
				return err
			}
			cfg := store.Config()
			if cfg.Sheet.Backend != config.BackendDuckDB {
				return fmt.Errorf("import needs sheet_controls.backend %q, got %q", config.BackendDuckDB, cfg.Sheet.Backend)
			}
			if tab == "" {
				tab = cfg.Sheet.InputSheetName
			}
			file, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("open csv: %w", err)
			}
			defer file.Close()

			db, err := workbook.OpenDuckDB(cmd.Context(), cfg.Sheet.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()
			count, err := db.ImportCSV(cmd.Context(), tab, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Imported %d row(s) into %s\n", count, tab)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file to import")
	cmd.Flags().StringVar(&tab, "tab", "", "target tab (default: input sheet)")
	return cmd
}
