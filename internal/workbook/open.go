package workbook

import (
	"context"
	"fmt"

	"screener/internal/config"
)

// Open builds the backend named by sheet_controls.backend.
func Open(ctx context.Context, controls config.SheetControls) (Backend, error) {
	switch controls.Backend {
	case config.BackendGoogle:
		return GoogleFromEnv(ctx)
	case config.BackendDuckDB:
		return OpenDuckDB(ctx, controls.DatabasePath)
	default:
		return nil, fmt.Errorf("unsupported workbook backend %q", controls.Backend)
	}
}
