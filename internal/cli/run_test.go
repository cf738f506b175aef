package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"screener/internal/config"
	"screener/internal/notify"
	"screener/internal/oracle"
	"screener/internal/retrieve"
	"screener/internal/testutil"
	"screener/internal/workbook"
)

type noBackend struct{}

func (noBackend) Fetch(context.Context, string) (string, error) { return "", nil }

func (noBackend) Search(context.Context, string) ([]string, error) { return nil, nil }

// stubCollaborators swaps the run factories for in-memory fakes.
func stubCollaborators(t *testing.T, book *workbook.Memory, reply string) {
	t.Helper()
	origWorkbook, origOracle, origRetriever, origNotifier := openWorkbook, newOracle, newRetriever, newNotifier
	t.Cleanup(func() {
		openWorkbook, newOracle, newRetriever, newNotifier = origWorkbook, origOracle, origRetriever, origNotifier
	})
	openWorkbook = func(context.Context, config.SheetControls) (workbook.Backend, error) {
		return book, nil
	}
	newOracle = func(context.Context, config.InferenceControls) (oracle.Oracle, error) {
		return oracle.Func(func(context.Context, oracle.Request) (string, error) {
			return reply, nil
		}), nil
	}
	newRetriever = func(cfg *config.Config, logger *zap.Logger) (*retrieve.Retriever, func() error, error) {
		return retrieve.New(cfg, noBackend{}, noBackend{}, logger), nil, nil
	}
	newNotifier = func(config.CRMControls, *zap.Logger) (notify.Notifier, error) {
		return notify.Nop{}, nil
	}
}

func TestRunCommandWritesVerdicts(t *testing.T) {
	path := writeConfig(t)
	book := workbook.NewMemory()
	book.Seed("Sheet1",
		[]string{"Name", "Email"},
		[]string{"Alice", "alice@gmail.com"},
		[]string{"Bob", "bob@acme.io"},
	)
	stubCollaborators(t, book, `{"name":"Bob","priority":"review"}`)

	code, out, errOut := runCLI(t, "--config", path, "run", "--ui", "plain", "--delay", "0s", "--no-color")
	require.Equal(t, ExitOK, code, errOut)
	require.Contains(t, out, "Summary: attempted=2 written=2")
	require.Contains(t, out, "reject=1 review=1")
	require.Len(t, book.Rows("Sheet2"), 3)

	code, out, _ = runCLI(t, "--config", path, "run", "--ui", "plain", "--delay", "0s", "--no-color")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "attempted=0")
}

func TestRunCommandBatch(t *testing.T) {
	path := writeConfig(t)
	book := workbook.NewMemory()
	book.Seed("Sheet1",
		[]string{"Email"},
		[]string{"a@one.io"},
		[]string{"b@two.io"},
	)
	stubCollaborators(t, book, `{"priority":"reject"}`)

	code, out, errOut := runCLI(t, "--config", path, "run", "--ui", "plain", "--delay", "0s", "--batch", "1")
	require.Equal(t, ExitOK, code, errOut)
	require.Contains(t, out, "attempted=1")
	require.Len(t, book.Rows("Sheet2"), 2)
}

func TestRunCommandPollFailure(t *testing.T) {
	path := writeConfig(t)
	book := workbook.NewMemory()
	book.FailOn("read", "Sheet2", errors.New("permission denied"))
	stubCollaborators(t, book, `{}`)

	code, _, errOut := runCLI(t, "--config", path, "run", "--ui", "plain")
	require.Equal(t, ExitError, code)
	require.Contains(t, errOut, "permission denied")
}

func TestRunCommandWorkbookFailure(t *testing.T) {
	path := writeConfig(t)
	stubCollaborators(t, workbook.NewMemory(), `{}`)
	openWorkbook = func(context.Context, config.SheetControls) (workbook.Backend, error) {
		return nil, workbook.ErrMissingCredentials
	}

	code, _, errOut := runCLI(t, "--config", path, "run", "--ui", "plain")
	require.Equal(t, ExitError, code)
	require.Contains(t, errOut, "open workbook")
}

func TestRunCommandRejectsBadUIMode(t *testing.T) {
	path := writeConfig(t)
	code, _, errOut := runCLI(t, "--config", path, "run", "--ui", "fancy")
	require.Equal(t, ExitUsage, code)
	require.Contains(t, errOut, "invalid ui mode")
}

func TestGoogleBackendNeedsCredentials(t *testing.T) {
	path := writeConfig(t)
	t.Setenv(workbook.EnvSheetID, "")
	t.Setenv(workbook.EnvCredentials, "")

	code, _, errOut := runCLI(t, "--config", path, "run", "--ui", "plain")
	require.Equal(t, ExitError, code)
	require.Contains(t, errOut, "open workbook")
}

func TestImportCSVIntoDuckDB(t *testing.T) {
	path := writeConfig(t)
	dir := filepath.Dir(path)
	dbPath := filepath.Join(dir, "workbook.duckdb")
	csvPath := filepath.Join(dir, "signups.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Name,Email\nJane,jane@x.com\n"), 0o644))

	code, _, errOut := runCLI(t, "--config", path, "import", "--csv", csvPath)
	require.Equal(t, ExitError, code)
	require.Contains(t, errOut, "import needs sheet_controls.backend")

	code, _, errOut = runCLI(t, "--config", path, "set", "sheet_controls", "backend", "duckdb")
	require.Equal(t, ExitOK, code, errOut)
	code, _, errOut = runCLI(t, "--config", path, "set", "sheet_controls", "database_path", dbPath)
	require.Equal(t, ExitOK, code, errOut)

	code, out, errOut := runCLI(t, "--config", path, "import", "--csv", csvPath)
	require.Equal(t, ExitOK, code, errOut)
	require.Contains(t, out, "Imported 2 row(s) into Sheet1")

	ctx := testutil.Context(t, 0)
	db, err := workbook.OpenDuckDB(ctx, dbPath)
	require.NoError(t, err)
	defer db.Close()
	rows, err := db.Read(ctx, "Sheet1")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"Name", "Email"}, {"Jane", "jane@x.com"}}, rows)
}
