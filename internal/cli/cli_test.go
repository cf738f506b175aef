package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"screener/internal/config"
)

var commandNames = []string{"run", "prompts", "use-prompt", "add-prompt", "toggle-highlight", "set", "init", "validate", "import"}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

// writeConfig scaffolds a control panel in a temp dir and returns its path.
func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".screener", "control_panel.yml")
	require.NoError(t, config.Scaffold(path))
	return path
}

func loadConfig(t *testing.T, path string) *config.Config {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	cfg, err := config.Parse(data)
	require.NoError(t, err)
	return &cfg
}

func TestRootHelp(t *testing.T) {
	code, out, errOut := runCLI(t, "--help")
	require.Equal(t, ExitOK, code)
	require.Empty(t, errOut)
	require.Contains(t, out, "Usage:")
	for _, name := range commandNames {
		require.Contains(t, out, name)
	}
}

func TestNoArgsShowsUsage(t *testing.T) {
	code, out, errOut := runCLI(t)
	require.Equal(t, ExitUsage, code)
	require.Empty(t, errOut)
	require.Contains(t, out, "Usage:")
}

func TestUnknownCommand(t *testing.T) {
	code, out, errOut := runCLI(t, "nope")
	require.Equal(t, ExitUsage, code)
	require.Empty(t, out)
	require.Contains(t, errOut, `unknown command "nope"`)
	require.Contains(t, errOut, "Usage:")
}

func TestCommandHelp(t *testing.T) {
	for _, name := range commandNames {
		code, out, errOut := runCLI(t, name, "--help")
		require.Equal(t, ExitOK, code, name)
		require.Empty(t, errOut, name)
		require.Contains(t, out, "Usage:", name)
	}
}

func TestUsageErrors(t *testing.T) {
	path := writeConfig(t)
	cases := [][]string{
		{"use-prompt"},
		{"set", "sheet_controls", "input_sheet_name"},
		{"run", "--batch", "nope"},
		{"run", "extra"},
		{"add-prompt", "x"},
		{"import"},
	}
	for _, args := range cases {
		code, _, errOut := runCLI(t, append([]string{"--config", path}, args...)...)
		require.Equal(t, ExitUsage, code, strings.Join(args, " "))
		require.Contains(t, errOut, "Error:", strings.Join(args, " "))
	}
}

func TestPromptsListsActive(t *testing.T) {
	path := writeConfig(t)
	code, out, _ := runCLI(t, "--config", path, "prompts")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "* startup_ceo")
}

func TestAddAndUsePrompt(t *testing.T) {
	path := writeConfig(t)
	textFile := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(textFile, []byte("Profile: {profile}\nCompany: {company_info}\nReturn {{\"priority\": \"\"}}"), 0o644))

	code, out, errOut := runCLI(t, "--config", path, "add-prompt", "researchers",
		"--description", "ML researchers", "--text-file", textFile, "--fields", "name,priority")
	require.Equal(t, ExitOK, code, errOut)
	require.Contains(t, out, "Added prompt researchers")

	code, _, errOut = runCLI(t, "--config", path, "add-prompt", "researchers", "--text-file", textFile)
	require.Equal(t, ExitError, code)
	require.Contains(t, errOut, "already exists")

	code, _, _ = runCLI(t, "--config", path, "use-prompt", "researchers")
	require.Equal(t, ExitOK, code)

	cfg := loadConfig(t, path)
	require.Equal(t, "researchers", cfg.Inference.ActivePrompt)
	require.Equal(t, map[string]bool{"name": true, "priority": true}, cfg.Inference.Prompts["researchers"].OutputFormat)

	code, _, errOut = runCLI(t, "--config", path, "use-prompt", "missing")
	require.Equal(t, ExitError, code)
	require.Contains(t, errOut, "not found")
}

func TestAddPromptRejectsUnknownPlaceholder(t *testing.T) {
	path := writeConfig(t)
	textFile := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(textFile, []byte("Profile: {profile} {salary}"), 0o644))

	code, _, errOut := runCLI(t, "--config", path, "add-prompt", "bad", "--text-file", textFile)
	require.Equal(t, ExitUsage, code)
	require.Contains(t, errOut, "{salary}")
}

func TestSetAndToggleHighlight(t *testing.T) {
	path := writeConfig(t)

	code, _, errOut := runCLI(t, "--config", path, "set", "sheet_controls", "input_sheet_name", "Signups")
	require.Equal(t, ExitOK, code, errOut)
	code, _, errOut = runCLI(t, "--config", path, "set", "inference_controls", "temperature", "0.3")
	require.Equal(t, ExitOK, code, errOut)
	code, _, errOut = runCLI(t, "--config", path, "set", "nope", "key", "1")
	require.Equal(t, ExitError, code)
	require.Contains(t, errOut, "unknown setting")

	code, out, _ := runCLI(t, "--config", path, "toggle-highlight")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "off")

	cfg := loadConfig(t, path)
	require.Equal(t, "Signups", cfg.Sheet.InputSheetName)
	require.InDelta(t, 0.3, cfg.Inference.Temperature, 1e-9)
	require.False(t, cfg.Sheet.HighlightProcessedRows)
}

func TestSetRefusesUnparseableControlPanel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "control_panel.yml")
	body := []byte("sheet_controls:\n  input_sheet_name: Leads\ntypo_section: {}\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	code, _, errOut := runCLI(t, "--config", path, "set", "sheet_controls", "output_sheet_name", "Done")
	require.Equal(t, ExitError, code)
	require.Contains(t, errOut, "screener validate")
	code, _, _ = runCLI(t, "--config", path, "toggle-highlight")
	require.Equal(t, ExitError, code)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, body, after)
}

func TestValidate(t *testing.T) {
	path := writeConfig(t)
	code, out, _ := runCLI(t, "--config", path, "validate")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "Config OK")

	require.NoError(t, os.WriteFile(path, []byte("sheet_controls:\n  backend: excel\n"), 0o644))
	code, _, errOut := runCLI(t, "--config", path, "validate")
	require.Equal(t, ExitError, code)
	require.Contains(t, errOut, "sheet_controls.backend")

	code, _, _ = runCLI(t, "--config", filepath.Join(t.TempDir(), "missing.yml"), "validate")
	require.Equal(t, ExitError, code)
}

func TestInitWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "control_panel.yml")
	original := initInput
	t.Cleanup(func() { initInput = original })
	initInput = strings.NewReader("y\nn\n")

	code, out, errOut := runCLI(t, "--config", path, "init")
	require.Equal(t, ExitOK, code, errOut)
	require.Contains(t, out, "Wrote "+path)
	require.Equal(t, config.Default().Inference.ActivePrompt, loadConfig(t, path).Inference.ActivePrompt)

	initInput = strings.NewReader("y\nn\n")
	code, _, errOut = runCLI(t, "--config", path, "init")
	require.Equal(t, ExitError, code)
	require.Contains(t, errOut, "already exists")
}

func TestInitCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "control_panel.yml")
	original := initInput
	t.Cleanup(func() { initInput = original })
	initInput = strings.NewReader("n\n")

	code, _, errOut := runCLI(t, "--config", path, "init")
	require.Equal(t, ExitError, code)
	require.Contains(t, errOut, "cancelled")
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestIgnorePaths(t *testing.T) {
	root := t.TempDir()
	gitignore := filepath.Join(root, ".gitignore")
	require.NoError(t, os.WriteFile(gitignore, []byte("bin/"), 0o644))

	added, err := ignorePaths(root, ".screener/workbook.duckdb", filepath.Join(root, ".screener", "screener.log"))
	require.NoError(t, err)
	require.Equal(t, []string{".screener/workbook.duckdb", ".screener/screener.log"}, added)

	added, err = ignorePaths(root, filepath.Join(root, ".screener", "workbook.duckdb"))
	require.NoError(t, err)
	require.Empty(t, added)

	data, err := os.ReadFile(gitignore)
	require.NoError(t, err)
	require.Equal(t, "bin/\n.screener/workbook.duckdb\n.screener/screener.log\n", string(data))

	_, err = ignorePaths(root, "../elsewhere")
	require.Error(t, err)
	_, err = ignorePaths(root, filepath.Dir(root))
	require.Error(t, err)
}

func TestPrompterYesNo(t *testing.T) {
	var out bytes.Buffer
	ask := newPrompter(strings.NewReader("maybe\nn\n\n"), &out)

	answer, err := ask.yesNo("Continue?", true)
	require.NoError(t, err)
	require.False(t, answer)
	require.Contains(t, out.String(), "Please answer yes or no.")

	answer, err = ask.yesNo("Again?", true)
	require.NoError(t, err)
	require.True(t, answer)

	_, err = newPrompter(strings.NewReader("maybe"), &out).yesNo("Last?", false)
	require.ErrorContains(t, err, "invalid answer")
}
