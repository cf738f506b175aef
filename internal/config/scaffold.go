package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

const scaffoldHeader = `# screener control panel
# Edit by hand or with "screener set SECTION KEY VALUE". Secrets stay in the
# environment: SHEET_ID, GOOGLE_SHEETS_CREDENTIALS, the oracle API key,
# EXA_KEY and RETOOL_KEY.
`

// Scaffold writes the default control panel to path. It never overwrites an
// existing file.
func Scaffold(path string) error {
	if path == "" {
		return errors.New("config path is required")
	}
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return fmt.Errorf("config path %q is a directory", path)
	case err == nil:
		return fmt.Errorf("config file already exists at %q", path)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("stat config file: %w", err)
	}
	body, err := Marshal(Default())
	if err != nil {
		return err
	}
	return writeAtomic(path, append([]byte(scaffoldHeader), body...))
}
