package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"screener/internal/config"
)

// initInput allows tests to override stdin for init prompts.
var initInput io.Reader = os.Stdin

func (a *app) initCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default control panel",
		Args:  exactArgs(0),
		RunE: func(*cobra.Command, []string) error {
			path := a.configPath()
			if info, err := os.Stat(path); err == nil {
				if info.IsDir() {
					return fmt.Errorf("config path %q is a directory", path)
				}
				return fmt.Errorf("config file already exists at %q", path)
			}

			in := initInput
			if in == nil {
				in = os.Stdin
			}
			ask := newPrompter(in, a.stdout)
			addGitignore := yes
			if !yes {
				confirm, err := ask.yesNo(fmt.Sprintf("Write control panel to %s?", path), true)
				if err != nil {
					return err
				}
				if !confirm {
					return fmt.Errorf("init cancelled")
				}
				addGitignore, err = ask.yesNo("Keep local workbook and logs out of git?", true)
				if err != nil {
					return err
				}
			}

			if err := config.Scaffold(path); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Wrote %s\n", path)

			if addGitignore {
				root, err := filepath.Abs(".")
				if err != nil {
					return err
				}
				var paths []string
				for _, candidate := range []string{config.Default().Sheet.DatabasePath, filepath.Join(filepath.Dir(path), liveLogFile)} {
					if _, err := gitignoreEntry(root, candidate); err != nil {
						fmt.Fprintf(a.stderr, "Skipping .gitignore entry: %v\n", err)
						continue
					}
					paths = append(paths, candidate)
				}
				added, err := ignorePaths(root, paths...)
				if err != nil {
					fmt.Fprintf(a.stderr, "Skipping .gitignore: %v\n", err)
				} else if len(added) > 0 {
					fmt.Fprintf(a.stdout, "Added %s to %s\n", strings.Join(added, ", "), filepath.Join(root, ".gitignore"))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip questions and accept the defaults")
	return cmd
}
