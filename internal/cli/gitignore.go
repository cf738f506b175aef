package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ignorePaths appends each path to root/.gitignore unless an identical line
// is already there. Paths may be absolute or relative to root but must stay
// inside it. It returns the entries actually added.
func ignorePaths(root string, paths ...string) ([]string, error) {
	entries := make([]string, 0, len(paths))
	for _, path := range paths {
		entry, err := gitignoreEntry(root, path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	file := filepath.Join(root, ".gitignore")
	existing, err := os.ReadFile(file)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read .gitignore: %w", err)
	}
	lines := strings.Split(string(existing), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	var added []string
	for _, entry := range entries {
		if slices.Contains(lines, entry) || slices.Contains(added, entry) {
			continue
		}
		added = append(added, entry)
	}
	if len(added) == 0 {
		return nil, nil
	}

	var b strings.Builder
	b.Write(existing)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		b.WriteByte('\n')
	}
	for _, entry := range added {
		b.WriteString(entry + "\n")
	}
	if err := os.WriteFile(file, []byte(b.String()), 0o644); err != nil {
		return nil, fmt.Errorf("write .gitignore: %w", err)
	}
	return added, nil
}

// gitignoreEntry turns path into a slash separated pattern relative to root.
func gitignoreEntry(root, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("empty gitignore path")
	}
	rel := filepath.Clean(path)
	if filepath.IsAbs(rel) {
		var err error
		if rel, err = filepath.Rel(root, rel); err != nil {
			return "", fmt.Errorf("resolve %q: %w", path, err)
		}
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q is outside %s", path, root)
	}
	return filepath.ToSlash(rel), nil
}
