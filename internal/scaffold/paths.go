package scaffold

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// NormalizeProjectPath resolves the directory a project should be generated
// in. A tilde prefix is expanded, and the app's kebab name is appended unless
// the path already ends with it.
func NormalizeProjectPath(projectPath, appName string) (string, error) {
	kebab := Slugify(appName)
	if projectPath == "" {
		projectPath = "./" + kebab
	}

	expanded, err := expandTilde(projectPath)
	if err != nil {
		return "", err
	}

	if filepath.Base(expanded) != kebab {
		expanded = filepath.Join(expanded, kebab)
	}
	return expanded, nil
}

func expandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve home directory")
	}

	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// copyDir recursively copies src into dst.
func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", src)
	}

	if err := os.MkdirAll(dst, 0750); err != nil {
		return errors.Wrapf(err, "failed to create %s", dst)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}

		data, err := os.ReadFile(srcPath) // #nosec G304 - path comes from walking the template dir
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", srcPath)
		}
		if err := os.WriteFile(dstPath, data, 0600); err != nil {
			return errors.Wrapf(err, "failed to write %s", dstPath)
		}
	}
	return nil
}
