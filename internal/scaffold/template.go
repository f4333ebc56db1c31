package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const templateRepoURL = "https://github.com/Parra-Inc/parra-mobile-sdks"

// Manifest describes a project template. It is read from the manifest.yaml
// at the root of each template directory.
type Manifest struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// MinSDKVersion is the lowest SDK release the template supports
	MinSDKVersion string `yaml:"min_sdk_version,omitempty"`
}

// LoadManifest reads a template's manifest.yaml.
func LoadManifest(templateDir string) (*Manifest, error) {
	path := filepath.Join(templateDir, "manifest.yaml")
	data, err := os.ReadFile(path) // #nosec G304 - path derives from a fetched template dir
	if err != nil {
		return nil, errors.Wrap(err, "failed to read template manifest")
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "failed to parse template manifest")
	}
	return &manifest, nil
}

// Fetcher retrieves project templates from the SDK repository.
type Fetcher struct {
	runner Runner
}

// NewFetcher creates a template fetcher.
func NewFetcher(runner Runner) *Fetcher {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Fetcher{runner: runner}
}

// FetchRemote checks out the templates directory of the SDK repository at the
// given release tag and returns the directory of the named template. Only the
// templates tree is materialized; the rest of the repository stays absent.
func (f *Fetcher) FetchRemote(ctx context.Context, version, templateName string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "parra-templates-")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temporary directory")
	}

	steps := [][]string{
		{"clone", "--no-checkout", "--depth=1", "--filter=tree:0", templateRepoURL, tmpDir},
		{"sparse-checkout", "set", "--no-cone", "templates"},
		{"fetch", "origin", "tag", version, "--no-tags"},
		{"checkout", "tags/" + version},
	}

	for i, args := range steps {
		dir := tmpDir
		if i == 0 {
			// Clone names its own destination.
			dir = ""
		}
		if _, err := f.runner.Run(ctx, dir, "git", args...); err != nil {
			return "", errors.Wrapf(err, "failed to fetch template %q at %s", templateName, version)
		}
	}

	templateDir := filepath.Join(tmpDir, "templates", templateName)
	if _, err := os.Stat(templateDir); err != nil {
		return "", fmt.Errorf("template %q not found in release %s", templateName, version)
	}

	return templateDir, nil
}
