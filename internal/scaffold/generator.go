package scaffold

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Generator turns a fetched template into a ready-to-open Xcode project.
type Generator struct {
	runner Runner
	out    io.Writer
}

// NewGenerator creates a project generator.
func NewGenerator(runner Runner, out io.Writer) *Generator {
	if runner == nil {
		runner = ExecRunner{}
	}
	if out == nil {
		out = os.Stdout
	}
	return &Generator{runner: runner, out: out}
}

// Generate renders the template's App directory into the project directory
// and produces the Xcode project with xcodegen. The returned path is the
// directory holding the rendered sources.
func (g *Generator) Generate(ctx context.Context, projectDir, templateDir string, pctx *ProjectContext) (string, error) {
	templateAppDir := filepath.Join(templateDir, "App")
	targetDir := filepath.Join(projectDir, pctx.App.Name.UpperCamel)

	if err := os.RemoveAll(projectDir); err != nil {
		return "", errors.Wrap(err, "failed to clear project directory")
	}

	if err := copyDir(templateAppDir, targetDir); err != nil {
		return "", err
	}

	fmt.Fprintln(g.out, "Generating project...")

	if err := RenderTree(targetDir, pctx); err != nil {
		return "", err
	}

	projectSpec, err := g.renderProjectSpec(templateDir, pctx)
	if err != nil {
		return "", err
	}

	if err := g.runXcodegen(ctx, projectDir, projectSpec); err != nil {
		return "", err
	}

	if err := g.resolvePackages(ctx, projectDir); err != nil {
		return "", err
	}

	return targetDir, nil
}

// renderProjectSpec renders the xcodegen project.yml for the template.
func (g *Generator) renderProjectSpec(templateDir string, pctx *ProjectContext) (string, error) {
	data, err := os.ReadFile(filepath.Join(templateDir, "project.yml")) // #nosec G304
	if err != nil {
		return "", errors.Wrap(err, "failed to read project spec template")
	}

	return RenderString("project.yml", string(data), pctx)
}

func (g *Generator) runXcodegen(ctx context.Context, projectDir, projectSpec string) error {
	specFile, err := os.CreateTemp("", "parra-project-*.yml")
	if err != nil {
		return errors.Wrap(err, "failed to create project spec file")
	}
	specPath := specFile.Name()
	defer func() { _ = os.Remove(specPath) }()

	if _, err := specFile.WriteString(projectSpec); err != nil {
		_ = specFile.Close()
		return errors.Wrap(err, "failed to write project spec")
	}
	if err := specFile.Close(); err != nil {
		return errors.Wrap(err, "failed to write project spec")
	}

	_, err = g.runner.Run(ctx, "", "xcodegen",
		"--spec", specPath,
		"--project", projectDir,
		"--project-root", projectDir,
	)
	if err != nil {
		return errors.Wrap(err, "xcodegen failed")
	}
	return nil
}

// resolvePackages pre-fetches SPM dependencies so the first project open
// doesn't stall on package resolution.
func (g *Generator) resolvePackages(ctx context.Context, projectDir string) error {
	_, err := g.runner.Run(ctx, projectDir, "xcodebuild", "-resolvePackageDependencies")
	if err != nil {
		return errors.Wrap(err, "failed to resolve package dependencies")
	}
	return nil
}

// OpenProject opens the generated .xcodeproj in Xcode.
func (g *Generator) OpenProject(ctx context.Context, projectDir string, pctx *ProjectContext) error {
	projectFile := filepath.Join(projectDir, pctx.App.Name.UpperCamel) + ".xcodeproj"

	if _, err := g.runner.Run(ctx, "", "open", projectFile); err != nil {
		fmt.Fprintf(g.out, "Couldn't open your project in Xcode automatically. Open your project at: %s\n", projectFile)
		return err
	}
	return nil
}
