package scaffold

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"

	"github.com/pkg/errors"
)

// RenderString renders a single template against the project context.
func RenderString(name, content string, ctx *ProjectContext) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(content)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse template %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", errors.Wrapf(err, "failed to render template %s", name)
	}
	return buf.String(), nil
}

// RenderTree walks a directory and renders every file in place. File and
// directory names are themselves templates, so a file named
// "{{.App.Name.UpperCamel}}.swift" is renamed as it is rendered.
func RenderTree(dir string, ctx *ProjectContext) error {
	// Collect paths first; renaming during the walk would invalidate it.
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to walk template directory")
	}

	for _, path := range files {
		if err := renderFile(dir, path, ctx); err != nil {
			return err
		}
	}
	return nil
}

func renderFile(root, path string, ctx *ProjectContext) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return errors.Wrap(err, "failed to resolve template path")
	}

	data, err := os.ReadFile(path) // #nosec G304 - path comes from walking the template dir
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", rel)
	}

	rendered, err := RenderString(rel, string(data), ctx)
	if err != nil {
		return err
	}

	renderedRel, err := RenderString(rel+" (path)", rel, ctx)
	if err != nil {
		return err
	}

	target := filepath.Join(root, renderedRel)
	if dir := filepath.Dir(target); dir != root {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}

	if err := os.WriteFile(target, []byte(rendered), 0600); err != nil {
		return errors.Wrapf(err, "failed to write %s", renderedRel)
	}

	if target != path {
		if err := os.Remove(path); err != nil {
			return errors.Wrapf(err, "failed to remove %s", rel)
		}
	}
	return nil
}
