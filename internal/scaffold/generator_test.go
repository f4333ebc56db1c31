package scaffold

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemplate(t *testing.T) string {
	t.Helper()

	templateDir := t.TempDir()
	appDir := filepath.Join(templateDir, "App")
	if err := os.MkdirAll(appDir, 0750); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		filepath.Join(appDir, "{{.App.Name.UpperCamel}}.swift"): "struct {{.App.Name.UpperCamel}} {}",
		filepath.Join(templateDir, "project.yml"):               "name: {{.App.Name.UpperCamel}}\nbundleId: {{.App.BundleID}}\n",
		filepath.Join(templateDir, "manifest.yaml"):             "name: default\nmin_sdk_version: 1.0.0\n",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return templateDir
}

func TestGenerator_Generate(t *testing.T) {
	templateDir := writeTemplate(t)
	projectDir := filepath.Join(t.TempDir(), "cool")

	var specContent string
	runner := &MockRunner{
		RunFunc: func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
			if name == "xcodegen" {
				data, err := os.ReadFile(args[1])
				if err != nil {
					t.Fatalf("spec file unreadable during xcodegen: %v", err)
				}
				specContent = string(data)
			}
			return nil, nil
		},
	}

	gen := NewGenerator(runner, os.Stderr)
	targetDir, err := gen.Generate(context.Background(), projectDir, templateDir, renderContext())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if filepath.Base(targetDir) != "CoolApp" {
		t.Errorf("targetDir = %v", targetDir)
	}

	rendered, err := os.ReadFile(filepath.Join(targetDir, "CoolApp.swift"))
	if err != nil {
		t.Fatalf("rendered source missing: %v", err)
	}
	if string(rendered) != "struct CoolApp {}" {
		t.Errorf("rendered = %q", rendered)
	}

	if len(runner.Calls) != 2 {
		t.Fatalf("commands = %+v, want xcodegen then xcodebuild", runner.Calls)
	}
	if runner.Calls[0].Name != "xcodegen" {
		t.Errorf("first command = %v", runner.Calls[0].Name)
	}
	if !strings.Contains(specContent, "name: CoolApp") || !strings.Contains(specContent, "bundleId: com.acme.cool") {
		t.Errorf("project spec = %q", specContent)
	}

	resolve := runner.Calls[1]
	if resolve.Name != "xcodebuild" || resolve.Args[0] != "-resolvePackageDependencies" {
		t.Errorf("second command = %+v", resolve)
	}
	if resolve.Dir != projectDir {
		t.Errorf("resolve dir = %v, want project dir", resolve.Dir)
	}
}

func TestGenerator_GenerateReplacesExistingProject(t *testing.T) {
	templateDir := writeTemplate(t)
	projectDir := filepath.Join(t.TempDir(), "cool")

	stale := filepath.Join(projectDir, "stale.txt")
	if err := os.MkdirAll(projectDir, 0750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}

	gen := NewGenerator(&MockRunner{}, os.Stderr)
	if _, err := gen.Generate(context.Background(), projectDir, templateDir, renderContext()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale file survived regeneration")
	}
}

func TestGenerator_OpenProject(t *testing.T) {
	runner := &MockRunner{}
	gen := NewGenerator(runner, os.Stderr)

	err := gen.OpenProject(context.Background(), "/tmp/cool", renderContext())
	if err != nil {
		t.Fatalf("OpenProject() error = %v", err)
	}

	if len(runner.Calls) != 1 || runner.Calls[0].Name != "open" {
		t.Fatalf("commands = %+v", runner.Calls)
	}
	if runner.Calls[0].Args[0] != "/tmp/cool/CoolApp.xcodeproj" {
		t.Errorf("open target = %v", runner.Calls[0].Args)
	}
}

func TestFetcher_FetchRemote(t *testing.T) {
	var cloneDir string
	runner := &MockRunner{
		RunFunc: func(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
			if args[0] == "clone" {
				cloneDir = args[len(args)-1]
				// Simulate the sparse checkout materializing the template.
				if err := os.MkdirAll(filepath.Join(cloneDir, "templates", "default"), 0750); err != nil {
					t.Fatal(err)
				}
			}
			return nil, nil
		},
	}

	fetcher := NewFetcher(runner)
	templateDir, err := fetcher.FetchRemote(context.Background(), "1.2.3", "default")
	if err != nil {
		t.Fatalf("FetchRemote() error = %v", err)
	}
	defer func() { _ = os.RemoveAll(cloneDir) }()

	if templateDir != filepath.Join(cloneDir, "templates", "default") {
		t.Errorf("templateDir = %v", templateDir)
	}

	if len(runner.Calls) != 4 {
		t.Fatalf("git calls = %+v", runner.Calls)
	}
	if got := runner.Calls[1].Args; got[0] != "sparse-checkout" {
		t.Errorf("second call = %v", got)
	}
	if got := runner.Calls[2].Args; got[0] != "fetch" || got[2] != "tag" || got[3] != "1.2.3" {
		t.Errorf("third call = %v", got)
	}
	if got := runner.Calls[3].Args; got[0] != "checkout" || got[1] != "tags/1.2.3" {
		t.Errorf("fourth call = %v", got)
	}
}

func TestFetcher_MissingTemplate(t *testing.T) {
	runner := &MockRunner{}
	fetcher := NewFetcher(runner)

	_, err := fetcher.FetchRemote(context.Background(), "1.2.3", "nonexistent")
	if err == nil {
		t.Error("FetchRemote() error = nil, want missing template error")
	}
}

func TestLoadManifest(t *testing.T) {
	templateDir := writeTemplate(t)

	manifest, err := LoadManifest(templateDir)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if manifest.Name != "default" || manifest.MinSDKVersion != "1.0.0" {
		t.Errorf("manifest = %+v", manifest)
	}
}
