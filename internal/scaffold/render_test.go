package scaffold

import (
	"os"
	"path/filepath"
	"testing"
)

func renderContext() *ProjectContext {
	return &ProjectContext{
		App: AppInfo{
			ID:       "app-1",
			BundleID: "com.acme.cool",
			Name: AppName{
				Raw:         "Cool",
				Kebab:       "cool",
				UpperCamel:  "CoolApp",
				DisplayName: "Cool",
			},
		},
		Tenant: TenantInfo{ID: "tenant-1", Name: "Acme"},
		SDK:    SDKInfo{Version: "1.2.3"},
	}
}

func TestRenderString(t *testing.T) {
	out, err := RenderString("test", "bundle: {{.App.BundleID}} sdk: {{.SDK.Version}}", renderContext())
	if err != nil {
		t.Fatalf("RenderString() error = %v", err)
	}
	if out != "bundle: com.acme.cool sdk: 1.2.3" {
		t.Errorf("out = %q", out)
	}
}

func TestRenderString_UnknownField(t *testing.T) {
	if _, err := RenderString("test", "{{.App.Missing}}", renderContext()); err == nil {
		t.Error("RenderString() error = nil, want unknown field error")
	}
}

func TestRenderTree(t *testing.T) {
	dir := t.TempDir()

	writeFile := func(rel, content string) {
		t.Helper()
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}

	writeFile("{{.App.Name.UpperCamel}}.swift", "struct {{.App.Name.UpperCamel}} {}")
	writeFile("Config/Info.plist", "<key>{{.App.BundleID}}</key>")

	if err := RenderTree(dir, renderContext()); err != nil {
		t.Fatalf("RenderTree() error = %v", err)
	}

	renamed, err := os.ReadFile(filepath.Join(dir, "CoolApp.swift"))
	if err != nil {
		t.Fatalf("renamed file missing: %v", err)
	}
	if string(renamed) != "struct CoolApp {}" {
		t.Errorf("renamed content = %q", renamed)
	}

	if _, err := os.Stat(filepath.Join(dir, "{{.App.Name.UpperCamel}}.swift")); !os.IsNotExist(err) {
		t.Error("template-named file still present after rendering")
	}

	plist, err := os.ReadFile(filepath.Join(dir, "Config", "Info.plist"))
	if err != nil {
		t.Fatalf("nested file missing: %v", err)
	}
	if string(plist) != "<key>com.acme.cool</key>" {
		t.Errorf("plist content = %q", plist)
	}
}
