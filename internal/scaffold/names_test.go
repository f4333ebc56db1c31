package scaffold

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My iOS App", "my-ios-app"},
		{"Simple", "simple"},
		{"snake_case_name", "snake-case-name"},
		{"  padded  ", "padded"},
		{"Already-Kebab", "already-kebab"},
		{"Multi   Space", "multi-space"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUpperCamel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"my-cool-app", "MyCoolApp"},
		{"My iOS App", "MyIosApp"},
		{"simple", "Simple"},
	}

	for _, tt := range tests {
		if got := UpperCamel(tt.in); got != tt.want {
			t.Errorf("UpperCamel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cool iOS App", "Cool"},
		{"My Mobile Application", "My"},
		{"Notes", "Notes"},
		// All words generic: keep the raw name rather than show nothing
		{"iOS App", "iOS App"},
	}

	for _, tt := range tests {
		if got := DisplayName(tt.in); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStructName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		// "App" appended when absent so the main type reads naturally
		{"Notes", "NotesApp"},
		{"Notes App", "NotesApp"},
		{"MyApp", "Myapp"},
	}

	for _, tt := range tests {
		if got := StructName(tt.in); got != tt.want {
			t.Errorf("StructName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My App!", "My App"},
		{"Café", "Caf"},
		{"ok-name 1", "ok-name 1"},
	}

	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
