package scaffold

import (
	"regexp"
	"strings"
)

var (
	invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9\s-]`)
	slugSeparators   = regexp.MustCompile(`[\s_-]+`)
)

// genericNameWords are words stripped from an app name when deriving the
// display name shown to end users. "Cool iOS App" reads better as "Cool".
var genericNameWords = map[string]bool{
	"ios":         true,
	"mobile":      true,
	"app":         true,
	"application": true,
}

// SanitizeName strips characters that are not safe to use in project names.
func SanitizeName(name string) string {
	return strings.TrimSpace(invalidNameChars.ReplaceAllString(name, ""))
}

// Slugify converts a name to its kebab-case form. Multi-word tokens like
// "My iOS App" become "my-ios-app".
func Slugify(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	slug := slugSeparators.ReplaceAllString(lowered, "-")
	return strings.Trim(slug, "-")
}

// UpperCamel converts a name to UpperCamelCase via its slug so invalid
// characters are stripped along the way.
func UpperCamel(name string) string {
	parts := strings.Split(Slugify(name), "-")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// DisplayName derives the user-facing name by dropping generic words like
// "iOS" and "App" from the raw name.
func DisplayName(name string) string {
	fields := strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '-' || r == '_'
	})

	var kept []string
	for _, word := range fields {
		if !genericNameWords[strings.ToLower(word)] {
			kept = append(kept, word)
		}
	}

	if len(kept) == 0 {
		return strings.TrimSpace(name)
	}
	return strings.Join(kept, " ")
}

// StructName derives the name used for the app's main type. The word "App" is
// appended unless the name already contains it.
func StructName(name string) string {
	camel := UpperCamel(name)
	if strings.Contains(strings.ToLower(name), "app") {
		return camel
	}
	return camel + "App"
}
