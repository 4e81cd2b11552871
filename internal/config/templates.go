package config

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed templates/*.toml
var templateFS embed.FS

// TemplateInfo describes a single profile template.
type TemplateInfo struct {
	// Name is the short identifier used with --template (e.g. "ci", "thorough").
	Name string

	// Description is a one-line human-readable description of the template.
	Description string
}

// templates is the registry of available profile templates in display order.
var templates = []TemplateInfo{
	{Name: "minimal", Description: "Tight budget, lite intensity only, for quick lookups"},
	{Name: "thorough", Description: "Deep intensity with every builtin strategy enabled"},
	{Name: "ci", Description: "Diff-focused profile for pull request review bots"},
	{Name: "docs-heavy", Description: "Weights documentation and config strategies for onboarding questions"},
	{Name: "monorepo", Description: "Wider ignore list and raised budget for multi-package repositories"},
}

// ListTemplates returns metadata for all available profile templates.
// The returned slice is in display order (minimal first).
func ListTemplates() []TemplateInfo {
	result := make([]TemplateInfo, len(templates))
	copy(result, templates)
	return result
}

// GetTemplate returns the raw TOML content for the named template.
// The name must match one of the values returned by ListTemplates (e.g. "ci").
// It returns an error if the template name is not recognised.
func GetTemplate(name string) (string, error) {
	found := false
	for _, t := range templates {
		if t.Name == name {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("unknown template %q: use ListTemplates() to see available templates", name)
	}

	data, err := templateFS.ReadFile("templates/" + name + ".toml")
	if err != nil {
		return "", fmt.Errorf("read template %q: %w", name, err)
	}

	return string(data), nil
}

// RenderTemplate returns the TOML content for the named template with all
// occurrences of the placeholder {{profile_name}} replaced by profileName.
// It returns an error if the template name is not recognised.
func RenderTemplate(name, profileName string) (string, error) {
	content, err := GetTemplate(name)
	if err != nil {
		return "", err
	}

	return strings.ReplaceAll(content, "{{profile_name}}", profileName), nil
}
