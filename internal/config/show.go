package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ShowOptions controls the rendering of a resolved profile.
type ShowOptions struct {
	// Profile is the fully merged profile to display.
	Profile *Profile

	// Sources maps flat field names to their origin layer.
	Sources SourceMap

	// ProfileName is the name of the profile being displayed.
	ProfileName string

	// Chain is the inheritance chain in resolution order, e.g. ["ci", "default"].
	Chain []string
}

// ShowProfile renders a resolved profile as annotated TOML. Each field is
// printed with an inline comment indicating which configuration layer
// provided its value. The output is human-readable and approximately valid
// TOML (inline comments are not part of the TOML spec but are widely
// supported by editors and tooling).
//
// The Chain parameter should come from ProfileResolution.Chain.
func ShowProfile(opts ShowOptions) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Resolved profile: %s\n", opts.ProfileName)
	if len(opts.Chain) > 1 {
		fmt.Fprintf(&b, "# Inheritance chain: %s\n", strings.Join(opts.Chain, " -> "))
	}
	fmt.Fprintf(&b, "\n")

	p := opts.Profile
	src := opts.Sources

	writeIntField(&b, "budget", p.Budget, sourceLabel(src, "budget"))
	writeStringField(&b, "format", p.Format, sourceLabel(src, "format"))
	writeStringField(&b, "tokenizer", p.Tokenizer, sourceLabel(src, "tokenizer"))
	writeStringField(&b, "default_intensity", p.DefaultIntensity, sourceLabel(src, "default_intensity"))
	if p.Target != "" {
		writeStringField(&b, "target", p.Target, sourceLabel(src, "target"))
	}
	writeBoolField(&b, "tree_sidecar", p.WantTreeSidecar, sourceLabel(src, "tree_sidecar"))

	writeStringSliceField(&b, "ignore", p.Ignore, sourceLabel(src, "ignore"))
	if len(p.Include) > 0 {
		writeStringSliceField(&b, "include", p.Include, sourceLabel(src, "include"))
	}

	b.WriteString("\n")
	writeStrategiesSection(&b, p.Strategies, src)

	if len(p.StrategyCaps) > 0 {
		b.WriteString("\n")
		writeStrategyCapsSection(&b, p.StrategyCaps, src)
	}

	return b.String()
}

// ShowProfileJSON serializes the resolved profile to indented JSON. It returns
// the JSON bytes as a string. An error is returned only if marshalling fails,
// which should not happen for well-formed Profile values.
func ShowProfileJSON(p *Profile) (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile to JSON: %w", err)
	}
	return string(data), nil
}

// sourceLabel returns the Source.String() for a given flat key, defaulting to
// "default" when the key is absent from the SourceMap.
func sourceLabel(src SourceMap, key string) string {
	if s, ok := src[key]; ok {
		return s.String()
	}
	return "default"
}

// writeStringField writes a TOML string assignment with an inline source comment.
func writeStringField(b *strings.Builder, key, value, source string) {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	fmt.Fprintf(b, "%-20s = %-30s # %s\n", key, `"`+escaped+`"`, source)
}

// writeIntField writes a TOML integer assignment with an inline source comment.
func writeIntField(b *strings.Builder, key string, value int, source string) {
	fmt.Fprintf(b, "%-20s = %-30d # %s\n", key, value, source)
}

// writeBoolField writes a TOML boolean assignment with an inline source comment.
func writeBoolField(b *strings.Builder, key string, value bool, source string) {
	boolStr := "false"
	if value {
		boolStr = "true"
	}
	fmt.Fprintf(b, "%-20s = %-30s # %s\n", key, boolStr, source)
}

// writeStringSliceField writes a multi-line TOML array with an inline source
// comment on the opening bracket line.
func writeStringSliceField(b *strings.Builder, key string, values []string, source string) {
	if len(values) == 0 {
		fmt.Fprintf(b, "%-20s = []%-27s # %s\n", key, "", source)
		return
	}

	fmt.Fprintf(b, "%-20s = [%-29s # %s\n", key, "", source)
	for _, v := range values {
		fmt.Fprintf(b, "  %q,\n", v)
	}
	b.WriteString("]\n")
}

// writeStrategiesSection writes the [strategies] TOML table with per-level
// source annotations.
func writeStrategiesSection(b *strings.Builder, s StrategySets, src SourceMap) {
	fmt.Fprintf(b, "[strategies]\n")
	writeStrategyLevelField(b, "lite", s.Lite, sourceLabel(src, "strategies.lite"))
	writeStrategyLevelField(b, "standard", s.Standard, sourceLabel(src, "strategies.standard"))
	writeStrategyLevelField(b, "deep", s.Deep, sourceLabel(src, "strategies.deep"))
}

// writeStrategyLevelField writes a single intensity's strategy list as a TOML
// array with a source comment.
func writeStrategyLevelField(b *strings.Builder, key string, values []string, source string) {
	if len(values) == 0 {
		fmt.Fprintf(b, "%-8s = []%-27s # %s\n", key, "", source)
		return
	}

	fmt.Fprintf(b, "%-8s = [%-29s # %s\n", key, "", source)
	for _, v := range values {
		fmt.Fprintf(b, "  %q,\n", v)
	}
	b.WriteString("]\n")
}

// writeStrategyCapsSection writes one [strategy_caps.<name>] TOML table per
// strategy cap, in a stable sorted order.
func writeStrategyCapsSection(b *strings.Builder, caps map[string]StrategyCap, src SourceMap) {
	for _, name := range strategyCapFieldNames(caps) {
		c := caps[name]
		fmt.Fprintf(b, "[strategy_caps.%s]\n", name)
		prefix := fmt.Sprintf("strategy_caps.%s.", name)
		writeIntSectionField(b, "max_items", c.MaxItems, sourceLabel(src, prefix+"max_items"))
		writeIntSectionField(b, "max_tokens", c.MaxTokens, sourceLabel(src, prefix+"max_tokens"))
		writeFloatSectionField(b, "budget_fraction", c.BudgetFraction, sourceLabel(src, prefix+"budget_fraction"))
	}
}

// writeIntSectionField writes an integer field inside a TOML section.
func writeIntSectionField(b *strings.Builder, key string, value int, source string) {
	fmt.Fprintf(b, "%-24s = %-26d # %s\n", key, value, source)
}

// writeFloatSectionField writes a float field inside a TOML section.
func writeFloatSectionField(b *strings.Builder, key string, value float64, source string) {
	fmt.Fprintf(b, "%-24s = %-26s # %s\n", key, fmt.Sprintf("%g", value), source)
}
