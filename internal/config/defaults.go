package config

import (
	"embed"
	"fmt"

	"github.com/BurntSushi/toml"
)

//go:embed strategy_defaults.toml
var strategyDefaultsFS embed.FS

// defaultStrategySets is parsed once from the embedded strategy_defaults.toml
// and reused by every call to DefaultProfile.
var defaultStrategySets = mustLoadDefaultStrategySets()

type strategyDefaultsFile struct {
	Strategies StrategySets `toml:"strategies"`
}

// mustLoadDefaultStrategySets parses the embedded strategy_defaults.toml. A
// parse failure here means the embedded asset is malformed, which can only
// happen if the binary itself was built wrong, so it panics at init time
// rather than propagating a runtime error through every DefaultProfile call.
func mustLoadDefaultStrategySets() StrategySets {
	data, err := strategyDefaultsFS.ReadFile("strategy_defaults.toml")
	if err != nil {
		panic(fmt.Sprintf("read embedded strategy_defaults.toml: %v", err))
	}
	var parsed strategyDefaultsFile
	if _, err := toml.Decode(string(data), &parsed); err != nil {
		panic(fmt.Sprintf("parse embedded strategy_defaults.toml: %v", err))
	}
	return parsed.Strategies
}

// DefaultProfile returns a new Profile populated with the built-in defaults.
// This profile is used as the base when no contextslicer.toml is present or
// when a named profile omits fields.
//
// Callers receive a fresh copy each time; mutating the returned value does
// not affect subsequent calls.
func DefaultProfile() *Profile {
	return &Profile{
		Budget:           8000,
		Format:           "xml",
		Tokenizer:        "char",
		DefaultIntensity: "standard",
		WantTreeSidecar:  true,
		Ignore: []string{
			"node_modules",
			"dist",
			".git",
			"coverage",
			"__pycache__",
			".next",
			"target",
			"vendor",
			".contextslicer",
		},
		Strategies:   copyStrategySets(defaultStrategySets),
		StrategyCaps: defaultStrategyCaps(),
	}
}

func copyStrategySets(s StrategySets) StrategySets {
	return StrategySets{
		Lite:     append([]string(nil), s.Lite...),
		Standard: append([]string(nil), s.Standard...),
		Deep:     append([]string(nil), s.Deep...),
	}
}

// defaultStrategyCaps returns the built-in per-strategy soft budget caps, as
// a fraction of the total request budget. These values are config-only:
// they feed profile display and linting, and strategyCapsToEngine in
// internal/pipeline drops BudgetFraction, so the selector applies its own
// table (internal/selector.defaultCapTable), whose values differ.
func defaultStrategyCaps() map[string]StrategyCap {
	return map[string]StrategyCap{
		"explicit":   {BudgetFraction: 0.35},
		"keyword":    {BudgetFraction: 0.25},
		"symbols":    {BudgetFraction: 0.20},
		"ast":        {BudgetFraction: 0.20},
		"skeleton":   {BudgetFraction: 0.15},
		"docs":       {BudgetFraction: 0.15},
		"graph":      {BudgetFraction: 0.15},
		"semantic":   {BudgetFraction: 0.15},
		"complexity": {BudgetFraction: 0.10},
		"config":     {BudgetFraction: 0.10},
		"diff":       {BudgetFraction: 0.20},
		"forest":     {BudgetFraction: 0.05},
	}
}
