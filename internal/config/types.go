package config

// Config is the top-level configuration type parsed from a contextslicer.toml
// file. It holds a map of named profiles keyed by profile name. Profile names
// are case-sensitive. The special name "default" is the built-in fallback
// profile.
type Config struct {
	// Profile maps profile names to their configuration. Access via
	// cfg.Profile["default"] or cfg.Profile["ci"].
	Profile map[string]*Profile `toml:"profile"`
}

// Profile defines all settings for a single named profile. Fields with zero
// values are considered unset and will be filled in by the merge/inheritance
// pipeline. The Extends field enables profile inheritance.
type Profile struct {
	// Extends is the name of a parent profile to inherit from. When set,
	// all unset fields in this profile are filled from the named parent.
	// A nil pointer means no inheritance.
	Extends *string `toml:"extends"`

	// Budget is the default token budget cap handed to the selector when
	// a request does not specify one explicitly.
	Budget int `toml:"budget"`

	// Format controls the rendered output format. Valid values: "xml",
	// "markdown", "json".
	Format string `toml:"format"`

	// Tokenizer selects the token estimator. Valid values: "char",
	// "cl100k_base", "o200k_base".
	Tokenizer string `toml:"tokenizer"`

	// DefaultIntensity is the intensity applied to a strategy that has no
	// per-strategy override. Valid values: "lite", "standard", "deep".
	DefaultIntensity string `toml:"default_intensity"`

	// Target selects a preset tuned for a specific consuming agent.
	// Valid values: "claude", "chatgpt", "generic", or empty string.
	Target string `toml:"target"`

	// WantTreeSidecar turns on the directory-tree sidecar by default.
	WantTreeSidecar bool `toml:"tree_sidecar"`

	// Ignore is the list of glob patterns for files and directories the
	// repository inspector should never walk into. Patterns are evaluated
	// with doublestar.
	Ignore []string `toml:"ignore"`

	// Include is the list of glob patterns that, when non-empty, restrict
	// every strategy to paths matching at least one pattern.
	Include []string `toml:"include"`

	// Strategies holds the default strategy set activated per intensity
	// level when a request does not specify one explicitly.
	Strategies StrategySets `toml:"strategies"`

	// StrategyCaps holds per-strategy overrides on item counts and token
	// budgets, keyed by strategy name.
	StrategyCaps map[string]StrategyCap `toml:"strategy_caps"`
}

// StrategySets names the strategies activated by default at each intensity
// level. Each field is an ordered list of strategy names matching the
// canonical producer/consumer ordering.
type StrategySets struct {
	Lite     []string `toml:"lite"`
	Standard []string `toml:"standard"`
	Deep     []string `toml:"deep"`
}

// StrategyCap is a per-strategy override on item counts and token budget,
// mirroring engine.StrategyCap's shape without importing the engine package.
type StrategyCap struct {
	MaxItems       int     `toml:"max_items"`
	MaxTokens      int     `toml:"max_tokens"`
	BudgetFraction float64 `toml:"budget_fraction"`
}
