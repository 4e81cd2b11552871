package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/confmap"
	koanf "github.com/knadh/koanf/v2"
)

// ResolveOptions configures the multi-source configuration resolution.
type ResolveOptions struct {
	// ProfileName selects a named profile from loaded configs.
	// If empty, the CONTEXTSLICER_PROFILE env var is checked, then
	// "default" is used.
	ProfileName string

	// ProfileFile is a standalone profile TOML file path (--profile-file
	// flag). When set, the repo config (contextslicer.toml) is not loaded.
	ProfileFile string

	// TargetDir is the directory to search for contextslicer.toml.
	// Defaults to "." if empty.
	TargetDir string

	// GlobalConfigPath overrides the default
	// ~/.config/contextslicer/config.toml. Useful for testing.
	GlobalConfigPath string

	// CLIFlags holds explicit CLI flag overrides (highest precedence).
	// Keys are flat Profile field names: "format", "budget", "target", etc.
	CLIFlags map[string]any
}

// ResolvedConfig is the result of multi-source configuration resolution.
type ResolvedConfig struct {
	// Profile is the final merged profile ready for use by the planner.
	Profile *Profile

	// Sources tracks which layer each field value came from.
	Sources SourceMap

	// ProfileName is the name of the resolved profile.
	ProfileName string
}

// Resolve runs the 5-layer configuration resolution pipeline:
//  1. Built-in defaults
//  2. Global config (~/.config/contextslicer/config.toml)
//  3. Repository config (contextslicer.toml in TargetDir) OR standalone
//     profile file
//  4. Environment variables (CONTEXTSLICER_* prefix)
//  5. CLI flags (highest precedence)
//
// Missing config files are silently ignored. Invalid files return errors.
// Named profiles not found in any loaded config return an error listing
// available profiles.
func Resolve(opts ResolveOptions) (*ResolvedConfig, error) {
	// Determine profile name: explicit option → CONTEXTSLICER_PROFILE env → "default".
	profileName := opts.ProfileName
	if profileName == "" {
		if v := os.Getenv(EnvProfile); v != "" {
			profileName = v
		} else {
			profileName = "default"
		}
	}

	slog.Debug("resolving config",
		"profile", profileName,
		"targetDir", opts.TargetDir,
		"profileFile", opts.ProfileFile,
	)

	k := koanf.New(".")
	sources := make(SourceMap)

	// ── Layer 1: built-in defaults ─────────────────────────────────────────
	defaultProfile := DefaultProfile()
	if err := loadLayer(k, profileToFlatMap(defaultProfile), sources, SourceDefault); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// Track whether the named profile was found in at least one file layer.
	profileFound := false

	// ── Layer 2: global config ─────────────────────────────────────────────
	globalPath := opts.GlobalConfigPath
	if globalPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath = filepath.Join(home, ".config", "contextslicer", "config.toml")
		}
	}

	if globalPath != "" {
		found, err := loadFileLayer(k, globalPath, profileName, sources, SourceGlobal)
		if err != nil {
			return nil, err
		}
		if found {
			profileFound = true
		}
	}

	// ── Layer 3: repo config OR standalone profile file ────────────────────
	if opts.ProfileFile != "" {
		found, err := loadFileLayer(k, opts.ProfileFile, profileName, sources, SourceRepo)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("profile %q not found in profile file %s", profileName, opts.ProfileFile)
		}
		profileFound = true
	} else {
		targetDir := opts.TargetDir
		if targetDir == "" {
			targetDir = "."
		}
		repoConfigPath := filepath.Join(targetDir, "contextslicer.toml")
		found, err := loadFileLayer(k, repoConfigPath, profileName, sources, SourceRepo)
		if err != nil {
			return nil, err
		}
		if found {
			profileFound = true
		}
	}

	// If a non-default profile was requested but not found, return a helpful error.
	if profileName != "default" && !profileFound {
		return nil, fmt.Errorf("profile %q not found in any config file", profileName)
	}

	// ── Layer 4: environment variables ────────────────────────────────────
	envMap := buildEnvMap()
	if len(envMap) > 0 {
		if err := loadLayer(k, envMap, sources, SourceEnv); err != nil {
			return nil, fmt.Errorf("loading env vars: %w", err)
		}
	}

	// ── Apply target preset (after env, before CLI flags) ─────────────────
	// CLI flags loaded afterward can still override preset values.
	if target := k.String("target"); target != "" {
		presetProfile := flatMapToProfile(k)
		before := profileToFlatMap(presetProfile)
		if err := ApplyTargetPreset(presetProfile, target); err != nil {
			return nil, fmt.Errorf("applying target preset: %w", err)
		}
		// Re-load from preset-applied profile; only changed keys get re-attributed.
		changed := make(map[string]any)
		for key, v := range profileToFlatMap(presetProfile) {
			if fmt.Sprint(v) != fmt.Sprint(before[key]) {
				changed[key] = v
			}
		}
		if err := loadLayer(k, changed, sources, SourceEnv); err != nil {
			return nil, fmt.Errorf("loading target preset: %w", err)
		}
	}

	// ── Layer 5: CLI flags ─────────────────────────────────────────────────
	if len(opts.CLIFlags) > 0 {
		if err := loadLayer(k, opts.CLIFlags, sources, SourceFlag); err != nil {
			return nil, fmt.Errorf("loading CLI flags: %w", err)
		}
	}

	finalProfile := flatMapToProfile(k)

	slog.Debug("config resolved",
		"profile", profileName,
		"format", finalProfile.Format,
		"budget", finalProfile.Budget,
		"target", finalProfile.Target,
	)

	return &ResolvedConfig{
		Profile:     finalProfile,
		Sources:     sources,
		ProfileName: profileName,
	}, nil
}

// loadFileLayer loads a named profile from a TOML config file, merges its
// explicitly-set fields into k, and records source attribution. Missing files
// and missing profiles are silently skipped (returns false, nil). Parse errors
// and I/O errors are returned.
func loadFileLayer(k *koanf.Koanf, path, profileName string, sources SourceMap, src Source) (bool, error) {
	flat, err := extractProfileFlat(path, profileName)
	if err != nil {
		return false, fmt.Errorf("loading config %s: %w", path, err)
	}
	if flat == nil {
		return false, nil
	}

	slog.Debug("loading profile from config",
		"profile", profileName,
		"path", path,
		"source", src.String(),
	)

	if err := loadLayer(k, flat, sources, src); err != nil {
		return false, err
	}
	return true, nil
}

// extractProfileFlat parses a TOML config file into a raw Go map and returns a
// flat koanf-compatible map containing only the fields that are explicitly
// present in the TOML for the given profile or, through its extends chain,
// for its ancestors in the same file (a child's own keys win). Parents
// defined in other files are not followed. Returns nil if the file does not
// exist or the profile is not found in the file.
func extractProfileFlat(path, profileName string) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			slog.Debug("config file not found, skipping", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	// Parse into a raw map so we only see keys present in the TOML file.
	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	profilesRaw, ok := raw["profile"].(map[string]interface{})
	if !ok {
		available := listConfigProfileNames(path)
		slog.Debug("no [profile] section in config",
			"path", path,
			"available", strings.Join(available, ", "),
		)
		return nil, nil
	}

	profileRaw, ok := profilesRaw[profileName].(map[string]interface{})
	if !ok {
		available := make([]string, 0, len(profilesRaw))
		for name := range profilesRaw {
			available = append(available, name)
		}
		sort.Strings(available)
		slog.Debug("profile not found in config",
			"profile", profileName,
			"path", path,
			"available", strings.Join(available, ", "),
		)
		return nil, nil
	}

	flat := flattenProfileRaw(profileRaw)
	// Parent profiles in this file fill in keys the child leaves unset.
	seen := map[string]bool{profileName: true}
	for parent, _ := profileRaw["extends"].(string); parent != "" && !seen[parent]; parent, _ = profileRaw["extends"].(string) {
		seen[parent] = true
		if profileRaw, ok = profilesRaw[parent].(map[string]interface{}); !ok {
			break
		}
		for key, v := range flattenProfileRaw(profileRaw) {
			if _, set := flat[key]; !set {
				flat[key] = v
			}
		}
	}
	return flat, nil
}

// listConfigProfileNames returns profile names from a TOML file, for debug
// logging. Returns nil on any error.
func listConfigProfileNames(path string) []string {
	var raw map[string]interface{}
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil
	}
	profiles, ok := raw["profile"].(map[string]interface{})
	if !ok {
		return nil
	}
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// flattenProfileRaw converts a raw TOML profile map (as decoded by
// BurntSushi/toml into map[string]interface{}) into a flat koanf-compatible
// map. Only fields explicitly present in the raw map are included.
func flattenProfileRaw(raw map[string]interface{}) map[string]any {
	flat := make(map[string]any)

	// Scalar string fields.
	for _, key := range []string{"format", "tokenizer", "default_intensity", "target"} {
		if v, ok := raw[key]; ok {
			flat[key] = v
		}
	}

	// Integer fields: BurntSushi/toml decodes TOML integers as int64 in raw maps.
	if v, ok := raw["budget"]; ok {
		flat["budget"] = toInt(v)
	}

	// Boolean fields.
	if v, ok := raw["tree_sidecar"]; ok {
		flat["tree_sidecar"] = v
	}

	// Slice fields.
	for _, key := range []string{"ignore", "include"} {
		if v, ok := raw[key]; ok {
			flat[key] = rawToStringSlice(v)
		}
	}

	// Nested: strategies per intensity.
	if stratRaw, ok := raw["strategies"].(map[string]interface{}); ok {
		for _, level := range []string{"lite", "standard", "deep"} {
			if v, ok := stratRaw[level]; ok {
				flat["strategies."+level] = rawToStringSlice(v)
			}
		}
	}

	// Nested: strategy_caps is keyed by an arbitrary strategy name, so it is
	// flattened generically rather than against a fixed field list.
	if capsRaw, ok := raw["strategy_caps"].(map[string]interface{}); ok {
		for name, entry := range capsRaw {
			capTable, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			if v, ok := capTable["max_items"]; ok {
				flat["strategy_caps."+name+".max_items"] = toInt(v)
			}
			if v, ok := capTable["max_tokens"]; ok {
				flat["strategy_caps."+name+".max_tokens"] = toInt(v)
			}
			if v, ok := capTable["budget_fraction"]; ok {
				flat["strategy_caps."+name+".budget_fraction"] = toFloat(v)
			}
		}
	}

	return flat
}

// toInt normalizes a decoded TOML integer (typically int64) to int.
func toInt(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

// toFloat normalizes a decoded TOML number to float64.
func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

// rawToStringSlice converts a raw TOML array value ([]interface{}) into
// []string. Returns nil for unrecognised types.
func rawToStringSlice(v interface{}) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []interface{}:
		result := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return nil
	}
}

// loadLayer merges a flat map into k and marks every key in the map as
// originating from src. This approach correctly attributes source even when
// a later layer provides the same value as a prior layer (e.g. CLI flag
// setting the same value as an env var).
func loadLayer(k *koanf.Koanf, m map[string]any, sources SourceMap, src Source) error {
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return fmt.Errorf("merge layer %s: %w", src.String(), err)
	}
	for key := range m {
		sources[key] = src
	}
	return nil
}

// strategyCapFieldNames lists the strategy names the defaults layer seeds
// into koanf so the CLI-flags/env layers can also address individual cap
// fields by flat key even when the TOML file never mentions that strategy.
func strategyCapFieldNames(caps map[string]StrategyCap) []string {
	names := make([]string, 0, len(caps))
	for name := range caps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// profileToFlatMap converts a Profile to a flat map for koanf's confmap
// provider. All fields are included (used for the defaults layer where every
// field has an authoritative default value).
func profileToFlatMap(p *Profile) map[string]any {
	flat := map[string]any{
		"format":            p.Format,
		"budget":            p.Budget,
		"tokenizer":         p.Tokenizer,
		"default_intensity": p.DefaultIntensity,
		"target":            p.Target,
		"tree_sidecar":      p.WantTreeSidecar,

		"ignore":  p.Ignore,
		"include": p.Include,

		"strategies.lite":     p.Strategies.Lite,
		"strategies.standard": p.Strategies.Standard,
		"strategies.deep":     p.Strategies.Deep,
	}

	for _, name := range strategyCapFieldNames(p.StrategyCaps) {
		c := p.StrategyCaps[name]
		flat["strategy_caps."+name+".max_items"] = c.MaxItems
		flat["strategy_caps."+name+".max_tokens"] = c.MaxTokens
		flat["strategy_caps."+name+".budget_fraction"] = c.BudgetFraction
	}

	return flat
}

// flatMapToProfile converts the current koanf state into a Profile struct.
func flatMapToProfile(k *koanf.Koanf) *Profile {
	p := &Profile{
		Format:           k.String("format"),
		Budget:           k.Int("budget"),
		Tokenizer:        k.String("tokenizer"),
		DefaultIntensity: k.String("default_intensity"),
		Target:           k.String("target"),
		WantTreeSidecar:  k.Bool("tree_sidecar"),

		Ignore:  k.Strings("ignore"),
		Include: k.Strings("include"),

		Strategies: StrategySets{
			Lite:     k.Strings("strategies.lite"),
			Standard: k.Strings("strategies.standard"),
			Deep:     k.Strings("strategies.deep"),
		},
	}

	capNames := k.MapKeys("strategy_caps")
	if len(capNames) > 0 {
		p.StrategyCaps = make(map[string]StrategyCap, len(capNames))
		for _, name := range capNames {
			p.StrategyCaps[name] = StrategyCap{
				MaxItems:       k.Int("strategy_caps." + name + ".max_items"),
				MaxTokens:      k.Int("strategy_caps." + name + ".max_tokens"),
				BudgetFraction: k.Float64("strategy_caps." + name + ".budget_fraction"),
			}
		}
	}

	return p
}
