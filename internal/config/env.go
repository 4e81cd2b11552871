package config

import (
	"os"
	"strconv"
)

// Environment variable name constants for CONTEXTSLICER_ prefixed overrides.
const (
	// EnvProfile selects the named profile to activate.
	EnvProfile = "CONTEXTSLICER_PROFILE"
	// EnvBudget overrides the token budget cap.
	EnvBudget = "CONTEXTSLICER_BUDGET"
	// EnvFormat overrides the output format.
	EnvFormat = "CONTEXTSLICER_FORMAT"
	// EnvTokenizer overrides the token estimator.
	EnvTokenizer = "CONTEXTSLICER_TOKENIZER"
	// EnvIntensity overrides the default intensity.
	EnvIntensity = "CONTEXTSLICER_INTENSITY"
	// EnvTarget overrides the consuming-agent target preset.
	EnvTarget = "CONTEXTSLICER_TARGET"
	// EnvLogFormat overrides the log output format (not a profile field).
	EnvLogFormat = "CONTEXTSLICER_LOG_FORMAT"
	// EnvTreeSidecar overrides whether the directory-tree sidecar is
	// requested by default.
	EnvTreeSidecar = "CONTEXTSLICER_TREE_SIDECAR"
)

// buildEnvMap reads CONTEXTSLICER_* environment variables and returns a flat
// map suitable for use with a koanf confmap provider. Only non-empty env
// vars that parse successfully are included. Invalid numeric/boolean values
// are silently skipped so that a bad env var does not block the entire
// resolution pipeline.
func buildEnvMap() map[string]any {
	m := make(map[string]any)

	if v := os.Getenv(EnvFormat); v != "" {
		m["format"] = v
	}
	if v := os.Getenv(EnvBudget); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			m["budget"] = n
		}
	}
	if v := os.Getenv(EnvTokenizer); v != "" {
		m["tokenizer"] = v
	}
	if v := os.Getenv(EnvIntensity); v != "" {
		m["default_intensity"] = v
	}
	if v := os.Getenv(EnvTarget); v != "" {
		m["target"] = v
	}
	if v := os.Getenv(EnvTreeSidecar); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			m["tree_sidecar"] = b
		}
	}

	return m
}
