package config

// mergeProfile creates a new Profile by applying override on top of base.
// The merge rules are:
//   - String scalars: use override if non-empty; otherwise keep base.
//   - Int scalars: use override if non-zero; otherwise keep base.
//   - Bool scalars: true if either base or override is true (see
//     mergeBoolSet); an override cannot turn off a value base enables.
//   - Slice fields (Ignore, Include): use override slice if it is non-nil
//     and non-empty; otherwise keep base slice.
//   - StrategySets: each intensity level is replaced independently
//     (non-nil, non-empty child list replaces the parent list).
//   - StrategyCaps: merged key-by-key; a key present in override replaces
//     the same key in base entirely.
//
// Neither base nor override is mutated. A fresh Profile is always returned.
// The Extends field is always cleared on the returned profile.
func mergeProfile(base, override *Profile) *Profile {
	result := &Profile{
		// Scalar: string
		Format:           mergeString(base.Format, override.Format),
		Tokenizer:        mergeString(base.Tokenizer, override.Tokenizer),
		DefaultIntensity: mergeString(base.DefaultIntensity, override.DefaultIntensity),
		Target:           mergeString(base.Target, override.Target),

		// Scalar: int
		Budget: mergeInt(base.Budget, override.Budget),

		// Scalar: bool -- true if either side is true
		WantTreeSidecar: mergeBoolSet(base, override),

		// Slices: child replaces parent entirely when non-nil and non-empty
		Ignore:  mergeSlice(base.Ignore, override.Ignore),
		Include: mergeSlice(base.Include, override.Include),

		// Nested structs
		Strategies:   mergeStrategySets(base.Strategies, override.Strategies),
		StrategyCaps: mergeStrategyCaps(base.StrategyCaps, override.StrategyCaps),

		// Extends is always cleared after merge (profile is fully resolved)
		Extends: nil,
	}
	return result
}

// mergeBoolSet resolves WantTreeSidecar: override wins whenever it was set
// (true), otherwise the base value carries forward. Unlike a plain bool
// override, this preserves a base-level "on" setting when a child profile
// never mentions the field at all (the zero value of bool is
// indistinguishable from an explicit false in TOML decoding, so the safer
// default is to let true values propagate from either layer).
func mergeBoolSet(base, override *Profile) bool {
	return base.WantTreeSidecar || override.WantTreeSidecar
}

// mergeString returns override if non-empty, otherwise base.
func mergeString(base, override string) string {
	if override != "" {
		return override
	}
	return base
}

// mergeInt returns override if non-zero, otherwise base.
func mergeInt(base, override int) int {
	if override != 0 {
		return override
	}
	return base
}

// mergeSlice returns a copy of override if it is non-nil and non-empty,
// otherwise returns a copy of base. Copies are made at the boundary so
// callers never share slice backing arrays.
func mergeSlice(base, override []string) []string {
	if len(override) > 0 {
		result := make([]string, len(override))
		copy(result, override)
		return result
	}
	if len(base) > 0 {
		result := make([]string, len(base))
		copy(result, base)
		return result
	}
	return nil
}

// mergeStrategySets merges two StrategySets. Each intensity level is
// independent: if the override list is non-empty it fully replaces the base
// list for that level.
func mergeStrategySets(base, override StrategySets) StrategySets {
	return StrategySets{
		Lite:     mergeSlice(base.Lite, override.Lite),
		Standard: mergeSlice(base.Standard, override.Standard),
		Deep:     mergeSlice(base.Deep, override.Deep),
	}
}

// mergeStrategyCaps merges two per-strategy cap maps key-by-key. A strategy
// name present in override replaces the corresponding entry from base
// entirely; strategy names present only in base pass through unchanged.
func mergeStrategyCaps(base, override map[string]StrategyCap) map[string]StrategyCap {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	result := make(map[string]StrategyCap, len(base)+len(override))
	for name, c := range base {
		result[name] = c
	}
	for name, c := range override {
		result[name] = c
	}
	return result
}
