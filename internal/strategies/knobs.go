package strategies

import "github.com/contextslicer/contextslicer/internal/engine"

// DefaultKnobs returns the built-in per-strategy, per-intensity knobs used
// when no profile override is configured. The real defaults live in
// internal/config's embedded strategy_defaults.toml; this table is the
// fallback baked into the binary so a strategy is never left without knobs.
func DefaultKnobs(strategyName string, intensity engine.Intensity) IntensityKnobs {
	table, ok := defaultKnobTable[strategyName]
	if !ok {
		return genericKnobTable[intensity]
	}
	if knobs, ok := table[intensity]; ok {
		return knobs
	}
	return genericKnobTable[intensity]
}

var genericKnobTable = map[engine.Intensity]IntensityKnobs{
	engine.IntensityLite:     {MaxItems: 5, MaxHitsPerFile: 2, ContextLines: 2},
	engine.IntensityStandard: {MaxItems: 12, MaxHitsPerFile: 4, ContextLines: 4},
	engine.IntensityDeep:     {MaxItems: 30, MaxHitsPerFile: 8, ContextLines: 8},
}

var defaultKnobTable = map[string]map[engine.Intensity]IntensityKnobs{
	"keyword": {
		engine.IntensityLite:     {MaxItems: 6, MaxHitsPerFile: 3, ContextLines: 2},
		engine.IntensityStandard: {MaxItems: 15, MaxHitsPerFile: 5, ContextLines: 4},
		engine.IntensityDeep:     {MaxItems: 40, MaxHitsPerFile: 10, ContextLines: 6},
	},
	"symbols": {
		engine.IntensityLite:     {MaxItems: 5},
		engine.IntensityStandard: {MaxItems: 15},
		engine.IntensityDeep:     {MaxItems: 40},
	},
	"docs": {
		engine.IntensityLite:     {MaxItems: 3, ContextLines: 4},
		engine.IntensityStandard: {MaxItems: 8, ContextLines: 8},
		engine.IntensityDeep:     {MaxItems: 20, ContextLines: 16},
	},
	"complexity": {
		engine.IntensityLite:     {MaxItems: 3},
		engine.IntensityStandard: {MaxItems: 8},
		engine.IntensityDeep:     {MaxItems: 20},
	},
	"diff": {
		engine.IntensityLite:     {MaxItems: 5, ContextLines: 3},
		engine.IntensityStandard: {MaxItems: 15, ContextLines: 6},
		engine.IntensityDeep:     {MaxItems: 40, ContextLines: 10},
	},
	"graph": {
		engine.IntensityLite:     {MaxItems: 5},
		engine.IntensityStandard: {MaxItems: 12},
		engine.IntensityDeep:     {MaxItems: 30},
	},
	"ast": {
		engine.IntensityLite:     {MaxItems: 5},
		engine.IntensityStandard: {MaxItems: 12},
		engine.IntensityDeep:     {MaxItems: 30},
	},
	"semantic": {
		engine.IntensityLite:     {MaxItems: 4},
		engine.IntensityStandard: {MaxItems: 10},
		engine.IntensityDeep:     {MaxItems: 25},
	},
	"skeleton": {
		engine.IntensityLite:     {MaxItems: 5},
		engine.IntensityStandard: {MaxItems: 10},
		engine.IntensityDeep:     {MaxItems: 20},
	},
	"config": {
		engine.IntensityLite:     {MaxItems: 8},
		engine.IntensityStandard: {MaxItems: 16},
		engine.IntensityDeep:     {MaxItems: 32},
	},
}
