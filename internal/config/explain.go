package config

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// TraceStep records one evaluation step during file rule tracing.
type TraceStep struct {
	// StepNum is the 1-based step number in the evaluation sequence.
	StepNum int

	// Rule describes the rule being evaluated, e.g. "Default ignore patterns".
	Rule string

	// Matched indicates whether the rule matched the file path.
	Matched bool

	// Outcome describes the result of this step, e.g. "continue", "EXCLUDED",
	// "INCLUDED".
	Outcome string
}

// ExplainResult holds the full explanation for a single file path showing
// how a profile would treat the file during slicing.
type ExplainResult struct {
	// FilePath is the file path being explained.
	FilePath string

	// ProfileName is the name of the profile being used for display.
	ProfileName string

	// Extends is the parent profile name, or empty if there is no parent.
	Extends string

	// Included indicates whether the file survives the ignore/include filters.
	Included bool

	// ExcludedBy names the rule that caused exclusion when Included is false.
	ExcludedBy string

	// StructureLanguage is the tree-sitter language name used by the ast,
	// skeleton, and symbols strategies for this extension, or "" if the file
	// has no structural extraction support and would only ever surface as a
	// full or snippet representation.
	StructureLanguage string

	// Trace is the ordered list of evaluation steps.
	Trace []TraceStep
}

// ExplainFile evaluates how profile p would treat filePath during the
// discovery stage of slicing and returns a full ExplainResult describing the
// evaluation. profileName is used for display only; it does not affect the
// evaluation logic.
//
// The function simulates the discovery pipeline steps in order:
//  1. Default ignore patterns
//  2. Profile ignore patterns
//  3. .gitignore rules (not simulated -- requires disk access)
//  4. Include filter
func ExplainFile(filePath, profileName string, p *Profile) ExplainResult {
	result := ExplainResult{
		FilePath:    filePath,
		ProfileName: profileName,
	}

	if p.Extends != nil && *p.Extends != "" {
		result.Extends = *p.Extends
	}

	stepNum := 0
	nextStep := func() int {
		stepNum++
		return stepNum
	}

	// ── Step 1: Default ignore patterns ────────────────────────────────────
	defaults := DefaultProfile()
	{
		step := TraceStep{
			StepNum: nextStep(),
			Rule:    "Default ignore patterns",
		}
		matchedPattern := ""
		for _, pattern := range defaults.Ignore {
			if matchesGlob(pattern, filePath) {
				matchedPattern = pattern
				break
			}
		}
		if matchedPattern != "" {
			step.Matched = true
			step.Outcome = "EXCLUDED"
			result.Trace = append(result.Trace, step)
			result.Included = false
			result.ExcludedBy = fmt.Sprintf("default ignore pattern %q", matchedPattern)
			return result
		}
		step.Matched = false
		step.Outcome = "no match -> continue"
		result.Trace = append(result.Trace, step)
	}

	// ── Step 2: Profile ignore patterns ────────────────────────────────────
	{
		step := TraceStep{
			StepNum: nextStep(),
			Rule:    "Profile ignore patterns",
		}
		matchedPattern := ""
		for _, pattern := range p.Ignore {
			if matchesGlob(pattern, filePath) {
				matchedPattern = pattern
				break
			}
		}
		if matchedPattern != "" {
			step.Matched = true
			step.Outcome = "EXCLUDED"
			result.Trace = append(result.Trace, step)
			result.Included = false
			result.ExcludedBy = fmt.Sprintf("profile ignore pattern %q", matchedPattern)
			return result
		}
		step.Matched = false
		step.Outcome = "no match -> continue"
		result.Trace = append(result.Trace, step)
	}

	// ── Step 3: .gitignore rules ────────────────────────────────────────────
	{
		result.Trace = append(result.Trace, TraceStep{
			StepNum: nextStep(),
			Rule:    ".gitignore rules",
			Matched: false,
			Outcome: "not simulated -> continue",
		})
	}

	// ── Step 4: Include filter ──────────────────────────────────────────────
	{
		step := TraceStep{
			StepNum: nextStep(),
			Rule:    "Include filter",
		}
		if len(p.Include) > 0 {
			if !matchesAny(filePath, p.Include) {
				step.Matched = true
				step.Outcome = "EXCLUDED"
				result.Trace = append(result.Trace, step)
				result.Included = false
				result.ExcludedBy = "include filter (not in include list)"
				return result
			}
			step.Matched = false
			step.Outcome = "include match -> continue"
		} else {
			step.Matched = false
			step.Outcome = "not active -> continue"
		}
		result.Trace = append(result.Trace, step)
	}

	result.Included = true
	result.StructureLanguage = structureLanguage(filePath)

	return result
}

// structureLanguage returns the tree-sitter language name the ast, skeleton,
// and symbols strategies use for filePath's extension, or "" if the
// extension has no structural extraction support and the markdown extractor
// also does not apply.
func structureLanguage(filePath string) string {
	ext := filepath.Ext(filePath)
	languages := map[string]string{
		".go":  "Go",
		".ts":  "TypeScript",
		".tsx": "TypeScript (TSX)",
		".js":  "JavaScript",
		".jsx": "JavaScript (JSX)",
		".py":  "Python",
		".md":  "Markdown",
	}
	return languages[ext]
}

// matchesAny reports whether path matches any of the given glob patterns.
// Pattern matching errors are silently ignored.
func matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchesGlob(pattern, path) {
			return true
		}
	}
	return false
}

// matchesGlob reports whether filePath matches the given doublestar glob
// pattern. Match errors are silently ignored and treated as non-matches.
func matchesGlob(pattern, filePath string) bool {
	matched, err := doublestar.Match(pattern, filePath)
	if err != nil {
		return false
	}
	return matched
}
