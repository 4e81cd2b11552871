package assembler_test

import (
	"testing"

	"github.com/contextslicer/contextslicer/internal/assembler"
	"github.com/contextslicer/contextslicer/internal/engine"
)

func TestAssemble_PopulatesContentHash(t *testing.T) {
	plan := engine.SlicePlan{
		Candidates: []engine.SliceCandidate{
			{
				ID:             "explicit:main.go",
				Path:           "main.go",
				Strategy:       "explicit",
				Representation: engine.RepresentationFull,
				Tokens:         10,
				Relevance:      1.0,
				Content:        "package main\n",
				Alternates: []engine.Alternate{
					{Representation: engine.RepresentationReference, Tokens: 3, Content: "main.go"},
				},
			},
		},
	}

	result := assembler.Assemble(plan, 1000)
	if len(result.Result.Files) != 1 {
		t.Fatalf("expected one assembled file, got %d", len(result.Result.Files))
	}
	if result.Result.Files[0].ContentHash == 0 {
		t.Error("expected a nonzero content hash for a file with content")
	}
}

func TestAssemble_StrategyTotalsAggregateBySelectedStrategy(t *testing.T) {
	plan := engine.SlicePlan{
		Candidates: []engine.SliceCandidate{
			{Path: "a.go", Strategy: "explicit", Representation: engine.RepresentationFull, Tokens: 10, Relevance: 0.9,
				Alternates: []engine.Alternate{{Representation: engine.RepresentationReference, Tokens: 2, Content: "a.go"}}},
			{Path: "b.go", Strategy: "explicit", Representation: engine.RepresentationFull, Tokens: 10, Relevance: 0.8,
				Alternates: []engine.Alternate{{Representation: engine.RepresentationReference, Tokens: 2, Content: "b.go"}}},
		},
	}

	result := assembler.Assemble(plan, 1000)
	stats, ok := result.Result.StrategyTotals["explicit"]
	if !ok {
		t.Fatal("expected a strategyTotals entry for \"explicit\"")
	}
	if stats.Count != 2 {
		t.Errorf("Count = %d, want 2", stats.Count)
	}
	if stats.Tokens != 20 {
		t.Errorf("Tokens = %d, want 20", stats.Tokens)
	}
}

func TestAssemble_EmptyContentYieldsZeroHash(t *testing.T) {
	plan := engine.SlicePlan{
		Candidates: []engine.SliceCandidate{
			{Path: "huge.go", Strategy: "explicit", Representation: engine.RepresentationFull, Tokens: 100000, Relevance: 0.5,
				Content: "irrelevant because it won't fit",
				Alternates: []engine.Alternate{
					{Representation: engine.RepresentationReference, Tokens: 2, Content: ""},
				}},
		},
	}
	result := assembler.Assemble(plan, 10)
	if len(result.Result.Files) != 1 {
		t.Fatalf("expected the reference fallback to be admitted, got %d files", len(result.Result.Files))
	}
	if result.Result.Files[0].ContentHash != 0 {
		t.Error("expected a zero hash when the admitted representation has no content")
	}
}

func TestAssemble_TreeOmittedWhenSidecarTooLargeOrUnrequested(t *testing.T) {
	plan := engine.SlicePlan{
		Request:     engine.SliceRequest{WantTreeSidecar: false},
		TreeSidecar: &engine.StrategySidecar{Name: "tree", Content: "dir tree", Tokens: 5},
	}
	result := assembler.Assemble(plan, 1000)
	if result.Result.Tree != "" {
		t.Error("expected no tree content when WantTreeSidecar is false")
	}
}

func TestAssemble_TreeIncludedWhenRequestedAndSmall(t *testing.T) {
	plan := engine.SlicePlan{
		Request:     engine.SliceRequest{WantTreeSidecar: true},
		TreeSidecar: &engine.StrategySidecar{Name: "tree", Content: "dir tree", Tokens: 5},
	}
	result := assembler.Assemble(plan, 1000)
	if result.Result.Tree != "dir tree" {
		t.Errorf("Tree = %q, want %q", result.Result.Tree, "dir tree")
	}
}

func TestAssemble_TaskCarriedThroughFromRequest(t *testing.T) {
	plan := engine.SlicePlan{
		Request: engine.SliceRequest{Task: "explain the auth flow"},
	}
	result := assembler.Assemble(plan, 1000)
	if result.Result.Task != "explain the auth flow" {
		t.Errorf("Task = %q, want the request's task", result.Result.Task)
	}
}
