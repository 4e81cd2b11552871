package strategies_test

import (
	"context"
	"testing"

	"github.com/contextslicer/contextslicer/internal/estimator"
	"github.com/contextslicer/contextslicer/internal/inspector"
	"github.com/contextslicer/contextslicer/internal/strategies"
)

func TestDocs_AlwaysIncludesCoreDocFiles(t *testing.T) {
	d := strategies.NewDocs()
	insp := &fakeInspector{files: map[string]string{
		"README.md":       "# widget\n",
		"internal/foo.go": "package foo\n",
	}}
	sc := &strategies.StrategyContext{
		Inspector: insp,
		Estimator: estimator.NewCharEstimator(),
		Knobs:     strategies.IntensityKnobs{MaxItems: 10},
	}
	result := d.Execute(context.Background(), sc)
	if len(result.Candidates) != 1 {
		t.Fatalf("expected exactly one candidate (README.md), got %d: %+v", len(result.Candidates), result.Candidates)
	}
	if result.Candidates[0].Path != "README.md" {
		t.Errorf("Path = %q, want README.md", result.Candidates[0].Path)
	}
}

func TestDocs_IncludesKeywordMatchedDocs(t *testing.T) {
	d := strategies.NewDocs()
	insp := &fakeInspector{
		files: map[string]string{"docs/guide.md": "how to cache things\n"},
		searchResults: map[string]inspector.SearchResult{
			"cache": {Pattern: "cache", Matches: []inspector.Match{{Path: "docs/guide.md"}}},
		},
	}
	sc := &strategies.StrategyContext{
		Keywords:  []string{"cache"},
		Inspector: insp,
		Estimator: estimator.NewCharEstimator(),
		Knobs:     strategies.IntensityKnobs{MaxItems: 10, MaxHitsPerFile: 5},
	}
	result := d.Execute(context.Background(), sc)
	found := false
	for _, c := range result.Candidates {
		if c.Path == "docs/guide.md" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected docs/guide.md to be included via keyword match, got %+v", result.Candidates)
	}
}

func TestDocs_DeduplicatesCoreAndKeywordMatches(t *testing.T) {
	d := strategies.NewDocs()
	insp := &fakeInspector{
		files: map[string]string{"README.md": "cache docs\n"},
		searchResults: map[string]inspector.SearchResult{
			"cache": {Pattern: "cache", Matches: []inspector.Match{{Path: "README.md"}}},
		},
	}
	sc := &strategies.StrategyContext{
		Keywords:  []string{"cache"},
		Inspector: insp,
		Estimator: estimator.NewCharEstimator(),
		Knobs:     strategies.IntensityKnobs{MaxItems: 10, MaxHitsPerFile: 5},
	}
	result := d.Execute(context.Background(), sc)
	count := 0
	for _, c := range result.Candidates {
		if c.Path == "README.md" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected README.md to appear exactly once, got %d", count)
	}
}
