package strategies_test

import (
	"context"
	"testing"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/estimator"
	"github.com/contextslicer/contextslicer/internal/strategies"
)

func TestSymbols_IsAvailableOnlyWithMatchedFiles(t *testing.T) {
	s := strategies.NewSymbols()
	empty := &strategies.StrategyContext{State: strategies.NewPlanState()}
	if s.IsAvailable(context.Background(), empty) {
		t.Error("expected Symbols to be unavailable with no matched files")
	}
	state := strategies.NewPlanState()
	state.Append("explicit", "main.go")
	sc := &strategies.StrategyContext{State: state}
	if !s.IsAvailable(context.Background(), sc) {
		t.Error("expected Symbols to be available once files are matched")
	}
}

func TestSymbols_EmitsCodemapsForMatchedFiles(t *testing.T) {
	s := strategies.NewSymbols()
	state := strategies.NewPlanState()
	state.Append("explicit", "main.go")
	insp := &fakeInspector{structures: map[string]engine.CodeMap{
		"main.go": {Path: "main.go", Language: "go"},
	}}
	sc := &strategies.StrategyContext{
		State:     state,
		Inspector: insp,
		Estimator: estimator.NewCharEstimator(),
		Knobs:     strategies.IntensityKnobs{MaxItems: 10},
	}
	result := s.Execute(context.Background(), sc)
	if len(result.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(result.Candidates))
	}
	if result.Candidates[0].Representation != engine.RepresentationCodemap {
		t.Errorf("Representation = %q, want codemap", result.Candidates[0].Representation)
	}
}

func TestSymbols_WarnsForFilesWithoutCodemapExtractor(t *testing.T) {
	s := strategies.NewSymbols()
	state := strategies.NewPlanState()
	state.Append("explicit", "image.png")
	sc := &strategies.StrategyContext{
		State:     state,
		Inspector: &fakeInspector{},
		Estimator: estimator.NewCharEstimator(),
		Knobs:     strategies.IntensityKnobs{MaxItems: 10},
	}
	result := s.Execute(context.Background(), sc)
	if len(result.Warnings) == 0 {
		t.Error("expected a warning for a file with no codemap extractor")
	}
}
