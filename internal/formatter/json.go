package formatter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/contextslicer/contextslicer/internal/engine"
)

// JSONFormatter renders a ContextResult as the bit-exact JSON shape.
// Undefined fields are omitted rather than emitted as null.
type JSONFormatter struct{}

type jsonSummary struct {
	TotalFiles  int     `json:"totalFiles"`
	TotalTokens int     `json:"totalTokens"`
	Budget      int     `json:"budget"`
	BudgetUsage float64 `json:"budgetUsage"`
}

type jsonFile struct {
	Path      string  `json:"path"`
	Tokens    int     `json:"tokens"`
	Mode      string  `json:"mode"`
	Relevance float64 `json:"relevance,omitempty"`
	Content   string  `json:"content,omitempty"`
	Codemap   string  `json:"codemap,omitempty"`
}

type jsonDocument struct {
	Version   string      `json:"version"`
	Generated string      `json:"generated"`
	Task      string      `json:"task,omitempty"`
	Summary   jsonSummary `json:"summary"`
	Prompt    string      `json:"prompt,omitempty"`
	Tree      string      `json:"tree,omitempty"`
	Files     []jsonFile  `json:"files"`
	Plan      string      `json:"plan,omitempty"`
	ChatID    string      `json:"chatId,omitempty"`
}

func (f *JSONFormatter) Format(result engine.ContextResult) (string, error) {
	usage := 0.0
	if result.Budget > 0 {
		usage = float64(result.TotalTokens*1000/result.Budget) / 10
	}

	doc := jsonDocument{
		Version:   "1.0",
		Generated: time.Now().UTC().Format(time.RFC3339),
		Task:      result.Task,
		Summary: jsonSummary{
			TotalFiles:  len(result.Files),
			TotalTokens: result.TotalTokens,
			Budget:      result.Budget,
			BudgetUsage: usage,
		},
		Prompt: result.Prompt,
		Tree:   result.Tree,
		Plan:   result.Plan,
		ChatID: result.ChatID,
	}

	for _, file := range result.Files {
		doc.Files = append(doc.Files, jsonFile{
			Path:      file.Path,
			Tokens:    file.Tokens,
			Mode:      string(file.Mode),
			Relevance: file.Relevance,
			Content:   file.Content,
			Codemap:   file.Codemap,
		})
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling context result: %w", err)
	}
	return string(out), nil
}
