package strategies

import (
	"context"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/inspector"
)

// Inventory renders a directory tree overview as a sidecar; it never emits
// candidates.
type Inventory struct{}

func NewInventory() *Inventory { return &Inventory{} }

func (i *Inventory) Name() string              { return "inventory" }
func (i *Inventory) DefaultWeight() float64    { return 0.3 }
func (i *Inventory) DefaultBudgetCap() float64 { return 0 }

func (i *Inventory) IsAvailable(ctx context.Context, sc *StrategyContext) bool { return true }

func (i *Inventory) Execute(ctx context.Context, sc *StrategyContext) Result {
	var result Result

	tree, err := sc.Inspector.Tree(ctx, inspector.TreeOptions{MaxDepth: 4})
	if err != nil {
		result.Warnings = append(result.Warnings, warnf(i.Name(), "rendering tree: %v", err))
		return result
	}
	if tree == "" {
		return result
	}

	result.Sidecar = &engine.StrategySidecar{
		Name:    "tree",
		Content: tree,
		Tokens:  sc.Estimate(tree),
	}
	return result
}

var _ Strategy = (*Inventory)(nil)
