// Package estimator provides token-counting implementations for the context
// slicer engine. The canonical estimator is ceil(len_bytes(text)/4); it is
// cheap, total, and monotonic, which is all the planner and selector require
// to enforce a budget. An exact BPE-backed implementation is also available
// for callers who want accuracy over speed.
package estimator

// Estimator maps a byte string to a non-negative integer token estimate. All
// implementations must be total (never fail, defined on empty input -> 0),
// monotonic (a prefix never estimates higher than the full string), and
// idempotent for the same input within one process.
type Estimator interface {
	Estimate(text string) int
}

// Name identifies which Estimator implementation produced a count, recorded
// in plan metadata for debuggability.
const (
	NameChar    = "char"
	NameCL100K  = "cl100k_base"
	NameO200K   = "o200k_base"
)

// charEstimator is the canonical estimator: ceil(len(text)/4).
type charEstimator struct{}

// NewCharEstimator returns the canonical character-count Estimator.
func NewCharEstimator() Estimator {
	return charEstimator{}
}

// Estimate returns ceil(len(text)/4). Returns 0 for empty text.
func (charEstimator) Estimate(text string) int {
	n := len(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}
