package engine

import "fmt"

// ErrorKind enumerates the engine's error taxonomy. InvalidRequest,
// InspectorUnavailable, and InternalInvariant are returned to the caller;
// StrategyFailed is always folded into SlicePlan.Warnings; Cancelled drops
// any partial plan and is returned to the caller as well.
type ErrorKind int

const (
	// InvalidRequest covers malformed budget, unknown intensity, unknown
	// strategy name, or conflicting include/exclude globs.
	InvalidRequest ErrorKind = iota

	// InspectorUnavailable means the Repository Inspector collaborator
	// could not be reached.
	InspectorUnavailable

	// StrategyFailed is a non-fatal, single-strategy failure. Callers
	// should never see this kind directly — the planner recovers it into
	// a warning.
	StrategyFailed

	// Cancelled is cooperative cancellation via context.Context.
	Cancelled

	// InternalInvariant means an internal invariant was violated. Fatal.
	InternalInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidRequest:
		return "InvalidRequest"
	case InspectorUnavailable:
		return "InspectorUnavailable"
	case StrategyFailed:
		return "StrategyFailed"
	case Cancelled:
		return "Cancelled"
	case InternalInvariant:
		return "InternalInvariant"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// SliceError is the engine's structured error type. It carries a Kind so
// callers can branch on the error taxonomy and supports errors.Is/As via
// Unwrap.
type SliceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *SliceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SliceError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest builds an InvalidRequest SliceError.
func NewInvalidRequest(msg string, err error) *SliceError {
	return &SliceError{Kind: InvalidRequest, Message: msg, Err: err}
}

// NewInspectorUnavailable builds an InspectorUnavailable SliceError.
func NewInspectorUnavailable(msg string, err error) *SliceError {
	return &SliceError{Kind: InspectorUnavailable, Message: msg, Err: err}
}

// NewInternalInvariant builds an InternalInvariant SliceError. Construction
// of one of these should be treated as a bug report.
func NewInternalInvariant(msg string) *SliceError {
	return &SliceError{Kind: InternalInvariant, Message: msg}
}

// NewCancelled wraps ctx.Err() as a Cancelled SliceError.
func NewCancelled(err error) *SliceError {
	return &SliceError{Kind: Cancelled, Message: "plan cancelled", Err: err}
}

// IsCancelled reports whether err is a SliceError of kind Cancelled.
func IsCancelled(err error) bool {
	se, ok := err.(*SliceError)
	return ok && se.Kind == Cancelled
}
