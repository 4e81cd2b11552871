package estimator

import (
	"fmt"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// tiktokenEstimator is an Estimator backed by pkoukk/tiktoken-go. It trades
// the canonical estimator's speed for an exact BPE token count, useful when a
// caller needs parity with the real downstream model's tokenizer rather than
// the engine's ceil(bytes/4) contract.
type tiktokenEstimator struct {
	name string
	enc  *tiktoken.Tiktoken
}

// NewTiktokenEstimator constructs an Estimator for the given BPE encoding
// name ("cl100k_base" or "o200k_base"). The encoding is loaded once at
// construction; Estimate is safe for concurrent use afterwards.
func NewTiktokenEstimator(encodingName string) (Estimator, error) {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("initialising tiktoken encoding %q: %w", encodingName, err)
	}
	return &tiktokenEstimator{name: encodingName, enc: enc}, nil
}

// Estimate returns the exact number of BPE tokens in text.
func (t *tiktokenEstimator) Estimate(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

// New resolves an Estimator by name. An empty name selects the canonical
// char estimator.
func New(name string) (Estimator, error) {
	switch name {
	case "", NameChar:
		return NewCharEstimator(), nil
	case NameCL100K, NameO200K:
		return NewTiktokenEstimator(name)
	default:
		return nil, fmt.Errorf("unknown estimator %q (supported: char, cl100k_base, o200k_base)", name)
	}
}
