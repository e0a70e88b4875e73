// Package criterion provides loss functions ("criteria") for training and
// evaluating models, and a factory that builds them from a configuration
// mapping.
//
// A Criterion is immutable once built: Forward is a pure function of the
// criterion's parameters and its inputs, so a single instance is safe to
// share across goroutines.
package criterion

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Reduction controls how per-element losses collapse into the returned tensor.
type Reduction string

const (
	// ReductionMean averages per-element losses. Cross-entropy divides by
	// the sum of the class weights of the contributing examples, not by
	// their count.
	ReductionMean Reduction = "mean"
	// ReductionSum adds per-element losses into a scalar.
	ReductionSum Reduction = "sum"
	// ReductionNone returns the unaggregated per-element losses.
	ReductionNone Reduction = "none"
)

var (
	// ErrUnknownCriterion is returned by Build when the configured name has
	// no registered constructor.
	ErrUnknownCriterion = errors.New("unknown criterion")
	// ErrInvalidParameter is returned when a configuration parameter is
	// rejected by the target criterion's constructor.
	ErrInvalidParameter = errors.New("invalid criterion parameter")
)

// Criterion computes a loss given model output and target tensors.
type Criterion interface {
	// Forward returns the loss. With ReductionMean or ReductionSum the
	// result is a scalar tensor; with ReductionNone it keeps one entry per
	// element (per example, for cross-entropy).
	Forward(output, target *tensor.Dense) (*tensor.Dense, error)
	// Weight returns the configured weight vector, or nil when unset. The
	// returned slice must not be modified.
	Weight() []float64
}

func parseReduction(s string) (Reduction, error) {
	switch Reduction(s) {
	case ReductionMean, ReductionSum, ReductionNone:
		return Reduction(s), nil
	}
	return "", errors.Wrapf(ErrInvalidParameter, "reduction must be one of mean, sum, none; got %q", s)
}
