package criterion

import (
	"math"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// BCEWithLogitsLoss is binary cross-entropy on raw logits, folding the
// sigmoid into the loss with the stable identity
//
//	max(x, 0) - x*y + log(1 + exp(-|x|))
//
// so large-magnitude logits neither overflow nor lose precision. Output and
// target share a shape; target holds probabilities in [0, 1].
type BCEWithLogitsLoss struct {
	weight    []float64
	reduction Reduction
}

// NewBCEWithLogitsLoss builds the criterion directly. weight may be nil;
// when set, its length must match the output's last dimension and it is
// broadcast across the leading dimensions.
func NewBCEWithLogitsLoss(weight []float64, reduction Reduction) (*BCEWithLogitsLoss, error) {
	if _, err := parseReduction(string(reduction)); err != nil {
		return nil, err
	}
	bce := &BCEWithLogitsLoss{
		weight:    append([]float64(nil), weight...),
		reduction: reduction,
	}
	if len(weight) == 0 {
		bce.weight = nil
	}
	return bce, nil
}

func newBCEWithLogitsLoss(params map[string]any) (Criterion, error) {
	if err := checkKeys(params, "weight", "reduction"); err != nil {
		return nil, err
	}
	weight, reduction, err := commonParams(params)
	if err != nil {
		return nil, err
	}
	return NewBCEWithLogitsLoss(weight, reduction)
}

// Weight returns the configured per-element weights, or nil.
func (bce *BCEWithLogitsLoss) Weight() []float64 { return bce.weight }

// Forward computes the loss for same-shaped logit and target tensors.
func (bce *BCEWithLogitsLoss) Forward(output, target *tensor.Dense) (*tensor.Dense, error) {
	shape := output.Shape()
	if !shape.Eq(target.Shape()) {
		return nil, errors.Errorf("output shape %v and target shape %v differ", shape, target.Shape())
	}
	// A 0-d tensor is a single element.
	last := 1
	if len(shape) > 0 {
		last = shape[len(shape)-1]
	}
	if bce.weight != nil && len(bce.weight) != last {
		return nil, errors.Wrapf(ErrInvalidParameter,
			"weight has %d entries, output's last dimension is %d", len(bce.weight), last)
	}
	logits, err := floatValues(output)
	if err != nil {
		return nil, err
	}
	targets, err := floatValues(target)
	if err != nil {
		return nil, err
	}

	perElement := make([]float64, len(logits))
	var sum float64
	for i, x := range logits {
		y := targets[i]
		l := math.Max(x, 0) - x*y + math.Log1p(math.Exp(-math.Abs(x)))
		if bce.weight != nil {
			l *= bce.weight[i%last]
		}
		perElement[i] = l
		sum += l
	}

	dt := resultDtype(output)
	switch bce.reduction {
	case ReductionSum:
		return scalarTensor(dt, sum), nil
	case ReductionNone:
		return vectorTensor(dt, perElement, shape), nil
	default:
		return scalarTensor(dt, sum/float64(len(perElement))), nil
	}
}
