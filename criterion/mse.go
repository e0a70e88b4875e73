package criterion

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// MSELoss is mean squared error: w * (output - target)^2 per element.
type MSELoss struct {
	weight    []float64
	reduction Reduction
}

// NewMSELoss builds the criterion directly. weight follows the same
// last-dimension broadcast rule as BCEWithLogitsLoss.
func NewMSELoss(weight []float64, reduction Reduction) (*MSELoss, error) {
	if _, err := parseReduction(string(reduction)); err != nil {
		return nil, err
	}
	mse := &MSELoss{
		weight:    append([]float64(nil), weight...),
		reduction: reduction,
	}
	if len(weight) == 0 {
		mse.weight = nil
	}
	return mse, nil
}

func newMSELoss(params map[string]any) (Criterion, error) {
	if err := checkKeys(params, "weight", "reduction"); err != nil {
		return nil, err
	}
	weight, reduction, err := commonParams(params)
	if err != nil {
		return nil, err
	}
	return NewMSELoss(weight, reduction)
}

// Weight returns the configured per-element weights, or nil.
func (mse *MSELoss) Weight() []float64 { return mse.weight }

// Forward computes the loss for same-shaped prediction and target tensors.
func (mse *MSELoss) Forward(output, target *tensor.Dense) (*tensor.Dense, error) {
	shape := output.Shape()
	if !shape.Eq(target.Shape()) {
		return nil, errors.Errorf("output shape %v and target shape %v differ", shape, target.Shape())
	}
	// A 0-d tensor is a single element.
	last := 1
	if len(shape) > 0 {
		last = shape[len(shape)-1]
	}
	if mse.weight != nil && len(mse.weight) != last {
		return nil, errors.Wrapf(ErrInvalidParameter,
			"weight has %d entries, output's last dimension is %d", len(mse.weight), last)
	}
	preds, err := floatValues(output)
	if err != nil {
		return nil, err
	}
	targets, err := floatValues(target)
	if err != nil {
		return nil, err
	}

	perElement := make([]float64, len(preds))
	var sum float64
	for i, x := range preds {
		d := x - targets[i]
		l := d * d
		if mse.weight != nil {
			l *= mse.weight[i%last]
		}
		perElement[i] = l
		sum += l
	}

	dt := resultDtype(output)
	switch mse.reduction {
	case ReductionSum:
		return scalarTensor(dt, sum), nil
	case ReductionNone:
		return vectorTensor(dt, perElement, shape), nil
	default:
		return scalarTensor(dt, sum/float64(len(perElement))), nil
	}
}
