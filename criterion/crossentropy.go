package criterion

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gorgonia.org/tensor"
)

// CrossEntropyLoss is categorical cross-entropy over raw logits. Output has
// shape (batch, classes); target holds one class index per example.
//
// Per example the loss is -w[t] * (x[t] - logsumexp(x)). With ReductionMean
// the batch loss divides by the sum of the weights of the contributing
// examples, so unweighted it is the plain mean. Examples whose target equals
// the configured ignore index are excluded from both numerator and
// denominator; a batch with every example ignored reduces to exactly zero.
type CrossEntropyLoss struct {
	weight      []float64
	ignoreIndex int
	hasIgnore   bool
	reduction   Reduction
}

// NewCrossEntropyLoss builds the criterion directly. weight may be nil;
// ignoreIndex may be nil to disable target exclusion.
func NewCrossEntropyLoss(weight []float64, ignoreIndex *int, reduction Reduction) (*CrossEntropyLoss, error) {
	if _, err := parseReduction(string(reduction)); err != nil {
		return nil, err
	}
	ce := &CrossEntropyLoss{
		weight:    append([]float64(nil), weight...),
		reduction: reduction,
	}
	if len(weight) == 0 {
		ce.weight = nil
	}
	if ignoreIndex != nil {
		ce.ignoreIndex = *ignoreIndex
		ce.hasIgnore = true
	}
	return ce, nil
}

func newCrossEntropyLoss(params map[string]any) (Criterion, error) {
	if err := checkKeys(params, "weight", "ignore_index", "reduction"); err != nil {
		return nil, err
	}
	weight, reduction, err := commonParams(params)
	if err != nil {
		return nil, err
	}
	var ignore *int
	if v, ok := params["ignore_index"]; ok {
		n, err := intScalar(v)
		if err != nil {
			return nil, errors.Wrap(err, "ignore_index")
		}
		ignore = &n
	}
	return NewCrossEntropyLoss(weight, ignore, reduction)
}

// Weight returns the configured per-class weights, or nil.
func (ce *CrossEntropyLoss) Weight() []float64 { return ce.weight }

// Forward computes the loss for a (batch, classes) logits tensor and a
// (batch) integer target tensor.
func (ce *CrossEntropyLoss) Forward(output, target *tensor.Dense) (*tensor.Dense, error) {
	shape := output.Shape()
	if len(shape) != 2 {
		return nil, errors.Errorf("output must have shape (batch, classes), got %v", shape)
	}
	batch, classes := shape[0], shape[1]
	tshape := target.Shape()
	if !(len(tshape) == 1 && tshape[0] == batch) && !(batch == 1 && len(tshape) == 0) {
		return nil, errors.Errorf("target shape %v does not match batch size %d", tshape, batch)
	}
	if ce.weight != nil && len(ce.weight) != classes {
		return nil, errors.Wrapf(ErrInvalidParameter,
			"weight has %d entries, output has %d classes", len(ce.weight), classes)
	}
	logits, err := floatValues(output)
	if err != nil {
		return nil, err
	}
	targets, err := intValues(target)
	if err != nil {
		return nil, err
	}

	perExample := make([]float64, batch)
	var lossSum, weightSum float64
	for i := 0; i < batch; i++ {
		t := targets[i]
		if ce.hasIgnore && t == ce.ignoreIndex {
			continue
		}
		if t < 0 || t >= classes {
			return nil, errors.Errorf("target %d out of range for %d classes", t, classes)
		}
		row := logits[i*classes : (i+1)*classes]
		l := floats.LogSumExp(row) - row[t]
		w := 1.0
		if ce.weight != nil {
			w = ce.weight[t]
		}
		perExample[i] = w * l
		lossSum += w * l
		weightSum += w
	}

	dt := resultDtype(output)
	switch ce.reduction {
	case ReductionSum:
		return scalarTensor(dt, lossSum), nil
	case ReductionNone:
		return vectorTensor(dt, perExample, tensor.Shape{batch}), nil
	default:
		if weightSum == 0 {
			// Every example ignored: zero, not NaN.
			return scalarTensor(dt, 0), nil
		}
		return scalarTensor(dt, lossSum/weightSum), nil
	}
}
