package criterion

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// floatValues extracts the tensor's backing data as float64, regardless of
// whether it is a float32 or float64 tensor. Scalar tensors yield a slice of
// length one.
func floatValues(t *tensor.Dense) ([]float64, error) {
	switch data := t.Data().(type) {
	case []float64:
		out := make([]float64, len(data))
		copy(out, data)
		return out, nil
	case []float32:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case float64:
		return []float64{data}, nil
	case float32:
		return []float64{float64(data)}, nil
	}
	return nil, errors.Errorf("unsupported tensor dtype %v, want float32 or float64", t.Dtype())
}

// intValues extracts class-index targets from an integer tensor.
func intValues(t *tensor.Dense) ([]int, error) {
	switch data := t.Data().(type) {
	case []int:
		out := make([]int, len(data))
		copy(out, data)
		return out, nil
	case []int64:
		out := make([]int, len(data))
		for i, v := range data {
			out[i] = int(v)
		}
		return out, nil
	case []int32:
		out := make([]int, len(data))
		for i, v := range data {
			out[i] = int(v)
		}
		return out, nil
	case int:
		return []int{data}, nil
	case int64:
		return []int{int(data)}, nil
	case int32:
		return []int{int(data)}, nil
	}
	return nil, errors.Errorf("unsupported target dtype %v, want an integer type", t.Dtype())
}

// scalarTensor wraps v in a scalar tensor of the given dtype.
func scalarTensor(dt tensor.Dtype, v float64) *tensor.Dense {
	if dt == tensor.Float64 {
		return tensor.New(tensor.FromScalar(v))
	}
	return tensor.New(tensor.FromScalar(float32(v)))
}

// vectorTensor wraps vs in a tensor of the given dtype and shape. A 0-d
// shape yields a scalar tensor.
func vectorTensor(dt tensor.Dtype, vs []float64, shape tensor.Shape) *tensor.Dense {
	if len(shape) == 0 {
		return scalarTensor(dt, vs[0])
	}
	dims := make([]int, len(shape))
	copy(dims, shape)
	if dt == tensor.Float64 {
		backing := make([]float64, len(vs))
		copy(backing, vs)
		return tensor.New(tensor.WithShape(dims...), tensor.WithBacking(backing))
	}
	backing := make([]float32, len(vs))
	for i, v := range vs {
		backing[i] = float32(v)
	}
	return tensor.New(tensor.WithShape(dims...), tensor.WithBacking(backing))
}

// Scalar reads a reduced loss back as float64. It fails if t holds more than
// one value.
func Scalar(t *tensor.Dense) (float64, error) {
	vs, err := floatValues(t)
	if err != nil {
		return 0, err
	}
	if len(vs) != 1 {
		return 0, errors.Errorf("tensor has %d values, want a scalar", len(vs))
	}
	return vs[0], nil
}

// resultDtype picks the dtype losses are returned in. Accumulation happens in
// float64 either way; a float32 output keeps float32 results so values match
// what a float32 pipeline produces.
func resultDtype(output *tensor.Dense) tensor.Dtype {
	if output.Dtype() == tensor.Float64 {
		return tensor.Float64
	}
	return tensor.Float32
}
