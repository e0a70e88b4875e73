package criterion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func TestBuildCrossEntropyLoss(t *testing.T) {
	crit, err := Build(Config{
		"name":         "CrossEntropyLoss",
		"weight":       []float64{1.0, 1.0},
		"ignore_index": -1,
		"reduction":    "mean",
	})
	require.NoError(t, err)
	require.IsType(t, &CrossEntropyLoss{}, crit)
	assert.Equal(t, []float64{1.0, 1.0}, crit.Weight())
}

func TestBuildBCEWithLogitsLoss(t *testing.T) {
	crit, err := Build(Config{
		"name":      "BCEWithLogitsLoss",
		"weight":    []float64{1.0, 1.0},
		"reduction": "mean",
	})
	require.NoError(t, err)
	require.IsType(t, &BCEWithLogitsLoss{}, crit)
	assert.Equal(t, []float64{1.0, 1.0}, crit.Weight())
}

func TestBuildDecodesUntypedSequences(t *testing.T) {
	// YAML/JSON decoding hands sequences over as []any.
	crit, err := Build(Config{
		"name":   "CrossEntropyLoss",
		"weight": []any{0.25, 0.75},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.75}, crit.Weight())
}

func TestBuildUnknownName(t *testing.T) {
	_, err := Build(Config{"name": "NotARealLoss"})
	require.ErrorIs(t, err, ErrUnknownCriterion)
}

func TestBuildMissingName(t *testing.T) {
	_, err := Build(Config{"weight": []float64{1.0}})
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBuildNameNotAString(t *testing.T) {
	_, err := Build(Config{"name": 7})
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBuildRejectsUnknownParameter(t *testing.T) {
	_, err := Build(Config{
		"name":   "CrossEntropyLoss",
		"margin": 0.5,
	})
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBuildRejectsBadReduction(t *testing.T) {
	_, err := Build(Config{
		"name":      "BCEWithLogitsLoss",
		"reduction": "average",
	})
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBuildRejectsEmptyWeight(t *testing.T) {
	_, err := Build(Config{
		"name":   "MSELoss",
		"weight": []float64{},
	})
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBuildRejectsFractionalIgnoreIndex(t *testing.T) {
	_, err := Build(Config{
		"name":         "CrossEntropyLoss",
		"ignore_index": 1.5,
	})
	require.ErrorIs(t, err, ErrInvalidParameter)
}

// zeroLoss is a registry extension stand-in.
type zeroLoss struct{}

func (zeroLoss) Weight() []float64 { return nil }

func (zeroLoss) Forward(output, target *tensor.Dense) (*tensor.Dense, error) {
	return scalarTensor(resultDtype(output), 0), nil
}

func TestRegisterExtendsFactory(t *testing.T) {
	Register("ZeroLoss", func(params map[string]any) (Criterion, error) {
		if err := checkKeys(params); err != nil {
			return nil, err
		}
		return zeroLoss{}, nil
	})

	crit, err := Build(Config{"name": "ZeroLoss"})
	require.NoError(t, err)

	out := tensor.New(tensor.WithShape(2), tensor.WithBacking([]float64{1.0, 2.0}))
	loss, err := crit.Forward(out, out)
	require.NoError(t, err)
	v, err := Scalar(loss)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
}
