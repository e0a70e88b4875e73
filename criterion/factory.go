package criterion

import (
	"github.com/pkg/errors"
)

// Config is the configuration mapping a criterion is built from. The "name"
// key selects the variant; every other key is forwarded to that variant's
// constructor as a named parameter.
type Config map[string]any

// Constructor builds a criterion from the parameters left after "name" is
// stripped from the configuration.
type Constructor func(params map[string]any) (Criterion, error)

var registry = map[string]Constructor{}

// Register adds a name to the factory. Later registrations under the same
// name win, which lets callers override the built-in variants.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

func init() {
	Register("CrossEntropyLoss", newCrossEntropyLoss)
	Register("BCEWithLogitsLoss", newBCEWithLogitsLoss)
	Register("MSELoss", newMSELoss)
}

// Build constructs the criterion named by cfg["name"], forwarding the
// remaining keys to its constructor. It fails with ErrUnknownCriterion for an
// unregistered name and with ErrInvalidParameter for a parameter the variant
// rejects. A criterion is either fully constructed or not returned at all.
func Build(cfg Config) (Criterion, error) {
	raw, ok := cfg["name"]
	if !ok {
		return nil, errors.Wrap(ErrInvalidParameter, `config has no "name" key`)
	}
	name, ok := raw.(string)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidParameter, `"name" must be a string, got %T`, raw)
	}
	ctor, ok := registry[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCriterion, "%q", name)
	}
	params := make(map[string]any, len(cfg)-1)
	for k, v := range cfg {
		if k != "name" {
			params[k] = v
		}
	}
	crit, err := ctor(params)
	if err != nil {
		return nil, errors.Wrapf(err, "building criterion %q", name)
	}
	return crit, nil
}

// checkKeys rejects any parameter key the variant does not understand.
func checkKeys(params map[string]any, allowed ...string) error {
	for k := range params {
		known := false
		for _, a := range allowed {
			if k == a {
				known = true
				break
			}
		}
		if !known {
			return errors.Wrapf(ErrInvalidParameter, "unknown parameter %q", k)
		}
	}
	return nil
}

// floatSeq coerces a configuration value into a float64 slice. Config
// decoders hand sequences over as []any, []float64 or []int depending on the
// source format.
func floatSeq(v any) ([]float64, error) {
	switch s := v.(type) {
	case []float64:
		out := make([]float64, len(s))
		copy(out, s)
		return out, nil
	case []float32:
		out := make([]float64, len(s))
		for i, f := range s {
			out[i] = float64(f)
		}
		return out, nil
	case []int:
		out := make([]float64, len(s))
		for i, n := range s {
			out[i] = float64(n)
		}
		return out, nil
	case []any:
		out := make([]float64, len(s))
		for i, e := range s {
			f, err := floatScalar(e)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrInvalidParameter, "expected a sequence of numbers, got %T", v)
}

func floatScalar(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, errors.Wrapf(ErrInvalidParameter, "expected a number, got %T", v)
}

func intScalar(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case int32:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, errors.Wrapf(ErrInvalidParameter, "expected an integer, got %v", n)
		}
		return int(n), nil
	}
	return 0, errors.Wrapf(ErrInvalidParameter, "expected an integer, got %T", v)
}

func stringScalar(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.Wrapf(ErrInvalidParameter, "expected a string, got %T", v)
	}
	return s, nil
}

// commonParams decodes the parameters shared by every built-in variant.
func commonParams(params map[string]any) (weight []float64, reduction Reduction, err error) {
	reduction = ReductionMean
	if v, ok := params["weight"]; ok {
		weight, err = floatSeq(v)
		if err != nil {
			return nil, "", errors.Wrap(err, "weight")
		}
		if len(weight) == 0 {
			return nil, "", errors.Wrap(ErrInvalidParameter, "weight must not be empty")
		}
	}
	if v, ok := params["reduction"]; ok {
		s, serr := stringScalar(v)
		if serr != nil {
			return nil, "", errors.Wrap(serr, "reduction")
		}
		reduction, err = parseReduction(s)
		if err != nil {
			return nil, "", err
		}
	}
	return weight, reduction, nil
}
