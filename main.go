// Command criteria builds the loss criterion named by a training config file
// and evaluates it on a batch of predictions and targets read from a JSON
// file. Useful for checking that a config produces the loss you expect
// before handing it to a training run.
package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorgonia.org/tensor"

	"criteria/config"
	"criteria/criterion"
)

// batch is the on-disk evaluation input: a (batch, classes) output matrix and
// one target per example (class indices for classification criteria) or one
// target per element otherwise.
type batch struct {
	Output [][]float64 `json:"output"`
	Target []float64   `json:"target"`
}

func loadBatch(path string) (*batch, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b batch
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if len(b.Output) == 0 || len(b.Output[0]) == 0 {
		return nil, errors.New("batch output must not be empty")
	}
	for _, row := range b.Output[1:] {
		if len(row) != len(b.Output[0]) {
			return nil, errors.New("batch output rows have uneven lengths")
		}
	}
	return &b, nil
}

// tensors shapes the batch for the given criterion. Cross-entropy wants
// integer class indices; the element-wise criteria want a target tensor
// shaped like the output.
func (b *batch) tensors(crit criterion.Criterion) (output, target *tensor.Dense, err error) {
	rows, cols := len(b.Output), len(b.Output[0])
	backing := make([]float64, 0, rows*cols)
	for _, row := range b.Output {
		backing = append(backing, row...)
	}
	output = tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(backing))

	if _, ok := crit.(*criterion.CrossEntropyLoss); ok {
		if len(b.Target) != rows {
			return nil, nil, errors.Errorf("want %d class-index targets, got %d", rows, len(b.Target))
		}
		indices := make([]int, rows)
		for i, v := range b.Target {
			indices[i] = int(v)
		}
		target = tensor.New(tensor.WithShape(rows), tensor.WithBacking(indices))
		return output, target, nil
	}

	if len(b.Target) != rows*cols {
		return nil, nil, errors.Errorf("want %d targets, got %d", rows*cols, len(b.Target))
	}
	values := make([]float64, len(b.Target))
	copy(values, b.Target)
	target = tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(values))
	return output, target, nil
}

func run(configPath, batchPath string, logger *zerolog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logger == nil {
		l := cfg.Logging.Logger()
		logger = &l
	}

	crit, err := criterion.Build(cfg.Criterion)
	if err != nil {
		return err
	}
	name, _ := cfg.Criterion["name"].(string)
	logger.Debug().Str("criterion", name).Floats64("weight", crit.Weight()).Msg("criterion built")

	b, err := loadBatch(batchPath)
	if err != nil {
		return err
	}
	output, target, err := b.tensors(crit)
	if err != nil {
		return err
	}
	loss, err := crit.Forward(output, target)
	if err != nil {
		return err
	}
	value, err := criterion.Scalar(loss)
	if err != nil {
		return errors.Wrap(err, "reduction \"none\" losses are tensors; use mean or sum here")
	}
	logger.Info().
		Str("criterion", name).
		Int("examples", len(b.Output)).
		Float64("loss", value).
		Msg("batch evaluated")
	return nil
}

func main() {
	configPath := flag.String("config", "config.yaml", "training config file (yaml or json)")
	batchPath := flag.String("batch", "batch.json", "JSON file with output and target arrays")
	flag.Parse()

	if err := run(*configPath, *batchPath, nil); err != nil {
		logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		logger.Fatal().Err(err).Msg("criteria")
	}
}
