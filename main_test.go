package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestRunEvaluatesBatch(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", `
criterion:
  name: CrossEntropyLoss
  weight: [1.0, 1.0]
  ignore_index: -1
  reduction: mean
`)
	batchPath := writeFile(t, dir, "batch.json",
		`{"output": [[9.0, 1.0]], "target": [1]}`)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	require.NoError(t, run(cfgPath, batchPath, &logger))
	assert.Contains(t, buf.String(), `"loss":8.0003354`)
}

func TestRunRejectsRaggedBatch(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "criterion:\n  name: MSELoss\n")
	batchPath := writeFile(t, dir, "batch.json",
		`{"output": [[1.0, 2.0], [3.0]], "target": [0, 0, 0]}`)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	require.Error(t, run(cfgPath, batchPath, &logger))
}

func TestRunTargetCountMismatch(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "criterion:\n  name: BCEWithLogitsLoss\n")
	batchPath := writeFile(t, dir, "batch.json",
		`{"output": [[0.5, 0.5]], "target": [1.0]}`)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	require.Error(t, run(cfgPath, batchPath, &logger))
}
