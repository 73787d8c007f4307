package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/jitlink/internal/config"
)

const scaledSum = `name: scaled_sum
inputs:
  - {name: x, dtype: float64}
  - {name: y, dtype: float64}
constants:
  - {name: k, dtype: float64, value: 2.5}
nodes:
  - {op: elemwise, scalar: add, inputs: [x, y], outputs: [s]}
  - {op: elemwise, scalar: mul, inputs: [s, k], outputs: [out]}
outputs: [out]
`

// execute runs the CLI with a fresh default config file.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.WriteDefault(cfgPath))

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeGraph(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "jitlink "+version+"\n", out)
}

func TestOps(t *testing.T) {
	out, err := execute(t, "ops")
	require.NoError(t, err)
	assert.Contains(t, out, "scalar.ScalarOp")
	assert.Contains(t, out, "elemwise.Elemwise")
	assert.Contains(t, out, "true_divide")
}

func TestRunScalars(t *testing.T) {
	path := writeGraph(t, scaledSum)

	out, err := execute(t, "run", path, "--input", "x=1", "-i", "y=3")
	require.NoError(t, err)
	assert.Equal(t, "out = 10\n", out)
}

func TestRunBroadcast(t *testing.T) {
	path := writeGraph(t, scaledSum)

	out, err := execute(t, "run", path, "-i", "x=1,2", "-i", "y=2")
	require.NoError(t, err)
	assert.Equal(t, "out = float64[2][7.5 10]\n", out)
}

func TestRunLegacyRejectsArrays(t *testing.T) {
	path := writeGraph(t, scaledSum)

	_, err := execute(t, "run", path, "-i", "x=1,2", "-i", "y=2", "--vectorize=false")
	assert.Error(t, err)
}

func TestRunInputErrors(t *testing.T) {
	path := writeGraph(t, scaledSum)

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"-i", "x=1"}},
		{"unknown input", []string{"-i", "x=1", "-i", "y=2", "-i", "z=3"}},
		{"malformed", []string{"-i", "x", "-i", "y=2"}},
		{"not a number", []string{"-i", "x=abc", "-i", "y=2"}},
		{"duplicate", []string{"-i", "x=1", "-i", "x=2", "-i", "y=2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append([]string{"run", path}, tt.args...)...)
			assert.ErrorIs(t, err, errInput)
		})
	}
}

func TestRunMissingGraph(t *testing.T) {
	_, err := execute(t, "run", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want any
	}{
		{"3", int64(3)},
		{"2.5", 2.5},
		{"1,2,3", []int64{1, 2, 3}},
		{"1, 2.5", []float64{1, 2.5}},
	}
	for _, tt := range tests {
		got, err := parseValue(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}
