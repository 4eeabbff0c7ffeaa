package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestProbabilityCmd(t *testing.T) {
	out, err := execute(t, "probability", "-N", "10", "2", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for i, name := range []string{"naive", "algebraically_optimized", "fully_optimized"} {
		fields := strings.Fields(lines[i])
		require.Len(t, fields, 2, lines[i])
		assert.Equal(t, name, fields[0])
		assert.True(t, strings.HasPrefix(fields[1], "0.5333"), fields[1])
	}
}

func TestProbabilityCmd_SelectVariant(t *testing.T) {
	out, err := execute(t, "probability", "-N", "5", "--variant", "fully_optimized", "2", "2")
	require.NoError(t, err)
	assert.Equal(t, "fully_optimized", strings.Fields(out)[0])
	assert.NotContains(t, out, "naive")

	_, err = execute(t, "probability", "-N", "5", "--variant", "quadratic", "2", "2")
	assert.ErrorContains(t, err, "unknown variant")
}

func TestParseSamples(t *testing.T) {
	got, err := parseSamples([]string{"3", "4"}, 8)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, got)

	for _, tc := range []struct {
		args       []string
		population int
	}{
		{[]string{"3", "x"}, 10},
		{[]string{"0", "2"}, 10},
		{[]string{"5", "5"}, 10},
	} {
		_, err := parseSamples(tc.args, tc.population)
		assert.Error(t, err, "%v with N=%d", tc.args, tc.population)
	}
}

func TestBenchmarkCmd_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	metricsPath := filepath.Join(dir, "exclusivity.prom")

	out, err := execute(t, "benchmark",
		"-T", "2", "-R", "12,10", "-I", "1", "-C", "0", "--seed", "7",
		"--out", dir, "--metrics-file", metricsPath)
	require.NoError(t, err)

	for _, name := range []string{"naive", "algebraically_optimized", "fully_optimized"} {
		assert.Contains(t, out, name)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json.xz"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	doc, err := readRunDocument(files[0])
	require.NoError(t, err)
	assert.Len(t, doc.Results, 6)
	assert.Equal(t, uint64(7), doc.Params.Seed)
	assert.Equal(t, 10, doc.Params.Range.Low, "range is normalized before saving")
	assert.Equal(t, 1, doc.Params.Workers)
	assert.Empty(t, doc.Meta.Error)
	assert.False(t, doc.Meta.End.Before(doc.Meta.Begin))

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "exclusivity_trials_total 6")

	summary, err := execute(t, "summarize", files[0])
	require.NoError(t, err)
	assert.Contains(t, summary, doc.Meta.RunID)
	assert.Contains(t, summary, "fully_optimized")
}

func TestBenchmarkCmd_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "benchmark", "-R", "2,10", "--out", dir)
	require.Error(t, err)

	files, _ := filepath.Glob(filepath.Join(dir, "*"))
	assert.Empty(t, files, "nothing is written when the config is rejected")
}

func TestRootCmd_BadLogLevel(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--log-level", "loud", "probability", "-N", "10", "1", "1"})
	assert.Error(t, root.Execute())
}
