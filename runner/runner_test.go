package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrirkslab/context-server-acceptor/registry"
	"github.com/hrirkslab/context-server-acceptor/types"
)

// executorFunc adapts a function to the Executor interface for tests.
type executorFunc func(ctx context.Context, inv types.Invocation) types.Outcome

func (f executorFunc) Run(ctx context.Context, inv types.Invocation) types.Outcome {
	return f(ctx, inv)
}

func fakeBinary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "context-server")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0755))
	return path
}

func builtinRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.NewRegistry(registry.Config{})
	require.NoError(t, err)
	return r
}

func TestNewSuiteRunnerValidation(t *testing.T) {
	reg := builtinRegistry(t)
	exec := executorFunc(func(context.Context, types.Invocation) types.Outcome { return types.Outcome{} })

	_, err := NewSuiteRunner(Config{Executor: exec, BinaryPath: "/bin/true"})
	require.ErrorContains(t, err, "registry")

	_, err = NewSuiteRunner(Config{Registry: reg, BinaryPath: "/bin/true"})
	require.ErrorContains(t, err, "executor")

	_, err = NewSuiteRunner(Config{Registry: reg, Executor: exec})
	require.ErrorContains(t, err, "binary")
}

func TestRunSuiteMissingBinary(t *testing.T) {
	r, err := NewSuiteRunner(Config{
		Registry:   builtinRegistry(t),
		Executor:   executorFunc(func(context.Context, types.Invocation) types.Outcome { return types.Outcome{} }),
		BinaryPath: filepath.Join(t.TempDir(), "does-not-exist"),
	})
	require.NoError(t, err)

	// A missing subject binary is a verdict, not a harness error.
	result, err := r.RunSuite(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, result.RunID)

	require.Equal(t, 1, result.Report.Len())
	res, ok := result.Report.Get(BinaryCheckID)
	require.True(t, ok)
	assert.True(t, res.Synthetic)
	assert.False(t, res.Passed)
	assert.Equal(t, types.HarnessFailureCode, res.Outcome.ExitCode)
	assert.Contains(t, res.Outcome.Stderr, "not found")

	assert.Equal(t, 0.0, result.Report.PassRate())
}

func TestRunSuiteBinaryIsDirectory(t *testing.T) {
	r, err := NewSuiteRunner(Config{
		Registry:   builtinRegistry(t),
		Executor:   executorFunc(func(context.Context, types.Invocation) types.Outcome { return types.Outcome{} }),
		BinaryPath: t.TempDir(),
	})
	require.NoError(t, err)

	result, err := r.RunSuite(context.Background())
	require.NoError(t, err)
	res, ok := result.Report.Get(BinaryCheckID)
	require.True(t, ok)
	assert.Contains(t, res.Outcome.Stderr, "directory")
}

func TestRunSuiteBinaryNotExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "context-server")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))

	r, err := NewSuiteRunner(Config{
		Registry:   builtinRegistry(t),
		Executor:   executorFunc(func(context.Context, types.Invocation) types.Outcome { return types.Outcome{} }),
		BinaryPath: path,
	})
	require.NoError(t, err)

	result, err := r.RunSuite(context.Background())
	require.NoError(t, err)
	res, ok := result.Report.Get(BinaryCheckID)
	require.True(t, ok)
	assert.Contains(t, res.Outcome.Stderr, "not executable")
}

func TestRunSuiteSequentialOrderAndTokenExpansion(t *testing.T) {
	binary := fakeBinary(t)
	reg := builtinRegistry(t)

	var commands []string
	exec := executorFunc(func(_ context.Context, inv types.Invocation) types.Outcome {
		commands = append(commands, inv.Command)
		return types.Outcome{ExitCode: 0}
	})

	r, err := NewSuiteRunner(Config{Registry: reg, Executor: exec, BinaryPath: binary})
	require.NoError(t, err)

	result, err := r.RunSuite(context.Background())
	require.NoError(t, err)

	cases := reg.TestCases()
	require.Len(t, commands, len(cases))

	// Declaration order is execution order is report order.
	var wantIDs []string
	for _, tc := range cases {
		wantIDs = append(wantIDs, tc.ID)
	}
	assert.Equal(t, wantIDs, result.Report.IDs())

	for _, cmd := range commands {
		assert.NotContains(t, cmd, types.BinaryToken)
		assert.Contains(t, cmd, binary)
	}
}

func TestRunSuiteFailureIsolation(t *testing.T) {
	binary := fakeBinary(t)
	reg := builtinRegistry(t)

	// Every invocation reports a harness-level failure. The suite must
	// still attempt all cases and return a complete report.
	exec := executorFunc(func(_ context.Context, inv types.Invocation) types.Outcome {
		return types.Outcome{ExitCode: types.HarnessFailureCode, Stderr: "boom"}
	})

	r, err := NewSuiteRunner(Config{Registry: reg, Executor: exec, BinaryPath: binary})
	require.NoError(t, err)

	result, err := r.RunSuite(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(reg.TestCases()), result.Report.Len())

	// Inverse and always-pass policies still pass on nonzero exits.
	errRes, ok := result.Report.Get("error-handling")
	require.True(t, ok)
	assert.True(t, errRes.Passed)

	getRes, ok := result.Report.Get("get-by-id")
	require.True(t, ok)
	assert.True(t, getRes.Passed)

	helpRes, ok := result.Report.Get("help")
	require.True(t, ok)
	assert.False(t, helpRes.Passed)
}

func TestRunSuiteStats(t *testing.T) {
	binary := fakeBinary(t)
	reg := builtinRegistry(t)

	// A healthy subject: zero exits with the output every check expects.
	healthy := executorFunc(func(_ context.Context, inv types.Invocation) types.Outcome {
		if strings.Contains(inv.Command, "--help") {
			return types.Outcome{ExitCode: 0, Stdout: "Usage: serve query list search get\nExamples:\n  example usage"}
		}
		if strings.Contains(inv.Command, "nonexistent") {
			return types.Outcome{ExitCode: 1, Stderr: "Error: rule not found"}
		}
		return types.Outcome{ExitCode: 0, Stdout: `{"status": "active"}`}
	})

	r, err := NewSuiteRunner(Config{Registry: reg, Executor: healthy, BinaryPath: binary})
	require.NoError(t, err)

	result, err := r.RunSuite(context.Background())
	require.NoError(t, err)
	assert.Equal(t, result.Report.Len(), result.Stats.Total)
	assert.Equal(t, result.Stats.Total, result.Stats.Passed)
	assert.InDelta(t, 100.0, result.Report.PassRate(), 1e-9)
}
