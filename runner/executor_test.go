package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrirkslab/context-server-acceptor/types"
)

func newTestExecutor(t *testing.T, cfg ExecutorConfig) Executor {
	t.Helper()
	e, err := NewExecutor(cfg)
	require.NoError(t, err)
	return e
}

func TestExecutorCapturesOutput(t *testing.T) {
	e := newTestExecutor(t, ExecutorConfig{})

	outcome := e.Run(context.Background(), types.Invocation{
		Command: "echo out; echo err >&2",
	})

	assert.Equal(t, 0, outcome.ExitCode)
	assert.Equal(t, "out\n", outcome.Stdout)
	assert.Equal(t, "err\n", outcome.Stderr)
	assert.False(t, outcome.TimedOut)
	assert.Greater(t, outcome.Duration, time.Duration(0))
}

func TestExecutorPreservesExitCode(t *testing.T) {
	e := newTestExecutor(t, ExecutorConfig{})

	outcome := e.Run(context.Background(), types.Invocation{Command: "exit 3"})
	assert.Equal(t, 3, outcome.ExitCode)
}

func TestExecutorShellPipelines(t *testing.T) {
	e := newTestExecutor(t, ExecutorConfig{})

	outcome := e.Run(context.Background(), types.Invocation{
		Command: "printf 'a\\nb\\nc\\n' | head -2",
	})
	assert.Equal(t, 0, outcome.ExitCode)
	assert.Equal(t, "a\nb\n", outcome.Stdout)
}

func TestExecutorStripsANSI(t *testing.T) {
	e := newTestExecutor(t, ExecutorConfig{})

	outcome := e.Run(context.Background(), types.Invocation{
		Command: `printf '\033[31mred\033[0m\n'`,
	})
	assert.Equal(t, "red\n", outcome.Stdout)
}

func TestExecutorTimeout(t *testing.T) {
	e := newTestExecutor(t, ExecutorConfig{})

	start := time.Now()
	outcome := e.Run(context.Background(), types.Invocation{
		Command: "sleep 5",
		Timeout: 500 * time.Millisecond,
	})
	elapsed := time.Since(start)

	assert.Equal(t, types.HarnessFailureCode, outcome.ExitCode)
	assert.True(t, outcome.TimedOut)
	assert.Contains(t, outcome.Stderr, "timed out")
	// The subprocess must be killed, not awaited to completion.
	assert.Less(t, elapsed, 3*time.Second)
}

func TestExecutorDefaultTimeoutApplies(t *testing.T) {
	e := newTestExecutor(t, ExecutorConfig{DefaultTimeout: 500 * time.Millisecond})

	outcome := e.Run(context.Background(), types.Invocation{Command: "sleep 5"})
	assert.True(t, outcome.TimedOut)
	assert.Equal(t, types.HarnessFailureCode, outcome.ExitCode)
}

func TestExecutorSpawnFailure(t *testing.T) {
	e := newTestExecutor(t, ExecutorConfig{Shell: "/nonexistent/shell"})

	outcome := e.Run(context.Background(), types.Invocation{Command: "echo hi"})
	assert.Equal(t, types.HarnessFailureCode, outcome.ExitCode)
	assert.False(t, outcome.TimedOut)
	assert.NotEmpty(t, outcome.Stderr)
}

func TestExecutorWorkDir(t *testing.T) {
	dir := t.TempDir()
	e := newTestExecutor(t, ExecutorConfig{WorkDir: dir})

	outcome := e.Run(context.Background(), types.Invocation{Command: "pwd"})
	require.Equal(t, 0, outcome.ExitCode)

	got, err := filepath.EvalSymlinks(filepath.Clean(outcome.Stdout[:len(outcome.Stdout)-1]))
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExecutorPathPrefix(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "probe-tool")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho found\n"), 0755))

	e := newTestExecutor(t, ExecutorConfig{PathPrefix: dir})

	outcome := e.Run(context.Background(), types.Invocation{Command: "probe-tool"})
	assert.Equal(t, 0, outcome.ExitCode)
	assert.Equal(t, "found\n", outcome.Stdout)
}
