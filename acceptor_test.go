package acceptor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrirkslab/context-server-acceptor/readiness"
	"github.com/hrirkslab/context-server-acceptor/runner"
)

// healthyStub emulates a well-behaved subject binary: every catalog
// command produces the output the built-in checks look for, and an
// unknown ID fails with a proper error message.
const healthyStub = `#!/bin/sh
case "$1" in
--help)
	echo "Usage: context-server <command>"
	echo "Commands: serve query list search get"
	echo "Examples:"
	echo "  context-server query -p default"
	exit 0
	;;
query)
	echo '{"status": "active"}'
	exit 0
	;;
search|list)
	echo "2 results"
	exit 0
	;;
get)
	if [ "$2" = "nonexistent" ]; then
		echo "Error: context 'nonexistent' not found" >&2
		exit 1
	fi
	echo "rule-001: encrypt data at rest"
	exit 0
	;;
*)
	echo "unknown command" >&2
	exit 2
	;;
esac
`

func writeStubBinary(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "context-server")
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func testConfig(t *testing.T, binary string) *Config {
	t.Helper()
	return &Config{
		BinaryPath:     binary,
		WorkDir:        t.TempDir(),
		LogDir:         t.TempDir(),
		DefaultTimeout: 10 * time.Second,
		RunOnce:        true,
		Log:            log.Root(),
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(context.Background(), nil, "v0", func(error) {})
	require.Error(t, err)
}

func TestRunOnceHealthyBinary(t *testing.T) {
	cfg := testConfig(t, writeStubBinary(t, healthyStub))

	shutdownCalled := make(chan error, 1)
	svc, err := New(context.Background(), cfg, "v0", func(err error) {
		shutdownCalled <- err
	})
	require.NoError(t, err)

	require.NoError(t, svc.Start(context.Background()))

	require.NotNil(t, svc.result)
	require.NotNil(t, svc.verdict)
	assert.Equal(t, readiness.TierReady, svc.verdict.Tier)
	assert.InDelta(t, 100.0, svc.verdict.PassRate, 1e-9)
	assert.Equal(t, 10, svc.result.Report.Len())

	for _, cr := range svc.verdict.Checklist {
		assert.True(t, cr.Satisfied, cr.Criterion.ID)
	}

	select {
	case err := <-shutdownCalled:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown callback not invoked")
	}

	// Per-run artifacts land under the configured log directory.
	entries, err := os.ReadDir(cfg.LogDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	summary := filepath.Join(cfg.LogDir, entries[0].Name(), "summary.log")
	data, err := os.ReadFile(summary)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Verdict: ready")
}

func TestRunOnceMissingBinary(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "does-not-exist"))

	svc, err := New(context.Background(), cfg, "v0", func(error) {})
	require.NoError(t, err)

	err = svc.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotReadyError(err))

	// The run still produced a verdict built on the synthetic entry.
	require.NotNil(t, svc.verdict)
	assert.Equal(t, readiness.TierNotReady, svc.verdict.Tier)
	res, ok := svc.result.Report.Get(runner.BinaryCheckID)
	require.True(t, ok)
	assert.True(t, res.Synthetic)
}

func TestRunOnceBrokenBinary(t *testing.T) {
	// A subject that fails every command scores below mostly-ready.
	broken := "#!/bin/sh\necho 'Error: fatal' >&2\nexit 1\n"
	cfg := testConfig(t, writeStubBinary(t, broken))

	svc, err := New(context.Background(), cfg, "v0", func(error) {})
	require.NoError(t, err)

	err = svc.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotReadyError(err))
	assert.Equal(t, readiness.TierNotReady, svc.verdict.Tier)

	// Graceful-failure and informational probes still pass on errors.
	errRes, ok := svc.result.Report.Get("error-handling")
	require.True(t, ok)
	assert.True(t, errRes.Passed)
	getRes, ok := svc.result.Report.Get("get-by-id")
	require.True(t, ok)
	assert.True(t, getRes.Passed)
}

func TestContinuousModeStartStop(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "does-not-exist"))
	cfg.RunOnce = false
	cfg.RunInterval = time.Hour

	svc, err := New(context.Background(), cfg, "v0", func(error) {})
	require.NoError(t, err)

	require.NoError(t, svc.Start(context.Background()))
	assert.False(t, svc.Stopped())

	require.NoError(t, svc.Stop(context.Background()))
	assert.True(t, svc.Stopped())

	// Stop is idempotent.
	require.NoError(t, svc.Stop(context.Background()))
}
