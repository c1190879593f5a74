package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"

	"github.com/hrirkslab/context-server-acceptor/types"
)

const (
	// DefaultShell interprets catalog command lines.
	DefaultShell = "sh"
	// DefaultTimeout bounds invocations that do not carry their own deadline.
	DefaultTimeout = 60 * time.Second
	// killGracePeriod bounds how long a killed process may linger before
	// its output is abandoned.
	killGracePeriod = 5 * time.Second
)

var _ Executor = (*shellExecutor)(nil)

// Executor runs a single command invocation and reports its outcome. Run
// never returns an error and never lets a panic escape its boundary: every
// failure mode is represented in the Outcome, with exit status -1 reserved
// for timeouts and harness-internal failures.
type Executor interface {
	Run(ctx context.Context, inv types.Invocation) types.Outcome
}

// ExecutorConfig holds configuration for creating an executor.
type ExecutorConfig struct {
	Shell          string        // shell interpreter, defaults to DefaultShell
	WorkDir        string        // working directory for invocations
	PathPrefix     string        // directory prepended to PATH for subprocesses
	DefaultTimeout time.Duration // applied when an invocation has no deadline
	Log            log.Logger

	// CmdBuilder is an injection point for tests; nil selects
	// exec.CommandContext.
	CmdBuilder func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// shellExecutor implements Executor on top of a shell interpreter.
type shellExecutor struct {
	shell          string
	workDir        string
	pathPrefix     string
	defaultTimeout time.Duration
	log            log.Logger
	cmdBuilder     func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// NewExecutor creates a shell-backed executor.
func NewExecutor(cfg ExecutorConfig) (Executor, error) {
	if cfg.Shell == "" {
		cfg.Shell = DefaultShell
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}
	if cfg.CmdBuilder == nil {
		cfg.CmdBuilder = exec.CommandContext
	}

	return &shellExecutor{
		shell:          cfg.Shell,
		workDir:        cfg.WorkDir,
		pathPrefix:     cfg.PathPrefix,
		defaultTimeout: cfg.DefaultTimeout,
		log:            cfg.Log,
		cmdBuilder:     cfg.CmdBuilder,
	}, nil
}

// Run executes one invocation with a bounded deadline. On deadline expiry
// the subprocess is forcibly killed, never abandoned, and the outcome is
// synthesized with a timeout marker in stderr.
func (e *shellExecutor) Run(ctx context.Context, inv types.Invocation) (outcome types.Outcome) {
	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Recovered panic while running command", "command", inv.Command, "panic", r)
			outcome = types.Outcome{
				ExitCode: types.HarnessFailureCode,
				Stderr:   fmt.Sprintf("internal harness failure: %v", r),
			}
		}
	}()

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := e.cmdBuilder(cctx, e.shell, "-c", inv.Command)
	cmd.Dir = e.workDir
	cmd.Env = e.environ()
	cmd.WaitDelay = killGracePeriod

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.log.Debug("Running command", "command", inv.Command, "timeout", timeout)
	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	outcome = types.Outcome{
		Stdout:   stripansi.Strip(stdout.String()),
		Stderr:   stripansi.Strip(stderr.String()),
		Duration: duration,
	}

	switch {
	case errors.Is(cctx.Err(), context.DeadlineExceeded):
		outcome.ExitCode = types.HarnessFailureCode
		outcome.TimedOut = true
		outcome.Stderr = fmt.Sprintf("command timed out after %s", timeout)
		e.log.Warn("Command timed out", "command", inv.Command, "timeout", timeout)
	case runErr == nil:
		outcome.ExitCode = 0
	default:
		exitErr := &exec.ExitError{}
		if errors.As(runErr, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
		} else {
			// Spawn failure: the shell itself could not be started. The
			// error message is the only output there is.
			outcome.ExitCode = types.HarnessFailureCode
			outcome.Stderr = runErr.Error()
			e.log.Error("Failed to spawn command", "command", inv.Command, "error", runErr)
		}
	}

	e.log.Debug("Command finished",
		"command", inv.Command,
		"exit_code", outcome.ExitCode,
		"duration", duration)
	return outcome
}

// environ returns the subprocess environment: the harness environment with
// the configured prefix planted at the front of PATH. The prefix is an
// explicit configuration value, not ambient process state.
func (e *shellExecutor) environ() []string {
	env := os.Environ()
	if e.pathPrefix == "" {
		return env
	}
	for i, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			env[i] = "PATH=" + e.pathPrefix + string(os.PathListSeparator) + strings.TrimPrefix(kv, "PATH=")
			return env
		}
	}
	return append(env, "PATH="+e.pathPrefix)
}
