// Package acceptor drives a pre-built command line binary through its
// acceptance catalog and reduces the outcomes to a production readiness
// verdict.
package acceptor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/urfave/cli/v2"

	"github.com/hrirkslab/context-server-acceptor/exitcodes"
	"github.com/hrirkslab/context-server-acceptor/logging"
	"github.com/hrirkslab/context-server-acceptor/metrics"
	"github.com/hrirkslab/context-server-acceptor/readiness"
	"github.com/hrirkslab/context-server-acceptor/registry"
	"github.com/hrirkslab/context-server-acceptor/runner"
)

// acceptor implements the cliapp.Lifecycle interface.
var _ cliapp.Lifecycle = &acceptor{}

// acceptor is the harness service: it owns the registry, the suite runner
// and the readiness evaluator for the configured subject binary.
type acceptor struct {
	ctx       context.Context
	config    *Config
	version   string
	registry  *registry.Registry
	runner    runner.SuiteRunner
	evaluator *readiness.Evaluator
	formatter ResultFormatter

	result  *runner.SuiteResult
	verdict *readiness.Verdict

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*acceptor, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating acceptor with config",
		"binary", config.BinaryPath,
		"catalog", config.CatalogFile,
		"workDir", config.WorkDir,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce)

	reg, err := registry.NewRegistry(registry.Config{
		Log:            config.Log,
		CatalogFile:    config.CatalogFile,
		DefaultTimeout: config.DefaultTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	executor, err := runner.NewExecutor(runner.ExecutorConfig{
		WorkDir:        config.WorkDir,
		PathPrefix:     config.PathPrefix,
		DefaultTimeout: config.DefaultTimeout,
		Log:            config.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}

	suiteRunner, err := runner.NewSuiteRunner(runner.Config{
		Registry:   reg,
		Executor:   executor,
		BinaryPath: config.BinaryPath,
		Log:        config.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create suite runner: %w", err)
	}

	return &acceptor{
		ctx:              ctx,
		config:           config,
		version:          version,
		registry:         reg,
		runner:           suiteRunner,
		evaluator:        readiness.NewEvaluator(reg.Criteria(), config.Log),
		formatter:        NewConsoleResultFormatter(),
		done:             make(chan struct{}),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start runs the acceptance suite, once or periodically at the configured
// interval. Start implements the cliapp.Lifecycle interface.
func (a *acceptor) Start(ctx context.Context) error {
	// Panic recovery so runtime errors exit with code 2
	defer func() {
		if r := recover(); r != nil {
			a.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	a.ctx = ctx
	a.done = make(chan struct{})
	a.running.Store(true)

	if a.config.RunOnce {
		a.config.Log.Info("Starting acceptor in run-once mode")
	} else {
		a.config.Log.Info("Starting acceptor in continuous mode", "interval", a.config.RunInterval)
	}

	if err := a.runSuite(); err != nil {
		a.config.Log.Error("Runtime error running suite", "error", err)
		return cli.Exit(err.Error(), exitcodes.RuntimeErr)
	}

	if a.config.RunOnce {
		a.config.Log.Info("Suite completed, exiting (run-once mode)")

		if a.verdict != nil && !a.verdict.Tier.Acceptable() {
			a.config.Log.Warn("Run-once suite scored not-ready, returning exit code 1",
				"pass_rate", a.verdict.PassRate)
			return NewNotReadyError(fmt.Sprintf("pass rate %.1f%%", a.verdict.PassRate))
		}

		// Only needed in run-once mode when the verdict is acceptable
		go func() {
			a.shutdownCallback(nil)
		}()
		return nil
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.config.Log.Debug("Starting periodic suite runner goroutine", "interval", a.config.RunInterval)

		for {
			select {
			case <-time.After(a.config.RunInterval):
				if !a.running.Load() {
					a.config.Log.Debug("Service stopped, exiting periodic suite runner")
					return
				}
				a.config.Log.Info("Running periodic suite")
				if err := a.runSuite(); err != nil {
					a.config.Log.Error("Error running periodic suite", "error", err)
				}

			case <-a.done:
				a.config.Log.Debug("Done signal received, stopping periodic suite runner")
				return

			case <-ctx.Done():
				a.config.Log.Debug("Context canceled, stopping periodic suite runner")
				a.running.Store(false)
				return
			}
		}
	}()
	a.config.Log.Debug("acceptor started successfully")
	return nil
}

// runSuite runs the full catalog, evaluates readiness and renders the
// report. Only runtime faults surface as errors; a failing subject binary
// is an ordinary verdict.
func (a *acceptor) runSuite() error {
	result, err := a.runner.RunSuite(a.ctx)
	if err != nil {
		return NewRuntimeError(err)
	}
	a.result = result

	verdict := a.evaluator.Evaluate(result.Report)
	a.verdict = verdict

	metrics.RecordVerdict(
		result.RunID,
		verdict.Tier.String(),
		verdict.PassRate,
		verdict.Stats.Total,
		verdict.Stats.Passed,
		verdict.Stats.Failed,
		result.Duration,
	)

	a.persistArtifacts(result, verdict)

	if err := a.formatter.FormatResults(result, verdict); err != nil {
		a.config.Log.Error("Failed to render results", "error", err)
	}

	a.config.Log.Info("Suite run completed",
		"run_id", result.RunID,
		"tier", verdict.Tier,
		"pass_rate", verdict.PassRate)
	return nil
}

// persistArtifacts writes per-case output files and the run summary.
// Artifact failures are logged, never fatal to the run.
func (a *acceptor) persistArtifacts(result *runner.SuiteResult, verdict *readiness.Verdict) {
	fileLogger, err := logging.NewFileLogger(a.config.LogDir, result.RunID, a.config.Log)
	if err != nil {
		a.config.Log.Warn("Skipping run artifacts", "error", err)
		return
	}
	for _, res := range result.Report.Results() {
		if err := fileLogger.Consume(res); err != nil {
			a.config.Log.Warn("Failed to write test artifact", "test", res.CaseID, "error", err)
		}
	}
	if err := fileLogger.Complete(result.Report, verdict); err != nil {
		a.config.Log.Warn("Failed to write run summary", "error", err)
	}
}

// Stop stops the acceptor service.
// Stop implements the cliapp.Lifecycle interface.
func (a *acceptor) Stop(ctx context.Context) error {
	a.config.Log.Info("Stopping acceptor")

	if !a.running.Load() {
		a.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}

	a.running.Store(false)
	close(a.done)
	a.wg.Wait()

	a.config.Log.Info("acceptor stopped successfully")
	return nil
}

// Stopped returns true if the acceptor service is stopped.
// Stopped implements the cliapp.Lifecycle interface.
func (a *acceptor) Stopped() bool {
	return !a.running.Load()
}
