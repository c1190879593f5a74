// Package runner executes the acceptance catalog against the subject
// binary, one case at a time, and accumulates a suite report.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hrirkslab/context-server-acceptor/metrics"
	"github.com/hrirkslab/context-server-acceptor/registry"
	"github.com/hrirkslab/context-server-acceptor/types"
)

// BinaryCheckID names the synthetic report entry recorded when the subject
// binary cannot be executed.
const BinaryCheckID = "binary-available"

// SuiteRunner executes the registered catalog against one subject binary.
type SuiteRunner interface {
	RunSuite(ctx context.Context) (*SuiteResult, error)
}

// SuiteResult captures one complete harness run.
type SuiteResult struct {
	RunID    string
	Report   *types.SuiteReport
	Duration time.Duration
	Stats    types.ReportStats
}

// Config holds configuration for creating a suite runner.
type Config struct {
	Registry   *registry.Registry
	Executor   Executor
	BinaryPath string
	Log        log.Logger
}

// suiteRunner implements SuiteRunner.
type suiteRunner struct {
	registry   *registry.Registry
	executor   Executor
	binaryPath string
	log        log.Logger
	tracer     trace.Tracer
}

// NewSuiteRunner creates a new suite runner instance.
func NewSuiteRunner(cfg Config) (SuiteRunner, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if cfg.Executor == nil {
		return nil, errors.New("executor is required")
	}
	if cfg.BinaryPath == "" {
		return nil, errors.New("subject binary path is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}

	return &suiteRunner{
		registry:   cfg.Registry,
		executor:   cfg.Executor,
		binaryPath: cfg.BinaryPath,
		log:        cfg.Log,
		tracer:     otel.Tracer("acceptor/runner"),
	}, nil
}

// RunSuite executes every catalog entry in declaration order. A failing or
// crashing case never aborts the suite; only a missing subject binary
// short-circuits the whole catalog, because every subsequent command would
// fail in the same uninformative way.
func (r *suiteRunner) RunSuite(ctx context.Context) (*SuiteResult, error) {
	runID := uuid.New().String()
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, "acceptance-suite",
		trace.WithAttributes(attribute.String("run_id", runID)))
	defer span.End()

	report := types.NewSuiteReport()

	if err := checkBinary(r.binaryPath); err != nil {
		r.log.Error("Subject binary is not runnable, aborting suite", "binary", r.binaryPath, "error", err)
		metrics.RecordErrorDetails("binary check failed", err)

		synthetic := &types.TestResult{
			CaseID:      BinaryCheckID,
			DisplayName: "Subject binary present",
			Outcome: types.Outcome{
				ExitCode: types.HarnessFailureCode,
				Stderr:   err.Error(),
			},
			Status:    types.TestStatusFail,
			Synthetic: true,
		}
		if aerr := report.Append(synthetic); aerr != nil {
			return nil, aerr
		}
		metrics.RecordTest(runID, BinaryCheckID, string(types.PolicyDefault), types.TestStatusFail)

		return &SuiteResult{
			RunID:    runID,
			Report:   report,
			Duration: time.Since(start),
			Stats:    report.Stats(),
		}, nil
	}

	cases := r.registry.TestCases()
	r.log.Info("Running acceptance catalog", "run_id", runID, "tests", len(cases), "binary", r.binaryPath)

	// Strictly sequential: the subject binary may share mutable on-disk
	// state between cases, and later cases may depend on earlier writes.
	for _, tc := range cases {
		result := r.runCase(ctx, runID, tc)
		if err := report.Append(result); err != nil {
			return nil, fmt.Errorf("failed to record result for %q: %w", tc.ID, err)
		}
	}

	stats := report.Stats()
	r.log.Info("Acceptance catalog finished",
		"run_id", runID,
		"total", stats.Total,
		"passed", stats.Passed,
		"failed", stats.Failed,
		"duration", time.Since(start))

	return &SuiteResult{
		RunID:    runID,
		Report:   report,
		Duration: time.Since(start),
		Stats:    stats,
	}, nil
}

// runCase executes one catalog entry and judges its outcome. All failure
// modes of the invocation surface as a failed result, never as an error.
func (r *suiteRunner) runCase(ctx context.Context, runID string, tc types.TestCase) *types.TestResult {
	ctx, span := r.tracer.Start(ctx, tc.ID)
	defer span.End()

	inv := tc.Invocation
	inv.Command = strings.ReplaceAll(inv.Command, types.BinaryToken, r.binaryPath)

	r.log.Info("Running test", "test", tc.ID, "command", inv.Command)
	outcome := r.executor.Run(ctx, inv)
	result := tc.Evaluate(outcome)

	span.SetAttributes(
		attribute.String("test", tc.ID),
		attribute.Int("exit_code", outcome.ExitCode),
		attribute.Bool("passed", result.Passed),
	)
	metrics.RecordTest(runID, tc.ID, tc.Policy.String(), result.Status)

	r.log.Info("Test finished",
		"test", tc.ID,
		"exit_code", outcome.ExitCode,
		"status", result.Status,
		"duration", outcome.Duration)
	return result
}

// checkBinary verifies the subject binary exists and carries an execute
// bit before any catalog entry is attempted.
func checkBinary(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("subject binary not found at %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("subject binary path %s is a directory", path)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("subject binary %s is not executable", path)
	}
	return nil
}

var _ SuiteRunner = &suiteRunner{}
