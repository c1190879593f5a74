package acceptor

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/log"

	"github.com/hrirkslab/context-server-acceptor/flags"
)

// Config holds the application configuration
type Config struct {
	BinaryPath     string        // Path to the subject binary under test
	CatalogFile    string        // Optional YAML catalog replacing the built-in one
	WorkDir        string        // Working directory for command invocations
	LogDir         string        // Directory to store per-run artifacts
	PathPrefix     string        // Directory prepended to PATH for invocations
	DefaultTimeout time.Duration // Default timeout for individual invocations
	RunInterval    time.Duration // Interval between test runs
	RunOnce        bool          // Indicates if the service should exit after one run
	Log            log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	binary := ctx.String(flags.Binary.Name)
	if binary == "" {
		return nil, errors.New("subject binary path is required")
	}
	absBinary, err := filepath.Abs(binary)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for binary '%s': %w", binary, err)
	}

	var absCatalog string
	if catalog := ctx.String(flags.Catalog.Name); catalog != "" {
		absCatalog, err = filepath.Abs(catalog)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for catalog '%s': %w", catalog, err)
		}
	}

	workDir := ctx.String(flags.WorkDir.Name)
	if workDir == "" {
		workDir = "."
	}
	absWorkDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for working directory '%s': %w", workDir, err)
	}

	logDir := ctx.String(flags.LogDir.Name)
	if logDir == "" {
		logDir = "logs"
	}
	absLogDir, err := filepath.Abs(logDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for log directory '%s': %w", logDir, err)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	return &Config{
		BinaryPath:     absBinary,
		CatalogFile:    absCatalog,
		WorkDir:        absWorkDir,
		LogDir:         absLogDir,
		PathPrefix:     ctx.String(flags.PathPrefix.Name),
		DefaultTimeout: ctx.Duration(flags.DefaultTimeout.Name),
		RunInterval:    runInterval,
		RunOnce:        runOnce,
		Log:            log,
	}, nil
}
