package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
)

const EnvVarPrefix = "ACCEPTOR"

var (
	Binary = &cli.StringFlag{
		Name:    "binary",
		Value:   "",
		Usage:   "Path to the subject binary under test",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "BINARY"),
	}
	Catalog = &cli.StringFlag{
		Name:    "catalog",
		Value:   "",
		Usage:   "Path to a YAML test catalog (defaults to the built-in catalog)",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "CATALOG"),
	}
	WorkDir = &cli.StringFlag{
		Name:    "workdir",
		Value:   ".",
		Usage:   "Working directory for command invocations",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "WORKDIR"),
	}
	LogDir = &cli.StringFlag{
		Name:    "logdir",
		Value:   "logs",
		Usage:   "Directory to store per-run artifacts",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "LOGDIR"),
	}
	PathPrefix = &cli.StringFlag{
		Name:    "path-prefix",
		Value:   "",
		Usage:   "Directory prepended to PATH for subject invocations",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "PATH_PREFIX"),
	}
	DefaultTimeout = &cli.DurationFlag{
		Name:    "timeout",
		Value:   60 * time.Second,
		Usage:   "Default timeout for individual invocations; catalog entries may override it",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "TIMEOUT"),
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		Usage:   "Interval between test runs; zero runs the suite once and exits",
		EnvVars: opservice.PrefixEnvVar(EnvVarPrefix, "RUN_INTERVAL"),
	}
)

var requiredFlags = []cli.Flag{
	Binary,
}

var optionalFlags = []cli.Flag{
	Catalog,
	WorkDir,
	LogDir,
	PathPrefix,
	DefaultTimeout,
	RunInterval,
}

// Flags contains the list of configuration options available to the binary.
var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	Flags = append(requiredFlags, optionalFlags...)
}

// CheckRequired checks that all required flags are set.
func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
