// Package types contains the shared data model for the acceptance harness.
package types

import "time"

// HarnessFailureCode is the exit status reserved for outcomes the harness
// synthesizes itself: timeouts, spawn failures and internal errors.
const HarnessFailureCode = -1

// BinaryToken is the placeholder in catalog command lines that the runner
// expands to the subject binary path.
const BinaryToken = "{{bin}}"

// Invocation describes a single shell command to run against the subject
// binary. Immutable once defined.
type Invocation struct {
	Command     string        // literal command line, may contain BinaryToken
	Timeout     time.Duration // zero means the executor's default applies
	Description string
}

// Outcome captures everything observable about one command invocation. It
// is created once per invocation and never mutated afterwards. All failure
// modes of the execution primitive are represented here as data.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
}

// Combined returns the stdout segment followed by the stderr segment. The
// two streams are not interleaved by wall clock.
func (o Outcome) Combined() string {
	return o.Stdout + o.Stderr
}
