// Package exitcodes defines the standard exit codes used by the acceptor.
package exitcodes

// Exit code constants used by the application
// These constants define the exit codes that the application uses to
// indicate various states when it exits:
//
// * Success (0): Used for the ready and mostly-ready verdicts
// * NotReady (1): Used when the subject binary scored a not-ready verdict
// * RuntimeErr (2): Used for runtime errors such as panics, bad configuration or other failures
const (
	Success    = 0 // Ready or mostly-ready verdict
	NotReady   = 1 // Not-ready verdict
	RuntimeErr = 2 // Runtime errors or bad configuration
)
