// Package readiness reduces a completed suite report to a release verdict.
package readiness

import (
	"github.com/ethereum/go-ethereum/log"

	"github.com/hrirkslab/context-server-acceptor/exitcodes"
	"github.com/hrirkslab/context-server-acceptor/types"
)

// Tier is the harness's final verdict on the subject binary.
type Tier int

const (
	TierNotReady Tier = iota
	TierMostlyReady
	TierReady
)

// Release thresholds, in percent. This is the harness's core business
// rule: ready requires every criterion plus a 90% pass rate, mostly-ready
// tolerates criterion failures down to a 70% pass rate, anything below is
// not ready.
const (
	ReadyPassRate       = 90.0
	MostlyReadyPassRate = 70.0
)

// String provides a string representation of Tier.
func (t Tier) String() string {
	switch t {
	case TierReady:
		return "ready"
	case TierMostlyReady:
		return "mostly-ready"
	default:
		return "not-ready"
	}
}

// Acceptable reports whether the tier maps to a zero process exit status.
// Mostly-ready is deliberately acceptable: the hard failure signal is
// reserved for suites scoring below the mostly-ready threshold.
func (t Tier) Acceptable() bool {
	return t != TierNotReady
}

// ExitCode maps the tier to the harness's process exit status.
func (t Tier) ExitCode() int {
	if t.Acceptable() {
		return exitcodes.Success
	}
	return exitcodes.NotReady
}

// Criterion is a named boolean derived from one or more suite report
// entries. Criteria are declared independently of the test cases that
// satisfy them; a reference to a case that never ran resolves to false.
type Criterion struct {
	ID          string
	Description string
	Requires    []string // test case IDs that must all have passed
}

// Resolve evaluates the criterion against a report. Absence is never
// treated as success.
func (c Criterion) Resolve(report *types.SuiteReport) bool {
	if len(c.Requires) == 0 {
		return false
	}
	for _, id := range c.Requires {
		res, ok := report.Get(id)
		if !ok || !res.Passed {
			return false
		}
	}
	return true
}

// CriterionResult is one resolved checklist entry.
type CriterionResult struct {
	Criterion Criterion
	Satisfied bool
}

// Verdict is the evaluator's complete output for one run.
type Verdict struct {
	PassRate  float64
	Stats     types.ReportStats
	Checklist []CriterionResult
	Tier      Tier
}

// Evaluator applies the three-tier decision policy to suite reports.
type Evaluator struct {
	criteria []Criterion
	log      log.Logger
}

// NewEvaluator creates an evaluator over a fixed criterion catalog.
func NewEvaluator(criteria []Criterion, logger log.Logger) *Evaluator {
	if logger == nil {
		logger = log.Root()
	}
	return &Evaluator{criteria: criteria, log: logger}
}

// Evaluate computes the pass rate, resolves every criterion by result
// lookup, and applies the tier policy in strict order: ready, then
// mostly-ready, then not-ready.
func (e *Evaluator) Evaluate(report *types.SuiteReport) *Verdict {
	v := &Verdict{
		PassRate: report.PassRate(),
		Stats:    report.Stats(),
	}

	allCriteria := true
	for _, c := range e.criteria {
		ok := c.Resolve(report)
		if !ok {
			allCriteria = false
			e.log.Debug("Readiness criterion unsatisfied", "criterion", c.ID)
		}
		v.Checklist = append(v.Checklist, CriterionResult{Criterion: c, Satisfied: ok})
	}

	switch {
	case allCriteria && v.PassRate >= ReadyPassRate:
		v.Tier = TierReady
	case v.PassRate >= MostlyReadyPassRate:
		v.Tier = TierMostlyReady
	default:
		v.Tier = TierNotReady
	}

	e.log.Info("Readiness evaluated",
		"pass_rate", v.PassRate,
		"passed", v.Stats.Passed,
		"total", v.Stats.Total,
		"tier", v.Tier)
	return v
}
