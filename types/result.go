package types

import (
	"errors"
	"fmt"
	"time"
)

// TestStatus represents the terminal state of one test case attempt.
type TestStatus string

const (
	TestStatusPass TestStatus = "pass"
	TestStatusFail TestStatus = "fail"
)

// CheckResult records one named sub-check evaluation, in declaration order.
type CheckResult struct {
	Name   string
	Passed bool
}

// TestResult captures the outcome of a single test case run. It is owned
// exclusively by the SuiteReport that produced it.
type TestResult struct {
	CaseID      string
	DisplayName string
	Outcome     Outcome
	Passed      bool
	Checks      []CheckResult
	Status      TestStatus
	Duration    time.Duration
	Synthetic   bool // entries the harness records itself, e.g. missing binary
}

// SuiteReport is an insertion-ordered mapping from test case ID to result.
// Every entry corresponds to a case that was actually attempted; a case
// that never ran is simply absent, and its absence reads as unknown, never
// as passed.
type SuiteReport struct {
	order   []string
	results map[string]*TestResult
}

// NewSuiteReport creates an empty report.
func NewSuiteReport() *SuiteReport {
	return &SuiteReport{results: make(map[string]*TestResult)}
}

// Append records a result under its case ID, preserving insertion order.
func (r *SuiteReport) Append(res *TestResult) error {
	if res == nil {
		return errors.New("nil test result")
	}
	if res.CaseID == "" {
		return errors.New("test result has no case ID")
	}
	if _, ok := r.results[res.CaseID]; ok {
		return fmt.Errorf("duplicate test result %q", res.CaseID)
	}
	r.order = append(r.order, res.CaseID)
	r.results[res.CaseID] = res
	return nil
}

// Get looks up a result by case ID.
func (r *SuiteReport) Get(id string) (*TestResult, bool) {
	res, ok := r.results[id]
	return res, ok
}

// IDs returns the case IDs in execution order.
func (r *SuiteReport) IDs() []string {
	return append([]string(nil), r.order...)
}

// Results returns the results in execution order.
func (r *SuiteReport) Results() []*TestResult {
	out := make([]*TestResult, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.results[id])
	}
	return out
}

// Len returns the number of recorded results.
func (r *SuiteReport) Len() int {
	return len(r.order)
}

// ReportStats aggregates pass/fail counts for a report.
type ReportStats struct {
	Total  int
	Passed int
	Failed int
}

// Stats tallies the report's results.
func (r *SuiteReport) Stats() ReportStats {
	stats := ReportStats{Total: len(r.order)}
	for _, res := range r.results {
		if res.Passed {
			stats.Passed++
		} else {
			stats.Failed++
		}
	}
	return stats
}

// PassRate returns the percentage of passed entries. An empty report
// yields zero, never a division fault.
func (r *SuiteReport) PassRate() float64 {
	if len(r.order) == 0 {
		return 0
	}
	stats := r.Stats()
	return float64(stats.Passed) / float64(stats.Total) * 100
}
