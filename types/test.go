package types

import "strings"

// Check is a named substring probe over an invocation's combined output.
// Checks are evaluated independently of the case's policy.
type Check struct {
	Name     string `yaml:"name"`
	Contains string `yaml:"contains"`
}

// TestCase pairs a command invocation with the rule for judging its
// outcome. IDs are unique within a catalog and are the only key criteria
// may reference; the display name is presentation-only.
type TestCase struct {
	ID            string
	DisplayName   string
	Invocation    Invocation
	Policy        Policy
	Markers       []string // marker phrases for PolicyInverse
	Checks        []Check
	RequireChecks bool // overall success additionally requires every check
}

// Name returns the display name, falling back to the ID.
func (tc TestCase) Name() string {
	if tc.DisplayName != "" {
		return tc.DisplayName
	}
	return tc.ID
}

// Evaluate judges an outcome against the case's policy and sub-checks. It
// is a pure function of the outcome: no re-invocation, no hidden state.
func (tc TestCase) Evaluate(outcome Outcome) *TestResult {
	combined := strings.ToLower(outcome.Combined())

	checks := make([]CheckResult, 0, len(tc.Checks))
	allChecks := true
	for _, c := range tc.Checks {
		ok := strings.Contains(combined, strings.ToLower(c.Contains))
		checks = append(checks, CheckResult{Name: c.Name, Passed: ok})
		allChecks = allChecks && ok
	}

	passed := tc.Policy.Evaluate(outcome, tc.Markers)
	if tc.RequireChecks && !allChecks {
		passed = false
	}

	status := TestStatusFail
	if passed {
		status = TestStatusPass
	}

	return &TestResult{
		CaseID:      tc.ID,
		DisplayName: tc.Name(),
		Outcome:     outcome,
		Passed:      passed,
		Checks:      checks,
		Status:      status,
		Duration:    outcome.Duration,
	}
}
