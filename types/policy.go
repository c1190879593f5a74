package types

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy selects the rule used to decide whether an Outcome counts as a
// pass. It is a closed set; unknown values are rejected at catalog load.
type Policy string

const (
	// PolicyDefault passes iff the exit status is zero.
	PolicyDefault Policy = "default"
	// PolicyInverse validates graceful failure: it passes when the exit
	// status is nonzero, or the combined output contains one of the case's
	// marker phrases.
	PolicyInverse Policy = "inverse"
	// PolicyLenient passes when the exit status is zero, or the combined
	// output does not mention "error". Advisory nonzero exits are
	// tolerated.
	PolicyLenient Policy = "lenient"
	// PolicyAlwaysPass marks informational probes whose output is surfaced
	// for human review but never gates release.
	PolicyAlwaysPass Policy = "always-pass"
)

const errorToken = "error"

// String implements the Stringer interface for Policy.
func (p Policy) String() string {
	return string(p)
}

// Valid reports whether p is one of the known policies.
func (p Policy) Valid() bool {
	switch p {
	case PolicyDefault, PolicyInverse, PolicyLenient, PolicyAlwaysPass:
		return true
	}
	return false
}

// UnmarshalYAML parses a policy name, defaulting empty to PolicyDefault.
func (p *Policy) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*p = PolicyDefault
		return nil
	}
	parsed := Policy(s)
	if !parsed.Valid() {
		return fmt.Errorf("unknown policy %q", s)
	}
	*p = parsed
	return nil
}

// Evaluate applies the policy to an outcome. Substring matching is
// performed on lowercased text so marker probes are never defeated by
// casing differences.
func (p Policy) Evaluate(outcome Outcome, markers []string) bool {
	combined := strings.ToLower(outcome.Combined())
	switch p {
	case PolicyInverse:
		if outcome.ExitCode != 0 {
			return true
		}
		for _, m := range markers {
			if strings.Contains(combined, strings.ToLower(m)) {
				return true
			}
		}
		return false
	case PolicyLenient:
		return outcome.ExitCode == 0 || !strings.Contains(combined, errorToken)
	case PolicyAlwaysPass:
		return true
	default:
		return outcome.ExitCode == 0
	}
}
