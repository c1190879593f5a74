// Package registry manages the test catalog and readiness criteria for a
// harness run. The built-in catalog can be replaced wholesale by a YAML
// file, so predicate policies are configuration, not code.
package registry

import (
	"os"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hrirkslab/context-server-acceptor/readiness"
	"github.com/hrirkslab/context-server-acceptor/types"
)

// Registry holds the resolved catalog for one run.
type Registry struct {
	config   Config
	tests    []types.TestCase
	criteria []readiness.Criterion
}

// Config contains registry configuration.
type Config struct {
	Log            log.Logger
	CatalogFile    string // optional; empty selects the built-in catalog
	DefaultTimeout time.Duration
}

// NewRegistry creates a registry, loading and validating the catalog.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultCaseTimeout
	}

	r := &Registry{config: cfg}

	if cfg.CatalogFile == "" {
		r.tests = DefaultCatalog()
		r.criteria = DefaultCriteria()
		cfg.Log.Debug("Registry loaded built-in catalog", "tests", len(r.tests), "criteria", len(r.criteria))
	} else {
		if err := r.loadCatalog(cfg.CatalogFile); err != nil {
			return nil, errors.Wrapf(err, "failed to load catalog %s", cfg.CatalogFile)
		}
		cfg.Log.Debug("Registry loaded catalog file", "path", cfg.CatalogFile, "tests", len(r.tests), "criteria", len(r.criteria))
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	r.applyDefaultTimeouts()
	r.warnDanglingCriteria()

	return r, nil
}

// TestCases returns the catalog entries in declaration order.
func (r *Registry) TestCases() []types.TestCase {
	return append([]types.TestCase(nil), r.tests...)
}

// Criteria returns the readiness criteria in declaration order.
func (r *Registry) Criteria() []readiness.Criterion {
	return append([]readiness.Criterion(nil), r.criteria...)
}

// catalogFile is the YAML shape of an external catalog.
type catalogFile struct {
	Tests    []testConfig      `yaml:"tests"`
	Criteria []criterionConfig `yaml:"criteria"`
}

type testConfig struct {
	ID            string        `yaml:"id"`
	Name          string        `yaml:"name,omitempty"`
	Command       string        `yaml:"command"`
	Description   string        `yaml:"description,omitempty"`
	Timeout       durationValue `yaml:"timeout,omitempty"`
	Policy        types.Policy  `yaml:"policy,omitempty"`
	Markers       []string      `yaml:"markers,omitempty"`
	Checks        []types.Check `yaml:"checks,omitempty"`
	RequireChecks bool          `yaml:"require_checks,omitempty"`
}

type criterionConfig struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description,omitempty"`
	Requires    []string `yaml:"requires"`
}

// durationValue accepts Go duration strings ("30s") or integer seconds.
type durationValue time.Duration

func (d *durationValue) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, perr := time.ParseDuration(s)
		if perr != nil {
			return errors.Wrapf(perr, "invalid duration %q", s)
		}
		*d = durationValue(parsed)
		return nil
	}
	var secs int64
	if err := value.Decode(&secs); err != nil {
		return errors.Errorf("invalid duration value %q", value.Value)
	}
	*d = durationValue(time.Duration(secs) * time.Second)
	return nil
}

func (r *Registry) loadCatalog(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read catalog file")
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return errors.Wrap(err, "failed to parse catalog file")
	}
	if len(cf.Tests) == 0 {
		return errors.New("catalog declares no tests")
	}

	tests := make([]types.TestCase, 0, len(cf.Tests))
	for _, tc := range cf.Tests {
		policy := tc.Policy
		if policy == "" {
			policy = types.PolicyDefault
		}
		tests = append(tests, types.TestCase{
			ID:          tc.ID,
			DisplayName: tc.Name,
			Invocation: types.Invocation{
				Command:     tc.Command,
				Timeout:     time.Duration(tc.Timeout),
				Description: tc.Description,
			},
			Policy:        policy,
			Markers:       tc.Markers,
			Checks:        tc.Checks,
			RequireChecks: tc.RequireChecks,
		})
	}

	criteria := make([]readiness.Criterion, 0, len(cf.Criteria))
	for _, cc := range cf.Criteria {
		criteria = append(criteria, readiness.Criterion{
			ID:          cc.ID,
			Description: cc.Description,
			Requires:    cc.Requires,
		})
	}

	r.tests = tests
	r.criteria = criteria
	return nil
}

// validate enforces catalog well-formedness: stable unique IDs, runnable
// commands, known policies.
func (r *Registry) validate() error {
	seen := make(map[string]bool, len(r.tests))
	for _, tc := range r.tests {
		if tc.ID == "" {
			return errors.New("test case with empty ID")
		}
		if seen[tc.ID] {
			return errors.Errorf("duplicate test case ID %q", tc.ID)
		}
		seen[tc.ID] = true
		if tc.Invocation.Command == "" {
			return errors.Errorf("test case %q has no command", tc.ID)
		}
		if !tc.Policy.Valid() {
			return errors.Errorf("test case %q has unknown policy %q", tc.ID, tc.Policy)
		}
	}

	critSeen := make(map[string]bool, len(r.criteria))
	for _, c := range r.criteria {
		if c.ID == "" {
			return errors.New("criterion with empty ID")
		}
		if critSeen[c.ID] {
			return errors.Errorf("duplicate criterion ID %q", c.ID)
		}
		critSeen[c.ID] = true
	}
	return nil
}

func (r *Registry) applyDefaultTimeouts() {
	for i := range r.tests {
		if r.tests[i].Invocation.Timeout <= 0 {
			r.tests[i].Invocation.Timeout = r.config.DefaultTimeout
		}
	}
}

// warnDanglingCriteria flags criterion references that match no catalog
// entry. These are not fatal: the evaluator resolves them to failed, but a
// typo in a criterion should be visible before the run.
func (r *Registry) warnDanglingCriteria() {
	ids := make(map[string]bool, len(r.tests))
	for _, tc := range r.tests {
		ids[tc.ID] = true
	}
	for _, c := range r.criteria {
		for _, req := range c.Requires {
			if !ids[req] {
				r.config.Log.Warn("Criterion references unknown test case; it will resolve to failed",
					"criterion", c.ID, "requires", req)
			}
		}
	}
}
