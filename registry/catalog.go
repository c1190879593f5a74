package registry

import (
	"time"

	"github.com/hrirkslab/context-server-acceptor/readiness"
	"github.com/hrirkslab/context-server-acceptor/types"
)

// DefaultCaseTimeout bounds catalog entries that carry no explicit
// deadline.
const DefaultCaseTimeout = 60 * time.Second

// DefaultCatalog returns the built-in acceptance catalog for the
// context-server command line interface. Cases run in declaration order;
// later entries may observe on-disk side effects of earlier ones.
func DefaultCatalog() []types.TestCase {
	return []types.TestCase{
		{
			ID:          "help",
			DisplayName: "Help Command",
			Invocation: types.Invocation{
				Command:     "{{bin}} --help",
				Timeout:     30 * time.Second,
				Description: "Check for all commands and features in help output",
			},
			Policy:        types.PolicyDefault,
			RequireChecks: true,
			Checks: []types.Check{
				{Name: "serve command", Contains: "serve"},
				{Name: "query command", Contains: "query"},
				{Name: "list command", Contains: "list"},
				{Name: "search command", Contains: "search"},
				{Name: "get command", Contains: "get"},
				{Name: "examples section", Contains: "example"},
			},
		},
		{
			ID:          "query-json",
			DisplayName: "Query Format - JSON",
			Invocation: types.Invocation{
				Command:     `{{bin}} query -p default -f json 2>&1 | head -20`,
				Description: "Test query with JSON output format",
			},
			Policy: types.PolicyDefault,
			Checks: []types.Check{
				{Name: "status field present", Contains: `"status"`},
			},
		},
		{
			ID:          "query-text",
			DisplayName: "Query Format - Text",
			Invocation: types.Invocation{
				Command:     `{{bin}} query -p default -f text 2>&1 | head -10`,
				Description: "Test query with text output format",
			},
			Policy: types.PolicyDefault,
		},
		{
			ID:          "query-yaml",
			DisplayName: "Query Format - YAML",
			Invocation: types.Invocation{
				Command:     `{{bin}} query -p default -f yaml 2>&1 | head -10`,
				Description: "Test query with YAML output format",
			},
			Policy: types.PolicyDefault,
		},
		{
			ID:          "search-encryption",
			DisplayName: "Search - Encryption",
			Invocation: types.Invocation{
				Command:     `{{bin}} search encryption -p default 2>&1`,
				Description: "Search for encryption-related contexts",
			},
			Policy: types.PolicyLenient,
		},
		{
			ID:          "search-payment",
			DisplayName: "Search - Payment",
			Invocation: types.Invocation{
				Command:     `{{bin}} search payment -p default 2>&1`,
				Description: "Search for payment-related contexts",
			},
			Policy: types.PolicyLenient,
		},
		{
			ID:          "search-user",
			DisplayName: "Search - User",
			Invocation: types.Invocation{
				Command:     `{{bin}} search user -p default 2>&1`,
				Description: "Search for user-related contexts",
			},
			Policy: types.PolicyLenient,
		},
		{
			ID:          "list-features",
			DisplayName: "List Features",
			Invocation: types.Invocation{
				Command:     `{{bin}} list feature -p default 2>&1 | head -15`,
				Description: "List all features with proper formatting",
			},
			Policy: types.PolicyLenient,
		},
		{
			ID:          "get-by-id",
			DisplayName: "Get Command",
			Invocation: types.Invocation{
				Command:     `{{bin}} get rule-001 -p default 2>&1`,
				Description: "Informational probe; output surfaced for human review",
			},
			Policy: types.PolicyAlwaysPass,
		},
		{
			ID:          "error-handling",
			DisplayName: "Error Handling",
			Invocation: types.Invocation{
				Command:     `{{bin}} get nonexistent -p default 2>&1`,
				Description: "A nonexistent ID must fail gracefully",
			},
			Policy:  types.PolicyInverse,
			Markers: []string{"not found", "error"},
		},
	}
}

// DefaultCriteria returns the built-in production readiness checklist.
// Criteria reference catalog entries by ID; a reference to a case that
// never ran resolves to failed.
func DefaultCriteria() []readiness.Criterion {
	return []readiness.Criterion{
		{
			ID:          "help-functional",
			Description: "Help command functional",
			Requires:    []string{"help"},
		},
		{
			ID:          "query-formats",
			Description: "Query output formats working",
			Requires:    []string{"query-json", "query-text", "query-yaml"},
		},
		{
			ID:          "search-commands",
			Description: "Search across entity types working",
			Requires:    []string{"search-encryption", "search-payment", "search-user"},
		},
		{
			ID:          "list-entities",
			Description: "List features working",
			Requires:    []string{"list-features"},
		},
		{
			ID:          "error-handling",
			Description: "Error handling proper",
			Requires:    []string{"error-handling"},
		},
	}
}
