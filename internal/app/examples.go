package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Adda-Baaj/handle-probe/internal/logger"
	"github.com/Adda-Baaj/handle-probe/pkg/twitter"
)

// Requester issues one decoded request against the users API.
type Requester interface {
	Get(ctx context.Context, endpoint twitter.Endpoint, query twitter.Query) (*twitter.Result, error)
}

// Scenario is one demonstration query with the heading printed above it.
// Rule is the length of the dashed line under the titles; zero matches the
// widest title.
type Scenario struct {
	Titles   []string
	Rule     int
	Endpoint twitter.Endpoint
	Query    twitter.Query
}

// DefaultScenarios are the bundled demonstration queries.
func DefaultScenarios() []Scenario {
	return []Scenario{
		{
			Titles:   []string{"Basic lookup for a single user: neworganizing"},
			Rule:     45,
			Endpoint: twitter.Lookup,
			Query:    twitter.Query{"screen_name": "neworganizing"},
		},
		{
			Titles:   []string{"Multi-user lookup: neworganizing, noitoolbox, doritosloaded"},
			Rule:     57,
			Endpoint: twitter.Lookup,
			Query:    twitter.Query{"screen_name": "neworganizing,noitoolbox,doritosloaded"},
		},
		{
			Titles: []string{
				"Multi-user lookup: neworganizing, _a, doritosloaded, lkjawer9",
				"'_a' is a suspended account, 'lkjawer9' is not a registered account",
			},
			Rule:     67,
			Endpoint: twitter.Lookup,
			Query:    twitter.Query{"screen_name": "neworganizing,_a,doritosloaded,lkjawer9"},
		},
		{
			Titles:   []string{"Single user 'show': neworganizing"},
			Rule:     35,
			Endpoint: twitter.Show,
			Query:    twitter.Query{"screen_name": "neworganizing"},
		},
		{
			Titles:   []string{"Single user show for a suspended account: _a"},
			Rule:     46,
			Endpoint: twitter.Show,
			Query:    twitter.Query{"screen_name": "_a"},
		},
		{
			Titles:   []string{"Single user show for an unregistered account: lkjawer9"},
			Rule:     56,
			Endpoint: twitter.Show,
			Query:    twitter.Query{"screen_name": "lkjawer9"},
		},
		{
			Titles:   []string{"Example search for 'Senator Chuck Grassley'"},
			Rule:     45,
			Endpoint: twitter.Search,
			Query:    twitter.Query{"q": "Senator Chuck Grassley", "page": "1", "count": "5"},
		},
		{
			Titles:   []string{"Search for 'Vincent DeMarco Sheriff Suffolk County'"},
			Rule:     53,
			Endpoint: twitter.Search,
			Query:    twitter.Query{"q": "Vincent DeMarco Sheriff Suffolk County", "page": "1", "count": "5"},
		},
	}
}

// Examples replays a fixed list of scenarios and prints each response.
type Examples struct {
	client    Requester
	scenarios []Scenario
	log       logger.Logger
}

// NewExamples builds a runner. A nil scenario list selects DefaultScenarios.
func NewExamples(client Requester, scenarios []Scenario, log logger.Logger) *Examples {
	if scenarios == nil {
		scenarios = DefaultScenarios()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Examples{client: client, scenarios: scenarios, log: log}
}

// Run executes the scenarios in order, writing a heading and the indented
// JSON body of each response to w. API error bodies are printed like any
// other response; transport failures stop the run.
func (e *Examples) Run(ctx context.Context, w io.Writer) error {
	if e == nil || e.client == nil {
		return fmt.Errorf("examples runner is not initialized")
	}

	for i, sc := range e.scenarios {
		res, err := e.client.Get(ctx, sc.Endpoint, sc.Query)
		if err != nil {
			return fmt.Errorf("scenario %d (%s): %w", i+1, sc.Endpoint, err)
		}
		if err := writeScenario(w, i > 0, sc, res); err != nil {
			return fmt.Errorf("write scenario %d: %w", i+1, err)
		}

		e.log.DebugObj("example scenario completed", "example_scenario", map[string]any{
			"index":    i + 1,
			"endpoint": sc.Endpoint.String(),
			"kind":     res.Kind.String(),
			"status":   res.StatusCode,
		})
	}
	return nil
}

func writeScenario(w io.Writer, leadingBlank bool, sc Scenario, res *twitter.Result) error {
	var buf bytes.Buffer
	if leadingBlank {
		buf.WriteByte('\n')
	}
	rule := sc.Rule
	for _, title := range sc.Titles {
		buf.WriteString(title)
		buf.WriteByte('\n')
		if sc.Rule == 0 {
			rule = max(rule, len(title))
		}
	}
	buf.WriteString(strings.Repeat("-", rule))
	buf.WriteByte('\n')

	if err := json.Indent(&buf, res.Raw, "", "  "); err != nil {
		return fmt.Errorf("indent body: %w", err)
	}
	buf.WriteByte('\n')

	_, err := w.Write(buf.Bytes())
	return err
}
