// Package compose renders the two textual artifacts from normalized facts.
// Rendering is template-driven and deterministic: identical facts always
// produce identical strings, regardless of the source text.
package compose

import (
	"strings"
	"time"

	"github.com/hunchagency/dotupdate/internal/normalize"
	"github.com/hunchagency/dotupdate/internal/vocab"
)

// teamsPrefix marks announcement lines in the Teams channel.
const teamsPrefix = "UPDATE | "

// Output holds the rendered artifacts.
type Output struct {
	// AirtableUpdate is the terse log line written to the Updates table.
	AirtableUpdate string

	// TeamsPost is the announcement line for the Teams channel.
	TeamsPost string
}

// Render builds one clause per fact, in order, and joins them. Facts that
// failed confident normalization still render with their raw value: low
// confidence suppresses structured persistence, never visibility.
func Render(facts []normalize.Fact) Output {
	clauses := make([]string, 0, len(facts))
	for _, f := range facts {
		if c := clause(f); c != "" {
			clauses = append(clauses, c)
		}
	}
	line := strings.Join(clauses, " ")
	out := Output{AirtableUpdate: line}
	if line != "" {
		out.TeamsPost = teamsPrefix + line
	}
	return out
}

func clause(f normalize.Fact) string {
	switch f.Type {
	case vocab.TypeStage:
		return "Moving to " + f.Value + "."

	case vocab.TypeDueDate:
		if d, ok := parseISO(f); ok {
			return "Due " + d.Format("Mon") + "."
		}
		return "Due " + f.Value + "."

	case vocab.TypeLiveDate:
		if d, ok := parseISO(f); ok {
			return "Live " + d.Format("2 Jan") + "."
		}
		return "Live " + f.Value + "."

	case vocab.TypeWithClient:
		if !f.Confident {
			return "With client: " + f.Value + "."
		}
		if f.Value == "yes" {
			return "With client."
		}
		return "Back from client."

	case vocab.TypeStatus:
		return f.Value
	}
	return ""
}

func parseISO(f normalize.Fact) (time.Time, bool) {
	if !f.Confident {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", f.Value)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
