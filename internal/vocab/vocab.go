// Package vocab defines the closed domain vocabulary for job updates:
// the recognized update types, the canonical production stages, and the
// mapping from update types to persisted project fields.
package vocab

// UpdateType tags the kind of fact an update message conveys.
type UpdateType string

const (
	TypeStage      UpdateType = "stage"
	TypeStatus     UpdateType = "status"
	TypeDueDate    UpdateType = "due_date"
	TypeLiveDate   UpdateType = "live_date"
	TypeWithClient UpdateType = "with_client"
)

// Types lists every recognized update type. Membership here, not string
// shape, decides whether a classifier-emitted type is accepted.
var Types = []UpdateType{TypeStage, TypeStatus, TypeDueDate, TypeLiveDate, TypeWithClient}

// Stages is the canonical set of production stages, in pipeline order.
// Fuzzy matches resolve ties to the earliest entry.
var Stages = []string{
	"Brief",
	"Concept",
	"Craft",
	"Review",
	"With Client",
	"Delivery",
	"Live",
}

// projectFields maps update types to the Airtable Projects field they patch.
// status is deliberately absent: it is log-only and never mutates the
// project record. due_date is absent because it belongs to the update
// record, not the project.
var projectFields = map[UpdateType]string{
	TypeStage:      "Stage",
	TypeLiveDate:   "Live Date",
	TypeWithClient: "With Client?",
}

// KnownType reports whether s names a recognized update type.
func KnownType(s string) bool {
	for _, t := range Types {
		if string(t) == s {
			return true
		}
	}
	return false
}

// ProjectField returns the persisted project field for t, if any.
func ProjectField(t UpdateType) (string, bool) {
	f, ok := projectFields[t]
	return f, ok
}
