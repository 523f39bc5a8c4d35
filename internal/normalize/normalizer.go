// Package normalize maps raw candidate facts onto the canonical domain
// vocabulary. It is pure: no I/O, no clock access (the processing date is
// an argument), and it never fails — values that cannot be mapped degrade
// to low-confidence facts that keep their raw text.
package normalize

import (
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/hunchagency/dotupdate/internal/extract"
	"github.com/hunchagency/dotupdate/internal/vocab"
)

// MaxStatusLen caps free-text status values. Longer text is hard-truncated.
const MaxStatusLen = 280

// fuzzyThreshold is the maximum edit distance for a stage fuzzy match.
// Distance 2 absorbs a typo plus a case slip; anything looser starts
// matching unrelated stage names.
const fuzzyThreshold = 2

// Fact is a normalized update fact. Value is the canonical form: a stage
// name from the vocabulary, an ISO-8601 date, trimmed status text, or
// "yes"/"no" for with_client. When Confident is false, Value is the raw
// extracted text verbatim.
type Fact struct {
	Type      vocab.UpdateType
	Value     string
	Confident bool
}

// Normalize maps candidates to normalized facts, preserving extraction
// order. today anchors relative-date resolution. Duplicate types keep the
// first occurrence; empty status facts are dropped.
func Normalize(cands []extract.Candidate, today time.Time) []Fact {
	seen := make(map[vocab.UpdateType]bool)
	var out []Fact
	for _, c := range cands {
		if seen[c.Type] {
			continue
		}
		f, ok := normalizeOne(c, today)
		if !ok {
			continue
		}
		seen[c.Type] = true
		out = append(out, f)
	}
	return out
}

func normalizeOne(c extract.Candidate, today time.Time) (Fact, bool) {
	switch c.Type {
	case vocab.TypeStage:
		if stage, ok := MatchStage(c.RawValue); ok {
			return Fact{Type: c.Type, Value: stage, Confident: true}, true
		}
		return Fact{Type: c.Type, Value: strings.TrimSpace(c.RawValue)}, true

	case vocab.TypeDueDate, vocab.TypeLiveDate:
		if d, ok := ResolveDate(c.RawValue, today); ok {
			return Fact{Type: c.Type, Value: d.Format("2006-01-02"), Confident: true}, true
		}
		return Fact{Type: c.Type, Value: strings.TrimSpace(c.RawValue)}, true

	case vocab.TypeStatus:
		text := strings.TrimSpace(c.RawValue)
		if text == "" {
			return Fact{}, false
		}
		if r := []rune(text); len(r) > MaxStatusLen {
			text = string(r[:MaxStatusLen])
		}
		return Fact{Type: c.Type, Value: text, Confident: true}, true

	case vocab.TypeWithClient:
		if v, ok := parseWithClient(c.RawValue); ok {
			return Fact{Type: c.Type, Value: v, Confident: true}, true
		}
		return Fact{Type: c.Type, Value: strings.TrimSpace(c.RawValue)}, true
	}
	return Fact{}, false
}

// ProjectValue converts a fact's canonical value to the type the project
// record stores: bool for with_client, string otherwise.
func ProjectValue(f Fact) any {
	if f.Type == vocab.TypeWithClient {
		return f.Value == "yes"
	}
	return f.Value
}

// MatchStage resolves raw text to a canonical stage name. Matching is
// case-insensitive exact first, then fuzzy: substring containment or edit
// distance within fuzzyThreshold. Ties resolve to the earliest stage in
// vocabulary order.
func MatchStage(raw string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	if needle == "" {
		return "", false
	}

	for _, stage := range vocab.Stages {
		if needle == strings.ToLower(stage) {
			return stage, true
		}
	}

	best := ""
	bestDist := fuzzyThreshold + 1
	for _, stage := range vocab.Stages {
		haystack := strings.ToLower(stage)
		if len(needle) >= 3 && (strings.Contains(needle, haystack) || strings.Contains(haystack, needle)) {
			return stage, true
		}
		if d := levenshtein.ComputeDistance(needle, haystack); d < bestDist {
			bestDist = d
			best = stage
		}
	}
	if bestDist <= fuzzyThreshold {
		return best, true
	}
	return "", false
}

// noiseWords are leading tokens the classifier leaves attached to verbatim
// date fragments ("due Friday", "live date 20 Jan").
var noiseWords = map[string]bool{
	"due": true, "live": true, "date": true, "by": true, "on": true, "the": true,
}

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// absoluteLayouts are the accepted absolute date forms. Layouts without a
// year infer the current year, rolling forward when the date has passed.
var absoluteLayouts = []string{
	"2006-01-02",
	"2 Jan 2006",
	"2 January 2006",
	"2 Jan",
	"2 January",
	"Jan 2",
	"January 2",
}

// ResolveDate parses the fixed grammar of absolute and relative date forms
// relative to today. It returns false for anything outside the grammar.
func ResolveDate(raw string, today time.Time) (time.Time, bool) {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	words := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	for len(words) > 0 && noiseWords[words[0]] {
		words = words[1:]
	}
	if len(words) == 0 {
		return time.Time{}, false
	}
	s := strings.Join(words, " ")

	switch s {
	case "today":
		return today, true
	case "tomorrow":
		return today.AddDate(0, 0, 1), true
	}

	// "next friday" is the occurrence after the upcoming one.
	if len(words) == 2 && words[0] == "next" {
		if wd, ok := weekdays[words[1]]; ok {
			return nextWeekday(today, wd).AddDate(0, 0, 7), true
		}
	}

	// A bare day name is the next occurrence, today excluded.
	if wd, ok := weekdays[s]; ok {
		return nextWeekday(today, wd), true
	}

	for _, layout := range absoluteLayouts {
		t, err := time.Parse(layout, canonicalCase(s, layout))
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			t = time.Date(today.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			if t.Before(today) {
				t = t.AddDate(1, 0, 0)
			}
		}
		return t, true
	}

	return time.Time{}, false
}

// canonicalCase title-cases month names so lowercased input still parses
// against the reference layouts.
func canonicalCase(s, layout string) string {
	if !strings.ContainsAny(layout, "J") {
		return s
	}
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) >= 3 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func nextWeekday(today time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(today.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return today.AddDate(0, 0, days)
}

func parseWithClient(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "1", "with client", "sent to client":
		return "yes", true
	case "no", "n", "false", "0", "back", "back from client", "returned":
		return "no", true
	}
	return "", false
}
