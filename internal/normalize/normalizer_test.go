package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/hunchagency/dotupdate/internal/extract"
	"github.com/hunchagency/dotupdate/internal/vocab"
)

// monday is a fixed processing date: Monday 6 January 2025.
var monday = time.Date(2025, 1, 6, 10, 30, 0, 0, time.UTC)

func TestMatchStage(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		match bool
	}{
		{"Craft", "Craft", true},
		{"craft", "Craft", true},
		{"CRAFT", "Craft", true},
		{"Craftt", "Craft", true},
		{"crafy", "Craft", true},
		{"craft stage", "Craft", true},
		{"moving to review", "Review", true},
		{"with client", "With Client", true},
		{"Nonexistent Stage Name", "", false},
		{"", "", false},
		{"delivry", "Delivery", true},
	}
	for _, tt := range tests {
		got, ok := MatchStage(tt.raw)
		if ok != tt.match || got != tt.want {
			t.Errorf("MatchStage(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.match)
		}
	}
}

func TestResolveDate_Relative(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"today", "2025-01-06"},
		{"tomorrow", "2025-01-07"},
		{"Friday", "2025-01-10"},
		{"due Friday", "2025-01-10"},
		{"fri", "2025-01-10"},
		{"Monday", "2025-01-13"}, // today excluded, rolls a week
		{"next Friday", "2025-01-17"},
		{"Thursday", "2025-01-09"},
	}
	for _, tt := range tests {
		got, ok := ResolveDate(tt.raw, monday)
		if !ok {
			t.Errorf("ResolveDate(%q): no match", tt.raw)
			continue
		}
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("ResolveDate(%q) = %s, want %s", tt.raw, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestResolveDate_Absolute(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2025-01-20", "2025-01-20"},
		{"20 Jan", "2025-01-20"},
		{"live date 20 Jan", "2025-01-20"},
		{"20 January", "2025-01-20"},
		{"Jan 20", "2025-01-20"},
		{"20 jan", "2025-01-20"},
		{"3 March", "2025-03-03"},
		// Already passed this year: rolls to next year.
		{"2 Jan", "2026-01-02"},
		{"15 Dec 2025", "2025-12-15"},
	}
	for _, tt := range tests {
		got, ok := ResolveDate(tt.raw, monday)
		if !ok {
			t.Errorf("ResolveDate(%q): no match", tt.raw)
			continue
		}
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("ResolveDate(%q) = %s, want %s", tt.raw, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestResolveDate_Unparsable(t *testing.T) {
	for _, raw := range []string{"whenever", "the 32nd of Nevruary", "", "soonish"} {
		if _, ok := ResolveDate(raw, monday); ok {
			t.Errorf("ResolveDate(%q) should not resolve", raw)
		}
	}
}

func TestNormalize_Stage(t *testing.T) {
	facts := Normalize([]extract.Candidate{{Type: vocab.TypeStage, RawValue: "craft"}}, monday)
	if len(facts) != 1 {
		t.Fatalf("len = %d", len(facts))
	}
	if facts[0].Value != "Craft" || !facts[0].Confident {
		t.Errorf("fact = %+v", facts[0])
	}
}

func TestNormalize_UnmatchedStageKeepsRaw(t *testing.T) {
	facts := Normalize([]extract.Candidate{{Type: vocab.TypeStage, RawValue: "Nonexistent Stage Name"}}, monday)
	if len(facts) != 1 {
		t.Fatalf("len = %d", len(facts))
	}
	if facts[0].Confident {
		t.Error("unmatched stage must not be confident")
	}
	if facts[0].Value != "Nonexistent Stage Name" {
		t.Errorf("raw value not preserved: %q", facts[0].Value)
	}
}

func TestNormalize_UnparsableDateKeepsRaw(t *testing.T) {
	facts := Normalize([]extract.Candidate{{Type: vocab.TypeDueDate, RawValue: "whenever suits"}}, monday)
	if len(facts) != 1 || facts[0].Confident || facts[0].Value != "whenever suits" {
		t.Errorf("facts = %+v", facts)
	}
}

func TestNormalize_StatusTrimAndTruncate(t *testing.T) {
	long := strings.Repeat("x", MaxStatusLen+40)
	facts := Normalize([]extract.Candidate{{Type: vocab.TypeStatus, RawValue: "  " + long + "  "}}, monday)
	if len(facts) != 1 {
		t.Fatalf("len = %d", len(facts))
	}
	if !facts[0].Confident {
		t.Error("status should be confident")
	}
	if len(facts[0].Value) != MaxStatusLen {
		t.Errorf("len(value) = %d, want %d", len(facts[0].Value), MaxStatusLen)
	}
}

func TestNormalize_EmptyStatusDropped(t *testing.T) {
	facts := Normalize([]extract.Candidate{{Type: vocab.TypeStatus, RawValue: "   "}}, monday)
	if len(facts) != 0 {
		t.Errorf("empty status should be dropped, got %+v", facts)
	}
}

func TestNormalize_WithClient(t *testing.T) {
	tests := []struct {
		raw       string
		want      string
		confident bool
	}{
		{"yes", "yes", true},
		{"With Client", "yes", true},
		{"no", "no", true},
		{"back from client", "no", true},
		{"maybe later", "maybe later", false},
	}
	for _, tt := range tests {
		facts := Normalize([]extract.Candidate{{Type: vocab.TypeWithClient, RawValue: tt.raw}}, monday)
		if len(facts) != 1 {
			t.Fatalf("len = %d for %q", len(facts), tt.raw)
		}
		if facts[0].Value != tt.want || facts[0].Confident != tt.confident {
			t.Errorf("Normalize(with_client %q) = %+v", tt.raw, facts[0])
		}
	}
}

func TestNormalize_DuplicateTypeKeepsFirst(t *testing.T) {
	facts := Normalize([]extract.Candidate{
		{Type: vocab.TypeStage, RawValue: "Craft"},
		{Type: vocab.TypeStage, RawValue: "Review"},
	}, monday)
	if len(facts) != 1 || facts[0].Value != "Craft" {
		t.Errorf("facts = %+v", facts)
	}
}

func TestNormalize_OrderPreserved(t *testing.T) {
	facts := Normalize([]extract.Candidate{
		{Type: vocab.TypeStage, RawValue: "Craft"},
		{Type: vocab.TypeDueDate, RawValue: "Friday"},
		{Type: vocab.TypeLiveDate, RawValue: "20 Jan"},
	}, monday)
	if len(facts) != 3 {
		t.Fatalf("len = %d", len(facts))
	}
	want := []vocab.UpdateType{vocab.TypeStage, vocab.TypeDueDate, vocab.TypeLiveDate}
	for i, w := range want {
		if facts[i].Type != w {
			t.Errorf("facts[%d].Type = %q, want %q", i, facts[i].Type, w)
		}
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	cands := []extract.Candidate{
		{Type: vocab.TypeStage, RawValue: "craftt"},
		{Type: vocab.TypeDueDate, RawValue: "next friday"},
	}
	a := Normalize(cands, monday)
	b := Normalize(cands, monday)
	if len(a) != len(b) {
		t.Fatal("non-deterministic length")
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("facts differ at %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestProjectValue(t *testing.T) {
	if v := ProjectValue(Fact{Type: vocab.TypeWithClient, Value: "yes", Confident: true}); v != true {
		t.Errorf("with_client yes = %v, want true", v)
	}
	if v := ProjectValue(Fact{Type: vocab.TypeWithClient, Value: "no", Confident: true}); v != false {
		t.Errorf("with_client no = %v, want false", v)
	}
	if v := ProjectValue(Fact{Type: vocab.TypeStage, Value: "Craft", Confident: true}); v != "Craft" {
		t.Errorf("stage = %v, want Craft", v)
	}
}
