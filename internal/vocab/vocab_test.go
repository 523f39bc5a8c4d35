package vocab

import "testing"

func TestKnownType(t *testing.T) {
	for _, typ := range Types {
		if !KnownType(string(typ)) {
			t.Errorf("KnownType(%q) = false, want true", typ)
		}
	}
	if KnownType("budget") {
		t.Error("KnownType should reject types outside the vocabulary")
	}
	if KnownType("") {
		t.Error("KnownType should reject the empty string")
	}
}

func TestProjectField(t *testing.T) {
	tests := []struct {
		typ   UpdateType
		field string
		ok    bool
	}{
		{TypeStage, "Stage", true},
		{TypeLiveDate, "Live Date", true},
		{TypeWithClient, "With Client?", true},
		{TypeStatus, "", false},
		{TypeDueDate, "", false},
	}
	for _, tt := range tests {
		field, ok := ProjectField(tt.typ)
		if ok != tt.ok || field != tt.field {
			t.Errorf("ProjectField(%q) = %q, %v; want %q, %v", tt.typ, field, ok, tt.field, tt.ok)
		}
	}
}
