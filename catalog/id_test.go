package catalog

import "testing"

func TestClassifyID(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		kind IDKind
		ok   bool
	}{
		{"zero is invalid", 0, KindRegular, false},
		{"negative is invalid", -5, KindRegular, false},
		{"first builtin", 1, KindBuiltin, true},
		{"last builtin", 9_999, KindBuiltin, true},
		{"first local", 10_000, KindLocal, true},
		{"last local", 99_999, KindLocal, true},
		{"first group", 100_000, KindGroup, true},
		{"last group", 999_999, KindGroup, true},
		{"first regular", 1_000_000, KindRegular, true},
		{"workshop id", 2_009_463_077, KindRegular, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := ClassifyID(tt.id)
			if ok != tt.ok {
				t.Fatalf("ClassifyID(%d) ok = %v, want %v", tt.id, ok, tt.ok)
			}
			if ok && kind != tt.kind {
				t.Errorf("ClassifyID(%d) = %v, want %v", tt.id, kind, tt.kind)
			}
		})
	}
}

func TestClassifyIDPartition(t *testing.T) {
	// Every valid ID maps to exactly one kind; the ranges may not overlap.
	boundaries := []int64{1, 9_999, 10_000, 99_999, 100_000, 999_999, 1_000_000, 1_000_001}
	counts := make(map[IDKind]int)
	for _, id := range boundaries {
		kind, ok := ClassifyID(id)
		if !ok {
			t.Fatalf("ClassifyID(%d) unexpectedly invalid", id)
		}
		counts[kind]++
	}
	if len(counts) != 4 {
		t.Errorf("expected all four kinds across boundaries, got %v", counts)
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		name         string
		id           int64
		allowBuiltin bool
		want         bool
	}{
		{"regular always valid", 2_000_000_000, false, true},
		{"builtin rejected by default", 1, false, false},
		{"builtin allowed explicitly", 1, true, true},
		{"local never valid", 10_001, true, false},
		{"group never valid", 100_001, true, false},
		{"zero never valid", 0, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidID(tt.id, tt.allowBuiltin); got != tt.want {
				t.Errorf("ValidID(%d, %v) = %v, want %v", tt.id, tt.allowBuiltin, got, tt.want)
			}
		})
	}
}

func TestModIDJSONRoundTrip(t *testing.T) {
	id, ok := NewModID(1_234_567)
	if !ok {
		t.Fatal("NewModID failed for valid id")
	}
	data, err := id.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(data) != "1234567" {
		t.Errorf("MarshalJSON = %s, want the bare legacy number", data)
	}

	var decoded ModID
	if err := decoded.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if decoded != id {
		t.Errorf("round trip = %+v, want %+v", decoded, id)
	}
}
