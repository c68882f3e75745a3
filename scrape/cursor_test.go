package scrape

import "testing"

func TestCursor(t *testing.T) {
	c := NewCursor("one\r\ntwo\nthree\nfour")

	if got := c.Peek(); got != "one" {
		t.Errorf("Peek = %q, want %q (and no \\r)", got, "one")
	}
	if got := c.Next(); got != "one" {
		t.Errorf("Next = %q", got)
	}
	c.Skip(1)
	if got := c.Take(5); len(got) != 2 || got[0] != "three" || got[1] != "four" {
		t.Errorf("Take(5) = %v, want the two remaining lines", got)
	}
	if c.More() {
		t.Error("cursor should be exhausted")
	}
	if got := c.Next(); got != "" {
		t.Errorf("Next past end = %q, want empty", got)
	}
}

func TestTextBetween(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		left  string
		right string
		want  string
		ok    bool
	}{
		{"simple", `id=123&x`, "id=", "&", "123", true},
		{"missing left", `x=1`, "id=", "&", "", false},
		{"missing right", `id=123`, "id=", "&", "", false},
		{"empty value", `id=&`, "id=", "&", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := textBetween(tt.line, tt.left, tt.right)
			if got != tt.want || ok != tt.ok {
				t.Errorf("textBetween = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
