package guid

import (
	"errors"
	"strings"
	"testing"
)

func TestNewIsUniqueAndFormatted(t *testing.T) {
	a, b := New(), New()
	if a == b {
		t.Fatalf("expected distinct guids, got %s twice", a)
	}
	s := a.String()
	if len(s) != Len {
		t.Fatalf("expected %d chars, got %d (%s)", Len, len(s), s)
	}
	if strings.ToLower(s) != s {
		t.Fatalf("expected lowercase hex, got %s", s)
	}
}

func TestParseRoundTrip(t *testing.T) {
	g := New()
	got, err := Parse(g.String())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got != g {
		t.Fatalf("round trip mismatch: %s != %s", got, g)
	}
}

func TestParseAcceptsDashedForm(t *testing.T) {
	got, err := Parse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.String() != "6ba7b8109dad11d180b400c04fd430c8" {
		t.Fatalf("unexpected value %s", got)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", "{6ba7b810-9dad-11d1-80b4-00c04fd430c8}"} {
		if _, err := Parse(in); !errors.Is(err, ErrInvalid) {
			t.Fatalf("Parse(%q): expected ErrInvalid, got %v", in, err)
		}
	}
}

func TestZero(t *testing.T) {
	if !Zero.IsZero() {
		t.Fatal("Zero should report IsZero")
	}
	if New().IsZero() {
		t.Fatal("New should not be zero")
	}
	if Zero.String() != strings.Repeat("0", Len) {
		t.Fatalf("unexpected zero form %s", Zero)
	}
}
