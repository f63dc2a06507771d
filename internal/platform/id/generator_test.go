package id

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator(t *testing.T) {
	g := NewUUIDGenerator()
	first, err := g.NewID()
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	second, _ := g.NewID()
	if first == second {
		t.Fatalf("expected distinct ids")
	}
	parsed, err := uuid.Parse(first)
	if err != nil || parsed.Version() != 7 {
		t.Fatalf("expected uuid v7, got %q (%v)", first, err)
	}
}

func TestSequence(t *testing.T) {
	s := NewSequence("a", "b")
	for _, want := range []string{"a", "b"} {
		got, err := s.NewID()
		if err != nil || got != want {
			t.Fatalf("NewID = %q, %v; want %q", got, err, want)
		}
	}
	if _, err := s.NewID(); err == nil {
		t.Fatalf("expected exhausted sequence to fail")
	}
}
