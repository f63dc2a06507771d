package main

import (
	"strings"
	"testing"
)

func TestParseSteps(t *testing.T) {
	if got, err := parseSteps(nil); err != nil || got != 1 {
		t.Fatalf("parseSteps(nil) = %d, %v; want 1", got, err)
	}
	if got, err := parseSteps([]string{" 3 "}); err != nil || got != 3 {
		t.Fatalf("parseSteps(3) = %d, %v", got, err)
	}
	for _, raw := range []string{"0", "-2", "x"} {
		if _, err := parseSteps([]string{raw}); err == nil {
			t.Fatalf("parseSteps(%q) expected error", raw)
		}
	}
}

func TestParseVersionAndTarget(t *testing.T) {
	if got, err := parseVersion("1775001600"); err != nil || got != 1775001600 {
		t.Fatalf("parseVersion = %d, %v", got, err)
	}
	if _, err := parseVersion("-1"); err == nil {
		t.Fatalf("expected negative version to fail")
	}
	if _, err := parseTarget("abc"); err == nil {
		t.Fatalf("expected invalid target to fail")
	}
}

func TestNormalizeDBURL(t *testing.T) {
	got := normalizeDBURL("postgres://u:p@localhost:5432/scores?sslmode=disable", true)
	if !strings.Contains(got, "disable_prepared_binary_result=yes") {
		t.Fatalf("expected flag in url, got %q", got)
	}

	dsn := "host=localhost dbname=scores"
	if got := normalizeDBURL(dsn, true); got != dsn {
		t.Fatalf("expected key/value dsn unchanged, got %q", got)
	}
}
