package main

import (
	"strings"
	"testing"
)

func TestVariantsListing(t *testing.T) {
	out, _, err := runCLI(t, []string{"variants", "aB1"}, "")
	if err != nil {
		t.Fatalf("variants: %v", err)
	}
	got := strings.Fields(out)
	want := []string{"ab1", "aB1", "Ab1", "AB1"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}

	out, _, err = runCLI(t, []string{"variants", "--count", "password"}, "")
	if err != nil {
		t.Fatalf("variants --count: %v", err)
	}
	if strings.TrimSpace(out) != "256" {
		t.Fatalf("expected 256 variants, got %q", out)
	}

	if _, _, err := runCLI(t, []string{"variants", strings.Repeat("a", 20)}, ""); err == nil {
		t.Fatal("expected listing of 2^20 variants to be refused")
	}
}
