package config

import "testing"

func TestChecksum_DeterministicAcrossMapOrder(t *testing.T) {
	a := map[string]int{"b": 1, "a": 0}
	b := map[string]int{"a": 0, "b": 1}

	s1, err := Checksum(a)
	if err != nil {
		t.Fatalf("Checksum(a): %v", err)
	}
	s2, err := Checksum(b)
	if err != nil {
		t.Fatalf("Checksum(b): %v", err)
	}
	if s1 != s2 {
		t.Fatalf("expected same checksum, got %q vs %q", s1, s2)
	}
	if len(s1) != 6 {
		t.Fatalf("expected 6-char checksum, got %q (len=%d)", s1, len(s1))
	}
}

func TestChecksum_ChangesWhenPayloadChanges(t *testing.T) {
	type entry struct {
		Title  string `json:"title"`
		Source string `json:"source"`
	}
	s1, err := Checksum([]entry{{Title: "boot", Source: "Nanos"}})
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	s2, err := Checksum([]entry{{Title: "boot", Source: "OSv"}})
	if err != nil {
		t.Fatalf("Checksum after change: %v", err)
	}
	if s1 == s2 {
		t.Fatalf("expected checksum to change, got %q", s1)
	}
}

func TestChecksum_Nil(t *testing.T) {
	s, err := Checksum(nil)
	if err != nil || s != "" {
		t.Fatalf("expected empty checksum for nil, got %q, %v", s, err)
	}
}
