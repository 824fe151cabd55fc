package roa

import (
	"testing"

	"github.com/Emeline-1/bgpsim/internal/ipaddr"
)

func mustPrefix(t *testing.T, s string) ipaddr.Prefix {
	t.Helper()
	p, err := ipaddr.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return p
}

func TestOutcomeUnknownWithNoCoveringROA(t *testing.T) {
	v := NewValidator()
	v.Load(nil)
	validity, routed := v.Outcome(mustPrefix(t, "1.2.0.0/16"), 100)
	if validity != UNKNOWN {
		t.Fatalf("validity = %s, want UNKNOWN", validity)
	}
	if routed != RoutedUnknown {
		t.Fatalf("routed = %s, want unknown", routed)
	}
	if validity.IsInvalid() {
		t.Fatal("UNKNOWN must never report IsInvalid() == true")
	}
}

func TestOutcomeValid(t *testing.T) {
	v := NewValidator()
	v.Load([]ROA{{Prefix: mustPrefix(t, "1.2.0.0/16"), OriginASN: 100, MaxLength: 24}})
	validity, routed := v.Outcome(mustPrefix(t, "1.2.3.0/24"), 100)
	if validity != VALID {
		t.Fatalf("validity = %s, want VALID", validity)
	}
	if routed != ROUTED {
		t.Fatalf("routed = %s, want ROUTED", routed)
	}
}

func TestOutcomeInvalidOrigin(t *testing.T) {
	v := NewValidator()
	v.Load([]ROA{{Prefix: mustPrefix(t, "1.2.0.0/16"), OriginASN: 100, MaxLength: 24}})
	validity, _ := v.Outcome(mustPrefix(t, "1.2.3.0/24"), 200)
	if validity != InvalidOrigin {
		t.Fatalf("validity = %s, want INVALID_ORIGIN", validity)
	}
	if !validity.IsInvalid() {
		t.Fatal("INVALID_ORIGIN must report IsInvalid() == true")
	}
}

func TestOutcomeInvalidLength(t *testing.T) {
	v := NewValidator()
	v.Load([]ROA{{Prefix: mustPrefix(t, "1.2.0.0/16"), OriginASN: 100, MaxLength: 20}})
	validity, _ := v.Outcome(mustPrefix(t, "1.2.3.0/24"), 100)
	if validity != InvalidLength {
		t.Fatalf("validity = %s, want INVALID_LENGTH", validity)
	}
}

func TestOutcomeInvalidBoth(t *testing.T) {
	v := NewValidator()
	v.Load([]ROA{{Prefix: mustPrefix(t, "1.2.0.0/16"), OriginASN: 100, MaxLength: 20}})
	validity, _ := v.Outcome(mustPrefix(t, "1.2.3.0/24"), 200)
	if validity != InvalidBoth {
		t.Fatalf("validity = %s, want INVALID_BOTH", validity)
	}
}

func TestOutcomeValidWhenAnyOverlappingROAAuthorizes(t *testing.T) {
	v := NewValidator()
	v.Load([]ROA{
		{Prefix: mustPrefix(t, "1.2.0.0/16"), OriginASN: 200, MaxLength: 16},
		{Prefix: mustPrefix(t, "1.2.0.0/16"), OriginASN: 100, MaxLength: 24},
	})
	validity, _ := v.Outcome(mustPrefix(t, "1.2.3.0/24"), 100)
	if validity != VALID {
		t.Fatalf("validity = %s, want VALID (one covering ROA authorizes this origin/length)", validity)
	}
}

func TestLoadReplacesPriorROASet(t *testing.T) {
	v := NewValidator()
	v.Load([]ROA{{Prefix: mustPrefix(t, "1.2.0.0/16"), OriginASN: 100, MaxLength: 24}})
	v.Load([]ROA{{Prefix: mustPrefix(t, "9.9.0.0/16"), OriginASN: 900, MaxLength: 24}})

	validity, _ := v.Outcome(mustPrefix(t, "1.2.3.0/24"), 100)
	if validity != UNKNOWN {
		t.Fatalf("validity = %s, want UNKNOWN after Load replaced the ROA set", validity)
	}
	if len(v.All()) != 1 {
		t.Fatalf("All() length = %d, want 1", len(v.All()))
	}
}

func TestWalkVisitsEveryLoadedROA(t *testing.T) {
	v := NewValidator()
	roas := []ROA{
		{Prefix: mustPrefix(t, "1.2.0.0/16"), OriginASN: 100, MaxLength: 24},
		{Prefix: mustPrefix(t, "9.9.0.0/16"), OriginASN: 900, MaxLength: 24},
	}
	v.Load(roas)

	seen := make(map[int32]bool)
	v.Walk(func(r ROA) { seen[r.OriginASN] = true })
	for _, r := range roas {
		if !seen[r.OriginASN] {
			t.Fatalf("Walk did not visit ROA for origin %d", r.OriginASN)
		}
	}
}
