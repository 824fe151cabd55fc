// Package scenario implements the contract the simulation engine
// consumes (spec.md section 6, "Scenario contract consumed by the
// engine"): which ASes attack, which announcements seed the trial, which
// ROAs exist, and the per-AS settings precedence chain. It is grounded on
// original_source/bgpsimulator/simulation_framework/scenarios/scenario.py
// and custom_scenarios/subprefix_hijack.py.
package scenario

import (
	"sort"

	"github.com/Emeline-1/bgpsim/internal/announce"
	"github.com/Emeline-1/bgpsim/internal/ipaddr"
	"github.com/Emeline-1/bgpsim/internal/policy"
	"github.com/Emeline-1/bgpsim/internal/roa"
)

// SettingsOverride is one tier of the per-AS settings precedence chain
// (spec.md section 6: "per_as_settings ... with precedence (highest
// first): attacker/legitimate-origin specific overrides; per-AS override
// for adopters; per-AS override base; default-adopt settings; default-base
// settings").
type SettingsOverride struct {
	// PerASN, if non-nil for an ASN, wins outright over every default
	// tier for that ASN.
	PerASN map[int32]policy.Settings
	// DefaultAdopt applies to every ASN in AdoptingASNs not already
	// covered by PerASN.
	DefaultAdopt policy.Settings
	// DefaultBase applies to every remaining ASN.
	DefaultBase policy.Settings
}

// PostPropagationHook is invoked after each propagation round with the
// round index, the trial index, and the adopting fraction. It receives no
// engine reference, so it cannot read or change the engine's state
// between rounds.
type PostPropagationHook func(round int, trial int, percentAdopt float64)

// Scenario is the full contract an engine trial consumes.
type Scenario struct {
	AttackerASNs         []int32
	LegitimateOriginASNs []int32
	AdoptingASNs         []int32

	// AttackerSettings and LegitimateOriginSettings are the highest-
	// precedence override tier, applied only to ASNs in the
	// corresponding set above.
	AttackerSettings         policy.Settings
	LegitimateOriginSettings policy.Settings

	PerASSettings SettingsOverride

	SeedAnnouncements map[int32][]announce.Announcement
	ROAs              []roa.ROA
	DestIP            ipaddr.IPAddr

	// MinPropagationRounds must be >= 1; scenarios with a second-round
	// hook (accidental route leak, shortest-path hijack) require 2.
	MinPropagationRounds int

	PreAggregationHook  func()
	PostPropagationHook PostPropagationHook
}

// PercentAdopt returns the fraction of totalASes adopting, for use by
// PostPropagationHook.
func (s *Scenario) PercentAdopt(totalASes int) float64 {
	if totalASes == 0 {
		return 0
	}
	return float64(len(s.AdoptingASNs)) / float64(totalASes)
}

// SettingsFor resolves the full precedence chain for a single ASN
// (spec.md section 6).
func (s *Scenario) SettingsFor(asn int32) policy.Settings {
	if isMember(asn, s.AttackerASNs) {
		return s.AttackerSettings
	}
	if isMember(asn, s.LegitimateOriginASNs) {
		return s.LegitimateOriginSettings
	}
	if v, ok := s.PerASSettings.PerASN[asn]; ok {
		return v
	}
	if isMember(asn, s.AdoptingASNs) {
		return s.PerASSettings.DefaultAdopt
	}
	return s.PerASSettings.DefaultBase
}

func isMember(asn int32, set []int32) bool {
	for _, a := range set {
		if a == asn {
			return true
		}
	}
	return false
}

// SortedSeedASNs returns the ASNs with seed announcements in ASN order,
// for deterministic seeding (spec.md section 9, "Determinism").
func (s *Scenario) SortedSeedASNs() []int32 {
	out := make([]int32, 0, len(s.SeedAnnouncements))
	for asn := range s.SeedAnnouncements {
		out = append(out, asn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
