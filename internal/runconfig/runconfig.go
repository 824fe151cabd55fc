// Package runconfig bundles a named scenario, a graph cache key, and a
// propagation-round count into one JSON-serializable value consumed by
// cmd/bgpsim run and by tests, matching the original's
// EngineRunConfig.to_json (original_source/bgpsimulator/.../
// engine_run_config.py). Not part of spec.md's core scenario contract --
// this is driver-facing plumbing so a single file can describe "run
// scenario X over graph Y for N rounds."
package runconfig

import (
	"encoding/json"
	"fmt"

	"github.com/Emeline-1/bgpsim/internal/ipaddr"
	"github.com/Emeline-1/bgpsim/internal/roa"
)

// wireROA is the JSON shape of one ROA entry in a run config file.
type wireROA struct {
	Prefix    string `json:"prefix"`
	OriginASN int32  `json:"origin_asn"`
	MaxLength int    `json:"max_length"`
}

// wireSeed is one AS's seeded announcements, in a simplified JSON shape
// carrying only what a scenario needs to reconstruct a full
// announce.Announcement at seed time (prefix and AS path; next_hop_asn
// and recv_relationship are derived by the loader the same way the
// engine's own seeding does).
type wireSeed struct {
	ASN     int32    `json:"asn"`
	Prefix  string   `json:"prefix"`
	ASPath  []int32  `json:"as_path"`
}

// RunConfig is the JSON-serializable bundle: which scenario to run, which
// graph cache key to load, and how many propagation rounds to execute.
type RunConfig struct {
	Name                  string     `json:"name"`
	GraphCacheKey         string     `json:"graph_cache_key"`
	AttackerASNs          []int32    `json:"attacker_asns"`
	LegitimateOriginASNs  []int32    `json:"legitimate_origin_asns"`
	AdoptingASNs          []int32    `json:"adopting_asns"`
	DestIP                string     `json:"dest_ip"`
	MinPropagationRounds  int        `json:"min_propagation_rounds"`
	ROAEntries            []wireROA  `json:"roas"`
	SeedAnnouncements     []wireSeed `json:"seed_announcements"`
}

// Load decodes a RunConfig from JSON bytes.
func Load(data []byte) (*RunConfig, error) {
	var rc RunConfig
	if err := json.Unmarshal(data, &rc); err != nil {
		return nil, fmt.Errorf("runconfig: decode: %w", err)
	}
	if rc.MinPropagationRounds < 1 {
		rc.MinPropagationRounds = 1
	}
	return &rc, nil
}

// ToJSON encodes rc back to its wire form.
func (rc *RunConfig) ToJSON() ([]byte, error) {
	data, err := json.Marshal(rc)
	if err != nil {
		return nil, fmt.Errorf("runconfig: encode: %w", err)
	}
	return data, nil
}

// ROAs converts the wire ROA entries into roa.ROA values.
func (rc *RunConfig) ROAs() ([]roa.ROA, error) {
	out := make([]roa.ROA, 0, len(rc.ROAEntries))
	for _, w := range rc.ROAEntries {
		prefix, err := ipaddr.Parse(w.Prefix)
		if err != nil {
			return nil, fmt.Errorf("runconfig: roa prefix %q: %w", w.Prefix, err)
		}
		out = append(out, roa.ROA{Prefix: prefix, OriginASN: w.OriginASN, MaxLength: w.MaxLength})
	}
	return out, nil
}

// DestIPAddr parses the configured destination IP.
func (rc *RunConfig) DestIPAddr() (ipaddr.IPAddr, error) {
	return ipaddr.ParseIPAddr(rc.DestIP)
}
