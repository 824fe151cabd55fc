// Package policy implements the per-AS routing policy core: local RIB,
// receive queue, announcement validity composition, the Gao-Rexford
// decision procedure, and propagation (spec.md section 4.4) plus the
// security-extension hooks of section 4.5.
package policy

import (
	"sort"

	"github.com/gaissmai/bart"

	"github.com/Emeline-1/bgpsim/internal/announce"
	"github.com/Emeline-1/bgpsim/internal/ipaddr"
	"github.com/Emeline-1/bgpsim/internal/util"
)

const mostSpecificCacheSize = 10

// Policy is one AS's routing state for the current trial: its local RIB,
// pending receive queue, and enabled security-extension settings. Owned
// exclusively by its Store for the trial's duration (spec.md section 5).
type Policy struct {
	ASN      int32
	Settings Settings

	LocalRIB map[ipaddr.Prefix]announce.Announcement
	RecvQ    map[ipaddr.Prefix][]announce.Announcement

	store      *Store
	ribVersion int64
	// table indexes LocalRIB's keys for longest-prefix-match-by-address,
	// the same bart.Table (github.com/gaissmai/bart) the ROA validator
	// uses for its hot LPM path (internal/roa/roa.go), keyed on each
	// prefix's canonical v6-mapped form so one tree serves both families.
	table *bart.Table[ipaddr.Prefix]
	cache *util.LRU[mostSpecificKey, mostSpecificResult]
}

type mostSpecificKey struct {
	dest    ipaddr.IPAddr
	version int64
}

type mostSpecificResult struct {
	prefix ipaddr.Prefix
	found  bool
}

func newPolicy(asn int32, store *Store) *Policy {
	p := &Policy{ASN: asn, store: store}
	p.clear()
	return p
}

func (p *Policy) clear() {
	p.LocalRIB = make(map[ipaddr.Prefix]announce.Announcement)
	p.RecvQ = make(map[ipaddr.Prefix][]announce.Announcement)
	p.ribVersion++
	p.table = new(bart.Table[ipaddr.Prefix])
	p.cache = util.NewLRU[mostSpecificKey, mostSpecificResult](mostSpecificCacheSize)
}

// writeRIB installs ann for prefix into both LocalRIB and the bart LPM
// index, then bumps ribVersion so the most-specific-announcement cache
// invalidates stale entries. Every local-RIB write goes through this, so
// the bart index never drifts out of sync with LocalRIB.
func (p *Policy) writeRIB(prefix ipaddr.Prefix, ann announce.Announcement) {
	p.LocalRIB[prefix] = ann
	p.table.Insert(prefix.CanonicalV6(), prefix)
	p.ribVersion++
}

// SeedAnn installs an origin announcement directly into the local RIB.
// Returns ErrSeedConflict if the prefix is already occupied (spec.md
// section 4.4, Open Question iv).
func (p *Policy) SeedAnn(ann announce.Announcement) error {
	if _, exists := p.LocalRIB[ann.Prefix]; exists {
		return ErrSeedConflict
	}
	if p.Settings.Has(BGPsec) || p.Settings.Has(BGPiSec) || p.Settings.Has(BGPiSecTransitive) {
		ann = bgpsecModifiedSeedAnn(ann)
	}
	p.writeRIB(ann.Prefix, ann)
	return nil
}

// ReceiveAnn enqueues an announcement sent by a neighbor for later
// processing by ProcessIncomingAnns.
func (p *Policy) ReceiveAnn(ann announce.Announcement) {
	p.RecvQ[ann.Prefix] = append(p.RecvQ[ann.Prefix], ann)
}

// ProcessIncomingAnns drains the receive queue: for each prefix with
// pending announcements, folds them against the current local-RIB entry
// via valid_ann + Gao-Rexford, writes back the winner if it changed, then
// (if any ROV++ Lite variant is enabled) injects blackhole routes, and
// finally clears the queue (spec.md section 4.4).
func (p *Policy) ProcessIncomingAnns(fromRel announce.Relationship) {
	if fromRel == announce.UNKNOWN {
		panic("policy: ProcessIncomingAnns called with recv_relationship UNKNOWN")
	}
	for prefix, anns := range p.RecvQ {
		current, hasCurrent := p.LocalRIB[prefix]
		var cur *announce.Announcement
		if hasCurrent {
			c := current
			cur = &c
		}
		for _, incoming := range anns {
			if !p.ValidAnn(incoming, fromRel) {
				continue
			}
			processed := p.processAnn(incoming, fromRel)
			best := bestAnn(cur, processed, p.Settings)
			cur = &best
		}
		if cur != nil && (!hasCurrent || !announcementsEqual(current, *cur)) {
			p.writeRIB(prefix, *cur)
		}
	}

	if p.Settings.Has(ROVPPV1Lite) || p.Settings.Has(ROVPPV2Lite) || p.Settings.Has(ROVPPV2iLite) {
		p.rovppInjectBlackholes()
	}

	p.RecvQ = make(map[ipaddr.Prefix][]announce.Announcement)
}

func announcementsEqual(a, b announce.Announcement) bool {
	if a.Prefix != b.Prefix || a.NextHopASN != b.NextHopASN ||
		a.RecvRelationship != b.RecvRelationship || a.Timestamp != b.Timestamp ||
		a.ROVPPBlackhole != b.ROVPPBlackhole {
		return false
	}
	if len(a.ASPath) != len(b.ASPath) {
		return false
	}
	for i := range a.ASPath {
		if a.ASPath[i] != b.ASPath[i] {
			return false
		}
	}
	return true
}

// processAnn prepends self to the AS path, stamps recv_relationship, and
// applies any BGPsec/BGP-iSec post-processing (spec.md section 4.4).
func (p *Policy) processAnn(ann announce.Announcement, fromRel announce.Relationship) announce.Announcement {
	processed := ann.Copy(
		announce.PrependASPath(p.ASN),
		announce.SetRecvRelationship(fromRel),
	)
	switch {
	case p.Settings.Has(BGPiSec) || p.Settings.Has(BGPiSecTransitive):
		processed = bgpiSecProcessAnn(p, processed, fromRel)
	case p.Settings.Has(BGPsec):
		processed = bgpsecProcessAnn(p, processed, fromRel)
	}
	return processed
}

// ValidAnn composes every enabled extension's validity check, left to
// right, short-circuiting on first failure (spec.md section 4.4).
func (p *Policy) ValidAnn(ann announce.Announcement, fromRel announce.Relationship) bool {
	s := p.Settings

	if !bgpLoopFree(p, ann) {
		return false
	}
	if s.Has(ASPA) && !s.Has(ASRA) && !s.Has(ASPAWithNeighbors) && !aspaValid(p, ann, fromRel) {
		return false
	}
	if s.Has(ASPAWithNeighbors) && !s.Has(ASRA) && !aspaWithNeighborsValid(p, ann, fromRel) {
		return false
	}
	if s.Has(ASRA) && !asraValid(p, ann, fromRel) {
		return false
	}
	if s.Has(ASPathEdgeFilter) && !edgeFilterValid(p, ann) {
		return false
	}
	if s.Has(EnforceFirstAS) && !enforceFirstASValid(p, ann) {
		return false
	}
	if s.Has(OnlyToCustomers) && !otcValid(ann, fromRel) {
		return false
	}
	if (s.Has(ROV) || s.Has(ROVPPV1Lite) || s.Has(ROVPPV2Lite) || s.Has(ROVPPV2iLite)) && !rovValid(p, ann) {
		return false
	}
	if s.Has(PeerROV) && !peerROVValid(p, ann, fromRel) {
		return false
	}
	if s.Has(PathEnd) && !pathEndValid(p, ann) {
		return false
	}
	if s.Has(PeerLockLite) && !peerLockLiteValid(p, ann, fromRel) {
		return false
	}
	if (s.Has(BGPiSec) || s.Has(BGPiSecTransitive)) && !bgpiSecValid(p, ann) {
		return false
	}
	if s.Has(ProviderConeID) && !providerConeIDValid(p, ann) {
		return false
	}
	return true
}

// GetMostSpecificAnn returns the local-RIB entry whose prefix is the
// longest match covering dest. The match itself is a bart.Table.Lookup
// (github.com/gaissmai/bart) against the index writeRIB keeps in sync
// with LocalRIB, wrapped in a bounded per-Policy LRU keyed on a
// RIB-version counter so every local_rib write invalidates stale entries
// (spec.md section 9, Open Question iii).
func (p *Policy) GetMostSpecificAnn(dest ipaddr.IPAddr) (announce.Announcement, bool) {
	key := mostSpecificKey{dest: dest, version: p.ribVersion}
	if res, ok := p.cache.Get(key); ok {
		if !res.found {
			return announce.Announcement{}, false
		}
		return p.LocalRIB[res.prefix], true
	}

	best, found := p.table.Lookup(dest.Prefix().CanonicalV6().Addr())

	p.cache.Put(key, mostSpecificResult{prefix: best, found: found})
	if !found {
		return announce.Announcement{}, false
	}
	return p.LocalRIB[best], true
}

// PassesSAV reports whether u passes source-address validation for the
// given destination and announcement. The base profile has no SAV model
// and always passes, matching the original's stub.
func (p *Policy) PassesSAV(dest ipaddr.IPAddr, ann announce.Announcement) bool { return true }

// sortedPrefixes returns the local RIB's prefixes in deterministic order,
// used by propagation (spec.md section 9, "iterate ASN/key-sorted
// wherever iteration order affects ties").
func (p *Policy) sortedPrefixes() []ipaddr.Prefix {
	out := make([]ipaddr.Prefix, 0, len(p.LocalRIB))
	for prefix := range p.LocalRIB {
		out = append(out, prefix)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
