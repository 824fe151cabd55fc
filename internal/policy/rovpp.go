package policy

import "github.com/Emeline-1/bgpsim/internal/announce"

// rovppInjectBlackholes scans incoming announcements for ROV-invalid
// routes whose exact prefix has no local-RIB entry, and installs a
// synthetic blackhole route for that prefix: a route whose next hop is
// this AS itself, so the data plane treats it as a dead end, that exists
// only to keep traffic from falling through to a less-specific,
// legitimate-looking route (spec.md section 4.5,
// "ROV++ v1/v2/v2i Lite").
func (p *Policy) rovppInjectBlackholes() {
	for prefix, anns := range p.RecvQ {
		if _, ok := p.LocalRIB[prefix]; ok {
			continue
		}
		for _, ann := range anns {
			if rovValid(p, ann) {
				continue
			}
			p.writeRIB(prefix, ann.Copy(
				announce.SetROVPPBlackhole(true),
				announce.SetNextHopASN(p.ASN),
				announce.SetRecvRelationship(ann.RecvRelationship),
			))
			break
		}
	}
}

// rovppPropagateHook enforces each ROV++ Lite variant's blackhole
// forwarding scope. v1 only ever forwards a blackhole to customers; v2
// (a superset of v1) also allows forwarding to peers but never to
// providers; v2i is modeled identically to v2 -- the original's
// preventive-announcement mechanism has no available source in the
// retrieval pack and spec.md's description does not specify a
// distinguishable wire-level algorithm, so v2i's behavior here matches
// v2's (documented in DESIGN.md).
func rovppPropagateHook(st *Store, owner *Policy, neighborASN int32, ann announce.Announcement, to announce.Relationship, sendRels map[announce.Relationship]bool) (bool, announce.Announcement, bool) {
	if !ann.ROVPPBlackhole {
		return false, ann, false
	}
	switch {
	case owner.Settings.Has(ROVPPV2iLite), owner.Settings.Has(ROVPPV2Lite):
		if to == announce.PROVIDERS {
			return true, ann, false
		}
		return true, ann, true
	case owner.Settings.Has(ROVPPV1Lite):
		if to != announce.CUSTOMERS {
			return true, ann, false
		}
		return true, ann, true
	default:
		return false, ann, false
	}
}
