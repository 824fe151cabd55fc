package policy

import "github.com/Emeline-1/bgpsim/internal/announce"

// enforceFirstASValid requires the announced next hop to be both the
// path's most recent hop and an actual neighbor of this AS (spec.md
// section 4.5, "Enforce-First-AS").
func enforceFirstASValid(p *Policy, ann announce.Announcement) bool {
	if ann.NextHopASN != ann.ASPath[0] {
		return false
	}
	self := p.store.Graph.AS(p.ASN)
	for _, n := range self.NeighborASNs() {
		if n == ann.NextHopASN {
			return true
		}
	}
	return false
}
