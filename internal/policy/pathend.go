package policy

import "github.com/Emeline-1/bgpsim/internal/announce"

// pathEndValid runs ROV first, then -- if the origin adopts Path-End and
// the path has more than one hop -- requires the hop adjacent to the
// origin to be one of the origin's real neighbors (spec.md section 4.5,
// "Path-End", grounded on custom_policies/path_end.py).
func pathEndValid(p *Policy, ann announce.Announcement) bool {
	if !rovValid(p, ann) {
		return false
	}
	origin := ann.Origin()
	originAS := p.store.Graph.AS(origin)
	if originAS == nil || !p.store.settingsOf(origin).Has(PathEnd) || len(ann.ASPath) <= 1 {
		return true
	}
	adjacent := ann.ASPath[len(ann.ASPath)-2]
	for _, n := range originAS.NeighborASNs() {
		if n == adjacent {
			return true
		}
	}
	return false
}
