package policy

import "github.com/Emeline-1/bgpsim/internal/announce"

// bestAnn implements the strict Gao-Rexford ordering of spec.md section
// 4.4: local preference, then path length, then (if BGPsec is enabled)
// signed-path preference, then lowest-neighbor-ASN tiebreak. The final
// tiebreak is total -- it always returns current or new -- so this never
// needs to report the GaoRexfordError spec.md's taxonomy names for a
// decision procedure that fails to choose.
func bestAnn(current *announce.Announcement, newAnn announce.Announcement, settings Settings) announce.Announcement {
	if current == nil {
		return newAnn
	}
	if best, ok := bestByLocalPref(*current, newAnn); ok {
		return best
	}
	if best, ok := bestByASPathLength(*current, newAnn); ok {
		return best
	}
	if settings.Has(BGPsec) {
		if best, ok := bestByBGPsecSigned(*current, newAnn); ok {
			return best
		}
	}
	return bestByLowestNeighborASN(*current, newAnn)
}

func bestByLocalPref(current, newAnn announce.Announcement) (announce.Announcement, bool) {
	if current.RecvRelationship > newAnn.RecvRelationship {
		return current, true
	}
	if current.RecvRelationship < newAnn.RecvRelationship {
		return newAnn, true
	}
	return announce.Announcement{}, false
}

func bestByASPathLength(current, newAnn announce.Announcement) (announce.Announcement, bool) {
	if len(current.ASPath) < len(newAnn.ASPath) {
		return current, true
	}
	if len(current.ASPath) > len(newAnn.ASPath) {
		return newAnn, true
	}
	return announce.Announcement{}, false
}

func isFullySigned(a announce.Announcement) bool {
	return a.BGPsecNextASN != nil && len(a.BGPsecASPath) == len(a.ASPath)
}

func bestByBGPsecSigned(current, newAnn announce.Announcement) (announce.Announcement, bool) {
	cf, nf := isFullySigned(current), isFullySigned(newAnn)
	if cf && !nf {
		return current, true
	}
	if nf && !cf {
		return newAnn, true
	}
	return announce.Announcement{}, false
}

// bestByLowestNeighborASN breaks ties by the lowest ASN of the neighbor
// that sent the announcement; exact ties return current.
func bestByLowestNeighborASN(current, newAnn announce.Announcement) announce.Announcement {
	if current.NeighborASN() <= newAnn.NeighborASN() {
		return current
	}
	return newAnn
}
