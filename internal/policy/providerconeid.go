package policy

import "github.com/Emeline-1/bgpsim/internal/announce"

// providerConeIDValid requires that the path be explainable via provider
// cones: the origin must sit in the provider cone of the AS one hop
// beyond the sender (spec.md section 4.5, "Provider-Cone-ID").
func providerConeIDValid(p *Policy, ann announce.Announcement) bool {
	if len(ann.ASPath) < 2 {
		return true
	}
	a := p.store.Graph.AS(ann.ASPath[1])
	if a == nil {
		return true
	}
	origin := ann.Origin()
	for _, cone := range a.ProviderConeASNs {
		if cone == origin {
			return true
		}
	}
	return false
}
