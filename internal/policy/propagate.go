package policy

import "github.com/Emeline-1/bgpsim/internal/announce"

var sendRelsToCustomers = map[announce.Relationship]bool{
	announce.ORIGIN:    true,
	announce.CUSTOMERS: true,
	announce.PEERS:     true,
	announce.PROVIDERS: true,
}

var sendRelsToPeersOrProviders = map[announce.Relationship]bool{
	announce.ORIGIN:    true,
	announce.CUSTOMERS: true,
}

// PropagateToCustomers sends any local-RIB announcement to every customer
// (spec.md section 4.4: any recv_relationship qualifies).
func (p *Policy) PropagateToCustomers() {
	p.propagate(announce.CUSTOMERS, sendRelsToCustomers)
}

// PropagateToPeers sends announcements originated or learned from
// customers to every peer.
func (p *Policy) PropagateToPeers() {
	p.propagate(announce.PEERS, sendRelsToPeersOrProviders)
}

// PropagateToProviders sends announcements originated or learned from
// customers to every provider.
func (p *Policy) PropagateToProviders() {
	p.propagate(announce.PROVIDERS, sendRelsToPeersOrProviders)
}

func (p *Policy) propagate(to announce.Relationship, sendRels map[announce.Relationship]bool) {
	as := p.store.Graph.AS(p.ASN)
	neighbors := as.NeighborsByRelationship(to)
	if len(neighbors) == 0 {
		return
	}

	for _, prefix := range p.sortedPrefixes() {
		ann := p.LocalRIB[prefix]
		if !sendRels[ann.RecvRelationship] {
			continue
		}
		outAnn := ann.Copy(announce.SetNextHopASN(p.ASN))

		for _, neighborASN := range neighbors {
			handled, _ := p.store.policyPropagate(p, neighborASN, outAnn, to, sendRels)
			if !handled {
				p.store.processOutgoingAnn(neighborASN, outAnn)
			}
		}
	}
}
