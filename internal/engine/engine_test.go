package engine

import (
	"testing"

	"github.com/Emeline-1/bgpsim/internal/announce"
	"github.com/Emeline-1/bgpsim/internal/asgraph"
	"github.com/Emeline-1/bgpsim/internal/dataplane"
	"github.com/Emeline-1/bgpsim/internal/graphsetup"
	"github.com/Emeline-1/bgpsim/internal/ipaddr"
	"github.com/Emeline-1/bgpsim/internal/scenario"
)

const (
	coreASN     int32 = 1
	victimASN   int32 = 2
	attackerASN int32 = 3
)

// threeASGraph builds AS 1 as the shared provider of both AS 2 (victim)
// and AS 3 (attacker), graphsetup-finalized and ready for an Engine.
func threeASGraph(t *testing.T) *asgraph.Graph {
	t.Helper()
	g := asgraph.New([]asgraph.InputSpec{
		{ASN: coreASN, CustomerASNs: []int32{victimASN, attackerASN}},
		{ASN: victimASN, ProviderASNs: []int32{coreASN}},
		{ASN: attackerASN, ProviderASNs: []int32{coreASN}},
	})
	if err := graphsetup.Finalize(g); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	return g
}

func originAnn(t *testing.T, prefix string, asn int32) announce.Announcement {
	t.Helper()
	ann, err := announce.New(ipaddr.MustParse(prefix), []int32{asn})
	if err != nil {
		t.Fatalf("New origin announcement: %v", err)
	}
	return ann
}

func TestTrivialBGPPropagation(t *testing.T) {
	g := threeASGraph(t)
	e := New(g)

	sc := &scenario.Scenario{
		LegitimateOriginASNs: []int32{victimASN},
		SeedAnnouncements: map[int32][]announce.Announcement{
			victimASN: {originAnn(t, "1.2.0.0/16", victimASN)},
		},
		DestIP:               ipaddr.MustIPAddr("1.2.3.4"),
		MinPropagationRounds: 1,
	}
	if err := e.Run(sc, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}

	corePrefix := ipaddr.MustParse("1.2.0.0/16")
	coreEntry, ok := e.Store.Policy(coreASN).LocalRIB[corePrefix]
	if !ok {
		t.Fatal("AS 1 never learned the victim's route")
	}
	if len(coreEntry.ASPath) != 2 || coreEntry.ASPath[0] != coreASN || coreEntry.ASPath[1] != victimASN {
		t.Fatalf("AS 1 as_path = %v, want [%d %d]", coreEntry.ASPath, coreASN, victimASN)
	}

	attackerEntry, ok := e.Store.Policy(attackerASN).LocalRIB[corePrefix]
	if !ok {
		t.Fatal("AS 3 never learned the victim's route")
	}
	want := []int32{attackerASN, coreASN, victimASN}
	if len(attackerEntry.ASPath) != len(want) {
		t.Fatalf("AS 3 as_path = %v, want %v", attackerEntry.ASPath, want)
	}
	for i := range want {
		if attackerEntry.ASPath[i] != want[i] {
			t.Fatalf("AS 3 as_path = %v, want %v", attackerEntry.ASPath, want)
		}
	}

	prop := dataplane.NewPropagator(g, e.Store, nil, sc.LegitimateOriginASNs)
	outcomes := prop.Outcomes(sc.DestIP)
	for _, asn := range []int32{coreASN, victimASN, attackerASN} {
		if outcomes[asn] != dataplane.LEGITIMATE_ORIGIN_SUCCESS {
			t.Errorf("AS %d outcome = %s, want LEGITIMATE_ORIGIN_SUCCESS", asn, outcomes[asn])
		}
	}
}

func TestSubprefixHijackNoDefense(t *testing.T) {
	g := threeASGraph(t)
	e := New(g)

	sc := &scenario.Scenario{
		AttackerASNs:         []int32{attackerASN},
		LegitimateOriginASNs: []int32{victimASN},
		SeedAnnouncements: map[int32][]announce.Announcement{
			victimASN:   {originAnn(t, "1.2.0.0/16", victimASN)},
			attackerASN: {originAnn(t, "1.2.3.0/24", attackerASN)},
		},
		DestIP:               ipaddr.MustIPAddr("1.2.3.4"),
		MinPropagationRounds: 1,
	}
	if err := e.Run(sc, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}

	prop := dataplane.NewPropagator(g, e.Store, sc.AttackerASNs, sc.LegitimateOriginASNs)
	outcomes := prop.Outcomes(sc.DestIP)

	for _, asn := range []int32{coreASN, attackerASN} {
		if outcomes[asn] != dataplane.ATTACKER_SUCCESS {
			t.Errorf("AS %d outcome = %s, want ATTACKER_SUCCESS (no defense deployed)", asn, outcomes[asn])
		}
	}
	if outcomes[victimASN] != dataplane.LEGITIMATE_ORIGIN_SUCCESS {
		t.Errorf("victim AS %d outcome = %s, want LEGITIMATE_ORIGIN_SUCCESS (victim is always classified as itself)", victimASN, outcomes[victimASN])
	}
}
