package policy

import (
	"testing"

	"github.com/Emeline-1/bgpsim/internal/announce"
	"github.com/Emeline-1/bgpsim/internal/asgraph"
	"github.com/Emeline-1/bgpsim/internal/ipaddr"
	"github.com/Emeline-1/bgpsim/internal/roa"
)

func newTestStore(t *testing.T, specs []asgraph.InputSpec) *Store {
	t.Helper()
	g := asgraph.New(specs)
	return NewStore(g)
}

func TestSeedAnnRejectsConflict(t *testing.T) {
	st := newTestStore(t, []asgraph.InputSpec{{ASN: 1}})
	p := st.Policy(1)
	ann := mustAnn(t, []int32{1})

	if err := p.SeedAnn(ann); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := p.SeedAnn(ann); err != ErrSeedConflict {
		t.Fatalf("second seed err = %v, want ErrSeedConflict", err)
	}
}

func TestBgpLoopFreeRejectsSelfAndZeroASN(t *testing.T) {
	st := newTestStore(t, []asgraph.InputSpec{{ASN: 1}})
	p := st.Policy(1)

	withSelf := mustAnn(t, []int32{100, 1})
	if bgpLoopFree(p, withSelf) {
		t.Fatal("expected bgpLoopFree to reject a path containing the receiving AS")
	}
	withZero := mustAnn(t, []int32{100, 0})
	if bgpLoopFree(p, withZero) {
		t.Fatal("expected bgpLoopFree to reject a path containing AS 0")
	}
	clean := mustAnn(t, []int32{100, 200})
	if !bgpLoopFree(p, clean) {
		t.Fatal("expected bgpLoopFree to accept a clean path")
	}
}

func TestValidAnnRejectsROVInvalidWhenEnabled(t *testing.T) {
	st := newTestStore(t, []asgraph.InputSpec{{ASN: 1}})
	st.Validator.Load([]roa.ROA{{Prefix: ipaddr.MustParse("1.2.0.0/16"), OriginASN: 999, MaxLength: 24}})
	p := st.Policy(1)
	p.Settings = SettingsOf(ROV)

	hijack := mustAnn(t, []int32{100})
	if p.ValidAnn(hijack, announce.CUSTOMERS) {
		t.Fatal("expected ValidAnn to reject a ROV-invalid-origin announcement")
	}
}

func TestValidAnnAllowsUnknownROAWhenROVEnabled(t *testing.T) {
	st := newTestStore(t, []asgraph.InputSpec{{ASN: 1}})
	p := st.Policy(1)
	p.Settings = SettingsOf(ROV)

	ann := mustAnn(t, []int32{100})
	if !p.ValidAnn(ann, announce.CUSTOMERS) {
		t.Fatal("expected ValidAnn to allow an announcement with no covering ROA (UNKNOWN fails open)")
	}
}

func TestGetMostSpecificAnnReturnsLongestMatch(t *testing.T) {
	st := newTestStore(t, []asgraph.InputSpec{{ASN: 1}})
	p := st.Policy(1)

	wide, err := announce.New(ipaddr.MustParse("1.2.0.0/16"), []int32{100})
	if err != nil {
		t.Fatalf("New wide: %v", err)
	}
	narrow, err := announce.New(ipaddr.MustParse("1.2.3.0/24"), []int32{200})
	if err != nil {
		t.Fatalf("New narrow: %v", err)
	}
	if err := p.SeedAnn(wide); err != nil {
		t.Fatalf("seed wide: %v", err)
	}
	if err := p.SeedAnn(narrow); err != nil {
		t.Fatalf("seed narrow: %v", err)
	}

	dest := ipaddr.MustIPAddr("1.2.3.4")
	got, found := p.GetMostSpecificAnn(dest)
	if !found {
		t.Fatal("expected a covering announcement")
	}
	if got.Prefix.Bits() != 24 {
		t.Fatalf("GetMostSpecificAnn returned /%d, want /24 (longest match)", got.Prefix.Bits())
	}
}

func TestGetMostSpecificAnnCacheInvalidatesOnRIBWrite(t *testing.T) {
	st := newTestStore(t, []asgraph.InputSpec{{ASN: 1}})
	p := st.Policy(1)
	dest := ipaddr.MustIPAddr("1.2.3.4")

	if _, found := p.GetMostSpecificAnn(dest); found {
		t.Fatal("expected no match before any seed")
	}

	ann, err := announce.New(ipaddr.MustParse("1.2.0.0/16"), []int32{100})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.SeedAnn(ann); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, found := p.GetMostSpecificAnn(dest); !found {
		t.Fatal("expected cache to reflect the new RIB entry after ribVersion changed")
	}
}

func TestProcessIncomingAnnsInstallsBestAndDropsInvalid(t *testing.T) {
	st := newTestStore(t, []asgraph.InputSpec{{ASN: 1}})
	p := st.Policy(1)

	good := mustAnn(t, []int32{100}, announce.WithRecvRelationship(announce.CUSTOMERS))
	loop := mustAnn(t, []int32{1}) // contains receiving AS, invalid
	p.ReceiveAnn(good)
	p.ReceiveAnn(loop)
	p.ProcessIncomingAnns(announce.CUSTOMERS)

	entry, ok := p.LocalRIB[good.Prefix]
	if !ok {
		t.Fatal("expected the valid announcement to be installed")
	}
	if entry.ASPath[0] != 1 {
		t.Fatalf("expected receiving AS to be prepended, got path %v", entry.ASPath)
	}
}
