package announce

import (
	"encoding/json"
	"testing"

	"github.com/Emeline-1/bgpsim/internal/ipaddr"
)

func mustPrefix(t *testing.T, s string) ipaddr.Prefix {
	t.Helper()
	p, err := ipaddr.Parse(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return p
}

func TestNewDefaultsNextHopForSingleHopPath(t *testing.T) {
	prefix := mustPrefix(t, "1.2.0.0/16")
	ann, err := New(prefix, []int32{100})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ann.NextHopASN != 100 {
		t.Fatalf("NextHopASN = %d, want 100", ann.NextHopASN)
	}
	if ann.RecvRelationship != ORIGIN {
		t.Fatalf("RecvRelationship = %s, want ORIGIN", ann.RecvRelationship)
	}
}

func TestNewRejectsAmbiguousNextHop(t *testing.T) {
	prefix := mustPrefix(t, "1.2.0.0/16")
	if _, err := New(prefix, []int32{200, 100}); err != ErrAmbiguousNextHop {
		t.Fatalf("err = %v, want ErrAmbiguousNextHop", err)
	}
}

func TestNewRejectsEmptyPath(t *testing.T) {
	prefix := mustPrefix(t, "1.2.0.0/16")
	if _, err := New(prefix, nil); err != ErrEmptyASPath {
		t.Fatalf("err = %v, want ErrEmptyASPath", err)
	}
}

func TestOriginAndNeighborASN(t *testing.T) {
	prefix := mustPrefix(t, "1.2.0.0/16")
	ann, err := New(prefix, []int32{300, 200, 100}, WithNextHopASN(300))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := ann.Origin(); got != 100 {
		t.Fatalf("Origin() = %d, want 100", got)
	}
	if got := ann.NeighborASN(); got != 200 {
		t.Fatalf("NeighborASN() = %d, want 200", got)
	}

	single, err := New(prefix, []int32{100})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := single.NeighborASN(); got != 100 {
		t.Fatalf("single-hop NeighborASN() = %d, want 100", got)
	}
}

func TestCopyDoesNotMutateReceiver(t *testing.T) {
	prefix := mustPrefix(t, "1.2.0.0/16")
	ann, err := New(prefix, []int32{100})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	copied := ann.Copy(PrependASPath(200))
	if len(ann.ASPath) != 1 || ann.ASPath[0] != 100 {
		t.Fatalf("receiver mutated: %v", ann.ASPath)
	}
	if len(copied.ASPath) != 2 || copied.ASPath[0] != 200 || copied.ASPath[1] != 100 {
		t.Fatalf("copy as_path = %v, want [200 100]", copied.ASPath)
	}
}

func TestAnnouncementJSONRoundTrip(t *testing.T) {
	prefix := mustPrefix(t, "1.2.0.0/16")
	bgpsecNext := int32(42)
	otc := int32(7)
	ann, err := New(prefix, []int32{300, 200, 100},
		WithNextHopASN(300),
		WithRecvRelationship(CUSTOMERS),
		WithTimestamp(99),
		WithBGPsecNextASN(bgpsecNext),
		WithBGPsecASPath([]int32{300, 200}),
		WithOnlyToCustomers(otc),
		WithROVPPBlackhole(true),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data, err := json.Marshal(ann)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Announcement
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Prefix.String() != ann.Prefix.String() ||
		len(got.ASPath) != len(ann.ASPath) ||
		got.NextHopASN != ann.NextHopASN ||
		got.RecvRelationship != ann.RecvRelationship ||
		got.Timestamp != ann.Timestamp ||
		*got.BGPsecNextASN != *ann.BGPsecNextASN ||
		*got.OnlyToCustomers != *ann.OnlyToCustomers ||
		got.ROVPPBlackhole != ann.ROVPPBlackhole {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, ann)
	}
}

func TestUnmarshalRejectsUnknownRecvRelationship(t *testing.T) {
	raw := `{"prefix":"1.2.0.0/16","as_path":[100],"next_hop_asn":100,"recv_relationship":5,"timestamp":0,"rovpp_blackhole":false}`
	var ann Announcement
	if err := json.Unmarshal([]byte(raw), &ann); err == nil {
		t.Fatal("expected error unmarshaling UNKNOWN recv_relationship, got nil")
	}
}

func TestRelationshipWireValues(t *testing.T) {
	cases := map[Relationship]int{
		PROVIDERS: 1,
		PEERS:     2,
		CUSTOMERS: 3,
		ORIGIN:    4,
		UNKNOWN:   5,
	}
	for rel, want := range cases {
		if int(rel) != want {
			t.Errorf("%s = %d, want %d", rel, int(rel), want)
		}
	}
}
