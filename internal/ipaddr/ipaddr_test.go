package ipaddr

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseCanonicalizesNetwork(t *testing.T) {
	p, err := Parse("1.2.3.4/16")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.String() != "1.2.0.0/16" {
		t.Fatalf("String() = %q, want 1.2.0.0/16", p.String())
	}
}

func TestParseRejectsReservedPrefix(t *testing.T) {
	if _, err := Parse("127.0.0.0/8"); err == nil {
		t.Fatal("expected error for loopback prefix")
	}
}

func TestCoversAddr(t *testing.T) {
	p := MustParse("1.2.0.0/16")
	in := MustIPAddr("1.2.3.4")
	out := MustIPAddr("1.3.0.1")
	if !p.CoversAddr(in) {
		t.Fatal("expected 1.2.0.0/16 to cover 1.2.3.4")
	}
	if p.CoversAddr(out) {
		t.Fatal("expected 1.2.0.0/16 to not cover 1.3.0.1")
	}
}

func TestContains(t *testing.T) {
	wide := MustParse("1.2.0.0/16")
	narrow := MustParse("1.2.3.0/24")
	if !wide.Contains(narrow) {
		t.Fatal("expected /16 to contain /24 subprefix")
	}
	if narrow.Contains(wide) {
		t.Fatal("did not expect /24 to contain /16")
	}
}

func TestLessOrdersV4BeforeV6ThenByAddrThenByLength(t *testing.T) {
	v4 := MustParse("1.2.0.0/16")
	v6 := MustParse("2001:db8::/32")
	if !v4.Less(v6) {
		t.Fatal("expected IPv4 prefix to sort before IPv6")
	}

	narrow := MustParse("1.2.0.0/24")
	wide := MustParse("1.2.0.0/16")
	if !wide.Less(narrow) {
		t.Fatal("expected shorter prefix to sort before longer prefix at same address")
	}
}

func TestBits(t *testing.T) {
	if MustParse("1.2.0.0/16").Bits() != 16 {
		t.Fatal("expected Bits() == 16")
	}
	if MustParse("2001:db8::/32").Bits() != 32 {
		t.Fatal("expected Bits() == 32")
	}
}

func TestNewIPAddrRejectsNonHostWidth(t *testing.T) {
	p := MustParse("1.2.0.0/16")
	if _, err := NewIPAddr(p); !errors.Is(err, ErrInvalidIPAddress) {
		t.Fatalf("err = %v, want ErrInvalidIPAddress", err)
	}
}

func TestPrefixJSONRoundTrip(t *testing.T) {
	p := MustParse("1.2.0.0/16")
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Prefix
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Equal(p) {
		t.Fatalf("round trip mismatch: got %s, want %s", got, p)
	}
}

func TestIPAddrJSONRoundTrip(t *testing.T) {
	a := MustIPAddr("1.2.3.4")
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got IPAddr
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.String() != a.String() {
		t.Fatalf("round trip mismatch: got %s, want %s", got, a)
	}
}

func TestParseIPAddrHostWidth(t *testing.T) {
	v4, err := ParseIPAddr("1.2.3.4")
	if err != nil {
		t.Fatalf("ParseIPAddr v4: %v", err)
	}
	if v4.Prefix().Bits() != 32 {
		t.Fatalf("v4 bits = %d, want 32", v4.Prefix().Bits())
	}

	v6, err := ParseIPAddr("2001:db8::1")
	if err != nil {
		t.Fatalf("ParseIPAddr v6: %v", err)
	}
	if v6.Prefix().Bits() != 128 {
		t.Fatalf("v6 bits = %d, want 128", v6.Prefix().Bits())
	}
}
