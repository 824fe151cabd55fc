package policy

import "strings"

// Setting is a single security-extension feature flag. Settings are
// combined into a Settings bitset rather than modeled as subclasses or a
// name->bool map, per spec.md's design notes: "model policies as a
// bitset of feature flags per AS, with a compiled match/switch on the
// bitset in valid_ann."
type Setting uint32

const (
	ROV Setting = 1 << iota
	PeerROV
	ASPA
	ASPAWithNeighbors // "ASPA+N"
	ASRA
	ASPathEdgeFilter
	EnforceFirstAS
	OnlyToCustomers
	PathEnd
	PeerLockLite
	BGPsec
	BGPiSec
	BGPiSecTransitive
	ROVPPV1Lite
	ROVPPV2Lite
	ROVPPV2iLite
	ProviderConeID
	// OriginPrefixHijackCustomers and FirstASNStrippingPrefixHijackCustomers
	// are attacker-only propagation-time transforms, never defensive
	// extensions; they are modeled as settings for uniformity with the
	// rest of the per-AS bitset.
	OriginPrefixHijackCustomers
	FirstASNStrippingPrefixHijackCustomers
)

var settingNames = map[Setting]string{
	ROV:                                    "ROV",
	PeerROV:                                "PEER_ROV",
	ASPA:                                   "ASPA",
	ASPAWithNeighbors:                      "ASPA_W_N",
	ASRA:                                   "ASRA",
	ASPathEdgeFilter:                       "AS_PATH_EDGE_FILTER",
	EnforceFirstAS:                         "ENFORCE_FIRST_AS",
	OnlyToCustomers:                        "ONLY_TO_CUSTOMERS",
	PathEnd:                                "PATH_END",
	PeerLockLite:                           "PEERLOCK_LITE",
	BGPsec:                                 "BGPSEC",
	BGPiSec:                                "BGP_I_SEC",
	BGPiSecTransitive:                      "BGP_I_SEC_TRANSITIVE",
	ROVPPV1Lite:                            "ROVPP_V1_LITE",
	ROVPPV2Lite:                            "ROVPP_V2_LITE",
	ROVPPV2iLite:                           "ROVPP_V2I_LITE",
	ProviderConeID:                         "PROVIDER_CONE_ID",
	OriginPrefixHijackCustomers:            "ORIGIN_PREFIX_HIJACK_CUSTOMERS",
	FirstASNStrippingPrefixHijackCustomers: "FIRST_ASN_STRIPPING_PREFIX_HIJACK_CUSTOMERS",
}

func (s Setting) String() string {
	if name, ok := settingNames[s]; ok {
		return name
	}
	return "UNKNOWN_SETTING"
}

// Settings is the per-AS bitset of enabled Setting flags.
type Settings uint32

// SettingsOf combines flags into a Settings value.
func SettingsOf(flags ...Setting) Settings {
	var s Settings
	for _, f := range flags {
		s |= Settings(f)
	}
	return s
}

// Has reports whether f is enabled in s.
func (s Settings) Has(f Setting) bool { return s&Settings(f) != 0 }

// With returns s with f enabled.
func (s Settings) With(f Setting) Settings { return s | Settings(f) }

// Without returns s with f disabled.
func (s Settings) Without(f Setting) Settings { return s &^ Settings(f) }

func (s Settings) String() string {
	var names []string
	for flag, name := range settingNames {
		if s.Has(flag) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, "|")
}
