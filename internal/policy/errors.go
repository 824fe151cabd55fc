package policy

import "errors"

// ErrSeedConflict is returned by SeedAnn when the target AS already has a
// local-RIB entry for the announcement's prefix (spec.md section 7,
// "Seed conflict" -- Open Question iv: scenarios seeding multiple
// announcements per AS must use distinct prefixes; this is reported as an
// error rather than a panic).
var ErrSeedConflict = errors.New("policy: seed conflict: local rib already has an entry for this prefix")

// ErrGaoRexfordTie documents spec.md's GaoRexfordError taxonomy entry: a
// decision procedure that fails to choose a best announcement. The
// lowest-neighbor-ASN tiebreak in this implementation is total (it always
// returns current or new), so this case cannot occur; the sentinel is
// kept because it is part of the required error taxonomy and a future
// tiebreak extension could need it.
var ErrGaoRexfordTie = errors.New("policy: gao-rexford decision procedure did not choose a best announcement")

// ErrAnnouncementNotFound is the error for a lookup that expects an
// existing announcement and finds none. No function in this package
// returns it.
var ErrAnnouncementNotFound = errors.New("policy: expected announcement not found")
