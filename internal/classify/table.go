package classify

import "strings"

// Exit codes the storage adapter surfaces, modeled on POSIX errno values the
// way a GFAL2-style library reports them. These are the values
// internal/gfal.Result.ExitCode carries.
const (
	CodeOK      = 0
	CodeEPerm   = 1  // operation not permitted
	CodeENoEnt  = 2  // no such file or directory
	CodeEIO     = 5  // I/O error
	CodeEAgain  = 11 // resource temporarily unavailable
	CodeEAcces  = 13 // permission denied
	CodeEExist  = 17 // file exists
	CodeEInval  = 22 // invalid argument (commonly a malformed URL)
	CodeETimedO = 110
)

// irrecoverableCodes is the known-at-config set from spec.md §4.2:
// authentication, permission, and bad-URL failures never benefit from a
// retry.
var irrecoverableCodes = map[int]struct{}{
	CodeEPerm:  {},
	CodeEAcces: {},
	CodeEInval: {},
}

// msgCodeTable implements spec.md §9's find_msg_code: a data-driven
// substring-to-code override for adapters that bury the real failure in a
// human-readable message (e.g. an embedded server response code) instead of
// a clean exit code. Entries are checked in table order and the first
// match wins; see matchMessageCode.
var msgCodeTable = []struct {
	substr string
	code   int
}{
	{"530 login incorrect", CodeEAcces},
	{"553 permission denied", CodeEAcces},
	{"no such file or directory", CodeENoEnt},
	{"file already exists", CodeEExist},
	{"invalid argument", CodeEInval},
	{"malformed url", CodeEInval},
	{"connection timed out", CodeETimedO},
}

// matchMessageCode returns the code implied by a message substring, if any.
// Tie-break rule from spec.md §4.2: when the table matches, the
// message-derived code wins over the adapter's own numeric exit code.
func matchMessageCode(message string) (int, bool) {
	lower := strings.ToLower(message)
	for _, entry := range msgCodeTable {
		if strings.Contains(lower, entry.substr) {
			return entry.code, true
		}
	}
	return 0, false
}
