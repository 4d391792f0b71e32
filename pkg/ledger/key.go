package ledger

import (
	"fmt"
	"strings"
)

// KeyPrefix namespaces every Redis key written by the ledger.
const KeyPrefix = "loadmore:ledger"

// Key identifies the page list of one query within one session.
type Key struct {
	// Session scopes the ledger to one page lifetime.
	Session string

	// Query is the listing identifier.
	Query int
}

// String generates a deterministic Redis key.
// Format: loadmore:ledger:<session>:query=<N>
//
// Example:
//
//	loadmore:ledger:3f2a9c:query=3
func (k Key) String() string {
	return fmt.Sprintf("%s:%s:query=%d", KeyPrefix, sessionPart(k.Session), k.Query)
}

// SessionPattern returns the SCAN pattern matching every key of a session.
func SessionPattern(session string) string {
	return fmt.Sprintf("%s:%s:query=*", KeyPrefix, sessionPart(session))
}

// sessionPart normalizes a session id so it cannot break the key layout.
func sessionPart(session string) string {
	session = strings.TrimSpace(session)
	if session == "" {
		return "default"
	}
	return strings.NewReplacer(":", "_", "*", "_", "?", "_", "[", "_", "]", "_").Replace(session)
}
