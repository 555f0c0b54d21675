// ABOUTME: Query keys identifying cached backend reads
// ABOUTME: Ordered parts compared by prefix so one mutation can invalidate a family of reads

package query

import (
	"fmt"
	"strings"
)

// Key names one backend read, e.g. K("campaigns", "list", 1, 10).
// The first part is the resource name used in invalidation events.
type Key []string

// K builds a key from arbitrary parts using their default formatting.
func K(parts ...any) Key {
	k := make(Key, len(parts))
	for i, p := range parts {
		k[i] = fmt.Sprint(p)
	}
	return k
}

// Resource returns the first part of the key.
func (k Key) Resource() string {
	if len(k) == 0 {
		return ""
	}
	return k[0]
}

// HasPrefix reports whether every part of prefix matches the start of k.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (k Key) String() string {
	return strings.Join(k, "/")
}

// unitSep cannot appear in form input, so joined keys never collide.
const unitSep = "\x1f"

func (k Key) encode() string {
	return strings.Join(k, unitSep)
}
