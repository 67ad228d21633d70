package incrtab

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Free is the placeholder for an unbound argument position in a call pattern.
const Free = "_"

// Tuple is a ground fact or answer: one constant per argument position.
// Term representation and parsing belong to the surrounding resolution
// engine; the core only needs ground constants with set semantics.
type Tuple []string

// Key returns a 64-bit hash of the tuple, used for set membership and
// deduplication. Values are length-prefixed so ("ab","c") and ("a","bc")
// hash differently.
func (t Tuple) Key() uint64 {
	d := xxhash.New()
	var lenBuf [8]byte
	for _, v := range t {
		n := len(v)
		for i := 0; i < 8; i++ {
			lenBuf[i] = byte(n >> (8 * i))
		}
		d.Write(lenBuf[:])
		d.WriteString(v)
	}
	return d.Sum64()
}

// Equal reports whether two tuples have identical values position-wise.
func (t Tuple) Equal(other Tuple) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if t[i] != other[i] {
			return false
		}
	}
	return true
}

// String returns a human-readable form like "(a, b)".
func (t Tuple) String() string {
	return "(" + strings.Join(t, ", ") + ")"
}

// clone returns an independent copy of the tuple.
func (t Tuple) clone() Tuple {
	c := make(Tuple, len(t))
	copy(c, t)
	return c
}
