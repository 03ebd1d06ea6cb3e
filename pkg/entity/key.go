package entity

import "crypto/sha256"

// KeySize is the fixed length of every storage key.
const KeySize = 32

// Key is a fixed-size lookup key derived from a record identifier. Keys are
// compared bytewise, so the arena iterates partitions in lexicographic id
// order.
type Key [KeySize]byte

// DeriveKey maps an identifier string onto a fixed-size key by the same
// truncate-and-zero-pad rule used for fixed-width text fields. Two
// identifiers sharing an identical first 32 bytes collide; identifiers are
// synthesized by the system and kept under the budget, so this is accepted.
func DeriveKey(id string) Key {
	var k Key
	copy(k[:], id)
	return k
}

// HashKey maps an identifier onto a key by hashing it. Chat message ids
// embed the session id plus a timestamp and routinely exceed KeySize, where
// truncation would collapse every message of a session onto one key; hashing
// keeps them distinct at the cost of hash-ordered iteration.
func HashKey(id string) Key {
	return Key(sha256.Sum256([]byte(id)))
}

// String returns the identifier the key was derived from, minus anything the
// derivation truncated.
func (k Key) String() string {
	return fixedToString(k[:])
}
