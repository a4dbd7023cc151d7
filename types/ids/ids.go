package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Size is the length in bytes of a block digest.
const Size = sha256.Size

// ID is a 32-byte SHA-256 digest.
type ID [Size]byte

// Empty is the zero-value ID (all zeros)
var Empty ID

// ZeroHash is the previous-hash sentinel stored on the genesis block.
var ZeroHash = strings.Repeat("0", 2*Size)

var ErrInvalidID = errors.New("ids: not a 64 character hex digest")

// NewID generates a new ID by hashing input bytes
func NewID(data []byte) ID {
	return ID(sha256.Sum256(data))
}

// Digest hashes the UTF-8 bytes of a canonical string and returns the
// lowercase hex encoding.
func Digest(canonical string) string {
	return NewID([]byte(canonical)).String()
}

// FromString parses a hex string into an ID. Unlike the loose decoders used for
// display, the input must be exactly 64 hex characters.
func FromString(s string) (ID, error) {
	var id ID
	if len(s) != 2*Size {
		return id, ErrInvalidID
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, ErrInvalidID
	}
	copy(id[:], b)
	return id, nil
}

// String converts an ID back to a hex string
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is the genesis sentinel.
func (id ID) IsZero() bool {
	return id == Empty
}
