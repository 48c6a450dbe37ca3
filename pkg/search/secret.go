package search

import (
	"encoding/base32"
	"fmt"
	"math/big"
	"strings"
)

// SecretSize is the length in bytes of a candidate secret (160 bits, the
// HMAC-SHA1 block recommended by RFC 4226).
const SecretSize = 20

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// Secret is a 20 byte shared secret interpreted as an unsigned little-endian
// integer: byte 0 is the least significant digit.
type Secret [SecretSize]byte

// SecretFromUint64 encodes v into the low-order bytes of a Secret.
func SecretFromUint64(v uint64) Secret {
	var s Secret
	for i := 0; v > 0 && i < SecretSize; i++ {
		s[i] = byte(v)
		v >>= 8
	}
	return s
}

// EncodeSecret writes v in little-endian base-256 digits into a zeroed
// Secret. Values that need more than 160 bits return ErrRangeOverflow rather
// than being truncated.
func EncodeSecret(v *big.Int) (Secret, error) {
	var s Secret
	if v == nil || v.Sign() == 0 {
		return s, nil
	}
	if v.Sign() < 0 {
		return s, fmt.Errorf("%w: negative value %s", ErrRangeOverflow, v)
	}
	if v.BitLen() > SecretSize*8 {
		return s, fmt.Errorf("%w: %d bits exceeds %d", ErrRangeOverflow, v.BitLen(), SecretSize*8)
	}

	// FillBytes is big-endian
	var be [SecretSize]byte
	v.FillBytes(be[:])
	for i := range be {
		s[i] = be[SecretSize-1-i]
	}
	return s, nil
}

// ParseSecret decodes a base32 secret as shown by authenticator apps.
// Padding, whitespace and case are ignored.
func ParseSecret(encoded string) (Secret, error) {
	var s Secret
	clean := strings.ToUpper(strings.Join(strings.Fields(encoded), ""))
	clean = strings.TrimRight(clean, "=")
	raw, err := b32.DecodeString(clean)
	if err != nil {
		return s, fmt.Errorf("search: invalid base32 secret: %w", err)
	}
	if len(raw) != SecretSize {
		return s, fmt.Errorf("search: secret must be %d bytes, got %d", SecretSize, len(raw))
	}
	copy(s[:], raw)
	return s, nil
}

// Increment adds one to s in place, carrying from byte 0 upward.
// Incrementing the all-0xFF secret wraps around to all-zero.
func (s *Secret) Increment() {
	for i := range s {
		s[i]++
		if s[i] != 0 {
			return
		}
	}
}

// Big returns the integer value of s.
func (s Secret) Big() *big.Int {
	var be [SecretSize]byte
	for i := range s {
		be[SecretSize-1-i] = s[i]
	}
	return new(big.Int).SetBytes(be[:])
}

// Bytes returns a copy of the raw secret bytes.
func (s Secret) Bytes() []byte {
	b := make([]byte, SecretSize)
	copy(b, s[:])
	return b
}

// Base32 returns the unpadded RFC 4648 base32 encoding of s.
func (s Secret) Base32() string {
	return b32.EncodeToString(s[:])
}

// String implements fmt.Stringer.
func (s Secret) String() string {
	return s.Base32()
}
