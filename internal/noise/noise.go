// noise.go - Deterministic coordinate-mixing hash for the encrypted forest.
//
// Mix turns a hidden coordinate pair and a game id into four wide pseudorandom
// words using only multiplication and addition by small odd constants. The same
// arithmetic runs inside the confidential circuits and here in cleartext; the
// two paths must stay word-for-word identical or hash validation diverges.
//
// No XOR, no bit shifts: the oblivious execution model only supports
// add/sub/mul and integer division, so digits are extracted with / and %.

package noise

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Mixing constants. Small odd primes keep the products well inside the
// arithmetic circuit's safe integer range for map-bounded coordinates.
const (
	mixA0, mixA1, mixA2, mixA3 = 31, 37, 41, 7
	mixB0, mixB1, mixB2, mixB3 = 43, 47, 53, 13
	mixC0, mixC1, mixC2, mixC3 = 59, 61, 67, 17
	mixD0, mixD1, mixD2, mixD3 = 3, 5, 7, 19
)

// HashWords is the 4x64-bit output of Mix, the canonical planet identifier.
type HashWords [4]uint64

// Mix derives the planet hash words from (x, y, gameID).
// Coordinates are folded into uint64 two's complement before mixing.
func Mix(x, y int64, gameID uint64) HashWords {
	xv := uint64(x)
	yv := uint64(y)

	a := xv*mixA0 + yv*mixA1 + gameID*mixA2 + mixA3
	b := yv*mixB0 + gameID*mixB1 + xv*mixB2 + mixB3
	c := gameID*mixC0 + xv*mixC1 + yv*mixC2 + mixC3
	d := a*mixD0 + b*mixD1 + c*mixD2 + mixD3

	return HashWords{a, b, c, d}
}

// digitDivisors[i] = 256^i, used to recover base-256 digits without shifts.
var digitDivisors = [8]uint64{
	1,
	256,
	65536,
	16777216,
	4294967296,
	1099511627776,
	281474976710656,
	72057594037927936,
}

// Digit returns the i-th base-256 digit of h (i in [0,7]).
func Digit(h uint64, i int) uint8 {
	return uint8((h / digitDivisors[i]) % 256)
}

// Bytes renders the hash words as a 32-byte identifier (little-endian words),
// used as the storage-key seed for planet and pending-move records.
func (h HashWords) Bytes() [32]byte {
	var out [32]byte
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(out[i*8:], h[i])
	}
	return out
}

// Hex renders the 32-byte identifier as a lowercase hex string.
func (h HashWords) Hex() string {
	b := h.Bytes()
	return hex.EncodeToString(b[:])
}

// ParseHex decodes the hex identifier produced by Hex back into hash words.
func ParseHex(s string) (HashWords, error) {
	var h HashWords
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("noise: decoding hash %q: %w", s, err)
	}
	if len(b) != 32 {
		return h, fmt.Errorf("noise: hash %q is %d bytes, want 32", s, len(b))
	}
	for i := 0; i < 4; i++ {
		h[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return h, nil
}
