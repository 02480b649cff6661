// planet_key.go - Per-planet symmetric key derivation.

package circuits

// Key-mixing constants, disjoint from the coordinate-mixing set so a planet
// key never collides with a planet hash over the same inputs.
const (
	keyM0, keyM1, keyM2 = 71, 73, 79
	keyM3, keyM4, keyM5 = 83, 89, 97
	keyC                = 101
)

// PlanetKey is the 4-word symmetric key protecting one planet's ciphertext
// sections. It never leaves the confidential domain except re-encrypted for
// an authorized reader.
type PlanetKey [4]uint64

// CreatePlanetKey derives the planet key from the owner's secret seed and
// the planet hash words. Deterministic, so the owner can re-derive the key
// for any planet it can name, while a party without the seed cannot.
func CreatePlanetKey(seed uint64, h [4]uint64) PlanetKey {
	var k PlanetKey
	k[0] = seed*keyM0 + h[0]*keyM1 + h[3]*keyM2 + keyC
	k[1] = seed*keyM1 + h[1]*keyM2 + h[2]*keyM3 + keyC
	k[2] = seed*keyM2 + h[2]*keyM4 + h[1]*keyM5 + keyC
	k[3] = k[0]*keyM3 + k[1]*keyM4 + k[2]*keyM5 + h[3] + keyC
	return k
}
