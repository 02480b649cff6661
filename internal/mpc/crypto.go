// crypto.go - Key exchange and word-tuple encryption for the computing cluster.
//
// Planet state travels as fixed-width uint64 tuples sealed under a one-shot
// Diffie-Hellman shared key: every seal generates a fresh ephemeral BLS12-377
// keypair and nonce, so a section's pubkey+nonce+ciphertext triple is always
// replaced as one atomic unit and never mixed across transitions.

package mpc

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	bls12377 "github.com/consensys/gnark-crypto/ecc/bls12-377"
	bls12377_fr "github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
)

var (
	ErrBadPubkey    = errors.New("mpc: malformed public key")
	ErrBadSection   = errors.New("mpc: malformed ciphertext section")
	ErrWrongSection = errors.New("mpc: section length does not match tuple width")
)

// KeyPair is a BLS12-377 keypair used for Diffie-Hellman agreement between
// a record's ephemeral sealer and a long-lived reader (the computing cluster
// or a player wallet).
type KeyPair struct {
	Sk *bls12377_fr.Element
	Pk *bls12377.G1Affine
}

// GenerateKeyPair returns a fresh random keypair.
func GenerateKeyPair() (*KeyPair, error) {
	var sk bls12377_fr.Element
	if _, err := sk.SetRandom(); err != nil {
		return nil, fmt.Errorf("mpc: sampling secret scalar: %w", err)
	}
	g1Jac, _, _, _ := bls12377.Generators()
	var pk bls12377.G1Affine
	pk.FromJacobian(&g1Jac)
	pk.ScalarMultiplication(&pk, sk.BigInt(new(big.Int)))
	return &KeyPair{Sk: &sk, Pk: &pk}, nil
}

// PubBytes is the compressed encoding of the public point.
func (kp *KeyPair) PubBytes() []byte {
	b := kp.Pk.Bytes()
	return b[:]
}

// ParsePub decodes a compressed public point.
func ParsePub(data []byte) (*bls12377.G1Affine, error) {
	var p bls12377.G1Affine
	if _, err := p.SetBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPubkey, err)
	}
	return &p, nil
}

// sharedPoint is G^ab given our scalar and their point.
func sharedPoint(sk *bls12377_fr.Element, pk *bls12377.G1Affine) *bls12377.G1Affine {
	var shared bls12377.G1Affine
	shared.ScalarMultiplication(pk, sk.BigInt(new(big.Int)))
	return &shared
}

// maskChain derives n MiMC masks from the shared point and the nonce. Each
// mask feeds the next, so two sections sealed under the same pair of keys
// but different nonces share no masks.
func maskChain(shared *bls12377.G1Affine, nonce uint64, n int) [][]byte {
	h := mimcNative.NewMiMC()
	x := shared.X.Bytes()
	y := shared.Y.Bytes()

	var nonceBlock [mimcNative.BlockSize]byte
	binary.BigEndian.PutUint64(nonceBlock[mimcNative.BlockSize-8:], nonce)

	h.Write(x[:])
	h.Write(y[:])
	h.Write(nonceBlock[:])
	mask := h.Sum(nil)

	masks := make([][]byte, n)
	for i := 0; i < n; i++ {
		masks[i] = mask
		h.Write(mask)
		mask = h.Sum(nil)
	}
	return masks
}

// xorPad xors two byte slices, padding the shorter one with zeros.
func xorPad(a, b []byte) []byte {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	out := make([]byte, maxLen)
	for i := 0; i < maxLen; i++ {
		var ab, bb byte
		if i < len(a) {
			ab = a[i]
		}
		if i < len(b) {
			bb = b[i]
		}
		out[i] = ab ^ bb
	}
	return out
}

// Section is one sealed tuple: ciphertext words plus the ephemeral pubkey
// and nonce needed to unseal them. Readers must never combine the cipher of
// one section with the pubkey or nonce of another.
type Section struct {
	EphemeralPub []byte   `json:"ephemeral_pub"`
	Nonce        uint64   `json:"nonce"`
	Cipher       [][]byte `json:"cipher"`
}

// Seal encrypts the words toward the recipient's public key under a fresh
// ephemeral keypair and random nonce.
func Seal(words []uint64, recipient *bls12377.G1Affine) (*Section, error) {
	eph, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	var nonceBytes [8]byte
	if _, err := rand.Read(nonceBytes[:]); err != nil {
		return nil, fmt.Errorf("mpc: sampling nonce: %w", err)
	}
	nonce := binary.BigEndian.Uint64(nonceBytes[:])

	shared := sharedPoint(eph.Sk, recipient)
	masks := maskChain(shared, nonce, len(words))

	cipher := make([][]byte, len(words))
	for i, w := range words {
		var wb [8]byte
		binary.BigEndian.PutUint64(wb[:], w)
		cipher[i] = xorPad(wb[:], masks[i])
	}
	return &Section{
		EphemeralPub: eph.PubBytes(),
		Nonce:        nonce,
		Cipher:       cipher,
	}, nil
}

// Open unseals a section with the recipient's secret scalar. The expected
// word count guards against a section from a different tuple kind.
func Open(sk *bls12377_fr.Element, sec *Section, wantWords int) ([]uint64, error) {
	if sec == nil || len(sec.Cipher) != wantWords {
		return nil, ErrWrongSection
	}
	eph, err := ParsePub(sec.EphemeralPub)
	if err != nil {
		return nil, err
	}
	shared := sharedPoint(sk, eph)
	masks := maskChain(shared, sec.Nonce, wantWords)

	words := make([]uint64, wantWords)
	for i, c := range sec.Cipher {
		if len(c) < 8 {
			return nil, ErrBadSection
		}
		plain := xorPad(c, masks[i])
		words[i] = binary.BigEndian.Uint64(plain[:8])
	}
	return words, nil
}

// IdentityWord folds an account public key into a single circuit word via
// MiMC, so identity equality inside a circuit is one word comparison.
// The key bytes are chunked into 32-byte pieces left-padded to the MiMC
// block size so every block stays below the field modulus.
func IdentityWord(pub []byte) uint64 {
	h := mimcNative.NewMiMC()
	var block [mimcNative.BlockSize]byte
	for off := 0; off < len(pub); off += 32 {
		end := off + 32
		if end > len(pub) {
			end = len(pub)
		}
		for i := range block {
			block[i] = 0
		}
		copy(block[mimcNative.BlockSize-(end-off):], pub[off:end])
		h.Write(block[:])
	}
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}
