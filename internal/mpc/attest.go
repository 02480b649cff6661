// attest.go - Groth16 attestation of confidential transition outputs.
//
// The computing cluster accompanies every callback with a proof that the
// revealed scalars belong to the same execution as the sealed output tuple:
// the proof binds a public MiMC commitment over the full output transcript
// to the publicly revealed words, without opening the secret ones.

package mpc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	mimcNative "github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/std/hash/mimc"
)

const (
	// TranscriptSecretWords is the fixed secret width of one transition
	// output: static tuple, dynamic tuple, move payload. Transitions that
	// produce less pad with zeros.
	TranscriptSecretWords = 20

	// TranscriptRevealed is the fixed number of revealed scalars.
	TranscriptRevealed = 4
)

// Transcript is the full output of one confidential transition, in the
// fixed order the commitment hashes it.
type Transcript struct {
	Secret   [TranscriptSecretWords]uint64
	Revealed [TranscriptRevealed]uint64
}

// Commit is the native MiMC commitment over the transcript, word order
// secret-then-revealed. Must stay aligned with attestCircuit.Define.
func Commit(tr Transcript) []byte {
	h := mimcNative.NewMiMC()
	var block [mimcNative.BlockSize]byte
	writeWord := func(w uint64) {
		for i := range block {
			block[i] = 0
		}
		binary.BigEndian.PutUint64(block[mimcNative.BlockSize-8:], w)
		h.Write(block[:])
	}
	for _, w := range tr.Secret {
		writeWord(w)
	}
	for _, w := range tr.Revealed {
		writeWord(w)
	}
	return h.Sum(nil)
}

type attestCircuit struct {
	// Public inputs
	Commitment frontend.Variable                     `gnark:",public"`
	Revealed   [TranscriptRevealed]frontend.Variable `gnark:",public"`

	// Private inputs
	Secret [TranscriptSecretWords]frontend.Variable
}

func (c *attestCircuit) Define(api frontend.API) error {
	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	for i := 0; i < TranscriptSecretWords; i++ {
		hasher.Write(c.Secret[i])
	}
	for i := 0; i < TranscriptRevealed; i++ {
		hasher.Write(c.Revealed[i])
	}
	api.AssertIsEqual(c.Commitment, hasher.Sum())
	return nil
}

// CompileAttestation builds the attestation constraint system.
func CompileAttestation() (constraint.ConstraintSystem, error) {
	var circuit attestCircuit
	ccs, err := frontend.Compile(ecc.BW6_761.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("mpc: compiling attestation circuit: %w", err)
	}
	return ccs, nil
}

// Attestation is a serialized proof plus its public commitment.
type Attestation struct {
	Proof      []byte `json:"proof"`
	Commitment []byte `json:"commitment"`
}

// ProveTranscript produces the attestation for one transition output.
func ProveTranscript(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, tr Transcript) (*Attestation, error) {
	commitment := Commit(tr)

	var assignment attestCircuit
	assignment.Commitment = new(big.Int).SetBytes(commitment)
	for i, w := range tr.Revealed {
		assignment.Revealed[i] = new(big.Int).SetUint64(w)
	}
	for i, w := range tr.Secret {
		assignment.Secret[i] = new(big.Int).SetUint64(w)
	}

	w, err := frontend.NewWitness(&assignment, ecc.BW6_761.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("mpc: building witness: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, w)
	if err != nil {
		return nil, fmt.Errorf("mpc: proving transcript: %w", err)
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("mpc: serializing proof: %w", err)
	}
	return &Attestation{Proof: buf.Bytes(), Commitment: commitment}, nil
}

// VerifyTranscript checks an attestation against the revealed scalars.
func VerifyTranscript(vk groth16.VerifyingKey, att *Attestation, revealed [TranscriptRevealed]uint64) error {
	var assignment attestCircuit
	assignment.Commitment = new(big.Int).SetBytes(att.Commitment)
	for i, w := range revealed {
		assignment.Revealed[i] = new(big.Int).SetUint64(w)
	}

	w, err := frontend.NewWitness(&assignment, ecc.BW6_761.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("mpc: building public witness: %w", err)
	}

	proof := groth16.NewProof(ecc.BW6_761)
	if _, err := proof.ReadFrom(bytes.NewReader(att.Proof)); err != nil {
		return fmt.Errorf("mpc: deserializing proof: %w", err)
	}
	if err := groth16.Verify(proof, vk, w); err != nil {
		return fmt.Errorf("mpc: attestation rejected: %w", err)
	}
	return nil
}

// SaveProvingKey writes a proving key to disk.
func SaveProvingKey(path string, pk groth16.ProvingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = pk.WriteTo(f)
	return err
}

// SaveVerifyingKey writes a verifying key to disk.
func SaveVerifyingKey(path string, vk groth16.VerifyingKey) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = vk.WriteTo(f)
	return err
}

// LoadProvingKey reads a proving key from disk.
func LoadProvingKey(path string) (groth16.ProvingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pk := groth16.NewProvingKey(ecc.BW6_761)
	_, err = pk.ReadFrom(f)
	return pk, err
}

// LoadVerifyingKey reads a verifying key from disk.
func LoadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vk := groth16.NewVerifyingKey(ecc.BW6_761)
	_, err = vk.ReadFrom(f)
	return vk, err
}

// SetupOrLoadKeys loads cached Groth16 keys when both files exist, otherwise
// runs setup and persists the result.
func SetupOrLoadKeys(ccs constraint.ConstraintSystem, pkPath, vkPath string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	if _, err := os.Stat(pkPath); err == nil {
		if _, err := os.Stat(vkPath); err == nil {
			pk, errPk := LoadProvingKey(pkPath)
			vk, errVk := LoadVerifyingKey(vkPath)
			if errPk == nil && errVk == nil {
				return pk, vk, nil
			}
		}
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, fmt.Errorf("mpc: groth16 setup: %w", err)
	}
	if err := SaveProvingKey(pkPath, pk); err != nil {
		return nil, nil, err
	}
	if err := SaveVerifyingKey(vkPath, vk); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}
