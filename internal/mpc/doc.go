// Package mpc emulates the confidential computing cluster that executes the
// game's hidden-state transitions.
//
// Overview:
//   - Seals fixed-width uint64 tuples toward a reader key using one-shot
//     Diffie-Hellman sections (fresh ephemeral key and nonce per seal)
//   - Runs the circuits package over unsealed tuples on a worker pool and
//     delivers each result through exactly one callback invocation
//   - Optionally attests every transition with a Groth16 proof binding the
//     revealed scalars to a MiMC commitment over the full output transcript
//
// Security Model:
//   - BLS12-377 for Diffie-Hellman key exchange, MiMC for mask derivation,
//     commitments and identity folding
//   - Proofs are generated and verified with gnark (Groth16, BW6-761)
//   - All randomness comes from crypto/rand
//   - A section's pubkey, nonce and ciphertext form one atomic unit; mixing
//     parts across sections yields garbage, never a partial plaintext
//
// Usage:
//   - Construct a LocalEngine with NewLocalEngine, seal arguments with
//     SealCoords, SealMoveRequest or SealUpgradeRequest against ClusterPub,
//     and submit transitions through the Submit* methods
//   - Pass AttestationKeys from CompileAttestation and SetupOrLoadKeys to
//     enable proof generation; pass nil to run unattested
package mpc
