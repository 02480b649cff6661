// attest_test.go - Tests for transcript commitment and Groth16 attestation.

package mpc

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTranscript() Transcript {
	var tr Transcript
	for i := range tr.Secret {
		tr.Secret[i] = uint64(i * 101)
	}
	tr.Revealed = [TranscriptRevealed]uint64{opProcessMove, 1, 63, 28}
	return tr
}

func TestCommitDeterministic(t *testing.T) {
	tr := sampleTranscript()
	assert.Equal(t, Commit(tr), Commit(tr))

	tweaked := tr
	tweaked.Secret[3]++
	assert.NotEqual(t, Commit(tr), Commit(tweaked))

	tweaked = tr
	tweaked.Revealed[1] = 0
	assert.NotEqual(t, Commit(tr), Commit(tweaked))
}

func TestProveVerifyTranscript(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup is slow")
	}

	ccs, err := CompileAttestation()
	require.NoError(t, err)

	dir := t.TempDir()
	pk, vk, err := SetupOrLoadKeys(ccs, filepath.Join(dir, "attest.pk"), filepath.Join(dir, "attest.vk"))
	require.NoError(t, err)

	tr := sampleTranscript()
	att, err := ProveTranscript(ccs, pk, tr)
	require.NoError(t, err)
	require.NoError(t, VerifyTranscript(vk, att, tr.Revealed))

	// Tampered revealed scalars must not verify against the same proof.
	bad := tr.Revealed
	bad[2] = 999
	assert.Error(t, VerifyTranscript(vk, att, bad))
}

func TestSetupOrLoadKeysReusesCache(t *testing.T) {
	if testing.Short() {
		t.Skip("groth16 setup is slow")
	}

	ccs, err := CompileAttestation()
	require.NoError(t, err)

	dir := t.TempDir()
	pkPath := filepath.Join(dir, "attest.pk")
	vkPath := filepath.Join(dir, "attest.vk")

	_, vk1, err := SetupOrLoadKeys(ccs, pkPath, vkPath)
	require.NoError(t, err)
	pk2, vk2, err := SetupOrLoadKeys(ccs, pkPath, vkPath)
	require.NoError(t, err)

	// The cached keys must still prove and verify together.
	tr := sampleTranscript()
	att, err := ProveTranscript(ccs, pk2, tr)
	require.NoError(t, err)
	require.NoError(t, VerifyTranscript(vk1, att, tr.Revealed))
	require.NoError(t, VerifyTranscript(vk2, att, tr.Revealed))
}
