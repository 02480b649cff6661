// verify_spawn.go - Spawn-claim validation circuit.

package circuits

import "encforest/internal/noise"

// VerifySpawnReveal is the declassified spawn-validation result.
type VerifySpawnReveal struct {
	Valid      uint64 // coordinates hash to the claimed identifier and hold a body
	SpawnValid uint64 // additionally a size-1 Planet-type body
}

// VerifySpawn checks that the secret coordinates hash to the publicly
// claimed planet identifier and that the body there is a legal spawn
// target. Both predicates fold multiplicatively; the hash comparison runs
// over all four words regardless of earlier mismatches.
func VerifySpawn(x, y int64, gameID uint64, claimed [4]uint64, th Thresholds) VerifySpawnReveal {
	h := noise.Mix(x, y, gameID)
	match := eqU(h[0], claimed[0]) * eqU(h[1], claimed[1]) *
		eqU(h[2], claimed[2]) * eqU(h[3], claimed[3])

	st, _, isBody := deriveStatic(h, th)
	valid := match * isBody
	spawnable := valid * eqU(st[SBodyType], 0) * eqU(st[SSize], 1)

	return VerifySpawnReveal{Valid: valid, SpawnValid: spawnable}
}
