// init_planet.go - Planet materialization circuits.
//
// InitPlanet derives a celestial body's full static substate from its hidden
// coordinates and seeds the dynamic substate; InitSpawnPlanet additionally
// claims ownership when the body is a valid spawn target. Neither aborts on
// dead space: invalidity is a revealed scalar and the caller decides the
// consequence.

package circuits

import "encforest/internal/noise"

// InitReveal is the declassified portion of a planet-creation result.
type InitReveal struct {
	Hash  noise.HashWords
	Valid uint64 // 1 when the coordinates hold a celestial body
}

// SpawnReveal extends InitReveal with the spawn-target predicate. Valid and
// SpawnValid are distinct so a client can tell dead space from a wrong body
// type or size.
type SpawnReveal struct {
	InitReveal
	SpawnValid uint64
}

// deriveStatic classifies the hash and builds the boosted stat tuple using
// selector sums only. The arithmetic must agree digit-for-digit with the
// cleartext cascades in internal/noise.
func deriveStatic(h noise.HashWords, th Thresholds) (Static, uint64, uint64) {
	d0 := uint64(noise.Digit(h[0], 0))
	d1 := uint64(noise.Digit(h[0], 1))
	d2 := uint64(noise.Digit(h[0], 2))
	d3 := uint64(noise.Digit(h[0], 3))
	d4 := uint64(noise.Digit(h[0], 4))
	d5 := uint64(noise.Digit(h[0], 5))

	isBody := geU(d0, th.DeadSpace)

	// Body type code 0..3 as a sum of threshold crossings, matching the
	// Planet < Quasar < SpacetimeRip < AsteroidBelt cascade.
	bodyType := geU(d1, th.Planet) + geU(d1, th.Quasar) + geU(d1, th.SpacetimeRip)

	// Size class 1..6.
	size := 1 + geU(d2, th.Size[0]) + geU(d2, th.Size[1]) + geU(d2, th.Size[2]) +
		geU(d2, th.Size[3]) + geU(d2, th.Size[4])

	cometCount := gtU(d3, th.CometOne) + gtU(d3, th.CometTwo)
	comet0 := d4 % numBoosts
	second := d5 % numBoosts
	collide := eqU(second, comet0)
	// The perturbed digit stays a byte: 255 wraps to 0 before the boost
	// selection, like the digit arithmetic everywhere else.
	comet1 := sel(collide, ((d5+1)%256)%numBoosts, second)

	sq := size * size
	isPlanet := eqU(bodyType, 0)
	isQuasar := eqU(bodyType, 1)
	isRip := eqU(bodyType, 2)
	isBelt := eqU(bodyType, 3)

	var s Static
	s[SBodyType] = bodyType
	s[SSize] = size
	s[SMaxShipCap] = isPlanet*(100*sq) + isQuasar*(500*sq) + isRip*(50*sq) + isBelt*(80*sq)
	s[SShipGen] = isPlanet*size + isRip*size
	s[SMaxMetalCap] = isQuasar*(500*sq) + isBelt*(200*sq)
	s[SMetalGen] = isBelt * (2 * size)
	s[SRange] = isPlanet*(3+size) + (1-isPlanet)*(2+size)
	s[SLaunchVelocity] = 1 + size
	s[SLevel] = 1
	s[SCometCount] = cometCount
	s[SComet0] = comet0
	s[SComet1] = comet1

	// Comet boosts: each active comet doubles exactly one stat.
	c0 := geU(cometCount, 1)
	c1 := geU(cometCount, 2)
	for kind, idx := range [numBoosts]int{
		SMaxShipCap, SMaxMetalCap, SShipGen, SMetalGen, SRange, SLaunchVelocity,
	} {
		k := uint64(kind)
		s[idx] *= (1 + c0*eqU(comet0, k)) * (1 + c1*eqU(comet1, k))
	}

	// Native garrison: size-1 planets are undefended, everything else
	// scales linearly with size.
	miniscule := eqU(size, 1)
	native := isPlanet*sel(miniscule, 0, 10*size) +
		isQuasar*(20*size) + isRip*(15*size) + isBelt*(10*size)

	return s, native, isBody
}

// InitPlanet runs the noise engine over the secret coordinates and
// materializes the body at the current slot. Dead space still produces a
// fully populated state tuple; the revealed Valid flag is 0.
func InitPlanet(x, y int64, gameID, nowSlot uint64, th Thresholds) (Static, Dynamic, InitReveal) {
	h := noise.Mix(x, y, gameID)
	st, native, isBody := deriveStatic(h, th)

	var dyn Dynamic
	dyn[DShipCount] = native
	dyn[DMetalCount] = 0
	dyn[DOwned] = 0
	dyn[DOwner] = 0
	dyn[DLastUpdated] = nowSlot

	return st, dyn, InitReveal{Hash: h, Valid: isBody}
}

// InitSpawnPlanet materializes a body and, when it is a size-1 Planet-type
// body, assigns ownership to the requesting player with an empty garrison.
// An invalid spawn target is still materialized exactly as InitPlanet would,
// so a failed spawn leaks nothing beyond the revealed flags.
func InitSpawnPlanet(x, y int64, gameID, nowSlot, owner uint64, th Thresholds) (Static, Dynamic, SpawnReveal) {
	st, dyn, base := InitPlanet(x, y, gameID, nowSlot, th)

	spawnable := base.Valid * eqU(st[SBodyType], 0) * eqU(st[SSize], 1)
	dyn[DOwned] = spawnable
	dyn[DOwner] = spawnable * owner
	dyn[DShipCount] = sel(spawnable, 0, dyn[DShipCount])

	return st, dyn, SpawnReveal{InitReveal: base, SpawnValid: spawnable}
}
