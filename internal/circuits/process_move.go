// process_move.go - Shipment departure circuit.

package circuits

import "math"

// MoveRequest is the secret argument tuple of a departure: both coordinate
// pairs stay hidden so neither endpoint is revealed by the transaction.
type MoveRequest struct {
	SourceX, SourceY int64
	TargetX, TargetY int64
	Ships            uint64
	Metal            uint64
	Actor            uint64 // folded identity of the requesting player
}

// MoveReveal is the declassified departure outcome. Landing slot and
// surviving-ship count describe only this shipment, never the source
// planet's totals.
type MoveReveal struct {
	LandingSlot uint64
	Surviving   uint64
	Valid       uint64
}

// ProcessMove validates a departure against the source planet's regenerated
// resources and deducts the full requested amounts when every predicate
// holds. The four predicates (ownership, ships, metal, survivability) fold
// multiplicatively; on a zero product the returned dynamic tuple is
// word-for-word the input, the no-partial-effects guarantee for rejected
// actions.
func ProcessMove(st Static, dyn Dynamic, req MoveRequest, nowSlot, gameSpeed uint64) (Dynamic, MovePayload, MoveReveal) {
	owned := dyn[DOwned]
	curShips := currentAmount(dyn[DShipCount], st[SMaxShipCap], owned*st[SShipGen],
		dyn[DLastUpdated], nowSlot, gameSpeed)
	curMetal := currentAmount(dyn[DMetalCount], st[SMaxMetalCap], owned*st[SMetalGen],
		dyn[DLastUpdated], nowSlot, gameSpeed)

	dx := absDiff(req.SourceX, req.TargetX)
	dy := absDiff(req.SourceY, req.TargetY)
	hi, lo := maxMin(dx, dy)
	distance := hi + lo/2

	// Decay: one ship lost per full range unit, zero range loses all.
	rng := st[SRange]
	lost := distance / sel(eqU(rng, 0), 1, rng)
	surviving := (1 - eqU(rng, 0)) * satSub(req.Ships, lost)

	vel := st[SLaunchVelocity]
	travel := distance * gameSpeed / sel(eqU(vel, 0), 1, vel)
	landing := sel(eqU(vel, 0), math.MaxUint64, nowSlot+travel)

	ownerOK := owned * eqU(dyn[DOwner], req.Actor)
	shipsOK := gtU(req.Ships, 0) * leU(req.Ships, curShips)
	metalOK := leU(req.Metal, curMetal)
	arrives := geU(surviving, 1)
	valid := ownerOK * shipsOK * metalOK * arrives

	var out Dynamic
	out[DShipCount] = sel(valid, curShips-valid*req.Ships, dyn[DShipCount])
	out[DMetalCount] = sel(valid, curMetal-valid*req.Metal, dyn[DMetalCount])
	out[DOwned] = dyn[DOwned]
	out[DOwner] = dyn[DOwner]
	out[DLastUpdated] = sel(valid, nowSlot, dyn[DLastUpdated])

	var payload MovePayload
	payload[MShips] = valid * surviving
	payload[MMetal] = valid * req.Metal
	payload[MAttacker] = valid * req.Actor

	return out, payload, MoveReveal{
		LandingSlot: landing,
		Surviving:   surviving,
		Valid:       valid,
	}
}
