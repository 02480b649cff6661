// flush_planet.go - Landed-shipment application circuit.

package circuits

// FlushReveal is the declassified flush outcome: whether a payload was
// applied, never the combat result itself.
type FlushReveal struct {
	Applied uint64
}

// FlushPlanet regenerates the target's resources and resolves exactly one
// landed shipment against them. The caller guarantees landing order; this
// circuit is the single combat law.
//
// Friendly reinforcement (attacker matches the current owner) adds and caps
// both resources. A strictly stronger hostile attacker conquers: survivors
// garrison the planet and the shipped metal replaces the stockpile.
// Otherwise the defender holds and loses the attacking ship count. A zero
// payload (an already-invalidated move) degenerates to a pure regeneration
// pass, which is why Applied is revealed separately.
func FlushPlanet(st Static, dyn Dynamic, mv MovePayload, nowSlot, gameSpeed uint64) (Dynamic, FlushReveal) {
	owned := dyn[DOwned]
	defShips := currentAmount(dyn[DShipCount], st[SMaxShipCap], owned*st[SShipGen],
		dyn[DLastUpdated], nowSlot, gameSpeed)
	defMetal := currentAmount(dyn[DMetalCount], st[SMaxMetalCap], owned*st[SMetalGen],
		dyn[DLastUpdated], nowSlot, gameSpeed)

	attShips := mv[MShips]
	attMetal := mv[MMetal]
	attacker := mv[MAttacker]
	applied := gtU(attShips, 0) + gtU(attMetal, 0) - gtU(attShips, 0)*gtU(attMetal, 0)

	friendly := owned * eqU(dyn[DOwner], attacker)
	conquer := (1 - friendly) * gtU(attShips, defShips) * applied

	// The three outcome branches, each evaluated unconditionally.
	reinforcedShips := capAdd(defShips, attShips, st[SMaxShipCap])
	reinforcedMetal := capAdd(defMetal, attMetal, st[SMaxMetalCap])
	conqueredShips := capAt(attShips-conquer*defShips, st[SMaxShipCap])
	conqueredMetal := capAt(attMetal, st[SMaxMetalCap])
	heldShips := satSub(defShips, attShips)

	hostileShips := sel(conquer, conqueredShips, heldShips)
	hostileMetal := sel(conquer, conqueredMetal, defMetal)

	var out Dynamic
	out[DShipCount] = sel(friendly, reinforcedShips, hostileShips)
	out[DMetalCount] = sel(friendly, reinforcedMetal, hostileMetal)
	out[DOwned] = sel(conquer, 1, owned)
	out[DOwner] = sel(conquer, attacker, dyn[DOwner])
	out[DLastUpdated] = nowSlot

	return out, FlushReveal{Applied: applied}
}
