// upgrade_planet.go - Planet upgrade circuit.

package circuits

// UpgradeRequest is the secret argument tuple of an upgrade. Focus stays
// secret so an observer cannot tell whether the owner invested in reach or
// speed.
type UpgradeRequest struct {
	Actor uint64
	Focus uint64 // 0 doubles range, anything else doubles launch velocity
}

// UpgradeReveal is the declassified upgrade outcome.
type UpgradeReveal struct {
	Success  uint64
	NewLevel uint64
}

// upgradeCost is 100 * 2^level as a total cascade; the circuit arithmetic
// has no power or shift operator. Levels past 12 pay the top cost.
func upgradeCost(level uint64) uint64 {
	var cost uint64
	if level <= 1 {
		cost = 200
	} else if level == 2 {
		cost = 400
	} else if level == 3 {
		cost = 800
	} else if level == 4 {
		cost = 1600
	} else if level == 5 {
		cost = 3200
	} else if level == 6 {
		cost = 6400
	} else if level == 7 {
		cost = 12800
	} else if level == 8 {
		cost = 25600
	} else if level == 9 {
		cost = 51200
	} else if level == 10 {
		cost = 102400
	} else if level == 11 {
		cost = 204800
	} else {
		cost = 409600
	}
	return cost
}

// UpgradePlanet validates ownership, body type and the metal price, then
// increments the level, doubles both capacities and the ship generation
// speed, and doubles one of range or launch velocity per the secret focus.
// Regeneration applies to the dynamic tuple whether or not the upgrade
// succeeds; everything else is unchanged on failure.
func UpgradePlanet(st Static, dyn Dynamic, req UpgradeRequest, nowSlot, gameSpeed uint64) (Static, Dynamic, UpgradeReveal) {
	owned := dyn[DOwned]
	curShips := currentAmount(dyn[DShipCount], st[SMaxShipCap], owned*st[SShipGen],
		dyn[DLastUpdated], nowSlot, gameSpeed)
	curMetal := currentAmount(dyn[DMetalCount], st[SMaxMetalCap], owned*st[SMetalGen],
		dyn[DLastUpdated], nowSlot, gameSpeed)

	cost := upgradeCost(st[SLevel])
	success := owned * eqU(dyn[DOwner], req.Actor) * eqU(st[SBodyType], 0) *
		geU(curMetal, cost)

	focusVel := gtU(req.Focus, 0)

	outSt := st
	outSt[SLevel] = st[SLevel] + success
	outSt[SMaxShipCap] = st[SMaxShipCap] * (1 + success)
	outSt[SMaxMetalCap] = st[SMaxMetalCap] * (1 + success)
	outSt[SShipGen] = st[SShipGen] * (1 + success)
	outSt[SRange] = st[SRange] * (1 + success*(1-focusVel))
	outSt[SLaunchVelocity] = st[SLaunchVelocity] * (1 + success*focusVel)

	var outDyn Dynamic
	outDyn[DShipCount] = curShips
	outDyn[DMetalCount] = curMetal - success*cost
	outDyn[DOwned] = dyn[DOwned]
	outDyn[DOwner] = dyn[DOwner]
	outDyn[DLastUpdated] = nowSlot

	return outSt, outDyn, UpgradeReveal{Success: success, NewLevel: outSt[SLevel]}
}
