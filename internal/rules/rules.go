// rules.go - Resource, movement and upgrade laws for the encrypted forest.
//
// These are the cleartext mirrors of the arithmetic evaluated inside the
// confidential circuits. Every function is total: a single if/else cascade
// assigning one result, no early returns, so the circuit rendition and this
// one stay semantically identical.

package rules

import "math"

const (
	// SpeedScale normalizes the game-speed unit in the generation and
	// travel-time laws. A game speed of S means one unit of generation
	// (and one unit of distance at unit velocity) per S slots.
	SpeedScale = 1

	// NeverArrives is the landing slot of a shipment launched with zero
	// velocity.
	NeverArrives = math.MaxUint64

	// BaseUpgradeCost anchors the exponential upgrade schedule.
	BaseUpgradeCost = 100

	// MaxUpgradeLevel caps the explicit cost cascade; levels above it pay
	// the top cost.
	MaxUpgradeLevel = 12
)

// CurrentAmount applies the lazy regeneration law shared by ships and metal:
// the last known value plus gen-speed scaled elapsed time, capped at max.
// Zero gen speed, zero speed divisor, or non-positive elapsed time all leave
// the last value untouched.
func CurrentAmount(last, max, genSpeed, lastSlot, nowSlot, speedDivisor uint64) uint64 {
	var out uint64
	if genSpeed == 0 || speedDivisor == 0 || nowSlot <= lastSlot {
		out = last
	} else {
		elapsed := nowSlot - lastSlot
		generated := genSpeed * elapsed * SpeedScale / speedDivisor
		total := last + generated
		if total > max || total < last {
			// overflow also clamps
			out = max
		} else {
			out = total
		}
	}
	return out
}

// Distance approximates the travel distance between two points as
// max(|dx|,|dy|) + min(|dx|,|dy|)/2. Cheaper than a Euclidean norm in the
// oblivious-arithmetic model, which has no square root.
func Distance(sx, sy, tx, ty int64) uint64 {
	dx := absDiff(sx, tx)
	dy := absDiff(sy, ty)
	var maxD, minD uint64
	if dx > dy {
		maxD = dx
		minD = dy
	} else {
		maxD = dy
		minD = dx
	}
	return maxD + minD/2
}

func absDiff(a, b int64) uint64 {
	var d uint64
	if a > b {
		d = uint64(a - b)
	} else {
		d = uint64(b - a)
	}
	return d
}

// Decay returns the ships surviving a journey: one ship lost per full range
// unit traveled. Zero range loses the whole fleet.
func Decay(ships, distance, rng uint64) uint64 {
	var out uint64
	if rng == 0 {
		out = 0
	} else {
		lost := distance / rng
		if lost > ships {
			out = 0
		} else {
			out = ships - lost
		}
	}
	return out
}

// LandingSlot computes when a shipment launched now arrives. Zero velocity
// yields the NeverArrives sentinel.
func LandingSlot(now, distance, velocity, speedDivisor uint64) uint64 {
	var out uint64
	if velocity == 0 {
		out = NeverArrives
	} else {
		travel := distance * speedDivisor / (velocity * SpeedScale)
		out = now + travel
		if out < now {
			out = NeverArrives
		}
	}
	return out
}

// UpgradeCost is the metal price of leaving the given level: 100 * 2^level.
// Written as an explicit cascade because the circuit arithmetic has no power
// or shift operator; levels beyond MaxUpgradeLevel pay the top cost.
func UpgradeCost(level uint8) uint64 {
	var cost uint64
	if level <= 1 {
		cost = BaseUpgradeCost * 2
	} else if level == 2 {
		cost = BaseUpgradeCost * 4
	} else if level == 3 {
		cost = BaseUpgradeCost * 8
	} else if level == 4 {
		cost = BaseUpgradeCost * 16
	} else if level == 5 {
		cost = BaseUpgradeCost * 32
	} else if level == 6 {
		cost = BaseUpgradeCost * 64
	} else if level == 7 {
		cost = BaseUpgradeCost * 128
	} else if level == 8 {
		cost = BaseUpgradeCost * 256
	} else if level == 9 {
		cost = BaseUpgradeCost * 512
	} else if level == 10 {
		cost = BaseUpgradeCost * 1024
	} else if level == 11 {
		cost = BaseUpgradeCost * 2048
	} else {
		cost = BaseUpgradeCost * 4096
	}
	return cost
}

// CombatOutcome is the defender-side result of resolving one landed shipment.
type CombatOutcome struct {
	Ships     uint64
	Metal     uint64
	Conquered bool
}

// ResolveCombat applies the single combat law.
//
// Friendly (attacker owns the target): ships and metal add, capped.
// Hostile and attacker strictly stronger: ownership transfers, the surviving
// attacker ships (capped) become the garrison and the shipped metal (capped)
// replaces the defender's metal, which is destroyed.
// Otherwise the defender holds, loses the attacking ship count, and keeps its
// metal. Ties favor the defender.
func ResolveCombat(defShips, defMetal, maxShips, maxMetal, attShips, attMetal uint64, friendly bool) CombatOutcome {
	var out CombatOutcome
	if friendly {
		out = CombatOutcome{
			Ships:     capAdd(defShips, attShips, maxShips),
			Metal:     capAdd(defMetal, attMetal, maxMetal),
			Conquered: false,
		}
	} else if attShips > defShips {
		remaining := attShips - defShips
		if remaining > maxShips {
			remaining = maxShips
		}
		landedMetal := attMetal
		if landedMetal > maxMetal {
			landedMetal = maxMetal
		}
		out = CombatOutcome{
			Ships:     remaining,
			Metal:     landedMetal,
			Conquered: true,
		}
	} else {
		out = CombatOutcome{
			Ships:     defShips - attShips,
			Metal:     defMetal,
			Conquered: false,
		}
	}
	return out
}

func capAdd(a, b, max uint64) uint64 {
	sum := a + b
	var out uint64
	if sum > max || sum < a {
		out = max
	} else {
		out = sum
	}
	return out
}
