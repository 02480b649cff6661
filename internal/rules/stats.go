// stats.go - Base stat tables for celestial bodies and comet boost application.

package rules

import "encforest/internal/noise"

// Stats holds the derived characteristics of a celestial body. Capacities
// scale quadratically with size, generation speeds linearly.
type Stats struct {
	MaxShipCapacity  uint64 `json:"max_ship_capacity"`
	ShipGenSpeed     uint64 `json:"ship_gen_speed"`
	MaxMetalCapacity uint64 `json:"max_metal_capacity"`
	MetalGenSpeed    uint64 `json:"metal_gen_speed"`
	Range            uint64 `json:"range"`
	LaunchVelocity   uint64 `json:"launch_velocity"`
	NativeShips      uint64 `json:"native_ships"`
}

// BaseStats returns the unboosted stats for a body of the given type and
// size. Size is expected in 1..6; the table is total over the whole byte
// range anyway.
func BaseStats(bodyType noise.BodyType, size uint8) Stats {
	s := uint64(size)
	sq := s * s

	var st Stats
	switch bodyType {
	case noise.Quasar:
		st = Stats{
			MaxShipCapacity:  500 * sq,
			ShipGenSpeed:     0,
			MaxMetalCapacity: 500 * sq,
			MetalGenSpeed:    0,
			Range:            2 + s,
			LaunchVelocity:   1 + s,
			NativeShips:      20 * s,
		}
	case noise.SpacetimeRip:
		st = Stats{
			MaxShipCapacity:  50 * sq,
			ShipGenSpeed:     1 * s,
			MaxMetalCapacity: 0,
			MetalGenSpeed:    0,
			Range:            2 + s,
			LaunchVelocity:   1 + s,
			NativeShips:      15 * s,
		}
	case noise.AsteroidBelt:
		st = Stats{
			MaxShipCapacity:  80 * sq,
			ShipGenSpeed:     0,
			MaxMetalCapacity: 200 * sq,
			MetalGenSpeed:    2 * s,
			Range:            2 + s,
			LaunchVelocity:   1 + s,
			NativeShips:      10 * s,
		}
	default: // Planet
		native := 10 * s
		if size == 1 {
			native = 0
		}
		st = Stats{
			MaxShipCapacity:  100 * sq,
			ShipGenSpeed:     1 * s,
			MaxMetalCapacity: 0,
			MetalGenSpeed:    0,
			Range:            3 + s,
			LaunchVelocity:   1 + s,
			NativeShips:      native,
		}
	}
	return st
}

// ApplyComets doubles one stat per comet, in comet order. Two comets with
// the same boost quadruple it, which is why comet derivation perturbs
// collisions instead of deduplicating.
func ApplyComets(st Stats, comets []noise.CometBoost) Stats {
	for _, c := range comets {
		switch c {
		case noise.BoostShipCapacity:
			st.MaxShipCapacity *= 2
		case noise.BoostMetalCapacity:
			st.MaxMetalCapacity *= 2
		case noise.BoostShipGenSpeed:
			st.ShipGenSpeed *= 2
		case noise.BoostMetalGenSpeed:
			st.MetalGenSpeed *= 2
		case noise.BoostRange:
			st.Range *= 2
		case noise.BoostLaunchVelocity:
			st.LaunchVelocity *= 2
		}
	}
	return st
}

// BodyStats composes classification into playable stats: base table by type
// and size, then comet boosts in order.
func BodyStats(props noise.Properties) Stats {
	return ApplyComets(BaseStats(props.Body, props.Size), props.Comets)
}
