// rules_test.go - Tests for regeneration, movement, upgrade and combat laws.

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"encforest/internal/noise"
)

func TestCurrentAmount(t *testing.T) {
	t.Run("regenerates linearly", func(t *testing.T) {
		// gen 3/speed 2 over 10 slots: 3*10/2 = 15 generated.
		assert.Equal(t, uint64(115), CurrentAmount(100, 1000, 3, 0, 10, 2))
	})

	t.Run("caps at max", func(t *testing.T) {
		assert.Equal(t, uint64(120), CurrentAmount(100, 120, 5, 0, 100, 1))
	})

	t.Run("frozen when gen speed is zero", func(t *testing.T) {
		assert.Equal(t, uint64(100), CurrentAmount(100, 1000, 0, 0, 50, 2))
	})

	t.Run("frozen when game speed is zero", func(t *testing.T) {
		assert.Equal(t, uint64(100), CurrentAmount(100, 1000, 3, 0, 50, 0))
	})

	t.Run("frozen when time does not advance", func(t *testing.T) {
		assert.Equal(t, uint64(100), CurrentAmount(100, 1000, 3, 50, 50, 2))
		assert.Equal(t, uint64(100), CurrentAmount(100, 1000, 3, 60, 50, 2))
	})
}

func TestDistance(t *testing.T) {
	cases := []struct {
		name           string
		sx, sy, tx, ty int64
		want           uint64
	}{
		{"same point", 4, 4, 4, 4, 0},
		{"axis aligned", 0, 0, 5, 0, 5},
		{"diagonal", 0, 0, 4, 4, 6},
		{"mixed", 0, 0, 6, 2, 7},
		{"negative coords", -3, -3, 3, 3, 9},
		{"symmetric", 7, -2, -1, 5, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Distance(tc.sx, tc.sy, tc.tx, tc.ty)
			if tc.name == "symmetric" {
				assert.Equal(t, Distance(tc.tx, tc.ty, tc.sx, tc.sy), got)
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecay(t *testing.T) {
	assert.Equal(t, uint64(100), Decay(100, 3, 4), "short trips lose nothing")
	assert.Equal(t, uint64(98), Decay(100, 8, 4), "one ship per full range unit")
	assert.Equal(t, uint64(0), Decay(5, 100, 4), "losses clamp at zero")
	assert.Equal(t, uint64(0), Decay(100, 1, 0), "zero range loses the fleet")
}

func TestLandingSlot(t *testing.T) {
	t.Run("zero velocity never arrives", func(t *testing.T) {
		assert.Equal(t, uint64(NeverArrives), LandingSlot(10, 5, 0, 2))
	})

	t.Run("travel time scales with distance and game speed", func(t *testing.T) {
		assert.Equal(t, uint64(110), LandingSlot(100, 10, 2, 2))
		assert.Equal(t, uint64(120), LandingSlot(100, 20, 2, 2))
	})

	t.Run("monotone in distance", func(t *testing.T) {
		prev := uint64(0)
		for d := uint64(0); d < 100; d += 7 {
			slot := LandingSlot(50, d, 3, 4)
			require.GreaterOrEqual(t, slot, prev)
			prev = slot
		}
	})
}

func TestUpgradeCost(t *testing.T) {
	assert.Equal(t, uint64(200), UpgradeCost(1))
	assert.Equal(t, uint64(400), UpgradeCost(2))
	assert.Equal(t, uint64(51200), UpgradeCost(9))
	assert.Equal(t, UpgradeCost(MaxUpgradeLevel), UpgradeCost(MaxUpgradeLevel+1),
		"cost saturates past the top level")
}

func TestResolveCombat(t *testing.T) {
	t.Run("friendly reinforcement adds and caps", func(t *testing.T) {
		out := ResolveCombat(80, 10, 100, 50, 30, 45, true)
		assert.Equal(t, uint64(100), out.Ships)
		assert.Equal(t, uint64(50), out.Metal)
		assert.False(t, out.Conquered)
	})

	t.Run("stronger attacker conquers", func(t *testing.T) {
		out := ResolveCombat(100, 77, 500, 500, 150, 30, false)
		require.True(t, out.Conquered)
		assert.Equal(t, uint64(50), out.Ships, "survivors garrison the planet")
		assert.Equal(t, uint64(30), out.Metal, "shipped metal replaces the defender's")
	})

	t.Run("tie favors the defender", func(t *testing.T) {
		out := ResolveCombat(100, 77, 500, 500, 100, 30, false)
		require.False(t, out.Conquered)
		assert.Equal(t, uint64(0), out.Ships)
		assert.Equal(t, uint64(77), out.Metal, "defender metal untouched on a hold")
	})

	t.Run("weaker attacker repelled", func(t *testing.T) {
		out := ResolveCombat(100, 77, 500, 500, 40, 30, false)
		require.False(t, out.Conquered)
		assert.Equal(t, uint64(60), out.Ships)
	})

	t.Run("conquest respects capacities", func(t *testing.T) {
		out := ResolveCombat(10, 0, 50, 20, 1000, 500, false)
		require.True(t, out.Conquered)
		assert.Equal(t, uint64(50), out.Ships)
		assert.Equal(t, uint64(20), out.Metal)
	})
}

func TestBaseStats(t *testing.T) {
	t.Run("planet", func(t *testing.T) {
		st := BaseStats(noise.Planet, 3)
		assert.Equal(t, uint64(900), st.MaxShipCapacity)
		assert.Equal(t, uint64(3), st.ShipGenSpeed)
		assert.Equal(t, uint64(0), st.MaxMetalCapacity)
		assert.Equal(t, uint64(6), st.Range)
		assert.Equal(t, uint64(4), st.LaunchVelocity)
		assert.Equal(t, uint64(30), st.NativeShips)
	})

	t.Run("size one planet is undefended", func(t *testing.T) {
		assert.Equal(t, uint64(0), BaseStats(noise.Planet, 1).NativeShips)
	})

	t.Run("quasar stockpiles both resources", func(t *testing.T) {
		st := BaseStats(noise.Quasar, 2)
		assert.Equal(t, uint64(2000), st.MaxShipCapacity)
		assert.Equal(t, uint64(2000), st.MaxMetalCapacity)
		assert.Equal(t, uint64(0), st.ShipGenSpeed)
		assert.Equal(t, uint64(40), st.NativeShips)
	})

	t.Run("asteroid belt generates metal", func(t *testing.T) {
		st := BaseStats(noise.AsteroidBelt, 4)
		assert.Equal(t, uint64(1280), st.MaxShipCapacity)
		assert.Equal(t, uint64(3200), st.MaxMetalCapacity)
		assert.Equal(t, uint64(8), st.MetalGenSpeed)
		assert.Equal(t, uint64(40), st.NativeShips)
	})

	t.Run("spacetime rip", func(t *testing.T) {
		st := BaseStats(noise.SpacetimeRip, 2)
		assert.Equal(t, uint64(200), st.MaxShipCapacity)
		assert.Equal(t, uint64(2), st.ShipGenSpeed)
		assert.Equal(t, uint64(30), st.NativeShips)
	})
}

func TestApplyComets(t *testing.T) {
	base := BaseStats(noise.Planet, 2)

	t.Run("each comet doubles its stat", func(t *testing.T) {
		st := ApplyComets(base, []noise.CometBoost{noise.BoostRange, noise.BoostShipCapacity})
		assert.Equal(t, base.Range*2, st.Range)
		assert.Equal(t, base.MaxShipCapacity*2, st.MaxShipCapacity)
		assert.Equal(t, base.LaunchVelocity, st.LaunchVelocity)
	})

	t.Run("no comets leaves stats untouched", func(t *testing.T) {
		assert.Equal(t, base, ApplyComets(base, nil))
	})
}
