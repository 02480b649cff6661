package main

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"encforest/internal/ledger"
	"encforest/internal/mpc"
	"encforest/internal/noise"
)

// newStack builds the full in-process stack: memory store, local engine
// without attestation, hand-advanced clock.
func newStack(t *testing.T) (*ledger.Manager, *scenarioClock) {
	t.Helper()
	engine, err := mpc.NewLocalEngine(2, nil, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })

	clock := &scenarioClock{slot: 10}
	mgr := ledger.NewManager(ledger.NewMemStore(), engine, clock, nil, zerolog.Nop())
	require.NoError(t, mgr.CreateGame(&ledger.Game{
		ID:           demoGameID,
		MapDiameter:  10000,
		Speed:        1,
		StartSlot:    1,
		EndSlot:      1_000_000,
		WinCondition: ledger.WinPointBurn,
		Thresholds:   noise.DefaultThresholds(),
		Admin:        "admin",
	}))
	return mgr, clock
}

// TestConquestLifecycle drives the whole game loop end to end: spawn,
// fleet launch, combat at an asteroid belt, metal harvest and the return
// shipment. The return shipment's acceptance doubles as the conquest
// assertion: only the belt's owner can launch from it.
func TestConquestLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("full lifecycle is slow")
	}
	mgr, clock := newStack(t)
	ctx := context.Background()
	th := noise.DefaultThresholds()

	wallet, err := mpc.GenerateKeyPair()
	require.NoError(t, err)
	_, err = mgr.InitPlayer(demoGameID, "alice", wallet.PubBytes())
	require.NoError(t, err)

	sx, sy, ok := findBody(th, func(p noise.Properties) bool {
		return p.Body == noise.Planet && p.Size == 1
	})
	require.True(t, ok, "no spawnable planet in scan range")

	spawn, err := mgr.Spawn(ctx, demoGameID, "alice", sx, sy)
	require.NoError(t, err)
	require.True(t, spawn.SpawnValid)

	bx, by, ok := findBodyNear(th, sx, sy, func(p noise.Properties) bool {
		return p.Body == noise.AsteroidBelt
	})
	require.True(t, ok, "no asteroid belt near the spawn planet")

	belt, err := mgr.CreatePlanet(ctx, demoGameID, bx, by)
	require.NoError(t, err)
	require.True(t, belt.Valid)

	// Home planet builds ships to capacity.
	clock.slot += 400

	move, err := mgr.MoveShips(ctx, demoGameID, "alice", sx, sy, bx, by, 90, 0)
	require.NoError(t, err)
	require.True(t, move.Valid)
	assert.Greater(t, move.Surviving, uint64(60), "decay over a short hop must stay small")
	assert.GreaterOrEqual(t, move.LandingSlot, clock.Slot())

	clock.slot = move.LandingSlot
	flush, err := mgr.FlushPlanet(ctx, demoGameID, belt.PlanetHash)
	require.NoError(t, err)
	assert.Equal(t, 1, flush.Processed)

	// The belt harvests metal under its new owner.
	clock.slot += 500

	haul, err := mgr.MoveShips(ctx, demoGameID, "alice", bx, by, sx, sy, 5, 150)
	require.NoError(t, err)
	require.True(t, haul.Valid, "launching from the belt proves the conquest")

	clock.slot = haul.LandingSlot
	_, err = mgr.FlushPlanet(ctx, demoGameID, spawn.PlanetHash)
	require.NoError(t, err)

	// Planets cannot stockpile metal, so the upgrade fails logically while
	// the regenerated counters still persist.
	up, err := mgr.UpgradePlanet(ctx, demoGameID, "alice", sx, sy, 0)
	require.NoError(t, err)
	assert.False(t, up.Success)

	planet, err := mgr.Broadcast(demoGameID, "alice", sx, sy)
	require.NoError(t, err)
	assert.True(t, planet.Broadcast)
	assert.Equal(t, sx, planet.BroadcastX)
	assert.Equal(t, sy, planet.BroadcastY)
}

// TestSpawnClaimVerification checks the stateless claim validator against
// both a truthful and a mismatched hash.
func TestSpawnClaimVerification(t *testing.T) {
	if testing.Short() {
		t.Skip("full lifecycle is slow")
	}
	mgr, _ := newStack(t)
	ctx := context.Background()
	th := noise.DefaultThresholds()

	sx, sy, ok := findBody(th, func(p noise.Properties) bool {
		return p.Body == noise.Planet && p.Size == 1
	})
	require.True(t, ok)

	hash := noise.Mix(sx, sy, demoGameID).Hex()
	valid, spawnValid, err := mgr.VerifySpawnClaim(ctx, demoGameID, sx, sy, hash)
	require.NoError(t, err)
	assert.True(t, valid)
	assert.True(t, spawnValid)

	wrong := noise.Mix(sx+1, sy, demoGameID).Hex()
	valid, spawnValid, err = mgr.VerifySpawnClaim(ctx, demoGameID, sx, sy, wrong)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.False(t, spawnValid)
}
