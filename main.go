// main.go - End-to-end conquest scenario against the in-process stack.
//
// This walks the full game loop in one process: a game is created, a player
// spawns on a secret coordinate, scouts a nearby asteroid belt, conquers it,
// harvests metal, and ships reinforcements home. Every transition runs
// through the confidential engine; the ledger only ever stores ciphertext
// sections and revealed scalars.
//
// Usage:
//   go run . [-attest]
//
// -attest enables Groth16 transcript attestation (slow on first run while
// the circuit compiles and keys are set up under keys/).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"encforest/internal/ledger"
	"encforest/internal/mpc"
	"encforest/internal/noise"
)

const demoGameID = 7

// scenarioClock is a hand-advanced slot source so the demo does not have to
// wait for wall-clock time to pass.
type scenarioClock struct{ slot uint64 }

func (c *scenarioClock) Slot() uint64 { return c.slot }

// findBody scans the public noise field for the first body matching the
// predicate. Every client can do this: coordinates only become secret once
// they are claimed.
func findBody(th noise.Thresholds, pred func(noise.Properties) bool) (int64, int64, bool) {
	for x := int64(-3000); x <= 3000; x++ {
		for y := int64(1); y <= 3; y++ {
			if props, ok := th.Classify(noise.Mix(x, y, demoGameID)); ok && pred(props) {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}

// findBodyNear scans outward from a center coordinate.
func findBodyNear(th noise.Thresholds, cx, cy int64, pred func(noise.Properties) bool) (int64, int64, bool) {
	for r := int64(1); r <= 10; r++ {
		for dx := -r; dx <= r; dx++ {
			for dy := -r; dy <= r; dy++ {
				x, y := cx+dx, cy+dy
				if x == cx && y == cy {
					continue
				}
				if props, ok := th.Classify(noise.Mix(x, y, demoGameID)); ok && pred(props) {
					return x, y, true
				}
			}
		}
	}
	return 0, 0, false
}

func main() {
	attest := flag.Bool("attest", false, "prove and verify a transcript attestation per round")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).
		Level(zerolog.InfoLevel).With().Timestamp().Logger()

	var keys *mpc.AttestationKeys
	if *attest {
		log.Info().Msg("compiling attestation circuit")
		ccs, err := mpc.CompileAttestation()
		if err != nil {
			log.Fatal().Err(err).Msg("attestation compile failed")
		}
		if err := os.MkdirAll("keys", 0755); err != nil {
			log.Fatal().Err(err).Msg("key directory")
		}
		pk, vk, err := mpc.SetupOrLoadKeys(ccs, "keys/attest_pk.bin", "keys/attest_vk.bin")
		if err != nil {
			log.Fatal().Err(err).Msg("attestation key setup failed")
		}
		keys = &mpc.AttestationKeys{CCS: ccs, PK: pk, VK: vk}
	}

	engine, err := mpc.NewLocalEngine(2, keys, log)
	if err != nil {
		log.Fatal().Err(err).Msg("engine start failed")
	}
	defer engine.Close()

	clock := &scenarioClock{slot: 10}
	events := ledger.SinkFunc(func(ev ledger.Event) {
		log.Info().Str("event", string(ev.Type)).Uint64("slot", ev.Slot).
			Fields(ev.Fields).Msg("ledger event")
	})
	mgr := ledger.NewManager(ledger.NewMemStore(), engine, clock, events, log)
	ctx := context.Background()

	// 1. Game and player setup.
	th := noise.DefaultThresholds()
	if err := mgr.CreateGame(&ledger.Game{
		ID:           demoGameID,
		MapDiameter:  10000,
		Speed:        1,
		StartSlot:    1,
		EndSlot:      1_000_000,
		WinCondition: ledger.WinPointBurn,
		Thresholds:   th,
		Admin:        "admin",
	}); err != nil {
		log.Fatal().Err(err).Msg("game creation failed")
	}
	wallet, err := mpc.GenerateKeyPair()
	if err != nil {
		log.Fatal().Err(err).Msg("wallet generation failed")
	}
	if _, err := mgr.InitPlayer(demoGameID, "alice", wallet.PubBytes()); err != nil {
		log.Fatal().Err(err).Msg("player init failed")
	}

	// 2. Spawn on a miniscule planet.
	sx, sy, ok := findBody(th, func(p noise.Properties) bool {
		return p.Body == noise.Planet && p.Size == 1
	})
	if !ok {
		log.Fatal().Msg("no spawnable planet in scan range")
	}
	spawn, err := mgr.Spawn(ctx, demoGameID, "alice", sx, sy)
	if err != nil || !spawn.SpawnValid {
		log.Fatal().Err(err).Msg("spawn failed")
	}
	log.Info().Str("planet", spawn.PlanetHash[:16]).Msg("spawned")

	// 3. Materialize a nearby asteroid belt and let the home planet build
	// ships. The belt must be close, or decay eats the fleet in transit.
	bx, by, ok := findBodyNear(th, sx, sy, func(p noise.Properties) bool {
		return p.Body == noise.AsteroidBelt
	})
	if !ok {
		log.Fatal().Msg("no asteroid belt near the spawn planet")
	}
	belt, err := mgr.CreatePlanet(ctx, demoGameID, bx, by)
	if err != nil || !belt.Valid {
		log.Fatal().Err(err).Msg("belt materialization failed")
	}
	clock.slot += 400 // ship regeneration at home

	// 4. Send the fleet at the belt's native garrison.
	move, err := mgr.MoveShips(ctx, demoGameID, "alice", sx, sy, bx, by, 90, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("move failed")
	}
	if !move.Valid {
		log.Fatal().Msg("move rejected by the circuit")
	}
	log.Info().Uint64("surviving", move.Surviving).Uint64("landing", move.LandingSlot).Msg("fleet underway")

	// 5. Land and resolve combat.
	clock.slot = move.LandingSlot
	if _, err := mgr.FlushPlanet(ctx, demoGameID, belt.PlanetHash); err != nil {
		log.Fatal().Err(err).Msg("flush failed")
	}
	log.Info().Msg("combat resolved at the belt")

	// 6. Harvest metal, then ship it home with a small escort.
	clock.slot += 500
	haul, err := mgr.MoveShips(ctx, demoGameID, "alice", bx, by, sx, sy, 5, 150)
	if err != nil {
		log.Fatal().Err(err).Msg("haul failed")
	}
	if haul.Valid {
		clock.slot = haul.LandingSlot
		if _, err := mgr.FlushPlanet(ctx, demoGameID, spawn.PlanetHash); err != nil {
			log.Fatal().Err(err).Msg("home flush failed")
		}
		log.Info().Msg("haul landed home")
	} else {
		log.Info().Msg("haul rejected: the belt was not conquered")
	}

	// 7. Attempt an upgrade. Planets cannot stockpile metal, so this reveals
	// a failure while still persisting the regenerated resource counters.
	up, err := mgr.UpgradePlanet(ctx, demoGameID, "alice", sx, sy, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("upgrade round failed")
	}
	log.Info().Bool("success", up.Success).Uint64("level", up.NewLevel).Msg("upgrade attempted")

	// 8. Go public.
	if _, err := mgr.Broadcast(demoGameID, "alice", sx, sy); err != nil {
		log.Fatal().Err(err).Msg("broadcast failed")
	}

	fmt.Println()
	fmt.Println("=== Scenario complete ===")
	fmt.Printf("home planet: %s\n", spawn.PlanetHash)
	fmt.Printf("asteroid belt: %s\n", belt.PlanetHash)
	fmt.Printf("fleet survivors on arrival: %d\n", move.Surviving)
}
