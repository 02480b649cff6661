// manager.go - The authoritative state and queue manager.
//
// The manager is the shim between the public ledger and the confidential
// engine: it checks every structural precondition before spending an
// expensive confidential round, tracks in-flight requests per planet so no
// second transition races a pending one, and reconciles verified callback
// outputs back into durable storage. Logical rejections arrive as revealed
// flags inside otherwise-normal results; only infrastructure failures
// surface as errors.

package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"encforest/internal/circuits"
	"encforest/internal/mpc"
	"encforest/internal/noise"
)

var (
	ErrGameNotRunning = errors.New("ledger: game is not running")
	ErrGameNotEnded   = errors.New("ledger: game has not ended")
	ErrNotWhitelisted = errors.New("ledger: account not whitelisted")
	ErrAlreadySpawned = errors.New("ledger: player already spawned")
	ErrNotSpawned     = errors.New("ledger: player has not spawned")
	ErrOutOfBounds    = errors.New("ledger: coordinates outside the map")
	ErrPlanetBusy     = errors.New("ledger: planet has a computation in flight")
	ErrFlushRequired  = errors.New("ledger: landed moves must be flushed first")
	ErrNotAdmin       = errors.New("ledger: admin-only operation")
	ErrBadConfig      = errors.New("ledger: invalid game configuration")
)

// Clock supplies the monotonic logical time.
type Clock interface {
	Slot() uint64
}

// SlotFunc adapts a function to the Clock interface.
type SlotFunc func() uint64

func (f SlotFunc) Slot() uint64 { return f() }

// Manager wires the store, the confidential engine, the clock and the event
// sink into the game's operation set.
type Manager struct {
	store  Store
	engine mpc.Engine
	clock  Clock
	sink   Sink
	log    zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewManager builds a manager. A nil sink drops events.
func NewManager(store Store, engine mpc.Engine, clock Clock, sink Sink, log zerolog.Logger) *Manager {
	if sink == nil {
		sink = NopSink{}
	}
	return &Manager{
		store:    store,
		engine:   engine,
		clock:    clock,
		sink:     sink,
		log:      log.With().Str("component", "state-manager").Logger(),
		inflight: make(map[string]struct{}),
	}
}

// acquire marks a record busy for the duration of one confidential round.
// The second request against a busy record is rejected, not queued: the
// admission rule replaces locking.
func (m *Manager) acquire(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inflight[key]; busy {
		return ErrPlanetBusy
	}
	m.inflight[key] = struct{}{}
	return nil
}

func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, key)
}

func inflightKey(gameID uint64, hash string) string {
	return fmt.Sprintf("%d/%s", gameID, hash)
}

func (m *Manager) emit(ev Event) {
	ev.Slot = m.clock.Slot()
	m.sink.Publish(ev)
}

// CreateGame validates and stores a new game configuration.
func (m *Manager) CreateGame(g *Game) error {
	if g.MapDiameter == 0 || g.Speed == 0 {
		return fmt.Errorf("%w: zero map diameter or speed", ErrBadConfig)
	}
	if g.StartSlot >= g.EndSlot {
		return fmt.Errorf("%w: start slot %d not before end slot %d", ErrBadConfig, g.StartSlot, g.EndSlot)
	}
	if g.WinCondition != WinPointBurn && g.WinCondition != WinRaceToCenter {
		return fmt.Errorf("%w: unknown win condition %q", ErrBadConfig, g.WinCondition)
	}
	if !g.Thresholds.Validate() {
		return fmt.Errorf("%w: misordered noise thresholds", ErrBadConfig)
	}
	if err := m.store.CreateGame(g); err != nil {
		return err
	}
	m.log.Info().Uint64("game", g.ID).Uint64("diameter", g.MapDiameter).Msg("game created")
	m.emit(Event{Type: EventGameCreated, GameID: g.ID})
	return nil
}

// InitPlayer registers an account in a game, folding its public key into
// the circuit identity word.
func (m *Manager) InitPlayer(gameID uint64, account string, pubkey []byte) (*Player, error) {
	game, err := m.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if !game.Allows(account) {
		return nil, ErrNotWhitelisted
	}
	// The key seals per-planet material back to the player later, so a
	// join with an unparseable key is rejected up front.
	if _, err := mpc.ParsePub(pubkey); err != nil {
		return nil, err
	}
	p := &Player{
		GameID:   gameID,
		Account:  account,
		PubKey:   pubkey,
		Identity: mpc.IdentityWord(pubkey),
	}
	if err := m.store.CreatePlayer(p); err != nil {
		return nil, err
	}
	m.emit(Event{Type: EventPlayerJoined, GameID: gameID, Account: account})
	return p, nil
}

// SpawnResult is the public outcome of a spawn attempt.
type SpawnResult struct {
	PlanetHash string
	Valid      bool
	SpawnValid bool
}

// Spawn materializes and claims a spawn planet at the player's secret
// coordinates. On a confirmed claim the player's has-spawned flag flips,
// exactly once; any rejection leaves it untouched.
func (m *Manager) Spawn(ctx context.Context, gameID uint64, account string, x, y int64) (*SpawnResult, error) {
	game, err := m.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	now := m.clock.Slot()
	if !game.Running(now) {
		return nil, ErrGameNotRunning
	}
	player, err := m.store.GetPlayer(gameID, account)
	if err != nil {
		return nil, err
	}
	if player.HasSpawned {
		return nil, ErrAlreadySpawned
	}
	if !game.InBounds(x, y) {
		return nil, ErrOutOfBounds
	}

	spawnKey := fmt.Sprintf("spawn/%d/%s", gameID, account)
	if err := m.acquire(spawnKey); err != nil {
		return nil, err
	}
	defer m.release(spawnKey)

	coords, err := mpc.SealCoords(x, y, m.engine.ClusterPub())
	if err != nil {
		return nil, err
	}
	res, err := awaitResult(ctx, func(cb func(*mpc.InitSpawnResult, error)) error {
		return m.engine.SubmitInitSpawn(ctx, mpc.InitSpawnRequest{
			Coords:     coords,
			GameID:     gameID,
			NowSlot:    now,
			Owner:      player.Identity,
			Thresholds: circuits.ThresholdsFrom(game.Thresholds),
		}, cb)
	})
	if err != nil {
		return nil, err
	}

	out := &SpawnResult{Hash(res.Hash), res.Valid, res.SpawnValid}
	if res.SpawnValid {
		planet := &Planet{
			GameID:      gameID,
			Hash:        out.PlanetHash,
			Static:      res.Static,
			Dynamic:     res.Dynamic,
			CreatedSlot: now,
		}
		if err := m.store.CreatePlanet(planet); err != nil {
			// Duplicate hash: someone already materialized these
			// coordinates, the claim is void.
			if errors.Is(err, ErrAlreadyExists) {
				out.SpawnValid = false
			} else {
				return nil, err
			}
		} else {
			if err := m.store.PutQueue(&MoveQueue{GameID: gameID, PlanetHash: out.PlanetHash}); err != nil {
				return nil, err
			}
			player.HasSpawned = true
			if err := m.store.PutPlayer(player); err != nil {
				return nil, err
			}

			// Hand the owner the planet key, sealed to their wallet.
			pub, err := mpc.ParsePub(player.PubKey)
			if err != nil {
				return nil, err
			}
			key := circuits.CreatePlanetKey(player.Identity, res.Hash)
			keySec, err := mpc.Seal(key[:], pub)
			if err != nil {
				return nil, err
			}
			m.emit(Event{
				Type: EventPlanetKey, GameID: gameID, Account: account,
				PlanetHash: out.PlanetHash,
				Fields:     map[string]any{"sealed_key": keySec},
			})
		}
	}

	m.log.Info().Uint64("game", gameID).Str("account", account).
		Bool("spawn_valid", out.SpawnValid).Msg("spawn processed")
	m.emit(Event{
		Type: EventSpawnResult, GameID: gameID, Account: account,
		PlanetHash: out.PlanetHash,
		Fields:     map[string]any{"valid": out.Valid, "spawn_valid": out.SpawnValid},
	})
	return out, nil
}

// CreatePlanetResult is the public outcome of materializing known
// coordinates.
type CreatePlanetResult struct {
	PlanetHash string
	Valid      bool
}

// CreatePlanet materializes a celestial body at publicly known coordinates.
// The claimed hash is recomputed cleartext-side before the confidential
// round, closing the loop between secret-path and public-path hashing.
// Dead space is reported, not stored.
func (m *Manager) CreatePlanet(ctx context.Context, gameID uint64, x, y int64) (*CreatePlanetResult, error) {
	game, err := m.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	now := m.clock.Slot()
	if now >= game.EndSlot {
		return nil, ErrGameNotRunning
	}
	if !game.InBounds(x, y) {
		return nil, ErrOutOfBounds
	}

	hash := noise.Mix(x, y, gameID)
	hashHex := hash.Hex()
	if _, err := m.store.GetPlanet(gameID, hashHex); err == nil {
		return nil, fmt.Errorf("%w: planet %s", ErrAlreadyExists, hashHex)
	}
	if err := m.acquire(inflightKey(gameID, hashHex)); err != nil {
		return nil, err
	}
	defer m.release(inflightKey(gameID, hashHex))

	coords, err := mpc.SealCoords(x, y, m.engine.ClusterPub())
	if err != nil {
		return nil, err
	}
	res, err := awaitResult(ctx, func(cb func(*mpc.InitPlanetResult, error)) error {
		return m.engine.SubmitInitPlanet(ctx, mpc.InitPlanetRequest{
			Coords:     coords,
			GameID:     gameID,
			NowSlot:    now,
			Thresholds: circuits.ThresholdsFrom(game.Thresholds),
		}, cb)
	})
	if err != nil {
		return nil, err
	}
	if res.Hash != hash {
		return nil, fmt.Errorf("ledger: confidential hash diverges from cleartext mirror for (%d,%d)", x, y)
	}

	out := &CreatePlanetResult{PlanetHash: hashHex, Valid: res.Valid}
	if res.Valid {
		planet := &Planet{
			GameID:      gameID,
			Hash:        hashHex,
			Static:      res.Static,
			Dynamic:     res.Dynamic,
			CreatedSlot: now,
		}
		if err := m.store.CreatePlanet(planet); err != nil {
			return nil, err
		}
		if err := m.store.PutQueue(&MoveQueue{GameID: gameID, PlanetHash: hashHex}); err != nil {
			return nil, err
		}
	}
	m.emit(Event{
		Type: EventPlanetCreated, GameID: gameID, PlanetHash: hashHex,
		Fields: map[string]any{"valid": res.Valid},
	})
	return out, nil
}

// MoveResult is the public outcome of a departure.
type MoveResult struct {
	SourceHash  string
	TargetHash  string
	LandingSlot uint64
	Surviving   uint64
	Valid       bool
}

// MoveShips launches a shipment between two planets the caller can name.
// Ledger preconditions run first: both planets must exist, the source must
// have no landed-but-unflushed move at its front, the target queue must
// have room, and neither planet may have a round in flight.
func (m *Manager) MoveShips(ctx context.Context, gameID uint64, account string, sx, sy, tx, ty int64, ships, metal uint64) (*MoveResult, error) {
	game, err := m.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	now := m.clock.Slot()
	if !game.Running(now) {
		return nil, ErrGameNotRunning
	}
	player, err := m.store.GetPlayer(gameID, account)
	if err != nil {
		return nil, err
	}
	if !player.HasSpawned {
		return nil, ErrNotSpawned
	}
	if !game.InBounds(sx, sy) || !game.InBounds(tx, ty) {
		return nil, ErrOutOfBounds
	}

	sourceHash := noise.Mix(sx, sy, gameID).Hex()
	targetHash := noise.Mix(tx, ty, gameID).Hex()
	source, err := m.store.GetPlanet(gameID, sourceHash)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if _, err := m.store.GetPlanet(gameID, targetHash); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	// Flush-before-new-move: a landed move waiting at the source's front
	// means the source's resource state is stale.
	srcQueue, err := m.store.GetQueue(gameID, sourceHash)
	if err != nil {
		return nil, err
	}
	if srcQueue.HasLanded(now) {
		return nil, ErrFlushRequired
	}
	tgtQueue, err := m.store.GetQueue(gameID, targetHash)
	if err != nil {
		return nil, err
	}
	if tgtQueue.Len() >= MaxPendingMoves {
		return nil, ErrQueueFull
	}

	if err := m.acquire(inflightKey(gameID, sourceHash)); err != nil {
		return nil, err
	}
	defer m.release(inflightKey(gameID, sourceHash))

	moveSec, err := mpc.SealMoveRequest(sx, sy, tx, ty, ships, metal, player.Identity, m.engine.ClusterPub())
	if err != nil {
		return nil, err
	}
	res, err := awaitResult(ctx, func(cb func(*mpc.ProcessMoveResult, error)) error {
		return m.engine.SubmitProcessMove(ctx, mpc.ProcessMoveRequest{
			Static:    source.Static,
			Dynamic:   source.Dynamic,
			Move:      moveSec,
			NowSlot:   now,
			GameSpeed: game.Speed,
		}, cb)
	})
	if err != nil {
		return nil, err
	}

	out := &MoveResult{
		SourceHash:  sourceHash,
		TargetHash:  targetHash,
		LandingSlot: res.LandingSlot,
		Surviving:   res.Surviving,
		Valid:       res.Valid,
	}
	if res.Valid {
		// Re-read the target queue: concurrent moves or a flush may have
		// shifted it while the round was in flight. The shipment must be
		// queued before the debited source tuple becomes durable, so a
		// full queue rejects the whole move instead of burning the fleet.
		tgtQueue, err = m.store.GetQueue(gameID, targetHash)
		if err != nil {
			return nil, err
		}
		if err := tgtQueue.Insert(PendingMove{
			SourceHash:  sourceHash,
			Attacker:    account,
			ShipsSent:   res.Surviving,
			LandingSlot: res.LandingSlot,
			Payload:     res.Payload,
		}); err != nil {
			return nil, err
		}
		if err := m.store.PutQueue(tgtQueue); err != nil {
			return nil, err
		}
		source.Dynamic = res.Dynamic
		if err := m.store.PutPlanet(source); err != nil {
			return nil, err
		}
	}
	m.log.Info().Uint64("game", gameID).Str("source", sourceHash).Str("target", targetHash).
		Bool("valid", res.Valid).Uint64("landing", res.LandingSlot).Msg("move processed")
	m.emit(Event{
		Type: EventMoveResult, GameID: gameID, Account: account, PlanetHash: targetHash,
		Fields: map[string]any{
			"valid": res.Valid, "landing_slot": res.LandingSlot, "surviving": res.Surviving,
		},
	})
	return out, nil
}

// FlushResult is the public outcome of a flush: identifier and processed
// count only, no secret payload.
type FlushResult struct {
	PlanetHash string
	Processed  int
}

// FlushPlanet applies exactly the front pending move of the planet's queue.
// Two concurrent flushes of the same entry cannot both succeed: the loser
// finds the entry gone and fails its precondition, which is the intended
// outcome.
func (m *Manager) FlushPlanet(ctx context.Context, gameID uint64, planetHash string) (*FlushResult, error) {
	game, err := m.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	now := m.clock.Slot()
	planet, err := m.store.GetPlanet(gameID, planetHash)
	if err != nil {
		return nil, err
	}
	queue, err := m.store.GetQueue(gameID, planetHash)
	if err != nil {
		return nil, err
	}
	front, err := queue.Front()
	if err != nil {
		return nil, err
	}
	if front.LandingSlot > now {
		return nil, ErrNotLanded
	}

	if err := m.acquire(inflightKey(gameID, planetHash)); err != nil {
		return nil, err
	}
	defer m.release(inflightKey(gameID, planetHash))

	res, err := awaitResult(ctx, func(cb func(*mpc.FlushPlanetResult, error)) error {
		return m.engine.SubmitFlushPlanet(ctx, mpc.FlushPlanetRequest{
			Static:    planet.Static,
			Dynamic:   planet.Dynamic,
			Payload:   front.Payload,
			NowSlot:   now,
			GameSpeed: game.Speed,
		}, cb)
	})
	if err != nil {
		return nil, err
	}

	// Remove exactly the front entry; the queue object was read under the
	// admission guard so the front is still the flushed move.
	if _, err := queue.PopFront(now); err != nil {
		return nil, err
	}
	if err := m.store.PutQueue(queue); err != nil {
		return nil, err
	}
	planet.Dynamic = res.Dynamic
	if err := m.store.PutPlanet(planet); err != nil {
		return nil, err
	}

	m.log.Info().Uint64("game", gameID).Str("planet", planetHash).Msg("front move flushed")
	m.emit(Event{
		Type: EventFlushResult, GameID: gameID, PlanetHash: planetHash,
		Fields: map[string]any{"processed": 1},
	})
	return &FlushResult{PlanetHash: planetHash, Processed: 1}, nil
}

// UpgradeResult is the public outcome of an upgrade attempt.
type UpgradeResult struct {
	PlanetHash string
	Success    bool
	NewLevel   uint64
}

// UpgradePlanet spends regenerated metal to level the planet up. The focus
// selector stays sealed; even a failed attempt persists the regenerated
// resource counters.
func (m *Manager) UpgradePlanet(ctx context.Context, gameID uint64, account string, x, y int64, focus uint64) (*UpgradeResult, error) {
	game, err := m.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	now := m.clock.Slot()
	if !game.Running(now) {
		return nil, ErrGameNotRunning
	}
	player, err := m.store.GetPlayer(gameID, account)
	if err != nil {
		return nil, err
	}
	hashHex := noise.Mix(x, y, gameID).Hex()
	planet, err := m.store.GetPlanet(gameID, hashHex)
	if err != nil {
		return nil, err
	}

	// A landed shipment waiting at the front must resolve first: the
	// metal it contests cannot be spent over its head.
	queue, err := m.store.GetQueue(gameID, hashHex)
	if err != nil {
		return nil, err
	}
	if queue.HasLanded(now) {
		return nil, ErrFlushRequired
	}

	if err := m.acquire(inflightKey(gameID, hashHex)); err != nil {
		return nil, err
	}
	defer m.release(inflightKey(gameID, hashHex))

	reqSec, err := mpc.SealUpgradeRequest(player.Identity, focus, m.engine.ClusterPub())
	if err != nil {
		return nil, err
	}
	res, err := awaitResult(ctx, func(cb func(*mpc.UpgradePlanetResult, error)) error {
		return m.engine.SubmitUpgradePlanet(ctx, mpc.UpgradePlanetRequest{
			Static:    planet.Static,
			Dynamic:   planet.Dynamic,
			Request:   reqSec,
			NowSlot:   now,
			GameSpeed: game.Speed,
		}, cb)
	})
	if err != nil {
		return nil, err
	}

	// Regeneration applied inside the round regardless of success, so the
	// fresh dynamic tuple always persists; the static tuple only changed
	// if the upgrade went through, but re-storing it is harmless.
	planet.Static = res.Static
	planet.Dynamic = res.Dynamic
	if err := m.store.PutPlanet(planet); err != nil {
		return nil, err
	}

	m.log.Info().Uint64("game", gameID).Str("planet", hashHex).
		Bool("success", res.Success).Msg("upgrade processed")
	m.emit(Event{
		Type: EventUpgradeResult, GameID: gameID, Account: account, PlanetHash: hashHex,
		Fields: map[string]any{"success": res.Success, "new_level": res.NewLevel},
	})
	return &UpgradeResult{PlanetHash: hashHex, Success: res.Success, NewLevel: res.NewLevel}, nil
}

// VerifySpawnClaim runs the confidential spawn validation against a claimed
// planet identifier without materializing anything: used by clients to test
// a candidate coordinate before committing a spawn.
func (m *Manager) VerifySpawnClaim(ctx context.Context, gameID uint64, x, y int64, claimed string) (valid, spawnValid bool, err error) {
	game, err := m.store.GetGame(gameID)
	if err != nil {
		return false, false, err
	}
	if !game.InBounds(x, y) {
		return false, false, ErrOutOfBounds
	}
	words, err := noise.ParseHex(claimed)
	if err != nil {
		return false, false, err
	}
	coords, err := mpc.SealCoords(x, y, m.engine.ClusterPub())
	if err != nil {
		return false, false, err
	}
	res, err := awaitResult(ctx, func(cb func(*mpc.VerifySpawnResult, error)) error {
		return m.engine.SubmitVerifySpawn(ctx, mpc.VerifySpawnRequest{
			Coords:     coords,
			GameID:     gameID,
			Claimed:    words,
			Thresholds: circuits.ThresholdsFrom(game.Thresholds),
		}, cb)
	})
	if err != nil {
		return false, false, err
	}
	return res.Valid, res.SpawnValid, nil
}

// Broadcast publishes a planet's coordinates openly: the only sanctioned
// path from the secret domain to the public one, trading secrecy for
// discoverability. The coordinates must hash to an existing planet.
func (m *Manager) Broadcast(gameID uint64, account string, x, y int64) (*Planet, error) {
	game, err := m.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if !game.InBounds(x, y) {
		return nil, ErrOutOfBounds
	}
	hashHex := noise.Mix(x, y, gameID).Hex()
	planet, err := m.store.GetPlanet(gameID, hashHex)
	if err != nil {
		return nil, err
	}
	planet.Broadcast = true
	planet.BroadcastX = x
	planet.BroadcastY = y
	if err := m.store.PutPlanet(planet); err != nil {
		return nil, err
	}
	m.emit(Event{
		Type: EventBroadcast, GameID: gameID, Account: account, PlanetHash: hashHex,
		Fields: map[string]any{"x": x, "y": y},
	})
	return planet, nil
}

// CleanupPlanet removes a planet and its queue after the game has ended.
// Admin only.
func (m *Manager) CleanupPlanet(gameID uint64, account, planetHash string) error {
	game, err := m.store.GetGame(gameID)
	if err != nil {
		return err
	}
	if game.Admin != account {
		return ErrNotAdmin
	}
	if m.clock.Slot() < game.EndSlot {
		return ErrGameNotEnded
	}
	if err := m.store.DeletePlanet(gameID, planetHash); err != nil {
		return err
	}
	if err := m.store.DeleteQueue(gameID, planetHash); err != nil {
		return err
	}
	m.emit(Event{Type: EventCleanup, GameID: gameID, PlanetHash: planetHash})
	return nil
}

// CleanupPlayer removes a player record after the game has ended. Admin
// only.
func (m *Manager) CleanupPlayer(gameID uint64, account, target string) error {
	game, err := m.store.GetGame(gameID)
	if err != nil {
		return err
	}
	if game.Admin != account {
		return ErrNotAdmin
	}
	if m.clock.Slot() < game.EndSlot {
		return ErrGameNotEnded
	}
	if err := m.store.DeletePlayer(gameID, target); err != nil {
		return err
	}
	m.emit(Event{Type: EventCleanup, GameID: gameID, Account: target})
	return nil
}

// CleanupGame removes a finished game with all its planets, queues and
// players. Admin only.
func (m *Manager) CleanupGame(gameID uint64, account string) error {
	game, err := m.store.GetGame(gameID)
	if err != nil {
		return err
	}
	if game.Admin != account {
		return ErrNotAdmin
	}
	if m.clock.Slot() < game.EndSlot {
		return ErrGameNotEnded
	}
	planets, err := m.store.ListPlanets(gameID)
	if err != nil {
		return err
	}
	for _, p := range planets {
		if err := m.store.DeletePlanet(gameID, p.Hash); err != nil {
			return err
		}
		if err := m.store.DeleteQueue(gameID, p.Hash); err != nil {
			return err
		}
	}
	players, err := m.store.ListPlayers(gameID)
	if err != nil {
		return err
	}
	for _, p := range players {
		if err := m.store.DeletePlayer(gameID, p.Account); err != nil {
			return err
		}
	}
	if err := m.store.DeleteGame(gameID); err != nil {
		return err
	}
	m.emit(Event{Type: EventCleanup, GameID: gameID})
	return nil
}

// Hash renders hash words as the ledger's hex identifier.
func Hash(h noise.HashWords) string { return h.Hex() }

// awaitResult turns one submit/callback pair into a synchronous call,
// honoring context cancellation. The callback fires exactly once, so the
// buffered channel never blocks the engine worker.
func awaitResult[T any](ctx context.Context, submit func(func(*T, error)) error) (*T, error) {
	type outcome struct {
		res *T
		err error
	}
	ch := make(chan outcome, 1)
	if err := submit(func(res *T, err error) {
		ch <- outcome{res, err}
	}); err != nil {
		return nil, err
	}
	select {
	case o := <-ch:
		if o.err != nil {
			return nil, fmt.Errorf("ledger: confidential round failed: %w", o.err)
		}
		return o.res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
