// records.go - Durable record types of the public ledger.
//
// The ledger never sees secret state in the clear: planet substate is stored
// as sealed sections, each an atomic pubkey+nonce+ciphertext unit. Everything
// else here is intentionally public: identifiers, timing, queue ordering and
// the revealed scalars of past transitions.

package ledger

import (
	"fmt"

	"encforest/internal/mpc"
	"encforest/internal/noise"
)

// WinCondition selects how a game ends.
type WinCondition string

const (
	// WinPointBurn ends the game on accumulated point burn rate.
	WinPointBurn WinCondition = "point_burn_rate"
	// WinRaceToCenter ends the game when a player holds the center.
	WinRaceToCenter WinCondition = "race_to_center"
)

// Game is the per-game configuration, immutable after creation.
type Game struct {
	ID           uint64           `json:"id"`
	MapDiameter  uint64           `json:"map_diameter"`
	Speed        uint64           `json:"speed"`
	StartSlot    uint64           `json:"start_slot"`
	EndSlot      uint64           `json:"end_slot"`
	WinCondition WinCondition     `json:"win_condition"`
	Whitelist    []string         `json:"whitelist,omitempty"`
	Thresholds   noise.Thresholds `json:"thresholds"`
	Admin        string           `json:"admin"`
}

// Allows reports whether the account passes the optional whitelist gate.
func (g *Game) Allows(account string) bool {
	if len(g.Whitelist) == 0 {
		return true
	}
	for _, w := range g.Whitelist {
		if w == account {
			return true
		}
	}
	return false
}

// InBounds checks a coordinate against the map radius.
func (g *Game) InBounds(x, y int64) bool {
	half := int64(g.MapDiameter / 2)
	return x >= -half && x <= half && y >= -half && y <= half
}

// Running reports whether the slot falls inside the game's time window.
func (g *Game) Running(slot uint64) bool {
	return slot >= g.StartSlot && slot < g.EndSlot
}

// Player is one account's standing in one game. HasSpawned flips exactly
// once, inside the spawn confirmation.
type Player struct {
	GameID     uint64 `json:"game_id"`
	Account    string `json:"account"`
	PubKey     []byte `json:"pubkey"`
	Identity   uint64 `json:"identity"` // folded circuit identity word
	Score      uint64 `json:"score"`
	HasSpawned bool   `json:"has_spawned"`
}

// Planet is the durable per-planet record: public identifier, sealed
// substate, and the optional broadcast coordinates.
type Planet struct {
	GameID      uint64       `json:"game_id"`
	Hash        string       `json:"hash"` // hex of the hash words
	Static      *mpc.Section `json:"static"`
	Dynamic     *mpc.Section `json:"dynamic"`
	CreatedSlot uint64       `json:"created_slot"`

	// Broadcast coordinates, set only by an explicit owner broadcast.
	// The one sanctioned secret-to-public path.
	Broadcast  bool  `json:"broadcast"`
	BroadcastX int64 `json:"broadcast_x,omitempty"`
	BroadcastY int64 `json:"broadcast_y,omitempty"`
}

// PendingMove is one in-flight shipment awaiting its flush. The payload
// stays sealed for the computing cluster; only timing and provenance are
// public.
type PendingMove struct {
	SourceHash  string       `json:"source_hash"`
	Attacker    string       `json:"attacker"`
	ShipsSent   uint64       `json:"ships_sent"` // revealed surviving count
	LandingSlot uint64       `json:"landing_slot"`
	Payload     *mpc.Section `json:"payload"`
}

func gameKey(gameID uint64) string { return fmt.Sprintf("game/%d", gameID) }

func playerKey(gameID uint64, acc string) string { return fmt.Sprintf("player/%d/%s", gameID, acc) }

func planetKey(gameID uint64, hash string) string { return fmt.Sprintf("planet/%d/%s", gameID, hash) }

func queueKey(gameID uint64, hash string) string { return fmt.Sprintf("moves/%d/%s", gameID, hash) }
