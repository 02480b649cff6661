// state.go - Fixed-width secret tuples exchanged with the computing parties.
//
// The planet record travels as two independently addressable tuples so that
// transitions touching only the dynamic half (move, flush) do not pay for
// re-transmitting the static half. The index maps below are the contract
// with the storage layer; inside the circuits the accessors are used instead
// of raw indices.

package circuits

import "encforest/internal/noise"

// Static tuple layout.
const (
	SBodyType = iota // 0 Planet, 1 Quasar, 2 SpacetimeRip, 3 AsteroidBelt
	SSize            // 1..6
	SMaxShipCap
	SShipGen
	SMaxMetalCap
	SMetalGen
	SRange
	SLaunchVelocity
	SLevel
	SCometCount // 0..2
	SComet0     // boost kind, meaningful when SCometCount >= 1
	SComet1     // boost kind, meaningful when SCometCount >= 2
	StaticWords
)

// Dynamic tuple layout.
const (
	DShipCount = iota
	DMetalCount
	DOwned // 0/1
	DOwner // folded owner identity word, meaningful when DOwned == 1
	DLastUpdated
	DynamicWords
)

// Move payload tuple layout. Encrypted for the computing parties only; not
// readable by the sender after submission.
const (
	MShips = iota // already distance-decayed
	MMetal
	MAttacker // folded attacker identity word
	MoveWords
)

// Static is the per-planet immutable substate, set once at creation and
// mutated only by the upgrade transition.
type Static [StaticWords]uint64

// Dynamic is the per-planet mutable substate.
type Dynamic [DynamicWords]uint64

// MovePayload is one in-flight shipment's secret payload.
type MovePayload [MoveWords]uint64

// Comet boost kinds, aligned with the comet selection domain of the noise
// engine (digit mod 6).
const (
	BoostShipCap = iota
	BoostMetalCap
	BoostShipGen
	BoostMetalGen
	BoostRange
	BoostVelocity
	numBoosts = 6
)

// Thresholds is the plaintext classification table handed to the
// body-deriving circuits, one word per cut-point.
type Thresholds struct {
	DeadSpace    uint64
	Planet       uint64
	Quasar       uint64
	SpacetimeRip uint64
	Size         [5]uint64
	CometOne     uint64
	CometTwo     uint64
}

// ThresholdsFrom widens the game's byte-valued classification table into
// circuit words.
func ThresholdsFrom(t noise.Thresholds) Thresholds {
	return Thresholds{
		DeadSpace:    uint64(t.DeadSpace),
		Planet:       uint64(t.Planet),
		Quasar:       uint64(t.Quasar),
		SpacetimeRip: uint64(t.SpacetimeRip),
		Size: [5]uint64{
			uint64(t.Size1), uint64(t.Size2), uint64(t.Size3),
			uint64(t.Size4), uint64(t.Size5),
		},
		CometOne: uint64(t.CometOne),
		CometTwo: uint64(t.CometTwo),
	}
}
