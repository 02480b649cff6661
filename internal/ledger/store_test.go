// store_test.go - Tests for the keyed account stores.

package ledger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"encforest/internal/noise"
)

func testGame(id uint64) *Game {
	return &Game{
		ID:           id,
		MapDiameter:  100,
		Speed:        1,
		StartSlot:    0,
		EndSlot:      1000,
		WinCondition: WinPointBurn,
		Thresholds:   noise.DefaultThresholds(),
		Admin:        "admin",
	}
}

func runStoreSuite(t *testing.T, s Store) {
	t.Helper()

	t.Run("game create once", func(t *testing.T) {
		require.NoError(t, s.CreateGame(testGame(1)))
		assert.ErrorIs(t, s.CreateGame(testGame(1)), ErrAlreadyExists)

		g, err := s.GetGame(1)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), g.MapDiameter)

		_, err = s.GetGame(99)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("player lifecycle", func(t *testing.T) {
		p := &Player{GameID: 1, Account: "alice", Identity: 7}
		require.NoError(t, s.CreatePlayer(p))
		assert.ErrorIs(t, s.CreatePlayer(p), ErrAlreadyExists)

		p.HasSpawned = true
		require.NoError(t, s.PutPlayer(p))
		got, err := s.GetPlayer(1, "alice")
		require.NoError(t, err)
		assert.True(t, got.HasSpawned)

		players, err := s.ListPlayers(1)
		require.NoError(t, err)
		assert.Len(t, players, 1)

		require.NoError(t, s.DeletePlayer(1, "alice"))
		_, err = s.GetPlayer(1, "alice")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, s.DeletePlayer(1, "alice"), ErrNotFound)
	})

	t.Run("planet exactly-once allocation", func(t *testing.T) {
		pl := &Planet{GameID: 1, Hash: "abc"}
		require.NoError(t, s.CreatePlanet(pl))
		assert.ErrorIs(t, s.CreatePlanet(pl), ErrAlreadyExists)

		require.NoError(t, s.PutQueue(&MoveQueue{GameID: 1, PlanetHash: "abc"}))
		q, err := s.GetQueue(1, "abc")
		require.NoError(t, err)
		assert.Equal(t, 0, q.Len())

		planets, err := s.ListPlanets(1)
		require.NoError(t, err)
		assert.Len(t, planets, 1)

		require.NoError(t, s.DeletePlanet(1, "abc"))
		require.NoError(t, s.DeleteQueue(1, "abc"))
		_, err = s.GetPlanet(1, "abc")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMemStore(t *testing.T) {
	runStoreSuite(t, NewMemStore())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	runStoreSuite(t, s)
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.CreateGame(testGame(7)))
	require.NoError(t, s.CreatePlayer(&Player{GameID: 7, Account: "bob", Identity: 11}))

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	g, err := reopened.GetGame(7)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), g.EndSlot)
	p, err := reopened.GetPlayer(7, "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(11), p.Identity)
}
