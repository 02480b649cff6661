// store.go - Keyed account store backing the game ledger.
//
// The consensus layer is an external collaborator; what this package needs
// from it is a durable key-value store addressable by deterministic keys.
// MemStore serves tests and the in-process daemon, FileStore persists the
// whole state as a single JSON file.

package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

var (
	ErrNotFound      = errors.New("ledger: record not found")
	ErrAlreadyExists = errors.New("ledger: record already exists")
)

// Store is the keyed account store. Put upserts; Create fails on an
// existing key, enforcing the exactly-once allocation rule for planets.
type Store interface {
	CreateGame(g *Game) error
	GetGame(gameID uint64) (*Game, error)
	DeleteGame(gameID uint64) error

	CreatePlayer(p *Player) error
	GetPlayer(gameID uint64, account string) (*Player, error)
	PutPlayer(p *Player) error
	DeletePlayer(gameID uint64, account string) error
	ListPlayers(gameID uint64) ([]*Player, error)

	CreatePlanet(p *Planet) error
	GetPlanet(gameID uint64, hash string) (*Planet, error)
	PutPlanet(p *Planet) error
	DeletePlanet(gameID uint64, hash string) error
	ListPlanets(gameID uint64) ([]*Planet, error)

	GetQueue(gameID uint64, hash string) (*MoveQueue, error)
	PutQueue(q *MoveQueue) error
	DeleteQueue(gameID uint64, hash string) error
}

// state is the full keyed record set, shared by both store implementations.
type state struct {
	Games   map[string]*Game      `json:"games"`
	Players map[string]*Player    `json:"players"`
	Planets map[string]*Planet    `json:"planets"`
	Queues  map[string]*MoveQueue `json:"queues"`
}

func newState() *state {
	return &state{
		Games:   make(map[string]*Game),
		Players: make(map[string]*Player),
		Planets: make(map[string]*Planet),
		Queues:  make(map[string]*MoveQueue),
	}
}

// MemStore is an in-memory Store.
type MemStore struct {
	mu sync.RWMutex
	st *state
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{st: newState()}
}

func (m *MemStore) CreateGame(g *Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := gameKey(g.ID)
	if _, ok := m.st.Games[k]; ok {
		return fmt.Errorf("%w: game %d", ErrAlreadyExists, g.ID)
	}
	m.st.Games[k] = g
	return nil
}

func (m *MemStore) GetGame(gameID uint64) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.st.Games[gameKey(gameID)]
	if !ok {
		return nil, fmt.Errorf("%w: game %d", ErrNotFound, gameID)
	}
	return g, nil
}

func (m *MemStore) DeleteGame(gameID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := gameKey(gameID)
	if _, ok := m.st.Games[k]; !ok {
		return fmt.Errorf("%w: game %d", ErrNotFound, gameID)
	}
	delete(m.st.Games, k)
	return nil
}

func (m *MemStore) CreatePlayer(p *Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := playerKey(p.GameID, p.Account)
	if _, ok := m.st.Players[k]; ok {
		return fmt.Errorf("%w: player %s", ErrAlreadyExists, p.Account)
	}
	m.st.Players[k] = p
	return nil
}

func (m *MemStore) GetPlayer(gameID uint64, account string) (*Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.st.Players[playerKey(gameID, account)]
	if !ok {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, account)
	}
	return p, nil
}

func (m *MemStore) PutPlayer(p *Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.Players[playerKey(p.GameID, p.Account)] = p
	return nil
}

func (m *MemStore) DeletePlayer(gameID uint64, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := playerKey(gameID, account)
	if _, ok := m.st.Players[k]; !ok {
		return fmt.Errorf("%w: player %s", ErrNotFound, account)
	}
	delete(m.st.Players, k)
	return nil
}

func (m *MemStore) ListPlayers(gameID uint64) ([]*Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := fmt.Sprintf("player/%d/", gameID)
	var out []*Player
	for k, p := range m.st.Players {
		if strings.HasPrefix(k, prefix) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemStore) CreatePlanet(p *Planet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := planetKey(p.GameID, p.Hash)
	if _, ok := m.st.Planets[k]; ok {
		return fmt.Errorf("%w: planet %s", ErrAlreadyExists, p.Hash)
	}
	m.st.Planets[k] = p
	return nil
}

func (m *MemStore) GetPlanet(gameID uint64, hash string) (*Planet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.st.Planets[planetKey(gameID, hash)]
	if !ok {
		return nil, fmt.Errorf("%w: planet %s", ErrNotFound, hash)
	}
	return p, nil
}

func (m *MemStore) PutPlanet(p *Planet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.Planets[planetKey(p.GameID, p.Hash)] = p
	return nil
}

func (m *MemStore) DeletePlanet(gameID uint64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := planetKey(gameID, hash)
	if _, ok := m.st.Planets[k]; !ok {
		return fmt.Errorf("%w: planet %s", ErrNotFound, hash)
	}
	delete(m.st.Planets, k)
	return nil
}

func (m *MemStore) ListPlanets(gameID uint64) ([]*Planet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := fmt.Sprintf("planet/%d/", gameID)
	var out []*Planet
	for k, p := range m.st.Planets {
		if strings.HasPrefix(k, prefix) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemStore) GetQueue(gameID uint64, hash string) (*MoveQueue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.st.Queues[queueKey(gameID, hash)]
	if !ok {
		return nil, fmt.Errorf("%w: queue %s", ErrNotFound, hash)
	}
	return q, nil
}

func (m *MemStore) PutQueue(q *MoveQueue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.Queues[queueKey(q.GameID, q.PlanetHash)] = q
	return nil
}

func (m *MemStore) DeleteQueue(gameID uint64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.st.Queues, queueKey(gameID, hash))
	return nil
}

// FileStore persists every mutation to a single JSON file, loading it back
// on open. Suitable for a single-process daemon; concurrent daemons need a
// real database behind the Store interface instead.
type FileStore struct {
	mu   sync.Mutex
	path string
	st   *state
}

// NewFileStore opens or creates the JSON-backed store at path.
func NewFileStore(path string) (*FileStore, error) {
	fs := &FileStore{path: path, st: newState()}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: reading store file: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, fs.st); err != nil {
			return nil, fmt.Errorf("ledger: parsing store file: %w", err)
		}
	}
	return fs, nil
}

// save writes the whole state atomically via a temp-file rename.
func (f *FileStore) save() error {
	data, err := json.MarshalIndent(f.st, "", "  ")
	if err != nil {
		return fmt.Errorf("ledger: encoding store: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("ledger: writing store file: %w", err)
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) CreateGame(g *Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := gameKey(g.ID)
	if _, ok := f.st.Games[k]; ok {
		return fmt.Errorf("%w: game %d", ErrAlreadyExists, g.ID)
	}
	f.st.Games[k] = g
	return f.save()
}

func (f *FileStore) GetGame(gameID uint64) (*Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.st.Games[gameKey(gameID)]
	if !ok {
		return nil, fmt.Errorf("%w: game %d", ErrNotFound, gameID)
	}
	return g, nil
}

func (f *FileStore) DeleteGame(gameID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := gameKey(gameID)
	if _, ok := f.st.Games[k]; !ok {
		return fmt.Errorf("%w: game %d", ErrNotFound, gameID)
	}
	delete(f.st.Games, k)
	return f.save()
}

func (f *FileStore) CreatePlayer(p *Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := playerKey(p.GameID, p.Account)
	if _, ok := f.st.Players[k]; ok {
		return fmt.Errorf("%w: player %s", ErrAlreadyExists, p.Account)
	}
	f.st.Players[k] = p
	return f.save()
}

func (f *FileStore) GetPlayer(gameID uint64, account string) (*Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.st.Players[playerKey(gameID, account)]
	if !ok {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, account)
	}
	return p, nil
}

func (f *FileStore) PutPlayer(p *Player) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.Players[playerKey(p.GameID, p.Account)] = p
	return f.save()
}

func (f *FileStore) DeletePlayer(gameID uint64, account string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := playerKey(gameID, account)
	if _, ok := f.st.Players[k]; !ok {
		return fmt.Errorf("%w: player %s", ErrNotFound, account)
	}
	delete(f.st.Players, k)
	return f.save()
}

func (f *FileStore) ListPlayers(gameID uint64) ([]*Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := fmt.Sprintf("player/%d/", gameID)
	var out []*Player
	for k, p := range f.st.Players {
		if strings.HasPrefix(k, prefix) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *FileStore) CreatePlanet(p *Planet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := planetKey(p.GameID, p.Hash)
	if _, ok := f.st.Planets[k]; ok {
		return fmt.Errorf("%w: planet %s", ErrAlreadyExists, p.Hash)
	}
	f.st.Planets[k] = p
	return f.save()
}

func (f *FileStore) GetPlanet(gameID uint64, hash string) (*Planet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.st.Planets[planetKey(gameID, hash)]
	if !ok {
		return nil, fmt.Errorf("%w: planet %s", ErrNotFound, hash)
	}
	return p, nil
}

func (f *FileStore) PutPlanet(p *Planet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.Planets[planetKey(p.GameID, p.Hash)] = p
	return f.save()
}

func (f *FileStore) DeletePlanet(gameID uint64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := planetKey(gameID, hash)
	if _, ok := f.st.Planets[k]; !ok {
		return fmt.Errorf("%w: planet %s", ErrNotFound, hash)
	}
	delete(f.st.Planets, k)
	return f.save()
}

func (f *FileStore) ListPlanets(gameID uint64) ([]*Planet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := fmt.Sprintf("planet/%d/", gameID)
	var out []*Planet
	for k, p := range f.st.Planets {
		if strings.HasPrefix(k, prefix) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *FileStore) GetQueue(gameID uint64, hash string) (*MoveQueue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.st.Queues[queueKey(gameID, hash)]
	if !ok {
		return nil, fmt.Errorf("%w: queue %s", ErrNotFound, hash)
	}
	return q, nil
}

func (f *FileStore) PutQueue(q *MoveQueue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.Queues[queueKey(q.GameID, q.PlanetHash)] = q
	return f.save()
}

func (f *FileStore) DeleteQueue(gameID uint64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.st.Queues, queueKey(gameID, hash))
	return f.save()
}
