package game

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Manager is the gameID -> Game table, the only cross-game synchronization
// point. Games remove themselves from it when they end, always from outside
// their own critical section.
type Manager struct {
	mu    sync.RWMutex
	games map[string]*Game

	cfg    TimerConfig
	roller Roller
	sink   Sink
	log    zerolog.Logger
}

func NewManager(cfg TimerConfig, sink Sink, log zerolog.Logger) *Manager {
	return &Manager{
		games:  make(map[string]*Game),
		cfg:    cfg,
		roller: NewRoller(),
		sink:   sink,
		log:    log,
	}
}

// SetRoller swaps the dice source; used by tests to script rolls.
func (m *Manager) SetRoller(r Roller) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roller = r
}

// Create makes a new lobby for the given room id; an empty id gets a
// generated one.
func (m *Manager) Create(id string) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	}
	if _, ok := m.games[id]; ok {
		return nil, ErrGameExists
	}
	g := newGame(id, m.cfg, m.roller, m.sink, m.log)
	g.onEnd = m.remove
	m.games[id] = g
	m.log.Info().Str("game", id).Msg("game created")
	return g, nil
}

func (m *Manager) Get(id string) (*Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g, nil
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

func (m *Manager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	m.log.Info().Str("game", id).Msg("game discarded")
}
