package game

import (
	"sync"

	"github.com/rs/zerolog"
)

// scriptRoller plays back a fixed sequence of die faces.
type scriptRoller struct {
	mu    sync.Mutex
	rolls []int
}

func (r *scriptRoller) Roll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.rolls) == 0 {
		return 1
	}
	v := r.rolls[0]
	r.rolls = r.rolls[1:]
	return v
}

func (r *scriptRoller) push(vals ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rolls = append(r.rolls, vals...)
}

// recordSink collects every emitted event.
type recordSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordSink) Emit(gameID string, ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordSink) byName(name string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, ev := range s.events {
		if ev.Name() == name {
			out = append(out, ev)
		}
	}
	return out
}

func (s *recordSink) last(name string) (Event, bool) {
	evs := s.byName(name)
	if len(evs) == 0 {
		return nil, false
	}
	return evs[len(evs)-1], true
}

type fixture struct {
	mgr    *Manager
	game   *Game
	sink   *recordSink
	roller *scriptRoller
}

// newFixture creates a started game with the given players; the first one
// holds the turn.
func newFixture(t interface{ Fatalf(string, ...any) }, players ...PlayerID) *fixture {
	sink := &recordSink{}
	roller := &scriptRoller{}
	mgr := NewManager(DefaultTimerConfig(), sink, zerolog.Nop())
	mgr.SetRoller(roller)
	g, err := mgr.Create("room")
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	for _, id := range players {
		if err := g.Join(id, string(id)); err != nil {
			t.Fatalf("join %s: %v", id, err)
		}
	}
	if len(players) >= 2 {
		if err := g.Start(players[0]); err != nil {
			t.Fatalf("start: %v", err)
		}
	}
	return &fixture{mgr: mgr, game: g, sink: sink, roller: roller}
}

// gen reads the current timer generation.
func (f *fixture) gen() uint64 {
	f.game.mu.Lock()
	defer f.game.mu.Unlock()
	return f.game.timerGen
}

// toRating drives the game to the rating phase: a asked b, b answered.
func (f *fixture) toRating(questioner, answerer PlayerID) error {
	if err := f.game.AskQuestion(questioner, "who would survive on a deserted island?"); err != nil {
		return err
	}
	if err := f.game.ChooseAnswerer(questioner, answerer); err != nil {
		return err
	}
	return f.game.SubmitAnswer(answerer, "definitely charlie")
}

// toRolling continues through rating into the dice phase.
func (f *fixture) toRolling(questioner, answerer PlayerID, stars int) error {
	if err := f.toRating(questioner, answerer); err != nil {
		return err
	}
	return f.game.RateDifficulty(questioner, stars)
}
