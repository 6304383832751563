package game

import (
	"sync"
	"time"
)

// Event is a side effect of an intent, consumed by the transport adapter and
// the stats collaborator. Events are emitted after the game's critical section
// so sinks never run under the game lock.
type Event interface {
	Name() string
}

// Sink receives every event emitted for a game.
type Sink interface {
	Emit(gameID string, ev Event)
}

type PlayerJoined struct {
	Player      PlayerID `json:"player"`
	DisplayName string   `json:"name"`
	Rejoined    bool     `json:"rejoined"`
}

func (PlayerJoined) Name() string { return "player_joined" }

type PlayerLeft struct {
	Player    PlayerID `json:"player"`
	Permanent bool     `json:"permanent"`
}

func (PlayerLeft) Name() string { return "player_left" }

type PhaseChanged struct {
	Phase Phase `json:"phase"`
}

func (PhaseChanged) Name() string { return "phase_changed" }

type TurnStarted struct {
	Player PlayerID `json:"player"`
}

func (TurnStarted) Name() string { return "turn_started" }

type QuestionAsked struct {
	Questioner PlayerID `json:"questioner"`
}

func (QuestionAsked) Name() string { return "question_asked" }

type AnswererChosen struct {
	Questioner PlayerID `json:"questioner"`
	Answerer   PlayerID `json:"answerer"`
}

func (AnswererChosen) Name() string { return "answerer_chosen" }

type AnswerSubmitted struct {
	Answerer PlayerID `json:"answerer"`
}

func (AnswerSubmitted) Name() string { return "answer_submitted" }

type AnswerRejected struct {
	Answerer PlayerID `json:"answerer"`
}

func (AnswerRejected) Name() string { return "answer_rejected" }

type DiceRolled struct {
	Player PlayerID `json:"player"`
	Value  int      `json:"value"`
	Auto   bool     `json:"auto"`
}

func (DiceRolled) Name() string { return "dice_rolled" }

type DiceTie struct {
	Value int `json:"value"`
}

func (DiceTie) Name() string { return "dice_tie" }

type TimerWarning struct {
	Phase       Phase `json:"phase"`
	SecondsLeft int   `json:"secondsLeft"`
}

func (TimerWarning) Name() string { return "timer_warning" }

type VoteOpened struct {
	Kind      VoteKind  `json:"kind"`
	Initiator PlayerID  `json:"initiator"`
	Target    PlayerID  `json:"target,omitempty"`
	Tally     VoteTally `json:"tally"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (VoteOpened) Name() string { return "vote_opened" }

type VoteUpdated struct {
	Kind  VoteKind  `json:"kind"`
	Tally VoteTally `json:"tally"`
}

func (VoteUpdated) Name() string { return "vote_updated" }

type VoteResolved struct {
	Kind    VoteKind    `json:"kind"`
	Target  PlayerID    `json:"target,omitempty"`
	Outcome VoteOutcome `json:"outcome"`
	Tally   VoteTally   `json:"tally"`
}

func (VoteResolved) Name() string { return "vote_resolved" }

// TurnEnded carries everything the stats collaborator needs; the question and
// answer texts are present only when the outcome discloses them.
type TurnEnded struct {
	Outcome    TurnOutcome `json:"outcome"`
	Questioner PlayerID    `json:"questioner,omitempty"`
	Answerer   PlayerID    `json:"answerer,omitempty"`
	Scorer     PlayerID    `json:"scorer,omitempty"`
	Points     int         `json:"points"`
	Question   string      `json:"question,omitempty"`
	Answer     string      `json:"answer,omitempty"`
	GaveUp     PlayerID    `json:"gaveUp,omitempty"`
}

func (TurnEnded) Name() string { return "turn_ended" }

type GameEnded struct {
	Reason     string        `json:"reason"`
	Scoreboard []ScoreEntry  `json:"scoreboard"`
	Duration   time.Duration `json:"duration"`
}

func (GameEnded) Name() string { return "game_ended" }

// Fanout distributes events to every registered sink.
type Fanout struct {
	mu    sync.RWMutex
	sinks []Sink
}

func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Add(s Sink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, s)
}

func (f *Fanout) Emit(gameID string, ev Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, s := range f.sinks {
		s.Emit(gameID, ev)
	}
}
