package game

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultDifficulty = 3

// Game is one running game, keyed by its chat room. All intents for a game
// are serialized through its mutex; intents for different games never share
// state.
type Game struct {
	ID string

	mu       sync.Mutex
	phase    Phase
	players  map[PlayerID]*Player
	banned   map[PlayerID]struct{}
	queue    []PlayerID // active players in turn order, no duplicates
	current  PlayerID
	answerer PlayerID

	question     string
	answer       string
	currentRoll  int // 0 = not rolled
	answererRoll int
	difficulty   int // 0 = not rated

	vote     *VoteSession
	timer    *timerHandle
	timerGen uint64

	cfg       TimerConfig
	roller    Roller
	sink      Sink
	log       zerolog.Logger
	startedAt time.Time

	ended       bool
	endNotified bool
	pending     []Event
	onEnd       func(id string)
}

func newGame(id string, cfg TimerConfig, roller Roller, sink Sink, log zerolog.Logger) *Game {
	return &Game{
		ID:      id,
		phase:   PhaseLobby,
		players: make(map[PlayerID]*Player),
		banned:  make(map[PlayerID]struct{}),
		cfg:     cfg,
		roller:  roller,
		sink:    sink,
		log:     log.With().Str("game", id).Logger(),
	}
}

// do runs fn under the game lock, then flushes buffered events and the
// end-of-game notification outside of it. Timer and vote callbacks go through
// the same path, so no two mutations of one game ever interleave.
func (g *Game) do(fn func() error) error {
	g.mu.Lock()
	err := fn()
	evs := g.pending
	g.pending = nil
	notifyEnd := g.ended && !g.endNotified
	if notifyEnd {
		g.endNotified = true
	}
	g.mu.Unlock()

	if g.sink != nil {
		for _, ev := range evs {
			g.sink.Emit(g.ID, ev)
		}
	}
	if notifyEnd && g.onEnd != nil {
		g.onEnd(g.ID)
	}
	return err
}

func (g *Game) emit(ev Event) {
	g.pending = append(g.pending, ev)
}

// Join adds a new player, or reactivates a departed one at the tail of the
// queue. Rejoining players keep their score but not their old position.
func (g *Game) Join(id PlayerID, name string) error {
	return g.do(func() error {
		if g.ended {
			return ErrGameOver
		}
		if _, ok := g.banned[id]; ok {
			return ErrBanned
		}
		if p, ok := g.players[id]; ok {
			if p.Active {
				return ErrAlreadyActive
			}
			p.Active = true
			if name != "" {
				p.Name = name
			}
			g.queue = append(g.queue, id)
			g.emit(PlayerJoined{Player: id, DisplayName: p.Name, Rejoined: true})
			return nil
		}
		g.players[id] = &Player{ID: id, Name: name, Active: true, JoinedAt: time.Now()}
		g.queue = append(g.queue, id)
		g.emit(PlayerJoined{Player: id, DisplayName: name})
		return nil
	})
}

// Start begins play: head of the queue asks first.
func (g *Game) Start(id PlayerID) error {
	return g.do(func() error {
		if g.ended {
			return ErrGameOver
		}
		if g.phase != PhaseLobby {
			return ErrInvalidPhase
		}
		if p, ok := g.players[id]; !ok || !p.Active {
			return ErrNotInGame
		}
		if len(g.queue) < 2 {
			return ErrNotEnoughPlayers
		}
		g.startedAt = time.Now()
		g.current = g.queue[0]
		g.setPhaseLocked(PhasePlaying)
		g.emit(TurnStarted{Player: g.current})
		g.armTimerLocked(PhasePlaying, g.cfg.Asking)
		return nil
	})
}

// Leave deactivates a player; their record and score survive for a rejoin.
func (g *Game) Leave(id PlayerID) error {
	return g.do(func() error {
		if g.ended {
			return ErrGameOver
		}
		return g.departLocked(id, false)
	})
}

// AskQuestion stores the current player's secret question. The answerer is
// picked separately with ChooseAnswerer.
func (g *Game) AskQuestion(id PlayerID, text string) error {
	return g.do(func() error {
		if g.ended {
			return ErrGameOver
		}
		if g.phase != PhasePlaying {
			return ErrInvalidPhase
		}
		if id != g.current {
			return ErrNotYourTurn
		}
		if g.question != "" {
			return ErrAlreadyActed
		}
		g.question = text
		g.emit(QuestionAsked{Questioner: id})
		return nil
	})
}

// ChooseAnswerer picks who must answer and opens the answering window.
func (g *Game) ChooseAnswerer(id, target PlayerID) error {
	return g.do(func() error {
		if g.ended {
			return ErrGameOver
		}
		if g.phase != PhasePlaying || g.question == "" {
			return ErrInvalidPhase
		}
		if id != g.current {
			return ErrNotYourTurn
		}
		if target == id || !containsID(g.queue, target) {
			return ErrInvalidTarget
		}
		g.answerer = target
		g.setPhaseLocked(PhaseAnswering)
		g.emit(AnswererChosen{Questioner: id, Answerer: target})
		g.armTimerLocked(PhaseAnswering, g.cfg.Answering)
		return nil
	})
}

// SubmitAnswer records the answerer's response and moves to rating.
func (g *Game) SubmitAnswer(id PlayerID, text string) error {
	return g.do(func() error {
		if g.ended {
			return ErrGameOver
		}
		if g.phase != PhaseAnswering {
			return ErrInvalidPhase
		}
		if id != g.answerer {
			return ErrNotYourTurn
		}
		if g.answer != "" {
			return ErrAlreadyActed
		}
		g.answer = text
		g.setPhaseLocked(PhaseRating)
		g.emit(AnswerSubmitted{Answerer: id})
		g.armTimerLocked(PhaseRating, g.cfg.Rating)
		return nil
	})
}

// RejectAnswer sends the answerer back for another try.
func (g *Game) RejectAnswer(id PlayerID) error {
	return g.do(func() error {
		if g.ended {
			return ErrGameOver
		}
		if g.phase != PhaseRating {
			return ErrInvalidPhase
		}
		if id != g.current {
			return ErrNotYourTurn
		}
		g.answer = ""
		g.setPhaseLocked(PhaseAnswering)
		g.emit(AnswerRejected{Answerer: g.answerer})
		g.armTimerLocked(PhaseAnswering, g.cfg.Answering)
		return nil
	})
}

// RateDifficulty accepts the answer, fixes the stake and opens the dice
// window. Points are awarded at resolution, not here.
func (g *Game) RateDifficulty(id PlayerID, stars int) error {
	return g.do(func() error {
		if g.ended {
			return ErrGameOver
		}
		if g.phase != PhaseRating {
			return ErrInvalidPhase
		}
		if id != g.current {
			return ErrNotYourTurn
		}
		if stars < 1 || stars > 5 {
			return ErrInvalidRating
		}
		g.difficulty = stars
		g.setPhaseLocked(PhaseRolling)
		g.armTimerLocked(PhaseRolling, g.cfg.Rolling)
		return nil
	})
}

// RollDice rolls for one side of the exchange; resolution runs as soon as
// both rolls are in.
func (g *Game) RollDice(id PlayerID) error {
	return g.do(func() error {
		if g.ended {
			return ErrGameOver
		}
		if g.phase != PhaseRolling {
			return ErrInvalidPhase
		}
		switch id {
		case g.current:
			if g.currentRoll != 0 {
				return ErrAlreadyActed
			}
			g.currentRoll = g.roller.Roll()
			g.emit(DiceRolled{Player: id, Value: g.currentRoll})
		case g.answerer:
			if g.answererRoll != 0 {
				return ErrAlreadyActed
			}
			g.answererRoll = g.roller.Roll()
			g.emit(DiceRolled{Player: id, Value: g.answererRoll})
		default:
			return ErrNotYourTurn
		}
		if g.currentRoll != 0 && g.answererRoll != 0 {
			g.resolveRollsLocked()
		}
		return nil
	})
}

// GiveUp forfeits the exchange; the giver-upper's counter takes the hit.
func (g *Game) GiveUp(id PlayerID) error {
	return g.do(func() error {
		if g.ended {
			return ErrGameOver
		}
		if g.phase != PhasePlaying && g.phase != PhaseAnswering && g.phase != PhaseRating {
			return ErrInvalidPhase
		}
		if id != g.current && id != g.answerer {
			return ErrNotYourTurn
		}
		if p, ok := g.players[id]; ok {
			p.GiveUps++
		}
		g.emit(TurnEnded{Outcome: OutcomeGivenUp, Questioner: g.current, Answerer: g.answerer, GaveUp: id})
		g.advanceLocked()
		return nil
	})
}

// OpenVote starts a skip, kick or end vote. With two or fewer active players
// a vote is pointless and the effect applies immediately.
func (g *Game) OpenVote(kind VoteKind, initiator, target PlayerID) error {
	return g.do(func() error {
		if g.ended {
			return ErrGameOver
		}
		if p, ok := g.players[initiator]; !ok || !p.Active {
			return ErrNotInGame
		}
		if g.vote != nil {
			return ErrVoteAlreadyOpen
		}
		switch kind {
		case VoteSkip:
			if target == "" {
				target = g.current
			}
			if !containsID(g.queue, target) {
				return ErrInvalidTarget
			}
		case VoteKick:
			if target == initiator || !containsID(g.queue, target) {
				return ErrInvalidTarget
			}
		case VoteEnd:
			target = ""
		default:
			return ErrUnknownAction
		}

		if len(g.queue) <= 2 {
			g.applyVoteEffectLocked(kind, target)
			return nil
		}

		v := newVoteSession(uuid.NewString(), kind, initiator, target, len(g.queue), g.cfg.Vote)
		voteID := v.ID
		v.timer = time.AfterFunc(g.cfg.Vote, func() { g.onVoteExpiry(voteID) })
		g.vote = v
		g.emit(VoteOpened{Kind: kind, Initiator: initiator, Target: target, Tally: v.Tally(), ExpiresAt: v.ExpiresAt})
		return nil
	})
}

// CastBallot records one voter's choice and recomputes the outcome.
func (g *Game) CastBallot(voter PlayerID, yes bool) error {
	return g.do(func() error {
		if g.ended {
			return ErrGameOver
		}
		if g.vote == nil {
			return ErrNoActiveVote
		}
		if p, ok := g.players[voter]; !ok || !p.Active {
			return ErrNotInGame
		}
		if err := g.vote.record(voter, yes); err != nil {
			return err
		}
		g.emit(VoteUpdated{Kind: g.vote.Kind, Tally: g.vote.Tally()})
		switch g.vote.Outcome() {
		case VotePassed:
			v := g.closeVoteLocked(VotePassed)
			g.applyVoteEffectLocked(v.Kind, v.Target)
		case VoteFailed:
			g.closeVoteLocked(VoteFailed)
		}
		return nil
	})
}

// AdminAction applies a skip, kick or end directly, bypassing the vote system.
func (g *Game) AdminAction(action VoteKind, target PlayerID) error {
	return g.do(func() error {
		if g.ended {
			return ErrGameOver
		}
		switch action {
		case VoteSkip, VoteKick:
			if action == VoteSkip && target == "" {
				target = g.current
			}
			if !containsID(g.queue, target) {
				return ErrInvalidTarget
			}
		case VoteEnd:
		default:
			return ErrUnknownAction
		}
		g.applyVoteEffectLocked(action, target)
		return nil
	})
}

// SetTimer reconfigures one phase window, bounds-checked. Applies to timers
// armed from now on.
func (g *Game) SetTimer(kind TimerKind, seconds int) error {
	return g.do(func() error {
		if g.ended {
			return ErrGameOver
		}
		return g.cfg.Set(kind, time.Duration(seconds)*time.Second)
	})
}

// applyVoteEffectLocked is shared by passed votes and admin actions.
func (g *Game) applyVoteEffectLocked(kind VoteKind, target PlayerID) {
	switch kind {
	case VoteSkip:
		_ = g.departLocked(target, false)
	case VoteKick:
		_ = g.departLocked(target, true)
	case VoteEnd:
		g.endLocked("vote")
	}
}

func (g *Game) closeVoteLocked(outcome VoteOutcome) *VoteSession {
	v := g.vote
	if v == nil {
		return nil
	}
	g.vote = nil
	v.stopTimer()
	g.emit(VoteResolved{Kind: v.Kind, Target: v.Target, Outcome: outcome, Tally: v.Tally()})
	return v
}

func (g *Game) onVoteExpiry(voteID string) {
	g.do(func() error {
		if g.ended || g.vote == nil || g.vote.ID != voteID {
			g.log.Debug().Str("vote", voteID).Msg("stale vote expiry, ignoring")
			return nil
		}
		g.closeVoteLocked(VoteExpired)
		return nil
	})
}

// departLocked handles every way a player leaves: voluntary leave, vote skip,
// kick, admin action or AFK timeout. It keeps the turn coherent and ends the
// game when too few players remain.
func (g *Game) departLocked(id PlayerID, permanent bool) error {
	p, ok := g.players[id]
	if !ok {
		return ErrNotInGame
	}
	if !permanent && !p.Active {
		return ErrNotInGame
	}
	wasCurrent := id == g.current
	wasAnswerer := id == g.answerer

	if permanent {
		delete(g.players, id)
		g.banned[id] = struct{}{}
	} else {
		p.Active = false
	}
	g.queue = removeID(g.queue, id)
	g.emit(PlayerLeft{Player: id, Permanent: permanent})

	if g.vote != nil && g.vote.Target == id {
		g.closeVoteLocked(VoteCancelled)
	}

	if g.phase == PhaseLobby {
		return nil
	}
	if len(g.queue) <= 1 {
		g.endLocked("not enough players")
		return nil
	}

	switch {
	case wasCurrent:
		g.advanceLocked()
	case wasAnswerer:
		// The questioner keeps the turn and the question; the rest of the
		// exchange resets so the next answerer starts from a clean slate.
		g.answerer = ""
		g.answer = ""
		g.currentRoll = 0
		g.answererRoll = 0
		g.difficulty = 0
		g.setPhaseLocked(PhasePlaying)
		g.armTimerLocked(PhasePlaying, g.cfg.Asking)
	}
	return nil
}

// resolveRollsLocked runs once both rolls are set. Ties clear both rolls and
// reopen the dice window.
func (g *Game) resolveRollsLocked() {
	g.setPhaseLocked(PhaseResolving)
	switch {
	case g.currentRoll > g.answererRoll:
		g.finishExchangeLocked(OutcomeRevealed)
	case g.answererRoll > g.currentRoll:
		g.finishExchangeLocked(OutcomeSecret)
	default:
		g.emit(DiceTie{Value: g.currentRoll})
		g.currentRoll = 0
		g.answererRoll = 0
		g.setPhaseLocked(PhaseRolling)
		g.armTimerLocked(PhaseRolling, g.cfg.Rolling)
	}
}

// finishExchangeLocked awards the stake to the answerer and closes the turn.
// Reveal and secret both pay out; only what gets disclosed differs.
func (g *Game) finishExchangeLocked(outcome TurnOutcome) {
	pts := g.difficulty
	if pts == 0 {
		pts = defaultDifficulty
	}
	if p, ok := g.players[g.answerer]; ok {
		p.Score += pts
		p.AnswersGiven++
	}
	if p, ok := g.players[g.current]; ok {
		p.QuestionsAsked++
	}
	ev := TurnEnded{
		Outcome:    outcome,
		Questioner: g.current,
		Answerer:   g.answerer,
		Scorer:     g.answerer,
		Points:     pts,
		Answer:     g.answer,
	}
	if outcome == OutcomeRevealed {
		ev.Question = g.question
	}
	g.emit(ev)
	g.advanceLocked()
}

// advanceLocked closes the turn and hands it to the next player in rotation.
func (g *Game) advanceLocked() {
	prev := g.current
	g.clearTurnStateLocked()
	next, ok := nextAfter(g.queue, prev)
	if !ok {
		g.current = ""
		g.endLocked("no active players")
		return
	}
	if prev != "" && !containsID(g.queue, prev) {
		g.log.Warn().Str("player", string(prev)).Msg("current player missing from queue, falling back to head")
	}
	g.current = next
	g.emit(TurnStarted{Player: next})
	g.armTimerLocked(PhasePlaying, g.cfg.Asking)
}

// clearTurnStateLocked wipes every per-turn field, cancels the live phase
// timer and returns to PLAYING. Nothing from a finished or abandoned turn may
// leak into the next one.
func (g *Game) clearTurnStateLocked() {
	g.question = ""
	g.answer = ""
	g.answerer = ""
	g.currentRoll = 0
	g.answererRoll = 0
	g.difficulty = 0
	g.cancelTimerLocked()
	g.setPhaseLocked(PhasePlaying)
}

func (g *Game) setPhaseLocked(p Phase) {
	if g.phase == p {
		return
	}
	g.phase = p
	g.emit(PhaseChanged{Phase: p})
}

func (g *Game) endLocked(reason string) {
	if g.ended {
		return
	}
	g.ended = true
	g.cancelTimerLocked()
	if g.vote != nil {
		g.vote.stopTimer()
		g.vote = nil
	}
	g.phase = PhaseEnded
	var dur time.Duration
	if !g.startedAt.IsZero() {
		dur = time.Since(g.startedAt)
	}
	g.log.Info().Str("reason", reason).Dur("duration", dur).Msg("game ended")
	g.emit(GameEnded{Reason: reason, Scoreboard: g.scoreboardLocked(), Duration: dur})
}

func (g *Game) scoreboardLocked() []ScoreEntry {
	board := make([]ScoreEntry, 0, len(g.players))
	for _, p := range g.players {
		board = append(board, ScoreEntry{ID: p.ID, Name: p.Name, Score: p.Score, Active: p.Active})
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].Score != board[j].Score {
			return board[i].Score > board[j].Score
		}
		return board[i].ID < board[j].ID
	})
	return board
}

// Snapshot is a read-only view for the transport adapter. The question and
// answer texts stay secret; only their presence is exposed.
type Snapshot struct {
	ID          string     `json:"id"`
	Phase       Phase      `json:"phase"`
	Players     []Player   `json:"players"`
	Queue       []PlayerID `json:"queue"`
	Current     PlayerID   `json:"current,omitempty"`
	Answerer    PlayerID   `json:"answerer,omitempty"`
	HasQuestion bool       `json:"hasQuestion"`
	HasAnswer   bool       `json:"hasAnswer"`
	Difficulty  int        `json:"difficulty,omitempty"`
	Vote        *VoteView  `json:"vote,omitempty"`
}

type VoteView struct {
	Kind      VoteKind  `json:"kind"`
	Target    PlayerID  `json:"target,omitempty"`
	Tally     VoteTally `json:"tally"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	s := Snapshot{
		ID:          g.ID,
		Phase:       g.phase,
		Current:     g.current,
		Answerer:    g.answerer,
		HasQuestion: g.question != "",
		HasAnswer:   g.answer != "",
		Difficulty:  g.difficulty,
		Queue:       append([]PlayerID(nil), g.queue...),
	}
	for _, id := range g.queue {
		if p, ok := g.players[id]; ok {
			s.Players = append(s.Players, *p)
		}
	}
	for _, p := range g.players {
		if !p.Active {
			s.Players = append(s.Players, *p)
		}
	}
	if g.vote != nil {
		s.Vote = &VoteView{Kind: g.vote.Kind, Target: g.vote.Target, Tally: g.vote.Tally(), ExpiresAt: g.vote.ExpiresAt}
	}
	return s
}
