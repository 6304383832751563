package game

import "time"

// TimerConfig holds the per-phase windows and the timeout policy switches.
// The rolling window is fixed and not settable at runtime.
type TimerConfig struct {
	Asking    time.Duration
	Answering time.Duration
	Rolling   time.Duration
	Rating    time.Duration
	Vote      time.Duration

	// RatingTimeoutAccept picks the rating-timeout policy: auto-accept in the
	// answerer's favor with the default difficulty, or auto-reject with no
	// points.
	RatingTimeoutAccept bool
	// AskTimeoutDeactivate also marks the AFK questioner inactive when the
	// asking window expires; the turn advances either way.
	AskTimeoutDeactivate bool
}

func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		Asking:               2 * time.Minute,
		Answering:            3 * time.Minute,
		Rolling:              time.Minute,
		Rating:               2 * time.Minute,
		Vote:                 30 * time.Second,
		RatingTimeoutAccept:  true,
		AskTimeoutDeactivate: true,
	}
}

const (
	minAskingTimeout    = time.Minute
	maxAskingTimeout    = 30 * time.Minute
	minAnsweringTimeout = time.Minute
	maxAnsweringTimeout = 5 * time.Minute
	minRatingTimeout    = time.Minute
	maxRatingTimeout    = 5 * time.Minute
	minVoteTimeout      = 10 * time.Second
	maxVoteTimeout      = 90 * time.Second
)

// TimerKind names a configurable window for SetTimer.
type TimerKind string

const (
	TimerAsking    TimerKind = "asking"
	TimerAnswering TimerKind = "answering"
	TimerRolling   TimerKind = "rolling"
	TimerRating    TimerKind = "rating"
	TimerVote      TimerKind = "vote"
)

// Set validates the bounds for one window and applies it. Both the env
// configuration and the runtime SetTimer intent go through here, so a window
// no player could set can't arrive from the environment either.
func (c *TimerConfig) Set(kind TimerKind, d time.Duration) error {
	switch kind {
	case TimerAsking:
		if d < minAskingTimeout || d > maxAskingTimeout {
			return ErrTimerBounds
		}
		c.Asking = d
	case TimerAnswering:
		if d < minAnsweringTimeout || d > maxAnsweringTimeout {
			return ErrTimerBounds
		}
		c.Answering = d
	case TimerRating:
		if d < minRatingTimeout || d > maxRatingTimeout {
			return ErrTimerBounds
		}
		c.Rating = d
	case TimerVote:
		if d < minVoteTimeout || d > maxVoteTimeout {
			return ErrTimerBounds
		}
		c.Vote = d
	case TimerRolling:
		return ErrTimerBounds // fixed window
	default:
		return ErrUnknownTimer
	}
	return nil
}

// warnOffsets are the remaining-time marks at which warnings fire.
var warnOffsets = []time.Duration{time.Minute, 30 * time.Second, 10 * time.Second}

// timerHandle is the single live phase timer of a game. The generation token
// it carries is checked at fire time so a callback that lost the race against
// a human action no-ops instead of acting on a turn that has moved on.
type timerHandle struct {
	gen      uint64
	phase    Phase
	expiry   *time.Timer
	warnings []*time.Timer
}

func (h *timerHandle) stop() {
	if h == nil {
		return
	}
	if h.expiry != nil {
		h.expiry.Stop()
	}
	for _, w := range h.warnings {
		w.Stop()
	}
}

// armTimerLocked starts the phase timer, cancelling any prior one first so at
// most one expiry action can ever fire per phase. Callers hold g.mu.
func (g *Game) armTimerLocked(phase Phase, d time.Duration) {
	g.cancelTimerLocked()
	g.timerGen++
	gen := g.timerGen
	h := &timerHandle{gen: gen, phase: phase}
	for _, off := range warnOffsets {
		if off >= d {
			continue
		}
		left := int(off / time.Second)
		h.warnings = append(h.warnings, time.AfterFunc(d-off, func() {
			g.onTimerWarning(gen, phase, left)
		}))
	}
	h.expiry = time.AfterFunc(d, func() {
		g.onPhaseTimeout(gen, phase)
	})
	g.timer = h
}

// cancelTimerLocked is idempotent; cancelling an already-fired or
// already-cancelled timer is a no-op. Bumping the generation invalidates any
// callback that already fired but has not yet acquired the lock.
func (g *Game) cancelTimerLocked() {
	if g.timer == nil {
		return
	}
	g.timer.stop()
	g.timer = nil
	g.timerGen++
}

func (g *Game) onTimerWarning(gen uint64, phase Phase, secondsLeft int) {
	g.do(func() error {
		if g.ended || gen != g.timerGen || g.phase != phase {
			return nil
		}
		g.emit(TimerWarning{Phase: phase, SecondsLeft: secondsLeft})
		return nil
	})
}

func (g *Game) onPhaseTimeout(gen uint64, phase Phase) {
	g.do(func() error {
		g.phaseTimeoutLocked(gen, phase)
		return nil
	})
}

func (g *Game) phaseTimeoutLocked(gen uint64, phase Phase) {
	if g.ended || g.timer == nil || gen != g.timerGen {
		g.log.Debug().Uint64("gen", gen).Str("phase", string(phase)).Msg("stale phase timer, ignoring")
		return
	}
	if g.phase != phase {
		g.log.Debug().Str("armed", string(phase)).Str("now", string(g.phase)).Msg("phase timer outlived its phase, ignoring")
		return
	}
	g.timer = nil
	g.log.Info().Str("phase", string(phase)).Msg("phase timer expired")

	switch phase {
	case PhasePlaying:
		afk := g.current
		g.emit(TurnEnded{Outcome: OutcomeSkipped, Questioner: afk, Answerer: g.answerer})
		if g.cfg.AskTimeoutDeactivate {
			_ = g.departLocked(afk, false)
		} else {
			g.advanceLocked()
		}
	case PhaseAnswering:
		g.emit(TurnEnded{Outcome: OutcomeUnanswered, Questioner: g.current, Answerer: g.answerer})
		g.advanceLocked()
	case PhaseRolling:
		if g.currentRoll == 0 {
			g.currentRoll = g.roller.Roll()
			g.emit(DiceRolled{Player: g.current, Value: g.currentRoll, Auto: true})
		}
		if g.answererRoll == 0 {
			g.answererRoll = g.roller.Roll()
			g.emit(DiceRolled{Player: g.answerer, Value: g.answererRoll, Auto: true})
		}
		g.resolveRollsLocked()
	case PhaseRating:
		if g.cfg.RatingTimeoutAccept {
			g.finishExchangeLocked(OutcomeSecret)
		} else {
			g.emit(TurnEnded{Outcome: OutcomeRejected, Questioner: g.current, Answerer: g.answerer})
			g.advanceLocked()
		}
	}
}
