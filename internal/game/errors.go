package game

import "errors"

var (
	ErrGameNotFound     = errors.New("game not found")
	ErrGameExists       = errors.New("game already exists")
	ErrGameOver         = errors.New("game has ended")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrAlreadyActive    = errors.New("player already active")
	ErrNotInGame        = errors.New("not an active player in this game")
	ErrBanned           = errors.New("player was removed from this game")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrInvalidPhase     = errors.New("invalid phase for action")
	ErrAlreadyActed     = errors.New("already acted this turn")
	ErrInvalidRating    = errors.New("difficulty must be between 1 and 5")
	ErrVoteAlreadyOpen  = errors.New("a vote is already open")
	ErrNoActiveVote     = errors.New("no vote is open")
	ErrInvalidTarget    = errors.New("invalid vote target")
	ErrDuplicateBallot  = errors.New("already voted")
	ErrTimerBounds      = errors.New("timeout outside allowed bounds")
	ErrUnknownTimer     = errors.New("unknown timer")
	ErrUnknownAction    = errors.New("unknown action")
)
