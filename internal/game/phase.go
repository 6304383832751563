package game

// Phase is the discrete stage of a single turn. Votes run orthogonally to it
// and never block a phase transition.
type Phase string

const (
	PhaseLobby     Phase = "Lobby"
	PhasePlaying   Phase = "Playing"
	PhaseAnswering Phase = "Answering"
	PhaseRating    Phase = "Rating"
	PhaseRolling   Phase = "Rolling"
	PhaseResolving Phase = "Resolving"
	PhaseEnded     Phase = "Ended"
)

// TurnOutcome classifies how an exchange finished.
type TurnOutcome string

const (
	OutcomeRevealed   TurnOutcome = "revealed"   // questioner rolled higher, question exposed
	OutcomeSecret     TurnOutcome = "secret"     // answerer rolled higher, question stays hidden
	OutcomeSkipped    TurnOutcome = "skipped"    // turn skipped before an exchange completed
	OutcomeUnanswered TurnOutcome = "unanswered" // answering window expired
	OutcomeRejected   TurnOutcome = "rejected"   // rating window expired with auto-accept disabled
	OutcomeGivenUp    TurnOutcome = "given_up"
)
