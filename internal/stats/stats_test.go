package stats

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frozenbridge/frozenbridge/internal/game"
)

func openTest(t *testing.T) *Recorder {
	t.Helper()
	r, err := Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRevealedTurnCounters(t *testing.T) {
	r := openTest(t)

	r.Emit("g", game.TurnEnded{
		Outcome:    game.OutcomeRevealed,
		Questioner: "alice",
		Answerer:   "bob",
		Scorer:     "bob",
		Points:     4,
	})

	q, err := r.PlayerStats("alice")
	require.NoError(t, err)
	assert.Equal(t, 1, q.QuestionsAsked)
	assert.Equal(t, 1, q.TimesRevealed)
	assert.Zero(t, q.AnswersGiven)

	a, err := r.PlayerStats("bob")
	require.NoError(t, err)
	assert.Equal(t, 1, a.AnswersGiven)
	assert.Equal(t, 1, a.TimesExposed)
	assert.Zero(t, a.TimesLucky)
}

func TestSecretTurnCounters(t *testing.T) {
	r := openTest(t)

	r.Emit("g", game.TurnEnded{
		Outcome:    game.OutcomeSecret,
		Questioner: "alice",
		Answerer:   "bob",
	})

	q, err := r.PlayerStats("alice")
	require.NoError(t, err)
	assert.Equal(t, 1, q.TimesFailedReveal)

	a, err := r.PlayerStats("bob")
	require.NoError(t, err)
	assert.Equal(t, 1, a.TimesLucky)
}

func TestGiveUpCounter(t *testing.T) {
	r := openTest(t)

	r.Emit("g", game.TurnEnded{Outcome: game.OutcomeGivenUp, Questioner: "alice", Answerer: "bob", GaveUp: "bob"})
	r.Emit("g", game.TurnEnded{Outcome: game.OutcomeGivenUp, Questioner: "alice", Answerer: "bob", GaveUp: "bob"})

	a, err := r.PlayerStats("bob")
	require.NoError(t, err)
	assert.Equal(t, 2, a.GiveUps)
	assert.Zero(t, a.AnswersGiven, "an abandoned exchange counts nothing else")
}

func TestSkippedTurnRecordsNothing(t *testing.T) {
	r := openTest(t)

	r.Emit("g", game.TurnEnded{Outcome: game.OutcomeSkipped, Questioner: "alice"})

	_, err := r.PlayerStats("alice")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGameEndedAccumulatesAcrossGames(t *testing.T) {
	r := openTest(t)

	end := func(score int) {
		r.Emit("g", game.GameEnded{
			Reason: "not enough players",
			Scoreboard: []game.ScoreEntry{
				{ID: "alice", Name: "Alice", Score: score},
			},
			Duration: time.Minute,
		})
	}
	end(7)
	end(5)

	row, err := r.PlayerStats("alice")
	require.NoError(t, err)
	assert.Equal(t, 2, row.GamesPlayed)
	assert.Equal(t, 12, row.TotalScore)
	assert.Equal(t, "Alice", row.Name)
}

func TestLeaderboardOrderAndLimit(t *testing.T) {
	r := openTest(t)

	r.Emit("g", game.GameEnded{Scoreboard: []game.ScoreEntry{
		{ID: "alice", Name: "Alice", Score: 3},
		{ID: "bob", Name: "Bob", Score: 9},
		{ID: "carol", Name: "Carol", Score: 5},
	}})

	top, err := r.Leaderboard(2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "bob", top[0].PlayerID)
	assert.Equal(t, "carol", top[1].PlayerID)
}
