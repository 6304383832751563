// Package stats persists per-player lifetime counters. It consumes engine
// events and is never consulted for in-turn decisions.
package stats

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/frozenbridge/frozenbridge/internal/game"
)

const schema = `
CREATE TABLE IF NOT EXISTS players (
	player_id            TEXT PRIMARY KEY,
	name                 TEXT NOT NULL DEFAULT '',
	games_played         INTEGER NOT NULL DEFAULT 0,
	total_score          INTEGER NOT NULL DEFAULT 0,
	questions_asked      INTEGER NOT NULL DEFAULT 0,
	answers_given        INTEGER NOT NULL DEFAULT 0,
	giveups              INTEGER NOT NULL DEFAULT 0,
	times_revealed       INTEGER NOT NULL DEFAULT 0,
	times_exposed        INTEGER NOT NULL DEFAULT 0,
	times_lucky          INTEGER NOT NULL DEFAULT 0,
	times_failed_reveal  INTEGER NOT NULL DEFAULT 0
);`

type Recorder struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open creates or opens the stats database. Use ":memory:" in tests.
func Open(path string, log zerolog.Logger) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init stats schema: %w", err)
	}
	return &Recorder{db: db, log: log}, nil
}

func (r *Recorder) Close() error {
	return r.db.Close()
}

// Emit implements game.Sink. Only TurnEnded and GameEnded carry stats;
// everything else is ignored.
func (r *Recorder) Emit(gameID string, ev game.Event) {
	var err error
	switch e := ev.(type) {
	case game.TurnEnded:
		err = r.recordTurn(e)
	case game.GameEnded:
		err = r.recordGame(e)
	default:
		return
	}
	if err != nil {
		r.log.Error().Err(err).Str("game", gameID).Str("event", ev.Name()).Msg("stats write failed")
	}
}

func (r *Recorder) bump(id game.PlayerID, column string, by int) error {
	if id == "" {
		return nil
	}
	q := fmt.Sprintf(`INSERT INTO players (player_id, %[1]s) VALUES (?, ?)
		ON CONFLICT(player_id) DO UPDATE SET %[1]s = %[1]s + excluded.%[1]s`, column)
	_, err := r.db.Exec(q, string(id), by)
	return err
}

func (r *Recorder) recordTurn(e game.TurnEnded) error {
	switch e.Outcome {
	case game.OutcomeRevealed:
		if err := r.bump(e.Questioner, "questions_asked", 1); err != nil {
			return err
		}
		if err := r.bump(e.Questioner, "times_revealed", 1); err != nil {
			return err
		}
		if err := r.bump(e.Answerer, "answers_given", 1); err != nil {
			return err
		}
		return r.bump(e.Answerer, "times_exposed", 1)
	case game.OutcomeSecret:
		if err := r.bump(e.Questioner, "questions_asked", 1); err != nil {
			return err
		}
		if err := r.bump(e.Questioner, "times_failed_reveal", 1); err != nil {
			return err
		}
		if err := r.bump(e.Answerer, "answers_given", 1); err != nil {
			return err
		}
		return r.bump(e.Answerer, "times_lucky", 1)
	case game.OutcomeGivenUp:
		return r.bump(e.GaveUp, "giveups", 1)
	}
	return nil
}

func (r *Recorder) recordGame(e game.GameEnded) error {
	for _, entry := range e.Scoreboard {
		_, err := r.db.Exec(`INSERT INTO players (player_id, name, games_played, total_score)
			VALUES (?, ?, 1, ?)
			ON CONFLICT(player_id) DO UPDATE SET
				name = excluded.name,
				games_played = games_played + 1,
				total_score = total_score + excluded.total_score`,
			string(entry.ID), entry.Name, entry.Score)
		if err != nil {
			return err
		}
	}
	return nil
}

// Row is one player's lifetime record.
type Row struct {
	PlayerID          string `json:"playerId"`
	Name              string `json:"name"`
	GamesPlayed       int    `json:"gamesPlayed"`
	TotalScore        int    `json:"totalScore"`
	QuestionsAsked    int    `json:"questionsAsked"`
	AnswersGiven      int    `json:"answersGiven"`
	GiveUps           int    `json:"giveUps"`
	TimesRevealed     int    `json:"timesRevealed"`
	TimesExposed      int    `json:"timesExposed"`
	TimesLucky        int    `json:"timesLucky"`
	TimesFailedReveal int    `json:"timesFailedReveal"`
}

const rowColumns = `player_id, name, games_played, total_score, questions_asked,
	answers_given, giveups, times_revealed, times_exposed, times_lucky, times_failed_reveal`

func scanRow(s interface{ Scan(...any) error }) (Row, error) {
	var row Row
	err := s.Scan(&row.PlayerID, &row.Name, &row.GamesPlayed, &row.TotalScore,
		&row.QuestionsAsked, &row.AnswersGiven, &row.GiveUps,
		&row.TimesRevealed, &row.TimesExposed, &row.TimesLucky, &row.TimesFailedReveal)
	return row, err
}

// Leaderboard returns the top n players by total score.
func (r *Recorder) Leaderboard(n int) ([]Row, error) {
	rows, err := r.db.Query(`SELECT `+rowColumns+` FROM players ORDER BY total_score DESC, player_id ASC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Row
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// PlayerStats returns one player's record, or sql.ErrNoRows.
func (r *Recorder) PlayerStats(id game.PlayerID) (Row, error) {
	return scanRow(r.db.QueryRow(`SELECT `+rowColumns+` FROM players WHERE player_id = ?`, string(id)))
}
