package game

import "time"

// PlayerID is the identity handed to us by the chat transport.
type PlayerID string

type Player struct {
	ID             PlayerID  `json:"id"`
	Name           string    `json:"name"`
	Active         bool      `json:"active"`
	Score          int       `json:"score"`
	QuestionsAsked int       `json:"questionsAsked"`
	AnswersGiven   int       `json:"answersGiven"`
	GiveUps        int       `json:"giveUps"`
	JoinedAt       time.Time `json:"joinedAt"`
}

// ScoreEntry is one line of a final scoreboard, inactive players included.
type ScoreEntry struct {
	ID     PlayerID `json:"id"`
	Name   string   `json:"name"`
	Score  int      `json:"score"`
	Active bool     `json:"active"`
}
