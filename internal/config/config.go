package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/frozenbridge/frozenbridge/internal/game"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	StatsDB string `env:"STATS_DB" envDefault:"frozenbridge.db"`

	AskingTimeout    int `env:"ASKING_TIMEOUT" envDefault:"120"`
	AnsweringTimeout int `env:"ANSWERING_TIMEOUT" envDefault:"180"`
	RatingTimeout    int `env:"RATING_TIMEOUT" envDefault:"120"`
	VoteTimeout      int `env:"VOTE_TIMEOUT" envDefault:"30"`

	RatingTimeoutAccept  bool `env:"RATING_TIMEOUT_ACCEPT" envDefault:"true"`
	AskTimeoutDeactivate bool `env:"ASK_TIMEOUT_DEACTIVATE" envDefault:"true"`
}

func Load() (Config, error) {
	var c Config
	err := env.Parse(&c)
	return c, err
}

// Timers converts the env settings into the engine's timer config. Every
// window passes the same bounds check as the runtime SetTimer intent; the
// dice window is fixed and has no env knob.
func (c Config) Timers() (game.TimerConfig, error) {
	tc := game.DefaultTimerConfig()
	tc.RatingTimeoutAccept = c.RatingTimeoutAccept
	tc.AskTimeoutDeactivate = c.AskTimeoutDeactivate
	windows := []struct {
		kind game.TimerKind
		secs int
	}{
		{game.TimerAsking, c.AskingTimeout},
		{game.TimerAnswering, c.AnsweringTimeout},
		{game.TimerRating, c.RatingTimeout},
		{game.TimerVote, c.VoteTimeout},
	}
	for _, w := range windows {
		if err := tc.Set(w.kind, time.Duration(w.secs)*time.Second); err != nil {
			return tc, fmt.Errorf("%s timeout %ds: %w", w.kind, w.secs, err)
		}
	}
	return tc, nil
}
