// Package ws is the chat transport adapter: a socket.io server mounted on
// gin. Clients join a per-game room, send intents as events, and receive
// every engine event broadcast to that room.
package ws

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog"

	"github.com/frozenbridge/frozenbridge/internal/game"
)

type Server struct {
	mgr *game.Manager
	io  *socketio.Server
	log zerolog.Logger
}

func New(mgr *game.Manager, log zerolog.Logger) *Server {
	s := &Server{mgr: mgr, io: socketio.NewServer(nil), log: log}

	s.io.OnConnect("/", func(c socketio.Conn) error {
		s.log.Debug().Str("sid", c.ID()).Msg("socket connected")
		return nil
	})
	s.io.OnEvent("/", "join", func(c socketio.Conn, gameID string) {
		c.Join(gameID)
		c.Emit("joined", gameID)
	})
	s.io.OnEvent("/", "intent", func(c socketio.Conn, raw string) string {
		var msg Intent
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return errJSON("bad intent payload")
		}
		if err := s.Dispatch(msg); err != nil {
			return errJSON(err.Error())
		}
		return `{"ok":true}`
	})
	s.io.OnError("/", func(c socketio.Conn, err error) {
		s.log.Warn().Err(err).Msg("socket error")
	})
	s.io.OnDisconnect("/", func(c socketio.Conn, reason string) {
		s.log.Debug().Str("sid", c.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	return s
}

// Mount attaches the socket.io endpoint to the router and starts the accept
// loop. The caller owns closing the returned server.
func (s *Server) Mount(r *gin.Engine) *socketio.Server {
	go func() {
		if err := s.io.Serve(); err != nil {
			s.log.Error().Err(err).Msg("socket.io serve")
		}
	}()
	r.GET("/socket.io/*any", gin.WrapH(s.io))
	r.POST("/socket.io/*any", gin.WrapH(s.io))
	return s.io
}

// Emit implements game.Sink: every engine event is broadcast to the game's
// room under its event name.
func (s *Server) Emit(gameID string, ev game.Event) {
	s.io.BroadcastToRoom("/", gameID, ev.Name(), ev)
}

func errJSON(msg string) string {
	b, _ := json.Marshal(gin.H{"ok": false, "error": msg})
	return string(b)
}

// Intent is one user action delivered by the transport.
type Intent struct {
	Game    string `json:"game"`
	Action  string `json:"action"`
	Player  string `json:"player"`
	Name    string `json:"name,omitempty"`
	Target  string `json:"target,omitempty"`
	Text    string `json:"text,omitempty"`
	Stars   int    `json:"stars,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Choice  *bool  `json:"choice,omitempty"`
	Timer   string `json:"timer,omitempty"`
	Seconds int    `json:"seconds,omitempty"`
}

// Dispatch routes an intent to the engine.
func (s *Server) Dispatch(msg Intent) error {
	g, err := s.mgr.Get(msg.Game)
	if err != nil {
		return err
	}
	player := game.PlayerID(msg.Player)
	target := game.PlayerID(msg.Target)

	start := time.Now()
	defer func() {
		s.log.Debug().Str("game", msg.Game).Str("action", msg.Action).Dur("dur", time.Since(start)).Msg("intent")
	}()

	switch msg.Action {
	case "join":
		return g.Join(player, msg.Name)
	case "start":
		return g.Start(player)
	case "leave":
		return g.Leave(player)
	case "ask":
		return g.AskQuestion(player, msg.Text)
	case "choose_answerer":
		return g.ChooseAnswerer(player, target)
	case "answer":
		return g.SubmitAnswer(player, msg.Text)
	case "reject_answer":
		return g.RejectAnswer(player)
	case "rate":
		return g.RateDifficulty(player, msg.Stars)
	case "roll":
		return g.RollDice(player)
	case "give_up":
		return g.GiveUp(player)
	case "vote_open":
		return g.OpenVote(game.VoteKind(msg.Kind), player, target)
	case "vote_cast":
		if msg.Choice == nil {
			return game.ErrUnknownAction
		}
		return g.CastBallot(player, *msg.Choice)
	case "admin_skip":
		return g.AdminAction(game.VoteSkip, target)
	case "admin_kick":
		return g.AdminAction(game.VoteKick, target)
	case "admin_end":
		return g.AdminAction(game.VoteEnd, "")
	case "set_timer":
		return g.SetTimer(game.TimerKind(msg.Timer), msg.Seconds)
	default:
		return game.ErrUnknownAction
	}
}
