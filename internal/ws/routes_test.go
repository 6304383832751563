package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frozenbridge/frozenbridge/internal/game"
	"github.com/frozenbridge/frozenbridge/internal/stats"
)

type stubStats struct {
	rows []stats.Row
	err  error
}

func (s *stubStats) Leaderboard(n int) ([]stats.Row, error) { return s.rows, s.err }
func (s *stubStats) PlayerStats(id game.PlayerID) (stats.Row, error) {
	for _, r := range s.rows {
		if r.PlayerID == string(id) {
			return r, nil
		}
	}
	return stats.Row{}, s.err
}

type nopSink struct{}

func (nopSink) Emit(string, game.Event) {}

func newTestRouter(t *testing.T, st Stats) (*gin.Engine, *Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mgr := game.NewManager(game.DefaultTimerConfig(), nopSink{}, zerolog.Nop())
	s := New(mgr, zerolog.Nop())
	r := gin.New()
	s.Routes(r, st)
	return r, s
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateGameEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, &stubStats{})

	w := do(r, http.MethodPost, "/api/game", `{"id":"bridge"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bridge"`)

	w = do(r, http.MethodPost, "/api/game", `{"id":"bridge"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStateEndpoint(t *testing.T) {
	r, s := newTestRouter(t, &stubStats{})
	g, err := s.mgr.Create("bridge")
	require.NoError(t, err)
	require.NoError(t, g.Join("alice", "Alice"))

	w := do(r, http.MethodGet, "/api/game/bridge/state", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"alice"`)

	w = do(r, http.MethodGet, "/api/game/nope/state", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIntentEndpoint(t *testing.T) {
	r, s := newTestRouter(t, &stubStats{})
	_, err := s.mgr.Create("bridge")
	require.NoError(t, err)

	w := do(r, http.MethodPost, "/api/game/bridge/intent", `{"action":"join","player":"alice","name":"Alice"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// engine rejection surfaces as a 400
	w = do(r, http.MethodPost, "/api/game/bridge/intent", `{"action":"start","player":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), game.ErrNotEnoughPlayers.Error())

	w = do(r, http.MethodPost, "/api/game/bridge/intent", `{"action":"levitate","player":"alice"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/game/missing/intent", `{"action":"join","player":"a","name":"A"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeaderboardEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, &stubStats{rows: []stats.Row{
		{PlayerID: "bob", Name: "Bob", TotalScore: 9},
	}})

	w := do(r, http.MethodGet, "/api/leaderboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bob"`)
}

func TestDispatchFullTurn(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mgr := game.NewManager(game.DefaultTimerConfig(), nopSink{}, zerolog.Nop())
	s := New(mgr, zerolog.Nop())
	g, err := mgr.Create("bridge")
	require.NoError(t, err)

	send := func(in Intent) error {
		in.Game = "bridge"
		return s.Dispatch(in)
	}

	require.NoError(t, send(Intent{Action: "join", Player: "a", Name: "Ann"}))
	require.NoError(t, send(Intent{Action: "join", Player: "b", Name: "Ben"}))
	require.NoError(t, send(Intent{Action: "start", Player: "a"}))
	require.NoError(t, send(Intent{Action: "ask", Player: "a", Text: "what is in the cellar?"}))
	require.NoError(t, send(Intent{Action: "choose_answerer", Player: "a", Target: "b"}))
	require.NoError(t, send(Intent{Action: "answer", Player: "b", Text: "wine, mostly"}))
	require.NoError(t, send(Intent{Action: "rate", Player: "a", Stars: 2}))

	assert.Equal(t, game.PhaseRolling, g.Snapshot().Phase)

	yes := true
	assert.ErrorIs(t, send(Intent{Action: "vote_cast", Player: "a"}), game.ErrUnknownAction, "ballot needs a choice")
	assert.ErrorIs(t, send(Intent{Action: "vote_cast", Player: "a", Choice: &yes}), game.ErrNoActiveVote)
}
