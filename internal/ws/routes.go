package ws

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frozenbridge/frozenbridge/internal/game"
	"github.com/frozenbridge/frozenbridge/internal/stats"
)

// Stats is the read side of the stats collaborator that the HTTP surface
// needs.
type Stats interface {
	Leaderboard(n int) ([]stats.Row, error)
	PlayerStats(id game.PlayerID) (stats.Row, error)
}

// Routes registers the REST surface next to the socket endpoint: game
// creation, state snapshots, an intent fallback for clients without sockets,
// and the leaderboard.
func (s *Server) Routes(r *gin.Engine, st Stats) {
	api := r.Group("/api")

	api.POST("/game", func(c *gin.Context) {
		var req struct {
			ID string `json:"id"`
		}
		_ = c.BindJSON(&req)
		g, err := s.mgr.Create(req.ID)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": g.ID})
	})

	api.GET("/game/:id/state", func(c *gin.Context) {
		g, err := s.mgr.Get(c.Param("id"))
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, g.Snapshot())
	})

	api.POST("/game/:id/intent", func(c *gin.Context) {
		var msg Intent
		if err := c.BindJSON(&msg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad intent payload"})
			return
		}
		msg.Game = c.Param("id")
		if err := s.Dispatch(msg); err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api.GET("/leaderboard", func(c *gin.Context) {
		rows, err := st.Leaderboard(10)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard unavailable"})
			return
		}
		c.JSON(http.StatusOK, rows)
	})

	api.GET("/player/:id/stats", func(c *gin.Context) {
		row, err := st.PlayerStats(game.PlayerID(c.Param("id")))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no stats for player"})
			return
		}
		c.JSON(http.StatusOK, row)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrGameExists):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
