package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zerologlog "github.com/rs/zerolog/log"

	"github.com/frozenbridge/frozenbridge/internal/config"
	"github.com/frozenbridge/frozenbridge/internal/game"
	"github.com/frozenbridge/frozenbridge/internal/stats"
	"github.com/frozenbridge/frozenbridge/internal/ws"
)

const version = "v1.0.0"

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
	)
	flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showHelp {
		fmt.Printf(`Frozen Bridge - turn-based secret question party game server

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)

Environment Variables:
  PORT                    Port to listen on (default: 8080)
  STATS_DB                Path to the sqlite stats database (default: frozenbridge.db)
  ASKING_TIMEOUT          Asking window in seconds (default: 120)
  ANSWERING_TIMEOUT       Answering window in seconds (default: 180)
  RATING_TIMEOUT          Rating window in seconds (default: 120)
  VOTE_TIMEOUT            Vote window in seconds (default: 30)
  RATING_TIMEOUT_ACCEPT   Auto-accept in answerer's favor on rating timeout (default: true)
  ASK_TIMEOUT_DEACTIVATE  Deactivate the AFK questioner on asking timeout (default: true)
`, os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("frozenbridge %s\n", version)
		return
	}

	// .env is optional
	_ = godotenv.Load()

	// zerolog setup (human-friendly console)
	zerolog.TimeFieldFormat = time.RFC3339
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	zerologlog.Logger = zerologlog.Output(cw)
	log := zerologlog.Logger

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	timers, err := cfg.Timers()
	if err != nil {
		log.Fatal().Err(err).Msg("timer config")
	}
	port := *portFlag
	if port == "" {
		port = cfg.Port
	}

	recorder, err := stats.Open(cfg.StatsDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("stats store")
	}
	defer recorder.Close()

	// Gin setup with custom logger (skip /socket.io noise)
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/socket.io") {
			return
		}
		log.Info().Str("path", path).Int("status", c.Writer.Status()).Dur("dur", time.Since(start)).Msg("http")
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC()})
	})

	// Engine + transport. Events fan out to the socket broadcaster and the
	// stats recorder.
	fanout := game.NewFanout(recorder)
	mgr := game.NewManager(timers, fanout, log)
	sock := ws.New(mgr, log)
	fanout.Add(sock)
	io := sock.Mount(r)
	defer io.Close()
	sock.Routes(r, recorder)

	log.Info().Str("port", port).Msg("listening")
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}
