package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/couchcast/couchcast/internal/api"
	"github.com/couchcast/couchcast/internal/config"
	"github.com/couchcast/couchcast/internal/database"
	"github.com/couchcast/couchcast/internal/media"
	"github.com/couchcast/couchcast/internal/server"
	"github.com/couchcast/couchcast/internal/stats"
)

const defaultSigningKey = "5Ptr8bHvJGVbyHi0Jwfw3x1OzM90DaDbFnaA9cz2h9k="

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	signingKey     string
	youtubeKey     string
	statsKey       string
	roomCapacity   int
	idleRoomGrace  time.Duration
	allowedOrigins stringSliceFlag
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:8080", "server address")
	flag.StringVar(&dsn, "dsn", "", "database connection string (empty for in-memory persistence)")
	flag.StringVar(&signingKey, "signing-key", defaultSigningKey, "base64 encoded signing key")
	flag.StringVar(&youtubeKey, "youtube-key", "", "YouTube API key, empty disables search")
	flag.StringVar(&statsKey, "stats-key", "", "secret key for the stats endpoint")
	flag.IntVar(&roomCapacity, "room-capacity", 0, "maximum participants per room, 0 for unlimited")
	flag.DurationVar(&idleRoomGrace, "idle-room-grace", 5*time.Minute, "grace period before an empty room is unloaded")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[couchcast] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, signingKey, allowedOrigins, youtubeKey, statsKey, roomCapacity, idleRoomGrace)
	if err != nil {
		logger.Fatal("config:", err)
	}

	var store database.RoomStore
	if cfg.DatabaseDSN != "" {
		store, err = database.NewPgRoomStore(cfg.DatabaseDSN)
		if err != nil {
			logger.Fatal("db open:", err)
		}
	} else {
		store = database.NewMemoryRoomStore()
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Println("db close:", err)
		}
	}()

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)
	resolver := media.NewYouTubeClient(cfg.YouTubeAPIKey, logger)
	tokens := api.NewTokenManager(cfg.SigningKey)

	watchServer, err := server.NewWatchServer(logger, store, statsUpdater, resolver, tokens, server.Options{
		RoomCapacity: cfg.RoomCapacity,
		IdleGrace:    cfg.IdleRoomGrace,
	})
	if err != nil {
		logger.Fatal("new watch server:", err)
	}

	srv := api.NewCouchCastApp(mux, logger, watchServer, store, resolver, tokens, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go watchServer.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down watch server...")
	if err := watchServer.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("watch server shutdown:", err)
	}

	logger.Println("shutdown complete")
}
