package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"

	"github.com/couchcast/couchcast/internal/config"
	"github.com/couchcast/couchcast/internal/database"
	"github.com/couchcast/couchcast/internal/media"
	"github.com/couchcast/couchcast/internal/server"
)

type CouchCastApp struct {
	log            *log.Logger
	store          database.RoomStore
	mux            *http.Server
	ws             *server.WatchServer
	media          media.Resolver
	tokens         *TokenManager
	statsKey       string
	allowedOrigins []string
}

func NewCouchCastApp(mux *http.ServeMux, logger *log.Logger, ws *server.WatchServer,
	store database.RoomStore, resolver media.Resolver, tokens *TokenManager, cfg *config.Config) *CouchCastApp {
	s := &CouchCastApp{
		log:            logger,
		store:          store,
		ws:             ws,
		media:          resolver,
		tokens:         tokens,
		statsKey:       cfg.StatsKey,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("GET /ping", s.ping)
	mux.HandleFunc("POST /api/identity", s.createIdentity)
	mux.HandleFunc("POST /api/rooms", s.createRoom)
	mux.HandleFunc("GET /api/rooms", s.getRoom)
	mux.HandleFunc("DELETE /api/rooms", s.deleteRoom)
	mux.HandleFunc("GET /api/stats", s.getStats)
	mux.HandleFunc("GET /api/youtube", s.searchYoutube)
	mux.HandleFunc("POST /api/subtitle", s.uploadSubtitle)
	mux.HandleFunc("GET /api/subtitle/{hash}", s.getSubtitle)
	mux.HandleFunc("GET /ws", s.serveWs)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *CouchCastApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *CouchCastApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
