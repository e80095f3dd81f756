package party

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

// TrackImporter turns a playlist reference plus the host's catalog
// bearer credential into the quiz track list.
type TrackImporter interface {
	ImportTracks(ctx context.Context, playlistID, bearerToken string) ([]Track, error)
}

type Server struct {
	store     *Store
	rdb       *redis.Client
	importer  TrackImporter
	jwtSecret []byte
}

func NewServer(store *Store, rdb *redis.Client, importer TrackImporter, jwtSecret []byte) *Server {
	return &Server{
		store:     store,
		rdb:       rdb,
		importer:  importer,
		jwtSecret: jwtSecret,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)

	r.Post("/party", s.handleCreateParty)
	r.Get("/party", s.handleGetParty)
	r.Put("/party", s.handleUpdateParty)
	r.Delete("/party", s.handleDeleteParty)

	r.Post("/party/join", s.handleJoin)
	r.Post("/party/start", s.handleStart)
	r.Post("/party/answer", s.handleAnswer)

	r.Post("/party/next-track", s.handleNextTrack)
	r.Post("/party/finish-round", s.handleFinishRound)
	r.Post("/party/finish-game", s.handleFinishGame)

	r.Get("/party/playback", s.handleGetPlayback)
	r.Post("/party/playback", s.handlePlayback)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "party-service",
	})
}
