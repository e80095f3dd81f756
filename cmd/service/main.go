package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"musicquiz-service/internal/catalog"
	"musicquiz-service/internal/party"
	"musicquiz-service/internal/realtime"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx := context.Background()

	port := getenv("PORT", "3003")
	redisURL := getenv("REDIS_URL", "redis://redis:6379")

	jwtSecret := []byte(getenv("JWT_SECRET", ""))
	if len(jwtSecret) == 0 {
		log.Fatal("party-service: JWT_SECRET is required")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("party-service: invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	spotifyBaseURL := getenv("SPOTIFY_API_URL", "https://api.spotify.com/v1")
	spotify := catalog.NewSpotifyClient(spotifyBaseURL)

	var gen catalog.Generator
	openAIKey := getenv("OPENAI_API_KEY", "")
	if openAIKey == "" {
		log.Print("party-service: OPENAI_API_KEY not set, answer options degrade to the correct artist only")
	} else {
		gen = catalog.NewOpenAIGenerator(
			openAIKey,
			getenv("OPENAI_MODEL", "gpt-4o-mini"),
			getenv("OPENAI_API_URL", "https://api.openai.com/v1"),
		)
	}
	importer := catalog.NewImporter(spotify, gen)

	store := party.NewStore(rdb)
	srv := party.NewServer(store, rdb, importer, jwtSecret)

	hub := realtime.NewHub()
	rt := realtime.NewServer(hub, rdb, ctx)
	go hub.Run()
	go rt.RunRedisSubscriber()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/ws", rt.HandleWS)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Mount("/", srv.Router())
	})

	log.Printf("party-service listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("party-service: %v", err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
