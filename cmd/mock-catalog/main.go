package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

// Dev stub mimicking the Spotify playlist-tracks endpoint so the game
// can run without real credentials. Point SPOTIFY_API_URL at it.

type mockArtist struct {
	Name string `json:"name"`
}

type mockImage struct {
	URL string `json:"url"`
}

type mockTrack struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	URI        string       `json:"uri"`
	PreviewURL *string      `json:"preview_url"`
	Artists    []mockArtist `json:"artists"`
	Album      struct {
		Images []mockImage `json:"images"`
	} `json:"album"`
}

type mockItem struct {
	Track *mockTrack `json:"track"`
}

type mockPage struct {
	Items []mockItem `json:"items"`
	Next  *string    `json:"next"`
}

func main() {
	port := getenv("PORT", "3008")

	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "ok",
			"service": "mock-catalog",
		})
	})

	r.Get("/playlists/{id}/tracks", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(samplePage())
	})

	log.Printf("mock-catalog listening on :%s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("mock-catalog: %v", err)
	}
}

func samplePage() mockPage {
	preview := "https://p.scdn.co/mp3-preview/sample"
	entries := []struct {
		id, name, artist string
	}{
		{"t1", "Levitating", "Dua Lipa"},
		{"t2", "Blinding Lights", "The Weeknd"},
		{"t3", "As It Was", "Harry Styles"},
		{"t4", "Bad Guy", "Billie Eilish"},
		{"t5", "Flowers", "Miley Cyrus"},
		{"t6", "Anti-Hero", "Taylor Swift"},
		{"t7", "Heat Waves", "Glass Animals"},
		{"t8", "Stay", "The Kid LAROI"},
		{"t9", "Shivers", "Ed Sheeran"},
		{"t10", "About Damn Time", "Lizzo"},
		{"t11", "Peaches", "Justin Bieber"},
		{"t12", "Good 4 U", "Olivia Rodrigo"},
	}

	page := mockPage{Items: make([]mockItem, 0, len(entries)+1)}
	for _, e := range entries {
		t := &mockTrack{
			ID:         e.id,
			Name:       e.name,
			URI:        "spotify:track:" + e.id,
			PreviewURL: &preview,
			Artists:    []mockArtist{{Name: e.artist}},
		}
		t.Album.Images = []mockImage{{URL: "https://i.scdn.co/image/" + e.id}}
		page.Items = append(page.Items, mockItem{Track: t})
	}
	// One null entry, like a playlist holding a removed local file.
	page.Items = append(page.Items, mockItem{Track: nil})
	return page
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
