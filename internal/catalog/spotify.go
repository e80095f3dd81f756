package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"musicquiz-service/internal/party"
)

// SpotifyClient fetches playlist items from the Spotify Web API using
// the host's bearer credential. The base URL is injected so tests and
// the mock-catalog binary can stand in for the real API.
type SpotifyClient struct {
	baseURL string
	http    *http.Client
}

func NewSpotifyClient(baseURL string) *SpotifyClient {
	return &SpotifyClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type spotifyTracksPage struct {
	Items []struct {
		Track *struct {
			ID         string  `json:"id"`
			Name       string  `json:"name"`
			URI        string  `json:"uri"`
			PreviewURL *string `json:"preview_url"`
			Artists    []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Images []struct {
					URL string `json:"url"`
				} `json:"images"`
			} `json:"album"`
		} `json:"track"`
	} `json:"items"`
	Next *string `json:"next"`
}

// Playlists can be huge; five pages (500 items) is plenty for a
// ten-track quiz.
const maxPlaylistPages = 5

// PlaylistTracks returns every playable track in the playlist, filtering
// entries whose underlying track is null (local or removed files).
func (c *SpotifyClient) PlaylistTracks(ctx context.Context, playlistID, bearer string) ([]party.Track, error) {
	next := fmt.Sprintf("%s/playlists/%s/tracks", c.baseURL, url.PathEscape(playlistID))

	var out []party.Track
	for page := 0; page < maxPlaylistPages && next != ""; page++ {
		body, err := c.fetchPage(ctx, next, bearer)
		if err != nil {
			return nil, err
		}
		for _, item := range body.Items {
			t := item.Track
			if t == nil || t.ID == "" {
				continue
			}
			artists := make([]string, 0, len(t.Artists))
			for _, a := range t.Artists {
				artists = append(artists, a.Name)
			}
			track := party.Track{
				ID:      t.ID,
				Name:    t.Name,
				Artists: artists,
				URI:     t.URI,
			}
			if t.PreviewURL != nil {
				track.PreviewURL = *t.PreviewURL
			}
			if len(t.Album.Images) > 0 {
				track.AlbumCover = t.Album.Images[0].URL
			}
			out = append(out, track)
		}
		if body.Next == nil {
			break
		}
		next = *body.Next
	}
	return out, nil
}

func (c *SpotifyClient) fetchPage(ctx context.Context, pageURL, bearer string) (*spotifyTracksPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify status %d", resp.StatusCode)
	}

	var body spotifyTracksPage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return &body, nil
}
