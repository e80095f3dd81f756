package catalog

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"musicquiz-service/internal/party"
)

const (
	quizTracks      = 10
	distractorCount = 5

	// Budget per generative call; on timeout the track degrades to a
	// single forced-correct option instead of failing the import.
	generateTimeout = 15 * time.Second
)

// Client is the catalog surface the importer needs; satisfied by
// SpotifyClient and by test stubs.
type Client interface {
	PlaylistTracks(ctx context.Context, playlistID, bearer string) ([]party.Track, error)
}

// Generator produces plausible-but-wrong artist names for the
// multiple-choice options.
type Generator interface {
	SimilarArtists(ctx context.Context, artist string, n int) ([]string, error)
}

// Importer assembles the quiz track list: fetch, shuffle, truncate,
// then generate answer options for each selected track concurrently.
type Importer struct {
	catalog Client
	gen     Generator
}

func NewImporter(c Client, g Generator) *Importer {
	return &Importer{catalog: c, gen: g}
}

func (im *Importer) ImportTracks(ctx context.Context, playlistID, bearer string) ([]party.Track, error) {
	tracks, err := im.catalog.PlaylistTracks(ctx, playlistID, bearer)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, party.ErrNoTracks
	}

	rand.Shuffle(len(tracks), func(i, j int) {
		tracks[i], tracks[j] = tracks[j], tracks[i]
	})
	if len(tracks) > quizTracks {
		tracks = tracks[:quizTracks]
	}

	// The generative calls are independent; run one per track.
	var wg sync.WaitGroup
	for i := range tracks {
		wg.Add(1)
		go func(t *party.Track) {
			defer wg.Done()
			im.fillOptions(ctx, t)
		}(&tracks[i])
	}
	wg.Wait()

	return tracks, nil
}

func (im *Importer) fillOptions(ctx context.Context, t *party.Track) {
	if len(t.Artists) == 0 {
		t.AnswerOptions = nil
		t.Degraded = true
		return
	}
	correct := t.Artists[0]

	callCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	var wrong []string
	if im.gen != nil {
		var err error
		wrong, err = im.gen.SimilarArtists(callCtx, correct, distractorCount)
		if err != nil {
			log.Printf("catalog: generate distractors for %q: %v", correct, err)
			wrong = nil
		}
	}
	wrong = sanitizeDistractors(wrong, correct)

	if len(wrong) == 0 {
		// Degraded round: the single forced-correct option.
		t.AnswerOptions = []string{correct}
		t.Degraded = true
		return
	}

	options := append(wrong, correct)
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	t.AnswerOptions = options
}

// sanitizeDistractors dedupes (case-insensitive), drops blanks and any
// entry that accidentally equals the correct artist, and truncates.
func sanitizeDistractors(names []string, correct string) []string {
	seen := map[string]struct{}{
		strings.ToLower(strings.TrimSpace(correct)): {},
	}
	out := make([]string, 0, distractorCount)
	for _, name := range names {
		clean := strings.TrimSpace(name)
		if clean == "" {
			continue
		}
		key := strings.ToLower(clean)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, clean)
		if len(out) == distractorCount {
			break
		}
	}
	return out
}
