package party

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
)

// ErrNoTracks is returned by importers when a playlist yields nothing
// playable; it maps to a 400 rather than an upstream failure.
var ErrNoTracks = errors.New("no valid tracks found in this playlist")

// handleStart imports the playlist and opens the first question. Host
// only; requires the host's catalog bearer credential.
// POST /party/start
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Code == "" {
		writeError(w, http.StatusBadRequest, "party code required")
		return
	}
	claims, err := s.requireHost(r, body.Code)
	if err != nil {
		writePartyError(w, err)
		return
	}
	bearer := bearerToken(r)
	if bearer == "" {
		writeError(w, http.StatusUnauthorized, "missing catalog access token")
		return
	}

	p, err := s.store.Get(r.Context(), body.Code)
	if err != nil {
		writePartyError(w, err)
		return
	}
	if p.HostID != claims.HostID {
		writeError(w, http.StatusUnauthorized, "not the party host")
		return
	}
	// A retried Start must not re-randomize an already running quiz.
	if len(p.Tracks) > 0 && p.State != StateWaiting {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "party": p, "degraded": p.Degraded})
		return
	}

	tracks, err := s.importer.ImportTracks(r.Context(), p.PlaylistID, bearer)
	if err != nil {
		if errors.Is(err, ErrNoTracks) {
			writeError(w, http.StatusBadRequest, ErrNoTracks.Error())
			return
		}
		log.Printf("party-service: import tracks for %s: %v", p.Code, err)
		writeError(w, http.StatusBadGateway, "failed to fetch tracks from catalog")
		return
	}

	updated, err := s.store.Update(r.Context(), body.Code, func(p *Party) error {
		return p.StartWith(tracks)
	})
	if err != nil {
		writePartyError(w, err)
		return
	}

	s.publishEvent(r.Context(), "party.started", updated.Code, map[string]any{
		"tracks":   len(updated.Tracks),
		"degraded": updated.Degraded,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "party": updated, "degraded": updated.Degraded})
}

// handleAnswer records a guess for the current track.
// POST /party/answer
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code       string `json:"code"`
		PlayerName string `json:"playerName"`
		Guess      string `json:"guess"`
		TrackIndex int    `json:"trackIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Code == "" {
		writeError(w, http.StatusBadRequest, "party code required")
		return
	}
	if strings.TrimSpace(body.PlayerName) == "" {
		writeError(w, http.StatusBadRequest, "playerName is required")
		return
	}

	var correct bool
	var answered Track
	p, err := s.store.Update(r.Context(), body.Code, func(p *Party) error {
		ok, track, err := p.RecordAnswer(body.PlayerName, body.Guess, body.TrackIndex)
		if err != nil {
			return err
		}
		correct = ok
		answered = *track
		return nil
	})
	if err != nil {
		writePartyError(w, err)
		return
	}

	s.publishEvent(r.Context(), "party.answer_submitted", p.Code, map[string]any{
		"playerName": body.PlayerName,
		"trackIndex": body.TrackIndex,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"correct": correct,
		"answer": map[string]any{
			"name":    answered.Name,
			"artists": answered.Artists,
		},
	})
}

// POST /party/finish-round — host only.
func (s *Server) handleFinishRound(w http.ResponseWriter, r *http.Request) {
	s.hostTransition(w, r, "party.round_finished", func(p *Party) error {
		return p.FinishRound()
	})
}

// POST /party/next-track — host only.
func (s *Server) handleNextTrack(w http.ResponseWriter, r *http.Request) {
	s.hostTransition(w, r, "party.track_advanced", func(p *Party) error {
		return p.AdvanceTrack()
	})
}

// POST /party/finish-game — host only, callable from any state.
func (s *Server) handleFinishGame(w http.ResponseWriter, r *http.Request) {
	s.hostTransition(w, r, "party.finished", func(p *Party) error {
		p.Finish()
		return nil
	})
}

// hostTransition is the shared body of the code-only host actions.
func (s *Server) hostTransition(w http.ResponseWriter, r *http.Request, eventType string, apply func(*Party) error) {
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Code == "" {
		writeError(w, http.StatusBadRequest, "party code required")
		return
	}
	claims, err := s.requireHost(r, body.Code)
	if err != nil {
		writePartyError(w, err)
		return
	}

	p, err := s.store.Update(r.Context(), body.Code, func(p *Party) error {
		if p.HostID != claims.HostID {
			return errUnauthorized("not the party host")
		}
		return apply(p)
	})
	if err != nil {
		writePartyError(w, err)
		return
	}

	s.publishEvent(r.Context(), eventType, p.Code, map[string]any{
		"currentTrack": p.CurrentTrack,
		"state":        p.State,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "party": p})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, prefix))
}
