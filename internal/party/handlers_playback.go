package party

import (
	"encoding/json"
	"net/http"
)

// handlePlayback lets the host broadcast player-side sync hints. It has
// no authoritative effect on scoring.
// POST /party/playback
func (s *Server) handlePlayback(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code       string `json:"code"`
		IsPlaying  bool   `json:"isPlaying"`
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
	claims, err := s.requireHost(r, body.Code)
	if err != nil {
		writePartyError(w, err)
		return
	}

	p, err := s.store.Update(r.Context(), body.Code, func(p *Party) error {
		if p.HostID != claims.HostID {
			return errUnauthorized("not the party host")
		}
		return p.SetPlayback(body.IsPlaying, body.TrackIndex)
	})
	if err != nil {
		writePartyError(w, err)
		return
	}

	s.publishEvent(r.Context(), "party.playback", p.Code, map[string]any{
		"isPlaying":  body.IsPlaying,
		"trackIndex": p.CurrentTrack,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleGetPlayback reports the host's last broadcast state.
// GET /party/playback?code=
func (s *Server) handleGetPlayback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "party code required")
		return
	}
	p, err := s.store.Get(r.Context(), code)
	if err != nil {
		writePartyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"isPlaying":  p.State == StateQuestion || p.State == StateResults,
		"trackIndex": p.CurrentTrack,
	})
}
