package party

import (
	"encoding/json"
	"net/http"
	"strings"
)

const maxPlayerNameLen = 32

// handleJoin appends a guest to the roster.
// POST /party/join
func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code       string `json:"code"`
		PlayerName string `json:"playerName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Code == "" {
		writeError(w, http.StatusBadRequest, "party code required")
		return
	}
	name := strings.TrimSpace(body.PlayerName)
	if name == "" {
		writeError(w, http.StatusBadRequest, "playerName is required")
		return
	}
	if len(name) > maxPlayerNameLen {
		writeError(w, http.StatusBadRequest, "playerName is too long")
		return
	}

	var joined *Player
	p, err := s.store.Update(r.Context(), body.Code, func(p *Party) error {
		pl, err := p.Join(name)
		if err != nil {
			return err
		}
		joined = pl
		return nil
	})
	if err != nil {
		writePartyError(w, err)
		return
	}

	s.publishEvent(r.Context(), "party.player_joined", p.Code, map[string]any{
		"player": joined,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "party": p})
}
