package party

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const maxPartySize = 20

// handleCreateParty creates (or overwrites) a party record.
// POST /party
func (s *Server) handleCreateParty(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code         string `json:"code"`
		PlaylistID   string `json:"playlistId"`
		PlaylistName string `json:"playlistName"`
		Host         string `json:"host"`
		HostID       string `json:"hostId"`
		HostEmail    string `json:"hostEmail"`
		MaxPlayers   int    `json:"maxPlayers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.PlaylistID) == "" {
		writeError(w, http.StatusBadRequest, "playlistId is required")
		return
	}
	if body.MaxPlayers < 0 || body.MaxPlayers > maxPartySize {
		writeError(w, http.StatusBadRequest, "maxPlayers out of range")
		return
	}
	code := NormalizeCode(body.Code)
	if code == "" {
		code = newPartyCode()
	} else if !validCode(code) {
		writeError(w, http.StatusBadRequest, "code must be alphanumeric")
		return
	}
	hostID := strings.TrimSpace(body.HostID)
	if hostID == "" {
		hostID = uuid.NewString()
	}

	p := NewParty(code, strings.TrimSpace(body.Host), hostID, strings.TrimSpace(body.HostEmail),
		body.PlaylistID, body.PlaylistName, body.MaxPlayers)

	if err := s.store.Create(r.Context(), p); err != nil {
		log.Printf("party-service: create party: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create party")
		return
	}

	token, err := s.issueHostToken(p.Code, p.HostID)
	if err != nil {
		log.Printf("party-service: issue host token: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create party")
		return
	}

	s.publishEvent(r.Context(), "party.created", p.Code, map[string]any{
		"playlistId": p.PlaylistID,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"party":     p,
		"hostToken": token,
	})
}

// handleGetParty is the poll target for every connected client.
// GET /party?code=
func (s *Server) handleGetParty(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, map[string]any{"party": p})
}

// handleUpdateParty merges a whitelisted subset of fields. Host only.
// PUT /party
func (s *Server) handleUpdateParty(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code         string  `json:"code"`
		MaxPlayers   *int    `json:"maxPlayers"`
		PlaylistName *string `json:"playlistName"`
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
	if body.MaxPlayers != nil && (*body.MaxPlayers < 2 || *body.MaxPlayers > maxPartySize) {
		writeError(w, http.StatusBadRequest, "maxPlayers out of range")
		return
	}

	p, err := s.store.Update(r.Context(), body.Code, func(p *Party) error {
		if p.HostID != claims.HostID {
			return errUnauthorized("not the party host")
		}
		if body.MaxPlayers != nil {
			if *body.MaxPlayers < len(p.Players)+1 {
				return errConflict("maxPlayers below current roster size")
			}
			p.MaxPlayers = *body.MaxPlayers
		}
		if body.PlaylistName != nil {
			p.PlaylistName = *body.PlaylistName
		}
		return nil
	})
	if err != nil {
		writePartyError(w, err)
		return
	}

	s.publishEvent(r.Context(), "party.updated", p.Code, nil)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "party": p})
}

// handleDeleteParty removes the record ahead of its TTL. Host only.
// DELETE /party?code=
func (s *Server) handleDeleteParty(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "party code required")
		return
	}
	claims, err := s.requireHost(r, code)
	if err != nil {
		writePartyError(w, err)
		return
	}
	p, err := s.store.Get(r.Context(), code)
	if err != nil {
		writePartyError(w, err)
		return
	}
	if p.HostID != claims.HostID {
		writeError(w, http.StatusUnauthorized, "not the party host")
		return
	}
	if err := s.store.Delete(r.Context(), code); err != nil {
		writePartyError(w, err)
		return
	}
	s.publishEvent(r.Context(), "party.deleted", code, nil)
	w.WriteHeader(http.StatusNoContent)
}

func validCode(code string) bool {
	if len(code) < 4 || len(code) > 12 {
		return false
	}
	for _, c := range code {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
