package party

import (
	"encoding/json"
	"time"
)

// State is the single game-phase axis. The original prototype tracked a
// coarse status ("waiting"/"playing"/"finished") and a separate round
// phase ("playing"/"results") which could disagree; here the two are
// collapsed into one enum and the legacy fields are derived for clients.
type State string

const (
	StateWaiting  State = "waiting"
	StateQuestion State = "question"
	StateResults  State = "results"
	StateFinished State = "finished"
)

const defaultMaxPlayers = 5

// Party is the sole persisted aggregate, keyed by a short shareable code.
type Party struct {
	Code         string    `json:"code"`
	Host         string    `json:"host,omitempty"`
	HostID       string    `json:"hostId"`
	HostEmail    string    `json:"hostEmail,omitempty"`
	PlaylistID   string    `json:"playlistId"`
	PlaylistName string    `json:"playlistName,omitempty"`
	MaxPlayers   int       `json:"maxPlayers"`
	CreatedAt    time.Time `json:"createdAt"`
	State        State     `json:"state,omitempty"`
	Players      []Player  `json:"players"`
	Tracks       []Track   `json:"tracks,omitempty"`

	// CurrentTrack indexes Tracks; equal to len(Tracks) once the quiz
	// ran out of tracks.
	CurrentTrack int `json:"currentTrack"`

	// Per-track answer bookkeeping, keyed by player display name and
	// wiped on every track advance.
	CurrentTrackAnswers map[string]bool   `json:"currentTrackAnswers,omitempty"`
	PlayerAnswers       map[string]string `json:"playerAnswers,omitempty"`

	// Degraded is set when distractor generation failed for at least one
	// track during import, so the UI can explain single-option rounds.
	Degraded bool `json:"degraded,omitempty"`

	// Version is bumped on every store write and guards optimistic
	// transactions.
	Version int64 `json:"version"`
}

// Player is a guest participant. The host occupies one slot of
// MaxPlayers but is not part of the roster.
type Player struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joinedAt,omitempty"`
}

// Track is one quiz question.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	URI        string   `json:"uri,omitempty"`
	PreviewURL string   `json:"previewUrl,omitempty"`
	AlbumCover string   `json:"albumCover,omitempty"`

	// AnswerOptions holds the correct artist plus generated decoys,
	// shuffled once at import time. A single-entry set means the
	// generative call failed and the round is degraded.
	AnswerOptions []string `json:"answerOptions,omitempty"`
	Degraded      bool     `json:"degraded,omitempty"`
}

func NewParty(code, host, hostID, hostEmail, playlistID, playlistName string, maxPlayers int) *Party {
	if maxPlayers <= 0 {
		maxPlayers = defaultMaxPlayers
	}
	return &Party{
		Code:         code,
		Host:         host,
		HostID:       hostID,
		HostEmail:    hostEmail,
		PlaylistID:   playlistID,
		PlaylistName: playlistName,
		MaxPlayers:   maxPlayers,
		CreatedAt:    time.Now().UTC(),
		State:        StateWaiting,
		Players:      []Player{},
	}
}

// GameStatus renders the coarse legacy status for clients.
func (p *Party) GameStatus() string {
	switch p.State {
	case StateQuestion, StateResults:
		return "playing"
	case StateFinished:
		return "finished"
	default:
		return "waiting"
	}
}

// RoundPhase renders the legacy sub-phase; empty outside active play.
func (p *Party) RoundPhase() string {
	switch p.State {
	case StateQuestion:
		return "playing"
	case StateResults:
		return "results"
	default:
		return ""
	}
}

func (p Party) MarshalJSON() ([]byte, error) {
	type alias Party
	return json.Marshal(struct {
		alias
		Status string `json:"status"`
		Phase  string `json:"phase,omitempty"`
	}{alias(p), p.GameStatus(), p.RoundPhase()})
}

func (p *Party) UnmarshalJSON(data []byte) error {
	type alias Party
	var aux struct {
		alias
		Status string `json:"status"`
		Phase  string `json:"phase"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Party(aux.alias)
	if p.State == "" {
		p.State = stateFromLegacy(aux.Status, aux.Phase)
	}
	if p.Players == nil {
		p.Players = []Player{}
	}
	if p.MaxPlayers == 0 {
		p.MaxPlayers = defaultMaxPlayers
	}
	return nil
}

// UnmarshalJSON coerces legacy records where players were stored as bare
// display-name strings into the full Player shape.
func (pl *Player) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*pl = Player{Name: name}
		return nil
	}
	type alias Player
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*pl = Player(a)
	return nil
}

func stateFromLegacy(status, phase string) State {
	switch status {
	case "finished":
		return StateFinished
	case "playing":
		if phase == "results" {
			return StateResults
		}
		return StateQuestion
	default:
		return StateWaiting
	}
}
