package party

import (
	"time"

	"github.com/google/uuid"
)

// Transition logic for the party state machine. All methods mutate the
// in-memory record only; persistence and concurrency control live in
// Store.Update.

// Join appends a guest player. The host occupies one slot, so the
// roster capacity is MaxPlayers-1.
func (p *Party) Join(name string) (*Player, error) {
	if p.State != StateWaiting {
		return nil, errConflict("game already started")
	}
	if len(p.Players) >= p.MaxPlayers-1 {
		return nil, errConflict("party is full")
	}
	for i := range p.Players {
		if p.Players[i].Name == name {
			return nil, errConflict("name already taken")
		}
	}
	player := Player{
		ID:       uuid.NewString(),
		Name:     name,
		Score:    0,
		JoinedAt: time.Now().UTC(),
	}
	p.Players = append(p.Players, player)
	return &p.Players[len(p.Players)-1], nil
}

// StartWith installs the imported track list and opens the first
// question. Starting a party that already holds tracks is a no-op, so a
// retried Start does not re-randomize the quiz.
func (p *Party) StartWith(tracks []Track) error {
	if len(p.Tracks) > 0 && p.State != StateWaiting {
		return nil
	}
	if p.State == StateFinished {
		return errConflict("game already finished")
	}
	if len(tracks) == 0 {
		return errInvalidInput("no valid tracks found in this playlist")
	}
	p.Tracks = tracks
	p.State = StateQuestion
	p.CurrentTrack = 0
	p.CurrentTrackAnswers = map[string]bool{}
	p.PlayerAnswers = map[string]string{}
	p.Degraded = false
	for i := range tracks {
		if tracks[i].Degraded {
			p.Degraded = true
			break
		}
	}
	return nil
}

// RecordAnswer evaluates a guess against tracks[trackIndex] and updates
// the answer maps. A player who already answered the current track gets
// their recorded result back without any further mutation, so a retried
// request can never double-increment a score.
func (p *Party) RecordAnswer(playerName, guess string, trackIndex int) (bool, *Track, error) {
	if p.State != StateQuestion && p.State != StateResults {
		return false, nil, errConflict("game is not in progress")
	}
	if trackIndex < 0 || trackIndex >= len(p.Tracks) {
		return false, nil, errInvalidInput("invalid track")
	}
	track := &p.Tracks[trackIndex]

	known := false
	for i := range p.Players {
		if p.Players[i].Name == playerName {
			known = true
			break
		}
	}
	if !known {
		return false, nil, errInvalidInput("unknown player")
	}

	if prev, answered := p.CurrentTrackAnswers[playerName]; answered {
		return prev, track, nil
	}

	correct := evaluateGuess(track, guess)
	if p.CurrentTrackAnswers == nil {
		p.CurrentTrackAnswers = map[string]bool{}
	}
	if p.PlayerAnswers == nil {
		p.PlayerAnswers = map[string]string{}
	}
	p.CurrentTrackAnswers[playerName] = correct
	p.PlayerAnswers[playerName] = guess
	if correct {
		for i := range p.Players {
			if p.Players[i].Name == playerName {
				p.Players[i].Score++
				break
			}
		}
	}
	return correct, track, nil
}

// FinishRound reveals the current track's results.
func (p *Party) FinishRound() error {
	if p.State != StateQuestion && p.State != StateResults {
		return errConflict("game is not in progress")
	}
	p.State = StateResults
	return nil
}

// AdvanceTrack opens the next question, clearing both answer maps.
// CurrentTrack may land on len(Tracks), which signals quiz completion.
func (p *Party) AdvanceTrack() error {
	if p.State != StateQuestion && p.State != StateResults {
		return errConflict("game is not in progress")
	}
	if p.CurrentTrack >= len(p.Tracks) {
		return errConflict("no tracks left")
	}
	p.CurrentTrack++
	p.CurrentTrackAnswers = map[string]bool{}
	p.PlayerAnswers = map[string]string{}
	p.State = StateQuestion
	return nil
}

// Finish ends the game from any state.
func (p *Party) Finish() {
	p.State = StateFinished
}

// SetPlayback applies a host playback broadcast. It only nudges the UI
// sync fields and never touches scores.
func (p *Party) SetPlayback(isPlaying bool, trackIndex int) error {
	if trackIndex < 0 || (len(p.Tracks) > 0 && trackIndex > len(p.Tracks)) {
		return errInvalidInput("invalid track")
	}
	p.CurrentTrack = trackIndex
	if isPlaying && (p.State == StateWaiting || p.State == StateResults) {
		p.State = StateQuestion
	}
	return nil
}
