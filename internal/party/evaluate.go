package party

import "strings"

// evaluateGuess decides whether a guess matches the track.
//
// Tracks imported with answer options use the multiple-choice policy:
// the trimmed guess must equal the primary artist exactly, case
// included. Tracks without options (records written before options
// existed) keep the original free-text policy: lowercase substring
// matching against the track name and artists.
func evaluateGuess(t *Track, guess string) bool {
	if len(t.AnswerOptions) > 0 {
		if len(t.Artists) == 0 {
			return false
		}
		return strings.TrimSpace(guess) == t.Artists[0]
	}
	return matchFreeText(t, guess)
}

func matchFreeText(t *Track, guess string) bool {
	g := strings.ToLower(strings.TrimSpace(guess))
	if g == "" {
		return false
	}
	correct := strings.ToLower(t.Name + " " + strings.Join(t.Artists, " "))
	if strings.Contains(correct, g) {
		return true
	}
	if strings.Contains(g, strings.ToLower(t.Name)) {
		return true
	}
	for _, artist := range t.Artists {
		if strings.Contains(g, strings.ToLower(artist)) {
			return true
		}
	}
	return false
}
