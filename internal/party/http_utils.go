package party

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}

// writePartyError maps the tagged error taxonomy onto HTTP statuses;
// anything untagged is an internal error and gets logged.
func writePartyError(w http.ResponseWriter, err error) {
	var pe *partyError
	if errors.As(err, &pe) {
		writeError(w, pe.status, pe.msg)
		return
	}
	log.Printf("party-service: internal error: %v", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// Ambiguous glyphs (0/O, 1/I/L) are left out of shareable codes.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeLength = 6

func newPartyCode() string {
	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b)
}
