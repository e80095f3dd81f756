package party

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const hostTokenHeader = "X-Host-Token"

// Host tokens outlive the party record slightly so a host can still
// issue finish-game against a record refreshed by player writes.
const hostTokenTTL = 12 * time.Hour

type hostClaims struct {
	Code   string `json:"code"`
	HostID string `json:"hostId"`
	jwt.RegisteredClaims
}

// issueHostToken mints the credential returned once at party creation.
// Every host-only action is verified against it, unlike the original
// prototype which only authenticated Start.
func (s *Server) issueHostToken(code, hostID string) (string, error) {
	now := time.Now()
	claims := &hostClaims{
		Code:   NormalizeCode(code),
		HostID: hostID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   hostID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(hostTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// requireHost checks the host token header against the party code. The
// stored hostId is compared by the caller after loading the record.
func (s *Server) requireHost(r *http.Request, code string) (*hostClaims, error) {
	raw := r.Header.Get(hostTokenHeader)
	if raw == "" {
		return nil, errUnauthorized("missing host token")
	}
	claims := &hostClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnauthorized("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errUnauthorized("invalid host token")
	}
	if claims.Code != NormalizeCode(code) {
		return nil, errUnauthorized("host token does not match party")
	}
	return claims, nil
}
