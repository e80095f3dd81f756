package party

import (
	"net/http"
	"testing"
)

func TestHostToken(t *testing.T) {
	s := &Server{jwtSecret: []byte("test-secret")}

	token, err := s.issueHostToken("abc123", "host-1")
	if err != nil {
		t.Fatal(err)
	}

	req, _ := http.NewRequest("POST", "/party/start", nil)
	req.Header.Set(hostTokenHeader, token)

	t.Run("valid token", func(t *testing.T) {
		claims, err := s.requireHost(req, "ABC123")
		if err != nil {
			t.Fatal(err)
		}
		if claims.HostID != "host-1" {
			t.Errorf("hostId = %s", claims.HostID)
		}
	})

	t.Run("code is case-insensitive", func(t *testing.T) {
		if _, err := s.requireHost(req, "abc123"); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("wrong party rejected", func(t *testing.T) {
		if _, err := s.requireHost(req, "XYZ789"); err == nil {
			t.Fatal("expected error for mismatched code")
		}
	})

	t.Run("missing header rejected", func(t *testing.T) {
		bare, _ := http.NewRequest("POST", "/party/start", nil)
		if _, err := s.requireHost(bare, "ABC123"); err == nil {
			t.Fatal("expected error for missing token")
		}
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		other := &Server{jwtSecret: []byte("other-secret")}
		if _, err := other.requireHost(req, "ABC123"); err == nil {
			t.Fatal("expected error for token signed with another secret")
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		bad, _ := http.NewRequest("POST", "/party/start", nil)
		bad.Header.Set(hostTokenHeader, "not.a.jwt")
		if _, err := s.requireHost(bad, "ABC123"); err == nil {
			t.Fatal("expected error for malformed token")
		}
	})
}
