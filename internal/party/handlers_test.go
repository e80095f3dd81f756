package party

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubImporter struct {
	tracks []Track
	err    error
	calls  int
}

func (s *stubImporter) ImportTracks(ctx context.Context, playlistID, bearer string) ([]Track, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.tracks, nil
}

func newTestServer(t *testing.T, imp TrackImporter) (*Server, http.Handler) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	srv := NewServer(NewStore(rdb), rdb, imp, []byte("test-secret"))
	return srv, srv.Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type createResult struct {
	Party     Party  `json:"party"`
	HostToken string `json:"hostToken"`
}

func createTestParty(t *testing.T, h http.Handler) createResult {
	t.Helper()
	w := doJSON(t, h, "POST", "/party", map[string]any{
		"code":       "ABC123",
		"playlistId": "pl-1",
		"host":       "DJ Host",
		"hostEmail":  "host@example.com",
		"maxPlayers": 5,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res createResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.HostToken)
	return res
}

func TestCreatePartyValidation(t *testing.T) {
	_, h := newTestServer(t, &stubImporter{})

	t.Run("missing playlistId", func(t *testing.T) {
		w := doJSON(t, h, "POST", "/party", map[string]any{"code": "ABC123"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad code", func(t *testing.T) {
		w := doJSON(t, h, "POST", "/party", map[string]any{"code": "a!", "playlistId": "pl"}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maxPlayers out of range", func(t *testing.T) {
		w := doJSON(t, h, "POST", "/party", map[string]any{"playlistId": "pl", "maxPlayers": 100}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("code generated when omitted", func(t *testing.T) {
		w := doJSON(t, h, "POST", "/party", map[string]any{"playlistId": "pl"}, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var res createResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Len(t, res.Party.Code, codeLength)
		assert.Equal(t, defaultMaxPlayers, res.Party.MaxPlayers)
	})
}

func TestGetParty(t *testing.T) {
	_, h := newTestServer(t, &stubImporter{})
	createTestParty(t, h)

	t.Run("found", func(t *testing.T) {
		w := doJSON(t, h, "GET", "/party?code=abc123", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var res struct {
			Party Party `json:"party"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "ABC123", res.Party.Code)
		assert.Equal(t, "waiting", res.Party.GameStatus())
	})

	t.Run("missing code", func(t *testing.T) {
		w := doJSON(t, h, "GET", "/party", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown code", func(t *testing.T) {
		w := doJSON(t, h, "GET", "/party?code=ZZZZZZ", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestJoinHandler(t *testing.T) {
	_, h := newTestServer(t, &stubImporter{})
	createTestParty(t, h)

	join := func(name string) *httptest.ResponseRecorder {
		return doJSON(t, h, "POST", "/party/join", map[string]any{
			"code": "ABC123", "playerName": name,
		}, nil)
	}

	for _, name := range []string{"p1", "p2", "p3", "p4"} {
		w := join(name)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	t.Run("full party conflicts", func(t *testing.T) {
		w := join("p5")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "party is full")
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		w := join("p1")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "name already taken")
	})

	t.Run("unknown party", func(t *testing.T) {
		w := doJSON(t, h, "POST", "/party/join", map[string]any{
			"code": "ZZZZZZ", "playerName": "p9",
		}, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		w := doJSON(t, h, "POST", "/party/join", map[string]any{
			"code": "ABC123", "playerName": "   ",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestStartHandler(t *testing.T) {
	imp := &stubImporter{tracks: threeTracks()}
	_, h := newTestServer(t, imp)
	created := createTestParty(t, h)

	hostHeaders := map[string]string{
		hostTokenHeader: created.HostToken,
		"Authorization": "Bearer catalog-token",
	}

	t.Run("requires host token", func(t *testing.T) {
		w := doJSON(t, h, "POST", "/party/start", map[string]any{"code": "ABC123"},
			map[string]string{"Authorization": "Bearer catalog-token"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("requires catalog bearer", func(t *testing.T) {
		w := doJSON(t, h, "POST", "/party/start", map[string]any{"code": "ABC123"},
			map[string]string{hostTokenHeader: created.HostToken})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("starts the quiz", func(t *testing.T) {
		w := doJSON(t, h, "POST", "/party/start", map[string]any{"code": "ABC123"}, hostHeaders)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res struct {
			Party    Party `json:"party"`
			Degraded bool  `json:"degraded"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "playing", res.Party.GameStatus())
		assert.Len(t, res.Party.Tracks, 3)
		assert.Equal(t, 0, res.Party.CurrentTrack)
		assert.False(t, res.Degraded)
	})

	t.Run("retried start does not re-import", func(t *testing.T) {
		calls := imp.calls
		w := doJSON(t, h, "POST", "/party/start", map[string]any{"code": "ABC123"}, hostHeaders)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, calls, imp.calls, "importer ran again on retried start")
	})
}

func TestStartHandlerImportFailures(t *testing.T) {
	t.Run("empty playlist is a client error", func(t *testing.T) {
		_, h := newTestServer(t, &stubImporter{err: ErrNoTracks})
		created := createTestParty(t, h)
		w := doJSON(t, h, "POST", "/party/start", map[string]any{"code": "ABC123"}, map[string]string{
			hostTokenHeader: created.HostToken,
			"Authorization": "Bearer tok",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("catalog failure is upstream", func(t *testing.T) {
		_, h := newTestServer(t, &stubImporter{err: errors.New("spotify status 500")})
		created := createTestParty(t, h)
		w := doJSON(t, h, "POST", "/party/start", map[string]any{"code": "ABC123"}, map[string]string{
			hostTokenHeader: created.HostToken,
			"Authorization": "Bearer tok",
		})
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestAnswerHandler(t *testing.T) {
	_, h := newTestServer(t, &stubImporter{tracks: threeTracks()})
	created := createTestParty(t, h)

	for _, name := range []string{"P1", "P2"} {
		w := doJSON(t, h, "POST", "/party/join", map[string]any{"code": "ABC123", "playerName": name}, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := doJSON(t, h, "POST", "/party/start", map[string]any{"code": "ABC123"}, map[string]string{
		hostTokenHeader: created.HostToken,
		"Authorization": "Bearer tok",
	})
	require.Equal(t, http.StatusOK, w.Code)

	answer := func(player, guess string, idx int) *httptest.ResponseRecorder {
		return doJSON(t, h, "POST", "/party/answer", map[string]any{
			"code": "ABC123", "playerName": player, "guess": guess, "trackIndex": idx,
		}, nil)
	}

	type answerResponse struct {
		Correct bool `json:"correct"`
		Answer  struct {
			Name    string   `json:"name"`
			Artists []string `json:"artists"`
		} `json:"answer"`
	}

	t.Run("correct guess", func(t *testing.T) {
		w := answer("P1", "Dua Lipa", 0)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var res answerResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.True(t, res.Correct)
		assert.Equal(t, "Levitating", res.Answer.Name)
		assert.Equal(t, []string{"Dua Lipa"}, res.Answer.Artists)
	})

	t.Run("wrong guess", func(t *testing.T) {
		w := answer("P2", "Rita Ora", 0)
		require.Equal(t, http.StatusOK, w.Code)
		var res answerResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.False(t, res.Correct)
	})

	t.Run("retries never double score", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			w := answer("P1", "Dua Lipa", 0)
			require.Equal(t, http.StatusOK, w.Code)
		}
		g := doJSON(t, h, "GET", "/party?code=ABC123", nil, nil)
		var res struct {
			Party Party `json:"party"`
		}
		require.NoError(t, json.Unmarshal(g.Body.Bytes(), &res))
		assert.Equal(t, 1, res.Party.Players[0].Score)
		assert.Equal(t, 0, res.Party.Players[1].Score)
	})

	t.Run("unknown player rejected", func(t *testing.T) {
		w := answer("ghost", "Dua Lipa", 0)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad track index rejected", func(t *testing.T) {
		w := answer("P1", "Dua Lipa", 99)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHostTransitions(t *testing.T) {
	_, h := newTestServer(t, &stubImporter{tracks: threeTracks()})
	created := createTestParty(t, h)
	hostHeaders := map[string]string{hostTokenHeader: created.HostToken}

	w := doJSON(t, h, "POST", "/party/start", map[string]any{"code": "ABC123"}, map[string]string{
		hostTokenHeader: created.HostToken,
		"Authorization": "Bearer tok",
	})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("transitions require host token", func(t *testing.T) {
		for _, path := range []string{"/party/finish-round", "/party/next-track", "/party/finish-game"} {
			w := doJSON(t, h, "POST", path, map[string]any{"code": "ABC123"}, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		}
	})

	t.Run("finish round then next track", func(t *testing.T) {
		w := doJSON(t, h, "POST", "/party/finish-round", map[string]any{"code": "ABC123"}, hostHeaders)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, h, "POST", "/party/next-track", map[string]any{"code": "ABC123"}, hostHeaders)
		require.Equal(t, http.StatusOK, w.Code)

		var res struct {
			Party Party `json:"party"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, 1, res.Party.CurrentTrack)
		assert.Empty(t, res.Party.CurrentTrackAnswers)
		assert.Empty(t, res.Party.PlayerAnswers)
	})

	t.Run("finish game from mid-quiz", func(t *testing.T) {
		w := doJSON(t, h, "POST", "/party/finish-game", map[string]any{"code": "ABC123"}, hostHeaders)
		require.Equal(t, http.StatusOK, w.Code)

		var res struct {
			Party Party `json:"party"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "finished", res.Party.GameStatus())
	})
}

func TestPlaybackHandlers(t *testing.T) {
	_, h := newTestServer(t, &stubImporter{tracks: threeTracks()})
	created := createTestParty(t, h)
	hostHeaders := map[string]string{hostTokenHeader: created.HostToken}

	w := doJSON(t, h, "POST", "/party/start", map[string]any{"code": "ABC123"}, map[string]string{
		hostTokenHeader: created.HostToken,
		"Authorization": "Bearer tok",
	})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("host broadcast", func(t *testing.T) {
		w := doJSON(t, h, "POST", "/party/playback", map[string]any{
			"code": "ABC123", "isPlaying": true, "trackIndex": 2,
		}, hostHeaders)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("broadcast requires host", func(t *testing.T) {
		w := doJSON(t, h, "POST", "/party/playback", map[string]any{
			"code": "ABC123", "isPlaying": true, "trackIndex": 1,
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("query reflects broadcast", func(t *testing.T) {
		w := doJSON(t, h, "GET", "/party/playback?code=ABC123", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var res struct {
			IsPlaying  bool `json:"isPlaying"`
			TrackIndex int  `json:"trackIndex"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.True(t, res.IsPlaying)
		assert.Equal(t, 2, res.TrackIndex)
	})
}

func TestDeleteParty(t *testing.T) {
	_, h := newTestServer(t, &stubImporter{})
	created := createTestParty(t, h)

	t.Run("requires host", func(t *testing.T) {
		w := doJSON(t, h, "DELETE", "/party?code=ABC123", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("host delete", func(t *testing.T) {
		w := doJSON(t, h, "DELETE", "/party?code=ABC123", nil, map[string]string{
			hostTokenHeader: created.HostToken,
		})
		assert.Equal(t, http.StatusNoContent, w.Code)

		g := doJSON(t, h, "GET", "/party?code=ABC123", nil, nil)
		assert.Equal(t, http.StatusNotFound, g.Code)
	})
}

func TestUpdateParty(t *testing.T) {
	_, h := newTestServer(t, &stubImporter{})
	created := createTestParty(t, h)

	t.Run("host merges whitelisted fields", func(t *testing.T) {
		w := doJSON(t, h, "PUT", "/party", map[string]any{
			"code": "ABC123", "maxPlayers": 8, "playlistName": "Even More Bangers",
		}, map[string]string{hostTokenHeader: created.HostToken})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res struct {
			Party Party `json:"party"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, 8, res.Party.MaxPlayers)
		assert.Equal(t, "Even More Bangers", res.Party.PlaylistName)
	})

	t.Run("requires host", func(t *testing.T) {
		w := doJSON(t, h, "PUT", "/party", map[string]any{"code": "ABC123", "maxPlayers": 8}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
