package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	s := New()
	s.Get("/", func(w http.ResponseWriter, r *http.Request) { s.Respond(w, r, "ok", http.StatusOK) })
	s.Post("/things", func(w http.ResponseWriter, r *http.Request) {
		s.Created(w, r, "7", Message{"success"})
	})

	t.Run("unknown route is a json 404", func(t *testing.T) {
		rw := httptest.NewRecorder()
		s.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/nope", nil))

		require.Equal(t, http.StatusNotFound, rw.Code)
		require.JSONEq(t, `{"message":"Not Found"}`, rw.Body.String())
	})

	t.Run("wrong method is a json 405", func(t *testing.T) {
		rw := httptest.NewRecorder()
		s.ServeHTTP(rw, httptest.NewRequest(http.MethodDelete, "/", nil))

		require.Equal(t, http.StatusMethodNotAllowed, rw.Code)
		require.JSONEq(t, `{"message":"Method Not Allowed"}`, rw.Body.String())
	})

	t.Run("created sets location", func(t *testing.T) {
		rw := httptest.NewRecorder()
		s.ServeHTTP(rw, httptest.NewRequest(http.MethodPost, "/things", nil))

		require.Equal(t, http.StatusCreated, rw.Code)
		require.Equal(t, "/things/7", rw.Header().Get("Location"))
		require.JSONEq(t, `{"message":"success"}`, rw.Body.String())
	})
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	s := New(WithLogger(l))
	s.Use(AccessLog(l))
	s.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		s.Logger(r).Debug().Msg("handling ping")
		s.Respond(w, r, "ping", http.StatusOK)
	})

	rw := httptest.NewRecorder()
	s.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/ping?x=1", nil))
	require.Equal(t, http.StatusOK, rw.Code)
	require.NotEmpty(t, rw.Header().Get("X-Request-Id"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var entry struct {
		Method string `json:"method"`
		URL    string `json:"url"`
		Status int    `json:"status"`
		ReqID  string `json:"req_id"`
	}
	require.NoError(t, json.Unmarshal(lines[1], &entry))
	require.Equal(t, http.MethodGet, entry.Method)
	require.Equal(t, "/ping?x=1", entry.URL)
	require.Equal(t, http.StatusOK, entry.Status)
	require.Equal(t, rw.Header().Get("X-Request-Id"), entry.ReqID)
}

func TestAccessLogRecovers(t *testing.T) {
	l := zerolog.Nop()

	s := New(WithLogger(l))
	s.Use(AccessLog(l))
	s.Get("/boom", func(w http.ResponseWriter, r *http.Request) { panic("boom") })

	rw := httptest.NewRecorder()
	s.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rw.Code)
}
