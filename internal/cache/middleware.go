package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	h "github.com/hyphengolang/prelude/http"
	"github.com/rs/zerolog/hlog"
)

// DefaultTTL is how long a read response stays cached unless configured otherwise.
const DefaultTTL = time.Hour

// HeaderStatus reports whether a response came from the cache.
const HeaderStatus = "X-Cache"

// Key derives the cache key for r from its path and query string.
func Key(r *http.Request) string {
	return "api:" + r.URL.RequestURI()
}

// entry is the stored form of a response. Body is kept as the raw JSON
// the handler wrote so a hit replays identical bytes.
type entry struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// Response caches successful responses of the wrapped read handler under Key(r)
// for ttl. On a hit the handler is not called.
func Response(s Store, ttl time.Duration) h.MiddleWare {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := Key(r)

			bs, err := s.Get(r.Context(), key)
			switch {
			case err == nil:
				var e entry
				if err := json.Unmarshal(bs, &e); err == nil {
					w.Header().Set(HeaderStatus, "HIT")
					writeJSON(w, e.Status, e.Body)
					return
				}
				hlog.FromRequest(r).Warn().Str("key", key).Msg("cache: discarding unreadable entry")
			case !errors.Is(err, ErrMiss):
				hlog.FromRequest(r).Error().Err(err).Str("key", key).Msg("cache: get")
				internalError(w)
				return
			}

			rec := newRecorder()
			next(rec, r)

			if rec.status >= 200 && rec.status < 300 && json.Valid(rec.body.Bytes()) {
				e := entry{Status: rec.status, Body: bytes.TrimRight(rec.body.Bytes(), "\n")}
				value, err := json.Marshal(e)
				if err == nil {
					err = s.Set(r.Context(), key, value, ttl)
				}
				if err != nil {
					hlog.FromRequest(r).Error().Err(err).Str("key", key).Msg("cache: set")
					internalError(w)
					return
				}
			}

			rec.flush(w)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(body)
	w.Write([]byte{'\n'})
}

func internalError(w http.ResponseWriter) {
	h.Respond(w, nil, map[string]string{"message": http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError)
}

// recorder buffers a handler's response so it can be stored before it is sent.
type recorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header)}
}

func (rec *recorder) Header() http.Header { return rec.header }

func (rec *recorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	return rec.body.Write(b)
}

func (rec *recorder) WriteHeader(status int) {
	if rec.status == 0 {
		rec.status = status
	}
}

func (rec *recorder) flush(w http.ResponseWriter) {
	for k, v := range rec.header {
		w.Header()[k] = v
	}
	w.Header().Set(HeaderStatus, "MISS")

	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	w.WriteHeader(rec.status)
	w.Write(rec.body.Bytes())
}
