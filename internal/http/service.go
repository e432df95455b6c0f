package service

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	h "github.com/hyphengolang/prelude/http"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

type Service interface {
	chi.Router

	Log(...any)
	Logf(string, ...any)
	Logger(*http.Request) *zerolog.Logger

	Decode(http.ResponseWriter, *http.Request, any) error
	Respond(http.ResponseWriter, *http.Request, any, int)
	RespondText(w http.ResponseWriter, r *http.Request, status int)
	Created(http.ResponseWriter, *http.Request, string, any)
}

// Message is the body of every error response.
type Message struct {
	Message string `json:"message"`
}

type service struct {
	chi.Router
	l zerolog.Logger
}

// Created implements Service
func (*service) Created(w http.ResponseWriter, r *http.Request, id string, v any) {
	path := r.URL.Path
	if !strings.HasSuffix(path, "/") {
		path = path + "/"
	}
	w.Header().Set("Location", path+id)
	h.Respond(w, r, v, http.StatusCreated)
}

// Decode implements Service
func (*service) Decode(w http.ResponseWriter, r *http.Request, v any) error {
	return h.Decode(w, r, v)
}

// Log implements Service
func (s *service) Log(v ...any) { s.l.Info().Msg(fmt.Sprint(v...)) }

// Logf implements Service
func (s *service) Logf(format string, v ...any) { s.l.Info().Msgf(format, v...) }

// Logger returns the request scoped logger when one is attached,
// otherwise the service logger.
func (s *service) Logger(r *http.Request) *zerolog.Logger {
	if l := hlog.FromRequest(r); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.l
}

// Respond implements Service
func (*service) Respond(w http.ResponseWriter, r *http.Request, v any, status int) {
	h.Respond(w, r, v, status)
}

// RespondText writes the status text as a JSON message.
func (s *service) RespondText(w http.ResponseWriter, r *http.Request, status int) {
	s.Respond(w, r, Message{http.StatusText(status)}, status)
}

func New(opt ...Option) Service {
	s := service{l: log.Logger}
	for _, o := range opt {
		o(&s)
	}

	if s.Router == nil {
		s.Router = chi.NewRouter()
	}

	s.NotFound(func(w http.ResponseWriter, r *http.Request) { s.RespondText(w, r, http.StatusNotFound) })
	s.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) { s.RespondText(w, r, http.StatusMethodNotAllowed) })

	return &s
}

type Option func(*service)

func WithRouter(mux chi.Router) Option {
	return func(s *service) {
		s.Router = mux
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *service) {
		s.l = l
	}
}
