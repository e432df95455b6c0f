package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	h "github.com/hyphengolang/prelude/http"
	"github.com/joshemcr2/users-api/internal/cache"
	service "github.com/joshemcr2/users-api/internal/http"
	"github.com/joshemcr2/users-api/internal/users"
	"github.com/joshemcr2/users-api/internal/users/repo"
	"github.com/rs/zerolog"
)

var (
	errUserNotFound = errorResponse{status: http.StatusNotFound, message: "User does not exist"}
	errBadRequest   = errorResponse{status: http.StatusBadRequest, message: "Bad Request"}
	errInternal     = errorResponse{status: http.StatusInternalServerError, message: "Internal Server Error"}
)

type errorResponse struct {
	status  int
	message string
}

func (e *errorResponse) Error() string { return e.message }

type Option func(*Service)

func WithRepo(r repo.Repo) Option {
	return func(s *Service) {
		s.repo = r
	}
}

// WithCache caches list and detail reads in c for ttl.
func WithCache(c cache.Store, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.mux = service.New(service.WithLogger(l))
	}
}

type Service struct {
	mux  service.Service
	repo repo.Repo

	cache cache.Store
	ttl   time.Duration
}

func New(opts ...Option) *Service {
	s := Service{
		mux: service.New(),
	}

	for _, opt := range opts {
		opt(&s)
	}

	if s.repo == nil {
		s.repo = repo.New()
	}

	s.routes()
	return &s
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Service) routes() {
	s.mux.Get("/", s.cached(s.handleListUsers()))
	s.mux.Post("/", s.handleCreateUser())
	s.mux.Get("/{id}", s.cached(s.handleGetUser()))
	s.mux.Put("/{id}", s.handleUpdateUser())
	s.mux.Delete("/{id}", s.handleDeleteUser())
}

// cached wraps read handlers when a cache is configured.
func (s *Service) cached(hf http.HandlerFunc) http.HandlerFunc {
	if s.cache == nil {
		return hf
	}
	return h.Chain(hf, cache.Response(s.cache, s.ttl))
}

func (s *Service) handleListUsers() http.HandlerFunc {
	type response struct {
		Users []users.User `json:"users"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		us, err := s.repo.ListUsers(r.Context())
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		s.mux.Respond(w, r, response{Users: us}, http.StatusOK)
	}
}

func (s *Service) handleGetUser() http.HandlerFunc {
	type response struct {
		User users.User `json:"user"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		u, err := s.repo.GetUser(r.Context(), id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		s.mux.Respond(w, r, response{User: u}, http.StatusOK)
	}
}

func (s *Service) handleCreateUser() http.HandlerFunc {
	type request struct {
		Username string `json:"username"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := s.mux.Decode(w, r, &req); err != nil {
			s.respondError(w, r, &errBadRequest)
			return
		}

		created, err := s.repo.CreateUser(r.Context(), req.Username)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		s.mux.Logger(r).Debug().Int64("id", created.ID).Msg("user created")
		s.mux.Created(w, r, strconv.FormatInt(created.ID, 10), service.Message{Message: "success"})
	}
}

func (s *Service) handleUpdateUser() http.HandlerFunc {
	type request struct {
		Username string `json:"username"`
	}

	type response struct {
		User users.User `json:"user"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		var req request
		if err := s.mux.Decode(w, r, &req); err != nil {
			// an absent user is still reported as not found
			if _, err := s.repo.GetUser(r.Context(), id); err != nil {
				s.respondError(w, r, err)
				return
			}
			s.respondError(w, r, &errBadRequest)
			return
		}

		updated, err := s.repo.UpdateUser(r.Context(), id, req.Username)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		s.mux.Respond(w, r, response{User: updated}, http.StatusOK)
	}
}

func (s *Service) handleDeleteUser() http.HandlerFunc {
	type response struct {
		User users.User `json:"user"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		deleted, err := s.repo.DeleteUser(r.Context(), id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		s.mux.Respond(w, r, response{User: deleted}, http.StatusOK)
	}
}

// respondError maps err onto a status code and a {"message": ...} body.
func (s *Service) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var er *errorResponse
	switch {
	case errors.As(err, &er):
	case errors.Is(err, users.ErrNotFound):
		er = &errUserNotFound
	case users.IsValidation(err):
		er = &errBadRequest
	default:
		s.mux.Logger(r).Error().Err(err).Str("path", r.URL.Path).Msg("users: unhandled error")
		er = &errInternal
	}

	s.mux.Respond(w, r, service.Message{Message: er.message}, er.status)
}

// parseID reads the {id} path parameter. Anything that is not a
// positive integer cannot name a user.
func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, users.ErrNotFound
	}
	return id, nil
}
