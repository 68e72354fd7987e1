package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"

	"github.com/mwatts/notedeck/internal/auth"
	"github.com/mwatts/notedeck/internal/service"
)

// Server provides the HTTP+JSON API.
type Server struct {
	svc    *service.Service
	tokens *auth.TokenManager
	logger *logrus.Logger
	router chi.Router
	ready  *atomic.Bool
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, tokens *auth.TokenManager, logger *logrus.Logger) *Server {
	s := &Server{
		svc:    svc,
		tokens: tokens,
		logger: logger,
		ready:  atomic.NewBool(false),
	}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetReady marks the server as ready to serve traffic; until then /healthz
// reports 503.
func (s *Server) SetReady() {
	s.ready.Store(true)
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(metricsMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/notes", s.handleListNotes)
			r.Post("/notes", s.handleCreateNote)
			r.Get("/notes/{id}", s.handleGetNote)
			r.Patch("/notes/{id}", s.handleUpdateNote)
			r.Delete("/notes/{id}", s.handleDeleteNote)
			r.Post("/notes/{id}/comments", s.handleAddComment)
			r.Get("/notes/{id}/comments", s.handleListComments)
		})
	})

	s.router = r
}

// ---------------------------------------------------------------------------
// Envelope & JSON helpers
// ---------------------------------------------------------------------------

// envelope is the uniform response shape: {success, data, message} on
// success, {success:false, error} on failure, plus token/user on auth
// responses and meta on paginated listings.
type envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Meta    *service.PageMeta `json:"meta,omitempty"`
	Token   string            `json:"token,omitempty"`
	User    any               `json:"user,omitempty"`
	Error   string            `json:"error,omitempty"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		s.logger.WithError(err).Error("failed to encode JSON response")
	}
}

func (s *Server) respondData(w http.ResponseWriter, status int, data any, message string) {
	s.respondJSON(w, status, envelope{Success: true, Data: data, Message: message})
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, envelope{Success: false, Error: message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// NotFound messages vary per route (the original wording is part of the
// contract), so callers supply them. Store failures are logged with their
// cause and surfaced as a stable generic message.
func (s *Server) respondServiceError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case service.IsValidationError(err):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		s.respondError(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, service.ErrInvalidCredentials):
		s.respondError(w, http.StatusUnauthorized, err.Error())
	default:
		s.logger.WithError(err).Error("request failed")
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		s.respondJSON(w, http.StatusServiceUnavailable, envelope{Success: false, Error: "starting"})
		return
	}
	s.respondJSON(w, http.StatusOK, envelope{Success: true, Message: "ok"})
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	user, token, err := s.svc.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		// Register never reports NotFound, so no message is supplied.
		s.respondServiceError(w, err, "")
		return
	}

	s.respondJSON(w, http.StatusCreated, envelope{
		Success: true,
		Token:   token,
		User:    user,
		Message: "User registered successfully",
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	user, token, err := s.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		// Login never reports NotFound, so no message is supplied.
		s.respondServiceError(w, err, "")
		return
	}

	s.respondJSON(w, http.StatusOK, envelope{
		Success: true,
		Token:   token,
		User:    user,
		Message: "Login successful",
	})
}

// ---------------------------------------------------------------------------
// Notes
// ---------------------------------------------------------------------------

type createNoteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// updateNoteRequest uses pointers so an absent field and an empty field are
// distinguishable. Owner and author are not decodable here at all.
type updateNoteRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)
	if ident == nil {
		s.respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	notes, err := s.svc.ListNotes(r.Context(), ident.UserID)
	if err != nil {
		s.respondServiceError(w, err, "Note not found")
		return
	}

	s.respondData(w, http.StatusOK, notes, "Notes fetched successfully")
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)
	if ident == nil {
		s.respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	note, err := s.svc.GetNote(r.Context(), ident.UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, err, "Note not found")
		return
	}

	s.respondData(w, http.StatusOK, note, "Note fetched successfully")
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)
	if ident == nil {
		s.respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req createNoteRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	note, err := s.svc.CreateNote(r.Context(), ident, req.Title, req.Body)
	if err != nil {
		s.respondServiceError(w, err, "Note not found")
		return
	}

	s.respondData(w, http.StatusCreated, note, "Note created successfully")
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)
	if ident == nil {
		s.respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req updateNoteRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	note, err := s.svc.UpdateNote(r.Context(), ident.UserID, chi.URLParam(r, "id"), service.NoteUpdate{
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		s.respondServiceError(w, err, "Note not found")
		return
	}

	s.respondData(w, http.StatusOK, note, "Note updated successfully")
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)
	if ident == nil {
		s.respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	note, err := s.svc.DeleteNote(r.Context(), ident.UserID, chi.URLParam(r, "id"))
	if err != nil {
		s.respondServiceError(w, err, "Note not found")
		return
	}

	s.respondData(w, http.StatusOK, note, "Note deleted successfully")
}

// ---------------------------------------------------------------------------
// Comments
// ---------------------------------------------------------------------------

type addCommentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)
	if ident == nil {
		s.respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req addCommentRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	comment, err := s.svc.AddComment(r.Context(), ident, chi.URLParam(r, "id"), req.Content)
	if err != nil {
		s.respondServiceError(w, err, "Note not found or you don't have permission to comment on it")
		return
	}

	s.respondData(w, http.StatusCreated, comment, "Comment added successfully")
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	ident := identityFrom(r)
	if ident == nil {
		s.respondError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	q := r.URL.Query()
	opts := service.ListCommentsOptions{Sort: q.Get("sort")}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = limit
	}

	comments, meta, err := s.svc.ListComments(r.Context(), ident.UserID, chi.URLParam(r, "id"), opts)
	if err != nil {
		s.respondServiceError(w, err, "Note not found or you don't have permission to view its comments")
		return
	}

	s.respondJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    comments,
		Meta:    meta,
		Message: "Comments fetched successfully",
	})
}
