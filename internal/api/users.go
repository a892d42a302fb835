package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/babylog/internal/validation"
)

// registerRequest is the request body for POST /users.
type registerRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=256"`
}

// handleRegister creates an account and returns it without the password hash.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err, "invalid JSON body")
		return
	}
	if err := validation.Struct(req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	user, err := s.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.Info("user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

// handleGetUser returns the caller's own account. As with logs, an unknown
// id is 404 and another user's id is 403.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	caller := userFromContext(r.Context())

	user, err := s.auth.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if user.ID != caller.ID {
		writeError(w, http.StatusForbidden, ErrCodeForbidden, "not permitted to access this resource")
		return
	}

	writeJSON(w, http.StatusOK, user)
}
