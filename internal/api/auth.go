package api

import (
	"mime"
	"net/http"

	"github.com/nerrad567/babylog/internal/validation"
)

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=256"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// handleLogin exchanges credentials for an access token. It accepts a JSON
// body or, for OAuth2 password-flow clients, a form with username and password.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := readLoginRequest(w, r)
	if !ok {
		return
	}
	if err := validation.Struct(req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	token, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
	})
}

func readLoginRequest(w http.ResponseWriter, r *http.Request) (loginRequest, bool) {
	var req loginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")) //nolint:errcheck // empty type falls through to JSON
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			writeDecodeError(w, err, "invalid form body")
			return req, false
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		return req, true
	}

	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err, "invalid JSON body")
		return req, false
	}
	return req, true
}
