package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"sweetyshop/internal/httpx"
)

type authRequest struct {
	Password string `json:"password"`
}

// handleAuth lets the admin page check its password before showing the sync
// settings. APP_PASSWORD may hold a bcrypt hash or the plain password.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeBadRequest, "Error processing request")
		return
	}

	if !passwordMatches(s.cfg.AppPassword, req.Password) {
		httpx.WriteJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false,
			"message": "Invalid password",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Authenticated",
	})
}

func passwordMatches(configured, given string) bool {
	if configured == "" || given == "" {
		return false
	}
	if strings.HasPrefix(configured, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(configured), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(given)) == 1
}
