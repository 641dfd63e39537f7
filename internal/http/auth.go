package http

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// handleLogin checks credentials against the configured user and issues
// a signed bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Неверный формат запроса")
		return
	}

	if !s.checkCredentials(req.Username, req.Password) {
		slog.WarnContext(r.Context(), "Login rejected", "username", req.Username, "client_ip", extractClientIP(r))
		writeError(w, http.StatusUnauthorized, "Неверный логин или пароль")
		return
	}

	claims := jwt.MapClaims{
		"sub": req.Username,
		"exp": time.Now().Add(s.cfg.TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.TokenSecret))
	if err != nil {
		slog.ErrorContext(r.Context(), "Token signing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Не удалось создать токен")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: signed})
}

// checkCredentials validates the single configured user. A bcrypt hash
// takes precedence over the plaintext password.
func (s *Server) checkCredentials(username, password string) bool {
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AuthUsername)) != 1 {
		return false
	}
	if s.cfg.AuthPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.cfg.AuthPasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AuthPassword)) == 1
}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			writeError(w, http.StatusUnauthorized, "Требуется авторизация")
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(s.cfg.TokenSecret), nil
		})
		if err != nil || !token.Valid {
			slog.DebugContext(r.Context(), "Token rejected", "error", err)
			writeError(w, http.StatusUnauthorized, "Недействительный токен")
			return
		}

		next(w, r)
	}
}
