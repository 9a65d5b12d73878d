package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// demoUsers is the hardcoded allow-list for the demo auth surface. There is
// no registration; anything real sits behind an upstream identity provider.
var demoUsers = map[string]demoUser{
	"test@example.com":      {password: "password123", name: "Test User"},
	"demo@interview.ai":     {password: "demo2024", name: "Demo Account"},
	"candidate@example.com": {password: "candidate123", name: "Sample Candidate"},
}

type demoUser struct {
	password string
	name     string
}

// AuthStore tracks issued tokens in memory. Tokens do not survive restarts.
type AuthStore struct {
	mu     sync.Mutex
	tokens map[string]string // token -> email, empty email for guests
}

func NewAuthStore() *AuthStore {
	return &AuthStore{tokens: make(map[string]string)}
}

func (a *AuthStore) issue(prefix, email string) string {
	token := prefix + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
	a.mu.Lock()
	a.tokens[token] = email
	a.mu.Unlock()
	return token
}

func (a *AuthStore) valid(token string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.tokens[token]
	return ok
}

func (a *AuthStore) revoke(token string) {
	a.mu.Lock()
	delete(a.tokens, token)
	a.mu.Unlock()
}

func authRoutes(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Post("/login", handleLogin(deps))
	r.Post("/guest-session", handleGuestSession(deps))
	r.Post("/logout", handleLogout(deps))
	r.Get("/validate-token", handleValidateToken(deps))
	return r
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func handleLogin(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		user, ok := demoUsers[strings.ToLower(req.Email)]
		if !ok || subtle.ConstantTimeCompare([]byte(req.Password), []byte(user.password)) != 1 {
			httpError(w, http.StatusUnauthorized, "authentication_error", "invalid email or password")
			return
		}

		token := deps.Auth.issue("token_", req.Email)
		respondJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"token":   token,
			"user": map[string]string{
				"email": req.Email,
				"name":  user.name,
			},
		})
	}
}

func handleGuestSession(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := deps.Auth.issue("guest_token_", "")
		respondJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"token":   token,
			"guest":   true,
		})
	}
}

func handleLogout(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			deps.Auth.revoke(token)
		}
		respondJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

func handleValidateToken(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		respondJSON(w, http.StatusOK, map[string]any{
			"valid": token != "" && deps.Auth.valid(token),
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return auth[len(prefix):]
}
