package login

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"pricecheck/infrastructure/cache"
	sessioncookie "pricecheck/infrastructure/session"
	"pricecheck/infrastructure/sqlite"
)

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Success   bool   `json:"success"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	Message   string `json:"message,omitempty"`
}

// GetLoginScreenHandler renders the login screen.
func GetLoginScreenHandler(w http.ResponseWriter, r *http.Request) {
	errorMessage := r.URL.Query().Get("error")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := LoginScreen(errorMessage).Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render login screen", http.StatusInternalServerError)
		return
	}
}

// CreateLoginHandler exchanges the shared password for a session token.
//
// Success sets the session cookie plus a script-readable expiry cookie and
// answers {success:true, expires_at}. A wrong password answers 401 with
// {success:false} so the page can show its own message.
func CreateLoginHandler(db *sqlite.DB, sessionCache *cache.SessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		password, err := readPassword(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, loginResponse{Success: false, Message: "invalid request body"})
			return
		}
		if password == "" {
			writeJSON(w, http.StatusBadRequest, loginResponse{Success: false, Message: "password is required"})
			return
		}

		ok, err := VerifySharedPassword(r.Context(), db, password)
		if err != nil {
			if errors.Is(err, ErrPasswordNotConfigured) {
				slog.Error("login attempted before password was configured")
				writeJSON(w, http.StatusInternalServerError, loginResponse{Success: false, Message: "login is not available"})
				return
			}
			slog.Error("verify shared password failed", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, loginResponse{Success: false, Message: "login failed"})
			return
		}
		if !ok {
			writeJSON(w, http.StatusUnauthorized, loginResponse{Success: false, Message: "wrong password"})
			return
		}

		s := NewSession()
		if err := persistSession(r.Context(), db, s); err != nil {
			slog.Error("persist session failed", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, loginResponse{Success: false, Message: "failed to create session"})
			return
		}
		sessionCache.Add(s)

		maxAge := int(sessioncookie.Window.Seconds())
		http.SetCookie(w, sessioncookie.SessionCookie(s.ID, maxAge))
		http.SetCookie(w, sessioncookie.ExpiresCookie(strconv.FormatInt(s.ExpiresAt.Unix(), 10), maxAge))
		writeJSON(w, http.StatusOK, loginResponse{Success: true, ExpiresAt: s.ExpiresAt.Unix()})
	}
}

func readPassword(r *http.Request) (string, error) {
	contentType := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	if strings.HasPrefix(contentType, "application/json") {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		return strings.TrimSpace(req.Password), nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return strings.TrimSpace(r.FormValue("password")), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
