package session

import (
	"net/http"
	"time"
)

const CookieName = "X-Session-Token"

// ExpiresCookieName is readable by page scripts so a still-valid session
// can resume silently at page load and drive the countdown.
const ExpiresCookieName = "X-Session-Expires"

// Window is how long one shared-password login stays valid.
const Window = 30 * time.Minute

func SessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	}
}

func ExpiresCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     ExpiresCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	}
}

func DefaultExpiry() time.Time {
	return time.Now().Add(Window)
}
