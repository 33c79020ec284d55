package scan

import (
	"regexp"
	"sync"
	"time"
)

// DebounceWindow is how long a session must wait before the same code is
// accepted again. Camera scanners fire the same detection many times per
// second; one acceptance per window keeps duplicate lookups out.
const DebounceWindow = 4500 * time.Millisecond

var allowedFormats = map[string]struct{}{
	"ean_13":   {},
	"ean_8":    {},
	"upc_a":    {},
	"upc_e":    {},
	"code_128": {},
}

var thirteenDigits = regexp.MustCompile(`^\d{13}$`)

type lastAccept struct {
	code string
	at   time.Time
}

// Gate decides which camera detections become lookups. It keeps one
// acceptance record per session so two kiosks never debounce each other.
type Gate struct {
	mu   sync.RWMutex
	last map[string]lastAccept
	now  func() time.Time
}

func NewGate() *Gate {
	return &Gate{last: make(map[string]lastAccept), now: time.Now}
}

// Accept reports whether a detection should trigger a lookup. A detection
// passes when its symbology is on the allow list, the code is exactly 13
// digits, and the same session has not had the same code accepted within
// the debounce window.
func (g *Gate) Accept(sessionID, code, format string) bool {
	if _, ok := allowedFormats[format]; !ok {
		return false
	}
	if !thirteenDigits.MatchString(code) {
		return false
	}

	now := g.now()
	g.mu.Lock()
	defer g.mu.Unlock()
	if prev, ok := g.last[sessionID]; ok && prev.code == code && now.Sub(prev.at) < DebounceWindow {
		return false
	}
	g.last[sessionID] = lastAccept{code: code, at: now}
	return true
}

// Reset drops the debounce record for a session, for example on logout or
// when the camera is stopped. Resetting an unknown session is a no-op.
func (g *Gate) Reset(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.last, sessionID)
}
