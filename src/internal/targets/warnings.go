package targets

import (
	"sync"

	"github.com/maksimkurb/keen-targets/src/internal/log"
)

// Warner receives every target token that could not be turned into addresses.
type Warner interface {
	Warn(token string)
}

// LogWarner reports unresolved tokens through the application logger.
// Greppable output is kept machine-readable, so warnings are suppressed.
type LogWarner struct {
	Greppable bool
}

// Warn implements Warner.
func (w LogWarner) Warn(token string) {
	if w.Greppable {
		return
	}
	log.Warnf("Host %q could not be resolved.", token)
}

// CollectingWarner records unresolved tokens in the order they were reported.
type CollectingWarner struct {
	mu     sync.Mutex
	tokens []string
}

// Warn implements Warner.
func (w *CollectingWarner) Warn(token string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tokens = append(w.tokens, token)
}

// Tokens returns a copy of the reported tokens.
func (w *CollectingWarner) Tokens() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.tokens...)
}
