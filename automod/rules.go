package automod

import (
	"strings"
	"sync"
	"time"
)

// checkCaps reports whether the message is mostly uppercase. Short messages
// and messages with few letters are ignored so acronyms and "OK" don't
// trigger it.
func checkCaps(content string, thresholdPercent int) bool {
	if thresholdPercent <= 0 || len(content) < 8 {
		return false
	}

	letters, upper := 0, 0
	for _, r := range content {
		switch {
		case r >= 'A' && r <= 'Z':
			letters++
			upper++
		case r >= 'a' && r <= 'z':
			letters++
		}
	}

	if letters < 5 {
		return false
	}

	return upper*100 >= letters*thresholdPercent
}

// findBannedWord returns the first configured word contained in the message,
// matching case-insensitively anywhere in the content.
func findBannedWord(content string, banned []string) (string, bool) {
	lower := strings.ToLower(content)
	for _, w := range banned {
		if w != "" && strings.Contains(lower, strings.ToLower(w)) {
			return w, true
		}
	}
	return "", false
}

// spamTracker keeps a sliding window of message timestamps per member.
type spamTracker struct {
	mu     sync.Mutex
	recent map[string][]time.Time

	// injected in tests
	now func() time.Time
}

func newSpamTracker() *spamTracker {
	return &spamTracker{
		recent: make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Observe records a message for the key and reports whether more than limit
// messages were seen within the window.
func (t *spamTracker) Observe(key string, window time.Duration, limit int) bool {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := now.Add(-window)
	kept := make([]time.Time, 0, len(t.recent[key])+1)
	for _, ts := range t.recent[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, now)
	t.recent[key] = kept

	return limit > 0 && len(kept) > limit
}
