package gulag

import (
	"runtime/debug"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Scheduler keeps one pending release timer per (guild, user). Arming a key
// that already has a timer replaces it, mirroring the replace-not-stack rule
// of the store. The timer handle is dropped from the registry before the
// callback runs, so a failed release never looks like a pending one.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*armedTimer
	logger *logrus.Entry

	// injected in tests
	afterFunc func(d time.Duration, f func()) *time.Timer
}

// armedTimer pairs the timer with an identity the fire path can compare
// against the registry. Stopping a timer whose callback is already queued
// does not prevent the callback from running, so a fire may race a re-arm
// on the same key and must not remove the replacement's entry.
type armedTimer struct {
	timer *time.Timer
}

func NewScheduler(logger *logrus.Entry) *Scheduler {
	return &Scheduler{
		timers:    make(map[string]*armedTimer),
		logger:    logger,
		afterFunc: time.AfterFunc,
	}
}

// Arm schedules onFire to run once after delay. A zero or negative delay
// (already expired on recovery) fires as soon as possible.
func (s *Scheduler) Arm(guildID, userID string, delay time.Duration, onFire func()) {
	if delay < 0 {
		delay = 0
	}

	key := sanctionKey(guildID, userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[key]; ok {
		existing.timer.Stop()
	}

	entry := &armedTimer{}
	entry.timer = s.afterFunc(delay, func() {
		s.fire(key, entry, onFire)
	})
	s.timers[key] = entry
}

func (s *Scheduler) fire(key string, entry *armedTimer, onFire func()) {
	s.mu.Lock()
	if s.timers[key] == entry {
		delete(s.timers, key)
	}
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("recovered from panic in release callback for %s: %v\n%s", key, r, debug.Stack())
		}
	}()

	onFire()
}

// Cancel stops the pending timer for the key, reporting whether one was
// actually pending.
func (s *Scheduler) Cancel(guildID, userID string) bool {
	key := sanctionKey(guildID, userID)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.timers[key]
	if !ok {
		return false
	}

	delete(s.timers, key)
	entry.timer.Stop()
	return true
}

// Pending reports whether a timer is armed for the key.
func (s *Scheduler) Pending(guildID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.timers[sanctionKey(guildID, userID)]
	return ok
}

// StopAll stops every pending timer, used at shutdown. Persisted records
// re-arm on the next start.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.timers {
		entry.timer.Stop()
		delete(s.timers, key)
	}
}
