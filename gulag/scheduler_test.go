package gulag

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testScheduler() *Scheduler {
	return NewScheduler(logrus.NewEntry(logrus.New()))
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestSchedulerFires(t *testing.T) {
	s := testScheduler()

	var fired int32
	s.Arm("g", "u", 10*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})

	assert.True(t, s.Pending("g", "u"))
	waitFor(t, func() bool { return atomic.LoadInt32(&fired) == 1 }, "timer did not fire")
	assert.False(t, s.Pending("g", "u"))
}

func TestSchedulerNegativeDelayFires(t *testing.T) {
	s := testScheduler()

	var fired int32
	s.Arm("g", "u", -5*time.Second, func() {
		atomic.AddInt32(&fired, 1)
	})

	waitFor(t, func() bool { return atomic.LoadInt32(&fired) == 1 }, "negative delay timer did not fire")
}

func TestSchedulerRearmReplaces(t *testing.T) {
	s := testScheduler()

	var firstFired, secondFired int32
	s.Arm("g", "u", 50*time.Millisecond, func() {
		atomic.AddInt32(&firstFired, 1)
	})
	s.Arm("g", "u", 10*time.Millisecond, func() {
		atomic.AddInt32(&secondFired, 1)
	})

	waitFor(t, func() bool { return atomic.LoadInt32(&secondFired) == 1 }, "replacement timer did not fire")

	time.Sleep(100 * time.Millisecond)
	assert.EqualValues(t, 0, atomic.LoadInt32(&firstFired), "replaced timer should never fire")
}

func TestSchedulerCancel(t *testing.T) {
	s := testScheduler()

	var fired int32
	s.Arm("g", "u", 50*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})

	assert.True(t, s.Cancel("g", "u"))
	assert.False(t, s.Cancel("g", "u"), "second cancel should be a no-op")
	assert.False(t, s.Pending("g", "u"))

	time.Sleep(100 * time.Millisecond)
	assert.EqualValues(t, 0, atomic.LoadInt32(&fired), "cancelled timer should never fire")
}

func TestSchedulerStaleFireKeepsReplacement(t *testing.T) {
	s := testScheduler()

	var wrappers []func()
	s.afterFunc = func(d time.Duration, f func()) *time.Timer {
		wrappers = append(wrappers, f)
		return time.NewTimer(time.Hour)
	}

	var firstFired int32
	s.Arm("g", "u", time.Minute, func() {
		atomic.AddInt32(&firstFired, 1)
	})
	s.Arm("g", "u", time.Hour, func() {})

	// the first timer had already queued its callback when the re-arm
	// stopped it; run it now and make sure it only drops its own entry
	wrappers[0]()

	assert.EqualValues(t, 1, atomic.LoadInt32(&firstFired))
	assert.True(t, s.Pending("g", "u"), "replacement timer must stay registered")
	assert.True(t, s.Cancel("g", "u"), "replacement timer must still be cancellable")
}

func TestSchedulerKeysAreIndependent(t *testing.T) {
	s := testScheduler()

	var fired int32
	s.Arm("g", "u1", 10*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})
	s.Arm("g", "u2", 10*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})
	s.Arm("g2", "u1", 10*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})

	waitFor(t, func() bool { return atomic.LoadInt32(&fired) == 3 }, "not all timers fired")
}

func TestSchedulerCallbackPanicIsContained(t *testing.T) {
	s := testScheduler()

	var after int32
	s.Arm("g", "u", time.Millisecond, func() {
		panic("boom")
	})
	s.Arm("g", "u2", 20*time.Millisecond, func() {
		atomic.AddInt32(&after, 1)
	})

	// the panicking callback must not take down the process or block others
	waitFor(t, func() bool { return atomic.LoadInt32(&after) == 1 }, "scheduler broken after callback panic")
	assert.False(t, s.Pending("g", "u"))
}
