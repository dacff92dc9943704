package gulag

import (
	"testing"
	"time"
)

func TestKeyLock(t *testing.T) {
	l := newKeyLock()
	l.Lock("a")

	startedWaiting := time.Now()
	go func() {
		time.Sleep(200 * time.Millisecond)
		l.Unlock("a")
	}()

	l.Lock("a")
	l.Unlock("a")

	if time.Since(startedWaiting) < 200*time.Millisecond {
		t.Error("did not wait for the held lock ", time.Since(startedWaiting))
	}
}

func TestKeyLockIndependentKeys(t *testing.T) {
	l := newKeyLock()
	l.Lock("a")

	done := make(chan bool)
	go func() {
		l.Lock("b")
		l.Unlock("b")
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("unrelated key blocked")
	}

	l.Unlock("a")
}

func BenchmarkKeyLock(b *testing.B) {
	l := newKeyLock()
	for i := 0; i < b.N; i++ {
		l.Lock("a")
		l.Unlock("a")
	}
}
