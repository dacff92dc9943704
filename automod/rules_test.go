package automod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckCaps(t *testing.T) {
	cases := []struct {
		content string
		want    bool
	}{
		{"HELLO EVERYONE", true},
		{"hello everyone", false},
		{"HELLO EVERYone", true},
		{"HELP!!", false},           // too short
		{"100% !!! ??? ABC", false}, // too few letters
		{"This Is Regular", false},  // below threshold
		{"STOP SPAMMING THE chat", true},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, checkCaps(c.content, 70), "content: %q", c.content)
	}
}

func TestCheckCapsThresholdDisabled(t *testing.T) {
	assert.False(t, checkCaps("HELLO EVERYONE", 0))
}

func TestFindBannedWord(t *testing.T) {
	banned := []string{"heresy", "contraband"}

	word, ok := findBannedWord("nothing to see here", banned)
	assert.False(t, ok)
	assert.Empty(t, word)

	word, ok = findBannedWord("pure HERESY if you ask me", banned)
	assert.True(t, ok)
	assert.Equal(t, "heresy", word)

	// matches inside longer words too
	_, ok = findBannedWord("contrabandista", banned)
	assert.True(t, ok)

	_, ok = findBannedWord("anything", nil)
	assert.False(t, ok)
}

func TestSpamTrackerWindow(t *testing.T) {
	tr := newSpamTracker()

	now := time.Now()
	tr.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		assert.False(t, tr.Observe("g:u", 5*time.Second, 5), "message %d should not trip the limit", i+1)
	}
	assert.True(t, tr.Observe("g:u", 5*time.Second, 5), "sixth message within the window must trip the limit")

	// once the window has passed the counter starts over
	now = now.Add(6 * time.Second)
	assert.False(t, tr.Observe("g:u", 5*time.Second, 5))
}

func TestSpamTrackerKeysAreIndependent(t *testing.T) {
	tr := newSpamTracker()

	now := time.Now()
	tr.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		tr.Observe("g:u1", 5*time.Second, 5)
	}
	assert.False(t, tr.Observe("g:u2", 5*time.Second, 5), "other members are unaffected")
	assert.True(t, tr.Observe("g:u1", 5*time.Second, 5))
}
