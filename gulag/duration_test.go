package gulag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in       string
		def      int
		expected int
	}{
		{"30s", 100, 30},
		{"5m", 100, 300},
		{"1h", 100, 3600},
		{"2d", 100, 172800},
		{"1w", 100, 604800},
		{"", 100, 100},
		{"Indefinite", 100, 100},
		{"indefinite", 100, 100},
		{"abc", 100, 100},
		{"5x", 100, 100},
		{"5", 100, 100},
		{"m5", 100, 100},
		{"-5m", 100, 100},
		{"5m30s", 100, 100}, // combined units are not supported
		{" 5m", 100, 100},
		{"0s", 100, 0},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, ParseDuration(c.in, c.def), "input %q", c.in)
	}
}

func TestClampDuration(t *testing.T) {
	assert.Equal(t, 300, ClampDuration(10, 300, 2592000))
	assert.Equal(t, 2592000, ClampDuration(9999999999, 300, 2592000))
	assert.Equal(t, 3600, ClampDuration(3600, 300, 2592000))
	assert.Equal(t, 300, ClampDuration(300, 300, 2592000))
	assert.Equal(t, 2592000, ClampDuration(2592000, 300, 2592000))
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in       int
		expected string
	}{
		{1, "1 second"},
		{59, "59 seconds"},
		{60, "1 minute"},
		{61, "1 minute"},
		{120, "2 minutes"},
		{3599, "59 minutes"},
		{3600, "1 hour"},
		{86399, "23 hours"},
		{86400, "1 day"},
		{604799, "6 days"},
		{604800, "1 week"},
		{1209600, "2 weeks"},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, FormatDuration(c.in), "input %d", c.in)
	}
}

// format buckets never go backwards as the duration grows
func TestFormatDurationMonotonicBuckets(t *testing.T) {
	bucket := func(s int) int {
		switch {
		case s < 60:
			return s
		case s < 3600:
			return 60 * (s / 60)
		case s < 86400:
			return 3600 * (s / 3600)
		case s < 604800:
			return 86400 * (s / 86400)
		default:
			return 604800 * (s / 604800)
		}
	}

	prev := -1
	for s := 0; s < 2000000; s += 997 {
		b := bucket(s)
		if b < prev {
			t.Fatalf("bucket went backwards at %d seconds", s)
		}
		prev = b
	}
}
