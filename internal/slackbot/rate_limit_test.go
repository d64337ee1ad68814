package slackbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterScopes(t *testing.T) {
	rl := NewRateLimiter(2, 3, 100)

	ok, _ := rl.Allow("U1", "C1")
	assert.True(t, ok)
	ok, _ = rl.Allow("U1", "C1")
	assert.True(t, ok)

	ok, scope := rl.Allow("U1", "C1")
	assert.False(t, ok)
	assert.Equal(t, "user", scope)

	// channel C1 has one token left for another user
	ok, _ = rl.Allow("U2", "C1")
	assert.True(t, ok)
	ok, scope = rl.Allow("U3", "C1")
	assert.False(t, ok)
	assert.Equal(t, "channel", scope)

	ok, _ = rl.Allow("U3", "C2")
	assert.True(t, ok)
}

func TestRateLimiterGlobal(t *testing.T) {
	rl := NewRateLimiter(10, 10, 1)

	ok, _ := rl.Allow("U1", "C1")
	assert.True(t, ok)
	ok, scope := rl.Allow("U2", "C2")
	assert.False(t, ok)
	assert.Equal(t, "global", scope)
}
