package slackbot

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter enforces per-user, per-channel and global budgets.
type RateLimiter struct {
	user    *scopedLimiter
	channel *scopedLimiter
	global  *rate.Limiter
}

type scopedLimiter struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

func perMinute(n, fallback int) (rate.Limit, int) {
	if n <= 0 {
		n = fallback
	}
	return rate.Limit(float64(n) / 60.0), n
}

func newScopedLimiter(n, fallback int) *scopedLimiter {
	limit, burst := perMinute(n, fallback)
	return &scopedLimiter{m: make(map[string]*rate.Limiter), limit: limit, burst: burst}
}

func (s *scopedLimiter) allow(key string) bool {
	s.mu.Lock()
	lim, ok := s.m[key]
	if !ok {
		lim = rate.NewLimiter(s.limit, s.burst)
		s.m[key] = lim
	}
	s.mu.Unlock()
	return lim.Allow()
}

// NewRateLimiter builds a limiter from per-minute budgets. Zero budgets use defaults.
func NewRateLimiter(userPerMinute, channelPerMinute, globalPerMinute int) *RateLimiter {
	limit, burst := perMinute(globalPerMinute, 100)
	return &RateLimiter{
		user:    newScopedLimiter(userPerMinute, 10),
		channel: newScopedLimiter(channelPerMinute, 30),
		global:  rate.NewLimiter(limit, burst),
	}
}

// Allow consumes a token from each scope. The returned scope names the
// budget that was exhausted, or is empty when the request may proceed.
func (r *RateLimiter) Allow(userID, channelID string) (bool, string) {
	if !r.global.Allow() {
		return false, "global"
	}
	if !r.user.allow(userID) {
		return false, "user"
	}
	if !r.channel.allow(channelID) {
		return false, "channel"
	}
	return true, ""
}
