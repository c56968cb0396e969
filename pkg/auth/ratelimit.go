package auth

import (
	"container/list"
	"errors"
	"sync"
	"time"
)

// ErrTooManyAttempts is returned when a username exceeded its failed
// login budget for the current window.
var ErrTooManyAttempts = errors.New("too many failed login attempts")

// LoginLimiter tracks failed form logins per username.
type LoginLimiter interface {
	// Allow returns ErrTooManyAttempts if the username is locked out.
	Allow(username string) error

	// Failed records a failed attempt.
	Failed(username string)

	// Succeeded resets the username's counter.
	Succeeded(username string)
}

// DefaultMaxTracked bounds how many usernames an InProcessLimiter tracks
// at once.
const DefaultMaxTracked = 10000

// InProcessLimiter is a fixed-window limiter that tracks failed attempts
// per username in memory. Windows are kept in start order so that expired
// ones are dropped from the front on every call. When MaxTracked usernames
// are in an open window, the oldest window is evicted.
type InProcessLimiter struct {
	maxPerMinute int
	maxTracked   int
	now          func() time.Time

	mu       sync.Mutex
	counters map[string]*list.Element
	windows  *list.List // front = oldest window
}

type counter struct {
	username string
	count    int
	windowAt time.Time
}

// NewInProcessLimiter creates a limiter allowing maxPerMinute failed
// attempts per username per minute. Zero or negative disables limiting.
func NewInProcessLimiter(maxPerMinute int) *InProcessLimiter {
	return &InProcessLimiter{
		maxPerMinute: maxPerMinute,
		maxTracked:   DefaultMaxTracked,
		now:          time.Now,
		counters:     make(map[string]*list.Element),
		windows:      list.New(),
	}
}

// Allow implements LoginLimiter.
func (l *InProcessLimiter) Allow(username string) error {
	if l.maxPerMinute <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(l.now())
	e, ok := l.counters[username]
	if ok && e.Value.(*counter).count >= l.maxPerMinute {
		return ErrTooManyAttempts
	}
	return nil
}

// Failed implements LoginLimiter.
func (l *InProcessLimiter) Failed(username string) {
	if l.maxPerMinute <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.pruneLocked(now)
	if e, ok := l.counters[username]; ok {
		e.Value.(*counter).count++
		return
	}
	for l.windows.Len() >= l.maxTracked {
		l.removeLocked(l.windows.Front())
	}
	l.counters[username] = l.windows.PushBack(&counter{username: username, count: 1, windowAt: now})
}

// Succeeded implements LoginLimiter.
func (l *InProcessLimiter) Succeeded(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.counters[username]; ok {
		l.removeLocked(e)
	}
}

// Len returns the number of usernames with an open window.
func (l *InProcessLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pruneLocked(l.now())
	return l.windows.Len()
}

func (l *InProcessLimiter) pruneLocked(now time.Time) {
	for e := l.windows.Front(); e != nil; e = l.windows.Front() {
		if now.Sub(e.Value.(*counter).windowAt) < time.Minute {
			return
		}
		l.removeLocked(e)
	}
}

func (l *InProcessLimiter) removeLocked(e *list.Element) {
	delete(l.counters, e.Value.(*counter).username)
	l.windows.Remove(e)
}
