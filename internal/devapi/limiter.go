package devapi

import (
	"strings"
	"sync"
	"time"
)

var (
	loginWindow      = 15 * time.Minute
	lockDuration     = 10 * time.Minute
	maxLoginAttempts = 5
)

// failures は1つの (クライアント, メールアドレス) に対する失敗履歴です。
type failures struct {
	count       int
	since       time.Time
	lockedUntil time.Time
}

// loginLimiter はクライアントIPとメールアドレスの組ごとにログイン失敗を数え、
// loginWindow 内に maxLoginAttempts 回失敗した組を lockDuration の間ロックします。
type loginLimiter struct {
	mu      sync.Mutex
	entries map[string]*failures
}

func newLoginLimiter() *loginLimiter {
	return &loginLimiter{entries: make(map[string]*failures)}
}

func limiterKey(clientIP, email string) string {
	return clientIP + "|" + strings.ToLower(strings.TrimSpace(email))
}

// locked はロック中であれば残り時間を返します。
func (l *loginLimiter) locked(key string, now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, ok := l.entries[key]
	if !ok || !now.Before(f.lockedUntil) {
		return 0
	}
	return f.lockedUntil.Sub(now)
}

// fail は失敗を記録し、ロックまでに残っている試行回数を返します。
func (l *loginLimiter) fail(key string, now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, ok := l.entries[key]
	if !ok || now.Sub(f.since) > loginWindow {
		f = &failures{since: now}
		l.entries[key] = f
	}
	if f.count < maxLoginAttempts {
		f.count++
	}
	if f.count == maxLoginAttempts {
		f.lockedUntil = now.Add(lockDuration)
	}
	return maxLoginAttempts - f.count
}

// clear は成功したログインの失敗履歴を消します。
func (l *loginLimiter) clear(key string) {
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
}
