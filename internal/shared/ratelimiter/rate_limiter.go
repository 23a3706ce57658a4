// Package ratelimiter はキーごとの固定ウィンドウ方式のレート制限を提供します。
package ratelimiter

import (
	"sync"
	"time"
)

// RateLimiterInterface は操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	Allow(key string) bool
}

type window struct {
	count     int
	lastReset time.Time
}

// RateLimiter はキー（クライアントIPなど）ごとに interval あたり limit 回まで操作を許可します。
type RateLimiter struct {
	mu       sync.Mutex
	limit    int           // interval あたりの上限
	interval time.Duration // どの単位でリセットするか
	windows  map[string]*window
	now      func() time.Time
}

var _ RateLimiterInterface = (*RateLimiter)(nil)

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		interval: interval,
		windows:  make(map[string]*window),
		now:      time.Now,
	}
}

// Allow は key の呼び出し回数を数え、上限以内であれば true を返します。
// 上限を超えた呼び出しは次のウィンドウまで拒否されます（待機はしません）。
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	// interval を過ぎたらカウントリセット
	if !ok || now.Sub(w.lastReset) >= rl.interval {
		if !ok {
			rl.sweep(now)
		}
		w = &window{lastReset: now}
		rl.windows[key] = w
	}

	w.count++
	return w.count <= rl.limit
}

// sweep drops windows that have already expired.
func (rl *RateLimiter) sweep(now time.Time) {
	for k, w := range rl.windows {
		if now.Sub(w.lastReset) >= rl.interval {
			delete(rl.windows, k)
		}
	}
}
