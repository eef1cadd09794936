// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package collect

import (
	"context"
	"sync"
	"time"

	"github.com/adxyz/adinci/pkg/core"
)

const (
	// WatchComplete is the progress value at which the reward can be claimed
	WatchComplete = 100

	// WatchStep is the progress added per tick (~6 seconds to completion)
	WatchStep = 5

	// WatchTick is the interval between progress ticks
	WatchTick = 300 * time.Millisecond
)

// WatchSession models a user watching a collected ad. Progress runs
// monotonically from 0 to 100 on a fixed-interval tick; an external signal
// (video end) jumps it straight to 100. The claim is gated on completion.
type WatchSession struct {
	mu       sync.Mutex
	ad       *core.CollectedAd
	progress int
}

// NewWatchSession starts a watch at zero progress
func NewWatchSession(ad *core.CollectedAd) *WatchSession {
	return &WatchSession{ad: ad}
}

// Ad returns the ad being watched
func (s *WatchSession) Ad() *core.CollectedAd {
	return s.ad
}

// Advance moves progress forward one tick, clamped at completion, and
// returns the new progress.
func (s *WatchSession) Advance() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress += WatchStep
	if s.progress > WatchComplete {
		s.progress = WatchComplete
	}
	return s.progress
}

// Complete marks the watch finished immediately (video ended)
func (s *WatchSession) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = WatchComplete
}

// Progress returns the current progress in [0, 100]
func (s *WatchSession) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// CanClaim reports whether the reward claim is unlocked
func (s *WatchSession) CanClaim() bool {
	return s.Progress() >= WatchComplete
}

// Run drives the session on the watch ticker until completion or until the
// context is cancelled (modal dismissed). Returns true when the watch
// finished.
func (s *WatchSession) Run(ctx context.Context) bool {
	ticker := time.NewTicker(WatchTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.CanClaim()
		case <-ticker.C:
			if s.Advance() >= WatchComplete {
				return true
			}
		}
	}
}
