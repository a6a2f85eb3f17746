// SPDX-License-Identifier: MIT
package transport

import (
	"time"

	"specterm/internal/log"
)

// LoggingTransport writes a one-line summary of the heights to the debug log
// at most once per interval.
type LoggingTransport struct {
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// NewLoggingTransport creates a LoggingTransport. A non-positive interval
// logs every frame.
func NewLoggingTransport(interval time.Duration) *LoggingTransport {
	log.Debugf("Transport: Using LoggingTransport (interval %s)", interval)
	return &LoggingTransport{interval: interval, now: time.Now}
}

func (lt *LoggingTransport) Send(heights []float64) error {
	if !log.Enabled(log.LevelDebug) || len(heights) == 0 {
		return nil
	}
	now := lt.now()
	if now.Sub(lt.last) < lt.interval {
		return nil
	}
	lt.last = now

	peak, col := heights[0], 0
	for i, h := range heights {
		if h > peak {
			peak, col = h, i
		}
	}
	log.Debugf("Transport: %d columns, peak %.2f at column %d", len(heights), peak, col)
	return nil
}

func (lt *LoggingTransport) Close() error {
	return nil
}

var _ Transport = (*LoggingTransport)(nil)
