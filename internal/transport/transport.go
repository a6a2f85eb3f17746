// SPDX-License-Identifier: MIT
//
// Package transport fans the per-period height array out to consumers outside
// the terminal: WebSocket clients, a UDP receiver, or the debug log.
//
// Send is called from the audio callback, so implementations must not block.
// Network transports copy the heights into a Snapshot and publish from their
// own goroutine.
package transport

import (
	"errors"
	"sync"

	"specterm/pkg/bitint"
)

// Transport receives one height array per rendered period. Implementations
// must copy heights if they retain it.
type Transport interface {
	Send(heights []float64) error
	Close() error
}

// Snapshot holds the most recent height array. Store never blocks: if a
// reader holds the lock the new frame is dropped.
type Snapshot struct {
	mu      sync.Mutex
	heights []float64
	seq     uint64
}

// Store copies heights into the snapshot. It reports false when the frame
// was dropped because a reader held the lock.
func (s *Snapshot) Store(heights []float64) bool {
	if !s.mu.TryLock() {
		return false
	}
	s.heights = bitint.Grow(s.heights, len(heights))
	copy(s.heights, heights)
	s.seq++
	s.mu.Unlock()
	return true
}

// Load copies the latest heights into dst, growing it as needed, and returns
// the result with its sequence number. A sequence of 0 means nothing has been
// stored yet.
func (s *Snapshot) Load(dst []float64) ([]float64, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dst = bitint.Grow(dst, len(s.heights))
	copy(dst, s.heights)
	return dst, s.seq
}

// Multi sends to every transport in order.
type Multi []Transport

func (m Multi) Send(heights []float64) error {
	var errs []error
	for _, t := range m {
		if err := t.Send(heights); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every transport, even if some fail.
func (m Multi) Close() error {
	var errs []error
	for _, t := range m {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Transport = Multi(nil)
