// SPDX-License-Identifier: MIT
//
// Package udp publishes the height array as fixed-layout binary datagrams.
package udp

import (
	"errors"
	"sync"
	"time"

	"specterm/internal/log"
	"specterm/internal/transport"
)

// UDPPublisher sends the latest heights over UDP on a fixed interval. Send
// only records the heights; packets are built and sent from the publisher's
// own goroutine.
type UDPPublisher struct {
	sender   *UDPSender
	interval time.Duration
	now      func() time.Time

	latest transport.Snapshot

	ticker   *time.Ticker
	doneChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex // Protects ticker and doneChan during Start/Stop.

	sequenceNum uint32
	lastSeq     uint64

	// Reused by the publisher goroutine.
	heights []float64
	packet  []byte
}

// NewUDPPublisher creates a publisher over sender. If interval is not
// positive it defaults to 16ms (~60Hz).
func NewUDPPublisher(interval time.Duration, sender *UDPSender) (*UDPPublisher, error) {
	if sender == nil {
		return nil, errors.New("UDPPublisher: UDP sender cannot be nil")
	}
	if interval <= 0 {
		interval = 16 * time.Millisecond
		log.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}
	return &UDPPublisher{
		sender:   sender,
		interval: interval,
		now:      time.Now,
	}, nil
}

// Start launches the publishing goroutine. Calling Start on a running
// publisher does nothing.
func (p *UDPPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		log.Warnf("UDPPublisher: Start called but already running.")
		return
	}
	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	ticker, done := p.ticker, p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		log.Debugf("UDPPublisher: Publishing every %s", p.interval)
		for {
			select {
			case <-ticker.C:
				p.publish()
			case <-done:
				return
			}
		}
	}()
}

// Stop halts the publishing goroutine and waits for it to exit. It is safe
// to call on a stopped publisher.
func (p *UDPPublisher) Stop() {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return
	}
	close(p.doneChan)
	p.ticker.Stop()
	p.ticker = nil
	p.mu.Unlock()

	p.wg.Wait()
}

// publish sends one packet if new heights arrived since the last one.
func (p *UDPPublisher) publish() {
	var seq uint64
	p.heights, seq = p.latest.Load(p.heights)
	if seq == 0 || seq == p.lastSeq {
		return
	}
	p.lastSeq = seq

	p.sequenceNum++
	p.packet = AppendPacket(p.packet[:0], p.sequenceNum, p.now().UnixNano(), p.heights)
	if err := p.sender.Send(p.packet); err != nil {
		log.Debugf("UDPPublisher: %v", err)
		return
	}
	log.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, len(p.packet))
}

// Send records heights for the next packet. It never blocks.
func (p *UDPPublisher) Send(heights []float64) error {
	p.latest.Store(heights)
	return nil
}

// Close stops publishing and closes the sender.
func (p *UDPPublisher) Close() error {
	p.Stop()
	return p.sender.Close()
}

var _ transport.Transport = (*UDPPublisher)(nil)
