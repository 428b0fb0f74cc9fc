// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"sync"
	"sync/atomic"
)

// ErrorObserver receives every query failure, independent of the batch
// result. Implementations must be safe for concurrent use and must not block.
type ErrorObserver interface {
	Observe(err error)
}

// ErrorObserverFunc adapts a function to ErrorObserver.
type ErrorObserverFunc func(err error)

// Observe calls f(err).
func (f ErrorObserverFunc) Observe(err error) {
	f(err)
}

type discardObserver struct{}

func (discardObserver) Observe(error) {}

// ErrorChannel is a bounded ErrorObserver backed by a buffered channel.
// When the buffer is full new errors are dropped and counted.
type ErrorChannel struct {
	ch      chan error
	dropped atomic.Int64
	mu      sync.RWMutex
	closed  bool
}

var _ ErrorObserver = (*ErrorChannel)(nil)

// NewErrorChannel creates an ErrorChannel buffering up to size errors.
func NewErrorChannel(size int) *ErrorChannel {
	return &ErrorChannel{ch: make(chan error, max(size, 1))}
}

// Observe offers err without blocking.
func (c *ErrorChannel) Observe(err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		c.dropped.Add(1)
		return
	}
	select {
	case c.ch <- err:
	default:
		c.dropped.Add(1)
	}
}

// C returns the receive side of the channel.
func (c *ErrorChannel) C() <-chan error {
	return c.ch
}

// Dropped returns the number of errors discarded because the buffer was
// full or the channel was closed.
func (c *ErrorChannel) Dropped() int64 {
	return c.dropped.Load()
}

// Close closes the channel. Later observations are dropped.
func (c *ErrorChannel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}
