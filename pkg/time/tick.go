package time

import (
	"errors"
	"sync"
	"time"
)

// BoundaryTicker is like a time.Ticker, but ticks at successive
// boundaries computed by a next function, e.g. at the end of
// every calendar month.
type BoundaryTicker struct {
	C <-chan time.Time

	c        chan<- time.Time
	next     func(time.Time) time.Time
	once     sync.Once
	stopping chan struct{}
}

// NewBoundaryTicker returns a new BoundaryTicker. next must return
// a time strictly after its argument; the ticker stops ticking as soon
// as it doesn't.
func NewBoundaryTicker(next func(time.Time) time.Time) *BoundaryTicker {
	if next == nil {
		panic(errors.New("nil next func for NewBoundaryTicker"))
	}
	c := make(chan time.Time)
	bt := &BoundaryTicker{
		C:        c,
		c:        c,
		next:     next,
		stopping: make(chan struct{}),
	}
	go bt.run()
	return bt
}

// NewAlignedTicker returns a BoundaryTicker that ticks on multiples of
// d since the Unix epoch (see Align). d must be at least one second.
func NewAlignedTicker(d time.Duration) *BoundaryTicker {
	if d < time.Second {
		panic(errors.New("interval under one second for NewAlignedTicker"))
	}
	return NewBoundaryTicker(func(t time.Time) time.Time {
		n, err := NextAligned(t, d)
		if err != nil {
			return t
		}
		return n
	})
}

func (bt *BoundaryTicker) run() {
	now := time.Now()
	nextTick := bt.next(now)
	if !nextTick.After(now) {
		return
	}
	timer := time.NewTimer(time.Until(nextTick))
	c := bt.c
	for {
		select {
		case <-bt.stopping:
			if !timer.Stop() {
				<-timer.C
			}
			return
		case <-timer.C:
			// Send tick non-blocking
			go func(t time.Time) {
				select {
				case c <- t:
				default:
				}
			}(nextTick)
			prev := nextTick
			nextTick = bt.next(prev)
			if !nextTick.After(prev) {
				return
			}
			timer.Reset(time.Until(nextTick))
		}
	}
}

// Stop turns off a ticker. After Stop, no more ticks will be sent.
// Stop does not close the channel, to prevent a concurrent goroutine reading from
// the channel from seeing an erroneous "tick".
func (bt *BoundaryTicker) Stop() {
	bt.once.Do(func() {
		if bt.stopping != nil {
			close(bt.stopping)
		}
	})
}
