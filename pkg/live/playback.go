package live

import (
	"sync"
	"time"
)

type Timer interface {
	Stop() bool
}

// Clock lets tests drive playback time by hand.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// PlaybackQueue schedules audio buffers back to back. Each buffer starts at
// max(nextStart, now) and pushes nextStart forward by its duration, so
// buffers arriving faster than real time play without gaps or overlap.
type PlaybackQueue struct {
	clock Clock

	mu        sync.Mutex
	nextStart time.Time
	seq       uint64
	scheduled map[uint64]Timer
	onIdle    func()
}

func NewPlaybackQueue(clock Clock) *PlaybackQueue {
	if clock == nil {
		clock = realClock{}
	}
	return &PlaybackQueue{
		clock:     clock,
		scheduled: make(map[uint64]Timer),
	}
}

// OnIdle is called each time the last scheduled buffer finishes playing.
func (q *PlaybackQueue) OnIdle(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onIdle = fn
}

// Enqueue schedules a buffer of length d and returns how long from now it
// will start.
func (q *PlaybackQueue) Enqueue(d time.Duration) time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.clock.Now()
	if q.nextStart.Before(now) {
		q.nextStart = now
	}
	start := q.nextStart
	q.nextStart = start.Add(d)

	q.seq++
	id := q.seq
	q.scheduled[id] = q.clock.AfterFunc(q.nextStart.Sub(now), func() { q.finish(id) })

	return start.Sub(now)
}

func (q *PlaybackQueue) finish(id uint64) {
	q.mu.Lock()
	if _, ok := q.scheduled[id]; !ok {
		q.mu.Unlock()
		return
	}
	delete(q.scheduled, id)
	idle := len(q.scheduled) == 0
	onIdle := q.onIdle
	q.mu.Unlock()

	if idle && onIdle != nil {
		onIdle()
	}
}

// Interrupt stops every scheduled buffer and resets the timeline. The idle
// callback is not fired; the caller decides the resulting status.
func (q *PlaybackQueue) Interrupt() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id, timer := range q.scheduled {
		timer.Stop()
		delete(q.scheduled, id)
	}
	q.nextStart = time.Time{}
}

// Pending is the number of buffers scheduled or playing.
func (q *PlaybackQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.scheduled)
}

// Remaining is how long until everything queued has played.
func (q *PlaybackQueue) Remaining() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.scheduled) == 0 {
		return 0
	}
	if d := q.nextStart.Sub(q.clock.Now()); d > 0 {
		return d
	}
	return 0
}
