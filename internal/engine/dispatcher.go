package engine

import "sync"

// Dispatcher is the single UI-affinity execution context. Jobs posted to it
// run one at a time, on one goroutine, in post order. It is the only place
// allowed to mutate the bound list.
type Dispatcher struct {
	jobs      chan func()
	closing   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewDispatcher creates a Dispatcher and starts its goroutine.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		jobs:    make(chan func(), 128),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	for {
		select {
		case job := <-d.jobs:
			job()
		case <-d.closing:
			// run what was already queued, then stop
			for {
				select {
				case job := <-d.jobs:
					job()
				default:
					close(d.done)
					return
				}
			}
		}
	}
}

// Post enqueues fn onto the dispatcher goroutine. Posts during or after Close
// are dropped; a post blocked on a full queue unblocks when Close begins,
// so shutdown never waits behind a backed-up queue.
func (d *Dispatcher) Post(fn func()) {
	select {
	case <-d.closing:
		return
	default:
	}
	select {
	case d.jobs <- fn:
	case <-d.closing:
	}
}

// Sync blocks until every job posted before it has run.
func (d *Dispatcher) Sync() {
	ran := make(chan struct{})
	d.Post(func() { close(ran) })
	select {
	case <-ran:
	case <-d.done:
	}
}

// Close drains pending jobs and stops the dispatcher goroutine.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.closing) })
	<-d.done
}
