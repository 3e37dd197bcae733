//
//  Copyright 2023 PayPal Inc.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

package cli

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"udpmsg/pkg/proto"
	"udpmsg/pkg/util"
)

type (
	TrackerConfig struct {
		// AckTimeout is the wait after the first send.
		AckTimeout time.Duration
		// MaxRetries is the number of resends after the first send.
		MaxRetries int
		// MaxBackoff caps the wait between sends.
		MaxBackoff time.Duration
	}

	// ITrackerObserver is told about every state change of a PendingAck. Calls are made
	// without holding the tracker lock.
	ITrackerObserver interface {
		OnAckConfirmed(p *PendingAck, rtt time.Duration)
		OnAckRetry(p *PendingAck, err error)
		OnDeliveryFailure(p *PendingAck)
	}

	PendingAck struct {
		Delivery *Delivery
		frame    []byte
		sentAt   time.Time
		deadline time.Time
		attempts int
	}

	// AckTracker keeps the frames waiting for an ack, resends them with exponential backoff
	// and fails their Delivery once retries are exhausted.
	AckTracker struct {
		config   TrackerConfig
		resend   func([]byte) error
		observer ITrackerObserver

		mtx     sync.Mutex
		pending map[proto.Correlation]*PendingAck
		closed  bool

		numPending int64
		chWake     chan struct{}
		chStop     chan struct{}
		wg         sync.WaitGroup
		stopOnce   sync.Once
	}
)

func (p *PendingAck) Correlation() proto.Correlation {
	return p.Delivery.corr
}

// Attempts is the number of times the frame has been written.
func (p *PendingAck) Attempts() int {
	return p.attempts
}

func (p *PendingAck) Deadline() time.Time {
	return p.deadline
}

func NewAckTracker(config TrackerConfig, resend func([]byte) error, observer ITrackerObserver) *AckTracker {
	if config.MaxBackoff < config.AckTimeout {
		config.MaxBackoff = config.AckTimeout
	}
	t := &AckTracker{
		config:   config,
		resend:   resend,
		observer: observer,
		pending:  make(map[proto.Correlation]*PendingAck),
		chWake:   make(chan struct{}, 1),
		chStop:   make(chan struct{}),
	}
	t.wg.Add(1)
	go t.run()
	return t
}

func (t *AckTracker) backoff(attempt int) time.Duration {
	return util.ExpBackoff(t.config.AckTimeout, attempt, t.config.MaxBackoff)
}

// Track registers frame, already holding corr in its ack header, and returns its Delivery.
// It must be called before the first write so an early ack is not lost; a failed first
// write is undone with Untrack.
func (t *AckTracker) Track(corr proto.Correlation, frame []byte) (*Delivery, error) {
	now := time.Now()
	p := &PendingAck{
		Delivery: NewDelivery(corr, now),
		frame:    frame,
		sentAt:   now,
		deadline: now.Add(t.backoff(0)),
		attempts: 1,
	}
	t.mtx.Lock()
	if t.closed {
		t.mtx.Unlock()
		return nil, ErrAckCancelled
	}
	if v, found := t.pending[corr]; found {
		t.mtx.Unlock()
		return nil, fmt.Errorf("duplicate correlation %s: %v", corr, v.Delivery.corr)
	}
	t.pending[corr] = p
	atomic.AddInt64(&t.numPending, 1)
	t.mtx.Unlock()

	t.wake()
	return p.Delivery, nil
}

// Untrack forgets corr without completing its Delivery.
func (t *AckTracker) Untrack(corr proto.Correlation) {
	t.mtx.Lock()
	if _, found := t.pending[corr]; found {
		delete(t.pending, corr)
		atomic.AddInt64(&t.numPending, -1)
	}
	t.mtx.Unlock()
}

// OnAck resolves the PendingAck of corr. It returns false for an unknown or already
// resolved correlation.
func (t *AckTracker) OnAck(corr proto.Correlation) bool {
	t.mtx.Lock()
	p, found := t.pending[corr]
	if found {
		delete(t.pending, corr)
		atomic.AddInt64(&t.numPending, -1)
	}
	t.mtx.Unlock()
	if !found {
		return false
	}
	rtt := time.Since(p.sentAt)
	if p.Delivery.confirm(rtt) && t.observer != nil {
		t.observer.OnAckConfirmed(p, rtt)
	}
	return true
}

func (t *AckTracker) NumPending() int {
	return int(atomic.LoadInt64(&t.numPending))
}

// Close stops the retry loop and fails every outstanding Delivery with ErrAckCancelled.
func (t *AckTracker) Close() {
	t.stopOnce.Do(func() {
		close(t.chStop)
	})
	t.wg.Wait()
	t.ClearOnError(ErrAckCancelled)
}

func (t *AckTracker) ClearOnError(err error) {
	t.mtx.Lock()
	t.closed = true
	cleared := make([]*PendingAck, 0, len(t.pending))
	for k, v := range t.pending {
		cleared = append(cleared, v)
		delete(t.pending, k)
	}
	atomic.StoreInt64(&t.numPending, 0)
	t.mtx.Unlock()

	if len(cleared) != 0 && glog.V(2) {
		glog.InfoDepth(1, fmt.Sprintf("clear %d pending acks: %s", len(cleared), err))
	}
	for _, p := range cleared {
		p.Delivery.fail(err)
	}
}

func (t *AckTracker) wake() {
	select {
	case t.chWake <- struct{}{}:
	default:
	}
}

func (t *AckTracker) run() {
	defer t.wg.Done()
	timer := util.NewTimerWrapper()
	defer timer.Stop()

	for {
		select {
		case <-t.chStop:
			return
		case <-t.chWake:
			t.rearm(timer, time.Now())
		case now := <-timer.C():
			timer.Fired()
			t.OnTimeout(now)
			t.rearm(timer, time.Now())
		}
	}
}

func (t *AckTracker) rearm(timer *util.TimerWrapper, now time.Time) {
	if next, ok := t.nextDeadline(); ok {
		timer.ArmAt(next, now, time.Millisecond)
	} else {
		timer.Stop()
	}
}

func (t *AckTracker) nextDeadline() (next time.Time, ok bool) {
	t.mtx.Lock()
	for _, p := range t.pending {
		if !ok || p.deadline.Before(next) {
			next = p.deadline
			ok = true
		}
	}
	t.mtx.Unlock()
	return
}

// OnTimeout resends every expired frame that has retries left and fails the rest.
func (t *AckTracker) OnTimeout(now time.Time) {
	var retry, failed []*PendingAck

	t.mtx.Lock()
	for k, p := range t.pending {
		if p.deadline.After(now) {
			continue
		}
		if p.attempts > t.config.MaxRetries {
			delete(t.pending, k)
			atomic.AddInt64(&t.numPending, -1)
			failed = append(failed, p)
		} else {
			p.deadline = now.Add(t.backoff(p.attempts))
			p.attempts++
			retry = append(retry, p)
		}
	}
	t.mtx.Unlock()

	for _, p := range retry {
		err := t.resend(p.frame)
		if err != nil {
			glog.Warningf("resend corr=%s try_no=%d: %s", p.Delivery.corr, p.attempts, err)
		}
		if t.observer != nil {
			t.observer.OnAckRetry(p, err)
		}
	}
	for _, p := range failed {
		err := fmt.Errorf("%w: corr=%s attempts=%d elapsed=%s",
			ErrDeliveryFailure, p.Delivery.corr, p.attempts, now.Sub(p.sentAt).Round(time.Millisecond))
		if p.Delivery.fail(err) && t.observer != nil {
			t.observer.OnDeliveryFailure(p)
		}
	}
}
