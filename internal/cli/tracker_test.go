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
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"udpmsg/pkg/proto"
)

type recordingObserver struct {
	mtx       sync.Mutex
	confirmed int
	retries   int
	failures  int
}

func (o *recordingObserver) OnAckConfirmed(p *PendingAck, rtt time.Duration) {
	o.mtx.Lock()
	o.confirmed++
	o.mtx.Unlock()
}

func (o *recordingObserver) OnAckRetry(p *PendingAck, err error) {
	o.mtx.Lock()
	o.retries++
	o.mtx.Unlock()
}

func (o *recordingObserver) OnDeliveryFailure(p *PendingAck) {
	o.mtx.Lock()
	o.failures++
	o.mtx.Unlock()
}

func (o *recordingObserver) counts() (int, int, int) {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	return o.confirmed, o.retries, o.failures
}

type countingSender struct {
	mtx   sync.Mutex
	sends int
}

func (s *countingSender) send(b []byte) error {
	s.mtx.Lock()
	s.sends++
	s.mtx.Unlock()
	return nil
}

func (s *countingSender) count() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.sends
}

func waitDone(t *testing.T, d *Delivery, timeout time.Duration) {
	t.Helper()
	select {
	case <-d.Done():
	case <-time.After(timeout):
		t.Fatalf("delivery %s not done after %s", d.Correlation(), timeout)
	}
}

func TestTrackerRetriesThenFails(t *testing.T) {
	sender := &countingSender{}
	obs := &recordingObserver{}
	tr := NewAckTracker(TrackerConfig{AckTimeout: 10 * time.Millisecond, MaxRetries: 3, MaxBackoff: 40 * time.Millisecond}, sender.send, obs)
	defer tr.Close()

	corr := proto.Correlation{Sender: proto.NewIdentity(), Sequence: 1}
	d, err := tr.Track(corr, []byte("frame"))
	if err != nil {
		t.Fatal(err)
	}
	// 10 + 20 + 40 + 40 ms of backoff
	waitDone(t, d, 2*time.Second)

	if !errors.Is(d.Err(), ErrDeliveryFailure) {
		t.Errorf("expected ErrDeliveryFailure, got %v", d.Err())
	}
	if d.Confirmed() {
		t.Error("failed delivery reported as confirmed")
	}
	if n := sender.count(); n != 3 {
		t.Errorf("expected 3 resends, got %d", n)
	}
	if c, r, f := obs.counts(); c != 0 || r != 3 || f != 1 {
		t.Errorf("confirmed=%d retries=%d failures=%d", c, r, f)
	}
	if tr.NumPending() != 0 {
		t.Errorf("pending %d", tr.NumPending())
	}
	if tr.OnAck(corr) {
		t.Error("late ack resolved a failed delivery")
	}
}

func TestTrackerAck(t *testing.T) {
	sender := &countingSender{}
	obs := &recordingObserver{}
	tr := NewAckTracker(TrackerConfig{AckTimeout: time.Second, MaxRetries: 3}, sender.send, obs)
	defer tr.Close()

	corr := proto.Correlation{Sender: proto.NewIdentity(), Sequence: 7}
	d, err := tr.Track(corr, []byte("frame"))
	if err != nil {
		t.Fatal(err)
	}
	if tr.NumPending() != 1 {
		t.Errorf("pending %d", tr.NumPending())
	}
	if !tr.OnAck(corr) {
		t.Fatal("ack not matched")
	}
	if tr.OnAck(corr) {
		t.Error("duplicate ack matched")
	}
	if err := d.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !d.Confirmed() || d.RoundTrip() <= 0 {
		t.Errorf("confirmed=%v rtt=%s", d.Confirmed(), d.RoundTrip())
	}
	if c, r, f := obs.counts(); c != 1 || r != 0 || f != 0 {
		t.Errorf("confirmed=%d retries=%d failures=%d", c, r, f)
	}
	if sender.count() != 0 {
		t.Error("unexpected resend")
	}
}

func TestTrackerCloseCancels(t *testing.T) {
	tr := NewAckTracker(TrackerConfig{AckTimeout: time.Minute, MaxRetries: 1}, func([]byte) error { return nil }, nil)
	id := proto.NewIdentity()
	var ds []*Delivery
	for i := uint64(1); i <= 3; i++ {
		d, err := tr.Track(proto.Correlation{Sender: id, Sequence: i}, nil)
		if err != nil {
			t.Fatal(err)
		}
		ds = append(ds, d)
	}
	tr.Close()
	tr.Close()
	for _, d := range ds {
		waitDone(t, d, time.Second)
		if d.Err() != ErrAckCancelled {
			t.Errorf("got %v", d.Err())
		}
	}
	if _, err := tr.Track(proto.Correlation{Sender: id, Sequence: 9}, nil); err != ErrAckCancelled {
		t.Errorf("track after close: %v", err)
	}
}

func TestTrackerDuplicateAndUntrack(t *testing.T) {
	tr := NewAckTracker(TrackerConfig{AckTimeout: time.Minute}, func([]byte) error { return nil }, nil)
	defer tr.Close()
	corr := proto.Correlation{Sender: proto.NewIdentity(), Sequence: 1}
	d, err := tr.Track(corr, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Track(corr, nil); err == nil {
		t.Error("duplicate correlation accepted")
	}
	tr.Untrack(corr)
	if tr.NumPending() != 0 || tr.OnAck(corr) {
		t.Error("untracked correlation still pending")
	}
	select {
	case <-d.Done():
		t.Error("untracked delivery completed")
	default:
	}
}

func TestSentDelivery(t *testing.T) {
	d := NewSentDelivery(time.Now())
	select {
	case <-d.Done():
	default:
		t.Fatal("fire-and-forget delivery not done")
	}
	if d.Err() != nil || d.Confirmed() || d.AckRequested() {
		t.Errorf("err=%v confirmed=%v ack=%v", d.Err(), d.Confirmed(), d.AckRequested())
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Wait(ctx); err != nil {
		t.Errorf("wait: %v", err)
	}
}

func TestDeliveryWaitContext(t *testing.T) {
	d := NewDelivery(proto.Correlation{}, time.Now())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := d.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("got %v", err)
	}
	if d.Err() != nil {
		t.Error("pending delivery reports an error")
	}
}
