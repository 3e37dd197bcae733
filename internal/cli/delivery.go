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
	"sync"
	"time"

	"udpmsg/pkg/proto"
)

var closedCh = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Delivery is the outcome of one send. For a send without ack it is complete on return.
// Otherwise Done is closed once, when the ack arrives, retries are exhausted, or the
// client closes.
type Delivery struct {
	corr         proto.Correlation
	ackRequested bool
	sentAt       time.Time

	once      sync.Once
	doneCh    chan struct{}
	err       error
	confirmed bool
	rtt       time.Duration
}

func NewDelivery(corr proto.Correlation, sentAt time.Time) *Delivery {
	return &Delivery{
		corr:         corr,
		ackRequested: true,
		sentAt:       sentAt,
		doneCh:       make(chan struct{}),
	}
}

// NewSentDelivery returns the completed Delivery of a fire-and-forget send.
func NewSentDelivery(sentAt time.Time) *Delivery {
	return &Delivery{
		sentAt: sentAt,
		doneCh: closedCh,
	}
}

func (d *Delivery) Done() <-chan struct{} {
	return d.doneCh
}

// Err is nil until Done is closed. After that it is nil for a confirmed or fire-and-forget
// send, ErrDeliveryFailure (wrapped) when retries ran out, or ErrAckCancelled on close.
func (d *Delivery) Err() error {
	select {
	case <-d.doneCh:
		return d.err
	default:
		return nil
	}
}

// Confirmed reports whether an ack was received.
func (d *Delivery) Confirmed() bool {
	select {
	case <-d.doneCh:
		return d.confirmed
	default:
		return false
	}
}

func (d *Delivery) AckRequested() bool {
	return d.ackRequested
}

func (d *Delivery) Correlation() proto.Correlation {
	return d.corr
}

func (d *Delivery) SentAt() time.Time {
	return d.sentAt
}

// RoundTrip is the time from the first send to the ack, zero if not confirmed.
func (d *Delivery) RoundTrip() time.Duration {
	if d.Confirmed() {
		return d.rtt
	}
	return 0
}

// Wait blocks until the delivery completes or ctx is done.
func (d *Delivery) Wait(ctx context.Context) error {
	select {
	case <-d.doneCh:
		return d.err
	default:
	}
	select {
	case <-d.doneCh:
		return d.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Delivery) confirm(rtt time.Duration) (ok bool) {
	d.once.Do(func() {
		d.confirmed = true
		d.rtt = rtt
		close(d.doneCh)
		ok = true
	})
	return
}

func (d *Delivery) fail(err error) (ok bool) {
	d.once.Do(func() {
		d.err = err
		close(d.doneCh)
		ok = true
	})
	return
}
