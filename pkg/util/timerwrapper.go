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

package util

import (
	"time"
)

// TimerWrapper is a deadline timer for a select loop. Its channel is nil while disarmed,
// and rearming discards a tick left over from the previous expiry
// (https://github.com/golang/go/issues/11513).
//
// Not goroutine safe. Owned by a single select loop.
type TimerWrapper struct {
	t     *time.Timer
	armed bool
}

func NewTimerWrapper() *TimerWrapper {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return &TimerWrapper{t: t}
}

// C returns the channel to select on, nil while disarmed.
func (w *TimerWrapper) C() <-chan time.Time {
	if !w.armed {
		return nil
	}
	return w.t.C
}

// Fired disarms the timer after its tick has been received.
func (w *TimerWrapper) Fired() {
	w.armed = false
}

func (w *TimerWrapper) Stop() {
	if !w.armed {
		return
	}
	if !w.t.Stop() {
		select {
		case <-w.t.C:
		default:
		}
	}
	w.armed = false
}

// ArmAt arms the timer for deadline, no sooner than minDelay after now.
func (w *TimerWrapper) ArmAt(deadline time.Time, now time.Time, minDelay time.Duration) {
	w.Stop()
	d := deadline.Sub(now)
	if d < minDelay {
		d = minDelay
	}
	w.t.Reset(d)
	w.armed = true
}
