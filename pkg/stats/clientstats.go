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

package stats

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"udpmsg/pkg/util"
)

// ClientStats holds the in-process counters of one client.
type ClientStats struct {
	Sent             util.Counter
	Received         util.Counter
	AcksConfirmed    util.Counter
	AckRetries       util.Counter
	DeliveryFailures util.Counter
	ListenerErrors   util.Counter
	ReceiveErrors    util.Counter
	AckRtt           AckStats

	mtx     sync.Mutex
	dropped map[string]uint64
}

// Snapshot is a point-in-time copy of ClientStats.
type Snapshot struct {
	Sent             uint64
	Received         uint64
	Dropped          map[string]uint64
	AcksConfirmed    uint64
	AckRetries       uint64
	DeliveryFailures uint64
	ListenerErrors   uint64
	ReceiveErrors    uint64
	PendingAcks      int
	AckRtt           LatencyData
}

func (s *ClientStats) Drop(reason string) {
	s.mtx.Lock()
	if s.dropped == nil {
		s.dropped = make(map[string]uint64)
	}
	s.dropped[reason]++
	s.mtx.Unlock()
}

func (s *ClientStats) Snapshot() (snap Snapshot) {
	snap.Sent = s.Sent.Get()
	snap.Received = s.Received.Get()
	snap.AcksConfirmed = s.AcksConfirmed.Get()
	snap.AckRetries = s.AckRetries.Get()
	snap.DeliveryFailures = s.DeliveryFailures.Get()
	snap.ListenerErrors = s.ListenerErrors.Get()
	snap.ReceiveErrors = s.ReceiveErrors.Get()
	snap.AckRtt = s.AckRtt.GetStats()

	s.mtx.Lock()
	snap.Dropped = make(map[string]uint64, len(s.dropped))
	for k, v := range s.dropped {
		snap.Dropped[k] = v
	}
	s.mtx.Unlock()
	return
}

func (s Snapshot) TotalDropped() (n uint64) {
	for _, v := range s.Dropped {
		n += v
	}
	return
}

func (s Snapshot) PrettyPrint(w io.Writer) {
	fmt.Fprintf(w, "sent=%d received=%d acks=%d retries=%d failures=%d pending=%d listener_errors=%d receive_errors=%d\n",
		s.Sent, s.Received, s.AcksConfirmed, s.AckRetries, s.DeliveryFailures, s.PendingAcks, s.ListenerErrors, s.ReceiveErrors)
	if len(s.Dropped) != 0 {
		reasons := make([]string, 0, len(s.Dropped))
		for k := range s.Dropped {
			reasons = append(reasons, k)
		}
		sort.Strings(reasons)
		fmt.Fprint(w, "dropped:")
		for _, k := range reasons {
			fmt.Fprintf(w, " %s=%d", k, s.Dropped[k])
		}
		fmt.Fprintln(w)
	}
	if s.AckRtt.Count != 0 {
		s.AckRtt.PrettyPrint(w)
	}
}
