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
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

type (
	// AckStats keeps the distribution of ack round trips, measured from the first send of a
	// frame to the arrival of its ack.
	AckStats struct {
		mtx   sync.Mutex
		hist  *hdrhistogram.Histogram
		total time.Duration
	}

	LatencyData struct {
		Count int64
		Avg   time.Duration
		Min   time.Duration
		Max   time.Duration
		P50   time.Duration
		P95   time.Duration
		P99   time.Duration
		P9999 time.Duration
	}
)

func NewAckStats() *AckStats {
	s := &AckStats{}
	s.Init()
	return s
}

func (s *AckStats) Init() {
	s.mtx.Lock()
	if s.hist == nil {
		s.hist = hdrhistogram.New(1, int64(3600*time.Second), 3)
	}
	s.mtx.Unlock()
}

func (s *AckStats) Put(rtt time.Duration) {
	s.Init()
	s.mtx.Lock()
	if err := s.hist.RecordValue(int64(rtt)); err == nil {
		s.total += rtt
	}
	s.mtx.Unlock()
}

func (s *AckStats) GetStats() (stat LatencyData) {
	s.Init()
	s.mtx.Lock()
	stat.Count = s.hist.TotalCount()
	stat.Min = time.Duration(s.hist.Min())
	stat.Max = time.Duration(s.hist.Max())
	stat.P50 = time.Duration(s.hist.ValueAtQuantile(50.))
	stat.P95 = time.Duration(s.hist.ValueAtQuantile(95.))
	stat.P99 = time.Duration(s.hist.ValueAtQuantile(99.))
	stat.P9999 = time.Duration(s.hist.ValueAtQuantile(99.99))
	total := s.total
	s.mtx.Unlock()

	if stat.Count != 0 {
		stat.Avg = total / time.Duration(stat.Count)
	}
	return
}

func (s *AckStats) Reset() {
	s.Init()
	s.mtx.Lock()
	s.hist.Reset()
	s.total = 0
	s.mtx.Unlock()
}

func (d LatencyData) PrettyPrint(w io.Writer) {
	r := func(d time.Duration) time.Duration {
		return d.Round(time.Microsecond)
	}
	fmt.Fprintln(w,
		`
  number of |                                ack round trip                                  
    acks    | average    | min        | max        |        50% |      95%   |      99%   |     99.99%
------------+------------+------------+------------+------------+------------+------------+-----------`)
	fmt.Fprintf(w, "%12d %12s %12s %12s %12s %12s %12s %12s\n",
		d.Count, r(d.Avg), r(d.Min), r(d.Max), r(d.P50), r(d.P95), r(d.P99), r(d.P9999))
}
