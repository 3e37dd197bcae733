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
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestAckStats(t *testing.T) {
	s := NewAckStats()
	for i := 1; i <= 100; i++ {
		s.Put(time.Duration(i) * time.Millisecond)
	}
	d := s.GetStats()
	if d.Count != 100 {
		t.Fatalf("count %d", d.Count)
	}
	within := func(got, want time.Duration) bool {
		diff := got - want
		if diff < 0 {
			diff = -diff
		}
		return diff <= want/100
	}
	if !within(d.Min, time.Millisecond) || !within(d.Max, 100*time.Millisecond) {
		t.Errorf("min %s max %s", d.Min, d.Max)
	}
	if !within(d.P50, 50*time.Millisecond) {
		t.Errorf("p50 %s", d.P50)
	}
	if !within(d.Avg, 50500*time.Microsecond) {
		t.Errorf("avg %s", d.Avg)
	}
	s.Reset()
	if d = s.GetStats(); d.Count != 0 || d.Avg != 0 {
		t.Errorf("after reset %+v", d)
	}
}

func TestZeroValueAckStats(t *testing.T) {
	var s AckStats
	s.Put(time.Second)
	if s.GetStats().Count != 1 {
		t.Error("zero value AckStats should be usable")
	}
}

func TestClientStatsSnapshot(t *testing.T) {
	var s ClientStats
	s.Sent.Add(3)
	s.Drop("auth")
	s.Drop("auth")
	s.Drop("truncated")
	s.AckRtt.Put(2 * time.Millisecond)

	snap := s.Snapshot()
	if snap.Sent != 3 || snap.Dropped["auth"] != 2 || snap.TotalDropped() != 3 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	s.Drop("auth")
	if snap.Dropped["auth"] != 2 {
		t.Error("snapshot shares state with ClientStats")
	}

	var buf bytes.Buffer
	snap.PrettyPrint(&buf)
	out := buf.String()
	if !strings.Contains(out, "sent=3") || !strings.Contains(out, "dropped: auth=2 truncated=1") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
