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

package logging

import (
	"strings"
	"testing"

	"udpmsg/pkg/proto"
)

func TestKVBufferForLog(t *testing.T) {
	id, _ := proto.IdentityFromString("9f3c4a6e-1b2d-4c5e-8f70-0a1b2c3d4e5f")
	f := &proto.Frame{
		Sender:       id,
		AckRequested: true,
		Type:         0x02,
		Payload:      []byte("x"),
	}
	b := NewKVBufferForLog()
	b.AddFrameInfo(f).AddDropReason("auth")
	s := b.String()
	for _, want := range []string{"ack=1", "len=1", "sender=9f3c4a6e-1b2d-4c5e-8f70-0a1b2c3d4e5f", "drop=auth"} {
		if !strings.Contains(s, want) {
			t.Errorf("%q missing %q", s, want)
		}
	}
	if strings.Count(s, ",") != 4 {
		t.Errorf("unexpected delimiters in %q", s)
	}
}

func TestAddPayloadTruncates(t *testing.T) {
	b := NewKVBufferForLog()
	b.AddPayload([]byte(strings.Repeat("a", 100)))
	if got := b.String(); got != "data="+strings.Repeat("a", 32)+"..." {
		t.Errorf("got %q", got)
	}
}

func TestInitLogging(t *testing.T) {
	InitLogging("debug", "test")
	if !LOG_DEBUG || LOG_VERBOSE {
		t.Errorf("debug level: LOG_DEBUG=%v LOG_VERBOSE=%v", LOG_DEBUG, LOG_VERBOSE)
	}
	InitLogging("warning", "test")
	if LOG_INFO || !LOG_WARN {
		t.Errorf("warning level: LOG_INFO=%v LOG_WARN=%v", LOG_INFO, LOG_WARN)
	}
	if AppName() != "test" {
		t.Error(AppName())
	}
}
