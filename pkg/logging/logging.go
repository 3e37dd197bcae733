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
	"bytes"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"udpmsg/pkg/proto"
	"udpmsg/pkg/util"
)

var (
	LOG_ERROR   glog.Verbose
	LOG_WARN    glog.Verbose
	LOG_INFO    glog.Verbose
	LOG_DEBUG   glog.Verbose
	LOG_VERBOSE glog.Verbose

	appName string
)

// InitLogging maps error|warning|info|debug|verbose onto the glog -v level and sends logs
// to stderr. It must be called after flag.Parse.
func InitLogging(level string, app string) {
	setFlag("logtostderr", "true")
	appName = app

	var glevel string
	switch strings.ToLower(level) {
	case "error":
		glevel = "1"
	case "warning":
		glevel = "2"
	case "debug":
		glevel = "4"
	case "verbose":
		glevel = "5"
	default:
		glevel = "3"
	}
	setFlag("v", glevel)

	LOG_ERROR = glog.V(1)
	LOG_WARN = glog.V(2)
	LOG_INFO = glog.V(3)
	LOG_DEBUG = glog.V(4)
	LOG_VERBOSE = glog.V(5)
}

func AppName() string {
	return appName
}

func setFlag(name string, value string) {
	if f := flag.Lookup(name); f != nil {
		if err := f.Value.Set(value); err != nil {
			fmt.Fprintf(os.Stderr, "fail to set -%s=%s: %s\n", name, value, err)
		}
	}
}

type KeyValueBuffer struct {
	bytes.Buffer
	delimiter     byte
	pairDelimiter byte
}

func NewKVBufferForLog() *KeyValueBuffer {
	b := &KeyValueBuffer{
		delimiter:     '=',
		pairDelimiter: ',',
	}
	return b
}

var (
	logDataKeyType        []byte = []byte("type")
	logDataKeyAck         []byte = []byte("ack")
	logDataKeyPayloadLen  []byte = []byte("len")
	logDataKeySender      []byte = []byte("sender")
	logDataKeyCorrelation []byte = []byte("corr")
	logDataKeyRemote      []byte = []byte("raddr")
	logDataKeyPayload     []byte = []byte("data")
	logDataKeyTryNo       []byte = []byte("try_no")
	logDropReason         []byte = []byte("drop")
)

func (b *KeyValueBuffer) AddBytes(key []byte, value []byte) *KeyValueBuffer {
	if b.Len() > 0 {
		b.WriteByte(b.pairDelimiter)
	}
	b.Write(key)
	b.WriteByte(b.delimiter)
	b.Write(value)
	return b
}

func (b *KeyValueBuffer) Add(key []byte, value string) *KeyValueBuffer {
	if b.Len() > 0 {
		b.WriteByte(b.pairDelimiter)
	}
	b.Write(key)
	b.WriteByte(b.delimiter)
	b.WriteString(value)
	return b
}

func (b *KeyValueBuffer) AddInt(key []byte, value int) *KeyValueBuffer {
	return b.Add(key, strconv.Itoa(value))
}

func (b *KeyValueBuffer) AddUInt64(key []byte, value uint64) *KeyValueBuffer {
	return b.Add(key, strconv.FormatUint(value, 10))
}

func (b *KeyValueBuffer) AddType(t proto.MessageType) *KeyValueBuffer {
	return b.Add(logDataKeyType, t.String())
}

func (b *KeyValueBuffer) AddAckRequested(ack bool) *KeyValueBuffer {
	if ack {
		b.Add(logDataKeyAck, "1")
	}
	return b
}

func (b *KeyValueBuffer) AddPayloadLen(n int) *KeyValueBuffer {
	return b.AddInt(logDataKeyPayloadLen, n)
}

func (b *KeyValueBuffer) AddSender(id proto.Identity) *KeyValueBuffer {
	if !id.IsNil() {
		b.Add(logDataKeySender, id.String())
	}
	return b
}

func (b *KeyValueBuffer) AddCorrelation(c proto.Correlation) *KeyValueBuffer {
	return b.Add(logDataKeyCorrelation, c.String())
}

func (b *KeyValueBuffer) AddRemoteAddr(addr fmt.Stringer) *KeyValueBuffer {
	if addr != nil {
		b.Add(logDataKeyRemote, addr.String())
	}
	return b
}

// AddPayload logs at most the first 32 bytes of data in printable form.
func (b *KeyValueBuffer) AddPayload(data []byte) *KeyValueBuffer {
	const max = 32
	if len(data) > max {
		return b.Add(logDataKeyPayload, util.ToPrintableString(data[:max])+"...")
	}
	return b.Add(logDataKeyPayload, util.ToPrintableString(data))
}

func (b *KeyValueBuffer) AddDropReason(reason string) *KeyValueBuffer {
	return b.Add(logDropReason, reason)
}

func (b *KeyValueBuffer) AddDataTryNo(v int) *KeyValueBuffer {
	return b.AddInt(logDataKeyTryNo, v)
}

// AddFrameInfo adds the header fields of f. The token is never logged.
func (b *KeyValueBuffer) AddFrameInfo(f *proto.Frame) *KeyValueBuffer {
	return b.AddType(f.Type).AddAckRequested(f.AckRequested).AddPayloadLen(len(f.Payload)).AddSender(f.Sender)
}
