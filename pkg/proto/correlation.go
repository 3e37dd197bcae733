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

package proto

import (
	"fmt"
)

// Correlation identifies one ack-requested frame: its sender plus the sender's sequence.
type Correlation struct {
	Sender   Identity
	Sequence uint64
}

func (c Correlation) Bytes() []byte {
	b := make([]byte, CorrelationSize)
	copy(b, c.Sender[:])
	EncByteOrder.PutUint64(b[IdentitySize:], c.Sequence)
	return b
}

func (c *Correlation) SetFromBytes(b []byte) error {
	if len(b) != CorrelationSize {
		return ErrInvalidCorrelation
	}
	copy(c.Sender[:], b[:IdentitySize])
	c.Sequence = EncByteOrder.Uint64(b[IdentitySize:])
	return nil
}

func (c Correlation) String() string {
	return fmt.Sprintf("%s/%d", c.Sender, c.Sequence)
}

// PrependAckHeader returns a new slice holding seq followed by payload.
func PrependAckHeader(seq uint64, payload []byte) []byte {
	b := make([]byte, AckHeaderSize+len(payload))
	EncByteOrder.PutUint64(b, seq)
	copy(b[AckHeaderSize:], payload)
	return b
}

// SplitAckHeader separates the sequence from the application payload. rest aliases payload.
func SplitAckHeader(payload []byte) (seq uint64, rest []byte, err error) {
	if len(payload) < AckHeaderSize {
		err = ErrInvalidAckHeader
		return
	}
	seq = EncByteOrder.Uint64(payload)
	rest = payload[AckHeaderSize:]
	return
}
