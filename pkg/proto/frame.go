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
	"io"

	"udpmsg/pkg/util"
)

// Frame is one datagram. A Frame is built per send and not modified after encoding.
type Frame struct {
	Token        Token
	Sender       Identity
	AckRequested bool
	Type         MessageType
	Payload      []byte
}

// EncodedSize returns the datagram size for a payload of n bytes.
func EncodedSize(n int) int {
	return HeaderSize + n
}

// Encode concatenates the frame fields in wire order. The result never exceeds
// MaxDatagramSize; an oversized frame yields *PayloadTooLargeError.
func Encode(token *Token, sender Identity, ackRequested bool, msgType MessageType, payload []byte) ([]byte, error) {
	sz := EncodedSize(len(payload))
	if sz > MaxDatagramSize {
		return nil, &PayloadTooLargeError{Size: sz, Limit: MaxDatagramSize}
	}
	b := make([]byte, sz)
	copy(b, token[:])
	copy(b[kOffsetIdentity:], sender[:])
	if ackRequested {
		b[kOffsetAckFlag] = 1
	}
	b[kOffsetType] = uint8(msgType)
	copy(b[HeaderSize:], payload)
	return b, nil
}

func (f *Frame) Encode() ([]byte, error) {
	return Encode(&f.Token, f.Sender, f.AckRequested, f.Type, f.Payload)
}

// Decode parses a datagram into a new Frame. The payload aliases b.
func Decode(b []byte) (*Frame, error) {
	f := &Frame{}
	if err := f.Decode(b); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Frame) Decode(b []byte) error {
	if len(b) < HeaderSize {
		return fmt.Errorf("%w: %d bytes, need at least %d", ErrTruncated, len(b), HeaderSize)
	}
	if len(b) > MaxDatagramSize {
		return &PayloadTooLargeError{Size: len(b), Limit: MaxDatagramSize}
	}
	switch b[kOffsetAckFlag] {
	case 0:
		f.AckRequested = false
	case 1:
		f.AckRequested = true
	default:
		return ErrInvalidAckFlag
	}
	copy(f.Token[:], b[:TokenSize])
	copy(f.Sender[:], b[kOffsetIdentity:kOffsetAckFlag])
	f.Type = MessageType(b[kOffsetType])
	f.Payload = b[HeaderSize:]
	return nil
}

// PeekType returns the message type of an encoded frame without decoding it.
func PeekType(b []byte) (t MessageType, ok bool) {
	if len(b) < HeaderSize {
		return
	}
	return MessageType(b[kOffsetType]), true
}

func (f *Frame) PrettyPrint(w io.Writer) {
	fmt.Fprintln(w, "Frame:")
	fmt.Fprintf(w, "  Sender\t:%s\n", f.Sender)
	fmt.Fprintf(w, "  AckRequested\t:%v\n", f.AckRequested)
	fmt.Fprintf(w, "  Type\t\t:%s\n", f.Type)
	fmt.Fprintf(w, "  PayloadLength\t:%d\n", len(f.Payload))
	if len(f.Payload) != 0 {
		fmt.Fprintf(w, "  Payload\t:%s\n", util.ToPrintableAndHexString(f.Payload))
	}
}
