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
	"encoding/binary"
	"fmt"
)

type (
	MessageType uint8
	Token       [TokenSize]byte
)

type ProtocolError struct {
	what string
}

const (
	MaxDatagramSize = 1024
	TokenSize       = 500
	IdentitySize    = 16

	kOffsetIdentity = TokenSize
	kOffsetAckFlag  = kOffsetIdentity + IdentitySize
	kOffsetType     = kOffsetAckFlag + 1

	HeaderSize     = kOffsetType + 1 // 518
	MaxPayloadSize = MaxDatagramSize - HeaderSize

	AckHeaderSize     = 8
	MaxAckPayloadSize = MaxPayloadSize - AckHeaderSize
	CorrelationSize   = IdentitySize + AckHeaderSize
)

const (
	MessageTypeAck = MessageType(0xFF)
)

var (
	EncByteOrder = binary.BigEndian
)

func (t MessageType) String() string {
	if t == MessageTypeAck {
		return "Ack"
	}
	return fmt.Sprintf("0x%02X", uint8(t))
}

func (t MessageType) IsReserved() bool {
	return t == MessageTypeAck
}

var (
	ErrTruncated          = &ProtocolError{"frame truncated"}
	ErrPayloadTooLarge    = &ProtocolError{"payload too large"}
	ErrInvalidAckFlag     = &ProtocolError{"invalid ack flag"}
	ErrInvalidAckHeader   = &ProtocolError{"invalid ack header"}
	ErrInvalidCorrelation = &ProtocolError{"invalid correlation"}
	ErrInvalidIdentity    = &ProtocolError{"invalid identity"}
)

func (e *ProtocolError) Error() string {
	return "ProtocolError: " + e.what
}

// PayloadTooLargeError is returned when an encoded frame would not fit into one datagram.
// errors.Is(err, ErrPayloadTooLarge) holds for it.
type PayloadTooLargeError struct {
	Size  int
	Limit int
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("ProtocolError: message of size %d is longer than allowed size of %d", e.Size, e.Limit)
}

func (e *PayloadTooLargeError) Is(target error) bool {
	return target == ErrPayloadTooLarge
}
