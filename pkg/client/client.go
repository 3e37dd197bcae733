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

/*
Package client implements the datagram messaging client.

A client owns one UDP socket bound to an ephemeral port and a destination resolved once at
construction. Every outbound value is serialized, framed with a token and the client's
identity, and written as a single datagram of at most 1024 bytes. Inbound frames are
decoded, their token validated, and the payload handed to the listeners registered for
the frame's message type.

States

  Bound    New returned; Send and AddMessageListener are available
  Running  Start launched the receive loop
  Closed   Close released the socket; outstanding deliveries fail with ErrAckCancelled

Errors returned by Send

  * nil
  * *PayloadTooLargeError (errors.Is ErrPayloadTooLarge), nothing written
  * ErrReservedMessageType
  * ErrClientClosed
  * *IOError, the socket write failed

Errors reported by Delivery.Err for an ack-requested send

  * nil, the ack arrived
  * ErrDeliveryFailure (wrapped), retries exhausted
  * ErrAckCancelled, the client was closed first
*/
package client

import (
	"net"

	"udpmsg/internal/cli"
	"udpmsg/pkg/proto"
	"udpmsg/pkg/stats"
)

type (
	Delivery            = cli.Delivery
	IMessageListener    = cli.IMessageListener
	MessageListenerFunc = cli.MessageListenerFunc
	ListenerError       = cli.ListenerError
)

type IClient interface {
	// Start launches the receive loop.
	Start() error
	// Send serializes value and writes it as one frame of type msgType. With ackRequested
	// the returned Delivery completes when the ack arrives or retries run out; Send itself
	// never waits for the ack.
	Send(value interface{}, msgType proto.MessageType, ackRequested bool) (*Delivery, error)
	AddMessageListener(msgType proto.MessageType, l IMessageListener) error
	AddMessageListenerFunc(msgType proto.MessageType, f func(sender proto.Identity, payload []byte) error) error
	// Close releases the socket and fails pending deliveries with ErrAckCancelled. It waits
	// for the receive loop unless it is called from a listener or the error handler.
	Close() error

	State() State
	Identity() proto.Identity
	LocalAddr() *net.UDPAddr
	RemoteAddr() *net.UDPAddr
	Stats() stats.Snapshot
}

type State int32

const (
	StateUnbound State = iota
	StateBound
	StateRunning
	StateClosed
)

var stateNames = [...]string{"Unbound", "Bound", "Running", "Closed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}
