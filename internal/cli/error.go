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

package cli

import (
	"fmt"

	"udpmsg/pkg/proto"
)

type IRetryable interface {
	Retryable() bool
}

type Error struct {
	What string
}

func (e *Error) Retryable() bool { return false }

type RetryableError struct {
	What string
}

func (e *RetryableError) Retryable() bool { return true }

func (e *Error) Error() string {
	return "error: " + e.What
}

func (e *RetryableError) Error() string {
	return "error: " + e.What
}

func NewError(err error) *Error {
	return &Error{
		What: err.Error(),
	}
}

func NewErrorWithString(err string) *Error {
	return &Error{err}
}

var (
	ErrDeliveryFailure     = &RetryableError{"delivery failure: no ack received"}
	ErrAckCancelled        = &Error{"ack wait cancelled"}
	ErrReservedMessageType = &Error{"message type reserved for acks"}
	ErrNilListener         = &Error{"nil listener"}
)

// IOError wraps a socket failure. Op is "send" or "receive".
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Retryable() bool { return true }

func (e *IOError) Error() string {
	return "IOError: " + e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ListenerError reports a listener that returned an error or panicked.
type ListenerError struct {
	Type  proto.MessageType
	Index int
	Err   error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %d for type %s: %s", e.Index, e.Type, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}

// PanicError carries the value recovered from a panicking listener.
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
