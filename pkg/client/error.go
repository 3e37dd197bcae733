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

package client

import (
	"udpmsg/internal/cli"
	"udpmsg/pkg/proto"
)

var (
	ErrDeliveryFailure     = cli.ErrDeliveryFailure
	ErrAckCancelled        = cli.ErrAckCancelled
	ErrReservedMessageType = cli.ErrReservedMessageType
	ErrNilListener         = cli.ErrNilListener

	ErrClientClosed   error = &cli.Error{What: "client closed"}
	ErrAlreadyRunning error = &cli.Error{What: "client already running"}
	ErrNilIdentity    error = &cli.Error{What: "identity not specified"}
	ErrNoResolver     error = &cli.Error{What: "no resolver for etcd endpoint"}
	// ErrAuth is never returned to a caller. It marks dropped frames in logs and in the
	// error handler.
	ErrAuth error = &cli.Error{What: "token validation failed"}

	ErrPayloadTooLarge = proto.ErrPayloadTooLarge
	ErrTruncated       = proto.ErrTruncated
)

type (
	IOError              = cli.IOError
	PayloadTooLargeError = proto.PayloadTooLargeError
)

// BindError is returned by New when the destination cannot be resolved or the socket
// cannot be bound.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return "BindError: " + e.Addr + ": " + e.Err.Error()
}

func (e *BindError) Unwrap() error {
	return e.Err
}

func (e *BindError) Retryable() bool { return false }
