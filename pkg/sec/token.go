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

// Package sec implements the token adapters guarding every frame.
package sec

import (
	"udpmsg/pkg/proto"
)

// ITokenAdapter produces the token of each outbound frame and validates the token of each
// inbound frame. Implementations must be safe for concurrent use.
type ITokenAdapter interface {
	// Produce is called once per outbound frame.
	Produce() (proto.Token, error)
	// Validate is called once per inbound frame, before dispatch.
	Validate(token *proto.Token, claimed proto.Identity) bool
}

const kNoopTokenFill = 0xF4

// NoopTokenAdapter is for deployments without authentication. Every token is accepted.
type NoopTokenAdapter struct{}

var noopToken = func() (t proto.Token) {
	for i := range t {
		t[i] = kNoopTokenFill
	}
	return
}()

func (NoopTokenAdapter) Produce() (proto.Token, error) {
	return noopToken, nil
}

func (NoopTokenAdapter) Validate(*proto.Token, proto.Identity) bool {
	return true
}
