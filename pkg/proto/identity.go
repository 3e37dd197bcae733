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
	"bytes"
	"fmt"

	uuid "github.com/satori/go.uuid"
)

// Identity is the 128-bit id of a client instance. It travels as raw bytes.
type Identity [IdentitySize]byte

var NilIdentity = Identity{}

func NewIdentity() Identity {
	return Identity(uuid.NewV4())
}

func IdentityFromString(str string) (id Identity, err error) {
	var u uuid.UUID
	if u, err = uuid.FromString(str); err == nil {
		id = Identity(u)
	}
	return
}

func IdentityFromBytes(b []byte) (id Identity, err error) {
	err = id.SetFromBytes(b)
	return
}

func (id *Identity) SetFromBytes(b []byte) error {
	if len(b) != IdentitySize {
		return fmt.Errorf("%w: %d bytes", ErrInvalidIdentity, len(b))
	}
	copy((*id)[:], b)
	return nil
}

func (id Identity) Bytes() []byte {
	return id[:]
}

func (id Identity) String() string {
	return uuid.UUID(id).String()
}

func (id Identity) IsNil() bool {
	return id.Equal(NilIdentity)
}

func (id Identity) Equal(other Identity) bool {
	return bytes.Equal(id[:], other[:])
}
