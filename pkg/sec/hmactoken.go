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

package sec

import (
	"crypto/hmac"
	"crypto/rand"
	"time"

	"golang.org/x/crypto/sha3"

	"udpmsg/pkg/proto"
)

// token layout
//   [0:4]   key version
//   [4:12]  issue time, unix nanoseconds
//   [12:28] identity
//   [28:44] nonce
//   [44:76] HMAC-SHA3-256 over [0:44]
//   [76:]   zero
const (
	kTokenOffVersion  = 0
	kTokenOffIssued   = 4
	kTokenOffIdentity = 12
	kTokenOffNonce    = kTokenOffIdentity + proto.IdentitySize
	kTokenOffMac      = kTokenOffNonce + 16
	kTokenMacSize     = 32
	kTokenUsedSize    = kTokenOffMac + kTokenMacSize
)

// HMACTokenAdapter signs tokens for one identity with keys from an IKeyStore.
type HMACTokenAdapter struct {
	ks       IKeyStore
	identity proto.Identity
	maxAge   time.Duration
	now      func() time.Time
}

// NewHMACTokenAdapter returns an adapter signing for identity. A zero maxAge disables the
// token age check.
func NewHMACTokenAdapter(ks IKeyStore, identity proto.Identity, maxAge time.Duration) *HMACTokenAdapter {
	return &HMACTokenAdapter{
		ks:       ks,
		identity: identity,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

func (a *HMACTokenAdapter) Produce() (token proto.Token, err error) {
	var key []byte
	var version uint32
	if key, version, err = a.ks.GetSigningKey(a.identity); err != nil {
		return
	}
	proto.EncByteOrder.PutUint32(token[kTokenOffVersion:], version)
	proto.EncByteOrder.PutUint64(token[kTokenOffIssued:], uint64(a.now().UnixNano()))
	copy(token[kTokenOffIdentity:], a.identity[:])
	if _, err = rand.Read(token[kTokenOffNonce:kTokenOffMac]); err != nil {
		return
	}
	copy(token[kTokenOffMac:], computeMac(key, token[:kTokenOffMac]))
	return
}

func (a *HMACTokenAdapter) Validate(token *proto.Token, claimed proto.Identity) bool {
	key, err := a.ks.GetVerificationKey(proto.EncByteOrder.Uint32(token[kTokenOffVersion:]))
	if err != nil {
		return false
	}
	if !hmac.Equal(computeMac(key, token[:kTokenOffMac]), token[kTokenOffMac:kTokenUsedSize]) {
		return false
	}
	var signed proto.Identity
	copy(signed[:], token[kTokenOffIdentity:kTokenOffNonce])
	if !signed.Equal(claimed) {
		return false
	}
	if a.maxAge > 0 {
		issued := time.Unix(0, int64(proto.EncByteOrder.Uint64(token[kTokenOffIssued:])))
		age := a.now().Sub(issued)
		if age > a.maxAge || age < -a.maxAge {
			return false
		}
	}
	return true
}

func computeMac(key []byte, data []byte) []byte {
	mac := hmac.New(sha3.New256, key)
	mac.Write(data)
	return mac.Sum(nil)
}
