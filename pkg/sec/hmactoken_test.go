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
	"testing"
	"time"

	"udpmsg/pkg/proto"
)

func newTestAdapter(t *testing.T, id proto.Identity, maxAge time.Duration) *HMACTokenAdapter {
	ks, err := NewLocalFileStore([]string{
		"dbe438a35bc06a1a633e763e81973175dbca256c68c36e46206b091914969344",
		"fbee433c6745699db387f1190e8a39e8b447861ec4a2612f92c8b35b317a228f",
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewHMACTokenAdapter(ks, id, maxAge)
}

func TestHMACTokenValidate(t *testing.T) {
	id := proto.NewIdentity()
	a := newTestAdapter(t, id, time.Minute)
	token, err := a.Produce()
	if err != nil {
		t.Fatal(err)
	}
	if !a.Validate(&token, id) {
		t.Error("fresh token rejected")
	}
	if a.Validate(&token, proto.NewIdentity()) {
		t.Error("token accepted for another identity")
	}

	tampered := token
	tampered[kTokenOffNonce] ^= 0xFF
	if a.Validate(&tampered, id) {
		t.Error("tampered token accepted")
	}

	badVersion := token
	proto.EncByteOrder.PutUint32(badVersion[kTokenOffVersion:], 7)
	if a.Validate(&badVersion, id) {
		t.Error("token with unknown key version accepted")
	}

	var zero proto.Token
	if a.Validate(&zero, id) {
		t.Error("zero token accepted")
	}
}

func TestHMACTokenExpired(t *testing.T) {
	id := proto.NewIdentity()
	a := newTestAdapter(t, id, time.Minute)
	issued := time.Now()
	a.now = func() time.Time { return issued }
	token, err := a.Produce()
	if err != nil {
		t.Fatal(err)
	}
	a.now = func() time.Time { return issued.Add(2 * time.Minute) }
	if a.Validate(&token, id) {
		t.Error("expired token accepted")
	}
	a.now = func() time.Time { return issued.Add(-2 * time.Minute) }
	if a.Validate(&token, id) {
		t.Error("token from the future accepted")
	}
	a.maxAge = 0
	if !a.Validate(&token, id) {
		t.Error("token rejected with age check disabled")
	}
}

func TestTokensDiffer(t *testing.T) {
	id := proto.NewIdentity()
	a := newTestAdapter(t, id, 0)
	t1, _ := a.Produce()
	t2, _ := a.Produce()
	if t1 == t2 {
		t.Error("two tokens are identical")
	}
}

func TestNoopTokenAdapter(t *testing.T) {
	var a ITokenAdapter = NoopTokenAdapter{}
	token, err := a.Produce()
	if err != nil {
		t.Fatal(err)
	}
	for i := range token {
		if token[i] != kNoopTokenFill {
			t.Fatalf("byte %d = %d", i, token[i])
		}
	}
	var zero proto.Token
	if !a.Validate(&zero, proto.NilIdentity) {
		t.Error("noop adapter rejected a token")
	}
}

func TestNewTokenAdapter(t *testing.T) {
	id := proto.NewIdentity()
	a, err := NewTokenAdapter(&Config{}, id)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := a.(NoopTokenAdapter); !ok {
		t.Errorf("expected NoopTokenAdapter, got %T", a)
	}

	if _, err = NewTokenAdapter(&Config{TokenAdapter: TokenAdapterHMAC}, id); err == nil {
		t.Error("expected error without key store path")
	}
	if _, err = NewTokenAdapter(&Config{TokenAdapter: "kms"}, id); err == nil {
		t.Error("expected error for unknown adapter")
	}

	cfg := &Config{TokenAdapter: TokenAdapterHMAC, KeyStoreFilePath: createLocalKeystoreFile(t)}
	if a, err = NewTokenAdapter(cfg, id); err != nil {
		t.Fatal(err)
	}
	token, err := a.Produce()
	if err != nil {
		t.Fatal(err)
	}
	if !a.Validate(&token, id) {
		t.Error("token rejected")
	}
}
