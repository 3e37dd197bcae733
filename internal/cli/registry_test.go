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
	"errors"
	"testing"

	"udpmsg/pkg/proto"
)

func TestRouteInOrder(t *testing.T) {
	r := NewRegistry()
	sender := proto.NewIdentity()
	var order []int
	var got [][]byte
	for i := 0; i < 3; i++ {
		i := i
		if err := r.Register(0x02, MessageListenerFunc(func(id proto.Identity, payload []byte) error {
			if id != sender {
				t.Errorf("listener %d: sender %s", i, id)
			}
			order = append(order, i)
			got = append(got, payload)
			return nil
		})); err != nil {
			t.Fatal(err)
		}
	}
	n, errs := r.Route(0x02, sender, []byte("x"))
	if n != 3 || errs != nil {
		t.Fatalf("invoked=%d errs=%v", n, errs)
	}
	for i, v := range order {
		if v != i {
			t.Errorf("order %v", order)
			break
		}
	}
	for _, p := range got {
		if string(p) != "x" {
			t.Errorf("payload %q", p)
		}
	}
}

func TestRouteUnregistered(t *testing.T) {
	r := NewRegistry()
	r.Register(0x01, MessageListenerFunc(func(proto.Identity, []byte) error {
		t.Error("unexpected invocation")
		return nil
	}))
	if n, errs := r.Route(0x03, proto.NilIdentity, nil); n != 0 || errs != nil {
		t.Errorf("invoked=%d errs=%v", n, errs)
	}
}

func TestRouteIsolatesFailures(t *testing.T) {
	r := NewRegistry()
	errBoom := errors.New("boom")
	calls := 0
	r.Register(0x05, MessageListenerFunc(func(proto.Identity, []byte) error { calls++; return errBoom }))
	r.Register(0x05, MessageListenerFunc(func(proto.Identity, []byte) error { calls++; panic("bad listener") }))
	r.Register(0x05, MessageListenerFunc(func(proto.Identity, []byte) error { calls++; return nil }))

	n, errs := r.Route(0x05, proto.NilIdentity, []byte("p"))
	if n != 3 || calls != 3 {
		t.Fatalf("invoked=%d calls=%d", n, calls)
	}
	if len(errs) != 2 {
		t.Fatalf("errs %v", errs)
	}
	if errs[0].Index != 0 || !errors.Is(errs[0], errBoom) {
		t.Errorf("first error %v", errs[0])
	}
	var perr *PanicError
	if errs[1].Index != 1 || !errors.As(errs[1], &perr) || perr.Value != "bad listener" {
		t.Errorf("second error %v", errs[1])
	}
	if errs[1].Type != 0x05 {
		t.Errorf("type %s", errs[1].Type)
	}
}

func TestRegisterRejects(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(proto.MessageTypeAck, MessageListenerFunc(func(proto.Identity, []byte) error { return nil })); err != ErrReservedMessageType {
		t.Errorf("got %v", err)
	}
	if err := r.Register(0x01, nil); err != ErrNilListener {
		t.Errorf("got %v", err)
	}
	if r.NumListeners(proto.MessageTypeAck) != 0 || r.NumListeners(0x01) != 0 {
		t.Error("rejected listener was stored")
	}
}

func TestListenersSnapshot(t *testing.T) {
	r := NewRegistry()
	f := MessageListenerFunc(func(proto.Identity, []byte) error { return nil })
	r.Register(0x01, f)
	before := r.Listeners(0x01)
	r.Register(0x01, f)
	if len(before) != 1 || r.NumListeners(0x01) != 2 {
		t.Errorf("before=%d now=%d", len(before), r.NumListeners(0x01))
	}
}
