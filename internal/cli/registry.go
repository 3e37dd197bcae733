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
	"sync"

	"udpmsg/pkg/proto"
)

// IMessageListener receives the sender identity and the raw payload of every validated
// inbound frame of the type it is registered for. The payload is shared by all listeners
// of the frame and must not be modified or retained past the call.
type IMessageListener interface {
	OnMessage(sender proto.Identity, payload []byte) error
}

type MessageListenerFunc func(sender proto.Identity, payload []byte) error

func (f MessageListenerFunc) OnMessage(sender proto.Identity, payload []byte) error {
	return f(sender, payload)
}

// Registry maps each message type to its listeners, in registration order.
// Registration is append-only.
type Registry struct {
	mtx       sync.RWMutex
	listeners [256][]IMessageListener
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Register(t proto.MessageType, l IMessageListener) error {
	if l == nil {
		return ErrNilListener
	}
	if t.IsReserved() {
		return ErrReservedMessageType
	}
	r.mtx.Lock()
	cur := r.listeners[t]
	ls := make([]IMessageListener, len(cur)+1)
	copy(ls, cur)
	ls[len(cur)] = l
	r.listeners[t] = ls
	r.mtx.Unlock()
	return nil
}

// Listeners returns the listeners of t. The slice is never modified after being returned.
func (r *Registry) Listeners(t proto.MessageType) []IMessageListener {
	r.mtx.RLock()
	ls := r.listeners[t]
	r.mtx.RUnlock()
	return ls
}

func (r *Registry) NumListeners(t proto.MessageType) int {
	return len(r.Listeners(t))
}

// Route invokes every listener of t in order, outside the registry lock. A listener that
// fails does not stop the others; each failure is returned.
func (r *Registry) Route(t proto.MessageType, sender proto.Identity, payload []byte) (invoked int, errs []*ListenerError) {
	ls := r.Listeners(t)
	for i, l := range ls {
		if err := invoke(l, sender, payload); err != nil {
			errs = append(errs, &ListenerError{Type: t, Index: i, Err: err})
		}
	}
	invoked = len(ls)
	return
}

func invoke(l IMessageListener, sender proto.Identity, payload []byte) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v}
		}
	}()
	return l.OnMessage(sender, payload)
}
