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

package etcd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/golang/glog"

	"udpmsg/pkg/io"
)

var ErrKeyNotFound = errors.New("etcd key not found")

// IValueGetter is the part of EtcdClient the resolver needs.
type IValueGetter interface {
	GetValue(ctx context.Context, key string) (string, error)
}

// Resolver looks up the destination of an etcd:// endpoint. The stored value is host:port;
// a comma separated list is accepted and the first resolvable entry wins.
type Resolver struct {
	getter   IValueGetter
	fallback io.IResolver
}

func NewResolver(getter IValueGetter) *Resolver {
	return &Resolver{getter: getter, fallback: io.NetResolver{}}
}

func (r *Resolver) Resolve(ctx context.Context, endpoint *io.ServiceEndpoint) (*net.UDPAddr, error) {
	if !endpoint.IsEtcd() {
		return r.fallback.Resolve(ctx, endpoint)
	}
	key := endpoint.GetEtcdKey()
	if key == "" {
		return nil, fmt.Errorf("empty etcd key in %q", endpoint.Addr)
	}
	value, err := r.getter.GetValue(ctx, key)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, addr := range ParseAddrList(value) {
		var udpAddr *net.UDPAddr
		if udpAddr, lastErr = io.ResolveUDPAddr(ctx, endpoint.GetNetwork(), addr); lastErr == nil {
			if glog.V(2) {
				glog.Infof("etcd key %s resolved to %s", key, udpAddr)
			}
			return udpAddr, nil
		}
		glog.Warningf("etcd key %s: skip %s: %v", key, addr, lastErr)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no address stored under etcd key %s", key)
	}
	return nil, lastErr
}

func ParseAddrList(value string) (addrs []string) {
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			addrs = append(addrs, s)
		}
	}
	return
}
