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

package io

import (
	"context"
	"net"
)

// IResolver turns an endpoint into the socket address frames are sent to.
type IResolver interface {
	Resolve(ctx context.Context, endpoint *ServiceEndpoint) (*net.UDPAddr, error)
}

type ResolverFunc func(ctx context.Context, endpoint *ServiceEndpoint) (*net.UDPAddr, error)

func (f ResolverFunc) Resolve(ctx context.Context, endpoint *ServiceEndpoint) (*net.UDPAddr, error) {
	return f(ctx, endpoint)
}

// NetResolver resolves host:port through the system resolver.
type NetResolver struct{}

func (NetResolver) Resolve(ctx context.Context, endpoint *ServiceEndpoint) (*net.UDPAddr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ResolveUDPAddr(ctx, endpoint.GetNetwork(), endpoint.Addr)
}

// ResolveUDPAddr is net.ResolveUDPAddr honoring ctx for the host lookup.
func ResolveUDPAddr(ctx context.Context, network string, addr string) (*net.UDPAddr, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	if host == "" || net.ParseIP(host) != nil {
		return net.ResolveUDPAddr(network, addr)
	}
	ips, err := net.DefaultResolver.LookupIP(ctx, ipNetwork(network), host)
	if err != nil {
		return nil, err
	}
	return net.ResolveUDPAddr(network, net.JoinHostPort(ips[0].String(), port))
}

func ipNetwork(network string) string {
	switch network {
	case "udp4":
		return "ip4"
	case "udp6":
		return "ip6"
	}
	return "ip"
}
