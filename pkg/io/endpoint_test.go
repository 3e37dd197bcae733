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
	"testing"
	"time"
)

func TestServiceEndpointSetFromConnString(t *testing.T) {
	tests := []struct {
		in      string
		addr    string
		network string
		conn    string
	}{
		{"127.0.0.1:5000", "127.0.0.1:5000", "", "udp:127.0.0.1:5000"},
		{"5000", ":5000", "", "udp::5000"},
		{"udp4:localhost:5000", "localhost:5000", "udp4", "udp4:localhost:5000"},
		{"udp6:[::1]:5000", "[::1]:5000", "udp6", "udp6:[::1]:5000"},
		{" etcd://udpmsg.server ", "etcd://udpmsg.server", "", "udp:etcd://udpmsg.server"},
	}
	for _, test := range tests {
		var ep ServiceEndpoint
		if err := ep.SetFromConnString(test.in); err != nil {
			t.Errorf("%q: %s", test.in, err)
			continue
		}
		if ep.Addr != test.addr || ep.Network != test.network {
			t.Errorf("%q: got addr=%q network=%q", test.in, ep.Addr, ep.Network)
		}
		if s := ep.GetConnString(); s != test.conn {
			t.Errorf("%q: conn string %q, expected %q", test.in, s, test.conn)
		}
	}
	var ep ServiceEndpoint
	if err := ep.SetFromConnString("  "); err == nil {
		t.Error("empty connection string accepted")
	}
}

func TestServiceEndpointValidate(t *testing.T) {
	ep := ServiceEndpoint{Addr: "etcd://svc"}
	if err := ep.Validate(); err != nil {
		t.Error(err)
	}
	if !ep.IsEtcd() || ep.GetEtcdKey() != "svc" {
		t.Errorf("etcd key %q", ep.GetEtcdKey())
	}
	if ep.GetNetwork() != DefaultNetwork {
		t.Errorf("network %q", ep.GetNetwork())
	}
	if err := (&ServiceEndpoint{}).Validate(); err == nil {
		t.Error("empty address accepted")
	}
	if err := (&ServiceEndpoint{Addr: "127.0.0.1:1", Network: "tcp"}).Validate(); err == nil {
		t.Error("tcp accepted")
	}
}

func TestNetResolver(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	addr, err := NetResolver{}.Resolve(ctx, &ServiceEndpoint{Addr: "127.0.0.1:7001"})
	if err != nil {
		t.Fatal(err)
	}
	if !addr.IP.IsLoopback() || addr.Port != 7001 {
		t.Errorf("resolved %s", addr)
	}
	if _, err = (NetResolver{}).Resolve(ctx, &ServiceEndpoint{Addr: "no-port"}); err == nil {
		t.Error("address without port accepted")
	}

	cancel()
	if _, err = (NetResolver{}).Resolve(ctx, &ServiceEndpoint{Addr: "127.0.0.1:7001"}); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
