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
	"fmt"
	"strings"
)

const (
	kEtcdScheme    = "etcd://"
	DefaultNetwork = "udp"
)

type (
	// ServiceEndpoint names the destination of a client. Addr is either host:port or
	// etcd://<key>, in which case the address is looked up in etcd.
	ServiceEndpoint struct {
		Addr    string
		Network string
	}
)

func (p *ServiceEndpoint) Validate() (err error) {
	if len(p.Addr) == 0 {
		err = fmt.Errorf("ServiceEndpoint.Addr not specified")
		return
	}
	switch p.GetNetwork() {
	case "udp", "udp4", "udp6":
	default:
		err = fmt.Errorf("ServiceEndpoint.Network %q not supported", p.Network)
	}
	return
}

func (p *ServiceEndpoint) GetNetwork() string {
	if p.Network == "" {
		return DefaultNetwork
	}
	return p.Network
}

func (p *ServiceEndpoint) IsEtcd() bool {
	return strings.HasPrefix(p.Addr, kEtcdScheme)
}

// GetEtcdKey returns the key part of an etcd:// address.
func (p *ServiceEndpoint) GetEtcdKey() string {
	return strings.TrimPrefix(p.Addr, kEtcdScheme)
}

func (p *ServiceEndpoint) GetConnString() (str string) {
	str = p.GetNetwork() + ":"
	if p.IsEtcd() || strings.Contains(p.Addr, ":") {
		str += p.Addr
	} else {
		str += ":" + p.Addr
	}
	return
}

// SetFromConnString accepts "host:port", "port", "udp4:host:port" and "etcd://key".
func (p *ServiceEndpoint) SetFromConnString(connStr string) error {
	str := strings.TrimSpace(connStr)
	if str == "" {
		return fmt.Errorf("empty connection string")
	}
	if strings.HasPrefix(str, kEtcdScheme) {
		p.Addr = str
		return nil
	}
	for _, n := range []string{"udp4:", "udp6:", "udp:"} {
		if strings.HasPrefix(str, n) {
			p.Network = strings.TrimSuffix(n, ":")
			str = strings.TrimPrefix(str, n)
			break
		}
	}
	if !strings.Contains(str, ":") {
		p.Addr = ":" + str
	} else {
		p.Addr = str
	}
	return nil
}
