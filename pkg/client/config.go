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

package client

import (
	"fmt"
	"time"

	"github.com/golang/glog"

	"udpmsg/pkg/io"
	"udpmsg/pkg/proto"
	"udpmsg/pkg/util"
)

type Duration = util.Duration

type Config struct {
	Server io.ServiceEndpoint
	// LocalAddr is the address to bind; empty means any address, ephemeral port.
	LocalAddr string
	Appname   string

	// AckTimeout is the wait for an ack after the first send. Each resend doubles it,
	// up to MaxAckBackoff.
	AckTimeout    Duration
	MaxAckBackoff Duration
	// MaxAckRetries is the number of resends of an unacknowledged frame; 0 sends once.
	// SetDefault, not SetDefaultIfNotDefined, supplies the default.
	MaxAckRetries int
	// MaxReceiveErrors consecutive socket receive failures close the client.
	MaxReceiveErrors int
	// DisableAutoAck stops the client from answering ack-requested inbound frames.
	DisableAutoAck bool
	ReadBufferSize int
	ResolveTimeout Duration
}

var defaultConfig = Config{
	Appname:          "udpmsg",
	AckTimeout:       Duration{Duration: 200 * time.Millisecond},
	MaxAckBackoff:    Duration{Duration: 2 * time.Second},
	MaxAckRetries:    3,
	MaxReceiveErrors: 16,
	ResolveTimeout:   Duration{Duration: 2 * time.Second},
}

func (c *Config) SetDefault() {
	*c = defaultConfig
}

func (c *Config) SetDefaultIfNotDefined() {
	if c.Appname == "" {
		c.Appname = defaultConfig.Appname
	}
	if c.AckTimeout.Duration <= 0 {
		c.AckTimeout = defaultConfig.AckTimeout
	}
	if c.MaxAckBackoff.Duration <= 0 {
		c.MaxAckBackoff = defaultConfig.MaxAckBackoff
	}
	if c.MaxReceiveErrors <= 0 {
		c.MaxReceiveErrors = defaultConfig.MaxReceiveErrors
	}
	if c.ResolveTimeout.Duration <= 0 {
		c.ResolveTimeout = defaultConfig.ResolveTimeout
	}
}

func (c *Config) validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if len(c.Appname) == 0 {
		return fmt.Errorf("Config.Appname not specified.")
	}
	if c.MaxAckBackoff.Duration < c.AckTimeout.Duration {
		return fmt.Errorf("Config.MaxAckBackoff %s less than AckTimeout %s", c.MaxAckBackoff, c.AckTimeout)
	}
	if c.MaxAckRetries < 0 {
		return fmt.Errorf("Config.MaxAckRetries negative")
	}
	if c.ReadBufferSize < 0 {
		return fmt.Errorf("Config.ReadBufferSize negative")
	}
	return nil
}

func (c *Config) Dump() {
	glog.Infof("Server : %s", c.Server.GetConnString())
	glog.Infof("LocalAddr : %s", c.LocalAddr)
	glog.Infof("Appname : %s", c.Appname)
	glog.Infof("AckTimeout : %s", c.AckTimeout)
	glog.Infof("MaxAckBackoff : %s", c.MaxAckBackoff)
	glog.Infof("MaxAckRetries : %d", c.MaxAckRetries)
	glog.Infof("MaxReceiveErrors : %d", c.MaxReceiveErrors)
	glog.Infof("DisableAutoAck : %t", c.DisableAutoAck)
	glog.Infof("MaxPayloadSize : %d (%d with ack)", proto.MaxPayloadSize, proto.MaxAckPayloadSize)
}
