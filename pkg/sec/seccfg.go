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
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"

	"udpmsg/pkg/proto"
	"udpmsg/pkg/util"
)

const (
	TokenAdapterNone = "none"
	TokenAdapterHMAC = "hmac"
)

var (
	DefaultConfig = Config{
		TokenAdapter: TokenAdapterNone,
		MaxTokenAge:  util.Duration{Duration: 5 * time.Minute},
	}
)

type Config struct {
	TokenAdapter     string
	KeyStoreFilePath string
	MaxTokenAge      util.Duration
}

func (c *Config) SetDefaultIfNotDefined() {
	if c.TokenAdapter == "" {
		c.TokenAdapter = DefaultConfig.TokenAdapter
	}
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.TokenAdapter) {
	case TokenAdapterNone:
	case TokenAdapterHMAC:
		if c.KeyStoreFilePath == "" {
			return fmt.Errorf("Sec.KeyStoreFilePath not specified for token adapter %s", c.TokenAdapter)
		}
	default:
		return fmt.Errorf("unknown token adapter %q", c.TokenAdapter)
	}
	return nil
}

func (c *Config) Dump() {
	glog.Infof("TokenAdapter : %s", c.TokenAdapter)
	glog.Infof("KeyStoreFilePath : %s", c.KeyStoreFilePath)
	glog.Infof("MaxTokenAge : %s", c.MaxTokenAge.Duration)
}

// NewTokenAdapter builds the adapter selected by cfg for identity.
func NewTokenAdapter(cfg *Config, identity proto.Identity) (ITokenAdapter, error) {
	c := *cfg
	c.SetDefaultIfNotDefined()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if strings.EqualFold(c.TokenAdapter, TokenAdapterNone) {
		return NoopTokenAdapter{}, nil
	}
	ks, err := LoadLocalFileStore(c.KeyStoreFilePath)
	if err != nil {
		return nil, err
	}
	return NewHMACTokenAdapter(ks, identity, c.MaxTokenAge.Duration), nil
}
