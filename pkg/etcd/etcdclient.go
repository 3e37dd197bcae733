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
	"time"

	"github.com/golang/glog"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.etcd.io/etcd/client/v3/namespace"
)

var (
	errNotInitialized = errors.New("etcd client not initialized")
)

// etcd client wrapper
type EtcdClient struct {
	config    Config
	keyPrefix string
	client    *clientv3.Client
}

func NewEtcdClient(config *Config) (*EtcdClient, error) {
	var client *clientv3.Client
	cfg := *config
	cfg.SetDefaultIfNotDefined()
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	for i := 0; i < cfg.MaxConnectAttempts; i++ {
		client, err = clientv3.New(cfg.Config)
		if err == nil {
			break
		}
		if client != nil {
			client.Close()
		}
		if i >= cfg.MaxConnectAttempts-1 {
			glog.Warningf("etcd: %v.", err)
			return nil, err
		}

		glog.Warningf("etcd: %v. Retry ...", err)
		backoff := (i + 1) * 2
		if backoff > cfg.MaxConnectBackoff {
			backoff = cfg.MaxConnectBackoff
		}
		time.Sleep(time.Duration(backoff) * time.Second)
	}
	if client == nil {
		return nil, errNotInitialized
	}

	etcdcli := &EtcdClient{
		client:    client,
		config:    cfg,
		keyPrefix: cfg.KeyPrefix,
	}
	etcdcli.client.KV = namespace.NewKV(client.KV, etcdcli.keyPrefix)
	return etcdcli, nil
}

func (e *EtcdClient) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// GetValue reads a single key under the configured prefix.
func (e *EtcdClient) GetValue(ctx context.Context, k string) (value string, err error) {
	if e.client == nil {
		err = errNotInitialized
		return
	}
	ctx, cancel := context.WithTimeout(ctx, e.config.RequestTimeout.Duration)
	defer cancel()

	var resp *clientv3.GetResponse
	resp, err = e.client.Get(ctx, k)
	if err != nil {
		glog.Errorf("etcd get %s%s: %v", e.keyPrefix, k, err)
		return
	}
	switch sz := len(resp.Kvs); sz {
	case 1:
		value = string(resp.Kvs[0].Value)
	case 0:
		err = fmt.Errorf("%w: %s%s", ErrKeyNotFound, e.keyPrefix, k)
	default: /// not seem to be possible
		err = fmt.Errorf("unexpected response. %s", k)
	}
	return
}
