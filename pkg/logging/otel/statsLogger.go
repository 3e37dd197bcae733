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

package otel

import (
	"context"
	"sync"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/global"
	"go.opentelemetry.io/otel/metric/instrument"
	"go.opentelemetry.io/otel/metric/instrument/asyncint64"
)

var (
	pendingAcksOnce  sync.Once
	pendingAcksGauge asyncint64.Gauge

	gaugeMtx     sync.Mutex
	gaugeSources = map[string]func() int64{}
)

// RegisterPendingAcksGauge reports probe() under id as the number of unacknowledged frames.
// The returned function removes the source.
func RegisterPendingAcksGauge(id string, probe func() int64) (unregister func()) {
	pendingAcksOnce.Do(initPendingAcksGauge)

	gaugeMtx.Lock()
	gaugeSources[id] = probe
	gaugeMtx.Unlock()
	return func() {
		gaugeMtx.Lock()
		delete(gaugeSources, id)
		gaugeMtx.Unlock()
	}
}

func initPendingAcksGauge() {
	meter := global.Meter(MeterName)
	var err error
	pendingAcksGauge, err = meter.AsyncInt64().Gauge(
		PopulateMetricNamePrefix("pending_acks"),
		instrument.WithDescription("Frames waiting for an ack"),
	)
	if err != nil {
		glog.Warningf("pending_acks gauge: %v", err)
		return
	}
	if err = meter.RegisterCallback(
		[]instrument.Asynchronous{pendingAcksGauge},
		func(ctx context.Context) {
			gaugeMtx.Lock()
			defer gaugeMtx.Unlock()
			for id, probe := range gaugeSources {
				pendingAcksGauge.Observe(ctx, probe(), attribute.String("client", id))
			}
		},
	); err != nil {
		glog.Warningf("pending_acks callback: %v", err)
	}
}
