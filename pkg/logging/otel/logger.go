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
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"

	otelCfg "udpmsg/pkg/logging/otel/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric/global"
	"go.opentelemetry.io/otel/metric/instrument"
	"go.opentelemetry.io/otel/metric/instrument/syncint64"
	"go.opentelemetry.io/otel/metric/unit"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregation"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

var (
	ackRttHistogramOnce      sync.Once
	framesSentCounterOnce    sync.Once
	framesRecvCounterOnce    sync.Once
	framesDropCounterOnce    sync.Once
	ackConfirmCounterOnce    sync.Once
	ackRetryCounterOnce      sync.Once
	deliveryFailCounterOnce  sync.Once
	listenerErrorCounterOnce sync.Once
	recvErrorCounterOnce     sync.Once
)

var ackRttHistogram syncint64.Histogram

type CMetric int

const (
	FramesSent CMetric = CMetric(iota)
	FramesReceived
	FramesDropped
	AcksConfirmed
	AckRetries
	DeliveryFailures
	ListenerErrors
	ReceiveErrors
)

type Tags struct {
	TagName  string
	TagValue string
}

const (
	Type   = string("type")
	Ack    = string("ack")
	Reason = string("reason")
	Status = string("status")
)

type countMetric struct {
	metricName    string
	metricDesc    string
	counter       syncint64.Counter
	createCounter *sync.Once
}

var countMetricMap map[CMetric]*countMetric = map[CMetric]*countMetric{
	FramesSent:       {"frames_sent", "Datagrams written to the socket, resends included", nil, &framesSentCounterOnce},
	FramesReceived:   {"frames_received", "Inbound frames that passed decoding and token validation", nil, &framesRecvCounterOnce},
	FramesDropped:    {"frames_dropped", "Inbound datagrams dropped before dispatch", nil, &framesDropCounterOnce},
	AcksConfirmed:    {"acks_confirmed", "Ack-requested sends confirmed by a matching ack", nil, &ackConfirmCounterOnce},
	AckRetries:       {"ack_retries", "Resends of unacknowledged frames", nil, &ackRetryCounterOnce},
	DeliveryFailures: {"delivery_failures", "Ack-requested sends that ran out of retries", nil, &deliveryFailCounterOnce},
	ListenerErrors:   {"listener_errors", "Listener invocations that returned an error or panicked", nil, &listenerErrorCounterOnce},
	ReceiveErrors:    {"receive_errors", "Socket receive failures", nil, &recvErrorCounterOnce},
}

const METRIC_PREFIX = "udpmsg.client."
const MeterName = "udpmsg-client-meter"

// Drop reasons
const (
	DropTruncated    string = "truncated"
	DropOversized    string = "oversized"
	DropMalformed    string = "malformed"
	DropAuth         string = "auth"
	DropAckHeader    string = "ack_header"
	DropUnknownAck   string = "unknown_ack"
	DropUnregistered string = "unregistered"
)

// Ack round trip status
const (
	StatusConfirmed string = "CONFIRMED"
	StatusFailed    string = "FAILED"
)

var (
	meterProvider *metric.MeterProvider
	providerMtx   sync.Mutex
)

// Initialize sets up the OTLP/HTTP meter provider when c.Enabled.
func Initialize(c *otelCfg.Config) (err error) {
	if c == nil {
		err = fmt.Errorf("nil otel config")
		glog.Error(err)
		return
	}
	if err = c.Validate(); err != nil {
		glog.Error(err)
		return
	}
	if !c.Enabled {
		return
	}
	c.Dump()
	return InitMetricProvider(c)
}

func InitMetricProvider(config *otelCfg.Config) error {
	providerMtx.Lock()
	defer providerMtx.Unlock()
	if meterProvider != nil {
		glog.Info("meter provider already initialized")
		return nil
	}

	ctx := context.Background()

	rttView := metric.NewView(
		metric.Instrument{
			Name:  "*ack_rtt*",
			Scope: instrumentation.Scope{Name: MeterName},
		},
		metric.Stream{
			Aggregation: aggregation.ExplicitBucketHistogram{
				Boundaries: config.AckRttBuckets,
			},
		})

	exp, err := NewHTTPExporter(ctx, config)
	if err != nil {
		return err
	}
	reader := metric.NewPeriodicReader(exp, metric.WithInterval(time.Duration(config.Resolution)*time.Second))
	meterProvider = NewMeterProvider(config.Poolname, reader, rttView)
	global.SetMeterProvider(meterProvider)
	glog.Infof("otel metrics exported to %s:%d every %ds", config.Host, config.Port, config.Resolution)
	return nil
}

func NewMeterProvider(appName string, reader metric.Reader, vis ...metric.View) *metric.MeterProvider {
	return metric.NewMeterProvider(
		metric.WithResource(getResourceInfo(appName)),
		metric.WithReader(reader),
		metric.WithView(vis...),
	)
}

func NewHTTPExporter(ctx context.Context, cfg *otelCfg.Config) (metric.Exporter, error) {
	var deltaTemporalitySelector = func(metric.InstrumentKind) metricdata.Temporality { return metricdata.DeltaTemporality }
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		otlpmetrichttp.WithURLPath("/" + cfg.UrlPath),
		// WithTimeout sets the max amount of time the Exporter will attempt an
		// export.
		otlpmetrichttp.WithTimeout(7 * time.Second),
		otlpmetrichttp.WithCompression(otlpmetrichttp.NoCompression),
		otlpmetrichttp.WithTemporalitySelector(deltaTemporalitySelector),
		otlpmetrichttp.WithRetry(otlpmetrichttp.RetryConfig{
			Enabled:         true,
			InitialInterval: 1 * time.Second,
			MaxInterval:     10 * time.Second,
			MaxElapsedTime:  240 * time.Second,
		}),
	}
	if !cfg.UseTls {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	return otlpmetrichttp.New(ctx, opts...)
}

// Shutdown flushes and stops the meter provider, if any.
func Shutdown(ctx context.Context) error {
	providerMtx.Lock()
	defer providerMtx.Unlock()
	if meterProvider == nil {
		return nil
	}
	err := meterProvider.Shutdown(ctx)
	meterProvider = nil
	return err
}

func IsEnabled() bool {
	providerMtx.Lock()
	defer providerMtx.Unlock()
	return meterProvider != nil
}

func GetHistogramForAckRtt() (syncint64.Histogram, error) {
	var err error
	ackRttHistogramOnce.Do(func() {
		meter := global.Meter(MeterName)
		ackRttHistogram, err = meter.SyncInt64().Histogram(
			PopulateMetricNamePrefix("ack_rtt"),
			instrument.WithDescription("Time from first send to ack receipt"),
			instrument.WithUnit(unit.Milliseconds),
		)
	})
	if ackRttHistogram == nil && err == nil {
		err = errors.New("Histogram Object not Ready")
	}
	return ackRttHistogram, err
}

func GetCounter(counterName CMetric) (syncint64.Counter, error) {
	if counterMetric, ok := countMetricMap[counterName]; ok {
		counterMetric.createCounter.Do(func() {
			meter := global.Meter(MeterName)
			counterMetric.counter, _ = meter.SyncInt64().Counter(
				PopulateMetricNamePrefix(counterMetric.metricName),
				instrument.WithDescription(counterMetric.metricDesc),
			)
		})
		if counterMetric.counter != nil {
			return counterMetric.counter, nil
		} else {
			return nil, errors.New("Counter Object not Ready")
		}
	} else {
		return nil, errors.New("No Such counter exists")
	}
}

func RecordAckRtt(status string, rtt time.Duration) {
	ctx := context.Background()
	if h, err := GetHistogramForAckRtt(); err == nil {
		h.Record(ctx, rtt.Milliseconds(), attribute.String(Status, status))
	}
}

func RecordCount(counterName CMetric, tags []Tags) {
	ctx := context.Background()
	if counter, err := GetCounter(counterName); err == nil {
		if len(tags) != 0 {
			counter.Add(ctx, 1, covertTagsToOTELAttributes(tags)...)
		} else {
			counter.Add(ctx, 1)
		}
	} else {
		glog.Error(err)
	}
}

func RecordDrop(reason string) {
	RecordCount(FramesDropped, []Tags{{Reason, reason}})
}

func covertTagsToOTELAttributes(tags []Tags) (attr []attribute.KeyValue) {
	attr = make([]attribute.KeyValue, len(tags))
	for i := 0; i < len(tags); i++ {
		attr[i] = attribute.String(tags[i].TagName, tags[i].TagValue)
	}
	return
}

func PopulateMetricNamePrefix(metricName string) string {
	return METRIC_PREFIX + metricName
}

func getResourceInfo(appName string) *resource.Resource {
	hostname, _ := os.Hostname()

	return resource.NewWithAttributes(semconv.SchemaURL,
		semconv.HostNameKey.String(hostname),
		semconv.ServiceNameKey.String(appName),
		attribute.String("application", appName),
	)
}
