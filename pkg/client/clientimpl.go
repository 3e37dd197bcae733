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
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"udpmsg/internal/cli"
	"udpmsg/pkg/codec"
	"udpmsg/pkg/io"
	"udpmsg/pkg/io/ioutil"
	"udpmsg/pkg/logging"
	"udpmsg/pkg/logging/otel"
	"udpmsg/pkg/proto"
	"udpmsg/pkg/sec"
	"udpmsg/pkg/stats"
)

type clientImplT struct {
	config       Config
	identity     proto.Identity
	tokens       sec.ITokenAdapter
	serializer   codec.ISerializer
	errorHandler func(error)

	transport io.IDatagramTransport
	registry  *cli.Registry
	tracker   *cli.AckTracker
	stats     stats.ClientStats
	sequence  uint64
	// set while the receive loop runs listeners or the error handler
	dispatching int32

	mtx             sync.Mutex
	state           State
	closeOnce       sync.Once
	wg              sync.WaitGroup
	unregisterGauge func()
}

// New resolves conf.Server, binds the socket and returns a client in the Bound state.
func New(conf Config, identity proto.Identity, opts ...IOption) (IClient, error) {
	conf.SetDefaultIfNotDefined()
	if err := conf.validate(); err != nil {
		return nil, err
	}
	if identity.IsNil() {
		return nil, ErrNilIdentity
	}
	options := newOptionData(opts...)

	resolver := options.resolver
	if resolver == nil {
		if conf.Server.IsEtcd() {
			return nil, &BindError{Addr: conf.Server.Addr, Err: ErrNoResolver}
		}
		resolver = io.NetResolver{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), conf.ResolveTimeout.Duration)
	dest, err := resolver.Resolve(ctx, &conf.Server)
	cancel()
	if err != nil {
		return nil, &BindError{Addr: conf.Server.Addr, Err: err}
	}
	transport, err := io.NewDatagramTransport(conf.Server.GetNetwork(), conf.LocalAddr, dest)
	if err != nil {
		return nil, &BindError{Addr: conf.LocalAddr, Err: err}
	}
	if conf.ReadBufferSize > 0 {
		if err = transport.SetReadBuffer(conf.ReadBufferSize); err != nil {
			glog.Warningf("fail to set read buffer to %d: %s", conf.ReadBufferSize, err)
		}
	}

	client := &clientImplT{
		config:       conf,
		identity:     identity,
		tokens:       options.tokens,
		serializer:   options.serializer,
		errorHandler: options.errorHandler,
		transport:    transport,
		registry:     cli.NewRegistry(),
		state:        StateBound,
	}
	if client.tokens == nil {
		client.tokens = sec.NoopTokenAdapter{}
	}
	if client.serializer == nil {
		client.serializer = codec.RawCodec{}
	}
	client.tracker = cli.NewAckTracker(cli.TrackerConfig{
		AckTimeout: conf.AckTimeout.Duration,
		MaxRetries: conf.MaxAckRetries,
		MaxBackoff: conf.MaxAckBackoff.Duration,
	}, client.resend, client)
	client.unregisterGauge = otel.RegisterPendingAcksGauge(identity.String(), func() int64 {
		return int64(client.tracker.NumPending())
	})

	glog.Infof("client %s bound %s -> %s", identity, transport.LocalAddr(), dest)
	return client, nil
}

func (c *clientImplT) Start() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	switch c.state {
	case StateRunning:
		return ErrAlreadyRunning
	case StateClosed:
		return ErrClientClosed
	}
	c.state = StateRunning
	c.wg.Add(1)
	go c.receiveLoop()
	return nil
}

func (c *clientImplT) Close() error {
	c.shutdown(nil)
	// a callback closing the client runs on the receive loop and cannot wait for it
	if atomic.LoadInt32(&c.dispatching) == 0 {
		c.wg.Wait()
	}
	return nil
}

// shutdown may be called from the receive loop, so it never waits for it.
func (c *clientImplT) shutdown(reason error) {
	c.closeOnce.Do(func() {
		c.mtx.Lock()
		c.state = StateClosed
		c.mtx.Unlock()

		if err := c.transport.Close(); err != nil {
			glog.Warningf("close socket: %s", err)
		}
		c.tracker.Close()
		if c.unregisterGauge != nil {
			c.unregisterGauge()
		}
		if reason != nil {
			glog.Errorf("client %s closed: %s", c.identity, reason)
		} else {
			glog.Infof("client %s closed", c.identity)
		}
	})
}

func (c *clientImplT) State() State {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.state
}

func (c *clientImplT) Identity() proto.Identity {
	return c.identity
}

func (c *clientImplT) LocalAddr() *net.UDPAddr {
	return c.transport.LocalAddr()
}

func (c *clientImplT) RemoteAddr() *net.UDPAddr {
	return c.transport.RemoteAddr()
}

func (c *clientImplT) Stats() stats.Snapshot {
	snap := c.stats.Snapshot()
	snap.PendingAcks = c.tracker.NumPending()
	return snap
}

func (c *clientImplT) AddMessageListener(msgType proto.MessageType, l IMessageListener) error {
	return c.registry.Register(msgType, l)
}

func (c *clientImplT) AddMessageListenerFunc(msgType proto.MessageType, f func(sender proto.Identity, payload []byte) error) error {
	if f == nil {
		return ErrNilListener
	}
	return c.registry.Register(msgType, MessageListenerFunc(f))
}

func (c *clientImplT) Send(value interface{}, msgType proto.MessageType, ackRequested bool) (*Delivery, error) {
	if msgType.IsReserved() {
		return nil, ErrReservedMessageType
	}
	if c.State() == StateClosed {
		return nil, ErrClientClosed
	}
	payload, err := c.serializer.Serialize(value)
	if err != nil {
		return nil, err
	}
	if ackRequested {
		if sz := proto.EncodedSize(proto.AckHeaderSize + len(payload)); sz > proto.MaxDatagramSize {
			return nil, &PayloadTooLargeError{Size: sz, Limit: proto.MaxDatagramSize}
		}
	} else if sz := proto.EncodedSize(len(payload)); sz > proto.MaxDatagramSize {
		return nil, &PayloadTooLargeError{Size: sz, Limit: proto.MaxDatagramSize}
	}

	token, err := c.tokens.Produce()
	if err != nil {
		return nil, fmt.Errorf("produce token: %w", err)
	}

	if !ackRequested {
		frame, err := proto.Encode(&token, c.identity, false, msgType, payload)
		if err != nil {
			return nil, err
		}
		now := time.Now()
		if err = c.write(frame, msgType); err != nil {
			return nil, err
		}
		c.logSent(msgType, false, len(payload), nil)
		return cli.NewSentDelivery(now), nil
	}

	corr := proto.Correlation{Sender: c.identity, Sequence: atomic.AddUint64(&c.sequence, 1)}
	frame, err := proto.Encode(&token, c.identity, true, msgType, proto.PrependAckHeader(corr.Sequence, payload))
	if err != nil {
		return nil, err
	}
	delivery, err := c.tracker.Track(corr, frame)
	if err != nil {
		if err == ErrAckCancelled {
			err = ErrClientClosed
		}
		return nil, err
	}
	if err = c.write(frame, msgType); err != nil {
		c.tracker.Untrack(corr)
		return nil, err
	}
	c.logSent(msgType, true, len(payload), &corr)
	return delivery, nil
}

func (c *clientImplT) write(frame []byte, msgType proto.MessageType) error {
	if err := c.transport.SendDatagram(frame); err != nil {
		return &IOError{Op: "send", Err: err}
	}
	c.stats.Sent.Add(1)
	otel.RecordCount(otel.FramesSent, []otel.Tags{{TagName: otel.Type, TagValue: msgType.String()}})
	return nil
}

func (c *clientImplT) resend(frame []byte) error {
	msgType, _ := proto.PeekType(frame)
	return c.write(frame, msgType)
}

func (c *clientImplT) logSent(msgType proto.MessageType, ack bool, n int, corr *proto.Correlation) {
	if logging.LOG_DEBUG {
		b := logging.NewKVBufferForLog()
		b.AddType(msgType).AddAckRequested(ack).AddPayloadLen(n)
		if corr != nil {
			b.AddCorrelation(*corr)
		}
		glog.Infof("sent %s", b.String())
	}
}

func (c *clientImplT) receiveLoop() {
	defer c.wg.Done()
	// one spare byte detects datagrams above the limit
	buf := make([]byte, proto.MaxDatagramSize+1)
	numErrors := 0
	for {
		n, from, err := c.transport.ReceiveDatagram(buf)
		if err != nil {
			if ioutil.IsClosed(err) || c.State() == StateClosed {
				return
			}
			c.stats.ReceiveErrors.Add(1)
			otel.RecordCount(otel.ReceiveErrors, nil)
			ioutil.LogError(err)
			c.dispatch(func() { c.reportError(&IOError{Op: "receive", Err: err}) })
			if ioutil.IsTransient(err) {
				continue
			}
			numErrors++
			if numErrors >= c.config.MaxReceiveErrors {
				c.shutdown(fmt.Errorf("%d consecutive receive errors, last: %w", numErrors, err))
				return
			}
			continue
		}
		numErrors = 0
		c.dispatch(func() { c.onDatagram(buf[:n], from) })
	}
}

func (c *clientImplT) dispatch(f func()) {
	atomic.StoreInt32(&c.dispatching, 1)
	defer atomic.StoreInt32(&c.dispatching, 0)
	f()
}

func (c *clientImplT) onDatagram(b []byte, from *net.UDPAddr) {
	var frame proto.Frame
	if err := frame.Decode(b); err != nil {
		reason := otel.DropMalformed
		if errors.Is(err, proto.ErrTruncated) {
			reason = otel.DropTruncated
		} else if errors.Is(err, proto.ErrPayloadTooLarge) {
			reason = otel.DropOversized
		}
		c.drop(reason, nil, from, err)
		return
	}
	if !c.tokens.Validate(&frame.Token, frame.Sender) {
		c.drop(otel.DropAuth, &frame, from, ErrAuth)
		return
	}

	if frame.Type == proto.MessageTypeAck {
		var corr proto.Correlation
		if err := corr.SetFromBytes(frame.Payload); err != nil {
			c.drop(otel.DropMalformed, &frame, from, err)
			return
		}
		if !c.tracker.OnAck(corr) {
			c.drop(otel.DropUnknownAck, &frame, from, nil)
		}
		return
	}

	payload := frame.Payload
	if frame.AckRequested {
		seq, rest, err := proto.SplitAckHeader(payload)
		if err != nil {
			c.drop(otel.DropAckHeader, &frame, from, err)
			return
		}
		payload = rest
		if !c.config.DisableAutoAck {
			c.sendAck(proto.Correlation{Sender: frame.Sender, Sequence: seq})
		}
	}

	c.stats.Received.Add(1)
	otel.RecordCount(otel.FramesReceived, []otel.Tags{{TagName: otel.Type, TagValue: frame.Type.String()}})

	// b is reused by the next receive
	data := make([]byte, len(payload))
	copy(data, payload)

	invoked, errs := c.registry.Route(frame.Type, frame.Sender, data)
	if invoked == 0 {
		c.stats.Drop(otel.DropUnregistered)
		if logging.LOG_DEBUG {
			glog.Infof("no listener: %s", logging.NewKVBufferForLog().AddFrameInfo(&frame).String())
		}
		return
	}
	for _, lerr := range errs {
		c.stats.ListenerErrors.Add(1)
		otel.RecordCount(otel.ListenerErrors, []otel.Tags{{TagName: otel.Type, TagValue: frame.Type.String()}})
		glog.Warningf("%s sender=%s", lerr, frame.Sender)
		c.reportError(lerr)
	}
}

func (c *clientImplT) sendAck(corr proto.Correlation) {
	token, err := c.tokens.Produce()
	if err != nil {
		glog.Warningf("ack %s: produce token: %s", corr, err)
		return
	}
	frame, err := proto.Encode(&token, c.identity, false, proto.MessageTypeAck, corr.Bytes())
	if err != nil {
		glog.Warningf("ack %s: %s", corr, err)
		return
	}
	if err = c.write(frame, proto.MessageTypeAck); err != nil {
		glog.Warningf("ack %s: %s", corr, err)
	}
}

// drop never logs token bytes.
func (c *clientImplT) drop(reason string, frame *proto.Frame, from *net.UDPAddr, err error) {
	c.stats.Drop(reason)
	otel.RecordDrop(reason)
	if logging.LOG_DEBUG {
		b := logging.NewKVBufferForLog()
		if frame != nil {
			b.AddFrameInfo(frame)
		}
		b.AddRemoteAddr(from).AddDropReason(reason)
		if err != nil {
			glog.Infof("drop %s: %s", b.String(), err)
		} else {
			glog.Infof("drop %s", b.String())
		}
	}
}

func (c *clientImplT) reportError(err error) {
	if c.errorHandler != nil {
		c.errorHandler(err)
	}
}

func (c *clientImplT) OnAckConfirmed(p *cli.PendingAck, rtt time.Duration) {
	c.stats.AcksConfirmed.Add(1)
	c.stats.AckRtt.Put(rtt)
	otel.RecordCount(otel.AcksConfirmed, nil)
	otel.RecordAckRtt(otel.StatusConfirmed, rtt)
	if logging.LOG_DEBUG {
		b := logging.NewKVBufferForLog()
		b.AddCorrelation(p.Correlation()).AddDataTryNo(p.Attempts())
		glog.Infof("ack %s rtt=%s", b.String(), rtt)
	}
}

func (c *clientImplT) OnAckRetry(p *cli.PendingAck, err error) {
	c.stats.AckRetries.Add(1)
	otel.RecordCount(otel.AckRetries, nil)
	if logging.LOG_DEBUG {
		b := logging.NewKVBufferForLog()
		b.AddCorrelation(p.Correlation()).AddDataTryNo(p.Attempts())
		glog.Infof("resend %s next=%s", b.String(), time.Until(p.Deadline()).Round(time.Millisecond))
	}
}

func (c *clientImplT) OnDeliveryFailure(p *cli.PendingAck) {
	c.stats.DeliveryFailures.Add(1)
	otel.RecordCount(otel.DeliveryFailures, nil)
	otel.RecordAckRtt(otel.StatusFailed, time.Since(p.Delivery.SentAt()))
	b := logging.NewKVBufferForLog()
	b.AddCorrelation(p.Correlation()).AddDataTryNo(p.Attempts())
	glog.Warningf("delivery failure %s", b.String())
}
