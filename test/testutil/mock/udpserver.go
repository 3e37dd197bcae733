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

// Package mock provides an in-process datagram peer for client tests.
package mock

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/golang/glog"

	"udpmsg/pkg/proto"
	"udpmsg/pkg/sec"
)

type ReceivedFrame struct {
	Raw   []byte
	Frame *proto.Frame
	From  *net.UDPAddr
	// Err is set when Raw does not decode.
	Err error
}

// UDPServer listens on a loopback port, records every datagram it receives and optionally
// acks ack-requested frames.
type UDPServer struct {
	config Config
	tokens sec.ITokenAdapter
	conn   *net.UDPConn

	mtx       sync.Mutex
	received  []*ReceivedFrame
	acksSent  int
	ackDrops  int
	lastPeer  *net.UDPAddr
	chArrival chan *ReceivedFrame
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewUDPServer(config Config) (*UDPServer, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		return nil, err
	}
	if config.Identity.IsNil() {
		config.Identity = proto.NewIdentity()
	}
	s := &UDPServer{
		config:    config,
		tokens:    config.Tokens,
		conn:      conn,
		chArrival: make(chan *ReceivedFrame, 1024),
	}
	if s.tokens == nil {
		s.tokens = sec.NoopTokenAdapter{}
	}
	s.wg.Add(1)
	go s.serve()
	return s, nil
}

func (s *UDPServer) Addr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}

func (s *UDPServer) Identity() proto.Identity {
	return s.config.Identity
}

func (s *UDPServer) SetAutoAck(on bool) {
	s.mtx.Lock()
	s.config.AutoAck = on
	s.mtx.Unlock()
}

func (s *UDPServer) Close() {
	s.closeOnce.Do(func() {
		s.conn.Close()
	})
	s.wg.Wait()
}

func (s *UDPServer) serve() {
	defer s.wg.Done()
	buf := make([]byte, 64*1024)
	for {
		n, from, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		raw := make([]byte, n)
		copy(raw, buf[:n])
		rf := &ReceivedFrame{Raw: raw, From: from}
		rf.Frame, rf.Err = proto.Decode(raw)
		ackable := rf.Err == nil && rf.Frame.AckRequested

		s.mtx.Lock()
		s.received = append(s.received, rf)
		s.lastPeer = from
		autoAck := s.config.AutoAck && ackable
		if autoAck && s.ackDrops < s.config.DropFirstAcks {
			s.ackDrops++
			autoAck = false
		}
		s.mtx.Unlock()

		if autoAck {
			if seq, _, err := proto.SplitAckHeader(rf.Frame.Payload); err == nil {
				if err = s.SendAck(from, proto.Correlation{Sender: rf.Frame.Sender, Sequence: seq}); err != nil {
					glog.Warningf("mock ack: %s", err)
				}
			}
		}
		select {
		case s.chArrival <- rf:
		default:
		}
	}
}

// Received returns the datagrams received so far.
func (s *UDPServer) Received() []*ReceivedFrame {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	out := make([]*ReceivedFrame, len(s.received))
	copy(out, s.received)
	return out
}

func (s *UDPServer) NumReceived() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.received)
}

func (s *UDPServer) NumAcksSent() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.acksSent
}

// LastPeer is the source address of the last datagram received.
func (s *UDPServer) LastPeer() *net.UDPAddr {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.lastPeer
}

// WaitFrame returns the next datagram to arrive.
func (s *UDPServer) WaitFrame(timeout time.Duration) (*ReceivedFrame, error) {
	select {
	case rf := <-s.chArrival:
		return rf, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("no datagram within %s", timeout)
	}
}

// Loopback maps a wildcard bind address onto 127.0.0.1, keeping the port.
func Loopback(addr *net.UDPAddr) *net.UDPAddr {
	if addr.IP == nil || addr.IP.IsUnspecified() {
		return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: addr.Port}
	}
	return addr
}

// SendRaw writes b as is to addr.
func (s *UDPServer) SendRaw(addr *net.UDPAddr, b []byte) error {
	_, err := s.conn.WriteToUDP(b, addr)
	return err
}

// SendFrame encodes and sends a frame from the server's identity. For an ack-requested
// frame payload must already carry the ack header.
func (s *UDPServer) SendFrame(addr *net.UDPAddr, ackRequested bool, t proto.MessageType, payload []byte) error {
	return s.SendFrameAs(addr, s.config.Identity, ackRequested, t, payload)
}

func (s *UDPServer) SendFrameAs(addr *net.UDPAddr, sender proto.Identity, ackRequested bool, t proto.MessageType, payload []byte) error {
	token, err := s.tokens.Produce()
	if err != nil {
		return err
	}
	b, err := proto.Encode(&token, sender, ackRequested, t, payload)
	if err != nil {
		return err
	}
	return s.SendRaw(addr, b)
}

func (s *UDPServer) SendAck(addr *net.UDPAddr, corr proto.Correlation) error {
	if err := s.SendFrame(addr, false, proto.MessageTypeAck, corr.Bytes()); err != nil {
		return err
	}
	s.mtx.Lock()
	s.acksSent++
	s.mtx.Unlock()
	return nil
}
