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
	"net"
	"sync"

	"github.com/golang/glog"
)

// IDatagramTransport is what a client needs from its socket.
type IDatagramTransport interface {
	SendDatagram(b []byte) error
	ReceiveDatagram(buf []byte) (n int, from *net.UDPAddr, err error)
	LocalAddr() *net.UDPAddr
	RemoteAddr() *net.UDPAddr
	Close() error
}

// DatagramTransport owns one bound UDP socket and the destination fixed at construction.
//
// SendDatagram may be called from any number of goroutines. ReceiveDatagram must be called
// by a single owner.
type DatagramTransport struct {
	conn      *net.UDPConn
	dest      *net.UDPAddr
	closeOnce sync.Once
	closeErr  error
}

// NewDatagramTransport binds network/localAddr (empty means every local address, an
// ephemeral port) and targets dest.
func NewDatagramTransport(network string, localAddr string, dest *net.UDPAddr) (t *DatagramTransport, err error) {
	if dest == nil {
		return nil, fmt.Errorf("nil destination")
	}
	if network == "" {
		network = DefaultNetwork
	}
	laddr := &net.UDPAddr{}
	if localAddr != "" {
		if laddr, err = net.ResolveUDPAddr(network, localAddr); err != nil {
			return
		}
	}
	var conn *net.UDPConn
	if conn, err = net.ListenUDP(network, laddr); err != nil {
		return
	}
	t = &DatagramTransport{
		conn: conn,
		dest: dest,
	}
	if glog.V(2) {
		glog.Infof("bound %s -> %s", conn.LocalAddr(), dest)
	}
	return
}

func (t *DatagramTransport) SendDatagram(b []byte) error {
	n, err := t.conn.WriteToUDP(b, t.dest)
	if err == nil && n != len(b) {
		err = fmt.Errorf("short write %d of %d bytes to %s", n, len(b), t.dest)
	}
	return err
}

// ReceiveDatagram blocks until a datagram arrives or the transport is closed.
func (t *DatagramTransport) ReceiveDatagram(buf []byte) (n int, from *net.UDPAddr, err error) {
	return t.conn.ReadFromUDP(buf)
}

// SetReadBuffer sets the socket receive buffer size.
func (t *DatagramTransport) SetReadBuffer(bytes int) error {
	return t.conn.SetReadBuffer(bytes)
}

func (t *DatagramTransport) LocalAddr() *net.UDPAddr {
	return t.conn.LocalAddr().(*net.UDPAddr)
}

func (t *DatagramTransport) RemoteAddr() *net.UDPAddr {
	return t.dest
}

// Close releases the socket and wakes a blocked ReceiveDatagram.
func (t *DatagramTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}
