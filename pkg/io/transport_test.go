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
	"bytes"
	"errors"
	"net"
	"testing"
	"time"

	"udpmsg/pkg/io/ioutil"
)

func newPeer(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestDatagramTransportRoundTrip(t *testing.T) {
	peer := newPeer(t)
	tr, err := NewDatagramTransport("udp", "127.0.0.1:0", peer.LocalAddr().(*net.UDPAddr))
	if err != nil {
		t.Fatal(err)
	}
	defer tr.Close()

	if err = tr.SendDatagram([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 64)
	peer.SetReadDeadline(time.Now().Add(time.Second))
	n, from, err := peer.ReadFromUDP(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "hello" {
		t.Errorf("peer got %q", buf[:n])
	}
	if from.Port != tr.LocalAddr().Port {
		t.Errorf("source port %d, transport bound %d", from.Port, tr.LocalAddr().Port)
	}

	// replies come back on the same socket
	reply := bytes.Repeat([]byte{0xAB}, 32)
	if _, err = peer.WriteToUDP(reply, from); err != nil {
		t.Fatal(err)
	}
	n, from, err = tr.ReceiveDatagram(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf[:n], reply) || from.Port != peer.LocalAddr().(*net.UDPAddr).Port {
		t.Errorf("got %d bytes from %s", n, from)
	}
	if tr.RemoteAddr().String() != peer.LocalAddr().String() {
		t.Errorf("remote %s", tr.RemoteAddr())
	}
}

func TestDatagramTransportCloseWakesReceiver(t *testing.T) {
	peer := newPeer(t)
	tr, err := NewDatagramTransport("", "", peer.LocalAddr().(*net.UDPAddr))
	if err != nil {
		t.Fatal(err)
	}
	chErr := make(chan error, 1)
	go func() {
		_, _, err := tr.ReceiveDatagram(make([]byte, 16))
		chErr <- err
	}()
	time.Sleep(20 * time.Millisecond)
	if err = tr.Close(); err != nil {
		t.Fatal(err)
	}
	select {
	case err = <-chErr:
		if !ioutil.IsClosed(err) {
			t.Errorf("expected closed error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("receiver not woken by Close")
	}
	if err = tr.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if err = tr.SendDatagram([]byte("x")); !ioutil.IsClosed(err) {
		t.Errorf("send after close: %v", err)
	}
}

func TestNewDatagramTransportErrors(t *testing.T) {
	if _, err := NewDatagramTransport("udp", "", nil); err == nil {
		t.Error("nil destination accepted")
	}
	peer := newPeer(t)
	_, err := NewDatagramTransport("udp", peer.LocalAddr().String(), peer.LocalAddr().(*net.UDPAddr))
	if err == nil {
		t.Fatal("bound an address already in use")
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		t.Errorf("unexpected error type %T", err)
	}
	if ioutil.IsTransient(err) {
		t.Errorf("bind failure reported transient: %v", err)
	}
}
