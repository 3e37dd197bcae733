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

package ioutil

import (
	"errors"
	"net"
	"os"
	"syscall"

	"github.com/golang/glog"
)

// IsClosed reports whether err comes from using a closed socket.
func IsClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

// IsTransient reports whether a socket error is worth retrying the read for.
func IsTransient(err error) bool {
	if err == nil || IsClosed(err) {
		return false
	}
	if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
		return true
	}
	var sErr *os.SyscallError
	if errors.As(err, &sErr) {
		switch sErr.Err {
		case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.EINTR, syscall.EAGAIN, syscall.ENOBUFS:
			return true
		}
	}
	return false
}

func LogError(err error) {
	if err == nil {
		return
	}
	if IsClosed(err) {
		if glog.V(2) {
			glog.InfoDepth(1, err)
		}
		return
	}
	if IsTransient(err) {
		glog.WarningDepth(1, err)
	} else {
		glog.ErrorDepth(1, err)
	}
}
