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
	"udpmsg/pkg/codec"
	"udpmsg/pkg/io"
	"udpmsg/pkg/sec"
)

type optionData struct {
	tokens       sec.ITokenAdapter
	serializer   codec.ISerializer
	resolver     io.IResolver
	errorHandler func(error)
}

type IOption func(data interface{})

// WithTokenAdapter sets the adapter producing and validating frame tokens.
// The default accepts every token.
func WithTokenAdapter(a sec.ITokenAdapter) IOption {
	return func(i interface{}) {
		if data, ok := i.(*optionData); ok {
			data.tokens = a
		}
	}
}

// WithSerializer sets the payload adapter used by Send. The default is codec.RawCodec.
func WithSerializer(s codec.ISerializer) IOption {
	return func(i interface{}) {
		if data, ok := i.(*optionData); ok {
			data.serializer = s
		}
	}
}

// WithResolver sets how Config.Server is turned into a socket address.
func WithResolver(r io.IResolver) IOption {
	return func(i interface{}) {
		if data, ok := i.(*optionData); ok {
			data.resolver = r
		}
	}
}

// WithErrorHandler receives listener failures (*ListenerError) and receive loop
// failures (*IOError). It is called from the receive loop.
func WithErrorHandler(f func(error)) IOption {
	return func(i interface{}) {
		if data, ok := i.(*optionData); ok {
			data.errorHandler = f
		}
	}
}

func newOptionData(opts ...IOption) *optionData {
	data := &optionData{}
	for _, op := range opts {
		op(data)
	}
	return data
}
