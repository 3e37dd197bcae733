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

package codec

import (
	"fmt"

	"github.com/golang/snappy"
)

// SnappyCodec compresses the output of another codec with snappy block encoding.
// Compression does not hide content.
type SnappyCodec struct {
	inner ICodec
}

func NewSnappyCodec(inner ICodec) *SnappyCodec {
	if inner == nil {
		inner = RawCodec{}
	}
	return &SnappyCodec{inner: inner}
}

func (s *SnappyCodec) Serialize(v interface{}) ([]byte, error) {
	b, err := s.inner.Serialize(v)
	if err != nil {
		return nil, err
	}
	return snappy.Encode(nil, b), nil
}

func (s *SnappyCodec) Deserialize(data []byte, v interface{}) error {
	b, err := snappy.Decode(nil, data)
	if err != nil {
		return fmt.Errorf("codec: snappy: %w", err)
	}
	return s.inner.Deserialize(b, v)
}
