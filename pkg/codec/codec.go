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

// Package codec implements payload adapters turning application values into frame payloads.
//
// Inbound payloads are handed to listeners undecoded. Listeners that know the shape of a
// message type may use the Deserialize side of the same adapter.
package codec

import (
	"encoding"
	"errors"
	"fmt"
)

var ErrNotSerializable = errors.New("codec: value not serializable")

type (
	// ISerializer turns an outbound value into payload bytes.
	ISerializer interface {
		Serialize(v interface{}) ([]byte, error)
	}

	IDeserializer interface {
		Deserialize(data []byte, v interface{}) error
	}

	ICodec interface {
		ISerializer
		IDeserializer
	}

	// ISerializable is implemented by values that know their own wire form.
	ISerializable interface {
		Serialize() []byte
	}

	SerializerFunc func(v interface{}) ([]byte, error)
)

func (f SerializerFunc) Serialize(v interface{}) ([]byte, error) {
	return f(v)
}

// RawCodec passes bytes through. It accepts []byte, string, ISerializable and
// encoding.BinaryMarshaler.
type RawCodec struct{}

func (RawCodec) Serialize(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	case ISerializable:
		return t.Serialize(), nil
	case encoding.BinaryMarshaler:
		return t.MarshalBinary()
	}
	return nil, fmt.Errorf("%w: %T", ErrNotSerializable, v)
}

// Deserialize copies data into *[]byte or *string, or calls UnmarshalBinary.
func (RawCodec) Deserialize(data []byte, v interface{}) error {
	switch t := v.(type) {
	case *[]byte:
		*t = append((*t)[:0], data...)
	case *string:
		*t = string(data)
	case encoding.BinaryUnmarshaler:
		return t.UnmarshalBinary(data)
	default:
		return fmt.Errorf("codec: cannot deserialize into %T", v)
	}
	return nil
}
