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

package sec

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"udpmsg/pkg/proto"
	"udpmsg/pkg/util"
)

var (
	ErrFailToGetSigningKey = errors.New("fail to get signing key")
	ErrNoKeyFound          = errors.New("no key found in key store")
)

// IKeyStore supplies token signing keys. The key version travels inside the token.
type IKeyStore interface {
	GetSigningKey(id proto.Identity) (key []byte, version uint32, err error)
	GetVerificationKey(version uint32) (key []byte, err error)
	NumKeys() int
}

type LocalFileStore struct {
	keys    [][]byte
	numKeys int
}

type localSecretsConfig struct {
	HexKeys []string `toml:"hexKeys"`
}

// LoadLocalFileStore reads a TOML file with a hexKeys array.
func LoadLocalFileStore(path string) (*LocalFileStore, error) {
	secretcfg := &localSecretsConfig{}
	if _, err := toml.DecodeFile(path, secretcfg); err != nil {
		return nil, err
	}
	return NewLocalFileStore(secretcfg.HexKeys)
}

// GenerateHexKeys returns n random keys of keyLen bytes, hex encoded.
func GenerateHexKeys(n int, keyLen int) (hexKeys []string, err error) {
	if n <= 0 || keyLen <= 0 {
		return nil, fmt.Errorf("invalid key generation request: %d keys of %d bytes", n, keyLen)
	}
	key := make([]byte, keyLen)
	for i := 0; i < n; i++ {
		if _, err = io.ReadFull(rand.Reader, key); err != nil {
			return nil, err
		}
		hexKeys = append(hexKeys, hex.EncodeToString(key))
	}
	return
}

// WriteLocalFileStore encodes hexKeys in the format LoadLocalFileStore reads.
func WriteLocalFileStore(w io.Writer, hexKeys []string) error {
	return toml.NewEncoder(w).Encode(&localSecretsConfig{HexKeys: hexKeys})
}

// SaveLocalFileStore writes the key store to path, readable by the owner only.
func SaveLocalFileStore(path string, hexKeys []string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err = WriteLocalFileStore(f, hexKeys); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func NewLocalFileStore(hexKeys []string) (*LocalFileStore, error) {
	numKeys := len(hexKeys)
	if numKeys == 0 {
		return nil, ErrNoKeyFound
	}
	ks := &LocalFileStore{
		keys:    make([][]byte, numKeys),
		numKeys: numKeys,
	}
	var err error
	for i, str := range hexKeys {
		if ks.keys[i], err = hex.DecodeString(str); err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		if len(ks.keys[i]) == 0 {
			return nil, fmt.Errorf("key %d: empty", i)
		}
	}
	return ks, nil
}

// GetSigningKey picks a key by hashing the identity, so one client keeps signing with
// the same key version.
func (ks *LocalFileStore) GetSigningKey(id proto.Identity) (key []byte, version uint32, err error) {
	version = util.GetIndexByKey(id.Bytes(), uint32(ks.numKeys))
	key = ks.keys[version]
	return
}

func (ks *LocalFileStore) GetVerificationKey(version uint32) (key []byte, err error) {
	if int(version) >= ks.numKeys {
		err = ErrFailToGetSigningKey
		return
	}
	key = ks.keys[version]
	return
}

func (ks *LocalFileStore) NumKeys() int {
	return ks.numKeys
}
