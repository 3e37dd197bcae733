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

package cli

import (
	"fmt"
	"os"

	"udpmsg/pkg/cmd"
	"udpmsg/pkg/sec"
)

type cmdGenKeyT struct {
	cmd.Command
	optNumKeys uint
	optKeyLen  uint
	optOutFile string
}

func (c *cmdGenKeyT) Init(name string, desc string) {
	c.Command.Init(name, desc)
	c.UintOption(&c.optNumKeys, "n|num-keys", 3, "specify the number of keys")
	c.UintOption(&c.optKeyLen, "len", 32, "specify the key length in bytes")
	c.StringOption(&c.optOutFile, "o|output", "", "specify the key store file, stdout if empty")
}

func (c *cmdGenKeyT) Exec() {
	c.Validate()

	keys, err := sec.GenerateHexKeys(int(c.optNumKeys), int(c.optKeyLen))
	if err != nil {
		fmt.Println(err)
		return
	}
	if c.optOutFile == "" {
		err = sec.WriteLocalFileStore(os.Stdout, keys)
	} else if err = sec.SaveLocalFileStore(c.optOutFile, keys); err == nil {
		fmt.Printf("* %d keys written to %s\n", len(keys), c.optOutFile)
	}
	if err != nil {
		fmt.Println(err)
	}
}

func init() {
	genkey := &cmdGenKeyT{}
	genkey.Init("genkey", "generate a key store for the hmac token adapter")
	genkey.AddDetails("  The output is the file Sec.KeyStoreFilePath points to. Every peer of a\n  deployment loads the same key store.\n")
	genkey.AddExample(kClientAppName+" genkey -n 4 -o secrets.toml", "write four 32 byte keys")
	cmd.Register(genkey)
}
