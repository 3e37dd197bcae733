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
	"context"
	"encoding/hex"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/golang/glog"

	"udpmsg/pkg/client"
	"udpmsg/pkg/cmd"
	"udpmsg/pkg/codec"
	"udpmsg/pkg/etcd"
	"udpmsg/pkg/logging"
	"udpmsg/pkg/logging/otel"
	otelCfg "udpmsg/pkg/logging/otel/config"
	"udpmsg/pkg/proto"
	"udpmsg/pkg/sec"
	"udpmsg/pkg/util"
)

const (
	kClientAppName        = "udpmsgcli"
	kDefaultServerAddress = "127.0.0.1:5010"
)

type (
	clientCommandT struct {
		cmd.Command
		client.Config

		secConfig  sec.Config
		etcdConfig etcd.Config
		otelConfig otelCfg.Config
		identity   proto.Identity

		optLogLevel      string
		optCfgFile       string
		optServerAddr    string
		optLocalAddr     string
		optAppName       string
		optIdentity      string
		optMsgType       uint
		optSnappy        bool
		optEtcdEndpoints util.StringListFlags
	}

	cmdSendT struct {
		clientCommandT
		value []byte

		optValueType uint
		optValueLen  uint
		optAck       bool
		optCount     uint
		optInterval  time.Duration
		optWait      time.Duration
	}

	cmdListenT struct {
		clientCommandT
		optAllTypes bool
		optHexDump  bool
		optDuration time.Duration
		optHello    string
	}
)

func (c *clientCommandT) Init(name string, desc string) {
	c.Command.Init(name, desc)
	c.Config.SetDefault()
	c.secConfig = sec.DefaultConfig
	c.etcdConfig = etcd.DefaultConfig()

	c.StringOption(&c.optServerAddr, "s|server", kDefaultServerAddress, "specify server address, host:port or etcd://<key>")
	c.StringOption(&c.optLocalAddr, "l|local", "", "specify local address to bind")
	c.StringOption(&c.optAppName, "appname", kClientAppName, "specify appname")
	c.StringOption(&c.optIdentity, "id|identity", "", "specify sender identity (uuid), generated if empty")
	c.UintOption(&c.optMsgType, "t|type", 1, "specify message type, 0-254")
	c.BoolOption(&c.optSnappy, "snappy", false, "compress payloads with snappy")
	c.ValueOption(&c.optEtcdEndpoints, "etcd", "specify etcd endpoint. may be repeated")
	c.StringOption(&c.optLogLevel, "log-level", "info", "specify log level")
	c.StringOption(&c.optCfgFile, "c|config", "", "specify toml configuration file name")
}

func (c *clientCommandT) Parse(args []string) (err error) {
	if err = c.Command.Parse(args); err != nil {
		return
	}
	logging.InitLogging(c.optLogLevel, " [cli] ")
	tmp := &struct {
		Client *client.Config
		Sec    *sec.Config
		Etcd   *etcd.Config
		Otel   *otelCfg.Config
	}{Client: &c.Config, Sec: &c.secConfig, Etcd: &c.etcdConfig, Otel: &c.otelConfig}

	if len(c.optCfgFile) != 0 {
		if _, err = toml.DecodeFile(c.optCfgFile, tmp); err != nil {
			err = fmt.Errorf("failed to load config file %s. %w", c.optCfgFile, err)
			return
		}
	}
	if c.Server.Addr == "" || c.optServerAddr != kDefaultServerAddress {
		if err = c.Server.SetFromConnString(c.optServerAddr); err != nil {
			return
		}
	}
	if c.optLocalAddr != "" {
		c.LocalAddr = c.optLocalAddr
	}
	if c.Appname == "" || c.optAppName != kClientAppName {
		c.Appname = c.optAppName
	}
	if len(c.optEtcdEndpoints) != 0 {
		c.etcdConfig.Endpoints = c.optEtcdEndpoints
	}
	if c.optMsgType > 0xFF || proto.MessageType(c.optMsgType).IsReserved() {
		err = fmt.Errorf("message type %d not allowed", c.optMsgType)
		return
	}
	if c.optIdentity != "" {
		c.identity, err = proto.IdentityFromString(c.optIdentity)
	} else {
		c.identity = proto.NewIdentity()
	}
	return
}

func (c *clientCommandT) msgType() proto.MessageType {
	return proto.MessageType(c.optMsgType)
}

// newClient builds a bound client from the command's config. The returned function
// releases the client and whatever it was resolved through.
func (c *clientCommandT) newClient() (cli client.IClient, release func(), err error) {
	if c.otelConfig.Enabled {
		if c.otelConfig.Poolname == "" {
			c.otelConfig.Poolname = kClientAppName
		}
		if err = otel.Initialize(&c.otelConfig); err != nil {
			glog.Warningf("otel not initialized: %s", err)
		}
	}
	tokens, err := sec.NewTokenAdapter(&c.secConfig, c.identity)
	if err != nil {
		return
	}
	opts := []client.IOption{
		client.WithTokenAdapter(tokens),
		client.WithErrorHandler(func(e error) {
			fmt.Printf("* error: %s\n", e)
		}),
	}
	if c.optSnappy {
		opts = append(opts, client.WithSerializer(codec.NewSnappyCodec(nil)))
	}
	var etcdCli *etcd.EtcdClient
	if c.Server.IsEtcd() {
		if etcdCli, err = etcd.NewEtcdClient(&c.etcdConfig); err != nil {
			return
		}
		opts = append(opts, client.WithResolver(etcd.NewResolver(etcdCli)))
	}
	if logging.LOG_DEBUG {
		c.Config.Dump()
	}
	cli, err = client.New(c.Config, c.identity, opts...)
	if etcdCli != nil {
		// the destination is fixed once bound
		etcdCli.Close()
	}
	if err != nil {
		return
	}
	release = func() {
		cli.Close()
		if otel.IsEnabled() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			otel.Shutdown(ctx)
			cancel()
		}
	}
	return
}

func (c *clientCommandT) printStats(cli client.IClient) {
	st := cli.Stats()
	st.PrettyPrint(os.Stdout)
}

func (c *cmdSendT) Init(name string, desc string) {
	c.clientCommandT.Init(name, desc)
	c.UintOption(&c.optValueType, "vt|value-type", 0, "specify the type of the value. \n   \t0 - string value\n   \t1 - hex value\n   \t2 - generated value")
	c.UintOption(&c.optValueLen, "vl|value-len", 64, "specify the length of the value if value-type is 2")
	c.BoolOption(&c.optAck, "ack", false, "request an ack for each message")
	c.UintOption(&c.optCount, "n|count", 1, "specify the number of messages to send")
	c.DurationOption(&c.optInterval, "i|interval", 0, "specify the pause between two sends")
	c.DurationOption(&c.optWait, "w|wait", 5*time.Second, "specify how long to wait for an ack")
	c.SetSynopsis("[option] <value>")
}

func (c *cmdSendT) Parse(args []string) (err error) {
	if err = c.clientCommandT.Parse(args); err != nil {
		return
	}
	switch c.optValueType {
	case 0:
		if c.NArg() < 1 {
			err = fmt.Errorf("missing value")
			return
		}
		c.value = []byte(c.Arg(0))
	case 1:
		if c.NArg() < 1 {
			err = fmt.Errorf("missing value")
			return
		}
		c.value, err = hex.DecodeString(c.Arg(0))
	case 2:
		c.value = make([]byte, c.optValueLen)
		rand.Seed(time.Now().UnixNano())
		rand.Read(c.value)
	default:
		err = fmt.Errorf("not supported")
	}
	return
}

func (c *cmdSendT) Exec() {
	c.Validate()

	cli, release, err := c.newClient()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer release()
	if err = cli.Start(); err != nil {
		fmt.Println(err)
		return
	}

	var wg sync.WaitGroup
	for i := uint(0); i < c.optCount; i++ {
		if i != 0 && c.optInterval > 0 {
			time.Sleep(c.optInterval)
		}
		d, err := cli.Send(c.value, c.msgType(), c.optAck)
		if err != nil {
			c.isOk(i, err)
			continue
		}
		if !d.AckRequested() {
			c.isOk(i, nil)
			continue
		}
		wg.Add(1)
		go func(i uint, d *client.Delivery) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), c.optWait)
			defer cancel()
			if c.isOk(i, d.Wait(ctx)) {
				fmt.Printf("  corr=%s rtt=%s\n", d.Correlation(), d.RoundTrip())
			}
		}(i, d)
	}
	wg.Wait()
	c.printStats(cli)
}

func (c *cmdSendT) isOk(i uint, err error) bool {
	if err == nil {
		fmt.Printf("* %s #%d successful\n", c.GetName(), i)
		return true
	}
	fmt.Printf("* %s #%d failed: %s\n", c.GetName(), i, err)
	return false
}

func (c *cmdListenT) Init(name string, desc string) {
	c.clientCommandT.Init(name, desc)
	c.BoolOption(&c.optAllTypes, "a|all", false, "listen to every message type")
	c.BoolOption(&c.optHexDump, "x|hexdump", false, "print payloads as a hex dump")
	c.DurationOption(&c.optDuration, "d|duration", 0, "stop after the duration, 0 waits for a signal")
	c.StringOption(&c.optHello, "hello", "", "send the value once to the server so it learns the local address")
}

func (c *cmdListenT) Exec() {
	c.Validate()

	cli, release, err := c.newClient()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer release()

	var mtx sync.Mutex
	listener := func(t proto.MessageType) client.MessageListenerFunc {
		return func(sender proto.Identity, payload []byte) error {
			mtx.Lock()
			fmt.Printf("* type=%s sender=%s len=%d\n", t, sender, len(payload))
			if c.optHexDump {
				fmt.Print(util.HexDumpString(payload))
			} else {
				fmt.Printf("  %s\n", util.ToPrintableAndHexString(payload))
			}
			mtx.Unlock()
			return nil
		}
	}
	if c.optAllTypes {
		for t := 0; t < int(proto.MessageTypeAck); t++ {
			cli.AddMessageListener(proto.MessageType(t), listener(proto.MessageType(t)))
		}
	} else if err = cli.AddMessageListener(c.msgType(), listener(c.msgType())); err != nil {
		fmt.Println(err)
		return
	}
	if err = cli.Start(); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("* listening on %s as %s\n", cli.LocalAddr(), cli.Identity())
	if c.optHello != "" {
		if _, err = cli.Send(c.optHello, c.msgType(), false); err != nil {
			fmt.Println(err)
		}
	}

	chSignal := make(chan os.Signal, 1)
	signal.Notify(chSignal, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(chSignal)
	var chTimeout <-chan time.Time
	if c.optDuration > 0 {
		chTimeout = time.After(c.optDuration)
	}
	select {
	case <-chSignal:
	case <-chTimeout:
	}
	c.printStats(cli)
}

func init() {
	send := &cmdSendT{}
	send.Init("send", "send a message")
	send.AddExample(kClientAppName+" send -s 127.0.0.1:5010 -t 1 ping", "send ping as message type 1")
	send.AddExample(kClientAppName+" send -s etcd://server -etcd 127.0.0.1:2379 -ack -n 10 -vt 2 -vl 100", "send 10 generated 100 byte values, each acknowledged")

	listen := &cmdListenT{}
	listen.Init("listen", "print messages received from the server")
	listen.AddExample(kClientAppName+" listen -s 127.0.0.1:5010 -t 2 -hello hi", "announce and print type 2 messages")
	listen.AddExample(kClientAppName+" listen -s 127.0.0.1:5010 -a -x -d 1m", "hex dump every message received within a minute")

	cmd.Register(send)
	cmd.Register(listen)
}
