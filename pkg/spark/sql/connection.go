//
// Licensed to the Apache Software Foundation (ASF) under one or more
// contributor license agreements.  See the NOTICE file distributed with
// this work for additional information regarding copyright ownership.
// The ASF licenses this file to You under the Apache License, Version 2.0
// (the "License"); you may not use this file except in compliance with
// the License.  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sql

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sparkci/sparksmoke/internal/engine"
	proto "github.com/sparkci/sparksmoke/internal/generated"
	"github.com/sparkci/sparksmoke/internal/server"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
)

const (
	defaultPort   = 15002
	bufconnSize   = 1 << 20
	defaultMaster = "local[*]"
)

var masterPattern = regexp.MustCompile(`^local(?:\[(\*|\d+)(?:,\s*\d+)?\])?$`)

type connectionParams struct {
	host      string
	port      int
	token     string
	userID    string
	useSSL    bool
	sessionID string
	headers   map[string]string
}

// parseConnectionString parses sc://host[:port][/;key=value;...].
func parseConnectionString(connectionString string) (*connectionParams, error) {
	rest, ok := strings.CutPrefix(connectionString, "sc://")
	if !ok {
		return nil, fmt.Errorf("connection string %q must start with sc://", connectionString)
	}

	hostPort, rawParams := rest, ""
	if i := strings.Index(rest, "/"); i >= 0 {
		hostPort, rawParams = rest[:i], rest[i+1:]
	}

	params := &connectionParams{port: defaultPort, headers: map[string]string{}}
	if strings.Contains(hostPort, ":") {
		host, port, err := net.SplitHostPort(hostPort)
		if err != nil {
			return nil, fmt.Errorf("invalid host in connection string %q: %w", connectionString, err)
		}
		n, err := strconv.Atoi(port)
		if err != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("invalid port %q in connection string", port)
		}
		params.host, params.port = host, n
	} else {
		params.host = hostPort
	}
	if params.host == "" {
		return nil, fmt.Errorf("connection string %q has no host", connectionString)
	}

	if rawParams == "" {
		return params, nil
	}
	if !strings.HasPrefix(rawParams, ";") {
		return nil, fmt.Errorf("connection string parameters must start with ';', got %q", rawParams)
	}

	sslSet := false
	for _, pair := range strings.Split(rawParams[1:], ";") {
		if pair == "" {
			continue
		}
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid connection string parameter %q", pair)
		}
		value, err := url.QueryUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for parameter %s: %w", key, err)
		}
		switch key {
		case "token":
			params.token = value
		case "user_id":
			params.userID = value
		case "use_ssl":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("invalid use_ssl value %q: %w", value, err)
			}
			params.useSSL, sslSet = b, true
		case "session_id":
			if _, err := uuid.Parse(value); err != nil {
				return nil, fmt.Errorf("session_id %q is not a UUID: %w", value, err)
			}
			params.sessionID = value
		default:
			params.headers[key] = value
		}
	}
	// A token implies TLS unless use_ssl says otherwise.
	if params.token != "" && !sslSet {
		params.useSSL = true
	}
	return params, nil
}

func (p *connectionParams) target() string {
	return net.JoinHostPort(p.host, strconv.Itoa(p.port))
}

func (p *connectionParams) metadata() metadata.MD {
	md := metadata.MD{}
	for k, v := range p.headers {
		md.Append(k, v)
	}
	if p.token != "" {
		md.Append("authorization", "Bearer "+p.token)
	}
	return md
}

func (p *connectionParams) dial() (*grpc.ClientConn, error) {
	proto.EnsureJSONCodec()
	creds := insecure.NewCredentials()
	if p.useSSL {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	conn, err := grpc.NewClient(p.target(),
		grpc.WithTransportCredentials(creds),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(proto.CodecName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to remote %s: %w", p.target(), err)
	}
	return conn, nil
}

// parseMaster returns the engine thread count for a local master URL.
// Zero means all cores.
func parseMaster(master string) (int, error) {
	m := masterPattern.FindStringSubmatch(strings.TrimSpace(master))
	if m == nil {
		return 0, fmt.Errorf("unsupported master %q: expected local, local[N] or local[*]", master)
	}
	switch m[1] {
	case "":
		return 1, nil
	case "*":
		return 0, nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid thread count in master %q", master)
	}
	return n, nil
}

// embeddedRuntime is the in-process connect service behind a local master.
type embeddedRuntime struct {
	engine   *engine.Engine
	server   *grpc.Server
	listener *bufconn.Listener
}

func startEmbedded(ctx context.Context, threads int) (*embeddedRuntime, *grpc.ClientConn, error) {
	eng, err := engine.Open(ctx, engine.Options{Threads: threads})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start local engine: %w", err)
	}

	svc := server.NewService(eng, server.Options{})
	grpcServer := grpc.NewServer(svc.ServerOptions()...)
	svc.Register(grpcServer)

	listener := bufconn.Listen(bufconnSize)
	go func() {
		_ = grpcServer.Serve(listener)
	}()

	runtime := &embeddedRuntime{engine: eng, server: grpcServer, listener: listener}
	conn, err := grpc.NewClient("passthrough:///embedded",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(proto.CodecName)),
	)
	if err != nil {
		_ = runtime.stop()
		return nil, nil, fmt.Errorf("failed to connect to local engine: %w", err)
	}
	return runtime, conn, nil
}

func (r *embeddedRuntime) stop() error {
	r.server.Stop()
	return r.engine.Close()
}
