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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/sparkci/sparksmoke/internal/config"
	"github.com/sparkci/sparksmoke/pkg/spark/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeListenerStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- serveListener(ctx, &config.ServerConfig{Threads: 1, Token: "tok"}, ln, slog.Default())
	}()

	spark, err := sql.SparkSession.Builder.
		Remote(fmt.Sprintf("sc://%s/;token=tok;use_ssl=false", ln.Addr().String())).
		AppName("ServeTest").
		Build(context.Background())
	require.NoError(t, err)

	count, err := spark.Range(0, 5, 1).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	require.NoError(t, spark.Stop())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop after cancel")
	}

	_, err = net.DialTimeout("tcp", ln.Addr().String(), time.Second)
	assert.Error(t, err)
}

func TestServeRejectsBadListenAddr(t *testing.T) {
	err := serve(context.Background(), &config.ServerConfig{ListenAddr: "256.0.0.1:bad"})
	assert.ErrorContains(t, err, "listen")
}
