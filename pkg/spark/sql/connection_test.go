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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConnectionString(t *testing.T) {
	params, err := parseConnectionString("sc://localhost")
	require.NoError(t, err)
	assert.Equal(t, "localhost", params.host)
	assert.Equal(t, 15002, params.port)
	assert.False(t, params.useSSL)
	assert.Equal(t, "localhost:15002", params.target())

	params, err = parseConnectionString("sc://spark.example.com:443/;token=abc;user_id=ci;x-trace=on")
	require.NoError(t, err)
	assert.Equal(t, "spark.example.com:443", params.target())
	assert.Equal(t, "abc", params.token)
	assert.Equal(t, "ci", params.userID)
	assert.True(t, params.useSSL)
	assert.Equal(t, map[string]string{"x-trace": "on"}, params.headers)

	md := params.metadata()
	assert.Equal(t, []string{"Bearer abc"}, md.Get("authorization"))
	assert.Equal(t, []string{"on"}, md.Get("x-trace"))

	params, err = parseConnectionString("sc://127.0.0.1:15003/;token=abc;use_ssl=false;session_id=6f1f0c1e-5b7a-4d59-9a3b-1f6b5c2d7e80")
	require.NoError(t, err)
	assert.False(t, params.useSSL)
	assert.Equal(t, "6f1f0c1e-5b7a-4d59-9a3b-1f6b5c2d7e80", params.sessionID)
}

func TestParseConnectionStringErrors(t *testing.T) {
	for _, s := range []string{
		"localhost:15002",
		"http://localhost",
		"sc://",
		"sc://host:port",
		"sc://host:70000",
		"sc://host/token=abc",
		"sc://host/;token",
		"sc://host/;use_ssl=maybe",
		"sc://host/;session_id=not-a-uuid",
	} {
		t.Run(s, func(t *testing.T) {
			_, err := parseConnectionString(s)
			assert.Error(t, err)
		})
	}
}

func TestParseMaster(t *testing.T) {
	tests := []struct {
		master string
		want   int
	}{
		{"local", 1},
		{"local[1]", 1},
		{"local[4]", 4},
		{"local[*]", 0},
		{"local[2, 3]", 2},
	}
	for _, tt := range tests {
		t.Run(tt.master, func(t *testing.T) {
			got, err := parseMaster(tt.master)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, master := range []string{"yarn", "local[0]", "local[]", "spark://host:7077", "local[-1]"} {
		_, err := parseMaster(master)
		assert.Error(t, err, master)
	}
}
