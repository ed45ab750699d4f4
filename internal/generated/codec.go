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

package generated

import (
	"encoding/json"
	"sync"

	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype both ends must use.
const CodecName = "json"

var registerCodecOnce sync.Once

type jsonCodec struct{}

func (jsonCodec) Name() string {
	return CodecName
}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// EnsureJSONCodec registers the JSON codec with gRPC. Safe to call repeatedly.
func EnsureJSONCodec() {
	registerCodecOnce.Do(func() {
		encoding.RegisterCodec(jsonCodec{})
	})
}
