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
	"fmt"

	proto "github.com/sparkci/sparksmoke/internal/generated"
)

// RuntimeConfig reads and writes the session's Spark conf.
type RuntimeConfig interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	GetAll(ctx context.Context, prefix string) (map[string]string, error)
	Unset(ctx context.Context, keys ...string) error
}

type runtimeConfigImpl struct {
	sparkSession *sparkSessionImpl
}

func (c *runtimeConfigImpl) Get(ctx context.Context, key string) (string, error) {
	response, err := c.sparkSession.config(ctx, &proto.ConfigRequest_Operation{
		Get: &proto.ConfigRequest_Get{Keys: []string{key}},
	})
	if err != nil {
		return "", err
	}
	for _, pair := range response.Pairs {
		if pair.Key == key {
			return pair.GetValue(), nil
		}
	}
	return "", fmt.Errorf("config %s not returned by server", key)
}

func (c *runtimeConfigImpl) Set(ctx context.Context, key, value string) error {
	return c.sparkSession.setConf(ctx, map[string]string{key: value})
}

func (c *runtimeConfigImpl) GetAll(ctx context.Context, prefix string) (map[string]string, error) {
	getAll := &proto.ConfigRequest_GetAll{}
	if prefix != "" {
		getAll.Prefix = &prefix
	}
	response, err := c.sparkSession.config(ctx, &proto.ConfigRequest_Operation{GetAll: getAll})
	if err != nil {
		return nil, err
	}
	result := make(map[string]string, len(response.Pairs))
	for _, pair := range response.Pairs {
		result[pair.Key] = pair.GetValue()
	}
	return result, nil
}

func (c *runtimeConfigImpl) Unset(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.sparkSession.config(ctx, &proto.ConfigRequest_Operation{
		Unset: &proto.ConfigRequest_Unset{Keys: keys},
	})
	return err
}
