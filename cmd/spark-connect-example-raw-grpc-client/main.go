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
	"log"
	"time"

	"github.com/google/uuid"
	proto "github.com/sparkci/sparksmoke/internal/generated"
	"github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

var (
	remote = pflag.String("remote", "localhost:15002", "the remote address of Spark Connect server to connect to")
	token  = pflag.String("token", "", "bearer token to present to the server")
)

func main() {
	pflag.Parse()
	proto.EnsureJSONCodec()

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(proto.CodecName)),
	}

	conn, err := grpc.NewClient(*remote, opts...)
	if err != nil {
		log.Fatalf("Failed: %s", err.Error())
	}
	defer conn.Close()

	client := proto.NewSparkConnectServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if *token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+*token)
	}

	sessionID := uuid.NewString()
	defer func() {
		_, _ = client.ReleaseSession(ctx, &proto.ReleaseSessionRequest{SessionId: sessionID})
	}()

	versionRequest := proto.AnalyzePlanRequest{
		SessionId:    sessionID,
		SparkVersion: &proto.AnalyzePlanRequest_SparkVersion{},
	}
	versionResponse, err := client.AnalyzePlan(ctx, &versionRequest)
	if err != nil {
		log.Fatalf("Failed: %s", err.Error())
	}
	log.Printf("spark version: %s", versionResponse.GetSparkVersion().GetVersion())

	configRequest := proto.ConfigRequest{
		SessionId: sessionID,
		Operation: &proto.ConfigRequest_Operation{
			GetAll: &proto.ConfigRequest_GetAll{},
		},
	}
	configResponse, err := client.Config(ctx, &configRequest)
	if err != nil {
		log.Fatalf("Failed: %s", err.Error())
	}

	log.Printf("configResponse: %v", configResponse)
}
