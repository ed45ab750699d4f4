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

package server

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/sparkci/sparksmoke/internal/engine"
	proto "github.com/sparkci/sparksmoke/internal/generated"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startService(t *testing.T, opts Options) (*Service, proto.SparkConnectServiceClient) {
	t.Helper()
	ctx := context.Background()

	eng, err := engine.Open(ctx, engine.Options{Threads: 1})
	require.NoError(t, err)

	svc := NewService(eng, opts)
	grpcServer := grpc.NewServer(svc.ServerOptions()...)
	svc.Register(grpcServer)

	lis := bufconn.Listen(1 << 20)
	go func() {
		_ = grpcServer.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(proto.CodecName)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		grpcServer.Stop()
		_ = eng.Close()
	})
	return svc, proto.NewSparkConnectServiceClient(conn)
}

func executeAll(t *testing.T, ctx context.Context, client proto.SparkConnectServiceClient, req *proto.ExecutePlanRequest) ([]*proto.ExecutePlanResponse, error) {
	t.Helper()
	stream, err := client.ExecutePlan(ctx, req)
	require.NoError(t, err)

	var responses []*proto.ExecutePlanResponse
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return responses, nil
		}
		if err != nil {
			return responses, err
		}
		responses = append(responses, resp)
	}
}

func TestExecutePlanStreamsSchemaBatchesAndCompletion(t *testing.T) {
	svc, client := startService(t, Options{})
	ctx := context.Background()
	sessionID := uuid.NewString()

	responses, err := executeAll(t, ctx, client, &proto.ExecutePlanRequest{
		SessionId:   sessionID,
		OperationId: "op-1",
		Plan: &proto.Plan{Root: &proto.Relation{
			Range: &proto.Range{Start: 0, End: 3, Step: 1},
		}},
	})
	require.NoError(t, err)
	require.Len(t, responses, 3)

	assert.NotNil(t, responses[0].GetSchema().GetStruct())
	assert.NotNil(t, responses[1].GetArrowBatch())
	assert.NotNil(t, responses[2].ResultComplete)
	for _, resp := range responses {
		assert.Equal(t, sessionID, resp.SessionId)
		assert.Equal(t, "op-1", resp.OperationId)
	}
	assert.Equal(t, 1, svc.SessionCount())
}

func TestExecutePlanSqlCommand(t *testing.T) {
	_, client := startService(t, Options{})
	ctx := context.Background()
	sessionID := uuid.NewString()

	command := func(query string) *proto.ExecutePlanRequest {
		return &proto.ExecutePlanRequest{
			SessionId: sessionID,
			Plan:      &proto.Plan{Command: &proto.Command{SqlCommand: &proto.SqlCommand{Sql: query}}},
		}
	}

	responses, err := executeAll(t, ctx, client, command("SELECT 1 AS one"))
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "SELECT 1 AS one", responses[0].GetSqlCommandResult().GetRelation().GetSql().Query)

	responses, err = executeAll(t, ctx, client, command("CREATE TABLE t (x INTEGER)"))
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.NotNil(t, responses[0].GetSqlCommandResult().GetRelation().GetLocalRelation())

	_, err = executeAll(t, ctx, client, command("CREATE TABLE t (x INTEGER)"))
	assert.Equal(t, codes.Internal, status.Code(err))

	responses, err = executeAll(t, ctx, client, command("DESCRIBE t"))
	require.NoError(t, err)
	require.Len(t, responses, 1)
	described := responses[0].GetSqlCommandResult().GetRelation()
	assert.Nil(t, described.GetSql())
	assert.NotEmpty(t, described.GetLocalRelation().GetData())

	_, err = executeAll(t, ctx, client, command("EXPLAIN SELEC 1"))
	assert.Equal(t, codes.Internal, status.Code(err))

	_, err = executeAll(t, ctx, client, command("  "))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestExecutePlanRejectsBadRequests(t *testing.T) {
	_, client := startService(t, Options{})
	ctx := context.Background()

	_, err := executeAll(t, ctx, client, &proto.ExecutePlanRequest{
		Plan: &proto.Plan{Root: &proto.Relation{Range: &proto.Range{End: 1}}},
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = executeAll(t, ctx, client, &proto.ExecutePlanRequest{
		SessionId: "not-a-uuid",
		Plan:      &proto.Plan{Root: &proto.Relation{Range: &proto.Range{End: 1}}},
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = executeAll(t, ctx, client, &proto.ExecutePlanRequest{
		SessionId: uuid.NewString(),
		Plan:      &proto.Plan{},
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = executeAll(t, ctx, client, &proto.ExecutePlanRequest{
		SessionId: uuid.NewString(),
		Plan:      &proto.Plan{Root: &proto.Relation{}},
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestAnalyzePlan(t *testing.T) {
	_, client := startService(t, Options{})
	ctx := context.Background()
	sessionID := uuid.NewString()

	resp, err := client.AnalyzePlan(ctx, &proto.AnalyzePlanRequest{
		SessionId:    sessionID,
		SparkVersion: &proto.AnalyzePlanRequest_SparkVersion{},
	})
	require.NoError(t, err)
	assert.Equal(t, SparkVersion, resp.GetSparkVersion().Version)

	resp, err = client.AnalyzePlan(ctx, &proto.AnalyzePlanRequest{
		SessionId: sessionID,
		Schema: &proto.AnalyzePlanRequest_Schema{Plan: &proto.Plan{Root: &proto.Relation{
			Sql: &proto.SQL{Query: "SELECT 'a' AS word, 1 AS n"},
		}}},
	})
	require.NoError(t, err)
	fields := resp.GetSchema().Schema.GetStruct().GetFields()
	require.Len(t, fields, 2)
	assert.Equal(t, "word", fields[0].Name)
	assert.Equal(t, "n", fields[1].Name)

	_, err = client.AnalyzePlan(ctx, &proto.AnalyzePlanRequest{SessionId: sessionID})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestConfig(t *testing.T) {
	_, client := startService(t, Options{})
	ctx := context.Background()
	sessionID := uuid.NewString()

	config := func(op *proto.ConfigRequest_Operation) (*proto.ConfigResponse, error) {
		return client.Config(ctx, &proto.ConfigRequest{SessionId: sessionID, Operation: op})
	}

	_, err := config(&proto.ConfigRequest_Operation{Set: &proto.ConfigRequest_Set{Pairs: []*proto.KeyValue{
		keyValue("spark.app.name", "TestApp"),
		keyValue("spark.master", "local[1]"),
		keyValue("custom.key", "v"),
	}}})
	require.NoError(t, err)

	resp, err := config(&proto.ConfigRequest_Operation{Get: &proto.ConfigRequest_Get{Keys: []string{"spark.master"}}})
	require.NoError(t, err)
	require.Len(t, resp.Pairs, 1)
	assert.Equal(t, "local[1]", resp.Pairs[0].GetValue())

	prefix := "spark."
	resp, err = config(&proto.ConfigRequest_Operation{GetAll: &proto.ConfigRequest_GetAll{Prefix: &prefix}})
	require.NoError(t, err)
	require.Len(t, resp.Pairs, 2)
	assert.Equal(t, "spark.app.name", resp.Pairs[0].Key)
	assert.Equal(t, "spark.master", resp.Pairs[1].Key)

	_, err = config(&proto.ConfigRequest_Operation{Unset: &proto.ConfigRequest_Unset{Keys: []string{"spark.master"}}})
	require.NoError(t, err)
	_, err = config(&proto.ConfigRequest_Operation{Get: &proto.ConfigRequest_Get{Keys: []string{"spark.master"}}})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = config(nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = config(&proto.ConfigRequest_Operation{Set: &proto.ConfigRequest_Set{Pairs: []*proto.KeyValue{keyValue("", "x")}}})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestConfigIsPerSession(t *testing.T) {
	_, client := startService(t, Options{})
	ctx := context.Background()
	first, second := uuid.NewString(), uuid.NewString()

	_, err := client.Config(ctx, &proto.ConfigRequest{
		SessionId: first,
		Operation: &proto.ConfigRequest_Operation{Set: &proto.ConfigRequest_Set{Pairs: []*proto.KeyValue{keyValue("k", "1")}}},
	})
	require.NoError(t, err)

	resp, err := client.Config(ctx, &proto.ConfigRequest{
		SessionId: second,
		Operation: &proto.ConfigRequest_Operation{GetAll: &proto.ConfigRequest_GetAll{}},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Pairs)
}

func TestReleaseSession(t *testing.T) {
	svc, client := startService(t, Options{})
	ctx := context.Background()
	sessionID := uuid.NewString()

	_, err := client.AnalyzePlan(ctx, &proto.AnalyzePlanRequest{
		SessionId:    sessionID,
		SparkVersion: &proto.AnalyzePlanRequest_SparkVersion{},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.SessionCount())

	resp, err := client.ReleaseSession(ctx, &proto.ReleaseSessionRequest{SessionId: sessionID})
	require.NoError(t, err)
	assert.Equal(t, sessionID, resp.SessionId)
	assert.Equal(t, 0, svc.SessionCount())

	_, err = client.ReleaseSession(ctx, &proto.ReleaseSessionRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestTokenAuth(t *testing.T) {
	_, client := startService(t, Options{Token: "secret"})
	sessionID := uuid.NewString()
	versionRequest := &proto.AnalyzePlanRequest{
		SessionId:    sessionID,
		SparkVersion: &proto.AnalyzePlanRequest_SparkVersion{},
	}

	_, err := client.AnalyzePlan(context.Background(), versionRequest)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	badCtx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer nope")
	_, err = client.AnalyzePlan(badCtx, versionRequest)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = executeAll(t, badCtx, client, &proto.ExecutePlanRequest{
		SessionId: sessionID,
		Plan:      &proto.Plan{Root: &proto.Relation{Range: &proto.Range{End: 1}}},
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	goodCtx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer secret")
	resp, err := client.AnalyzePlan(goodCtx, versionRequest)
	require.NoError(t, err)
	assert.Equal(t, SparkVersion, resp.GetSparkVersion().Version)

	responses, err := executeAll(t, goodCtx, client, &proto.ExecutePlanRequest{
		SessionId: sessionID,
		Plan:      &proto.Plan{Root: &proto.Relation{Range: &proto.Range{End: 1}}},
	})
	require.NoError(t, err)
	assert.Len(t, responses, 3)
}

func TestEngineStatus(t *testing.T) {
	assert.NoError(t, engineStatus(nil))
	assert.Equal(t, codes.InvalidArgument, status.Code(engineStatus(engine.ErrUnsupportedFunction)))
	assert.Equal(t, codes.Canceled, status.Code(engineStatus(context.Canceled)))
	assert.Equal(t, codes.DeadlineExceeded, status.Code(engineStatus(context.DeadlineExceeded)))
	assert.Equal(t, codes.Internal, status.Code(engineStatus(errors.New("boom"))))

	already := status.Error(codes.NotFound, "gone")
	assert.Equal(t, already, engineStatus(already))
}
