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
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	proto "github.com/sparkci/sparksmoke/internal/generated"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

const (
	clientType     = "sparksmoke-go"
	releaseTimeout = 10 * time.Second
)

var SparkSession sparkSessionBuilderEntrypoint

// active holds the session returned by GetOrCreate until it is stopped.
var active struct {
	mu      sync.Mutex
	session *sparkSessionImpl
}

type Session interface {
	SessionId() string
	CreateDataFrame(data [][]any, schema *StructType) (DataFrame, error)
	Sql(ctx context.Context, query string) (DataFrame, error)
	Range(start, end, step int64) DataFrame
	Conf() RuntimeConfig
	Version(ctx context.Context) (string, error)
	Stop() error
}

type sparkSessionBuilderEntrypoint struct {
	Builder SparkSessionBuilder
}

type SparkSessionBuilder struct {
	connectionString string
	master           string
	appName          string
	conf             map[string]string
}

func (s SparkSessionBuilder) Remote(connectionString string) SparkSessionBuilder {
	copy := s
	copy.connectionString = connectionString
	return copy
}

func (s SparkSessionBuilder) Master(master string) SparkSessionBuilder {
	copy := s
	copy.master = master
	return copy
}

func (s SparkSessionBuilder) AppName(name string) SparkSessionBuilder {
	copy := s
	copy.appName = name
	return copy
}

func (s SparkSessionBuilder) Config(key, value string) SparkSessionBuilder {
	copy := s
	copy.conf = make(map[string]string, len(s.conf)+1)
	for k, v := range s.conf {
		copy.conf[k] = v
	}
	copy.conf[key] = value
	return copy
}

// sessionConf is the conf pushed to a session, app name included.
func (s SparkSessionBuilder) sessionConf() map[string]string {
	conf := make(map[string]string, len(s.conf)+1)
	for k, v := range s.conf {
		conf[k] = v
	}
	if s.appName != "" {
		conf["spark.app.name"] = s.appName
	}
	return conf
}

// Build always creates a new session. Remote wins over Master; with neither
// set the session runs on local[*].
func (s SparkSessionBuilder) Build(ctx context.Context) (Session, error) {
	return s.build(ctx)
}

// GetOrCreate returns the active session, applying the builder's conf to it,
// or builds a new one and makes it active.
func (s SparkSessionBuilder) GetOrCreate(ctx context.Context) (Session, error) {
	active.mu.Lock()
	defer active.mu.Unlock()

	if active.session != nil && !active.session.isStopped() {
		if err := active.session.setConf(ctx, s.sessionConf()); err != nil {
			return nil, fmt.Errorf("failed to apply conf to active session: %w", err)
		}
		return active.session, nil
	}

	session, err := s.build(ctx)
	if err != nil {
		return nil, err
	}
	active.session = session
	return session, nil
}

func (s SparkSessionBuilder) build(ctx context.Context) (*sparkSessionImpl, error) {
	session := &sparkSessionImpl{sessionId: uuid.NewString()}
	conf := s.sessionConf()

	if s.connectionString != "" {
		params, err := parseConnectionString(s.connectionString)
		if err != nil {
			return nil, err
		}
		conn, err := params.dial()
		if err != nil {
			return nil, err
		}
		if params.sessionID != "" {
			session.sessionId = params.sessionID
		}
		session.conn = conn
		session.metadata = params.metadata()
		session.userID = params.userID
	} else {
		master := s.master
		if master == "" {
			master = defaultMaster
		}
		threads, err := parseMaster(master)
		if err != nil {
			return nil, err
		}
		runtime, conn, err := startEmbedded(ctx, threads)
		if err != nil {
			return nil, err
		}
		session.conn = conn
		session.embedded = runtime
		conf["spark.master"] = master
	}
	session.client = proto.NewSparkConnectServiceClient(session.conn)

	if err := session.setConf(ctx, conf); err != nil {
		_ = session.close()
		return nil, fmt.Errorf("failed to initialize session %s: %w", session.sessionId, err)
	}
	return session, nil
}

type sparkSessionImpl struct {
	sessionId string
	userID    string
	client    proto.SparkConnectServiceClient
	conn      *grpc.ClientConn
	metadata  metadata.MD
	embedded  *embeddedRuntime

	stopOnce sync.Once
	stopErr  error
	mu       sync.Mutex
	stopped  bool
}

func (s *sparkSessionImpl) SessionId() string {
	return s.sessionId
}

func (s *sparkSessionImpl) CreateDataFrame(data [][]any, schema *StructType) (DataFrame, error) {
	if schema == nil {
		inferred, err := InferSchema(data)
		if err != nil {
			return nil, err
		}
		schema = inferred
	}
	encoded, err := encodeLocalRelation(data, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataframe: %w", err)
	}
	return &dataFrameImpl{
		sparkSession: s,
		relation: &proto.Relation{
			LocalRelation: &proto.LocalRelation{Data: encoded},
		},
	}, nil
}

func (s *sparkSessionImpl) Sql(ctx context.Context, query string) (DataFrame, error) {
	plan := &proto.Plan{
		Command: &proto.Command{
			SqlCommand: &proto.SqlCommand{
				Sql: query,
			},
		},
	}
	responseClient, err := s.executePlan(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to execute sql: %s: %w", query, err)
	}
	var relation *proto.Relation
	for {
		response, err := responseClient.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to receive ExecutePlan response: %w", err)
		}
		if sqlCommandResult := response.GetSqlCommandResult(); sqlCommandResult != nil {
			relation = sqlCommandResult.GetRelation()
		}
	}
	if relation == nil {
		return nil, fmt.Errorf("failed to get SqlCommandResult in ExecutePlan response")
	}
	return &dataFrameImpl{
		sparkSession: s,
		relation:     relation,
	}, nil
}

func (s *sparkSessionImpl) Range(start, end, step int64) DataFrame {
	return &dataFrameImpl{
		sparkSession: s,
		relation: &proto.Relation{
			Range: &proto.Range{Start: start, End: end, Step: step},
		},
	}
}

func (s *sparkSessionImpl) Conf() RuntimeConfig {
	return &runtimeConfigImpl{sparkSession: s}
}

func (s *sparkSessionImpl) Version(ctx context.Context) (string, error) {
	request := proto.AnalyzePlanRequest{
		SessionId:    s.sessionId,
		UserContext:  s.userContext(),
		ClientType:   clientType,
		SparkVersion: &proto.AnalyzePlanRequest_SparkVersion{},
	}
	response, err := s.client.AnalyzePlan(s.outgoing(ctx), &request)
	if err != nil {
		return "", fmt.Errorf("failed to call AnalyzePlan in session %s: %w", s.sessionId, err)
	}
	return response.GetSparkVersion().GetVersion(), nil
}

// Stop releases the server-side session and the connection. Stopping twice
// returns the first result.
func (s *sparkSessionImpl) Stop() error {
	s.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		_, releaseErr := s.client.ReleaseSession(s.outgoing(ctx), &proto.ReleaseSessionRequest{
			SessionId:   s.sessionId,
			UserContext: s.userContext(),
			ClientType:  clientType,
		})
		if releaseErr != nil {
			releaseErr = fmt.Errorf("failed to release session %s: %w", s.sessionId, releaseErr)
		}
		s.stopErr = errors.Join(releaseErr, s.close())

		active.mu.Lock()
		if active.session == s {
			active.session = nil
		}
		active.mu.Unlock()
	})
	return s.stopErr
}

func (s *sparkSessionImpl) close() error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	var errs []error
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
	}
	if s.embedded != nil {
		errs = append(errs, s.embedded.stop())
	}
	return errors.Join(errs...)
}

func (s *sparkSessionImpl) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *sparkSessionImpl) userContext() *proto.UserContext {
	if s.userID == "" {
		return nil
	}
	return &proto.UserContext{UserId: s.userID}
}

func (s *sparkSessionImpl) outgoing(ctx context.Context) context.Context {
	if len(s.metadata) == 0 {
		return ctx
	}
	return metadata.NewOutgoingContext(ctx, s.metadata.Copy())
}

func (s *sparkSessionImpl) executePlan(ctx context.Context, plan *proto.Plan) (proto.SparkConnectService_ExecutePlanClient, error) {
	request := proto.ExecutePlanRequest{
		SessionId:   s.sessionId,
		UserContext: s.userContext(),
		OperationId: uuid.NewString(),
		Plan:        plan,
		ClientType:  clientType,
	}
	executePlanClient, err := s.client.ExecutePlan(s.outgoing(ctx), &request)
	if err != nil {
		return nil, fmt.Errorf("failed to call ExecutePlan in session %s: %w", s.sessionId, err)
	}
	return executePlanClient, nil
}

func (s *sparkSessionImpl) analyzePlan(ctx context.Context, plan *proto.Plan) (*proto.AnalyzePlanResponse, error) {
	request := proto.AnalyzePlanRequest{
		SessionId:   s.sessionId,
		UserContext: s.userContext(),
		ClientType:  clientType,
		Schema: &proto.AnalyzePlanRequest_Schema{
			Plan: plan,
		},
	}
	response, err := s.client.AnalyzePlan(s.outgoing(ctx), &request)
	if err != nil {
		return nil, fmt.Errorf("failed to call AnalyzePlan in session %s: %w", s.sessionId, err)
	}
	return response, nil
}

func (s *sparkSessionImpl) config(ctx context.Context, operation *proto.ConfigRequest_Operation) (*proto.ConfigResponse, error) {
	request := proto.ConfigRequest{
		SessionId:   s.sessionId,
		UserContext: s.userContext(),
		Operation:   operation,
		ClientType:  clientType,
	}
	response, err := s.client.Config(s.outgoing(ctx), &request)
	if err != nil {
		return nil, fmt.Errorf("failed to call Config in session %s: %w", s.sessionId, err)
	}
	return response, nil
}

func (s *sparkSessionImpl) setConf(ctx context.Context, conf map[string]string) error {
	if len(conf) == 0 {
		return nil
	}
	pairs := make([]*proto.KeyValue, 0, len(conf))
	for k, v := range conf {
		value := v
		pairs = append(pairs, &proto.KeyValue{Key: k, Value: &value})
	}
	_, err := s.config(ctx, &proto.ConfigRequest_Operation{
		Set: &proto.ConfigRequest_Set{Pairs: pairs},
	})
	return err
}
