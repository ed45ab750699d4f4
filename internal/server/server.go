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

// Package server implements the Spark Connect service on top of the DuckDB
// engine.
package server

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sparkci/sparksmoke/internal/engine"
	proto "github.com/sparkci/sparksmoke/internal/generated"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SparkVersion is reported by AnalyzePlan.
const SparkVersion = "3.5.1"

type Options struct {
	// Token, when set, must be presented as "authorization: Bearer <token>".
	Token  string
	Logger *slog.Logger
}

type session struct {
	id        string
	userID    string
	createdAt time.Time
	conf      map[string]string
}

type Service struct {
	proto.UnimplementedSparkConnectServiceServer

	engine *engine.Engine
	token  string
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

func NewService(eng *engine.Engine, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		engine:   eng,
		token:    opts.Token,
		logger:   logger,
		sessions: make(map[string]*session),
	}
}

// ServerOptions returns the gRPC server options the service needs: the JSON
// codec and, with a token configured, the auth interceptors.
func (s *Service) ServerOptions() []grpc.ServerOption {
	proto.EnsureJSONCodec()
	if s.token == "" {
		return nil
	}
	return []grpc.ServerOption{
		grpc.UnaryInterceptor(s.unaryAuthInterceptor),
		grpc.StreamInterceptor(s.streamAuthInterceptor),
	}
}

func (s *Service) Register(registrar grpc.ServiceRegistrar) {
	proto.RegisterSparkConnectServiceServer(registrar, s)
}

// SessionCount reports the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) getOrCreateSession(sessionID string, user *proto.UserContext) (*session, error) {
	if sessionID == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "session_id %q is not a UUID", sessionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{
			id:        sessionID,
			userID:    user.GetUserId(),
			createdAt: time.Now(),
			conf:      make(map[string]string),
		}
		s.sessions[sessionID] = sess
		s.logger.Info("session created", "session_id", sessionID, "user_id", sess.userID)
	}
	return sess, nil
}

func (s *Service) ExecutePlan(req *proto.ExecutePlanRequest, stream proto.SparkConnectService_ExecutePlanServer) error {
	ctx := stream.Context()
	sess, err := s.getOrCreateSession(req.SessionId, req.UserContext)
	if err != nil {
		return err
	}
	operationID := req.OperationId
	if operationID == "" {
		operationID = uuid.NewString()
	}
	logger := s.logger.With("session_id", sess.id, "operation_id", operationID)

	if cmd := req.Plan.GetCommand().GetSqlCommand(); cmd != nil {
		rel, err := s.executeSqlCommand(ctx, cmd.Sql)
		if err != nil {
			logger.Warn("sql command failed", "error", err)
			return err
		}
		return stream.Send(&proto.ExecutePlanResponse{
			SessionId:        sess.id,
			OperationId:      operationID,
			SqlCommandResult: &proto.ExecutePlanResponse_SqlCommandResult{Relation: rel},
		})
	}

	root := req.Plan.GetRoot()
	if root == nil {
		return status.Error(codes.InvalidArgument, "plan has neither a root relation nor a supported command")
	}

	start := time.Now()
	result, err := s.engine.Execute(ctx, root)
	if err != nil {
		logger.Warn("execute plan failed", "error", err)
		return engineStatus(err)
	}

	if err := stream.Send(&proto.ExecutePlanResponse{
		SessionId:   sess.id,
		OperationId: operationID,
		Schema:      result.Schema,
	}); err != nil {
		return err
	}
	for _, batch := range result.Batches {
		if err := stream.Send(&proto.ExecutePlanResponse{
			SessionId:   sess.id,
			OperationId: operationID,
			ArrowBatch:  &proto.ExecutePlanResponse_ArrowBatch{Data: batch},
		}); err != nil {
			return err
		}
	}
	logger.Debug("plan executed", "rows", result.RowCount, "batches", len(result.Batches), "duration", time.Since(start))

	return stream.Send(&proto.ExecutePlanResponse{
		SessionId:      sess.id,
		OperationId:    operationID,
		ResultComplete: &proto.ExecutePlanResponse_ResultComplete{},
	})
}

// executeSqlCommand keeps queries lazy and runs everything else eagerly.
// Commands that return rows, like EXPLAIN, come back as a local relation.
func (s *Service) executeSqlCommand(ctx context.Context, query string) (*proto.Relation, error) {
	if strings.TrimSpace(query) == "" {
		return nil, status.Error(codes.InvalidArgument, "sql command is empty")
	}
	if engine.IsQuery(query) {
		return &proto.Relation{Sql: &proto.SQL{Query: query}}, nil
	}
	if engine.IsCommandQuery(query) {
		data, err := s.engine.Materialize(ctx, query)
		if err != nil {
			return nil, engineStatus(err)
		}
		return &proto.Relation{LocalRelation: &proto.LocalRelation{Data: data}}, nil
	}
	if err := s.engine.Exec(ctx, query); err != nil {
		return nil, engineStatus(err)
	}
	return &proto.Relation{LocalRelation: &proto.LocalRelation{}}, nil
}

func (s *Service) AnalyzePlan(ctx context.Context, req *proto.AnalyzePlanRequest) (*proto.AnalyzePlanResponse, error) {
	sess, err := s.getOrCreateSession(req.SessionId, req.UserContext)
	if err != nil {
		return nil, err
	}

	switch {
	case req.SparkVersion != nil:
		return &proto.AnalyzePlanResponse{
			SessionId:    sess.id,
			SparkVersion: &proto.AnalyzePlanResponse_SparkVersion{Version: SparkVersion},
		}, nil
	case req.Schema != nil:
		root := req.Schema.Plan.GetRoot()
		if root == nil {
			return nil, status.Error(codes.InvalidArgument, "schema analysis requires a root relation")
		}
		schema, err := s.engine.Analyze(ctx, root)
		if err != nil {
			s.logger.Warn("analyze plan failed", "session_id", sess.id, "error", err)
			return nil, engineStatus(err)
		}
		return &proto.AnalyzePlanResponse{
			SessionId: sess.id,
			Schema:    &proto.AnalyzePlanResponse_Schema{Schema: schema},
		}, nil
	default:
		return nil, status.Error(codes.InvalidArgument, "unsupported analyze request")
	}
}

func (s *Service) Config(ctx context.Context, req *proto.ConfigRequest) (*proto.ConfigResponse, error) {
	sess, err := s.getOrCreateSession(req.SessionId, req.UserContext)
	if err != nil {
		return nil, err
	}
	op := req.Operation
	if op == nil {
		return nil, status.Error(codes.InvalidArgument, "config operation is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resp := &proto.ConfigResponse{SessionId: sess.id}
	switch {
	case op.Set != nil:
		for _, kv := range op.Set.Pairs {
			if kv.Key == "" {
				return nil, status.Error(codes.InvalidArgument, "config key is required")
			}
			sess.conf[kv.Key] = kv.GetValue()
		}
	case op.Get != nil:
		for _, key := range op.Get.Keys {
			v, ok := sess.conf[key]
			if !ok {
				return nil, status.Errorf(codes.NotFound, "config key %q is not set", key)
			}
			resp.Pairs = append(resp.Pairs, keyValue(key, v))
		}
	case op.GetAll != nil:
		prefix := ""
		if op.GetAll.Prefix != nil {
			prefix = *op.GetAll.Prefix
		}
		keys := make([]string, 0, len(sess.conf))
		for k := range sess.conf {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			resp.Pairs = append(resp.Pairs, keyValue(k, sess.conf[k]))
		}
	case op.Unset != nil:
		for _, key := range op.Unset.Keys {
			delete(sess.conf, key)
		}
	default:
		return nil, status.Error(codes.InvalidArgument, "unsupported config operation")
	}
	return resp, nil
}

func (s *Service) ReleaseSession(ctx context.Context, req *proto.ReleaseSessionRequest) (*proto.ReleaseSessionResponse, error) {
	if req.SessionId == "" {
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	s.mu.Lock()
	sess, ok := s.sessions[req.SessionId]
	delete(s.sessions, req.SessionId)
	s.mu.Unlock()

	if ok {
		s.logger.Info("session released", "session_id", sess.id, "age", time.Since(sess.createdAt))
	}
	return &proto.ReleaseSessionResponse{SessionId: req.SessionId}, nil
}

func keyValue(key, value string) *proto.KeyValue {
	v := value
	return &proto.KeyValue{Key: key, Value: &v}
}

func engineStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, engine.ErrUnsupportedRelation),
		errors.Is(err, engine.ErrUnsupportedExpression),
		errors.Is(err, engine.ErrUnsupportedFunction):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
