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

// Package main is the entry point for the standalone Spark Connect server.
// It serves the connect service over TCP, backed by an in-memory DuckDB.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/sparkci/sparksmoke/internal/config"
	"github.com/sparkci/sparksmoke/internal/engine"
	"github.com/sparkci/sparksmoke/internal/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	rootCmd, err := newRootCmd()
	if err == nil {
		err = rootCmd.Execute()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() (*cobra.Command, error) {
	cfg, err := config.LoadServerFromEnv()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	rootCmd := &cobra.Command{
		Use:           "spark-connect-server",
		Short:         "Serve Spark Connect on an embedded DuckDB engine",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()
			return serve(ctx, cfg)
		},
	}
	cfg.BindFlags(rootCmd.Flags())
	return rootCmd, nil
}

func serve(ctx context.Context, cfg *config.ServerConfig) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.ListenAddr, err)
	}
	return serveListener(ctx, cfg, lis, logger)
}

// serveListener serves on lis until ctx is done, then stops gracefully.
// It owns lis.
func serveListener(ctx context.Context, cfg *config.ServerConfig, lis net.Listener, logger *slog.Logger) error {
	eng, err := engine.Open(ctx, engine.Options{
		Threads:   cfg.Threads,
		BatchSize: cfg.BatchSize,
		Logger:    logger.With("component", "engine"),
	})
	if err != nil {
		_ = lis.Close()
		return err
	}
	defer eng.Close()

	svc := server.NewService(eng, server.Options{
		Token:  cfg.Token,
		Logger: logger.With("component", "server"),
	})
	grpcServer := grpc.NewServer(svc.ServerOptions()...)
	svc.Register(grpcServer)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("spark connect server listening", "addr", lis.Addr().String(), "auth", cfg.Token != "")
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down spark connect server", "sessions", svc.SessionCount())
		grpcServer.GracefulStop()
		return nil
	})
	return g.Wait()
}
