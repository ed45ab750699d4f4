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

// Package main is the entry point for the spark-row-count smoke binary.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sparkci/sparksmoke/internal/config"
	"github.com/sparkci/sparksmoke/internal/smoke"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "spark-row-count",
		Short:         "Count the rows of a small DataFrame to check the Spark runtime",
		Long:          "Opens a Spark session, counts a three-row DataFrame and prints the result.\nSettings come from SPARK_CONF_FILE, SPARK_APP_NAME, SPARK_MASTER, SPARK_REMOTE and LOG_LEVEL.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
			slog.SetDefault(logger)

			count, err := smoke.Run(cmd.Context(), cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			logger.Debug("smoke run finished", "rows", count)
			return nil
		},
	}
}
