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

// Package smoke checks that a dataframe runtime is usable: it opens a
// session, counts the rows of a small table and releases the session.
package smoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sparkci/sparksmoke/internal/config"
	"github.com/sparkci/sparksmoke/pkg/spark/sql"
)

// SampleData is the table Run counts.
var SampleData = [][]any{
	{"Alice", 25},
	{"Bob", 30},
	{"Charlie", 35},
}

// SampleColumns names the columns of SampleData. Their types are inferred,
// so age becomes a bigint.
var SampleColumns = []string{"name", "age"}

// CreateSparkSession returns the active session, or a new one named appName
// running on local[1].
func CreateSparkSession(ctx context.Context, appName string) (sql.Session, error) {
	if appName == "" {
		appName = config.DefaultAppName
	}
	session, err := sql.SparkSession.Builder.
		AppName(appName).
		Master(config.DefaultMaster).
		GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("create spark session %s: %w", appName, err)
	}
	return session, nil
}

func CountDataFrameRows(ctx context.Context, df sql.DataFrame) (int64, error) {
	n, err := df.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count dataframe rows: %w", err)
	}
	return n, nil
}

// Run opens a session from cfg, counts SampleData, writes
// "DataFrame has N rows" to w and stops the session.
func Run(ctx context.Context, cfg *config.Config, w io.Writer) (count int64, err error) {
	session, err := sessionFromConfig(cfg).GetOrCreate(ctx)
	if err != nil {
		return 0, fmt.Errorf("create spark session %s: %w", cfg.AppName, err)
	}
	defer func() {
		err = errors.Join(err, session.Stop())
	}()
	slog.Info("spark session ready", "app_name", cfg.AppName, "session_id", session.SessionId())

	df, err := newSampleDataFrame(session, SampleData)
	if err != nil {
		return 0, err
	}
	count, err = CountDataFrameRows(ctx, df)
	if err != nil {
		return 0, err
	}
	if _, err := fmt.Fprintf(w, "DataFrame has %d rows\n", count); err != nil {
		return 0, err
	}
	return count, nil
}

// newSampleDataFrame builds a DataFrame over data with SampleColumns and
// inferred column types.
func newSampleDataFrame(session sql.Session, data [][]any) (sql.DataFrame, error) {
	schema, err := sql.InferSchema(data, SampleColumns...)
	if err != nil {
		return nil, fmt.Errorf("infer sample schema: %w", err)
	}
	return session.CreateDataFrame(data, schema)
}

func sessionFromConfig(cfg *config.Config) sql.SparkSessionBuilder {
	builder := sql.SparkSession.Builder.AppName(cfg.AppName)
	if cfg.Remote != "" {
		builder = builder.Remote(cfg.Remote)
	} else {
		builder = builder.Master(cfg.Master)
	}
	for k, v := range cfg.Conf {
		builder = builder.Config(k, v)
	}
	return builder
}
