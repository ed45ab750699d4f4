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
	"bytes"
	"context"
	"fmt"
	"net"
	"testing"

	"github.com/sparkci/sparksmoke/internal/engine"
	"github.com/sparkci/sparksmoke/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var people = [][]any{
	{"Alice", 25},
	{"Bob", 30},
	{"Charlie", 35},
	{"David", 40},
}

func newLocalSession(t *testing.T) Session {
	t.Helper()
	spark, err := SparkSession.Builder.AppName("TestApp").Master("local[1]").Build(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, spark.Stop())
	})
	return spark
}

func TestCountRows(t *testing.T) {
	ctx := context.Background()
	spark := newLocalSession(t)

	df, err := spark.CreateDataFrame(people, peopleSchema)
	require.NoError(t, err)
	count, err := df.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestCountEmptyDataFrame(t *testing.T) {
	ctx := context.Background()
	spark := newLocalSession(t)

	schema, err := ParseSchema("name STRING, age INT")
	require.NoError(t, err)
	df, err := spark.CreateDataFrame([][]any{}, schema)
	require.NoError(t, err)

	count, err := df.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	got, err := df.Schema(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, got.FieldNames())
}

func TestCreateDataFrameInfersSchema(t *testing.T) {
	ctx := context.Background()
	spark := newLocalSession(t)

	df, err := spark.CreateDataFrame([][]any{{"a", 1}, {"b", 2}}, nil)
	require.NoError(t, err)

	schema, err := df.Schema(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"_1", "_2"}, schema.FieldNames())
	assert.Equal(t, StringType{}, schema.Fields[0].DataType)
	assert.Equal(t, LongType{}, schema.Fields[1].DataType)

	_, err = spark.CreateDataFrame(nil, nil)
	assert.ErrorIs(t, err, ErrCannotInferSchema)
}

func TestCollect(t *testing.T) {
	ctx := context.Background()
	spark := newLocalSession(t)

	df, err := spark.CreateDataFrame(people, peopleSchema)
	require.NoError(t, err)
	rows, err := df.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	values, err := rows[2].Values()
	require.NoError(t, err)
	assert.Equal(t, []any{"Charlie", int32(35)}, values)

	schema, err := rows[0].Schema()
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, schema.FieldNames())
	assert.Equal(t, IntegerType{}, schema.Fields[1].DataType)
}

func TestRangeAndLimit(t *testing.T) {
	ctx := context.Background()
	spark := newLocalSession(t)

	count, err := spark.Range(0, 10, 2).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	rows, err := spark.Range(0, 100, 1).Limit(3).Collect(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	values, err := rows[0].Values()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(0)}, values)

	schema, err := spark.Range(0, 1, 1).Schema(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, schema.FieldNames())
	assert.Equal(t, LongType{}, schema.Fields[0].DataType)
}

func TestSql(t *testing.T) {
	ctx := context.Background()
	spark := newLocalSession(t)

	created, err := spark.Sql(ctx, "CREATE TABLE fruits (word VARCHAR, n INTEGER)")
	require.NoError(t, err)
	count, err := created.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	createdSchema, err := created.Schema(ctx)
	require.NoError(t, err)
	assert.Empty(t, createdSchema.Fields)

	_, err = spark.Sql(ctx, "INSERT INTO fruits VALUES ('apple', 123), ('orange', 456)")
	require.NoError(t, err)

	df, err := spark.Sql(ctx, "SELECT word, n FROM fruits ORDER BY n")
	require.NoError(t, err)
	count, err = df.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	rows, err := df.Collect(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	values, err := rows[1].Values()
	require.NoError(t, err)
	assert.Equal(t, []any{"orange", int32(456)}, values)

	commented, err := spark.Sql(ctx, "SELECT word FROM fruits -- every fruit")
	require.NoError(t, err)
	count, err = commented.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	commentedSchema, err := commented.Schema(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"word"}, commentedSchema.FieldNames())

	explained, err := spark.Sql(ctx, "EXPLAIN SELECT 1")
	require.NoError(t, err)
	count, err = explained.Count(ctx)
	require.NoError(t, err)
	assert.Positive(t, count)
	explainSchema, err := explained.Schema(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"explain_key", "explain_value"}, explainSchema.FieldNames())

	_, err = spark.Sql(ctx, "SELEC broken")
	assert.Error(t, err)
}

func TestShow(t *testing.T) {
	ctx := context.Background()
	spark := newLocalSession(t)

	df, err := spark.CreateDataFrame(people, peopleSchema)
	require.NoError(t, err)

	var out bytes.Buffer
	err = df.(*dataFrameImpl).showTo(ctx, &out, 2, true)
	require.NoError(t, err)
	assert.Equal(t, ""+
		"+-----+---+\n"+
		"| name|age|\n"+
		"+-----+---+\n"+
		"|Alice| 25|\n"+
		"|  Bob| 30|\n"+
		"+-----+---+\n"+
		"only showing top 2 rows\n"+
		"\n", out.String())
}

func TestVersionAndConf(t *testing.T) {
	ctx := context.Background()
	spark := newLocalSession(t)

	version, err := spark.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, server.SparkVersion, version)

	conf := spark.Conf()
	appName, err := conf.Get(ctx, "spark.app.name")
	require.NoError(t, err)
	assert.Equal(t, "TestApp", appName)

	require.NoError(t, conf.Set(ctx, "spark.sql.shuffle.partitions", "1"))
	all, err := conf.GetAll(ctx, "spark.")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"spark.app.name":               "TestApp",
		"spark.master":                 "local[1]",
		"spark.sql.shuffle.partitions": "1",
	}, all)

	require.NoError(t, conf.Unset(ctx, "spark.sql.shuffle.partitions"))
	_, err = conf.Get(ctx, "spark.sql.shuffle.partitions")
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGetOrCreateReusesActiveSession(t *testing.T) {
	ctx := context.Background()

	first, err := SparkSession.Builder.AppName("first").Master("local[1]").GetOrCreate(ctx)
	require.NoError(t, err)
	second, err := SparkSession.Builder.AppName("second").Config("spark.custom", "yes").GetOrCreate(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)

	appName, err := second.Conf().Get(ctx, "spark.app.name")
	require.NoError(t, err)
	assert.Equal(t, "second", appName)
	custom, err := second.Conf().Get(ctx, "spark.custom")
	require.NoError(t, err)
	assert.Equal(t, "yes", custom)

	require.NoError(t, first.Stop())
	require.NoError(t, first.Stop())

	third, err := SparkSession.Builder.AppName("third").Master("local[1]").GetOrCreate(ctx)
	require.NoError(t, err)
	defer third.Stop()
	assert.NotEqual(t, first.SessionId(), third.SessionId())
}

func TestBuilderIsValueType(t *testing.T) {
	base := SparkSession.Builder.Config("a", "1")
	derived := base.Config("b", "2").AppName("x")

	assert.Equal(t, map[string]string{"a": "1"}, base.conf)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, derived.conf)
	assert.Empty(t, base.appName)
}

func TestBuildRejectsBadMaster(t *testing.T) {
	_, err := SparkSession.Builder.Master("yarn").Build(context.Background())
	assert.Error(t, err)

	_, err = SparkSession.Builder.Remote("localhost:15002").Build(context.Background())
	assert.Error(t, err)
}

func startRemoteServer(t *testing.T, token string) string {
	t.Helper()
	ctx := context.Background()
	eng, err := engine.Open(ctx, engine.Options{Threads: 1})
	require.NoError(t, err)

	svc := server.NewService(eng, server.Options{Token: token})
	grpcServer := grpc.NewServer(svc.ServerOptions()...)
	svc.Register(grpcServer)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = grpcServer.Serve(lis)
	}()
	t.Cleanup(func() {
		grpcServer.Stop()
		_ = eng.Close()
	})
	return lis.Addr().String()
}

func TestRemoteSession(t *testing.T) {
	ctx := context.Background()
	addr := startRemoteServer(t, "secret")

	spark, err := SparkSession.Builder.
		AppName("remote").
		Remote(fmt.Sprintf("sc://%s/;token=secret;use_ssl=false;user_id=ci", addr)).
		Build(ctx)
	require.NoError(t, err)
	defer spark.Stop()

	df, err := spark.CreateDataFrame(people, peopleSchema)
	require.NoError(t, err)
	count, err := df.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	_, err = SparkSession.Builder.
		AppName("remote").
		Remote(fmt.Sprintf("sc://%s/;token=wrong;use_ssl=false", addr)).
		Build(ctx)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
