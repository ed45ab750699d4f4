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
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/ipc"
	"github.com/apache/arrow/go/v12/arrow/memory"
	proto "github.com/sparkci/sparksmoke/internal/generated"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowArrowBatchData(t *testing.T) {
	arrowFields := []arrow.Field{
		{
			Name: "show_string",
			Type: &arrow.StringType{},
		},
	}
	arrowSchema := arrow.NewSchema(arrowFields, nil)
	var buf bytes.Buffer
	arrowWriter := ipc.NewWriter(&buf, ipc.WithSchema(arrowSchema))

	alloc := memory.NewGoAllocator()
	recordBuilder := array.NewRecordBuilder(alloc, arrowSchema)
	defer recordBuilder.Release()

	recordBuilder.Field(0).(*array.StringBuilder).Append("str1a\nstr1b")
	recordBuilder.Field(0).(*array.StringBuilder).Append("str2")

	record := recordBuilder.NewRecord()
	defer record.Release()

	err := arrowWriter.Write(record)
	require.Nil(t, err)
	require.Nil(t, arrowWriter.Close())

	var out bytes.Buffer
	err = showArrowBatchData(&out, buf.Bytes())
	assert.Nil(t, err)
	assert.Equal(t, "str1a\nstr1b\nstr2\n", out.String())
}

func TestShowArrowBatchDataRejectsNonString(t *testing.T) {
	data, err := encodeLocalRelation([][]any{{1}}, NewStructType(
		StructField{Name: "n", DataType: LongType{}, Nullable: true},
	))
	require.NoError(t, err)

	var out bytes.Buffer
	err = showArrowBatchData(&out, data)
	assert.Error(t, err)
}

func TestReadArrowBatchData(t *testing.T) {
	schema := NewStructType(
		StructField{Name: "name", DataType: StringType{}, Nullable: true},
		StructField{Name: "age", DataType: IntegerType{}, Nullable: true},
		StructField{Name: "id", DataType: LongType{}, Nullable: true},
		StructField{Name: "score", DataType: DoubleType{}, Nullable: true},
		StructField{Name: "ok", DataType: BooleanType{}, Nullable: true},
	)
	data, err := encodeLocalRelation([][]any{
		{"Alice", 25, int64(1), 1.5, true},
		{nil, nil, nil, nil, nil},
	}, schema)
	require.NoError(t, err)

	rows, err := readArrowBatchData(data, schema)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	values, err := rows[0].Values()
	require.NoError(t, err)
	assert.Equal(t, []any{"Alice", int32(25), int64(1), 1.5, true}, values)

	values, err = rows[1].Values()
	require.NoError(t, err)
	assert.Equal(t, []any{nil, nil, nil, nil, nil}, values)

	rowSchema, err := rows[0].Schema()
	require.NoError(t, err)
	assert.Equal(t, schema, rowSchema)
}

func TestConvertProtoDataTypeToStructType(t *testing.T) {
	structType, err := convertProtoDataTypeToStructType(&proto.DataType{
		Struct: &proto.DataType_Struct{
			Fields: []*proto.DataType_StructField{
				{Name: "name", DataType: &proto.DataType{String_: &proto.DataType_String{}}, Nullable: true},
				{Name: "age", DataType: &proto.DataType{Integer: &proto.DataType_Integer{}}},
				{Name: "id", DataType: &proto.DataType{Long: &proto.DataType_Long{}}},
				{Name: "nothing", DataType: &proto.DataType{Null: &proto.DataType_NULL{}}},
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age", "id", "nothing"}, structType.FieldNames())
	assert.Equal(t, StringType{}, structType.Fields[0].DataType)
	assert.True(t, structType.Fields[0].Nullable)
	assert.Equal(t, IntegerType{}, structType.Fields[1].DataType)
	assert.False(t, structType.Fields[1].Nullable)
	assert.Equal(t, LongType{}, structType.Fields[2].DataType)
	assert.Equal(t, "Unsupported", structType.Fields[3].DataType.TypeName())

	_, err = convertProtoDataTypeToStructType(&proto.DataType{Integer: &proto.DataType_Integer{}})
	assert.Error(t, err)
}

func TestCountRelation(t *testing.T) {
	input := &proto.Relation{Range: &proto.Range{End: 10, Step: 1}}
	rel := countRelation(input)

	require.NotNil(t, rel.Aggregate)
	assert.Same(t, input, rel.Aggregate.Input)
	assert.Equal(t, proto.Aggregate_GROUP_TYPE_GROUPBY, rel.Aggregate.GroupType)
	assert.Empty(t, rel.Aggregate.GroupingExpressions)
	require.Len(t, rel.Aggregate.AggregateExpressions, 1)

	alias := rel.Aggregate.AggregateExpressions[0].Alias
	require.NotNil(t, alias)
	assert.Equal(t, []string{"count"}, alias.Name)
	assert.Equal(t, "count", alias.Expr.UnresolvedFunction.FunctionName)
	assert.Equal(t, int32(1), *alias.Expr.UnresolvedFunction.Arguments[0].Literal.Integer)
}

func TestRootPlanAssignsIncreasingPlanIds(t *testing.T) {
	rel := &proto.Relation{Sql: &proto.SQL{Query: "select 1"}}
	first := rootPlan(rel)
	second := rootPlan(rel)

	assert.Nil(t, rel.Common)
	assert.Less(t, first.Root.GetCommon().PlanId, second.Root.GetCommon().PlanId)
	assert.Equal(t, rel.Sql, first.Root.Sql)
}
