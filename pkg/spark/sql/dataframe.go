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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/ipc"
	proto "github.com/sparkci/sparksmoke/internal/generated"
)

type DataFrame interface {
	Show(ctx context.Context, numRows int, truncate bool) error
	Schema(ctx context.Context) (*StructType, error)
	Collect(ctx context.Context) ([]Row, error)
	Count(ctx context.Context) (int64, error)
	Limit(n int32) DataFrame
}

type dataFrameImpl struct {
	sparkSession *sparkSessionImpl
	relation     *proto.Relation
}

// Show prints the first numRows rows to stdout. Truncation cuts cells to 20
// characters.
func (df *dataFrameImpl) Show(ctx context.Context, numRows int, truncate bool) error {
	return df.showTo(ctx, os.Stdout, numRows, truncate)
}

func (df *dataFrameImpl) showTo(ctx context.Context, w io.Writer, numRows int, truncate bool) error {
	truncateValue := 0
	if truncate {
		truncateValue = 20
	}

	plan := rootPlan(&proto.Relation{
		ShowString: &proto.ShowString{
			Input:    df.relation,
			NumRows:  int32(numRows),
			Truncate: int32(truncateValue),
			Vertical: false,
		},
	})

	responseClient, err := df.sparkSession.executePlan(ctx, plan)
	if err != nil {
		return fmt.Errorf("failed to show dataframe: %w", err)
	}

	shown := false
	for {
		response, err := responseClient.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to receive show response: %w", err)
		}
		arrowBatch := response.GetArrowBatch()
		if arrowBatch == nil {
			continue
		}
		if err := showArrowBatchData(w, arrowBatch.Data); err != nil {
			return err
		}
		shown = true
	}
	if !shown {
		return fmt.Errorf("did not get arrow batch in response")
	}
	return nil
}

func (df *dataFrameImpl) Schema(ctx context.Context) (*StructType, error) {
	response, err := df.sparkSession.analyzePlan(ctx, df.createPlan())
	if err != nil {
		return nil, fmt.Errorf("failed to analyze plan: %w", err)
	}
	if response.GetSchema() == nil {
		return nil, fmt.Errorf("analyze response has no schema")
	}
	return convertProtoDataTypeToStructType(response.GetSchema().Schema)
}

func (df *dataFrameImpl) Collect(ctx context.Context) ([]Row, error) {
	return df.collect(ctx, df.createPlan())
}

// Count runs the aggregate Spark plans for count() and returns its single
// value. It does not collect the rows.
func (df *dataFrameImpl) Count(ctx context.Context) (int64, error) {
	rows, err := df.collect(ctx, rootPlan(countRelation(df.relation)))
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	if len(rows) != 1 {
		return 0, fmt.Errorf("count returned %d rows, expected 1", len(rows))
	}
	values, err := rows[0].Values()
	if err != nil {
		return 0, err
	}
	if len(values) != 1 {
		return 0, fmt.Errorf("count returned %d columns, expected 1", len(values))
	}
	switch n := values[0].(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("count returned %T, expected bigint", values[0])
	}
}

func (df *dataFrameImpl) Limit(n int32) DataFrame {
	return &dataFrameImpl{
		sparkSession: df.sparkSession,
		relation: &proto.Relation{
			Limit: &proto.Limit{Input: df.relation, Limit: n},
		},
	}
}

func (df *dataFrameImpl) collect(ctx context.Context, plan *proto.Plan) ([]Row, error) {
	responseClient, err := df.sparkSession.executePlan(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to execute plan: %w", err)
	}

	var schema *StructType
	var rows []Row
	for {
		response, err := responseClient.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to receive plan execution response: %w", err)
		}

		if dataType := response.GetSchema(); dataType != nil {
			schema, err = convertProtoDataTypeToStructType(dataType)
			if err != nil {
				return nil, err
			}
			continue
		}

		arrowBatch := response.GetArrowBatch()
		if arrowBatch == nil {
			continue
		}
		batchRows, err := readArrowBatchData(arrowBatch.Data, schema)
		if err != nil {
			return nil, err
		}
		rows = append(rows, batchRows...)
	}
	return rows, nil
}

func (df *dataFrameImpl) createPlan() *proto.Plan {
	return rootPlan(df.relation)
}

func showArrowBatchData(w io.Writer, data []byte) error {
	arrowReader, err := ipc.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create arrow reader: %w", err)
	}
	defer arrowReader.Release()

	for arrowReader.Next() {
		record := arrowReader.Record()
		if record.NumCols() == 0 {
			continue
		}
		column, ok := record.Column(0).(*array.String)
		if !ok {
			return fmt.Errorf("arrow column type is not string")
		}
		for i := 0; i < column.Len(); i++ {
			if _, err := fmt.Fprintln(w, column.Value(i)); err != nil {
				return err
			}
		}
	}
	if err := arrowReader.Err(); err != nil {
		return fmt.Errorf("failed to read arrow: %w", err)
	}
	return nil
}

// readArrowBatchData converts every record of an Arrow IPC stream to rows.
func readArrowBatchData(data []byte, schema *StructType) ([]Row, error) {
	arrowReader, err := ipc.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}
	defer arrowReader.Release()

	var rows []Row
	for arrowReader.Next() {
		record := arrowReader.Record()
		numRows := int(record.NumRows())
		numCols := int(record.NumCols())
		for rowIndex := 0; rowIndex < numRows; rowIndex++ {
			values := make([]any, numCols)
			for columnIndex := 0; columnIndex < numCols; columnIndex++ {
				v, err := readArrowValue(record.Column(columnIndex), rowIndex)
				if err != nil {
					return nil, fmt.Errorf("column %s: %w", record.ColumnName(columnIndex), err)
				}
				values[columnIndex] = v
			}
			rows = append(rows, &GenericRowWithSchema{values: values, schema: schema})
		}
	}
	if err := arrowReader.Err(); err != nil {
		return nil, fmt.Errorf("failed to read arrow: %w", err)
	}
	return rows, nil
}

func readArrowValue(column arrow.Array, i int) (any, error) {
	if column.IsNull(i) {
		return nil, nil
	}
	switch c := column.(type) {
	case *array.String:
		return c.Value(i), nil
	case *array.Int32:
		return c.Value(i), nil
	case *array.Int64:
		return c.Value(i), nil
	case *array.Float64:
		return c.Value(i), nil
	case *array.Boolean:
		return c.Value(i), nil
	case *array.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported arrow data type %s", column.DataType().ID().String())
	}
}

func convertProtoDataTypeToStructType(input *proto.DataType) (*StructType, error) {
	dataTypeStruct := input.GetStruct()
	if dataTypeStruct == nil {
		return nil, fmt.Errorf("schema is not a struct type")
	}
	return &StructType{
		Fields: convertProtoStructFields(dataTypeStruct.GetFields()),
	}, nil
}

func convertProtoStructFields(input []*proto.DataType_StructField) []StructField {
	result := make([]StructField, len(input))
	for i, f := range input {
		result[i] = convertProtoStructField(f)
	}
	return result
}

func convertProtoStructField(field *proto.DataType_StructField) StructField {
	return StructField{
		Name:     field.Name,
		DataType: convertProtoDataTypeToDataType(field.DataType),
		Nullable: field.Nullable,
	}
}

func convertProtoDataTypeToDataType(input *proto.DataType) DataType {
	switch v := input.GetKind().(type) {
	case *proto.DataType_Integer:
		return IntegerType{}
	case *proto.DataType_Long:
		return LongType{}
	case *proto.DataType_String:
		return StringType{}
	case *proto.DataType_Double:
		return DoubleType{}
	case *proto.DataType_Boolean:
		return BooleanType{}
	default:
		return UnsupportedType{
			TypeInfo: v,
		}
	}
}
