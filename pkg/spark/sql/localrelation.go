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
	"fmt"
	"math"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/ipc"
	"github.com/apache/arrow/go/v12/arrow/memory"
)

// encodeLocalRelation writes data as one Arrow IPC stream. The stream always
// carries the schema, so an empty table keeps its columns.
func encodeLocalRelation(data [][]any, schema *StructType) ([]byte, error) {
	arrowFields := make([]arrow.Field, len(schema.Fields))
	for i, f := range schema.Fields {
		arrowType, err := arrowTypeOf(f.DataType)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", f.Name, err)
		}
		arrowFields[i] = arrow.Field{Name: f.Name, Type: arrowType, Nullable: f.Nullable}
	}
	arrowSchema := arrow.NewSchema(arrowFields, nil)

	alloc := memory.NewGoAllocator()
	recordBuilder := array.NewRecordBuilder(alloc, arrowSchema)
	defer recordBuilder.Release()

	for rowIndex, row := range data {
		if len(row) != len(schema.Fields) {
			return nil, fmt.Errorf("%w: row %d has %d values, schema has %d fields",
				ErrInvalidSchema, rowIndex, len(row), len(schema.Fields))
		}
		for columnIndex, v := range row {
			f := schema.Fields[columnIndex]
			if err := appendLocalValue(recordBuilder.Field(columnIndex), f, v); err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", rowIndex, f.Name, err)
			}
		}
	}

	record := recordBuilder.NewRecord()
	defer record.Release()

	var buf bytes.Buffer
	arrowWriter := ipc.NewWriter(&buf, ipc.WithSchema(arrowSchema))
	if err := arrowWriter.Write(record); err != nil {
		return nil, fmt.Errorf("failed to write arrow record: %w", err)
	}
	if err := arrowWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close arrow writer: %w", err)
	}
	return buf.Bytes(), nil
}

func arrowTypeOf(dataType DataType) (arrow.DataType, error) {
	switch dataType.(type) {
	case IntegerType:
		return arrow.PrimitiveTypes.Int32, nil
	case LongType:
		return arrow.PrimitiveTypes.Int64, nil
	case StringType:
		return arrow.BinaryTypes.String, nil
	case DoubleType:
		return arrow.PrimitiveTypes.Float64, nil
	case BooleanType:
		return arrow.FixedWidthTypes.Boolean, nil
	default:
		return nil, fmt.Errorf("unsupported data type %s", getDataTypeName(dataType))
	}
}

func appendLocalValue(builder array.Builder, f StructField, v any) error {
	if v == nil {
		if !f.Nullable {
			return fmt.Errorf("null value in non-nullable field")
		}
		builder.AppendNull()
		return nil
	}
	switch f.DataType.(type) {
	case IntegerType:
		n, err := integerValue(v)
		if err != nil {
			return err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return fmt.Errorf("value %d does not fit in int", n)
		}
		builder.(*array.Int32Builder).Append(int32(n))
	case LongType:
		n, err := integerValue(v)
		if err != nil {
			return err
		}
		builder.(*array.Int64Builder).Append(n)
	case DoubleType:
		switch x := v.(type) {
		case float64:
			builder.(*array.Float64Builder).Append(x)
		case float32:
			builder.(*array.Float64Builder).Append(float64(x))
		default:
			n, err := integerValue(v)
			if err != nil {
				return fmt.Errorf("cannot use %T as double", v)
			}
			builder.(*array.Float64Builder).Append(float64(n))
		}
	case StringType:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("cannot use %T as string", v)
		}
		builder.(*array.StringBuilder).Append(s)
	case BooleanType:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("cannot use %T as boolean", v)
		}
		builder.(*array.BooleanBuilder).Append(b)
	default:
		return fmt.Errorf("unsupported data type %s", getDataTypeName(f.DataType))
	}
	return nil
}

func integerValue(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, fmt.Errorf("value %d does not fit in bigint", n)
		}
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("value %d does not fit in bigint", n)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("cannot use %T as integer", v)
	}
}
