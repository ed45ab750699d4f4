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

package engine

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/ipc"
	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/duckdb/duckdb-go/v2"
)

// encodeBatch writes rows of normalized values as a single Arrow IPC stream.
func encodeBatch(fields []field, rows [][]any) ([]byte, error) {
	schema := arrowSchema(fields)
	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for _, row := range rows {
		for i, v := range row {
			if err := appendValue(builder.Field(i), fields[i].kind, v); err != nil {
				return nil, fmt.Errorf("column %s: %w", fields[i].name, err)
			}
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	var buf bytes.Buffer
	writer := ipc.NewWriter(&buf, ipc.WithSchema(schema))
	if err := writer.Write(record); err != nil {
		return nil, fmt.Errorf("failed to write arrow record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close arrow writer: %w", err)
	}
	return buf.Bytes(), nil
}

func appendValue(b array.Builder, k kind, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch k {
	case kindInteger:
		b.(*array.Int32Builder).Append(v.(int32))
	case kindLong:
		b.(*array.Int64Builder).Append(v.(int64))
	case kindDouble:
		b.(*array.Float64Builder).Append(v.(float64))
	case kindBoolean:
		b.(*array.BooleanBuilder).Append(v.(bool))
	case kindString:
		b.(*array.StringBuilder).Append(v.(string))
	default:
		return fmt.Errorf("unknown column kind %d", k)
	}
	return nil
}

func arrowValue(column arrow.Array, i int) (driver.Value, error) {
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
	default:
		return nil, fmt.Errorf("unsupported arrow column %s", column.DataType().ID().String())
	}
}

// loadLocalRelation creates table and appends the rows of an Arrow IPC
// stream to it through the DuckDB appender.
func loadLocalRelation(ctx context.Context, conn *sql.Conn, table string, data []byte) error {
	reader, err := ipc.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create arrow reader: %w", err)
	}
	defer reader.Release()

	arrowFields := reader.Schema().Fields()
	if len(arrowFields) == 0 {
		return fmt.Errorf("local relation has no columns")
	}
	columns := make([]string, len(arrowFields))
	for i, f := range arrowFields {
		k, err := kindOfArrowType(f.Type)
		if err != nil {
			return fmt.Errorf("column %s: %w", f.Name, err)
		}
		columns[i] = quoteIdentifier(f.Name) + " " + k.sqlType()
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdentifier(table), strings.Join(columns, ", "))
	if _, err := conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}

	return conn.Raw(func(raw any) error {
		driverConn, ok := raw.(driver.Conn)
		if !ok {
			return fmt.Errorf("unexpected raw conn type %T", raw)
		}
		appender, err := duckdb.NewAppenderFromConn(driverConn, "", table)
		if err != nil {
			return fmt.Errorf("create appender for %s: %w", table, err)
		}
		defer func() { _ = appender.Close() }()

		values := make([]driver.Value, len(arrowFields))
		for reader.Next() {
			record := reader.Record()
			numRows := int(record.NumRows())
			for rowIndex := 0; rowIndex < numRows; rowIndex++ {
				for columnIndex := range values {
					v, err := arrowValue(record.Column(columnIndex), rowIndex)
					if err != nil {
						return err
					}
					values[columnIndex] = v
				}
				if err := appender.AppendRow(values...); err != nil {
					return fmt.Errorf("append row to %s: %w", table, err)
				}
			}
		}
		if err := reader.Err(); err != nil {
			return fmt.Errorf("failed to read arrow: %w", err)
		}
		return appender.Flush()
	})
}
