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
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/duckdb/duckdb-go/v2"
	proto "github.com/sparkci/sparksmoke/internal/generated"
)

// kind is the column type as seen by clients. Every DuckDB type maps onto one.
type kind int

const (
	kindString kind = iota
	kindInteger
	kindLong
	kindDouble
	kindBoolean
)

type field struct {
	name string
	kind kind
}

func kindOfDatabaseType(name string) kind {
	name = strings.ToUpper(strings.TrimSpace(name))
	switch {
	case name == "TINYINT", name == "SMALLINT", name == "INTEGER",
		name == "UTINYINT", name == "USMALLINT":
		return kindInteger
	case name == "BIGINT", name == "HUGEINT", name == "UINTEGER", name == "UBIGINT":
		return kindLong
	case name == "FLOAT", name == "DOUBLE", strings.HasPrefix(name, "DECIMAL"):
		return kindDouble
	case name == "BOOLEAN":
		return kindBoolean
	default:
		return kindString
	}
}

func kindOfArrowType(t arrow.DataType) (kind, error) {
	switch t.ID() {
	case arrow.STRING:
		return kindString, nil
	case arrow.INT32:
		return kindInteger, nil
	case arrow.INT64:
		return kindLong, nil
	case arrow.FLOAT64:
		return kindDouble, nil
	case arrow.BOOL:
		return kindBoolean, nil
	default:
		return 0, fmt.Errorf("unsupported arrow data type %s", t.ID().String())
	}
}

func (k kind) sqlType() string {
	switch k {
	case kindInteger:
		return "INTEGER"
	case kindLong:
		return "BIGINT"
	case kindDouble:
		return "DOUBLE"
	case kindBoolean:
		return "BOOLEAN"
	default:
		return "VARCHAR"
	}
}

func (k kind) arrowType() arrow.DataType {
	switch k {
	case kindInteger:
		return arrow.PrimitiveTypes.Int32
	case kindLong:
		return arrow.PrimitiveTypes.Int64
	case kindDouble:
		return arrow.PrimitiveTypes.Float64
	case kindBoolean:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

func (k kind) dataType() *proto.DataType {
	switch k {
	case kindInteger:
		return &proto.DataType{Integer: &proto.DataType_Integer{}}
	case kindLong:
		return &proto.DataType{Long: &proto.DataType_Long{}}
	case kindDouble:
		return &proto.DataType{Double: &proto.DataType_Double{}}
	case kindBoolean:
		return &proto.DataType{Boolean: &proto.DataType_Boolean{}}
	default:
		return &proto.DataType{String_: &proto.DataType_String{}}
	}
}

func structDataType(fields []field) *proto.DataType {
	protoFields := make([]*proto.DataType_StructField, len(fields))
	for i, f := range fields {
		protoFields[i] = &proto.DataType_StructField{
			Name:     f.name,
			DataType: f.kind.dataType(),
			Nullable: true,
		}
	}
	return &proto.DataType{Struct: &proto.DataType_Struct{Fields: protoFields}}
}

func arrowSchema(fields []field) *arrow.Schema {
	arrowFields := make([]arrow.Field, len(fields))
	for i, f := range fields {
		arrowFields[i] = arrow.Field{Name: f.name, Type: f.kind.arrowType(), Nullable: true}
	}
	return arrow.NewSchema(arrowFields, nil)
}

// normalize converts a value scanned from DuckDB into the Go type that
// matches k: int32, int64, float64, bool or string. NULL stays nil.
func normalize(k kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch k {
	case kindInteger:
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("value %d overflows int32", n)
		}
		return int32(n), nil
	case kindLong:
		return toInt64(v)
	case kindDouble:
		return toFloat64(v)
	case kindBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("cannot convert %T to boolean", v)
		}
		return b, nil
	default:
		switch s := v.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		default:
			return fmt.Sprint(v), nil
		}
	}
}

func toInt64(v any) (int64, error) {
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
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", n)
		}
		return int64(n), nil
	case *big.Int:
		if !n.IsInt64() {
			return 0, fmt.Errorf("value %s overflows int64", n.String())
		}
		return n.Int64(), nil
	default:
		return 0, fmt.Errorf("cannot convert %T to integer", v)
	}
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case duckdb.Decimal:
		return n.Float64(), nil
	case interface{ Float64() float64 }:
		return n.Float64(), nil
	}
	i, err := toInt64(v)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %T to double", v)
	}
	return float64(i), nil
}

// formatCell renders a normalized value the way Spark's show does.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		s := strconv.FormatFloat(x, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eEnN") {
			s += ".0"
		}
		return s
	default:
		return fmt.Sprint(v)
	}
}
