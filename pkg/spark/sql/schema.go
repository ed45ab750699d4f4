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
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidSchema     = errors.New("invalid schema")
	ErrCannotInferSchema = errors.New("can not infer schema")
)

var ddlTypes = map[string]DataType{
	"int":     IntegerType{},
	"integer": IntegerType{},
	"bigint":  LongType{},
	"long":    LongType{},
	"string":  StringType{},
	"varchar": StringType{},
	"double":  DoubleType{},
	"float8":  DoubleType{},
	"boolean": BooleanType{},
	"bool":    BooleanType{},
}

// ParseSchema parses a DDL schema string such as "name STRING, age INT" or
// "name: string, age: int". A trailing NOT NULL makes the field non-nullable.
func ParseSchema(ddl string) (*StructType, error) {
	if strings.TrimSpace(ddl) == "" {
		return nil, fmt.Errorf("%w: empty schema string", ErrInvalidSchema)
	}
	parts := strings.Split(ddl, ",")
	fields := make([]StructField, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		f, err := parseField(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = true
		fields = append(fields, f)
	}
	return NewStructType(fields...), nil
}

func parseField(def string) (StructField, error) {
	var name string
	var rest []string
	if i := strings.Index(def, ":"); i >= 0 {
		name = strings.TrimSpace(def[:i])
		rest = strings.Fields(def[i+1:])
	} else {
		tokens := strings.Fields(def)
		if len(tokens) > 0 {
			name, rest = tokens[0], tokens[1:]
		}
	}
	name = strings.Trim(name, "`")
	if name == "" || len(rest) == 0 {
		return StructField{}, fmt.Errorf("%w: expected \"name type\", got %q", ErrInvalidSchema, def)
	}

	dataType, ok := ddlTypes[strings.ToLower(rest[0])]
	if !ok {
		return StructField{}, fmt.Errorf("%w: unsupported type %q for column %s", ErrInvalidSchema, rest[0], name)
	}
	nullable := true
	switch modifiers := strings.ToUpper(strings.Join(rest[1:], " ")); modifiers {
	case "":
	case "NOT NULL":
		nullable = false
	default:
		return StructField{}, fmt.Errorf("%w: unexpected %q after type of column %s", ErrInvalidSchema, modifiers, name)
	}
	return StructField{Name: name, DataType: dataType, Nullable: nullable}, nil
}

// InferSchema derives a schema from the first non-nil value of every column.
// Columns without a name are called _1, _2, ... Go integers infer as bigint.
func InferSchema(data [][]any, columns ...string) (*StructType, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w from empty dataset", ErrCannotInferSchema)
	}
	width := len(data[0])
	for i, row := range data {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrInvalidSchema, i, len(row), width)
		}
	}
	if len(columns) > width {
		return nil, fmt.Errorf("%w: %d column names for %d values", ErrInvalidSchema, len(columns), width)
	}

	fields := make([]StructField, width)
	for c := 0; c < width; c++ {
		name := "_" + strconv.Itoa(c+1)
		if c < len(columns) {
			name = columns[c]
		}
		var dataType DataType
		for _, row := range data {
			if row[c] == nil {
				continue
			}
			t, err := inferType(row[c])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", name, err)
			}
			dataType = t
			break
		}
		if dataType == nil {
			return nil, fmt.Errorf("%w: column %s has only null values", ErrCannotInferSchema, name)
		}
		fields[c] = StructField{Name: name, DataType: dataType, Nullable: true}
	}
	return NewStructType(fields...), nil
}

func inferType(v any) (DataType, error) {
	switch v.(type) {
	case string:
		return StringType{}, nil
	case bool:
		return BooleanType{}, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return LongType{}, nil
	case float32, float64:
		return DoubleType{}, nil
	default:
		return nil, fmt.Errorf("%w for type %T", ErrCannotInferSchema, v)
	}
}
