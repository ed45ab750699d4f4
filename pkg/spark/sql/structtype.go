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
	"fmt"
	"strings"
)

type StructField struct {
	Name     string
	DataType DataType
	Nullable bool
}

type StructType struct {
	Fields []StructField
}

func NewStructType(fields ...StructField) *StructType {
	return &StructType{Fields: fields}
}

func (t *StructType) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// TreeString renders the schema the way Spark's printSchema does.
func (t *StructType) TreeString() string {
	var sb strings.Builder
	sb.WriteString("root\n")
	for _, f := range t.Fields {
		fmt.Fprintf(&sb, " |-- %s: %s (nullable = %t)\n", f.Name, f.DataType.SimpleString(), f.Nullable)
	}
	return sb.String()
}
