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

package generated

// DataType is a oneof: exactly one kind field is set.
type DataType struct {
	Integer *DataType_Integer `json:"integer,omitempty"`
	Long    *DataType_Long    `json:"long,omitempty"`
	String_ *DataType_String  `json:"string,omitempty"`
	Double  *DataType_Double  `json:"double,omitempty"`
	Boolean *DataType_Boolean `json:"boolean,omitempty"`
	Null    *DataType_NULL    `json:"null,omitempty"`
	Struct  *DataType_Struct  `json:"struct,omitempty"`
}

type DataType_Integer struct{}

type DataType_Long struct{}

type DataType_String struct{}

type DataType_Double struct{}

type DataType_Boolean struct{}

type DataType_NULL struct{}

type DataType_Struct struct {
	Fields []*DataType_StructField `json:"fields,omitempty"`
}

type DataType_StructField struct {
	Name     string    `json:"name,omitempty"`
	DataType *DataType `json:"data_type,omitempty"`
	Nullable bool      `json:"nullable,omitempty"`
}

func (x *DataType) GetStruct() *DataType_Struct {
	if x == nil {
		return nil
	}
	return x.Struct
}

// GetKind returns the populated kind message, or nil when none is set.
func (x *DataType) GetKind() any {
	switch {
	case x == nil:
		return nil
	case x.Integer != nil:
		return x.Integer
	case x.Long != nil:
		return x.Long
	case x.String_ != nil:
		return x.String_
	case x.Double != nil:
		return x.Double
	case x.Boolean != nil:
		return x.Boolean
	case x.Null != nil:
		return x.Null
	case x.Struct != nil:
		return x.Struct
	}
	return nil
}

func (x *DataType_Struct) GetFields() []*DataType_StructField {
	if x == nil {
		return nil
	}
	return x.Fields
}
