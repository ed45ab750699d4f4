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

type Expression struct {
	Literal             *Expression_Literal             `json:"literal,omitempty"`
	UnresolvedAttribute *Expression_UnresolvedAttribute `json:"unresolved_attribute,omitempty"`
	UnresolvedFunction  *Expression_UnresolvedFunction  `json:"unresolved_function,omitempty"`
	UnresolvedStar      *Expression_UnresolvedStar      `json:"unresolved_star,omitempty"`
	Alias               *Expression_Alias               `json:"alias,omitempty"`
}

// Expression_Literal is a oneof; a literal with no field set is NULL.
type Expression_Literal struct {
	Integer *int32   `json:"integer,omitempty"`
	Long    *int64   `json:"long,omitempty"`
	Double  *float64 `json:"double,omitempty"`
	Boolean *bool    `json:"boolean,omitempty"`
	String_ *string  `json:"string,omitempty"`
}

type Expression_UnresolvedAttribute struct {
	UnparsedIdentifier string `json:"unparsed_identifier,omitempty"`
}

type Expression_UnresolvedFunction struct {
	FunctionName string        `json:"function_name,omitempty"`
	Arguments    []*Expression `json:"arguments,omitempty"`
	IsDistinct   bool          `json:"is_distinct,omitempty"`
}

type Expression_UnresolvedStar struct{}

type Expression_Alias struct {
	Expr *Expression `json:"expr,omitempty"`
	Name []string    `json:"name,omitempty"`
}
