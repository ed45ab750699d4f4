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

// Relation is a oneof over the supported relation kinds. Common is optional.
type Relation struct {
	Common *RelationCommon `json:"common,omitempty"`

	LocalRelation *LocalRelation `json:"local_relation,omitempty"`
	Sql           *SQL           `json:"sql,omitempty"`
	Range         *Range         `json:"range,omitempty"`
	Aggregate     *Aggregate     `json:"aggregate,omitempty"`
	Limit         *Limit         `json:"limit,omitempty"`
	ShowString    *ShowString    `json:"show_string,omitempty"`
}

type RelationCommon struct {
	SourceInfo string `json:"source_info,omitempty"`
	PlanId     int64  `json:"plan_id,omitempty"`
}

// LocalRelation carries client-side rows as an Arrow IPC stream.
type LocalRelation struct {
	Data []byte `json:"data,omitempty"`
}

type SQL struct {
	Query string `json:"query,omitempty"`
}

type Range struct {
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
	Step  int64 `json:"step,omitempty"`
}

type Aggregate_GroupType int32

const (
	Aggregate_GROUP_TYPE_UNSPECIFIED Aggregate_GroupType = 0
	Aggregate_GROUP_TYPE_GROUPBY     Aggregate_GroupType = 1
)

type Aggregate struct {
	Input                *Relation           `json:"input,omitempty"`
	GroupType            Aggregate_GroupType `json:"group_type,omitempty"`
	GroupingExpressions  []*Expression       `json:"grouping_expressions,omitempty"`
	AggregateExpressions []*Expression       `json:"aggregate_expressions,omitempty"`
}

type Limit struct {
	Input *Relation `json:"input,omitempty"`
	Limit int32     `json:"limit,omitempty"`
}

type ShowString struct {
	Input    *Relation `json:"input,omitempty"`
	NumRows  int32     `json:"num_rows,omitempty"`
	Truncate int32     `json:"truncate,omitempty"`
	Vertical bool      `json:"vertical,omitempty"`
}

func (x *Relation) GetCommon() *RelationCommon {
	if x == nil {
		return nil
	}
	return x.Common
}

func (x *Relation) GetLocalRelation() *LocalRelation {
	if x == nil {
		return nil
	}
	return x.LocalRelation
}

func (x *LocalRelation) GetData() []byte {
	if x == nil {
		return nil
	}
	return x.Data
}

func (x *Relation) GetSql() *SQL {
	if x == nil {
		return nil
	}
	return x.Sql
}

func (x *Relation) GetShowString() *ShowString {
	if x == nil {
		return nil
	}
	return x.ShowString
}

// WithCommon returns a shallow copy of x that carries the given common info.
func (x *Relation) WithCommon(common *RelationCommon) *Relation {
	if x == nil {
		return nil
	}
	c := *x
	c.Common = common
	return &c
}
