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
	"sync/atomic"

	proto "github.com/sparkci/sparksmoke/internal/generated"
)

var atomicPlanId int64

func newPlanId() int64 {
	return atomic.AddInt64(&atomicPlanId, 1)
}

func rootPlan(relation *proto.Relation) *proto.Plan {
	return &proto.Plan{
		Root: relation.WithCommon(&proto.RelationCommon{
			PlanId: newPlanId(),
		}),
	}
}

// countRelation is the plan Spark builds for df.count(): a global aggregate
// of count(1) named "count".
func countRelation(input *proto.Relation) *proto.Relation {
	one := int32(1)
	return &proto.Relation{
		Aggregate: &proto.Aggregate{
			Input:     input,
			GroupType: proto.Aggregate_GROUP_TYPE_GROUPBY,
			AggregateExpressions: []*proto.Expression{
				{
					Alias: &proto.Expression_Alias{
						Expr: &proto.Expression{
							UnresolvedFunction: &proto.Expression_UnresolvedFunction{
								FunctionName: "count",
								Arguments: []*proto.Expression{
									{Literal: &proto.Expression_Literal{Integer: &one}},
								},
							},
						},
						Name: []string{"count"},
					},
				},
			},
		},
	}
}
