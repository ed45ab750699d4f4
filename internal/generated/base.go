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

// Package generated holds the Spark Connect messages and service stubs used
// between the client and the connect service. Messages are plain structs
// carried by the JSON codec registered in codec.go.
package generated

// Plan is a oneof: either a root relation to execute or a command.
type Plan struct {
	Root    *Relation `json:"root,omitempty"`
	Command *Command  `json:"command,omitempty"`
}

type Command struct {
	SqlCommand *SqlCommand `json:"sql_command,omitempty"`
}

type SqlCommand struct {
	Sql string `json:"sql,omitempty"`
}

type UserContext struct {
	UserId   string `json:"user_id,omitempty"`
	UserName string `json:"user_name,omitempty"`
}

type KeyValue struct {
	Key   string  `json:"key,omitempty"`
	Value *string `json:"value,omitempty"`
}

type ExecutePlanRequest struct {
	SessionId   string       `json:"session_id,omitempty"`
	UserContext *UserContext `json:"user_context,omitempty"`
	OperationId string       `json:"operation_id,omitempty"`
	Plan        *Plan        `json:"plan,omitempty"`
	ClientType  string       `json:"client_type,omitempty"`
}

// ExecutePlanResponse is a oneof over the response kinds. A stream sends the
// schema first, then arrow batches, then ResultComplete.
type ExecutePlanResponse struct {
	SessionId   string `json:"session_id,omitempty"`
	OperationId string `json:"operation_id,omitempty"`

	ArrowBatch       *ExecutePlanResponse_ArrowBatch       `json:"arrow_batch,omitempty"`
	SqlCommandResult *ExecutePlanResponse_SqlCommandResult `json:"sql_command_result,omitempty"`
	ResultComplete   *ExecutePlanResponse_ResultComplete   `json:"result_complete,omitempty"`
	Schema           *DataType                             `json:"schema,omitempty"`
}

type ExecutePlanResponse_ArrowBatch struct {
	RowCount int64  `json:"row_count,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

type ExecutePlanResponse_SqlCommandResult struct {
	Relation *Relation `json:"relation,omitempty"`
}

type ExecutePlanResponse_ResultComplete struct{}

type AnalyzePlanRequest struct {
	SessionId   string       `json:"session_id,omitempty"`
	UserContext *UserContext `json:"user_context,omitempty"`
	ClientType  string       `json:"client_type,omitempty"`

	Schema       *AnalyzePlanRequest_Schema       `json:"schema,omitempty"`
	SparkVersion *AnalyzePlanRequest_SparkVersion `json:"spark_version,omitempty"`
}

type AnalyzePlanRequest_Schema struct {
	Plan *Plan `json:"plan,omitempty"`
}

type AnalyzePlanRequest_SparkVersion struct{}

type AnalyzePlanResponse struct {
	SessionId string `json:"session_id,omitempty"`

	Schema       *AnalyzePlanResponse_Schema       `json:"schema,omitempty"`
	SparkVersion *AnalyzePlanResponse_SparkVersion `json:"spark_version,omitempty"`
}

type AnalyzePlanResponse_Schema struct {
	Schema *DataType `json:"schema,omitempty"`
}

type AnalyzePlanResponse_SparkVersion struct {
	Version string `json:"version,omitempty"`
}

type ConfigRequest struct {
	SessionId   string                   `json:"session_id,omitempty"`
	UserContext *UserContext             `json:"user_context,omitempty"`
	Operation   *ConfigRequest_Operation `json:"operation,omitempty"`
	ClientType  string                   `json:"client_type,omitempty"`
}

// ConfigRequest_Operation is a oneof over the config operations.
type ConfigRequest_Operation struct {
	Set    *ConfigRequest_Set    `json:"set,omitempty"`
	Get    *ConfigRequest_Get    `json:"get,omitempty"`
	GetAll *ConfigRequest_GetAll `json:"get_all,omitempty"`
	Unset  *ConfigRequest_Unset  `json:"unset,omitempty"`
}

type ConfigRequest_Set struct {
	Pairs []*KeyValue `json:"pairs,omitempty"`
}

type ConfigRequest_Get struct {
	Keys []string `json:"keys,omitempty"`
}

type ConfigRequest_GetAll struct {
	Prefix *string `json:"prefix,omitempty"`
}

type ConfigRequest_Unset struct {
	Keys []string `json:"keys,omitempty"`
}

type ConfigResponse struct {
	SessionId string      `json:"session_id,omitempty"`
	Pairs     []*KeyValue `json:"pairs,omitempty"`
	Warnings  []string    `json:"warnings,omitempty"`
}

type ReleaseSessionRequest struct {
	SessionId   string       `json:"session_id,omitempty"`
	UserContext *UserContext `json:"user_context,omitempty"`
	ClientType  string       `json:"client_type,omitempty"`
}

type ReleaseSessionResponse struct {
	SessionId string `json:"session_id,omitempty"`
}

func (x *Plan) GetRoot() *Relation {
	if x == nil {
		return nil
	}
	return x.Root
}

func (x *Plan) GetCommand() *Command {
	if x == nil {
		return nil
	}
	return x.Command
}

func (x *Command) GetSqlCommand() *SqlCommand {
	if x == nil {
		return nil
	}
	return x.SqlCommand
}

func (x *ExecutePlanResponse) GetArrowBatch() *ExecutePlanResponse_ArrowBatch {
	if x == nil {
		return nil
	}
	return x.ArrowBatch
}

func (x *ExecutePlanResponse) GetSchema() *DataType {
	if x == nil {
		return nil
	}
	return x.Schema
}

func (x *ExecutePlanResponse) GetSqlCommandResult() *ExecutePlanResponse_SqlCommandResult {
	if x == nil {
		return nil
	}
	return x.SqlCommandResult
}

func (x *ExecutePlanResponse_SqlCommandResult) GetRelation() *Relation {
	if x == nil {
		return nil
	}
	return x.Relation
}

func (x *AnalyzePlanResponse) GetSchema() *AnalyzePlanResponse_Schema {
	if x == nil {
		return nil
	}
	return x.Schema
}

func (x *AnalyzePlanResponse) GetSparkVersion() *AnalyzePlanResponse_SparkVersion {
	if x == nil {
		return nil
	}
	return x.SparkVersion
}

func (x *UserContext) GetUserId() string {
	if x == nil {
		return ""
	}
	return x.UserId
}

func (x *KeyValue) GetValue() string {
	if x == nil || x.Value == nil {
		return ""
	}
	return *x.Value
}

func (x *AnalyzePlanResponse_SparkVersion) GetVersion() string {
	if x == nil {
		return ""
	}
	return x.Version
}
