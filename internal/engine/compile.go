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
	"strconv"
	"strings"

	"github.com/google/uuid"
	proto "github.com/sparkci/sparksmoke/internal/generated"
)

// aggregateFunctions maps the Spark function names we accept to DuckDB.
var aggregateFunctions = map[string]string{
	"count": "count",
	"sum":   "sum",
	"min":   "min",
	"max":   "max",
	"avg":   "avg",
	"mean":  "avg",
}

type localTable struct {
	name string
	data []byte
}

// compiler turns a relation tree into one DuckDB query. Local relations are
// collected so the caller can materialize them before running the query.
type compiler struct {
	locals   []localTable
	aliasSeq int
	newName  func() string
}

func newCompiler() *compiler {
	return &compiler{
		newName: func() string {
			return "local_relation_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
}

func (c *compiler) alias() string {
	c.aliasSeq++
	return "t" + strconv.Itoa(c.aliasSeq)
}

func (c *compiler) compile(rel *proto.Relation) (string, error) {
	switch {
	case rel == nil:
		return "", fmt.Errorf("%w: relation is nil", ErrUnsupportedRelation)
	case rel.LocalRelation != nil:
		if len(rel.LocalRelation.Data) == 0 {
			return "SELECT NULL AS value LIMIT 0", nil
		}
		name := c.newName()
		c.locals = append(c.locals, localTable{name: name, data: rel.LocalRelation.Data})
		return "SELECT * FROM " + quoteIdentifier(name), nil
	case rel.Sql != nil:
		query := strings.TrimSpace(rel.Sql.Query)
		query = strings.TrimSpace(strings.TrimRight(query, ";"))
		if query == "" {
			return "", fmt.Errorf("%w: empty sql query", ErrUnsupportedRelation)
		}
		return query, nil
	case rel.Range != nil:
		step := rel.Range.Step
		if step == 0 {
			step = 1
		}
		return fmt.Sprintf("SELECT range AS id FROM range(%d, %d, %d)", rel.Range.Start, rel.Range.End, step), nil
	case rel.Aggregate != nil:
		return c.compileAggregate(rel.Aggregate)
	case rel.Limit != nil:
		if rel.Limit.Limit < 0 {
			return "", fmt.Errorf("%w: negative limit %d", ErrUnsupportedRelation, rel.Limit.Limit)
		}
		input, err := c.compile(rel.Limit.Input)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("SELECT * FROM %s LIMIT %d", subquery(input, c.alias()), rel.Limit.Limit), nil
	case rel.ShowString != nil:
		return "", fmt.Errorf("%w: show_string must be the plan root", ErrUnsupportedRelation)
	default:
		return "", fmt.Errorf("%w: no relation type set", ErrUnsupportedRelation)
	}
}

func (c *compiler) compileAggregate(agg *proto.Aggregate) (string, error) {
	switch agg.GroupType {
	case proto.Aggregate_GROUP_TYPE_UNSPECIFIED, proto.Aggregate_GROUP_TYPE_GROUPBY:
	default:
		return "", fmt.Errorf("%w: aggregate group type %d", ErrUnsupportedRelation, agg.GroupType)
	}
	input, err := c.compile(agg.Input)
	if err != nil {
		return "", err
	}

	groups := make([]string, 0, len(agg.GroupingExpressions))
	for _, e := range agg.GroupingExpressions {
		s, err := compileExpression(e)
		if err != nil {
			return "", err
		}
		groups = append(groups, s)
	}
	selectList := append([]string{}, groups...)
	for _, e := range agg.AggregateExpressions {
		s, err := compileExpression(e)
		if err != nil {
			return "", err
		}
		selectList = append(selectList, s)
	}
	if len(selectList) == 0 {
		return "", fmt.Errorf("%w: aggregate without expressions", ErrUnsupportedRelation)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(selectList, ", "), subquery(input, c.alias()))
	if len(groups) > 0 {
		query += " GROUP BY " + strings.Join(groups, ", ")
	}
	return query, nil
}

func compileExpression(e *proto.Expression) (string, error) {
	switch {
	case e == nil:
		return "", fmt.Errorf("%w: expression is nil", ErrUnsupportedExpression)
	case e.Literal != nil:
		return compileLiteral(e.Literal), nil
	case e.UnresolvedStar != nil:
		return "*", nil
	case e.UnresolvedAttribute != nil:
		return compileIdentifier(e.UnresolvedAttribute.UnparsedIdentifier)
	case e.UnresolvedFunction != nil:
		return compileFunction(e.UnresolvedFunction)
	case e.Alias != nil:
		if len(e.Alias.Name) == 0 {
			return "", fmt.Errorf("%w: alias without name", ErrUnsupportedExpression)
		}
		inner, err := compileExpression(e.Alias.Expr)
		if err != nil {
			return "", err
		}
		return inner + " AS " + quoteIdentifier(strings.Join(e.Alias.Name, ".")), nil
	default:
		return "", fmt.Errorf("%w: no expression type set", ErrUnsupportedExpression)
	}
}

func compileLiteral(l *proto.Expression_Literal) string {
	switch {
	case l.Integer != nil:
		return strconv.FormatInt(int64(*l.Integer), 10)
	case l.Long != nil:
		return strconv.FormatInt(*l.Long, 10)
	case l.Double != nil:
		return "CAST(" + strconv.FormatFloat(*l.Double, 'g', -1, 64) + " AS DOUBLE)"
	case l.Boolean != nil:
		if *l.Boolean {
			return "TRUE"
		}
		return "FALSE"
	case l.String_ != nil:
		return quoteString(*l.String_)
	default:
		return "NULL"
	}
}

func compileIdentifier(ident string) (string, error) {
	if ident == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrUnsupportedExpression)
	}
	if ident == "*" {
		return "*", nil
	}
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		parts[i] = quoteIdentifier(p)
	}
	return strings.Join(parts, "."), nil
}

func compileFunction(f *proto.Expression_UnresolvedFunction) (string, error) {
	name, ok := aggregateFunctions[strings.ToLower(f.FunctionName)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFunction, f.FunctionName)
	}
	args := make([]string, 0, len(f.Arguments))
	for _, a := range f.Arguments {
		s, err := compileExpression(a)
		if err != nil {
			return "", err
		}
		args = append(args, s)
	}
	if len(args) == 0 {
		if name != "count" {
			return "", fmt.Errorf("%w: %s requires an argument", ErrUnsupportedFunction, f.FunctionName)
		}
		args = append(args, "*")
	}
	distinct := ""
	if f.IsDistinct {
		distinct = "DISTINCT "
	}
	return fmt.Sprintf("%s(%s%s)", name, distinct, strings.Join(args, ", ")), nil
}

// subquery nests query under alias. The newline ends a trailing line comment
// in user SQL before the closing paren.
func subquery(query, alias string) string {
	return "(" + query + "\n) AS " + alias
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
