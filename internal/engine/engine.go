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

// Package engine executes Spark Connect relations on an in-memory DuckDB
// database and returns the results as Arrow IPC batches.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	proto "github.com/sparkci/sparksmoke/internal/generated"
)

// DefaultBatchSize is the number of rows per Arrow batch when Options.BatchSize is unset.
const DefaultBatchSize = 1024

var (
	ErrUnsupportedRelation   = errors.New("unsupported relation")
	ErrUnsupportedExpression = errors.New("unsupported expression")
	ErrUnsupportedFunction   = errors.New("unsupported function")
)

// queryKeywords are the leading keywords of statements that produce rows and
// can be nested as a subquery.
var queryKeywords = map[string]bool{
	"SELECT":    true,
	"WITH":      true,
	"VALUES":    true,
	"FROM":      true,
	"TABLE":     true,
	"SUMMARIZE": true,
}

// commandKeywords lead statements that produce rows but cannot be nested.
// They run when submitted and their rows travel back as a local relation.
var commandKeywords = map[string]bool{
	"SHOW":     true,
	"DESCRIBE": true,
	"EXPLAIN":  true,
}

type Options struct {
	// Threads caps DuckDB parallelism; zero keeps the DuckDB default.
	Threads   int
	BatchSize int
	Logger    *slog.Logger
}

type Engine struct {
	db        *sql.DB
	batchSize int
	logger    *slog.Logger
}

// Result is a fully materialized relation.
type Result struct {
	Schema   *proto.DataType
	Batches  [][]byte
	RowCount int64
}

func Open(ctx context.Context, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if opts.Threads > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("SET threads = %d", opts.Threads)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set threads: %w", err)
		}
	}
	logger.Debug("engine opened", "threads", opts.Threads, "batch_size", batchSize)

	return &Engine{db: db, batchSize: batchSize, logger: logger}, nil
}

func (e *Engine) Close() error {
	return e.db.Close()
}

// IsQuery reports whether stmt produces rows that can be evaluated lazily.
func IsQuery(stmt string) bool {
	first := firstKeyword(stmt)
	if strings.HasPrefix(first, "(") {
		return true
	}
	return queryKeywords[first]
}

// IsCommandQuery reports whether stmt produces rows but must run eagerly.
func IsCommandQuery(stmt string) bool {
	return commandKeywords[firstKeyword(stmt)]
}

func firstKeyword(stmt string) string {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// Exec runs a statement that does not produce rows.
func (e *Engine) Exec(ctx context.Context, stmt string) error {
	if _, err := e.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("exec statement: %w", err)
	}
	return nil
}

// Materialize runs stmt now and returns all of its rows as one Arrow IPC
// stream, suitable for a local relation.
func (e *Engine) Materialize(ctx context.Context, stmt string) ([]byte, error) {
	rows, err := e.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("run statement: %w", err)
	}
	defer rows.Close()

	fields, err := rowFields(rows)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	var all [][]any
	err = scanRows(rows, fields, func(values []any) error {
		all = append(all, values)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return encodeBatch(fields, all)
}

func (e *Engine) Execute(ctx context.Context, rel *proto.Relation) (*Result, error) {
	if show := rel.GetShowString(); show != nil {
		return e.executeShowString(ctx, show)
	}
	if isEmptyLocalRelation(rel) {
		return &Result{Schema: structDataType(nil)}, nil
	}

	var result *Result
	err := e.withRelation(ctx, rel, func(conn *sql.Conn, query string) error {
		rows, err := conn.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("run query: %w", err)
		}
		defer rows.Close()

		result, err = e.collect(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Analyze returns the schema of rel without producing its rows.
func (e *Engine) Analyze(ctx context.Context, rel *proto.Relation) (*proto.DataType, error) {
	if rel.GetShowString() != nil {
		return structDataType([]field{{name: "show_string", kind: kindString}}), nil
	}
	if isEmptyLocalRelation(rel) {
		return structDataType(nil), nil
	}

	var schema *proto.DataType
	err := e.withRelation(ctx, rel, func(conn *sql.Conn, query string) error {
		rows, err := conn.QueryContext(ctx, "SELECT * FROM "+subquery(query, "analyzed")+" LIMIT 0")
		if err != nil {
			return fmt.Errorf("analyze query: %w", err)
		}
		defer rows.Close()

		fields, err := rowFields(rows)
		if err != nil {
			return err
		}
		schema = structDataType(fields)
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return schema, nil
}

// isEmptyLocalRelation matches the relation returned for statements that
// produce no rows. It has no columns.
func isEmptyLocalRelation(rel *proto.Relation) bool {
	return rel.GetLocalRelation() != nil && len(rel.GetLocalRelation().GetData()) == 0
}

// withRelation compiles rel, loads its local relations on a pinned
// connection and hands the query to fn. Loaded tables are dropped afterwards.
func (e *Engine) withRelation(ctx context.Context, rel *proto.Relation, fn func(conn *sql.Conn, query string) error) error {
	c := newCompiler()
	query, err := c.compile(rel)
	if err != nil {
		return err
	}

	conn, err := e.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	for _, local := range c.locals {
		defer func(name string) {
			if _, err := conn.ExecContext(context.Background(), "DROP TABLE IF EXISTS "+quoteIdentifier(name)); err != nil {
				e.logger.Warn("drop local relation failed", "table", name, "error", err)
			}
		}(local.name)
		if err := loadLocalRelation(ctx, conn, local.name, local.data); err != nil {
			return err
		}
	}

	e.logger.Debug("executing relation", "query", query, "local_relations", len(c.locals))
	return fn(conn, query)
}

func (e *Engine) collect(rows *sql.Rows) (*Result, error) {
	fields, err := rowFields(rows)
	if err != nil {
		return nil, err
	}
	result := &Result{Schema: structDataType(fields)}

	batch := make([][]any, 0, e.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		data, err := encodeBatch(fields, batch)
		if err != nil {
			return err
		}
		result.Batches = append(result.Batches, data)
		result.RowCount += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	err = scanRows(rows, fields, func(values []any) error {
		batch = append(batch, values)
		if len(batch) >= e.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) executeShowString(ctx context.Context, show *proto.ShowString) (*Result, error) {
	numRows := int(show.NumRows)
	if numRows < 0 {
		numRows = 0
	}

	var text string
	err := e.withRelation(ctx, show.Input, func(conn *sql.Conn, query string) error {
		rows, err := conn.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", subquery(query, "shown"), numRows+1))
		if err != nil {
			return fmt.Errorf("run query: %w", err)
		}
		defer rows.Close()

		fields, err := rowFields(rows)
		if err != nil {
			return err
		}
		columns := make([]string, len(fields))
		for i, f := range fields {
			columns[i] = f.name
		}
		var cells [][]string
		err = scanRows(rows, fields, func(values []any) error {
			row := make([]string, len(values))
			for i, v := range values {
				row[i] = formatCell(v)
			}
			cells = append(cells, row)
			return nil
		})
		if err != nil {
			return err
		}
		text = showString(columns, cells, numRows, int(show.Truncate))
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := []field{{name: "show_string", kind: kindString}}
	data, err := encodeBatch(fields, [][]any{{text}})
	if err != nil {
		return nil, err
	}
	return &Result{
		Schema:   structDataType(fields),
		Batches:  [][]byte{data},
		RowCount: 1,
	}, nil
}

func rowFields(rows *sql.Rows) ([]field, error) {
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("read column types: %w", err)
	}
	fields := make([]field, len(columnTypes))
	for i, ct := range columnTypes {
		fields[i] = field{name: ct.Name(), kind: kindOfDatabaseType(ct.DatabaseTypeName())}
	}
	return fields, nil
}

// scanRows normalizes every row to the field kinds and passes it to fn.
func scanRows(rows *sql.Rows, fields []field, fn func(values []any) error) error {
	for rows.Next() {
		raw := make([]any, len(fields))
		ptrs := make([]any, len(fields))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scan row: %w", err)
		}
		values := make([]any, len(fields))
		for i, v := range raw {
			n, err := normalize(fields[i].kind, v)
			if err != nil {
				return fmt.Errorf("column %s: %w", fields[i].name, err)
			}
			values[i] = n
		}
		if err := fn(values); err != nil {
			return err
		}
	}
	return rows.Err()
}
