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
	"strings"
	"unicode/utf8"
)

const minimumColumnWidth = 3

// showString renders a table in the layout of Spark's Dataset.showString.
// rows may hold one row more than numRows; that row only signals that the
// footer is needed.
func showString(columns []string, rows [][]string, numRows int, truncate int) string {
	hasMoreData := len(rows) > numRows
	if hasMoreData {
		rows = rows[:numRows]
	}

	cells := make([][]string, 0, len(rows)+1)
	cells = append(cells, truncateCells(columns, truncate))
	for _, row := range rows {
		cells = append(cells, truncateCells(row, truncate))
	}

	widths := make([]int, len(columns))
	for i := range widths {
		widths[i] = minimumColumnWidth
	}
	for _, row := range cells {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var sb strings.Builder
	sep := separator(widths)
	sb.WriteString(sep)
	writeRow(&sb, cells[0], widths, truncate > 0)
	sb.WriteString(sep)
	for _, row := range cells[1:] {
		writeRow(&sb, row, widths, truncate > 0)
	}
	sb.WriteString(sep)

	if hasMoreData {
		noun := "rows"
		if numRows == 1 {
			noun = "row"
		}
		fmt.Fprintf(&sb, "only showing top %d %s\n", numRows, noun)
	}
	return sb.String()
}

func truncateCells(row []string, truncate int) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = truncateCell(cell, truncate)
	}
	return out
}

func truncateCell(cell string, truncate int) string {
	if truncate <= 0 || utf8.RuneCountInString(cell) <= truncate {
		return cell
	}
	runes := []rune(cell)
	if truncate < 4 {
		return string(runes[:truncate])
	}
	return string(runes[:truncate-3]) + "..."
}

func separator(widths []int) string {
	var sb strings.Builder
	sb.WriteString("+")
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w))
		sb.WriteString("+")
	}
	sb.WriteString("\n")
	return sb.String()
}

func writeRow(sb *strings.Builder, row []string, widths []int, alignRight bool) {
	sb.WriteString("|")
	for i, cell := range row {
		pad := strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell))
		if alignRight {
			sb.WriteString(pad)
			sb.WriteString(cell)
		} else {
			sb.WriteString(cell)
			sb.WriteString(pad)
		}
		sb.WriteString("|")
	}
	sb.WriteString("\n")
}
