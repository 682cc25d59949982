// Copyright 2026 The Cockroach Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package rowexec is a naive reference evaluator for relational expression
// trees. It runs every operator with nested loops over in-memory rows and is
// used by tests to check that rewritten trees produce the same results as the
// trees they were derived from.
package rowexec

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/memo"
	"github.com/cockroachdb/joinelim/pkg/util/log"
)

// Datum is a nullable integer value. The zero value is NULL.
type Datum struct {
	Value int64
	Valid bool
}

// DNull is the NULL datum.
var DNull = Datum{}

// DInt returns a non-NULL datum.
func DInt(v int64) Datum {
	return Datum{Value: v, Valid: true}
}

func (d Datum) String() string {
	if !d.Valid {
		return "NULL"
	}
	return strconv.FormatInt(d.Value, 10)
}

// Row holds one value per metadata column, indexed by ColumnID. Columns not
// produced by the expression that generated the row are NULL.
type Row []Datum

// Data holds the contents of the base tables, keyed by table name. Each stored
// row has one value per table column, in ordinal order.
type Data map[string][][]Datum

// Eval runs the expression against the given data and returns its rows.
func Eval(md *opt.Metadata, data Data, e memo.RelExpr) (_ []Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ok, e := opt.ShouldCatch(r); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	ev := evaluator{md: md, data: data, width: md.NumColumns() + 1}
	return ev.eval(e), nil
}

type evaluator struct {
	md    *opt.Metadata
	data  Data
	width int
}

func (ev *evaluator) newRow() Row {
	return make(Row, ev.width)
}

func (ev *evaluator) eval(e memo.RelExpr) []Row {
	switch t := e.(type) {
	case *memo.ScanExpr:
		tm := ev.md.TableMeta(t.Table)
		rows, ok := ev.data[tm.Table.Name()]
		if !ok {
			panic(errors.AssertionFailedf("no data for table %s", log.Safe(tm.Table.Name())))
		}
		res := make([]Row, 0, len(rows))
		for _, stored := range rows {
			row := ev.newRow()
			t.Cols.ForEach(func(c int) {
				row[c] = stored[t.Table.ColumnOrdinal(opt.ColumnID(c))]
			})
			res = append(res, row)
		}
		return res

	case *memo.JoinExpr:
		return ev.evalJoin(t)

	case *memo.CrossJoinExpr:
		res := []Row{ev.newRow()}
		for _, in := range t.Inputs {
			right := ev.eval(in)
			next := make([]Row, 0, len(res)*len(right))
			for _, l := range res {
				for _, r := range right {
					next = append(next, ev.merge(l, r))
				}
			}
			res = next
		}
		return res

	case *memo.SelectExpr:
		var res []Row
		for _, row := range ev.eval(t.Input) {
			if isTrue(ev.evalScalar(row, t.Filters)) {
				res = append(res, row)
			}
		}
		return res

	case *memo.ProjectExpr:
		rows := ev.eval(t.Input)
		res := make([]Row, len(rows))
		for i, in := range rows {
			row := ev.newRow()
			t.Cols.ForEach(func(c int) {
				row[c] = in[c]
			})
			res[i] = row
		}
		return res

	case *memo.ValuesExpr:
		return []Row{ev.newRow()}

	case *memo.OpaqueExpr:
		return ev.eval(t.Input)
	}
	panic(errors.AssertionFailedf("unhandled relational expression %s", log.Safe(e.Op())))
}

func (ev *evaluator) evalJoin(j *memo.JoinExpr) []Row {
	left, right := ev.eval(j.Left), ev.eval(j.Right)
	rightMatched := make([]bool, len(right))
	var res []Row
	for _, l := range left {
		matched := false
		for i, r := range right {
			row := ev.merge(l, r)
			if isTrue(ev.evalScalar(row, j.On)) {
				matched = true
				rightMatched[i] = true
				res = append(res, row)
			}
		}
		if !matched && (j.JoinType == opt.LeftJoinOp || j.JoinType == opt.FullJoinOp) {
			// Right columns are NULL in l.
			res = append(res, append(ev.newRow()[:0], l...))
		}
	}
	if j.JoinType == opt.FullJoinOp {
		for i, r := range right {
			if !rightMatched[i] {
				res = append(res, append(ev.newRow()[:0], r...))
			}
		}
	}
	return res
}

// merge combines the values of two rows produced by expressions with disjoint
// output columns.
func (ev *evaluator) merge(l, r Row) Row {
	row := ev.newRow()
	for i := range row {
		if l[i].Valid {
			row[i] = l[i]
		} else {
			row[i] = r[i]
		}
	}
	return row
}

func isTrue(d Datum) bool {
	return d.Valid && d.Value != 0
}

func boolDatum(b bool) Datum {
	if b {
		return DInt(1)
	}
	return DInt(0)
}

// evalScalar evaluates a scalar expression with three-valued logic. Boolean
// results are encoded as 1 (true), 0 (false) and NULL (unknown).
func (ev *evaluator) evalScalar(row Row, e memo.ScalarExpr) Datum {
	switch t := e.(type) {
	case *memo.VariableExpr:
		return row[t.Col]
	case *memo.ConstExpr:
		return DInt(t.Value)
	case *memo.NullExpr:
		return DNull
	case *memo.TrueExpr:
		return DInt(1)
	case *memo.FalseExpr:
		return DInt(0)

	case *memo.AndExpr:
		l, r := ev.evalScalar(row, t.Left), ev.evalScalar(row, t.Right)
		if (l.Valid && l.Value == 0) || (r.Valid && r.Value == 0) {
			return DInt(0)
		}
		if !l.Valid || !r.Valid {
			return DNull
		}
		return DInt(1)

	case *memo.OrExpr:
		l, r := ev.evalScalar(row, t.Left), ev.evalScalar(row, t.Right)
		if isTrue(l) || isTrue(r) {
			return DInt(1)
		}
		if !l.Valid || !r.Valid {
			return DNull
		}
		return DInt(0)

	case *memo.NotExpr:
		in := ev.evalScalar(row, t.Input)
		if !in.Valid {
			return DNull
		}
		return boolDatum(in.Value == 0)

	case *memo.ComparisonExpr:
		l, r := ev.evalScalar(row, t.Left), ev.evalScalar(row, t.Right)
		if !l.Valid || !r.Valid {
			return DNull
		}
		switch t.Cmp {
		case opt.EqOp:
			return boolDatum(l.Value == r.Value)
		case opt.NeOp:
			return boolDatum(l.Value != r.Value)
		case opt.LtOp:
			return boolDatum(l.Value < r.Value)
		case opt.LeOp:
			return boolDatum(l.Value <= r.Value)
		case opt.GtOp:
			return boolDatum(l.Value > r.Value)
		case opt.GeOp:
			return boolDatum(l.Value >= r.Value)
		}

	case *memo.IsNullExpr:
		return boolDatum(!ev.evalScalar(row, t.Input).Valid)

	case *memo.IsNotNullExpr:
		return boolDatum(ev.evalScalar(row, t.Input).Valid)

	case memo.FiltersExpr:
		return ev.evalScalar(row, t.ToScalar())
	}
	panic(errors.AssertionFailedf("unhandled scalar expression %s", log.Safe(e.Op())))
}

// Project returns the values of the given columns for each row.
func Project(rows []Row, cols opt.ColList) [][]Datum {
	res := make([][]Datum, len(rows))
	for i, row := range rows {
		vals := make([]Datum, len(cols))
		for j, c := range cols {
			vals[j] = row[c]
		}
		res[i] = vals
	}
	return res
}

// Canonical formats each row as a comma-separated list of values and returns
// the result sorted, so that two row multisets can be compared for equality
// independently of their order.
func Canonical(rows [][]Datum) []string {
	res := make([]string, len(rows))
	var buf strings.Builder
	for i, row := range rows {
		buf.Reset()
		for j, d := range row {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(d.String())
		}
		res[i] = buf.String()
	}
	sort.Strings(res)
	return res
}
