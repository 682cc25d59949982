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

package memo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/util/log"
	"github.com/cockroachdb/joinelim/pkg/util/treeprinter"
)

// ExprFmtCtx contains data relevant to formatting routines.
type ExprFmtCtx struct {
	md *opt.Metadata
}

// MakeExprFmtCtx creates an expression formatting context using the given
// metadata to resolve table and column names.
func MakeExprFmtCtx(md *opt.Metadata) ExprFmtCtx {
	return ExprFmtCtx{md: md}
}

// FormatExpr returns a string representation of the expression tree, one
// operator per line.
func FormatExpr(md *opt.Metadata, e opt.Expr) string {
	f := MakeExprFmtCtx(md)
	tp := treeprinter.New()
	f.formatExpr(e, tp)
	return tp.String()
}

func (f *ExprFmtCtx) formatExpr(e opt.Expr, tp treeprinter.Node) {
	switch t := e.(type) {
	case RelExpr:
		f.formatRelational(t, tp)
	case ScalarExpr:
		tp.Child(f.FormatScalar(t))
	default:
		panic(errors.AssertionFailedf("unhandled expression %s", log.Safe(e.Op())))
	}
}

func (f *ExprFmtCtx) formatRelational(e RelExpr, tp treeprinter.Node) {
	switch t := e.(type) {
	case *ScanExpr:
		tm := f.md.TableMeta(t.Table)
		var buf strings.Builder
		fmt.Fprintf(&buf, "scan %s", tm.Table.Name())
		if tm.Alias != "" && tm.Alias != tm.Table.Name() {
			fmt.Fprintf(&buf, " [as=%s]", tm.Alias)
		}
		if !t.Cols.Equals(tm.Columns()) {
			fmt.Fprintf(&buf, " [cols=%s]", f.formatCols(t.Cols))
		}
		tp.Child(buf.String())

	case *JoinExpr:
		n := tp.Child(t.JoinType.String())
		f.formatRelational(t.Left, n)
		f.formatRelational(t.Right, n)
		f.formatFilters(t.On, n)

	case *CrossJoinExpr:
		n := tp.Child(t.Op().String())
		for _, in := range t.Inputs {
			f.formatRelational(in, n)
		}

	case *SelectExpr:
		n := tp.Child(t.Op().String())
		f.formatRelational(t.Input, n)
		f.formatFilters(t.Filters, n)

	case *ProjectExpr:
		n := tp.Child(t.Op().String())
		n.Childf("columns: %s", f.formatCols(t.Cols))
		f.formatRelational(t.Input, n)

	case *ValuesExpr:
		tp.Child("values (1 row)")

	case *OpaqueExpr:
		n := tp.Childf("opaque %s", t.Name)
		if !t.Refs.Empty() {
			n.Childf("refs: %s", f.formatCols(t.Refs))
		}
		f.formatRelational(t.Input, n)

	default:
		panic(errors.AssertionFailedf("unhandled relational expression %s", log.Safe(e.Op())))
	}
}

func (f *ExprFmtCtx) formatFilters(filters FiltersExpr, tp treeprinter.Node) {
	if len(filters) == 0 {
		tp.Child("filters (true)")
		return
	}
	n := tp.Child("filters")
	for _, cond := range filters {
		n.Child(f.FormatScalar(cond))
	}
}

func (f *ExprFmtCtx) formatCols(cols opt.ColSet) string {
	var buf strings.Builder
	cols.ForEach(func(i int) {
		if buf.Len() > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(f.md.QualifiedAlias(opt.ColumnID(i)))
	})
	return buf.String()
}

var comparisonSymbols = map[opt.Operator]string{
	opt.EqOp: "=",
	opt.NeOp: "!=",
	opt.LtOp: "<",
	opt.LeOp: "<=",
	opt.GtOp: ">",
	opt.GeOp: ">=",
}

// FormatScalar returns a single-line representation of a scalar expression,
// e.g. "a.id = b.id AND b.x IS NOT NULL".
func (f *ExprFmtCtx) FormatScalar(e ScalarExpr) string {
	switch t := e.(type) {
	case *VariableExpr:
		return f.md.QualifiedAlias(t.Col)
	case *ConstExpr:
		return strconv.FormatInt(t.Value, 10)
	case *NullExpr:
		return "NULL"
	case *TrueExpr:
		return "true"
	case *FalseExpr:
		return "false"
	case *AndExpr:
		return fmt.Sprintf("%s AND %s", f.FormatScalar(t.Left), f.FormatScalar(t.Right))
	case *OrExpr:
		return fmt.Sprintf("(%s OR %s)", f.FormatScalar(t.Left), f.FormatScalar(t.Right))
	case *NotExpr:
		return fmt.Sprintf("NOT %s", f.operand(t.Input))
	case *ComparisonExpr:
		return fmt.Sprintf("%s %s %s", f.operand(t.Left), comparisonSymbols[t.Cmp], f.operand(t.Right))
	case *IsNullExpr:
		return fmt.Sprintf("%s IS NULL", f.operand(t.Input))
	case *IsNotNullExpr:
		return fmt.Sprintf("%s IS NOT NULL", f.operand(t.Input))
	case FiltersExpr:
		return f.FormatScalar(t.ToScalar())
	}
	panic(errors.AssertionFailedf("unhandled scalar expression %s", log.Safe(e.Op())))
}

// operand formats an operand of a unary or comparison operator, enclosing it
// in parentheses unless it is a leaf or already parenthesized.
func (f *ExprFmtCtx) operand(e ScalarExpr) string {
	switch e.Op() {
	case opt.VariableOp, opt.ConstOp, opt.NullOp, opt.TrueOp, opt.FalseOp, opt.OrOp:
		return f.FormatScalar(e)
	}
	return "(" + f.FormatScalar(e) + ")"
}
