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

// Package memo defines the relational and scalar expression trees that the
// join elimination pass consumes and produces. Expressions are immutable once
// constructed: rewrites build new nodes and share unchanged subtrees.
package memo

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/util/log"
)

// RelExpr is implemented by all operators tagged as Relational. Relational
// expressions have a set of output columns and produce a multiset of rows.
type RelExpr interface {
	opt.Expr

	relExpr()
}

// ScalarExpr is implemented by all operators tagged as Scalar. Scalar
// expressions compute a single value from the columns in scope.
type ScalarExpr interface {
	opt.Expr

	scalarExpr()
}

// ScanExpr returns the rows of one instance of a base table.
type ScanExpr struct {
	// Table identifies the table instance in the metadata.
	Table opt.TableID

	// Cols is the set of columns produced by the scan. It is normally every
	// column of the table.
	Cols opt.ColSet
}

// JoinExpr is a binary join. JoinType is one of InnerJoinOp, LeftJoinOp or
// FullJoinOp.
type JoinExpr struct {
	JoinType opt.Operator
	Left     RelExpr
	Right    RelExpr
	On       FiltersExpr
}

// CrossJoinExpr is the cartesian product of its inputs.
type CrossJoinExpr struct {
	Inputs []RelExpr
}

// SelectExpr filters rows from its input. A row is kept only if every
// condition evaluates to true.
type SelectExpr struct {
	Input   RelExpr
	Filters FiltersExpr
}

// ProjectExpr passes through a subset of the columns of its input.
type ProjectExpr struct {
	Input RelExpr
	Cols  opt.ColSet
}

// ValuesExpr returns exactly one row with no columns.
type ValuesExpr struct {
	// Expressions are identified by address, which is not unique for
	// zero-size types.
	_ byte
}

// OpaqueExpr wraps an input that the join elimination pass does not look
// into. It passes the rows of its input through unchanged, but may refer to
// columns defined elsewhere in the tree.
type OpaqueExpr struct {
	// Name describes the wrapped operation, for formatting.
	Name string

	Input RelExpr

	// Refs is the set of columns referenced by the opaque operation. Refs
	// that are not produced by Input are outer columns.
	Refs opt.ColSet
}

// VariableExpr is the typed scalar value of a column in the query.
type VariableExpr struct {
	Col opt.ColumnID
}

// ConstExpr is an integer constant.
type ConstExpr struct {
	Value int64
}

// NullExpr is the constant NULL.
type NullExpr struct{}

// TrueExpr is the boolean true value.
type TrueExpr struct{}

// FalseExpr is the boolean false value.
type FalseExpr struct{}

// AndExpr is the boolean conjunction of two conditions.
type AndExpr struct {
	Left  ScalarExpr
	Right ScalarExpr
}

// OrExpr is the boolean disjunction of two conditions.
type OrExpr struct {
	Left  ScalarExpr
	Right ScalarExpr
}

// NotExpr is the boolean negation of its input.
type NotExpr struct {
	Input ScalarExpr
}

// ComparisonExpr compares two scalar values. Cmp is one of EqOp, NeOp, LtOp,
// LeOp, GtOp or GeOp.
type ComparisonExpr struct {
	Cmp   opt.Operator
	Left  ScalarExpr
	Right ScalarExpr
}

// IsNullExpr is true if its input is NULL.
type IsNullExpr struct {
	Input ScalarExpr
}

// IsNotNullExpr is true if its input is not NULL.
type IsNotNullExpr struct {
	Input ScalarExpr
}

// FiltersExpr is a list of conditions that are implicitly ANDed together. An
// empty list is always true.
type FiltersExpr []ScalarExpr

// TrueFilter is the empty filter list.
var TrueFilter = FiltersExpr{}

// TrueSingleton and the other singletons are shared leaf expressions.
var (
	TrueSingleton  = &TrueExpr{}
	FalseSingleton = &FalseExpr{}
	NullSingleton  = &NullExpr{}
)

var _ RelExpr = &ScanExpr{}
var _ RelExpr = &JoinExpr{}
var _ RelExpr = &CrossJoinExpr{}
var _ RelExpr = &SelectExpr{}
var _ RelExpr = &ProjectExpr{}
var _ RelExpr = &ValuesExpr{}
var _ RelExpr = &OpaqueExpr{}
var _ ScalarExpr = &VariableExpr{}
var _ ScalarExpr = &ComparisonExpr{}
var _ ScalarExpr = FiltersExpr(nil)

func (*ScanExpr) relExpr()      {}
func (*JoinExpr) relExpr()      {}
func (*CrossJoinExpr) relExpr() {}
func (*SelectExpr) relExpr()    {}
func (*ProjectExpr) relExpr()   {}
func (*ValuesExpr) relExpr()    {}
func (*OpaqueExpr) relExpr()    {}

func (*VariableExpr) scalarExpr()   {}
func (*ConstExpr) scalarExpr()      {}
func (*NullExpr) scalarExpr()       {}
func (*TrueExpr) scalarExpr()       {}
func (*FalseExpr) scalarExpr()      {}
func (*AndExpr) scalarExpr()        {}
func (*OrExpr) scalarExpr()         {}
func (*NotExpr) scalarExpr()        {}
func (*ComparisonExpr) scalarExpr() {}
func (*IsNullExpr) scalarExpr()     {}
func (*IsNotNullExpr) scalarExpr()  {}
func (FiltersExpr) scalarExpr()     {}

// Op is part of the opt.Expr interface.
func (e *ScanExpr) Op() opt.Operator { return opt.ScanOp }

// ChildCount is part of the opt.Expr interface.
func (e *ScanExpr) ChildCount() int { return 0 }

// Child is part of the opt.Expr interface.
func (e *ScanExpr) Child(nth int) opt.Expr { panic(errors.AssertionFailedf("child index out of range")) }

func (e *JoinExpr) Op() opt.Operator { return e.JoinType }
func (e *JoinExpr) ChildCount() int  { return 3 }
func (e *JoinExpr) Child(nth int) opt.Expr {
	switch nth {
	case 0:
		return e.Left
	case 1:
		return e.Right
	case 2:
		return e.On
	}
	panic(errors.AssertionFailedf("child index out of range"))
}

func (e *CrossJoinExpr) Op() opt.Operator       { return opt.CrossJoinOp }
func (e *CrossJoinExpr) ChildCount() int        { return len(e.Inputs) }
func (e *CrossJoinExpr) Child(nth int) opt.Expr { return e.Inputs[nth] }

func (e *SelectExpr) Op() opt.Operator { return opt.SelectOp }
func (e *SelectExpr) ChildCount() int  { return 2 }
func (e *SelectExpr) Child(nth int) opt.Expr {
	switch nth {
	case 0:
		return e.Input
	case 1:
		return e.Filters
	}
	panic(errors.AssertionFailedf("child index out of range"))
}

func (e *ProjectExpr) Op() opt.Operator { return opt.ProjectOp }
func (e *ProjectExpr) ChildCount() int  { return 1 }
func (e *ProjectExpr) Child(nth int) opt.Expr {
	if nth == 0 {
		return e.Input
	}
	panic(errors.AssertionFailedf("child index out of range"))
}

func (e *ValuesExpr) Op() opt.Operator { return opt.ValuesOp }
func (e *ValuesExpr) ChildCount() int  { return 0 }
func (e *ValuesExpr) Child(nth int) opt.Expr {
	panic(errors.AssertionFailedf("child index out of range"))
}

func (e *OpaqueExpr) Op() opt.Operator { return opt.OpaqueOp }
func (e *OpaqueExpr) ChildCount() int  { return 1 }
func (e *OpaqueExpr) Child(nth int) opt.Expr {
	if nth == 0 {
		return e.Input
	}
	panic(errors.AssertionFailedf("child index out of range"))
}

func (e *VariableExpr) Op() opt.Operator { return opt.VariableOp }
func (e *VariableExpr) ChildCount() int  { return 0 }
func (e *VariableExpr) Child(nth int) opt.Expr {
	panic(errors.AssertionFailedf("child index out of range"))
}

func (e *ConstExpr) Op() opt.Operator { return opt.ConstOp }
func (e *ConstExpr) ChildCount() int  { return 0 }
func (e *ConstExpr) Child(nth int) opt.Expr {
	panic(errors.AssertionFailedf("child index out of range"))
}

func (e *NullExpr) Op() opt.Operator { return opt.NullOp }
func (e *NullExpr) ChildCount() int  { return 0 }
func (e *NullExpr) Child(nth int) opt.Expr {
	panic(errors.AssertionFailedf("child index out of range"))
}

func (e *TrueExpr) Op() opt.Operator { return opt.TrueOp }
func (e *TrueExpr) ChildCount() int  { return 0 }
func (e *TrueExpr) Child(nth int) opt.Expr {
	panic(errors.AssertionFailedf("child index out of range"))
}

func (e *FalseExpr) Op() opt.Operator { return opt.FalseOp }
func (e *FalseExpr) ChildCount() int  { return 0 }
func (e *FalseExpr) Child(nth int) opt.Expr {
	panic(errors.AssertionFailedf("child index out of range"))
}

func (e *AndExpr) Op() opt.Operator { return opt.AndOp }
func (e *AndExpr) ChildCount() int  { return 2 }
func (e *AndExpr) Child(nth int) opt.Expr {
	return binaryChild(e.Left, e.Right, nth)
}

func (e *OrExpr) Op() opt.Operator { return opt.OrOp }
func (e *OrExpr) ChildCount() int  { return 2 }
func (e *OrExpr) Child(nth int) opt.Expr {
	return binaryChild(e.Left, e.Right, nth)
}

func (e *NotExpr) Op() opt.Operator { return opt.NotOp }
func (e *NotExpr) ChildCount() int  { return 1 }
func (e *NotExpr) Child(nth int) opt.Expr {
	if nth == 0 {
		return e.Input
	}
	panic(errors.AssertionFailedf("child index out of range"))
}

func (e *ComparisonExpr) Op() opt.Operator { return e.Cmp }
func (e *ComparisonExpr) ChildCount() int  { return 2 }
func (e *ComparisonExpr) Child(nth int) opt.Expr {
	return binaryChild(e.Left, e.Right, nth)
}

func (e *IsNullExpr) Op() opt.Operator { return opt.IsNullOp }
func (e *IsNullExpr) ChildCount() int  { return 1 }
func (e *IsNullExpr) Child(nth int) opt.Expr {
	if nth == 0 {
		return e.Input
	}
	panic(errors.AssertionFailedf("child index out of range"))
}

func (e *IsNotNullExpr) Op() opt.Operator { return opt.IsNotNullOp }
func (e *IsNotNullExpr) ChildCount() int  { return 1 }
func (e *IsNotNullExpr) Child(nth int) opt.Expr {
	if nth == 0 {
		return e.Input
	}
	panic(errors.AssertionFailedf("child index out of range"))
}

func (e FiltersExpr) Op() opt.Operator       { return opt.FiltersOp }
func (e FiltersExpr) ChildCount() int        { return len(e) }
func (e FiltersExpr) Child(nth int) opt.Expr { return e[nth] }

func binaryChild(left, right ScalarExpr, nth int) opt.Expr {
	switch nth {
	case 0:
		return left
	case 1:
		return right
	}
	panic(errors.AssertionFailedf("child index out of range"))
}

// ConstructJoin constructs a binary join of the given type.
func ConstructJoin(joinOp opt.Operator, left, right RelExpr, on FiltersExpr) RelExpr {
	switch joinOp {
	case opt.InnerJoinOp, opt.LeftJoinOp, opt.FullJoinOp:
		return &JoinExpr{JoinType: joinOp, Left: left, Right: right, On: on}
	}
	panic(errors.AssertionFailedf("invalid join type %s", log.Safe(joinOp)))
}

// ConstructScan constructs a scan of every column of the given table
// instance.
func ConstructScan(md *opt.Metadata, tabID opt.TableID) *ScanExpr {
	return &ScanExpr{Table: tabID, Cols: md.TableColumns(tabID)}
}

// ConstructSelect wraps input in a filter, unless there are no filters.
func ConstructSelect(input RelExpr, filters FiltersExpr) RelExpr {
	if len(filters) == 0 {
		return input
	}
	return &SelectExpr{Input: input, Filters: filters}
}

// ConstructVariable returns a reference to the given column.
func ConstructVariable(col opt.ColumnID) *VariableExpr {
	return &VariableExpr{Col: col}
}

// ConstructEq returns a condition comparing two columns for equality.
func ConstructEq(left, right opt.ColumnID) *ComparisonExpr {
	return &ComparisonExpr{Cmp: opt.EqOp, Left: ConstructVariable(left), Right: ConstructVariable(right)}
}

// ConstructComparison constructs a comparison of the given type.
func ConstructComparison(cmp opt.Operator, left, right ScalarExpr) *ComparisonExpr {
	if !opt.IsComparisonOp(cmp) {
		panic(errors.AssertionFailedf("invalid comparison %s", log.Safe(cmp)))
	}
	return &ComparisonExpr{Cmp: cmp, Left: left, Right: right}
}
