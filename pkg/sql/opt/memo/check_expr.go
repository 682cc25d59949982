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
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/util/log"
)

// CheckExpr does sanity checking on a relational expression tree. It panics
// with an assertion failure if the tree is malformed: scans of unknown tables,
// joins whose inputs produce overlapping columns, projections of columns the
// input does not produce, nested filter lists and the like.
func CheckExpr(md *opt.Metadata, e RelExpr) {
	switch t := e.(type) {
	case *ScanExpr:
		if !t.Cols.SubsetOf(md.TableColumns(t.Table)) {
			panic(errors.AssertionFailedf(
				"scan of %s produces columns outside the table", log.Safe(md.TableMeta(t.Table).Name())))
		}

	case *JoinExpr:
		if t.Left == nil || t.Right == nil {
			panic(errors.AssertionFailedf("%s is missing an input", log.Safe(t.JoinType)))
		}
		switch t.JoinType {
		case opt.InnerJoinOp, opt.LeftJoinOp, opt.FullJoinOp:
		default:
			panic(errors.AssertionFailedf("invalid join type %s", log.Safe(t.JoinType)))
		}
		checkFilters(t.On)

	case *CrossJoinExpr:
		if len(t.Inputs) == 0 {
			panic(errors.AssertionFailedf("cross-join has no inputs"))
		}

	case *SelectExpr:
		if t.Input == nil {
			panic(errors.AssertionFailedf("select is missing an input"))
		}
		checkFilters(t.Filters)

	case *ProjectExpr:
		if !t.Cols.SubsetOf(OutputCols(t.Input)) {
			panic(errors.AssertionFailedf("project columns %s not produced by its input", log.Safe(t.Cols)))
		}

	case *OpaqueExpr:
		if t.Input == nil {
			panic(errors.AssertionFailedf("opaque %s is missing an input", log.Safe(t.Name)))
		}

	case *ValuesExpr:

	default:
		panic(errors.AssertionFailedf("unhandled relational expression %s", log.Safe(e.Op())))
	}

	checkOutputCols(e)
	for i, n := 0, e.ChildCount(); i < n; i++ {
		if rel, ok := e.Child(i).(RelExpr); ok {
			CheckExpr(md, rel)
		}
	}
}

func checkFilters(filters FiltersExpr) {
	for _, cond := range filters {
		if cond == nil {
			panic(errors.AssertionFailedf("filters contain a nil condition"))
		}
		if cond.Op() == opt.FiltersOp {
			panic(errors.AssertionFailedf("filters cannot contain another filter list"))
		}
		checkScalar(cond)
	}
}

func checkScalar(e ScalarExpr) {
	for i, n := 0, e.ChildCount(); i < n; i++ {
		child, ok := e.Child(i).(ScalarExpr)
		if !ok || child == nil {
			panic(errors.AssertionFailedf("%s has an invalid operand", log.Safe(e.Op())))
		}
		if child.Op() == opt.FiltersOp {
			panic(errors.AssertionFailedf("%s cannot contain a filter list", log.Safe(e.Op())))
		}
		checkScalar(child)
	}
}

func checkOutputCols(e opt.Expr) {
	set := opt.ColSet{}

	for i := 0; i < e.ChildCount(); i++ {
		rel, ok := e.Child(i).(RelExpr)
		if !ok {
			continue
		}

		// The output columns of child expressions cannot overlap.
		cols := OutputCols(rel)
		if set.Intersects(cols) {
			panic(errors.AssertionFailedf(
				"%s RelExpr children have intersecting columns", log.Safe(e.Op()),
			))
		}

		set.UnionWith(cols)
	}
}
