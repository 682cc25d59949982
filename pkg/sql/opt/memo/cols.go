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

// OutputCols returns the set of columns produced by a relational expression.
func OutputCols(e RelExpr) opt.ColSet {
	switch t := e.(type) {
	case *ScanExpr:
		return t.Cols

	case *JoinExpr:
		return OutputCols(t.Left).Union(OutputCols(t.Right))

	case *CrossJoinExpr:
		var cols opt.ColSet
		for _, in := range t.Inputs {
			cols.UnionWith(OutputCols(in))
		}
		return cols

	case *SelectExpr:
		return OutputCols(t.Input)

	case *ProjectExpr:
		return t.Cols

	case *ValuesExpr:
		return opt.ColSet{}

	case *OpaqueExpr:
		return OutputCols(t.Input)
	}
	panic(errors.AssertionFailedf("unhandled relational expression %s", log.Safe(e.Op())))
}

// ScalarCols returns the set of columns referenced by a scalar expression.
func ScalarCols(e ScalarExpr) opt.ColSet {
	var cols opt.ColSet
	addScalarCols(e, &cols)
	return cols
}

func addScalarCols(e opt.Expr, cols *opt.ColSet) {
	if v, ok := e.(*VariableExpr); ok {
		cols.Add(int(v.Col))
		return
	}
	for i, n := 0, e.ChildCount(); i < n; i++ {
		addScalarCols(e.Child(i), cols)
	}
}

// OuterCols returns the set of columns referenced by a relational expression
// that are not produced inside it.
func OuterCols(e RelExpr) opt.ColSet {
	switch t := e.(type) {
	case *ScanExpr, *ValuesExpr:
		return opt.ColSet{}

	case *JoinExpr:
		cols := OuterCols(t.Left)
		cols.UnionWith(OuterCols(t.Right))
		cols.UnionWith(ScalarCols(t.On))
		cols.DifferenceWith(OutputCols(t.Left))
		cols.DifferenceWith(OutputCols(t.Right))
		return cols

	case *CrossJoinExpr:
		var cols opt.ColSet
		for _, in := range t.Inputs {
			cols.UnionWith(OuterCols(in))
		}
		return cols

	case *SelectExpr:
		cols := OuterCols(t.Input)
		cols.UnionWith(ScalarCols(t.Filters))
		cols.DifferenceWith(OutputCols(t.Input))
		return cols

	case *ProjectExpr:
		return OuterCols(t.Input)

	case *OpaqueExpr:
		cols := OuterCols(t.Input)
		cols.UnionWith(t.Refs)
		cols.DifferenceWith(OutputCols(t.Input))
		return cols
	}
	panic(errors.AssertionFailedf("unhandled relational expression %s", log.Safe(e.Op())))
}
