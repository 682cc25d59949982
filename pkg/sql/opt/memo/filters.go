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

// FlattenAnd splits a condition into its conjuncts. Nested And expressions
// and filter lists are flattened, and True conjuncts are dropped.
func FlattenAnd(e ScalarExpr) FiltersExpr {
	var res FiltersExpr
	var walk func(e ScalarExpr)
	walk = func(e ScalarExpr) {
		switch t := e.(type) {
		case *AndExpr:
			walk(t.Left)
			walk(t.Right)
		case FiltersExpr:
			for _, c := range t {
				walk(c)
			}
		case *TrueExpr:
		default:
			res = append(res, e)
		}
	}
	walk(e)
	return res
}

// ConstructFilters returns the conjunction of all the given conditions as a
// filter list.
func ConstructFilters(conds ...ScalarExpr) FiltersExpr {
	var res FiltersExpr
	for _, c := range conds {
		if c != nil {
			res = append(res, FlattenAnd(c)...)
		}
	}
	return res
}

// ToScalar returns the filters as a single left-deep conjunction, or True
// if the list is empty.
func (f FiltersExpr) ToScalar() ScalarExpr {
	if len(f) == 0 {
		return TrueSingleton
	}
	res := f[0]
	for _, c := range f[1:] {
		res = &AndExpr{Left: res, Right: c}
	}
	return res
}

// ReplaceColumns returns a copy of the given condition where every variable
// that has an entry in the map references the mapped column instead. Parts of
// the expression that do not change are shared with the input.
func ReplaceColumns(e ScalarExpr, m opt.ColMap) ScalarExpr {
	if len(m) == 0 {
		return e
	}
	switch t := e.(type) {
	case *VariableExpr:
		if to, ok := m[t.Col]; ok && to != t.Col {
			return ConstructVariable(to)
		}
		return t

	case *ConstExpr, *NullExpr, *TrueExpr, *FalseExpr:
		return t

	case *AndExpr:
		l, r := ReplaceColumns(t.Left, m), ReplaceColumns(t.Right, m)
		if l == t.Left && r == t.Right {
			return t
		}
		return &AndExpr{Left: l, Right: r}

	case *OrExpr:
		l, r := ReplaceColumns(t.Left, m), ReplaceColumns(t.Right, m)
		if l == t.Left && r == t.Right {
			return t
		}
		return &OrExpr{Left: l, Right: r}

	case *NotExpr:
		in := ReplaceColumns(t.Input, m)
		if in == t.Input {
			return t
		}
		return &NotExpr{Input: in}

	case *ComparisonExpr:
		l, r := ReplaceColumns(t.Left, m), ReplaceColumns(t.Right, m)
		if l == t.Left && r == t.Right {
			return t
		}
		return &ComparisonExpr{Cmp: t.Cmp, Left: l, Right: r}

	case *IsNullExpr:
		in := ReplaceColumns(t.Input, m)
		if in == t.Input {
			return t
		}
		return &IsNullExpr{Input: in}

	case *IsNotNullExpr:
		in := ReplaceColumns(t.Input, m)
		if in == t.Input {
			return t
		}
		return &IsNotNullExpr{Input: in}

	case FiltersExpr:
		return t.ReplaceColumns(m)
	}
	panic(errors.AssertionFailedf("unhandled scalar expression %s", log.Safe(e.Op())))
}

// ReplaceColumns applies ReplaceColumns to each condition in the list.
func (f FiltersExpr) ReplaceColumns(m opt.ColMap) FiltersExpr {
	if len(f) == 0 || len(m) == 0 {
		return f
	}
	res := make(FiltersExpr, len(f))
	for i := range f {
		res[i] = ReplaceColumns(f[i], m)
	}
	return res
}

// IsSelfComparison returns true if the condition is an equality between a
// column and itself, e.g. after both sides were renamed to the same column.
func IsSelfComparison(e ScalarExpr) bool {
	cmp, ok := e.(*ComparisonExpr)
	if !ok || cmp.Cmp != opt.EqOp {
		return false
	}
	l, lok := cmp.Left.(*VariableExpr)
	r, rok := cmp.Right.(*VariableExpr)
	return lok && rok && l.Col == r.Col
}
