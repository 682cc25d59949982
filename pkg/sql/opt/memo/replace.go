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

// ReplaceOuterColumns returns a copy of the relational expression in which
// every reference to a column in the map is replaced by the mapped column.
// Only columns that are not produced inside e can be replaced. Subtrees that
// do not change are shared with the input.
func ReplaceOuterColumns(e RelExpr, m opt.ColMap) RelExpr {
	if len(m) == 0 {
		return e
	}
	switch t := e.(type) {
	case *ScanExpr, *ValuesExpr:
		return t

	case *JoinExpr:
		l, r := ReplaceOuterColumns(t.Left, m), ReplaceOuterColumns(t.Right, m)
		on := t.On.ReplaceColumns(m)
		if l == t.Left && r == t.Right && filtersUnchanged(on, t.On) {
			return t
		}
		return &JoinExpr{JoinType: t.JoinType, Left: l, Right: r, On: on}

	case *CrossJoinExpr:
		var inputs []RelExpr
		for i, in := range t.Inputs {
			newIn := ReplaceOuterColumns(in, m)
			if newIn != in && inputs == nil {
				inputs = append(make([]RelExpr, 0, len(t.Inputs)), t.Inputs[:i]...)
			}
			if inputs != nil {
				inputs = append(inputs, newIn)
			}
		}
		if inputs == nil {
			return t
		}
		return &CrossJoinExpr{Inputs: inputs}

	case *SelectExpr:
		in := ReplaceOuterColumns(t.Input, m)
		filters := t.Filters.ReplaceColumns(m)
		if in == t.Input && filtersUnchanged(filters, t.Filters) {
			return t
		}
		return &SelectExpr{Input: in, Filters: filters}

	case *ProjectExpr:
		in := ReplaceOuterColumns(t.Input, m)
		if in == t.Input {
			return t
		}
		return &ProjectExpr{Input: in, Cols: t.Cols}

	case *OpaqueExpr:
		in := ReplaceOuterColumns(t.Input, m)
		var refs opt.ColSet
		t.Refs.ForEach(func(c int) {
			if to, ok := m[opt.ColumnID(c)]; ok {
				refs.Add(int(to))
			} else {
				refs.Add(c)
			}
		})
		if in == t.Input && refs.Equals(t.Refs) {
			return t
		}
		return &OpaqueExpr{Name: t.Name, Input: in, Refs: refs}
	}
	panic(errors.AssertionFailedf("unhandled relational expression %s", log.Safe(e.Op())))
}

func filtersUnchanged(a, b FiltersExpr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
