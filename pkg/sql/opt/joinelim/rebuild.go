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

package joinelim

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/memo"
	"github.com/cockroachdb/joinelim/pkg/util/log"
)

// rebuild constructs the region after elimination.
func (g *joinGraph) rebuild() memo.RelExpr {
	e, deferred := g.rebuildVertex(g.root)
	e = attachFilters(e, deferred)
	if e == nil {
		panic(errors.AssertionFailedf("every table of the region was eliminated"))
	}
	return e
}

// rebuildVertex rebuilds the subtree rooted at the given vertex. It returns
// nil if nothing is left of the subtree at this position. The returned
// filters are predicates that reference columns outside the subtree and must
// be attached further up.
func (g *joinGraph) rebuildVertex(id vertexID) (memo.RelExpr, memo.FiltersExpr) {
	v := g.vertex(id)
	switch v.kind {
	case opaqueVertex:
		return memo.ReplaceOuterColumns(v.expr, g.renames), nil

	case tableVertex:
		return g.rebuildTable(id), nil
	}
	if v.join.op == opt.CrossJoinOp {
		return g.rebuildCrossJoin(v)
	}
	return g.rebuildJoin(v)
}

// rebuildTable returns the table that now occupies the position of the given
// vertex, if any. The scan produces every column needed by the tables it
// stands in for.
func (g *joinGraph) rebuildTable(id vertexID) memo.RelExpr {
	s := g.resolve(id)
	st := g.table(s)
	if st.newLocation != id {
		return nil
	}
	scan := g.vertex(s).expr.(*memo.ScanExpr)
	cols := scan.Cols
	for i := range g.vertices {
		t := vertexID(i)
		if !g.isTable(t) || g.resolve(t) != s {
			continue
		}
		g.vertex(t).expr.(*memo.ScanExpr).Cols.ForEach(func(c int) {
			if col := g.renamed(opt.ColumnID(c)); g.md.ColumnMeta(col).Table == st.tabID {
				cols.Add(int(col))
			}
		})
	}

	if cols.Equals(scan.Cols) {
		return scan
	}
	return &memo.ScanExpr{Table: scan.Table, Cols: cols}
}

func (g *joinGraph) rebuildCrossJoin(v *vertex) (memo.RelExpr, memo.FiltersExpr) {
	var inputs []memo.RelExpr
	var pending memo.FiltersExpr
	for _, c := range v.children {
		e, deferred := g.rebuildVertex(c)
		if e != nil {
			inputs = append(inputs, e)
		}
		pending = append(pending, deferred...)
	}

	var res memo.RelExpr
	switch len(inputs) {
	case 0:
	case 1:
		res = inputs[0]
	default:
		res = &memo.CrossJoinExpr{Inputs: inputs}
	}
	here, deferred := g.splitFilters(v.id, pending)
	return attachFilters(res, here), deferred
}

func (g *joinGraph) rebuildJoin(v *vertex) (memo.RelExpr, memo.FiltersExpr) {
	left, leftDeferred := g.rebuildVertex(v.children[0])
	right, rightDeferred := g.rebuildVertex(v.children[1])
	preds := g.joinPredicate(v.join)

	switch v.join.op {
	case opt.FullJoinOp:
		if len(leftDeferred) != 0 || len(rightDeferred) != 0 {
			panic(errors.AssertionFailedf("predicate cannot be moved above full join %d", log.Safe(v.id)))
		}
		if left == nil || right == nil {
			panic(errors.AssertionFailedf("input of full join %d was eliminated", log.Safe(v.id)))
		}
		return memo.ConstructJoin(opt.FullJoinOp, left, right, preds), nil

	case opt.LeftJoinOp:
		if right == nil {
			// The right table was eliminated in favor of a table that produces
			// the same values, so the join condition holds. The left input may
			// have moved out as well once the join was gone.
			return left, leftDeferred
		}
		if left == nil {
			panic(errors.AssertionFailedf("preserved input of left join %d was eliminated", log.Safe(v.id)))
		}
		on := append(preds, rightDeferred...)
		if _, above := g.splitFilters(v.id, on); len(above) != 0 {
			panic(errors.AssertionFailedf("left join %d refers to columns outside its inputs", log.Safe(v.id)))
		}
		return memo.ConstructJoin(opt.LeftJoinOp, left, right, on), leftDeferred
	}

	all := append(preds, leftDeferred...)
	all = append(all, rightDeferred...)
	here, deferred := g.splitFilters(v.id, all)
	switch {
	case left != nil && right != nil:
		if here == nil {
			here = memo.TrueFilter
		}
		return memo.ConstructJoin(opt.InnerJoinOp, left, right, here), deferred
	case left != nil:
		return attachFilters(left, here), deferred
	case right != nil:
		return attachFilters(right, here), deferred
	}
	return attachFilters(nil, here), deferred
}

// joinPredicate returns the join condition with every column replaced by its
// survivor. An equality that now compares a column with itself still rejects
// NULLs, so it becomes an IS NOT NULL test on nullable columns and is dropped
// otherwise. Duplicates are dropped.
func (g *joinGraph) joinPredicate(info *joinInfo) memo.FiltersExpr {
	type eq struct {
		a, b opt.ColumnID
	}
	var preds memo.FiltersExpr
	seen := make(map[eq]struct{})
	for i := range info.leftCols {
		a, b := g.renamed(info.leftCols[i]), g.renamed(info.rightCols[i])
		if a == b && !g.md.ColumnMeta(a).Nullable {
			continue
		}
		key := eq{a: a, b: b}
		if b < a {
			key = eq{a: b, b: a}
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if a == b {
			preds = append(preds, &memo.IsNotNullExpr{Input: memo.ConstructVariable(a)})
			continue
		}
		preds = append(preds, memo.ConstructEq(a, b))
	}
	return append(preds, info.residual.ReplaceColumns(g.renames)...)
}

// splitFilters separates the filters whose columns are all in scope within
// the subtree rooted at id from those that must be attached further up.
func (g *joinGraph) splitFilters(id vertexID, filters memo.FiltersExpr) (here, above memo.FiltersExpr) {
	for _, f := range filters {
		anc := noVertex
		memo.ScalarCols(f).ForEach(func(c int) {
			loc := g.colLocation(opt.ColumnID(c))
			switch {
			case loc == noVertex:
			case anc == noVertex:
				anc = loc
			default:
				anc = g.lca(anc, loc)
			}
		})
		if anc == noVertex || g.isDescendant(anc, id) {
			here = append(here, f)
		} else {
			above = append(above, f)
		}
	}
	return here, above
}

// attachFilters wraps e in a filter. If e is nil, the filters are applied to
// a single-row input; if there are no filters either, the result is nil.
func attachFilters(e memo.RelExpr, filters memo.FiltersExpr) memo.RelExpr {
	if len(filters) == 0 {
		return e
	}
	if e == nil {
		e = &memo.ValuesExpr{}
	}
	return memo.ConstructSelect(e, filters)
}
