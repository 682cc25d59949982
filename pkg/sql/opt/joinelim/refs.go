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
	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/memo"
)

// KeyReferenceChecker answers whether columns defined by an expression are
// read by an operator to the right of it. varref.Manager implements it.
type KeyReferenceChecker interface {
	// HasKeyReferences returns true if any of cols is read by a sibling
	// subtree to the right of the ancestor chain from definer up to, but
	// excluding, boundary.
	HasKeyReferences(cols opt.ColSet, definer, boundary memo.RelExpr) bool
}

// computeRefCounts counts the references to every column: once for being a
// required output column, and once for every occurrence in a join predicate
// or in the outer columns of an opaque subtree.
func (g *joinGraph) computeRefCounts() {
	add := func(cols opt.ColSet) {
		cols.ForEach(func(c int) {
			g.refCounts[opt.ColumnID(c)]++
		})
	}
	add(g.required)
	for i := range g.vertices {
		v := &g.vertices[i]
		switch v.kind {
		case joinVertex:
			for _, c := range v.join.leftCols {
				g.refCounts[c]++
			}
			for _, c := range v.join.rightCols {
				g.refCounts[c]++
			}
			add(memo.ScalarCols(v.join.residual))

		case opaqueVertex:
			add(memo.OuterCols(v.expr))
		}
	}
}

// refCount returns the number of references to a column, including the
// references to every column it replaced.
func (g *joinGraph) refCount(col opt.ColumnID) int {
	n := g.refCounts[col]
	g.reverseRenames[col].ForEach(func(c int) {
		n += g.refCounts[opt.ColumnID(c)]
	})
	return n
}

// unreferenced returns true if none of the columns of the table instance,
// except the given ones, is referenced.
func (g *joinGraph) unreferenced(id vertexID, except opt.ColSet) bool {
	cols := g.md.TableColumns(g.table(id).tabID).Difference(except)
	for c, ok := cols.Next(0); ok; c, ok = cols.Next(c + 1) {
		if g.refCount(opt.ColumnID(c)) != 0 {
			return false
		}
	}
	return true
}
