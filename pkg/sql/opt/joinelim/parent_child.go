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
	"github.com/cockroachdb/joinelim/pkg/sql/opt/cat"
)

// eliminateParentChildJoins removes tables whose join with another table is
// justified by a foreign key and whose columns are not otherwise needed.
func (g *joinGraph) eliminateParentChildJoins() {
	for i := range g.vertices {
		l := vertexID(i)
		if !g.isTable(l) {
			continue
		}
		lt := g.table(l)
		for j := 0; j < len(lt.edges) && !g.isEliminated(l); j++ {
			e := g.edges[lt.edges[j]]
			if g.isEliminated(e.right) {
				continue
			}
			switch e.kind {
			case innerEdge:
				g.tryEliminateInnerParent(&e)

			case leftOuterEdge:
				if e.join == noVertex {
					continue
				}
				if !g.tryEliminateOuterChild(&e) {
					g.tryEliminateOuterParent(&e)
				}
			}
		}
	}
}

// tryEliminateInnerParent removes the left table of an inner edge if it is
// the parent of a foreign key from the right table and none of its columns
// other than the key is referenced. Every child row with a non-NULL foreign
// key has exactly one parent, so the join only filtered out NULL keys. The
// rebuilt join condition keeps that filter.
func (g *joinGraph) tryEliminateInnerParent(e *joinEdge) bool {
	parent, child := e.left, e.right
	if g.findForeignKey(parent, child, e.leftCols, e.rightCols) == nil {
		return false
	}
	if !g.unreferenced(parent, opt.ColListToSet(e.leftCols)) {
		return false
	}
	if g.keyReferencedBelow(parent, g.lca(parent, child)) {
		return false
	}
	if !g.canMove(parent, child) {
		return false
	}
	g.markEliminated(parent, child, pairMap(e.leftCols, e.rightCols), "parent-child")
	return true
}

// tryEliminateOuterChild removes the right table of a left join when it is
// the child of a foreign key to the left table and at most one child row
// exists per parent row. With a zero-or-one multiplicity no column of the
// child may be referenced outside the join; with a one multiplicity the join
// columns may be referenced, since they always equal the parent key.
func (g *joinGraph) tryEliminateOuterChild(e *joinEdge) bool {
	parent, child := e.left, e.right
	fk := g.findForeignKey(parent, child, e.leftCols, e.rightCols)
	if fk == nil || !fk.ChildMultiplicity().AtMostOne() {
		return false
	}

	joinCols := opt.ColListToSet(e.rightCols)
	if fk.ChildMultiplicity() == cat.MultiplicityZeroOrOne {
		if !g.unreferenced(child, joinCols) {
			return false
		}
		occurrences := make(map[opt.ColumnID]int)
		for _, c := range g.vertex(e.join).join.rightCols {
			occurrences[c]++
		}
		for c, ok := joinCols.Next(0); ok; c, ok = joinCols.Next(c + 1) {
			if g.refCount(opt.ColumnID(c)) != occurrences[opt.ColumnID(c)] {
				return false
			}
		}
	} else if !g.unreferenced(child, joinCols) {
		return false
	}

	if !g.canMove(child, parent) {
		return false
	}
	g.markEliminated(child, parent, pairMap(e.rightCols, e.leftCols), "parent-child")
	return true
}

// tryEliminateOuterParent removes the right table of a left join when it is
// the parent of a foreign key from the left table and only its key columns
// are referenced. A composite foreign key is only used if none of its child
// columns is nullable: a partially NULL composite key is not checked against
// the parent, so the parent key would not equal the child key.
func (g *joinGraph) tryEliminateOuterParent(e *joinEdge) bool {
	child, parent := e.left, e.right
	fk := g.findForeignKey(parent, child, e.rightCols, e.leftCols)
	if fk == nil {
		return false
	}
	if fk.ColumnCount() > 1 && !g.nullableCols(e.leftCols).Empty() {
		return false
	}
	if !g.unreferenced(parent, opt.ColListToSet(e.rightCols)) {
		return false
	}
	if !g.canMove(parent, child) {
		return false
	}
	g.markEliminated(parent, child, pairMap(e.rightCols, e.leftCols), "parent-child")
	return true
}

// keyReferencedBelow returns true if the key of the table is read by an
// operator to the right of the table, below the given join. Such a reference
// would be out of scope once the table's columns are renamed to columns
// defined further right.
func (g *joinGraph) keyReferencedBelow(table, join vertexID) bool {
	if g.keyRefs == nil {
		return false
	}
	keyCols := opt.ColListToSet(g.md.TableMeta(g.table(table).tabID).KeyColumns())
	return g.keyRefs.HasKeyReferences(keyCols, g.vertex(table).expr, g.vertex(join).expr)
}
