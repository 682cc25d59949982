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
	"github.com/cockroachdb/joinelim/pkg/util/log"
)

// promoteOuterJoins turns left joins into inner joins where a foreign key
// from the left table to the right table guarantees that every left row finds
// a match. It returns true if any join was promoted.
func (g *joinGraph) promoteOuterJoins() bool {
	promoted := false
	for i := range g.vertices {
		id := vertexID(i)
		v := g.vertex(id)
		if v.kind != joinVertex || v.join.op != opt.LeftJoinOp || len(v.join.edges) == 0 {
			continue
		}
		if g.canPromote(id) {
			g.promote(id)
			promoted = true
		}
	}
	return promoted
}

func (g *joinGraph) canPromote(id vertexID) bool {
	v := g.vertex(id)
	for _, eid := range v.join.edges {
		e := &g.edges[eid]
		if e.kind != leftOuterEdge {
			return false
		}
		if g.findForeignKey(e.right, e.left, e.rightCols, e.leftCols) == nil {
			return false
		}
		if !g.nullableCols(e.leftCols).Empty() {
			return false
		}
	}

	if g.opts.LegacyOuterJoinRules {
		return g.isTable(v.children[0]) && g.isTable(v.children[1])
	}

	for _, eid := range v.join.edges {
		e := &g.edges[eid]
		if !g.undisturbed(e.right, id) || !g.neverNullExtended(e.left, id) {
			return false
		}
	}
	return g.onlyLeftOfLeftJoins(id)
}

// undisturbed returns true if no row of the table can be removed on the way
// up to the given join: below the join, the table is only ever the preserved
// input of left joins.
func (g *joinGraph) undisturbed(table, join vertexID) bool {
	return g.walkUp(table, join, func(child, parent *vertex) bool {
		return parent.id == join || isLeftOfLeftJoin(child, parent)
	})
}

// neverNullExtended returns true if the columns of the table cannot be
// NULL-extended by an outer join on the way up to the given join.
func (g *joinGraph) neverNullExtended(table, join vertexID) bool {
	return g.walkUp(table, join, func(child, parent *vertex) bool {
		if parent.join.op == opt.FullJoinOp {
			return false
		}
		return !isRightOfLeftJoin(child, parent)
	})
}

// onlyLeftOfLeftJoins returns true if, from the join up to the root of the
// region, the join's subtree is only ever the preserved input of left joins.
func (g *joinGraph) onlyLeftOfLeftJoins(join vertexID) bool {
	return g.walkUp(join, g.root, isLeftOfLeftJoin)
}

// promote replaces a left join vertex with an equivalent inner join vertex and
// turns its edges into inner edges.
func (g *joinGraph) promote(id vertexID) {
	old := *g.vertex(id)
	info := *old.join
	info.op = opt.InnerJoinOp
	info.edges = append([]edgeID(nil), old.join.edges...)
	g.vertices[id] = vertex{
		id:       id,
		kind:     joinVertex,
		expr:     old.expr,
		parent:   old.parent,
		children: old.children,
		join:     &info,
	}

	for _, eid := range old.join.edges {
		g.edges[eid].kind = innerEdge
		e := g.edges[eid]
		g.addEdge(e.right, e.left, innerEdge, e.rightCols, e.leftCols, id)
	}
	g.modified = true
	log.VEventf(g.ctx, 2, "promoted left join %d to inner join", log.Safe(id))
}
