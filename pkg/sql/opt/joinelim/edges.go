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
)

// buildEdges walks the region top-down, recording the visibility ceiling of
// every table and generating the join edges of every join. A table below the
// right input of a left join, or below either input of a full join, is not
// visible above that join.
func (g *joinGraph) buildEdges(id, ceiling vertexID) {
	v := g.vertex(id)
	switch v.kind {
	case tableVertex:
		v.table.lastVisible = ceiling

	case joinVertex:
		switch v.join.op {
		case opt.FullJoinOp:
			g.buildEdges(v.children[0], id)
			g.buildEdges(v.children[1], id)

		case opt.LeftJoinOp:
			g.buildEdges(v.children[0], ceiling)
			g.buildEdges(v.children[1], id)

		default:
			for _, c := range v.children {
				g.buildEdges(c, ceiling)
			}
		}
		g.addJoinEdges(id)
	}
}

// addJoinEdges generates the edges of a pure equi-join.
func (g *joinGraph) addJoinEdges(id vertexID) {
	v := g.vertex(id)
	info := v.join
	if info.op != opt.InnerJoinOp && info.op != opt.LeftJoinOp {
		return
	}
	if len(info.residual) != 0 || len(info.leftCols) == 0 {
		return
	}

	kind := innerEdge
	if info.op == opt.LeftJoinOp {
		kind = leftOuterEdge
		// Both sides must be backed by a single table.
		if !g.isTable(v.children[1]) {
			return
		}
		if g.singleTable(info.leftCols) == noVertex {
			return
		}
	}

	for i := range info.leftCols {
		l, r := g.varDefiner[info.leftCols[i]], g.varDefiner[info.rightCols[i]]
		if !g.isTable(l) || !g.isTable(r) {
			continue
		}
		if g.table(l).lastVisible < id || g.table(r).lastVisible < id {
			continue
		}
		g.addEdgePair(l, r, kind, info.leftCols[i], info.rightCols[i], id)
		if kind == innerEdge {
			g.addEdgePair(r, l, kind, info.rightCols[i], info.leftCols[i], id)
		}
	}
}

// singleTable returns the table vertex that defines all the given columns, or
// noVertex if there is no such table.
func (g *joinGraph) singleTable(cols opt.ColList) vertexID {
	res := noVertex
	for _, c := range cols {
		def, ok := g.varDefiner[c]
		if !ok || !g.isTable(def) || (res != noVertex && def != res) {
			return noVertex
		}
		res = def
	}
	return res
}

// findEdge returns the edge of the given kind from left to right, or noEdge.
func (g *joinGraph) findEdge(left, right vertexID, kind edgeKind) edgeID {
	for _, e := range g.table(left).edges {
		if g.edges[e].right == right && g.edges[e].kind == kind {
			return e
		}
	}
	return noEdge
}

// hasEdge returns true if there is an edge of any kind from left to right.
func (g *joinGraph) hasEdge(left, right vertexID) bool {
	for _, e := range g.table(left).edges {
		if g.edges[e].right == right {
			return true
		}
	}
	return false
}

// addEdgePair records that leftCol equals rightCol. The pair is merged into
// the existing edge between the two tables if there is one.
func (g *joinGraph) addEdgePair(
	left, right vertexID, kind edgeKind, leftCol, rightCol opt.ColumnID, join vertexID,
) edgeID {
	e := g.findEdge(left, right, kind)
	if e == noEdge {
		e = edgeID(len(g.edges))
		g.edges = append(g.edges, joinEdge{left: left, right: right, kind: kind, join: join})
		lt := g.table(left)
		lt.edges = append(lt.edges, e)
		if join != noVertex {
			info := g.vertex(join).join
			info.edges = append(info.edges, e)
		}
	}
	edge := &g.edges[e]
	for i := range edge.leftCols {
		if edge.leftCols[i] == leftCol && edge.rightCols[i] == rightCol {
			return e
		}
	}
	edge.leftCols = append(edge.leftCols, leftCol)
	edge.rightCols = append(edge.rightCols, rightCol)
	return e
}

// addEdge adds all the column pairs of a new edge.
func (g *joinGraph) addEdge(
	left, right vertexID, kind edgeKind, leftCols, rightCols opt.ColList, join vertexID,
) {
	for i := range leftCols {
		g.addEdgePair(left, right, kind, leftCols[i], rightCols[i], join)
	}
}
