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

// annotate builds the vertices for the subtree rooted at e and returns the id
// of its root. Children are always annotated before their parent, so ids are
// assigned in post-order.
func (g *joinGraph) annotate(e memo.RelExpr) vertexID {
	lo := vertexID(len(g.vertices))
	switch t := e.(type) {
	case *memo.ScanExpr:
		if _, ok := g.tableVertices[t.Table]; ok {
			panic(errors.AssertionFailedf(
				"table %s is scanned more than once", log.Safe(g.md.TableMeta(t.Table).Name()),
			))
		}
		id := g.addVertex(tableVertex, e, lo, nil)
		g.vertices[id].table = &tableInfo{
			tabID:       t.Table,
			lastVisible: noVertex,
			replacement: id,
			newLocation: id,
		}
		g.tableVertices[t.Table] = id
		g.defineCols(g.md.TableColumns(t.Table), id)
		return id

	case *memo.JoinExpr:
		left := g.annotate(t.Left)
		right := g.annotate(t.Right)
		info := &joinInfo{op: t.JoinType}
		if t.JoinType == opt.FullJoinOp {
			info.residual = t.On
		} else {
			info.leftCols, info.rightCols = memo.ExtractJoinEqualityColumns(
				memo.OutputCols(t.Left), memo.OutputCols(t.Right), t.On,
			)
			info.residual = memo.ExtractRemainingJoinFilters(t.On, info.leftCols, info.rightCols)
		}
		id := g.addVertex(joinVertex, e, lo, []vertexID{left, right})
		g.vertices[id].join = info
		return id

	case *memo.CrossJoinExpr:
		children := make([]vertexID, len(t.Inputs))
		for i := range t.Inputs {
			children[i] = g.annotate(t.Inputs[i])
		}
		id := g.addVertex(joinVertex, e, lo, children)
		g.vertices[id].join = &joinInfo{op: opt.CrossJoinOp}
		return id
	}

	id := g.addVertex(opaqueVertex, e, lo, nil)
	g.defineCols(memo.OutputCols(e), id)
	return id
}

func (g *joinGraph) addVertex(
	kind vertexKind, e memo.RelExpr, lo vertexID, children []vertexID,
) vertexID {
	id := vertexID(len(g.vertices))
	g.vertices = append(g.vertices, vertex{
		id:       id,
		kind:     kind,
		expr:     e,
		parent:   noVertex,
		children: children,
	})
	g.lo = append(g.lo, lo)
	for _, c := range children {
		g.vertices[c].parent = id
	}
	return id
}

func (g *joinGraph) defineCols(cols opt.ColSet, id vertexID) {
	cols.ForEach(func(c int) {
		g.varDefiner[opt.ColumnID(c)] = id
	})
}
