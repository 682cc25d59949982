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
	"fmt"
	"strings"

	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/memo"
	"github.com/cockroachdb/joinelim/pkg/util/treeprinter"
)

// FormatGraph runs the analysis stages of the pass over the region and
// returns a description of the resulting join graph: every vertex, with the
// table that replaced it if it was eliminated, and every join edge.
func (e *Eliminator) FormatGraph(root memo.RelExpr, required opt.ColSet) (s string, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ok, recErr := opt.ShouldCatch(r); ok {
				s, err = "", recErr
			} else {
				panic(r)
			}
		}
	}()

	var g joinGraph
	e.analyze(&g, root, required)

	tp := treeprinter.New()
	n := tp.Child("join graph")
	vertices := n.Child("vertices")
	for i := range g.vertices {
		vertices.Child(g.formatVertex(vertexID(i)))
	}
	if len(g.edges) > 0 {
		edges := n.Child("edges")
		for i := range g.edges {
			edges.Child(g.formatEdge(&g.edges[i]))
		}
	}
	return tp.String(), nil
}

func (g *joinGraph) formatVertex(id vertexID) string {
	v := g.vertex(id)
	var buf strings.Builder
	fmt.Fprintf(&buf, "v%d: ", id)
	switch v.kind {
	case tableVertex:
		fmt.Fprintf(&buf, "table %s", g.tableName(id))
		if t := v.table; t.lastVisible != noVertex {
			fmt.Fprintf(&buf, " visible=v%d", t.lastVisible)
		}
		if s := g.resolve(id); s != id {
			fmt.Fprintf(&buf, " eliminated=%s", g.tableName(s))
		} else if v.table.newLocation != id {
			fmt.Fprintf(&buf, " location=v%d", v.table.newLocation)
		}

	case joinVertex:
		buf.WriteString(v.join.op.String())
		for _, c := range v.children {
			fmt.Fprintf(&buf, " v%d", c)
		}
		if len(v.join.leftCols) > 0 {
			fmt.Fprintf(&buf, " eq=(%s)", g.formatPairs(v.join.leftCols, v.join.rightCols))
		}
		if len(v.join.residual) > 0 {
			f := memo.MakeExprFmtCtx(g.md)
			fmt.Fprintf(&buf, " residual=(%s)", f.FormatScalar(v.join.residual))
		}

	default:
		fmt.Fprintf(&buf, "opaque %s", v.expr.Op())
	}
	return buf.String()
}

func (g *joinGraph) formatEdge(e *joinEdge) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s -> %s %s (%s)",
		g.tableName(e.left), g.tableName(e.right), e.kind, g.formatPairs(e.leftCols, e.rightCols))
	if e.join == noVertex {
		buf.WriteString(" derived")
	} else {
		fmt.Fprintf(&buf, " v%d", e.join)
	}
	return buf.String()
}

func (g *joinGraph) formatPairs(left, right opt.ColList) string {
	var buf strings.Builder
	for i := range left {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s=%s", g.md.QualifiedAlias(left[i]), g.md.QualifiedAlias(right[i]))
	}
	return buf.String()
}
