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
	"sort"

	"github.com/cockroachdb/joinelim/pkg/sql/opt"
)

// generateTransitiveEdges combines pairs of edges A->B and B->C into new edges
// A->C until no more edges can be derived. The loops index the edge lists
// directly instead of ranging over them, so that edges appended while the
// loop runs are combined as well.
func (g *joinGraph) generateTransitiveEdges() {
	for changed := true; changed; {
		changed = false
		for a := range g.vertices {
			if g.vertices[a].kind != tableVertex {
				continue
			}
			at := g.vertices[a].table
			for i := 0; i < len(at.edges); i++ {
				first := at.edges[i]
				bt := g.table(g.edges[first].right)
				for j := 0; j < len(bt.edges); j++ {
					if g.tryAddTransitiveEdge(first, bt.edges[j]) {
						changed = true
					}
				}
			}
		}
	}
}

// colPair is a pair of equal columns; mid is the column of the shared table.
type colPair struct {
	mid, other opt.ColumnID
}

func sortedPairs(mid, other opt.ColList) []colPair {
	pairs := make([]colPair, len(mid))
	for i := range mid {
		pairs[i] = colPair{mid: mid[i], other: other[i]}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].mid != pairs[j].mid {
			return pairs[i].mid < pairs[j].mid
		}
		return pairs[i].other < pairs[j].other
	})
	return pairs
}

// matchEdges lines up the columns of A->B and B->C on B. It returns the
// matched (A, C) column pairs, and whether every pair of each edge found a
// partner.
func (g *joinGraph) matchEdges(first, second *joinEdge) (aCols, cCols opt.ColList, full bool) {
	p1 := sortedPairs(first.rightCols, first.leftCols)
	p2 := sortedPairs(second.leftCols, second.rightCols)
	full = len(p1) == len(p2)
	i, j := 0, 0
	for i < len(p1) && j < len(p2) {
		switch {
		case p1[i].mid == p2[j].mid:
			aCols = append(aCols, p1[i].other)
			cCols = append(cCols, p2[j].other)
			i++
			j++
		case p1[i].mid < p2[j].mid:
			full = false
			i++
		default:
			full = false
			j++
		}
	}
	if i < len(p1) || j < len(p2) {
		full = false
	}
	return aCols, cCols, full
}

// isSelfEdge returns true if both endpoints of the edge are instances of the
// same table.
func (g *joinGraph) isSelfEdge(e *joinEdge) bool {
	return g.sameBaseTable(e.left, e.right)
}

// tryAddTransitiveEdge derives A->C from A->B and B->C. Inner edges derive
// the columns the two edges have in common on B. Left outer edges only
// combine when one of them is a self-join edge and their columns on B match
// exactly.
func (g *joinGraph) tryAddTransitiveEdge(firstID, secondID edgeID) bool {
	first, second := g.edges[firstID], g.edges[secondID]
	a, c := first.left, second.right
	if a == c || g.hasEdge(a, c) {
		return false
	}
	if first.kind != second.kind {
		return false
	}
	aCols, cCols, full := g.matchEdges(&first, &second)
	if len(aCols) == 0 {
		return false
	}
	if first.kind == leftOuterEdge {
		if !full || (!g.isSelfEdge(&first) && !g.isSelfEdge(&second)) {
			return false
		}
	}
	g.addEdge(a, c, first.kind, aCols, cCols, noVertex)
	if first.kind == innerEdge {
		g.addEdge(c, a, innerEdge, cCols, aCols, noVertex)
	}
	return true
}
