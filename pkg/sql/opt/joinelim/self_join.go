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
	"sort"
	"strings"

	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/util"
)

// coversKey returns true if the edge joins two instances of the same table
// column-for-column, including the whole primary key. Left outer edges must
// be on the primary key alone.
func (g *joinGraph) coversKey(e *joinEdge) bool {
	if !g.isSelfEdge(e) {
		return false
	}
	lTab, rTab := g.table(e.left).tabID, g.table(e.right).tabID
	var ords util.FastIntSet
	for i := range e.leftCols {
		ord := lTab.ColumnOrdinal(e.leftCols[i])
		if ord != rTab.ColumnOrdinal(e.rightCols[i]) {
			return false
		}
		ords.Add(ord)
	}
	return g.keyCovered(e.right, ords, e.kind)
}

// keyCovered returns true if the given column ordinals of the table include
// its primary key. For left outer edges they must be exactly the key.
func (g *joinGraph) keyCovered(id vertexID, ords util.FastIntSet, kind edgeKind) bool {
	pk := util.MakeFastIntSet(g.baseTable(id).PrimaryKey()...)
	if !pk.SubsetOf(ords) {
		return false
	}
	return kind != leftOuterEdge || pk.Equals(ords)
}

// eliminateExplicitSelfJoins removes the right table of every edge that joins
// two instances of the same table on the primary key.
func (g *joinGraph) eliminateExplicitSelfJoins() {
	for i := range g.vertices {
		a := vertexID(i)
		if !g.isTable(a) {
			continue
		}
		at := g.table(a)
		for j := 0; j < len(at.edges) && !g.isEliminated(a); j++ {
			e := &g.edges[at.edges[j]]
			b := e.right
			if g.isEliminated(b) || !g.coversKey(e) || !g.canMove(b, a) {
				continue
			}
			g.markEliminated(b, a, g.columnsByOrdinal(b, a), "self-join")
		}
	}
}

// starSignature identifies the edges from a hub that join instances of the
// same table on the same hub columns.
func (g *joinGraph) starSignature(e *joinEdge) string {
	type pair struct {
		hubCol opt.ColumnID
		ord    int
	}
	rTab := g.table(e.right).tabID
	pairs := make([]pair, len(e.leftCols))
	for i := range e.leftCols {
		pairs[i] = pair{hubCol: e.leftCols[i], ord: rTab.ColumnOrdinal(e.rightCols[i])}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].hubCol != pairs[j].hubCol {
			return pairs[i].hubCol < pairs[j].hubCol
		}
		return pairs[i].ord < pairs[j].ord
	})
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s/%d", e.kind, g.baseTable(e.right).ID())
	for _, p := range pairs {
		fmt.Fprintf(&buf, "/%d=%d", p.hubCol, p.ord)
	}
	return buf.String()
}

// eliminateStarSelfJoins collapses instances of the same table that are
// joined to a common hub table on identical conditions. The instance with
// the lowest id is kept.
func (g *joinGraph) eliminateStarSelfJoins() {
	for i := range g.vertices {
		hub := vertexID(i)
		if !g.isTable(hub) || g.isEliminated(hub) {
			continue
		}

		var groups [][]edgeID
		index := make(map[string]int)
		for _, eid := range g.table(hub).edges {
			e := &g.edges[eid]
			if e.join == noVertex || e.right == hub || g.isEliminated(e.right) {
				continue
			}
			rTab := g.table(e.right).tabID
			var ords util.FastIntSet
			for _, c := range e.rightCols {
				ords.Add(rTab.ColumnOrdinal(c))
			}
			if !g.keyCovered(e.right, ords, e.kind) {
				continue
			}
			sig := g.starSignature(e)
			idx, ok := index[sig]
			if !ok {
				idx = len(groups)
				index[sig] = idx
				groups = append(groups, nil)
			}
			groups[idx] = append(groups[idx], eid)
		}

		for _, group := range groups {
			if len(group) < 2 {
				continue
			}
			sort.Slice(group, func(i, j int) bool {
				return g.edges[group[i]].right < g.edges[group[j]].right
			})
			keeper := &g.edges[group[0]]
			for _, eid := range group[1:] {
				other := &g.edges[eid]
				if g.isEliminated(keeper.right) || g.isEliminated(other.right) {
					continue
				}
				if !g.starMemberIsolated(keeper, other) || !g.canMove(other.right, keeper.right) {
					continue
				}
				g.markEliminated(other.right, keeper.right, g.columnsByOrdinal(other.right, keeper.right), "star self-join")
			}
		}
	}
}

// starMemberIsolated returns true if neither spoke is filtered by another
// join on the way up to their lowest common ancestor. The keeper may only
// pass through its own join. The eliminated spoke may also pass through
// cross joins and the preserved input of left joins.
func (g *joinGraph) starMemberIsolated(keeper, other *joinEdge) bool {
	locK, locO := g.location(keeper.right), g.location(other.right)
	anc := g.lca(locK, locO)
	keeperOK := g.walkUp(locK, anc, func(child, parent *vertex) bool {
		return parent.id == anc || parent.id == keeper.join
	})
	if !keeperOK {
		return false
	}
	return g.walkUp(locO, anc, func(child, parent *vertex) bool {
		switch {
		case parent.id == anc, parent.id == other.join:
			return true
		case parent.join.op == opt.CrossJoinOp:
			return true
		}
		return isLeftOfLeftJoin(child, parent)
	})
}
