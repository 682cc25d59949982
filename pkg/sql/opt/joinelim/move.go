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
	"github.com/cockroachdb/joinelim/pkg/util/log"
)

// canMove returns true if table x can be eliminated in favor of table y. One
// of the two moves to the position of the other: the one with the higher
// location moves to the lower one. The move is refused if, on its way up to
// the lowest common ancestor of both locations, the moving table passes
// through the preserved input of a left join whose right input is still
// there.
func (g *joinGraph) canMove(x, y vertexID) bool {
	locX, locY := g.location(x), g.location(y)
	mover := locX
	if locY > mover {
		mover = locY
	}
	anc := g.lca(locX, locY)
	return g.walkUp(mover, anc, func(child, parent *vertex) bool {
		return !isLeftOfLeftJoin(child, parent) || g.vanished(parent.children[1])
	})
}

// vanished returns true if nothing is left of the subtree rooted at id: it has
// no opaque vertex, and every table that stood in it was eliminated in favor
// of a table located elsewhere.
func (g *joinGraph) vanished(id vertexID) bool {
	for i := g.lo[id]; i <= id; i++ {
		if g.vertex(i).kind == opaqueVertex {
			return false
		}
	}
	for i := range g.vertices {
		t := vertexID(i)
		if g.isTable(t) && !g.isEliminated(t) && g.isDescendant(g.table(t).newLocation, id) {
			return false
		}
	}
	return true
}

// markEliminated records that table x is replaced by table y. cols maps the
// columns of x that are still needed to the columns of y that stand in for
// them.
func (g *joinGraph) markEliminated(x, y vertexID, cols opt.ColMap, reason string) {
	xt, yt := g.table(x), g.table(y)
	if g.isEliminated(x) || g.isEliminated(y) {
		panic(errors.AssertionFailedf("vertex %d or %d was already eliminated", log.Safe(x), log.Safe(y)))
	}
	xt.replacement = y
	if xt.newLocation < yt.newLocation {
		yt.newLocation = xt.newLocation
	}
	for _, from := range sortedKeys(cols) {
		g.addRename(from, cols[from])
	}
	g.modified = true
	log.VEventf(g.ctx, 2, "%s: eliminated %s in favor of %s",
		log.Safe(reason), g.tableName(x), g.tableName(y))
}

// addRename records that from is replaced by to, keeping the rename map
// transitively closed.
func (g *joinGraph) addRename(from, to opt.ColumnID) {
	to = g.renamed(to)
	if from == to {
		return
	}
	if _, ok := g.renames[from]; ok {
		panic(errors.AssertionFailedf("column %d was already renamed", log.Safe(from)))
	}
	rev := g.reverseRenames[to]
	g.reverseRenames[from].ForEach(func(c int) {
		g.renames[opt.ColumnID(c)] = to
		rev.Add(c)
	})
	g.renames[from] = to
	rev.Add(int(from))
	g.reverseRenames[to] = rev
	delete(g.reverseRenames, from)
}

// columnsByOrdinal maps every column of table instance x to the column with
// the same ordinal in table instance y. Both must be instances of the same
// table.
func (g *joinGraph) columnsByOrdinal(x, y vertexID) opt.ColMap {
	xTab, yTab := g.table(x).tabID, g.table(y).tabID
	m := make(opt.ColMap)
	for i, n := 0, g.baseTable(x).ColumnCount(); i < n; i++ {
		m[xTab.ColumnID(i)] = yTab.ColumnID(i)
	}
	return m
}

// pairMap maps each column in from to the column at the same position in to.
func pairMap(from, to opt.ColList) opt.ColMap {
	m := make(opt.ColMap, len(from))
	for i := range from {
		m[from[i]] = to[i]
	}
	return m
}

func sortedKeys(m opt.ColMap) opt.ColList {
	var keys opt.ColSet
	for k := range m {
		keys.Add(int(k))
	}
	return opt.ColSetToList(keys)
}
