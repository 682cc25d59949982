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
	"context"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/cat"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/memo"
	"github.com/cockroachdb/joinelim/pkg/util/log"
)

// vertexID identifies a vertex of the join graph. It is the position of the
// vertex in joinGraph.vertices.
type vertexID int32

const noVertex vertexID = -1

type vertexKind uint8

const (
	opaqueVertex vertexKind = iota
	tableVertex
	joinVertex
)

// vertex is a node of the annotated region. Exactly one of table and join is
// set for table and join vertices; both are nil for opaque vertices.
type vertex struct {
	id   vertexID
	kind vertexKind
	// expr is the input expression the vertex was built from.
	expr memo.RelExpr

	parent   vertexID
	children []vertexID

	table *tableInfo
	join  *joinInfo
}

type tableInfo struct {
	tabID opt.TableID

	// lastVisible is the highest join at which new edges may still reference
	// the table.
	lastVisible vertexID

	// replacement is the table that replaced this one, or the vertex itself if
	// the table has not been eliminated. Replacements always point to tables
	// that had not been eliminated at the time, so chains cannot cycle.
	replacement vertexID

	// newLocation is the vertex whose position the table occupies in the
	// rebuilt tree. It differs from the vertex id once the table absorbed a
	// table with a lower id.
	newLocation vertexID

	// edges are the outgoing join edges of the table.
	edges []edgeID
}

type joinInfo struct {
	op opt.Operator

	// leftCols and rightCols are the equality column pairs of a binary join.
	leftCols  opt.ColList
	rightCols opt.ColList

	// residual is the rest of the join predicate. For full joins it is the
	// whole predicate.
	residual memo.FiltersExpr

	// edges are the join edges generated for this join.
	edges []edgeID
}

type edgeID int32

const noEdge edgeID = -1

type edgeKind uint8

const (
	innerEdge edgeKind = iota
	leftOuterEdge
)

func (k edgeKind) String() string {
	if k == leftOuterEdge {
		return "left-outer"
	}
	return "inner"
}

// joinEdge is a directed equi-join fact between two table vertices.
type joinEdge struct {
	left, right vertexID
	kind        edgeKind

	// leftCols and rightCols are parallel lists of equal columns of the left
	// and right tables.
	leftCols  opt.ColList
	rightCols opt.ColList

	// join is the join that generated the edge, or noVertex if the edge was
	// derived by transitivity.
	join vertexID
}

// joinGraph holds the state of one run of the pass.
type joinGraph struct {
	ctx     context.Context
	md      *opt.Metadata
	lookup  cat.ConstraintLookup
	keyRefs KeyReferenceChecker
	opts    Options

	vertices []vertex
	// lo[v] is the lowest vertex id in the subtree rooted at v.
	lo    []vertexID
	edges []joinEdge
	root  vertexID

	tableVertices map[opt.TableID]vertexID
	// varDefiner maps every column produced inside the region to the table or
	// opaque vertex that produces it.
	varDefiner map[opt.ColumnID]vertexID

	required opt.ColSet
	// renames maps every eliminated column to the surviving column that
	// replaces it. It is kept transitively closed.
	renames opt.ColMap
	// reverseRenames maps a surviving column to all the columns it replaces.
	reverseRenames map[opt.ColumnID]opt.ColSet
	refCounts      map[opt.ColumnID]int

	modified bool
}

func (g *joinGraph) init(
	ctx context.Context,
	md *opt.Metadata,
	lookup cat.ConstraintLookup,
	keyRefs KeyReferenceChecker,
	opts Options,
	required opt.ColSet,
) {
	*g = joinGraph{
		ctx:            ctx,
		md:             md,
		lookup:         lookup,
		keyRefs:        keyRefs,
		opts:           opts,
		root:           noVertex,
		tableVertices:  make(map[opt.TableID]vertexID),
		varDefiner:     make(map[opt.ColumnID]vertexID),
		required:       required,
		renames:        make(opt.ColMap),
		reverseRenames: make(map[opt.ColumnID]opt.ColSet),
		refCounts:      make(map[opt.ColumnID]int),
	}
}

func (g *joinGraph) vertex(id vertexID) *vertex {
	if id < 0 || int(id) >= len(g.vertices) {
		panic(errors.AssertionFailedf("vertex %d does not exist", log.Safe(id)))
	}
	return &g.vertices[id]
}

func (g *joinGraph) table(id vertexID) *tableInfo {
	v := g.vertex(id)
	if v.kind != tableVertex {
		panic(errors.AssertionFailedf("vertex %d is not a table", log.Safe(id)))
	}
	return v.table
}

func (g *joinGraph) isTable(id vertexID) bool {
	return id != noVertex && g.vertex(id).kind == tableVertex
}

// isDescendant returns true if x is in the subtree rooted at v (v included).
func (g *joinGraph) isDescendant(x, v vertexID) bool {
	return g.lo[v] <= x && x <= v
}

// lca returns the lowest common ancestor of two vertices.
func (g *joinGraph) lca(a, b vertexID) vertexID {
	for !g.isDescendant(b, a) {
		a = g.vertex(a).parent
		if a == noVertex {
			panic(errors.AssertionFailedf("vertex %d is not part of the region", log.Safe(b)))
		}
	}
	return a
}

// walkUp calls fn for every step from a vertex to its parent, starting at
// from and ending with the step into to, which must be an ancestor of from.
// It stops and returns false as soon as fn returns false.
func (g *joinGraph) walkUp(from, to vertexID, fn func(child, parent *vertex) bool) bool {
	for c := from; c != to; {
		v := g.vertex(c)
		if v.parent == noVertex {
			panic(errors.AssertionFailedf("vertex %d is not an ancestor of %d", log.Safe(to), log.Safe(from)))
		}
		p := g.vertex(v.parent)
		if !fn(v, p) {
			return false
		}
		c = p.id
	}
	return true
}

// isLeftOfLeftJoin returns true if child is the left (preserved) input of parent and
// parent is a left join.
func isLeftOfLeftJoin(child, parent *vertex) bool {
	return parent.kind == joinVertex && parent.join.op == opt.LeftJoinOp && parent.children[0] == child.id
}

// isRightOfLeftJoin returns true if child is the right (null-extended) input
// of a left join.
func isRightOfLeftJoin(child, parent *vertex) bool {
	return parent.kind == joinVertex && parent.join.op == opt.LeftJoinOp && parent.children[1] == child.id
}

// resolve follows the forwarding chain of a table vertex to the table that
// currently stands in for it.
func (g *joinGraph) resolve(id vertexID) vertexID {
	for i := 0; i <= len(g.vertices); i++ {
		next := g.table(id).replacement
		if next == id {
			return id
		}
		id = next
	}
	panic(errors.AssertionFailedf("forwarding cycle through vertex %d", log.Safe(id)))
}

func (g *joinGraph) isEliminated(id vertexID) bool {
	return g.table(id).replacement != id
}

// location returns the vertex whose position the table that currently
// stands in for id occupies in the rebuilt tree.
func (g *joinGraph) location(id vertexID) vertexID {
	return g.table(g.resolve(id)).newLocation
}

// colLocation returns the position at which a column will be defined in the
// rebuilt tree, or noVertex if it is not defined inside the region.
func (g *joinGraph) colLocation(col opt.ColumnID) vertexID {
	def, ok := g.varDefiner[g.renamed(col)]
	if !ok {
		return noVertex
	}
	if g.isTable(def) {
		return g.location(def)
	}
	return def
}

// renamed returns the surviving column that stands in for col.
func (g *joinGraph) renamed(col opt.ColumnID) opt.ColumnID {
	if to, ok := g.renames[col]; ok {
		return to
	}
	return col
}

// baseTable returns the catalog table of a table vertex.
func (g *joinGraph) baseTable(id vertexID) cat.Table {
	return g.md.Table(g.table(id).tabID)
}

// sameBaseTable returns true if both table vertices are instances of the same
// catalog table.
func (g *joinGraph) sameBaseTable(a, b vertexID) bool {
	return g.baseTable(a).ID() == g.baseTable(b).ID()
}

func (g *joinGraph) tableName(id vertexID) string {
	return g.md.TableMeta(g.table(id).tabID).Name()
}
