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
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/memo"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/testutils/exprgen"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/testutils/testcat"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/varref"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
tables:
  - name: t
    columns:
      - name: id
      - name: x
        nullable: true
    primary_key: [id]
  - name: p
    columns:
      - name: id
    primary_key: [id]
  - name: c
    columns:
      - name: id
      - name: p_id
    primary_key: [id]
    foreign_keys:
      - name: fk_c_p
        columns: [p_id]
        references: p
`

// newGraph annotates the tree described by input and generates its edges.
func newGraph(t *testing.T, input string) (*joinGraph, *opt.Metadata) {
	catalog := testcat.New()
	require.NoError(t, catalog.LoadYAML([]byte(testCatalog)))
	md := &opt.Metadata{}
	md.Init()
	root, err := exprgen.Build(catalog, md, input)
	require.NoError(t, err)

	g := &joinGraph{}
	g.init(context.Background(), md, catalog, varref.New(root), Options{}, memo.OutputCols(root))
	g.root = g.annotate(root)
	g.buildEdges(g.root, g.root)
	return g, md
}

func vertexByAlias(t *testing.T, g *joinGraph, md *opt.Metadata, alias string) vertexID {
	tabID, ok := md.TableByAlias(alias)
	require.True(t, ok)
	return g.tableVertices[tabID]
}

func col(t *testing.T, md *opt.Metadata, name string) opt.ColumnID {
	c, err := exprgen.ResolveColumn(md, name)
	require.NoError(t, err)
	return c
}

// expectAssertion runs fn and checks that it panics with an assertion failure
// containing msg.
func expectAssertion(t *testing.T, msg string, fn func()) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		ok, err := opt.ShouldCatch(r)
		require.True(t, ok)
		require.True(t, errors.IsAssertionFailure(err))
		require.Contains(t, err.Error(), msg)
	}()
	fn()
}

func TestGraphNavigation(t *testing.T) {
	g, md := newGraph(t, `
		(InnerJoin
		  (LeftJoin (Scan p) (Scan c) (Eq p.id c.p_id))
		  (Scan t)
		  (Eq c.id t.id))`)
	p, c, tab := vertexByAlias(t, g, md, "p"), vertexByAlias(t, g, md, "c"), vertexByAlias(t, g, md, "t")
	require.Equal(t, []vertexID{0, 1, 3}, []vertexID{p, c, tab})
	require.Equal(t, vertexID(4), g.root)
	require.Equal(t, []vertexID{0, 1, 0, 3, 0}, g.lo)

	require.True(t, g.isDescendant(c, 2))
	require.True(t, g.isDescendant(2, 2))
	require.False(t, g.isDescendant(tab, 2))
	require.Equal(t, vertexID(2), g.lca(p, c))
	require.Equal(t, vertexID(4), g.lca(c, tab))
	require.Equal(t, vertexID(4), g.lca(4, p))

	var steps [][2]vertexID
	require.True(t, g.walkUp(c, g.root, func(child, parent *vertex) bool {
		steps = append(steps, [2]vertexID{child.id, parent.id})
		return true
	}))
	require.Equal(t, [][2]vertexID{{1, 2}, {2, 4}}, steps)

	require.True(t, isLeftOfLeftJoin(g.vertex(p), g.vertex(2)))
	require.True(t, isRightOfLeftJoin(g.vertex(c), g.vertex(2)))
	require.False(t, isLeftOfLeftJoin(g.vertex(2), g.vertex(4)))

	// c is hidden below the right input of the left join.
	require.Equal(t, g.root, g.table(p).lastVisible)
	require.Equal(t, vertexID(2), g.table(c).lastVisible)
	require.Equal(t, g.root, g.table(tab).lastVisible)
	require.Len(t, g.edges, 1)
	require.Equal(t, leftOuterEdge, g.edges[0].kind)

	expectAssertion(t, "is not a table", func() { g.table(2) })
	expectAssertion(t, "does not exist", func() { g.vertex(5) })
}

func TestTransitiveEdges(t *testing.T) {
	g, md := newGraph(t, `
		(InnerJoin
		  (InnerJoin (Scan t a) (Scan t b) (Eq a.id b.id) (Eq a.x b.x))
		  (Scan t d)
		  (Eq b.id d.id))`)
	a, d := vertexByAlias(t, g, md, "a"), vertexByAlias(t, g, md, "d")
	require.Equal(t, noEdge, g.findEdge(a, d, innerEdge))

	g.generateTransitiveEdges()
	e := g.findEdge(a, d, innerEdge)
	require.NotEqual(t, noEdge, e)
	require.Equal(t, opt.ColList{col(t, md, "a.id")}, g.edges[e].leftCols)
	require.Equal(t, opt.ColList{col(t, md, "d.id")}, g.edges[e].rightCols)
	require.Equal(t, noVertex, g.edges[e].join)

	mirror := g.findEdge(d, a, innerEdge)
	require.NotEqual(t, noEdge, mirror)
	require.Equal(t, opt.ColList{col(t, md, "d.id")}, g.edges[mirror].leftCols)

	// A second pass finds nothing new.
	n := len(g.edges)
	g.generateTransitiveEdges()
	require.Len(t, g.edges, n)
}

func TestTransitiveLeftOuterEdges(t *testing.T) {
	g, md := newGraph(t, "(CrossJoin (Scan c) (Scan t a) (Scan t b) (Scan p))")
	c, a, b, p := vertexByAlias(t, g, md, "c"), vertexByAlias(t, g, md, "a"),
		vertexByAlias(t, g, md, "b"), vertexByAlias(t, g, md, "p")

	// c -> a -> b combines because a -> b joins two instances of t.
	g.addEdgePair(c, a, leftOuterEdge, col(t, md, "c.id"), col(t, md, "a.id"), 4)
	g.addEdgePair(a, b, leftOuterEdge, col(t, md, "a.id"), col(t, md, "b.id"), 4)
	// c -> a -> p does not: neither edge is a self-join edge.
	g.addEdgePair(a, p, leftOuterEdge, col(t, md, "a.id"), col(t, md, "p.id"), 4)
	g.generateTransitiveEdges()

	e := g.findEdge(c, b, leftOuterEdge)
	require.NotEqual(t, noEdge, e)
	require.Equal(t, opt.ColList{col(t, md, "c.id")}, g.edges[e].leftCols)
	require.Equal(t, opt.ColList{col(t, md, "b.id")}, g.edges[e].rightCols)
	require.Equal(t, noEdge, g.findEdge(b, c, leftOuterEdge))
	require.False(t, g.hasEdge(c, p))
}

func TestTransitiveMixedKinds(t *testing.T) {
	g, md := newGraph(t, "(CrossJoin (Scan t a) (Scan t b) (Scan t d))")
	a, b, d := vertexByAlias(t, g, md, "a"), vertexByAlias(t, g, md, "b"), vertexByAlias(t, g, md, "d")

	g.addEdgePair(a, b, innerEdge, col(t, md, "a.id"), col(t, md, "b.id"), 3)
	g.addEdgePair(b, d, leftOuterEdge, col(t, md, "b.id"), col(t, md, "d.id"), 3)
	g.generateTransitiveEdges()
	require.False(t, g.hasEdge(a, d))
	require.Len(t, g.edges, 2)
}

func TestAddEdgePairDeduplicates(t *testing.T) {
	g, md := newGraph(t, "(CrossJoin (Scan t a) (Scan t b))")
	a, b := vertexByAlias(t, g, md, "a"), vertexByAlias(t, g, md, "b")
	first := g.addEdgePair(a, b, innerEdge, col(t, md, "a.id"), col(t, md, "b.id"), noVertex)
	second := g.addEdgePair(a, b, innerEdge, col(t, md, "a.id"), col(t, md, "b.id"), noVertex)
	third := g.addEdgePair(a, b, innerEdge, col(t, md, "a.x"), col(t, md, "b.x"), noVertex)
	require.Equal(t, first, second)
	require.Equal(t, first, third)
	require.Len(t, g.edges[first].leftCols, 2)
	require.Len(t, g.table(a).edges, 1)
	require.Empty(t, g.table(b).edges)
}

func TestAddRename(t *testing.T) {
	g, md := newGraph(t, "(CrossJoin (Scan t a) (Scan t b) (Scan t d))")
	aID, bID, dID := col(t, md, "a.id"), col(t, md, "b.id"), col(t, md, "d.id")
	g.computeRefCounts()

	g.addRename(aID, bID)
	g.addRename(bID, dID)
	require.Equal(t, opt.ColMap{aID: dID, bID: dID}, g.renames)
	require.Equal(t, opt.MakeColSet(aID, bID), g.reverseRenames[dID])
	require.NotContains(t, g.reverseRenames, bID)

	// Every column is required once; d.id stands in for all three.
	require.Equal(t, 3, g.refCount(dID))

	// Renaming to a column that is itself renamed follows the chain.
	aX, bX, dX := col(t, md, "a.x"), col(t, md, "b.x"), col(t, md, "d.x")
	g.addRename(bX, dX)
	g.addRename(aX, bX)
	require.Equal(t, dX, g.renames[aX])

	expectAssertion(t, "already renamed", func() { g.addRename(aID, bID) })
}

func TestCanMove(t *testing.T) {
	g, md := newGraph(t, `
		(InnerJoin
		  (Scan t a)
		  (LeftJoin (Scan t b) (Scan p) (Eq b.x p.id))
		  (Eq a.id b.id))`)
	a, b, p := vertexByAlias(t, g, md, "a"), vertexByAlias(t, g, md, "b"), vertexByAlias(t, g, md, "p")

	// b would leave the preserved input of the left join.
	require.False(t, g.canMove(b, a))
	require.False(t, g.canMove(a, b))
	// p moves out of the null-extended input, and then through an inner join.
	require.True(t, g.canMove(p, b))
	require.True(t, g.canMove(a, p))
}

func TestMarkEliminated(t *testing.T) {
	g, md := newGraph(t, "(InnerJoin (Scan t a) (InnerJoin (Scan t b) (Scan t d) (Eq b.id d.id)) (Eq a.id b.id))")
	a, b, d := vertexByAlias(t, g, md, "a"), vertexByAlias(t, g, md, "b"), vertexByAlias(t, g, md, "d")

	g.markEliminated(d, b, g.columnsByOrdinal(d, b), "test")
	require.True(t, g.modified)
	require.Equal(t, b, g.resolve(d))
	require.Equal(t, b, g.location(d))

	// b takes the position of a, and d follows.
	g.markEliminated(a, b, g.columnsByOrdinal(a, b), "test")
	require.Equal(t, b, g.resolve(a))
	require.Equal(t, a, g.location(d))
	require.Equal(t, a, g.colLocation(col(t, md, "d.x")))
	require.Equal(t, col(t, md, "b.x"), g.renamed(col(t, md, "d.x")))

	expectAssertion(t, "already eliminated", func() {
		g.markEliminated(d, b, opt.ColMap{}, "test")
	})

	// A forwarding cycle is an internal error.
	g.table(b).replacement = d
	expectAssertion(t, "forwarding cycle", func() { g.resolve(d) })
}

func TestFindForeignKey(t *testing.T) {
	g, md := newGraph(t, "(InnerJoin (Scan p) (Scan c) (Eq p.id c.p_id))")
	p, c := vertexByAlias(t, g, md, "p"), vertexByAlias(t, g, md, "c")
	pID, cPID, cID := col(t, md, "p.id"), col(t, md, "c.p_id"), col(t, md, "c.id")

	fk := g.findForeignKey(p, c, opt.ColList{pID}, opt.ColList{cPID})
	require.NotNil(t, fk)
	require.Equal(t, "fk_c_p", fk.Name())

	// Wrong child column, wrong direction.
	require.Nil(t, g.findForeignKey(p, c, opt.ColList{pID}, opt.ColList{cID}))
	require.Nil(t, g.findForeignKey(c, p, opt.ColList{cPID}, opt.ColList{pID}))

	g.lookup = nil
	require.Nil(t, g.findForeignKey(p, c, opt.ColList{pID}, opt.ColList{cPID}))
}

func TestPromotionRevealsRightInput(t *testing.T) {
	catalog := testcat.New()
	require.NoError(t, catalog.LoadYAML([]byte(testCatalog)))
	md := &opt.Metadata{}
	md.Init()
	root, err := exprgen.Build(catalog, md, `
		(LeftJoin
		  (LeftJoin (Scan c) (Scan p p1) (Eq c.p_id p1.id))
		  (Scan p p2)
		  (Eq p1.id p2.id))`)
	require.NoError(t, err)

	var e Eliminator
	e.Init(context.Background(), md, catalog, nil /* keyRefs */, Options{})
	var g joinGraph
	require.True(t, e.analyze(&g, root, memo.OutputCols(root)))

	p1, p2 := vertexByAlias(t, &g, md, "p1"), vertexByAlias(t, &g, md, "p2")
	require.Equal(t, opt.InnerJoinOp, g.vertex(2).join.op)
	require.Equal(t, opt.LeftJoinOp, g.vertex(4).join.op)

	// Once the lower join is inner, p1 is visible to the upper join, whose
	// condition makes p2 a left self-join of p1 on the key.
	require.Equal(t, g.root, g.table(p1).lastVisible)
	require.NotEqual(t, noEdge, g.findEdge(p1, p2, leftOuterEdge))
	require.Equal(t, p1, g.table(p2).replacement)
}

func TestKeyReferencedBelow(t *testing.T) {
	g, md := newGraph(t, `
		(InnerJoin
		  (InnerJoin (Scan p) (Opaque sub (Values) p.id))
		  (Scan c)
		  (Eq p.id c.p_id))`)
	p, c := vertexByAlias(t, g, md, "p"), vertexByAlias(t, g, md, "c")
	require.True(t, g.keyReferencedBelow(p, g.root))
	require.False(t, g.keyReferencedBelow(c, g.root))

	g.required = opt.MakeColSet(col(t, md, "c.id"))
	g.computeRefCounts()
	g.eliminateParentChildJoins()
	require.False(t, g.isEliminated(p))
	require.False(t, g.modified)

	g, md = newGraph(t, `
		(InnerJoin
		  (InnerJoin (Scan p) (Opaque sub (Values)))
		  (Scan c)
		  (Eq p.id c.p_id))`)
	p = vertexByAlias(t, g, md, "p")
	require.False(t, g.keyReferencedBelow(p, g.root))
}
