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

	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/cat"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/memo"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/varref"
	"github.com/cockroachdb/joinelim/pkg/util/log"
	"github.com/cockroachdb/logtags"
)

// Eliminator removes redundant tables from join regions. It holds no state
// between calls to Eliminate, and can be reused for any number of regions
// that share the same metadata.
type Eliminator struct {
	ctx     context.Context
	md      *opt.Metadata
	lookup  cat.ConstraintLookup
	keyRefs KeyReferenceChecker
	opts    Options
}

// Result is the outcome of Eliminate.
type Result struct {
	// Root is the rebuilt region, or the input if nothing changed.
	Root memo.RelExpr

	// Renames maps every eliminated column to the surviving column that now
	// produces its values. The map is transitively closed: no value is itself
	// a key.
	Renames opt.ColMap

	// Processed is the set of input expressions that belong to the region.
	Processed map[memo.RelExpr]struct{}

	// Modified is true if any join was eliminated or promoted.
	Modified bool
}

// Init prepares the eliminator for use. lookup provides the foreign keys of
// the catalog. keyRefs may be nil, in which case a varref.Manager built from
// the tree passed to Eliminate is used.
func (e *Eliminator) Init(
	ctx context.Context,
	md *opt.Metadata,
	lookup cat.ConstraintLookup,
	keyRefs KeyReferenceChecker,
	opts Options,
) {
	*e = Eliminator{
		ctx:     logtags.AddTag(ctx, "pass", "joinelim"),
		md:      md,
		lookup:  lookup,
		keyRefs: keyRefs,
		opts:    opts,
	}
}

// Eliminate runs the pass over the region rooted at root. required is the set
// of columns the caller reads from the region's output. The input tree is
// never modified.
//
// All failures are internal errors: the tree is assumed to be well-formed.
func (e *Eliminator) Eliminate(root memo.RelExpr, required opt.ColSet) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ok, recErr := opt.ShouldCatch(r); ok {
				res, err = Result{}, recErr
			} else {
				panic(r)
			}
		}
	}()

	var g joinGraph
	res = Result{Root: root, Renames: opt.ColMap{}, Processed: make(map[memo.RelExpr]struct{})}
	if !e.analyze(&g, root, required) {
		return res, nil
	}
	for i := range g.vertices {
		if v := &g.vertices[i]; v.kind != opaqueVertex {
			res.Processed[v.expr] = struct{}{}
		}
	}
	if !g.modified {
		return res, nil
	}

	res.Root = g.rebuild()
	for from, to := range g.renames {
		res.Renames[from] = to
	}
	res.Modified = true
	log.VEventf(e.ctx, 1, "join elimination removed %d tables", log.Safe(g.numEliminated()))
	return res, nil
}

// analyze runs every stage of the pass except the rebuild. It returns false if
// the root is not a join, in which case there is nothing to do.
func (e *Eliminator) analyze(g *joinGraph, root memo.RelExpr, required opt.ColSet) bool {
	keyRefs := e.keyRefs
	if keyRefs == nil {
		keyRefs = varref.New(root)
	}
	g.init(e.ctx, e.md, e.lookup, keyRefs, e.opts, required)
	g.root = g.annotate(root)
	if g.vertex(g.root).kind != joinVertex {
		return false
	}

	g.buildEdges(g.root, g.root)
	g.computeRefCounts()
	if !e.opts.DisableOuterToInner {
		for g.promoteOuterJoins() {
			// The right inputs of promoted joins are now visible above them.
			g.buildEdges(g.root, g.root)
		}
	}
	g.generateTransitiveEdges()

	// An elimination can remove the right input of a left join, which lets
	// the tables of its left input move. Repeat until nothing changes.
	for n := -1; n != g.numEliminated(); {
		n = g.numEliminated()
		if !e.opts.DisableSelfJoins {
			g.eliminateExplicitSelfJoins()
			g.eliminateStarSelfJoins()
		}
		if !e.opts.DisableParentChild {
			g.eliminateParentChildJoins()
		}
	}
	return true
}

func (g *joinGraph) numEliminated() int {
	n := 0
	for i := range g.vertices {
		if id := vertexID(i); g.isTable(id) && g.isEliminated(id) {
			n++
		}
	}
	return n
}
