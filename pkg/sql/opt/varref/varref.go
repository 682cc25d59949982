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

// Package varref answers positional questions about column references in an
// expression tree: whether a set of columns is read by an operator that sits
// to the right of a given subtree, below a given boundary.
package varref

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/memo"
)

type parentRef struct {
	parent memo.RelExpr
	// childIdx is the position of the child among the parent's children.
	childIdx int
}

// Manager records the parent of every relational expression in a tree. It is
// built once per tree and is read-only afterwards.
type Manager struct {
	parents map[memo.RelExpr]parentRef
}

// New builds a Manager for the given tree.
func New(root memo.RelExpr) *Manager {
	m := &Manager{parents: make(map[memo.RelExpr]parentRef)}
	m.index(root)
	return m
}

func (m *Manager) index(e memo.RelExpr) {
	for i, n := 0, e.ChildCount(); i < n; i++ {
		if child, ok := e.Child(i).(memo.RelExpr); ok {
			if _, seen := m.parents[child]; seen {
				panic(errors.AssertionFailedf("expression %s appears twice in the tree", child.Op()))
			}
			m.parents[child] = parentRef{parent: e, childIdx: i}
			m.index(child)
		}
	}
}

// Parent returns the parent of the given expression, or nil if it is the
// root (or not part of the tree).
func (m *Manager) Parent(e memo.RelExpr) memo.RelExpr {
	return m.parents[e].parent
}

// HasKeyReferences returns true if any of the given columns is read by a
// sibling subtree to the right of the ancestor chain that leads from definer
// up to boundary. Only ancestors strictly below boundary are considered: the
// boundary's own children and predicate are not inspected. The boundary must
// be an ancestor of definer.
func (m *Manager) HasKeyReferences(cols opt.ColSet, definer, boundary memo.RelExpr) bool {
	child := definer
	for child != boundary {
		ref, ok := m.parents[child]
		if !ok {
			panic(errors.AssertionFailedf("boundary is not an ancestor of the defining expression"))
		}
		if ref.parent == boundary {
			return false
		}
		for i, n := ref.childIdx+1, ref.parent.ChildCount(); i < n; i++ {
			if referencedCols(ref.parent.Child(i)).Intersects(cols) {
				return true
			}
		}
		child = ref.parent
	}
	return false
}

// referencedCols returns the columns read by a sibling expression that are
// not produced inside it.
func referencedCols(e opt.Expr) opt.ColSet {
	switch t := e.(type) {
	case memo.RelExpr:
		return memo.OuterCols(t)
	case memo.ScalarExpr:
		return memo.ScalarCols(t)
	}
	return opt.ColSet{}
}
