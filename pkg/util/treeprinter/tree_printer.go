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

package treeprinter

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/xlab/treeprint"
)

// Node is a handle associated with a specific depth in a tree. See below for
// sample usage.
type Node struct {
	p    *printer
	tree treeprint.Tree
}

type printer struct {
	root treeprint.Tree
}

// New creates a tree printer and returns a sentinel node reference which
// should be used to add the root. Sample usage:
//
//	tp := New()
//	root := tp.Child("root")
//	root.Child("child-1")
//	root.Child("child-2").Child("grandchild")
//	root.Child("child-3")
//
//	fmt.Print(tp.String())
//
// Output:
//
//	root
//	├── child-1
//	├── child-2
//	│   └── grandchild
//	└── child-3
func New() Node {
	return Node{p: &printer{}}
}

// Childf adds a node as a child of the given node.
func (n Node) Childf(format string, args ...interface{}) Node {
	return n.Child(fmt.Sprintf(format, args...))
}

// Child adds a node as a child of the given node. Only one child may be added
// to the sentinel node returned by New.
func (n Node) Child(text string) Node {
	if n.tree == nil {
		if n.p.root != nil {
			panic(errors.AssertionFailedf("tree printer already has a root"))
		}
		n.p.root = treeprint.NewWithRoot(text)
		return Node{p: n.p, tree: n.p.root}
	}
	return Node{p: n.p, tree: n.tree.AddBranch(text)}
}

// String returns the tree as a string, one node per line.
func (n Node) String() string {
	if n.p.root == nil {
		return ""
	}
	return n.p.root.String()
}
