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

// Package exprgen builds expression trees from a compact s-expression syntax,
// for use in tests and in the joinelim command. For example:
//
//	(InnerJoin
//	  (Scan t a)
//	  (LeftJoin (Scan t b) (Scan u) (Eq b.x u.x))
//	  (Eq a.id b.id)
//	)
//
// Relational operators:
//
//	(Scan <table> [<alias>])
//	(InnerJoin <left> <right> <condition>...)
//	(LeftJoin <left> <right> <condition>...)
//	(FullJoin <left> <right> <condition>...)
//	(CrossJoin <input>...)
//	(Select <input> <condition>...)
//	(Project <input> <column>...)
//	(Values)
//	(Opaque <name> <input> <column>...)
//
// Scalar operators:
//
//	(Eq <a> <b>), (Ne ...), (Lt ...), (Le ...), (Gt ...), (Ge ...)
//	(And <a> <b>...), (Or <a> <b>...), (Not <a>)
//	(IsNull <a>), (IsNotNull <a>)
//
// Scalar leaves are column references of the form <alias>.<column>, integer
// constants, NULL, true and false. Every table instance must have a distinct
// alias; column references may refer to any table instance in the tree,
// including ones that appear later in the input.
package exprgen

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/cat"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/memo"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/testutils/testcat"
)

// Build parses the input and constructs the corresponding relational
// expression. A table instance is added to the metadata for every Scan, in
// order of appearance.
func Build(catalog *testcat.Catalog, md *opt.Metadata, input string) (_ memo.RelExpr, err error) {
	root, err := parse(input)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(builderError); ok {
				err = e.error
				return
			}
			panic(r)
		}
	}()

	b := builder{catalog: catalog, md: md, scans: make(map[*node]opt.TableID)}
	b.addTables(root)
	return b.buildRel(root), nil
}

// builderError is used to unwind the builder on the first user error.
type builderError struct {
	error
}

func (b *builder) errorf(n *node, format string, args ...interface{}) {
	err := errors.Newf(format, args...)
	panic(builderError{errors.Wrapf(err, "at offset %d", n.pos)})
}

type builder struct {
	catalog *testcat.Catalog
	md      *opt.Metadata
	scans   map[*node]opt.TableID
}

// addTables adds a metadata table instance for every Scan in the tree, so that
// column references can be resolved regardless of where they appear.
func (b *builder) addTables(n *node) {
	if !n.isList() || len(n.list) == 0 {
		return
	}
	if n.list[0].atom == "Scan" {
		if len(n.list) < 2 || len(n.list) > 3 {
			b.errorf(n, "Scan expects a table name and an optional alias")
		}
		tab, err := b.catalog.Table(n.list[1].atom)
		if err != nil {
			panic(builderError{err})
		}
		alias := ""
		if len(n.list) == 3 {
			alias = n.list[2].atom
		}
		name := alias
		if name == "" {
			name = tab.Name()
		}
		if _, ok := b.md.TableByAlias(name); ok {
			b.errorf(n, "duplicate table alias %q", name)
		}
		b.scans[n] = b.md.AddTable(tab, alias)
		return
	}
	for _, c := range n.list[1:] {
		b.addTables(c)
	}
}

func (b *builder) buildRel(n *node) memo.RelExpr {
	if !n.isList() || len(n.list) == 0 {
		b.errorf(n, "expected a relational expression, found %q", n.String())
	}
	op, args := n.list[0].atom, n.list[1:]
	switch op {
	case "Scan":
		return memo.ConstructScan(b.md, b.scans[n])

	case "InnerJoin", "LeftJoin", "FullJoin":
		if len(args) < 2 {
			b.errorf(n, "%s expects two inputs", op)
		}
		joinOp := map[string]opt.Operator{
			"InnerJoin": opt.InnerJoinOp,
			"LeftJoin":  opt.LeftJoinOp,
			"FullJoin":  opt.FullJoinOp,
		}[op]
		left, right := b.buildRel(args[0]), b.buildRel(args[1])
		return memo.ConstructJoin(joinOp, left, right, b.buildFilters(args[2:]))

	case "CrossJoin":
		if len(args) == 0 {
			b.errorf(n, "CrossJoin expects at least one input")
		}
		inputs := make([]memo.RelExpr, len(args))
		for i := range args {
			inputs[i] = b.buildRel(args[i])
		}
		return &memo.CrossJoinExpr{Inputs: inputs}

	case "Select":
		if len(args) == 0 {
			b.errorf(n, "Select expects an input")
		}
		return &memo.SelectExpr{Input: b.buildRel(args[0]), Filters: b.buildFilters(args[1:])}

	case "Project":
		if len(args) == 0 {
			b.errorf(n, "Project expects an input")
		}
		input := b.buildRel(args[0])
		cols := b.buildCols(args[1:])
		if !cols.SubsetOf(memo.OutputCols(input)) {
			b.errorf(n, "Project columns must be produced by its input")
		}
		return &memo.ProjectExpr{Input: input, Cols: cols}

	case "Values":
		if len(args) != 0 {
			b.errorf(n, "Values does not take arguments")
		}
		return &memo.ValuesExpr{}

	case "Opaque":
		if len(args) < 2 || args[0].isList() {
			b.errorf(n, "Opaque expects a name and an input")
		}
		return &memo.OpaqueExpr{
			Name:  args[0].atom,
			Input: b.buildRel(args[1]),
			Refs:  b.buildCols(args[2:]),
		}
	}
	b.errorf(n, "unknown relational operator %q", op)
	return nil
}

func (b *builder) buildFilters(args []*node) memo.FiltersExpr {
	filters := memo.FiltersExpr{}
	for _, a := range args {
		filters = append(filters, memo.FlattenAnd(b.buildScalar(a))...)
	}
	return filters
}

func (b *builder) buildCols(args []*node) opt.ColSet {
	var cols opt.ColSet
	for _, a := range args {
		if a.isList() {
			b.errorf(a, "expected a column reference")
		}
		cols.Add(int(b.resolveColumn(a)))
	}
	return cols
}

var comparisonOps = map[string]opt.Operator{
	"Eq": opt.EqOp,
	"Ne": opt.NeOp,
	"Lt": opt.LtOp,
	"Le": opt.LeOp,
	"Gt": opt.GtOp,
	"Ge": opt.GeOp,
}

func (b *builder) buildScalar(n *node) memo.ScalarExpr {
	if !n.isList() {
		switch strings.ToLower(n.atom) {
		case "null":
			return memo.NullSingleton
		case "true":
			return memo.TrueSingleton
		case "false":
			return memo.FalseSingleton
		}
		if v, err := strconv.ParseInt(n.atom, 10, 64); err == nil {
			return &memo.ConstExpr{Value: v}
		}
		return memo.ConstructVariable(b.resolveColumn(n))
	}
	if len(n.list) == 0 {
		b.errorf(n, "empty scalar expression")
	}
	op, args := n.list[0].atom, n.list[1:]
	if cmp, ok := comparisonOps[op]; ok {
		if len(args) != 2 {
			b.errorf(n, "%s expects two operands", op)
		}
		return memo.ConstructComparison(cmp, b.buildScalar(args[0]), b.buildScalar(args[1]))
	}
	switch op {
	case "And", "Or":
		if len(args) < 2 {
			b.errorf(n, "%s expects at least two operands", op)
		}
		res := b.buildScalar(args[0])
		for _, a := range args[1:] {
			if op == "And" {
				res = &memo.AndExpr{Left: res, Right: b.buildScalar(a)}
			} else {
				res = &memo.OrExpr{Left: res, Right: b.buildScalar(a)}
			}
		}
		return res

	case "Not", "IsNull", "IsNotNull":
		if len(args) != 1 {
			b.errorf(n, "%s expects one operand", op)
		}
		in := b.buildScalar(args[0])
		switch op {
		case "Not":
			return &memo.NotExpr{Input: in}
		case "IsNull":
			return &memo.IsNullExpr{Input: in}
		default:
			return &memo.IsNotNullExpr{Input: in}
		}
	}
	b.errorf(n, "unknown scalar operator %q", op)
	return nil
}

func (b *builder) resolveColumn(n *node) opt.ColumnID {
	col, err := ResolveColumn(b.md, n.atom)
	if err != nil {
		panic(builderError{errors.Wrapf(err, "at offset %d", n.pos)})
	}
	return col
}

// ResolveColumn resolves a column reference of the form <alias>.<column>
// against the table instances in the metadata.
func ResolveColumn(md *opt.Metadata, name string) (opt.ColumnID, error) {
	dot := strings.IndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return 0, errors.Newf("invalid column reference %q", name)
	}
	tabID, ok := md.TableByAlias(name[:dot])
	if !ok {
		return 0, errors.Newf("unknown table %q in column reference %q", name[:dot], name)
	}
	ord := cat.FindColumn(md.Table(tabID), name[dot+1:])
	if ord < 0 {
		return 0, errors.Newf("unknown column %q", name)
	}
	return tabID.ColumnID(ord), nil
}

// ResolveColumns resolves a list of column references. A reference of the
// form <alias>.* expands to every column of that table instance.
func ResolveColumns(md *opt.Metadata, names []string) (opt.ColSet, error) {
	var cols opt.ColSet
	for _, name := range names {
		if strings.HasSuffix(name, ".*") {
			tabID, ok := md.TableByAlias(strings.TrimSuffix(name, ".*"))
			if !ok {
				return opt.ColSet{}, errors.Newf("unknown table in %q", name)
			}
			cols.UnionWith(md.TableColumns(tabID))
			continue
		}
		col, err := ResolveColumn(md, name)
		if err != nil {
			return opt.ColSet{}, err
		}
		cols.Add(int(col))
	}
	return cols, nil
}
