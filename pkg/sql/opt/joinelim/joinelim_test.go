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

package joinelim_test

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/joinelim"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/memo"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/testutils"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/testutils/exprgen"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/testutils/rowexec"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/testutils/testcat"
	"github.com/kr/pretty"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

// TestJoinElimination runs the data-driven tests in the testdata directory.
// See testutils.OptTester.RunCommand for the supported commands.
func TestJoinElimination(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		tester := testutils.NewOptTester()
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			return tester.RunCommand(t, d)
		})
	})
}

const catalogYAML = `
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
      - name: name
        nullable: true
    primary_key: [id]
  - name: c
    columns:
      - name: id
      - name: p_id
      - name: v
        nullable: true
    primary_key: [id]
    foreign_keys:
      - name: fk_c_p
        columns: [p_id]
        references: p
  - name: cn
    columns:
      - name: id
      - name: p_id
        nullable: true
    primary_key: [id]
    foreign_keys:
      - name: fk_cn_p
        columns: [p_id]
        references: p
  - name: ext
    columns:
      - name: p_id
      - name: bio
        nullable: true
    primary_key: [p_id]
    foreign_keys:
      - name: fk_ext_p
        columns: [p_id]
        references: p
        multiplicity: one
  - name: opt
    columns:
      - name: p_id
      - name: note
        nullable: true
    primary_key: [p_id]
    foreign_keys:
      - name: fk_opt_p
        columns: [p_id]
        references: p
        multiplicity: zero-or-one
  - name: unv
    columns:
      - name: id
      - name: p_id
    primary_key: [id]
    foreign_keys:
      - name: fk_unv_p
        columns: [p_id]
        references: p
        validated: false
`

func newCatalog(t *testing.T) *testcat.Catalog {
	tc := testcat.New()
	require.NoError(t, tc.LoadYAML([]byte(catalogYAML)))
	return tc
}

type query struct {
	input string
	cols  []string
}

var queries = []query{
	{input: "(InnerJoin (Scan t a) (Scan t b) (Eq a.id b.id))", cols: []string{"a.*", "b.*"}},
	{input: "(InnerJoin (Scan t a) (Scan t b) (Eq a.id b.id) (Eq a.x b.x))", cols: []string{"a.id", "b.x"}},
	{input: "(LeftJoin (Scan t a) (Scan t b) (Eq a.id b.id))", cols: []string{"a.x", "b.x"}},
	{
		input: "(InnerJoin (InnerJoin (Scan t a) (Scan t b) (Eq a.id b.id)) (Scan t d) (Eq b.id d.id))",
		cols:  []string{"a.x", "b.x", "d.x"},
	},
	{input: "(InnerJoin (Scan p) (Scan c) (Eq p.id c.p_id))", cols: []string{"c.id", "c.v"}},
	{input: "(InnerJoin (Scan p) (Scan cn) (Eq p.id cn.p_id))", cols: []string{"cn.id"}},
	{input: "(InnerJoin (Scan p) (Scan ext) (Eq p.id ext.p_id))", cols: []string{"ext.bio"}},
	{input: "(LeftJoin (Scan c) (Scan p) (Eq c.p_id p.id))", cols: []string{"c.id", "p.id"}},
	{input: "(LeftJoin (Scan c) (Scan p) (Eq c.p_id p.id))", cols: []string{"c.id", "p.name"}},
	{input: "(LeftJoin (Scan cn) (Scan p) (Eq cn.p_id p.id))", cols: []string{"cn.id", "p.id"}},
	{input: "(LeftJoin (Scan p) (Scan ext) (Eq p.id ext.p_id))", cols: []string{"p.*", "ext.p_id"}},
	{input: "(LeftJoin (Scan p) (Scan opt) (Eq p.id opt.p_id))", cols: []string{"p.id"}},
	{input: "(LeftJoin (Scan p) (Scan opt) (Eq p.id opt.p_id))", cols: []string{"p.id", "opt.p_id"}},
	{input: "(InnerJoin (Scan p) (Scan unv) (Eq p.id unv.p_id))", cols: []string{"unv.id"}},
	{
		input: "(LeftJoin (LeftJoin (Scan cn) (Scan p p1) (Eq cn.p_id p1.id)) (Scan p p2) (Eq cn.p_id p2.id))",
		cols:  []string{"cn.id", "p1.name", "p2.name"},
	},
	{
		input: "(LeftJoin (LeftJoin (Scan c) (Scan p p1) (Eq c.p_id p1.id)) (Scan p p2) (Eq c.p_id p2.id))",
		cols:  []string{"c.id", "p1.name", "p2.name"},
	},
	{
		input: "(InnerJoin (InnerJoin (Scan c) (Scan p p1) (Eq c.p_id p1.id)) (Scan p p2) (Eq c.p_id p2.id))",
		cols:  []string{"c.id", "p1.name", "p2.name"},
	},
	{
		input: "(InnerJoin (InnerJoin (Scan p) (Scan c) (Eq p.id c.p_id)) (Scan ext) (Eq c.p_id ext.p_id))",
		cols:  []string{"c.id", "ext.bio"},
	},
	{
		input: "(CrossJoin (Scan t a) (InnerJoin (Scan p) (Scan c) (Eq p.id c.p_id)))",
		cols:  []string{"a.id", "c.id"},
	},
	{
		input: "(FullJoin (InnerJoin (Scan p) (Scan c) (Eq p.id c.p_id)) (Scan t) (Eq c.id t.id))",
		cols:  []string{"c.id", "t.id"},
	},
	{
		input: "(InnerJoin (Scan t a) (LeftJoin (Scan t b) (Scan p) (Eq b.x p.id)) (Eq a.id b.id))",
		cols:  []string{"a.id", "p.name"},
	},
	{
		input: "(LeftJoin (Scan t) (LeftJoin (Scan c) (Scan p) (Eq c.p_id p.id)) (Eq t.id c.id))",
		cols:  []string{"t.id", "c.id", "p.id"},
	},
	{
		input: "(InnerJoin (Scan t a0) (InnerJoin (Scan t a1) (Scan t a2) (Eq a1.id a2.id) (Eq a1.x a2.x)) (Eq a0.id a1.id))",
		cols:  []string{"a0.id"},
	},
	{
		input: "(InnerJoin (Scan t a0) (InnerJoin (Scan t a1) (Scan t a2) (Eq a1.id a2.id) (Eq a1.x a2.x)) (Eq a0.x a1.x))",
		cols:  []string{"a0.id", "a2.id"},
	},
	{
		input: "(LeftJoin (LeftJoin (Scan c) (Scan p p1) (Eq c.p_id p1.id)) (Scan p p2) (Eq p1.id p2.id))",
		cols:  []string{"c.id", "p1.name", "p2.name"},
	},
	{
		input: "(LeftJoin (Scan t a0) (LeftJoin (Scan t a1) (Scan t a2) (Eq a1.id a2.id)) (Eq a0.id a1.id))",
		cols:  []string{"a0.id", "a1.x", "a2.x"},
	},
}

// randomSelfJoin builds a join tree over two to four instances of t. Every
// join is an inner or left join on one or two equalities between a column of
// its left input and a column of its right input.
func randomSelfJoin(rng *rand.Rand) query {
	next := 0
	var build func(size int) (string, []string)
	build = func(size int) (string, []string) {
		if size == 1 {
			alias := fmt.Sprintf("a%d", next)
			next++
			return fmt.Sprintf("(Scan t %s)", alias), []string{alias}
		}
		n := 1 + rng.Intn(size-1)
		left, leftAliases := build(n)
		right, rightAliases := build(size - n)
		op := "InnerJoin"
		if rng.Intn(3) == 0 {
			op = "LeftJoin"
		}
		var preds []string
		seen := make(map[string]bool)
		for i, k := 0, 1+rng.Intn(2); i < k; i++ {
			pred := fmt.Sprintf("(Eq %s.%s %s.%s)",
				leftAliases[rng.Intn(len(leftAliases))], randomColumn(rng),
				rightAliases[rng.Intn(len(rightAliases))], randomColumn(rng))
			if !seen[pred] {
				seen[pred] = true
				preds = append(preds, pred)
			}
		}
		expr := fmt.Sprintf("(%s %s %s %s)", op, left, right, strings.Join(preds, " "))
		return expr, append(leftAliases, rightAliases...)
	}

	input, aliases := build(2 + rng.Intn(3))
	var cols []string
	for _, alias := range aliases {
		for _, c := range []string{"id", "x"} {
			if rng.Intn(3) == 0 {
				cols = append(cols, alias+"."+c)
			}
		}
	}
	if len(cols) == 0 {
		cols = []string{aliases[0] + ".id"}
	}
	return query{input: input, cols: cols}
}

func randomColumn(rng *rand.Rand) string {
	if rng.Intn(2) == 0 {
		return "id"
	}
	return "x"
}

// randomData generates table contents that satisfy every validated foreign
// key of the catalog, including the multiplicities.
func randomData(rng *rand.Rand, numParents int) rowexec.Data {
	data := make(rowexec.Data)
	for _, name := range []string{"t", "p", "c", "cn", "ext", "opt", "unv"} {
		data[name] = nil
	}
	maybeNull := func(n int64) rowexec.Datum {
		if rng.Intn(4) == 0 {
			return rowexec.DNull
		}
		return rowexec.DInt(rng.Int63n(n))
	}
	parent := func() rowexec.Datum {
		return rowexec.DInt(1 + rng.Int63n(int64(numParents)))
	}
	add := func(name string, row ...rowexec.Datum) {
		data[name] = append(data[name], row)
	}

	for i := 1; i <= 4; i++ {
		add("t", rowexec.DInt(int64(i)), maybeNull(4))
	}
	for i := 1; i <= numParents; i++ {
		id := rowexec.DInt(int64(i))
		add("p", id, maybeNull(5))
		add("ext", id, maybeNull(5))
		if rng.Intn(2) == 0 {
			add("opt", id, maybeNull(5))
		}
	}
	if numParents > 0 {
		for i, n := 0, rng.Intn(6); i < n; i++ {
			add("c", rowexec.DInt(int64(100+i)), parent(), maybeNull(5))
		}
	}
	for i, n := 0, rng.Intn(5); i < n; i++ {
		pid := rowexec.DNull
		if numParents > 0 && rng.Intn(3) != 0 {
			pid = parent()
		}
		add("cn", rowexec.DInt(int64(200+i)), pid)
	}
	for i, n := 0, rng.Intn(3); i < n; i++ {
		add("unv", rowexec.DInt(int64(300+i)), rowexec.DInt(rng.Int63n(int64(numParents+3))))
	}
	return data
}

// checkQuery runs the query before and after elimination and returns a
// description of the difference between the results, if any. If idempotent is
// set, it also checks that a second run over the result changes nothing.
func checkQuery(
	t *testing.T, catalog *testcat.Catalog, data rowexec.Data, q query, idempotent bool,
) []string {
	var md opt.Metadata
	md.Init()
	root, err := exprgen.Build(catalog, &md, q.input)
	require.NoError(t, err)
	required, err := exprgen.ResolveColumns(&md, q.cols)
	require.NoError(t, err)

	var e joinelim.Eliminator
	e.Init(context.Background(), &md, catalog, nil /* keyRefs */, joinelim.Options{})
	res, err := e.Eliminate(root, required)
	require.NoError(t, err, q.input)
	memo.CheckExpr(&md, res.Root)

	cols := opt.ColSetToList(required)
	renamed := make(opt.ColList, len(cols))
	for i, c := range cols {
		renamed[i] = c
		if to, ok := res.Renames[c]; ok {
			renamed[i] = to
		}
	}
	if idempotent {
		again, err := e.Eliminate(res.Root, opt.ColListToSet(renamed))
		require.NoError(t, err)
		require.False(t, again.Modified, "%s\n%s", q.input, memo.FormatExpr(&md, res.Root))
	}
	before, err := rowexec.Eval(&md, data, root)
	require.NoError(t, err)
	after, err := rowexec.Eval(&md, data, res.Root)
	require.NoError(t, err)
	return pretty.Diff(
		rowexec.Canonical(rowexec.Project(before, cols)),
		rowexec.Canonical(rowexec.Project(after, renamed)),
	)
}

func TestEliminationPreservesResults(t *testing.T) {
	catalog := newCatalog(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)
	properties.Property("results are unchanged", prop.ForAll(
		func(seed int64, numParents int) bool {
			data := randomData(rand.New(rand.NewSource(seed)), numParents)
			for _, q := range queries {
				if diff := checkQuery(t, catalog, data, q, true /* idempotent */); len(diff) > 0 {
					t.Logf("%s\n%s\n%# v", q.input, strings.Join(diff, "\n"), pretty.Formatter(data))
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 5),
	))
	properties.TestingRun(t)
}

func TestSelfJoinEliminationPreservesResults(t *testing.T) {
	catalog := newCatalog(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)
	properties.Property("random self-joins keep their results", prop.ForAll(
		func(seed int64) bool {
			rng := rand.New(rand.NewSource(seed))
			q := randomSelfJoin(rng)
			data := randomData(rng, 1+rng.Intn(3))
			if diff := checkQuery(t, catalog, data, q, false /* idempotent */); len(diff) > 0 {
				t.Logf("%s %v\n%s\n%# v", q.input, q.cols, strings.Join(diff, "\n"), pretty.Formatter(data["t"]))
				return false
			}
			return true
		},
		gen.Int64(),
	))
	properties.TestingRun(t)
}

func TestEliminateResult(t *testing.T) {
	catalog := newCatalog(t)
	var md opt.Metadata
	md.Init()
	root, err := exprgen.Build(catalog, &md, `
		(InnerJoin
		  (InnerJoin (Scan p) (Opaque agg (Scan c)))
		  (Scan ext)
		  (Eq p.id ext.p_id))`)
	require.NoError(t, err)
	required, err := exprgen.ResolveColumns(&md, []string{"c.id", "ext.bio"})
	require.NoError(t, err)
	before := memo.FormatExpr(&md, root)

	var e joinelim.Eliminator
	e.Init(context.Background(), &md, catalog, nil /* keyRefs */, joinelim.Options{})
	res, err := e.Eliminate(root, required)
	require.NoError(t, err)
	require.True(t, res.Modified)

	// The input is left untouched.
	require.Equal(t, before, memo.FormatExpr(&md, root))

	p, _ := md.TableByAlias("p")
	ext, _ := md.TableByAlias("ext")
	require.Equal(t, opt.ColMap{p.ColumnID(0): ext.ColumnID(0)}, res.Renames)

	// The scans and joins belong to the region; the opaque input does not.
	outer := root.(*memo.JoinExpr)
	inner := outer.Left.(*memo.JoinExpr)
	require.Len(t, res.Processed, 4)
	for _, expr := range []memo.RelExpr{outer, inner, inner.Left, outer.Right} {
		require.Contains(t, res.Processed, expr)
	}
	require.NotContains(t, res.Processed, inner.Right)

	// Running the pass again finds nothing more to do.
	again, err := e.Eliminate(res.Root, required)
	require.NoError(t, err)
	require.False(t, again.Modified)
	require.Empty(t, again.Renames)
	require.Equal(t, res.Root, again.Root)
}

func TestEliminateUnchanged(t *testing.T) {
	catalog := newCatalog(t)
	var md opt.Metadata
	md.Init()
	root, err := exprgen.Build(catalog, &md, "(InnerJoin (Scan p) (Scan c) (Eq p.id c.p_id))")
	require.NoError(t, err)

	var e joinelim.Eliminator
	e.Init(context.Background(), &md, catalog, nil /* keyRefs */, joinelim.Options{})
	res, err := e.Eliminate(root, memo.OutputCols(root))
	require.NoError(t, err)
	require.False(t, res.Modified)
	require.Same(t, root, res.Root)
	require.Empty(t, res.Renames)
	require.Len(t, res.Processed, 3)
}

func TestEliminateNoCatalog(t *testing.T) {
	catalog := newCatalog(t)
	var md opt.Metadata
	md.Init()
	root, err := exprgen.Build(catalog, &md, "(InnerJoin (Scan p) (Scan c) (Eq p.id c.p_id))")
	require.NoError(t, err)
	c, _ := md.TableByAlias("c")

	// Without constraints only self-joins can be eliminated.
	var e joinelim.Eliminator
	e.Init(context.Background(), &md, nil /* lookup */, nil /* keyRefs */, joinelim.Options{})
	res, err := e.Eliminate(root, opt.MakeColSet(c.ColumnID(0)))
	require.NoError(t, err)
	require.False(t, res.Modified)
}

func TestEliminateInternalError(t *testing.T) {
	catalog := newCatalog(t)
	var md opt.Metadata
	md.Init()
	tab, err := catalog.Table("t")
	require.NoError(t, err)
	scan := memo.ConstructScan(&md, md.AddTable(tab, ""))
	root := memo.ConstructJoin(opt.InnerJoinOp, scan, scan, memo.TrueFilter)

	var e joinelim.Eliminator
	e.Init(context.Background(), &md, catalog, nil /* keyRefs */, joinelim.Options{})
	_, err = e.Eliminate(root, memo.OutputCols(root))
	require.Error(t, err)
	require.True(t, errors.IsAssertionFailure(err), "%+v", err)
}
