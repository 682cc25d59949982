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

package exprgen

import (
	"testing"

	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/memo"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/testutils/testcat"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
tables:
  - name: t
    columns:
      - name: id
      - name: x
        nullable: true
    primary_key: [id]
  - name: u
    columns:
      - name: k
      - name: x
        nullable: true
    primary_key: [k]
`

func newCatalog(t *testing.T) *testcat.Catalog {
	tc := testcat.New()
	require.NoError(t, tc.LoadYAML([]byte(catalogYAML)))
	return tc
}

func TestBuild(t *testing.T) {
	tc := newCatalog(t)
	var md opt.Metadata
	md.Init()

	e, err := Build(tc, &md, `
		# Self-join with a filter on top.
		(Select
		  (InnerJoin
		    (Scan t a)
		    (LeftJoin (Scan t b) (Scan u) (Eq b.x u.x))
		    (Eq a.id b.id)
		    (And (Gt a.x 1) (IsNotNull b.x))
		  )
		  (Or (Eq a.x NULL) (Not (Le u.k 3)))
		)`)
	require.NoError(t, err)
	memo.CheckExpr(&md, e)

	exp := `select
├── inner-join
│   ├── scan t [as=a]
│   ├── left-join
│   │   ├── scan t [as=b]
│   │   ├── scan u
│   │   └── filters
│   │       └── b.x = u.x
│   └── filters
│       ├── a.id = b.id
│       ├── a.x > 1
│       └── b.x IS NOT NULL
└── filters
    └── (a.x = NULL OR NOT (u.k <= 3))
`
	require.Equal(t, exp, memo.FormatExpr(&md, e))
	require.Len(t, md.AllTables(), 3)
}

func TestBuildForwardReference(t *testing.T) {
	tc := newCatalog(t)
	var md opt.Metadata
	md.Init()

	e, err := Build(tc, &md, "(InnerJoin (Opaque agg (Values) b.x) (Scan t b))")
	require.NoError(t, err)
	require.Equal(t, opt.OpaqueOp, e.Child(0).Op())
	b, ok := md.TableByAlias("b")
	require.True(t, ok)
	require.Equal(t, opt.MakeColSet(b.ColumnID(1)), memo.OuterCols(e.Child(0).(memo.RelExpr)))
	require.True(t, memo.OuterCols(e).Empty())
}

func TestBuildErrors(t *testing.T) {
	testCases := []struct {
		input string
		err   string
	}{
		{input: "(Scan v)", err: `table "v" does not exist`},
		{input: "(InnerJoin (Scan t) (Scan t))", err: `duplicate table alias "t"`},
		{input: "(InnerJoin (Scan t a) (Scan t b) (Eq a.id c.id))", err: `unknown table "c"`},
		{input: "(InnerJoin (Scan t a) (Scan t b) (Eq a.id b.y))", err: `unknown column "b.y"`},
		{input: "(Scan t", err: "unterminated list"},
		{input: "(Scan t) (Scan u)", err: "unexpected input"},
		{input: "(Frobnicate)", err: `unknown relational operator "Frobnicate"`},
		{input: "(Select (Scan t) (Like t.x 1))", err: `unknown scalar operator "Like"`},
		{input: "(Project (Scan t a) b.id)", err: "at offset"},
	}
	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			var md opt.Metadata
			md.Init()
			_, err := Build(newCatalog(t), &md, tc.input)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.err)
		})
	}
}

func TestResolveColumns(t *testing.T) {
	tc := newCatalog(t)
	var md opt.Metadata
	md.Init()
	_, err := Build(tc, &md, "(CrossJoin (Scan t a) (Scan u))")
	require.NoError(t, err)

	cols, err := ResolveColumns(&md, []string{"a.*", "u.x"})
	require.NoError(t, err)
	require.Equal(t, "a.id,a.x,u.x", formatCols(&md, cols))

	_, err = ResolveColumns(&md, []string{"z.*"})
	require.Error(t, err)
	_, err = ResolveColumns(&md, []string{"ax"})
	require.Error(t, err)
}

func formatCols(md *opt.Metadata, cols opt.ColSet) string {
	var res string
	cols.ForEach(func(i int) {
		if res != "" {
			res += ","
		}
		res += md.QualifiedAlias(opt.ColumnID(i))
	})
	return res
}
