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

package rowexec

import (
	"testing"

	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/memo"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/testutils/exprgen"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/testutils/testcat"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
tables:
  - name: p
    columns:
      - name: id
      - name: v
        nullable: true
    primary_key: [id]
  - name: c
    columns:
      - name: id
      - name: pid
        nullable: true
    primary_key: [id]
`

var testData = Data{
	"p": {
		{DInt(1), DInt(10)},
		{DInt(2), DNull},
		{DInt(3), DInt(30)},
	},
	"c": {
		{DInt(100), DInt(1)},
		{DInt(101), DInt(1)},
		{DInt(102), DNull},
		{DInt(103), DInt(4)},
	},
}

func TestEval(t *testing.T) {
	testCases := []struct {
		expr string
		cols []string
		exp  []string
	}{
		{
			expr: "(Scan p)",
			cols: []string{"p.id", "p.v"},
			exp:  []string{"1,10", "2,NULL", "3,30"},
		},
		{
			expr: "(InnerJoin (Scan p) (Scan c) (Eq p.id c.pid))",
			cols: []string{"p.id", "c.id"},
			exp:  []string{"1,100", "1,101"},
		},
		{
			expr: "(LeftJoin (Scan p) (Scan c) (Eq p.id c.pid))",
			cols: []string{"p.id", "c.id"},
			exp:  []string{"1,100", "1,101", "2,NULL", "3,NULL"},
		},
		{
			expr: "(LeftJoin (Scan c) (Scan p) (Eq p.id c.pid))",
			cols: []string{"c.id", "p.v"},
			exp:  []string{"100,10", "101,10", "102,NULL", "103,NULL"},
		},
		{
			expr: "(FullJoin (Scan p) (Scan c) (Eq p.id c.pid))",
			cols: []string{"p.id", "c.id"},
			exp: []string{
				"1,100", "1,101", "2,NULL", "3,NULL", "NULL,102", "NULL,103",
			},
		},
		{
			expr: "(CrossJoin (Scan p) (Values))",
			cols: []string{"p.id"},
			exp:  []string{"1", "2", "3"},
		},
		{
			// NULL comparisons are never true.
			expr: "(Select (Scan p) (Ne p.v 10))",
			cols: []string{"p.id"},
			exp:  []string{"3"},
		},
		{
			expr: "(Select (Scan p) (Not (Eq p.v 10)))",
			cols: []string{"p.id"},
			exp:  []string{"3"},
		},
		{
			expr: "(Select (Scan p) (Or (IsNull p.v) (Ge p.v 30)))",
			cols: []string{"p.id"},
			exp:  []string{"2", "3"},
		},
		{
			expr: "(Select (Scan p) (And (IsNotNull p.v) (Lt p.id 3)))",
			cols: []string{"p.id"},
			exp:  []string{"1"},
		},
		{
			expr: "(Opaque agg (Project (Scan c) c.pid))",
			cols: []string{"c.pid", "c.id"},
			exp:  []string{"1,NULL", "1,NULL", "4,NULL", "NULL,NULL"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.expr, func(t *testing.T) {
			cat := testcat.New()
			require.NoError(t, cat.LoadYAML([]byte(catalogYAML)))
			var md opt.Metadata
			md.Init()
			e, err := exprgen.Build(cat, &md, tc.expr)
			require.NoError(t, err)

			rows, err := Eval(&md, testData, e)
			require.NoError(t, err)
			var cols opt.ColList
			for _, name := range tc.cols {
				col, err := exprgen.ResolveColumn(&md, name)
				require.NoError(t, err)
				cols = append(cols, col)
			}
			require.Equal(t, tc.exp, Canonical(Project(rows, cols)))
		})
	}
}

func TestEvalMissingData(t *testing.T) {
	cat := testcat.New()
	require.NoError(t, cat.LoadYAML([]byte(catalogYAML)))
	var md opt.Metadata
	md.Init()
	tabID := md.AddTable(cat.Tables()[0], "")
	_, err := Eval(&md, Data{}, memo.ConstructScan(&md, tabID))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no data for table p")
}
