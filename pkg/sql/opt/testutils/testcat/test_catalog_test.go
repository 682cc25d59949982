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

package testcat

import (
	"testing"

	"github.com/cockroachdb/joinelim/pkg/sql/opt/cat"
	"github.com/stretchr/testify/require"
)

const shopYAML = `
tables:
  - name: customers
    columns:
      - name: id
      - name: name
        nullable: true
    primary_key: [id]
  - name: orders
    columns:
      - name: id
      - name: customer_id
        nullable: true
      - name: note
        nullable: true
    primary_key: [id]
    foreign_keys:
      - name: fk_customer
        columns: [customer_id]
        references: customers
  - name: profiles
    columns:
      - name: customer_id
      - name: bio
    primary_key: [customer_id]
    foreign_keys:
      - name: fk_profile
        columns: [customer_id]
        references: customers
        multiplicity: zero-or-one
        validated: false
`

func TestLoadYAML(t *testing.T) {
	tc := New()
	require.NoError(t, tc.LoadYAML([]byte(shopYAML)))
	require.Equal(t, []string{"customers", "orders", "profiles"}, tc.SortedTableNames())

	customers, err := tc.Table("customers")
	require.NoError(t, err)
	orders, err := tc.Table("orders")
	require.NoError(t, err)
	profiles, err := tc.Table("profiles")
	require.NoError(t, err)

	require.Equal(t, 2, customers.ColumnCount())
	require.False(t, customers.Column(0).IsNullable())
	require.True(t, customers.Column(1).IsNullable())
	require.Equal(t, []int{0}, customers.PrimaryKey())

	fks := tc.IsParentChild(customers, orders)
	require.Len(t, fks, 1)
	fk := fks[0]
	require.Equal(t, "fk_customer", fk.Name())
	require.Equal(t, orders.ID(), fk.ChildTableID())
	require.Equal(t, customers.ID(), fk.ParentTableID())
	require.Equal(t, 1, fk.ColumnCount())
	require.Equal(t, 1, fk.ChildColumnOrdinal(0))
	require.Equal(t, 0, fk.ParentColumnOrdinal(0))
	require.Equal(t, cat.MultiplicityMany, fk.ChildMultiplicity())
	require.True(t, fk.Validated())
	parentOrd, ok := fk.ParentKeyFor(1)
	require.True(t, ok)
	require.Equal(t, 0, parentOrd)
	_, ok = fk.ParentKeyFor(2)
	require.False(t, ok)

	require.Empty(t, tc.IsParentChild(orders, customers))

	fks = tc.IsParentChild(customers, profiles)
	require.Len(t, fks, 1)
	require.Equal(t, cat.MultiplicityZeroOrOne, fks[0].ChildMultiplicity())
	require.False(t, fks[0].Validated())
}

func TestLoadYAMLErrors(t *testing.T) {
	testCases := []struct {
		yaml string
		err  string
	}{
		{
			yaml: "tables: [{name: t, columns: [{name: a}]}]",
			err:  `table "t" has no primary key`,
		},
		{
			yaml: "tables: [{name: t, columns: [{name: a}], primary_key: [b]}]",
			err:  `primary key column "b" does not exist`,
		},
		{
			yaml: "tables: [{name: t, columns: [{name: a}, {name: a}], primary_key: [a]}]",
			err:  `duplicate column "a"`,
		},
		{
			yaml: `tables: [{name: t, columns: [{name: a}], primary_key: [a],
              foreign_keys: [{name: fk, columns: [a], references: u}]}]`,
			err: `table "u" does not exist`,
		},
		{
			yaml: `tables: [{name: t, columns: [{name: a}], primary_key: [a],
              foreign_keys: [{name: fk, columns: [a], references: t, multiplicity: two}]}]`,
			err: `unknown multiplicity "two"`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.err, func(t *testing.T) {
			err := New().LoadYAML([]byte(tc.yaml))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.err)
		})
	}
}
