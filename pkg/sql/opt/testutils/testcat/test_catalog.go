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
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/cat"
)

// Catalog implements the cat.ConstraintLookup interface for testing purposes.
// Tables are added directly or loaded from a YAML description (see
// LoadYAML).
type Catalog struct {
	tables  map[string]*Table
	ordered []*Table
	counter int
}

var _ cat.ConstraintLookup = &Catalog{}

// New creates a new empty instance of the test catalog.
func New() *Catalog {
	return &Catalog{tables: make(map[string]*Table)}
}

func (tc *Catalog) nextStableID() cat.StableID {
	tc.counter++

	// 53 is magic. Of course it is. User IDs start from 53 in cockroach.
	return cat.StableID(52 + tc.counter)
}

// AddTable adds the given test table to the catalog and assigns it a stable
// id.
func (tc *Catalog) AddTable(tab *Table) error {
	if _, ok := tc.tables[tab.TabName]; ok {
		return errors.Newf("table %q already exists", tab.TabName)
	}
	if len(tab.PrimaryKeyOrdinals) == 0 {
		return errors.Newf("table %q has no primary key", tab.TabName)
	}
	tab.TabID = tc.nextStableID()
	tc.tables[tab.TabName] = tab
	tc.ordered = append(tc.ordered, tab)
	return nil
}

// Table returns the test table with the given name.
func (tc *Catalog) Table(name string) (*Table, error) {
	tab, ok := tc.tables[name]
	if !ok {
		return nil, errors.Newf("table %q does not exist", name)
	}
	return tab, nil
}

// Tables returns all tables, in the order they were added.
func (tc *Catalog) Tables() []*Table {
	return tc.ordered
}

// AddForeignKey adds a foreign key constraint from the child columns to the
// parent columns. If parentCols is empty, the parent's primary key is used.
func (tc *Catalog) AddForeignKey(
	name string,
	child *Table,
	childCols []string,
	parent *Table,
	parentCols []string,
	multiplicity cat.Multiplicity,
	validated bool,
) error {
	fk := &ForeignKeyConstraint{
		name:          name,
		childTableID:  child.TabID,
		parentTableID: parent.TabID,
		multiplicity:  multiplicity,
		validated:     validated,
	}
	for _, c := range childCols {
		ord := cat.FindColumn(child, c)
		if ord < 0 {
			return errors.Newf("foreign key %q: column %q does not exist in %q", name, c, child.TabName)
		}
		fk.childColumnOrdinals = append(fk.childColumnOrdinals, ord)
	}
	if len(parentCols) == 0 {
		fk.parentColumnOrdinals = append([]int(nil), parent.PrimaryKeyOrdinals...)
	}
	for _, c := range parentCols {
		ord := cat.FindColumn(parent, c)
		if ord < 0 {
			return errors.Newf("foreign key %q: column %q does not exist in %q", name, c, parent.TabName)
		}
		fk.parentColumnOrdinals = append(fk.parentColumnOrdinals, ord)
	}
	if len(fk.childColumnOrdinals) == 0 || len(fk.childColumnOrdinals) != len(fk.parentColumnOrdinals) {
		return errors.Newf(
			"foreign key %q: %d child columns do not match %d parent columns",
			name, len(fk.childColumnOrdinals), len(fk.parentColumnOrdinals),
		)
	}
	child.outboundFKs = append(child.outboundFKs, fk)
	parent.inboundFKs = append(parent.inboundFKs, fk)
	return nil
}

// IsParentChild is part of the cat.ConstraintLookup interface.
func (tc *Catalog) IsParentChild(parent, child cat.Table) []cat.ForeignKeyConstraint {
	childTab, ok := tc.tables[child.Name()]
	if !ok || childTab.TabID != child.ID() {
		return nil
	}
	var res []cat.ForeignKeyConstraint
	for _, fk := range childTab.outboundFKs {
		if fk.parentTableID == parent.ID() {
			res = append(res, fk)
		}
	}
	return res
}

// Table implements the cat.Table interface for testing purposes.
type Table struct {
	TabID              cat.StableID
	TabName            string
	Columns            []*Column
	PrimaryKeyOrdinals []int

	outboundFKs []*ForeignKeyConstraint
	inboundFKs  []*ForeignKeyConstraint
}

var _ cat.Table = &Table{}

func (tt *Table) String() string {
	return tt.TabName
}

// ID is part of the cat.Table interface.
func (tt *Table) ID() cat.StableID {
	return tt.TabID
}

// Name is part of the cat.Table interface.
func (tt *Table) Name() string {
	return tt.TabName
}

// ColumnCount is part of the cat.Table interface.
func (tt *Table) ColumnCount() int {
	return len(tt.Columns)
}

// Column is part of the cat.Table interface.
func (tt *Table) Column(i int) cat.Column {
	return tt.Columns[i]
}

// PrimaryKey is part of the cat.Table interface.
func (tt *Table) PrimaryKey() []int {
	return tt.PrimaryKeyOrdinals
}

// OutboundForeignKeys returns the foreign keys in which this table is the
// child.
func (tt *Table) OutboundForeignKeys() []*ForeignKeyConstraint {
	return tt.outboundFKs
}

// InboundForeignKeys returns the foreign keys in which this table is the
// parent.
func (tt *Table) InboundForeignKeys() []*ForeignKeyConstraint {
	return tt.inboundFKs
}

// Column implements the cat.Column interface for testing purposes.
type Column struct {
	ColName  string
	Nullable bool
}

var _ cat.Column = &Column{}

// Name is part of the cat.Column interface.
func (tc *Column) Name() string {
	return tc.ColName
}

// IsNullable is part of the cat.Column interface.
func (tc *Column) IsNullable() bool {
	return tc.Nullable
}

// ForeignKeyConstraint implements cat.ForeignKeyConstraint. See that interface
// for more information on the fields.
type ForeignKeyConstraint struct {
	name          string
	childTableID  cat.StableID
	parentTableID cat.StableID

	childColumnOrdinals  []int
	parentColumnOrdinals []int

	multiplicity cat.Multiplicity
	validated    bool
}

var _ cat.ForeignKeyConstraint = &ForeignKeyConstraint{}

// Name is part of the cat.ForeignKeyConstraint interface.
func (fk *ForeignKeyConstraint) Name() string {
	return fk.name
}

// ChildTableID is part of the cat.ForeignKeyConstraint interface.
func (fk *ForeignKeyConstraint) ChildTableID() cat.StableID {
	return fk.childTableID
}

// ParentTableID is part of the cat.ForeignKeyConstraint interface.
func (fk *ForeignKeyConstraint) ParentTableID() cat.StableID {
	return fk.parentTableID
}

// ColumnCount is part of the cat.ForeignKeyConstraint interface.
func (fk *ForeignKeyConstraint) ColumnCount() int {
	return len(fk.childColumnOrdinals)
}

// ChildColumnOrdinal is part of the cat.ForeignKeyConstraint interface.
func (fk *ForeignKeyConstraint) ChildColumnOrdinal(i int) int {
	return fk.childColumnOrdinals[i]
}

// ParentColumnOrdinal is part of the cat.ForeignKeyConstraint interface.
func (fk *ForeignKeyConstraint) ParentColumnOrdinal(i int) int {
	return fk.parentColumnOrdinals[i]
}

// ParentKeyFor is part of the cat.ForeignKeyConstraint interface.
func (fk *ForeignKeyConstraint) ParentKeyFor(childOrd int) (parentOrd int, ok bool) {
	for i, ord := range fk.childColumnOrdinals {
		if ord == childOrd {
			return fk.parentColumnOrdinals[i], true
		}
	}
	return -1, false
}

// ChildMultiplicity is part of the cat.ForeignKeyConstraint interface.
func (fk *ForeignKeyConstraint) ChildMultiplicity() cat.Multiplicity {
	return fk.multiplicity
}

// Validated is part of the cat.ForeignKeyConstraint interface.
func (fk *ForeignKeyConstraint) Validated() bool {
	return fk.validated
}

// ChildColumnOrdinals returns the ordinals of the child key columns.
func (fk *ForeignKeyConstraint) ChildColumnOrdinals() []int {
	return fk.childColumnOrdinals
}

// ParentColumnOrdinals returns the ordinals of the parent key columns.
func (fk *ForeignKeyConstraint) ParentColumnOrdinals() []int {
	return fk.parentColumnOrdinals
}

// SortedTableNames returns the names of all tables in alphabetical order.
func (tc *Catalog) SortedTableNames() []string {
	names := make([]string, 0, len(tc.tables))
	for name := range tc.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
