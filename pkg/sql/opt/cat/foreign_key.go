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

package cat

// Multiplicity describes how many child rows can reference the same parent
// row of a foreign key constraint.
type Multiplicity uint8

const (
	// MultiplicityMany allows any number of child rows per parent row.
	MultiplicityMany Multiplicity = iota

	// MultiplicityOne means every parent row has exactly one child row
	// referencing it.
	MultiplicityOne

	// MultiplicityZeroOrOne means every parent row has at most one child row
	// referencing it.
	MultiplicityZeroOrOne
)

func (m Multiplicity) String() string {
	switch m {
	case MultiplicityOne:
		return "one"
	case MultiplicityZeroOrOne:
		return "zero-or-one"
	default:
		return "many"
	}
}

// AtMostOne returns true if at most one child row references each parent row.
func (m Multiplicity) AtMostOne() bool {
	return m == MultiplicityOne || m == MultiplicityZeroOrOne
}

// ForeignKeyConstraint represents a foreign key constraint. A foreign key
// constraint has a child (referencing) table and a parent (referenced) table.
// The constraint requires that for every row in the child table, either the
// child key columns contain a NULL, or there exists a row in the parent table
// with the same values on the parent key columns.
type ForeignKeyConstraint interface {
	// Name of the foreign key constraint.
	Name() string

	// ChildTableID returns the stable identifier of the table that contains
	// the foreign key reference.
	ChildTableID() StableID

	// ParentTableID returns the stable identifier of the table that is
	// referenced by the foreign key.
	ParentTableID() StableID

	// ColumnCount returns the number of column pairs in this FK reference.
	ColumnCount() int

	// ChildColumnOrdinal returns the ordinal of the i-th child key column.
	ChildColumnOrdinal(i int) int

	// ParentColumnOrdinal returns the ordinal of the i-th parent key column.
	ParentColumnOrdinal(i int) int

	// ParentKeyFor returns the ordinal of the parent key column that the given
	// child column references. ok is false if the child column is not part of
	// the constraint.
	ParentKeyFor(childOrd int) (parentOrd int, ok bool)

	// ChildMultiplicity returns how many child rows may reference a single
	// parent row.
	ChildMultiplicity() Multiplicity

	// Validated is true if the constraint is known to hold for every row of
	// the child table.
	Validated() bool
}

// ConstraintLookup answers foreign key questions about pairs of tables.
type ConstraintLookup interface {
	// IsParentChild returns all foreign key constraints for which parent is
	// the referenced table and child is the referencing table. The result is
	// empty if the tables are unrelated.
	IsParentChild(parent, child Table) []ForeignKeyConstraint
}
