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

// Package cat contains the interfaces through which the join elimination pass
// consults the schema: tables, their columns and primary keys, and the
// foreign key constraints between them.
package cat

// StableID permanently and uniquely identifies a catalog object (table, view,
// index, column, etc.) within its scope.
type StableID uint64

// Table is an interface to a database table, exposing only the information
// needed to reason about joins between table instances.
type Table interface {
	// ID is the unique, stable identifier for this table.
	ID() StableID

	// Name returns the unqualified name of the table.
	Name() string

	// ColumnCount returns the number of columns in the table.
	ColumnCount() int

	// Column returns the column at the given ordinal position. Column ordinals
	// are stable across the lifetime of the table metadata.
	Column(i int) Column

	// PrimaryKey returns the ordinals of the primary key columns, in key
	// order. Every table has a primary key.
	PrimaryKey() []int
}

// Column is an interface to a table column.
type Column interface {
	// Name is the name of the column.
	Name() string

	// IsNullable returns true if the column is nullable.
	IsNullable() bool
}

// FindColumn returns the ordinal of the table column with the given name, or
// -1 if there is no such column.
func FindColumn(tab Table, name string) int {
	for i, n := 0, tab.ColumnCount(); i < n; i++ {
		if tab.Column(i).Name() == name {
			return i
		}
	}
	return -1
}
