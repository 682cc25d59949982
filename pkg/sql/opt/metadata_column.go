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

package opt

import (
	"github.com/cockroachdb/joinelim/pkg/util"
)

// ColumnID uniquely identifies the usage of a column within the scope of a
// query. ColumnID 0 is reserved to mean "unknown column". See the comment for
// Metadata for more details.
type ColumnID int32

// ColSet efficiently stores an unordered set of column ids.
type ColSet = util.FastIntSet

// ColList is a list of column ids.
type ColList = []ColumnID

// ColMap provides a 1:1 mapping from one column id to another. It is used to
// redirect references to eliminated columns onto surviving columns.
type ColMap = map[ColumnID]ColumnID

// ColumnMeta stores information about one of the columns stored in the
// metadata.
type ColumnMeta struct {
	// MetaID is the identifier for this column that is unique within the query
	// metadata.
	MetaID ColumnID

	// Alias is the name of the column in its base table.
	Alias string

	// Table is the table instance that defines the column.
	Table TableID

	// Ordinal is the position of the column in its base table.
	Ordinal int

	// Nullable is true if the column can contain NULL values.
	Nullable bool
}

// MakeColSet returns a set initialized with the given column ids.
func MakeColSet(vals ...ColumnID) ColSet {
	var res ColSet
	for _, v := range vals {
		res.Add(int(v))
	}
	return res
}

// ColListToSet converts a column id list to a column id set.
func ColListToSet(colList ColList) ColSet {
	var r ColSet
	for _, col := range colList {
		r.Add(int(col))
	}
	return r
}

// ColSetToList converts a column id set to a column id list.
func ColSetToList(colSet ColSet) ColList {
	colList := make(ColList, 0, colSet.Len())
	colSet.ForEach(func(i int) {
		colList = append(colList, ColumnID(i))
	})
	return colList
}

// ColListContains returns true if the list contains the given column.
func ColListContains(colList ColList, col ColumnID) bool {
	for _, c := range colList {
		if c == col {
			return true
		}
	}
	return false
}
