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
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/cat"
)

// Metadata assigns unique ids to the columns and tables that are referenced
// by a query. Every instance of a table in the query (e.g. both sides of a self
// join) gets its own TableID and its own set of ColumnIDs; a column is
// identified by its ColumnID alone, independent of the expression that
// produces it.
//
// ColumnIDs start at 1 and are dense. The columns of a table instance have
// sequential ids, so the ColumnID of any column can be derived from the
// TableID and the column's ordinal (see TableID.ColumnID).
type Metadata struct {
	// cols stores information about each metadata column, indexed by
	// ColumnID.index().
	cols []ColumnMeta

	// tables stores information about each metadata table, indexed by
	// TableID.index().
	tables []TableMeta
}

// Init prepares the metadata for use (or reuse).
func (md *Metadata) Init() {
	*md = Metadata{}
}

// AddTable indexes a new reference to a table within the query. Separate
// references to the same table are assigned different table ids (e.g. in a
// self-join query). All columns are added to the metadata.
func (md *Metadata) AddTable(tab cat.Table, alias string) TableID {
	tabID := makeTableID(len(md.tables), ColumnID(len(md.cols)+1))
	md.tables = append(md.tables, TableMeta{MetaID: tabID, Table: tab, Alias: alias})
	for i, n := 0, tab.ColumnCount(); i < n; i++ {
		col := tab.Column(i)
		md.cols = append(md.cols, ColumnMeta{
			MetaID:   ColumnID(len(md.cols) + 1),
			Alias:    col.Name(),
			Table:    tabID,
			Ordinal:  i,
			Nullable: col.IsNullable(),
		})
	}
	return tabID
}

// TableMeta looks up the metadata for the table associated with the given
// table id. The same table can be added multiple times to the query metadata
// and associated with multiple table ids.
func (md *Metadata) TableMeta(tabID TableID) *TableMeta {
	if tabID == 0 || tabID.index() >= len(md.tables) {
		panic(errors.AssertionFailedf("table %d does not exist in the metadata", tabID))
	}
	return &md.tables[tabID.index()]
}

// Table looks up the catalog table associated with the given metadata id.
func (md *Metadata) Table(tabID TableID) cat.Table {
	return md.TableMeta(tabID).Table
}

// AllTables returns the metadata for all tables, in the order they were
// added.
func (md *Metadata) AllTables() []TableMeta {
	return md.tables
}

// NumColumns returns the count of columns tracked by this Metadata instance.
func (md *Metadata) NumColumns() int {
	return len(md.cols)
}

// ColumnMeta looks up the metadata for the column associated with the given
// column id.
func (md *Metadata) ColumnMeta(colID ColumnID) *ColumnMeta {
	if colID <= 0 || int(colID) > len(md.cols) {
		panic(errors.AssertionFailedf("column %d does not exist in the metadata", colID))
	}
	return &md.cols[colID-1]
}

// TableColumns returns the ids of all the columns of the given table
// instance.
func (md *Metadata) TableColumns(tabID TableID) ColSet {
	return md.TableMeta(tabID).Columns()
}

// QualifiedAlias returns the column alias prefixed by the name (or alias) of
// the table instance it belongs to, e.g. "a.id".
func (md *Metadata) QualifiedAlias(colID ColumnID) string {
	cm := md.ColumnMeta(colID)
	return fmt.Sprintf("%s.%s", md.TableMeta(cm.Table).Name(), cm.Alias)
}

// TableByAlias returns the id of the table instance with the given alias (or
// name, if it has no alias). ok is false if there is no such instance.
func (md *Metadata) TableByAlias(alias string) (_ TableID, ok bool) {
	for i := range md.tables {
		if md.tables[i].Name() == alias {
			return md.tables[i].MetaID, true
		}
	}
	return 0, false
}
