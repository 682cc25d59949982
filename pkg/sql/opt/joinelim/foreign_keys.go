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

package joinelim

import (
	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/cat"
	"github.com/cockroachdb/joinelim/pkg/util"
)

// findForeignKey returns a validated foreign key from the child table to the
// parent table whose columns are exactly the given column pairs: every pair
// matches a child column with the parent column it references, and every
// column of the constraint appears in some pair. The referenced parent
// columns must include the parent's primary key. It returns nil if there is
// no such constraint.
func (g *joinGraph) findForeignKey(
	parent, child vertexID, parentCols, childCols opt.ColList,
) cat.ForeignKeyConstraint {
	if g.lookup == nil {
		return nil
	}
	parentTab, childTab := g.baseTable(parent), g.baseTable(child)
	parentID, childID := g.table(parent).tabID, g.table(child).tabID
	for _, fk := range g.lookup.IsParentChild(parentTab, childTab) {
		if !fk.Validated() {
			continue
		}
		if fkCoveredBy(fk, parentTab, parentID, childID, parentCols, childCols) {
			return fk
		}
	}
	return nil
}

func fkCoveredBy(
	fk cat.ForeignKeyConstraint,
	parentTab cat.Table,
	parentID, childID opt.TableID,
	parentCols, childCols opt.ColList,
) bool {
	var childOrds util.FastIntSet
	for i := range childCols {
		childOrd := childID.ColumnOrdinal(childCols[i])
		parentOrd, ok := fk.ParentKeyFor(childOrd)
		if !ok || parentOrd != parentID.ColumnOrdinal(parentCols[i]) {
			return false
		}
		childOrds.Add(childOrd)
	}
	var parentOrds util.FastIntSet
	for i, n := 0, fk.ColumnCount(); i < n; i++ {
		if !childOrds.Contains(fk.ChildColumnOrdinal(i)) {
			return false
		}
		parentOrds.Add(fk.ParentColumnOrdinal(i))
	}
	for _, ord := range parentTab.PrimaryKey() {
		if !parentOrds.Contains(ord) {
			return false
		}
	}
	return true
}

// nullableCols returns the columns in the list that can be NULL.
func (g *joinGraph) nullableCols(cols opt.ColList) opt.ColSet {
	var res opt.ColSet
	for _, c := range cols {
		if g.md.ColumnMeta(c).Nullable {
			res.Add(int(c))
		}
	}
	return res
}
