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

/*
Package joinelim removes redundant tables from a region of joins.

The region is the maximal subtree of scans and inner, left, full and cross
joins rooted at the expression handed to Eliminator.Eliminate. Any other
operator found while walking down the region is an opaque boundary: it is kept
as-is and never looked into.

The pass runs in stages over a join graph built from the region:

 1. Annotate. Every scan becomes a table vertex, every join a join vertex and
    every other operator an opaque vertex. Vertex ids are assigned in
    post-order, so the vertices of a subtree always form a contiguous id range
    that ends with the subtree root. Join predicates are split into equality
    column pairs and a residual (full joins are never split).

 2. Build edges. A join edge records that two table instances are joined by
    column equalities. Edges are only generated for pure equi-joins, and only
    between tables that are still visible at the join: nothing below the right
    input of a left join (or below either input of a full join) is visible
    above it.

 3. Promote outer joins. A left join becomes an inner join when a validated
    foreign key guarantees every row of the left input finds a match. The
    right input of a promoted join is visible above it, so edges are built
    again after every round of promotion.

 4. Generate transitive edges. Two edges A->B and B->C are combined into A->C
    when their kinds match and their columns on B line up.

 5. Eliminate self-joins. Two instances of the same table joined on the full
    primary key collapse into one instance. Several instances joined to the
    same hub table on identical conditions ("star" self-joins) also collapse.

 6. Eliminate parent-child joins. A parent table joined to its child through a
    foreign key is removed when none of its columns other than the key are
    used; the reverse direction is handled for left joins.

 7. Rebuild. Eliminated tables forward to the table that replaced them. The
    rebuilder walks the annotated tree bottom-up, places every surviving table
    at its new location and re-attaches every predicate at the lowest join
    where all its columns are in scope.

Eliminating a table requires one of the two instances involved to move to the
other's position in the tree. A move is refused if it would carry a table out
of the preserved side of a left join, because that would drop rows the outer
join preserves.

The result includes a map from every eliminated column to the surviving
column that replaces it; the caller uses it to rewrite any expression outside
the region that refers to an eliminated column.
*/
package joinelim
