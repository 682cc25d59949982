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

import "fmt"

// Operator describes the type of operation that a memo expression performs.
// Some operators are relational (join, select, project) and others are scalar
// (and, or, plus, variable).
type Operator uint16

const (
	// UnknownOp is not used by any expression.
	UnknownOp Operator = iota

	// -- Relational operators --

	// ScanOp returns all rows of a base table instance.
	ScanOp

	// InnerJoinOp, LeftJoinOp and FullJoinOp are binary joins with an ON
	// condition.
	InnerJoinOp
	LeftJoinOp
	FullJoinOp

	// CrossJoinOp is an n-ary cartesian product of its inputs.
	CrossJoinOp

	// SelectOp filters the rows of its input.
	SelectOp

	// ProjectOp restricts the output columns of its input.
	ProjectOp

	// ValuesOp returns a single row without any columns.
	ValuesOp

	// OpaqueOp wraps a relational expression that the join elimination pass
	// never looks into, e.g. an aggregation or a subquery.
	OpaqueOp

	// -- Scalar operators --

	// VariableOp is a leaf expression that represents a non-constant value,
	// like a column in a table.
	VariableOp

	// ConstOp is a leaf expression that has a constant integer value.
	ConstOp

	NullOp
	TrueOp
	FalseOp

	AndOp
	OrOp
	NotOp

	EqOp
	NeOp
	LtOp
	LeOp
	GtOp
	GeOp

	IsNullOp
	IsNotNullOp

	// FiltersOp is a conjunction of scalar conditions.
	FiltersOp

	// This should be last.
	NumOperators
)

var operatorNames = [NumOperators]string{
	UnknownOp:   "unknown",
	ScanOp:      "scan",
	InnerJoinOp: "inner-join",
	LeftJoinOp:  "left-join",
	FullJoinOp:  "full-join",
	CrossJoinOp: "cross-join",
	SelectOp:    "select",
	ProjectOp:   "project",
	ValuesOp:    "values",
	OpaqueOp:    "opaque",
	VariableOp:  "variable",
	ConstOp:     "const",
	NullOp:      "null",
	TrueOp:      "true",
	FalseOp:     "false",
	AndOp:       "and",
	OrOp:        "or",
	NotOp:       "not",
	EqOp:        "eq",
	NeOp:        "ne",
	LtOp:        "lt",
	LeOp:        "le",
	GtOp:        "gt",
	GeOp:        "ge",
	IsNullOp:    "is-null",
	IsNotNullOp: "is-not-null",
	FiltersOp:   "filters",
}

func (op Operator) String() string {
	if op >= NumOperators {
		return fmt.Sprintf("operator(%d)", op)
	}
	return operatorNames[op]
}

// SafeValue implements the redact.SafeValue interface. Operator names never
// contain user data.
func (Operator) SafeValue() {}

// IsRelationalOp returns true if the operator returns rows.
func IsRelationalOp(op Operator) bool {
	return op >= ScanOp && op <= OpaqueOp
}

// IsScalarOp returns true if the operator returns a single value.
func IsScalarOp(op Operator) bool {
	return op >= VariableOp && op < NumOperators
}

// IsJoinOp returns true if the operator is one of the join operators.
func IsJoinOp(op Operator) bool {
	switch op {
	case InnerJoinOp, LeftJoinOp, FullJoinOp, CrossJoinOp:
		return true
	}
	return false
}

// IsComparisonOp returns true if the operator compares two scalar values.
func IsComparisonOp(op Operator) bool {
	return op >= EqOp && op <= GeOp
}

// Expr is a node in an expression tree. It offers methods to traverse and
// inspect the tree. Each node in the tree has an enumerated operator type, zero
// or more children, and an optional private value.
type Expr interface {
	// Op returns the operator type of the expression.
	Op() Operator

	// ChildCount returns the number of children of the expression.
	ChildCount() int

	// Child returns the nth child of the expression.
	Child(nth int) Expr
}
