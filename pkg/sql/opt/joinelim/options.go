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
	"strings"

	"github.com/cockroachdb/errors"
)

// Options controls which parts of the pass run.
type Options struct {
	// LegacyOuterJoinRules relaxes the conditions under which a left join is
	// promoted to an inner join: instead of verifying that the rows of both
	// inputs survive up to the top of the region, promotion only requires
	// both inputs of the left join to be plain table scans.
	LegacyOuterJoinRules bool

	// DisableOuterToInner disables promotion of left joins to inner joins.
	DisableOuterToInner bool

	// DisableSelfJoins disables explicit and star self-join elimination.
	DisableSelfJoins bool

	// DisableParentChild disables foreign-key based elimination.
	DisableParentChild bool
}

// Rule names accepted by DisableRule.
const (
	RuleOuterToInner = "outer-to-inner"
	RuleSelfJoin     = "self-join"
	RuleParentChild  = "parent-child"
)

// DisableRule turns off the named rule. It returns an error if the name is
// not one of the Rule constants.
func (o *Options) DisableRule(name string) error {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case RuleOuterToInner:
		o.DisableOuterToInner = true
	case RuleSelfJoin:
		o.DisableSelfJoins = true
	case RuleParentChild:
		o.DisableParentChild = true
	default:
		return errors.Newf(
			"unknown rule %q (expected %s, %s or %s)", name, RuleOuterToInner, RuleSelfJoin, RuleParentChild,
		)
	}
	return nil
}
