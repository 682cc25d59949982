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

package exprgen

import (
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

// node is a parsed s-expression: either an atom or a parenthesized list.
type node struct {
	atom string
	list []*node
	// pos is the byte offset of the node in the input, for error messages.
	pos int
}

func (n *node) isList() bool {
	return n.list != nil
}

func (n *node) String() string {
	if !n.isList() {
		return n.atom
	}
	var buf strings.Builder
	buf.WriteByte('(')
	for i, c := range n.list {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(c.String())
	}
	buf.WriteByte(')')
	return buf.String()
}

type parser struct {
	input string
	pos   int
}

// parse parses a single s-expression that spans the whole input. Line comments
// start with "#".
func parse(input string) (*node, error) {
	p := parser{input: input}
	n, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, errors.Newf("unexpected input at offset %d: %q", p.pos, p.rest())
	}
	return n, nil
}

func (p *parser) rest() string {
	r := p.input[p.pos:]
	if len(r) > 20 {
		r = r[:20] + "..."
	}
	return r
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c == '#':
			for p.pos < len(p.input) && p.input[p.pos] != '\n' {
				p.pos++
			}
		case unicode.IsSpace(rune(c)):
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) parseNode() (*node, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return nil, errors.New("unexpected end of input")
	}
	start := p.pos
	switch p.input[p.pos] {
	case '(':
		p.pos++
		n := &node{list: []*node{}, pos: start}
		for {
			p.skipSpace()
			if p.pos >= len(p.input) {
				return nil, errors.Newf("unterminated list starting at offset %d", start)
			}
			if p.input[p.pos] == ')' {
				p.pos++
				return n, nil
			}
			child, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			n.list = append(n.list, child)
		}

	case ')':
		return nil, errors.Newf("unexpected ')' at offset %d", start)
	}

	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '(' || c == ')' || c == '#' || unicode.IsSpace(rune(c)) {
			break
		}
		p.pos++
	}
	return &node{atom: p.input[start:p.pos], pos: start}, nil
}
