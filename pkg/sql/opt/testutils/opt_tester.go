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

package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/joinelim"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/memo"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/testutils/exprgen"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/testutils/rowexec"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/testutils/testcat"
	"github.com/cockroachdb/joinelim/pkg/util/log"
)

// OptTester is a helper for testing the join elimination pass. It contains the
// boiler-plate code for the following useful tasks:
//   - Load a test catalog and table contents
//   - Build an expression tree from its s-expression form
//   - Run join elimination and format the result
//   - Format the join graph seen by the pass
//   - Execute a tree before and after elimination and compare the results
//
// The catalog and table contents persist across commands, so a single tester
// is used for a whole test file.
type OptTester struct {
	Flags OptTesterFlags

	catalog *testcat.Catalog
	data    rowexec.Data
	ctx     context.Context
}

// OptTesterFlags are control knobs for tests. They are reset before every
// command and set from the command's arguments.
type OptTesterFlags struct {
	// Cols lists the columns read from the output of the tree, in the form
	// alias.column or alias.*. If empty, every output column is required.
	Cols []string

	// Options is passed to the eliminator.
	Options joinelim.Options

	// Trace causes the eliminate command to also output the events logged by
	// the pass.
	Trace bool

	// Verbose indicates whether verbose test debugging information will be
	// output to stdout when commands run.
	Verbose bool
}

// NewOptTester constructs a new instance of the OptTester with an empty
// catalog.
func NewOptTester() *OptTester {
	return &OptTester{
		catalog: testcat.New(),
		data:    make(rowexec.Data),
		ctx:     context.Background(),
	}
}

// RunCommand implements the following commands:
//
//   - catalog
//
//     Loads tables and foreign keys described in YAML into the catalog. See
//     testcat.Catalog.LoadYAML.
//
//   - data
//
//     Adds rows to the tables. Each line has the form "table: v1, v2, ...",
//     with one value per table column. Values are integers or NULL.
//
//   - build
//
//     Builds an expression tree from its s-expression form and outputs it.
//
//   - eliminate [flags]
//
//     Runs join elimination over the tree and outputs the result, followed by
//     the column renames if any.
//
//   - graph [flags]
//
//     Outputs the join graph of the tree after all the analysis stages ran.
//
//   - exec [flags]
//
//     Executes the tree before and after join elimination, fails the test if
//     the results differ, and outputs the rows.
//
// Supported flags:
//
//   - cols: the columns read from the output of the tree. Examples:
//     eliminate cols=(a.x)
//     eliminate cols=(a.*,b.y)
//
//   - legacy: use the legacy outer-to-inner rules.
//
//   - disable: disables rules by name. Examples:
//     eliminate disable=self-join
//     eliminate disable=(outer-to-inner,parent-child)
//
//   - trace: also output the events logged by the pass.
func (ot *OptTester) RunCommand(tb testing.TB, d *datadriven.TestData) string {
	ot.Flags = OptTesterFlags{}
	for _, a := range d.CmdArgs {
		if err := ot.Flags.Set(a); err != nil {
			d.Fatalf(tb, "%s", err)
		}
	}
	ot.Flags.Verbose = testing.Verbose()

	switch d.Cmd {
	case "catalog":
		if err := ot.catalog.LoadYAML([]byte(d.Input)); err != nil {
			d.Fatalf(tb, "%v", err)
		}
		return ""

	case "data":
		if err := ot.addData(d.Input); err != nil {
			d.Fatalf(tb, "%v", err)
		}
		return ""

	case "build":
		var md opt.Metadata
		md.Init()
		e, err := exprgen.Build(ot.catalog, &md, d.Input)
		if err != nil {
			return fmt.Sprintf("error: %s\n", strings.TrimSpace(err.Error()))
		}
		return memo.FormatExpr(&md, e)

	case "eliminate":
		s, err := ot.Eliminate(d.Input)
		if err != nil {
			d.Fatalf(tb, "%+v", err)
		}
		return s

	case "graph":
		s, err := ot.Graph(d.Input)
		if err != nil {
			d.Fatalf(tb, "%+v", err)
		}
		return s

	case "exec":
		s, err := ot.Exec(d.Input)
		if err != nil {
			d.Fatalf(tb, "%+v", err)
		}
		return s

	default:
		d.Fatalf(tb, "unsupported command: %s", d.Cmd)
		return ""
	}
}

// Set parses an argument that refers to a flag.
// See OptTester.RunCommand for supported flags.
func (f *OptTesterFlags) Set(arg datadriven.CmdArg) error {
	switch arg.Key {
	case "cols":
		if len(arg.Vals) == 0 {
			return fmt.Errorf("cols requires arguments")
		}
		f.Cols = append(f.Cols, arg.Vals...)

	case "legacy":
		f.Options.LegacyOuterJoinRules = true

	case "disable":
		if len(arg.Vals) == 0 {
			return fmt.Errorf("disable requires arguments")
		}
		for _, s := range arg.Vals {
			if err := f.Options.DisableRule(s); err != nil {
				return err
			}
		}

	case "trace":
		f.Trace = true

	default:
		return fmt.Errorf("unknown argument: %s", arg.Key)
	}
	return nil
}

// build constructs the tree and the set of required columns.
func (ot *OptTester) build(md *opt.Metadata, input string) (memo.RelExpr, opt.ColSet, error) {
	md.Init()
	e, err := exprgen.Build(ot.catalog, md, input)
	if err != nil {
		return nil, opt.ColSet{}, err
	}
	if len(ot.Flags.Cols) == 0 {
		return e, memo.OutputCols(e), nil
	}
	required, err := exprgen.ResolveColumns(md, ot.Flags.Cols)
	if err != nil {
		return nil, opt.ColSet{}, err
	}
	return e, required, nil
}

func (ot *OptTester) makeEliminator(md *opt.Metadata) *joinelim.Eliminator {
	var e joinelim.Eliminator
	e.Init(ot.ctx, md, ot.catalog, nil /* keyRefs */, ot.Flags.Options)
	return &e
}

// Eliminate runs join elimination over the tree described by the input and
// returns the formatted result.
func (ot *OptTester) Eliminate(input string) (string, error) {
	var md opt.Metadata
	root, required, err := ot.build(&md, input)
	if err != nil {
		return "", err
	}

	var events func() []string
	if ot.Flags.Trace {
		var restore func()
		events, restore, err = captureEvents()
		if err != nil {
			return "", err
		}
		defer restore()
	}

	res, err := ot.makeEliminator(&md).Eliminate(root, required)
	if err != nil {
		return "", err
	}
	memo.CheckExpr(&md, res.Root)
	if ot.Flags.Verbose {
		fmt.Printf("before:\n%s\nafter:\n%s\n", memo.FormatExpr(&md, root), memo.FormatExpr(&md, res.Root))
	}

	var buf strings.Builder
	buf.WriteString(memo.FormatExpr(&md, res.Root))
	if len(res.Renames) > 0 {
		buf.WriteString("renames:\n")
		from := make(opt.ColList, 0, len(res.Renames))
		for c := range res.Renames {
			from = append(from, c)
		}
		sort.Slice(from, func(i, j int) bool { return from[i] < from[j] })
		for _, c := range from {
			fmt.Fprintf(&buf, "  %s -> %s\n", md.QualifiedAlias(c), md.QualifiedAlias(res.Renames[c]))
		}
	}
	if events != nil {
		buf.WriteString("events:\n")
		for _, e := range events() {
			fmt.Fprintf(&buf, "  %s\n", e)
		}
	}
	return buf.String(), nil
}

// Graph returns the join graph of the tree described by the input.
func (ot *OptTester) Graph(input string) (string, error) {
	var md opt.Metadata
	root, required, err := ot.build(&md, input)
	if err != nil {
		return "", err
	}
	return ot.makeEliminator(&md).FormatGraph(root, required)
}

// Exec executes the tree described by the input before and after join
// elimination, and returns the rows if the results agree. The renamed columns
// are read from their replacements in the rewritten tree.
func (ot *OptTester) Exec(input string) (string, error) {
	var md opt.Metadata
	root, required, err := ot.build(&md, input)
	if err != nil {
		return "", err
	}
	res, err := ot.makeEliminator(&md).Eliminate(root, required)
	if err != nil {
		return "", err
	}

	cols := opt.ColSetToList(required)
	renamed := make(opt.ColList, len(cols))
	for i, c := range cols {
		renamed[i] = c
		if to, ok := res.Renames[c]; ok {
			renamed[i] = to
		}
	}

	before, err := rowexec.Eval(&md, ot.data, root)
	if err != nil {
		return "", err
	}
	after, err := rowexec.Eval(&md, ot.data, res.Root)
	if err != nil {
		return "", err
	}
	want := rowexec.Canonical(rowexec.Project(before, cols))
	got := rowexec.Canonical(rowexec.Project(after, renamed))
	if strings.Join(want, "\n") != strings.Join(got, "\n") {
		return "", errors.Newf(
			"results differ after elimination\nbefore:\n%s\nafter:\n%s\ntree:\n%s",
			strings.Join(want, "\n"), strings.Join(got, "\n"), memo.FormatExpr(&md, res.Root),
		)
	}

	var buf strings.Builder
	for i, c := range cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(md.QualifiedAlias(c))
	}
	buf.WriteByte('\n')
	for _, row := range want {
		buf.WriteString(row)
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

func (ot *OptTester) addData(input string) error {
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			return errors.Newf("expected \"table: values\", found %q", line)
		}
		name := strings.TrimSpace(line[:colon])
		tab, err := ot.catalog.Table(name)
		if err != nil {
			return err
		}
		fields := strings.Split(line[colon+1:], ",")
		if len(fields) != tab.ColumnCount() {
			return errors.Newf("table %q has %d columns, found %d values", name, tab.ColumnCount(), len(fields))
		}
		row := make([]rowexec.Datum, len(fields))
		for i, f := range fields {
			f = strings.TrimSpace(f)
			if strings.EqualFold(f, "NULL") {
				continue
			}
			v, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				return errors.Wrapf(err, "table %q", name)
			}
			row[i] = rowexec.DInt(v)
		}
		ot.data[name] = append(ot.data[name], row)
	}
	return nil
}

// captureEvents redirects the log to a buffer and raises the verbosity so that
// the events of the pass are recorded. events returns the messages recorded so
// far; restore undoes the redirection.
func captureEvents() (events func() []string, restore func(), err error) {
	var buf bytes.Buffer
	if err := log.SetOutput(&buf, log.FormatJSON); err != nil {
		return nil, nil, err
	}
	restoreVerbosity := log.SetVerbosity(2)
	restore = func() {
		restoreVerbosity()
		_ = log.SetOutput(os.Stderr, log.FormatText)
	}
	events = func() []string {
		var res []string
		dec := json.NewDecoder(&buf)
		for dec.More() {
			var entry struct {
				Message string `json:"message"`
			}
			if err := dec.Decode(&entry); err != nil {
				break
			}
			res = append(res, entry.Message)
		}
		return res
	}
	return events, restore, nil
}
