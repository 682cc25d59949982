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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/joinelim/pkg/sql/opt"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/joinelim"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/memo"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/testutils/exprgen"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/testutils/testcat"
	"github.com/cockroachdb/joinelim/pkg/util/log"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "JOINELIM"

// Flag names double as config file keys.
const (
	configFlag       = "config"
	catalogFlag      = "catalog"
	colsFlag         = "cols"
	legacyFlag       = "legacy-outer-joins"
	disableRulesFlag = "disable-rules"
	verbosityFlag    = "verbosity"
	logFormatFlag    = "log-format"
)

// settings is the configuration of a single invocation, after flags, the
// environment and the config file were merged.
type settings struct {
	catalog   string
	cols      []string
	options   joinelim.Options
	verbosity int32
	logFormat log.Format
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "joinelim",
		Short:        "run join elimination over an expression tree",
		SilenceUsage: true,
	}

	flags := pflag.NewFlagSet("joinelim", pflag.ContinueOnError)
	flags.String(configFlag, "", "config file (yaml, json or toml)")
	flags.String(catalogFlag, "", "YAML file describing the tables and foreign keys")
	flags.StringSlice(colsFlag, nil, "columns read from the output of the tree (alias.column or alias.*)")
	flags.Bool(legacyFlag, false, "use the legacy outer-to-inner promotion rules")
	flags.StringSlice(disableRulesFlag, nil, fmt.Sprintf(
		"rules to disable (%s, %s, %s)", joinelim.RuleOuterToInner, joinelim.RuleSelfJoin, joinelim.RuleParentChild,
	))
	flags.Int32P(verbosityFlag, "v", 0, "log verbosity; 1 logs a summary, 2 logs every elimination")
	flags.String(logFormatFlag, string(log.FormatText), "log format (text or json)")
	rootCmd.PersistentFlags().AddFlagSet(flags)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		if cfgFile := v.GetString(configFlag); cfgFile != "" {
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return errors.Wrapf(err, "reading config file %s", cfgFile)
			}
		}
		return nil
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "run <expr-file>",
			Short: "eliminate joins and print the tree before and after",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := loadSettings(v)
				if err != nil {
					return err
				}
				return runEliminate(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), s, args[0])
			},
		},
		&cobra.Command{
			Use:   "graph <expr-file>",
			Short: "print the join graph built for the tree",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := loadSettings(v)
				if err != nil {
					return err
				}
				return runGraph(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), s, args[0])
			},
		},
	)
	return rootCmd
}

func loadSettings(v *viper.Viper) (settings, error) {
	s := settings{
		catalog:   v.GetString(catalogFlag),
		cols:      v.GetStringSlice(colsFlag),
		verbosity: v.GetInt32(verbosityFlag),
	}
	if s.catalog == "" {
		return settings{}, errors.Newf("--%s is required", catalogFlag)
	}
	s.options.LegacyOuterJoinRules = v.GetBool(legacyFlag)
	for _, rule := range v.GetStringSlice(disableRulesFlag) {
		if err := s.options.DisableRule(rule); err != nil {
			return settings{}, err
		}
	}
	var err error
	if s.logFormat, err = log.ParseFormat(v.GetString(logFormatFlag)); err != nil {
		return settings{}, err
	}
	return s, nil
}

// tree is an expression tree loaded from the command line, together with the
// state needed to run the pass over it.
type tree struct {
	catalog  *testcat.Catalog
	md       opt.Metadata
	root     memo.RelExpr
	required opt.ColSet
}

func loadTree(s settings, exprFile string) (*tree, error) {
	catalogYAML, err := os.ReadFile(s.catalog)
	if err != nil {
		return nil, errors.Wrap(err, "reading catalog")
	}
	input, err := os.ReadFile(exprFile)
	if err != nil {
		return nil, errors.Wrap(err, "reading expression")
	}

	t := &tree{catalog: testcat.New()}
	if err := t.catalog.LoadYAML(catalogYAML); err != nil {
		return nil, errors.Wrapf(err, "loading catalog %s", s.catalog)
	}
	t.md.Init()
	if t.root, err = exprgen.Build(t.catalog, &t.md, string(input)); err != nil {
		return nil, errors.Wrapf(err, "building %s", exprFile)
	}
	if len(s.cols) == 0 {
		t.required = memo.OutputCols(t.root)
	} else if t.required, err = exprgen.ResolveColumns(&t.md, s.cols); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *tree) eliminator(ctx context.Context, s settings) *joinelim.Eliminator {
	var e joinelim.Eliminator
	e.Init(ctx, &t.md, t.catalog, nil /* keyRefs */, s.options)
	return &e
}

func setupLogging(w io.Writer, s settings) (restore func(), _ error) {
	if err := log.SetOutput(w, s.logFormat); err != nil {
		return nil, err
	}
	return log.SetVerbosity(s.verbosity), nil
}

func runEliminate(ctx context.Context, out, logOut io.Writer, s settings, exprFile string) error {
	restore, err := setupLogging(logOut, s)
	if err != nil {
		return err
	}
	defer restore()

	t, err := loadTree(s, exprFile)
	if err != nil {
		return err
	}
	res, err := t.eliminator(ctx, s).Eliminate(t.root, t.required)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "before:\n%s", memo.FormatExpr(&t.md, t.root))
	if !res.Modified {
		fmt.Fprintln(out, "no joins eliminated")
		return nil
	}
	fmt.Fprintf(out, "after:\n%s", memo.FormatExpr(&t.md, res.Root))
	printRenames(out, &t.md, res.Renames)
	return nil
}

// printRenames writes the rename map as a table sorted by source column.
func printRenames(w io.Writer, md *opt.Metadata, renames opt.ColMap) {
	if len(renames) == 0 {
		return
	}
	from := make(opt.ColList, 0, len(renames))
	for c := range renames {
		from = append(from, c)
	}
	sort.Slice(from, func(i, j int) bool { return from[i] < from[j] })

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"column", "replaced by"})
	for _, c := range from {
		table.Append([]string{md.QualifiedAlias(c), md.QualifiedAlias(renames[c])})
	}
	table.Render()
}

func runGraph(ctx context.Context, out, logOut io.Writer, s settings, exprFile string) error {
	restore, err := setupLogging(logOut, s)
	if err != nil {
		return err
	}
	defer restore()

	t, err := loadTree(s, exprFile)
	if err != nil {
		return err
	}
	g, err := t.eliminator(ctx, s).FormatGraph(t.root, t.required)
	if err != nil {
		return err
	}
	fmt.Fprint(out, g)
	return nil
}
