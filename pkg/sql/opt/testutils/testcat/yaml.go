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

package testcat

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/joinelim/pkg/sql/opt/cat"
	"gopkg.in/yaml.v3"
)

// catalogDef is the YAML form of a catalog:
//
//	tables:
//	  - name: customers
//	    columns:
//	      - name: id
//	      - name: name
//	        nullable: true
//	    primary_key: [id]
//	  - name: orders
//	    columns:
//	      - name: id
//	      - name: customer_id
//	        nullable: true
//	    primary_key: [id]
//	    foreign_keys:
//	      - name: fk_customer
//	        columns: [customer_id]
//	        references: customers
//	        multiplicity: many
//
// Columns are NOT NULL unless marked nullable. A foreign key references the
// parent's primary key unless referenced_columns is given, has multiplicity
// "many" unless specified, and is validated unless validated is false.
type catalogDef struct {
	Tables []tableDef `yaml:"tables"`
}

type tableDef struct {
	Name        string          `yaml:"name"`
	Columns     []columnDef     `yaml:"columns"`
	PrimaryKey  []string        `yaml:"primary_key"`
	ForeignKeys []foreignKeyDef `yaml:"foreign_keys"`
}

type columnDef struct {
	Name     string `yaml:"name"`
	Nullable bool   `yaml:"nullable"`
}

type foreignKeyDef struct {
	Name              string   `yaml:"name"`
	Columns           []string `yaml:"columns"`
	References        string   `yaml:"references"`
	ReferencedColumns []string `yaml:"referenced_columns"`
	Multiplicity      string   `yaml:"multiplicity"`
	Validated         *bool    `yaml:"validated"`
}

// LoadYAML adds the tables and foreign keys described by the given YAML
// document to the catalog. Foreign keys may reference tables defined later in
// the same document.
func (tc *Catalog) LoadYAML(data []byte) error {
	var def catalogDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return errors.Wrap(err, "parsing catalog")
	}

	for i := range def.Tables {
		td := &def.Tables[i]
		tab := &Table{TabName: td.Name}
		if td.Name == "" {
			return errors.Newf("table %d has no name", i+1)
		}
		for _, cd := range td.Columns {
			if cat.FindColumn(tab, cd.Name) >= 0 {
				return errors.Newf("table %q: duplicate column %q", td.Name, cd.Name)
			}
			tab.Columns = append(tab.Columns, &Column{ColName: cd.Name, Nullable: cd.Nullable})
		}
		for _, name := range td.PrimaryKey {
			ord := cat.FindColumn(tab, name)
			if ord < 0 {
				return errors.Newf("table %q: primary key column %q does not exist", td.Name, name)
			}
			if tab.Columns[ord].Nullable {
				return errors.Newf("table %q: primary key column %q cannot be nullable", td.Name, name)
			}
			tab.PrimaryKeyOrdinals = append(tab.PrimaryKeyOrdinals, ord)
		}
		if err := tc.AddTable(tab); err != nil {
			return err
		}
	}

	for i := range def.Tables {
		td := &def.Tables[i]
		child, err := tc.Table(td.Name)
		if err != nil {
			return err
		}
		for _, fd := range td.ForeignKeys {
			parent, err := tc.Table(fd.References)
			if err != nil {
				return errors.Wrapf(err, "foreign key %q", fd.Name)
			}
			mult, err := parseMultiplicity(fd.Multiplicity)
			if err != nil {
				return errors.Wrapf(err, "foreign key %q", fd.Name)
			}
			validated := fd.Validated == nil || *fd.Validated
			if err := tc.AddForeignKey(
				fd.Name, child, fd.Columns, parent, fd.ReferencedColumns, mult, validated,
			); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseMultiplicity(s string) (cat.Multiplicity, error) {
	switch s {
	case "", "many":
		return cat.MultiplicityMany, nil
	case "one":
		return cat.MultiplicityOne, nil
	case "zero-or-one":
		return cat.MultiplicityZeroOrOne, nil
	}
	return 0, errors.Newf("unknown multiplicity %q", s)
}
