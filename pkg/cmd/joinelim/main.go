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

// joinelim runs the join elimination pass over an expression tree read from
// a file and prints the result. The catalog the tree refers to is described
// in YAML, in the format accepted by testcat.Catalog.LoadYAML.
//
// Every flag can also be set in a config file (--config) or through an
// environment variable named after the flag, e.g. JOINELIM_LEGACY_OUTER_JOINS.
package main

import (
	"os"

	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
