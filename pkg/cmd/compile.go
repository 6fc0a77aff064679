// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mcfc-lang/mcfc/pkg/mcfc"
	// Registers the bossbar and debug template modules with pkg/template
	// as a side effect of being imported.
	_ "github.com/mcfc-lang/mcfc/pkg/templates"
)

var compileCmd = &cobra.Command{
	Use:   "compile [flags] entry-module",
	Short: "compile an entry module (and everything it imports) into command files.",
	Long: `Compile lowers the given entry module, and every module it transitively
imports, into a flat tree of Minecraft ".mcfunction" files ready to be
dropped into a world's datapack.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		cfg := mcfc.CompilationConfig{
			SourceRoot:    GetString(cmd, "source"),
			TemplateRoot:  GetString(cmd, "templates"),
			OutputRoot:    GetString(cmd, "output"),
			BaseNamespace: GetString(cmd, "namespace"),
			EntryModule:   args[0],
			Debug:         GetFlag(cmd, "debug"),
		}

		errs, err := mcfc.Compile(cfg, log.StandardLogger())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		for _, ce := range errs {
			fmt.Fprintln(os.Stderr, ce.Error())
			for _, ns := range ce.Namespaces {
				fmt.Fprintf(os.Stderr, "\tin %s\n", ns)
			}
		}

		if len(errs) != 0 {
			os.Exit(1)
		}
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringP("source", "s", ".", "directory user modules are resolved under")
	compileCmd.Flags().String("templates", "", "additional directory searched for template modules")
	compileCmd.Flags().StringP("output", "o", "out", "directory compiled command files are written under")
	compileCmd.Flags().StringP("namespace", "n", "mcfc", "base namespace the entry module compiles under")
	compileCmd.Flags().Bool("debug", false, "emit debug comments and tellraw diagnostics")
}
