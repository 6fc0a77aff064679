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
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mcfc-lang/mcfc/pkg/mcfc"
	_ "github.com/mcfc-lang/mcfc/pkg/templates"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] entry-module",
	Short: "compile an entry module to a scratch directory and report diagnostics only.",
	Long: `Inspect runs the same lowering pipeline as compile, but writes the generated
command files to a throwaway directory and reports only the count of files
produced and any accumulated errors, useful for checking a module compiles
cleanly without committing to an output location.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		scratch, err := os.MkdirTemp("", "mcfc-inspect-*")
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		defer os.RemoveAll(scratch)

		cfg := mcfc.CompilationConfig{
			SourceRoot:    GetString(cmd, "source"),
			TemplateRoot:  GetString(cmd, "templates"),
			OutputRoot:    scratch,
			BaseNamespace: GetString(cmd, "namespace"),
			EntryModule:   args[0],
			Debug:         GetFlag(cmd, "debug"),
		}

		errs, err := mcfc.Compile(cfg, log.StandardLogger())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		written := 0

		filepath.Walk(scratch, func(_ string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() {
				written++
			}

			return nil
		})

		fmt.Printf("%d command file(s) generated, %d error(s)\n", written, len(errs))

		for _, ce := range errs {
			fmt.Println(ce.Error())
		}

		if len(errs) != 0 {
			os.Exit(1)
		}
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringP("source", "s", ".", "directory user modules are resolved under")
	inspectCmd.Flags().String("templates", "", "additional directory searched for template modules")
	inspectCmd.Flags().StringP("namespace", "n", "mcfc", "base namespace the entry module compiles under")
	inspectCmd.Flags().Bool("debug", false, "emit debug comments and tellraw diagnostics")
}
