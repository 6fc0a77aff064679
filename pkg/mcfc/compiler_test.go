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
package mcfc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCompile_00_BootstrapFileListsFlagCells(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	writeSource(t, srcRoot, "main", "x = 1\n")

	errs, err := Compile(CompilationConfig{
		SourceRoot:    srcRoot,
		OutputRoot:    outRoot,
		BaseNamespace: "prog",
		EntryModule:   "main",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(errs) != 0 {
		t.Fatalf("unexpected compile errors: %v", errs)
	}

	init, err := os.ReadFile(filepath.Join(outRoot, "prog", ".__init.mcfunction"))
	if err != nil {
		t.Fatalf("expected bootstrap file: %v", err)
	}

	text := string(init)
	if strings.Count(text, "scoreboard players set") != 4 {
		t.Fatalf("expected exactly 4 flag cells pre-populated, got %q", text)
	}

	mod, err := os.ReadFile(filepath.Join(outRoot, "prog", ".__module.mcfunction"))
	if err != nil {
		t.Fatalf("expected entry module file: %v", err)
	}

	if !strings.Contains(string(mod), "scoreboard players set") {
		t.Fatalf("expected the entry module's own assignment, got %q", mod)
	}
}

func TestCompile_01_EntryModuleReadRelativeToSourceRoot(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()

	if err := os.Mkdir(filepath.Join(srcRoot, "pkg"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeSource(t, filepath.Join(srcRoot, "pkg"), "main", "x = 1\n")

	errs, err := Compile(CompilationConfig{
		SourceRoot:    srcRoot,
		OutputRoot:    outRoot,
		BaseNamespace: "prog",
		EntryModule:   "pkg.main",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(errs) != 0 {
		t.Fatalf("unexpected compile errors: %v", errs)
	}
}

func TestCompile_02_MissingEntryModuleReportsIOError(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()

	_, err := Compile(CompilationConfig{
		SourceRoot:    srcRoot,
		OutputRoot:    outRoot,
		BaseNamespace: "prog",
		EntryModule:   "nosuch",
	}, nil)
	if err == nil {
		t.Fatalf("expected an error reading the missing entry module")
	}

	ce, ok := err.(*CompileError)
	if !ok || ce.Kind != IOError {
		t.Fatalf("expected an IOError CompileError, got %v", err)
	}
}

func TestCompile_03_EmptyBaseNamespaceRejected(t *testing.T) {
	if _, err := Compile(CompilationConfig{BaseNamespace: ""}, nil); err == nil {
		t.Fatalf("expected an error for an empty base namespace")
	}
}
