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

	"github.com/mcfc-lang/mcfc/pkg/ast"
	"github.com/mcfc-lang/mcfc/pkg/util/source"
)

func newTestContext(t *testing.T, outRoot string) *CompilationContext {
	t.Helper()

	base := NewRootNamespace("prog")
	ctx := NewCompilationContext(base, t.TempDir(), "", NewWriter(outRoot), false, nil)
	ctx.Symbols.InitRoot(base, KindModule)

	return ctx
}

func moduleFile(outRoot string, segs ...string) string {
	return filepath.Join(append([]string{outRoot}, segs...)...) + ".mcfunction"
}

func TestLower_00_AssignConstant(t *testing.T) {
	out := t.TempDir()
	ctx := newTestContext(t, out)

	mod, err := ast.Parse(source.NewSourceFile("t", []byte("x = 1\n")))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if err := ctx.lowerModule(mod, ctx.Base); err != nil {
		t.Fatalf("lower error: %v", err)
	}

	if errs := ctx.Errors(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	got, err := os.ReadFile(moduleFile(out, "prog", ".__module"))
	if err != nil {
		t.Fatalf("expected module file: %v", err)
	}

	text := string(got)
	if !strings.Contains(text, "scoreboard players set") {
		t.Fatalf("expected a const assignment, got %q", text)
	}

	if !strings.Contains(text, "scoreboard players operation") {
		t.Fatalf("expected the result copied into a Vars cell, got %q", text)
	}
}

func TestLower_01_BinOpSpillsLeftOperand(t *testing.T) {
	out := t.TempDir()
	ctx := newTestContext(t, out)

	mod, err := ast.Parse(source.NewSourceFile("t", []byte("x = 1 + 2\n")))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if err := ctx.lowerModule(mod, ctx.Base); err != nil {
		t.Fatalf("lower error: %v", err)
	}

	got, err := os.ReadFile(moduleFile(out, "prog", ".__module"))
	if err != nil {
		t.Fatalf("expected module file: %v", err)
	}

	if strings.Count(string(got), "scoreboard players operation") < 2 {
		t.Fatalf("expected at least a spill and a combine op, got %q", got)
	}
}

func TestLower_02_IfWritesBothBranchFiles(t *testing.T) {
	out := t.TempDir()
	ctx := newTestContext(t, out)

	src := "x = 1\nif x > 0:\n    y = 1\nelse:\n    y = 2\n"

	mod, err := ast.Parse(source.NewSourceFile("t", []byte(src)))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if err := ctx.lowerModule(mod, ctx.Base); err != nil {
		t.Fatalf("lower error: %v", err)
	}

	if errs := ctx.Errors(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	truePath := filepath.Join(out, "prog", ".if", "0.mcfunction")
	falsePath := filepath.Join(out, "prog", ".if", "0-else.mcfunction")

	if _, err := os.Stat(truePath); err != nil {
		t.Fatalf("expected true-branch file: %v", err)
	}

	if _, err := os.Stat(falsePath); err != nil {
		t.Fatalf("expected false-branch file: %v", err)
	}

	got, err := os.ReadFile(moduleFile(out, "prog", ".__module"))
	if err != nil {
		t.Fatalf("expected module file: %v", err)
	}

	if !strings.Contains(string(got), "execute unless score") || !strings.Contains(string(got), "execute if score") {
		t.Fatalf("expected both conditional dispatch lines, got %q", got)
	}
}

func TestLower_03_FunctionCallSaveRestore(t *testing.T) {
	out := t.TempDir()
	ctx := newTestContext(t, out)

	src := "def add(a, b):\n    return a + b\n\ndef run():\n    x = 1\n    y = add(x, 2)\n"

	mod, err := ast.Parse(source.NewSourceFile("t", []byte(src)))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if err := ctx.lowerModule(mod, ctx.Base); err != nil {
		t.Fatalf("lower error: %v", err)
	}

	if errs := ctx.Errors(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	runBody, err := os.ReadFile(moduleFile(out, "prog", "run"))
	if err != nil {
		t.Fatalf("expected run function file: %v", err)
	}

	text := string(runBody)
	if !strings.Contains(text, "data modify storage") {
		t.Fatalf("expected the call-frame save phase to spill x, got %q", text)
	}

	if !strings.Contains(text, "data remove storage") {
		t.Fatalf("expected the call-frame restore phase to reload x, got %q", text)
	}

	if !strings.Contains(text, "function prog/add") {
		t.Fatalf("expected a call to the add function, got %q", text)
	}
}

func TestLower_04_MinBuiltinUsesOpMin(t *testing.T) {
	out := t.TempDir()
	ctx := newTestContext(t, out)

	mod, err := ast.Parse(source.NewSourceFile("t", []byte("x = min(1, 2)\n")))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if err := ctx.lowerModule(mod, ctx.Base); err != nil {
		t.Fatalf("lower error: %v", err)
	}

	if errs := ctx.Errors(); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	got, err := os.ReadFile(moduleFile(out, "prog", ".__module"))
	if err != nil {
		t.Fatalf("expected module file: %v", err)
	}

	if !strings.Contains(string(got), " "+OpMin+" ") {
		t.Fatalf("expected the min operator in the output, got %q", got)
	}
}

// fakeNode stands in for an AST node kind outside the supported subset, to
// exercise the unknown-node fallback without a real (unreachable) parser
// production.
type fakeNode struct{}

func (fakeNode) Span() ast.Span { return ast.Span{} }

func TestLower_05_UnknownNodeDoesNotAbortRemainder(t *testing.T) {
	out := t.TempDir()
	ctx := newTestContext(t, out)

	mod := &ast.Module{Body: []ast.Node{
		fakeNode{},
		&ast.Assign{Targets: []ast.Node{&ast.Name{ID: "x"}}, Value: &ast.Constant{Value: int64(1)}},
	}}

	if err := ctx.lowerModule(mod, ctx.Base); err != nil {
		t.Fatalf("lower error: %v", err)
	}

	errs := ctx.Errors()
	if len(errs) != 1 || errs[0].Kind != UnsupportedNode {
		t.Fatalf("expected exactly one UnsupportedNode error, got %v", errs)
	}

	got, err := os.ReadFile(moduleFile(out, "prog", ".__module"))
	if err != nil {
		t.Fatalf("expected module file: %v", err)
	}

	text := string(got)
	if !strings.Contains(text, "tellraw") {
		t.Fatalf("expected a diagnostic tellraw line for the unknown node, got %q", text)
	}

	if !strings.Contains(text, "scoreboard players set") {
		t.Fatalf("expected the remaining assignment to still compile, got %q", text)
	}
}
