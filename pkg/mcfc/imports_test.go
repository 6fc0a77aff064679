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
	"testing"

	"github.com/mcfc-lang/mcfc/pkg/ast"
	"github.com/mcfc-lang/mcfc/pkg/template"
)

func writeSource(t *testing.T, root, name, body string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(root, name+SourceExt), []byte(body), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
}

func TestImport_00_UserModuleEachTopLevelSegmentOwnRoot(t *testing.T) {
	srcRoot := t.TempDir()
	writeSource(t, srcRoot, "a", "x = 1\n")
	writeSource(t, srcRoot, "b", "import a\ny = a.x\n")

	ctx := NewCompilationContext(NewRootNamespace("prog"), srcRoot, "", NewWriter(t.TempDir()), false, nil)
	ctx.Symbols.InitRoot(ctx.Base, KindModule)

	ns, kind, err := ctx.Import("b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if kind != importUserModule {
		t.Fatalf("expected importUserModule, got %v", kind)
	}

	if !ns.Equal(NewRootNamespace("b")) {
		t.Fatalf("expected b's own root namespace, got %s", ns)
	}

	aRoot := NewRootNamespace("a")

	if _, _, err := ctx.Symbols.Get("x", aRoot, false); err != nil {
		t.Fatalf("expected a's x to be registered: %v", err)
	}

	if errs := ctx.Errors(); len(errs) != 0 {
		t.Fatalf("unexpected lowering errors: %v", errs)
	}
}

func TestImport_01_ReimportIsNoop(t *testing.T) {
	srcRoot := t.TempDir()
	writeSource(t, srcRoot, "a", "x = 1\n")

	ctx := NewCompilationContext(NewRootNamespace("prog"), srcRoot, "", NewWriter(t.TempDir()), false, nil)
	ctx.Symbols.InitRoot(ctx.Base, KindModule)

	first, _, err := ctx.Import("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, _, err := ctx.Import("a")
	if err != nil {
		t.Fatalf("unexpected error on re-import: %v", err)
	}

	if !first.Equal(second) {
		t.Fatalf("expected re-import to return the same namespace")
	}
}

func TestImport_02_TemplateModuleNoModuleFileInvoked(t *testing.T) {
	defer template.Reset()

	template.RegisterModule("greeter", template.Module{Init: func() error {
		template.Register("greeter.hello", func(_ []ast.Node, _ []ast.Keyword, _ string, _ template.Resolver) (string, error) {
			return "", nil
		})
		return nil
	}})

	srcRoot := t.TempDir()

	ctx := NewCompilationContext(NewRootNamespace("prog"), srcRoot, "", NewWriter(t.TempDir()), false, nil)
	ctx.Symbols.InitRoot(ctx.Base, KindModule)

	_, kind, err := ctx.Import("greeter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if kind != importTemplate {
		t.Fatalf("expected importTemplate, got %v", kind)
	}
}

func TestImport_03_NotFound(t *testing.T) {
	ctx := NewCompilationContext(NewRootNamespace("prog"), t.TempDir(), "", NewWriter(t.TempDir()), false, nil)
	ctx.Symbols.InitRoot(ctx.Base, KindModule)

	if _, _, err := ctx.Import("nosuch"); err == nil {
		t.Fatalf("expected ImportNotFound error")
	}
}
