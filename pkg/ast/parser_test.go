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
package ast

import (
	"testing"

	"github.com/mcfc-lang/mcfc/pkg/util/source"
)

func parse(t *testing.T, text string) *Module {
	t.Helper()

	file := source.NewSourceFile("test.src", []byte(text))

	mod, err := Parse(file)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	return mod
}

func TestParser_00(t *testing.T) {
	mod := parse(t, "x = 1\n")

	if len(mod.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(mod.Body))
	}

	assign, ok := mod.Body[0].(*Assign)
	if !ok {
		t.Fatalf("expected *Assign, got %T", mod.Body[0])
	}

	name, ok := assign.Targets[0].(*Name)
	if !ok || name.ID != "x" {
		t.Fatalf("expected target Name(x), got %#v", assign.Targets[0])
	}

	c, ok := assign.Value.(*Constant)
	if !ok || c.Value != int64(1) {
		t.Fatalf("expected Constant(1), got %#v", assign.Value)
	}
}

func TestParser_01(t *testing.T) {
	mod := parse(t, "a = b = 2\n")

	assign, ok := mod.Body[0].(*Assign)
	if !ok {
		t.Fatalf("expected *Assign, got %T", mod.Body[0])
	}

	if len(assign.Targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(assign.Targets))
	}
}

func TestParser_02(t *testing.T) {
	mod := parse(t, "def add(x, y=1):\n    return x + y\n")

	fn, ok := mod.Body[0].(*FunctionDef)
	if !ok {
		t.Fatalf("expected *FunctionDef, got %T", mod.Body[0])
	}

	if fn.Name != "add" {
		t.Fatalf("expected name add, got %s", fn.Name)
	}

	if len(fn.Args.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Args.Params))
	}

	if fn.Args.Params[1].Default == nil {
		t.Fatalf("expected default on second param")
	}

	ret, ok := fn.Body[0].(*Return)
	if !ok {
		t.Fatalf("expected *Return, got %T", fn.Body[0])
	}

	bin, ok := ret.Value.(*BinOp)
	if !ok || bin.Op != Add {
		t.Fatalf("expected BinOp(Add), got %#v", ret.Value)
	}
}

func TestParser_03(t *testing.T) {
	mod := parse(t, "if x > 0:\n    y = 1\nelse:\n    y = 2\n")

	ifs, ok := mod.Body[0].(*If)
	if !ok {
		t.Fatalf("expected *If, got %T", mod.Body[0])
	}

	cmp, ok := ifs.Test.(*Compare)
	if !ok || cmp.Op != Gt {
		t.Fatalf("expected Compare(Gt), got %#v", ifs.Test)
	}

	if len(ifs.Body) != 1 || len(ifs.Else) != 1 {
		t.Fatalf("expected one statement per branch, got %d/%d", len(ifs.Body), len(ifs.Else))
	}
}

func TestParser_04(t *testing.T) {
	mod := parse(t, "from bossbar import show as show_bar\n")

	imp, ok := mod.Body[0].(*ImportFrom)
	if !ok {
		t.Fatalf("expected *ImportFrom, got %T", mod.Body[0])
	}

	if imp.Module != "bossbar" {
		t.Fatalf("expected module bossbar, got %s", imp.Module)
	}

	if len(imp.Names) != 1 || imp.Names[0].Name != "show" || imp.Names[0].AsName != "show_bar" {
		t.Fatalf("unexpected alias %#v", imp.Names)
	}
}

func TestParser_05(t *testing.T) {
	mod := parse(t, "bossbar.show(title=1, id=2)\n")

	expr, ok := mod.Body[0].(*Expr)
	if !ok {
		t.Fatalf("expected *Expr, got %T", mod.Body[0])
	}

	call, ok := expr.Value.(*Call)
	if !ok {
		t.Fatalf("expected *Call, got %T", expr.Value)
	}

	attr, ok := call.Func.(*Attribute)
	if !ok || attr.Attr != "show" {
		t.Fatalf("expected Attribute(show), got %#v", call.Func)
	}

	if len(call.Keywords) != 2 {
		t.Fatalf("expected 2 keyword args, got %d", len(call.Keywords))
	}
}

func TestParser_06(t *testing.T) {
	mod := parse(t, "global counter\n")

	g, ok := mod.Body[0].(*Global)
	if !ok {
		t.Fatalf("expected *Global, got %T", mod.Body[0])
	}

	if len(g.Names) != 1 || g.Names[0] != "counter" {
		t.Fatalf("unexpected names %#v", g.Names)
	}
}

func TestParser_07(t *testing.T) {
	mod := parse(t, "import a.b.c\n")

	imp, ok := mod.Body[0].(*Import)
	if !ok {
		t.Fatalf("expected *Import, got %T", mod.Body[0])
	}

	if imp.Names[0].Name != "a.b.c" {
		t.Fatalf("expected dotted name a.b.c, got %s", imp.Names[0].Name)
	}
}

func TestParser_08(t *testing.T) {
	mod := parse(t, "x = not (a == b)\n")

	assign := mod.Body[0].(*Assign)

	un, ok := assign.Value.(*UnaryOp)
	if !ok || un.Op != Not {
		t.Fatalf("expected UnaryOp(Not), got %#v", assign.Value)
	}

	if _, ok := un.Operand.(*Compare); !ok {
		t.Fatalf("expected parenthesised Compare operand, got %#v", un.Operand)
	}
}
