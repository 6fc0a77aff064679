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
	"testing"
)

func TestSymbolTable_00(t *testing.T) {
	root := NewRootNamespace("prog")
	table := NewSymbolTable(nil)

	table.InitRoot(root, KindModule)
	table.Set("x", root.Child("x"), root, KindVariable)

	got, defining, err := table.Get("x", root, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !got.Equal(root.Child("x")) {
		t.Fatalf("expected %s, got %s", root.Child("x"), got)
	}

	if !defining.Equal(root) {
		t.Fatalf("expected defining scope %s, got %s", root, defining)
	}
}

func TestSymbolTable_01_NotFound(t *testing.T) {
	root := NewRootNamespace("prog")
	table := NewSymbolTable(nil)

	if _, _, err := table.Get("missing", root, false); err == nil {
		t.Fatalf("expected NameNotFound error")
	}
}

func TestSymbolTable_02_ShadowingClosestWins(t *testing.T) {
	root := NewRootNamespace("prog")
	fn := root.Child("f")
	table := NewSymbolTable(nil)

	table.Set("x", root.Child("x"), root, KindVariable)
	table.Set("x", fn.Child("x"), fn, KindVariable)

	got, defining, err := table.Get("x", fn, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !got.Equal(fn.Child("x")) {
		t.Fatalf("expected innermost binding %s, got %s", fn.Child("x"), got)
	}

	if !defining.Equal(fn) {
		t.Fatalf("expected defining scope %s, got %s", fn, defining)
	}
}

func TestSymbolTable_03_AttributeDereference(t *testing.T) {
	root := NewRootNamespace("prog")
	mod := NewRootNamespace("bossbar")
	table := NewSymbolTable(nil)

	table.Set("show", mod.Child("show"), mod, KindFunction)
	table.SetAttribute("show_bar", mod, "show", root)

	resolved, _, err := table.Get("show_bar", root, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resolved.Equal(mod.Child("show")) {
		t.Fatalf("expected dereferenced target %s, got %s", mod.Child("show"), resolved)
	}

	raw, _, err := table.Get("show_bar", root, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !raw.Equal(mod) {
		t.Fatalf("expected raw attribute target %s, got %s", mod, raw)
	}
}

func TestSymbolTable_04_OverwriteVariableSilent(t *testing.T) {
	root := NewRootNamespace("prog")
	table := NewSymbolTable(nil)

	table.Set("x", root.Child("x"), root, KindVariable)
	table.Set("x", root.Child("x2"), root, KindFunction)

	got, _, err := table.Get("x", root, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !got.Equal(root.Child("x2")) {
		t.Fatalf("expected overwritten binding %s, got %s", root.Child("x2"), got)
	}
}
