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

import "testing"

func TestNameEncoder_00_IdempotentAndNew(t *testing.T) {
	e := NewNameEncoder()

	a, isNew := e.Encode("prog:x", "Vars")
	if !isNew {
		t.Fatalf("expected first encode to be new")
	}

	b, isNew := e.Encode("prog:x", "Vars")
	if isNew {
		t.Fatalf("expected second encode to reuse id")
	}

	if a != b {
		t.Fatalf("expected stable id, got %q then %q", a, b)
	}
}

func TestNameEncoder_01_DistinctPerObjective(t *testing.T) {
	e := NewNameEncoder()

	vars, _ := e.Encode("prog:x", "Vars")
	args, _ := e.Encode("prog:x", "Args")

	if vars != args {
		t.Fatalf("expected first id in each objective to coincide (independent counters), got %q vs %q", vars, args)
	}

	if !e.IsEncoded("prog:x", "Vars") || !e.IsEncoded("prog:x", "Args") {
		t.Fatalf("expected both objectives to report encoded")
	}
}

func TestNameEncoder_02_Uniqueness(t *testing.T) {
	e := NewNameEncoder()

	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		short, _ := e.Encode(string(rune('a'+i%26))+string(rune(i)), "Vars")
		if seen[short] {
			t.Fatalf("duplicate short id %q at iteration %d", short, i)
		}

		seen[short] = true
	}
}

func TestNameEncoder_03_ResetRequiresEncoded(t *testing.T) {
	e := NewNameEncoder()

	if err := e.Reset("prog:x", "Vars"); err == nil {
		t.Fatalf("expected UnknownCell error for unencoded cell")
	}

	e.Encode("prog:x", "Vars")

	if err := e.Reset("prog:x", "Vars"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNameEncoder_04_DecodeRoundTrip(t *testing.T) {
	e := NewNameEncoder()

	short, _ := e.Encode("prog:x", "Vars")

	name, ok := e.Decode(short, "Vars")
	if !ok || name != "prog:x" {
		t.Fatalf("expected round-trip to prog:x, got %q, %v", name, ok)
	}
}
