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
	"strings"
	"testing"
)

func TestCommand_00_AssignConstOp(t *testing.T) {
	a := Cell{Name: "a1", Objective: "Vars"}
	b := Cell{Name: "a2", Objective: "Vars"}

	if got := AssignCell(a, b); got != "scoreboard players operation a1 Vars = a2 Vars\n" {
		t.Fatalf("unexpected assign: %q", got)
	}

	if got := ConstCell(a, 42); got != "scoreboard players set a1 Vars 42\n" {
		t.Fatalf("unexpected const: %q", got)
	}

	if got := OpCell(a, OpAdd, b); got != "scoreboard players operation a1 Vars += a2 Vars\n" {
		t.Fatalf("unexpected op: %q", got)
	}

	if got := ResetCell(a); got != "scoreboard players reset a1 Vars\n" {
		t.Fatalf("unexpected reset: %q", got)
	}
}

func TestCommand_01_CheckScoreStripsInnerNewline(t *testing.T) {
	a := Cell{Name: "a1", Objective: "Temp"}
	b := Cell{Name: "a2", Objective: "Flags"}

	inner := ConstCell(a, 0)
	got := CheckScore(KindUnless, a, CmpEq, b, inner)

	want := "execute unless score a1 Temp = a2 Flags run scoreboard players set a1 Temp 0\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCommand_02_CommentNonDebugIsNoop(t *testing.T) {
	if got := Comment(false, "tag", KV{"k", "v"}); got != "#\n" {
		t.Fatalf("expected no-op comment, got %q", got)
	}

	got := Comment(true, "Attribute", KV{Key: "base", Value: "prog:m"}, KV{Key: "attr", Value: "x"})
	if !strings.Contains(got, "Attribute") || !strings.Contains(got, "base=prog:m") {
		t.Fatalf("unexpected debug comment: %q", got)
	}
}

func TestCommand_03_DebugTextNonDebugIsNoop(t *testing.T) {
	line, err := DebugText(false, "tip")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if line != "#\n" {
		t.Fatalf("expected no-op line, got %q", line)
	}
}

func TestCommand_04_DebugObjective(t *testing.T) {
	line, err := DebugObjective(true, "x", "Vars", "a1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(line, "tellraw @a [") {
		t.Fatalf("unexpected line: %s", line)
	}
}

func TestCommand_05_DataStackOps(t *testing.T) {
	if got := DataAppend("mcfc:state", "LocalVars", "Temp"); got != "data modify storage mcfc:state LocalVars append from storage mcfc:state Temp\n" {
		t.Fatalf("unexpected append: %q", got)
	}

	if got := DataPopLast("mcfc:state", "LocalVars"); got != "data remove storage mcfc:state LocalVars[-1]\n" {
		t.Fatalf("unexpected pop: %q", got)
	}
}

func TestCommand_06_StoreScoreStorageBridge(t *testing.T) {
	a := Cell{Name: "a1", Objective: "Temp"}

	want := "execute store result storage mcfc:state Temp int 1 run scoreboard players get a1 Temp\n"
	if got := StoreScoreToStorage("mcfc:state", "Temp", a); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	want = "execute store result score a1 Temp run data get storage mcfc:state LocalVars[-1]\n"
	if got := StoreStorageToScore(a, "mcfc:state", "LocalVars[-1]"); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
