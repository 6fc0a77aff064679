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
	"fmt"
	"strings"

	"github.com/mcfc-lang/mcfc/pkg/textcomponent"
)

// Cell addresses a single scoreboard holder on a given (already short-id
// encoded) objective.
type Cell struct {
	Name      string
	Objective string
}

// String renders a cell in the engine's "<holder> <objective>" form.
func (c Cell) String() string {
	return c.Name + " " + c.Objective
}

// Binary scoreboard operators.
const (
	OpAdd  = "+="
	OpSub  = "-="
	OpMul  = "*="
	OpDiv  = "/="
	OpMod  = "%="
	OpMin  = "<"
	OpMax  = ">"
	OpSwap = "><"
)

// Comparators for CheckScore.
const (
	CmpLt = "<"
	CmpLe = "<="
	CmpEq = "="
	CmpGe = ">="
	CmpGt = ">"
)

// Conditional kinds for CheckScore.
const (
	KindIf     = "if"
	KindUnless = "unless"
)

// AssignCell emits "scoreboard players operation a = b".
func AssignCell(a, b Cell) string {
	return fmt.Sprintf("scoreboard players operation %s = %s\n", a, b)
}

// ConstCell emits "scoreboard players set a k".
func ConstCell(a Cell, k int64) string {
	return fmt.Sprintf("scoreboard players set %s %d\n", a, k)
}

// OpCell emits a binary scoreboard operation "a ⊕= b".
func OpCell(a Cell, op string, b Cell) string {
	return fmt.Sprintf("scoreboard players operation %s %s %s\n", a, op, b)
}

// ResetCell emits "scoreboard players reset a".
func ResetCell(a Cell) string {
	return fmt.Sprintf("scoreboard players reset %s\n", a)
}

// CallFunction emits a function-invocation command for a slash-separated
// path (without the .mcfunction extension).
func CallFunction(path string) string {
	return fmt.Sprintf("function %s\n", path)
}

// CheckScore emits "execute <kind> score a cmp b run <inner>". inner is
// embedded verbatim (any trailing newline stripped), since only the
// outermost command of a composed execute chain carries one.
func CheckScore(kind string, a Cell, cmp string, b Cell, inner string) string {
	inner = strings.TrimSuffix(inner, "\n")
	return fmt.Sprintf("execute %s score %s %s %s run %s\n", kind, a, cmp, b, inner)
}

// DataAppend emits "data modify storage <root> <path> append from storage
// <root> <src>", used by the Call-Frame Manager's save phase.
func DataAppend(root, path, src string) string {
	return fmt.Sprintf("data modify storage %s %s append from storage %s %s\n", root, path, root, src)
}

// DataPopLast emits "data remove storage <root> <path>[-1]", used by the
// Call-Frame Manager's restore phase once the tail element has been read.
func DataPopLast(root, path string) string {
	return fmt.Sprintf("data remove storage %s %s[-1]\n", root, path)
}

// StoreScoreToStorage emits "execute store result storage <root> <path> int
// 1 run scoreboard players get a", the primitive the Call-Frame Manager's
// save phase uses to spill a live cell's value into the Temp scratch path
// before it is appended onto a stack.
func StoreScoreToStorage(root, path string, a Cell) string {
	return fmt.Sprintf("execute store result storage %s %s int 1 run scoreboard players get %s\n", root, path, a)
}

// StoreStorageToScore emits "execute store result score a run data get
// storage <root> <path>", the inverse of StoreScoreToStorage used by the
// restore phase to reload a popped frame value back onto the scoreboard.
func StoreStorageToScore(a Cell, root, path string) string {
	return fmt.Sprintf("execute store result score %s run data get storage %s %s\n", a, root, path)
}

// KV is one key/value pair rendered by Comment, kept in an ordered slice
// (rather than a map) so comment text is reproducible across runs.
type KV struct {
	Key   string
	Value string
}

// Comment renders a structured debug comment. In non-debug mode it still returns a syntactically valid (empty) comment
// line rather than nothing, so line-oriented tooling never sees a gap.
func Comment(debug bool, tag string, kv ...KV) string {
	if !debug {
		return "#\n"
	}

	var b strings.Builder

	b.WriteString("# ")
	b.WriteString(tag)

	for _, pair := range kv {
		fmt.Fprintf(&b, " %s=%s", pair.Key, pair.Value)
	}

	b.WriteString("\n")

	return b.String()
}

// DebugText renders a /tellraw line showing tip followed by the given
// components. In non-debug mode it is a no-op that still returns a
// syntactically valid comment line.
func DebugText(debug bool, tip string, components ...textcomponent.Component) (string, error) {
	if !debug {
		return "#\n", nil
	}

	all := append([]textcomponent.Component{textcomponent.Text(tip + ": ")}, components...)

	line, err := textcomponent.Tellraw("@a", all...)
	if err != nil {
		return "", err
	}

	return line + "\n", nil
}

// DebugObjective renders a /tellraw line showing the live value of a
// scoreboard cell, and optionally a second "from" cell alongside it for
// before/after comparisons.
func DebugObjective(debug bool, tip, objective, name string, from *Cell) (string, error) {
	if !debug {
		return "#\n", nil
	}

	components := []textcomponent.Component{
		textcomponent.Text(tip + ": "),
		textcomponent.ScoreValue(name, objective),
	}

	if from != nil {
		components = append(components, textcomponent.Text(" (was "), textcomponent.ScoreValue(from.Name, from.Objective), textcomponent.Text(")"))
	}

	line, err := textcomponent.Tellraw("@a", components...)
	if err != nil {
		return "", err
	}

	return line + "\n", nil
}
