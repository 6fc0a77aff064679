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
package templates

import (
	"fmt"

	"github.com/mcfc-lang/mcfc/pkg/ast"
	"github.com/mcfc-lang/mcfc/pkg/template"
	"github.com/mcfc-lang/mcfc/pkg/textcomponent"
)

func init() {
	template.RegisterModule("debug", template.Module{Init: registerDebug})
}

func registerDebug() error {
	template.Register("debug.print", debugPrint)

	return nil
}

// jsonText renders a plain string as a Minecraft JSON text component,
// collapsing any marshal failure (impossible for a plain Go string) into an
// empty literal rather than surfacing a second error path to callers.
func jsonText(text string) string {
	s, err := textcomponent.Text(text).JSON()
	if err != nil {
		return `{"text":""}`
	}

	return s
}

// debugPrint renders its single argument to chat: a string literal verbatim,
// or a variable's live score when given a bare name. It never appears in a
// compiled datapack unless the source program itself calls debug.print.
func debugPrint(positional []ast.Node, keywords []ast.Keyword, currentNS string, resolve template.Resolver) (string, error) {
	node, ok := bindArg(positional, keywords, 0, "value")
	if !ok {
		return "", fmt.Errorf("debug.print missing required argument \"value\"")
	}

	if name, isName := node.(*ast.Name); isName {
		cell, prefix, ok := resolve.ResolveCell(name.ID, currentNS)
		if !ok {
			return "", fmt.Errorf("debug.print: %q does not name a variable", name.ID)
		}

		component := textcomponent.ScoreValue(cell.Name, cell.Objective)

		line, err := textcomponent.Tellraw("@a", component)
		if err != nil {
			return "", err
		}

		return prefix + line + "\n", nil
	}

	if s, ok := constString(node); ok {
		line, err := textcomponent.Tellraw("@a", textcomponent.Text(s))
		if err != nil {
			return "", err
		}

		return line + "\n", nil
	}

	if n, ok := constInt(node); ok {
		line, err := textcomponent.Tellraw("@a", textcomponent.Text(fmt.Sprintf("%d", n)))
		if err != nil {
			return "", err
		}

		return line + "\n", nil
	}

	return "", fmt.Errorf("debug.print argument must be a variable, string literal or integer literal")
}
