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
	"github.com/mcfc-lang/mcfc/pkg/ast"
	"github.com/mcfc-lang/mcfc/pkg/util"
)

// ParamDefault is a resolved parameter default. A parameter can have
// no default (required), an integer default, or the "unnecessary" sentinel:
// a default reserved for built-in/template signatures (never expressible by
// source syntax, which only supports integer-literal defaults) meaning a
// missing argument in that slot is silently dropped rather than defaulted.
type ParamDefault struct {
	unnecessary bool
	value       int64
}

// IntDefault builds an ordinary integer default value.
func IntDefault(v int64) ParamDefault { return ParamDefault{value: v} }

// Unnecessary is the sentinel default meaning "skip this slot if absent".
var Unnecessary = ParamDefault{unnecessary: true}

// IsUnnecessary reports whether this is the "unnecessary" sentinel.
func (d ParamDefault) IsUnnecessary() bool { return d.unnecessary }

// Value returns the integer default value. Meaningless if IsUnnecessary.
func (d ParamDefault) Value() int64 { return d.value }

// ParamSignature is one parameter slot of a resolved function signature.
type ParamSignature struct {
	Name    string
	Default util.Option[ParamDefault] // empty means required (no default)
}

// Signature is a resolved, ordered parameter list for a callable, either a
// user FunctionDef or a built-in.
type Signature struct {
	Params []ParamSignature
}

// BuildSignature resolves a FunctionDef's AST parameter list into a
// Signature. Defaults parsed directly from source are always integer (or
// boolean, coerced to 0/1) literals, per the grammar; any other default
// expression is rejected with UnsupportedDefault: only integer-literal
// defaults are supported.
func BuildSignature(params []ast.Param) (*Signature, error) {
	sig := &Signature{Params: make([]ParamSignature, 0, len(params))}

	for _, p := range params {
		entry := ParamSignature{Name: p.Name}

		if p.Default != nil {
			d, err := resolveLiteralDefault(p.Name, p.Default)
			if err != nil {
				return nil, err
			}

			entry.Default = util.Some(d)
		}

		sig.Params = append(sig.Params, entry)
	}

	return sig, nil
}

func resolveLiteralDefault(name string, node ast.Node) (ParamDefault, error) {
	c, ok := node.(*ast.Constant)
	if !ok {
		return ParamDefault{}, newError(UnsupportedDefault, "parameter %q has a non-literal default", name)
	}

	switch v := c.Value.(type) {
	case int64:
		return IntDefault(v), nil
	case bool:
		if v {
			return IntDefault(1), nil
		}

		return IntDefault(0), nil
	default:
		return ParamDefault{}, newError(UnsupportedDefault, "parameter %q has an unsupported default type", name)
	}
}

// ArgBinding pairs a resolved parameter with the AST expression to evaluate
// for it at a call site. Skipped is true for an absent argument whose
// parameter default is Unnecessary: no value is evaluated and no command
// should be emitted for this slot.
type ArgBinding struct {
	Param   string
	Value   ast.Node
	Skipped bool
}

// BindArguments pairs caller-supplied positional and keyword arguments
// against a callee's signature. Positional arguments bind by position;
// keyword arguments bind by name; surplus arguments (too many positionals,
// an unknown keyword, or a slot bound twice) fail ExtraArgument; a
// required slot left unfilled fails
// MissingArgument; a slot defaulting to Unnecessary and left unfilled is
// returned with Skipped set.
func BindArguments(sig *Signature, positional []ast.Node, keywords []ast.Keyword) ([]ArgBinding, error) {
	if len(positional) > len(sig.Params) {
		return nil, newError(ExtraArgument, "too many positional arguments: got %d, want at most %d", len(positional), len(sig.Params))
	}

	bound := make(map[string]ast.Node, len(sig.Params))

	for i, v := range positional {
		bound[sig.Params[i].Name] = v
	}

	known := make(map[string]bool, len(sig.Params))
	for _, p := range sig.Params {
		known[p.Name] = true
	}

	for _, kw := range keywords {
		if !known[kw.Arg] {
			return nil, newError(ExtraArgument, "unknown keyword argument %q", kw.Arg)
		}

		if _, already := bound[kw.Arg]; already {
			return nil, newError(ExtraArgument, "argument %q supplied both positionally and by keyword", kw.Arg)
		}

		bound[kw.Arg] = kw.Value
	}

	out := make([]ArgBinding, 0, len(sig.Params))

	for _, p := range sig.Params {
		if v, ok := bound[p.Name]; ok {
			out = append(out, ArgBinding{Param: p.Name, Value: v})
			continue
		}

		if p.Default.IsEmpty() {
			return nil, newError(MissingArgument, "missing required argument %q", p.Name)
		}

		def := p.Default.Unwrap()

		if def.IsUnnecessary() {
			out = append(out, ArgBinding{Param: p.Name, Skipped: true})
			continue
		}

		out = append(out, ArgBinding{Param: p.Name, Value: &ast.Constant{Value: def.Value()}})
	}

	return out, nil
}
