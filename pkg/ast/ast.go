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

// Package ast defines the restricted syntax tree accepted by the compiler
// and a small recursive-descent parser which produces it. The subset
// supports integer arithmetic, comparisons, if/else, function definitions
// with positional/keyword/default parameters, recursion, module-level
// imports and template calls, and nothing else.
package ast

import "github.com/mcfc-lang/mcfc/pkg/util/source"

// Span locates a node within its originating source file.
type Span = source.Span

// Node is implemented by every syntax tree node.  The Lowering Engine
// (pkg/mcfc) dispatches on the concrete type via a type switch, in the same
// spirit as the Python compiler's isinstance(node, ast.X) chain and as
// go/ast's own node hierarchy.
type Node interface {
	// Span returns the region of source text this node was parsed from.
	Span() Span
}

// base is embedded by every concrete node to supply Span().
type base struct {
	span Span
}

// Span returns the source location of this node.
func (b base) Span() Span { return b.span }

// Module is the root of a parsed source file: a flat top-level statement
// list.
type Module struct {
	base
	Body []Node
}

// Alias binds an imported name, optionally under a different local name
// ("import X as Y" / "from X import Y as Z").
type Alias struct {
	Name   string
	AsName string // empty when no "as" clause was given
}

// Import is a bare "import a.b.c [as x]" statement. Multiple comma-separated
// names are legal, mirroring Python's ast.Import.
type Import struct {
	base
	Names []Alias
}

// ImportFrom is a "from a.b.c import x [as y], ..." statement.
type ImportFrom struct {
	base
	Module string
	Names  []Alias
}

// Param describes one declared function parameter. Default is nil when the
// parameter has no default value.
type Param struct {
	Name    string
	Default Node // *Constant, or nil
}

// Arguments is a function's parameter list.
type Arguments struct {
	base
	Params []Param
}

// FunctionDef declares a named function with a body.
type FunctionDef struct {
	base
	Name string
	Args *Arguments
	Body []Node
}

// Global rebinds the listed names, within the remainder of the enclosing
// function, to the root scope's cell of the same name: rebinding always
// targets the root scope, never an intermediate enclosing scope.
type Global struct {
	base
	Names []string
}

// If is a conditional with both branches always present (an absent "else"
// parses to an empty Body slice).
type If struct {
	base
	Test Node
	Body []Node
	Else []Node
}

// Name is a bare identifier reference in value (load) position.
type Name struct {
	base
	ID string
}

// Attribute is a dotted member access, e.g. "A.x".
type Attribute struct {
	base
	Value Node
	Attr  string
}

// Constant is a literal. The general Constant lowering rule accepts only
// integers and booleans; a string literal parses successfully but is only
// ever meaningful as a template-call argument, whose lowering bypasses the
// Constant rule entirely and inspects the AST node directly.
type Constant struct {
	base
	// Value is an int64, a bool, or (template-argument-only) a string.
	Value any
}

// Return yields a value from the enclosing function.
type Return struct {
	base
	Value Node
}

// BinOpKind enumerates the supported binary arithmetic operators.
type BinOpKind uint8

// Supported binary operators: + − × ÷.
const (
	Add BinOpKind = iota
	Sub
	Mul
	Div
)

// BinOp is a binary arithmetic expression.
type BinOp struct {
	base
	Left  Node
	Op    BinOpKind
	Right Node
}

// UnaryOpKind enumerates the supported unary operators.
type UnaryOpKind uint8

// Supported unary operators.
const (
	Not UnaryOpKind = iota
	USub
)

// UnaryOp is a unary expression.
type UnaryOp struct {
	base
	Op      UnaryOpKind
	Operand Node
}

// CompareOp enumerates the supported comparison operators. Chained
// comparisons (a < b < c) are outside the supported subset: exactly one
// comparator is supported per Compare node.
type CompareOp uint8

// Supported comparison operators.
const (
	Eq CompareOp = iota
	NotEq
	Gt
	Lt
	GtE
	LtE
)

// Compare is a single binary comparison.
type Compare struct {
	base
	Left  Node
	Op    CompareOp
	Right Node
}

// Expr is an expression evaluated purely for side effects (typically a Call).
type Expr struct {
	base
	Value Node
}

// Assign binds the evaluated Value to one or more targets, each a Name or
// Attribute in store position.
type Assign struct {
	base
	Targets []Node
	Value   Node
}

// Keyword is a "name=value" call argument.
type Keyword struct {
	Arg   string
	Value Node
}

// Call invokes a callee resolved by name or attribute access, with
// positional and keyword arguments.
type Call struct {
	base
	Func     Node
	Args     []Node
	Keywords []Keyword
}
