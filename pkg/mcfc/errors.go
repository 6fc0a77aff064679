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

	"github.com/mcfc-lang/mcfc/pkg/util/source"
)

// Kind identifies a class of compilation failure. It is a classification,
// not a Go error type hierarchy: every CompileError carries one regardless
// of which Go type raised it.
type Kind uint8

const (
	// UnsupportedNode indicates an AST node kind outside the supported subset.
	UnsupportedNode Kind = iota
	// UnsupportedOperator indicates a BinOp/UnaryOp operator outside the supported subset.
	UnsupportedOperator
	// UnsupportedConstant indicates a constant other than an integer or boolean literal.
	UnsupportedConstant
	// UnsupportedCompare indicates a multi-way (chained) comparison.
	UnsupportedCompare
	// UnsupportedDefault indicates a non-integer-literal parameter default.
	UnsupportedDefault
	// UnsupportedImport indicates a relative import.
	UnsupportedImport
	// NameNotFound indicates symbol resolution failed to find a binding.
	NameNotFound
	// MissingArgument indicates a required call argument was not supplied.
	MissingArgument
	// ExtraArgument indicates more positional arguments were supplied than parameters exist.
	ExtraArgument
	// UnknownCell indicates a reset/use of a cell that was never allocated via the encoder.
	UnknownCell
	// TemplateInitFailed indicates a template module's Init returned an error.
	TemplateInitFailed
	// ImportNotFound indicates neither the source root nor the template root contained a dotted name.
	ImportNotFound
	// IOError indicates a filesystem failure while reading source or writing output.
	IOError
)

// String renders a human-readable name for a Kind, used in CompileError.Error.
func (k Kind) String() string {
	switch k {
	case UnsupportedNode:
		return "UnsupportedNode"
	case UnsupportedOperator:
		return "UnsupportedOperator"
	case UnsupportedConstant:
		return "UnsupportedConstant"
	case UnsupportedCompare:
		return "UnsupportedCompare"
	case UnsupportedDefault:
		return "UnsupportedDefault"
	case UnsupportedImport:
		return "UnsupportedImport"
	case NameNotFound:
		return "NameNotFound"
	case MissingArgument:
		return "MissingArgument"
	case ExtraArgument:
		return "ExtraArgument"
	case UnknownCell:
		return "UnknownCell"
	case TemplateInitFailed:
		return "TemplateInitFailed"
	case ImportNotFound:
		return "ImportNotFound"
	case IOError:
		return "IOError"
	default:
		return "UnknownError"
	}
}

// CompileError is a structured failure raised anywhere in the compiler: a
// Kind classifies the failure, an optional Span locates it in the offending
// source file, and Namespaces records the stack of enclosing namespaces
// active when the error was raised, for the driver to print alongside it.
type CompileError struct {
	Kind       Kind
	Message    string
	Span       *source.Span
	File       *source.File
	Namespaces []Namespace
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Span == nil || e.File == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}

	err := e.File.SyntaxError(*e.Span, e.Message)

	return fmt.Sprintf("%s: %s", e.Kind, err.Error())
}

// newError constructs a location-less CompileError of the given kind.
func newError(kind Kind, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// withNamespaces attaches the enclosing-namespace stack to an error and
// returns it, for use when propagating an error up through the recursive
// lowering walk.
func (e *CompileError) withNamespaces(stack []Namespace) *CompileError {
	e.Namespaces = append([]Namespace(nil), stack...)
	return e
}

// withSpan attaches source location information to an error.
func (e *CompileError) withSpan(file *source.File, span source.Span) *CompileError {
	e.File = file
	e.Span = &span

	return e
}
