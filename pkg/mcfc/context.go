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

	"github.com/sirupsen/logrus"

	"github.com/mcfc-lang/mcfc/pkg/ast"
	"github.com/mcfc-lang/mcfc/pkg/template"
	"github.com/mcfc-lang/mcfc/pkg/util/source"
)

// Objectives referenced by the core: logical names, renameable by an
// implementation but fixed here for determinism across a compilation.
const (
	ObjArgs       = "Args"
	ObjVars       = "Vars"
	ObjTemp       = "Temp"
	ObjFlags      = "Flags"
	ObjFuncResult = "FuncResult"
	ObjInput      = "Input"
)

// Storage paths: a transient scratch path, plus the two stacks the
// Call-Frame Manager's save/restore protocol spills to and reloads from.
const (
	StorageTemp      = "Temp"
	StorageLocalVars = "LocalVars"
	StorageLocalTemp = "LocalTemp"
)

// Flags cells pre-populated at the start of every compilation: the Flags
// objective must carry at least FALSE=0, TRUE=1, NEG=-1.
const (
	FlagFalse = "FALSE"
	FlagTrue  = "TRUE"
	FlagNeg   = "NEG"
)

// DecimalPrecision is a fixed-point scale factor for templates needing
// fractional values; it is pre-populated on the Flags objective as "DECIMAL".
// The built-in bossbar and debug templates take integers only and do not use
// it.
const (
	FlagDecimal      = "DECIMAL"
	DecimalPrecision = 1000
)

// CompilationContext is the single explicit value threading all process-wide
// compiler state through the recursive lowering walk, rather than hiding any
// of it behind package-level globals. It aggregates the Symbol Table, Name
// Encoder, Call-Frame Manager and Import Resolver state, plus the
// diagnostics needed to report the stack of enclosing namespaces active when
// an error was raised.
type CompilationContext struct {
	Symbols  *SymbolTable
	Encoder  *NameEncoder
	Frames   *FrameManager
	Imports  *Importer
	Writer   *Writer
	Base     Namespace
	Debug    bool
	Log      *logrus.Logger

	signatures  map[string]*Signature
	stack       []Namespace
	errors      []*CompileError
	nextUID     uint64
	currentFile *source.File
}

// NewCompilationContext constructs a fresh compiler context rooted at base,
// writing emitted files under writer.
func NewCompilationContext(base Namespace, sourceRoot, templateRoot string, writer *Writer, debug bool, log *logrus.Logger) *CompilationContext {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &CompilationContext{
		Symbols:    NewSymbolTable(log),
		Encoder:    NewNameEncoder(),
		Frames:     NewFrameManager(),
		Imports:    NewImporter(sourceRoot, templateRoot),
		Writer:     writer,
		Base:       base,
		Debug:      debug,
		Log:        log,
		signatures: make(map[string]*Signature),
	}
}

// NextUID returns the next value of the process-wide monotonic counter used
// to name if-branch files and fresh per-operation temporaries, so that
// allocation counters and block uids stay reproducible across runs on
// identical inputs.
func (ctx *CompilationContext) NextUID() uint64 {
	uid := ctx.nextUID
	ctx.nextUID++

	return uid
}

// pushNamespace records ns as the innermost currently-active scope, for the
// enclosing-namespace stack attached to any error raised beneath it.
func (ctx *CompilationContext) pushNamespace(ns Namespace) {
	ctx.stack = append(ctx.stack, ns)
}

func (ctx *CompilationContext) popNamespace() {
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
}

// report records a non-aborting compilation failure: source-subset and
// name/argument errors abort compilation of the current unit but must not
// prevent the remainder of the program from compiling. The current
// enclosing-namespace stack is attached to the error.
func (ctx *CompilationContext) report(err error) {
	ce, ok := err.(*CompileError)
	if !ok {
		ce = newError(IOError, "%s", err.Error())
	}

	ce.withNamespaces(ctx.stack)
	ctx.errors = append(ctx.errors, ce)
}

// nodeError constructs a CompileError located at node's span within whichever
// source file is currently being lowered.
func (ctx *CompilationContext) nodeError(node ast.Node, kind Kind, format string, args ...any) *CompileError {
	e := newError(kind, format, args...)
	return ctx.attachSpan(e, node)
}

// spanOf attaches node's location to err if err is a CompileError that does
// not already carry one, for propagating a location onto an error raised
// below the point where the offending node is known (e.g. a symbol-table
// lookup failure surfacing back up to the name reference that triggered it).
func (ctx *CompilationContext) spanOf(err error, node ast.Node) error {
	ce, ok := err.(*CompileError)
	if !ok || ce.Span != nil {
		return err
	}

	return ctx.attachSpan(ce, node)
}

func (ctx *CompilationContext) attachSpan(ce *CompileError, node ast.Node) *CompileError {
	if ctx.currentFile == nil {
		return ce
	}

	return ce.withSpan(ctx.currentFile, node.Span())
}

// Errors returns every CompileError accumulated so far.
func (ctx *CompilationContext) Errors() []*CompileError {
	return ctx.errors
}

// signature records a resolved function signature keyed by its namespace, so
// later call sites can bind arguments against it.
func (ctx *CompilationContext) signature(fn Namespace) (*Signature, bool) {
	sig, ok := ctx.signatures[fn.String()]
	return sig, ok
}

func (ctx *CompilationContext) setSignature(fn Namespace, sig *Signature) {
	ctx.signatures[fn.String()] = sig
}

// freshCell mints a namespace-scoped cell name carrying a unique numeric
// suffix, the pattern used for per-operation temporaries like "*BinOp<uid>"
// and comparison scratch cells.
func (ctx *CompilationContext) freshCell(ns Namespace, tag string) string {
	return fmt.Sprintf("%s.*%s%d", ns.String(), tag, ctx.NextUID())
}

// storageRoot is the NBT storage root the Call-Frame Manager's save/restore
// protocol reads and writes under, reusing the compilation's own base root
// rather than introducing a second identifier.
func (ctx *CompilationContext) storageRoot() string {
	return ctx.Base.Root()
}

// encodeCell resolves name's short id on objective, and returns alongside it
// the registration command that must be emitted the first time name is ever
// referenced on that objective: a zero-initialising ConstCell. The returned
// string is empty when the cell was already encoded.
func (ctx *CompilationContext) encodeCell(name, objective string) (Cell, string) {
	short, isNew := ctx.Encoder.Encode(name, objective)
	cell := Cell{Name: short, Objective: objective}

	if isNew {
		return cell, ConstCell(cell, 0)
	}

	return cell, ""
}

// ResolveCell implements template.Resolver, letting a template generator
// accept a live variable in place of a literal: name must already be
// declared as a variable reachable from currentNS.
func (ctx *CompilationContext) ResolveCell(name, currentNS string) (template.CellRef, string, bool) {
	ns, err := ParseNamespace(currentNS)
	if err != nil {
		return template.CellRef{}, "", false
	}

	target, _, kind, err := ctx.Symbols.Lookup(name, ns, false)
	if err != nil || kind != KindVariable {
		return template.CellRef{}, "", false
	}

	cell, reg := ctx.encodeCell(target.String(), ObjVars)

	return template.CellRef{Name: cell.Name, Objective: cell.Objective}, reg, true
}
