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

// Package mcfc's lowering engine walks the restricted AST and emits
// flat command text: no variables, stack or expressions survive into the
// target, only scoreboard arithmetic, storage operations and function
// calls. Every statement-lowering function returns the command text it
// produced; every expression-lowering function additionally reports
// whether it wrote a value into the enclosing scope's result-temp cell
// (false only for a template call, which bypasses result-temp entirely).
package mcfc

import (
	"fmt"
	"strings"

	"github.com/mcfc-lang/mcfc/pkg/ast"
	"github.com/mcfc-lang/mcfc/pkg/template"
	"github.com/mcfc-lang/mcfc/pkg/textcomponent"
	"github.com/mcfc-lang/mcfc/pkg/util/source"
)

// lowerModuleFile parses a user source file and lowers its body into ns.
func (ctx *CompilationContext) lowerModuleFile(file *source.File, ns Namespace) error {
	mod, err := ast.Parse(file)
	if err != nil {
		return newError(IOError, "parsing %s: %v", file.Filename(), err)
	}

	prev := ctx.currentFile
	ctx.currentFile = file
	defer func() { ctx.currentFile = prev }()

	return ctx.lowerModule(mod, ns)
}

// lowerModule lowers a Module's top-level statements into ns's ".__module"
// file.
func (ctx *CompilationContext) lowerModule(mod *ast.Module, ns Namespace) error {
	ctx.pushNamespace(ns)
	body := ctx.lowerStmts(mod.Body, ns)
	ctx.popNamespace()

	return ctx.Writer.Write(ns.FilePath()+"/.__module", body)
}

// lowerStmts lowers a statement list, accumulating (rather than aborting on)
// any individual failure: remaining statements are still compiled.
func (ctx *CompilationContext) lowerStmts(stmts []ast.Node, ns Namespace) string {
	var buf strings.Builder

	for _, stmt := range stmts {
		text, err := ctx.lowerStmt(stmt, ns)
		if err != nil {
			ctx.report(err)
			continue
		}

		buf.WriteString(text)
	}

	return buf.String()
}

func (ctx *CompilationContext) lowerStmt(node ast.Node, ns Namespace) (string, error) {
	switch n := node.(type) {
	case *ast.Import:
		return ctx.lowerImportStmt(n, ns)
	case *ast.ImportFrom:
		return ctx.lowerImportFromStmt(n, ns)
	case *ast.FunctionDef:
		return ctx.lowerFunctionDef(n, ns)
	case *ast.Global:
		return ctx.lowerGlobal(n, ns)
	case *ast.If:
		return ctx.lowerIf(n, ns)
	case *ast.Return:
		return ctx.lowerReturn(n, ns)
	case *ast.Assign:
		return ctx.lowerAssign(n, ns)
	case *ast.Expr:
		return ctx.lowerExprStmt(n, ns)
	default:
		return ctx.lowerUnknown(node, ns)
	}
}

// lowerUnknown handles an AST node kind outside the supported subset without
// aborting the remainder of the compilation unit: it emits an always-on
// diagnostic tellraw line plus a structured comment directly into the
// output (so the gap is visible even without re-running the compiler in
// debug mode), records an UnsupportedNode failure, and lets the remaining
// statements keep compiling.
func (ctx *CompilationContext) lowerUnknown(node ast.Node, ns Namespace) (string, error) {
	tag := fmt.Sprintf("%T", node)

	ctx.report(ctx.nodeError(node, UnsupportedNode, "unsupported AST node %s", tag))

	text, err := DebugText(true, "unparseable node", textcomponent.Text(tag, textcomponent.WithColor("red")))
	if err != nil {
		return "", nil
	}

	text += Comment(true, "unsupported-node", KV{Key: "type", Value: tag})

	return text, nil
}

// lowerImportStmt lowers a bare "import a.b.c [as x], ..." statement.
// Each alias is resolved independently; a genuine user module gets
// its ".__module" file invoked, while a package or template (which has no
// such file) only contributes a symbol-table binding.
func (ctx *CompilationContext) lowerImportStmt(imp *ast.Import, ns Namespace) (string, error) {
	var buf strings.Builder

	for _, alias := range imp.Names {
		target, kind, err := ctx.Import(alias.Name)
		if err != nil {
			return "", ctx.spanOf(err, imp)
		}

		bindName := alias.AsName
		if bindName == "" {
			segs := strings.Split(alias.Name, ".")
			bindName = segs[len(segs)-1]
		}

		ctx.warnOnRebind(ns, bindName)
		ctx.Symbols.Set(bindName, target, ns, KindModule)

		if kind == importUserModule {
			buf.WriteString(CallFunction(target.FilePath() + "/.__module"))
		}
	}

	return buf.String(), nil
}

// lowerImportFromStmt lowers a "from a.b.c import x [as y], ..." statement.
// The module is invoked once; each imported name binds as an
// attribute indirecting into it, so "z.whatever" transparently resolves
// through to "x.whatever" without copying anything.
func (ctx *CompilationContext) lowerImportFromStmt(impf *ast.ImportFrom, ns Namespace) (string, error) {
	target, kind, err := ctx.Import(impf.Module)
	if err != nil {
		return "", ctx.spanOf(err, impf)
	}

	var buf strings.Builder

	if kind == importUserModule {
		buf.WriteString(CallFunction(target.FilePath() + "/.__module"))
	}

	for _, alias := range impf.Names {
		bindName := alias.AsName
		if bindName == "" {
			bindName = alias.Name
		}

		ctx.warnOnRebind(ns, bindName)
		ctx.Symbols.SetAttribute(bindName, target, alias.Name, ns)
	}

	return buf.String(), nil
}

func (ctx *CompilationContext) warnOnRebind(ns Namespace, name string) {
	if ctx.Symbols.HasChild(ns, name) {
		ctx.Log.WithField("scope", ns.String()).WithField("name", name).Warn("duplicate binding of import alias in the current scope")
	}
}

// lowerFunctionDef registers a function's signature and emits its body to
// its own output file, preceded by a prologue that moves each argument from
// the Args objective into the function's own Vars cells.
func (ctx *CompilationContext) lowerFunctionDef(fd *ast.FunctionDef, ns Namespace) (string, error) {
	fnNS := ns.Child(fd.Name)

	sig, err := BuildSignature(fd.Args.Params)
	if err != nil {
		return "", ctx.spanOf(err, fd)
	}

	ctx.Symbols.Set(fd.Name, fnNS, ns, KindFunction)
	ctx.setSignature(fnNS, sig)

	var prologue strings.Builder

	for i := len(fd.Args.Params) - 1; i >= 0; i-- {
		p := fd.Args.Params[i]
		varNS := fnNS.Child(p.Name)
		cellName := varNS.String()

		ctx.Symbols.Set(p.Name, varNS, fnNS, KindVariable)

		argCell, argReg := ctx.encodeCell(cellName, ObjArgs)
		varCell, varReg := ctx.encodeCell(cellName, ObjVars)

		prologue.WriteString(argReg)
		prologue.WriteString(varReg)
		prologue.WriteString(AssignCell(varCell, argCell))
		prologue.WriteString(ResetCell(argCell))
	}

	ctx.pushNamespace(fnNS)
	body := ctx.lowerStmts(fd.Body, fnNS)
	ctx.popNamespace()

	if err := ctx.Writer.Write(fnNS.FilePath(), prologue.String()+body); err != nil {
		ctx.report(err)
	}

	return "", nil
}

// lowerGlobal rebinds each listed name, for the remainder of the enclosing
// function, to the cell the same name denotes at the module's own root
// scope (rebinding always targets the root scope, never an intermediate
// enclosing scope). This is pure symbol-table bookkeeping: no command text
// is emitted.
func (ctx *CompilationContext) lowerGlobal(g *ast.Global, ns Namespace) (string, error) {
	root := NewRootNamespace(ns.Root())

	for _, name := range g.Names {
		ctx.Symbols.Set(name, root.Child(name), ns, KindVariable)
	}

	return "", nil
}

// lowerIf lowers a conditional: both branches are written out
// as their own files, and the enclosing body runs exactly one of them via a
// complementary pair of check-sb executions keyed off the FALSE flag.
func (ctx *CompilationContext) lowerIf(n *ast.If, ns Namespace) (string, error) {
	testBuf, err := ctx.lowerValue(n.Test, ns)
	if err != nil {
		return "", err
	}

	uid := ctx.NextUID()
	truePath := fmt.Sprintf("%s/.if/%d", ns.FilePath(), uid)
	falsePath := fmt.Sprintf("%s/.if/%d-else", ns.FilePath(), uid)

	trueBody := ctx.lowerStmts(n.Body, ns)
	falseBody := ctx.lowerStmts(n.Else, ns)

	if err := ctx.Writer.Write(truePath, trueBody); err != nil {
		ctx.report(err)
	}

	if err := ctx.Writer.Write(falsePath, falseBody); err != nil {
		ctx.report(err)
	}

	resultCell, resultReg := ctx.encodeCell(ns.ResultCell(), ObjTemp)
	falseCell, falseReg := ctx.encodeCell(FlagFalse, ObjFlags)

	buf := testBuf + resultReg + falseReg
	buf += CheckScore(KindUnless, resultCell, CmpEq, falseCell, CallFunction(truePath))
	buf += CheckScore(KindIf, resultCell, CmpEq, falseCell, CallFunction(falsePath))
	buf += ResetCell(resultCell)

	return buf, nil
}

// lowerReturn lowers a "return <expr>" statement: the evaluated value is
// copied from result-temp into the enclosing function's dedicated
// return-value cell.
func (ctx *CompilationContext) lowerReturn(r *ast.Return, ns Namespace) (string, error) {
	buf, err := ctx.lowerValue(r.Value, ns)
	if err != nil {
		return "", err
	}

	resultCell, resultReg := ctx.encodeCell(ns.ResultCell(), ObjTemp)
	retCell, retReg := ctx.encodeCell(ns.ReturnCell(), ObjFuncResult)

	buf += resultReg + retReg
	buf += AssignCell(retCell, resultCell)
	buf += ResetCell(resultCell)

	return buf, nil
}

// lowerAssign lowers "target[, target...] = value": value is evaluated
// once into result-temp, then copied out to every target's Vars cell
// (creating it, kind variable, if this is its first appearance).
func (ctx *CompilationContext) lowerAssign(a *ast.Assign, ns Namespace) (string, error) {
	buf, err := ctx.lowerValue(a.Value, ns)
	if err != nil {
		return "", err
	}

	resultCell, resultReg := ctx.encodeCell(ns.ResultCell(), ObjTemp)
	buf += resultReg

	for _, target := range a.Targets {
		targetNS, err := ctx.resolveAssignTarget(target, ns)
		if err != nil {
			return "", err
		}

		dstCell, dstReg := ctx.encodeCell(targetNS.String(), ObjVars)
		buf += dstReg + AssignCell(dstCell, resultCell)
	}

	buf += ResetCell(resultCell)

	return buf, nil
}

func (ctx *CompilationContext) resolveAssignTarget(node ast.Node, ns Namespace) (Namespace, error) {
	switch t := node.(type) {
	case *ast.Name:
		target := ns.Child(t.ID)
		ctx.Symbols.Set(t.ID, target, ns, KindVariable)

		return target, nil
	case *ast.Attribute:
		valueNS, err := ctx.resolveValueNS(t.Value, ns)
		if err != nil {
			return Namespace{}, err
		}

		target := valueNS.Child(t.Attr)
		ctx.Symbols.Set(t.Attr, target, valueNS, KindVariable)

		return target, nil
	default:
		return Namespace{}, ctx.nodeError(node, UnsupportedNode, "invalid assignment target %T", node)
	}
}

// lowerExprStmt lowers an expression evaluated purely for its side effects,
// typically a bare Call. The result-temp cell is reset only if this call
// actually wrote to it: a template call bypasses result-temp entirely.
func (ctx *CompilationContext) lowerExprStmt(e *ast.Expr, ns Namespace) (string, error) {
	text, wrote, err := ctx.lowerExpr(e.Value, ns)
	if err != nil {
		return "", err
	}

	if !wrote {
		return text, nil
	}

	resultCell, _ := ctx.encodeCell(ns.ResultCell(), ObjTemp)

	return text + ResetCell(resultCell), nil
}

// lowerExpr dispatches an expression node, reporting whether it wrote a
// value into ns's result-temp cell.
func (ctx *CompilationContext) lowerExpr(node ast.Node, ns Namespace) (string, bool, error) {
	switch n := node.(type) {
	case *ast.Constant:
		text, err := ctx.lowerConstant(n, ns)
		return text, true, err
	case *ast.Name:
		text, err := ctx.lowerNameLoad(n, ns)
		return text, true, err
	case *ast.Attribute:
		text, err := ctx.lowerAttributeLoad(n, ns)
		return text, true, err
	case *ast.BinOp:
		text, err := ctx.lowerBinOp(n, ns)
		return text, true, err
	case *ast.UnaryOp:
		text, err := ctx.lowerUnaryOp(n, ns)
		return text, true, err
	case *ast.Compare:
		text, err := ctx.lowerCompare(n, ns)
		return text, true, err
	case *ast.Call:
		return ctx.lowerCall(n, ns)
	default:
		return "", false, ctx.nodeError(node, UnsupportedNode, "unsupported expression node %T", node)
	}
}

// lowerValue lowers node and requires that it produced a value, failing if
// it was a void (template) call, e.g. "x = print(1)".
func (ctx *CompilationContext) lowerValue(node ast.Node, ns Namespace) (string, error) {
	text, wrote, err := ctx.lowerExpr(node, ns)
	if err != nil {
		return "", err
	}

	if !wrote {
		return "", ctx.nodeError(node, UnsupportedNode, "a template call produces no value and cannot be used as one")
	}

	return text, nil
}

// lowerConstant lowers an integer or boolean literal; any other literal
// type (i.e. a string, meaningful only as a template argument) fails
// UnsupportedConstant here.
func (ctx *CompilationContext) lowerConstant(c *ast.Constant, ns Namespace) (string, error) {
	var v int64

	switch val := c.Value.(type) {
	case int64:
		v = val
	case bool:
		if val {
			v = 1
		}
	default:
		return "", ctx.nodeError(c, UnsupportedConstant, "constant of type %T is not an integer or boolean literal", c.Value)
	}

	cell, reg := ctx.encodeCell(ns.ResultCell(), ObjTemp)

	return reg + ConstCell(cell, v), nil
}

// lowerNameLoad lowers a bare identifier in value position: it must
// already denote a variable, since every reachable name is inserted
// before its first use as an r-value.
func (ctx *CompilationContext) lowerNameLoad(n *ast.Name, ns Namespace) (string, error) {
	target, _, kind, err := ctx.Symbols.Lookup(n.ID, ns, false)
	if err != nil {
		return "", ctx.spanOf(err, n)
	}

	if kind != KindVariable {
		return "", ctx.nodeError(n, NameNotFound, "%q does not name a variable", n.ID)
	}

	srcCell, srcReg := ctx.encodeCell(target.String(), ObjVars)
	dstCell, dstReg := ctx.encodeCell(ns.ResultCell(), ObjTemp)

	return srcReg + dstReg + AssignCell(dstCell, srcCell), nil
}

// resolveValueNS resolves the namespace a dotted attribute chain's base
// denotes, without emitting any command text: attribute access before the
// final member is pure compile-time scope navigation.
func (ctx *CompilationContext) resolveValueNS(node ast.Node, ns Namespace) (Namespace, error) {
	switch n := node.(type) {
	case *ast.Name:
		target, _, _, err := ctx.Symbols.Lookup(n.ID, ns, false)
		return target, ctx.spanOf(err, n)
	case *ast.Attribute:
		valueNS, err := ctx.resolveValueNS(n.Value, ns)
		if err != nil {
			return Namespace{}, err
		}

		target, _, _, err := ctx.Symbols.Lookup(n.Attr, valueNS, false)

		return target, ctx.spanOf(err, n)
	default:
		return Namespace{}, ctx.nodeError(node, UnsupportedNode, "attribute base must be a name or attribute chain")
	}
}

// lowerAttributeLoad lowers a dotted member access in value position: the
// base resolves to a namespace at compile time, then the final member must
// denote a variable.
func (ctx *CompilationContext) lowerAttributeLoad(a *ast.Attribute, ns Namespace) (string, error) {
	valueNS, err := ctx.resolveValueNS(a.Value, ns)
	if err != nil {
		return "", err
	}

	target, _, kind, err := ctx.Symbols.Lookup(a.Attr, valueNS, false)
	if err != nil {
		return "", ctx.spanOf(err, a)
	}

	if kind != KindVariable {
		return "", ctx.nodeError(a, NameNotFound, "%q does not name a variable", a.Attr)
	}

	srcCell, srcReg := ctx.encodeCell(target.String(), ObjVars)
	dstCell, dstReg := ctx.encodeCell(ns.ResultCell(), ObjTemp)

	return srcReg + dstReg + AssignCell(dstCell, srcCell), nil
}

func binOpSymbol(op ast.BinOpKind) (string, error) {
	switch op {
	case ast.Add:
		return OpAdd, nil
	case ast.Sub:
		return OpSub, nil
	case ast.Mul:
		return OpMul, nil
	case ast.Div:
		return OpDiv, nil
	default:
		return "", newError(UnsupportedOperator, "unsupported binary operator")
	}
}

// lowerBinOp lowers a binary arithmetic expression: the left operand is
// spilled into a fresh temporary (live across the right operand's own
// evaluation, which may itself contain a call), then combined in place via
// a single scoreboard operation.
func (ctx *CompilationContext) lowerBinOp(b *ast.BinOp, ns Namespace) (string, error) {
	op, err := binOpSymbol(b.Op)
	if err != nil {
		return "", ctx.spanOf(err, b)
	}

	leftBuf, err := ctx.lowerValue(b.Left, ns)
	if err != nil {
		return "", err
	}

	resultCell, resultReg := ctx.encodeCell(ns.ResultCell(), ObjTemp)

	tempName := ctx.freshCell(ns, "BinOp")
	tempCell, tempReg := ctx.encodeCell(tempName, ObjTemp)
	ctx.Frames.Push(ns, tempName)

	buf := leftBuf + resultReg + tempReg
	buf += AssignCell(tempCell, resultCell)
	buf += ResetCell(resultCell)

	rightBuf, err := ctx.lowerValue(b.Right, ns)
	if err != nil {
		return "", err
	}

	resultCell2, resultReg2 := ctx.encodeCell(ns.ResultCell(), ObjTemp)

	buf += rightBuf + resultReg2
	buf += OpCell(tempCell, op, resultCell2)
	buf += AssignCell(resultCell2, tempCell)
	buf += ResetCell(tempCell)

	ctx.Frames.Pop(ns)

	return buf, nil
}

// lowerUnaryOp lowers a unary expression. Logical negation produces 1/0 via
// a complementary pair of conditional assignments against the FALSE flag;
// arithmetic negation multiplies by the pre-populated NEG flag.
func (ctx *CompilationContext) lowerUnaryOp(u *ast.UnaryOp, ns Namespace) (string, error) {
	operandBuf, err := ctx.lowerValue(u.Operand, ns)
	if err != nil {
		return "", err
	}

	resultCell, resultReg := ctx.encodeCell(ns.ResultCell(), ObjTemp)

	switch u.Op {
	case ast.Not:
		falseCell, falseReg := ctx.encodeCell(FlagFalse, ObjFlags)
		trueCell, trueReg := ctx.encodeCell(FlagTrue, ObjFlags)

		tempName := ctx.freshCell(ns, "Not")
		tempCell, tempReg := ctx.encodeCell(tempName, ObjTemp)
		ctx.Frames.Push(ns, tempName)

		buf := operandBuf + resultReg + falseReg + trueReg + tempReg
		buf += CheckScore(KindIf, resultCell, CmpEq, falseCell, AssignCell(tempCell, trueCell))
		buf += CheckScore(KindUnless, resultCell, CmpEq, falseCell, AssignCell(tempCell, falseCell))
		buf += AssignCell(resultCell, tempCell)
		buf += ResetCell(tempCell)

		ctx.Frames.Pop(ns)

		return buf, nil
	case ast.USub:
		negCell, negReg := ctx.encodeCell(FlagNeg, ObjFlags)

		buf := operandBuf + resultReg + negReg
		buf += OpCell(resultCell, OpMul, negCell)

		return buf, nil
	default:
		return "", ctx.nodeError(u, UnsupportedOperator, "unsupported unary operator")
	}
}

// compareKind maps a source comparison operator to the (execute kind,
// comparator) pair that realises it: != has no direct comparator on the
// target engine, so it is synthesised as "unless ... =".
func compareKind(op ast.CompareOp) (string, string, error) {
	switch op {
	case ast.Eq:
		return KindIf, CmpEq, nil
	case ast.NotEq:
		return KindUnless, CmpEq, nil
	case ast.Gt:
		return KindIf, CmpGt, nil
	case ast.Lt:
		return KindIf, CmpLt, nil
	case ast.GtE:
		return KindIf, CmpGe, nil
	case ast.LtE:
		return KindIf, CmpLe, nil
	default:
		return "", "", newError(UnsupportedCompare, "unsupported comparison operator")
	}
}

// lowerCompare lowers a single binary comparison: left is spilled into a
// dedicated CompareLeft scratch cell, CompareResult is initialised to
// FALSE, right is evaluated into result-temp, then a single
// check-sb line flips CompareResult to TRUE on match before copying it back
// into result-temp.
func (ctx *CompilationContext) lowerCompare(c *ast.Compare, ns Namespace) (string, error) {
	kind, cmp, err := compareKind(c.Op)
	if err != nil {
		return "", ctx.spanOf(err, c)
	}

	leftBuf, err := ctx.lowerValue(c.Left, ns)
	if err != nil {
		return "", err
	}

	resultCell, resultReg := ctx.encodeCell(ns.ResultCell(), ObjTemp)

	leftName := ns.Cell(".?CompareLeft")
	leftCell, leftReg := ctx.encodeCell(leftName, ObjTemp)
	ctx.Frames.Push(ns, leftName)

	buf := leftBuf + resultReg + leftReg
	buf += AssignCell(leftCell, resultCell)
	buf += ResetCell(resultCell)

	crName := ns.Cell(".?CompareResult")
	crCell, crReg := ctx.encodeCell(crName, ObjTemp)
	falseCell, falseReg := ctx.encodeCell(FlagFalse, ObjFlags)
	trueCell, trueReg := ctx.encodeCell(FlagTrue, ObjFlags)

	buf += crReg + falseReg + trueReg
	buf += AssignCell(crCell, falseCell)

	rightBuf, err := ctx.lowerValue(c.Right, ns)
	if err != nil {
		return "", err
	}

	resultCell2, resultReg2 := ctx.encodeCell(ns.ResultCell(), ObjTemp)

	buf += rightBuf + resultReg2
	buf += CheckScore(kind, leftCell, cmp, resultCell2, AssignCell(crCell, trueCell))
	buf += AssignCell(resultCell2, crCell)
	buf += ResetCell(leftCell)
	buf += ResetCell(crCell)

	ctx.Frames.Pop(ns)

	return buf, nil
}

// callee is the resolved target of a Call node: exactly one of builtin,
// template or user is set.
type callee struct {
	builtin  string
	template template.Generator
	user     Namespace
}

var builtinNames = map[string]bool{"min": true, "max": true}

// resolveCallee classifies a Call's Func node into a built-in, a template
// generator, or a user-defined function.
func (ctx *CompilationContext) resolveCallee(fn ast.Node, ns Namespace) (callee, error) {
	switch f := fn.(type) {
	case *ast.Name:
		rawTarget, _, kind, err := ctx.Symbols.Lookup(f.ID, ns, true)
		if err != nil {
			if builtinNames[f.ID] {
				return callee{builtin: f.ID}, nil
			}

			return callee{}, ctx.spanOf(err, f)
		}

		if kind == KindAttribute {
			dotted, _, _, ok := ctx.Symbols.ResolveDotted(f.ID, ns)
			if ok {
				if gen, ok := template.Lookup(dotted); ok {
					return callee{template: gen}, nil
				}
			}

			resolved, _, rkind, err := ctx.Symbols.Lookup(f.ID, ns, false)
			if err != nil {
				return callee{}, ctx.spanOf(err, f)
			}

			if rkind != KindFunction {
				return callee{}, ctx.nodeError(f, NameNotFound, "%q is not callable", f.ID)
			}

			return callee{user: resolved}, nil
		}

		if kind != KindFunction {
			return callee{}, ctx.nodeError(f, NameNotFound, "%q is not callable", f.ID)
		}

		return callee{user: rawTarget}, nil

	case *ast.Attribute:
		base, isName := f.Value.(*ast.Name)
		if !isName {
			valueNS, err := ctx.resolveValueNS(f.Value, ns)
			if err != nil {
				return callee{}, err
			}

			if gen, ok := template.Lookup(valueNS.Dotted() + "." + f.Attr); ok {
				return callee{template: gen}, nil
			}

			resolved, _, err := ctx.Symbols.Get(f.Attr, valueNS, false)
			if err != nil {
				return callee{}, ctx.spanOf(err, f)
			}

			return callee{user: resolved}, nil
		}

		dotted, _, target, ok := ctx.Symbols.ResolveDotted(base.ID, ns)
		if !ok {
			return callee{}, ctx.nodeError(f, NameNotFound, "name %q not found from %s", base.ID, ns)
		}

		if gen, ok := template.Lookup(dotted + "." + f.Attr); ok {
			return callee{template: gen}, nil
		}

		resolved, _, err := ctx.Symbols.Get(f.Attr, target, false)
		if err != nil {
			return callee{}, ctx.spanOf(err, f)
		}

		return callee{user: resolved}, nil

	default:
		return callee{}, ctx.nodeError(fn, UnsupportedNode, "call target must be a name or attribute")
	}
}

// lowerCall lowers a Call node, dispatching to a built-in, a registered
// template generator, or the save/restore-wrapped invocation of a user
// function.
func (ctx *CompilationContext) lowerCall(c *ast.Call, ns Namespace) (string, bool, error) {
	cal, err := ctx.resolveCallee(c.Func, ns)
	if err != nil {
		return "", false, err
	}

	switch {
	case cal.builtin != "":
		text, err := ctx.lowerBuiltinCall(cal.builtin, c, ns)
		return text, true, err
	case cal.template != nil:
		text, err := cal.template(c.Args, c.Keywords, ns.String(), ctx)
		return text, false, err
	default:
		text, err := ctx.lowerUserCall(cal.user, c, ns)
		return text, true, err
	}
}

// lowerBuiltinCall lowers the two built-in functions the source subset
// offers directly (min, max), each mapping onto its own scoreboard
// operator rather than a user-function call protocol.
func (ctx *CompilationContext) lowerBuiltinCall(name string, c *ast.Call, ns Namespace) (string, error) {
	if len(c.Keywords) != 0 {
		return "", ctx.nodeError(c, ExtraArgument, "builtin %q takes no keyword arguments", name)
	}

	if len(c.Args) != 2 {
		return "", ctx.nodeError(c, MissingArgument, "builtin %q expects exactly 2 arguments, got %d", name, len(c.Args))
	}

	var (
		op  string
		tag string
	)

	switch name {
	case "min":
		op, tag = OpMin, "Min"
	case "max":
		op, tag = OpMax, "Max"
	}

	leftBuf, err := ctx.lowerValue(c.Args[0], ns)
	if err != nil {
		return "", err
	}

	resultCell, resultReg := ctx.encodeCell(ns.ResultCell(), ObjTemp)

	tempName := ctx.freshCell(ns, tag)
	tempCell, tempReg := ctx.encodeCell(tempName, ObjTemp)
	ctx.Frames.Push(ns, tempName)

	buf := leftBuf + resultReg + tempReg
	buf += AssignCell(tempCell, resultCell)
	buf += ResetCell(resultCell)

	rightBuf, err := ctx.lowerValue(c.Args[1], ns)
	if err != nil {
		return "", err
	}

	resultCell2, resultReg2 := ctx.encodeCell(ns.ResultCell(), ObjTemp)

	buf += rightBuf + resultReg2
	buf += OpCell(tempCell, op, resultCell2)
	buf += AssignCell(resultCell2, tempCell)
	buf += ResetCell(tempCell)

	ctx.Frames.Pop(ns)

	return buf, nil
}

// lowerUserCall lowers a call to a user-defined function: each bound
// argument is marshalled into the callee's Args cells, the caller's own
// live state is saved if it is itself inside a function, the callee's
// file is invoked, state is restored, and the callee's return value is
// copied into result-temp.
func (ctx *CompilationContext) lowerUserCall(fn Namespace, c *ast.Call, ns Namespace) (string, error) {
	sig, ok := ctx.signature(fn)
	if !ok {
		return "", ctx.nodeError(c, NameNotFound, "function %s has no registered signature", fn)
	}

	bindings, err := BindArguments(sig, c.Args, c.Keywords)
	if err != nil {
		return "", ctx.spanOf(err, c)
	}

	var buf strings.Builder

	for _, b := range bindings {
		if b.Skipped {
			continue
		}

		valBuf, err := ctx.lowerValue(b.Value, ns)
		if err != nil {
			return "", err
		}

		resultCell, resultReg := ctx.encodeCell(ns.ResultCell(), ObjTemp)
		argCell, argReg := ctx.encodeCell(fn.Child(b.Param).String(), ObjArgs)

		buf.WriteString(valBuf)
		buf.WriteString(resultReg)
		buf.WriteString(argReg)
		buf.WriteString(AssignCell(argCell, resultCell))
		buf.WriteString(ResetCell(resultCell))
	}

	_, inFunction := ctx.signature(ns)

	if inFunction {
		buf.WriteString(ctx.emitSave(ns))
	}

	buf.WriteString(CallFunction(fn.FilePath()))

	if inFunction {
		buf.WriteString(ctx.emitRestore(ns))
	}

	retCell, retReg := ctx.encodeCell(fn.ReturnCell(), ObjFuncResult)
	resultCell, resultReg := ctx.encodeCell(ns.ResultCell(), ObjTemp)

	buf.WriteString(retReg)
	buf.WriteString(resultReg)
	buf.WriteString(AssignCell(resultCell, retCell))
	buf.WriteString(ResetCell(retCell))

	return buf.String(), nil
}

// emitSave implements the Call-Frame Manager's save phase: every variable
// cell owned directly by fn's scope, then every temporary still live in
// it, is read off the scoreboard and appended onto its matching storage
// stack, via the Temp scratch path.
func (ctx *CompilationContext) emitSave(fn Namespace) string {
	root := ctx.storageRoot()

	var buf strings.Builder

	for _, name := range ctx.Symbols.ChildrenOfKind(fn, KindVariable) {
		cell, reg := ctx.encodeCell(fn.Child(name).String(), ObjVars)
		buf.WriteString(reg)
		buf.WriteString(StoreScoreToStorage(root, StorageTemp, cell))
		buf.WriteString(DataAppend(root, StorageLocalVars, StorageTemp))
	}

	for _, name := range ctx.Frames.Live(fn) {
		cell, reg := ctx.encodeCell(name, ObjTemp)
		buf.WriteString(reg)
		buf.WriteString(StoreScoreToStorage(root, StorageTemp, cell))
		buf.WriteString(DataAppend(root, StorageLocalTemp, StorageTemp))
	}

	return buf.String()
}

// emitRestore implements the Call-Frame Manager's restore phase,
// undoing emitSave in the reverse order: live temporaries first, then
// variables, each group popped newest-first off its own storage stack.
func (ctx *CompilationContext) emitRestore(fn Namespace) string {
	root := ctx.storageRoot()

	var buf strings.Builder

	live := ctx.Frames.Live(fn)
	for i := len(live) - 1; i >= 0; i-- {
		cell, reg := ctx.encodeCell(live[i], ObjTemp)
		buf.WriteString(reg)
		buf.WriteString(StoreStorageToScore(cell, root, StorageLocalTemp+"[-1]"))
		buf.WriteString(DataPopLast(root, StorageLocalTemp))
	}

	vars := ctx.Symbols.ChildrenOfKind(fn, KindVariable)
	for i := len(vars) - 1; i >= 0; i-- {
		cell, reg := ctx.encodeCell(fn.Child(vars[i]).String(), ObjVars)
		buf.WriteString(reg)
		buf.WriteString(StoreStorageToScore(cell, root, StorageLocalVars+"[-1]"))
		buf.WriteString(DataPopLast(root, StorageLocalVars))
	}

	return buf.String()
}
