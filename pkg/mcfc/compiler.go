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
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mcfc-lang/mcfc/pkg/util/source"
)

// CompilationConfig gathers the driver-facing options a single compilation
// run needs, populated from pkg/cmd's cobra flag struct.
type CompilationConfig struct {
	// SourceRoot is the directory user ".mcs" modules are resolved under.
	SourceRoot string
	// TemplateRoot is an additional directory searched for template
	// modules after SourceRoot; may be empty.
	TemplateRoot string
	// OutputRoot is the directory command files are written under.
	OutputRoot string
	// BaseNamespace is the root identifier ("root:") the entry module's
	// own namespace and the runtime's storage root are both derived from.
	BaseNamespace string
	// EntryModule is the dotted module name compilation starts from.
	EntryModule string
	// Debug toggles the debug-only command builders (comment, tellraw).
	Debug bool
}

// flagCells lists the Flags-objective cells pre-populated at the start of
// every compilation, and their initial values.
var flagCells = []struct {
	name  string
	value int64
}{
	{FlagFalse, 0},
	{FlagTrue, 1},
	{FlagNeg, -1},
	{FlagDecimal, DecimalPrecision},
}

// Compile runs a full compilation: it constructs a CompilationContext,
// bootstraps the Flags objective, lowers the entry module (transitively
// pulling in whatever it imports), and writes a "/.__init" file that
// callers are expected to run once before anything else. It returns every
// CompileError accumulated along the way; a non-empty slice does not
// necessarily mean no output was written: failures are per-unit, not
// whole-compilation.
func Compile(cfg CompilationConfig, log *logrus.Logger) ([]*CompileError, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	base, err := baseNamespace(cfg.BaseNamespace)
	if err != nil {
		return nil, err
	}

	writer := NewWriter(cfg.OutputRoot)
	ctx := NewCompilationContext(base, cfg.SourceRoot, cfg.TemplateRoot, writer, cfg.Debug, log)
	ctx.Symbols.InitRoot(base, KindModule)

	if err := ctx.bootstrap(); err != nil {
		return nil, err
	}

	rel := strings.ReplaceAll(cfg.EntryModule, ".", string(os.PathSeparator)) + SourceExt
	path := filepath.Join(cfg.SourceRoot, rel)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(IOError, "reading entry module %s: %v", path, err)
	}

	file := source.NewSourceFile(path, data)

	if err := ctx.lowerModuleFile(file, base); err != nil {
		ctx.report(err)
	}

	return ctx.Errors(), nil
}

func baseNamespace(raw string) (Namespace, error) {
	root := strings.TrimSuffix(raw, ":")
	if root == "" {
		return Namespace{}, newError(IOError, "empty base namespace")
	}

	return NewRootNamespace(root), nil
}

// bootstrap pre-populates the Flags objective and writes the "/.__init"
// file every generated datapack must run once on load.
func (ctx *CompilationContext) bootstrap() error {
	var buf strings.Builder

	for _, f := range flagCells {
		cell, _ := ctx.Encoder.Encode(f.name, ObjFlags)
		buf.WriteString(ConstCell(Cell{Name: cell, Objective: ObjFlags}, f.value))
	}

	return ctx.Writer.Write(ctx.Base.FilePath()+"/.__init", buf.String())
}
