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

	"github.com/mcfc-lang/mcfc/pkg/template"
	"github.com/mcfc-lang/mcfc/pkg/util/source"
)

// SourceExt is the file extension recognised for user source modules.
const SourceExt = ".mcs"

// TemplateSentinel is the first-line marker a user source file carries to
// declare itself a template rather than ordinary source: a template is
// detected either by residing under the template root or by this
// first-line sentinel marker inside a user file.
const TemplateSentinel = "# MCFC: Template"

// importKind classifies what a dotted path segment resolved to.
type importKind uint8

const (
	importNotFound importKind = iota
	importUserModule
	importUserPackage
	importTemplate
)

// Importer locates a dotted module name under the user source root or the
// template root, distinguishing user modules, user packages and template
// modules, and guarding against re-import and import cycles: a second
// import of the same name returns immediately using the already-registered
// scope. It holds the two search roots and the set of dotted prefixes whose
// namespace has already been registered, so re-importing (directly, or via
// a cycle) is a no-op rather than re-lowering the module body.
type Importer struct {
	sourceRoot   string
	templateRoot string
	imported     map[string]Namespace
	importedKind map[string]importKind
}

// NewImporter constructs an Importer rooted at the given user source and
// template directories.
func NewImporter(sourceRoot, templateRoot string) *Importer {
	return &Importer{
		sourceRoot:   sourceRoot,
		templateRoot: templateRoot,
		imported:     make(map[string]Namespace),
		importedKind: make(map[string]importKind),
	}
}

// locate resolves one dotted prefix (e.g. "a" or "a.b") to a user module
// file, a user package directory, or a template module: first under the
// user source root, then, if absent, under the template root.
func (imp *Importer) locate(dotted string) (importKind, string, error) {
	rel := filepath.Join(strings.Split(dotted, ".")...)

	userFile := filepath.Join(imp.sourceRoot, rel+SourceExt)
	if info, err := os.Stat(userFile); err == nil && !info.IsDir() {
		if isTemplateFile(userFile) {
			return importTemplate, userFile, nil
		}

		return importUserModule, userFile, nil
	}

	userDir := filepath.Join(imp.sourceRoot, rel)
	if info, err := os.Stat(userDir); err == nil && info.IsDir() {
		return importUserPackage, userDir, nil
	}

	if imp.templateRoot != "" {
		templateFile := filepath.Join(imp.templateRoot, rel+SourceExt)
		if info, err := os.Stat(templateFile); err == nil && !info.IsDir() {
			return importTemplate, templateFile, nil
		}
	}

	if template.HasModule(dotted) {
		return importTemplate, "", nil
	}

	return importNotFound, "", newError(ImportNotFound, "no module named %q under %q or %q", dotted, imp.sourceRoot, imp.templateRoot)
}

// isTemplateFile reports whether a user source file's first line carries
// the template sentinel marker.
func isTemplateFile(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	first, _, _ := strings.Cut(string(data), "\n")

	return strings.TrimSpace(first) == TemplateSentinel
}

// Import resolves dotted and registers it in the symbol table, recursively lowering a user module's body the first
// time it is reached. Each top-level dotted segment names its own
// namespace root (so importing "a.b.c" registers "a:", "a:b" and "a:b\c" in
// turn, each segment a top-level user or library root).
// Returns the namespace the fully dotted path denotes and the importKind of
// that final (leaf) segment, so a caller can tell a genuine user module
// (which has a ".__module" file worth invoking) apart from a package or
// template (which does not).
func (ctx *CompilationContext) Import(dotted string) (Namespace, importKind, error) {
	if strings.HasPrefix(dotted, ".") {
		return Namespace{}, importNotFound, newError(UnsupportedImport, "relative import %q is not supported", dotted)
	}

	if ns, ok := ctx.Imports.imported[dotted]; ok {
		return ns, ctx.Imports.importedKind[dotted], nil
	}

	segments := strings.Split(dotted, ".")
	acc := segments[0]

	root := NewRootNamespace(segments[0])
	leafKind := ctx.Imports.importedKind[acc]

	if existing, ok := ctx.Imports.imported[acc]; ok {
		root = existing
	} else {
		kind, path, err := ctx.Imports.locate(acc)
		if err != nil {
			return Namespace{}, importNotFound, err
		}

		if err := ctx.importOne(kind, path, acc, root); err != nil {
			return Namespace{}, importNotFound, err
		}

		leafKind = kind
	}

	cur := root

	for _, seg := range segments[1:] {
		acc += "." + seg
		child := cur.Child(seg)

		if existing, ok := ctx.Imports.imported[acc]; ok {
			cur = existing
			leafKind = ctx.Imports.importedKind[acc]

			continue
		}

		kind, path, err := ctx.Imports.locate(acc)
		if err != nil {
			return Namespace{}, importNotFound, err
		}

		ctx.Symbols.Set(seg, child, cur, kindOfImport(kind))

		if err := ctx.importOne(kind, path, acc, child); err != nil {
			return Namespace{}, importNotFound, err
		}

		cur = child
		leafKind = kind
	}

	return cur, leafKind, nil
}

func kindOfImport(kind importKind) SymbolKind {
	if kind == importUserPackage {
		return KindPackage
	}

	return KindModule
}

// importOne registers ns for dotted (guarding against cycles by registering
// before recursing) and, for a user module, parses and lowers its body.
func (ctx *CompilationContext) importOne(kind importKind, path, dotted string, ns Namespace) error {
	ctx.Imports.imported[dotted] = ns
	ctx.Imports.importedKind[dotted] = kind

	switch kind {
	case importUserPackage:
		return nil
	case importTemplate:
		if _, err := template.EnsureInitialized(dotted); err != nil {
			return newError(TemplateInitFailed, "template %q: %v", dotted, err)
		}

		return nil
	case importUserModule:
		data, err := os.ReadFile(path)
		if err != nil {
			return newError(IOError, "reading %s: %v", path, err)
		}

		file := source.NewSourceFile(path, data)

		return ctx.lowerModuleFile(file, ns)
	default:
		return newError(ImportNotFound, "unresolved import %q", dotted)
	}
}
