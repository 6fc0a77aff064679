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

// Package template is the Template Registry: a process-wide mapping from
// dotted source name to a host generator that lowers a template call
// directly to command text, bypassing normal argument marshalling. It lives
// apart from package mcfc so that concrete template modules (package
// templates) can depend on it without mcfc depending on templates in turn;
// mcfc only needs this registry's types. Template modules register themselves
// from their package init() functions, so a driver enables them by importing
// package templates.
package template

import "github.com/mcfc-lang/mcfc/pkg/ast"

// CellRef names the scoreboard cell a Resolver resolved a variable-reference
// call argument to.
type CellRef struct {
	Name      string
	Objective string
}

// Resolver lets a template generator turn a bare-name call argument into the
// scoreboard cell backing it, for the rare case (bossbar's "value"/"max"
// arguments) where a live cell may be supplied in place of a literal. prefix
// is any registration command that must be emitted before the generator's
// own command text the first time that cell is referenced.
type Resolver interface {
	ResolveCell(name, currentNS string) (cell CellRef, prefix string, ok bool)
}

// Generator lowers one template call. currentNS is the canonical string
// form of the namespace the call appears in.
type Generator func(positional []ast.Node, keywords []ast.Keyword, currentNS string, resolve Resolver) (string, error)

// Module is a template module's registration hook, run once the first time
// its dotted import path is imported.
type Module struct {
	Init func() error
}

var (
	modules     = make(map[string]Module)
	initialized = make(map[string]bool)
	generators  = make(map[string]Generator)
)

// RegisterModule makes a template module available under a dotted import
// path. Called once per module at driver start-up, before compilation.
func RegisterModule(dotted string, mod Module) {
	modules[dotted] = mod
}

// HasModule reports whether a template module is registered under dotted.
func HasModule(dotted string) bool {
	_, ok := modules[dotted]
	return ok
}

// EnsureInitialized runs dotted's module Init the first time it is
// imported. found is false if no module is registered under dotted; err is
// non-nil only if found is true and Init itself failed.
func EnsureInitialized(dotted string) (found bool, err error) {
	if initialized[dotted] {
		return true, nil
	}

	mod, ok := modules[dotted]
	if !ok {
		return false, nil
	}

	if mod.Init != nil {
		if err := mod.Init(); err != nil {
			return true, err
		}
	}

	initialized[dotted] = true

	return true, nil
}

// Register registers a generator under its fully-qualified dotted name
// (e.g. "bossbar.show"), called from within a module's Init.
func Register(name string, gen Generator) {
	generators[name] = gen
}

// Lookup finds a registered generator by fully-qualified dotted name.
func Lookup(name string) (Generator, bool) {
	gen, ok := generators[name]
	return gen, ok
}

// Reset clears all registrations and initialisation state. Exported for
// test isolation, since the registry is process-wide global state, mutated
// only by the compilation driver.
func Reset() {
	modules = make(map[string]Module)
	initialized = make(map[string]bool)
	generators = make(map[string]Generator)
}
