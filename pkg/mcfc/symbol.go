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
	"github.com/sirupsen/logrus"
)

// SymbolKind classifies what a scope-tree node denotes.
type SymbolKind uint8

// Symbol kinds.
const (
	KindVariable SymbolKind = iota
	KindFunction
	KindModule
	KindPackage
	KindAttribute
)

// String renders a symbol kind for diagnostics.
func (k SymbolKind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindFunction:
		return "function"
	case KindModule:
		return "module"
	case KindPackage:
		return "package"
	case KindAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// symbolNode is one child binding recorded under some enclosing namespace.
// Plain bindings (variable, function, module, package) carry only targetNS:
// the namespace the name itself denotes.  An attribute binding instead
// indirects through attrName within targetNS ("from X import Y binds Z
// ... as an attribute node pointing into X"), resolved transparently by
// Get unless raw is requested.
type symbolNode struct {
	name     string
	kind     SymbolKind
	targetNS Namespace
	attrName string
}

// SymbolTable is the nested tree of scope nodes: a mapping from
// enclosing-namespace string to the names declared directly within it.
// order records, per scope, the sequence names were first declared in, so
// a traversal over a scope's children (the Call-Frame Manager's
// save/restore phase) is deterministic and reproducible across runs on
// identical inputs.
type SymbolTable struct {
	children map[string]map[string]symbolNode
	order    map[string][]string
	roots    map[string]SymbolKind
	log      *logrus.Logger
}

// NewSymbolTable constructs an empty symbol table. A nil logger defaults to
// logrus's standard logger, mirroring the rest of the compiler's ambient
// logging.
func NewSymbolTable(log *logrus.Logger) *SymbolTable {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &SymbolTable{
		children: make(map[string]map[string]symbolNode),
		order:    make(map[string][]string),
		roots:    make(map[string]SymbolKind),
		log:      log,
	}
}

// InitRoot idempotently registers a top-level scope.
func (t *SymbolTable) InitRoot(ns Namespace, kind SymbolKind) {
	if !ns.IsRoot() {
		panic("InitRoot requires a root namespace")
	}

	if _, ok := t.roots[ns.String()]; !ok {
		t.roots[ns.String()] = kind
	}
}

// Set inserts or overwrites a plain (non-attribute) child of parentNS.
// Overwriting a function or module node with a different kind logs a
// warning; overwriting a variable node is silent regardless of the new
// kind.
func (t *SymbolTable) Set(name string, targetNS Namespace, parentNS Namespace, kind SymbolKind) {
	t.set(parentNS, symbolNode{name: name, kind: kind, targetNS: targetNS})
}

// SetAttribute records an alias that transparently dereferences into
// attrName within targetNS, as created by "from X import Y [as Z]".
func (t *SymbolTable) SetAttribute(name string, targetNS Namespace, attrName string, parentNS Namespace) {
	t.set(parentNS, symbolNode{name: name, kind: KindAttribute, targetNS: targetNS, attrName: attrName})
}

func (t *SymbolTable) set(parentNS Namespace, node symbolNode) {
	key := parentNS.String()

	scope, ok := t.children[key]
	if !ok {
		scope = make(map[string]symbolNode)
		t.children[key] = scope
	}

	if existing, ok := scope[node.name]; ok {
		if (existing.kind == KindFunction || existing.kind == KindModule) && existing.kind != node.kind {
			t.log.WithFields(logrus.Fields{
				"scope": parentNS.String(),
				"name":  node.name,
				"was":   existing.kind.String(),
				"now":   node.kind.String(),
			}).Warn("overwriting symbol of a different kind")
		}
	} else {
		t.order[key] = append(t.order[key], node.name)
	}

	scope[node.name] = node
}

// HasChild reports whether name is already declared directly under ns,
// without walking outward to enclosing scopes. Used to detect a duplicate
// import alias within the same scope.
func (t *SymbolTable) HasChild(ns Namespace, name string) bool {
	_, ok := t.child(ns, name)
	return ok
}

// ChildrenOfKind returns the names declared directly under ns whose kind
// matches, in declaration order. The Call-Frame Manager's save/restore
// phase uses this to enumerate a function's own variable cells.
func (t *SymbolTable) ChildrenOfKind(ns Namespace, kind SymbolKind) []string {
	scope := t.children[ns.String()]

	var out []string

	for _, name := range t.order[ns.String()] {
		if scope[name].kind == kind {
			out = append(out, name)
		}
	}

	return out
}

func (t *SymbolTable) child(ns Namespace, name string) (symbolNode, bool) {
	scope, ok := t.children[ns.String()]
	if !ok {
		return symbolNode{}, false
	}

	node, ok := scope[name]

	return node, ok
}

// Get resolves name starting from fromNS outward to the root: it walks the
// path segments of fromNS from root inward, and at each prefix, if name
// appears as a child, remembers it, returning the last such hit. This
// produces lexical-scope shadowing where the closest enclosing declaration
// wins. Attribute nodes are dereferenced transparently unless raw is set.
// Returns the resolved (or raw) target namespace and the namespace in which
// the winning binding was declared.
func (t *SymbolTable) Get(name string, fromNS Namespace, raw bool) (Namespace, Namespace, error) {
	targetNS, definingNS, _, err := t.Lookup(name, fromNS, raw)
	return targetNS, definingNS, err
}

// Lookup behaves exactly like Get but additionally reports the SymbolKind of
// the final (possibly dereferenced) binding, which the Lowering Engine needs
// to decide how a resolved name should be used (a variable load, a function
// call target, a module to recurse an attribute access into, ...).
func (t *SymbolTable) Lookup(name string, fromNS Namespace, raw bool) (Namespace, Namespace, SymbolKind, error) {
	var (
		found      symbolNode
		hit        bool
		definingNS Namespace
	)

	for _, prefix := range fromNS.Prefixes() {
		if node, ok := t.child(prefix, name); ok {
			found = node
			definingNS = prefix
			hit = true
		}
	}

	if !hit {
		return Namespace{}, Namespace{}, 0, newError(NameNotFound, "name %q not found from %s", name, fromNS)
	}

	if raw || found.kind != KindAttribute {
		return found.targetNS, definingNS, found.kind, nil
	}

	return t.Lookup(found.attrName, found.targetNS, false)
}

// ResolveDotted resolves name from fromNS into a dotted path ("root.a.b"),
// the form under which the Template Registry keys its generators.
// Unlike Lookup/Get, it does not require the final attribute to itself be a
// registered symbol-table child: a template module's individual callables
// (add, remove, set_value, ...) are never declared with "def" and so never
// appear in the symbol table at all, only in the Template Registry. A bare
// binding resolves to its own dotted namespace; an attribute binding whose
// target namespace has no matching child for attrName resolves to
// "<target dotted>.<attrName>" on the assumption the remainder lives only in
// the Template Registry, exactly the case a "from X import Y as Z"
// dispatch needs. Reports false if name is not bound at all.
func (t *SymbolTable) ResolveDotted(name string, fromNS Namespace) (string, SymbolKind, Namespace, bool) {
	var (
		found symbolNode
		hit   bool
	)

	for _, prefix := range fromNS.Prefixes() {
		if node, ok := t.child(prefix, name); ok {
			found = node
			hit = true
		}
	}

	if !hit {
		return "", 0, Namespace{}, false
	}

	if found.kind != KindAttribute {
		return found.targetNS.Dotted(), found.kind, found.targetNS, true
	}

	if child, ok := t.child(found.targetNS, found.attrName); ok && child.kind != KindAttribute {
		return child.targetNS.Dotted(), child.kind, child.targetNS, true
	}

	if child, ok := t.child(found.targetNS, found.attrName); ok && child.kind == KindAttribute {
		return t.ResolveDotted(found.attrName, found.targetNS)
	}

	return found.targetNS.Dotted() + "." + found.attrName, KindAttribute, found.targetNS, true
}
