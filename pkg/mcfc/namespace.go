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
	"strings"
)

// Namespace is the canonical address of a scope: "root:a\b\c".  The root
// names a top-level user or library root, and each backslash-separated
// segment descends one scope further (module, package or function).  A
// Namespace never itself represents a cell; cells are plain strings formed
// by appending a "." suffix to a namespace's string form (see Cell).
type Namespace struct {
	root     string
	segments []string
}

// NewRootNamespace constructs the namespace "root:" with no nested scopes.
func NewRootNamespace(root string) Namespace {
	return Namespace{root: root}
}

// ParseNamespace parses a canonical "root:a\b\c" string.  An empty scope
// portion is permitted (bare "root:").
func ParseNamespace(s string) (Namespace, error) {
	root, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Namespace{}, fmt.Errorf("malformed namespace %q: missing ':'", s)
	}

	if rest == "" {
		return Namespace{root: root}, nil
	}

	return Namespace{root: root, segments: strings.Split(rest, `\`)}, nil
}

// Root returns the root name of this namespace (without the trailing ':').
func (n Namespace) Root() string {
	return n.root
}

// Segments returns the scope path beneath the root.  The returned slice must
// not be mutated by callers.
func (n Namespace) Segments() []string {
	return n.segments
}

// Depth returns the number of segments beneath the root.  A root namespace
// has depth zero.
func (n Namespace) Depth() int {
	return len(n.segments)
}

// IsRoot determines whether this namespace names the root scope itself.
func (n Namespace) IsRoot() bool {
	return len(n.segments) == 0
}

// Child extends this namespace with one more nested scope segment.
func (n Namespace) Child(name string) Namespace {
	segments := make([]string, len(n.segments)+1)
	copy(segments, n.segments)
	segments[len(n.segments)] = name

	return Namespace{root: n.root, segments: segments}
}

// Parent returns the enclosing namespace, or false if this is already a root.
func (n Namespace) Parent() (Namespace, bool) {
	if n.IsRoot() {
		return Namespace{}, false
	}

	return Namespace{root: n.root, segments: n.segments[:len(n.segments)-1]}, true
}

// Tail returns the innermost segment name, or the root name if this
// namespace has no segments.
func (n Namespace) Tail() string {
	if n.IsRoot() {
		return n.root
	}

	return n.segments[len(n.segments)-1]
}

// Prefixes returns every enclosing namespace of n, from the root outward,
// ending with n itself.  This is the traversal order used by lexical scope
// resolution: the root is checked first, the innermost scope last, so that
// the closest enclosing declaration wins.
func (n Namespace) Prefixes() []Namespace {
	prefixes := make([]Namespace, len(n.segments)+1)
	prefixes[0] = Namespace{root: n.root}

	for i := range n.segments {
		prefixes[i+1] = Namespace{root: n.root, segments: n.segments[:i+1]}
	}

	return prefixes
}

// Equal determines whether two namespaces denote the same scope.
func (n Namespace) Equal(other Namespace) bool {
	if n.root != other.root || len(n.segments) != len(other.segments) {
		return false
	}

	for i := range n.segments {
		if n.segments[i] != other.segments[i] {
			return false
		}
	}

	return true
}

// String renders the canonical "root:a\b\c" form of this namespace.
func (n Namespace) String() string {
	if len(n.segments) == 0 {
		return n.root + ":"
	}

	return n.root + ":" + strings.Join(n.segments, `\`)
}

// Cell forms the name of a cell attached to this namespace.  Suffixes are
// conventionally one of: ".name" (a declared variable or parameter), the
// dedicated result-temp suffix (see ResultSuffix), or a freshly minted
// per-operation suffix such as ".*BinOp<uid>".  A cell name is a plain
// string rather than a Namespace: the attached "." never introduces a
// further, independently addressable scope.
func (n Namespace) Cell(suffix string) string {
	return n.String() + suffix
}

// FilePath converts this namespace into a slash-separated relative
// filesystem path: file names use / on emission, while in-memory
// namespaces use \. The root becomes the first path element.
func (n Namespace) FilePath() string {
	if len(n.segments) == 0 {
		return n.root
	}

	return n.root + "/" + strings.Join(n.segments, "/")
}

// Dotted renders this namespace as a dotted name ("root.a.b.c"), the form
// under which template generators are registered in the Template Registry
// and under which a dotted import path is resolved.
func (n Namespace) Dotted() string {
	if len(n.segments) == 0 {
		return n.root
	}

	return n.root + "." + strings.Join(n.segments, ".")
}

// ResultSuffix is the conventional suffix of the per-scope result-temp
// cell.
const ResultSuffix = ".?Result"

// ResultCell returns the result-temp cell name for this namespace.
func (n Namespace) ResultCell() string {
	return n.Cell(ResultSuffix)
}

// ReturnSuffix is the conventional suffix of a function's dedicated
// return-value cell, held on the FuncResult objective.
const ReturnSuffix = ".?Return"

// ReturnCell returns this namespace's return-value cell name. Only
// meaningful when n names a function.
func (n Namespace) ReturnCell() string {
	return n.Cell(ReturnSuffix)
}
