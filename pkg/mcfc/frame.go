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

import "github.com/mcfc-lang/mcfc/pkg/util/collection/stack"

// FrameManager tracks, per function namespace, the ordered list of live
// temporary cells created while lowering that function's body: cells
// allocated by BinOp/Compare/etc. that have not yet been reset. The
// Lowering Engine pushes a name on allocation and pops it on reset; the
// live list at the point of an outgoing call is exactly what the save/
// restore protocol must spill and reload.
type FrameManager struct {
	live map[string]*stack.Stack[string]
}

// NewFrameManager constructs an empty call-frame manager.
func NewFrameManager() *FrameManager {
	return &FrameManager{live: make(map[string]*stack.Stack[string])}
}

func (m *FrameManager) scope(fn Namespace) *stack.Stack[string] {
	key := fn.String()

	s, ok := m.live[key]
	if !ok {
		s = stack.NewStack[string]()
		m.live[key] = s
	}

	return s
}

// Push records cell as a newly allocated live temporary within fn's scope.
func (m *FrameManager) Push(fn Namespace, cell string) {
	m.scope(fn).Push(cell)
}

// Pop removes and returns the most recently allocated live temporary within
// fn's scope. The second result is false if no live temporaries remain.
func (m *FrameManager) Pop(fn Namespace) (string, bool) {
	s := m.scope(fn)
	if s.IsEmpty() {
		return "", false
	}

	return s.Pop(), true
}

// Live returns a snapshot of fn's currently-live temporaries, in allocation
// order (oldest first) — the order the save phase must append them to the
// LocalTemp storage list, and the reverse of the order the restore phase
// must pop them back out.
func (m *FrameManager) Live(fn Namespace) []string {
	s := m.scope(fn)

	n := int(s.Len())
	out := make([]string, n)

	for i := 0; i < n; i++ {
		// Peek(0) is the top (most recently pushed); fill back-to-front so
		// out ends up oldest-first.
		out[n-1-i] = s.Peek(uint(i))
	}

	return out
}
