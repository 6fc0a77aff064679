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
package template

import (
	"errors"
	"testing"

	"github.com/mcfc-lang/mcfc/pkg/ast"
)

func TestRegistry_00_EnsureInitializedRunsOnce(t *testing.T) {
	Reset()
	defer Reset()

	calls := 0
	RegisterModule("bossbar", Module{Init: func() error {
		calls++
		Register("bossbar.show", func(_ []ast.Node, _ []ast.Keyword, _ string, _ Resolver) (string, error) {
			return "bossbar set ...\n", nil
		})
		return nil
	}})

	found, err := EnsureInitialized("bossbar")
	if !found || err != nil {
		t.Fatalf("unexpected result: found=%v err=%v", found, err)
	}

	found, err = EnsureInitialized("bossbar")
	if !found || err != nil {
		t.Fatalf("unexpected result on second call: found=%v err=%v", found, err)
	}

	if calls != 1 {
		t.Fatalf("expected Init to run exactly once, ran %d times", calls)
	}

	gen, ok := Lookup("bossbar.show")
	if !ok {
		t.Fatalf("expected bossbar.show to be registered")
	}

	out, err := gen(nil, nil, "prog:m", nil)
	if err != nil || out == "" {
		t.Fatalf("unexpected generator result: %q, %v", out, err)
	}
}

func TestRegistry_01_UnknownModule(t *testing.T) {
	Reset()
	defer Reset()

	found, err := EnsureInitialized("nope")
	if found || err != nil {
		t.Fatalf("expected found=false err=nil, got %v %v", found, err)
	}
}

func TestRegistry_02_InitFailurePropagates(t *testing.T) {
	Reset()
	defer Reset()

	RegisterModule("broken", Module{Init: func() error { return errors.New("boom") }})

	found, err := EnsureInitialized("broken")
	if !found || err == nil {
		t.Fatalf("expected found=true with error, got %v %v", found, err)
	}
}
