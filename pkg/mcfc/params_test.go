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
	"testing"

	"github.com/mcfc-lang/mcfc/pkg/ast"
	"github.com/mcfc-lang/mcfc/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSignature_00_RightAlignedDefaults(t *testing.T) {
	params := []ast.Param{
		{Name: "x"},
		{Name: "y", Default: &ast.Constant{Value: int64(5)}},
	}

	sig, err := BuildSignature(params)
	require.NoError(t, err)
	require.Len(t, sig.Params, 2)
	assert.True(t, sig.Params[0].Default.IsEmpty())
	require.False(t, sig.Params[1].Default.IsEmpty())
	assert.Equal(t, int64(5), sig.Params[1].Default.Unwrap().Value())
}

func TestBuildSignature_01_NonLiteralDefaultRejected(t *testing.T) {
	params := []ast.Param{
		{Name: "x", Default: &ast.Name{ID: "other"}},
	}

	_, err := BuildSignature(params)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, UnsupportedDefault, ce.Kind)
}

func TestBindArguments_00_AllPositional(t *testing.T) {
	sig := &Signature{Params: []ParamSignature{{Name: "x"}, {Name: "y"}}}

	bindings, err := BindArguments(sig, []ast.Node{&ast.Constant{Value: int64(1)}, &ast.Constant{Value: int64(2)}}, nil)
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	assert.Equal(t, "x", bindings[0].Param)
	assert.Equal(t, "y", bindings[1].Param)
}

func TestBindArguments_01_ExtraArgument(t *testing.T) {
	sig := &Signature{Params: []ParamSignature{{Name: "x"}}}

	_, err := BindArguments(sig, []ast.Node{&ast.Constant{Value: int64(1)}, &ast.Constant{Value: int64(2)}}, nil)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ExtraArgument, ce.Kind)
}

func TestBindArguments_02_MissingArgument(t *testing.T) {
	sig := &Signature{Params: []ParamSignature{{Name: "x"}}}

	_, err := BindArguments(sig, nil, nil)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, MissingArgument, ce.Kind)
}

func TestBindArguments_03_UnnecessarySkipped(t *testing.T) {
	sig := &Signature{Params: []ParamSignature{{Name: "tag", Default: util.Some(Unnecessary)}}}

	bindings, err := BindArguments(sig, nil, nil)
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.True(t, bindings[0].Skipped)
}

func TestBindArguments_04_KeywordArgument(t *testing.T) {
	sig := &Signature{Params: []ParamSignature{{Name: "x"}, {Name: "y"}}}

	bindings, err := BindArguments(sig, nil, []ast.Keyword{
		{Arg: "y", Value: &ast.Constant{Value: int64(9)}},
		{Arg: "x", Value: &ast.Constant{Value: int64(1)}},
	})
	require.NoError(t, err)
	require.Len(t, bindings, 2)
	assert.Equal(t, "x", bindings[0].Param)
	assert.Equal(t, "y", bindings[1].Param)
}

func TestBindArguments_05_UnknownKeyword(t *testing.T) {
	sig := &Signature{Params: []ParamSignature{{Name: "x"}}}

	_, err := BindArguments(sig, nil, []ast.Keyword{{Arg: "z", Value: &ast.Constant{Value: int64(1)}}})
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ExtraArgument, ce.Kind)
}
