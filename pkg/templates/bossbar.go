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

// Package templates supplies the concrete Template Registry modules: a
// bossbar control surface and a debug print, each registering itself with
// pkg/template on first import.
package templates

import (
	"fmt"
	"strings"

	"github.com/mcfc-lang/mcfc/pkg/ast"
	"github.com/mcfc-lang/mcfc/pkg/template"
)

func init() {
	template.RegisterModule("bossbar", template.Module{Init: registerBossbar})
}

var allowedBossbarColors = map[string]bool{
	"blue": true, "green": true, "pink": true, "purple": true,
	"red": true, "white": true, "yellow": true,
}

var allowedBossbarStyles = map[string]bool{
	"notched_6": true, "notched_10": true, "notched_12": true,
	"notched_20": true, "progress": true,
}

func registerBossbar() error {
	template.Register("bossbar.add", bossbarAdd)
	template.Register("bossbar.remove", bossbarRemove)
	template.Register("bossbar.set_players", bossbarSetPlayers)
	template.Register("bossbar.set_value", bossbarSetValue)
	template.Register("bossbar.set_max", bossbarSetMax)
	template.Register("bossbar.set_name", bossbarSetName)
	template.Register("bossbar.set_color", bossbarSetColor)
	template.Register("bossbar.set_style", bossbarSetStyle)
	template.Register("bossbar.set_visible", bossbarSetVisible)

	return nil
}

// bindArg resolves the idx'th positional argument, falling back to a
// keyword of the given name.
func bindArg(positional []ast.Node, keywords []ast.Keyword, idx int, name string) (ast.Node, bool) {
	if idx < len(positional) {
		return positional[idx], true
	}

	for _, kw := range keywords {
		if kw.Arg == name {
			return kw.Value, true
		}
	}

	return nil, false
}

func constString(node ast.Node) (string, bool) {
	c, ok := node.(*ast.Constant)
	if !ok {
		return "", false
	}

	s, ok := c.Value.(string)

	return s, ok
}

func constInt(node ast.Node) (int64, bool) {
	c, ok := node.(*ast.Constant)
	if !ok {
		return 0, false
	}

	switch v := c.Value.(type) {
	case int64:
		return v, true
	case bool:
		if v {
			return 1, true
		}

		return 0, true
	default:
		return 0, false
	}
}

func constBool(node ast.Node) (bool, bool) {
	c, ok := node.(*ast.Constant)
	if !ok {
		return false, false
	}

	b, ok := c.Value.(bool)

	return b, ok
}

// checkID normalises a bossbar id, defaulting to the "minecraft" namespace
// when the caller supplied a bare name.
func checkID(raw string) (string, error) {
	if strings.Contains(raw, "\n") {
		return "", fmt.Errorf("bossbar id must not contain a newline")
	}

	if !strings.Contains(raw, ":") {
		return "minecraft:" + raw, nil
	}

	return raw, nil
}

func bossbarID(positional []ast.Node, keywords []ast.Keyword) (string, error) {
	node, ok := bindArg(positional, keywords, 0, "id")
	if !ok {
		return "", fmt.Errorf("bossbar call missing required argument \"id\"")
	}

	raw, ok := constString(node)
	if !ok {
		return "", fmt.Errorf("bossbar \"id\" must be a string literal")
	}

	return checkID(raw)
}

func bossbarAdd(positional []ast.Node, keywords []ast.Keyword, _ string, _ template.Resolver) (string, error) {
	id, err := bossbarID(positional, keywords)
	if err != nil {
		return "", err
	}

	node, ok := bindArg(positional, keywords, 1, "name")
	if !ok {
		return "", fmt.Errorf("bossbar.add missing required argument \"name\"")
	}

	name, ok := constString(node)
	if !ok {
		return "", fmt.Errorf("bossbar.add \"name\" must be a string literal")
	}

	return fmt.Sprintf("bossbar add %s %s\n", id, jsonText(name)), nil
}

func bossbarRemove(positional []ast.Node, keywords []ast.Keyword, _ string, _ template.Resolver) (string, error) {
	id, err := bossbarID(positional, keywords)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("bossbar remove %s\n", id), nil
}

func bossbarSetPlayers(positional []ast.Node, keywords []ast.Keyword, _ string, _ template.Resolver) (string, error) {
	id, err := bossbarID(positional, keywords)
	if err != nil {
		return "", err
	}

	node, ok := bindArg(positional, keywords, 1, "players")
	if !ok {
		return "", fmt.Errorf("bossbar.set_players missing required argument \"players\"")
	}

	players, ok := constString(node)
	if !ok {
		return "", fmt.Errorf("bossbar.set_players \"players\" must be a string literal")
	}

	return fmt.Sprintf("bossbar set %s players %s\n", id, players), nil
}

// bossbarSetNumeric implements the shared shape of set_value/set_max: either
// a non-negative integer literal, or a live variable whose current score is
// read at run time.
func bossbarSetNumeric(field string, positional []ast.Node, keywords []ast.Keyword, currentNS string, resolve template.Resolver) (string, error) {
	id, err := bossbarID(positional, keywords)
	if err != nil {
		return "", err
	}

	node, ok := bindArg(positional, keywords, 1, field)
	if !ok {
		return "", fmt.Errorf("bossbar.set_%s missing required argument %q", field, field)
	}

	if name, isName := node.(*ast.Name); isName {
		cell, prefix, ok := resolve.ResolveCell(name.ID, currentNS)
		if !ok {
			return "", fmt.Errorf("bossbar.set_%s: %q does not name a variable", field, name.ID)
		}

		return prefix + fmt.Sprintf("execute store result bossbar %s %s run scoreboard players get %s %s\n",
			id, field, cell.Name, cell.Objective), nil
	}

	value, ok := constInt(node)
	if !ok {
		return "", fmt.Errorf("bossbar.set_%s %q must be an integer literal or a variable", field, field)
	}

	if value < 0 {
		return "", fmt.Errorf("bossbar.set_%s %q must not be negative", field, field)
	}

	return fmt.Sprintf("bossbar set %s %s %d\n", id, field, value), nil
}

func bossbarSetValue(positional []ast.Node, keywords []ast.Keyword, currentNS string, resolve template.Resolver) (string, error) {
	return bossbarSetNumeric("value", positional, keywords, currentNS, resolve)
}

func bossbarSetMax(positional []ast.Node, keywords []ast.Keyword, currentNS string, resolve template.Resolver) (string, error) {
	return bossbarSetNumeric("max", positional, keywords, currentNS, resolve)
}

func bossbarSetName(positional []ast.Node, keywords []ast.Keyword, _ string, _ template.Resolver) (string, error) {
	id, err := bossbarID(positional, keywords)
	if err != nil {
		return "", err
	}

	node, ok := bindArg(positional, keywords, 1, "name")
	if !ok {
		return "", fmt.Errorf("bossbar.set_name missing required argument \"name\"")
	}

	name, ok := constString(node)
	if !ok {
		return "", fmt.Errorf("bossbar.set_name \"name\" must be a string literal")
	}

	return fmt.Sprintf("bossbar set %s name %s\n", id, jsonText(name)), nil
}

func bossbarSetColor(positional []ast.Node, keywords []ast.Keyword, _ string, _ template.Resolver) (string, error) {
	id, err := bossbarID(positional, keywords)
	if err != nil {
		return "", err
	}

	node, ok := bindArg(positional, keywords, 1, "color")
	if !ok {
		return "", fmt.Errorf("bossbar.set_color missing required argument \"color\"")
	}

	color, ok := constString(node)
	if !ok || !allowedBossbarColors[color] {
		return "", fmt.Errorf("bossbar.set_color \"color\" must be one of the allowed bossbar colors")
	}

	return fmt.Sprintf("bossbar set %s color %s\n", id, color), nil
}

func bossbarSetStyle(positional []ast.Node, keywords []ast.Keyword, _ string, _ template.Resolver) (string, error) {
	id, err := bossbarID(positional, keywords)
	if err != nil {
		return "", err
	}

	node, ok := bindArg(positional, keywords, 1, "style")
	if !ok {
		return "", fmt.Errorf("bossbar.set_style missing required argument \"style\"")
	}

	var style string

	if s, ok := constString(node); ok {
		style = s
	} else if n, ok := constInt(node); ok {
		style = fmt.Sprintf("notched_%d", n)
	} else {
		return "", fmt.Errorf("bossbar.set_style \"style\" must be a string or integer literal")
	}

	if !allowedBossbarStyles[style] {
		return "", fmt.Errorf("bossbar.set_style %q is not an allowed bossbar style", style)
	}

	return fmt.Sprintf("bossbar set %s style %s\n", id, style), nil
}

func bossbarSetVisible(positional []ast.Node, keywords []ast.Keyword, _ string, _ template.Resolver) (string, error) {
	id, err := bossbarID(positional, keywords)
	if err != nil {
		return "", err
	}

	node, ok := bindArg(positional, keywords, 1, "visible")
	if !ok {
		return "", fmt.Errorf("bossbar.set_visible missing required argument \"visible\"")
	}

	visible, ok := constBool(node)
	if !ok {
		return "", fmt.Errorf("bossbar.set_visible \"visible\" must be a boolean literal")
	}

	return fmt.Sprintf("bossbar set %s visible %t\n", id, visible), nil
}
