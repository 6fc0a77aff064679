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

// Package textcomponent builds Minecraft JSON text components: the
// "translate", "nbt" and "score" content types, with optional click/hover
// events and colour, plus a small helper for composing a /tellraw command
// line. It is the Go-native counterpart of the original compiler's
// placeholder-substitution helpers, which built these same JSON shapes by
// hand (translatable text with a fallback, nbt readouts scoped to a
// storage root, and run_command/suggest_command/show_text events).
package textcomponent

import (
	"encoding/json"
	"fmt"
)

// Component is one Minecraft JSON text component. Only the fields relevant
// to a given Type are populated; the rest are omitted from the rendered
// JSON.
type Component struct {
	Type       string     `json:"type,omitempty"`
	Text       string     `json:"text,omitempty"`
	Translate  string     `json:"translate,omitempty"`
	Fallback   string     `json:"fallback,omitempty"`
	Color      string     `json:"color,omitempty"`
	Score      *Score     `json:"score,omitempty"`
	NBT        string     `json:"nbt,omitempty"`
	Source     string     `json:"source,omitempty"`
	Storage    string     `json:"storage,omitempty"`
	Interpret  *bool      `json:"interpret,omitempty"`
	ClickEvent *Event     `json:"clickEvent,omitempty"`
	HoverEvent *Event     `json:"hoverEvent,omitempty"`
}

// Score is the payload of a "score"-type component: the scoreboard holder
// and objective whose current value should be rendered.
type Score struct {
	Name      string `json:"name"`
	Objective string `json:"objective"`
}

// Event is a clickEvent or hoverEvent payload.
type Event struct {
	Action   string          `json:"action"`
	Value    string          `json:"value,omitempty"`
	Contents json.RawMessage `json:"contents,omitempty"`
}

// Option customises a Component at construction time, mirroring the
// original builder's keyword-only click_event/hover_event/color arguments.
type Option func(*Component)

// WithColor sets the component's display colour.
func WithColor(color string) Option {
	return func(c *Component) { c.Color = color }
}

// WithRunCommandClick attaches a clickEvent that runs command when clicked.
// A leading '/' is added if not already present.
func WithRunCommandClick(command string) Option {
	if len(command) == 0 || command[0] != '/' {
		command = "/" + command
	}

	return func(c *Component) { c.ClickEvent = &Event{Action: "run_command", Value: command} }
}

// WithSuggestCommandClick attaches a clickEvent that populates the chat
// input with command when clicked.
func WithSuggestCommandClick(command string) Option {
	return func(c *Component) { c.ClickEvent = &Event{Action: "suggest_command", Value: command} }
}

// WithShowTextHover attaches a hoverEvent that shows another component tree
// as a tooltip.
func WithShowTextHover(contents Component) Option {
	return func(c *Component) {
		raw, err := json.Marshal(contents)
		if err != nil {
			// Component trees built from this package's own constructors
			// always marshal; a failure here indicates a caller-supplied
			// value (e.g. a NaN) smuggled through encoding/json.
			panic(fmt.Sprintf("textcomponent: hover contents do not marshal: %v", err))
		}

		c.HoverEvent = &Event{Action: "show_text", Contents: raw}
	}
}

func apply(c Component, opts []Option) Component {
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// Text builds a plain literal text component.
func Text(text string, opts ...Option) Component {
	return apply(Component{Type: "text", Text: text}, opts)
}

// Translate builds a "translatable" component. When fallback is empty a
// visible placeholder fallback is substituted, so a missing translation key
// never renders as empty text.
func Translate(key, fallback string, opts ...Option) Component {
	if fallback == "" {
		fallback = fmt.Sprintf("§4§lTranslation missing: §e§o%s", key)
	}

	return apply(Component{Type: "translatable", Translate: key, Fallback: fallback}, opts)
}

// NBT builds an "nbt" readout component. source is one of "block", "entity"
// or "storage"; storage must be supplied (non-empty) when source is
// "storage".
func NBT(source, path string, storage string, opts ...Option) Component {
	c := Component{Type: "nbt", Source: source, NBT: path}
	if source == "storage" {
		c.Storage = storage
	}

	return apply(c, opts)
}

// ScoreValue builds a "score" readout component showing the live value of a
// scoreboard holder/objective pair.
func ScoreValue(name, objective string, opts ...Option) Component {
	return apply(Component{Type: "score", Score: &Score{Name: name, Objective: objective}}, opts)
}

// JSON renders the component tree as compact JSON text.
func (c Component) JSON() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Tellraw renders a "/tellraw <selector> [components...]" command line
// (without a trailing newline, so callers can embed it inside an
// "execute ... run" line as well as emit it standalone).
func Tellraw(selector string, components ...Component) (string, error) {
	payload := make([]Component, len(components))
	copy(payload, components)

	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("tellraw %s %s", selector, string(b)), nil
}
