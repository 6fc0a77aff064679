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

// shortIDAlphabet is the digit set used to render a per-objective counter
// as a short scoreboard identifier; lower-case letters sort before digits
// so single-character ids stay valid scoreboard-name characters.
const shortIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NameEncoder maintains, for each objective, a bijection between long cell
// names and short engine-facing identifiers. Short-id generation is a
// per-objective counter rendered in shortIDAlphabet, which guarantees
// uniqueness by construction: two different counter values never render to
// the same string.
type NameEncoder struct {
	objectives map[string]*objectiveEncoder
}

type objectiveEncoder struct {
	toShort map[string]string
	toLong  map[string]string
	next    int
}

// NewNameEncoder constructs an empty encoder.
func NewNameEncoder() *NameEncoder {
	return &NameEncoder{objectives: make(map[string]*objectiveEncoder)}
}

func (e *NameEncoder) objective(objective string) *objectiveEncoder {
	o, ok := e.objectives[objective]
	if !ok {
		o = &objectiveEncoder{toShort: make(map[string]string), toLong: make(map[string]string)}
		e.objectives[objective] = o
	}

	return o
}

// Encode returns the short id for name under objective. It is idempotent:
// repeated calls for the same (name, objective) pair return the same id.
// isNew reports whether this call allocated a fresh id, in which case the
// caller (the Lowering Engine) must emit the one-line registration command
// that creates the cell before using it.
func (e *NameEncoder) Encode(name, objective string) (short string, isNew bool) {
	o := e.objective(objective)

	if short, ok := o.toShort[name]; ok {
		return short, false
	}

	short = toBase(o.next, shortIDAlphabet)
	o.next++
	o.toShort[name] = short
	o.toLong[short] = name

	return short, true
}

// IsEncoded reports whether name already has a short id under objective,
// without allocating one.
func (e *NameEncoder) IsEncoded(name, objective string) bool {
	_, ok := e.objective(objective).toShort[name]
	return ok
}

// Reset validates that name was previously encoded under objective,
// failing with UnknownCell if it was never encoded. It does not forget the
// mapping, since short ids are never reused within a compilation; only the
// underlying scoreboard score is cleared by the emitted reset command.
func (e *NameEncoder) Reset(name, objective string) error {
	if !e.IsEncoded(name, objective) {
		return newError(UnknownCell, "reset of unencoded cell %q in objective %s", name, objective)
	}

	return nil
}

// Decode reverse-maps a short id back to its long name, for diagnostics.
func (e *NameEncoder) Decode(short, objective string) (string, bool) {
	name, ok := e.objective(objective).toLong[short]
	return name, ok
}

// toBase renders n (n >= 0) in the given alphabet, most-significant digit
// first, with no leading-zero digit other than for n == 0 itself.
func toBase(n int, alphabet string) string {
	base := len(alphabet)
	if n == 0 {
		return string(alphabet[0])
	}

	var buf []byte

	for n > 0 {
		buf = append([]byte{alphabet[n%base]}, buf...)
		n /= base
	}

	return string(buf)
}
