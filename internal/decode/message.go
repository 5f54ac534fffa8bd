// Copyright 2025 The onnxcpu Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package decode

import "github.com/latticeml/onnxcpu/internal/schema"

// ValueKind tags the payload carried by a Value.
type ValueKind int

const (
	VMessage ValueKind = iota
	VEnum
	VString
	VBytes
	VInt
	VUint
	VFloat32
	VFloat64
	VBool
)

// Value is one decoded field occurrence. Decode never knows in advance what
// a field "means" (§4.3: decoding is schema-driven, not type-generated) --
// it only knows the wire type it observed and the schema type it resolved
// against, so a Value is a closed tagged union over the primitive kinds the
// wire format can produce plus a nested Message.
type Value struct {
	Kind ValueKind

	Msg      *Message
	EnumNum  int64
	EnumName string
	Str      string
	Bytes    []byte
	Int      int64
	Uint     uint64
	F32      float32
	F64      float64
	Bool     bool
}

// Message is a generic decoded message: every occurrence of every field,
// keyed by the schema's field name, in wire order within each field. A
// singular field has a one-element slice; a repeated field (including a
// oneof's eventual winner, or every value if the bytes pathologically set
// it more than once) has one element per occurrence.
type Message struct {
	Descriptor *schema.Descriptor
	Fields     map[string][]Value
}

// get returns the first occurrence of field, as a singular accessor would.
func (m *Message) get(field string) (Value, bool) {
	vs := m.Fields[field]
	if len(vs) == 0 {
		return Value{}, false
	}
	return vs[0], true
}

// getAll returns every occurrence of field, in wire order.
func (m *Message) getAll(field string) []Value {
	return m.Fields[field]
}
