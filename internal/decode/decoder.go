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

// Package decode is the schema-driven message decoder (§4.3): it walks a
// byte buffer tag by tag, consulting a [schema.Registry] to decide what
// each field means, and never from code generated for a particular message
// type. The output of the wire-level walk is a generic [Message] tree; a
// second, ONNX-aware pass (model.go) folds that tree into the typed
// [onnxmodel.Model] the rest of the engine operates on.
//
// Every nested message is decoded against an explicit absolute end offset
// computed from its LEN-prefixed length (§9 "push nested scope and L onto
// explicit stacks; decode until the cursor reaches exactly that offset").
// Rather than hand-maintaining a separate frame stack, each frame's end
// offset is carried as a local in a recursive call -- Go's own call stack
// plays the role of the frame stack, which rules out the
// increment/decrement bookkeeping bugs the explicit-offset redesign exists
// to avoid.
package decode

import (
	"github.com/latticeml/onnxcpu/internal/onnxmodel"
	"github.com/latticeml/onnxcpu/internal/schema"
	"github.com/latticeml/onnxcpu/internal/wire"
)

const defaultMaxDepth = 10000

type options struct {
	maxDepth int
}

// Option configures Decode.
type Option func(*options)

// WithMaxDepth bounds nested-message recursion depth, guarding against a
// pathological or adversarial input forcing unbounded recursion.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// Decode parses data as an instance of the message named root in reg and
// builds the resulting [onnxmodel.Model] (§4.3's decode(bytes,
// root_message_name, schema) -> ModelTree).
func Decode(data []byte, reg *schema.Registry, root string, opts ...Option) (*onnxmodel.Model, error) {
	o := options{maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}

	desc, ok := reg.Message(root)
	if !ok {
		return nil, ErrUnknownRoot
	}

	msg, cursor, err := decodeMessage(data, 0, len(data), desc, 0, o.maxDepth)
	if err != nil {
		return nil, err
	}
	if cursor != len(data) {
		// Unreachable given decodeMessage's loop invariant, kept as a
		// guard against a future refactor breaking it silently.
		return nil, &Error{Kind: Malformed, Offset: cursor}
	}

	return buildModel(msg)
}

// decodeMessage decodes the LEN region [start, end) as an instance of desc,
// returning the built Message and the cursor after the last field (always
// equal to end on success; the invariant in §8 "Byte accounting").
func decodeMessage(data []byte, start, end int, desc *schema.Descriptor, depth, maxDepth int) (*Message, int, error) {
	if depth > maxDepth {
		return nil, 0, &Error{Kind: Malformed, Offset: start}
	}

	msg := &Message{Descriptor: desc, Fields: make(map[string][]Value)}
	cursor := start
	for cursor < end {
		fieldNum, wt, next, err := wire.ConsumeTag(data, cursor)
		if err != nil {
			return nil, 0, wrapWireErr(err, cursor)
		}
		if next > end {
			return nil, 0, &Error{Kind: Malformed, Offset: cursor}
		}

		attr, ok := desc.FieldByNumber(fieldNum)
		if !ok {
			return nil, 0, &Error{Kind: UnknownField, Offset: next, Field: fieldNum}
		}

		val, after, err := decodeValue(data, next, end, wt, attr, desc, depth, maxDepth)
		if err != nil {
			return nil, 0, err
		}
		cursor = after
		msg.Fields[attr.Name] = append(msg.Fields[attr.Name], val)
	}
	return msg, cursor, nil
}

// decodeValue decodes one field occurrence whose tag has already been
// consumed; cursor points at the value payload.
func decodeValue(data []byte, cursor, end int, wt wire.Type, attr schema.Attribute, scope *schema.Descriptor, depth, maxDepth int) (Value, int, error) {
	if schema.IsPrimitive(attr.TypeName) {
		return decodePrimitive(data, cursor, end, wt, attr.TypeName)
	}

	target, ok := scope.ResolveType(attr.TypeName)
	if !ok {
		return Value{}, 0, &Error{Kind: TypeMismatch, Offset: cursor}
	}

	switch target.Kind {
	case schema.EnumKind:
		if wt != wire.Varint {
			return Value{}, 0, &Error{Kind: TypeMismatch, Offset: cursor}
		}
		v, next, err := wire.ConsumeVarint(data, cursor)
		if err != nil {
			return Value{}, 0, wrapWireErr(err, cursor)
		}
		if next > end {
			return Value{}, 0, &Error{Kind: Malformed, Offset: cursor}
		}
		name := target.Attributes[int32(v)].Name
		return Value{Kind: VEnum, EnumNum: int64(v), EnumName: name}, next, nil

	default: // MessageKind, or a OneOfKind referenced directly (schema error elsewhere, treated as a message).
		if wt != wire.Len {
			return Value{}, 0, &Error{Kind: TypeMismatch, Offset: cursor}
		}
		length, afterLen, err := wire.ConsumeVarint(data, cursor)
		if err != nil {
			return Value{}, 0, wrapWireErr(err, cursor)
		}
		payloadEnd := afterLen + int(length)
		if payloadEnd > end || payloadEnd < afterLen {
			return Value{}, 0, &Error{Kind: Malformed, Offset: afterLen}
		}
		nested, _, err := decodeMessage(data, afterLen, payloadEnd, target, depth+1, maxDepth)
		if err != nil {
			return Value{}, 0, err
		}
		return Value{Kind: VMessage, Msg: nested}, payloadEnd, nil
	}
}

func decodePrimitive(data []byte, cursor, end int, wt wire.Type, typeName string) (Value, int, error) {
	switch typeName {
	case "int32", "int64", "uint32", "uint64", "bool":
		if wt != wire.Varint {
			return Value{}, 0, &Error{Kind: TypeMismatch, Offset: cursor}
		}
		v, next, err := wire.ConsumeVarint(data, cursor)
		if err != nil {
			return Value{}, 0, wrapWireErr(err, cursor)
		}
		if next > end {
			return Value{}, 0, &Error{Kind: Malformed, Offset: cursor}
		}
		switch typeName {
		case "bool":
			return Value{Kind: VBool, Bool: v != 0}, next, nil
		case "uint32", "uint64":
			return Value{Kind: VUint, Uint: v}, next, nil
		default:
			return Value{Kind: VInt, Int: int64(v)}, next, nil
		}

	case "sint32":
		if wt != wire.Varint {
			return Value{}, 0, &Error{Kind: TypeMismatch, Offset: cursor}
		}
		v, next, err := wire.ConsumeVarint(data, cursor)
		if err != nil {
			return Value{}, 0, wrapWireErr(err, cursor)
		}
		if next > end {
			return Value{}, 0, &Error{Kind: Malformed, Offset: cursor}
		}
		return Value{Kind: VInt, Int: int64(wire.DecodeZigzag32(v))}, next, nil

	case "sint64":
		if wt != wire.Varint {
			return Value{}, 0, &Error{Kind: TypeMismatch, Offset: cursor}
		}
		v, next, err := wire.ConsumeVarint(data, cursor)
		if err != nil {
			return Value{}, 0, wrapWireErr(err, cursor)
		}
		if next > end {
			return Value{}, 0, &Error{Kind: Malformed, Offset: cursor}
		}
		return Value{Kind: VInt, Int: wire.DecodeZigzag64(v)}, next, nil

	case "fixed32", "sfixed32":
		if wt != wire.I32 {
			return Value{}, 0, &Error{Kind: TypeMismatch, Offset: cursor}
		}
		v, next, err := wire.ConsumeFixed32(data, cursor)
		if err != nil {
			return Value{}, 0, wrapWireErr(err, cursor)
		}
		if next > end {
			return Value{}, 0, &Error{Kind: Malformed, Offset: cursor}
		}
		if typeName == "sfixed32" {
			return Value{Kind: VInt, Int: int64(int32(v))}, next, nil
		}
		return Value{Kind: VUint, Uint: uint64(v)}, next, nil

	case "float":
		if wt != wire.I32 {
			return Value{}, 0, &Error{Kind: TypeMismatch, Offset: cursor}
		}
		v, next, err := wire.ConsumeFixed32(data, cursor)
		if err != nil {
			return Value{}, 0, wrapWireErr(err, cursor)
		}
		if next > end {
			return Value{}, 0, &Error{Kind: Malformed, Offset: cursor}
		}
		return Value{Kind: VFloat32, F32: wire.Float32FromBits(v)}, next, nil

	case "fixed64", "sfixed64":
		if wt != wire.I64 {
			return Value{}, 0, &Error{Kind: TypeMismatch, Offset: cursor}
		}
		v, next, err := wire.ConsumeFixed64(data, cursor)
		if err != nil {
			return Value{}, 0, wrapWireErr(err, cursor)
		}
		if next > end {
			return Value{}, 0, &Error{Kind: Malformed, Offset: cursor}
		}
		if typeName == "sfixed64" {
			return Value{Kind: VInt, Int: int64(v)}, next, nil
		}
		return Value{Kind: VUint, Uint: v}, next, nil

	case "double":
		if wt != wire.I64 {
			return Value{}, 0, &Error{Kind: TypeMismatch, Offset: cursor}
		}
		v, next, err := wire.ConsumeFixed64(data, cursor)
		if err != nil {
			return Value{}, 0, wrapWireErr(err, cursor)
		}
		if next > end {
			return Value{}, 0, &Error{Kind: Malformed, Offset: cursor}
		}
		return Value{Kind: VFloat64, F64: wire.Float64FromBits(v)}, next, nil

	case "string":
		if wt != wire.Len {
			return Value{}, 0, &Error{Kind: TypeMismatch, Offset: cursor}
		}
		b, next, err := wire.ConsumeBytes(data, cursor)
		if err != nil {
			return Value{}, 0, wrapWireErr(err, cursor)
		}
		if next > end {
			return Value{}, 0, &Error{Kind: Malformed, Offset: cursor}
		}
		return Value{Kind: VString, Str: string(b), Bytes: append([]byte(nil), b...)}, next, nil

	case "bytes":
		if wt != wire.Len {
			return Value{}, 0, &Error{Kind: TypeMismatch, Offset: cursor}
		}
		b, next, err := wire.ConsumeBytes(data, cursor)
		if err != nil {
			return Value{}, 0, wrapWireErr(err, cursor)
		}
		if next > end {
			return Value{}, 0, &Error{Kind: Malformed, Offset: cursor}
		}
		return Value{Kind: VBytes, Bytes: append([]byte(nil), b...)}, next, nil

	default:
		return Value{}, 0, &Error{Kind: TypeMismatch, Offset: cursor}
	}
}
