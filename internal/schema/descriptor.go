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

// Package schema parses a Protocol Buffers v2/v3-style .proto text file into
// an in-memory registry of descriptors, and resolves field numbers and type
// names against that registry. It knows nothing about the wire format; see
// [github.com/latticeml/onnxcpu/internal/decode] for the piece that walks a
// byte stream guided by a *Registry.
package schema

import "strings"

// Kind distinguishes the three descriptor shapes a .proto scope can take.
type Kind int

const (
	MessageKind Kind = iota
	OneOfKind
	EnumKind
)

func (k Kind) String() string {
	switch k {
	case MessageKind:
		return "message"
	case OneOfKind:
		return "oneof"
	case EnumKind:
		return "enum"
	default:
		return "unknown"
	}
}

// Annotation is a field's cardinality, as declared in the .proto source.
type Annotation int

const (
	Optional Annotation = iota
	Repeated
	Required
	Map
)

func (a Annotation) String() string {
	switch a {
	case Optional:
		return "optional"
	case Repeated:
		return "repeated"
	case Required:
		return "required"
	case Map:
		return "map"
	default:
		return "unknown"
	}
}

// Attribute is one field of a Message or OneOf descriptor, keyed by tag in
// Descriptor.Attributes. For an Enum descriptor, Attribute instead describes
// one named constant: Annotation is always Optional, and Name == TypeName ==
// the constant's identifier.
type Attribute struct {
	Annotation Annotation
	Name       string
	TypeName   string
}

// Descriptor describes one message, oneof, or enum scope.
type Descriptor struct {
	Kind Kind
	Name string

	// Attributes maps field tag (or, for Enum, numeric constant) to its
	// declaration. Tags are unique within a Descriptor, and (per §3) unique
	// across a Message's own Attributes and all of its OneOf children.
	Attributes map[int32]Attribute

	// Contents maps a nested type's name to its descriptor: nested
	// messages, oneofs, and enums declared directly inside this scope.
	Contents map[string]*Descriptor

	// Parent is the enclosing scope, or nil for a top-level descriptor.
	// Type-name resolution walks this chain outward (§4.2/§4.3).
	Parent *Descriptor
}

func newDescriptor(kind Kind, name string, parent *Descriptor) *Descriptor {
	return &Descriptor{
		Kind:       kind,
		Name:       name,
		Attributes: make(map[int32]Attribute),
		Contents:   make(map[string]*Descriptor),
		Parent:     parent,
	}
}

// FieldByNumber resolves field to a (name, declaration) pair by consulting
// this Descriptor's own Attributes first, then the Attributes of every
// OneOf child, matching the decoder's field-lookup rule in §4.3 step 2.
func (d *Descriptor) FieldByNumber(field int32) (Attribute, bool) {
	if attr, ok := d.Attributes[field]; ok {
		return attr, true
	}
	for _, child := range d.Contents {
		if child.Kind != OneOfKind {
			continue
		}
		if attr, ok := child.Attributes[field]; ok {
			return attr, true
		}
	}
	return Attribute{}, false
}

// ResolveType resolves a field's declared type name against the scope in
// which the field was declared: it first looks among d's own nested
// Contents (descending through dotted path components), then retries from
// d.Parent, and so on up to the root. This mirrors the §4.2 invariant that
// "search walks outward from the enclosing scope to the root."
//
// If name does not resolve to any descriptor in scope, ok is false;
// callers should then check IsPrimitive.
func (d *Descriptor) ResolveType(name string) (target *Descriptor, ok bool) {
	parts := strings.Split(name, ".")
	for scope := d; scope != nil; scope = scope.Parent {
		if found, ok := descend(scope, parts); ok {
			return found, true
		}
	}
	return nil, false
}

func descend(scope *Descriptor, parts []string) (*Descriptor, bool) {
	cur := scope
	for _, p := range parts {
		next, ok := cur.Contents[p]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// primitives are the scalar wire types usable directly as a field's type
// without any registry lookup.
var primitives = map[string]bool{
	"string": true, "bytes": true, "bool": true,
	"int32": true, "int64": true, "uint32": true, "uint64": true,
	"sint32": true, "sint64": true,
	"fixed32": true, "fixed64": true, "sfixed32": true, "sfixed64": true,
	"float": true, "double": true,
}

// IsPrimitive reports whether name is a scalar Protocol Buffers type rather
// than a reference into the registry.
func IsPrimitive(name string) bool {
	return primitives[name]
}
