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

package schema

// Registry is the immutable result of parsing one .proto source file: a
// tree of descriptors rooted at an unnamed top-level scope, plus a flat
// index from fully-qualified dotted name to descriptor so that callers (the
// decoder, principally) can look up a root message by name without walking
// the tree by hand.
//
// A Registry is built once by Parse and is safe for concurrent read-only
// use by any number of decode operations (§3 Lifecycle).
type Registry struct {
	Syntax string // "proto2" or "proto3"; see Parse.

	root *Descriptor
	byFQN map[string]*Descriptor
}

// Message looks up a descriptor by its fully-qualified dotted name, e.g.
// "ModelProto" or "ModelProto.GraphProto".
func (r *Registry) Message(fqn string) (*Descriptor, bool) {
	d, ok := r.byFQN[fqn]
	return d, ok
}

// Root returns the registry's synthetic top-level scope, whose Contents
// holds every message/oneof/enum declared at the top level of the source.
func (r *Registry) Root() *Descriptor {
	return r.root
}
