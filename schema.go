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

package onnxcpu

import "github.com/latticeml/onnxcpu/internal/schema"

// Schema is a parsed .proto source file: the registry of message/oneof/enum
// descriptors a model byte stream is decoded against.
type Schema = schema.Registry

// SchemaWarning records an unrecognized top-level construct in a .proto
// source, skipped rather than failing the parse.
type SchemaWarning = schema.Warning

// ParseSchema parses a .proto source file (proto2 or proto3 syntax) into a
// Schema. Unrecognized top-level constructs are returned as warnings rather
// than errors (§6).
func ParseSchema(src string) (*Schema, []SchemaWarning, error) {
	return schema.Parse(src)
}
