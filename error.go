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

import (
	"github.com/latticeml/onnxcpu/internal/decode"
	"github.com/latticeml/onnxcpu/internal/graph"
	"github.com/latticeml/onnxcpu/internal/schema"
	"github.com/latticeml/onnxcpu/internal/tensor"
)

// This package does not define a new error taxonomy; it aliases the kind
// each stage already closed over internally (§7), so callers can
// errors.As against the concrete type that actually produced a failure
// without reaching into internal/.

// SchemaError reports a malformed .proto schema.
type SchemaError = schema.Error

// DecodeError reports a wire-format or schema-mismatch failure while
// decoding a model byte stream.
type DecodeError = decode.Error

// StoreError reports a tensor store violation (double publish, or a
// WaitFor cancelled by context).
type StoreError = tensor.StoreError

// ShapeError reports a kernel finding a tensor's shape or element type
// unusable for the operation it was asked to perform.
type ShapeError = tensor.ShapeError

// ExecError reports a graph-execution failure: a missing input, a cycle,
// an unregistered op_type, a bad attribute, or a kernel failure.
type ExecError = graph.ExecError

// Re-exported so callers can switch on err.Kind without importing
// internal/graph themselves.
const (
	ErrMissingInput  = graph.MissingInput
	ErrCycle         = graph.Cycle
	ErrUnknownOp     = graph.UnknownOp
	ErrAttrMissing   = graph.AttrMissing
	ErrAttrUnknown   = graph.AttrUnknown
	ErrKernelFailure = graph.KernelFailure
)
