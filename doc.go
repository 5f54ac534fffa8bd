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

// Package onnxcpu is a self-contained CPU inference engine for ONNX-format
// neural network models: given a `.proto` schema and a model byte stream,
// it decodes the model off the wire with no generated code (internal/wire,
// internal/schema, internal/decode), builds a passive model tree
// (internal/onnxmodel), and executes it with a dependency-aware,
// opportunistically parallel scheduler (internal/graph) dispatching into a
// small operator kernel library (internal/kernel).
//
// # Support status
//
// Only the operators listed in internal/kernel are implemented: Conv,
// MaxPool, GlobalAveragePool, Relu, Dropout, Concat, Softmax, Reshape,
// Add, and MatMul. A node whose op_type is not in that list fails with
// ExecError kind UnknownOp rather than being silently skipped.
//
// Only rank-1 through rank-4 float32 and int64 tensors are supported.
// Training-mode graph constructs (gradients, optimizers) are out of scope;
// this engine only ever evaluates a graph in inference mode.
package onnxcpu
