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

import "github.com/latticeml/onnxcpu/internal/onnxmodel"

// Model is a decoded ONNX model: a header plus its single Graph. Load
// returns one wrapped inside a *Session; Model is exposed directly for
// callers who want to inspect a model (list inputs/outputs, walk nodes)
// without running it.
type Model = onnxmodel.Model

// Graph is a Model's computation graph.
type Graph = onnxmodel.Graph

// Node is one operator invocation within a Graph.
type Node = onnxmodel.Node

// ValueInfo describes a graph input or output: a name, element type, and
// shape, with no payload.
type ValueInfo = onnxmodel.ValueInfo

// DataType mirrors the ONNX TensorProto.DataType enum.
type DataType = onnxmodel.DataType
