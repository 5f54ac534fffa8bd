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

// Package kernel is the operator catalog (§4.7): one Func per supported
// op_type, each a pure function from a Node's resolved input tensors to its
// output tensors. The scheduler (package graph) is the only caller; it
// resolves a node's input names into tensors via the tensor.Store and
// passes them here in declaration order.
package kernel

import (
	"fmt"

	"github.com/latticeml/onnxcpu/internal/onnxmodel"
	"github.com/latticeml/onnxcpu/internal/tensor"
)

// Func computes a node's outputs from its resolved inputs. It returns a
// *tensor.ShapeError on a shape mismatch and panics with one on an
// element-type mismatch (via RequireFloat32/RequireInt64); the scheduler
// recovers any kernel panic and reports it as ExecError.KernelFailure.
type Func func(node *onnxmodel.Node, inputs []*tensor.Tensor) ([]*tensor.Tensor, error)

// registry maps an ONNX op_type to its kernel. It is package-level and
// immutable after init, so Dispatch needs no locking.
var registry = map[string]Func{
	"Conv":              Conv,
	"MaxPool":           MaxPool,
	"GlobalAveragePool": GlobalAveragePool,
	"Relu":              Relu,
	"Softmax":           Softmax,
	"Dropout":           Dropout,
	"Concat":            Concat,
	"Reshape":           Reshape,
	"Add":               Add,
	"MatMul":            MatMul,
}

// Dispatch returns the kernel registered for opType.
func Dispatch(opType string) (Func, bool) {
	f, ok := registry[opType]
	return f, ok
}

// Names lists every registered op_type, in no particular order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}

func shapeErr(op, format string, args ...any) error {
	return &tensor.ShapeError{Op: op, Detail: fmt.Sprintf(format, args...)}
}
