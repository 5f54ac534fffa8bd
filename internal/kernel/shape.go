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

package kernel

import (
	"github.com/latticeml/onnxcpu/internal/onnxmodel"
	"github.com/latticeml/onnxcpu/internal/tensor"
)

// Reshape reinterprets data's elements under a new shape taken from the
// second input (§4.7). A single -1 entry is inferred from the element
// count; a 0 entry copies the corresponding dimension from data's shape,
// unless the node's allowzero attribute is set.
func Reshape(node *onnxmodel.Node, inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if len(inputs) != 2 {
		return nil, shapeErr("Reshape", "expected exactly 2 inputs, got %d", len(inputs))
	}
	data, shapeTensor := inputs[0], inputs[1]
	dims := shapeTensor.RequireInt64("Reshape")
	allowZero := intAttr(node, "allowzero", 0) != 0

	newShape := make([]int, len(dims))
	inferIdx := -1
	product := 1
	for i, d := range dims {
		switch {
		case d == -1:
			if inferIdx != -1 {
				return nil, shapeErr("Reshape", "shape has more than one -1 entry")
			}
			inferIdx = i
			newShape[i] = -1
		case d == 0 && !allowZero:
			if i >= data.Rank() {
				return nil, shapeErr("Reshape", "0 entry at position %d has no corresponding input dimension", i)
			}
			newShape[i] = data.Shape[i]
			product *= newShape[i]
		default:
			newShape[i] = int(d)
			product *= newShape[i]
		}
	}

	total := data.NumElements()
	if inferIdx != -1 {
		if product == 0 || total%product != 0 {
			return nil, shapeErr("Reshape", "cannot infer dimension: %d elements not divisible by product %d of named dimensions", total, product)
		}
		newShape[inferIdx] = total / product
		product *= newShape[inferIdx]
	}
	if product != total {
		return nil, shapeErr("Reshape", "reshape target has %d elements, data has %d", product, total)
	}

	switch data.Elem {
	case tensor.Float32:
		return []*tensor.Tensor{tensor.NewFloat32(newShape, append([]float32(nil), data.F32...))}, nil
	case tensor.Int64:
		return []*tensor.Tensor{tensor.NewInt64(newShape, append([]int64(nil), data.I64...))}, nil
	default:
		return nil, shapeErr("Reshape", "unsupported element kind %v", data.Elem)
	}
}

// Concat joins tensors along a single axis (§4.7). All inputs must agree on
// rank, element kind, and every dimension other than axis.
func Concat(node *onnxmodel.Node, inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if len(inputs) < 1 {
		return nil, shapeErr("Concat", "expected at least 1 input, got 0")
	}
	rank := inputs[0].Rank()
	axis := int(intAttr(node, "axis", 0))
	if axis < 0 {
		axis += rank
	}
	if axis < 0 || axis >= rank {
		return nil, shapeErr("Concat", "axis %d out of range for rank %d tensors", axis, rank)
	}

	outShape := append([]int(nil), inputs[0].Shape...)
	outShape[axis] = 0
	for _, in := range inputs {
		if in.Rank() != rank {
			return nil, shapeErr("Concat", "all inputs must share rank %d, got %d", rank, in.Rank())
		}
		if in.Elem != inputs[0].Elem {
			return nil, shapeErr("Concat", "all inputs must share element kind")
		}
		for d := 0; d < rank; d++ {
			if d == axis {
				continue
			}
			if in.Shape[d] != inputs[0].Shape[d] {
				return nil, shapeErr("Concat", "dimension %d mismatch: %d vs %d", d, in.Shape[d], inputs[0].Shape[d])
			}
		}
		outShape[axis] += in.Shape[axis]
	}

	outer, inner := 1, 1
	for d := 0; d < axis; d++ {
		outer *= outShape[d]
	}
	for d := axis + 1; d < rank; d++ {
		inner *= outShape[d]
	}

	switch inputs[0].Elem {
	case tensor.Float32:
		out := make([]float32, 0, productOf(outShape))
		chunks := make([][]float32, len(inputs))
		for i, in := range inputs {
			chunks[i] = in.RequireFloat32("Concat")
		}
		for o := 0; o < outer; o++ {
			for i, in := range inputs {
				segLen := in.Shape[axis] * inner
				start := o * segLen
				out = append(out, chunks[i][start:start+segLen]...)
			}
		}
		return []*tensor.Tensor{tensor.NewFloat32(outShape, out)}, nil

	case tensor.Int64:
		out := make([]int64, 0, productOf(outShape))
		chunks := make([][]int64, len(inputs))
		for i, in := range inputs {
			chunks[i] = in.RequireInt64("Concat")
		}
		for o := 0; o < outer; o++ {
			for i, in := range inputs {
				segLen := in.Shape[axis] * inner
				start := o * segLen
				out = append(out, chunks[i][start:start+segLen]...)
			}
		}
		return []*tensor.Tensor{tensor.NewInt64(outShape, out)}, nil

	default:
		return nil, shapeErr("Concat", "unsupported element kind %v", inputs[0].Elem)
	}
}

func productOf(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
