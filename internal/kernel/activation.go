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
	"math"

	"github.com/latticeml/onnxcpu/internal/onnxmodel"
	"github.com/latticeml/onnxcpu/internal/tensor"
)

// Relu applies max(0, x) elementwise (§4.7).
func Relu(_ *onnxmodel.Node, inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if len(inputs) != 1 {
		return nil, shapeErr("Relu", "expected exactly 1 input, got %d", len(inputs))
	}
	x := inputs[0]
	xs := x.RequireFloat32("Relu")

	out := make([]float32, len(xs))
	for i, v := range xs {
		if v > 0 {
			out[i] = v
		}
	}
	return []*tensor.Tensor{tensor.NewFloat32(append([]int(nil), x.Shape...), out)}, nil
}

// Softmax normalizes along axis 1 by default, or the axis named by the
// "axis" attribute (§4.7). For a tensor of rank > 2, the row is every
// element from axis onward flattened together, not just the axis dimension
// itself. The shift-by-max trick keeps the exponentials from overflowing.
func Softmax(node *onnxmodel.Node, inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if len(inputs) != 1 {
		return nil, shapeErr("Softmax", "expected exactly 1 input, got %d", len(inputs))
	}
	x := inputs[0]
	xs := x.RequireFloat32("Softmax")

	rank := x.Rank()
	axis := int(intAttr(node, "axis", 1))
	if axis < 0 {
		axis += rank
	}
	if axis < 0 || axis >= rank {
		return nil, shapeErr("Softmax", "axis %d out of range for rank %d tensor", axis, rank)
	}

	outer, axisLen := 1, 1
	for i := 0; i < axis; i++ {
		outer *= x.Shape[i]
	}
	for i := axis; i < rank; i++ {
		axisLen *= x.Shape[i]
	}

	out := make([]float32, len(xs))
	for o := 0; o < outer; o++ {
		base := o * axisLen
		maxV := float32(math.Inf(-1))
		for a := 0; a < axisLen; a++ {
			if xs[base+a] > maxV {
				maxV = xs[base+a]
			}
		}
		var sum float32
		for a := 0; a < axisLen; a++ {
			e := float32(math.Exp(float64(xs[base+a] - maxV)))
			out[base+a] = e
			sum += e
		}
		for a := 0; a < axisLen; a++ {
			out[base+a] /= sum
		}
	}

	return []*tensor.Tensor{tensor.NewFloat32(append([]int(nil), x.Shape...), out)}, nil
}
