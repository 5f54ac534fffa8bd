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
	"gonum.org/v1/gonum/mat"

	"github.com/latticeml/onnxcpu/internal/onnxmodel"
	"github.com/latticeml/onnxcpu/internal/tensor"
)

// Add implements elementwise addition with NumPy-style broadcasting (§4.7):
// shapes are aligned on their trailing dimensions, and a dimension of 1 (or
// a missing leading dimension) broadcasts against the other operand's.
func Add(_ *onnxmodel.Node, inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if len(inputs) != 2 {
		return nil, shapeErr("Add", "expected exactly 2 inputs, got %d", len(inputs))
	}
	a, b := inputs[0], inputs[1]
	as, bs := a.RequireFloat32("Add"), b.RequireFloat32("Add")

	outShape, err := broadcastShapes(a.Shape, b.Shape)
	if err != nil {
		return nil, err
	}

	out := make([]float32, productOf(outShape))
	aStrides := broadcastStrides(a.Shape, outShape)
	bStrides := broadcastStrides(b.Shape, outShape)
	idx := make([]int, len(outShape))
	for i := range out {
		out[i] = as[flatIndex(idx, aStrides)] + bs[flatIndex(idx, bStrides)]
		incrementIndex(idx, outShape)
	}

	return []*tensor.Tensor{tensor.NewFloat32(outShape, out)}, nil
}

// broadcastShapes computes the NumPy-style broadcast result shape of a and
// b, aligning trailing dimensions and requiring each pair to be equal or for
// one of them to be 1.
func broadcastShapes(a, b []int) ([]int, error) {
	rank := len(a)
	if len(b) > rank {
		rank = len(b)
	}
	out := make([]int, rank)
	for i := 0; i < rank; i++ {
		av, bv := 1, 1
		if i < len(a) {
			av = a[len(a)-1-i]
		}
		if i < len(b) {
			bv = b[len(b)-1-i]
		}
		switch {
		case av == bv:
			out[rank-1-i] = av
		case av == 1:
			out[rank-1-i] = bv
		case bv == 1:
			out[rank-1-i] = av
		default:
			return nil, shapeErr("Add", "shapes %v and %v are not broadcastable", a, b)
		}
	}
	return out, nil
}

// broadcastStrides returns, for each dimension of outShape, the stride into
// a tensor of shape in's flat buffer -- 0 for a broadcast (size-1 or
// missing) dimension.
func broadcastStrides(in, outShape []int) []int {
	rank := len(outShape)
	strides := make([]int, rank)
	inStride := 1
	inOffset := rank - len(in)
	for i := len(in) - 1; i >= 0; i-- {
		if in[i] == 1 {
			strides[inOffset+i] = 0
		} else {
			strides[inOffset+i] = inStride
		}
		inStride *= in[i]
	}
	return strides
}

func flatIndex(idx, strides []int) int {
	n := 0
	for i, s := range strides {
		n += idx[i] * s
	}
	return n
}

func incrementIndex(idx, shape []int) {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < shape[i] {
			return
		}
		idx[i] = 0
	}
}

// MatMul implements batched matrix multiplication (§4.7): the trailing two
// dimensions of each operand are treated as a matrix, any leading
// dimensions as a batch, and gonum performs each 2-D multiply.
func MatMul(_ *onnxmodel.Node, inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if len(inputs) != 2 {
		return nil, shapeErr("MatMul", "expected exactly 2 inputs, got %d", len(inputs))
	}
	a, b := inputs[0], inputs[1]
	if a.Rank() < 2 || b.Rank() < 2 {
		return nil, shapeErr("MatMul", "expected rank >= 2 operands, got ranks %d and %d", a.Rank(), b.Rank())
	}
	as, bs := a.RequireFloat32("MatMul"), b.RequireFloat32("MatMul")

	m, k := a.Shape[a.Rank()-2], a.Shape[a.Rank()-1]
	k2, n := b.Shape[b.Rank()-2], b.Shape[b.Rank()-1]
	if k != k2 {
		return nil, shapeErr("MatMul", "inner dimensions %d and %d do not match", k, k2)
	}

	batchA := a.Shape[:a.Rank()-2]
	batchB := b.Shape[:b.Rank()-2]
	batchShape, err := broadcastShapes(batchA, batchB)
	if err != nil {
		return nil, err
	}
	batches := productOf(batchShape)

	aStrides := broadcastStrides(batchA, batchShape)
	bStrides := broadcastStrides(batchB, batchShape)

	out := make([]float32, batches*m*n)
	idx := make([]int, len(batchShape))
	for batch := 0; batch < batches; batch++ {
		aOff := flatIndex(idx, aStrides) * m * k
		bOff := flatIndex(idx, bStrides) * k * n

		aData := make([]float64, m*k)
		for i, v := range as[aOff : aOff+m*k] {
			aData[i] = float64(v)
		}
		bData := make([]float64, k*n)
		for i, v := range bs[bOff : bOff+k*n] {
			bData[i] = float64(v)
		}

		aMat := mat.NewDense(m, k, aData)
		bMat := mat.NewDense(k, n, bData)
		var resultMat mat.Dense
		resultMat.Mul(aMat, bMat)

		base := batch * m * n
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				out[base+i*n+j] = float32(resultMat.At(i, j))
			}
		}

		incrementIndex(idx, batchShape)
	}

	outShape := append(append([]int(nil), batchShape...), m, n)
	return []*tensor.Tensor{tensor.NewFloat32(outShape, out)}, nil
}
