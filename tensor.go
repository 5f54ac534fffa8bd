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

import "github.com/latticeml/onnxcpu/internal/tensor"

// Tensor is a rank-1 through rank-4 dense array of float32 or int64, the
// unit of data a Session.Run call accepts as input and returns as output.
type Tensor = tensor.Tensor

// Elem is a Tensor's element type.
type Elem = tensor.Elem

const (
	Float32 = tensor.Float32
	Int64   = tensor.Int64
)

// NewFloat32Tensor builds a float32 Tensor, panicking if data's length does
// not match the product of shape.
func NewFloat32Tensor(shape []int, data []float32) *Tensor {
	return tensor.NewFloat32(shape, data)
}

// NewInt64Tensor builds an int64 Tensor, with the same length invariant as
// NewFloat32Tensor.
func NewInt64Tensor(shape []int, data []int64) *Tensor {
	return tensor.NewInt64(shape, data)
}
