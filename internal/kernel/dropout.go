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

// Dropout is a no-op at inference time (§4.7): this engine only ever
// evaluates in inference mode, where ONNX defines Dropout as the identity
// on its data input, with the optional mask output (all-true, data's shape)
// produced only if the node declares a second output.
func Dropout(node *onnxmodel.Node, inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if len(inputs) < 1 {
		return nil, shapeErr("Dropout", "expected at least 1 input, got 0")
	}
	data := inputs[0]

	outs := []*tensor.Tensor{data}
	if len(node.Output) > 1 {
		mask := make([]int64, data.NumElements())
		for i := range mask {
			mask[i] = 1
		}
		outs = append(outs, tensor.NewInt64(append([]int(nil), data.Shape...), mask))
	}
	return outs, nil
}
