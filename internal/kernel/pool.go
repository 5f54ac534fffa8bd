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

// MaxPool implements 2-D max pooling (§4.7). It shares its padding-policy
// arithmetic with Conv, since ONNX defines auto_pad identically for both
// operators, but has no dilation or grouping.
func MaxPool(node *onnxmodel.Node, inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if len(inputs) != 1 {
		return nil, shapeErr("MaxPool", "expected exactly 1 input, got %d", len(inputs))
	}
	x := inputs[0]
	xs := x.RequireFloat32("MaxPool")
	if x.Rank() != 4 {
		return nil, shapeErr("MaxPool", "expected a rank-4 input tensor, got rank %d", x.Rank())
	}

	n, c, h, w := x.Shape[0], x.Shape[1], x.Shape[2], x.Shape[3]

	kernelShape := intsAttr(node, "kernel_shape", nil)
	if len(kernelShape) != 2 {
		return nil, shapeErr("MaxPool", "kernel_shape must have 2 entries for 2-D pooling, got %d", len(kernelShape))
	}
	kh, kw := int(kernelShape[0]), int(kernelShape[1])

	strides := intsAttr(node, "strides", kernelShape)
	if len(strides) != 2 {
		return nil, shapeErr("MaxPool", "strides must have 2 entries, got %d", len(strides))
	}
	sh, sw := int(strides[0]), int(strides[1])

	autoPad := stringAttr(node, "auto_pad", "NOTSET")
	padTop, _, padLeft, _, outH, outW, err := convPadding(autoPad, h, w, kh, kw, sh, sw, 1, 1, intsAttr(node, "pads", repeat(0, 4)))
	if err != nil {
		return nil, err
	}

	out := make([]float32, n*c*outH*outW)
	for b := 0; b < n; b++ {
		for ch := 0; ch < c; ch++ {
			for oy := 0; oy < outH; oy++ {
				iy0 := oy*sh - padTop
				for ox := 0; ox < outW; ox++ {
					ix0 := ox*sw - padLeft
					best := float32(math.Inf(-1))
					for ky := 0; ky < kh; ky++ {
						iy := iy0 + ky
						if iy < 0 || iy >= h {
							continue
						}
						for kx := 0; kx < kw; kx++ {
							ix := ix0 + kx
							if ix < 0 || ix >= w {
								continue
							}
							v := xs[((b*c+ch)*h+iy)*w+ix]
							if v > best {
								best = v
							}
						}
					}
					out[((b*c+ch)*outH+oy)*outW+ox] = best
				}
			}
		}
	}

	return []*tensor.Tensor{tensor.NewFloat32([]int{n, c, outH, outW}, out)}, nil
}

// GlobalAveragePool reduces the spatial dimensions of an NCHW tensor to 1x1
// by averaging (§4.7).
func GlobalAveragePool(_ *onnxmodel.Node, inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if len(inputs) != 1 {
		return nil, shapeErr("GlobalAveragePool", "expected exactly 1 input, got %d", len(inputs))
	}
	x := inputs[0]
	xs := x.RequireFloat32("GlobalAveragePool")
	if x.Rank() != 4 {
		return nil, shapeErr("GlobalAveragePool", "expected a rank-4 input tensor, got rank %d", x.Rank())
	}

	n, c, h, w := x.Shape[0], x.Shape[1], x.Shape[2], x.Shape[3]
	spatial := h * w
	out := make([]float32, n*c)
	for b := 0; b < n; b++ {
		for ch := 0; ch < c; ch++ {
			var sum float32
			base := (b*c + ch) * spatial
			for i := 0; i < spatial; i++ {
				sum += xs[base+i]
			}
			out[b*c+ch] = sum / float32(spatial)
		}
	}

	return []*tensor.Tensor{tensor.NewFloat32([]int{n, c, 1, 1}, out)}, nil
}
