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

	"github.com/latticeml/onnxcpu/internal/debug"
	"github.com/latticeml/onnxcpu/internal/onnxmodel"
	"github.com/latticeml/onnxcpu/internal/tensor"
)

// Conv implements the 2-D convolution operator (§4.7): im2col unrolls each
// receptive field of the (possibly padded) input into a column, a single
// GEMM multiplies the unrolled input against the reshaped kernel, and the
// result is folded back into NCHW output layout. Padding, dilation, and
// grouping are computed by hand; the matrix multiply itself is delegated to
// gonum (gonum.org/v1/gonum/mat), which this engine always uses for dense
// GEMM rather than hand-rolling a second one.
func Conv(node *onnxmodel.Node, inputs []*tensor.Tensor) ([]*tensor.Tensor, error) {
	if len(inputs) < 2 {
		return nil, shapeErr("Conv", "expected at least 2 inputs (X, W), got %d", len(inputs))
	}
	x, w := inputs[0], inputs[1]
	var bias []float32
	if len(inputs) > 2 {
		bias = inputs[2].RequireFloat32("Conv")
	}
	xs := x.RequireFloat32("Conv")
	ws := w.RequireFloat32("Conv")

	if x.Rank() != 4 || w.Rank() != 4 {
		return nil, shapeErr("Conv", "expected rank-4 input and weight tensors, got ranks %d and %d", x.Rank(), w.Rank())
	}

	n, c, h, width := x.Shape[0], x.Shape[1], x.Shape[2], x.Shape[3]
	m, cPerGroup, kh, kw := w.Shape[0], w.Shape[1], w.Shape[2], w.Shape[3]

	group := int(intAttr(node, "group", 1))
	if group < 1 {
		return nil, shapeErr("Conv", "group must be >= 1, got %d", group)
	}
	if c != cPerGroup*group {
		return nil, shapeErr("Conv", "input channels %d incompatible with weight channels-per-group %d and group %d", c, cPerGroup, group)
	}
	if m%group != 0 {
		return nil, shapeErr("Conv", "output channels %d not divisible by group %d", m, group)
	}
	mPerGroup := m / group

	dilations := intsAttr(node, "dilations", repeat(1, 2))
	strides := intsAttr(node, "strides", repeat(1, 2))
	if len(dilations) != 2 || len(strides) != 2 {
		return nil, shapeErr("Conv", "only 2-D spatial convolution is supported")
	}
	dh, dw := int(dilations[0]), int(dilations[1])
	sh, sw := int(strides[0]), int(strides[1])

	autoPad := stringAttr(node, "auto_pad", "NOTSET")
	padTop, padBottom, padLeft, padRight, outH, outW, err := convPadding(autoPad, h, width, kh, kw, sh, sw, dh, dw, intsAttr(node, "pads", repeat(0, 4)))
	if err != nil {
		return nil, err
	}

	debug.Assert(outH > 0 && outW > 0, "conv: non-positive output spatial size (%d, %d) from auto_pad %q", outH, outW, autoPad)

	out := make([]float32, n*m*outH*outW)

	// im2col: for each batch and group, build a
	// [cPerGroup*kh*kw, outH*outW] column matrix, then multiply by the
	// group's [mPerGroup, cPerGroup*kh*kw] reshaped weight slice.
	colRows := cPerGroup * kh * kw
	colCols := outH * outW
	col := make([]float64, colRows*colCols)
	weightFlat := make([]float64, mPerGroup*colRows)

	for batch := 0; batch < n; batch++ {
		for g := 0; g < group; g++ {
			for i := range col {
				col[i] = 0
			}
			for cc := 0; cc < cPerGroup; cc++ {
				inChan := g*cPerGroup + cc
				for oy := 0; oy < outH; oy++ {
					iy0 := oy*sh - padTop
					for ox := 0; ox < outW; ox++ {
						ix0 := ox*sw - padLeft
						for ky := 0; ky < kh; ky++ {
							iy := iy0 + ky*dh
							if iy < 0 || iy >= h {
								continue
							}
							for kx := 0; kx < kw; kx++ {
								ix := ix0 + kx*dw
								if ix < 0 || ix >= width {
									continue
								}
								rowIdx := (cc*kh+ky)*kw + kx
								colIdx := oy*outW + ox
								srcIdx := ((batch*c+inChan)*h+iy)*width + ix
								col[rowIdx*colCols+colIdx] = float64(xs[srcIdx])
							}
						}
					}
				}
			}

			for mi := 0; mi < mPerGroup; mi++ {
				outChan := g*mPerGroup + mi
				for k := 0; k < colRows; k++ {
					weightFlat[mi*colRows+k] = float64(ws[(outChan*cPerGroup+k/(kh*kw))*kh*kw+k%(kh*kw)])
				}
			}

			weightMat := mat.NewDense(mPerGroup, colRows, weightFlat)
			colMat := mat.NewDense(colRows, colCols, col)
			var resultMat mat.Dense
			resultMat.Mul(weightMat, colMat)

			for mi := 0; mi < mPerGroup; mi++ {
				outChan := g*mPerGroup + mi
				var b float32
				if bias != nil {
					b = bias[outChan]
				}
				for p := 0; p < colCols; p++ {
					dstIdx := ((batch*m+outChan)*outH+p/outW)*outW + p%outW
					out[dstIdx] = float32(resultMat.At(mi, p)) + b
				}
			}
		}
	}

	return []*tensor.Tensor{tensor.NewFloat32([]int{n, m, outH, outW}, out)}, nil
}

// convPadding computes the per-side padding and output spatial size for the
// four ONNX auto_pad policies (§4.7, grounded on the original's NotSet /
// SameUpper / SameLower / Valid enum). SAME_UPPER and SAME_LOWER are
// implemented per the ONNX spec's actual asymmetric-padding rule (extra
// pixel at the tail for SAME_UPPER, at the head for SAME_LOWER), not the
// original implementation's swapped top/bottom convention.
func convPadding(autoPad string, h, w, kh, kw, sh, sw, dh, dw int, explicitPads []int64) (top, bottom, left, right, outH, outW int, err error) {
	effKH := (kh-1)*dh + 1
	effKW := (kw-1)*dw + 1

	switch autoPad {
	case "", "NOTSET":
		if len(explicitPads) != 4 {
			return 0, 0, 0, 0, 0, 0, shapeErr("Conv", "pads must have 4 entries for 2-D convolution, got %d", len(explicitPads))
		}
		top, left, bottom, right = int(explicitPads[0]), int(explicitPads[1]), int(explicitPads[2]), int(explicitPads[3])
		outH = (h+top+bottom-effKH)/sh + 1
		outW = (w+left+right-effKW)/sw + 1
		return

	case "VALID":
		outH = (h-effKH)/sh + 1
		outW = (w-effKW)/sw + 1
		return

	case "SAME_UPPER", "SAME_LOWER":
		outH = ceilDiv(h, sh)
		outW = ceilDiv(w, sw)
		padH := max(0, (outH-1)*sh+effKH-h)
		padW := max(0, (outW-1)*sw+effKW-w)
		if autoPad == "SAME_UPPER" {
			top, bottom = padH/2, padH-padH/2
			left, right = padW/2, padW-padW/2
		} else {
			bottom, top = padH/2, padH-padH/2
			right, left = padW/2, padW-padW/2
		}
		return

	default:
		return 0, 0, 0, 0, 0, 0, shapeErr("Conv", "unknown auto_pad %q", autoPad)
	}
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
