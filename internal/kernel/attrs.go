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

import "github.com/latticeml/onnxcpu/internal/onnxmodel"

func intAttr(n *onnxmodel.Node, name string, def int64) int64 {
	v, ok := n.Attr(name)
	if !ok {
		return def
	}
	return v.Int
}

func intsAttr(n *onnxmodel.Node, name string, def []int64) []int64 {
	v, ok := n.Attr(name)
	if !ok || len(v.Ints) == 0 {
		return def
	}
	return v.Ints
}

func stringAttr(n *onnxmodel.Node, name string, def string) string {
	v, ok := n.Attr(name)
	if !ok {
		return def
	}
	s := v.String()
	if s == "" {
		return def
	}
	return s
}

func repeat(v int64, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
