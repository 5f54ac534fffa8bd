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

package graph

import "github.com/latticeml/onnxcpu/internal/onnxmodel"

// allowedAttrs lists, per op_type, every attribute name the kernel catalog
// recognizes (§4.4). An op_type absent from this table is assumed to take
// no attributes.
var allowedAttrs = map[string]map[string]bool{
	"Conv":    set("auto_pad", "dilations", "group", "kernel_shape", "pads", "strides"),
	"MaxPool": set("auto_pad", "kernel_shape", "pads", "storage_order", "strides"),
	"Concat":  set("axis"),
	"Dropout": set("ratio"),
	"Softmax": set("axis"),
	"Reshape": set("allowzero"),
}

// requiredAttrs lists attributes a node must declare for its op_type to be
// unambiguous, beyond what a kernel-internal default can stand in for.
var requiredAttrs = map[string][]string{
	"MaxPool": {"kernel_shape"},
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// validateAttrs checks a node's attributes against the catalog above,
// returning *ExecError kind AttrUnknown or AttrMissing on violation.
func validateAttrs(n *onnxmodel.Node) error {
	allowed, hasTable := allowedAttrs[n.OpType]
	for _, a := range n.Attrs {
		if hasTable && !allowed[a.Name] {
			return &ExecError{Kind: AttrUnknown, Node: n.Name, OpType: n.OpType, Detail: a.Name}
		}
		if !hasTable {
			return &ExecError{Kind: AttrUnknown, Node: n.Name, OpType: n.OpType, Detail: a.Name}
		}
	}
	for _, req := range requiredAttrs[n.OpType] {
		if _, ok := n.Attr(req); !ok {
			return &ExecError{Kind: AttrMissing, Node: n.Name, OpType: n.OpType, Detail: req}
		}
	}
	return nil
}
