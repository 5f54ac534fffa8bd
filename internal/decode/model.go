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

package decode

import (
	"fmt"

	"github.com/latticeml/onnxcpu/internal/onnxmodel"
)

// buildModel folds the generic decode tree rooted at a ModelProto message
// into an [onnxmodel.Model]. Unlike decodeMessage/decodeValue above, this
// pass is not schema-driven: it knows the ONNX field names (graph, node,
// op_type, ...) the way any consumer of a fixed message type must, once the
// wire-level decode that produced the tree no longer needs to.
func buildModel(root *Message) (*onnxmodel.Model, error) {
	model := &onnxmodel.Model{}
	if v, ok := root.get("ir_version"); ok {
		model.IrVersion = v.Int
	}
	if v, ok := root.get("producer_name"); ok {
		model.ProducerName = v.Str
	}
	if v, ok := root.get("producer_version"); ok {
		model.ProducerVersion = v.Str
	}
	for _, v := range root.getAll("opset_import") {
		if v.Kind != VMessage {
			continue
		}
		var id onnxmodel.OpsetID
		if dv, ok := v.Msg.get("domain"); ok {
			id.Domain = dv.Str
		}
		if vv, ok := v.Msg.get("version"); ok {
			id.Version = vv.Int
		}
		model.OpsetImport = append(model.OpsetImport, id)
	}

	gv, ok := root.get("graph")
	if !ok {
		return nil, fmt.Errorf("decode: model has no graph field")
	}
	if gv.Kind != VMessage {
		return nil, fmt.Errorf("decode: graph field is not a message")
	}
	model.Graph = buildGraph(gv.Msg)
	return model, nil
}

func buildGraph(m *Message) *onnxmodel.Graph {
	g := &onnxmodel.Graph{}
	for _, v := range m.getAll("node") {
		if v.Kind == VMessage {
			g.Nodes = append(g.Nodes, buildNode(v.Msg))
		}
	}
	for _, v := range m.getAll("initializer") {
		if v.Kind == VMessage {
			g.Initializers = append(g.Initializers, buildTensor(v.Msg))
		}
	}
	for _, v := range m.getAll("input") {
		if v.Kind == VMessage {
			g.Inputs = append(g.Inputs, buildValueInfo(v.Msg))
		}
	}
	for _, v := range m.getAll("output") {
		if v.Kind == VMessage {
			g.Outputs = append(g.Outputs, buildValueInfo(v.Msg))
		}
	}
	return g
}

func buildNode(m *Message) *onnxmodel.Node {
	n := &onnxmodel.Node{}
	if v, ok := m.get("op_type"); ok {
		n.OpType = v.Str
	}
	if v, ok := m.get("name"); ok {
		n.Name = v.Str
	}
	for _, v := range m.getAll("input") {
		n.Input = append(n.Input, v.Str)
	}
	for _, v := range m.getAll("output") {
		n.Output = append(n.Output, v.Str)
	}
	for _, v := range m.getAll("attribute") {
		if v.Kind == VMessage {
			n.Attrs = append(n.Attrs, buildAttribute(v.Msg))
		}
	}
	return n
}

// buildAttribute distinguishes AttributeProto's payload field by which of
// the oneof-like i/f/s/ints/floats fields was actually present, mirroring
// the "exactly one populated" discipline the wire bytes themselves carry.
func buildAttribute(m *Message) onnxmodel.Attribute {
	a := onnxmodel.Attribute{}
	if v, ok := m.get("name"); ok {
		a.Name = v.Str
	}

	if vs := m.getAll("ints"); len(vs) > 0 {
		a.Value.Kind = onnxmodel.AttrInts
		for _, v := range vs {
			a.Value.Ints = append(a.Value.Ints, v.Int)
		}
		return a
	}
	if vs := m.getAll("floats"); len(vs) > 0 {
		a.Value.Kind = onnxmodel.AttrFloats
		for _, v := range vs {
			a.Value.Floats = append(a.Value.Floats, v.F32)
		}
		return a
	}
	if v, ok := m.get("i"); ok {
		a.Value.Kind = onnxmodel.AttrInt
		a.Value.Int = v.Int
		return a
	}
	if v, ok := m.get("f"); ok {
		a.Value.Kind = onnxmodel.AttrFloat
		a.Value.Float = v.F32
		return a
	}
	if v, ok := m.get("s"); ok {
		a.Value.Kind = onnxmodel.AttrBytes
		a.Value.Bytes = v.Bytes
		return a
	}
	return a
}

func buildTensor(m *Message) *onnxmodel.Tensor {
	t := &onnxmodel.Tensor{}
	if v, ok := m.get("name"); ok {
		t.Name = v.Str
	}
	for _, v := range m.getAll("dims") {
		t.Dims = append(t.Dims, v.Int)
	}
	if v, ok := m.get("data_type"); ok {
		if v.Kind == VEnum {
			t.DataType = onnxmodel.DataType(v.EnumNum)
		} else {
			t.DataType = onnxmodel.DataType(v.Int)
		}
	}
	for _, v := range m.getAll("float_data") {
		t.FloatData = append(t.FloatData, v.F32)
	}
	for _, v := range m.getAll("int64_data") {
		t.Int64Data = append(t.Int64Data, v.Int)
	}
	if v, ok := m.get("raw_data"); ok {
		t.RawData = v.Bytes
	}
	return t
}

// buildValueInfo reads name plus, when present, the nested
// type.tensor_type.{elem_type,shape.dim[].dim_value} chain ONNX uses to
// declare an input/output's element type and shape. A dimension with no
// dim_value is left as -1, ONNX's convention for a symbolic dimension.
func buildValueInfo(m *Message) *onnxmodel.ValueInfo {
	vi := &onnxmodel.ValueInfo{}
	if v, ok := m.get("name"); ok {
		vi.Name = v.Str
	}
	tv, ok := m.get("type")
	if !ok || tv.Kind != VMessage {
		return vi
	}
	tt, ok := tv.Msg.get("tensor_type")
	if !ok || tt.Kind != VMessage {
		return vi
	}
	if et, ok := tt.Msg.get("elem_type"); ok {
		if et.Kind == VEnum {
			vi.ElemType = onnxmodel.DataType(et.EnumNum)
		} else {
			vi.ElemType = onnxmodel.DataType(et.Int)
		}
	}
	shape, ok := tt.Msg.get("shape")
	if !ok || shape.Kind != VMessage {
		return vi
	}
	for _, d := range shape.Msg.getAll("dim") {
		if d.Kind != VMessage {
			continue
		}
		if dv, ok := d.Msg.get("dim_value"); ok {
			vi.Dims = append(vi.Dims, dv.Int)
		} else {
			vi.Dims = append(vi.Dims, -1)
		}
	}
	return vi
}
