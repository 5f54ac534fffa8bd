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

package decode_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticeml/onnxcpu/internal/decode"
	"github.com/latticeml/onnxcpu/internal/onnxmodel"
	"github.com/latticeml/onnxcpu/internal/schema"
	"github.com/latticeml/onnxcpu/internal/wire"
)

// modelSchema is a trimmed ModelProto-compatible schema carrying exactly the
// fields this engine reads (§4.4's Model tree). Its AttributeProto and
// TensorProto field numbers are its own and differ from ONNX's.
const modelSchema = `syntax = "proto3";

message AttributeProto {
  optional string name = 1;
  optional int64 i = 2;
  optional float f = 3;
  repeated int64 ints = 7;
  repeated float floats = 8;
  optional bytes s = 9;
}

message NodeProto {
  repeated string input = 1;
  repeated string output = 2;
  optional string name = 3;
  optional string op_type = 4;
  repeated AttributeProto attribute = 5;
}

message TensorProto {
  repeated int64 dims = 1;
  optional int32 data_type = 2;
  repeated float float_data = 3;
  repeated int64 int64_data = 4;
  optional string name = 5;
  optional bytes raw_data = 6;
}

message TensorShapeProto {
  message Dimension {
    optional int64 dim_value = 1;
  }
  repeated Dimension dim = 1;
}

message TypeProto {
  message Tensor {
    optional int32 elem_type = 1;
    optional TensorShapeProto shape = 2;
  }
  optional Tensor tensor_type = 1;
}

message ValueInfoProto {
  optional string name = 1;
  optional TypeProto type = 2;
}

message GraphProto {
  repeated NodeProto node = 1;
  optional string name = 2;
  repeated TensorProto initializer = 5;
  repeated ValueInfoProto input = 11;
  repeated ValueInfoProto output = 12;
}

message OperatorSetIdProto {
  optional string domain = 1;
  optional int64 version = 2;
}

message ModelProto {
  optional int64 ir_version = 1;
  optional string producer_name = 2;
  optional string producer_version = 3;
  repeated OperatorSetIdProto opset_import = 8;
  optional GraphProto graph = 7;
}
`

func parseModelSchema(t *testing.T) *schema.Registry {
	t.Helper()
	reg, warnings, err := schema.Parse(modelSchema)
	require.NoError(t, err)
	require.Empty(t, warnings)
	return reg
}

func appendStringField(buf []byte, field int32, s string) []byte {
	buf = wire.AppendTag(buf, field, wire.Len)
	return wire.AppendBytes(buf, []byte(s))
}

func appendMessageField(buf []byte, field int32, payload []byte) []byte {
	buf = wire.AppendTag(buf, field, wire.Len)
	return wire.AppendBytes(buf, payload)
}

func appendVarintField(buf []byte, field int32, v uint64) []byte {
	buf = wire.AppendTag(buf, field, wire.Varint)
	return wire.AppendVarint(buf, v)
}

func appendFloatField(buf []byte, field int32, f float32) []byte {
	buf = wire.AppendTag(buf, field, wire.I32)
	return wire.AppendFixed32(buf, math.Float32bits(f))
}

func encodeValueInfo(name string) []byte {
	return appendStringField(nil, 1, name)
}

func encodeAttrInt(name string, v int64) []byte {
	var buf []byte
	buf = appendStringField(buf, 1, name)
	buf = appendVarintField(buf, 2, uint64(v))
	return buf
}

func encodeAttrFloats(name string, vs []float32) []byte {
	var buf []byte
	buf = appendStringField(buf, 1, name)
	for _, v := range vs {
		buf = appendFloatField(buf, 8, v)
	}
	return buf
}

func encodeNode(opType, name string, inputs, outputs []string, attrs [][]byte) []byte {
	var buf []byte
	for _, in := range inputs {
		buf = appendStringField(buf, 1, in)
	}
	for _, out := range outputs {
		buf = appendStringField(buf, 2, out)
	}
	buf = appendStringField(buf, 3, name)
	buf = appendStringField(buf, 4, opType)
	for _, a := range attrs {
		buf = appendMessageField(buf, 5, a)
	}
	return buf
}

func encodeInitializer(name string, dims []int64, data []float32) []byte {
	var buf []byte
	for _, d := range dims {
		buf = appendVarintField(buf, 1, uint64(d))
	}
	buf = appendVarintField(buf, 2, uint64(onnxmodel.Float))
	for _, f := range data {
		buf = appendFloatField(buf, 3, f)
	}
	buf = appendStringField(buf, 5, name)
	return buf
}

func TestDecodeFullModel(t *testing.T) {
	t.Parallel()

	reg := parseModelSchema(t)

	node1 := encodeNode("Relu", "relu1", []string{"x"}, []string{"y"}, nil)

	graph := appendMessageField(nil, 1, node1)
	graph = appendStringField(graph, 2, "g")
	graph = appendMessageField(graph, 5, encodeInitializer("w", []int64{2}, []float32{1, 2}))
	graph = appendMessageField(graph, 11, encodeValueInfo("x"))
	graph = appendMessageField(graph, 12, encodeValueInfo("y"))

	opset := appendStringField(nil, 1, "")
	opset = appendVarintField(opset, 2, 13)

	var model []byte
	model = appendVarintField(model, 1, 7)
	model = appendStringField(model, 2, "onnxcpu-test")
	model = appendStringField(model, 3, "0.1")
	model = appendMessageField(model, 8, opset)
	model = appendMessageField(model, 7, graph)

	got, err := decode.Decode(model, reg, "ModelProto")
	require.NoError(t, err)

	require.EqualValues(t, 7, got.IrVersion)
	require.Equal(t, "onnxcpu-test", got.ProducerName)
	require.Equal(t, "0.1", got.ProducerVersion)
	require.Len(t, got.OpsetImport, 1)
	require.EqualValues(t, 13, got.OpsetImport[0].Version)

	require.NotNil(t, got.Graph)
	require.Len(t, got.Graph.Nodes, 1)
	require.Equal(t, "Relu", got.Graph.Nodes[0].OpType)
	require.Equal(t, []string{"x"}, got.Graph.Nodes[0].Input)
	require.Equal(t, []string{"y"}, got.Graph.Nodes[0].Output)

	require.Len(t, got.Graph.Initializers, 1)
	require.Equal(t, "w", got.Graph.Initializers[0].Name)
	require.Equal(t, []float32{1, 2}, got.Graph.Initializers[0].Floats())

	require.Len(t, got.Graph.Inputs, 1)
	require.Equal(t, "x", got.Graph.Inputs[0].Name)
	require.Len(t, got.Graph.Outputs, 1)
	require.Equal(t, "y", got.Graph.Outputs[0].Name)
}

func TestDecodeAttributeKinds(t *testing.T) {
	t.Parallel()

	reg := parseModelSchema(t)

	node := encodeNode("Conv", "conv1", []string{"x", "w"}, []string{"y"}, [][]byte{
		encodeAttrInt("group", 4),
		encodeAttrFloats("scales", []float32{0.5, 1.5}),
	})

	graph := appendMessageField(nil, 1, node)
	model := appendMessageField(nil, 7, graph)

	got, err := decode.Decode(model, reg, "ModelProto")
	require.NoError(t, err)
	require.Len(t, got.Graph.Nodes, 1)

	n := got.Graph.Nodes[0]
	group, ok := n.Attr("group")
	require.True(t, ok)
	require.Equal(t, onnxmodel.AttrInt, group.Kind)
	require.EqualValues(t, 4, group.Int)

	scales, ok := n.Attr("scales")
	require.True(t, ok)
	require.Equal(t, onnxmodel.AttrFloats, scales.Kind)
	require.Equal(t, []float32{0.5, 1.5}, scales.Floats)
}

func TestDecodeValueInfoWithShape(t *testing.T) {
	t.Parallel()

	reg := parseModelSchema(t)

	dim1 := appendVarintField(nil, 1, 1)
	dim2 := appendVarintField(nil, 1, 3)
	shape := appendMessageField(nil, 1, dim1)
	shape = appendMessageField(shape, 1, dim2)

	tensorType := appendVarintField(nil, 1, uint64(onnxmodel.Float))
	tensorType = appendMessageField(tensorType, 2, shape)

	typ := appendMessageField(nil, 1, tensorType)

	vi := appendStringField(nil, 1, "x")
	vi = appendMessageField(vi, 2, typ)

	graph := appendMessageField(nil, 11, vi)
	model := appendMessageField(nil, 7, graph)

	got, err := decode.Decode(model, reg, "ModelProto")
	require.NoError(t, err)
	require.Len(t, got.Graph.Inputs, 1)
	require.Equal(t, "x", got.Graph.Inputs[0].Name)
	require.Equal(t, onnxmodel.Float, got.Graph.Inputs[0].ElemType)
	require.Equal(t, []int64{1, 3}, got.Graph.Inputs[0].Dims)
}
