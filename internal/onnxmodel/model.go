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

// Package onnxmodel is the passive in-memory representation of a decoded
// ONNX model (§4.4): a Model holds a Graph, a Graph holds Nodes,
// initializer Tensors, and input/output ValueInfo. It has no behavior
// beyond field access and the small derived producer/consumer views in
// graph.go; [github.com/latticeml/onnxcpu/internal/decode] is what
// populates a Model from bytes, and
// [github.com/latticeml/onnxcpu/internal/graph] is what walks one.
package onnxmodel

import (
	"encoding/binary"
	"math"
)

// DataType mirrors the ONNX TensorProto.DataType enum. Only Float and
// Int64 are consumed by the kernel catalog (§4.7), but the full enum is
// retained since it decodes directly off the wire (§4.1) with no extra
// cost and documents the element types a model file may legally declare.
type DataType int32

const (
	Undefined DataType = 0
	Float     DataType = 1
	Uint8     DataType = 2
	Int8      DataType = 3
	Uint16    DataType = 4
	Int16     DataType = 5
	Int32     DataType = 6
	Int64     DataType = 7
	String    DataType = 8
	Bool      DataType = 9
	Float16   DataType = 10
	Double    DataType = 11
	Uint32    DataType = 12
	Uint64    DataType = 13
	Complex64 DataType = 14
	Complex128 DataType = 15
	BFloat16  DataType = 16
)

// OpsetID is one entry of a Model's opset_import list.
type OpsetID struct {
	Domain  string
	Version int64
}

// Model mirrors ModelProto's header fields plus its single Graph.
type Model struct {
	IrVersion       int64
	ProducerName    string
	ProducerVersion string
	OpsetImport     []OpsetID
	Graph           *Graph
}

// ValueInfo describes a graph input or output without payload: a name, an
// element type, and a shape. A shape dimension of -1 denotes a symbolic
// (unknown at decode time) dimension.
type ValueInfo struct {
	Name     string
	ElemType DataType
	Dims     []int64
}

// AttrKind tags the payload carried by an AttributeValue.
type AttrKind int

const (
	AttrInt AttrKind = iota
	AttrFloat
	AttrInts
	AttrFloats
	AttrBytes
)

// AttributeValue is a node attribute's typed payload (§3 "Attribute
// values"): exactly one of the Kind-selected fields is meaningful.
type AttributeValue struct {
	Kind   AttrKind
	Int    int64
	Float  float32
	Ints   []int64
	Floats []float32
	Bytes  []byte
}

// String returns Bytes interpreted as a UTF-8 string, the representation
// used for attributes like Conv's auto_pad.
func (v AttributeValue) String() string {
	return string(v.Bytes)
}

// Attribute is one (name, value) pair of a Node.
type Attribute struct {
	Name  string
	Value AttributeValue
}

// Node is one operator invocation in a Graph.
type Node struct {
	OpType string
	Name   string
	Input  []string
	Output []string
	Attrs  []Attribute
}

// Attr looks up a is named attribute by linear scan; nodes carry at most a
// handful of attributes (§4.4), so this is simpler than maintaining a
// parallel map.
func (n *Node) Attr(name string) (AttributeValue, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return AttributeValue{}, false
}

// Tensor is an initializer: a constant tensor embedded in the model file
// (§3, §4.4). Exactly one of RawData, FloatData, or Int64Data is populated,
// matching the oneof-like discipline of ONNX's TensorProto.
type Tensor struct {
	Name      string
	Dims      []int64
	DataType  DataType
	RawData   []byte
	FloatData []float32
	Int64Data []int64
}

// NumElements is the product of Dims.
func (t *Tensor) NumElements() int64 {
	n := int64(1)
	for _, d := range t.Dims {
		n *= d
	}
	return n
}

// Floats returns the tensor's payload as a []float32, decoding RawData as
// little-endian IEEE-754 binary32 if that is the populated field (§6, §9
// "Raw bytes to float": never assume host endianness).
func (t *Tensor) Floats() []float32 {
	if t.FloatData != nil {
		return t.FloatData
	}
	if len(t.RawData) == 0 {
		return nil
	}
	out := make([]float32, len(t.RawData)/4)
	for i := range out {
		bits := binary.LittleEndian.Uint32(t.RawData[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out
}

// Int64s returns the tensor's payload as a []int64, decoding RawData as
// little-endian if that is the populated field.
func (t *Tensor) Int64s() []int64 {
	if t.Int64Data != nil {
		return t.Int64Data
	}
	if len(t.RawData) == 0 {
		return nil
	}
	out := make([]int64, len(t.RawData)/8)
	for i := range out {
		out[i] = int64(binary.LittleEndian.Uint64(t.RawData[i*8:]))
	}
	return out
}
