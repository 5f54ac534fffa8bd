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

package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticeml/onnxcpu/internal/schema"
)

// TestParseNestedMessage is the §8 concrete scenario 2 schema-parse example.
func TestParseNestedMessage(t *testing.T) {
	t.Parallel()

	src := `syntax="proto2";
message A {
  optional int32 x = 1;
  message B { optional float y = 2; }
}
`
	reg, warnings, err := schema.Parse(src)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, "proto2", reg.Syntax)

	a, ok := reg.Message("A")
	require.True(t, ok)
	require.Equal(t, schema.Attribute{Annotation: schema.Optional, Name: "x", TypeName: "int32"}, a.Attributes[1])

	b, ok := a.Contents["B"]
	require.True(t, ok)
	require.Equal(t, schema.Attribute{Annotation: schema.Optional, Name: "y", TypeName: "float"}, b.Attributes[2])

	bFQN, ok := reg.Message("A.B")
	require.True(t, ok)
	require.Same(t, b, bFQN)
}

func TestParseOneofSharesFieldNumberSpace(t *testing.T) {
	t.Parallel()

	src := `message M {
  optional int32 x = 1;
  oneof choice {
    string a = 2;
    int64 b = 3;
  }
}
`
	reg, _, err := schema.Parse(src)
	require.NoError(t, err)

	m, ok := reg.Message("M")
	require.True(t, ok)

	attr, ok := m.FieldByNumber(1)
	require.True(t, ok)
	require.Equal(t, "x", attr.Name)

	attr, ok = m.FieldByNumber(2)
	require.True(t, ok)
	require.Equal(t, "a", attr.Name)

	attr, ok = m.FieldByNumber(3)
	require.True(t, ok)
	require.Equal(t, "b", attr.Name)

	_, ok = m.FieldByNumber(4)
	require.False(t, ok)
}

func TestParseEnum(t *testing.T) {
	t.Parallel()

	src := `enum DataType {
  UNDEFINED = 0;
  FLOAT = 1;
  INT64 = 7;
}
`
	reg, _, err := schema.Parse(src)
	require.NoError(t, err)

	e, ok := reg.Message("DataType")
	require.True(t, ok)
	require.Equal(t, "FLOAT", e.Attributes[1].Name)
	require.Equal(t, "INT64", e.Attributes[7].Name)
}

func TestParseMapField(t *testing.T) {
	t.Parallel()

	src := `message M {
  map<string, int32> counts = 1;
}
`
	reg, _, err := schema.Parse(src)
	require.NoError(t, err)

	m, _ := reg.Message("M")
	attr := m.Attributes[1]
	require.Equal(t, schema.Map, attr.Annotation)
	require.Equal(t, "counts", attr.Name)
	require.Equal(t, "map<string,int32>", attr.TypeName)
}

func TestParseDuplicateTagFails(t *testing.T) {
	t.Parallel()

	src := `message M {
  optional int32 a = 1;
  optional int32 b = 1;
}
`
	_, _, err := schema.Parse(src)
	require.Error(t, err)
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	require.Equal(t, schema.DuplicateTag, se.Kind)
}

func TestParseDuplicateTagAcrossOneofFails(t *testing.T) {
	t.Parallel()

	src := `message M {
  optional int32 a = 1;
  oneof choice {
    string b = 1;
  }
}
`
	_, _, err := schema.Parse(src)
	require.Error(t, err)
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	require.Equal(t, schema.DuplicateTag, se.Kind)
}

func TestParseDuplicateNameFails(t *testing.T) {
	t.Parallel()

	src := `message M {
  message N { optional int32 x = 1; }
  message N { optional int32 y = 1; }
}
`
	_, _, err := schema.Parse(src)
	require.Error(t, err)
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	require.Equal(t, schema.DuplicateName, se.Kind)
}

func TestParseUnterminatedScopeFails(t *testing.T) {
	t.Parallel()

	src := `message M {
  optional int32 x = 1;
`
	_, _, err := schema.Parse(src)
	require.Error(t, err)
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	require.Equal(t, schema.UnterminatedScope, se.Kind)
}

func TestParseUnrecognizedConstructWarns(t *testing.T) {
	t.Parallel()

	src := `syntax = "proto3";
import "other.proto";
package onnx;
option go_package = "x";
message M {
  optional int32 x = 1;
}
`
	reg, warnings, err := schema.Parse(src)
	require.NoError(t, err)
	require.Len(t, warnings, 3)
	_, ok := reg.Message("M")
	require.True(t, ok)
}

func TestResolveTypeWalksOutward(t *testing.T) {
	t.Parallel()

	src := `message Outer {
  message Shared { optional int32 v = 1; }
  message Inner {
    optional Shared s = 1;
  }
}
`
	reg, _, err := schema.Parse(src)
	require.NoError(t, err)

	outer, _ := reg.Message("Outer")
	inner := outer.Contents["Inner"]
	shared := outer.Contents["Shared"]

	resolved, ok := inner.ResolveType("Shared")
	require.True(t, ok)
	require.Same(t, shared, resolved)
}
