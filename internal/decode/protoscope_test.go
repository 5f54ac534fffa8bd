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
	"testing"

	"github.com/protocolbuffers/protoscope"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// TestDecodeAgainstDynamicpb cross-checks this package's schema-driven
// decodeMessage against the canonical Go protobuf implementation's
// reflection-based decoder, for the same raw wire bytes, exactly as the
// reference codebase diffs its own decoder against dynamicpb (§6 Ambient
// Stack: Test tooling). protoscope assembles the bytes from a readable
// textual form rather than by hand.
func TestDecodeAgainstDynamicpb(t *testing.T) {
	t.Parallel()

	s := protoscope.NewScanner(`1: 42
2: {"hello"}
3: 7
`)
	raw, err := s.Exec()
	require.NoError(t, err)

	reg := mustParse(t, `message M {
  optional int32 x = 1;
  optional string s = 2;
  optional int64 y = 3;
}`)
	desc, ok := reg.Message("M")
	require.True(t, ok)

	msg, cursor, err := decodeMessage(raw, 0, len(raw), desc, 0, defaultMaxDepth)
	require.NoError(t, err)
	require.Equal(t, len(raw), cursor)

	fd := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("m.proto"),
		Package: proto.String("onnxcpu.test"),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("M"),
				Field: []*descriptorpb.FieldDescriptorProto{
					{Name: proto.String("x"), Number: proto.Int32(1), Type: descriptorpb.FieldDescriptorProto_TYPE_INT32.Enum(), Label: descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum()},
					{Name: proto.String("s"), Number: proto.Int32(2), Type: descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(), Label: descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum()},
					{Name: proto.String("y"), Number: proto.Int32(3), Type: descriptorpb.FieldDescriptorProto_TYPE_INT64.Enum(), Label: descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum()},
				},
			},
		},
	}
	file, err := protodesc.NewFile(fd, nil)
	require.NoError(t, err)

	dyn := dynamicpb.NewMessage(file.Messages().Get(0))
	require.NoError(t, proto.Unmarshal(raw, dyn))
	fields := dyn.Descriptor().Fields()

	require.EqualValues(t, dyn.Get(fields.ByName("x")).Int(), msg.Fields["x"][0].Int)
	require.Equal(t, dyn.Get(fields.ByName("s")).String(), msg.Fields["s"][0].Str)
	require.EqualValues(t, dyn.Get(fields.ByName("y")).Int(), msg.Fields["y"][0].Int)
}
