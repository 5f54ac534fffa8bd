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

package wire_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticeml/onnxcpu/internal/wire"
)

func TestVarintRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value    uint64
		wantSize int
	}{
		{0, 1},
		{1, 1},
		{127, 1},
		{128, 2},
		{16383, 2},
		{16384, 3},
		{1<<32 - 1, 5},
	}

	for _, tc := range cases {
		buf := wire.AppendVarint(nil, tc.value)
		require.Lenf(t, buf, tc.wantSize, "value %d", tc.value)
		require.Equal(t, tc.wantSize, wire.SizeVarint(tc.value))

		got, next, err := wire.ConsumeVarint(buf, 0)
		require.NoError(t, err)
		require.Equal(t, tc.value, got)
		require.Equal(t, len(buf), next)
	}
}

func TestVarintTruncated(t *testing.T) {
	t.Parallel()

	buf := wire.AppendVarint(nil, 1<<40)
	_, _, err := wire.ConsumeVarint(buf[:len(buf)-1], 0)
	require.Error(t, err)
	require.IsType(t, &wire.ErrTruncated{}, err)
}

func TestVarintOverflow(t *testing.T) {
	t.Parallel()

	// 9 continuation bytes followed by a tenth byte with more than bit 0 set
	// overflows 64 bits.
	buf := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x02}
	_, _, err := wire.ConsumeVarint(buf, 0)
	require.Error(t, err)
	require.IsType(t, &wire.ErrOverflow{}, err)
}

func TestTagRoundTrip(t *testing.T) {
	t.Parallel()

	buf := wire.AppendTag(nil, 5, wire.Len)
	field, wt, next, err := wire.ConsumeTag(buf, 0)
	require.NoError(t, err)
	require.Equal(t, int32(5), field)
	require.Equal(t, wire.Len, wt)
	require.Equal(t, len(buf), next)
}

func TestFixed32RoundTrip(t *testing.T) {
	t.Parallel()

	buf := wire.AppendFixed32(nil, 0xdeadbeef)
	got, next, err := wire.ConsumeFixed32(buf, 0)
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), got)
	require.Equal(t, 4, next)
}

func TestFixed64RoundTrip(t *testing.T) {
	t.Parallel()

	buf := wire.AppendFixed64(nil, 0x0102030405060708)
	got, next, err := wire.ConsumeFixed64(buf, 0)
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102030405060708), got)
	require.Equal(t, 8, next)
}

func TestBytesRoundTrip(t *testing.T) {
	t.Parallel()

	payload := []byte("hello, onnx")
	buf := wire.AppendBytes(nil, payload)
	got, next, err := wire.ConsumeBytes(buf, 0)
	require.NoError(t, err)
	require.Equal(t, payload, got)
	require.Equal(t, len(buf), next)
}

func TestBytesTruncated(t *testing.T) {
	t.Parallel()

	buf := wire.AppendBytes(nil, []byte("hello"))
	_, _, err := wire.ConsumeBytes(buf[:len(buf)-1], 0)
	require.Error(t, err)
}

func TestFloat32FromBits(t *testing.T) {
	t.Parallel()

	buf := wire.AppendFixed32(nil, 0x3f800000) // 1.0f
	bits, _, err := wire.ConsumeFixed32(buf, 0)
	require.NoError(t, err)
	require.InDelta(t, float32(1.0), wire.Float32FromBits(bits), 1e-9)
}

func TestZigzag(t *testing.T) {
	t.Parallel()

	require.Equal(t, int32(0), wire.DecodeZigzag32(0))
	require.Equal(t, int32(-1), wire.DecodeZigzag32(1))
	require.Equal(t, int32(1), wire.DecodeZigzag32(2))
	require.Equal(t, int64(-1), wire.DecodeZigzag64(1))
}
