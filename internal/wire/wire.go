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

// Package wire implements the Protocol Buffers binary wire format: varints,
// tags, and the four field layouts (VARINT, I64, LEN, I32). It has no
// knowledge of any particular schema; [github.com/latticeml/onnxcpu/internal/schema]
// and [github.com/latticeml/onnxcpu/internal/decode] layer meaning on top of it.
package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Type is a wire type, the low three bits of every field tag.
type Type uint8

const (
	Varint Type = 0
	I64    Type = 1
	Len    Type = 2
	SGroup Type = 3
	EGroup Type = 4
	I32    Type = 5
)

func (t Type) String() string {
	switch t {
	case Varint:
		return "VARINT"
	case I64:
		return "I64"
	case Len:
		return "LEN"
	case SGroup:
		return "SGROUP"
	case EGroup:
		return "EGROUP"
	case I32:
		return "I32"
	default:
		return fmt.Sprintf("wire.Type(%d)", uint8(t))
	}
}

// ErrTruncated is returned (wrapped in a decode-level error by callers) when
// a varint, fixed-width field, or length-delimited payload runs past the end
// of the buffer.
const errTruncatedMsg = "truncated wire data"

// ErrTruncated reports a buffer that ended mid-field.
type ErrTruncated struct{ Offset int }

func (e *ErrTruncated) Error() string {
	return fmt.Sprintf("%s at offset %d", errTruncatedMsg, e.Offset)
}

// ErrOverflow reports a varint that does not fit in 64 bits (a tenth byte
// greater than 1, which would set bits above position 63 or continue).
type ErrOverflow struct{ Offset int }

func (e *ErrOverflow) Error() string {
	return fmt.Sprintf("varint overflow at offset %d", e.Offset)
}

// ErrBadWireType reports a tag whose low three bits do not name one of the
// six defined wire types. A LEN region that runs past the end of the buffer
// is reported as ErrTruncated instead.
type ErrBadWireType struct {
	Offset int
	Type   Type
}

func (e *ErrBadWireType) Error() string {
	return fmt.Sprintf("unsupported wire type %s at offset %d", e.Type, e.Offset)
}

// ConsumeVarint reads a base-128 varint from buf starting at off. It returns
// the decoded value and the offset just past the varint's last byte.
//
// Bytes are consumed LSB-first: each byte contributes its low 7 bits to the
// result, ordered from least to most significant group, and the top bit of
// each byte signals whether another byte follows. At most 10 bytes are ever
// consumed, matching the 64-bit range of the decoded value.
func ConsumeVarint(buf []byte, off int) (value uint64, next int, err error) {
	var shift uint
	for i := 0; i < 10; i++ {
		if off+i >= len(buf) {
			return 0, 0, &ErrTruncated{Offset: off + i}
		}
		b := buf[off+i]
		if i == 9 && b > 1 {
			// The 10th byte may only contribute a single extra bit; anything
			// more overflows 64 bits.
			return 0, 0, &ErrOverflow{Offset: off}
		}
		value |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return value, off + i + 1, nil
		}
		shift += 7
	}
	return 0, 0, &ErrOverflow{Offset: off}
}

// AppendVarint appends v to buf in base-128 varint form and returns the
// extended slice.
func AppendVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// SizeVarint reports the number of bytes AppendVarint would emit for v.
func SizeVarint(v uint64) int {
	n := 1
	for v >= 0x80 {
		n++
		v >>= 7
	}
	return n
}

// ConsumeTag reads a field tag: a varint whose low three bits are the wire
// type and whose remaining bits are the field number.
func ConsumeTag(buf []byte, off int) (field int32, wt Type, next int, err error) {
	v, next, err := ConsumeVarint(buf, off)
	if err != nil {
		return 0, 0, 0, err
	}
	wt = Type(v & 0x7)
	if wt > I32 {
		return 0, 0, 0, &ErrBadWireType{Offset: off, Type: wt}
	}
	field = int32(v >> 3)
	return field, wt, next, nil
}

// AppendTag appends the tag for (field, wt) to buf.
func AppendTag(buf []byte, field int32, wt Type) []byte {
	return AppendVarint(buf, uint64(field)<<3|uint64(wt))
}

// ConsumeFixed32 reads 4 little-endian bytes.
func ConsumeFixed32(buf []byte, off int) (value uint32, next int, err error) {
	if off+4 > len(buf) {
		return 0, 0, &ErrTruncated{Offset: off}
	}
	return binary.LittleEndian.Uint32(buf[off : off+4]), off + 4, nil
}

// AppendFixed32 appends v as 4 little-endian bytes.
func AppendFixed32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// ConsumeFixed64 reads 8 little-endian bytes.
func ConsumeFixed64(buf []byte, off int) (value uint64, next int, err error) {
	if off+8 > len(buf) {
		return 0, 0, &ErrTruncated{Offset: off}
	}
	return binary.LittleEndian.Uint64(buf[off : off+8]), off + 8, nil
}

// AppendFixed64 appends v as 8 little-endian bytes.
func AppendFixed64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// ConsumeBytes reads a LEN-prefixed payload: a varint length L followed by
// exactly L bytes. The returned slice aliases buf.
func ConsumeBytes(buf []byte, off int) (data []byte, next int, err error) {
	length, next, err := ConsumeVarint(buf, off)
	if err != nil {
		return nil, 0, err
	}
	end := next + int(length)
	if length > uint64(len(buf)) || end > len(buf) || end < next {
		return nil, 0, &ErrTruncated{Offset: next}
	}
	return buf[next:end], end, nil
}

// AppendBytes appends data as a LEN-prefixed payload.
func AppendBytes(buf []byte, data []byte) []byte {
	buf = AppendVarint(buf, uint64(len(data)))
	return append(buf, data...)
}

// Float32FromBits reinterprets the 32-bit pattern produced by ConsumeFixed32
// as an IEEE-754 binary32 value.
func Float32FromBits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

// Float64FromBits reinterprets the 64-bit pattern produced by ConsumeFixed64
// as an IEEE-754 binary64 value.
func Float64FromBits(bits uint64) float64 {
	return math.Float64frombits(bits)
}

// Zigzag decoding, used by sint32/sint64 schema fields.

// DecodeZigzag32 undoes the zigzag mapping used by the sint32 wire encoding.
func DecodeZigzag32(v uint64) int32 {
	u := uint32(v)
	return int32(u>>1) ^ -int32(u&1)
}

// DecodeZigzag64 undoes the zigzag mapping used by the sint64 wire encoding.
func DecodeZigzag64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}
