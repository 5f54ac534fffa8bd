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
	"errors"
	"fmt"
)

// ErrorKind enumerates the §7 DecodeError taxonomy.
type ErrorKind int

const (
	// Malformed: truncation, a bad varint, or a LEN region that runs past
	// its enclosing frame.
	Malformed ErrorKind = iota
	// UnknownField: a tag whose field number does not resolve against the
	// current scope (neither the message itself nor any of its oneofs).
	UnknownField
	// TypeMismatch: the observed wire type is inconsistent with the
	// schema's declared field type.
	TypeMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case Malformed:
		return "malformed"
	case UnknownField:
		return "unknown field"
	case TypeMismatch:
		return "type mismatch"
	default:
		return "unknown decode error"
	}
}

// Error is a single decode failure, always attributable to an exact byte
// offset in the input (§4.3 "each raises a distinct DecodeError kind").
type Error struct {
	Kind   ErrorKind
	Offset int
	Field  int32 // field number, set for UnknownField.
	Cause  error
}

func (e *Error) Error() string {
	switch {
	case e.Field != 0:
		return fmt.Sprintf("decode: %s at offset %d (field %d)", e.Kind, e.Offset, e.Field)
	case e.Cause != nil:
		return fmt.Sprintf("decode: %s at offset %d: %v", e.Kind, e.Offset, e.Cause)
	default:
		return fmt.Sprintf("decode: %s at offset %d", e.Kind, e.Offset)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// ErrUnknownRoot is returned by Decode when root does not name any message
// in the supplied registry.
var ErrUnknownRoot = errors.New("decode: root message not found in schema")

// wrapWireErr lifts an error produced by package wire into a *Error at the
// given offset, classifying it as Malformed.
func wrapWireErr(err error, offset int) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: Malformed, Offset: offset, Cause: err}
}
