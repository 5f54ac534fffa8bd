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

package schema

import "fmt"

// ErrorKind enumerates the ways a .proto source can fail to parse (§4.2).
type ErrorKind int

const (
	// DuplicateTag: two fields in the same Message or OneOf scope declare
	// the same tag.
	DuplicateTag ErrorKind = iota
	// DuplicateName: two nested types in the same scope share a name.
	DuplicateName
	// MalformedTag: a field line's trailing "= N" is not a valid integer.
	MalformedTag
	// UnterminatedScope: end of input reached with a message/oneof/enum
	// scope still open.
	UnterminatedScope
	// MalformedField: a field line could not be parsed at all.
	MalformedField
)

func (k ErrorKind) String() string {
	switch k {
	case DuplicateTag:
		return "duplicate tag"
	case DuplicateName:
		return "duplicate name"
	case MalformedTag:
		return "malformed tag"
	case UnterminatedScope:
		return "unterminated scope"
	case MalformedField:
		return "malformed field"
	default:
		return "unknown schema error"
	}
}

// Error reports a problem parsing a .proto source file.
type Error struct {
	Kind ErrorKind
	Line int    // 1-based source line, 0 if not applicable (e.g. EOF).
	Text string // the offending line or identifier, for context.
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("schema: %s at line %d: %q", e.Kind, e.Line, e.Text)
	}
	return fmt.Sprintf("schema: %s: %q", e.Kind, e.Text)
}

// Warning records an unrecognized top-level construct (§6: "unknown
// constructs are ignored with a warning") rather than failing the parse.
type Warning struct {
	Line int
	Text string
}

func (w Warning) String() string {
	return fmt.Sprintf("schema: ignoring unrecognized construct at line %d: %q", w.Line, w.Text)
}
