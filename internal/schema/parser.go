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

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	reSyntax       = regexp.MustCompile(`^syntax\s*=\s*"(proto[23])"\s*;$`)
	reCloseBrace   = regexp.MustCompile(`^\}$`)
	reMessageOpen  = regexp.MustCompile(`^message\s+(\w+)\s*\{$`)
	reOneofOpen    = regexp.MustCompile(`^oneof\s+(\w+)\s*\{$`)
	reEnumOpen     = regexp.MustCompile(`^enum\s+(\w+)\s*\{$`)
	reMessageClose = regexp.MustCompile(`^message\s+(\w+)\s*\{(.*)\}$`)
	reOneofClose   = regexp.MustCompile(`^oneof\s+(\w+)\s*\{(.*)\}$`)
	reEnumClose    = regexp.MustCompile(`^enum\s+(\w+)\s*\{(.*)\}$`)
	reField        = regexp.MustCompile(`^(?:(optional|repeated|required)\s+)?([\w.]+)\s+(\w+)\s*=\s*(-?\d+)\s*;$`)
	reMapField     = regexp.MustCompile(`^map\s*<\s*([\w.]+)\s*,\s*([\w.]+)\s*>\s+(\w+)\s*=\s*(-?\d+)\s*;$`)
	reEnumVal      = regexp.MustCompile(`^(\w+)\s*=\s*(-?\d+)\s*;$`)
)

// Parse parses a .proto source file (v2 or v3 syntax) into a Registry.
//
// Parsing is line-oriented, per §4.2: each input line is classified and
// handled independently, with brace nesting tracked by an explicit scope
// stack rather than a recursive-descent grammar. A single line that both
// opens and closes a scope (e.g. "message B { optional float y = 2; }") is
// also recognized, since the body never itself opens a further nested
// scope inline — this is the one place the line-oriented design requires a
// special case.
func Parse(src string) (*Registry, []Warning, error) {
	root := newDescriptor(MessageKind, "", nil)
	reg := &Registry{root: root, byFQN: make(map[string]*Descriptor)}
	stack := []*Descriptor{root}
	var warnings []Warning

	lines := strings.Split(src, "\n")
	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}

		top := stack[len(stack)-1]

		switch {
		case reCloseBrace.MatchString(line):
			if len(stack) == 1 {
				warnings = append(warnings, Warning{Line: lineNo, Text: line})
				continue
			}
			stack = stack[:len(stack)-1]

		case reSyntax.MatchString(line):
			reg.Syntax = reSyntax.FindStringSubmatch(line)[1]

		case reMessageClose.MatchString(line):
			m := reMessageClose.FindStringSubmatch(line)
			d, err := openScope(top, MessageKind, m[1], lineNo)
			if err != nil {
				return nil, nil, err
			}
			registerFQN(reg, stack, d)
			if err := processBody(d, m[2], lineNo); err != nil {
				return nil, nil, err
			}

		case reOneofClose.MatchString(line):
			m := reOneofClose.FindStringSubmatch(line)
			d, err := openScope(top, OneOfKind, m[1], lineNo)
			if err != nil {
				return nil, nil, err
			}
			registerFQN(reg, stack, d)
			if err := processBody(d, m[2], lineNo); err != nil {
				return nil, nil, err
			}

		case reEnumClose.MatchString(line):
			m := reEnumClose.FindStringSubmatch(line)
			d, err := openScope(top, EnumKind, m[1], lineNo)
			if err != nil {
				return nil, nil, err
			}
			registerFQN(reg, stack, d)
			if err := processBody(d, m[2], lineNo); err != nil {
				return nil, nil, err
			}

		case reMessageOpen.MatchString(line):
			m := reMessageOpen.FindStringSubmatch(line)
			d, err := openScope(top, MessageKind, m[1], lineNo)
			if err != nil {
				return nil, nil, err
			}
			registerFQN(reg, stack, d)
			stack = append(stack, d)

		case reOneofOpen.MatchString(line):
			m := reOneofOpen.FindStringSubmatch(line)
			d, err := openScope(top, OneOfKind, m[1], lineNo)
			if err != nil {
				return nil, nil, err
			}
			registerFQN(reg, stack, d)
			stack = append(stack, d)

		case reEnumOpen.MatchString(line):
			m := reEnumOpen.FindStringSubmatch(line)
			d, err := openScope(top, EnumKind, m[1], lineNo)
			if err != nil {
				return nil, nil, err
			}
			registerFQN(reg, stack, d)
			stack = append(stack, d)

		default:
			recognized, err := processStatement(top, line, lineNo)
			if err != nil {
				return nil, nil, err
			}
			if !recognized {
				warnings = append(warnings, Warning{Line: lineNo, Text: line})
			}
		}
	}

	if len(stack) != 1 {
		return nil, nil, &Error{Kind: UnterminatedScope, Line: len(lines), Text: stack[len(stack)-1].Name}
	}

	return reg, warnings, nil
}

// processBody handles the body of a scope that opened and closed on the
// same source line, by splitting it into ";"-terminated statements.
func processBody(d *Descriptor, body string, lineNo int) error {
	for _, stmt := range strings.Split(body, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := processStatement(d, stmt+";", lineNo); err != nil {
			return err
		}
	}
	return nil
}

// processStatement handles a single ";"-terminated statement against scope:
// an enum value, a map field, or a scalar/message field. It reports
// recognized=false (no error) for anything else, matching §6's "unknown
// constructs are ignored with a warning."
func processStatement(scope *Descriptor, stmt string, lineNo int) (recognized bool, err error) {
	switch {
	case scope.Kind == EnumKind && reEnumVal.MatchString(stmt):
		m := reEnumVal.FindStringSubmatch(stmt)
		tag, perr := strconv.ParseInt(m[2], 10, 32)
		if perr != nil {
			return true, &Error{Kind: MalformedTag, Line: lineNo, Text: stmt}
		}
		if _, dup := scope.Attributes[int32(tag)]; dup {
			return true, &Error{Kind: DuplicateTag, Line: lineNo, Text: stmt}
		}
		scope.Attributes[int32(tag)] = Attribute{Annotation: Optional, Name: m[1], TypeName: m[1]}
		return true, nil

	case reMapField.MatchString(stmt):
		m := reMapField.FindStringSubmatch(stmt)
		tag, perr := strconv.ParseInt(m[4], 10, 32)
		if perr != nil {
			return true, &Error{Kind: MalformedTag, Line: lineNo, Text: stmt}
		}
		attr := Attribute{Annotation: Map, Name: m[3], TypeName: fmt.Sprintf("map<%s,%s>", m[1], m[2])}
		if err := addField(scope, int32(tag), attr, lineNo, stmt); err != nil {
			return true, err
		}
		return true, nil

	case reField.MatchString(stmt):
		m := reField.FindStringSubmatch(stmt)
		if m[1] == "" && scope.Kind != OneOfKind {
			// Only oneof arms may omit the label.
			return false, nil
		}
		tag, perr := strconv.ParseInt(m[4], 10, 32)
		if perr != nil {
			return true, &Error{Kind: MalformedTag, Line: lineNo, Text: stmt}
		}
		attr := Attribute{Annotation: annotationFromKeyword(m[1]), Name: m[3], TypeName: m[2]}
		if err := addField(scope, int32(tag), attr, lineNo, stmt); err != nil {
			return true, err
		}
		return true, nil

	default:
		return false, nil
	}
}

func openScope(parent *Descriptor, kind Kind, name string, lineNo int) (*Descriptor, error) {
	if _, dup := parent.Contents[name]; dup {
		return nil, &Error{Kind: DuplicateName, Line: lineNo, Text: name}
	}
	d := newDescriptor(kind, name, parent)
	parent.Contents[name] = d
	return d, nil
}

// registerFQN records d in the registry's flat index under its fully
// qualified dotted path, derived from the current scope stack (excluding
// the synthetic root).
func registerFQN(reg *Registry, stack []*Descriptor, d *Descriptor) {
	parts := make([]string, 0, len(stack))
	for _, s := range stack[1:] {
		parts = append(parts, s.Name)
	}
	parts = append(parts, d.Name)
	reg.byFQN[strings.Join(parts, ".")] = d
}

// addField installs attr under tag in scope, enforcing the §3 invariant
// that tags are unique across a Message's own attributes and all of its
// OneOf children combined.
func addField(scope *Descriptor, tag int32, attr Attribute, lineNo int, text string) error {
	if _, dup := scope.Attributes[tag]; dup {
		return &Error{Kind: DuplicateTag, Line: lineNo, Text: text}
	}
	if scope.Kind == MessageKind {
		for _, child := range scope.Contents {
			if child.Kind != OneOfKind {
				continue
			}
			if _, dup := child.Attributes[tag]; dup {
				return &Error{Kind: DuplicateTag, Line: lineNo, Text: text}
			}
		}
	}
	if scope.Kind == OneOfKind && scope.Parent != nil {
		if _, dup := scope.Parent.Attributes[tag]; dup {
			return &Error{Kind: DuplicateTag, Line: lineNo, Text: text}
		}
		for _, sibling := range scope.Parent.Contents {
			if sibling == scope || sibling.Kind != OneOfKind {
				continue
			}
			if _, dup := sibling.Attributes[tag]; dup {
				return &Error{Kind: DuplicateTag, Line: lineNo, Text: text}
			}
		}
	}
	scope.Attributes[tag] = attr
	return nil
}

func annotationFromKeyword(kw string) Annotation {
	switch kw {
	case "repeated":
		return Repeated
	case "required":
		return Required
	default:
		return Optional
	}
}

// stripComment removes a trailing "//" line comment. It is not
// quote-aware: the schema constructs recognized by this parser never need
// "//" inside a string literal.
func stripComment(line string) string {
	if idx := strings.Index(line, "//"); idx >= 0 {
		return line[:idx]
	}
	return line
}
