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

package graph

import "fmt"

// ExecErrorKind closes the taxonomy of ways graph execution can fail (§7).
type ExecErrorKind int

const (
	// MissingInput: a node consumes a tensor name that no initializer,
	// caller input, or upstream node produces.
	MissingInput ExecErrorKind = iota
	// Cycle: the node dependency graph is not acyclic.
	Cycle
	// UnknownOp: a node's op_type is not in the kernel catalog.
	UnknownOp
	// AttrMissing: a node is missing an attribute its op_type requires.
	AttrMissing
	// AttrUnknown: a node carries an attribute its op_type does not recognize.
	AttrUnknown
	// KernelFailure: a kernel returned an error, panicked, or produced a
	// result inconsistent with the node's declared outputs.
	KernelFailure
)

func (k ExecErrorKind) String() string {
	switch k {
	case MissingInput:
		return "missing_input"
	case Cycle:
		return "cycle"
	case UnknownOp:
		return "unknown_op"
	case AttrMissing:
		return "attr_missing"
	case AttrUnknown:
		return "attr_unknown"
	case KernelFailure:
		return "kernel_failure"
	default:
		return "unknown"
	}
}

// ExecError reports a graph-execution failure, naming the offending node
// and op_type where applicable (§7).
type ExecError struct {
	Kind   ExecErrorKind
	Node   string
	OpType string
	Detail string
	Cause  error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("graph: %s", e.Kind)
	if e.Node != "" {
		msg += fmt.Sprintf(" at node %q", e.Node)
	}
	if e.OpType != "" {
		msg += fmt.Sprintf(" (%s)", e.OpType)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ExecError) Unwrap() error { return e.Cause }
