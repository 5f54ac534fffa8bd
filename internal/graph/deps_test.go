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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeml/onnxcpu/internal/onnxmodel"
)

func TestCheckAcyclicAcceptsDAG(t *testing.T) {
	t.Parallel()

	n1 := &onnxmodel.Node{Name: "n1", Output: []string{"a"}}
	n2 := &onnxmodel.Node{Name: "n2", Input: []string{"a"}, Output: []string{"b"}}
	g := &onnxmodel.Graph{Nodes: []*onnxmodel.Node{n1, n2}}

	assert.NoError(t, checkAcyclic(g))
}

func TestCheckAcyclicRejectsCycle(t *testing.T) {
	t.Parallel()

	n1 := &onnxmodel.Node{Name: "n1", Input: []string{"b"}, Output: []string{"a"}}
	n2 := &onnxmodel.Node{Name: "n2", Input: []string{"a"}, Output: []string{"b"}}
	g := &onnxmodel.Graph{Nodes: []*onnxmodel.Node{n1, n2}}

	err := checkAcyclic(g)
	require.Error(t, err)

	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, Cycle, execErr.Kind)
}

func TestCheckAcyclicDisjointBranches(t *testing.T) {
	t.Parallel()

	// Two weakly-disconnected chains; checkAcyclic must still visit both
	// via the virtual root rather than stopping at whatever it reaches
	// from a single real node.
	a1 := &onnxmodel.Node{Name: "a1", Output: []string{"a"}}
	a2 := &onnxmodel.Node{Name: "a2", Input: []string{"a"}, Output: []string{"a2out"}}
	b1 := &onnxmodel.Node{Name: "b1", Output: []string{"b"}}
	g := &onnxmodel.Graph{Nodes: []*onnxmodel.Node{a1, a2, b1}}

	assert.NoError(t, checkAcyclic(g))
}

func TestCheckInputsResolvable(t *testing.T) {
	t.Parallel()

	n1 := &onnxmodel.Node{Name: "n1", Input: []string{"x"}, Output: []string{"y"}}
	g := &onnxmodel.Graph{Nodes: []*onnxmodel.Node{n1}}

	err := checkInputsResolvable(g, func(name string) bool { return name == "x" })
	assert.NoError(t, err)

	err = checkInputsResolvable(g, func(string) bool { return false })
	require.Error(t, err)
	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, MissingInput, execErr.Kind)
}
