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
	"fmt"
	"iter"

	"github.com/latticeml/onnxcpu/internal/onnxmodel"
	"github.com/latticeml/onnxcpu/internal/scc"
)

// nodeDeps builds the scc.Graph view of a model graph's node-dependency
// relation: node A depends on node B iff A consumes one of B's outputs
// (§4.6). nil stands for a virtual root that depends on every real node,
// purely so a single scc.Sort call visits the whole graph even when it is
// not weakly connected (multiple independent branches, as in §8 scenario
// 7); nil never participates in a real cycle since nothing depends on it.
func nodeDeps(producers map[string]*onnxmodel.Node, nodes []*onnxmodel.Node) scc.Graph[*onnxmodel.Node] {
	return func(n *onnxmodel.Node) iter.Seq[*onnxmodel.Node] {
		return func(yield func(*onnxmodel.Node) bool) {
			if n == nil {
				for _, real := range nodes {
					if !yield(real) {
						return
					}
				}
				return
			}
			seen := make(map[*onnxmodel.Node]bool, len(n.Input))
			for _, in := range n.Input {
				p, ok := producers[in]
				if !ok || seen[p] {
					continue
				}
				seen[p] = true
				if !yield(p) {
					return
				}
			}
		}
	}
}

// checkAcyclic verifies the node dependency graph is a DAG, returning
// *ExecError kind Cycle naming one offending node if not.
func checkAcyclic(g *onnxmodel.Graph) error {
	producers := g.Producers()
	dag := scc.Sort[*onnxmodel.Node](nil, nodeDeps(producers, g.Nodes))

	for c := range dag.Topological() {
		members := c.Members()
		if len(members) == 1 && members[0] == nil {
			continue // the virtual root's own singleton component
		}
		if c.IsCyclic() {
			names := make([]string, len(members))
			for i, n := range members {
				names[i] = n.Name
			}
			return &ExecError{Kind: Cycle, Node: names[0], Detail: fmt.Sprintf("cycle through nodes %v", names)}
		}
	}
	return nil
}

// checkInputsResolvable verifies every node input name is either already
// published (an initializer or a caller-supplied input) or produced by
// some node in the graph, returning *ExecError kind MissingInput otherwise.
func checkInputsResolvable(g *onnxmodel.Graph, has func(name string) bool) error {
	producers := g.Producers()
	for _, n := range g.Nodes {
		for _, in := range n.Input {
			if _, ok := producers[in]; ok {
				continue
			}
			if has(in) {
				continue
			}
			return &ExecError{Kind: MissingInput, Node: n.Name, OpType: n.OpType, Detail: fmt.Sprintf("input %q has no producer and was not supplied", in)}
		}
	}
	return nil
}
