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

package onnxmodel

import "sync"

// Graph is a Model's computation graph: an ordered node list, the
// constant initializer tensors, and the declared input/output ValueInfo.
type Graph struct {
	Nodes        []*Node
	Initializers []*Tensor
	Inputs       []*ValueInfo
	Outputs      []*ValueInfo

	once        sync.Once
	producers   map[string]*Node
	consumers   map[string][]*Node
}

// Producers returns, for every tensor name produced by some Node in the
// graph, that Node. Initializer and graph-input names are not included,
// since their "producer" is the graph itself rather than a Node (§4.4
// derived views, grounded on the scheduler reimplementation note in §9).
//
// The result is computed once and cached; it is safe to call concurrently.
func (g *Graph) Producers() map[string]*Node {
	g.buildViews()
	return g.producers
}

// Consumers returns, for every tensor name read by at least one Node, the
// ordered list of Nodes that read it as an input.
func (g *Graph) Consumers() map[string][]*Node {
	g.buildViews()
	return g.consumers
}

func (g *Graph) buildViews() {
	g.once.Do(func() {
		g.producers = make(map[string]*Node, len(g.Nodes))
		g.consumers = make(map[string][]*Node)
		for _, n := range g.Nodes {
			for _, out := range n.Output {
				if _, dup := g.producers[out]; !dup {
					g.producers[out] = n
				}
			}
			for _, in := range n.Input {
				g.consumers[in] = append(g.consumers[in], n)
			}
		}
	})
}

// InitializerByName returns the initializer tensor with the given name, if
// any.
func (g *Graph) InitializerByName(name string) (*Tensor, bool) {
	for _, t := range g.Initializers {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// OutputNames returns the graph's declared output tensor names, in
// declaration order.
func (g *Graph) OutputNames() []string {
	names := make([]string, len(g.Outputs))
	for i, vi := range g.Outputs {
		names[i] = vi.Name
	}
	return names
}
