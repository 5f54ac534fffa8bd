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

// Package scc implements Tarjan's algorithm, converting a directed graph
// into a topologically-sorted DAG of strongly-connected components. The
// scheduler (§4.6) runs this over a Graph's tensor-name dependency edges
// before dispatching any node: a component with more than one member, or a
// single-member component with a self-dependency, witnesses a cycle and is
// rejected with ExecError.Cycle before any kernel runs.
package scc

import (
	"iter"
	"slices"

	"github.com/latticeml/onnxcpu/internal/debug"
)

// Graph is a "local" view of a directed graph: given a node, it yields that
// node's outgoing edges (its dependencies).
type Graph[Node any] func(Node) iter.Seq[Node]

// DAG is the strongly-connected-component condensation of some directed
// graph, with components in topological order (a component's dependencies
// always have a strictly smaller Index).
type DAG[Node comparable] struct {
	keys       map[Node]int
	components []Component[Node]
}

// Component is one strongly-connected component.
type Component[Node comparable] struct {
	dag     *DAG[Node]
	idx     int
	members []Node
	deps    []int
	// selfLoop records an edge from one of members back into this component.
	selfLoop bool
}

// Sort runs Tarjan's algorithm over the directed graph reachable from root,
// as described by graph.
func Sort[Node comparable](root Node, graph Graph[Node]) *DAG[Node] {
	out := &DAG[Node]{keys: make(map[Node]int)}
	s := &tarjan[Node]{
		graph:    graph,
		dag:      out,
		metadata: make(map[Node]*metadata),
		depset:   make(map[int]struct{}),
	}
	s.rec(root)
	return out
}

// ForNode returns the component containing node, or nil if node was never
// visited (it is unreachable from the root Sort was called with).
func (d *DAG[Node]) ForNode(node Node) *Component[Node] {
	idx, ok := d.keys[node]
	if !ok {
		return nil
	}
	return &d.components[idx]
}

// Topological ranges over every component in dependency order: a
// component is only yielded after everything it depends on.
func (d *DAG[Node]) Topological() iter.Seq[*Component[Node]] {
	return func(yield func(*Component[Node]) bool) {
		for i := range d.components {
			if !yield(&d.components[i]) {
				return
			}
		}
	}
}

// Len is the number of components in the DAG.
func (d *DAG[Node]) Len() int { return len(d.components) }

// Members returns this component's nodes. A cyclic subgraph collapses to a
// single component with more than one member.
func (c *Component[Node]) Members() []Node { return c.members }

// Deps ranges over the components this one directly depends on.
func (c *Component[Node]) Deps() iter.Seq[*Component[Node]] {
	return func(yield func(*Component[Node]) bool) {
		for _, i := range c.deps {
			if !yield(&c.dag.components[i]) {
				return
			}
		}
	}
}

// Index returns this component's position in topological order.
func (c *Component[Node]) Index() int { return c.idx }

// IsCyclic reports whether this component witnesses a cycle in the
// original graph: more than one member, or a single member that depends on
// itself.
func (c *Component[Node]) IsCyclic() bool {
	return len(c.members) > 1 || c.selfLoop
}

// tarjan carries the mutable state of one Sort call.
type tarjan[Node comparable] struct {
	graph Graph[Node]
	dag   *DAG[Node]

	index    int
	stack    []Node
	metadata map[Node]*metadata

	depset map[int]struct{}
}

type metadata struct {
	index, low int
	onStack    bool
}

// rec is the recursive step of Tarjan's algorithm.
//
// See https://en.wikipedia.org/wiki/Tarjan%27s_strongly_connected_components_algorithm
func (s *tarjan[Node]) rec(node Node) *metadata {
	meta := &metadata{index: s.index, low: s.index, onStack: true}
	debug.Log("scc.rec", "%v, index: %d", node, meta.index)

	s.metadata[node] = meta
	s.index++
	offset := len(s.stack)
	s.stack = append(s.stack, node)

	for dep := range s.graph(node) {
		m := s.metadata[dep]
		if m == nil {
			m = s.rec(dep)
			meta.low = min(meta.low, m.low)
			continue
		}
		if m.onStack {
			meta.low = min(meta.low, m.index)
		}
	}

	if meta.index == meta.low {
		c := Component[Node]{
			dag:     s.dag,
			idx:     len(s.dag.components),
			members: slices.Clone(s.stack[offset:]),
		}
		s.stack = s.stack[:offset]

		for _, n := range c.members {
			s.metadata[n].onStack = false
			s.dag.keys[n] = c.idx
			for dep := range s.graph(n) {
				depIdx, ok := s.dag.keys[dep]
				switch {
				case !ok:
				case depIdx == c.idx:
					c.selfLoop = true
				default:
					s.depset[depIdx] = struct{}{}
				}
			}
		}

		c.deps = make([]int, 0, len(s.depset))
		for i := range s.depset {
			c.deps = append(c.deps, i)
		}
		slices.Sort(c.deps)
		clear(s.depset)

		debug.Log("scc.component", "%v deps=%v", c.members, c.deps)
		s.dag.components = append(s.dag.components, c)
	}

	return meta
}
