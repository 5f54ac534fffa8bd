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

// Package graph is the scheduler (§4.6): it walks a decoded model's Graph,
// verifies the node dependency relation is acyclic, then dispatches every
// node's kernel exactly once, in an order consistent with data
// dependencies, fanning independent branches out across a bounded worker
// pool (golang.org/x/sync/errgroup).
package graph

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/latticeml/onnxcpu/internal/debug"
	"github.com/latticeml/onnxcpu/internal/kernel"
	"github.com/latticeml/onnxcpu/internal/onnxmodel"
	"github.com/latticeml/onnxcpu/internal/tensor"
)

// Schedule executes every node of g exactly once against store, which must
// already hold every initializer and caller-supplied input tensor by name.
// It returns the first *ExecError encountered; on success every node's
// outputs have been published to store.
//
// A fixed pool of worker goroutines (capped by WithMaxWorkers, default
// runtime.GOMAXPROCS) pulls from a single ready-node channel: a node is
// pushed onto it the moment its last unmet producer dependency completes,
// so independent branches that become ready together are picked up by
// separate workers without any special-cased fan-out logic.
func Schedule(ctx context.Context, g *onnxmodel.Graph, store *tensor.Store, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := checkAcyclic(g); err != nil {
		return err
	}
	if err := checkInputsResolvable(g, func(name string) bool {
		_, ok := store.Get(name)
		return ok
	}); err != nil {
		return err
	}
	for _, n := range g.Nodes {
		if _, ok := kernel.Dispatch(n.OpType); !ok {
			return &ExecError{Kind: UnknownOp, Node: n.Name, OpType: n.OpType, Detail: "op_type not registered in kernel catalog"}
		}
		if err := validateAttrs(n); err != nil {
			return err
		}
	}

	if len(g.Nodes) == 0 {
		return nil
	}

	producers := g.Producers()
	s := &scheduler{
		store:     store,
		producers: producers,
		consumers: g.Consumers(),
		remaining: make(map[*onnxmodel.Node]map[*onnxmodel.Node]bool, len(g.Nodes)),
		total:     len(g.Nodes),
		// Capacity len(g.Nodes): every node is pushed onto ready exactly
		// once over the run, so a send never blocks regardless of how
		// fast workers drain it.
		ready: make(chan *onnxmodel.Node, len(g.Nodes)),
	}

	var initial []*onnxmodel.Node
	for _, n := range g.Nodes {
		deps := make(map[*onnxmodel.Node]bool)
		for _, in := range n.Input {
			if p, ok := producers[in]; ok && p != n {
				deps[p] = true
			}
		}
		s.remaining[n] = deps
		if len(deps) == 0 {
			initial = append(initial, n)
		}
	}

	debug.Log("graph.Schedule", "%d initially-ready node(s) of %d total, %d worker(s)", len(initial), len(g.Nodes), o.maxWorkers)
	for _, n := range initial {
		s.ready <- n
	}

	eg, egCtx := errgroup.WithContext(ctx)
	s.ctx = egCtx
	workers := o.maxWorkers
	if workers > s.total {
		workers = s.total
	}
	for i := 0; i < workers; i++ {
		eg.Go(s.worker)
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	if s.completed != s.total {
		return &ExecError{Kind: MissingInput, Detail: fmt.Sprintf("only %d of %d nodes executed; the graph is not weakly connected to its ready set", s.completed, s.total)}
	}
	return nil
}

// scheduler carries the mutable dispatch state of one Schedule call.
type scheduler struct {
	store     *tensor.Store
	producers map[string]*onnxmodel.Node
	consumers map[string][]*onnxmodel.Node

	ctx   context.Context
	ready chan *onnxmodel.Node
	total int

	mu        sync.Mutex
	remaining map[*onnxmodel.Node]map[*onnxmodel.Node]bool
	completed int
}

// worker drains s.ready until every node has run, the context is
// cancelled, or it hits an error; it is the errgroup.Group.Go function for
// one pool slot.
func (s *scheduler) worker() error {
	for {
		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		case n, ok := <-s.ready:
			if !ok {
				return nil
			}
			if err := s.run(n); err != nil {
				return err
			}
			if done := s.markDone(n); done {
				return nil
			}
		}
	}
}

// markDone records n's completion, pushes any newly-ready consumer onto
// s.ready, and reports whether every node in the graph has now run.
func (s *scheduler) markDone(n *onnxmodel.Node) bool {
	s.mu.Lock()
	s.completed++
	allDone := s.completed == s.total

	var readyNow []*onnxmodel.Node
	seen := make(map[*onnxmodel.Node]bool)
	for _, out := range n.Output {
		for _, c := range s.consumers[out] {
			if seen[c] {
				continue
			}
			seen[c] = true
			deps := s.remaining[c]
			if deps == nil {
				continue // already dispatched via a different output
			}
			delete(deps, n)
			if len(deps) == 0 {
				readyNow = append(readyNow, c)
				s.remaining[c] = nil
			}
		}
	}
	s.mu.Unlock()

	for _, c := range readyNow {
		s.ready <- c
	}
	if allDone {
		// Every node has run, so no further send on s.ready can ever
		// occur (readyNow above is necessarily empty in that case);
		// closing wakes every worker still parked on the select in
		// worker() so eg.Wait() can return.
		close(s.ready)
	}
	return allDone
}

// run executes one node's kernel: it waits for every input tensor to be
// published (a no-op wait in practice, since the scheduler only pushes a
// node onto s.ready once every producer dependency has completed, but kept
// as the explicit synchronization point §4.6 describes), invokes the
// kernel, and publishes its outputs.
func (s *scheduler) run(n *onnxmodel.Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ExecError{Kind: KernelFailure, Node: n.Name, OpType: n.OpType, Cause: fmt.Errorf("panic: %v\n%s", r, debug.Stack(3))}
		}
	}()

	if err := s.ctx.Err(); err != nil {
		return err
	}

	waitNames := make([]string, 0, len(n.Input))
	for _, in := range n.Input {
		if _, ok := s.producers[in]; ok {
			waitNames = append(waitNames, in)
		}
	}
	if len(waitNames) > 0 {
		if _, err := s.store.WaitFor(s.ctx, waitNames); err != nil {
			return &ExecError{Kind: KernelFailure, Node: n.Name, OpType: n.OpType, Cause: err}
		}
	}

	inputs := make([]*tensor.Tensor, len(n.Input))
	for i, in := range n.Input {
		t, ok := s.store.Get(in)
		if !ok {
			return &ExecError{Kind: MissingInput, Node: n.Name, OpType: n.OpType, Detail: in}
		}
		inputs[i] = t
	}

	fn, _ := kernel.Dispatch(n.OpType) // already validated present in Schedule.
	debug.Log("graph.run", "%s (%s): %d input(s)", n.Name, n.OpType, len(inputs))
	outputs, err := fn(n, inputs)
	if err != nil {
		return &ExecError{Kind: KernelFailure, Node: n.Name, OpType: n.OpType, Cause: err}
	}
	if len(outputs) != len(n.Output) {
		return &ExecError{Kind: KernelFailure, Node: n.Name, OpType: n.OpType, Detail: fmt.Sprintf("kernel produced %d output(s), node declares %d", len(outputs), len(n.Output))}
	}
	for i, name := range n.Output {
		if err := s.store.Put(name, outputs[i]); err != nil {
			return &ExecError{Kind: KernelFailure, Node: n.Name, OpType: n.OpType, Cause: err}
		}
	}
	return nil
}
