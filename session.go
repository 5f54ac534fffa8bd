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

package onnxcpu

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/latticeml/onnxcpu/internal/decode"
	"github.com/latticeml/onnxcpu/internal/graph"
	"github.com/latticeml/onnxcpu/internal/onnxmodel"
	"github.com/latticeml/onnxcpu/internal/schema"
	"github.com/latticeml/onnxcpu/internal/tensor"
)

const modelRootMessage = "ModelProto"

// Session is a loaded model, ready to be run. It holds no mutable state
// across Run calls other than its logger and run-ID, so a single Session
// may be reused (but not run concurrently with itself, since each Run owns
// a fresh Store).
type Session struct {
	model *onnxmodel.Model
	opts  sessionOptions
	id    uuid.UUID
}

// Load parses schemaSrc as a .proto schema, decodes modelBytes against it
// rooted at ModelProto, and returns a Session ready to Run. Unrecognized
// top-level schema constructs are logged as warnings rather than failing
// the load (§6).
func Load(modelBytes []byte, schemaSrc string, opts ...Option) (*Session, error) {
	var so sessionOptions
	for _, opt := range opts {
		opt.apply(&so)
	}

	reg, warnings, err := schema.Parse(schemaSrc)
	if err != nil {
		return nil, fmt.Errorf("onnxcpu: parsing schema: %w", err)
	}
	for _, w := range warnings {
		so.log("%s", w.String())
	}

	var decodeOpts []decode.Option
	if so.maxDepth > 0 {
		decodeOpts = append(decodeOpts, decode.WithMaxDepth(so.maxDepth))
	}
	model, err := decode.Decode(modelBytes, reg, modelRootMessage, decodeOpts...)
	if err != nil {
		return nil, fmt.Errorf("onnxcpu: decoding model: %w", err)
	}

	id := uuid.New()
	so.log("onnxcpu: loaded model (run %s): %d node(s), %d initializer(s), %d input(s), %d output(s)",
		id, len(model.Graph.Nodes), len(model.Graph.Initializers), len(model.Graph.Inputs), len(model.Graph.Outputs))

	return &Session{model: model, opts: so, id: id}, nil
}

// Model returns the Session's decoded model, for callers that want to
// inspect its graph (list inputs/outputs, walk nodes) without running it.
func (s *Session) Model() *Model { return s.model }

// RunID is the session's stable identifier, surfaced in logs and in the
// message of any scheduling error Run returns, so concurrent runs against
// the same process are distinguishable in output.
func (s *Session) RunID() string { return s.id.String() }

// Run evaluates the model's graph against inputs, a map from graph input
// name to a flat row-major float vector whose length must equal the
// product of that input's declared dims (§6 "Tensor input"). It returns
// every declared graph output by name.
func (s *Session) Run(ctx context.Context, inputs map[string][]float32) (map[string][]float32, error) {
	start := time.Now()
	g := s.model.Graph

	store := tensor.NewStore(len(g.Nodes) + len(g.Initializers) + len(g.Inputs))
	if err := s.preload(store, inputs); err != nil {
		return nil, err
	}

	if err := graph.Schedule(ctx, g, store, s.opts.graphOptions()...); err != nil {
		return nil, fmt.Errorf("onnxcpu: run %s: %w", s.id, err)
	}

	out := make(map[string][]float32, len(g.Outputs))
	for _, vi := range g.Outputs {
		t, ok := store.Get(vi.Name)
		if !ok {
			return nil, &ExecError{Kind: ErrMissingInput, Node: vi.Name, Detail: "declared graph output was never produced"}
		}
		out[vi.Name] = t.RequireFloat32("Session.Run output " + vi.Name)
	}

	s.opts.log("onnxcpu: run %s: completed in %s", s.id, time.Since(start))
	return out, nil
}

// preload publishes every initializer and every caller-supplied input into
// store, validating caller inputs' lengths against the graph's declared
// input shapes before scheduling ever sees them.
func (s *Session) preload(store *tensor.Store, inputs map[string][]float32) error {
	g := s.model.Graph

	for _, init := range g.Initializers {
		shape := dimsToShape(init.Dims)
		var t *tensor.Tensor
		switch init.DataType {
		case onnxmodel.Int64:
			t = tensor.NewInt64(shape, init.Int64s())
		default:
			t = tensor.NewFloat32(shape, init.Floats())
		}
		if err := store.Put(init.Name, t); err != nil {
			return fmt.Errorf("onnxcpu: publishing initializer %q: %w", init.Name, err)
		}
	}

	for _, vi := range g.Inputs {
		if _, ok := g.InitializerByName(vi.Name); ok {
			continue // an input with a matching initializer is treated as a default, not caller-supplied (ONNX convention).
		}
		data, ok := inputs[vi.Name]
		if !ok {
			return &ExecError{Kind: ErrMissingInput, Node: vi.Name, Detail: "no value supplied for graph input"}
		}
		shape := dimsToShape(vi.Dims)
		want := 1
		for _, d := range shape {
			want *= d
		}
		if len(data) != want {
			return &ShapeError{Op: "Session.Run", Detail: fmt.Sprintf("input %q wants %d elements for shape %v, got %d", vi.Name, want, shape, len(data))}
		}
		if err := store.Put(vi.Name, tensor.NewFloat32(shape, data)); err != nil {
			return fmt.Errorf("onnxcpu: publishing input %q: %w", vi.Name, err)
		}
	}
	return nil
}

func dimsToShape(dims []int64) []int {
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = int(d)
	}
	return shape
}

// Classify runs the model and returns the argmax class index of its single
// declared output, which must be rank-2 [1, K] (§6 "Outputs"): a
// convenience for the classification models this engine targets, sparing
// the caller from hand-rolling the argmax over logits or probabilities.
func (s *Session) Classify(ctx context.Context, inputs map[string][]float32) (class int, scores []float32, err error) {
	out, err := s.Run(ctx, inputs)
	if err != nil {
		return 0, nil, err
	}
	if len(s.model.Graph.Outputs) != 1 {
		return 0, nil, fmt.Errorf("onnxcpu: Classify requires exactly one graph output, model declares %d", len(s.model.Graph.Outputs))
	}
	name := s.model.Graph.Outputs[0].Name
	scores = out[name]

	best := 0
	for i, v := range scores {
		if v > scores[best] {
			best = i
		}
	}
	return best, scores, nil
}
