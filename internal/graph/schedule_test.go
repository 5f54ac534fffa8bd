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

package graph_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticeml/onnxcpu/internal/graph"
	"github.com/latticeml/onnxcpu/internal/onnxmodel"
	"github.com/latticeml/onnxcpu/internal/tensor"
)

func relu(name string, in, out string) *onnxmodel.Node {
	return &onnxmodel.Node{Name: name, OpType: "Relu", Input: []string{in}, Output: []string{out}}
}

func TestScheduleLinearChain(t *testing.T) {
	t.Parallel()

	g := &onnxmodel.Graph{
		Nodes: []*onnxmodel.Node{
			relu("n1", "x", "a"),
			relu("n2", "a", "b"),
			relu("n3", "b", "y"),
		},
	}

	store := tensor.NewStore(4)
	require.NoError(t, store.Put("x", tensor.NewFloat32([]int{1}, []float32{-1})))

	require.NoError(t, graph.Schedule(context.Background(), g, store))

	out, ok := store.Get("y")
	require.True(t, ok)
	assert.Equal(t, []float32{0}, out.F32)
}

func TestScheduleParallelBranches(t *testing.T) {
	t.Parallel()

	// x feeds two independent chains (a1->a2, b1->b2) that are never
	// joined; both must still execute, and with 2 workers they can run
	// concurrently (§8 scenario 7).
	g := &onnxmodel.Graph{
		Nodes: []*onnxmodel.Node{
			relu("a1", "x", "a1out"),
			relu("a2", "a1out", "aout"),
			relu("b1", "x", "b1out"),
			relu("b2", "b1out", "bout"),
		},
	}

	store := tensor.NewStore(8)
	require.NoError(t, store.Put("x", tensor.NewFloat32([]int{1}, []float32{2})))

	require.NoError(t, graph.Schedule(context.Background(), g, store, graph.WithMaxWorkers(2)))

	aout, ok := store.Get("aout")
	require.True(t, ok)
	assert.Equal(t, []float32{2}, aout.F32)

	bout, ok := store.Get("bout")
	require.True(t, ok)
	assert.Equal(t, []float32{2}, bout.F32)
}

func TestScheduleDetectsCycle(t *testing.T) {
	t.Parallel()

	g := &onnxmodel.Graph{
		Nodes: []*onnxmodel.Node{
			relu("n1", "b", "a"),
			relu("n2", "a", "b"),
		},
	}

	store := tensor.NewStore(2)
	err := graph.Schedule(context.Background(), g, store)
	require.Error(t, err)

	var execErr *graph.ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, graph.Cycle, execErr.Kind)
}

func TestScheduleMissingInput(t *testing.T) {
	t.Parallel()

	g := &onnxmodel.Graph{
		Nodes: []*onnxmodel.Node{
			relu("n1", "never_produced", "y"),
		},
	}

	store := tensor.NewStore(1)
	err := graph.Schedule(context.Background(), g, store)
	require.Error(t, err)

	var execErr *graph.ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, graph.MissingInput, execErr.Kind)
}

func TestScheduleUnknownOp(t *testing.T) {
	t.Parallel()

	g := &onnxmodel.Graph{
		Nodes: []*onnxmodel.Node{
			{Name: "n1", OpType: "Frobnicate", Input: []string{"x"}, Output: []string{"y"}},
		},
	}

	store := tensor.NewStore(2)
	require.NoError(t, store.Put("x", tensor.NewFloat32([]int{1}, []float32{1})))

	err := graph.Schedule(context.Background(), g, store)
	require.Error(t, err)

	var execErr *graph.ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, graph.UnknownOp, execErr.Kind)
}

func TestScheduleUnknownAttribute(t *testing.T) {
	t.Parallel()

	g := &onnxmodel.Graph{
		Nodes: []*onnxmodel.Node{
			{
				Name: "n1", OpType: "Relu", Input: []string{"x"}, Output: []string{"y"},
				Attrs: []onnxmodel.Attribute{{Name: "bogus", Value: onnxmodel.AttributeValue{Kind: onnxmodel.AttrInt, Int: 1}}},
			},
		},
	}

	store := tensor.NewStore(2)
	require.NoError(t, store.Put("x", tensor.NewFloat32([]int{1}, []float32{1})))

	err := graph.Schedule(context.Background(), g, store)
	require.Error(t, err)

	var execErr *graph.ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, graph.AttrUnknown, execErr.Kind)
}

func TestScheduleCancellation(t *testing.T) {
	t.Parallel()

	g := &onnxmodel.Graph{
		Nodes: []*onnxmodel.Node{
			relu("n1", "x", "y"),
		},
	}
	store := tensor.NewStore(2)
	require.NoError(t, store.Put("x", tensor.NewFloat32([]int{1}, []float32{1})))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	time.Sleep(time.Millisecond) // let cancellation land before Schedule observes ctx.

	err := graph.Schedule(ctx, g, store)
	require.Error(t, err)
}
