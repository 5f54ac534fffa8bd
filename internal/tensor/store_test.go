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

package tensor_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/latticeml/onnxcpu/internal/tensor"
)

func TestStorePutGet(t *testing.T) {
	t.Parallel()

	s := tensor.NewStore(4)
	tt := tensor.NewFloat32([]int{1}, []float32{1})
	require.NoError(t, s.Put("x", tt))

	got, ok := s.Get("x")
	require.True(t, ok)
	require.Same(t, tt, got)

	_, ok = s.Get("missing")
	require.False(t, ok)
}

func TestStorePutDuplicate(t *testing.T) {
	t.Parallel()

	s := tensor.NewStore(1)
	tt := tensor.NewFloat32([]int{1}, []float32{1})
	require.NoError(t, s.Put("x", tt))

	err := s.Put("x", tt)
	require.Error(t, err)
	var se *tensor.StoreError
	require.ErrorAs(t, err, &se)
	require.Equal(t, tensor.Duplicate, se.Kind)
}

// TestStoreWaitForBlocksUntilPublished demonstrates the store's testable
// property: every WaitFor observes the published value exactly once it is
// available, never before.
func TestStoreWaitForBlocksUntilPublished(t *testing.T) {
	t.Parallel()

	s := tensor.NewStore(2)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	results := make(chan []*tensor.Tensor, 1)
	go func() {
		defer wg.Done()
		got, err := s.WaitFor(ctx, []string{"a", "b"})
		require.NoError(t, err)
		results <- got
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-results:
		t.Fatal("WaitFor returned before both tensors were published")
	default:
	}

	a := tensor.NewFloat32([]int{1}, []float32{1})
	b := tensor.NewFloat32([]int{1}, []float32{2})
	require.NoError(t, s.Put("a", a))
	require.NoError(t, s.Put("b", b))

	wg.Wait()
	got := <-results
	require.Same(t, a, got[0])
	require.Same(t, b, got[1])
}

func TestStoreWaitForCanceled(t *testing.T) {
	t.Parallel()

	s := tensor.NewStore(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.WaitFor(ctx, []string{"never"})
	require.Error(t, err)
	var se *tensor.StoreError
	require.ErrorAs(t, err, &se)
	require.Equal(t, tensor.Canceled, se.Kind)
}

// TestStoreConcurrentPublishSingleWinner exercises many concurrent Put
// calls against the same name: exactly one succeeds.
func TestStoreConcurrentPublishSingleWinner(t *testing.T) {
	t.Parallel()

	s := tensor.NewStore(1)
	const n = 16
	var wg sync.WaitGroup
	successes := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Put("x", tensor.NewFloat32([]int{1}, []float32{float32(i)}))
			successes[i] = err == nil
		}(i)
	}
	wg.Wait()

	count := 0
	for _, ok := range successes {
		if ok {
			count++
		}
	}
	require.Equal(t, 1, count)
}
