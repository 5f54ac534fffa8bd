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

package tensor

import (
	"context"
	"fmt"
	"sync"
)

// StoreErrorKind distinguishes the ways a Store operation can fail.
type StoreErrorKind int

const (
	// Duplicate: Put was called twice for the same name.
	Duplicate StoreErrorKind = iota
	// Canceled: WaitFor's context was done before every name it asked for
	// became ready.
	Canceled
)

// StoreError is returned by Put and WaitFor.
type StoreError struct {
	Kind StoreErrorKind
	Name string
	Err  error
}

func (e *StoreError) Error() string {
	switch e.Kind {
	case Duplicate:
		return fmt.Sprintf("tensor: duplicate publish of %q", e.Name)
	default:
		return fmt.Sprintf("tensor: wait for %q canceled: %v", e.Name, e.Err)
	}
}

func (e *StoreError) Unwrap() error { return e.Err }

// Store is the single blackboard the scheduler publishes node outputs into
// and reads node inputs from (§4.6): one mutex and condition variable
// guarding a name->Tensor map and a monotonically growing "ready" set.
//
// Every tensor name in a Graph is published at most once; Get and WaitFor
// never observe a partially written Tensor, since publication and the
// condition-variable broadcast happen under the same lock.
type Store struct {
	mu    sync.Mutex
	cond  sync.Cond
	ready map[string]*Tensor
}

// NewStore returns an empty Store, sized for the given expected tensor
// count as a map-growth hint.
func NewStore(expected int) *Store {
	s := &Store{ready: make(map[string]*Tensor, expected)}
	s.cond.L = &s.mu
	return s
}

// Put publishes name's value. It returns a *StoreError{Kind: Duplicate} if
// name was already published -- every tensor name is produced by exactly
// one graph node, so a second Put indicates a scheduler bug, not a runtime
// condition a caller can usefully retry.
func (s *Store) Put(name string, t *Tensor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ready[name]; ok {
		return &StoreError{Kind: Duplicate, Name: name}
	}
	s.ready[name] = t
	s.cond.Broadcast()
	return nil
}

// Get returns name's tensor if it has already been published.
func (s *Store) Get(name string) (*Tensor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.ready[name]
	return t, ok
}

// WaitFor blocks until every tensor in names has been published, or ctx is
// done, whichever comes first. It returns the tensors in the same order as
// names.
func (s *Store) WaitFor(ctx context.Context, names []string) ([]*Tensor, error) {
	if len(names) == 0 {
		return nil, nil
	}

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		s.mu.Lock()
		s.cond.Broadcast()
		s.mu.Unlock()
		close(done)
	}()
	// done is never read past this function's return; the goroutine exits
	// once ctx is eventually done (the caller always owns a cancelable
	// context with a bounded lifetime -- the session's Run context).

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Tensor, len(names))
	for {
		complete := true
		for i, name := range names {
			t, ok := s.ready[name]
			if !ok {
				complete = false
				break
			}
			out[i] = t
		}
		if complete {
			return out, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, &StoreError{Kind: Canceled, Err: err}
		}
		s.cond.Wait()
	}
}
