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
	"log"

	"github.com/latticeml/onnxcpu/internal/graph"
)

// Option is a configuration setting for [Load]. It is a struct wrapping a
// closure, rather than a plain function type, so that a future field can
// be added to sessionOptions without changing Option's signature.
type Option struct{ apply func(*sessionOptions) }

type sessionOptions struct {
	maxWorkers int
	maxDepth   int
	logger     *log.Logger
}

// WithMaxWorkers caps the number of nodes the scheduler runs concurrently
// (§4.6). The default is runtime.GOMAXPROCS(0).
func WithMaxWorkers(n int) Option {
	return Option{func(o *sessionOptions) { o.maxWorkers = n }}
}

// WithMaxDepth bounds nested-message recursion depth during model
// decoding (§4.3), guarding against a pathological or adversarial input
// forcing unbounded recursion.
func WithMaxDepth(n int) Option {
	return Option{func(o *sessionOptions) { o.maxDepth = n }}
}

// WithLogger supplies a logger for always-on operational messages (schema
// load summary, model load summary, per-run timing). Without one, a
// Session logs nothing outside of debug builds.
func WithLogger(l *log.Logger) Option {
	return Option{func(o *sessionOptions) { o.logger = l }}
}

func (o *sessionOptions) graphOptions() []graph.Option {
	if o.maxWorkers <= 0 {
		return nil
	}
	return []graph.Option{graph.WithMaxWorkers(o.maxWorkers)}
}

func (o *sessionOptions) log(format string, args ...any) {
	if o.logger != nil {
		o.logger.Printf(format, args...)
	}
}
