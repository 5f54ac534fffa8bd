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

import "runtime"

type options struct {
	maxWorkers int
}

func defaultOptions() options {
	return options{maxWorkers: runtime.GOMAXPROCS(0)}
}

// Option configures a Schedule call.
type Option func(*options)

// WithMaxWorkers caps the number of nodes executing concurrently. The
// default is runtime.GOMAXPROCS(0).
func WithMaxWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxWorkers = n
		}
	}
}
