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

//go:build !debug

package debug

// Enabled is false in a release build; Log and Assert compile down to
// nothing a caller sees above a function-call frame.
const Enabled = false

// Log is a no-op outside of a debug build.
func Log(string, string, ...any) {}

// Assert is a no-op outside of a debug build: cond is not checked, but as a
// function argument it is still computed by the caller -- callers that want
// this to vanish entirely guard the call site with `if debug.Enabled`.
func Assert(bool, string, ...any) {}
