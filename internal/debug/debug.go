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

//go:build debug

// Package debug includes debugging helpers. Log and Assert are compiled in
// only with -tags debug, so that a release build pays nothing for them
// (debug_off.go supplies them as no-ops when the tag is absent); Stack, in
// stack.go, is compiled in every build.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Enabled is true when the binary is built with -tags debug.
const Enabled = true

// Log prints a trace line to stderr: caller package/file:line, the named
// operation, and a printf-style message.
func Log(operation string, format string, args ...any) {
	pc, file, line, ok := runtime.Caller(1)
	pkg, fn := "?", "?"
	if ok {
		if f := runtime.FuncForPC(pc); f != nil {
			name := f.Name()
			if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
				pkg, fn = name[:dot], name[dot+1:]
			}
			if slash := strings.LastIndexByte(pkg, '/'); slash >= 0 {
				pkg = pkg[slash+1:]
			}
		}
	}

	msg := fmt.Sprintf("%s/%s:%d %s(): %s: %s", pkg, filepath.Base(file), line, fn, operation, fmt.Sprintf(format, args...))
	fmt.Fprintln(os.Stderr, msg)
}

// Assert panics if cond is false. Used for internal invariants that should
// never fire outside of a bug, and that we do not want live cost for in a
// release build.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Errorf("onnxcpu: internal assertion failed: "+format, args...))
	}
}
