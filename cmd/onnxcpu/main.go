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

// onnxcpu runs one inference pass over an ONNX model file against a
// .proto schema and a JSON input file, printing the result.
//
// Usage:
//
//	onnxcpu [-workers N] [-json] [-v] <model.onnx> <schema.proto> <input_file>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/latticeml/onnxcpu"
)

var (
	workers = flag.Int("workers", 0, "cap the scheduler's worker pool (0 = runtime.GOMAXPROCS)")
	asJSON  = flag.Bool("json", false, "emit the result as JSON instead of a human-readable summary")
	verbose = flag.Bool("v", false, "add microsecond timestamps and file:line to log lines")
)

// inputFile is the JSON shape read from the third CLI argument: a flat map
// from graph input name to its row-major float vector.
type inputFile struct {
	Inputs map[string][]float32 `json:"inputs"`
}

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: onnxcpu [-workers N] [-json] [-v] <model.onnx> <schema.proto> <input_file>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), flag.Arg(1), flag.Arg(2)); err != nil {
		fmt.Fprintln(os.Stderr, "onnxcpu:", err)
		os.Exit(1)
	}
}

func run(modelPath, schemaPath, inputPath string) error {
	logger := log.New(os.Stderr, "", log.LstdFlags)
	if *verbose || os.Getenv("ONNXCPU_DEBUG") == "1" {
		logger.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}

	modelBytes, err := os.ReadFile(modelPath)
	if err != nil {
		return fmt.Errorf("reading model: %w", err)
	}
	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("reading schema: %w", err)
	}
	inputBytes, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input file: %w", err)
	}
	var in inputFile
	if err := json.Unmarshal(inputBytes, &in); err != nil {
		return fmt.Errorf("parsing input file: %w", err)
	}

	opts := []onnxcpu.Option{onnxcpu.WithLogger(logger)}
	if *workers > 0 {
		opts = append(opts, onnxcpu.WithMaxWorkers(*workers))
	}

	session, err := onnxcpu.Load(modelBytes, string(schemaBytes), opts...)
	if err != nil {
		return err
	}

	out, err := session.Run(context.Background(), in.Inputs)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	for name, vals := range out {
		fmt.Printf("%s: %v\n", name, vals)
	}
	return nil
}
