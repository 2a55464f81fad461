/*
 * Copyright 2022 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command outssa-dump runs the out-of-SSA pipeline over a small,
// hard-wired example function and prints the resulting VarMap and
// interference graph, optionally rendering the live ranges to an SVG
// file. It exists to exercise the core package end to end without
// requiring a real front end to feed it.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cloudwego/outssa/internal/testir"
	"github.com/cloudwego/outssa/outssa"
)

var svgPath = flag.String("svg", "", "write a live-range SVG to this path")

func main() {
	flag.Parse()

	ir, fn, numVersions := buildExample()

	result := outssa.RunOutOfSSA(ir, fn, numVersions, outssa.Options{
		TrackRefCounts: true,
		Compact:        true,
		Guided:         true,
		Unguided:       true,
	})

	fmt.Printf("partitions after coalescing: %d\n", result.VarMap.NumPartitions())
	fmt.Printf("coalesce attempts=%d succeeded=%d skipped(tpa)=%d skipped(interference)=%d\n",
		result.Coalescer.Attempted, result.Coalescer.Succeeded,
		result.Coalescer.SkippedTPA, result.Coalescer.SkippedInterference)

	for _, err := range result.Errors {
		fmt.Fprintln(os.Stderr, "self-check:", err)
	}

	fmt.Println(outssa.DumpVarMap(result.VarMap))
	fmt.Println(outssa.DumpGraph(result.Graph))

	if *svgPath != "" {
		if err := outssa.DrawLiveRanges(*svgPath, fn, result.VarMap, result.LiveInfo); err != nil {
			fmt.Fprintln(os.Stderr, "draw live ranges:", err)
			os.Exit(1)
		}
	}
}

// buildExample wires up a small diamond CFG:
//
//	bb0: x1 = 1; cond
//	bb1: x2 = x1 + 1       bb2: x3 = x1 + 2
//	bb3: x4 = phi(x2, x3); use(x4)
func buildExample() (*testir.IR, *testir.Func, int) {
	bb0 := testir.NewBlock(0)
	bb1 := testir.NewBlock(1)
	bb2 := testir.NewBlock(2)
	bb3 := testir.NewBlock(3)

	testir.Link(bb0, bb1)
	testir.Link(bb0, bb2)
	testir.Link(bb1, bb3)
	testir.Link(bb2, bb3)

	const (
		x1 outssa.Version = 1
		x2 outssa.Version = 2
		x3 outssa.Version = 3
		x4 outssa.Version = 4
	)

	bb0.AddStmt(testir.NewDef(0, x1))
	bb1.AddStmt(testir.NewDef(1, x2, x1))
	bb2.AddStmt(testir.NewDef(2, x3, x1))

	phi := testir.NewPhi(x4)
	phi.AddArg(x2, bb1)
	phi.AddArg(x3, bb2)
	bb3.AddPhi(phi)
	bb3.AddStmt(testir.NewUse(3, x4))

	fn := testir.NewFunc(bb0, bb1, bb2, bb3)
	ir := testir.NewIR(fn)

	x := &testir.Var{Name: "x", Type: "int"}
	ir.Bind(x1, x)
	ir.Bind(x2, x)
	ir.Bind(x3, x)
	ir.Bind(x4, x)

	return ir, fn, 5
}
