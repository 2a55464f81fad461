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

package outssa

import (
	"fmt"
	"os"

	svg "github.com/ajstarks/svgo"
	"github.com/davecgh/go-spew/spew"
)

// DumpVarMap returns a structural dump of a VarMap's partitions, for
// use behind OUTSSA_TRACE_* or in a failing test. Grounded on the
// teacher's spew.Dump calls in its own linear-scan allocator debug path.
func DumpVarMap(vm *VarMap) string {
	return spew.Sdump(vm.entities)
}

// DumpGraph returns a structural dump of an InterferenceGraph's edge set.
func DumpGraph(ig *InterferenceGraph) string {
	nodes := ig.g.Nodes()
	adj := map[int64][]int64{}
	for nodes.Next() {
		id := nodes.Node().ID()
		to := ig.g.From(id)
		for to.Next() {
			adj[id] = append(adj[id], to.Node().ID())
		}
	}
	return spew.Sdump(adj)
}

// DrawLiveRanges renders one SVG column per basic block and one row per
// partition, marking the blocks each partition is live-in to, to path.
// Live-out is not drawn.
// Grounded directly on draw_liverange in debug_draw_liverange.go,
// simplified from per-instruction points down to per-block granularity
// since this package's Statement interface carries no stable textual
// form to lay out a column header from.
func DrawLiveRanges(path string, fn Function, vm *VarMap, li *LiveInfo) error {
	blocks := fn.Blocks()
	np := vm.NumPartitions()

	const colW = 90
	const rowH = 24
	const marginX = 140
	const marginY = 60

	fp, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer fp.Close()

	p := svg.New(fp)
	p.Start(marginX+len(blocks)*colW+40, marginY+np*rowH+40)
	p.Rect(0, 0, marginX+len(blocks)*colW+40, marginY+np*rowH+40, "fill:white")

	for i, bb := range blocks {
		x := marginX + i*colW
		p.Text(x+colW/2, marginY-10, fmt.Sprintf("bb_%d", bb.ID()),
			"fill:gray;font-size:12px;font-family:monospace;text-anchor:middle")
	}

	for part := 0; part < np; part++ {
		y := marginY + part*rowH
		label := fmt.Sprintf("p%d", part)
		if v, ok := vm.PartitionToVar(part); ok {
			label = fmt.Sprintf("p%d=%v", part, v)
		}
		p.Text(marginX-10, y+rowH/2+4, label,
			"fill:black;font-size:12px;font-family:monospace;text-anchor:end")

		for i, bb := range blocks {
			x := marginX + i*colW
			if li.LiveIn(part, bb) {
				p.Rect(x+4, y+4, colW-8, rowH-8, "fill:lightblue;stroke:steelblue")
			}
		}
	}

	p.End()
	return nil
}
