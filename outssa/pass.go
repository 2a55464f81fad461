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

// Options configures one RunOutOfSSA pipeline invocation.
type Options struct {
	// TrackRefCounts enables VarMap reference counting.
	TrackRefCounts bool
	// Compact, if set, compacts the VarMap as the pipeline's final step,
	// after coalescing has finished moving versions between partitions.
	Compact bool
	// CompactFlags is passed through to VarMap.Compact when Compact is set.
	CompactFlags CompactFlags
	// TPAFlavor selects RootVar (default) or TypeVar grouping.
	TPAFlavor TPAFlavor
	// Guided, if true, builds a CoalesceList from the function's copy
	// statements and drains it before any unguided pass runs.
	Guided bool
	// Unguided, if true, runs the aggressive per-TPA-tree coalescer
	// after the guided list (if any) is exhausted.
	Unguided bool
}

// Result is everything RunOutOfSSA assembled, handed back for callers
// that want to inspect the intermediate structures (debug dumps, tests)
// rather than only the final VarMap.
type Result struct {
	VarMap   *VarMap
	LiveInfo *LiveInfo
	TPA      *TPA
	Graph    *InterferenceGraph
	Coalescer *CoalesceStats
	Errors   []error
}

// RunOutOfSSA executes the fixed ordered pipeline this package exists
// to provide: build the VarMap, compute liveness, build a TPA and
// interference graph, coalesce, and only then compact — matching the
// data flow's own ordering, where compaction produces the "final
// compact partitioning" after coalescing has finished moving versions
// between partitions. Grounded on compile.go's Passes table,
// generalized from a slice of interchangeable Pass values into an
// explicit function sequence because, unlike the teacher's independent
// optimization passes, every stage here has a real data dependency on
// the one before it.
func RunOutOfSSA(ir IR, fn Function, numVersions int, opts Options) *Result {
	vm := NewVarMap(ir, numVersions, opts.TrackRefCounts)
	seedVarMap(ir, vm, fn)

	li := NewLiveInfo(ir, vm, fn)

	var tpa *TPA
	if opts.TPAFlavor == TypeVarFlavor {
		tpa = NewTypeVarTPA(ir, vm)
	} else {
		tpa = NewRootVarTPA(ir, vm)
	}

	ig := BuildInterferenceGraph(ir, vm, fn, li, tpa)
	coalescer := NewCoalescer(vm, ig, tpa)

	if opts.Guided {
		coalescer.RunGuided(BuildCoalesceList(ir, vm, fn))
	}
	if opts.Unguided {
		coalescer.RunUnguided()
	}

	errs := SelfCheck(ir, vm, fn, li)

	if opts.Compact {
		vm.Compact(opts.CompactFlags)
	}

	return &Result{
		VarMap:    vm,
		LiveInfo:  li,
		TPA:       tpa,
		Graph:     ig,
		Coalescer: &coalescer.Stats,
		Errors:    errs,
	}
}

// seedVarMap registers every version this IR defines or uses so the
// VarMap's entity table is populated before liveness runs — the Go
// analogue of the registration loop init_var_map's caller performs
// before calculate_live_on_entry.
func seedVarMap(ir IR, vm *VarMap, fn Function) {
	for _, bb := range fn.Blocks() {
		for _, phi := range bb.Phis() {
			vm.Register(phi.Result(), false)
			for _, arg := range phi.Args() {
				vm.Register(arg.Value, true)
			}
		}
		for _, stmt := range bb.Statements() {
			if u, ok := stmt.(Usages); ok {
				for _, v := range u.Usages() {
					vm.Register(v, true)
				}
			}
			if d, ok := stmt.(Definitions); ok {
				for _, v := range d.Definitions() {
					vm.Register(v, false)
				}
			}
		}
	}
}

// BuildCoalesceList walks fn collecting copy-statement candidates into a
// CoalesceList ready to Sort and drain, mirroring create_coalesce_list's
// own traversal — which seeds exclusively from copy statements
// (add_coalesce's one call site sits inside the copy branch of
// build_tree_conflict_graph). Phi result/argument pairs are never
// candidates here: they fall out of RunUnguided's per-TPA-tree sweep
// once their partitions share a RootVar or TypeVar group, the same way
// the guided list's absence of Phi handling leaves them to the
// unguided pass in tree-ssa-live.c.
func BuildCoalesceList(ir IR, vm *VarMap, fn Function) *CoalesceList {
	list := NewCoalesceList()
	for _, bb := range fn.Blocks() {
		for _, stmt := range bb.Statements() {
			lhs, rhs, ok := ir.IsCopy(stmt)
			if !ok {
				continue
			}
			p1, p2 := vm.VarToPartition(lhs), vm.VarToPartition(rhs)
			if p1 == NoPartition || p2 == NoPartition {
				continue
			}
			list.Add(p1, p2, 1)
		}
	}
	list.Sort()
	return list
}
