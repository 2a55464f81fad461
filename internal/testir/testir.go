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

// Package testir is a minimal, hand-built concrete IR implementing
// outssa.IR, used by the outssa-dump CLI harness to exercise the core
// package against a
// literal, hand-wired CFG rather than anything a real front end
// produces.
package testir

import "github.com/cloudwego/outssa/outssa"

// Var is the concrete program-variable handle this IR uses.
type Var struct {
	Name       string
	Type       string
	Volatile   bool
	Parameter  bool
	Result     bool
	Register   bool
	Ignored    bool
	HardStore  bool
}

// Stmt is one instruction: a list of def/use versions, optionally
// flagged as a copy of one version into another.
type Stmt struct {
	id        int
	uses      []outssa.Version
	defs      []outssa.Version
	vuses     []outssa.Version
	vdefs     []outssa.Version
	copyLHS   outssa.Version
	copyRHS   outssa.Version
	isCopy    bool
}

func (s *Stmt) ID() int                       { return s.id }
func (s *Stmt) Usages() []outssa.Version      { return s.uses }
func (s *Stmt) Definitions() []outssa.Version { return s.defs }
func (s *Stmt) VirtualUsages() []outssa.Version      { return s.vuses }
func (s *Stmt) VirtualDefinitions() []outssa.Version { return s.vdefs }

// NewDef builds a statement that defines def and uses the given
// versions.
func NewDef(id int, def outssa.Version, uses ...outssa.Version) *Stmt {
	return &Stmt{id: id, defs: []outssa.Version{def}, uses: uses}
}

// NewUse builds a statement that only uses versions (e.g. a return or a
// branch condition check), never defines one.
func NewUse(id int, uses ...outssa.Version) *Stmt {
	return &Stmt{id: id, uses: uses}
}

// NewCopy builds a statement recognized by IsCopy as "lhs := rhs".
func NewCopy(id int, lhs, rhs outssa.Version) *Stmt {
	return &Stmt{id: id, defs: []outssa.Version{lhs}, uses: []outssa.Version{rhs}, isCopy: true, copyLHS: lhs, copyRHS: rhs}
}

// WithVirtual attaches virtual-operand use/def versions to s, for
// exercising the self-check's virtual/real disjointness rule.
func (s *Stmt) WithVirtual(vuses, vdefs []outssa.Version) *Stmt {
	s.vuses = vuses
	s.vdefs = vdefs
	return s
}

// Phi is the concrete Phi implementation.
type Phi struct {
	result outssa.Version
	args   []outssa.PhiArg
}

func NewPhi(result outssa.Version) *Phi { return &Phi{result: result} }

func (p *Phi) Result() outssa.Version    { return p.result }
func (p *Phi) Args() []outssa.PhiArg     { return p.args }
func (p *Phi) AddArg(val outssa.Version, src *Block) {
	p.args = append(p.args, outssa.PhiArg{Value: val, Edge: outssa.Edge{Src: src}})
}

// Block is the concrete Block implementation, built up imperatively by
// test/harness code rather than parsed from any textual form.
type Block struct {
	id    int
	preds []outssa.Edge
	phis  []outssa.Phi
	stmts []outssa.Statement
	succs []outssa.Block
}

func NewBlock(id int) *Block { return &Block{id: id} }

func (b *Block) ID() int                       { return b.id }
func (b *Block) Preds() []outssa.Edge          { return b.preds }
func (b *Block) Phis() []outssa.Phi            { return b.phis }
func (b *Block) Statements() []outssa.Statement { return b.stmts }
func (b *Block) Successors() outssa.SuccIter   { return &succIter{succs: b.succs, i: -1} }

// AddPhi appends a Phi to this block's phi list.
func (b *Block) AddPhi(p *Phi) { b.phis = append(b.phis, p) }

// AddStmt appends a statement to this block's instruction list.
func (b *Block) AddStmt(s *Stmt) { b.stmts = append(b.stmts, s) }

// Link records b as a predecessor of succ (and succ as a successor of b).
func Link(b, succ *Block) {
	succ.preds = append(succ.preds, outssa.Edge{Src: b, Dst: succ})
	b.succs = append(b.succs, succ)
}

type succIter struct {
	succs []outssa.Block
	i     int
}

func (s *succIter) Next() bool {
	s.i++
	return s.i < len(s.succs)
}

func (s *succIter) Block() outssa.Block { return s.succs[s.i] }

// Func is the concrete Function implementation.
type Func struct {
	blocks []outssa.Block
}

// NewFunc wraps an ordered block list (entry first) as a Function.
func NewFunc(blocks ...*Block) *Func {
	f := &Func{}
	for _, b := range blocks {
		f.blocks = append(f.blocks, b)
	}
	return f
}

func (f *Func) Blocks() []outssa.Block { return f.blocks }
func (f *Func) NumBlocks() int         { return len(f.blocks) }

// IR is the concrete outssa.IR implementation: it owns a def-site index
// built once by NewIR from the blocks' statements, plus a
// root-variable binding table keyed by Version.
type IR struct {
	fn       *Func
	defSite  map[outssa.Version]outssa.Statement
	blockOf  map[outssa.Statement]outssa.Block
	rootVar  map[outssa.Version]outssa.Variable
}

// NewIR builds an IR over fn and indexes every def site it finds by
// walking every block's statements once. Phi results are not indexed,
// so DefiningStatement reports none for them.
func NewIR(fn *Func) *IR {
	ir := &IR{
		fn:      fn,
		defSite: make(map[outssa.Version]outssa.Statement),
		blockOf: make(map[outssa.Statement]outssa.Block),
		rootVar: make(map[outssa.Version]outssa.Variable),
	}
	for _, b := range fn.blocks {
		bb := b.(*Block)
		for _, s := range bb.stmts {
			st := s.(*Stmt)
			ir.blockOf[st] = bb
			for _, d := range st.defs {
				ir.defSite[d] = st
			}
		}
	}
	return ir
}

// Bind records v's root program variable, used by RootVariable/TypeOf
// and the eligibility checks.
func (ir *IR) Bind(v outssa.Version, variable outssa.Variable) {
	ir.rootVar[v] = variable
}

func (ir *IR) Blocks() []outssa.Block { return ir.fn.Blocks() }
func (ir *IR) NumBlocks() int         { return ir.fn.NumBlocks() }

func (ir *IR) IsCopy(stmt outssa.Statement) (lhs, rhs outssa.Version, ok bool) {
	s, isStmt := stmt.(*Stmt)
	if !isStmt || !s.isCopy {
		return 0, 0, false
	}
	return s.copyLHS, s.copyRHS, true
}

func (ir *IR) DefiningStatement(v outssa.Version) (outssa.Statement, bool) {
	s, ok := ir.defSite[v]
	return s, ok
}

func (ir *IR) BlockOf(stmt outssa.Statement) (outssa.Block, bool) {
	b, ok := ir.blockOf[stmt]
	return b, ok
}

func (ir *IR) RootVariable(v outssa.Version) outssa.Variable {
	return ir.rootVar[v]
}

func (ir *IR) TypeOf(v outssa.Variable) outssa.Type {
	if variable, ok := v.(*Var); ok {
		return variable.Type
	}
	return nil
}

func (ir *IR) IsVolatile(v outssa.Variable) bool {
	variable, ok := v.(*Var)
	return ok && variable.Volatile
}

func (ir *IR) IsParameter(v outssa.Variable) bool {
	variable, ok := v.(*Var)
	return ok && variable.Parameter
}

func (ir *IR) IsResult(v outssa.Variable) bool {
	variable, ok := v.(*Var)
	return ok && variable.Result
}

func (ir *IR) IsRegister(v outssa.Variable) bool {
	variable, ok := v.(*Var)
	return ok && variable.Register
}

func (ir *IR) IsIgnored(v outssa.Variable) bool {
	variable, ok := v.(*Var)
	return ok && variable.Ignored
}

func (ir *IR) HasHardStorage(v outssa.Variable) bool {
	variable, ok := v.(*Var)
	return ok && variable.HardStore
}
