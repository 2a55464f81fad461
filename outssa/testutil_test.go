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

// A minimal hand-wired IR used only by this package's own white-box
// tests, kept separate from internal/testir (which outside packages use)
// so these tests can reach unexported fields (entity, tpaFlavor-adjacent
// internals) without an import cycle through this package.

type fakeVar struct {
	name      string
	typ       string
	volatile  bool
	parameter bool
	result    bool
	register  bool
	ignored   bool
	hardStore bool
}

type fakeStmt struct {
	id      int
	uses    []Version
	defs    []Version
	vuses   []Version
	vdefs   []Version
	isCopy  bool
	copyL   Version
	copyR   Version
}

func (s *fakeStmt) ID() int                  { return s.id }
func (s *fakeStmt) Usages() []Version        { return s.uses }
func (s *fakeStmt) Definitions() []Version   { return s.defs }
func (s *fakeStmt) VirtualUsages() []Version      { return s.vuses }
func (s *fakeStmt) VirtualDefinitions() []Version { return s.vdefs }

func fakeDef(id int, def Version, uses ...Version) *fakeStmt {
	return &fakeStmt{id: id, defs: []Version{def}, uses: uses}
}

func fakeUse(id int, uses ...Version) *fakeStmt {
	return &fakeStmt{id: id, uses: uses}
}

func fakeCopy(id int, lhs, rhs Version) *fakeStmt {
	return &fakeStmt{id: id, defs: []Version{lhs}, uses: []Version{rhs}, isCopy: true, copyL: lhs, copyR: rhs}
}

type fakePhi struct {
	result Version
	args   []PhiArg
}

func newFakePhi(result Version) *fakePhi { return &fakePhi{result: result} }

func (p *fakePhi) Result() Version { return p.result }
func (p *fakePhi) Args() []PhiArg  { return p.args }
func (p *fakePhi) addArg(val Version, src *fakeBlock) {
	p.args = append(p.args, PhiArg{Value: val, Edge: Edge{Src: src}})
}

type fakeBlock struct {
	id    int
	preds []Edge
	phis  []Phi
	stmts []Statement
	succs []Block
}

func newFakeBlock(id int) *fakeBlock { return &fakeBlock{id: id} }

func (b *fakeBlock) ID() int               { return b.id }
func (b *fakeBlock) Preds() []Edge         { return b.preds }
func (b *fakeBlock) Phis() []Phi           { return b.phis }
func (b *fakeBlock) Statements() []Statement { return b.stmts }
func (b *fakeBlock) Successors() SuccIter  { return &fakeSuccIter{succs: b.succs, i: -1} }

func (b *fakeBlock) addPhi(p *fakePhi)   { b.phis = append(b.phis, p) }
func (b *fakeBlock) addStmt(s *fakeStmt) { b.stmts = append(b.stmts, s) }

func fakeLink(b, succ *fakeBlock) {
	succ.preds = append(succ.preds, Edge{Src: b, Dst: succ})
	b.succs = append(b.succs, succ)
}

type fakeSuccIter struct {
	succs []Block
	i     int
}

func (s *fakeSuccIter) Next() bool {
	s.i++
	return s.i < len(s.succs)
}

func (s *fakeSuccIter) Block() Block { return s.succs[s.i] }

type fakeFunc struct {
	blocks []Block
}

func newFakeFunc(blocks ...*fakeBlock) *fakeFunc {
	f := &fakeFunc{}
	for _, b := range blocks {
		f.blocks = append(f.blocks, b)
	}
	return f
}

func (f *fakeFunc) Blocks() []Block { return f.blocks }
func (f *fakeFunc) NumBlocks() int  { return len(f.blocks) }

type fakeIR struct {
	fn      *fakeFunc
	defSite map[Version]Statement
	blockOf map[Statement]Block
	rootVar map[Version]Variable
}

func newFakeIR(fn *fakeFunc) *fakeIR {
	ir := &fakeIR{
		fn:      fn,
		defSite: make(map[Version]Statement),
		blockOf: make(map[Statement]Block),
		rootVar: make(map[Version]Variable),
	}
	for _, b := range fn.blocks {
		bb := b.(*fakeBlock)
		for _, s := range bb.stmts {
			st := s.(*fakeStmt)
			ir.blockOf[st] = bb
			for _, d := range st.defs {
				ir.defSite[d] = st
			}
		}
	}
	return ir
}

func (ir *fakeIR) bind(v Version, variable Variable) { ir.rootVar[v] = variable }

func (ir *fakeIR) Blocks() []Block { return ir.fn.Blocks() }
func (ir *fakeIR) NumBlocks() int  { return ir.fn.NumBlocks() }

func (ir *fakeIR) IsCopy(stmt Statement) (lhs, rhs Version, ok bool) {
	s, isStmt := stmt.(*fakeStmt)
	if !isStmt || !s.isCopy {
		return 0, 0, false
	}
	return s.copyL, s.copyR, true
}

func (ir *fakeIR) DefiningStatement(v Version) (Statement, bool) {
	s, ok := ir.defSite[v]
	return s, ok
}

func (ir *fakeIR) BlockOf(stmt Statement) (Block, bool) {
	b, ok := ir.blockOf[stmt]
	return b, ok
}

func (ir *fakeIR) RootVariable(v Version) Variable { return ir.rootVar[v] }

func (ir *fakeIR) TypeOf(v Variable) Type {
	if fv, ok := v.(*fakeVar); ok {
		return fv.typ
	}
	return nil
}

func (ir *fakeIR) IsVolatile(v Variable) bool {
	fv, ok := v.(*fakeVar)
	return ok && fv.volatile
}

func (ir *fakeIR) IsParameter(v Variable) bool {
	fv, ok := v.(*fakeVar)
	return ok && fv.parameter
}

func (ir *fakeIR) IsResult(v Variable) bool {
	fv, ok := v.(*fakeVar)
	return ok && fv.result
}

func (ir *fakeIR) IsRegister(v Variable) bool {
	fv, ok := v.(*fakeVar)
	return ok && fv.register
}

func (ir *fakeIR) IsIgnored(v Variable) bool {
	fv, ok := v.(*fakeVar)
	return ok && fv.ignored
}

func (ir *fakeIR) HasHardStorage(v Variable) bool {
	fv, ok := v.(*fakeVar)
	return ok && fv.hardStore
}
