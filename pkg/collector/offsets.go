package collector

import (
	"github.com/compiscript/ccc/pkg/symbols"
	"github.com/compiscript/ccc/pkg/types"
)

// assignClassOffsets lays out a class's (already merged) fields in
// declaration order starting at byte 0, and records the total instance
// size (§4.3's "Classes" offset rule).
func assignClassOffsets(class *symbols.ClassSymbol) {
	offset := 0
	for _, f := range class.Fields {
		f.Offset = offset
		offset += types.SizeOf(f.Type)
	}
	class.InstanceSize = offset
}

// assignFunctionOffsets lays out fn's parameters at negative offsets from
// FP and its locals (including those in nested block scopes) at
// non-negative offsets, then computes params_size/locals_size/frame_size
// (§4.3, §3's frame equation).
func (c *Collector) assignFunctionOffsets(fn *symbols.FunctionSymbol, fnScope *symbols.Scope) {
	cursor := -4
	for _, p := range fn.Params {
		off := cursor
		p.Offset = &off
		cursor -= types.SizeOf(p.SymType)
	}
	fn.ParamsSize = -cursor - 4

	localCursor := 0
	for _, child := range fnScope.Children {
		assignLocalOffsetsRecursive(child, &localCursor)
	}
	fn.LocalsSize = localCursor
	fn.FrameSize = fn.ParamsSize + fn.LocalsSize + 12
}

// assignTopLevelBlockOffsets gives FP-relative offsets to locals declared
// inside control-flow blocks nested directly in the top-level statement
// sequence (e.g. a variable declared inside a top-level `while`), treating
// the program's top level as an implicit function frame the way the
// runtime preamble sets up $fp/$sp for it exactly as for a real function
// (§3). Function and class scopes reachable from global are walked too.
// Function symbols already carry an offset from collectFunction and are
// skipped; the field VariableSymbols of a class scope carry none and are
// given offsets by this walk as well.
func (c *Collector) assignTopLevelBlockOffsets(global *symbols.Scope) {
	cursor := 0
	for _, child := range global.Children {
		assignLocalOffsetsRecursive(child, &cursor)
	}
}

// assignLocalOffsetsRecursive walks a function's body scope tree in
// declaration order, assigning every VariableSymbol encountered (locals in
// the immediate body scope and in any nested block scope) the next
// available non-negative offset. A single cursor is shared across the
// whole function so that no two locals in the same function, however
// deeply nested their block, ever receive the same offset (§8.3).
func assignLocalOffsetsRecursive(scope *symbols.Scope, cursor *int) {
	for _, sym := range scope.Symbols() {
		v, ok := sym.(*symbols.VariableSymbol)
		if !ok || v.Offset != nil {
			continue
		}
		off := *cursor
		v.Offset = &off
		*cursor += types.SizeOf(v.SymType)
	}
	for _, child := range scope.Children {
		assignLocalOffsetsRecursive(child, cursor)
	}
}

// assignGlobalOffsets lays out the top-level (global-scope) variables and
// constants at positive byte offsets starting at 0 (§4.3's "Globals" rule).
// Functions and classes declared at global scope are skipped: they have no
// storage offset of their own.
func (c *Collector) assignGlobalOffsets(global *symbols.Scope) {
	offset := 0
	for _, sym := range global.Symbols() {
		v, ok := sym.(*symbols.VariableSymbol)
		if !ok {
			continue
		}
		off := offset
		v.Offset = &off
		v.Global = true
		offset += types.SizeOf(v.SymType)
	}
}
