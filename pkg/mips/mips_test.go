package mips

import (
	"strings"
	"testing"

	"github.com/compiscript/ccc/pkg/symbols"
	"github.com/compiscript/ccc/pkg/tac"
)

func opp(o tac.Operand) *tac.Operand { return &o }

func name(n, typ string) tac.Operand  { return tac.Name(n, typ) }
func temp(n, typ string) tac.Operand  { return tac.Temp(n, typ) }
func intc(v int64) tac.Operand        { return tac.IntConst(v, "integer") }
func strc(v string) tac.Operand       { return tac.StrConst(v, "string") }
func label(id int) tac.Operand        { return tac.Label(id) }

func program(insns ...tac.Instruction) *tac.Program {
	return &tac.Program{Instructions: insns}
}

func TestDataSection_StringsInsertionOrderGlobalsSorted(t *testing.T) {
	insns := []tac.Instruction{
		{Op: tac.DEREF, Result: opp(temp("t1", "integer")), Arg1: opp(name("0x1004", "integer"))},
		{Op: tac.DEREF, Result: opp(temp("t2", "integer")), Arg1: opp(name("0x1000", "integer"))},
		{Op: tac.PRINT, Arg1: opp(strc("second"))},
		{Op: tac.PRINT, Arg1: opp(strc("first"))},
		{Op: tac.PRINT, Arg1: opp(strc("second"))},
	}
	out, err := New(nil).Generate(program(insns...))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	g1000 := strings.Index(out, "global_1000:")
	g1004 := strings.Index(out, "global_1004:")
	if g1000 < 0 || g1004 < 0 || g1000 > g1004 {
		t.Errorf("expected global_1000 before global_1004 (sorted order), got:\n%s", out)
	}

	secondLabel := strings.Index(out, `_str_0: .asciiz "second"`)
	firstLabel := strings.Index(out, `_str_1: .asciiz "first"`)
	if secondLabel < 0 || firstLabel < 0 || secondLabel > firstLabel {
		t.Errorf("expected _str_0=\"second\" before _str_1=\"first\" (first-seen order), got:\n%s", out)
	}
	if strings.Count(out, `.asciiz "second"`) != 1 {
		t.Errorf("expected \"second\" to get exactly one label despite two occurrences, got:\n%s", out)
	}
}

func TestGenerate_ScriptStartAfterFunctionBodies(t *testing.T) {
	fn := name("fib", "")
	insns := []tac.Instruction{
		{Op: tac.FUNC_START, Arg1: opp(fn)},
		{Op: tac.ENTER, Arg1: opp(intc(0))},
		{Op: tac.LEAVE},
		{Op: tac.RETURN},
		{Op: tac.FUNC_END, Arg1: opp(fn)},
		{Op: tac.PRINT, Arg1: opp(intc(1))},
	}
	out, err := New(nil).Generate(program(insns...))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	fnLabel := strings.Index(out, "fib:")
	scriptStart := strings.Index(out, "_script_start:")
	entryJump := strings.Index(out, "j _script_start")
	if fnLabel < 0 || scriptStart < 0 || entryJump < 0 {
		t.Fatalf("missing expected labels in:\n%s", out)
	}
	if !(entryJump < fnLabel && fnLabel < scriptStart) {
		t.Errorf("expected entry jump, then fib:, then _script_start: in that order, got:\n%s", out)
	}
}

func TestGenerate_NoFunctionsFallback(t *testing.T) {
	out, err := New(nil).Generate(program(tac.Instruction{Op: tac.PRINT, Arg1: opp(intc(1))}))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "_script_start:") {
		t.Errorf("expected _script_start label even with no functions, got:\n%s", out)
	}
}

func TestTranslateNew_ArrayAllocatesHeaderPlusElements(t *testing.T) {
	g := New(nil)
	result := temp("t1", "integer[]")
	ins := tac.Instruction{Op: tac.NEW, Result: &result, Arg1: opp(intc(3))}
	if err := g.translateInstruction(ins); err != nil {
		t.Fatalf("translateInstruction: %v", err)
	}
	out := g.buf.String()
	if !strings.Contains(out, "li $a0, 16") {
		t.Errorf("expected a 4-byte header + 3*4-byte elements = 16, got:\n%s", out)
	}
}

func TestTranslateNew_ClassUsesInstanceSize(t *testing.T) {
	classes := map[string]*symbols.ClassSymbol{
		"Point": {SymName: "Point", InstanceSize: 8},
	}
	g := New(classes)
	result := temp("t1", "Point")
	ins := tac.Instruction{Op: tac.NEW, Result: &result, Arg1: opp(name("Point", ""))}
	if err := g.translateInstruction(ins); err != nil {
		t.Fatalf("translateInstruction: %v", err)
	}
	out := g.buf.String()
	if !strings.Contains(out, "li $a0, 8") {
		t.Errorf("expected InstanceSize 8 used directly, got:\n%s", out)
	}
}

func TestTranslateNew_UnknownClassFaults(t *testing.T) {
	g := New(map[string]*symbols.ClassSymbol{})
	result := temp("t1", "Ghost")
	ins := tac.Instruction{Op: tac.NEW, Result: &result, Arg1: opp(name("Ghost", ""))}
	if err := g.translateInstruction(ins); err == nil {
		t.Fatal("expected an error for an unresolved class layout, got nil")
	}
}

func TestFieldAccess_ArrayLengthReadsHeaderWord(t *testing.T) {
	g := New(nil)
	result := temp("t1", "integer")
	arr := temp("t0", "integer[]")
	ins := tac.Instruction{Op: tac.FIELD_ACCESS, Result: &result, Arg1: &arr, Arg2: opp(strc("length"))}
	if err := g.translateInstruction(ins); err != nil {
		t.Fatalf("translateInstruction: %v", err)
	}
	out := g.buf.String()
	if !strings.Contains(out, "lw $t1, 0($t0)") {
		t.Errorf("expected length read at offset 0 (the header word), got:\n%s", out)
	}
}

func TestFieldAccess_FieldOffset(t *testing.T) {
	classes := map[string]*symbols.ClassSymbol{
		"Point": {SymName: "Point", Fields: []*symbols.Field{
			{Name: "x", Offset: 0},
			{Name: "y", Offset: 4},
		}},
	}
	g := New(classes)
	result := temp("t1", "integer")
	obj := temp("t0", "Point")
	ins := tac.Instruction{Op: tac.FIELD_ACCESS, Result: &result, Arg1: &obj, Arg2: opp(strc("y"))}
	if err := g.translateInstruction(ins); err != nil {
		t.Fatalf("translateInstruction: %v", err)
	}
	out := g.buf.String()
	if !strings.Contains(out, "lw $t1, 4($t0)") {
		t.Errorf("expected field 'y' read at its declared offset 4, got:\n%s", out)
	}
}

func TestFieldAccess_MethodResolvesThroughBaseChain(t *testing.T) {
	base := &symbols.ClassSymbol{SymName: "Shape", Methods: []*symbols.Method{
		{Name: "area", ImplClass: "Shape"},
	}}
	derived := &symbols.ClassSymbol{SymName: "Circle", Base: base, BaseName: "Shape"}
	classes := map[string]*symbols.ClassSymbol{"Shape": base, "Circle": derived}

	g := New(classes)
	result := temp("t1", "")
	obj := temp("t0", "Circle")
	ins := tac.Instruction{Op: tac.FIELD_ACCESS, Result: &result, Arg1: &obj, Arg2: opp(strc("area"))}
	if err := g.translateInstruction(ins); err != nil {
		t.Fatalf("translateInstruction: %v", err)
	}
	out := g.buf.String()
	if !strings.Contains(out, "la $t0, Shape_area") {
		t.Errorf("expected the method label to name the implementing class (Shape), not the static type (Circle), got:\n%s", out)
	}
}

func TestTranslateCall_ToStringArity(t *testing.T) {
	tests := []struct {
		name     string
		numArgs  int64
		wantLoad string
	}{
		{"bare function call, arity 1", 1, "lw $a0, 0($sp)"},
		{"method call with this pushed, arity 2", 2, "lw $a0, 4($sp)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil)
			result := temp("t1", "string")
			ins := tac.Instruction{
				Op:     tac.CALL,
				Result: &result,
				Arg1:   opp(name("toString", "")),
				Arg2:   opp(intc(tt.numArgs)),
			}
			if err := g.translateInstruction(ins); err != nil {
				t.Fatalf("translateInstruction: %v", err)
			}
			out := g.buf.String()
			if !strings.Contains(out, tt.wantLoad) {
				t.Errorf("expected %q, got:\n%s", tt.wantLoad, out)
			}
			if !strings.Contains(out, "jal _int_to_string") {
				t.Errorf("expected toString to route to _int_to_string, got:\n%s", out)
			}
		})
	}
}

func TestTranslateCall_IndirectThroughTemp(t *testing.T) {
	g := New(nil)
	result := temp("t2", "integer")
	callee := temp("t1", "")
	ins := tac.Instruction{Op: tac.CALL, Result: &result, Arg1: &callee, Arg2: opp(intc(1))}
	if err := g.translateInstruction(ins); err != nil {
		t.Fatalf("translateInstruction: %v", err)
	}
	out := g.buf.String()
	if !strings.Contains(out, "jalr $t0") {
		t.Errorf("expected an indirect jalr through a temp-valued callee, got:\n%s", out)
	}
	if strings.Contains(out, "jal fibonacci") {
		t.Errorf("did not expect a direct-call label, got:\n%s", out)
	}
}

func TestTranslateCall_DirectLabel(t *testing.T) {
	g := New(nil)
	result := temp("t1", "integer")
	ins := tac.Instruction{Op: tac.CALL, Result: &result, Arg1: opp(name("fibonacci", "")), Arg2: opp(intc(1))}
	if err := g.translateInstruction(ins); err != nil {
		t.Fatalf("translateInstruction: %v", err)
	}
	out := g.buf.String()
	if !strings.Contains(out, "jal fibonacci") {
		t.Errorf("expected a direct jal to the callee label, got:\n%s", out)
	}
}

func TestArrayAccess_SkipsLengthHeader(t *testing.T) {
	g := New(nil)
	result := temp("t2", "integer")
	arr := temp("t0", "integer[]")
	idx := temp("t1", "integer")
	ins := tac.Instruction{Op: tac.ARRAY_ACCESS, Result: &result, Arg1: &arr, Arg2: &idx}
	if err := g.translateInstruction(ins); err != nil {
		t.Fatalf("translateInstruction: %v", err)
	}
	out := g.buf.String()
	if !strings.Contains(out, "addi $t1, $t1, 4") {
		t.Errorf("expected the index to be offset past the 4-byte length header, got:\n%s", out)
	}
}

func TestTranslateFlooredDivMod_EmitsCorrectionSequence(t *testing.T) {
	g := New(nil)
	result := temp("t2", "integer")
	a := temp("t0", "integer")
	b := temp("t1", "integer")
	ins := tac.Instruction{Op: tac.DIV, Result: &result, Arg1: &a, Arg2: &b}
	if err := g.translateInstruction(ins); err != nil {
		t.Fatalf("translateInstruction: %v", err)
	}
	out := g.buf.String()
	for _, want := range []string{"div $t0, $t1", "mflo $t2", "mfhi $t3", "xor $t4, $t3, $t1", "addi $t2, $t2, -1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected floored-division correction to contain %q, got:\n%s", want, out)
		}
	}
}

func TestLoadStoreOp_TempSlotsAreDistinctAndStable(t *testing.T) {
	g := New(nil)
	g.tempMap = make(map[string]int)
	a := temp("t1", "integer")
	b := temp("t2", "integer")
	g.loadOp("$t0", &a)
	g.loadOp("$t0", &b)
	g.loadOp("$t0", &a)

	offA := g.tempMap["t1"]
	offB := g.tempMap["t2"]
	if offA == 0 || offB == 0 || offA == offB {
		t.Fatalf("expected two distinct nonzero offsets, got t1=%d t2=%d", offA, offB)
	}
	out := g.buf.String()
	wantA := "-" + itoa(offA) + "($fp)"
	if strings.Count(out, wantA) != 2 {
		t.Errorf("expected t1's offset %q to be reused (not reassigned) on its second load, got:\n%s", wantA, out)
	}
}

func TestGoto_UsesLabelOperandRendering(t *testing.T) {
	g := New(nil)
	l := label(3)
	ins := tac.Instruction{Op: tac.GOTO, Arg1: &l}
	if err := g.translateInstruction(ins); err != nil {
		t.Fatalf("translateInstruction: %v", err)
	}
	out := g.buf.String()
	if !strings.Contains(out, "j L3") {
		t.Errorf("expected \"j L3\", got:\n%s", out)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}
