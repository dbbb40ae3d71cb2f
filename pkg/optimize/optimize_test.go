package optimize

import (
	"testing"

	"github.com/compiscript/ccc/pkg/tac"
)

func t1() tac.Operand { return tac.Temp("t1", "integer") }
func t2() tac.Operand { return tac.Temp("t2", "integer") }
func t3() tac.Operand { return tac.Temp("t3", "integer") }

func intc(v int64) tac.Operand        { return tac.IntConst(v, "integer") }
func boolc(v bool) tac.Operand        { return tac.BoolConst(v, "boolean") }
func label(id int) tac.Operand        { return tac.Label(id) }
func opp(o tac.Operand) *tac.Operand  { return &o }

func TestFoldConstantsArithmetic(t *testing.T) {
	tests := []struct {
		name string
		op   tac.Op
		a, b int64
		want int64
	}{
		{"add", tac.ADD, 2, 3, 5},
		{"sub", tac.SUB, 5, 3, 2},
		{"mul", tac.MUL, 4, 3, 12},
		{"floor div negative", tac.DIV, -7, 2, -4},
		{"floor mod negative", tac.MOD, -7, 2, 1},
		{"div exact", tac.DIV, 8, 2, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := t1()
			insns := []tac.Instruction{
				{Op: tt.op, Result: &r, Arg1: opp(intc(tt.a)), Arg2: opp(intc(tt.b))},
			}
			out := foldConstants(insns)
			if len(out) != 1 {
				t.Fatalf("got %d instructions, want 1", len(out))
			}
			if out[0].Op != tac.ASSIGN {
				t.Fatalf("op = %v, want ASSIGN", out[0].Op)
			}
			got, ok := intVal(out[0].Arg1)
			if !ok || got != tt.want {
				t.Errorf("folded value = %v (ok=%v), want %d", out[0].Arg1, ok, tt.want)
			}
		})
	}
}

func TestFoldDivisionByZeroIsNotFolded(t *testing.T) {
	r := t1()
	insns := []tac.Instruction{
		{Op: tac.DIV, Result: &r, Arg1: opp(intc(5)), Arg2: opp(intc(0))},
	}
	out := foldConstants(insns)
	if out[0].Op != tac.DIV {
		t.Errorf("op = %v, want unfolded DIV (division by zero must reach the runtime)", out[0].Op)
	}
}

func TestFoldIfTrueOnKnownConstant(t *testing.T) {
	insns := []tac.Instruction{
		{Op: tac.IF_TRUE, Arg1: opp(boolc(true)), Arg2: opp(label(7))},
	}
	out := foldConstants(insns)
	if len(out) != 1 || out[0].Op != tac.GOTO {
		t.Fatalf("got %v, want a single unconditional GOTO", out)
	}
}

func TestFoldIfTrueOnNeverTakenBranchIsDropped(t *testing.T) {
	insns := []tac.Instruction{
		{Op: tac.IF_TRUE, Arg1: opp(boolc(false)), Arg2: opp(label(7))},
		{Op: tac.PRINT, Arg1: opp(intc(1))},
	}
	out := foldConstants(insns)
	if len(out) != 1 || out[0].Op != tac.PRINT {
		t.Fatalf("got %v, want the IF_TRUE dropped entirely", out)
	}
}

func TestSimplifyAlgebraicIdentities(t *testing.T) {
	tests := []struct {
		name string
		ins  tac.Instruction
		want *tac.Operand
	}{
		{"x+0", tac.Instruction{Op: tac.ADD, Result: opp(t1()), Arg1: opp(t2()), Arg2: opp(intc(0))}, opp(t2())},
		{"0+x", tac.Instruction{Op: tac.ADD, Result: opp(t1()), Arg1: opp(intc(0)), Arg2: opp(t2())}, opp(t2())},
		{"x-0", tac.Instruction{Op: tac.SUB, Result: opp(t1()), Arg1: opp(t2()), Arg2: opp(intc(0))}, opp(t2())},
		{"x*1", tac.Instruction{Op: tac.MUL, Result: opp(t1()), Arg1: opp(t2()), Arg2: opp(intc(1))}, opp(t2())},
		{"1*x", tac.Instruction{Op: tac.MUL, Result: opp(t1()), Arg1: opp(intc(1)), Arg2: opp(t2())}, opp(t2())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := simplifyOne(tt.ins)
			if got.Op != tac.ASSIGN {
				t.Fatalf("op = %v, want ASSIGN", got.Op)
			}
			if got.Arg1.String() != tt.want.String() {
				t.Errorf("rhs = %v, want %v", got.Arg1, tt.want)
			}
		})
	}
}

func TestSimplifyMulByZero(t *testing.T) {
	ins := tac.Instruction{Op: tac.MUL, Result: opp(t1()), Arg1: opp(t2()), Arg2: opp(intc(0))}
	got := simplifyOne(ins)
	v, ok := intVal(got.Arg1)
	if got.Op != tac.ASSIGN || !ok || v != 0 {
		t.Errorf("x*0 should fold to ASSIGN 0, got %v", got)
	}
}

func TestPropagateConstantIntoLaterRead(t *testing.T) {
	insns := []tac.Instruction{
		{Op: tac.ASSIGN, Result: opp(t1()), Arg1: opp(intc(5))},
		{Op: tac.ADD, Result: opp(t2()), Arg1: opp(t1()), Arg2: opp(intc(1))},
	}
	out := propagateCopiesAndConstants(insns)
	got, ok := intVal(out[1].Arg1)
	if !ok || got != 5 {
		t.Errorf("t1 use = %v, want constant 5 substituted in", out[1].Arg1)
	}
}

func TestPropagateStopsAtLabelBarrier(t *testing.T) {
	insns := []tac.Instruction{
		{Op: tac.ASSIGN, Result: opp(t1()), Arg1: opp(intc(5))},
		{Op: tac.LABEL, Arg1: opp(label(1))},
		{Op: tac.ADD, Result: opp(t2()), Arg1: opp(t1()), Arg2: opp(intc(1))},
	}
	out := propagateCopiesAndConstants(insns)
	if out[2].Arg1.IsConstant {
		t.Errorf("propagation crossed a LABEL barrier: %v", out[2].Arg1)
	}
}

func TestPropagateDoesNotSubstituteMemoryBackedValues(t *testing.T) {
	fp := tac.Name("FP[-4]", "integer")
	insns := []tac.Instruction{
		{Op: tac.DEREF, Result: opp(t1()), Arg1: &fp},
		{Op: tac.ADD, Result: opp(t2()), Arg1: opp(t1()), Arg2: opp(intc(1))},
	}
	out := propagateCopiesAndConstants(insns)
	if out[1].Arg1.IsConstant {
		t.Errorf("a DEREF result must never be propagated as a constant: %v", out[1].Arg1)
	}
	if !out[1].Arg1.IsTemp || out[1].Arg1.Value != "t1" {
		t.Errorf("t1 read should remain untouched, got %v", out[1].Arg1)
	}
}

func TestEliminateDeadCodeDropsUnreadTemp(t *testing.T) {
	insns := []tac.Instruction{
		{Op: tac.ASSIGN, Result: opp(t1()), Arg1: opp(intc(5))},
		{Op: tac.PRINT, Arg1: opp(intc(1))},
	}
	out := eliminateDeadCode(insns)
	if len(out) != 1 || out[0].Op != tac.PRINT {
		t.Fatalf("got %v, want the dead ASSIGN removed", out)
	}
}

func TestEliminateDeadCodeKeepsSideEffects(t *testing.T) {
	insns := []tac.Instruction{
		{Op: tac.ARRAY_ASSIGN, Result: opp(t1()), Arg1: opp(intc(0)), Arg2: opp(intc(9))},
	}
	out := eliminateDeadCode(insns)
	if len(out) != 1 {
		t.Fatalf("ARRAY_ASSIGN must survive even with no later read of its base: %v", out)
	}
}

func TestEliminateDeadCodeClearsUnusedCallResult(t *testing.T) {
	insns := []tac.Instruction{
		{Op: tac.CALL, Result: opp(t1()), Arg1: opp(tac.Name("f", "integer")), Arg2: opp(intc(0))},
		{Op: tac.PRINT, Arg1: opp(intc(1))},
	}
	out := eliminateDeadCode(insns)
	if len(out) != 2 {
		t.Fatalf("CALL must be kept for its side effect even when unread: %v", out)
	}
	if out[0].Result != nil {
		t.Errorf("unread CALL result should be cleared, got %v", out[0].Result)
	}
}

func TestEliminateDeadCodeKeepsCallArgumentTempsLive(t *testing.T) {
	callee := t2()
	insns := []tac.Instruction{
		{Op: tac.FIELD_ACCESS, Result: &callee, Arg1: opp(tac.Name("obj", "Point")), Arg2: opp(tac.StrConst("move", "function"))},
		{Op: tac.CALL, Arg1: &callee, Arg2: opp(intc(0))},
	}
	out := eliminateDeadCode(insns)
	if len(out) != 2 {
		t.Fatalf("the FIELD_ACCESS defining the call target must not be eliminated: %v", out)
	}
}

func TestSimplifyJumpsDropsNoOpFallthrough(t *testing.T) {
	insns := []tac.Instruction{
		{Op: tac.GOTO, Arg1: opp(label(1))},
		{Op: tac.LABEL, Arg1: opp(label(1))},
	}
	out := simplifyJumps(insns)
	if len(out) != 1 || out[0].Op != tac.LABEL {
		t.Fatalf("got %v, want the self-targeting GOTO dropped", out)
	}
}

func TestSimplifyJumpsFollowsJumpToJumpChain(t *testing.T) {
	insns := []tac.Instruction{
		{Op: tac.GOTO, Arg1: opp(label(1))},
		{Op: tac.LABEL, Arg1: opp(label(1))},
		{Op: tac.GOTO, Arg1: opp(label(2))},
		{Op: tac.LABEL, Arg1: opp(label(2))},
		{Op: tac.PRINT, Arg1: opp(intc(1))},
	}
	out := simplifyJumps(insns)
	id, ok := labelID(out[0].Arg1)
	if out[0].Op != tac.GOTO || !ok || id != 2 {
		t.Errorf("first GOTO should retarget straight to L2, got %v", out[0])
	}
}

func TestRemoveUnreachableDropsCodeAfterGoto(t *testing.T) {
	insns := []tac.Instruction{
		{Op: tac.GOTO, Arg1: opp(label(1))},
		{Op: tac.PRINT, Arg1: opp(intc(1))},
		{Op: tac.LABEL, Arg1: opp(label(1))},
		{Op: tac.PRINT, Arg1: opp(intc(2))},
	}
	out := removeUnreachable(insns)
	if len(out) != 3 {
		t.Fatalf("got %d instructions, want the PRINT between GOTO and its label removed: %v", len(out), out)
	}
}

func TestRemoveUnusedLabelsDropsUnreferencedLabel(t *testing.T) {
	insns := []tac.Instruction{
		{Op: tac.LABEL, Arg1: opp(label(1))},
		{Op: tac.PRINT, Arg1: opp(intc(1))},
	}
	out := removeUnusedLabels(insns)
	if len(out) != 1 || out[0].Op != tac.PRINT {
		t.Fatalf("got %v, want the unreferenced label dropped", out)
	}
}

func TestRemoveUnusedLabelsKeepsReferencedLabel(t *testing.T) {
	insns := []tac.Instruction{
		{Op: tac.GOTO, Arg1: opp(label(1))},
		{Op: tac.LABEL, Arg1: opp(label(1))},
	}
	out := removeUnusedLabels(insns)
	if len(out) != 2 {
		t.Fatalf("a referenced label must survive, got %v", out)
	}
}

func TestColorTempsDensifiesNonOverlappingLiveRanges(t *testing.T) {
	// t1 dies before t3 is even defined, so they may share a color; t2
	// outlives t1's last use and must not collide with it.
	insns := []tac.Instruction{
		{Op: tac.ASSIGN, Result: opp(t1()), Arg1: opp(intc(1))},
		{Op: tac.ASSIGN, Result: opp(t2()), Arg1: opp(t1())},
		{Op: tac.ASSIGN, Result: opp(t3()), Arg1: opp(intc(2))},
		{Op: tac.PRINT, Arg1: opp(t2())},
		{Op: tac.PRINT, Arg1: opp(t3())},
	}
	out := colorTemps(insns)
	colorOf := func(ins tac.Instruction) string { return ins.Result.Value.(string) }
	if colorOf(out[0]) == colorOf(out[1]) {
		t.Errorf("t1 and t2 are simultaneously live at instruction 1 and must not share a color")
	}
}

func TestColorTempsKeepsSeparateSegmentsIndependent(t *testing.T) {
	insns := []tac.Instruction{
		{Op: tac.ASSIGN, Result: opp(t1()), Arg1: opp(intc(1))},
		{Op: tac.FUNC_START, Arg1: opp(tac.Name("f", ""))},
		{Op: tac.ENTER, Arg1: opp(intc(0))},
		{Op: tac.ASSIGN, Result: opp(t1()), Arg1: opp(intc(2))},
		{Op: tac.LEAVE},
		{Op: tac.FUNC_END, Arg1: opp(tac.Name("f", ""))},
		{Op: tac.PRINT, Arg1: opp(t1())},
	}
	out := colorTemps(insns)
	if out[0].Result.Value != out[6].Arg1.Value {
		t.Errorf("top-level t1 before and after the function must still agree with each other: %v vs %v", out[0].Result, out[6].Arg1)
	}
}

func TestOptimizeFixpointFoldsPropagatesAndEliminates(t *testing.T) {
	// x = 2 + 3; print x  →  print 5, with the dead ASSIGN gone.
	insns := []tac.Instruction{
		{Op: tac.ADD, Result: opp(t1()), Arg1: opp(intc(2)), Arg2: opp(intc(3))},
		{Op: tac.ASSIGN, Result: opp(t2()), Arg1: opp(t1())},
		{Op: tac.PRINT, Arg1: opp(t2())},
	}
	prog := &tac.Program{Instructions: insns}
	out := Optimize(prog, NewOptions())
	if len(out.Instructions) != 1 {
		t.Fatalf("got %d instructions, want the whole chain folded to a single PRINT: %v", len(out.Instructions), out.Instructions)
	}
	if out.Instructions[0].Op != tac.PRINT {
		t.Fatalf("op = %v, want PRINT", out.Instructions[0].Op)
	}
	v, ok := intVal(out.Instructions[0].Arg1)
	if !ok || v != 5 {
		t.Errorf("printed value = %v, want constant 5", out.Instructions[0].Arg1)
	}
}

func TestOptimizeLeavesInputProgramUntouched(t *testing.T) {
	insns := []tac.Instruction{
		{Op: tac.ADD, Result: opp(t1()), Arg1: opp(intc(2)), Arg2: opp(intc(3))},
	}
	prog := &tac.Program{Instructions: insns}
	_ = Optimize(prog, NewOptions())
	if prog.Instructions[0].Op != tac.ADD {
		t.Errorf("Optimize must not mutate its input: %v", prog.Instructions[0])
	}
}
