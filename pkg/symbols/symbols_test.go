package symbols

import (
	"testing"

	"github.com/compiscript/ccc/pkg/types"
	"gopkg.in/yaml.v3"
)

func TestDefineRejectsRedeclaration(t *testing.T) {
	s := NewScope("global")
	v := &VariableSymbol{SymName: "x", SymType: types.Integer{}}
	if !s.Define(v) {
		t.Fatal("first define should succeed")
	}
	if s.Define(&VariableSymbol{SymName: "x", SymType: types.Integer{}}) {
		t.Fatal("redeclaration in the same scope should fail")
	}
}

func TestResolveWalksParentChain(t *testing.T) {
	global := NewScope("global")
	global.Define(&VariableSymbol{SymName: "g", SymType: types.Integer{}})
	fnScope := NewChild(global, "fn:f")
	fnScope.Define(&VariableSymbol{SymName: "local", SymType: types.Boolean{}})

	if fnScope.Resolve("g") == nil {
		t.Error("expected to resolve global symbol from nested scope")
	}
	if global.Resolve("local") != nil {
		t.Error("parent scope should not see child's symbols")
	}
	if fnScope.Resolve("missing") != nil {
		t.Error("expected nil for unresolved name")
	}
}

func TestClassFieldOffsetWalksBaseChain(t *testing.T) {
	base := &ClassSymbol{SymName: "A", SymType: types.Class{ClassName: "A"}}
	base.Fields = append(base.Fields, &Field{Name: "x", Type: types.Integer{}, Offset: 0})

	derived := &ClassSymbol{SymName: "B", SymType: types.Class{ClassName: "B"}, BaseName: "A", Base: base}
	derived.Fields = append(derived.Fields, &Field{Name: "y", Type: types.Integer{}, Offset: 0})

	off, ok := derived.FieldOffset("x")
	if !ok || off != 0 {
		t.Errorf("expected to find inherited field x at offset 0, got (%d, %v)", off, ok)
	}
	off, ok = derived.FieldOffset("y")
	if !ok || off != 0 {
		t.Errorf("expected derived field y at offset 0, got (%d, %v)", off, ok)
	}
	if _, ok := derived.FieldOffset("nope"); ok {
		t.Error("expected missing field to report not found")
	}
}

func TestDumpRoundTripsThroughYAML(t *testing.T) {
	global := NewScope("global")
	global.Define(&VariableSymbol{SymName: "x", SymType: types.Integer{}, IsConst: true, Initialized: true})

	dump := Dump(global)
	out, err := yaml.Marshal(dump)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}

	var roundTrip ScopeDump
	if err := yaml.Unmarshal(out, &roundTrip); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if roundTrip.ScopeName != "global" || len(roundTrip.Symbols) != 1 {
		t.Errorf("round trip mismatch: %+v", roundTrip)
	}
	if !roundTrip.Symbols[0].Const {
		t.Error("expected const flag to survive round trip")
	}
}
