package types

import "testing"

func TestAssignable(t *testing.T) {
	tests := []struct {
		name     string
		src, dst Type
		want     bool
	}{
		{"same primitive", Integer{}, Integer{}, true},
		{"mismatched primitive", Integer{}, String{}, false},
		{"null to class", Null{}, Class{ClassName: "Point"}, true},
		{"null to array", Null{}, Array{Elem: Integer{}}, true},
		{"null to integer", Null{}, Integer{}, false},
		{"class mismatch", Class{ClassName: "A"}, Class{ClassName: "B"}, false},
		{"array elem mismatch", Array{Elem: Integer{}}, Array{Elem: String{}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Assignable(tt.src, tt.dst); got != tt.want {
				t.Errorf("Assignable(%v, %v) = %v, want %v", tt.src.Name(), tt.dst.Name(), got, tt.want)
			}
		})
	}
}

func TestEqCompatible(t *testing.T) {
	if !EqCompatible(Null{}, Class{ClassName: "Point"}) {
		t.Error("null should be eq-compatible with any class")
	}
	if EqCompatible(Integer{}, Boolean{}) {
		t.Error("integer and boolean should not be eq-compatible")
	}
	if !EqCompatible(Integer{}, Integer{}) {
		t.Error("same type should be eq-compatible")
	}
}

func TestSizeOf(t *testing.T) {
	cases := []struct {
		t    Type
		want int
	}{
		{Integer{}, 4},
		{Boolean{}, 4},
		{String{}, 8},
		{Array{Elem: Integer{}}, 8},
		{Class{ClassName: "Point"}, 8},
	}
	for _, c := range cases {
		if got := SizeOf(c.t); got != c.want {
			t.Errorf("SizeOf(%v) = %d, want %d", c.t.Name(), got, c.want)
		}
	}
}

func TestFromText(t *testing.T) {
	got := FromText("integer", 2)
	want := "integer[][]"
	if got.Name() != want {
		t.Errorf("FromText = %s, want %s", got.Name(), want)
	}
}

func TestFunctionName(t *testing.T) {
	f := Function{Params: []Type{Integer{}, String{}}, Ret: Boolean{}}
	want := "(integer, string) -> boolean"
	if f.Name() != want {
		t.Errorf("Function.Name() = %s, want %s", f.Name(), want)
	}
}
