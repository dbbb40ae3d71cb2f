package symbols

// ScopeDump is the tree-of-dicts projection of a Scope described in §4.2,
// used by the IDE collaborator's `symbols` response field and by the CLI's
// --dsym dump (marshaled with yaml.v3, matching the teacher's go.mod
// dependency on gopkg.in/yaml.v3, which the compiler transform itself never
// needed but this debug/IDE surface does).
type ScopeDump struct {
	ScopeName string       `yaml:"scope_name" json:"scope_name"`
	Symbols   []SymbolDump `yaml:"symbols" json:"symbols"`
	Children  []ScopeDump  `yaml:"children" json:"children"`
}

// SymbolDump projects one Symbol's kind, type string, and kind-specific
// metadata (params, fields, methods, const/initialized flags).
type SymbolDump struct {
	Name        string       `yaml:"name" json:"name"`
	Kind        string       `yaml:"kind" json:"kind"` // "variable" | "function" | "class"
	Type        string       `yaml:"type" json:"type"`
	Const       bool         `yaml:"const,omitempty" json:"const,omitempty"`
	Initialized bool         `yaml:"initialized,omitempty" json:"initialized,omitempty"`
	Params      []ParamDump  `yaml:"params,omitempty" json:"params,omitempty"`
	Return      string       `yaml:"return,omitempty" json:"return,omitempty"`
	Fields      []FieldDump  `yaml:"fields,omitempty" json:"fields,omitempty"`
	Methods     []MethodDump `yaml:"methods,omitempty" json:"methods,omitempty"`
	Base        string       `yaml:"base,omitempty" json:"base,omitempty"`
}

type ParamDump struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

type FieldDump struct {
	Name   string `yaml:"name" json:"name"`
	Type   string `yaml:"type" json:"type"`
	Offset int    `yaml:"offset" json:"offset"`
}

type MethodDump struct {
	Name   string `yaml:"name" json:"name"`
	Type   string `yaml:"type" json:"type"`
	Impl   string `yaml:"impl,omitempty" json:"impl,omitempty"`
}

// Dump projects a Scope (recursively) into a ScopeDump.
func Dump(s *Scope) ScopeDump {
	d := ScopeDump{ScopeName: s.Name}
	for _, sym := range s.Symbols() {
		d.Symbols = append(d.Symbols, dumpSymbol(sym))
	}
	for _, c := range s.Children {
		d.Children = append(d.Children, Dump(c))
	}
	return d
}

func dumpSymbol(sym Symbol) SymbolDump {
	switch s := sym.(type) {
	case *VariableSymbol:
		return SymbolDump{
			Name:        s.SymName,
			Kind:        "variable",
			Type:        s.SymType.Name(),
			Const:       s.IsConst,
			Initialized: s.Initialized,
		}
	case *FunctionSymbol:
		d := SymbolDump{Name: s.SymName, Kind: "function"}
		for _, p := range s.Params {
			d.Params = append(d.Params, ParamDump{Name: p.SymName, Type: p.SymType.Name()})
		}
		if fn, ok := s.SymType.(interface{ Name() string }); ok {
			d.Type = fn.Name()
		}
		return d
	case *ClassSymbol:
		d := SymbolDump{Name: s.SymName, Kind: "class", Type: s.SymType.Name(), Base: s.BaseName}
		for _, f := range s.Fields {
			d.Fields = append(d.Fields, FieldDump{Name: f.Name, Type: f.Type.Name(), Offset: f.Offset})
		}
		for _, m := range s.Methods {
			d.Methods = append(d.Methods, MethodDump{Name: m.Name, Type: m.Type.Name(), Impl: m.ImplClass})
		}
		return d
	default:
		return SymbolDump{Name: sym.Name(), Kind: "unknown"}
	}
}
