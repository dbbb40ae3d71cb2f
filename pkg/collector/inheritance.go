package collector

import (
	"github.com/compiscript/ccc/pkg/cerr"
	"github.com/compiscript/ccc/pkg/symbols"
	"github.com/compiscript/ccc/pkg/types"
)

type color int

const (
	white color = iota // new, unvisited
	gray              // running, on the current DFS path
	black             // done
)

// finalizeInheritance resolves every class's base chain with a DFS over
// class names, detecting cycles (E052), resolving unknown bases (E051), and
// merging each base's non-constructor methods and fields into the derived
// class (E053 on incompatible override, E054 on field collision) before
// computing that class's final instance layout. Bases are always finalized
// before their derivatives, so multi-level inheritance sees fully merged
// ancestor field/method sets (§4.3).
func (c *Collector) finalizeInheritance() {
	colors := make(map[string]color, len(c.classes))
	for name := range c.classes {
		colors[name] = white
	}
	for name := range c.classes {
		c.visitClass(name, colors)
	}
}

func (c *Collector) visitClass(name string, colors map[string]color) {
	if colors[name] == black {
		return
	}
	if colors[name] == gray {
		decl := c.classDecls[name]
		if decl != nil {
			c.errs.Report(decl.Line, decl.Col, cerr.ECyclicInheritance, "cyclic inheritance involving class '%s'", name)
		}
		return
	}
	colors[name] = gray

	class := c.classes[name]
	if class.BaseName != "" {
		base, ok := c.classes[class.BaseName]
		if !ok {
			decl := c.classDecls[name]
			c.errs.Report(decl.Line, decl.Col, cerr.EBaseNotFound, "base class '%s' is not declared", class.BaseName)
		} else {
			c.visitClass(class.BaseName, colors)
			class.Base = base
			c.mergeInherited(class, base)
		}
	}

	assignClassOffsets(class)
	colors[name] = black
}

// mergeInherited copies base's non-constructor methods and fields into
// derived, reporting E053 on an incompatible override and E054 on a field
// name collision. Inherited fields are prepended ahead of derived's own
// fields so a derived instance's layout is a suffix extension of its base's
// layout (the base's own fields keep the same relative offsets in both).
func (c *Collector) mergeInherited(derived, base *symbols.ClassSymbol) {
	ownFields := derived.Fields
	derived.Fields = nil
	for _, bf := range base.Fields {
		if owned := fieldByName(ownFields, bf.Name); owned != nil {
			decl := c.classDecls[derived.SymName]
			c.errs.Report(decl.Line, decl.Col, cerr.EFieldCollision, "field '%s' collides with an inherited field from '%s'", bf.Name, base.SymName)
			continue
		}
		derived.Fields = append(derived.Fields, &symbols.Field{Name: bf.Name, Type: bf.Type})
	}
	derived.Fields = append(derived.Fields, ownFields...)

	for _, bm := range base.Methods {
		if bm.Name == "constructor" {
			continue
		}
		if dm := methodByName(derived.Methods, bm.Name); dm != nil {
			if !signatureCompatible(dm.Type, bm.Type) {
				decl := c.classDecls[derived.SymName]
				c.errs.Report(decl.Line, decl.Col, cerr.EBadOverride, "method '%s' overrides '%s.%s' with an incompatible signature", dm.Name, base.SymName, bm.Name)
			}
			continue
		}
		derived.Methods = append(derived.Methods, &symbols.Method{Name: bm.Name, Type: bm.Type, ImplClass: bm.ImplClass})
	}
}

func fieldByName(fields []*symbols.Field, name string) *symbols.Field {
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func methodByName(methods []*symbols.Method, name string) *symbols.Method {
	for _, m := range methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// signatureCompatible checks that two method signatures have the same
// parameter count and the same parameter/return type names (§4.3).
func signatureCompatible(a, b types.Function) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].Name() != b.Params[i].Name() {
			return false
		}
	}
	aRet, bRet := "null", "null"
	if a.Ret != nil {
		aRet = a.Ret.Name()
	}
	if b.Ret != nil {
		bRet = b.Ret.Name()
	}
	return aRet == bRet
}
