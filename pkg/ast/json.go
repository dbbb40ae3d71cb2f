package ast

import (
	"encoding/json"
	"fmt"
)

// DecodeProgram parses the tagged JSON AST wire format the IDE collaborator
// (pkg/ide) accepts in place of raw source text. The grammar and parser
// that would turn source text into this tree are out of scope (§1 of
// spec.md treats them as an external collaborator); what reaches this
// package over HTTP is already the typed tree spec.md's §6 "Input — typed
// AST" contract describes, serialized as one JSON object per node with a
// "kind" discriminator naming the Go type and the node's own fields
// lower-camelCased (e.g. {"kind":"BinaryOp","op":"+","left":...,"right":...}).
func DecodeProgram(data []byte) (*Program, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Kind != "Program" {
		return nil, fmt.Errorf("ast: root node must be %q, got %q", "Program", env.Kind)
	}
	var body struct {
		Pos
		Statements []json.RawMessage `json:"statements"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	stmts, err := decodeStmts(body.Statements)
	if err != nil {
		return nil, err
	}
	return &Program{Pos: body.Pos, Statements: stmts}, nil
}

// envelope reads just enough of a node to dispatch on its kind; every
// concrete decode re-parses the same bytes into a kind-specific shape.
type envelope struct {
	Kind string `json:"kind"`
}

func kindOf(raw json.RawMessage) (string, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", err
	}
	if env.Kind == "" {
		return "", fmt.Errorf("ast: node missing required %q field", "kind")
	}
	return env.Kind, nil
}

func decodeStmts(raw []json.RawMessage) ([]Stmt, error) {
	out := make([]Stmt, 0, len(raw))
	for _, r := range raw {
		s, err := decodeStmt(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeExprs(raw []json.RawMessage) ([]Expr, error) {
	out := make([]Expr, 0, len(raw))
	for _, r := range raw {
		e, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeOptExpr(raw json.RawMessage) (Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return decodeExpr(raw)
}

func decodeOptStmt(raw json.RawMessage) (Stmt, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return decodeStmt(raw)
}

func decodeBlock(raw json.RawMessage) (*Block, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var body struct {
		Pos
		Statements []json.RawMessage `json:"statements"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	stmts, err := decodeStmts(body.Statements)
	if err != nil {
		return nil, err
	}
	return &Block{Pos: body.Pos, Statements: stmts}, nil
}

func decodeTypeAnnotation(raw json.RawMessage) (*TypeAnnotation, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var ta struct {
		Pos
		Name string `json:"name"`
		Dims int    `json:"dims"`
	}
	if err := json.Unmarshal(raw, &ta); err != nil {
		return nil, err
	}
	return &TypeAnnotation{Pos: ta.Pos, Name: ta.Name, Dims: ta.Dims}, nil
}

func decodeStmt(raw json.RawMessage) (Stmt, error) {
	kind, err := kindOf(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "Block":
		b, err := decodeBlock(raw)
		return b, err

	case "VariableDeclaration":
		var w struct {
			Pos
			Identifier     string          `json:"identifier"`
			TypeAnnotation json.RawMessage `json:"typeAnnotation"`
			Initializer    json.RawMessage `json:"initializer"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		ta, err := decodeTypeAnnotation(w.TypeAnnotation)
		if err != nil {
			return nil, err
		}
		init, err := decodeOptExpr(w.Initializer)
		if err != nil {
			return nil, err
		}
		return &VariableDeclaration{Pos: w.Pos, Identifier: w.Identifier, TypeAnnotation: ta, Initializer: init}, nil

	case "ConstantDeclaration":
		var w struct {
			Pos
			Identifier     string          `json:"identifier"`
			TypeAnnotation json.RawMessage `json:"typeAnnotation"`
			Expression     json.RawMessage `json:"expression"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		ta, err := decodeTypeAnnotation(w.TypeAnnotation)
		if err != nil {
			return nil, err
		}
		expr, err := decodeExpr(w.Expression)
		if err != nil {
			return nil, err
		}
		return &ConstantDeclaration{Pos: w.Pos, Identifier: w.Identifier, TypeAnnotation: ta, Expression: expr}, nil

	case "FunctionDeclaration":
		var w struct {
			Pos
			Identifier     string            `json:"identifier"`
			Parameters     []json.RawMessage `json:"parameters"`
			ReturnType     json.RawMessage   `json:"returnType"`
			Body           json.RawMessage   `json:"body"`
			EnclosingClass string            `json:"enclosingClass"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		params := make([]*Parameter, 0, len(w.Parameters))
		for _, pr := range w.Parameters {
			var p struct {
				Pos
				Identifier     string          `json:"identifier"`
				TypeAnnotation json.RawMessage `json:"typeAnnotation"`
			}
			if err := json.Unmarshal(pr, &p); err != nil {
				return nil, err
			}
			ta, err := decodeTypeAnnotation(p.TypeAnnotation)
			if err != nil {
				return nil, err
			}
			params = append(params, &Parameter{Pos: p.Pos, Identifier: p.Identifier, TypeAnnotation: ta})
		}
		ret, err := decodeTypeAnnotation(w.ReturnType)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(w.Body)
		if err != nil {
			return nil, err
		}
		return &FunctionDeclaration{
			Pos: w.Pos, Identifier: w.Identifier, Parameters: params,
			ReturnType: ret, Body: body, EnclosingClass: w.EnclosingClass,
		}, nil

	case "ClassDeclaration":
		var w struct {
			Pos
			Identifier     string `json:"identifier"`
			BaseIdentifier string `json:"baseIdentifier"`
			Members        []struct {
				Variable json.RawMessage `json:"variable"`
				Constant json.RawMessage `json:"constant"`
				Function json.RawMessage `json:"function"`
			} `json:"members"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		members := make([]ClassMember, 0, len(w.Members))
		for _, m := range w.Members {
			var cm ClassMember
			if len(m.Variable) > 0 && string(m.Variable) != "null" {
				s, err := decodeStmt(m.Variable)
				if err != nil {
					return nil, err
				}
				cm.Variable = s.(*VariableDeclaration)
			}
			if len(m.Constant) > 0 && string(m.Constant) != "null" {
				s, err := decodeStmt(m.Constant)
				if err != nil {
					return nil, err
				}
				cm.Constant = s.(*ConstantDeclaration)
			}
			if len(m.Function) > 0 && string(m.Function) != "null" {
				s, err := decodeStmt(m.Function)
				if err != nil {
					return nil, err
				}
				cm.Function = s.(*FunctionDeclaration)
			}
			members = append(members, cm)
		}
		return &ClassDeclaration{Pos: w.Pos, Identifier: w.Identifier, BaseIdentifier: w.BaseIdentifier, Members: members}, nil

	case "If":
		var w struct {
			Pos
			Condition json.RawMessage `json:"condition"`
			Then      json.RawMessage `json:"then"`
			Else      json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Condition)
		if err != nil {
			return nil, err
		}
		then, err := decodeBlock(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeBlock(w.Else)
		if err != nil {
			return nil, err
		}
		return &If{Pos: w.Pos, Condition: cond, Then: then, Else: els}, nil

	case "While":
		var w struct {
			Pos
			Condition json.RawMessage `json:"condition"`
			Body      json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Condition)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(w.Body)
		if err != nil {
			return nil, err
		}
		return &While{Pos: w.Pos, Condition: cond, Body: body}, nil

	case "DoWhile":
		var w struct {
			Pos
			Body      json.RawMessage `json:"body"`
			Condition json.RawMessage `json:"condition"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		body, err := decodeBlock(w.Body)
		if err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Condition)
		if err != nil {
			return nil, err
		}
		return &DoWhile{Pos: w.Pos, Body: body, Condition: cond}, nil

	case "For":
		var w struct {
			Pos
			Init   json.RawMessage `json:"init"`
			Cond   json.RawMessage `json:"cond"`
			Update json.RawMessage `json:"update"`
			Body   json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		init, err := decodeOptStmt(w.Init)
		if err != nil {
			return nil, err
		}
		cond, err := decodeOptExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		update, err := decodeOptStmt(w.Update)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(w.Body)
		if err != nil {
			return nil, err
		}
		return &For{Pos: w.Pos, Init: init, Cond: cond, Update: update, Body: body}, nil

	case "Foreach":
		var w struct {
			Pos
			Identifier string          `json:"identifier"`
			Iterable   json.RawMessage `json:"iterable"`
			Body       json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		iter, err := decodeExpr(w.Iterable)
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(w.Body)
		if err != nil {
			return nil, err
		}
		return &Foreach{Pos: w.Pos, Identifier: w.Identifier, Iterable: iter, Body: body}, nil

	case "Switch":
		var w struct {
			Pos
			Selector json.RawMessage   `json:"selector"`
			Cases    []json.RawMessage `json:"cases"`
			Default  []json.RawMessage `json:"default"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		sel, err := decodeExpr(w.Selector)
		if err != nil {
			return nil, err
		}
		cases := make([]*SwitchCase, 0, len(w.Cases))
		for _, c := range w.Cases {
			var cw struct {
				Pos
				Expr       json.RawMessage   `json:"expr"`
				Statements []json.RawMessage `json:"statements"`
			}
			if err := json.Unmarshal(c, &cw); err != nil {
				return nil, err
			}
			e, err := decodeExpr(cw.Expr)
			if err != nil {
				return nil, err
			}
			stmts, err := decodeStmts(cw.Statements)
			if err != nil {
				return nil, err
			}
			cases = append(cases, &SwitchCase{Pos: cw.Pos, Expr: e, Statements: stmts})
		}
		var def []Stmt
		if w.Default != nil {
			def, err = decodeStmts(w.Default)
			if err != nil {
				return nil, err
			}
		}
		return &Switch{Pos: w.Pos, Selector: sel, Cases: cases, Default: def}, nil

	case "Break":
		var w struct{ Pos }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &Break{Pos: w.Pos}, nil

	case "Continue":
		var w struct{ Pos }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &Continue{Pos: w.Pos}, nil

	case "Return":
		var w struct {
			Pos
			Expression json.RawMessage `json:"expression"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		expr, err := decodeOptExpr(w.Expression)
		if err != nil {
			return nil, err
		}
		return &Return{Pos: w.Pos, Expression: expr}, nil

	case "Print":
		var w struct {
			Pos
			Expression json.RawMessage `json:"expression"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		expr, err := decodeExpr(w.Expression)
		if err != nil {
			return nil, err
		}
		return &Print{Pos: w.Pos, Expression: expr}, nil

	case "TryCatch":
		var w struct {
			Pos
			Body          json.RawMessage `json:"body"`
			CatchIdentier string          `json:"catchIdentifier"`
			Handler       json.RawMessage `json:"handler"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		body, err := decodeBlock(w.Body)
		if err != nil {
			return nil, err
		}
		handler, err := decodeBlock(w.Handler)
		if err != nil {
			return nil, err
		}
		return &TryCatch{Pos: w.Pos, Body: body, CatchIdentier: w.CatchIdentier, Handler: handler}, nil

	case "ExprStmt":
		var w struct {
			Pos
			Expression json.RawMessage `json:"expression"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		expr, err := decodeExpr(w.Expression)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Pos: w.Pos, Expression: expr}, nil

	default:
		return nil, fmt.Errorf("ast: unknown statement kind %q", kind)
	}
}

func decodeExpr(raw json.RawMessage) (Expr, error) {
	kind, err := kindOf(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "Assignment":
		var w struct {
			Pos
			Target json.RawMessage `json:"target"`
			Value  json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		target, err := decodeExpr(w.Target)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return &Assignment{Pos: w.Pos, Target: target, Value: value}, nil

	case "Ternary":
		var w struct {
			Pos
			Cond json.RawMessage `json:"cond"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeExpr(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := decodeExpr(w.Else)
		if err != nil {
			return nil, err
		}
		return &Ternary{Pos: w.Pos, Cond: cond, Then: then, Else: els}, nil

	case "BinaryOp":
		var w struct {
			Pos
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		left, err := decodeExpr(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(w.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Pos: w.Pos, Op: w.Op, Left: left, Right: right}, nil

	case "UnaryOp":
		var w struct {
			Pos
			Op      string          `json:"op"`
			Operand json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		operand, err := decodeExpr(w.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Pos: w.Pos, Op: w.Op, Operand: operand}, nil

	case "Identifier":
		var w struct {
			Pos
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &Identifier{Pos: w.Pos, Name: w.Name}, nil

	case "This":
		var w struct{ Pos }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &This{Pos: w.Pos}, nil

	case "IntegerLiteral":
		var w struct {
			Pos
			Value int64 `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &IntegerLiteral{Pos: w.Pos, Value: w.Value}, nil

	case "StringLiteral":
		var w struct {
			Pos
			Value string `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &StringLiteral{Pos: w.Pos, Value: w.Value}, nil

	case "BooleanLiteral":
		var w struct {
			Pos
			Value bool `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &BooleanLiteral{Pos: w.Pos, Value: w.Value}, nil

	case "NullLiteral":
		var w struct{ Pos }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &NullLiteral{Pos: w.Pos}, nil

	case "ArrayLiteral":
		var w struct {
			Pos
			Elements []json.RawMessage `json:"elements"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		elems, err := decodeExprs(w.Elements)
		if err != nil {
			return nil, err
		}
		return &ArrayLiteral{Pos: w.Pos, Elements: elems}, nil

	case "New":
		var w struct {
			Pos
			ClassName string            `json:"className"`
			Args      []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		args, err := decodeExprs(w.Args)
		if err != nil {
			return nil, err
		}
		return &New{Pos: w.Pos, ClassName: w.ClassName, Args: args}, nil

	case "Paren":
		var w struct {
			Pos
			Inner json.RawMessage `json:"inner"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		inner, err := decodeExpr(w.Inner)
		if err != nil {
			return nil, err
		}
		return &Paren{Pos: w.Pos, Inner: inner}, nil

	case "Call":
		var w struct {
			Pos
			Callee json.RawMessage   `json:"callee"`
			Args   []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		callee, err := decodeExpr(w.Callee)
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(w.Args)
		if err != nil {
			return nil, err
		}
		return &Call{Pos: w.Pos, Callee: callee, Args: args}, nil

	case "Index":
		var w struct {
			Pos
			Base  json.RawMessage `json:"base"`
			Index json.RawMessage `json:"index"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		base, err := decodeExpr(w.Base)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExpr(w.Index)
		if err != nil {
			return nil, err
		}
		return &Index{Pos: w.Pos, Base: base, Index: idx}, nil

	case "PropertyAccess":
		var w struct {
			Pos
			Base       json.RawMessage `json:"base"`
			Identifier string          `json:"identifier"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		base, err := decodeExpr(w.Base)
		if err != nil {
			return nil, err
		}
		return &PropertyAccess{Pos: w.Pos, Base: base, Identifier: w.Identifier}, nil

	default:
		return nil, fmt.Errorf("ast: unknown expression kind %q", kind)
	}
}
