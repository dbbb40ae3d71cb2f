// Package ast defines the typed AST node interfaces Compiscript's backend
// consumes (§6, "Input — typed AST"). The grammar and parser that build
// these nodes are out of scope (§1): this package is the collaborator
// contract, not a parser. Each node is tagged with a marker method the way
// the teacher tags Mach instructions and FunRefs (pkg/mach.Instruction,
// pkg/mach.FunRef) instead of using duck-typed attribute probing, per the
// REDESIGN FLAGS in spec.md §9.
package ast

// Pos carries source position, embedded into every node.
type Pos struct {
	Line int
	Col  int
}

// Position returns the node's line and column.
func (p Pos) Position() (int, int) { return p.Line, p.Col }

// Node is implemented by every AST node.
type Node interface {
	implNode()
	Position() (int, int)
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	implStmt()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	implExpr()
}

// TypeAnnotation is a parsed type reference: a base name plus a dimension
// count of trailing "[]" suffixes (consumed by types.FromText).
type TypeAnnotation struct {
	Pos
	Name string
	Dims int
}

func (*TypeAnnotation) implNode() {}

// --- Top level -------------------------------------------------------

// Program is the root node: an ordered list of top-level statements
// (variable/const/function/class declarations and free statements).
type Program struct {
	Pos
	Statements []Stmt
}

func (*Program) implNode() {}

// Block is `{ ... }`: an ordered list of statements introducing a new
// lexical scope.
type Block struct {
	Pos
	Statements []Stmt
}

func (*Block) implNode() {}
func (*Block) implStmt() {}

// --- Declarations ------------------------------------------------------

// VariableDeclaration is `let x[: T] [= expr];`.
type VariableDeclaration struct {
	Pos
	Identifier     string
	TypeAnnotation *TypeAnnotation // nil if omitted (type inferred from Initializer)
	Initializer    Expr            // nil if omitted
}

func (*VariableDeclaration) implNode() {}
func (*VariableDeclaration) implStmt() {}

// ConstantDeclaration is `const x[: T] = expr;`.
type ConstantDeclaration struct {
	Pos
	Identifier     string
	TypeAnnotation *TypeAnnotation
	Expression     Expr
}

func (*ConstantDeclaration) implNode() {}
func (*ConstantDeclaration) implStmt() {}

// Parameter is one function/method parameter.
type Parameter struct {
	Pos
	Identifier     string
	TypeAnnotation *TypeAnnotation
}

func (*Parameter) implNode() {}

// FunctionDeclaration is `function f(params) [: T] { body }`.
type FunctionDeclaration struct {
	Pos
	Identifier     string
	Parameters     []*Parameter
	ReturnType     *TypeAnnotation // nil means implicit null return type
	Body           *Block
	EnclosingClass string // "" if a free function; set by the collector for methods
}

func (*FunctionDeclaration) implNode() {}
func (*FunctionDeclaration) implStmt() {}

// ClassMember wraps exactly one of its three fields, mirroring the
// collaborator contract's `classMember.variableDeclaration |
// .constantDeclaration | .functionDeclaration` union.
type ClassMember struct {
	Variable *VariableDeclaration
	Constant *ConstantDeclaration
	Function *FunctionDeclaration
}

// ClassDeclaration is `class C [: Base] { members }`.
type ClassDeclaration struct {
	Pos
	Identifier     string
	BaseIdentifier string // "" if no base class
	Members        []ClassMember
}

func (*ClassDeclaration) implNode() {}
func (*ClassDeclaration) implStmt() {}

// --- Control flow --------------------------------------------------------

// If is `if (cond) thenBlock [else elseBlock]`.
type If struct {
	Pos
	Condition Expr
	Then      *Block
	Else      *Block // nil if no else branch; may itself be a single-statement block wrapping an `else if`
}

func (*If) implNode() {}
func (*If) implStmt() {}

// While is `while (cond) body`.
type While struct {
	Pos
	Condition Expr
	Body      *Block
}

func (*While) implNode() {}
func (*While) implStmt() {}

// DoWhile is `do body while (cond);`.
type DoWhile struct {
	Pos
	Body      *Block
	Condition Expr
}

func (*DoWhile) implNode() {}
func (*DoWhile) implStmt() {}

// For is `for (init; cond; update) body`; Init/Cond/Update may each be nil.
type For struct {
	Pos
	Init   Stmt
	Cond   Expr
	Update Stmt
	Body   *Block
}

func (*For) implNode() {}
func (*For) implStmt() {}

// Foreach is `foreach (v in iterable) body`.
type Foreach struct {
	Pos
	Identifier string
	Iterable   Expr
	Body       *Block
}

func (*Foreach) implNode() {}
func (*Foreach) implStmt() {}

// SwitchCase is one `case expr: statements`.
type SwitchCase struct {
	Pos
	Expr       Expr
	Statements []Stmt
}

func (*SwitchCase) implNode() {}

// Switch is `switch (selector) { cases [default: stmts] }`.
type Switch struct {
	Pos
	Selector Expr
	Cases    []*SwitchCase
	Default  []Stmt // nil if no default clause
}

func (*Switch) implNode() {}
func (*Switch) implStmt() {}

// Break is `break;`.
type Break struct{ Pos }

func (*Break) implNode() {}
func (*Break) implStmt() {}

// Continue is `continue;`.
type Continue struct{ Pos }

func (*Continue) implNode() {}
func (*Continue) implStmt() {}

// Return is `return [expr];`.
type Return struct {
	Pos
	Expression Expr // nil for a bare `return;`
}

func (*Return) implNode() {}
func (*Return) implStmt() {}

// Print is `print(expr);`.
type Print struct {
	Pos
	Expression Expr
}

func (*Print) implNode() {}
func (*Print) implStmt() {}

// TryCatch is `try { body } catch (e) { handler }`. The spec lowers this to
// straight-line code (§1 Non-goals: no exception machinery): Handler is
// unreachable at runtime and exists only so Pass 2 can type-check it.
type TryCatch struct {
	Pos
	Body          *Block
	CatchIdentier string
	Handler       *Block
}

func (*TryCatch) implNode() {}
func (*TryCatch) implStmt() {}

// ExprStmt is a bare expression used as a statement, e.g. `f();` or `x = 1;`.
type ExprStmt struct {
	Pos
	Expression Expr
}

func (*ExprStmt) implNode() {}
func (*ExprStmt) implStmt() {}

// --- Expressions ----------------------------------------------------------

// Assignment is `target = value` or `target.prop = value` or
// `target[idx] = value`; Target is any Expr that is a valid assignment
// target (identifier, property access, or index access).
type Assignment struct {
	Pos
	Target Expr
	Value  Expr
}

func (*Assignment) implNode() {}
func (*Assignment) implExpr() {}

// Ternary is `cond ? thenExpr : elseExpr`.
type Ternary struct {
	Pos
	Cond Expr
	Then Expr
	Else Expr
}

func (*Ternary) implNode() {}
func (*Ternary) implExpr() {}

// BinaryOp is one of: && || == != < <= > >= + - * / %.
type BinaryOp struct {
	Pos
	Op    string
	Left  Expr
	Right Expr
}

func (*BinaryOp) implNode() {}
func (*BinaryOp) implExpr() {}

// UnaryOp is one of: - (negation), ! (logical not).
type UnaryOp struct {
	Pos
	Op      string
	Operand Expr
}

func (*UnaryOp) implNode() {}
func (*UnaryOp) implExpr() {}

// Identifier is a bare name reference.
type Identifier struct {
	Pos
	Name string
}

func (*Identifier) implNode() {}
func (*Identifier) implExpr() {}

// This is the `this` keyword, valid only inside a method body.
type This struct{ Pos }

func (*This) implNode() {}
func (*This) implExpr() {}

// IntegerLiteral is an integer constant.
type IntegerLiteral struct {
	Pos
	Value int64
}

func (*IntegerLiteral) implNode() {}
func (*IntegerLiteral) implExpr() {}

// StringLiteral is a string constant.
type StringLiteral struct {
	Pos
	Value string
}

func (*StringLiteral) implNode() {}
func (*StringLiteral) implExpr() {}

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	Pos
	Value bool
}

func (*BooleanLiteral) implNode() {}
func (*BooleanLiteral) implExpr() {}

// NullLiteral is `null`.
type NullLiteral struct{ Pos }

func (*NullLiteral) implNode() {}
func (*NullLiteral) implExpr() {}

// ArrayLiteral is `[e1, e2, ...]`.
type ArrayLiteral struct {
	Pos
	Elements []Expr
}

func (*ArrayLiteral) implNode() {}
func (*ArrayLiteral) implExpr() {}

// New is `new C(args)`.
type New struct {
	Pos
	ClassName string
	Args      []Expr
}

func (*New) implNode() {}
func (*New) implExpr() {}

// Paren is a parenthesized sub-expression; kept as a node (rather than
// unwrapped by the parser) so position information for the parenthesized
// form is preserved for diagnostics.
type Paren struct {
	Pos
	Inner Expr
}

func (*Paren) implNode() {}
func (*Paren) implExpr() {}

// Call is a call suffix applied to a callee expression: `callee(args)`.
type Call struct {
	Pos
	Callee Expr
	Args   []Expr
}

func (*Call) implNode() {}
func (*Call) implExpr() {}

// Index is an index suffix: `base[index]`.
type Index struct {
	Pos
	Base  Expr
	Index Expr
}

func (*Index) implNode() {}
func (*Index) implExpr() {}

// PropertyAccess is a property/method suffix: `base.identifier`.
type PropertyAccess struct {
	Pos
	Base       Expr
	Identifier string
}

func (*PropertyAccess) implNode() {}
func (*PropertyAccess) implExpr() {}
