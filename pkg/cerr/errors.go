// Package cerr defines the Compiscript semantic/syntax error taxonomy and the
// accumulate-don't-throw error collector shared by Pass 1, Pass 2 and the
// IDE collaborator.
package cerr

import "fmt"

// Code identifies an error class. Syntax errors from the parser collaborator
// use the single code SYN; semantic errors use the E0xx family from §4.4.
type Code string

const (
	SYN Code = "SYN"

	ERedeclared         Code = "E001"
	EUndeclared         Code = "E002"
	ETypeMismatch       Code = "E004"
	EConstAssign        Code = "E005"
	EInvalidTarget      Code = "E006"
	EHeterogeneousArray Code = "E011"
	EOperatorType       Code = "E010"
	EReturnType         Code = "E012"
	EReturnValueNeeded  Code = "E013"
	EReturnOutside      Code = "E014"
	ENotAllPathsReturn  Code = "E015"
	ECallNonFunction    Code = "E020"
	EArity              Code = "E021"
	EArgType            Code = "E022"
	ENonIntegerIndex    Code = "E030"
	EIndexNonArray      Code = "E031"
	EForeachNonArray    Code = "E032"
	EPropertyOnNonClass Code = "E033"
	EUnknownMember      Code = "E034"
	ENewUndeclaredClass Code = "E037"
	ENonBooleanCond     Code = "E040"
	EBreakOutside       Code = "E041"
	EContinueOutside    Code = "E042"
	EThisOutside        Code = "E043"
	EBaseNotFound       Code = "E051"
	ECyclicInheritance  Code = "E052"
	EBadOverride        Code = "E053"
	EFieldCollision     Code = "E054"
	ESwitchType         Code = "E060"
	EDuplicateCase      Code = "E061"
	ETernaryType        Code = "E070"

	// TACErr reports a fault raised unexpectedly during TAC generation; it
	// is the one layer allowed to escalate past plain accumulation (§7).
	TACErr Code = "TAC_ERR"
)

// Error is a single accumulated compiler diagnostic.
type Error struct {
	Line int
	Col  int
	Code Code
	Msg  string
}

func (e Error) Error() string {
	return fmt.Sprintf("[%s] (%d:%d) %s", e.Code, e.Line, e.Col, e.Msg)
}

// Collector accumulates diagnostics across a compilation; it never panics on
// report, matching §7's accumulate-not-throw contract. A Collector is owned
// by a single compilation instance and must not be shared across concurrent
// runs (§5).
type Collector struct {
	errors []Error
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Report appends a diagnostic.
func (c *Collector) Report(line, col int, code Code, format string, args ...any) {
	c.errors = append(c.errors, Error{Line: line, Col: col, Code: code, Msg: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any diagnostic has been recorded.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns the accumulated diagnostics in report order.
func (c *Collector) Errors() []Error {
	return c.errors
}

// Pretty renders every diagnostic as "[CODE] (line:col) message", one per
// line, matching the textual user-visible format from §7.
func (c *Collector) Pretty() string {
	out := ""
	for i, e := range c.errors {
		if i > 0 {
			out += "\n"
		}
		out += e.Error()
	}
	return out
}
