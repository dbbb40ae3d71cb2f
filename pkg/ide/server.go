// Package ide is the HTTP collaborator that lets an editor front-end submit
// a parsed Compiscript program and get back diagnostics, a scope dump, and
// optionally TAC text — the in-scope successor to
// original_source/ide/server.py's FastAPI `/analyze` endpoint.
//
// The historical server accepted raw source text and ran it through an
// ANTLR-generated lexer/parser before handing the tree to semantic
// analysis. spec.md §1 explicitly treats "the concrete grammar and parser"
// as an out-of-scope external collaborator, and no such parser exists in
// this module (pkg/ast is the typed-AST contract the parser is assumed to
// already have produced). So this collaborator's request body carries a
// JSON-serialized AST (pkg/ast.DecodeProgram's wire format) in place of raw
// source text — the same boundary the historical server drew, just with the
// parser living one collaborator further upstream rather than inside this
// process.
package ide

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/compiscript/ccc/pkg/ast"
	"github.com/compiscript/ccc/pkg/pipeline"
	"github.com/compiscript/ccc/pkg/symbols"
)

// CompileRequest is the POST /compile request body: a JSON-tagged AST tree
// under "program", keyed the way the historical server keyed its body under
// "source".
type CompileRequest struct {
	Program json.RawMessage `json:"program"`
}

// Diagnostic mirrors cerr.Error's shape for the wire, matching the
// historical server's `{"line","column","code","message"}` per-error
// object exactly (field names included) so an existing front-end expecting
// that shape needs no changes.
type Diagnostic struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CompileResponse is the POST /compile response body.
type CompileResponse struct {
	RequestID string             `json:"request_id"`
	OK        bool               `json:"ok"`
	Errors    []Diagnostic       `json:"errors"`
	Symbols   *symbols.ScopeDump `json:"symbols,omitempty"`
	TAC       string             `json:"tac,omitempty"`
}

// Handler serves POST /compile. The zero value is ready to use.
type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/compile", h.handleCompile)
}

// handleCompile decodes the request body's AST, runs it through
// pipeline.Run, and answers with status 422 when compilation reported any
// diagnostic, 500 on a recovered panic or a pipeline-internal fault (TAC/
// MIPS generation failing on a program Pass 2 already accepted should be
// unreachable; a panic here is treated as that unreachable case rather than
// a client error), and 200 otherwise — matching the historical server's own
// three-way status contract exactly.
func (h *Handler) handleCompile(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	defer func() {
		if rec := recover(); rec != nil {
			writeJSON(w, http.StatusInternalServerError, CompileResponse{
				RequestID: requestID,
				Errors:    []Diagnostic{{Code: "PANIC", Message: "internal error"}},
			})
		}
	}()

	var req CompileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, CompileResponse{
			RequestID: requestID,
			Errors:    []Diagnostic{{Code: "SYN", Message: "malformed request body: " + err.Error()}},
		})
		return
	}

	prog, err := ast.DecodeProgram(req.Program)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, CompileResponse{
			RequestID: requestID,
			Errors:    []Diagnostic{{Code: "SYN", Message: err.Error()}},
		})
		return
	}

	opts := pipeline.Options{
		Optimize: true,
		EmitTAC:  r.URL.Query().Get("tac") == "1",
	}
	result, err := pipeline.Run(prog, opts)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, CompileResponse{
			RequestID: requestID,
			Errors:    []Diagnostic{{Code: "TAC_ERR", Message: err.Error()}},
		})
		return
	}

	resp := CompileResponse{RequestID: requestID, TAC: result.TAC}
	for _, e := range result.Errs.Errors() {
		resp.Errors = append(resp.Errors, Diagnostic{Line: e.Line, Column: e.Col, Code: string(e.Code), Message: e.Msg})
	}
	resp.OK = len(resp.Errors) == 0
	if resp.OK {
		dump := symbols.Dump(result.Scope)
		resp.Symbols = &dump
	}

	status := http.StatusOK
	if !resp.OK {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
