package ide

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postCompile(t *testing.T, programJSON string, query string) (*httptest.ResponseRecorder, CompileResponse) {
	t.Helper()
	body, err := json.Marshal(CompileRequest{Program: json.RawMessage(programJSON)})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	url := "/compile"
	if query != "" {
		url += "?" + query
	}
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(string(body)))
	rec := httptest.NewRecorder()

	NewHandler().handleCompile(rec, req)

	var resp CompileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v (body: %s)", err, rec.Body.String())
	}
	return rec, resp
}

const validProgram = `{
  "kind": "Program",
  "statements": [
    {
      "kind": "VariableDeclaration",
      "identifier": "x",
      "typeAnnotation": {"kind": "TypeAnnotation", "name": "integer", "dims": 0},
      "initializer": {"kind": "IntegerLiteral", "value": 1}
    },
    {
      "kind": "Print",
      "expression": {"kind": "Identifier", "name": "x"}
    }
  ]
}`

func TestHandleCompile_ValidProgramReturns200(t *testing.T) {
	rec, resp := postCompile(t, validProgram, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if !resp.OK {
		t.Fatalf("expected ok=true, got errors: %+v", resp.Errors)
	}
	if resp.RequestID == "" {
		t.Error("expected a non-empty request id")
	}
	if resp.Symbols == nil {
		t.Error("expected a symbols dump on success")
	}
	if resp.TAC != "" {
		t.Error("expected no TAC without ?tac=1")
	}
}

func TestHandleCompile_TacFlagIncludesTAC(t *testing.T) {
	_, resp := postCompile(t, validProgram, "tac=1")
	if resp.TAC == "" {
		t.Error("expected ?tac=1 to populate the tac field")
	}
}

const undeclaredProgram = `{
  "kind": "Program",
  "statements": [
    {
      "kind": "ExprStmt",
      "expression": {
        "kind": "Assignment",
        "target": {"kind": "Identifier", "name": "nope"},
        "value": {"kind": "IntegerLiteral", "value": 1}
      }
    }
  ]
}`

func TestHandleCompile_SemanticErrorReturns422(t *testing.T) {
	rec, resp := postCompile(t, undeclaredProgram, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if resp.OK {
		t.Fatal("expected ok=false")
	}
	if len(resp.Errors) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
	if resp.Errors[0].Code != "E002" {
		t.Errorf("expected an E002 undeclared-identifier diagnostic, got %+v", resp.Errors[0])
	}
	if resp.Symbols != nil {
		t.Error("expected no symbols dump when compilation failed")
	}
}

func TestHandleCompile_MalformedBodyReturns422(t *testing.T) {
	rec, resp := postCompile(t, `{"kind": "NotAProgram"}`, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if resp.OK {
		t.Fatal("expected ok=false for an unrecognized root node")
	}
}
