package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/prolog-reader/internal/defaults"
	"github.com/karupanerura/prolog-reader/internal/server"
	"github.com/karupanerura/prolog-reader/internal/types"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	h, err := server.NewHTTPHandler(func() (server.Environment, error) {
		return server.Environment{Operators: defaults.DefaultOperatorTable, Flags: types.DefaultFlags()}, nil
	}, 0)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func serve(t *testing.T, h http.Handler, method, target, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var got map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
	}
	return rec.Code, got
}

func TestRead(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	status, got := serve(t, h, http.MethodPost, "/v1/read", ":- op(700, xfx, ===>).\na ===> b.\n")
	if status != http.StatusOK {
		t.Fatalf("unexpected status: %d", status)
	}

	clauses := got["clauses"].([]any)
	if len(clauses) != 1 {
		t.Fatalf("expect 1 clause but got %v", clauses)
	}
	if diff := cmp.Diff("===>(a,b)", clauses[0].(map[string]any)["canonical"]); diff != "" {
		t.Errorf("(-expected, +got):\n%s", diff)
	}

	// the operator defined by the previous request is gone
	status, got = serve(t, h, http.MethodPost, "/v1/read", "a ===> b.\n")
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: %d", status)
	}
	errs := got["errors"].([]any)
	if len(errs) != 1 {
		t.Fatalf("expect 1 error but got %v", errs)
	}
	if diff := cmp.Diff([]any{"SyntaxError", "expected_operator_error"}, errs[0].(map[string]any)["tags"]); diff != "" {
		t.Errorf("(-expected, +got):\n%s", diff)
	}
}

func TestTokens(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	status, got := serve(t, h, http.MethodPost, "/v1/tokens?comments=true", "% c\nfoo(X).")
	if status != http.StatusOK {
		t.Fatalf("unexpected status: %d", status)
	}

	expected := []any{
		map[string]any{"kind": "comment", "text": "% c", "line": 1.0, "column": 1.0},
		map[string]any{"kind": "atom", "text": "foo", "line": 2.0, "column": 1.0},
		map[string]any{"kind": "`(`", "text": "(", "line": 2.0, "column": 4.0},
		map[string]any{"kind": "variable", "text": "X", "line": 2.0, "column": 5.0},
		map[string]any{"kind": "`)`", "text": ")", "line": 2.0, "column": 6.0},
		map[string]any{"kind": "end of clause", "text": ".", "line": 2.0, "column": 7.0},
	}
	if diff := cmp.Diff(expected, got["tokens"]); diff != "" {
		t.Errorf("(-expected, +got):\n%s", diff)
	}

	status, got = serve(t, h, http.MethodPost, "/v1/tokens", "a \"open")
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: %d", status)
	}
	if diff := cmp.Diff(1, len(got["tokens"].([]any))); diff != "" {
		t.Errorf("(-expected, +got):\n%s", diff)
	}
}

func TestOperators(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	status, got := serve(t, h, http.MethodGet, "/v1/operators", "")
	if status != http.StatusOK {
		t.Fatalf("unexpected status: %d", status)
	}

	ops := got["operators"].([]any)
	if len(ops) == 0 {
		t.Fatal("no operators")
	}
	if diff := cmp.Diff(map[string]any{"name": "-->", "priority": 1200.0, "specifier": "xfx"}, ops[0]); diff != "" {
		t.Errorf("(-expected, +got):\n%s", diff)
	}
}

func TestRouting(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	for _, tt := range []struct {
		method, target string
		expected       int
	}{
		{method: http.MethodGet, target: "/v1/read", expected: http.StatusMethodNotAllowed},
		{method: http.MethodGet, target: "/v1/tokens", expected: http.StatusMethodNotAllowed},
		{method: http.MethodPost, target: "/v1/operators", expected: http.StatusMethodNotAllowed},
		{method: http.MethodGet, target: "/v1/unknown", expected: http.StatusNotFound},
	} {
		if status, _ := serve(t, h, tt.method, tt.target, ""); status != tt.expected {
			t.Errorf("%s %s: expect %d but got %d", tt.method, tt.target, tt.expected, status)
		}
	}
}

func TestReload(t *testing.T) {
	t.Parallel()

	var loads int32
	h, err := server.NewHTTPHandler(func() (server.Environment, error) {
		ops := defaults.NewSessionOperatorTable()
		if atomic.AddInt32(&loads, 1) > 1 {
			if err := ops.Define(700, types.XFX, "===>"); err != nil {
				return server.Environment{}, err
			}
		}
		return server.Environment{Operators: ops, Flags: types.DefaultFlags()}, nil
	}, 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		status, _ := serve(t, h, http.MethodPost, "/v1/read", "a ===> b.\n")
		if status == http.StatusOK {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("the reloaded environment was never used")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
