package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/prolog-reader/internal/program"
)

func TestCountModes(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name     string
		opt      Option
		expected int
	}{
		{name: "None", expected: 0},
		{name: "Query", opt: Option{Query: "a."}, expected: 1},
		{name: "Files", opt: Option{Args: struct {
			Files []string `positional-arg-name:"FILE"`
		}{Files: []string{"a.pl"}}}, expected: 1},
		{name: "Listen", opt: Option{Listen: ":8080"}, expected: 1},
		{name: "ListenAndInteractive", opt: Option{Listen: ":8080", Interactive: true}, expected: 2},
	} {
		if got := countModes(tt.opt); got != tt.expected {
			t.Errorf("%s: expect %d but got %d", tt.name, tt.expected, got)
		}
	}
}

func TestDumpCanonical(t *testing.T) {
	t.Parallel()

	env, err := loadEnvironment("")
	if err != nil {
		t.Fatal(err)
	}
	result, err := program.NewSession(env.Operators, env.Flags).ConsultString(":- op(700, xfx, ===>).\na ===> b.\nc d.\n")
	if err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	if err := dumpCanonical(&out, &errOut, result); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("===>(a,b).\n", out.String()); diff != "" {
		t.Errorf("(-expected, +got):\n%s", diff)
	}
	if diff := cmp.Diff("SyntaxError: expected_operator_error: operator expected, got atom `d`\n    c d.\n", errOut.String()); diff != "" {
		t.Errorf("(-expected, +got):\n%s", diff)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reader.json")
	if err := os.WriteFile(path, []byte(`{"operators": [{"priority": 700, "specifier": "xfx", "names": ["===>"]}]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	env, err := loadEnvironment(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := env.Operators.LookupInfixPostfix("===>"); !ok {
		t.Error("===> is not defined")
	}
	if _, ok := env.Operators.LookupInfixPostfix("is"); !ok {
		t.Error("default operators are lost")
	}

	if _, err := loadEnvironment(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expect an error for a missing file")
	}
}

func TestRunQuery(t *testing.T) {
	if status := run([]string{"--canonical", "-q", "a :- b."}); status != 0 {
		t.Errorf("expect status 0 but got %d", status)
	}
	if status := run([]string{"--canonical", "-q", "a b."}); status != 1 {
		t.Errorf("expect status 1 but got %d", status)
	}
	if status := run([]string{"-q", "a.", "-i"}); status != 1 {
		t.Errorf("expect status 1 for two modes but got %d", status)
	}
}
