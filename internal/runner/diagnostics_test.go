package runner

import "testing"

const javacOutput = `DataStructures/ArrayList.java:14: error: ';' expected
        items[size] = value
                           ^
DataStructures/ArrayList.java:20: warning: [rawtypes] found raw type: List
        List items;
        ^
2 problems (1 error, 1 warning)
`

func TestParseDiagnostics(t *testing.T) {
	diags := ParseDiagnostics(javacOutput)
	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %v", len(diags), diags)
	}

	first := diags[0]
	if first.Path != "DataStructures/ArrayList.java" || first.Line != 14 ||
		first.Severity != "error" || first.Message != "';' expected" {
		t.Errorf("first diagnostic = %+v", first)
	}
	if diags[1].Severity != "warning" {
		t.Errorf("second diagnostic = %+v", diags[1])
	}
}

func TestParseDiagnostics_NoDiagnostics(t *testing.T) {
	if diags := ParseDiagnostics("all good\n"); len(diags) != 0 {
		t.Errorf("expected none, got %v", diags)
	}
}
