package driver

import (
	"bytes"
	"errors"
	"testing"
)

func TestDiagnoseEachStage(t *testing.T) {
	cases := []struct {
		source string
		kind   DiagnosticKind
		want   string
	}{
		{"print @;", KindLex, "lex error: Unexpected character '@'.\nline 1"},
		{"print 1", KindSyntax, "parse error at end: Expect ';' after value.\nline 1"},
		{"print (1;", KindSyntax, "parse error at ';': Expect ')' after expression.\nline 1"},
		{"fun f() {}\nthis;", KindResolve, "resolve error at 'this': Can't use 'this' outside of a class.\nline 2"},
		{"\n\nprint 1 / 0;", KindRuntime, "runtime error at '/': Division by zero.\nline 3"},
	}
	for _, tc := range cases {
		err := RunSource(tc.source, Options{Stdout: &bytes.Buffer{}})
		if err == nil {
			t.Fatalf("%q: expected error", tc.source)
		}
		diag := Diagnose(err)
		if diag.Kind != tc.kind {
			t.Fatalf("%q: kind = %s, want %s", tc.source, diag.Kind, tc.kind)
		}
		if got := DescribeDiagnostic(diag); got != tc.want {
			t.Fatalf("%q: rendered %q, want %q", tc.source, got, tc.want)
		}
		if got := err.Error(); got != tc.want {
			t.Fatalf("%q: Error() = %q, want %q", tc.source, got, tc.want)
		}
	}
}

func TestDiagnoseHostError(t *testing.T) {
	diag := Diagnose(errors.New("read main.valkyrie: no such file"))
	if diag.Kind != KindHost {
		t.Fatalf("kind = %s, want host", diag.Kind)
	}
	if got := DescribeDiagnostic(diag); got != "read main.valkyrie: no such file" {
		t.Fatalf("rendered %q", got)
	}
	if err := withPath(errors.New("boom"), "x.valkyrie"); err.Error() != "boom" {
		t.Fatalf("withPath should leave host errors alone, got %q", err)
	}
	if withPath(nil, "x.valkyrie") != nil {
		t.Fatalf("withPath(nil) should be nil")
	}
}

func TestDescribeDiagnosticLocation(t *testing.T) {
	diag := Diagnostic{Kind: KindResolve, Message: "Already a variable with this name in this scope.", Lexeme: "a", Line: 4, Path: "saga.valkyrie"}
	want := "resolve error at 'a': Already a variable with this name in this scope.\nsaga.valkyrie: line 4"
	if got := DescribeDiagnostic(diag); got != want {
		t.Fatalf("rendered %q, want %q", got, want)
	}
	diag = Diagnostic{Kind: KindRuntime, Message: "Stack overflow."}
	if got := DescribeDiagnostic(diag); got != "runtime error: Stack overflow." {
		t.Fatalf("rendered %q", got)
	}
}
