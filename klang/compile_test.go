package klang

import (
	"errors"
	"strings"
	"testing"

	"github.com/reusee/klang/klangvm"
)

func compile(t *testing.T, src string) *klangvm.Chunk {
	t.Helper()
	chunk, err := CompileString("test.klang", src)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunk.Code) != len(chunk.Lines) {
		t.Fatalf("%d instructions, %d lines", len(chunk.Code), len(chunk.Lines))
	}
	eofs := 0
	for _, inst := range chunk.Code {
		if inst.Op == klangvm.OpEOF {
			eofs++
		}
	}
	if eofs != 1 || chunk.Code[len(chunk.Code)-1].Op != klangvm.OpEOF {
		t.Fatalf("chunk must end with exactly one EOF")
	}
	return chunk
}

func ops(chunk *klangvm.Chunk) string {
	var parts []string
	for _, inst := range chunk.Code {
		parts = append(parts, inst.String())
	}
	return strings.Join(parts, "; ")
}

func TestCompileWhile(t *testing.T) {
	chunk := compile(t, `
let i = 0;
while i < 3 {
	i = i + 1;
}
`)
	want := "Constant 0; Store 0; " +
		"Load 0; Constant 1; Less; Not; JumpIf +7 pop; " +
		"Scope; Load 0; Constant 2; Add; Store 0; EndScope; " +
		"Jump -12; EOF"
	if got := ops(chunk); got != want {
		t.Fatalf("got %s", got)
	}
}

func TestCompileFor(t *testing.T) {
	chunk := compile(t, `for x in [1] { }`)
	want := "Constant 0; List 1; " +
		"For; Scope; Store 0; JumpIf +2 pop; EndScope; Jump -6; EndScope; EOF"
	if got := ops(chunk); got != want {
		t.Fatalf("got %s", got)
	}
}

func TestCompileIf(t *testing.T) {
	chunk := compile(t, `if true { } else { }`)
	want := "Constant 0; Not; JumpIf +2; Scope; EndScope; " +
		"Not; JumpIf +2 pop; Scope; EndScope; EOF"
	if got := ops(chunk); got != want {
		t.Fatalf("got %s", got)
	}

	chunk = compile(t, `if true { }`)
	want = "Constant 0; Not; JumpIf +2 pop; Scope; EndScope; EOF"
	if got := ops(chunk); got != want {
		t.Fatalf("got %s", got)
	}
}

func TestCompileFn(t *testing.T) {
	chunk := compile(t, `
fn add(a, b) {
	return a + b;
}
add(1, 2);
`)
	want := "Fn; Store 0; Store 1; Scope; Load 0; Load 1; Add; Return value; EndScope; Store 2; " +
		"Constant 0; Constant 1; Call 2; EOF"
	if got := ops(chunk); got != want {
		t.Fatalf("got %s", got)
	}
	if strings.Join(chunk.Names, ",") != "a,b,add" {
		t.Fatalf("got %v", chunk.Names)
	}
}

func TestCompilePrint(t *testing.T) {
	chunk := compile(t, `print("{a}+{b}");`)
	want := "Load 0; Load 1; Constant 0; Print; EOF"
	if got := ops(chunk); got != want {
		t.Fatalf("got %s", got)
	}
	if s := chunk.Constants[0]; s != klangvm.Str("{}+{}") {
		t.Fatalf("got %v", s)
	}
}

func TestCompileExprs(t *testing.T) {
	chunk := compile(t, `
let a = 1;
let b = a;
let c = a + 1;
let r = 0..10..2;
let n = @sqrt(a);
let s;
`)
	want := "Constant 0; Store 0; " +
		"Load 0; Store 1; " +
		"Load 0; Constant 0; Add; Store 2; " +
		"Constant 1; Constant 2; Constant 3; Range step; Store 3; " +
		"Load 0; NativeCall 4 1; Store 5; " +
		"Constant 4; Store 6; EOF"
	if got := ops(chunk); got != want {
		t.Fatalf("got %s", got)
	}
	if len(chunk.Constants) != 5 {
		t.Fatalf("got %v", chunk.Constants)
	}
}

func TestCompileLines(t *testing.T) {
	chunk := compile(t, `let a = 1;

let b = 2;`)
	if chunk.Lines[0] != 1 || chunk.Lines[2] != 3 {
		t.Fatalf("got %v", chunk.Lines)
	}
}

func TestCompileErrors(t *testing.T) {
	for src, kind := range map[string]error{
		`let a = 1 & 2;`:   klangvm.ScannerError,
		`let a = "abc`:     klangvm.ScannerError,
		`let a = 1.;`:      klangvm.ScannerError,
		`print("{}");`:     klangvm.ScannerError,
		`let a = #;`:       klangvm.ScannerError,
		`let = 5;`:         klangvm.ParserError,
		`1 = 2;`:           klangvm.ParserError,
		`print(a);`:        klangvm.ParserError,
		`let s = "{a}";`:   klangvm.ParserError,
		`fn f( { }`:        klangvm.ParserError,
		`let a = 1`:        klangvm.ParserError,
		`print("{a +}");`:  klangvm.ParserError,
		`print("{a b}");`:  klangvm.ParserError,
		`if true { let a;`: klangvm.ParserError,
	} {
		_, err := CompileString("test.klang", src)
		if !errors.Is(err, kind) {
			t.Errorf("%s: got %v, want %v", src, err, kind)
		}
	}
}
