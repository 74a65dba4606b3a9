package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/klang/klangconfigs"
	"github.com/reusee/klang/klangvm"
	"github.com/reusee/klang/modes"
)

func testScope(t *testing.T, stdout, stderr *bytes.Buffer, defs ...any) Scope {
	return dscope.New(
		new(Module),
		modes.ForTest(t),
	).Fork(
		func() Stdout {
			return stdout
		},
		func() Stderr {
			return stderr
		},
		func() klangconfigs.ColorMode {
			return klangconfigs.ColorNever
		},
	).Fork(defs...)
}

func TestRunFile(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	testScope(t, stdout, stderr).Call(func(
		runFile RunFile,
	) {
		err := runFile(context.Background(), "test.klang", strings.NewReader(`
fn square(n) { return n * n; }
for i in 1..4 {
	let s = square(i);
	print("{i} {s}");
}
`))
		if err != nil {
			t.Fatal(err)
		}
		if got := stdout.String(); got != "1 1\n2 4\n3 9\n" {
			t.Fatalf("got %q", got)
		}
	})
}

func TestRunFileError(t *testing.T) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	testScope(t, stdout, stderr).Call(func(
		runFile RunFile,
		report Report,
	) {
		err := runFile(context.Background(), "test.klang", strings.NewReader(`print("before");
let a = 1 / 0;`))
		if !errors.Is(err, klangvm.DivisionByZero) {
			t.Fatalf("got %v", err)
		}
		if stdout.String() != "before\n" {
			t.Fatalf("got %q", stdout.String())
		}

		report(err)
		if got := stderr.String(); !strings.HasPrefix(got, "[DivisionByZero] test.klang at line 2: ") {
			t.Fatalf("got %q", got)
		}
	})
}

func TestReportNativeErrorOneLine(t *testing.T) {
	stderr := new(bytes.Buffer)
	testScope(t, new(bytes.Buffer), stderr).Call(func(
		runFile RunFile,
		report Report,
	) {
		err := runFile(context.Background(), "test.klang", strings.NewReader(`@readFile("/no/such/file");`))
		if !errors.Is(err, klangvm.NativeError) {
			t.Fatalf("got %v", err)
		}
		report(err)
		got := stderr.String()
		if !strings.HasPrefix(got, "[NativeError] test.klang at line 1: @readFile: ") {
			t.Fatalf("got %q", got)
		}
		if strings.Count(got, "\n") != 1 || !strings.Contains(got, "no such file") {
			t.Fatalf("want one line naming the cause, got %q", got)
		}
	})
}

func TestReportPlainError(t *testing.T) {
	stderr := new(bytes.Buffer)
	testScope(t, new(bytes.Buffer), stderr).Call(func(
		report Report,
	) {
		report(nil)
		if stderr.Len() != 0 {
			t.Fatalf("got %q", stderr.String())
		}
		report(os.ErrNotExist)
		if got := stderr.String(); got != "error: file does not exist\n" {
			t.Fatalf("got %q", got)
		}
	})
}

func TestDisassembleFile(t *testing.T) {
	stdout := new(bytes.Buffer)
	testScope(t, stdout, new(bytes.Buffer)).Call(func(
		disassembleFile DisassembleFile,
	) {
		err := disassembleFile("test.klang", strings.NewReader(`let a = "hi";`))
		if err != nil {
			t.Fatal(err)
		}
		want := "== test.klang ==\n" +
			"0000    1 Constant \"hi\"\n" +
			"0001    1 Store a\n" +
			"0002    1 EOF\n"
		if got := stdout.String(); got != want {
			t.Fatalf("got %q", got)
		}
	})
}

func TestPreload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prelude.klang")
	if err := os.WriteFile(path, []byte(`
let greeting = "hello";
fn twice(n) { return n * 2; }
`), 0644); err != nil {
		t.Fatal(err)
	}

	stdout := new(bytes.Buffer)
	testScope(t, stdout, new(bytes.Buffer), func() klangconfigs.Preload {
		return klangconfigs.Preload{path}
	}).Call(func(
		runFile RunFile,
	) {
		err := runFile(context.Background(), "test.klang", strings.NewReader(`
let n = twice(21);
print("{greeting} {n}");
`))
		if err != nil {
			t.Fatal(err)
		}
		if got := stdout.String(); got != "hello 42\n" {
			t.Fatalf("got %q", got)
		}
	})
}

func TestSandboxOption(t *testing.T) {
	testScope(t, new(bytes.Buffer), new(bytes.Buffer), func() klangconfigs.Sandbox {
		return true
	}).Call(func(
		runFile RunFile,
	) {
		err := runFile(context.Background(), "test.klang", strings.NewReader(`@read();`))
		if !errors.Is(err, klangvm.UnknownNativeFunction) {
			t.Fatalf("got %v", err)
		}
	})
}

func TestTraceOption(t *testing.T) {
	stdout := new(bytes.Buffer)
	testScope(t, stdout, new(bytes.Buffer), func() klangconfigs.Trace {
		return true
	}).Call(func(
		newVM NewVM,
		runFile RunFile,
	) {
		vm, err := newVM("test.klang", strings.NewReader(`print("x");`))
		if err != nil {
			t.Fatal(err)
		}
		if !vm.Trace {
			t.Fatal("trace should be on")
		}
		if err := runFile(context.Background(), "test.klang", strings.NewReader(`print("x");`)); err != nil {
			t.Fatal(err)
		}
		if stdout.String() != "x\n" {
			t.Fatalf("got %q", stdout.String())
		}
	})
}

func TestWithSource(t *testing.T) {
	err := withSource(filepath.Join(t.TempDir(), "missing.klang"), func(string, *os.File) error {
		t.Fatal("should not be called")
		return nil
	})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got %v", err)
	}
}
