package klang

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/reusee/klang/klangvm"
)

func run(t *testing.T, src string) (*klangvm.VM, string) {
	t.Helper()
	vm, out, err := tryRun(t, src)
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return vm, out
}

func tryRun(t *testing.T, src string) (*klangvm.VM, string, error) {
	t.Helper()
	vm, err := NewVM("test.klang", strings.NewReader(src))
	if err != nil {
		return nil, "", err
	}
	buf := new(bytes.Buffer)
	vm.Stdout = buf
	err = vm.Exec()
	return vm, buf.String(), err
}

func check(t *testing.T, vm *klangvm.VM, name string, want klangvm.Value) {
	t.Helper()
	if val, ok := vm.Get(name); !ok {
		t.Errorf("%s not found", name)
	} else if val.Kind() != want.Kind() || klangvm.Format(val) != klangvm.Format(want) {
		t.Errorf("%s = %s (%s), want %s (%s)", name, klangvm.Format(val), val.Kind(), klangvm.Format(want), want.Kind())
	}
}

func TestOps(t *testing.T) {
	vm, _ := run(t, `
let x = 5;
let y = 3;
let sub = y - x;
let div = 10 / 4;
let mod = 10 % 4;
let mul = 2 * 3;
let chain = 10 - 3 - 2;
let grouped = (10 - 3) - 2;
let eq = 2 == true;
let ne = 2 != true;
let streq = "a" == "a";
let neg = -x;
let not = !(1 < 2);
let and = true && false;
let or = false || true;
let ge = 3 >= 3;
`)
	check(t, vm, "sub", klangvm.Number(-2))
	check(t, vm, "div", klangvm.Number(2.5))
	check(t, vm, "mod", klangvm.Number(2))
	check(t, vm, "mul", klangvm.Number(6))
	check(t, vm, "chain", klangvm.Number(9))
	check(t, vm, "grouped", klangvm.Number(5))
	check(t, vm, "eq", klangvm.Bool(false))
	check(t, vm, "ne", klangvm.Bool(true))
	check(t, vm, "streq", klangvm.Bool(true))
	check(t, vm, "neg", klangvm.Number(-5))
	check(t, vm, "not", klangvm.Bool(false))
	check(t, vm, "and", klangvm.Bool(false))
	check(t, vm, "or", klangvm.Bool(true))
	check(t, vm, "ge", klangvm.Bool(true))
}

func TestScopes(t *testing.T) {
	vm, _ := run(t, `
let a = 1;
{
	a = 2;
	let b = 3;
}
let c;
`)
	check(t, vm, "a", klangvm.Number(2))
	check(t, vm, "c", klangvm.None)
	if _, ok := vm.Get("b"); ok {
		t.Fatal("b should be gone with its scope")
	}

	_, _, err := tryRun(t, `
{
	let b = 3;
}
let c = b;
`)
	if !errors.Is(err, klangvm.UndefinedVariable) {
		t.Fatalf("got %v", err)
	}
}

func TestIfElse(t *testing.T) {
	vm, _ := run(t, `
let x = 0;
if 1 > 2 { x = 1; } else { x = 2; }
let y = 0;
if 1 < 2 { y = 1; } else { y = 2; }
let z = 0;
if false { z = 1; } else if true { z = 3; }
let w = 0;
if true { w = 4; }
`)
	check(t, vm, "x", klangvm.Number(2))
	check(t, vm, "y", klangvm.Number(1))
	check(t, vm, "z", klangvm.Number(3))
	check(t, vm, "w", klangvm.Number(4))
	if n := len(vm.Globals().Stack); n != 0 {
		t.Fatalf("%d values left on the stack", n)
	}
}

func TestWhile(t *testing.T) {
	vm, _ := run(t, `
let n = 0;
let sum = 0;
while n < 5 {
	n = n + 1;
	sum = sum + n;
}
`)
	check(t, vm, "n", klangvm.Number(5))
	check(t, vm, "sum", klangvm.Number(15))
}

func TestFor(t *testing.T) {
	vm, _ := run(t, `
let sum = 0;
for i in 0..5 {
	sum = sum + i;
}
let evens = 0;
for i in 0..10..2 {
	evens = evens + i;
}
let count = 0;
for i in 0..3 {
	for j in 0..3 {
		count = count + 1;
	}
}
let items = 0;
for x in [1, 2, 3] {
	items = items + x;
}
let none = 0;
for x in 5..0 {
	none = 1;
}
`)
	check(t, vm, "sum", klangvm.Number(10))
	check(t, vm, "evens", klangvm.Number(20))
	check(t, vm, "count", klangvm.Number(9))
	check(t, vm, "items", klangvm.Number(6))
	check(t, vm, "none", klangvm.Number(0))
	if n := len(vm.Scopes); n != 1 {
		t.Fatalf("%d scopes open", n)
	}
	if n := len(vm.Globals().Stack); n != 0 {
		t.Fatalf("%d values left on the stack", n)
	}
}

func TestForOverNonList(t *testing.T) {
	_, _, err := tryRun(t, `
for x in 5 {
}
`)
	if !errors.Is(err, klangvm.TypeMismatch) {
		t.Fatalf("got %v", err)
	}
}

func TestRangeTooLarge(t *testing.T) {
	for _, src := range []string{
		`let n = 0; for i in 0..@pow(10, 300) { n = n + 1; } print("{n}");`,
		`let r = 0..@pow(10, 15);`,
	} {
		_, out, err := tryRun(t, src)
		if !errors.Is(err, klangvm.TypeMismatch) {
			t.Fatalf("%s: got %v", src, err)
		}
		if out != "" {
			t.Fatalf("%s: printed %q", src, out)
		}
		if !strings.HasPrefix(err.Error(), "[TypeMismatch] test.klang at line 1: ") {
			t.Fatalf("got %v", err)
		}
	}
}

func TestFunctions(t *testing.T) {
	vm, _ := run(t, `
fn add(a, b) {
	return a + b;
}
fn sub(a, b) {
	return a - b;
}
fn noop() {
}
fn fib(n) {
	if n < 2 {
		return n;
	}
	return fib(n - 1) + fib(n - 2);
}
fn find(target) {
	for i in 0..10 {
		if i == target {
			return i * 10;
		}
	}
	return -1;
}
let r = add(2, 3);
let s = sub(7, 2);
let v = noop();
let f = fib(10);
let found = find(4);
let missing = find(20);
let looped = 0;
for i in 0..3 {
	looped = add(looped, i);
}
`)
	check(t, vm, "r", klangvm.Number(5))
	check(t, vm, "s", klangvm.Number(5))
	check(t, vm, "v", klangvm.None)
	check(t, vm, "f", klangvm.Number(55))
	check(t, vm, "found", klangvm.Number(40))
	check(t, vm, "missing", klangvm.Number(-1))
	check(t, vm, "looped", klangvm.Number(3))
	if len(vm.Frames) != 0 || len(vm.Scopes) != 1 {
		t.Fatalf("frames %d scopes %d", len(vm.Frames), len(vm.Scopes))
	}
}

func TestRedefineFunction(t *testing.T) {
	vm, _ := run(t, `
fn f() { return 1; }
let a = f();
fn f() { return 2; }
let b = f();
`)
	check(t, vm, "a", klangvm.Number(1))
	check(t, vm, "b", klangvm.Number(2))
}

func TestFunctionErrors(t *testing.T) {
	_, _, err := tryRun(t, `nope();`)
	if !errors.Is(err, klangvm.UnknownFunction) {
		t.Fatalf("got %v", err)
	}

	_, _, err = tryRun(t, `
fn add(a, b) { return a + b; }
add(1);
`)
	if !errors.Is(err, klangvm.ArityMismatch) {
		t.Fatalf("got %v", err)
	}
}

func TestTopLevelReturn(t *testing.T) {
	vm, _ := run(t, `
let a = 1;
return;
let b = 2;
`)
	check(t, vm, "a", klangvm.Number(1))
	if _, ok := vm.Get("b"); ok {
		t.Fatal("should stop at return")
	}
}

func TestPrint(t *testing.T) {
	_, out := run(t, `
let a = 2;
let b = 3;
print("{a}+{b}={a + b}");
print("hello");
print("{[1, 2]} {true} {1.5} {-0.25}");
let n;
print("n is {n}");
fn twice(x) { return x * 2; }
print("twice: {twice(21)}");
print("
multi");
`)
	want := "2+3=5\n" +
		"hello\n" +
		"[1,2] true 1.5 -0.25\n" +
		"n is None\n" +
		"twice: 42\n" +
		"\nmulti\n"
	if out != want {
		t.Fatalf("got %q", out)
	}
}

func TestNatives(t *testing.T) {
	vm, _ := run(t, `
let s = @sqrt(16);
let m = @max(3, 7);
let p = @pow(2, 10);
let g = @get([1, 2, 3], 1);
let l = @len([1, 2, 3]);
let r = @round(2.5);
let pi = @pi();
let rnd = @range(1, 2);
`)
	check(t, vm, "s", klangvm.Number(4))
	check(t, vm, "m", klangvm.Number(7))
	check(t, vm, "p", klangvm.Number(1024))
	check(t, vm, "g", klangvm.Number(2))
	check(t, vm, "l", klangvm.Number(3))
	check(t, vm, "r", klangvm.Number(3))
	check(t, vm, "pi", klangvm.Number(3.141592653589793))
	rnd, _ := vm.Get("rnd")
	if n := rnd.(klangvm.Number); n < 1 || n >= 2 {
		t.Fatalf("got %v", n)
	}
}

func TestNativeErrors(t *testing.T) {
	for src, kind := range map[string]error{
		`@sqrt(1, 2);`:       klangvm.NativeArityMismatch,
		`@nope();`:           klangvm.UnknownNativeFunction,
		`@get([1], 5);`:      klangvm.NativeError,
		`@sqrt("x");`:        klangvm.NativeError,
		`let x = 1 / 0;`:     klangvm.DivisionByZero,
		`let x = 1 % 0;`:     klangvm.DivisionByZero,
		`let x = -true;`:     klangvm.TypeMismatch,
		`let x = !1;`:        klangvm.TypeMismatch,
		`let x = 1 + "a";`:   klangvm.TypeMismatch,
		`let x = 1 && true;`: klangvm.TypeMismatch,
	} {
		_, _, err := tryRun(t, src)
		if !errors.Is(err, kind) {
			t.Errorf("%s: got %v, want %v", src, err, kind)
		}
	}
}

func TestSandbox(t *testing.T) {
	vm, err := NewVM("test.klang", strings.NewReader(`@readFile("/etc/hostname");`))
	if err != nil {
		t.Fatal(err)
	}
	Sandbox(vm)
	if err := vm.Exec(); !errors.Is(err, klangvm.UnknownNativeFunction) {
		t.Fatalf("got %v", err)
	}
}

func TestReadAndFiles(t *testing.T) {
	path := t.TempDir() + "/out.txt"
	vm, err := NewVM("test.klang", strings.NewReader(`
let line = @read();
@writeFile("`+path+`", line);
let content = @readFile("`+path+`");
`))
	if err != nil {
		t.Fatal(err)
	}
	vm.Stdin = strings.NewReader("hello\nworld\n")
	if err := vm.Exec(); err != nil {
		t.Fatal(err)
	}
	check(t, vm, "line", klangvm.Str("hello"))
	check(t, vm, "content", klangvm.Str("hello"))
}

func TestErrorLine(t *testing.T) {
	_, _, err := tryRun(t, `
let a = 1;

let b = a / 0;
`)
	var e *klangvm.Error
	if !errors.As(err, &e) {
		t.Fatalf("got %v", err)
	}
	if e.Line != 4 {
		t.Fatalf("got line %d", e.Line)
	}
	if !strings.HasPrefix(err.Error(), "[DivisionByZero] test.klang at line 4: ") {
		t.Fatalf("got %s", err.Error())
	}
}

func TestOutputBeforeError(t *testing.T) {
	_, out, err := tryRun(t, `
print("before");
let x = 1 / 0;
print("after");
`)
	if !errors.Is(err, klangvm.DivisionByZero) {
		t.Fatalf("got %v", err)
	}
	if out != "before\n" {
		t.Fatalf("got %q", out)
	}
}

func TestExec(t *testing.T) {
	vm, err := NewVM("repl", strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	if err := vm.Exec(); err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{
		`let a = 1;`,
		`fn inc(x) { return x + 1; }`,
		`let b = inc(a);`,
	} {
		if err := Exec(vm, line); err != nil {
			t.Fatalf("%s: %v", line, err)
		}
	}
	check(t, vm, "b", klangvm.Number(2))

	if err := Exec(vm, `{ let c = 1 / 0; }`); !errors.Is(err, klangvm.DivisionByZero) {
		t.Fatalf("got %v", err)
	}
	if err := Exec(vm, `let d = inc(b);`); err != nil {
		t.Fatal(err)
	}
	check(t, vm, "d", klangvm.Number(3))
	if len(vm.Scopes) != 1 {
		t.Fatalf("%d scopes", len(vm.Scopes))
	}
}
