package interpreter

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"valkyrie/interpreter-go/pkg/ast"
	"valkyrie/interpreter-go/pkg/runtime"
)

func TestArithmeticAndPrint(t *testing.T) {
	out := mustRun(t, `
print 1 + 2 * 3;
print (1 + 2) * 3;
print 10 / 4;
print -3 - -1;
print 7 > 3;
print 2 <= 1;
`)
	want := "7\n9\n2.5\n-2\ntrue\nfalse\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestDisplayText(t *testing.T) {
	out := mustRun(t, `
fun f() {}
class Bagel {}
print nil;
print true;
print "text";
print 3.0;
print 0.1 + 0.2;
print f;
print clock;
print Bagel;
print Bagel();
`)
	want := strings.Join([]string{
		"nil", "true", "text", "3", "0.30000000000000004",
		"<fn f>", "<native fn clock>", "Bagel", "Bagel instance",
	}, "\n") + "\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestShadowingDoesNotLeak(t *testing.T) {
	out := mustRun(t, `
var x = 1;
{
  var x = 2;
  print x;
}
print x;
`)
	if out != "2\n1\n" {
		t.Fatalf("expected inner then outer value, got %q", out)
	}
}

func TestBlockAssignmentReachesOuterFrame(t *testing.T) {
	out := mustRun(t, `
var a = "outer";
{
  a = "changed";
  var b = a;
  print b;
}
print a;
`)
	if out != "changed\nchanged\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestClosureObservesLaterMutation(t *testing.T) {
	out := mustRun(t, `
fun outer() {
  var counter = 0;
  fun show() { print counter; }
  show();
  counter = counter + 10;
  return show;
}
var inner = outer();
inner();
`)
	if out != "0\n10\n" {
		t.Fatalf("expected closure to see mutation, got %q", out)
	}
}

func TestClosureCounterKeepsFrameAlive(t *testing.T) {
	out := mustRun(t, `
fun makeCounter() {
  var i = 0;
  fun count() {
    i = i + 1;
    return i;
  }
  return count;
}
var a = makeCounter();
var b = makeCounter();
print a();
print a();
print b();
`)
	if out != "1\n2\n1\n" {
		t.Fatalf("expected independent counters, got %q", out)
	}
}

func TestResolvedBindingIgnoresLaterShadowing(t *testing.T) {
	out := mustRun(t, `
var a = "global";
{
  fun showA() { print a; }
  showA();
  var a = "block";
  showA();
}
`)
	if out != "global\nglobal\n" {
		t.Fatalf("expected both calls to see the global binding, got %q", out)
	}
}

func TestShortCircuitSkipsRightOperand(t *testing.T) {
	out := mustRun(t, `
var calls = 0;
fun sideEffect() {
  calls = calls + 1;
  return true;
}
print false and sideEffect();
print true or sideEffect();
print calls;
print nil or "fallback";
print 1 and 2;
print true and sideEffect();
print calls;
`)
	want := "false\ntrue\n0\nfallback\n2\ntrue\n1\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestTruthiness(t *testing.T) {
	out := mustRun(t, `
if (0) print "zero"; else print "no";
if ("") print "empty"; else print "no";
if (nil) print "nil"; else print "no";
if (false) print "false"; else print "no";
print !nil;
print !0;
`)
	want := "zero\nempty\nno\nno\ntrue\nfalse\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestStringConcatenation(t *testing.T) {
	out := mustRun(t, `
print "x = " + 1;
print 1 + "x";
print "a" + "b";
print "flag: " + true;
print nil + "!";
`)
	want := "x = 1\n1x\nab\nflag: true\nnil!\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestWhileAndForLoops(t *testing.T) {
	out := mustRun(t, `
var i = 0;
while (i < 3) {
  print i;
  i = i + 1;
}
for (var j = 0; j < 2; j = j + 1) print "j" + j;
var fib = 0;
var next = 1;
for (var n = 0; n < 10; n = n + 1) {
  var tmp = fib;
  fib = next;
  next = tmp + next;
}
print fib;
`)
	want := "0\n1\n2\nj0\nj1\n55\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestRecursionAndReturn(t *testing.T) {
	out := mustRun(t, `
fun fib(n) {
  if (n < 2) return n;
  return fib(n - 1) + fib(n - 2);
}
print fib(15);
fun early() {
  while (true) {
    return "out";
  }
}
print early();
fun noReturn() {}
print noReturn();
`)
	if out != "610\nout\nnil\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestArityMismatchNamesExpectedCount(t *testing.T) {
	for _, call := range []string{"add(1);", "add(1, 2, 3);"} {
		source := "var bound = 0;\nfun add(a, b) { bound = 1; return a + b; }\n" + call + "\nprint bound;"
		rtErr, out := runtimeError(t, source)
		if !strings.Contains(rtErr.Message, "expects 2 arguments") {
			t.Fatalf("%s: expected message naming 2 arguments, got %q", call, rtErr.Message)
		}
		if out != "" {
			t.Fatalf("%s: expected no partial execution, got %q", call, out)
		}
		if rtErr.Token.Line != 3 {
			t.Fatalf("%s: expected error on line 3, got %d", call, rtErr.Token.Line)
		}
	}
}

func TestRuntimeErrors(t *testing.T) {
	cases := []struct {
		source  string
		message string
	}{
		{`print -"a";`, "Operand of '-' must be a number, got string."},
		{`print 1 - "a";`, "Right operand of '-' must be a number, got string."},
		{`print true * 2;`, "Left operand of '*' must be a number, got bool."},
		{`print nil < 1;`, "Left operand of '<' must be a number, got nil."},
		{`print true + nil;`, "Operands of '+' must be numbers or strings, got bool and nil."},
		{`print 1 / 0;`, "Division by zero."},
		{`print missing;`, "Undefined variable 'missing'."},
		{`"str"();`, "Can only call functions and classes, got string."},
		{`clock(1);`, "Function 'clock' expects 0 arguments, got 1"},
		{`var n = 1; print n.field;`, "Only instances have properties."},
		{`var n = 1; n.field = 2;`, "Only instances have fields."},
		{`class A {} print A().nope;`, "Undefined property 'nope'."},
		{`var NotAClass = 1; class B < NotAClass {}`, "Superclass must be a class."},
		{`class P { init(a) {} } P();`, "Class 'P' expects 1 arguments, got 0"},
		{`class Q {} Q(1);`, "Class 'Q' expects 0 arguments, got 1"},
		{`fun loop() { return loop(); } loop();`, "Stack overflow."},
		{`early = 1; var early = 2;`, "Assignment to undeclared variable 'early'."},
	}
	for _, tc := range cases {
		rtErr, _ := runtimeError(t, tc.source)
		if rtErr.Message != tc.message {
			t.Fatalf("%s: expected %q, got %q", tc.source, tc.message, rtErr.Message)
		}
	}
}

func TestRuntimeErrorRendering(t *testing.T) {
	rtErr, _ := runtimeError(t, "var a = 1;\nprint a + nil;")
	if got := rtErr.Error(); got != "runtime error at '+': Operands of '+' must be numbers or strings, got number and nil.\nline 2" {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestAssignmentBeforeGlobalDeclarationRuns(t *testing.T) {
	rtErr, out := runtimeError(t, "print \"before\";\nlater = 1;\nvar later = 2;\nprint \"after\";")
	if rtErr.Message != "Assignment to undeclared variable 'later'." {
		t.Fatalf("unexpected message %q", rtErr.Message)
	}
	if rtErr.Token.Lexeme != "later" || rtErr.Token.Line != 2 {
		t.Fatalf("unexpected token %q on line %d", rtErr.Token.Lexeme, rtErr.Token.Line)
	}
	if out != "before\n" {
		t.Fatalf("expected output to stop at the assignment, got %q", out)
	}
}

func TestUnresolvedTopLevelReturnIsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	interp := New()
	interp.SetOutput(&out)
	err := interp.Interpret(ast.Program(ast.PrintStmt(ast.Num(1)), ast.Ret(ast.Num(2)), ast.PrintStmt(ast.Num(3))))
	var rtErr *RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected runtime error, got %v", err)
	}
	if rtErr.Message != "Can't return from top-level code." || rtErr.Token.Lexeme != "return" {
		t.Fatalf("unexpected error %q at %q", rtErr.Message, rtErr.Token.Lexeme)
	}
	if out.String() != "1\n" {
		t.Fatalf("expected execution to stop at the return, got %q", out.String())
	}
}

func TestRuntimeErrorStopsRun(t *testing.T) {
	_, out := runtimeError(t, `print "before"; print 1 / 0; print "after";`)
	if out != "before\n" {
		t.Fatalf("expected output to stop at the error, got %q", out)
	}
}

func TestEquality(t *testing.T) {
	out := mustRun(t, `
fun f() {}
class A {}
var a = A();
print nil == nil;
print nil == false;
print 1 == 1;
print "a" == "a";
print 1 == "1";
print f == f;
print a == a;
print a == A();
print clock == clock;
print 1 != 2;
`)
	want := "true\nfalse\ntrue\ntrue\nfalse\ntrue\ntrue\nfalse\ntrue\ntrue\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestClassesFieldsAndMethods(t *testing.T) {
	out := mustRun(t, `
class Counter {
  init(start) {
    this.count = start;
  }
  increment() {
    this.count = this.count + 1;
    return this;
  }
  describe() { return "count=" + this.count; }
}
var c = Counter(5);
c.increment().increment();
print c.describe();
var m = c.describe;
c.count = 100;
print m();
c.describe = "shadowed";
print c.describe;
`)
	if out != "count=7\ncount=100\nshadowed\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestInitializerReturnsThis(t *testing.T) {
	out := mustRun(t, `
class Foo {
  init(flag) {
    this.flag = flag;
    if (flag) return;
    this.late = true;
  }
}
var foo = Foo(true);
print foo.init(false) == foo;
print foo.late;
`)
	if out != "true\ntrue\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestInheritanceAndSuper(t *testing.T) {
	out := mustRun(t, `
class Doughnut {
  cook() { print "Fry until golden brown."; }
  name() { return "doughnut"; }
}
class BostonCream < Doughnut {
  cook() {
    super.cook();
    print "Pipe full of custard and coat with chocolate.";
  }
}
class Filled < BostonCream {
  describe() { return "filled " + super.name(); }
}
BostonCream().cook();
print Filled().describe();
`)
	want := "Fry until golden brown.\nPipe full of custard and coat with chocolate.\nfilled doughnut\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestSuperMethodNotFound(t *testing.T) {
	rtErr, _ := runtimeError(t, `
class A {}
class B < A { m() { return super.missing(); } }
B().m();
`)
	if rtErr.Message != "Undefined property 'missing'." {
		t.Fatalf("unexpected message %q", rtErr.Message)
	}
}

func TestDeterministicAcrossFreshInterpreters(t *testing.T) {
	source := `
var total = 0;
for (var i = 1; i <= 20; i = i + 1) {
  if (i / 2 == 5) print "half";
  total = total + i * i;
}
class P { init(v) { this.v = v; } }
print total;
print P(3).v;
`
	first, err := run(New(), source)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := run(New(), source)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical output, got %q and %q", first, second)
	}
}

func TestPersistentInterpreterAccumulatesDeclarations(t *testing.T) {
	interp := New()
	if _, err := run(interp, "var count = 1; fun bump() { count = count + 1; return count; }"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	out, err := run(interp, "count = 10; print bump();")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if out != "11\n" {
		t.Fatalf("expected 11, got %q", out)
	}
	keys := interp.KnownGlobals()
	if strings.Join(keys, ",") != "bump,clock,count" {
		t.Fatalf("unexpected globals %v", keys)
	}
}

func TestClosureFromEarlierRunKeepsResolution(t *testing.T) {
	interp := New()
	if _, err := run(interp, "fun make() { var x = \"kept\"; fun get() { return x; } return get; } var g = make();"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	out, err := run(interp, "print g();")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if out != "kept\n" {
		t.Fatalf("expected closure to work across runs, got %q", out)
	}
}

func TestEvaluateDSLProgram(t *testing.T) {
	use := ast.ID("n")
	program := ast.Program(
		ast.Fn("double", []string{"n"}, ast.Ret(ast.Bin(ast.Star, use, ast.Num(2)))),
		ast.PrintStmt(ast.CallNamed("double", ast.Num(21))),
	)
	var out bytes.Buffer
	interp := New()
	if err := runProgram(interp, program, &out); err != nil {
		t.Fatalf("runProgram: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("expected 42, got %q", out.String())
	}
}

func TestCallValueInvokesDeclaredFunction(t *testing.T) {
	interp := New()
	if _, err := run(interp, "fun greet(name) { return \"hi \" + name; }"); err != nil {
		t.Fatalf("run: %v", err)
	}
	greet, ok := interp.GlobalEnvironment().Lookup("greet")
	if !ok {
		t.Fatalf("expected greet to be defined")
	}
	result, err := interp.callValue(greet, []runtime.Value{runtime.StringValue{Val: "odin"}}, ast.NewToken(ast.RightParen, ")", 1))
	if err != nil {
		t.Fatalf("callValue: %v", err)
	}
	if s, ok := result.(runtime.StringValue); !ok || s.Val != "hi odin" {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestTraceLogging(t *testing.T) {
	var logs bytes.Buffer
	interp := New()
	interp.SetLogger(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	if _, err := run(interp, "fun f(a) { { print a; } } f(1);"); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := logs.String()
	for _, want := range []string{"msg=\"call function\" name=f", "msg=\"push frame\" kind=function", "msg=\"pop frame\" kind=block"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in trace output:\n%s", want, text)
		}
	}

	logs.Reset()
	interp.SetLogger(nil)
	if _, err := run(interp, "f(2);"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if logs.Len() != 0 {
		t.Fatalf("expected tracing to be disabled, got %q", logs.String())
	}
}
