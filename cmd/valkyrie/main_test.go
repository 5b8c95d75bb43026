package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeScript(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestVersion(t *testing.T) {
	res := runCLI(t, "", "version")
	if res.code != 0 || strings.TrimSpace(res.stdout) != cliToolVersion {
		t.Fatalf("version = %+v", res)
	}
}

func TestResolveValkyrieHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv(homeEnv, filepath.Join(tmp, "custom"))
	if got := valkyrieHome(); got != filepath.Join(tmp, "custom") {
		t.Fatalf("valkyrieHome = %q", got)
	}
	t.Setenv(homeEnv, "")
	t.Setenv("HOME", tmp)
	if got, want := valkyrieHome(), filepath.Join(tmp, ".valkyrie"); got != want {
		t.Fatalf("valkyrieHome = %q, want %q", got, want)
	}
	if got, want := historyPath(), filepath.Join(tmp, ".valkyrie", "history"); got != want {
		t.Fatalf("historyPath = %q, want %q", got, want)
	}
}

func TestEval(t *testing.T) {
	res := runCLI(t, "", "eval", `var a = "Val"; print a + "kyrie";`)
	if res.code != 0 || res.stdout != "Valkyrie\n" {
		t.Fatalf("eval = %+v", res)
	}
}

func TestEvalRunic(t *testing.T) {
	res := runCLI(t, "", "eval", "--runic", `𖤍 ᚨ = 2; ♅♅ ᚨ * 21;`)
	if res.code != 0 || res.stdout != "42\n" {
		t.Fatalf("eval --runic = %+v", res)
	}
}

func TestEvalReportsDiagnostic(t *testing.T) {
	res := runCLI(t, "", "eval", `print "a"; print -"b";`)
	if res.code != 1 {
		t.Fatalf("exit code = %d, want 1", res.code)
	}
	if res.stdout != "a\n" {
		t.Fatalf("stdout = %q", res.stdout)
	}
	want := "ERROR:\nruntime error at '-': Operand of '-' must be a number, got string.\nline 1\n"
	if res.stderr != want {
		t.Fatalf("stderr = %q, want %q", res.stderr, want)
	}
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	latin := writeScript(t, dir, "main.valkyrie", "fun twice(x) { return x * 2; }\nprint twice(21);\n")
	runic := writeScript(t, dir, "main.runic", "♅♅ \"ᚨ\" + \"b\";\n")
	t.Setenv("VALKYRIE_RUNIC", "")

	if res := runCLI(t, "", "run", latin); res.code != 0 || res.stdout != "42\n" {
		t.Fatalf("run %s = %+v", latin, res)
	}
	if res := runCLI(t, "", "run", runic); res.code != 0 || res.stdout != "ᚨb\n" {
		t.Fatalf("run %s = %+v", runic, res)
	}
}

func TestRunReportsPathInDiagnostic(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "bad.valkyrie", "var a = 1;\nprint a +;\n")
	res := runCLI(t, "", "run", path)
	if res.code != 1 {
		t.Fatalf("exit code = %d", res.code)
	}
	want := "ERROR:\nparse error at ';': Expect expression.\n" + path + ": line 2\n"
	if res.stderr != want {
		t.Fatalf("stderr = %q, want %q", res.stderr, want)
	}
}

func TestRunManifestTargets(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "valkyrie.yml", "name: saga\ntargets:\n  main: src/main.valkyrie\n  other-tool: src/other.valkyrie\n")
	writeScript(t, dir, "src/main.valkyrie", `print "main";`)
	writeScript(t, dir, "src/other.valkyrie", `print "other";`)
	t.Chdir(dir)

	if res := runCLI(t, "", "run"); res.code != 0 || res.stdout != "main\n" {
		t.Fatalf("run default target = %+v", res)
	}
	if res := runCLI(t, "", "run", "other-tool"); res.code != 0 || res.stdout != "other\n" {
		t.Fatalf("run other-tool = %+v", res)
	}
	res := runCLI(t, "", "run", "missing")
	if res.code != 1 || !strings.Contains(res.stderr, `unknown target "missing"`) {
		t.Fatalf("run missing = %+v", res)
	}
}

func TestRunWithoutManifest(t *testing.T) {
	t.Chdir(t.TempDir())
	res := runCLI(t, "", "run")
	if res.code != 1 || !strings.Contains(res.stderr, "requires a target or source file") {
		t.Fatalf("run = %+v", res)
	}
}

func TestRunTrace(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "trace.valkyrie", "fun f() { return 1; }\nprint f();\n")
	res := runCLI(t, "", "run", "--trace", path)
	if res.code != 0 || res.stdout != "1\n" {
		t.Fatalf("run --trace = %+v", res)
	}
	for _, want := range []string{`msg="call function"`, "name=f", `msg="push frame"`} {
		if !strings.Contains(res.stderr, want) {
			t.Fatalf("trace output missing %q:\n%s", want, res.stderr)
		}
	}
}

func TestPromptKeepsState(t *testing.T) {
	input := "var a = 1;\nfun inc() { a = a + 1; }\ninc();\nprint a;\n:globals\n\nprint 99;\n"
	res := runCLI(t, input, "prompt")
	if res.code != 0 {
		t.Fatalf("prompt = %+v", res)
	}
	if !strings.Contains(res.stdout, "Running in prompt mode - simply press enter to exit") {
		t.Fatalf("missing banner: %q", res.stdout)
	}
	if !strings.Contains(res.stdout, "> 2\n") {
		t.Fatalf("prompt output missing 2: %q", res.stdout)
	}
	if !strings.Contains(res.stdout, "a = 2\n") || !strings.Contains(res.stdout, "inc = <fn inc>\n") {
		t.Fatalf(":globals output missing bindings: %q", res.stdout)
	}
	if strings.Contains(res.stdout, "99") {
		t.Fatalf("empty line should end the prompt: %q", res.stdout)
	}
}

func TestPromptContinuesAfterErrors(t *testing.T) {
	res := runCLI(t, "print nope;\nprint 1 +;\nprint \"ok\";\n:quit\n", "prompt")
	if res.code != 0 {
		t.Fatalf("prompt = %+v", res)
	}
	if !strings.Contains(res.stderr, "runtime error at 'nope': Undefined variable 'nope'.") {
		t.Fatalf("missing runtime diagnostic: %q", res.stderr)
	}
	if !strings.Contains(res.stderr, "parse error at ';': Expect expression.") {
		t.Fatalf("missing parse diagnostic: %q", res.stderr)
	}
	if !strings.Contains(res.stdout, "ok\n") {
		t.Fatalf("prompt stopped after errors: %q", res.stdout)
	}
}

func TestPromptRunic(t *testing.T) {
	t.Setenv("VALKYRIE_RUNIC", "")
	t.Chdir(t.TempDir())
	res := runCLI(t, "𖤍 ᛋ = \"ᚺᛁ\";\n♅♅ ᛋ;\n", "prompt", "--runic")
	if res.code != 0 {
		t.Fatalf("prompt --runic = %+v", res)
	}
	if !strings.Contains(res.stdout, "Converted: var s = \"ᚺᛁ\";") {
		t.Fatalf("missing conversion echo: %q", res.stdout)
	}
	if !strings.Contains(res.stdout, "ᚺᛁ\n") {
		t.Fatalf("missing output: %q", res.stdout)
	}
}

func TestMenu(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, dir, "menu.valkyrie", `print "from file";`)
	input := strings.Join([]string{
		"2", `print 1 + 2;`,
		"1", script,
		"1", filepath.Join(dir, "notes.txt"),
		"9",
		"3", "print 5;", "",
		"7",
	}, "\n") + "\n"
	res := runCLI(t, input)
	if res.code != 0 {
		t.Fatalf("menu = %+v", res)
	}
	for _, want := range []string{
		"Select an option:\n1. Run a file\n",
		"Enter string to run: 3\nString executed successfully\n",
		"Enter file path: from file\nFile executed successfully\n",
		"Error: File path must end with .runic or .valkyrie\n",
		"Invalid option, please try again\n",
		"> 5\n",
		"Exited prompt mode\n",
		"Exiting...\n",
	} {
		if !strings.Contains(res.stdout, want) {
			t.Fatalf("menu output missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestMenuExitsOnEOF(t *testing.T) {
	res := runCLI(t, "")
	if res.code != 0 || !strings.Contains(res.stdout, "Select an option:") {
		t.Fatalf("menu = %+v", res)
	}
}

func TestMenuCompileAndHelp(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("VALKYRIE_RUNIC", "")
	runic := writeScript(t, dir, "hi.runic", `♅♅ "hi";`)
	latin := writeScript(t, dir, "bye.valkyrie", `print "bye";`)
	input := strings.Join([]string{"5", runic, "5", latin, "5", "notes.txt", "6", "y", "7"}, "\n") + "\n"
	res := runCLI(t, input)
	if res.code != 0 {
		t.Fatalf("menu = %+v", res)
	}
	if !strings.Contains(res.stdout, "File compiled to Valkyrie format\n") {
		t.Fatalf("compile option output: %q", res.stdout)
	}
	if !strings.Contains(res.stdout, "File compiled to Runic format\n") {
		t.Fatalf("compile option output for .valkyrie: %q", res.stdout)
	}
	if !strings.Contains(res.stdout, "Error: File path must end with .runic or .valkyrie\n") {
		t.Fatalf("compile option should reject other extensions: %q", res.stdout)
	}
	data, err := os.ReadFile(filepath.Join(dir, "hi.valkyrie"))
	if err != nil || string(data) != `print "hi";` {
		t.Fatalf("compiled file = %q, %v", data, err)
	}
	data, err = os.ReadFile(filepath.Join(dir, "bye.runic"))
	if err != nil || string(data) != `♅♅ "bye";` {
		t.Fatalf("encoded file = %q, %v", data, err)
	}
	if !strings.Contains(res.stdout, "Valkyrie Interpreter") || !strings.Contains(res.stdout, "Extracted ") {
		t.Fatalf("help option output: %q", res.stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, "examples", "hello.valkyrie")); err != nil {
		t.Fatalf("examples not extracted: %v", err)
	}
}

func TestCompileCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VALKYRIE_RUNIC", "")
	good := writeScript(t, dir, "good.runic", "𖤍 ᚨ = 1;\n♅♅ ᚨ;\n")
	res := runCLI(t, "", "compile", "--check", good)
	if res.code != 0 {
		t.Fatalf("compile = %+v", res)
	}
	out := filepath.Join(dir, "good.valkyrie")
	if !strings.Contains(res.stdout, "-> "+out) {
		t.Fatalf("compile stdout = %q", res.stdout)
	}
	if data, err := os.ReadFile(out); err != nil || string(data) != "var a = 1;\nprint a;\n" {
		t.Fatalf("compiled = %q, %v", data, err)
	}

	bad := writeScript(t, dir, "bad.runic", "↡ 1;\n")
	res = runCLI(t, "", "compile", "--check", bad)
	if res.code != 1 || !strings.Contains(res.stderr, "resolve error at 'return': Can't return from top-level code.") {
		t.Fatalf("compile --check = %+v", res)
	}

	notes := writeScript(t, dir, "notes.txt", "print 1;")
	res = runCLI(t, "", "compile", notes)
	if res.code != 1 || !strings.Contains(res.stderr, "must end with .runic or .valkyrie") {
		t.Fatalf("compile unsupported extension = %+v", res)
	}
}

func TestCompileValkyrieToRunicAndRun(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VALKYRIE_RUNIC", "")
	src := writeScript(t, dir, "saga.valkyrie", "fun hail(name) { return \"Hail, \" + name; }\nvar x = 2;\nprint hail(\"Odin\");\nprint x * 21;\n")

	res := runCLI(t, "", "compile", "--check", src)
	if res.code != 0 {
		t.Fatalf("compile = %+v", res)
	}
	runicPath := filepath.Join(dir, "saga.runic")
	if !strings.Contains(res.stdout, "-> "+runicPath) {
		t.Fatalf("compile stdout = %q", res.stdout)
	}
	data, err := os.ReadFile(runicPath)
	if err != nil {
		t.Fatalf("read %s: %v", runicPath, err)
	}
	encoded := string(data)
	if !strings.HasPrefix(encoded, "♅ ") || !strings.Contains(encoded, "𖤍 × = 2;") || !strings.Contains(encoded, `"Hail, "`) {
		t.Fatalf("unexpected runic output %q", encoded)
	}

	res = runCLI(t, "", "run", runicPath)
	if res.code != 0 || res.stdout != "Hail, Odin\n42\n" {
		t.Fatalf("run %s = %+v", runicPath, res)
	}
}

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "p.valkyrie", "var x = 1 + 2 * 3;\nprint x;\n")
	res := runCLI(t, "", "parse", path)
	if res.code != 0 {
		t.Fatalf("parse = %+v", res)
	}
	if want := "(var x (+ 1 (* 2 3)))\n(print x)\n"; res.stdout != want {
		t.Fatalf("parse stdout = %q, want %q", res.stdout, want)
	}
}

func TestExamplesCommandBundled(t *testing.T) {
	t.Chdir(t.TempDir())
	dest := filepath.Join(t.TempDir(), "ex")
	res := runCLI(t, "", "examples", "--bundled", dest)
	if res.code != 0 || !strings.Contains(res.stdout, "extracted") {
		t.Fatalf("examples = %+v", res)
	}
	for _, name := range []string{"hello.valkyrie", "fibonacci.runic", "classes.valkyrie"} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestWatchFileReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "watched.valkyrie", `print 1;`)
	writeScript(t, dir, "other.valkyrie", `print 0;`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, 20*time.Millisecond, func() { changes <- struct{}{} })
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for waiting := true; waiting; {
		select {
		case <-changes:
			waiting = false
		case <-tick.C:
			// The watcher may not be registered yet; keep touching the file.
			writeScript(t, dir, "watched.valkyrie", `print 2;`)
		case <-deadline:
			t.Fatalf("no change reported")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watchFile returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watchFile did not stop after cancel")
	}
}
