package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"valkyrie/interpreter-go/pkg/driver"
)

const cliToolVersion = "valkyrie 0.1.0-dev"

// homeEnv points at the directory holding REPL history.
const homeEnv = "VALKYRIE_HOME"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// app carries the streams every command writes to, so tests can drive the
// CLI without touching the process's stdio.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// newLineReader builds the line source for the menu and the prompt.
	newLineReader func(historyPath string) lineReader
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	a.newLineReader = a.defaultLineReader
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		a.reportError(err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "valkyrie",
		Short:         "Run Valkyrie and Runic scripts",
		Long:          "valkyrie runs scripts written in the Valkyrie language, either in Latin letters (.valkyrie) or in runes (.runic).\nWith no arguments it opens an interactive menu.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.menu()
		},
	}
	root.AddCommand(
		newRunCmd(a),
		newEvalCmd(a),
		newPromptCmd(a),
		newCompileCmd(a),
		newParseCmd(a),
		newExamplesCmd(a),
		newVersionCmd(a),
	)
	return root
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.stdout, cliToolVersion)
		},
	}
}

// reportError prints err in the CLI's diagnostic format.
func (a *app) reportError(err error) {
	fmt.Fprintf(a.stderr, "ERROR:\n%s\n", driver.DescribeDiagnostic(driver.Diagnose(err)))
}

func (a *app) options(t driver.Transliterator, trace bool) driver.Options {
	opts := driver.Options{Stdout: a.stdout, Transliterator: t}
	if trace {
		opts.Logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return opts
}

// loadManifestFrom returns the manifest governing dir, or nil when there is
// none.
func loadManifestFrom(dir string) (*driver.Manifest, error) {
	path, err := driver.FindManifest(dir)
	if err != nil {
		if errors.Is(err, driver.ErrManifestNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return driver.LoadManifest(path)
}

// transliteratorFor picks the transliterator for a script, honoring the
// manifest next to it.
func transliteratorFor(path string) (driver.Transliterator, error) {
	manifest, err := loadManifestFrom(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return driver.SelectTransliterator(manifest), nil
}

func valkyrieHome() string {
	if home := os.Getenv(homeEnv); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(userHome, ".valkyrie")
}
