package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"valkyrie/interpreter-go/pkg/driver"
)

const menuText = `Select an option:
1. Run a file
2. Run a string
3. Run in prompt mode
4. Run in prompt mode (Runic)
5. Compile only
6. Show help
7. Exit`

const helpText = `Valkyrie Interpreter
Valkyrie is a small dynamically typed language that can be written with
either Latin letters (.valkyrie files) or runes (.runic files).
Runic source is transliterated to Valkyrie before it runs.
Scripts can be run from a file, a string, or line by line in prompt mode,
and files can be converted between Runic and Valkyrie without running them.
Example scripts are bundled with this binary.`

// menu is the interactive front end shown when no command is given.
func (a *app) menu() error {
	reader := a.newLineReader(historyPath())
	defer reader.Close()
	ctx := context.Background()

	for {
		fmt.Fprintln(a.stdout, menuText)
		choice, err := reader.Prompt("> ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return err
		}
		switch strings.TrimSpace(choice) {
		case "1":
			a.menuRunFile(ctx, reader)
		case "2":
			a.menuRunString(reader)
		case "3", "4":
			if err := a.prompt(ctx, reader, strings.TrimSpace(choice) == "4", false); err != nil {
				fmt.Fprintf(a.stdout, "ERROR\n%v\n", err)
			} else {
				fmt.Fprintln(a.stdout, "Exited prompt mode")
			}
		case "5":
			a.menuCompile(ctx, reader)
		case "6":
			a.menuHelp(reader)
		case "7":
			fmt.Fprintln(a.stdout, "Exiting...")
			return nil
		default:
			fmt.Fprintln(a.stdout, "Invalid option, please try again")
		}
	}
}

func (a *app) readPath(reader lineReader) (string, bool) {
	path, err := reader.Prompt("Enter file path: ")
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(path), true
}

func (a *app) menuRunFile(ctx context.Context, reader lineReader) {
	path, ok := a.readPath(reader)
	if !ok {
		return
	}
	if !driver.IsSourcePath(path) {
		fmt.Fprintf(a.stdout, "Error: File path must end with %s or %s\n", driver.RunicExt, driver.ValkyrieExt)
		return
	}
	t, err := transliteratorFor(path)
	if err == nil {
		err = driver.RunFile(ctx, path, a.options(t, false))
	}
	if err != nil {
		a.reportError(err)
		return
	}
	fmt.Fprintln(a.stdout, "File executed successfully")
}

func (a *app) menuRunString(reader lineReader) {
	source, err := reader.Prompt("Enter string to run: ")
	if err != nil {
		return
	}
	if err := driver.RunSource(strings.TrimSpace(source), a.options(nil, false)); err != nil {
		a.reportError(err)
		return
	}
	fmt.Fprintln(a.stdout, "String executed successfully")
}

func (a *app) menuCompile(ctx context.Context, reader lineReader) {
	path, ok := a.readPath(reader)
	if !ok {
		return
	}
	if !driver.IsSourcePath(path) {
		fmt.Fprintf(a.stdout, "Error: File path must end with %s or %s\n", driver.RunicExt, driver.ValkyrieExt)
		return
	}
	t, err := transliteratorFor(path)
	if err == nil {
		_, err = driver.Compile(ctx, path, t)
	}
	if err != nil {
		a.reportError(err)
		return
	}
	if driver.IsRunic(path) {
		fmt.Fprintln(a.stdout, "File compiled to Valkyrie format")
	} else {
		fmt.Fprintln(a.stdout, "File compiled to Runic format")
	}
}

func (a *app) menuHelp(reader lineReader) {
	fmt.Fprintln(a.stdout, helpText)
	answer, err := reader.Prompt("Do you want to extract the examples? (y/n): ")
	if err != nil || !strings.EqualFold(strings.TrimSpace(answer), "y") {
		return
	}
	written, err := driver.ExtractExamples(defaultExamplesDir)
	if err != nil {
		a.reportError(err)
		return
	}
	fmt.Fprintf(a.stdout, "Extracted %d examples to %s\n", len(written), defaultExamplesDir)
}
