package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"valkyrie/interpreter-go/pkg/driver"
)

// lineReader is the part of liner.State the prompt loops use.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// defaultLineReader uses liner on an interactive stdin and a plain buffered
// reader otherwise.
func (a *app) defaultLineReader(historyPath string) lineReader {
	if f, ok := a.stdin.(*os.File); ok && f == os.Stdin && liner.TerminalSupported() {
		return newHistoryLiner(historyPath)
	}
	return &plainReader{in: bufio.NewReader(a.stdin), out: a.stdout}
}

type historyLiner struct {
	*liner.State
	historyPath string
}

func newHistoryLiner(historyPath string) *historyLiner {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	return &historyLiner{State: ln, historyPath: historyPath}
}

func (h *historyLiner) Close() error {
	if h.historyPath != "" {
		if err := os.MkdirAll(filepath.Dir(h.historyPath), 0o755); err == nil {
			if f, err := os.Create(h.historyPath); err == nil {
				_, _ = h.WriteHistory(f)
				_ = f.Close()
			}
		}
	}
	return h.State.Close()
}

type plainReader struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *plainReader) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *plainReader) AppendHistory(string) {}

func (p *plainReader) Close() error { return nil }

func newPromptCmd(a *app) *cobra.Command {
	var runic bool
	var trace bool

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Start an interactive prompt; an empty line exits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := a.newLineReader(historyPath())
			defer reader.Close()
			return a.prompt(cmd.Context(), reader, runic, trace)
		},
	}
	cmd.Flags().BoolVar(&runic, "runic", false, "read Runic input and transliterate each line")
	cmd.Flags().BoolVar(&trace, "trace", false, "log frame and call events to stderr")
	return cmd
}

func historyPath() string {
	home := valkyrieHome()
	if home == "" {
		return ""
	}
	return filepath.Join(home, "history")
}

// prompt runs a read-eval loop on one persistent session. Errors are
// reported and the loop continues; an empty line, EOF or :quit ends it.
func (a *app) prompt(ctx context.Context, reader lineReader, runic bool, trace bool) error {
	var t driver.Transliterator
	if runic {
		selected, err := transliteratorFor(".")
		if err != nil {
			return err
		}
		t = selected
		fmt.Fprintln(a.stdout, "Running in prompt mode (Runic) - simply press enter to exit")
	} else {
		fmt.Fprintln(a.stdout, "Running in prompt mode - simply press enter to exit")
	}
	session := driver.NewSession(a.options(t, trace))

	for {
		line, err := reader.Prompt("> ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return err
		}
		input := strings.TrimSpace(line)
		switch input {
		case "", ":quit":
			return nil
		case ":globals":
			for _, binding := range session.Globals() {
				fmt.Fprintf(a.stdout, "%s = %s\n", binding.Name, binding.Value)
			}
			continue
		}
		reader.AppendHistory(line)

		source := line
		if runic {
			source, err = t.Transliterate(ctx, line)
			if err != nil {
				fmt.Fprintf(a.stdout, "Error during conversion: %v\n", err)
				continue
			}
			fmt.Fprintf(a.stdout, "Converted: %s\n", source)
		}
		if err := session.Run(source); err != nil {
			a.reportError(err)
		}
	}
}
