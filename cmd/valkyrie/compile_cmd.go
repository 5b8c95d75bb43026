package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"valkyrie/interpreter-go/pkg/ast"
	"valkyrie/interpreter-go/pkg/driver"
)

const defaultExamplesDir = "examples"

func newCompileCmd(a *app) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "compile <file.runic|file.valkyrie>",
		Short: "Convert a script between Runic and Valkyrie without running it",
		Long:  "compile transliterates a .runic file to <name>.valkyrie, or encodes a .valkyrie file to <name>.runic.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !driver.IsSourcePath(path) {
				return fmt.Errorf("%s: file path must end with %s or %s", path, driver.RunicExt, driver.ValkyrieExt)
			}
			t, err := transliteratorFor(path)
			if err != nil {
				return err
			}
			out, err := driver.Compile(cmd.Context(), path, t)
			if err != nil {
				return err
			}
			if check {
				if err := driver.CheckFile(cmd.Context(), out, driver.NewRuneTable()); err != nil {
					return err
				}
			}
			fmt.Fprintf(a.stdout, "compiled %s -> %s\n", path, out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "also scan, parse and resolve the converted output")
	return cmd
}

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Print a script's syntax tree as S-expressions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := transliteratorFor(args[0])
			if err != nil {
				return err
			}
			program, err := driver.ParseFile(cmd.Context(), args[0], t)
			if err != nil {
				return err
			}
			if len(program) > 0 {
				fmt.Fprintln(a.stdout, ast.SexprProgram(program))
			}
			return nil
		},
	}
}

func newExamplesCmd(a *app) *cobra.Command {
	var spec driver.ExamplesSpec
	var bundled bool

	cmd := &cobra.Command{
		Use:   "examples [dir]",
		Short: "Extract the bundled example scripts or fetch them from git",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := defaultExamplesDir
			if len(args) == 1 {
				dest = args[0]
			}
			source := &spec
			if spec.Git == "" {
				source = nil
				if !bundled {
					manifest, err := loadManifestFrom(".")
					if err != nil {
						return err
					}
					if manifest != nil {
						source = manifest.Examples
					}
				}
			}
			if source == nil {
				written, err := driver.ExtractExamples(dest)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "extracted %d examples to %s\n", len(written), dest)
				return nil
			}
			commit, written, err := driver.FetchExamples(cmd.Context(), source, dest)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "fetched %d examples from %s@%s to %s\n", len(written), source.Git, shortHash(commit), dest)
			return nil
		},
	}
	cmd.Flags().StringVar(&spec.Git, "git", "", "git repository to fetch examples from")
	cmd.Flags().StringVar(&spec.Rev, "rev", "", "commit to check out")
	cmd.Flags().StringVar(&spec.Tag, "tag", "", "tag to check out")
	cmd.Flags().StringVar(&spec.Branch, "branch", "", "branch to check out")
	cmd.Flags().StringVar(&spec.Path, "path", "", "directory inside the repository holding the scripts")
	cmd.Flags().BoolVar(&bundled, "bundled", false, "ignore the manifest and extract the bundled examples")
	return cmd
}

func shortHash(commit string) string {
	commit = strings.TrimSpace(commit)
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}
