package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"valkyrie/interpreter-go/pkg/driver"
)

func newRunCmd(a *app) *cobra.Command {
	var watch bool
	var trace bool
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "run [file|target]",
		Short: "Run a script, a manifest target, or the manifest's default target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidate := ""
			if len(args) == 1 {
				candidate = args[0]
			}
			entry, err := resolveEntry(candidate)
			if err != nil {
				return err
			}
			t, err := transliteratorFor(entry)
			if err != nil {
				return err
			}
			opts := a.options(t, trace)
			if !watch {
				return driver.RunFile(cmd.Context(), entry, opts)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			runOnce := func() {
				if err := driver.RunFile(ctx, entry, opts); err != nil {
					a.reportError(err)
				}
			}
			runOnce()
			fmt.Fprintf(a.stderr, "watching %s\n", entry)
			return watchFile(ctx, entry, debounce, func() {
				fmt.Fprintf(a.stderr, "\n%s changed, re-running\n", entry)
				runOnce()
			})
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "re-run the script whenever it changes")
	cmd.Flags().BoolVar(&trace, "trace", false, "log frame and call events to stderr")
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "delay before re-running after a change")
	return cmd
}

// resolveEntry maps a run argument to a script path: a source file is used
// as is, anything else names a manifest target. An empty candidate selects
// the manifest's default target.
func resolveEntry(candidate string) (string, error) {
	if candidate != "" && driver.IsSourcePath(candidate) {
		return candidate, nil
	}
	manifest, err := loadManifestFrom(".")
	if err != nil {
		return "", fmt.Errorf("failed to load manifest: %w", err)
	}
	if manifest == nil {
		if candidate == "" {
			return "", fmt.Errorf("valkyrie run requires a target or source file (%s not found)", driver.ManifestFileName)
		}
		return "", fmt.Errorf("%s: not a %s or %s file and no %s found", candidate, driver.ValkyrieExt, driver.RunicExt, driver.ManifestFileName)
	}
	var target *driver.TargetSpec
	if candidate == "" {
		target, err = manifest.DefaultTarget()
		if err != nil {
			return "", err
		}
	} else {
		var ok bool
		target, ok = manifest.FindTarget(candidate)
		if !ok {
			return "", fmt.Errorf("unknown target %q in %s", candidate, manifest.Path)
		}
	}
	return manifest.MainPath(target), nil
}

func newEvalCmd(a *app) *cobra.Command {
	var trace bool
	var runic bool

	cmd := &cobra.Command{
		Use:   "eval <source>",
		Short: "Run a string of Valkyrie source",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := strings.Join(args, " ")
			if runic {
				translated, err := driver.NewRuneTable().Transliterate(cmd.Context(), source)
				if err != nil {
					return err
				}
				source = translated
			}
			return driver.RunSource(source, a.options(nil, trace))
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "log frame and call events to stderr")
	cmd.Flags().BoolVar(&runic, "runic", false, "treat the source as Runic")
	return cmd
}
