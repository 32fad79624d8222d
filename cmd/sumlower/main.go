package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-isatty"

	"github.com/sumlower/sumlower/internal/config"
	"github.com/sumlower/sumlower/internal/diagnostics"
	"github.com/sumlower/sumlower/internal/pipeline"
)

// frontend is the surface parser slotted in by builds that carry one. The
// stock binary only links the lowering stages; running it without a front
// end reports a diagnostic instead of guessing at syntax.
var frontend pipeline.Frontend

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("sumlower", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", config.DefaultConfigFile, "path to the project config")
	output := fs.String("o", "", `output path override ("-" writes to stdout)`)
	watch := fs.Bool("watch", false, "stay alive and re-run when an input changes")
	version := fs.Bool("version", false, "print the engine version")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *version {
		fmt.Fprintln(stdout, "sumlower "+config.EngineVersion)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *output != "" {
		cfg.Output = *output
	}

	if *watch || cfg.Watch {
		return watchLoop(cfg, stdout, stderr)
	}
	return runOnce(cfg, stdout, stderr)
}

// runOnce lowers every configured input and writes the combined rendering.
func runOnce(cfg *config.Config, stdout, stderr *os.File) int {
	var rendered strings.Builder
	for _, path := range cfg.InputPaths() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "reading %s: %v\n", path, err)
			return 1
		}
		p := pipeline.New(
			&pipeline.FrontendProcessor{Frontend: frontend},
			&pipeline.LowerProcessor{},
			&pipeline.EmitProcessor{},
		)
		ctx := p.Run(pipeline.NewContext(path, string(data)))
		if ctx.HasErrors() {
			printDiagnostic(stderr, ctx.FirstError())
			return 1
		}
		rendered.WriteString(ctx.Emitted)
	}
	if err := writeOutput(cfg.OutputPath(), rendered.String(), stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// watchLoop re-runs the lowering whenever an input file changes. Failed runs
// keep the loop alive; the next edit gets a fresh chance.
func watchLoop(cfg *config.Config, stdout, stderr *os.File) int {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(stderr, "starting watcher: %v\n", err)
		return 1
	}
	defer watcher.Close()

	inputs := map[string]bool{}
	for _, path := range cfg.InputPaths() {
		inputs[filepath.Clean(path)] = true
		// Watch the directory: editors replace files instead of writing
		// them in place, which drops a file-level watch.
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			fmt.Fprintf(stderr, "watching %s: %v\n", path, err)
			return 1
		}
	}

	runOnce(cfg, stdout, stderr)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if !inputs[filepath.Clean(event.Name)] {
				continue
			}
			fmt.Fprintf(stderr, "%s changed, re-running\n", event.Name)
			runOnce(cfg, stdout, stderr)
		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			fmt.Fprintf(stderr, "watcher: %v\n", err)
		}
	}
}

func writeOutput(path, content string, stdout *os.File) error {
	if path == "-" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// printDiagnostic writes one located error, colored when the stream is a
// terminal.
func printDiagnostic(w *os.File, err *diagnostics.DiagnosticError) {
	start, end := "", ""
	if isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()) {
		start, end = "\033[31m", "\033[0m"
	}
	fmt.Fprintf(w, "%serror:%s %s\n", start, end, err.Error())
}
