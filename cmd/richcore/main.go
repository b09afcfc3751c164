// Package main is the entry point for the richcore command runner.
//
// richcore reads an HTML document, runs editor commands against it and
// writes the result:
//
//	echo '<p>Hello</p>' | richcore -select 1:6 toggle_strong
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/richcore/internal/config"
	"github.com/dshills/richcore/internal/engine"
	"github.com/dshills/richcore/internal/engine/cursor"
	"github.com/dshills/richcore/internal/script"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath string
	logLevel   string
	input      string
	output     string
	scripts    stringList
	selection  string
	statuses   bool
	list       bool
	commands   []string
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()
	if err := execute(opts, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func execute(opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	level := opts.logLevel
	if level == "" {
		level = cfg.LogLevel
	}
	log, atomic, err := engine.NewLogger(level, stderr)
	if err != nil {
		return err
	}
	defer log.Sync()

	markup, err := readInput(opts.input, stdin)
	if err != nil {
		return err
	}

	engineOpts := []engine.Option{
		engine.WithConfig(cfg),
		engine.WithHTML(markup),
		engine.WithLogger(log),
		engine.WithLevel(atomic),
	}
	if opts.selection != "" {
		sel, err := parseSelection(opts.selection)
		if err != nil {
			return err
		}
		engineOpts = append(engineOpts, engine.WithSelection(sel))
	}
	e, err := engine.New(engineOpts...)
	if err != nil {
		return err
	}
	defer e.Close()

	if len(opts.scripts) > 0 {
		host := script.NewHost(script.WithLogger(log))
		defer host.Close()
		for _, path := range opts.scripts {
			if err := host.DoFile(path); err != nil {
				return fmt.Errorf("script %s: %w", path, err)
			}
		}
		if err := host.Install(e); err != nil {
			return err
		}
	}

	if opts.list {
		for _, name := range e.Commands() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	for _, name := range opts.commands {
		ok, err := e.Exec(name)
		if err != nil {
			return err
		}
		if !ok {
			log.Warn("command not applicable", zap.String("command", name))
		}
	}

	if opts.statuses {
		statuses := e.Statuses()
		names := make([]string, 0, len(statuses))
		for name := range statuses {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(stdout, "%s\t%s\n", name, statuses[name])
		}
		return nil
	}

	out, err := e.HTML()
	if err != nil {
		return err
	}
	return writeOutput(opts.output, stdout, out)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func writeOutput(path string, stdout io.Writer, out string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(stdout, out)
		return err
	}
	return os.WriteFile(path, []byte(out+"\n"), 0o644)
}

// parseSelection parses "pos" or "anchor:head".
func parseSelection(s string) (cursor.Selection, error) {
	anchor, head, found := strings.Cut(s, ":")
	a, err := strconv.Atoi(anchor)
	if err != nil {
		return cursor.Selection{}, fmt.Errorf("invalid selection %q", s)
	}
	if !found {
		return cursor.NewCursorSelection(a), nil
	}
	h, err := strconv.Atoi(head)
	if err != nil {
		return cursor.Selection{}, fmt.Errorf("invalid selection %q", s)
	}
	if a < 0 || h < 0 {
		return cursor.Selection{}, errors.New("selection positions must not be negative")
	}
	return cursor.NewSelection(a, h), nil
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file (TOML, YAML or JSON)")
	flag.StringVar(&opts.configPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.input, "in", "", "Input HTML file (default stdin)")
	flag.StringVar(&opts.output, "out", "", "Output HTML file (default stdout)")
	flag.Var(&opts.scripts, "script", "Lua script defining commands (repeatable)")
	flag.StringVar(&opts.selection, "select", "", "Selection as pos or anchor:head")
	flag.BoolVar(&opts.statuses, "status", false, "Print command statuses instead of the document")
	flag.BoolVar(&opts.list, "list", false, "List command names and exit")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "richcore - structured document command runner\n\n")
		fmt.Fprintf(os.Stderr, "Usage: richcore [options] [commands...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  richcore -in doc.html -select 1:6 toggle_strong\n")
		fmt.Fprintf(os.Stderr, "  richcore -in doc.html -select 3 -status\n")
		fmt.Fprintf(os.Stderr, "  richcore -script macros.lua -list\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("richcore %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	opts.commands = flag.Args()
	return opts
}
