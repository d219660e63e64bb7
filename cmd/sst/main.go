// cmd/sst/main.go
package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"sst/internal/parser"
	"sst/internal/repl"
	"sst/internal/runner"
)

const version = "0.1.0"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(2)
	}

	switch args[0] {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Printf("sst %s\n", version)
	case "repl":
		if err := repl.Start(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case "run":
		os.Exit(runFile(args[1:]))
	case "check":
		os.Exit(checkFile(args[1:]))
	case "fmt":
		os.Exit(fmtFile(args[1:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		showUsage()
		os.Exit(2)
	}
}

func runFile(args []string) int {
	var filename string
	showStats := false
	for _, arg := range args {
		if arg == "--stats" {
			showStats = true
			continue
		}
		if filename == "" {
			filename = arg
		}
	}
	if filename == "" {
		fmt.Fprintln(os.Stderr, "usage: sst run [--stats] <file.sst>")
		return 2
	}

	source, err := loadSource(filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	res := runner.Run(source, os.Stdout)
	if res.Err != nil {
		printDiagnostic(res.Err)
	}
	if showStats {
		fmt.Fprintf(os.Stderr, "arena: %d allocations total, peak %s, outstanding %d\n",
			res.Mem.TotalAllocs, humanize.Bytes(res.Mem.PeakBytes), res.Mem.Outstanding)
	}
	return res.ExitCode
}

func checkFile(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: sst check <file.sst>")
		return 2
	}
	source, err := loadSource(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := runner.Check(source); err != nil {
		printDiagnostic(err)
		return 1
	}
	fmt.Printf("%s: ok\n", args[0])
	return 0
}

func fmtFile(args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: sst fmt <file.sst>")
		return 2
	}
	source, err := loadSource(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	prog, err := runner.Parse(source)
	if err != nil {
		printDiagnostic(err)
		return 1
	}
	fmt.Print(parser.Print(prog))
	return 0
}

func loadSource(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", errors.Wrapf(err, "could not read %s", filename)
	}
	return string(data), nil
}

// printDiagnostic writes the single diagnostic for this run to stderr,
// in red when stderr is a terminal.
func printDiagnostic(err error) {
	msg := err.Error()
	if isatty.IsTerminal(os.Stderr.Fd()) {
		msg = "\x1b[31m" + msg + "\x1b[0m"
	}
	fmt.Fprintln(os.Stderr, msg)
}

func showUsage() {
	fmt.Println(`sst - the stupid script interpreter

Usage:
  sst run [--stats] <file.sst>   run a program
  sst check <file.sst>           lex, parse and type-check only
  sst fmt <file.sst>             print the canonical formatting
  sst repl                       interactive session
  sst version                    print version
  sst help                       this text`)
}
