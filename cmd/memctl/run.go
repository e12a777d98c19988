package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

const defaultStorePath = "memory.jsonl"

// run dispatches argv's first element as a subcommand and returns a process
// exit code, following the teacher's io.Writer-parameterized,
// int-returning command-handler shape (internal/cli/cmd_ls.go et al.) so
// the whole CLI is testable without touching the real stdout/stderr.
func run(argv []string, out, errOut io.Writer) int {
	if len(argv) == 0 {
		printUsage(out)
		return 1
	}

	cmd, rest := argv[0], argv[1:]
	switch cmd {
	case "add":
		return cmdAdd(out, errOut, rest)
	case "query":
		return cmdQuery(out, errOut, rest)
	case "snapshot":
		return cmdSnapshot(out, errOut, rest)
	case "restore":
		return cmdRestore(out, errOut, rest)
	case "prompt":
		return cmdPrompt(out, errOut, rest)
	case "graph":
		return cmdGraph(out, errOut, rest)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "error: unknown command %q\n", cmd)
		printUsage(errOut)
		return 1
	}
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage: memctl <command> [flags]")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  add       --actor A --action V --target T [--store PATH]")
	fmt.Fprintln(out, "  query     [--type T] [--actor A] [--target T] [--page N] [--page-size M] [--store PATH]")
	fmt.Fprintln(out, "  snapshot  TAG [--store PATH]")
	fmt.Fprintln(out, "  restore   TAG [--store PATH]")
	fmt.Fprintln(out, "  prompt    TEXT [--store PATH]")
	fmt.Fprintln(out, "  graph     [--db PATH]")
}

// newFlagSet builds a pflag.FlagSet configured the way the teacher's
// subcommands do: errors reported by the caller, not printed twice.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}
