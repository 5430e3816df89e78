package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/lfuzz/internal/platform"
	"github.com/1broseidon/lfuzz/internal/report"
	"github.com/1broseidon/lfuzz/internal/target"
)

func runWindows(args []string) int {
	fs := flag.NewFlagSet("windows", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOutput := fs.Bool("json", false, "print JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: lfuzz windows [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List every titled window in the order lfuzz run searches them.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "windows takes no arguments")
		fs.Usage()
		return 2
	}

	b, err := target.Connect(platform.Open)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer b.Close()

	windows := target.List(b, b.RootWindow())
	if *jsonOutput {
		if windows == nil {
			windows = []platform.Window{}
		}
		if err := report.WriteJSON(os.Stdout, windows); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}

	if err := report.WriteWindows(os.Stdout, windows, report.IsTerminal(os.Stdout)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
