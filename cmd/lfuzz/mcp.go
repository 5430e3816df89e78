package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/lfuzz/internal/mcp"
	"github.com/1broseidon/lfuzz/internal/platform"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: lfuzz mcp serve [--config PATH] [-v]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Serve the list_windows and fuzz_window tools over MCP on stdin/stdout.")
	fmt.Fprintln(w, "Each fuzz_window call attaches to the display named by DISPLAY, runs to")
	fmt.Fprintln(w, "completion and releases the connection; calls are handled one at a time.")
}

func runMCP(args []string) int {
	if len(args) == 0 || args[0] != "serve" {
		if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
			printMCPUsage(os.Stdout)
			return 0
		}
		printMCPUsage(os.Stderr)
		return 2
	}

	fs := flag.NewFlagSet("mcp serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { printMCPUsage(os.Stderr) }
	configPath := fs.String("config", "", "config file path")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// Logs must stay off stdout, which carries the protocol.
	logger := newLogger(cfg, *verbose)
	server := mcp.NewServer(cfg, platform.Open, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("mcp server listening on stdio")
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "mcp server: %v\n", err)
		return 1
	}
	return 0
}
