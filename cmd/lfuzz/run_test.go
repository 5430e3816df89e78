package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/1broseidon/lfuzz/internal/fuzz"
)

func TestParseRunOptionsShortAndLongFlags(t *testing.T) {
	opts, err := parseRunOptions([]string{"-t", "Calculator", "-c", "25", "--seed", "0x2a", "--json"}, io.Discard)
	if err != nil {
		t.Fatalf("parseRunOptions: %v", err)
	}
	if opts.title != "Calculator" {
		t.Fatalf("title=%q, want %q", opts.title, "Calculator")
	}
	if !opts.countSet || opts.count != 25 {
		t.Fatalf("count=%d set=%v, want 25 set", opts.count, opts.countSet)
	}
	if opts.seed == nil || *opts.seed != 42 {
		t.Fatalf("seed=%v, want 42", opts.seed)
	}
	if !opts.jsonOutput {
		t.Fatalf("jsonOutput=false, want true")
	}
	if opts.predicateMode() {
		t.Fatalf("predicateMode=true for a fixed-count run")
	}
}

func TestParseRunOptionsCountUnsetByDefault(t *testing.T) {
	opts, err := parseRunOptions([]string{"--target", "Editor"}, io.Discard)
	if err != nil {
		t.Fatalf("parseRunOptions: %v", err)
	}
	if opts.countSet {
		t.Fatalf("countSet=true without --count")
	}
	if opts.seed != nil {
		t.Fatalf("seed=%d, want nil", *opts.seed)
	}
}

func TestParseRunOptionsPredicateModes(t *testing.T) {
	opts, err := parseRunOptions([]string{"-t", "x", "--duration", "2s", "--until-gone"}, io.Discard)
	if err != nil {
		t.Fatalf("parseRunOptions: %v", err)
	}
	if !opts.predicateMode() {
		t.Fatalf("predicateMode=false, want true")
	}
	if opts.duration != 2*time.Second {
		t.Fatalf("duration=%v, want 2s", opts.duration)
	}
}

func TestParseRunOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "count with until-gone", args: []string{"-t", "x", "-c", "5", "--until-gone"}},
		{name: "count with duration", args: []string{"-t", "x", "--count", "5", "--duration", "1s"}},
		{name: "negative duration", args: []string{"-t", "x", "--duration", "-1s"}},
		{name: "bad seed", args: []string{"-t", "x", "--seed", "abc"}},
		{name: "positional", args: []string{"-t", "x", "extra"}},
		{name: "unknown flag", args: []string{"--nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseRunOptions(tt.args, io.Discard); err == nil {
				t.Fatalf("expected error for %v", tt.args)
			}
		})
	}
}

func TestParseRunOptionsHelp(t *testing.T) {
	_, err := parseRunOptions([]string{"--help"}, io.Discard)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("err=%v, want flag.ErrHelp", err)
	}
}

func TestRunConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("count: 10\nfocus_mode: ewmh\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("click_button: 9\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if rc := runConfig([]string{"validate", "--path", good}); rc != 0 {
		t.Fatalf("validate good rc=%d, want 0", rc)
	}
	if rc := runConfig([]string{"validate", "--path", bad}); rc != 1 {
		t.Fatalf("validate bad rc=%d, want 1", rc)
	}
	if rc := runConfig([]string{"frobnicate"}); rc != 2 {
		t.Fatalf("unknown subcommand rc=%d, want 2", rc)
	}
}

func TestExitCode(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "completed", err: nil, want: 0},
		{name: "interrupted", err: context.Canceled, want: 130},
		{name: "interrupted wrapped", err: fmt.Errorf("run: %w", context.Canceled), want: 130},
		{name: "denylist exhausted", err: fuzz.ErrDenylistExhausted, want: 1},
		{name: "deadline", err: context.DeadlineExceeded, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err, logger); got != tt.want {
				t.Fatalf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
