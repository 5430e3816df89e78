package mcp

import "github.com/1broseidon/lfuzz/internal/platform"

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []platform.Window `json:"windows"`
}

// FuzzWindowInput is the input for the fuzz_window tool.
type FuzzWindowInput struct {
	Title string `json:"title" jsonschema:"Exact title of the target window"`
	Count int    `json:"count,omitempty" jsonschema:"Number of key presses to inject (default: config count, 100)"`
	// Seed makes the generated sequence reproducible.
	Seed      *uint64 `json:"seed,omitempty" jsonschema:"Optional random seed for a reproducible input sequence"`
	UntilGone bool    `json:"until_gone,omitempty" jsonschema:"When true, inject mixed actions until the window disappears or max_actions is reached"`
	// MaxActions bounds an until_gone run.
	MaxActions int `json:"max_actions,omitempty" jsonschema:"Upper bound on actions for until_gone runs (default: 1000)"`
}
