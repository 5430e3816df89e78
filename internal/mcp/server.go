package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/lfuzz/internal/config"
	"github.com/1broseidon/lfuzz/internal/fuzz"
	"github.com/1broseidon/lfuzz/internal/platform"
	"github.com/1broseidon/lfuzz/internal/report"
	"github.com/1broseidon/lfuzz/internal/target"
)

const (
	ServerName    = "lfuzz"
	ServerVersion = "0.1.0"

	defaultMaxActions = 1000
)

// Server exposes window listing and fuzz runs as MCP tools.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	open      platform.Opener
	logger    *slog.Logger

	// runMu serialises fuzz runs so each owns the display connection alone.
	runMu sync.Mutex
}

// NewServer creates an MCP server that opens display connections with open.
func NewServer(cfg *config.Config, open platform.Opener, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		config: cfg,
		open:   open,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every window on the X11 display that has a title, with its ID and geometry. Use the exact title with fuzz_window.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "fuzz_window",
		Description: "Focus the window with the given exact title and inject random key presses into it. Returns how many events were sent and which keysyms were used. With until_gone, mixes presses, clicks and other configured actions until the window disappears.",
	}, s.handleFuzzWindow)
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	b, err := target.Connect(s.open)
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	defer b.Close()

	windows := target.List(b, b.RootWindow())
	if windows == nil {
		windows = []platform.Window{}
	}
	return nil, ListWindowsOutput{Windows: windows}, nil
}

func (s *Server) handleFuzzWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args FuzzWindowInput) (*mcpsdk.CallToolResult, report.Summary, error) {
	if args.Title == "" {
		return nil, report.Summary{}, fmt.Errorf("title is required")
	}
	if args.Count < 0 || args.MaxActions < 0 {
		return nil, report.Summary{}, fmt.Errorf("count and max_actions must be >= 0")
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	h, err := target.Attach(s.open, args.Title, s.config.HandleOptions(s.logger))
	if err != nil {
		return nil, report.Summary{}, err
	}
	defer h.Close()

	deny, err := s.config.Denylist()
	if err != nil {
		return nil, report.Summary{}, err
	}
	opts := s.config.DriverOptions(s.logger)
	if args.Seed != nil {
		opts = append(opts, fuzz.WithSource(fuzz.NewSource(args.Seed)))
	}
	driver := fuzz.NewDriver(h, deny, opts...)

	h.Activate()
	s.logger.Info("fuzz run started", "title", args.Title, "window", uint32(h.Window()), "until_gone", args.UntilGone)

	if args.UntilGone {
		limit := args.MaxActions
		if limit == 0 {
			limit = defaultMaxActions
		}
		steps := 0
		actions, err := driver.RunUntil(ctx, func() bool {
			steps++
			return steps > limit || !h.Alive()
		})
		if err != nil {
			return nil, report.Summary{}, err
		}
		return nil, report.FromActions(args.Title, h.Window(), actions), nil
	}

	count := s.config.Count
	if args.Count > 0 {
		count = uint64(args.Count)
	}
	st, err := driver.Run(ctx, count)
	if err != nil {
		return nil, report.Summary{}, err
	}
	return nil, report.FromStatistics(args.Title, h.Window(), st), nil
}
