// nereid renders sequence diagrams to Unicode text and shows them in a
// live-reloading terminal viewer.
//
// Usage:
//
//	nereid                          # Auto-discover .nereid/diagram.{json,yaml,yml}
//	nereid --diagram <path>         # Use a specific diagram file
//	nereid --text                   # Print the rendered text and exit
//	nereid --json                   # Print text, size and highlight index as JSON
//	nereid --png out.png            # Write a PNG (add --select <ref> to paint one object)
//	nereid --mcp                    # Serve MCP tools over stdio
//	nereid --view objects           # Start in a specific view
//	nereid --refresh 5s             # Set polling fallback interval
//	nereid --version                # Print version and exit
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bnomei/nereid-sub000/internal/config"
	"github.com/bnomei/nereid-sub000/internal/datasource"
	"github.com/bnomei/nereid-sub000/internal/export"
	"github.com/bnomei/nereid-sub000/internal/logging"
	"github.com/bnomei/nereid-sub000/internal/mcpserver"
	"github.com/bnomei/nereid-sub000/internal/model"
	"github.com/bnomei/nereid-sub000/internal/snapshot"
)

// Version is set via ldflags at build time (e.g. -X main.Version=v0.1.0).
var Version = "dev"

// parseViewFlag maps a --view flag string to a viewID.
func parseViewFlag(s string) (viewID, error) {
	switch strings.ToLower(s) {
	case "diagram", "d":
		return viewDiagram, nil
	case "objects", "o":
		return viewObjects, nil
	case "text", "t":
		return viewText, nil
	default:
		return 0, fmt.Errorf("unknown view %q (valid: diagram, objects, text)", s)
	}
}

type cliFlags struct {
	configPath   string
	diagram      string
	view         string
	refresh      time.Duration
	logLevel     string
	selectRef    string
	pngPath      string
	textMode     bool
	jsonMode     bool
	mcpMode      bool
	reserveNotes bool
	prefixLabels bool
	version      bool

	// set records which flags were given explicitly.
	set map[string]bool
}

func parseFlags(args []string) (cliFlags, error) {
	var f cliFlags
	fs := flag.NewFlagSet("nereid", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "config file (default: ~/.nereid/config.yaml)")
	fs.StringVar(&f.diagram, "diagram", "", "path to the diagram file (default: auto-discover)")
	fs.StringVar(&f.view, "view", "", "start in specific view (diagram|objects|text)")
	fs.DurationVar(&f.refresh, "refresh", 0, "polling fallback interval")
	fs.StringVar(&f.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	fs.StringVar(&f.selectRef, "select", "", "object ref to select on startup or paint in --png")
	fs.StringVar(&f.pngPath, "png", "", "write the diagram as PNG to this path and exit")
	fs.BoolVar(&f.textMode, "text", false, "print the rendered text and exit (no TUI)")
	fs.BoolVar(&f.jsonMode, "json", false, "print text, size and highlight index as JSON and exit (no TUI)")
	fs.BoolVar(&f.mcpMode, "mcp", false, "serve MCP tools over stdio")
	fs.BoolVar(&f.reserveNotes, "reserve-notes", false, "reserve note rows under the participant boxes")
	fs.BoolVar(&f.prefixLabels, "prefix-labels", false, "prefix message labels with a direction marker")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	f.set = map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// apply layers explicitly given flags over cfg.
func (f cliFlags) apply(cfg *config.Config) error {
	if f.set["diagram"] {
		cfg.Diagram = f.diagram
	}
	if f.set["view"] {
		cfg.View = f.view
	}
	if f.set["refresh"] {
		cfg.Refresh = f.refresh
	}
	if f.set["log-level"] {
		cfg.LogLevel = f.logLevel
	}
	if f.set["reserve-notes"] {
		cfg.Render.ReserveNotes = f.reserveNotes
	}
	if f.set["prefix-labels"] {
		cfg.Render.PrefixLabels = f.prefixLabels
	}
	return cfg.Validate()
}

func main() {
	fl, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if fl.version {
		fmt.Printf("nereid %s\n", Version)
		os.Exit(0)
	}

	cfg, err := config.Load(fl.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nereid: config: %v\n", err)
		os.Exit(1)
	}
	if err := fl.apply(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "nereid: %v\n", err)
		os.Exit(1)
	}

	if cfg.Diagram != "" {
		os.Setenv("NEREID_DIAGRAM", cfg.Diagram)
	}

	if fl.mcpMode {
		if err := serveMCP(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "nereid: mcp: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	path, err := datasource.Discover()
	if err != nil {
		fmt.Fprintf(os.Stderr, "nereid: %v\n", err)
		os.Exit(1)
	}

	if fl.textMode || fl.jsonMode || fl.pngPath != "" {
		logger, err := logging.New(os.Stderr, cfg.LogLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "nereid: %v\n", err)
			os.Exit(1)
		}
		if err := oneShot(os.Stdout, logger, path, cfg.Render, fl); err != nil {
			fmt.Fprintf(os.Stderr, "nereid: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := runViewer(cfg, path, fl.selectRef); err != nil {
		fmt.Fprintf(os.Stderr, "nereid: %v\n", err)
		os.Exit(1)
	}
}

// oneShot renders path once and writes the requested outputs.
func oneShot(w io.Writer, logger *slog.Logger, path string, opts model.RenderOptions, fl cliFlags) error {
	snap, err := snapshot.Build(path, opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	ctx := logging.WithDiagramID(context.Background(), snap.Diagram.DiagramID)
	logger.DebugContext(ctx, "rendered", "path", path, "width", snap.Result.Width, "height", snap.Result.Height)

	if fl.pngPath != "" {
		if err := writePNG(fl.pngPath, snap, fl.selectRef); err != nil {
			return err
		}
		logger.InfoContext(ctx, "wrote png", "path", fl.pngPath)
	}
	if fl.jsonMode {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap.Result.Document()); err != nil {
			return fmt.Errorf("json: %w", err)
		}
	}
	if fl.textMode {
		if _, err := fmt.Fprintln(w, snap.Result.Text); err != nil {
			return err
		}
	}
	return nil
}

func writePNG(path string, snap *snapshot.Snapshot, selectRef string) error {
	opts := export.DefaultOptions()
	if selectRef != "" {
		ref, err := model.ParseObjectRef(selectRef)
		if err != nil {
			return err
		}
		spans := snap.Spans(ref)
		if spans == nil {
			return fmt.Errorf("%s is not in the rendered diagram", ref)
		}
		opts.Highlight = spans
	}
	if err := export.WriteFile(path, snap.Result, opts); err != nil {
		return fmt.Errorf("png: %w", err)
	}
	return nil
}

// serveMCP runs the MCP server on stdio. A missing default diagram is not
// fatal: tool calls may name their own path.
func serveMCP(cfg *config.Config) error {
	logger, err := logging.New(os.Stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	path, err := datasource.Discover()
	if err != nil {
		logger.Warn("no default diagram", "error", err)
		path = ""
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	srv := mcpserver.New(mcpserver.Deps{
		Diagram: path,
		Options: cfg.Render,
		Logger:  logger,
		Version: Version,
	})
	return srv.Serve(ctx)
}

// viewerLogger logs to the configured file; the TUI owns the terminal.
func viewerLogger(cfg *config.Config) (*slog.Logger, func()) {
	discard := func() *slog.Logger {
		logger, _ := logging.New(io.Discard, "info")
		return logger
	}
	f, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return discard(), func() {}
	}
	logger, err := logging.New(f, cfg.LogLevel)
	if err != nil {
		f.Close()
		return discard(), func() {}
	}
	return logger, func() { f.Close() }
}

func runViewer(cfg *config.Config, path, selectRef string) error {
	logger, closeLog := viewerLogger(cfg)
	defer closeLog()

	view, err := parseViewFlag(cfg.View)
	if err != nil {
		return err
	}

	w, err := datasource.NewWatcher(path)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	// A diagram that fails to render still opens the viewer with the error
	// shown; the next successful reload replaces it.
	snap, loadErr := snapshot.Build(path, cfg.Render)
	if loadErr != nil {
		logger.Warn("initial render failed", "path", path, "error", loadErr)
	}

	m := newModel(w, snap, path, cfg.Render)
	m.loadErr = loadErr
	m.activeView = view
	m.refreshInterval = cfg.Refresh
	m.logger = logger
	m.highlight = highlightStyle(cfg.Highlight.Color)
	if selectRef != "" {
		ref, err := model.ParseObjectRef(selectRef)
		if err != nil {
			w.Close()
			return err
		}
		m.selectRef(ref)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Feed file change events into the TUI.
	go func() {
		for range w.Changes() {
			p.Send(fileChangedMsg{})
		}
	}()

	// Polling fallback: refresh at the configured interval even if fsnotify misses events.
	go func() {
		ticker := time.NewTicker(cfg.Refresh)
		defer ticker.Stop()
		for range ticker.C {
			p.Send(fileChangedMsg{})
		}
	}()

	if _, err := p.Run(); err != nil {
		w.Close()
		return err
	}
	return nil
}
