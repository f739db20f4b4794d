package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/itchyny/gojq"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/bnomei/nereid-sub000/internal/logging"
	"github.com/bnomei/nereid-sub000/internal/model"
	"github.com/bnomei/nereid-sub000/internal/snapshot"
)

var errNoDiagram = errors.New("no diagram: pass path or configure one")

// load renders the requested diagram and tags ctx for logging.
func (s *Server) load(ctx context.Context, req mcp.CallToolRequest) (context.Context, *snapshot.Snapshot, error) {
	ctx = logging.WithTool(ctx, req.Params.Name)
	path := req.GetString("path", s.diagram)
	if path == "" {
		return ctx, nil, errNoDiagram
	}
	snap, err := snapshot.Build(path, s.opts)
	if err != nil {
		s.logger.WarnContext(ctx, "render failed", "path", path, "error", err)
		return ctx, nil, err
	}
	ctx = logging.WithDiagramID(ctx, snap.Diagram.DiagramID)
	s.logger.DebugContext(ctx, "rendered", "path", path, "width", snap.Result.Width, "height", snap.Result.Height)
	return ctx, snap, nil
}

func (s *Server) handleRenderText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, snap, err := s.load(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(snap.Result.Text), nil
}

func (s *Server) handleRenderIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, snap, err := s.load(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return marshalResult(snap.Result.Document())
}

// handleQuery runs a jq filter over the render_index document. One output is
// returned as is; several are collected into an array.
func (s *Server) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter, err := req.RequireString("filter")
	if err != nil {
		return mcp.NewToolResultError("filter is required"), nil
	}
	code, err := s.compile(filter)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ctx, snap, err := s.load(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	input, err := toJQ(snap.Result.Document())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results := []any{}
	iter := code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return mcp.NewToolResultError(fmt.Sprintf("jq evaluation failed for %q: %v", filter, err)), nil
		}
		results = append(results, v)
	}
	if len(results) == 1 {
		return marshalResult(results[0])
	}
	return marshalResult(results)
}

func (s *Server) handleObjectSpans(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("ref")
	if err != nil {
		return mcp.NewToolResultError("ref is required"), nil
	}
	ref, err := model.ParseObjectRef(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, snap, err := s.load(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	spans, ok := snap.Result.Index.Spans(ref)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%s is not in the rendered diagram", ref)), nil
	}
	return marshalResult(model.IndexEntry{Ref: ref, Spans: spans})
}

// compile returns a cached compiled filter or compiles and caches a new one.
func (s *Server) compile(filter string) (*gojq.Code, error) {
	s.mu.RLock()
	code, ok := s.codes[filter]
	s.mu.RUnlock()
	if ok {
		return code, nil
	}

	query, err := gojq.Parse(filter)
	if err != nil {
		return nil, fmt.Errorf("jq parse error in %q: %w", filter, err)
	}
	// No $ENV inside filters.
	code, err = gojq.Compile(query, gojq.WithEnvironLoader(func() []string { return nil }))
	if err != nil {
		return nil, fmt.Errorf("jq compile error in %q: %w", filter, err)
	}

	s.mu.Lock()
	s.codes[filter] = code
	s.mu.Unlock()
	return code, nil
}

// toJQ round-trips v through JSON so gojq sees only maps, slices, strings,
// float64, bool and nil.
func toJQ(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
