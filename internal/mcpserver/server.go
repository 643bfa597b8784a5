// Package mcpserver exposes the meditation library to MCP clients over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mindfulmakers/ai-meditation/internal/api"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "AI Meditation MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"

	fetchTimeout = 15 * time.Second
)

// Fetcher loads the meditation library.
type Fetcher interface {
	Fetch(ctx context.Context) ([]api.Record, error)
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *server.MCPServer
}

// MeditationSummary is one entry of the list_meditations output.
type MeditationSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	DurationMs int64  `json:"durationMs"`
	EventCount int    `json:"eventCount"`
}

// ListResult is the list_meditations output.
type ListResult struct {
	Meditations []MeditationSummary `json:"meditations"`
}

// TimelineInput is the get_timeline input.
type TimelineInput struct {
	ID string `json:"id"`
}

// TimelineEvent is a normalized event with the trigger line playback would log.
type TimelineEvent struct {
	AtMs           int64  `json:"atMs"`
	Kind           string `json:"kind"`
	File           string `json:"file,omitempty"`
	EffectID       string `json:"effectId,omitempty"`
	Trigger        string `json:"trigger"`
	BeyondDuration bool   `json:"beyondDuration"`
}

// TimelineResult is the get_timeline output.
type TimelineResult struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	DurationMs int64           `json:"durationMs"`
	Events     []TimelineEvent `json:"events"`
}

// New creates a configured MCP server backed by fetcher.
func New(fetcher Fetcher) (*Server, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("meditation fetcher is required")
	}

	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	mcpServer.AddTool(listMeditationsTool(), listMeditationsHandler(fetcher))
	mcpServer.AddTool(getTimelineTool(), getTimelineHandler(fetcher))

	return &Server{mcpServer: mcpServer}, nil
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

func listMeditationsTool() mcp.Tool {
	return mcp.NewTool(
		"list_meditations",
		mcp.WithDescription("Lists the guided meditations available from the backend"),
		mcp.WithOutputSchema[ListResult](),
	)
}

func listMeditationsHandler(fetcher Fetcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()

		records, err := fetcher.Fetch(runCtx)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("list meditations failed", err), nil
		}

		result := ListResult{Meditations: make([]MeditationSummary, 0, len(records))}
		for _, rec := range records {
			result.Meditations = append(result.Meditations, MeditationSummary{
				ID:         rec.ID,
				Title:      rec.Title,
				DurationMs: rec.DurationMs,
				EventCount: len(rec.Events()),
			})
		}
		return mcp.NewToolResultStructuredOnly(result), nil
	}
}

func getTimelineTool() mcp.Tool {
	return mcp.NewTool(
		"get_timeline",
		mcp.WithDescription("Returns the normalized timeline of one meditation in playback order"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Meditation id as returned by list_meditations"),
		),
		mcp.WithInputSchema[TimelineInput](),
		mcp.WithOutputSchema[TimelineResult](),
	)
}

func getTimelineHandler(fetcher Fetcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var input TimelineInput
		if err := request.BindArguments(&input); err != nil {
			return mcp.NewToolResultErrorFromErr("invalid timeline arguments", err), nil
		}
		if input.ID == "" {
			return mcp.NewToolResultError("id is required"), nil
		}

		runCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		defer cancel()

		records, err := fetcher.Fetch(runCtx)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("get timeline failed", err), nil
		}

		for _, rec := range records {
			if rec.ID != input.ID {
				continue
			}
			events := rec.Events()
			result := TimelineResult{
				ID:         rec.ID,
				Title:      rec.Title,
				DurationMs: rec.DurationMs,
				Events:     make([]TimelineEvent, 0, len(events)),
			}
			for _, ev := range events {
				result.Events = append(result.Events, TimelineEvent{
					AtMs:           ev.AtMs,
					Kind:           ev.Kind,
					File:           ev.File,
					EffectID:       ev.EffectID,
					Trigger:        ev.Describe(),
					BeyondDuration: ev.AtMs > rec.DurationMs,
				})
			}
			return mcp.NewToolResultStructuredOnly(result), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("meditation %q not found", input.ID)), nil
	}
}
