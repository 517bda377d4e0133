// Package mcpapi provides a stateless MCP streamable-HTTP adapter.
package mcpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/evanschultz/stack/internal/adapters/server/common"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Config captures MCP transport configuration.
type Config struct {
	ServerName    string
	ServerVersion string
	EndpointPath  string
}

// Logger is the subset of charmbracelet/log used by tool handlers.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

// Handler wraps one stateless MCP streamable HTTP handler.
type Handler struct {
	httpHandler http.Handler
}

// NewHandler builds one stateless MCP adapter exposing the board tools.
func NewHandler(cfg Config, board common.BoardService, logger Logger) (*Handler, error) {
	if board == nil {
		return nil, fmt.Errorf("board service is required")
	}
	if logger == nil {
		logger = nopLogger{}
	}
	cfg = normalizeConfig(cfg)

	mcpSrv := mcpserver.NewMCPServer(
		cfg.ServerName,
		cfg.ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	t := tools{board: board, logger: logger}
	t.registerReadTools(mcpSrv)
	t.registerWriteTools(mcpSrv)

	streamable := mcpserver.NewStreamableHTTPServer(
		mcpSrv,
		mcpserver.WithEndpointPath(cfg.EndpointPath),
		mcpserver.WithStateLess(true),
	)
	return &Handler{httpHandler: streamable}, nil
}

// ServeHTTP handles one MCP streamable HTTP request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.httpHandler == nil {
		http.Error(w, "mcp handler unavailable", http.StatusServiceUnavailable)
		return
	}
	h.httpHandler.ServeHTTP(w, r)
}

// normalizeConfig applies deterministic defaults to MCP adapter config.
func normalizeConfig(cfg Config) Config {
	cfg.ServerName = strings.TrimSpace(cfg.ServerName)
	if cfg.ServerName == "" {
		cfg.ServerName = "stack"
	}
	cfg.ServerVersion = strings.TrimSpace(cfg.ServerVersion)
	if cfg.ServerVersion == "" {
		cfg.ServerVersion = "dev"
	}
	cfg.EndpointPath = strings.TrimSpace(cfg.EndpointPath)
	if cfg.EndpointPath == "" {
		cfg.EndpointPath = "/mcp"
	}
	if !strings.HasPrefix(cfg.EndpointPath, "/") {
		cfg.EndpointPath = "/" + cfg.EndpointPath
	}
	cfg.EndpointPath = "/" + strings.Trim(cfg.EndpointPath, "/")
	return cfg
}

type tools struct {
	board  common.BoardService
	logger Logger
}

// registerReadTools registers `stack.board`, `stack.list_epics` and `stack.get_story`.
func (t tools) registerReadTools(srv *mcpserver.MCPServer) {
	srv.AddTool(
		mcp.NewTool(
			"stack.board",
			mcp.WithDescription("Return all four board columns, optionally filtered to one epic."),
			mcp.WithNumber("epic_id", mcp.Description("Only include stories of this epic")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var epicID *int64
			if id := req.GetInt("epic_id", 0); id != 0 {
				v := int64(id)
				epicID = &v
			}
			board, err := t.board.Board(ctx, epicID)
			if err != nil {
				return t.toolResultFromError("stack.board", err), nil
			}
			return encodeResult("stack.board", board)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"stack.list_epics",
			mcp.WithDescription("List every epic ordered by id."),
		),
		func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			epics, err := t.board.ListEpics(ctx)
			if err != nil {
				return t.toolResultFromError("stack.list_epics", err), nil
			}
			return encodeResult("stack.list_epics", map[string]any{"epics": epics})
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"stack.get_story",
			mcp.WithDescription("Return one story with its checklist tasks."),
			mcp.WithNumber("story_id", mcp.Required(), mcp.Description("Story identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			storyID, err := req.RequireInt("story_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			detail, err := t.board.GetStory(ctx, int64(storyID))
			if err != nil {
				return t.toolResultFromError("stack.get_story", err), nil
			}
			return encodeResult("stack.get_story", detail)
		},
	)
}

// registerWriteTools registers the story and task mutation tools.
func (t tools) registerWriteTools(srv *mcpserver.MCPServer) {
	srv.AddTool(
		mcp.NewTool(
			"stack.create_story",
			mcp.WithDescription("Create one story on the board."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Story title")),
			mcp.WithString("description", mcp.Description("Markdown body")),
			mcp.WithNumber("epic_id", mcp.Description("Owning epic")),
			mcp.WithString("status", mcp.Description("Initial column"), mcp.Enum("todo", "in_progress", "in_review", "done")),
			mcp.WithString("priority", mcp.Description("Priority"), mcp.Enum("low", "medium", "high", "critical")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			in := common.CreateStoryRequest{
				Title:       title,
				Description: req.GetString("description", ""),
				Status:      req.GetString("status", ""),
				Priority:    req.GetString("priority", ""),
			}
			if id := req.GetInt("epic_id", 0); id != 0 {
				v := int64(id)
				in.EpicID = &v
			}
			story, err := t.board.CreateStory(ctx, in)
			if err != nil {
				return t.toolResultFromError("stack.create_story", err), nil
			}
			return encodeResult("stack.create_story", story)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"stack.move_story",
			mcp.WithDescription("Move one story to another status column."),
			mcp.WithNumber("story_id", mcp.Required(), mcp.Description("Story identifier")),
			mcp.WithString("status", mcp.Required(), mcp.Description("Target column"), mcp.Enum("todo", "in_progress", "in_review", "done")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			storyID, err := req.RequireInt("story_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			status, err := req.RequireString("status")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			story, err := t.board.MoveStory(ctx, common.MoveStoryRequest{StoryID: int64(storyID), Status: status})
			if err != nil {
				return t.toolResultFromError("stack.move_story", err), nil
			}
			return encodeResult("stack.move_story", story)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"stack.create_task",
			mcp.WithDescription("Append one checklist task to a story."),
			mcp.WithNumber("story_id", mcp.Required(), mcp.Description("Story identifier")),
			mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			storyID, err := req.RequireInt("story_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			title, err := req.RequireString("title")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := t.board.CreateTask(ctx, common.CreateTaskRequest{StoryID: int64(storyID), Title: title})
			if err != nil {
				return t.toolResultFromError("stack.create_task", err), nil
			}
			return encodeResult("stack.create_task", task)
		},
	)

	srv.AddTool(
		mcp.NewTool(
			"stack.toggle_task",
			mcp.WithDescription("Flip the done flag of one task."),
			mcp.WithNumber("task_id", mcp.Required(), mcp.Description("Task identifier")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			taskID, err := req.RequireInt("task_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			task, err := t.board.ToggleTask(ctx, int64(taskID))
			if err != nil {
				return t.toolResultFromError("stack.toggle_task", err), nil
			}
			return encodeResult("stack.toggle_task", task)
		},
	)
}

// encodeResult wraps one payload as a structured JSON tool result.
func encodeResult(tool string, payload any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s result: %w", tool, err)
	}
	return result, nil
}

// toolResultFromError maps service errors into MCP-visible tool errors.
func (t tools) toolResultFromError(tool string, err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return mcp.NewToolResultError("unknown error")
	case errors.Is(err, common.ErrNotFound):
		t.logger.Debug("mcp tool target missing", "tool", tool, "err", err)
		return mcp.NewToolResultError("not_found: " + err.Error())
	case errors.Is(err, common.ErrInvalidRequest):
		t.logger.Debug("mcp tool rejected input", "tool", tool, "err", err)
		return mcp.NewToolResultError("invalid_argument: " + err.Error())
	default:
		t.logger.Error("mcp tool failed", "tool", tool, "err", err)
		return mcp.NewToolResultError("internal_error: " + err.Error())
	}
}

type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Error(any, ...any) {}
