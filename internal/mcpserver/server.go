// Package mcpserver exposes the chatrooms as MCP tools over stdio so agents
// can drive the same timeline the HTTP surface does.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/comigor/roomchat/internal/app"
	"github.com/comigor/roomchat/internal/logger"
	"github.com/comigor/roomchat/internal/rooms"
	"github.com/comigor/roomchat/internal/timeline"
)

// Server wraps an MCP server whose tools operate on a.
type Server struct {
	app *app.App
	mcp *server.MCPServer
}

// New registers every tool.
func New(a *app.App, version string) *Server {
	s := &Server{
		app: a,
		mcp: server.NewMCPServer("roomchat", version, server.WithToolCapabilities(true)),
	}

	s.mcp.AddTool(mcp.NewTool("list_rooms",
		mcp.WithDescription("List chatrooms, optionally filtered by a case-insensitive title search"),
		mcp.WithString("search", mcp.Description("Substring to match against room titles")),
	), s.listRooms)

	s.mcp.AddTool(mcp.NewTool("create_room",
		mcp.WithDescription("Create a chatroom with a unique title"),
		mcp.WithString("title", mcp.Required(), mcp.Description("Room title")),
	), s.createRoom)

	s.mcp.AddTool(mcp.NewTool("open_room",
		mcp.WithDescription("Open a chatroom, closing the one currently open, and return its latest page"),
		mcp.WithString("room_id", mcp.Required(), mcp.Description("ID returned by list_rooms or create_room")),
	), s.openRoom)

	s.mcp.AddTool(mcp.NewTool("send_message",
		mcp.WithDescription("Send a message to the open room; the assistant answers after a short delay"),
		mcp.WithString("text", mcp.Description("Message text")),
		mcp.WithString("image", mcp.Description("Encoded image to attach")),
	), s.sendMessage)

	s.mcp.AddTool(mcp.NewTool("get_timeline",
		mcp.WithDescription("Return the visible messages of the open room"),
	), s.getTimeline)

	s.mcp.AddTool(mcp.NewTool("load_older",
		mcp.WithDescription("Reveal one older page of the open room"),
	), s.loadOlder)

	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio blocks serving the protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	logger.L.Info("serving MCP on stdio")
	return server.ServeStdio(s.mcp)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) snapshot() (*mcp.CallToolResult, error) {
	snap, err := s.app.Timeline.Snapshot()
	if err != nil {
		return mcp.NewToolResultError("no room is open; call open_room first"), nil
	}
	return jsonResult(snap)
}

func (s *Server) listRooms(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := s.app.Rooms.List(ctx)
	if term := req.GetString("search", ""); term != "" {
		list = rooms.Filter(list, term)
	}
	return jsonResult(list)
}

func (s *Server) createRoom(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	room, err := s.app.Rooms.Create(ctx, title)
	if errors.Is(err, rooms.ErrTitleRequired) || errors.Is(err, rooms.ErrDuplicateTitle) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return nil, err
	}
	s.app.Sidebar.Refresh(ctx)
	return jsonResult(room)
}

func (s *Server) openRoom(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("room_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.app.Rooms.Get(ctx, id); err != nil {
		if errors.Is(err, rooms.ErrNotFound) {
			return mcp.NewToolResultError("room not found: " + id), nil
		}
		return nil, err
	}
	s.app.Timeline.Open(ctx, id)
	return s.snapshot()
}

func (s *Server) sendMessage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	err := s.app.Timeline.SendUserMessage(ctx, req.GetString("text", ""), req.GetString("image", ""))
	if errors.Is(err, timeline.ErrNoRoom) {
		return mcp.NewToolResultError("no room is open; call open_room first"), nil
	}
	if err != nil {
		return nil, err
	}
	return s.snapshot()
}

func (s *Server) getTimeline(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.snapshot()
}

func (s *Server) loadOlder(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	loaded := s.app.Timeline.LoadOlder()
	snap, err := s.app.Timeline.Snapshot()
	if err != nil {
		return mcp.NewToolResultError("no room is open; call open_room first"), nil
	}
	return jsonResult(map[string]any{"loaded": loaded, "timeline": snap})
}
