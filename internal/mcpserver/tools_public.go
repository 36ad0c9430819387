package mcpserver

import (
	"context"

	apppublic "partyhub/internal/app/public"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPublicTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_rooms",
			mcp.WithDescription("List live rooms with pagination"),
			mcp.WithString("game_kind", mcp.Description("Optional game kind, e.g. NIGHT_DAY or FLEET")),
			mcp.WithString("status", mcp.Description("LOBBY|PLAYING|PAUSED")),
			mcp.WithNumber("limit", mcp.Description("Page size, default 50, max 100")),
			mcp.WithNumber("offset", mcp.Description("Page offset, default 0")),
		),
		s.handleListRooms,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_room",
			mcp.WithDescription("Get the public state of one room"),
			mcp.WithString("code", mcp.Required(), mcp.Description("Six character room code")),
		),
		s.handleGetRoom,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_game_kinds",
			mcp.WithDescription("List the games this server can host"),
		),
		s.handleListGameKinds,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_recent_matches",
			mcp.WithDescription("List recently finished matches"),
			mcp.WithString("game_kind", mcp.Description("Optional game kind filter")),
			mcp.WithNumber("limit", mcp.Description("Page size, default 20, max 200")),
		),
		s.handleListRecentMatches,
	)
}

func (s *Server) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := normalizeStatus(request.GetString("status", ""))
	if !isAllowedStatus(status) {
		return toolError("invalid_request", "status must be LOBBY|PLAYING|PAUSED"), nil
	}
	limit := request.GetInt("limit", defaultPageLimit)
	offset := request.GetInt("offset", 0)
	limit, offset = clampPagination(limit, offset, maxPageLimit)

	resp, err := s.publicSvc.Rooms(ctx, apppublic.RoomsQuery{
		GameKind: request.GetString("game_kind", ""),
		Status:   status,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleGetRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	resp, svcErr := s.publicSvc.Room(ctx, code)
	if svcErr != nil {
		return mapDomainError(svcErr), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleListGameKinds(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.publicSvc.Kinds(ctx)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}

func (s *Server) handleListRecentMatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", defaultMatchLimit)
	if limit > maxMatchLimit {
		limit = maxMatchLimit
	}
	resp, err := s.publicSvc.RecentMatches(ctx, request.GetString("game_kind", ""), limit)
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(resp), nil
}
