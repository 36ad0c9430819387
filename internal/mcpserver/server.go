package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	apppublic "partyhub/internal/app/public"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type Server struct {
	publicSvc *apppublic.Service

	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

func New(publicSvc *apppublic.Service) *Server {
	mcpSrv := server.NewMCPServer(
		"partyhub",
		"0.1.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
		server.WithResourceRecovery(),
	)
	s := &Server{
		publicSvc:  publicSvc,
		mcpServer:  mcpSrv,
		httpServer: server.NewStreamableHTTPServer(mcpSrv, server.WithStateLess(true), server.WithDisableStreaming(true)),
	}
	s.registerPublicTools()
	s.registerResources()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer
}

func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"room://{code}/public_state",
			"room_public_state",
			mcp.WithTemplateDescription("Public lobby state of a live room by code"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
			raw := request.Params.URI
			code, ok := roomCodeFromURI(raw)
			if !ok {
				return nil, nil
			}
			room, err := s.publicSvc.Room(ctx, code)
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(map[string]any{
				"code":  room.Code,
				"state": room,
			})
			if err != nil {
				return nil, err
			}
			return []mcp.ResourceContents{
				mcp.TextResourceContents{
					URI:      raw,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			}, nil
		},
	)
}

func roomCodeFromURI(uri string) (string, bool) {
	if !strings.HasPrefix(uri, "room://") || !strings.HasSuffix(uri, "/public_state") {
		return "", false
	}
	code := strings.TrimSuffix(strings.TrimPrefix(uri, "room://"), "/public_state")
	return code, code != ""
}
