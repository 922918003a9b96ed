package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerChatroomsResource(srv, svc)
	registerChatroomTemplate(srv, svc)
}

func registerChatroomsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"chatroom://chatrooms",
		"Chatrooms",
		mcp.WithResourceDescription("All chatrooms with message counts and the current chatroom."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		rooms, err := svc.ListChatrooms(ctx, "")
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"chatrooms": rooms,
			"count":     len(rooms),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerChatroomTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"chatroom://chatrooms/{id}",
		"Chatroom Thread",
		mcp.WithTemplateDescription("A chatroom with every message, reaction and nested reply."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := templateArg(request.Params.Arguments["id"])
		if id == "" {
			return nil, fmt.Errorf("chatroom id is required")
		}

		room, err := svc.Chatroom(ctx, id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{"chatroom": room})
	})
}

// templateArg reads a URI template variable, which the server may hand over
// as a string or a single element list.
func templateArg(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		if len(t) > 0 {
			return t[0]
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
