package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/chatroom/pkg/message"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerCreateChatroomTool(srv, svc)
	registerDeleteChatroomTool(srv, svc)
	registerListChatroomsTool(srv, svc)
	registerListMessagesTool(srv, svc)
	registerGetChatroomTool(srv, svc)
	registerAddMessageTool(srv, svc)
	registerAddReplyTool(srv, svc)
	registerAddReactionTool(srv, svc)
	registerRemoveReactionTool(srv, svc)
}

func registerCreateChatroomTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"create_chatroom",
		mcp.WithDescription("Create a new, empty chatroom."),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title shown for the chatroom."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := request.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		sum, err := svc.CreateChatroom(ctx, title)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(sum)
	})
}

func registerDeleteChatroomTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"delete_chatroom",
		mcp.WithDescription("Delete a chatroom and everything in it. Deleting an unknown chatroom succeeds."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Chatroom identifier to delete."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.DeleteChatroom(ctx, id); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"deleted": id})
	})
}

func registerListChatroomsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_chatrooms",
		mcp.WithDescription("List chatrooms with message counts and last activity."),
		mcp.WithString("query",
			mcp.Description("Only chatrooms whose title contains this text, ignoring case."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		rooms, err := svc.ListChatrooms(ctx, request.GetString("query", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"chatrooms": rooms,
			"count":     len(rooms),
		})
	})
}

func registerGetChatroomTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_chatroom",
		mcp.WithDescription("Fetch a chatroom with its full message and reply tree."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Chatroom identifier to fetch."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		room, err := svc.Chatroom(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(room)
	})
}

func registerListMessagesTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_messages",
		mcp.WithDescription("Page back through a chatroom's top-level messages, newest page first."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Chatroom identifier."),
		),
		mcp.WithString("before",
			mcp.Description("Return messages older than this top-level message id."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum messages per page. Defaults to 20."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		page, err := svc.Messages(ctx, id, request.GetString("before", ""), request.GetInt("limit", 20))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(page)
	})
}

type postArgs struct {
	Chatroom string `json:"chatroom"`
	ParentID string `json:"parentId"`
	Content  string `json:"content"`
	Image    string `json:"image"`
	Role     string `json:"role"`
	Respond  bool   `json:"respond"`
}

func (a postArgs) options() (PostOptions, error) {
	role := message.RoleUser
	if a.Role != "" {
		var err error
		if role, err = message.ParseRole(a.Role); err != nil {
			return PostOptions{}, err
		}
	}
	return PostOptions{
		Chatroom: a.Chatroom,
		ParentID: a.ParentID,
		Content:  a.Content,
		Image:    a.Image,
		Role:     role,
		Respond:  a.Respond,
	}, nil
}

func postTool(name, description string, reply bool) mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("chatroom",
			mcp.Required(),
			mcp.Description("Chatroom identifier."),
		),
	}
	if reply {
		opts = append(opts, mcp.WithString("parentId",
			mcp.Required(),
			mcp.Description("Message to reply to; it may itself be a reply."),
		))
	}
	opts = append(opts,
		mcp.WithString("content",
			mcp.Description("Message text. Required unless an image is given."),
		),
		mcp.WithString("image",
			mcp.Description("Optional image as a data URI."),
		),
		mcp.WithString("role",
			mcp.Description("Author of the message."),
			mcp.Enum("user", "assistant"),
		),
		mcp.WithBoolean("respond",
			mcp.Description("Ask the assistant to answer a user message."),
		),
	)
	return mcp.NewTool(name, opts...)
}

func registerAddMessageTool(srv *server.MCPServer, svc *Service) {
	tool := postTool("add_message", "Post a top-level message to a chatroom.", false)
	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handlePost(ctx, request, svc, false)
	})
}

func registerAddReplyTool(srv *server.MCPServer, svc *Service) {
	tool := postTool("add_reply", "Reply to a message at any depth of a thread.", true)
	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handlePost(ctx, request, svc, true)
	})
}

func handlePost(ctx context.Context, request mcp.CallToolRequest, svc *Service, reply bool) (*mcp.CallToolResult, error) {
	var args postArgs
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if reply && args.ParentID == "" {
		return mcp.NewToolResultError("parentId is required"), nil
	}
	if !reply {
		args.ParentID = ""
	}
	opts, err := args.options()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := svc.Post(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(res)
}

func registerAddReactionTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"add_reaction",
		mcp.WithDescription("React to a message with an emoji. Reacting twice with the same emoji keeps one reaction."),
		mcp.WithString("chatroom",
			mcp.Required(),
			mcp.Description("Chatroom identifier."),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("Message to react to."),
		),
		mcp.WithString("emoji",
			mcp.Required(),
			mcp.Description("Emoji to add."),
		),
		mcp.WithString("user",
			mcp.Description("User id recorded on the reaction."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Chatroom  string `json:"chatroom"`
			MessageID string `json:"messageId"`
			Emoji     string `json:"emoji"`
			User      string `json:"user"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		r, err := svc.AddReaction(ctx, args.Chatroom, args.MessageID, args.Emoji, args.User)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(r)
	})
}

func registerRemoveReactionTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"remove_reaction",
		mcp.WithDescription("Remove a reaction from a message by reaction id."),
		mcp.WithString("chatroom",
			mcp.Required(),
			mcp.Description("Chatroom identifier."),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("Message holding the reaction."),
		),
		mcp.WithString("reactionId",
			mcp.Required(),
			mcp.Description("Reaction identifier to remove."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		chatroom, err := request.RequireString("chatroom")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		messageID, err := request.RequireString("messageId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		reactionID, err := request.RequireString("reactionId")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := svc.RemoveReaction(ctx, chatroom, messageID, reactionID); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{"removed": reactionID})
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return result, nil
}
