package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/lovenote/pkg/journal"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerWhoAmITool(srv, svc)
	registerListPostsTool(srv, svc)
	registerGetPostTool(srv, svc)
	registerCreatePostTool(srv, svc)
	registerToggleLikeTool(srv, svc)
	registerCommentTool(srv, svc)
	registerStatsTool(srv, svc)
}

func registerWhoAmITool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"whoami",
		mcp.WithDescription("Show the active shared space, its two partners and who is writing."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.WhoAmI(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerListPostsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_posts",
		mcp.WithDescription("List posts in the shared space, newest first."),
		mcp.WithString("query",
			mcp.Description("Optional case-insensitive text matched against content, author, type and mood."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of posts to return (default 20, 0 for all)."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.Params.Arguments
		query, _ := stringArg(args, "query")
		limit, ok := intArg(args, "limit")
		if !ok {
			limit = 20
		}
		if limit < 0 {
			limit = 0
		}

		posts, err := svc.Feed(ctx, query, limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"query": query,
			"limit": limit,
			"posts": posts,
			"count": len(posts),
		})
	})
}

func registerGetPostTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"get_post",
		mcp.WithDescription("Fetch a single post with its likes and comments."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Post identifier, or a unique prefix of it."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireString(request.Params.Arguments, "id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.PostByID(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerCreatePostTool(srv *server.MCPServer, svc *Service) {
	types := make([]string, 0, 4)
	for _, t := range journal.AllPostTypes() {
		types = append(types, string(t))
	}
	moods := make([]string, 0, 8)
	for _, m := range journal.AllMoods() {
		moods = append(moods, string(m))
	}

	tool := mcp.NewTool(
		"create_post",
		mcp.WithDescription("Share a post in the shared space as the current identity."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Text of the post."),
		),
		mcp.WithString("type",
			mcp.Description("Post type, defaults to text."),
			mcp.Enum(types...),
		),
		mcp.WithString("mood",
			mcp.Description("Mood of a mood post. Setting it implies type mood."),
			mcp.Enum(moods...),
		),
		mcp.WithBoolean("private",
			mcp.Description("Mark the post private."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.Params.Arguments
		content, err := requireString(args, "content")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		typ, _ := stringArg(args, "type")
		mood, _ := stringArg(args, "mood")
		private, _ := args["private"].(bool)

		p := journal.NewPost{Content: content, IsPrivate: private}
		if p.PostType, err = journal.ParsePostType(typ); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if mood != "" {
			if p.Mood, err = journal.ParseMood(mood); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			p.PostType = journal.TypeMood
		}

		dto, err := svc.CreatePost(ctx, p)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerToggleLikeTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"toggle_like",
		mcp.WithDescription("Like a post as the current identity, or take the like back."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Post identifier, or a unique prefix of it."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireString(request.Params.Arguments, "id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.ToggleLike(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerCommentTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"comment",
		mcp.WithDescription("Reply to a post as the current identity."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Post identifier, or a unique prefix of it."),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text of the comment."),
		),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireString(request.Params.Arguments, "id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := requireString(request.Params.Arguments, "text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		dto, err := svc.Comment(ctx, id, text)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func registerStatsTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"stats",
		mcp.WithDescription("Totals, day counts and distributions for the shared space."),
	)

	srv.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dto, err := svc.Stats(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(dto)
	})
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func stringArg(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key].(string)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func requireString(args map[string]interface{}, key string) (string, error) {
	v, ok := stringArg(args, key)
	if !ok {
		return "", fmt.Errorf("'%s' is required and must be a non-empty string", key)
	}
	return v, nil
}

// intArg reads a JSON number; they arrive as float64.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
