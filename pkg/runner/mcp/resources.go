package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	uriSpace    = "lovenote://space"
	uriFeed     = "lovenote://feed"
	uriTimeline = "lovenote://timeline"
	uriStats    = "lovenote://stats"
	uriPost     = "lovenote://posts/{id}"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerSpaceResource(srv, svc)
	registerFeedResource(srv, svc)
	registerTimelineResource(srv, svc)
	registerStatsResource(srv, svc)
	registerPostTemplate(srv, svc)
}

func registerSpaceResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		uriSpace,
		"Space",
		mcp.WithResourceDescription("The active shared space, its partners and the current identity."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		dto, err := svc.WhoAmI(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, dto)
	})
}

func registerFeedResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		uriFeed,
		"Feed",
		mcp.WithResourceDescription("Every post in the shared space, newest first, with likes and comments."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		posts, err := svc.Feed(ctx, "", 0)
		if err != nil {
			return nil, err
		}
		payload := map[string]any{
			"posts": posts,
			"count": len(posts),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerTimelineResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		uriTimeline,
		"Timeline",
		mcp.WithResourceDescription("Posts grouped by the local day they were shared."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		days, err := svc.Timeline(ctx)
		if err != nil {
			return nil, err
		}
		payload := map[string]any{
			"days":  days,
			"count": len(days),
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

func registerStatsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		uriStats,
		"Stats",
		mcp.WithResourceDescription("Totals, day counts and distributions for the shared space."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		dto, err := svc.Stats(ctx)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, dto)
	})
}

func registerPostTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		uriPost,
		"Post Details",
		mcp.WithTemplateDescription("A single post with its likes and comments."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := templateArg(request.Params.Arguments, "id")
		if id == "" {
			return nil, fmt.Errorf("post id is required")
		}

		dto, err := svc.PostByID(ctx, id)
		if err != nil {
			return nil, err
		}

		payload := map[string]any{
			"post": dto,
		}
		return encodeResourceJSON(request.Params.URI, payload)
	})
}

// templateArg reads a matched URI template variable, which may arrive as a
// string or a list of strings.
func templateArg(args map[string]interface{}, key string) string {
	switch v := args[key].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	case []interface{}:
		if len(v) > 0 {
			s, _ := v[0].(string)
			return s
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
