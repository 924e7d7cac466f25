// Package supabase talks to a hosted Supabase project: PostgREST for the
// journal tables and the Realtime websocket for change notifications.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tableflip.dev/lovenote/pkg/gateway"
	"tableflip.dev/lovenote/pkg/journal"
)

const (
	postSelect = "id,space_id,author_name,content,post_type,mood_type,is_private,created_at," +
		"likes(id,author_name),comments(id,author_name,content,created_at)"

	preferRepresentation = "return=representation"
	preferMinimal        = "return=minimal"

	uniqueViolation = "23505"
)

// APIError is a PostgREST error response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%s, status %d)", msg, e.Code, e.Status)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.Status)
}

// Is reports a uniqueness violation as gateway.ErrUniqueViolation.
func (e *APIError) Is(target error) bool {
	if target != gateway.ErrUniqueViolation {
		return false
	}
	return e.Code == uniqueViolation || strings.Contains(strings.ToLower(e.Message), "duplicate")
}

// Client is a gateway.Backend over PostgREST.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ gateway.Backend = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 30s.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New returns a client for the project at baseURL. A bare host gets https.
func New(baseURL, apiKey string, opts ...Option) *Client {
	if !strings.HasPrefix(baseURL, "http") {
		baseURL = "https://" + baseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, body interface{}, prefer string, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("supabase: marshal %s body: %w", table, err)
		}
		reqBody = bytes.NewReader(data)
	}

	endpoint := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("supabase: build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: %s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("supabase: read %s response: %w", table, err)
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jerr := json.Unmarshal(data, apiErr); jerr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("supabase: decode %s response: %w", table, err)
	}
	return nil
}

func eq(v string) string {
	return "eq." + v
}

func (c *Client) InsertSpace(ctx context.Context, f journal.SpaceFields) (*journal.Space, error) {
	var rows []journal.Space
	err := c.do(ctx, http.MethodPost, "spaces", nil, f, preferRepresentation, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("supabase: insert returned no space")
	}
	return &rows[0], nil
}

func (c *Client) SpaceBySecret(ctx context.Context, secret string) (*journal.Space, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("secret", eq(secret))
	q.Set("limit", "1")
	var rows []journal.Space
	if err := c.do(ctx, http.MethodGet, "spaces", q, nil, "", &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) ListPosts(ctx context.Context, spaceID string) ([]journal.Post, error) {
	q := url.Values{}
	q.Set("select", postSelect)
	q.Set("space_id", eq(spaceID))
	q.Set("order", "created_at.desc")
	q.Set("comments.order", "created_at.asc")
	var posts []journal.Post
	if err := c.do(ctx, http.MethodGet, "posts", q, nil, "", &posts); err != nil {
		return nil, err
	}
	for i := range posts {
		for j := range posts[i].Likes {
			posts[i].Likes[j].PostID = posts[i].ID
		}
		for j := range posts[i].Comments {
			posts[i].Comments[j].PostID = posts[i].ID
		}
	}
	return posts, nil
}

type postInsert struct {
	SpaceID    string           `json:"space_id"`
	AuthorName string           `json:"author_name"`
	Content    string           `json:"content"`
	PostType   journal.PostType `json:"post_type"`
	MoodType   *journal.Mood    `json:"mood_type"`
	IsPrivate  bool             `json:"is_private"`
}

func (c *Client) InsertPost(ctx context.Context, n journal.NewPost) error {
	return c.do(ctx, http.MethodPost, "posts", nil, postInsert{
		SpaceID:    n.SpaceID,
		AuthorName: n.AuthorName,
		Content:    n.Content,
		PostType:   n.PostType,
		MoodType:   n.MoodPtr(),
		IsPrivate:  n.IsPrivate,
	}, preferMinimal, nil)
}

func likeQuery(postID, author string) url.Values {
	q := url.Values{}
	q.Set("post_id", eq(postID))
	q.Set("author_name", eq(author))
	return q
}

func (c *Client) FindLike(ctx context.Context, postID, author string) (*journal.Like, error) {
	q := likeQuery(postID, author)
	q.Set("select", "id,post_id,author_name")
	q.Set("limit", "1")
	var rows []journal.Like
	if err := c.do(ctx, http.MethodGet, "likes", q, nil, "", &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (c *Client) InsertLike(ctx context.Context, postID, author string) error {
	body := map[string]string{"post_id": postID, "author_name": author}
	return c.do(ctx, http.MethodPost, "likes", nil, body, preferMinimal, nil)
}

func (c *Client) DeleteLike(ctx context.Context, postID, author string) error {
	return c.do(ctx, http.MethodDelete, "likes", likeQuery(postID, author), nil, preferMinimal, nil)
}

func (c *Client) InsertComment(ctx context.Context, postID, author, content string) error {
	body := map[string]string{"post_id": postID, "author_name": author, "content": content}
	return c.do(ctx, http.MethodPost, "comments", nil, body, preferMinimal, nil)
}
