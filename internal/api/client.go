// Package api implements the HTTP clients for the remote Bible-study services:
// Bible content, AI question answering, and authentication.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ContentSource is the slice of the API the reader needs.
// Implemented by *Client and by fakes in tests.
type ContentSource interface {
	Books(ctx context.Context) ([]Book, error)
	Chapters(ctx context.Context, bookID int) ([]Chapter, error)
	Verses(ctx context.Context, bookID, chapterID int) ([]Verse, error)
	Search(ctx context.Context, query string) (SearchResult, error)
}

// Asker is the slice of the API the Q&A flow needs.
type Asker interface {
	Ask(ctx context.Context, question string) (*Answer, error)
	Conversations(ctx context.Context) ([]Conversation, error)
}

// Authenticator is the slice of the API the session needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Register(ctx context.Context, email, firstName, password string) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error)
}

var (
	_ ContentSource = (*Client)(nil)
	_ Asker         = (*Client)(nil)
	_ Authenticator = (*Client)(nil)
)

// ErrUnauthorized is returned when the API rejects the access token.
var ErrUnauthorized = errors.New("unauthorized")

// Client talks to the Bible-study HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	token     func() string
}

const (
	defaultBaseURL   = "http://127.0.0.1:8000/api"
	defaultUserAgent = "selah/0.1"
	requestTimeout   = 30 * time.Second
)

// NewClient builds a Client for the given base URL. An empty value uses the
// default local development address.
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// SetTokenSource installs the access-token provider used for the
// Authorization header. A nil source sends unauthenticated requests.
func (c *Client) SetTokenSource(token func() string) {
	c.token = token
}

func (c *Client) get(ctx context.Context, rel *url.URL, dest any) error {
	return c.do(ctx, http.MethodGet, rel, nil, dest)
}

func (c *Client) post(ctx context.Context, path string, body, dest any) error {
	return c.do(ctx, http.MethodPost, &url.URL{Path: path}, body, dest)
}

func (c *Client) do(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	// The base URL may carry a path prefix (e.g. /api), so the endpoint path
	// is appended rather than resolved against it.
	reqURL := *c.baseURL
	reqURL.Path = c.baseURL.Path + rel.Path
	reqURL.RawQuery = rel.RawQuery

	var payload *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), payload)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("api %s: %w", rel.Path, ErrUnauthorized)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// fetchAllPages drains a paginated list endpoint by following "next" until the
// server reports no further page.
func fetchAllPages[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var all []T
	pageNum := 1
	for {
		values := url.Values{}
		for k, vs := range query {
			for _, v := range vs {
				values.Add(k, v)
			}
		}
		values.Set("page", fmt.Sprintf("%d", pageNum))
		rel := &url.URL{Path: path, RawQuery: values.Encode()}

		var p page[T]
		if err := c.get(ctx, rel, &p); err != nil {
			return nil, err
		}
		all = append(all, p.Results...)
		if p.Next == nil || *p.Next == "" {
			return all, nil
		}
		pageNum++
	}
}

func parseBaseURL(baseURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api url %q: %w", baseURL, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
