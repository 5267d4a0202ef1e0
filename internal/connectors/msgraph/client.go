package msgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/oauth2"

	"github.com/him6ul/AIAssistant/internal/connectors/httperr"
	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client issues Graph requests with an authenticated HTTP client.
type Client struct {
	http *http.Client
	base string
}

// NewClient returns a client for baseURL. The HTTP client is expected to
// attach the bearer token.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: httpClient, base: strings.TrimRight(baseURL, "/")}
}

// graphError is the Graph error envelope.
type graphError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// collection is one page of a Graph list response.
type collection[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// url resolves path against the base URL. Absolute URLs (nextLink) are
// returned unchanged.
func (c *Client) url(path string, query url.Values) string {
	if strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return path
	}
	u := c.base + path
	if q := encodeQuery(query); q != "" {
		u += "?" + q
	}
	return u
}

// encodeQuery keeps OData system query names such as $top unescaped and
// encodes spaces as %20.
func encodeQuery(query url.Values) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, v := range query[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(strings.ReplaceAll(url.QueryEscape(v), "+", "%20"))
		}
	}
	return b.String()
}

// Get decodes the JSON response of a GET request into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, c.url(path, query), "", nil, out)
}

// GetRaw returns the body of a GET request.
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	if err := c.do(ctx, http.MethodGet, c.url(path, nil), "", nil, &body); err != nil {
		return nil, err
	}
	return body, nil
}

// Post sends in as JSON and decodes the response into out when non-nil.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return domain.Permanent(fmt.Errorf("encode request: %w", err))
	}
	return c.do(ctx, http.MethodPost, c.url(path, nil), "application/json", data, out)
}

// PostContent sends a raw body with the given content type.
func (c *Client) PostContent(ctx context.Context, path, contentType string, body []byte, out any) error {
	return c.do(ctx, http.MethodPost, c.url(path, nil), contentType, body, out)
}

func (c *Client) do(ctx context.Context, method, rawURL, contentType string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return domain.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return domain.Permanent(fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err))
		}
		return domain.Transient(fmt.Errorf("graph %s %s: %w", method, req.URL.Path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("graph %s %s: %w", method, req.URL.Path, httperr.FromResponse(resp, errorMessage(resp.Body)))
	}

	switch v := out.(type) {
	case nil:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case *[]byte:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return domain.Transient(fmt.Errorf("read response: %w", err))
		}
		*v = data
		return nil
	default:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domain.Permanent(fmt.Errorf("decode %s response: %w", req.URL.Path, err))
		}
		return nil
	}
}

// errorMessage extracts "code: message" from a Graph error body.
func errorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var ge graphError
	if json.Unmarshal(data, &ge) == nil && ge.Error.Code != "" {
		if ge.Error.Message == "" {
			return ge.Error.Code
		}
		return ge.Error.Code + ": " + ge.Error.Message
	}
	return strings.TrimSpace(string(data))
}

// list follows @odata.nextLink until limit items are collected.
// A non-positive limit reads every page.
func list[T any](ctx context.Context, c *Client, path string, query url.Values, limit int) ([]T, error) {
	var out []T
	next := c.url(path, query)
	for next != "" {
		var page collection[T]
		if err := c.do(ctx, http.MethodGet, next, "", nil, &page); err != nil {
			return nil, err
		}
		out = append(out, page.Value...)
		if limit > 0 && len(out) >= limit {
			return out[:limit], nil
		}
		next = page.NextLink
	}
	return out, nil
}
