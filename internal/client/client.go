// Package client executes API calls described by a command tree.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "opcli/1.0.0"

// Auth carries the credentials applied to a request.
type Auth struct {
	bearer   string
	username string
	password string
	basic    bool
}

// Bearer returns token-based auth.
func Bearer(token string) Auth {
	return Auth{bearer: token}
}

// Basic returns client-credential auth.
func Basic(username, password string) Auth {
	return Auth{username: username, password: password, basic: true}
}

func (a Auth) apply(req *http.Request) {
	if a.basic {
		req.SetBasicAuth(a.username, a.password)
		return
	}
	req.Header.Set("Authorization", "Bearer "+a.bearer)
}

// QueryParam is one query-string pair. Order and repeated keys are
// preserved, which url.Values cannot guarantee.
type QueryParam struct {
	Key   string
	Value string
}

// Body is an optional request payload.
type Body struct {
	// JSON, when non-nil, is marshaled as application/json.
	JSON any
	// Form, when set, is sent urlencoded. JSON takes precedence.
	Form []QueryParam
}

type Client struct {
	http    *http.Client
	baseURL string
	debug   io.Writer
}

// New builds a client for baseURL. A zero timeout means no timeout.
// When debug is non-nil, request lines are written to it.
func New(baseURL string, timeout time.Duration, debug io.Writer) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		debug:   debug,
	}
}

// BuildURL joins a path template onto the base URL. Absolute URLs
// pass through untouched.
func (c *Client) BuildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return base
	}
	return base + "/" + path
}

// Request performs one API call and decodes the JSON response. Errors
// carry the HTTP status and decoded body. A successful empty response
// decodes to nil.
func (c *Client) Request(ctx context.Context, method, rawURL string, auth Auth, query []QueryParam, body *Body) (any, error) {
	var payload io.Reader
	contentType := ""
	if body != nil {
		switch {
		case method == http.MethodGet || method == http.MethodDelete:
			return nil, fmt.Errorf("request body not supported for %s", method)
		case body.JSON != nil:
			data, err := json.Marshal(body.JSON)
			if err != nil {
				return nil, fmt.Errorf("encoding request body: %w", err)
			}
			payload = bytes.NewReader(data)
			contentType = "application/json"
		case body.Form != nil:
			payload = strings.NewReader(encodeQuery(body.Form))
			contentType = "application/x-www-form-urlencoded"
		}
	}

	fullURL := rawURL
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(fullURL, "?") {
			sep = "&"
		}
		fullURL += sep + encodeQuery(query)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, payload)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	auth.apply(req)

	if c.debug != nil {
		fmt.Fprintf(c.debug, "request %s %s\n", method, fullURL)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	if len(bytes.TrimSpace(text)) == 0 {
		if success {
			return nil, nil
		}
		return nil, fmt.Errorf("http %s: empty response", resp.Status)
	}

	var value any
	if err := json.Unmarshal(text, &value); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if !success {
		return nil, fmt.Errorf("http %s: %s", resp.Status, compactJSON(value))
	}
	return value, nil
}

func encodeQuery(params []QueryParam) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
