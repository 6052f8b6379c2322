// Package client talks to the ShareBox REST API. The same code backs the
// browser controller (net/http rides the fetch API under GOOS=js) and sharectl.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/Its-donkey/sharebox/internal/ui/model"
	"github.com/Its-donkey/sharebox/internal/ui/render"
)

const maxResponseBytes = 16 << 20

// APIError is returned when the server answers with success=false.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed: %d %s", e.Status, http.StatusText(e.Status))
}

// IsUnauthorized reports whether err is an APIError for a missing login.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// FailureMessage picks the toast text for a failed action. Transport errors
// show transportMsg. When the server answered success=false its message is
// shown, unless flagMsg is set, which replaces it. relogin is true for a
// missing login.
func FailureMessage(err error, transportMsg, flagMsg string) (msg string, relogin bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return transportMsg, false
	}
	if apiErr.Status == http.StatusUnauthorized {
		if apiErr.Message == "" {
			return transportMsg, true
		}
		return apiErr.Message, true
	}
	msg = apiErr.Message
	if flagMsg != "" {
		msg = flagMsg
	}
	if msg == "" {
		msg = transportMsg
	}
	return msg, false
}

// Client issues one request per call; it never retries.
type Client struct {
	base      string
	http      *http.Client
	userAgent string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New builds a client for baseURL. An empty base issues same-origin relative
// requests, which is what the browser controller wants. Absolute bases get a
// cookie jar so the session from Login is reused.
func New(baseURL string, opts ...Option) (*Client, error) {
	base := strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	c := &Client{base: base, http: &http.Client{}}
	if base != "" {
		parsed, err := url.Parse(base)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return nil, fmt.Errorf("invalid server url %q", baseURL)
		}
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Login posts the shared password and keeps the session cookie.
func (c *Client) Login(ctx context.Context, password string) error {
	form := url.Values{"password": {password}}
	req, err := c.newRequest(ctx, http.MethodPost, "/login", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	var out model.Envelope
	return c.do(req, &out)
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/logout", nil)
	if err != nil {
		return err
	}
	var out model.Envelope
	return c.do(req, &out)
}

// Upload sends r as the multipart "file" field named name.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (model.UploadResponse, error) {
	var out model.UploadResponse
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", pr)
	if err != nil {
		pr.Close()
		return out, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	err = c.do(req, &out)
	pr.Close()
	return out, err
}

// UploadBytes uploads an in-memory file. The browser controller uses it
// because the fetch transport buffers request bodies anyway.
func (c *Client) UploadBytes(ctx context.Context, name string, data []byte) (model.UploadResponse, error) {
	var out model.UploadResponse
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return out, err
	}
	if _, err := part.Write(data); err != nil {
		return out, err
	}
	if err := mw.Close(); err != nil {
		return out, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/upload", &body)
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	err = c.do(req, &out)
	return out, err
}

// Delete removes a shared file by its stored name.
func (c *Client) Delete(ctx context.Context, name string) (model.Envelope, error) {
	var out model.Envelope
	req, err := c.newRequest(ctx, http.MethodPost, render.DeleteURL(name), nil)
	if err != nil {
		return out, err
	}
	err = c.do(req, &out)
	return out, err
}

// List returns the shared files, newest first.
func (c *Client) List(ctx context.Context) ([]model.FileInfo, error) {
	var out model.ListResponse
	req, err := c.newRequest(ctx, http.MethodGet, "/files", nil)
	if err != nil {
		return nil, err
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out.Files == nil {
		out.Files = []model.FileInfo{}
	}
	return out.Files, nil
}

// ShareText replaces the shared text with content.
func (c *Client) ShareText(ctx context.Context, content string) (model.Envelope, error) {
	var out model.Envelope
	form := url.Values{"content": {content}}
	req, err := c.newRequest(ctx, http.MethodPost, "/share_text", strings.NewReader(form.Encode()))
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	err = c.do(req, &out)
	return out, err
}

// GetText returns the current shared text ("" when none has been shared).
func (c *Client) GetText(ctx context.Context) (string, error) {
	var out model.TextResponse
	req, err := c.newRequest(ctx, http.MethodGet, "/get_text", nil)
	if err != nil {
		return "", err
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	return out.Content, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// do sends req and decodes the envelope into out. Any body carrying a
// success flag is decoded whatever the status code; success=false becomes
// an *APIError.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", req.Method, req.URL.Path, err)
	}

	var head struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &head); err != nil || head.Success == nil {
		return fmt.Errorf("%s %s: unexpected response: %s", req.Method, req.URL.Path, resp.Status)
	}
	if !*head.Success {
		return &APIError{Status: resp.StatusCode, Message: head.Message}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
