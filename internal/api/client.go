package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/pyomin/bluecool-admin/internal/common"
	"github.com/pyomin/bluecool-admin/pkg/logger"
)

// TokenSource provides the bearer credential for outgoing requests
type TokenSource interface {
	Get() string
	Clear() error
}

// Client the single configured transport to the backend API.
// It is the only mutator of server-persisted state in the console.
type Client struct {
	base   *url.URL
	prefix string
	http   *http.Client
	tokens TokenSource

	// onUnauthorized fires once per intercepted 401, after the token
	// store is cleared. The shell uses it to land on /login.
	onUnauthorized func()
}

// NewClient builds a client for baseURL with a fixed path prefix.
// Cookies are kept in-process so refresh cookies ride along.
func NewClient(baseURL, prefix string, tokens TokenSource) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base url %q: %w", baseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("api: cookie jar: %w", err)
	}

	return &Client{
		base:   base,
		prefix: strings.TrimSuffix(prefix, "/"),
		http:   &http.Client{Jar: jar},
		tokens: tokens,
	}, nil
}

// OnUnauthorized registers the session-invalidation hook
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// Get issues GET path?query and decodes the JSON response into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues POST path with a JSON body
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Patch issues PATCH path with a JSON body
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete issues DELETE path
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := *c.base
	endpoint.Path = c.prefix + path
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// send attaches the bearer token, runs the request and applies the
// response interception (401 -> session invalidation, 4xx/5xx -> Error).
func (c *Client) send(req *http.Request, out any) error {
	if token := c.tokens.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidateSession()
		return common.ErrSessionExpired
	}

	if resp.StatusCode >= 400 {
		apiErr := decodeError(resp.StatusCode, data)
		log := logger.WithComponent("api")
		log.Warn().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", apiErr.StatusCode).
			Str("message", apiErr.FirstMessage()).
			Msg("request rejected")
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

// invalidateSession clears both token tiers and notifies the shell.
// Components never observe the 401 itself.
func (c *Client) invalidateSession() {
	if err := c.tokens.Clear(); err != nil {
		log := logger.WithComponent("api")
		log.Error().Err(err).Msg("failed to clear token store")
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// UploadResult response of the media upload endpoints
type UploadResult struct {
	URL string `json:"url"`
}

// UploadImage posts multipart "file" to /media/images and returns the
// stored URL
func (c *Client) UploadImage(ctx context.Context, filename string, file io.Reader) (string, error) {
	return c.upload(ctx, "/media/images", filename, file)
}

// UploadProfileImage posts multipart "file" to /media/images/profile
func (c *Client) UploadProfileImage(ctx context.Context, filename string, file io.Reader) (string, error) {
	return c.upload(ctx, "/media/images/profile", filename, file)
}

func (c *Client) upload(ctx context.Context, path, filename string, file io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("api: multipart: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("api: multipart copy: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("api: multipart close: %w", err)
	}

	endpoint := *c.base
	endpoint.Path = c.prefix + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), &buf)
	if err != nil {
		return "", fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result UploadResult
	if err := c.send(req, &result); err != nil {
		return "", err
	}
	return result.URL, nil
}
