// File: internal/transport/client.go
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sipaling_preloved_client/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// methodOverrideField is the hidden form field Laravel reads to treat a POST
// as a PUT. Required because multipart PUT bodies are not supported by the
// backend stack.
const methodOverrideField = "_method"

// FilePart is a single binary part of a multipart request.
type FilePart struct {
	Field    string
	FileName string
	Content  io.Reader
}

// Request describes one backend call. Exactly one body style applies:
// JSONBody for application/json, or FormFields/Files for multipart/form-data.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	JSONBody    interface{}
	FormFields  map[string]string
	Files       []FilePart
	Token       string // bearer token, attached per call; empty means anonymous
	OverridePut bool   // send POST with a _method=PUT part
}

// Response carries the raw outcome of a call. Envelope decoding and error
// classification belong to the common package, not here.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client is the single HTTP client for the backend, constructed once at
// process start and injected into every repository. It holds no token:
// authorization travels with each Request because the session can change
// across the client's lifetime.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates the transport client with bounded connect/read/write timeouts.
func New(cfg *config.Config, logger *zap.Logger) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	dialer := &net.Dialer{Timeout: timeout}
	httpTransport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.APIBaseURL, "/"),
		userAgent: cfg.HTTPUserAgent,
		httpClient: &http.Client{
			Transport: httpTransport,
			Timeout:   timeout,
		},
		logger: logger.Named("transport"),
	}
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes a single request and returns the raw response. The returned
// error is a transport-level fault only (DNS, refused connection, timeout,
// cancelled context); HTTP error statuses are returned in the Response for
// the repository layer to classify.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	fullURL := c.baseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	method := req.Method
	body, contentType, err := c.encodeBody(&req)
	if err != nil {
		return nil, err
	}
	if req.OverridePut {
		// The override part forces POST on the wire regardless of the
		// caller's declared method.
		method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s %s: %w", method, req.Path, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("Request failed at transport level",
			zap.String("method", method),
			zap.String("path", req.Path),
			zap.String("requestID", requestID),
			zap.Error(err),
		)
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body for %s %s: %w", method, req.Path, err)
	}

	c.logger.Debug("Request completed",
		zap.String("method", method),
		zap.String("path", req.Path),
		zap.String("requestID", requestID),
		zap.Int("status", httpResp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &Response{StatusCode: httpResp.StatusCode, Body: respBody}, nil
}

func (c *Client) encodeBody(req *Request) (io.Reader, string, error) {
	if len(req.FormFields) > 0 || len(req.Files) > 0 || req.OverridePut {
		return c.encodeMultipart(req)
	}
	if req.JSONBody != nil {
		encoded, err := json.Marshal(req.JSONBody)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode JSON body: %w", err)
		}
		return bytes.NewReader(encoded), "application/json", nil
	}
	return nil, "", nil
}

func (c *Client) encodeMultipart(req *Request) (io.Reader, string, error) {
	buf := new(bytes.Buffer)
	writer := multipart.NewWriter(buf)

	if req.OverridePut {
		if err := writer.WriteField(methodOverrideField, "PUT"); err != nil {
			return nil, "", fmt.Errorf("failed to write method override field: %w", err)
		}
	}
	for field, value := range req.FormFields {
		if err := writer.WriteField(field, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", field, err)
		}
	}
	for _, file := range req.Files {
		part, err := writer.CreateFormFile(file.Field, file.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file for %s: %w", file.Field, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("failed to copy file content for %s: %w", file.Field, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return buf, writer.FormDataContentType(), nil
}
